package framegraph

import (
	"errors"
	"testing"

	"github.com/gogpu/gputypes"
)

func testTextureDesc(name string) TextureDesc {
	d := DefaultTextureDesc(256, 256, gputypes.TextureFormatRGBA8Unorm)
	d.Name = name
	return d
}

func TestRegistryDefaults(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	if r.Allocator() == nil || r.Pool() == nil || r.Context() == nil {
		t.Fatal("zero config should select defaults")
	}
	if r.Allocator().Name() != "null" {
		t.Errorf("expected null allocator, got %q", r.Allocator().Name())
	}
}

func TestRegistryCreateTexture(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	h := r.CreateTexture(testTextureDesc("albedo"))
	if h.IsNull() {
		t.Fatal("expected a non-null handle")
	}
	if h.Kind() != KindTexture {
		t.Errorf("expected texture handle, got %v", h.Kind())
	}
	if !r.ValidHandle(h) {
		t.Error("fresh handle should be valid")
	}

	rec := r.Texture(h)
	if rec == nil {
		t.Fatal("expected a record")
	}
	if rec.Desc().Name != "albedo" {
		t.Errorf("unexpected descriptor name %q", rec.Desc().Name)
	}
	if rec.TransientPassIndex() != -1 {
		t.Error("plain resource should not be transient")
	}
}

func TestRegistryKindMismatch(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	h := r.CreateTexture(testTextureDesc("a"))
	if r.Buffer(h) != nil {
		t.Error("texture handle must not resolve as a buffer")
	}
	if r.AccelerationStructure(h) != nil {
		t.Error("texture handle must not resolve as an acceleration structure")
	}
}

func TestRegistryStaleHandleDefense(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	r.NewFrame(0)
	stale := r.CreateTexture(testTextureDesc("frame0"))

	r.NewFrame(1)
	if r.ValidHandle(stale) {
		t.Error("handle from the previous frame must be invalid")
	}

	// A pooled authoring object replays the stale handle value. Even if a
	// new resource landed on the same index, the epoch check rejects it.
	fresh := r.CreateTexture(testTextureDesc("frame1"))
	if fresh.Index() != stale.Index() {
		t.Fatalf("expected index reuse, got %d and %d", stale.Index(), fresh.Index())
	}
	if !r.ValidHandle(fresh) {
		t.Error("fresh handle should be valid")
	}
	if r.ValidHandle(stale) {
		t.Error("stale handle must stay invalid even with the index reoccupied")
	}
}

func TestRegistryNewFrameRecyclesRecords(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	r.NewFrame(0)
	h1 := r.CreateTexture(testTextureDesc("a"))
	r.CreateTexture(testTextureDesc("b"))

	r.NewFrame(1)
	if r.Texture(h1) != nil {
		t.Error("per-frame records should be gone after NewFrame")
	}
	h := r.CreateTexture(testTextureDesc("c"))
	if h.Index() != 1 {
		t.Errorf("expected table truncated to the null slot, got index %d", h.Index())
	}
}

func TestRegistryCreateAndReleaseResource(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	r.NewFrame(0)
	h := r.CreateTexture(testTextureDesc("lit"))

	if err := r.CreateResource(h); err != nil {
		t.Fatalf("CreateResource failed: %v", err)
	}
	if !r.Texture(h).IsCreated() {
		t.Error("record should be bound after CreateResource")
	}
	if err := r.ReleaseResource(h); err != nil {
		t.Fatalf("ReleaseResource failed: %v", err)
	}

	var null Handle
	if err := r.CreateResource(null); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("expected ErrInvalidHandle for the null handle, got %v", err)
	}
}

func TestRegistryPoolReuseAcrossFrames(t *testing.T) {
	pool := NewMemoryPool()
	r := NewRegistry(RegistryConfig{Pool: pool})

	r.NewFrame(0)
	h := r.CreateTexture(testTextureDesc("ping"))
	if err := r.CreateResource(h); err != nil {
		t.Fatal(err)
	}
	res := r.Texture(h).GraphicsResource()
	if err := r.ReleaseResource(h); err != nil {
		t.Fatal(err)
	}

	r.NewFrame(1)
	h2 := r.CreateTexture(testTextureDesc("pong"))
	if err := r.CreateResource(h2); err != nil {
		t.Fatal(err)
	}
	if r.Texture(h2).GraphicsResource() != res {
		t.Error("matching descriptor should reuse last frame's object")
	}
	if r.Texture(h2).GraphicsResource().Label() != "pong" {
		t.Error("reused object should carry the new label")
	}
}

func TestRegistryImportTexture(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	ext := &nullResource{label: "swapchain"}
	h := r.ImportTexture(ext)

	rec := r.Texture(h)
	if rec == nil || !rec.Imported() {
		t.Fatal("expected an imported record")
	}
	if rec.GraphicsResource() != ext {
		t.Error("imported record should carry the external object")
	}
	if rec.HasDesc() {
		t.Error("plain import carries no descriptor")
	}

	h2 := r.ImportTextureWithDesc(ext, testTextureDesc("swapchain"))
	rec2 := r.Texture(h2)
	if !rec2.HasDesc() || rec2.Desc().Name != "swapchain" {
		t.Error("ImportTextureWithDesc should attach the descriptor")
	}
}

func TestRegistrySharedTexture(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	h, err := r.CreateSharedTexture(testTextureDesc("history"), false)
	if err != nil {
		t.Fatalf("CreateSharedTexture failed: %v", err)
	}
	if h.ValidityTag() != SharedValidityTag {
		t.Errorf("shared handle should carry the shared tag, got 0x%04x", h.ValidityTag())
	}

	rec := r.Texture(h)
	if rec == nil || !rec.Shared() {
		t.Fatal("expected a shared record")
	}

	r.NewFrame(1)
	if !r.ValidHandle(h) {
		t.Error("shared handle must survive NewFrame")
	}
	if r.Texture(h) == nil {
		t.Error("shared record must survive NewFrame")
	}
}

func TestRegistrySharedSlotAfterFrameResources(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	r.NewFrame(0)
	r.CreateTexture(testTextureDesc("frame"))

	_, err := r.CreateSharedTexture(testTextureDesc("late"), false)
	if !errors.Is(err, ErrSharedSlotBusy) {
		t.Errorf("expected ErrSharedSlotBusy, got %v", err)
	}
}

func TestRegistryReleaseSharedTexture(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	h, err := r.CreateSharedTexture(testTextureDesc("history"), true)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.CreateResource(h); err != nil {
		t.Fatal(err)
	}
	res := r.Texture(h).GraphicsResource().(*nullResource)

	if err := r.ReleaseSharedTexture(h); err != nil {
		t.Fatalf("ReleaseSharedTexture failed: %v", err)
	}
	if !res.released.Load() {
		t.Error("backing object should be destroyed")
	}
	if r.Texture(h) != nil {
		t.Error("slot should be a hole after release")
	}

	// The hole is reused by the next shared registration.
	h2, err := r.CreateSharedTexture(testTextureDesc("history2"), true)
	if err != nil {
		t.Fatal(err)
	}
	if h2.Index() != h.Index() {
		t.Errorf("expected hole reuse, got index %d instead of %d", h2.Index(), h.Index())
	}

	// Releasing a non-shared texture is an error.
	plain := r.CreateTexture(testTextureDesc("plain"))
	if err := r.ReleaseSharedTexture(plain); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("expected ErrInvalidHandle, got %v", err)
	}
}

func TestRegistryUpdateSharedResourceLastFrame(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	h, err := r.CreateSharedTexture(testTextureDesc("history"), false)
	if err != nil {
		t.Fatal(err)
	}

	r.NewFrame(5)
	if err := r.UpdateSharedResourceLastFrame(h); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if r.Texture(h).LastFrameUsed() != 5 {
		t.Errorf("expected lastFrameUsed 5, got %d", r.Texture(h).LastFrameUsed())
	}

	plain := r.CreateTexture(testTextureDesc("plain"))
	if err := r.UpdateSharedResourceLastFrame(plain); !errors.Is(err, ErrInvalidHandle) {
		t.Errorf("expected ErrInvalidHandle for a non-shared handle, got %v", err)
	}
}

func TestRegistryReleaseStaleSharedResources(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	aged, err := r.CreateSharedTexture(testTextureDesc("aged"), false)
	if err != nil {
		t.Fatal(err)
	}
	pinned, err := r.CreateSharedTexture(testTextureDesc("pinned"), true)
	if err != nil {
		t.Fatal(err)
	}
	if err := r.CreateResource(aged); err != nil {
		t.Fatal(err)
	}

	r.NewFrame(10)
	released := r.ReleaseStaleSharedResources(4)
	if released != 1 {
		t.Fatalf("expected 1 released, got %d", released)
	}
	if r.Texture(aged) != nil {
		t.Error("aged shared resource should be released")
	}
	if r.Texture(pinned) == nil {
		t.Error("explicit-release resources must never age out")
	}
}

func TestRegistryBufferAndAccel(t *testing.T) {
	r := NewRegistry(RegistryConfig{})
	hb := r.CreateBuffer(BufferDesc{Name: "instances", Size: 4096, Usage: gputypes.BufferUsageStorage})
	if hb.Kind() != KindBuffer {
		t.Errorf("expected buffer handle, got %v", hb.Kind())
	}
	if r.Buffer(hb) == nil {
		t.Fatal("expected a buffer record")
	}

	ha := r.CreateAccelerationStructure(AccelStructDesc{Name: "tlas", MaxInstanceCount: 64})
	if ha.Kind() != KindAccelerationStructure {
		t.Errorf("expected acceleration structure handle, got %v", ha.Kind())
	}
	if r.AccelerationStructure(ha) == nil {
		t.Fatal("expected an acceleration structure record")
	}

	hs, err := r.CreateSharedBuffer(BufferDesc{Name: "exposure", Size: 16}, false)
	if err != nil {
		t.Fatal(err)
	}
	if hs.ValidityTag() != SharedValidityTag {
		t.Error("shared buffer should carry the shared tag")
	}
}
