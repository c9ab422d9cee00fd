package backend

import (
	"testing"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func TestNullDeviceHandle(t *testing.T) {
	var h NullDeviceHandle
	if h.Device() != nil || h.Queue() != nil || h.Adapter() != nil {
		t.Error("null device should provide nil device, queue, and adapter")
	}
	if h.SurfaceFormat() != gputypes.TextureFormatUndefined {
		t.Error("null device should report an undefined surface format")
	}
}

// fakeProvider reports a BGRA8 surface like a typical swapchain.
type fakeProvider struct{}

func (fakeProvider) Device() gpucontext.Device   { return nil }
func (fakeProvider) Queue() gpucontext.Queue     { return nil }
func (fakeProvider) Adapter() gpucontext.Adapter { return nil }
func (fakeProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}
func (fakeProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatBGRA8Unorm
}

func TestImportBackBuffer(t *testing.T) {
	g := framegraph.NewGraph(framegraph.GraphConfig{})
	g.NewFrame(0)

	h := ImportBackBuffer(g.Registry(), fakeProvider{}, 1920, 1080)
	if h.IsNull() {
		t.Fatal("expected a non-null handle")
	}
	if !g.Registry().ValidHandle(h) {
		t.Fatal("imported back buffer handle should be valid")
	}

	rec := g.Registry().Texture(h)
	if rec == nil || !rec.Imported() {
		t.Fatal("back buffer should be an imported texture")
	}
	if !rec.HasDesc() {
		t.Fatal("back buffer import should carry a descriptor")
	}
	desc := rec.Desc()
	if desc.Width != 1920 || desc.Height != 1080 {
		t.Errorf("unexpected dimensions %dx%d", desc.Width, desc.Height)
	}
	if desc.Format != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("descriptor should carry the surface format, got %v", desc.Format)
	}
	if desc.Usage != gputypes.TextureUsageRenderAttachment {
		t.Error("back buffer usage should be render attachment")
	}

	// The surface owns the object; releasing through the graph is a no-op
	// and a pass can bind it as a color target.
	b := g.AddPass("present")
	b.UseColorBuffer(h, 0)
	b.Dispose()
}

func TestImportBackBufferInvalidAfterNewFrame(t *testing.T) {
	g := framegraph.NewGraph(framegraph.GraphConfig{})
	g.NewFrame(0)
	h := ImportBackBuffer(g.Registry(), fakeProvider{}, 640, 480)

	g.NewFrame(1)
	if g.Registry().ValidHandle(h) {
		t.Error("back buffer handle must be re-imported every frame")
	}
}
