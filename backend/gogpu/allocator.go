package gogpu

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/gogpu/gpu"
	"github.com/gogpu/gogpu/gpu/types"
	"github.com/gogpu/gputypes"
)

// Allocator implements framegraph.Allocator over a gogpu backend.
type Allocator struct {
	backend gpu.Backend
	device  types.Device

	textureCount atomic.Int64
	bufferCount  atomic.Int64
}

// New creates an allocator using the given backend and device.
// The caller keeps ownership of both; Close does not release them.
func New(backend gpu.Backend, device types.Device) *Allocator {
	return &Allocator{backend: backend, device: device}
}

// Name returns "gogpu".
func (a *Allocator) Name() string { return "gogpu" }

// TextureCount returns the number of live textures created here.
func (a *Allocator) TextureCount() int64 { return a.textureCount.Load() }

// BufferCount returns the number of live buffers created here.
func (a *Allocator) BufferCount() int64 { return a.bufferCount.Load() }

// CreateTexture allocates a texture through the gogpu backend.
//
// gpu.Backend manages bind usage internally, so the usage is fixed to
// copy plus storage binding regardless of the descriptor flags.
func (a *Allocator) CreateTexture(desc framegraph.TextureDesc) (framegraph.GraphicsResource, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("gogpu: texture dimensions must be positive")
	}

	depth := desc.Depth
	if depth == 0 {
		depth = 1
	}
	mips := desc.MipLevelCount
	if mips == 0 {
		mips = 1
	}
	samples := desc.SampleCount
	if samples == 0 {
		samples = 1
	}

	td := &types.TextureDescriptor{
		Label: desc.Name,
		Size: types.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: depth,
		},
		MipLevelCount: mips,
		SampleCount:   samples,
		Dimension:     types.TextureDimension2D,
		Format:        convertTextureFormat(desc.Format),
		Usage:         types.TextureUsageCopySrc | types.TextureUsageCopyDst | types.TextureUsageStorageBinding,
	}

	tex, err := a.backend.CreateTexture(a.device, td)
	if err != nil {
		return nil, fmt.Errorf("gogpu: failed to create texture: %w", err)
	}
	a.textureCount.Add(1)

	return &Texture{
		alloc:     a,
		tex:       tex,
		label:     desc.Name,
		sizeBytes: uint64(desc.Width) * uint64(desc.Height) * uint64(depth) * uint64(samples) * bytesPerPixel(desc.Format),
	}, nil
}

// CreateBuffer allocates a buffer through the gogpu backend.
func (a *Allocator) CreateBuffer(desc framegraph.BufferDesc) (framegraph.GraphicsResource, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("gogpu: buffer size must be positive")
	}

	bd := &types.BufferDescriptor{
		Label: desc.Name,
		Size:  desc.Size,
		Usage: convertBufferUsage(desc.Usage),
	}

	buf, err := a.backend.CreateBuffer(a.device, bd)
	if err != nil {
		return nil, fmt.Errorf("gogpu: failed to create buffer: %w", err)
	}
	a.bufferCount.Add(1)

	return &Buffer{
		alloc:     a,
		buf:       buf,
		label:     desc.Name,
		sizeBytes: desc.Size,
	}, nil
}

// CreateAccelerationStructure is not exposed by gpu.Backend.
func (a *Allocator) CreateAccelerationStructure(desc framegraph.AccelStructDesc) (framegraph.GraphicsResource, error) {
	return nil, fmt.Errorf("%w: acceleration structures (gpu.Backend)", framegraph.ErrNotSupported)
}

// Close releases allocator state. Backend and device stay with the host.
func (a *Allocator) Close() {}

// Ensure Allocator implements framegraph.Allocator.
var _ framegraph.Allocator = (*Allocator)(nil)

// Texture is a gogpu-backed graphics resource.
type Texture struct {
	alloc     *Allocator
	tex       types.Texture
	label     string
	sizeBytes uint64
	released  atomic.Bool
}

func (t *Texture) Label() string         { return t.label }
func (t *Texture) SetLabel(label string) { t.label = label }
func (t *Texture) SizeBytes() uint64     { return t.sizeBytes }

// Release returns the texture to the backend. Idempotent.
func (t *Texture) Release() {
	if t.released.Swap(true) {
		return
	}
	t.alloc.backend.ReleaseTexture(t.tex)
	t.alloc.textureCount.Add(-1)
}

// Buffer is a gogpu-backed graphics resource.
type Buffer struct {
	alloc     *Allocator
	buf       types.Buffer
	label     string
	sizeBytes uint64
	released  atomic.Bool
}

func (b *Buffer) Label() string         { return b.label }
func (b *Buffer) SetLabel(label string) { b.label = label }
func (b *Buffer) SizeBytes() uint64     { return b.sizeBytes }

// Release returns the buffer to the backend. Idempotent.
func (b *Buffer) Release() {
	if b.released.Swap(true) {
		return
	}
	b.alloc.backend.ReleaseBuffer(b.buf)
	b.alloc.bufferCount.Add(-1)
}

// convertTextureFormat maps a gputypes format to the gogpu types format.
// gpu.Backend supports the two 8-bit swizzles; everything else falls
// back to RGBA8Unorm.
func convertTextureFormat(format gputypes.TextureFormat) types.TextureFormat {
	switch format {
	case gputypes.TextureFormatRGBA8Unorm:
		return types.TextureFormatRGBA8Unorm
	case gputypes.TextureFormatBGRA8Unorm:
		return types.TextureFormatBGRA8Unorm
	default:
		return types.TextureFormatRGBA8Unorm
	}
}

// convertBufferUsage maps gputypes buffer usage flags to gogpu flags.
func convertBufferUsage(usage gputypes.BufferUsage) types.BufferUsage {
	var result types.BufferUsage
	if usage&gputypes.BufferUsageMapRead != 0 {
		result |= types.BufferUsageMapRead
	}
	if usage&gputypes.BufferUsageMapWrite != 0 {
		result |= types.BufferUsageMapWrite
	}
	if usage&gputypes.BufferUsageCopySrc != 0 {
		result |= types.BufferUsageCopySrc
	}
	if usage&gputypes.BufferUsageCopyDst != 0 {
		result |= types.BufferUsageCopyDst
	}
	if usage&gputypes.BufferUsageVertex != 0 {
		result |= types.BufferUsageVertex
	}
	if usage&gputypes.BufferUsageUniform != 0 {
		result |= types.BufferUsageUniform
	}
	if usage&gputypes.BufferUsageStorage != 0 {
		result |= types.BufferUsageStorage
	}
	return result
}

// bytesPerPixel returns the pixel size for pooled-size estimates.
func bytesPerPixel(format gputypes.TextureFormat) uint64 {
	switch format {
	case gputypes.TextureFormatR8Unorm:
		return 1
	default:
		return 4
	}
}
