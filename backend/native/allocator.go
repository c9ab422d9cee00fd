package native

import (
	"fmt"
	"sync/atomic"

	"github.com/gogpu/framegraph"
	"github.com/gogpu/wgpu/hal"
	types "github.com/gogpu/gputypes"
)

// Allocator implements framegraph.Allocator over a HAL device.
// It is a thin creation shim: every call allocates (or destroys) exactly
// one native object and attaches the bookkeeping the frame-graph pool
// needs (label, size).
//
// Thread Safety: creation calls are serialized by the frame-graph
// declaration contract; the counters are atomic so stats can be read
// from anywhere.
type Allocator struct {
	device hal.Device

	textureCount atomic.Int64
	bufferCount  atomic.Int64
}

// New creates an allocator wrapping the given HAL device.
func New(device hal.Device) *Allocator {
	return &Allocator{device: device}
}

// Name returns "native".
func (a *Allocator) Name() string { return "native" }

// TextureCount returns the number of live textures created here.
func (a *Allocator) TextureCount() int64 { return a.textureCount.Load() }

// BufferCount returns the number of live buffers created here.
func (a *Allocator) BufferCount() int64 { return a.bufferCount.Load() }

// CreateTexture allocates a native texture for the descriptor.
func (a *Allocator) CreateTexture(desc framegraph.TextureDesc) (framegraph.GraphicsResource, error) {
	if desc.Width == 0 || desc.Height == 0 {
		return nil, fmt.Errorf("native: texture dimensions must be positive")
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

	hd := &hal.TextureDescriptor{
		Label: desc.Name,
		Size: hal.Extent3D{
			Width:              desc.Width,
			Height:             desc.Height,
			DepthOrArrayLayers: depth,
		},
		MipLevelCount: mips,
		SampleCount:   samples,
		Dimension:     types.TextureDimension2D,
		Format:        convertTextureFormat(desc.Format),
		Usage:         convertTextureUsage(desc.Usage),
	}

	tex, err := a.device.CreateTexture(hd)
	if err != nil {
		return nil, fmt.Errorf("native: failed to create texture: %w", err)
	}
	a.textureCount.Add(1)

	return &Texture{
		alloc:     a,
		tex:       tex,
		label:     desc.Name,
		sizeBytes: textureSizeBytes(desc),
	}, nil
}

// CreateBuffer allocates a native buffer for the descriptor.
func (a *Allocator) CreateBuffer(desc framegraph.BufferDesc) (framegraph.GraphicsResource, error) {
	if desc.Size == 0 {
		return nil, fmt.Errorf("native: buffer size must be positive")
	}

	hd := &hal.BufferDescriptor{
		Label: desc.Name,
		Size:  desc.Size,
		Usage: convertBufferUsage(desc.Usage),
	}

	buf, err := a.device.CreateBuffer(hd)
	if err != nil {
		return nil, fmt.Errorf("native: failed to create buffer: %w", err)
	}
	a.bufferCount.Add(1)

	return &Buffer{
		alloc:     a,
		buf:       buf,
		label:     desc.Name,
		sizeBytes: desc.Size,
	}, nil
}

// CreateAccelerationStructure is not supported by the HAL.
func (a *Allocator) CreateAccelerationStructure(desc framegraph.AccelStructDesc) (framegraph.GraphicsResource, error) {
	return nil, fmt.Errorf("%w: acceleration structures (HAL)", framegraph.ErrNotSupported)
}

// Close releases allocator state. Native objects created here are owned
// by the frame-graph pool and released through their own Release.
func (a *Allocator) Close() {}

// Ensure Allocator implements framegraph.Allocator.
var _ framegraph.Allocator = (*Allocator)(nil)

// Texture is a HAL-backed graphics resource.
type Texture struct {
	alloc     *Allocator
	tex       hal.Texture
	label     string
	sizeBytes uint64
	released  atomic.Bool
}

// Label returns the current debug label.
func (t *Texture) Label() string { return t.label }

// SetLabel updates the debug label. The HAL has no relabel call, so the
// name only changes on the bookkeeping side.
func (t *Texture) SetLabel(label string) { t.label = label }

// SizeBytes returns the estimated native allocation size.
func (t *Texture) SizeBytes() uint64 { return t.sizeBytes }

// Release destroys the native texture. Idempotent.
func (t *Texture) Release() {
	if t.released.Swap(true) {
		return
	}
	t.alloc.device.DestroyTexture(t.tex)
	t.alloc.textureCount.Add(-1)
}

// Buffer is a HAL-backed graphics resource.
type Buffer struct {
	alloc     *Allocator
	buf       hal.Buffer
	label     string
	sizeBytes uint64
	released  atomic.Bool
}

// Label returns the current debug label.
func (b *Buffer) Label() string { return b.label }

// SetLabel updates the debug label.
func (b *Buffer) SetLabel(label string) { b.label = label }

// SizeBytes returns the native allocation size.
func (b *Buffer) SizeBytes() uint64 { return b.sizeBytes }

// Release destroys the native buffer. Idempotent.
func (b *Buffer) Release() {
	if b.released.Swap(true) {
		return
	}
	b.alloc.device.DestroyBuffer(b.buf)
	b.alloc.bufferCount.Add(-1)
}

// textureSizeBytes estimates the allocation size for stats and pooling
// heuristics. Assumes 4 bytes per pixel, which covers the formats the
// conversion below maps.
func textureSizeBytes(desc framegraph.TextureDesc) uint64 {
	depth := uint64(desc.Depth)
	if depth == 0 {
		depth = 1
	}
	samples := uint64(desc.SampleCount)
	if samples == 0 {
		samples = 1
	}
	return uint64(desc.Width) * uint64(desc.Height) * depth * samples * 4
}
