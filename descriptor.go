package framegraph

import "github.com/gogpu/gputypes"

// Descriptor is implemented by the per-kind descriptor value types. The
// hash keys the resource pool: two descriptors with the same hash are
// interchangeable for native-object reuse. Labels are debug metadata and
// never participate in the hash, which is what lets a pooled object be
// relabeled when a different logical resource picks it up.
type Descriptor interface {
	// Label returns the debug name of the resource.
	Label() string

	// Hash returns the pool key covering every allocation-relevant field.
	Hash() uint64

	// Kind returns the resource kind the descriptor describes.
	Kind() ResourceKind
}

// ColorBlack is the clear color forced onto fallback reads.
var ColorBlack = gputypes.Color{R: 0, G: 0, B: 0, A: 1}

// TextureDesc describes a frame-graph texture.
type TextureDesc struct {
	// Name is an optional debug label. Not part of the pool key.
	Name string

	// Width and Height are the texture dimensions in pixels.
	Width  uint32
	Height uint32

	// Depth is the depth for 3D textures, or the array layer count.
	// Use 1 for regular 2D textures.
	Depth uint32

	// MipLevelCount is the number of mipmap levels. Use 1 for no mipmaps.
	MipLevelCount uint32

	// SampleCount is the number of samples for multisampling.
	// Use 1 for no multisampling.
	SampleCount uint32

	// Dimension is the texture dimensionality.
	Dimension gputypes.TextureDimension

	// Format is the texture pixel format.
	Format gputypes.TextureFormat

	// Usage specifies how the texture will be used.
	Usage gputypes.TextureUsage

	// Clear requests a clear on first use. ClearColor is the value.
	// Reading a never-written fallback resource sets Clear as a side
	// effect; see Builder.ReadTexture.
	Clear      bool
	ClearColor gputypes.Color

	// FallbackToBlack requests black-texture substitution when the
	// resource is read before anything has written it.
	FallbackToBlack bool
}

// DefaultTextureDesc returns a TextureDesc with sensible defaults.
// Only Width, Height, and Format need to be set.
func DefaultTextureDesc(width, height uint32, format gputypes.TextureFormat) TextureDesc {
	return TextureDesc{
		Width:         width,
		Height:        height,
		Depth:         1,
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        format,
		Usage:         gputypes.TextureUsageTextureBinding | gputypes.TextureUsageRenderAttachment,
	}
}

// Label returns the debug name.
func (d TextureDesc) Label() string { return d.Name }

// Kind returns KindTexture.
func (d TextureDesc) Kind() ResourceKind { return KindTexture }

// Hash returns the pool key. It covers the fields that determine native
// allocation: dimensions, mips, samples, dimensionality, format, and
// usage. Name, clear behavior, and the fallback flag are per-use metadata
// and excluded, so logical resources that differ only in those can share
// one pooled object.
func (d TextureDesc) Hash() uint64 {
	h := newDescHash(KindTexture)
	h.u32(d.Width)
	h.u32(d.Height)
	h.u32(d.Depth)
	h.u32(d.MipLevelCount)
	h.u32(d.SampleCount)
	h.u32(uint32(d.Dimension))
	h.u32(uint32(d.Format))
	h.u32(uint32(d.Usage))
	return h.sum()
}

// BufferDesc describes a frame-graph buffer.
type BufferDesc struct {
	// Name is an optional debug label. Not part of the pool key.
	Name string

	// Size is the buffer size in bytes.
	Size uint64

	// Stride is the element stride in bytes for structured use, or 0.
	Stride uint32

	// Usage specifies how the buffer will be used.
	Usage gputypes.BufferUsage
}

// Label returns the debug name.
func (d BufferDesc) Label() string { return d.Name }

// Kind returns KindBuffer.
func (d BufferDesc) Kind() ResourceKind { return KindBuffer }

// Hash returns the pool key covering size, stride, and usage.
func (d BufferDesc) Hash() uint64 {
	h := newDescHash(KindBuffer)
	h.u64(d.Size)
	h.u32(d.Stride)
	h.u32(uint32(d.Usage))
	return h.sum()
}

// AccelStructDesc describes a ray-tracing acceleration structure.
type AccelStructDesc struct {
	// Name is an optional debug label. Not part of the pool key.
	Name string

	// MaxInstanceCount bounds the number of instances the structure holds.
	MaxInstanceCount uint32

	// PreferFastBuild trades trace performance for build speed.
	PreferFastBuild bool
}

// Label returns the debug name.
func (d AccelStructDesc) Label() string { return d.Name }

// Kind returns KindAccelerationStructure.
func (d AccelStructDesc) Kind() ResourceKind { return KindAccelerationStructure }

// Hash returns the pool key covering capacity and build preference.
func (d AccelStructDesc) Hash() uint64 {
	h := newDescHash(KindAccelerationStructure)
	h.u32(d.MaxInstanceCount)
	if d.PreferFastBuild {
		h.u32(1)
	} else {
		h.u32(0)
	}
	return h.sum()
}

// descHash accumulates descriptor fields into an FNV-1a pool key.
// The kind is mixed in first so a texture and a buffer can never collide
// on a key even if their numeric fields happen to line up.
type descHash struct {
	h uint64
}

const (
	fnvOffset64 = 14695981039346656037
	fnvPrime64  = 1099511628211
)

func newDescHash(kind ResourceKind) descHash {
	d := descHash{h: fnvOffset64}
	d.u32(uint32(kind))
	return d
}

func (d *descHash) u32(v uint32) {
	for i := 0; i < 4; i++ {
		d.h ^= uint64(byte(v >> (8 * i)))
		d.h *= fnvPrime64
	}
}

func (d *descHash) u64(v uint64) {
	for i := 0; i < 8; i++ {
		d.h ^= uint64(byte(v >> (8 * i)))
		d.h *= fnvPrime64
	}
}

func (d *descHash) sum() uint64 { return d.h }
