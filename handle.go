package framegraph

import "fmt"

// ResourceKind identifies the kind of resource a handle refers to.
type ResourceKind uint8

const (
	// KindTexture identifies render textures.
	KindTexture ResourceKind = iota

	// KindBuffer identifies graphics buffers.
	KindBuffer

	// KindAccelerationStructure identifies ray-tracing acceleration
	// structures.
	KindAccelerationStructure

	kindCount
)

// String returns a human-readable name for the kind.
func (k ResourceKind) String() string {
	switch k {
	case KindTexture:
		return "texture"
	case KindBuffer:
		return "buffer"
	case KindAccelerationStructure:
		return "acceleration-structure"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// MaxResourceIndex is the highest index a handle can carry. The index is
// packed into 16 bits, so one execution can hold at most 65535 live
// logical resources per kind (index 0 is the null handle).
const MaxResourceIndex = 0xFFFF

// Unversioned marks a handle that carries no version.
const Unversioned int32 = -1

// Handle identifies a logical frame-graph resource without owning it.
// The zero value is the canonical null handle.
//
// Handles are immutable: operations that "update" a handle, such as
// WithVersion, return a new value. Equality via Equal compares index,
// kind, and version; the validity tag is deliberately excluded so that a
// stale handle still compares equal to its fresh counterpart. Use Valid,
// never Equal, to decide whether a handle may be dereferenced.
type Handle struct {
	// packed holds the resource index in the low 16 bits and the validity
	// tag in the high 16 bits, so a validity check is one comparison on an
	// unpacked halfword.
	packed  uint32
	kind    ResourceKind
	version int32
}

// Null is the canonical null handle: index zero, all other fields zero.
var Null Handle

// newHandle packs index, kind, and validity tag into a handle.
// An index above MaxResourceIndex is a fatal precondition violation: it
// reflects the fixed 16-bit design budget, not a recoverable condition.
func newHandle(index uint32, kind ResourceKind, tag uint16, version int32) Handle {
	if index > MaxResourceIndex {
		panic(fmt.Errorf("%w: index %d", ErrIndexOverflow, index))
	}
	return Handle{
		packed:  index | uint32(tag)<<16,
		kind:    kind,
		version: version,
	}
}

// Index returns the resource table index the handle refers to.
func (h Handle) Index() int {
	return int(h.packed & 0xFFFF)
}

// Kind returns the resource kind the handle refers to.
func (h Handle) Kind() ResourceKind {
	return h.kind
}

// Version returns the handle's version, or Unversioned.
func (h Handle) Version() int32 {
	return h.version
}

// ValidityTag returns the packed per-execution validity tag.
// The tag is excluded from Equal; it exists only for Valid.
func (h Handle) ValidityTag() uint16 {
	return uint16(h.packed >> 16)
}

// IsNull reports whether the handle is the null handle. A handle with
// index zero must have every other field zeroed; the null handle is a
// single canonical value, never a family of them.
func (h Handle) IsNull() bool {
	if h.packed&0xFFFF != 0 {
		return false
	}
	if h.packed != 0 || h.kind != 0 || h.version != 0 {
		panic(fmt.Errorf("%w: null handle with nonzero fields %v", ErrInvalidHandle, h))
	}
	return true
}

// Equal reports whether two handles refer to the same logical resource at
// the same version. The validity tag does not participate: equality must
// not be used to infer validity.
func (h Handle) Equal(o Handle) bool {
	return h.packed&0xFFFF == o.packed&0xFFFF && h.kind == o.kind && h.version == o.version
}

// WithVersion returns a copy of the handle carrying version v.
// Index, kind, and validity tag are preserved.
func (h Handle) WithVersion(v int32) Handle {
	h.version = v
	return h
}

// Valid reports whether the handle may be dereferenced in the execution
// tracked by ctx: its tag must be nonzero and match either the current
// epoch or the reserved shared tag.
func (h Handle) Valid(ctx *ExecutionContext) bool {
	tag := uint16(h.packed >> 16)
	return tag != 0 && (tag == ctx.Current() || tag == SharedValidityTag)
}

// String returns a debug representation of the handle.
func (h Handle) String() string {
	if h.packed == 0 && h.kind == 0 && h.version == 0 {
		return "Handle[null]"
	}
	return fmt.Sprintf("Handle[%s #%d v%d tag=0x%04x]",
		h.kind, h.Index(), h.version, h.ValidityTag())
}
