package framegraph

import (
	"fmt"
	"sync/atomic"
)

// GraphicsResource is an opaque backing native object (a GPU texture,
// buffer, or acceleration structure) bound to a logical resource once it
// is created. Implementations live in the backend packages; the core only
// relabels, sizes, and releases them.
type GraphicsResource interface {
	// Label returns the current debug label.
	Label() string

	// SetLabel updates the debug label. Called when a pooled object is
	// reused by a different logical resource.
	SetLabel(label string)

	// SizeBytes returns the native allocation size, or 0 if unknown.
	SizeBytes() uint64

	// Release destroys the native object. Idempotent.
	Release()
}

// Allocator creates backing native objects for logical resources on pool
// misses. Implementations must be cheap to call repeatedly; pooling and
// lifetime decisions happen above this interface.
type Allocator interface {
	// Name returns the allocator identifier (e.g. "null", "native").
	Name() string

	// CreateTexture allocates a native texture for the descriptor.
	CreateTexture(desc TextureDesc) (GraphicsResource, error)

	// CreateBuffer allocates a native buffer for the descriptor.
	CreateBuffer(desc BufferDesc) (GraphicsResource, error)

	// CreateAccelerationStructure allocates a native acceleration
	// structure for the descriptor. Allocators for APIs without
	// ray-tracing support return ErrNotSupported.
	CreateAccelerationStructure(desc AccelStructDesc) (GraphicsResource, error)

	// Close releases allocator-held state. Pooled objects are released
	// by the pool, not here.
	Close()
}

// Record tracks the mutable per-frame state of one logical resource.
// Records are recycled across frames from an object pool; Reset is the
// single way logical state is destroyed, and handles minted for a
// previous occupant of the record fail validity checks instead of
// observing the recycled state.
//
// The type parameter selects the descriptor kind at compile time, so the
// three resource kinds share one state machine without dynamic dispatch
// on the hot declaration path.
type Record[D Descriptor] struct {
	desc      D
	validDesc bool

	imported          bool
	shared            bool
	explicitRelease   bool
	fallbackRequested bool

	writeCount int
	readCount  int
	version    int32

	// transientPassIndex is the only pass allowed to touch a transient
	// resource, or -1.
	transientPassIndex int

	// lastFrameUsed ages shared resources across executions.
	lastFrameUsed int

	poolHash uint64
	resource GraphicsResource

	pool   Pool
	create func(D) (GraphicsResource, error)
}

// Reset restores the record to the just-allocated state. Passing a
// non-nil pool rebinds the record to it; passing nil keeps the current
// binding. Reset is idempotent and is the only way logical state is
// destroyed — the backing object, if any, must have been released first.
func (r *Record[D]) Reset(pool Pool) {
	var zero D
	r.desc = zero
	r.validDesc = false
	r.imported = false
	r.shared = false
	r.explicitRelease = false
	r.fallbackRequested = false
	r.writeCount = 0
	r.readCount = 0
	r.version = 0
	r.transientPassIndex = -1
	r.lastFrameUsed = -1
	r.poolHash = 0
	r.resource = nil
	if pool != nil {
		r.pool = pool
	}
}

// Desc returns the descriptor. Meaningful only when HasDesc reports true.
func (r *Record[D]) Desc() D { return r.desc }

// HasDesc reports whether the descriptor is meaningful. Imported
// resources may omit it.
func (r *Record[D]) HasDesc() bool { return r.validDesc }

// Imported reports whether the backing object is externally owned.
func (r *Record[D]) Imported() bool { return r.imported }

// Shared reports whether the resource persists across executions.
func (r *Record[D]) Shared() bool { return r.shared }

// ExplicitRelease reports whether a shared resource is released only by
// an explicit call rather than by frame aging.
func (r *Record[D]) ExplicitRelease() bool { return r.explicitRelease }

// TransientPassIndex returns the owning pass of a transient resource,
// or -1 if the resource is not transient.
func (r *Record[D]) TransientPassIndex() int { return r.transientPassIndex }

// LastFrameUsed returns the frame index a shared resource was last
// touched, or -1.
func (r *Record[D]) LastFrameUsed() int { return r.lastFrameUsed }

// IsCreated reports whether a backing native object is currently bound.
func (r *Record[D]) IsCreated() bool { return r.resource != nil }

// GraphicsResource returns the bound backing object, or nil.
func (r *Record[D]) GraphicsResource() GraphicsResource { return r.resource }

// WriteCount returns how many declarations have written the resource.
func (r *Record[D]) WriteCount() int { return r.writeCount }

// ReadCount returns how many declarations have read the resource.
func (r *Record[D]) ReadCount() int { return r.readCount }

// IncrementWriteCount records one write declaration.
func (r *Record[D]) IncrementWriteCount() { r.writeCount++ }

// IncrementReadCount records one read declaration.
func (r *Record[D]) IncrementReadCount() { r.readCount++ }

// Version returns the current content version of the resource.
func (r *Record[D]) Version() int32 { return r.version }

// NewVersion bumps and returns the content version. Called for every
// write declaration that changes the resource's logical content.
func (r *Record[D]) NewVersion() int32 {
	r.version++
	return r.version
}

// NeedsFallBack reports whether reading this resource must be redirected
// to a black fallback: a fallback was requested and nothing has ever
// written the resource.
func (r *Record[D]) NeedsFallBack() bool {
	return r.fallbackRequested && r.writeCount == 0
}

// CreatePooledGraphicsResource binds a backing native object to the
// record, preferring a pooled object with a matching descriptor hash over
// a fresh allocation. On a pool hit the reused object is relabeled to
// this logical resource; on a miss the allocator creates a new one.
// Either way the allocation is registered with the pool for this frame's
// bookkeeping.
//
// Calling this with an object already bound is a pass-authoring mistake
// (typically the same resource written from two creation points in one
// pass) and fails with ErrAlreadyCreated.
func (r *Record[D]) CreatePooledGraphicsResource() error {
	if r.resource != nil {
		return fmt.Errorf("%w: %q", ErrAlreadyCreated, r.desc.Label())
	}
	if !r.validDesc {
		return fmt.Errorf("%w: %s", ErrNoDescriptor, r.desc.Kind())
	}

	r.poolHash = r.desc.Hash()
	if res, ok := r.pool.TryGetResource(r.poolHash); ok {
		res.SetLabel(r.desc.Label())
		r.resource = res
	} else {
		res, err := r.create(r.desc)
		if err != nil {
			return fmt.Errorf("framegraph: allocate %s %q: %w", r.desc.Kind(), r.desc.Label(), err)
		}
		r.resource = res
	}

	r.pool.RegisterFrameAllocation(r.poolHash, r.resource)
	return nil
}

// ReleasePooledGraphicsResource unbinds the backing object at the end of
// the resource's lifetime. Non-shared resources return the object to the
// pool under the hash cached at creation, unregister the frame
// allocation, and reset the record for recycling. Shared resources bypass
// the pool entirely: their object persists across frames, and the record
// only stamps lastFrameUsed.
//
// Releasing a record with no backing object fails with ErrNotCreated —
// a resource that was declared but never created should have been culled
// by the compiler instead of released.
func (r *Record[D]) ReleasePooledGraphicsResource(frameIndex int) error {
	if r.resource == nil {
		return fmt.Errorf("%w: %s %q", ErrNotCreated, r.desc.Kind(), r.desc.Label())
	}
	if r.shared {
		r.lastFrameUsed = frameIndex
		return nil
	}

	r.pool.ReleaseResource(r.poolHash, r.resource, frameIndex)
	r.pool.UnregisterFrameAllocation(r.poolHash, r.resource)
	r.Reset(nil)
	return nil
}

// nullResource is an inert backing object used by NullAllocator.
type nullResource struct {
	label     string
	sizeBytes uint64
	released  atomic.Bool
}

func (n *nullResource) Label() string         { return n.label }
func (n *nullResource) SetLabel(label string) { n.label = label }
func (n *nullResource) SizeBytes() uint64     { return n.sizeBytes }
func (n *nullResource) Release()              { n.released.Store(true) }

// NullAllocator is an Allocator that mints inert logical resources
// without touching any GPU API. It backs tests and CPU-only runs, the
// same role the null device fills in the render stack.
type NullAllocator struct{}

// Name returns "null".
func (NullAllocator) Name() string { return "null" }

// CreateTexture returns an inert logical texture.
func (NullAllocator) CreateTexture(desc TextureDesc) (GraphicsResource, error) {
	size := uint64(desc.Width) * uint64(desc.Height) * uint64(max(desc.Depth, 1)) * 4
	return &nullResource{label: desc.Name, sizeBytes: size}, nil
}

// CreateBuffer returns an inert logical buffer.
func (NullAllocator) CreateBuffer(desc BufferDesc) (GraphicsResource, error) {
	return &nullResource{label: desc.Name, sizeBytes: desc.Size}, nil
}

// CreateAccelerationStructure returns an inert logical structure.
func (NullAllocator) CreateAccelerationStructure(desc AccelStructDesc) (GraphicsResource, error) {
	return &nullResource{label: desc.Name}, nil
}

// Close is a no-op.
func (NullAllocator) Close() {}

// Ensure NullAllocator implements Allocator.
var _ Allocator = NullAllocator{}
