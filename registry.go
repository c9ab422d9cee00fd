package framegraph

import (
	"fmt"
	"sync"
)

// table holds the dense per-kind record storage. Slot 0 is reserved for
// the null handle. Shared records occupy slots 1..sharedCount and persist
// across frames (holes left by released shared resources are reused);
// per-frame records follow and are recycled on every NewFrame.
type table[D Descriptor] struct {
	kind        ResourceKind
	recs        []*Record[D]
	sharedCount int

	free   sync.Pool
	pool   Pool
	create func(D) (GraphicsResource, error)
}

func (t *table[D]) init(kind ResourceKind, pool Pool, create func(D) (GraphicsResource, error)) {
	t.kind = kind
	t.pool = pool
	t.create = create
	t.recs = []*Record[D]{nil}
	t.free.New = func() any { return &Record[D]{} }
}

// obtain returns a reset record bound to the table's pool and allocator.
func (t *table[D]) obtain() *Record[D] {
	rec := t.free.Get().(*Record[D])
	rec.Reset(t.pool)
	rec.create = t.create
	return rec
}

// add appends a per-frame record and returns its index.
func (t *table[D]) add(rec *Record[D]) int {
	idx := len(t.recs)
	if idx > MaxResourceIndex {
		panic(fmt.Errorf("%w: %s table is full", ErrIndexOverflow, t.kind))
	}
	t.recs = append(t.recs, rec)
	return idx
}

// addShared places a shared record in the persistent region, reusing a
// hole if one exists. Shared resources must be registered before any
// per-frame resource of the same kind exists in the current frame.
func (t *table[D]) addShared(rec *Record[D]) (int, error) {
	for i := 1; i <= t.sharedCount; i++ {
		if t.recs[i] == nil {
			t.recs[i] = rec
			return i, nil
		}
	}
	if len(t.recs) != t.sharedCount+1 {
		return 0, fmt.Errorf("%w: %s table already holds frame resources", ErrSharedSlotBusy, t.kind)
	}
	idx := t.add(rec)
	t.sharedCount = idx
	return idx, nil
}

// get returns the record at index i, or nil for the null slot, holes,
// and out-of-range indices left behind by stale handles.
func (t *table[D]) get(i int) *Record[D] {
	if i <= 0 || i >= len(t.recs) {
		return nil
	}
	return t.recs[i]
}

// beginFrame recycles every per-frame record and truncates the table
// back to the persistent region.
func (t *table[D]) beginFrame() {
	for i := t.sharedCount + 1; i < len(t.recs); i++ {
		rec := t.recs[i]
		rec.Reset(nil)
		t.recs[i] = nil
		t.free.Put(rec)
	}
	t.recs = t.recs[:t.sharedCount+1]
}

// releaseShared releases the backing object of the shared record at i and
// leaves a reusable hole.
func (t *table[D]) releaseShared(i int) {
	rec := t.recs[i]
	if res := rec.GraphicsResource(); res != nil {
		res.Release()
	}
	rec.Reset(nil)
	t.recs[i] = nil
	t.free.Put(rec)
}

// Registry owns the resource records of one frame graph: it mints
// handles, recycles records across frames, and binds records to the
// resource pool and native allocator. All access is single-threaded by
// the declaration contract.
type Registry struct {
	ctx   *ExecutionContext
	alloc Allocator
	pool  Pool

	frameIndex int

	textures table[TextureDesc]
	buffers  table[BufferDesc]
	accels   table[AccelStructDesc]
}

// RegistryConfig holds construction options for a Registry.
// Zero-value fields select the defaults: a NullAllocator, a fresh
// MemoryPool, and a fresh ExecutionContext.
type RegistryConfig struct {
	// Allocator creates native objects on pool misses.
	Allocator Allocator

	// Pool caches native objects across frames.
	Pool Pool

	// Context supplies the validity epoch. Pass a shared context when
	// several registries must invalidate together.
	Context *ExecutionContext
}

// NewRegistry creates a registry with the given configuration.
func NewRegistry(cfg RegistryConfig) *Registry {
	if cfg.Allocator == nil {
		cfg.Allocator = NullAllocator{}
	}
	if cfg.Pool == nil {
		cfg.Pool = NewMemoryPool()
	}
	if cfg.Context == nil {
		cfg.Context = NewExecutionContext()
	}

	r := &Registry{
		ctx:   cfg.Context,
		alloc: cfg.Allocator,
		pool:  cfg.Pool,
	}
	r.textures.init(KindTexture, cfg.Pool, cfg.Allocator.CreateTexture)
	r.buffers.init(KindBuffer, cfg.Pool, cfg.Allocator.CreateBuffer)
	r.accels.init(KindAccelerationStructure, cfg.Pool, cfg.Allocator.CreateAccelerationStructure)
	return r
}

// Context returns the validity epoch context the registry stamps into
// handles.
func (r *Registry) Context() *ExecutionContext { return r.ctx }

// Pool returns the resource pool records are bound to.
func (r *Registry) Pool() Pool { return r.pool }

// Allocator returns the native allocator backing pool misses.
func (r *Registry) Allocator() Allocator { return r.alloc }

// FrameIndex returns the frame index of the execution in progress.
func (r *Registry) FrameIndex() int { return r.frameIndex }

// NewFrame starts a new execution: it recycles all per-frame records and
// advances the validity epoch, invalidating every non-shared handle from
// the previous execution. The previous execution must have fully
// completed; epoch rotation must not race in-flight validity checks.
func (r *Registry) NewFrame(frameIndex int) {
	r.frameIndex = frameIndex
	r.textures.beginFrame()
	r.buffers.beginFrame()
	r.accels.beginFrame()
	r.ctx.AdvanceEpoch(uint32(frameIndex))
}

// CreateTexture registers a logical texture for this frame and returns
// its handle. No native allocation happens here; the compiler triggers
// that later through CreateResource.
func (r *Registry) CreateTexture(desc TextureDesc) Handle {
	rec := r.textures.obtain()
	rec.desc = desc
	rec.validDesc = true
	rec.fallbackRequested = desc.FallbackToBlack
	idx := r.textures.add(rec)
	return newHandle(uint32(idx), KindTexture, r.ctx.Current(), 0)
}

// CreateBuffer registers a logical buffer for this frame.
func (r *Registry) CreateBuffer(desc BufferDesc) Handle {
	rec := r.buffers.obtain()
	rec.desc = desc
	rec.validDesc = true
	idx := r.buffers.add(rec)
	return newHandle(uint32(idx), KindBuffer, r.ctx.Current(), 0)
}

// CreateAccelerationStructure registers a logical acceleration structure
// for this frame.
func (r *Registry) CreateAccelerationStructure(desc AccelStructDesc) Handle {
	rec := r.accels.obtain()
	rec.desc = desc
	rec.validDesc = true
	idx := r.accels.add(rec)
	return newHandle(uint32(idx), KindAccelerationStructure, r.ctx.Current(), 0)
}

// createTransientTexture registers a texture whose lifetime is scoped to
// the pass at passIndex. Called by the builder.
func (r *Registry) createTransientTexture(desc TextureDesc, passIndex int) Handle {
	h := r.CreateTexture(desc)
	r.textures.get(h.Index()).transientPassIndex = passIndex
	return h
}

// createTransientBuffer registers a buffer scoped to the pass at
// passIndex. Called by the builder.
func (r *Registry) createTransientBuffer(desc BufferDesc, passIndex int) Handle {
	h := r.CreateBuffer(desc)
	r.buffers.get(h.Index()).transientPassIndex = passIndex
	return h
}

// ImportTexture registers an externally owned texture. Imported records
// carry no descriptor; the fallback and pooling paths skip them.
func (r *Registry) ImportTexture(res GraphicsResource) Handle {
	rec := r.textures.obtain()
	rec.imported = true
	rec.resource = res
	idx := r.textures.add(rec)
	return newHandle(uint32(idx), KindTexture, r.ctx.Current(), 0)
}

// ImportTextureWithDesc registers an externally owned texture together
// with a descriptor describing it, which lets the imported resource
// participate in descriptor-matched paths such as fallback lookup.
func (r *Registry) ImportTextureWithDesc(res GraphicsResource, desc TextureDesc) Handle {
	h := r.ImportTexture(res)
	rec := r.textures.get(h.Index())
	rec.desc = desc
	rec.validDesc = true
	return h
}

// CreateSharedTexture registers a texture whose backing object persists
// across executions. Its handle carries the reserved shared validity tag
// and stays valid when the epoch rotates. With explicitRelease the
// resource is only reclaimed by ReleaseSharedTexture; otherwise
// ReleaseStaleSharedResources may age it out.
//
// Shared resources must be created before the frame's per-frame
// resources, mirroring their persistent slots at the front of the table.
func (r *Registry) CreateSharedTexture(desc TextureDesc, explicitRelease bool) (Handle, error) {
	rec := r.textures.obtain()
	rec.desc = desc
	rec.validDesc = true
	rec.shared = true
	rec.explicitRelease = explicitRelease
	rec.fallbackRequested = desc.FallbackToBlack
	rec.lastFrameUsed = r.frameIndex
	idx, err := r.textures.addShared(rec)
	if err != nil {
		rec.Reset(nil)
		r.textures.free.Put(rec)
		return Null, err
	}
	return newHandle(uint32(idx), KindTexture, SharedValidityTag, 0), nil
}

// CreateSharedBuffer registers a buffer whose backing object persists
// across executions. See CreateSharedTexture.
func (r *Registry) CreateSharedBuffer(desc BufferDesc, explicitRelease bool) (Handle, error) {
	rec := r.buffers.obtain()
	rec.desc = desc
	rec.validDesc = true
	rec.shared = true
	rec.explicitRelease = explicitRelease
	rec.lastFrameUsed = r.frameIndex
	idx, err := r.buffers.addShared(rec)
	if err != nil {
		rec.Reset(nil)
		r.buffers.free.Put(rec)
		return Null, err
	}
	return newHandle(uint32(idx), KindBuffer, SharedValidityTag, 0), nil
}

// ReleaseSharedTexture destroys the backing object of a shared texture
// and frees its persistent slot for reuse.
func (r *Registry) ReleaseSharedTexture(h Handle) error {
	rec := r.Texture(h)
	if rec == nil || !rec.shared {
		return fmt.Errorf("%w: %v is not a shared texture", ErrInvalidHandle, h)
	}
	r.textures.releaseShared(h.Index())
	return nil
}

// UpdateSharedResourceLastFrame stamps a shared resource as used in the
// current frame, deferring its aging. Executors call this when a shared
// resource is touched outside the pooled release path.
func (r *Registry) UpdateSharedResourceLastFrame(h Handle) error {
	switch h.Kind() {
	case KindTexture:
		if rec := r.Texture(h); rec != nil && rec.shared {
			rec.lastFrameUsed = r.frameIndex
			return nil
		}
	case KindBuffer:
		if rec := r.Buffer(h); rec != nil && rec.shared {
			rec.lastFrameUsed = r.frameIndex
			return nil
		}
	}
	return fmt.Errorf("%w: %v is not a shared resource", ErrInvalidHandle, h)
}

// ReleaseStaleSharedResources reclaims shared resources that have not
// been used for more than maxAge frames. Resources registered with
// explicitRelease are skipped. Returns the number reclaimed.
func (r *Registry) ReleaseStaleSharedResources(maxAge int) int {
	released := 0
	for i := 1; i <= r.textures.sharedCount; i++ {
		rec := r.textures.recs[i]
		if rec == nil || rec.explicitRelease || rec.lastFrameUsed < 0 {
			continue
		}
		if r.frameIndex-rec.lastFrameUsed > maxAge {
			Logger().Debug("framegraph: releasing stale shared texture",
				"label", rec.desc.Label(), "lastFrameUsed", rec.lastFrameUsed)
			r.textures.releaseShared(i)
			released++
		}
	}
	for i := 1; i <= r.buffers.sharedCount; i++ {
		rec := r.buffers.recs[i]
		if rec == nil || rec.explicitRelease || rec.lastFrameUsed < 0 {
			continue
		}
		if r.frameIndex-rec.lastFrameUsed > maxAge {
			r.buffers.releaseShared(i)
			released++
		}
	}
	return released
}

// Texture returns the record behind a texture handle, or nil if the
// handle has the wrong kind or refers to no live record.
func (r *Registry) Texture(h Handle) *Record[TextureDesc] {
	if h.Kind() != KindTexture {
		return nil
	}
	return r.textures.get(h.Index())
}

// Buffer returns the record behind a buffer handle, or nil.
func (r *Registry) Buffer(h Handle) *Record[BufferDesc] {
	if h.Kind() != KindBuffer {
		return nil
	}
	return r.buffers.get(h.Index())
}

// AccelerationStructure returns the record behind an acceleration
// structure handle, or nil.
func (r *Registry) AccelerationStructure(h Handle) *Record[AccelStructDesc] {
	if h.Kind() != KindAccelerationStructure {
		return nil
	}
	return r.accels.get(h.Index())
}

// ValidHandle reports whether h can be dereferenced right now: non-null,
// epoch-valid, and backed by a live record.
func (r *Registry) ValidHandle(h Handle) bool {
	if h.IsNull() || !h.Valid(r.ctx) {
		return false
	}
	switch h.Kind() {
	case KindTexture:
		return r.textures.get(h.Index()) != nil
	case KindBuffer:
		return r.buffers.get(h.Index()) != nil
	case KindAccelerationStructure:
		return r.accels.get(h.Index()) != nil
	default:
		return false
	}
}

// CreateResource binds a pooled or freshly allocated native object to the
// record behind h. Called by the downstream compiler when a resource's
// first writer is scheduled.
func (r *Registry) CreateResource(h Handle) error {
	switch h.Kind() {
	case KindTexture:
		if rec := r.Texture(h); rec != nil {
			return rec.CreatePooledGraphicsResource()
		}
	case KindBuffer:
		if rec := r.Buffer(h); rec != nil {
			return rec.CreatePooledGraphicsResource()
		}
	case KindAccelerationStructure:
		if rec := r.AccelerationStructure(h); rec != nil {
			return rec.CreatePooledGraphicsResource()
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidHandle, h)
}

// ReleaseResource returns the native object behind h to the pool (or
// stamps shared resources). Called by the compiler when a resource's
// last reader retires.
func (r *Registry) ReleaseResource(h Handle) error {
	switch h.Kind() {
	case KindTexture:
		if rec := r.Texture(h); rec != nil {
			return rec.ReleasePooledGraphicsResource(r.frameIndex)
		}
	case KindBuffer:
		if rec := r.Buffer(h); rec != nil {
			return rec.ReleasePooledGraphicsResource(r.frameIndex)
		}
	case KindAccelerationStructure:
		if rec := r.AccelerationStructure(h); rec != nil {
			return rec.ReleasePooledGraphicsResource(r.frameIndex)
		}
	}
	return fmt.Errorf("%w: %v", ErrInvalidHandle, h)
}

// transientPassIndex returns the transient owner of h, or -1.
// Assumes h has already been validated.
func (r *Registry) transientPassIndex(h Handle) int {
	switch h.Kind() {
	case KindTexture:
		if rec := r.textures.get(h.Index()); rec != nil {
			return rec.transientPassIndex
		}
	case KindBuffer:
		if rec := r.buffers.get(h.Index()); rec != nil {
			return rec.transientPassIndex
		}
	case KindAccelerationStructure:
		if rec := r.accels.get(h.Index()); rec != nil {
			return rec.transientPassIndex
		}
	}
	return -1
}

// resourceLabel returns the debug label behind h, for diagnostics.
func (r *Registry) resourceLabel(h Handle) string {
	switch h.Kind() {
	case KindTexture:
		if rec := r.textures.get(h.Index()); rec != nil {
			return rec.desc.Label()
		}
	case KindBuffer:
		if rec := r.buffers.get(h.Index()); rec != nil {
			return rec.desc.Label()
		}
	case KindAccelerationStructure:
		if rec := r.accels.get(h.Index()); rec != nil {
			return rec.desc.Label()
		}
	}
	return ""
}
