package framegraph

import "fmt"

// Builder is the short-lived authoring object bound to one in-flight
// pass. Declaration methods translate the pass's resource usage into
// counter updates on the records and entries in the pass's dependency
// lists, returning the (possibly rewritten) handle so call sites chain
// naturally.
//
// A builder has exactly two states: open and disposed. Dispose commits
// the pass to the graph and must run on every exit path:
//
//	b := g.AddPass("gbuffer")
//	defer b.Dispose()
//
// Any method call after Dispose, and any declaration that violates the
// handle or transient contracts, is a pass-authoring bug: the builder
// panics with a descriptive error rather than degrading silently.
// Contract checks other than the disposal guard are skipped when the
// graph was built with SkipValidation.
type Builder struct {
	graph    *Graph
	registry *Registry
	pass     *Pass
	disposed bool
}

// Dispose finalizes the pass and registers it with the graph, returning
// the graph to the recording state for the next pass. Dispose is
// idempotent; only the first call has an effect.
func (b *Builder) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	b.graph.commitPass(b.pass)
}

// ensureOpen guards every declaration against use after disposal.
func (b *Builder) ensureOpen() {
	if b.disposed {
		panic(fmt.Errorf("%w: pass %q", ErrBuilderDisposed, b.pass.name))
	}
}

// checkResource validates a handle before a mutating declaration. An
// invalid handle or a transient resource owned by another pass fails
// hard. A transient resource owned by this pass being declared as an
// explicit read or write is redundant but harmless, so it only warns;
// the color- and depth-buffer auto-binding paths pass warnRedundant
// false to skip that check.
func (b *Builder) checkResource(h Handle, warnRedundant bool) {
	if !b.graph.validation {
		return
	}
	if !b.registry.ValidHandle(h) {
		panic(fmt.Errorf("%w: %v in pass %q (index %d)",
			ErrInvalidHandle, h, b.pass.name, b.pass.index))
	}
	if owner := b.registry.transientPassIndex(h); owner >= 0 {
		if owner != b.pass.index {
			panic(fmt.Errorf("%w: %q is transient in pass %d, used by pass %d (%q)",
				ErrTransientCrossPass, b.registry.resourceLabel(h), owner, b.pass.index, b.pass.name))
		}
		if warnRedundant {
			Logger().Warn("framegraph: transient resource declared as explicit read/write",
				"pass", b.pass.name, "resource", b.registry.resourceLabel(h))
		}
	}
}

// UseColorBuffer binds the texture as render target index and counts it
// as written by the pass.
func (b *Builder) UseColorBuffer(h Handle, index int) Handle {
	b.ensureOpen()
	if index < 0 || index >= MaxColorTargets {
		panic(fmt.Errorf("framegraph: color target index %d out of range [0,%d)", index, MaxColorTargets))
	}
	b.checkResource(h, false)
	rec := b.registry.Texture(h)
	rec.IncrementWriteCount()
	h = h.WithVersion(rec.NewVersion())
	b.pass.setColorTarget(h, index)
	return h
}

// UseDepthBuffer binds the texture as the pass's depth buffer. Write
// access counts as a write declaration. Read access on a never-written
// fallback resource forces a write declaration first, so the depth
// buffer is allocated and cleared instead of tested against undefined
// memory.
func (b *Builder) UseDepthBuffer(h Handle, access DepthAccess) Handle {
	b.ensureOpen()
	b.checkResource(h, false)
	rec := b.registry.Texture(h)
	if access&DepthWrite != 0 {
		rec.IncrementWriteCount()
		h = h.WithVersion(rec.NewVersion())
	}
	if access&DepthRead != 0 && !rec.imported && rec.NeedsFallBack() {
		h = b.forceWrite(h, rec)
	}
	b.pass.depthTarget = h
	return h
}

// ReadTexture declares that the pass samples the texture.
//
// Reading a resource that requested fallback and has never been written
// would sample undefined memory, so the declaration is rewritten: the
// resource's descriptor is flagged to clear to black, and either a
// preallocated black fallback texture of matching descriptor replaces
// the handle on the read list, or — with no fallback registered — the
// read becomes a forced write so the resource is allocated and cleared.
// Note that this mutates the resource's descriptor from a read path.
func (b *Builder) ReadTexture(h Handle) Handle {
	b.ensureOpen()
	b.checkResource(h, true)
	rec := b.registry.Texture(h)
	rec.IncrementReadCount()

	if !rec.imported && rec.NeedsFallBack() {
		rec.desc.Clear = true
		rec.desc.ClearColor = ColorBlack
		if fb, ok := b.graph.fallbackFor(rec.desc); ok {
			h = fb
		} else {
			return b.forceWrite(h, rec)
		}
	}

	b.pass.reads = append(b.pass.reads, h)
	return h
}

// WriteTexture declares that the pass renders or computes into the
// texture, bumping its content version.
func (b *Builder) WriteTexture(h Handle) Handle {
	b.ensureOpen()
	b.checkResource(h, true)
	rec := b.registry.Texture(h)
	return b.writeTexture(h, rec)
}

// ReadWriteTexture declares combined read-modify-write access: the
// handle lands on both lists and the version is bumped once.
func (b *Builder) ReadWriteTexture(h Handle) Handle {
	b.ensureOpen()
	b.checkResource(h, true)
	rec := b.registry.Texture(h)
	rec.IncrementReadCount()
	h = b.writeTexture(h, rec)
	b.pass.reads = append(b.pass.reads, h)
	return h
}

// writeTexture is the shared write path: count, version, write list.
func (b *Builder) writeTexture(h Handle, rec *Record[TextureDesc]) Handle {
	rec.IncrementWriteCount()
	h = h.WithVersion(rec.NewVersion())
	b.pass.writes = append(b.pass.writes, h)
	return h
}

// forceWrite converts a fallback read into a write declaration so the
// resource gets allocated and cleared rather than read undefined.
func (b *Builder) forceWrite(h Handle, rec *Record[TextureDesc]) Handle {
	Logger().Warn("framegraph: read of never-written resource forced to write",
		"pass", b.pass.name, "resource", rec.desc.Label())
	return b.writeTexture(h, rec)
}

// ReadBuffer declares that the pass reads the buffer.
func (b *Builder) ReadBuffer(h Handle) Handle {
	b.ensureOpen()
	b.checkResource(h, true)
	b.registry.Buffer(h).IncrementReadCount()
	b.pass.reads = append(b.pass.reads, h)
	return h
}

// WriteBuffer declares that the pass writes the buffer, bumping its
// content version.
func (b *Builder) WriteBuffer(h Handle) Handle {
	b.ensureOpen()
	b.checkResource(h, true)
	rec := b.registry.Buffer(h)
	rec.IncrementWriteCount()
	h = h.WithVersion(rec.NewVersion())
	b.pass.writes = append(b.pass.writes, h)
	return h
}

// CreateTransientTexture creates a texture whose lifetime is scoped to
// this pass. The resource is implicitly both read and written and must
// not be referenced from any other pass.
func (b *Builder) CreateTransientTexture(desc TextureDesc) Handle {
	b.ensureOpen()
	h := b.registry.createTransientTexture(desc, b.pass.index)
	rec := b.registry.Texture(h)
	rec.IncrementReadCount()
	rec.IncrementWriteCount()
	b.pass.transients = append(b.pass.transients, h)
	return h
}

// CreateTransientTextureFrom creates a pass-scoped texture copying its
// descriptor from an existing texture.
func (b *Builder) CreateTransientTextureFrom(source Handle) Handle {
	b.ensureOpen()
	b.checkResource(source, false)
	return b.CreateTransientTexture(b.registry.Texture(source).desc)
}

// CreateTransientBuffer creates a buffer whose lifetime is scoped to
// this pass.
func (b *Builder) CreateTransientBuffer(desc BufferDesc) Handle {
	b.ensureOpen()
	h := b.registry.createTransientBuffer(desc, b.pass.index)
	rec := b.registry.Buffer(h)
	rec.IncrementReadCount()
	rec.IncrementWriteCount()
	b.pass.transients = append(b.pass.transients, h)
	return h
}

// CreateTransientBufferFrom creates a pass-scoped buffer copying its
// descriptor from an existing buffer.
func (b *Builder) CreateTransientBufferFrom(source Handle) Handle {
	b.ensureOpen()
	b.checkResource(source, false)
	return b.CreateTransientBuffer(b.registry.Buffer(source).desc)
}

// UseRendererList records a renderer-list dependency. A pass that
// depends on a renderer list is kept alive by the compiler even if its
// resource outputs are unconsumed, unless renderer-list culling is
// allowed and the list is empty.
func (b *Builder) UseRendererList(l RendererListHandle) RendererListHandle {
	b.ensureOpen()
	if b.graph.validation && l.IsNull() {
		panic(fmt.Errorf("%w: null renderer list in pass %q", ErrInvalidHandle, b.pass.name))
	}
	b.pass.rendererLists = append(b.pass.rendererLists, l)
	return l
}

// DependsOn records a renderer-list dependency used purely for culling
// decisions. It is UseRendererList under a name that reads better when
// the pass does not iterate the list itself.
func (b *Builder) DependsOn(l RendererListHandle) RendererListHandle {
	return b.UseRendererList(l)
}

// EnableAsyncCompute flags the pass for the async compute queue.
func (b *Builder) EnableAsyncCompute(enable bool) {
	b.ensureOpen()
	b.pass.asyncCompute = enable
}

// AllowPassCulling controls whether the compiler may cull this pass.
func (b *Builder) AllowPassCulling(allow bool) {
	b.ensureOpen()
	b.pass.allowPassCulling = allow
}

// AllowRendererListCulling controls whether empty renderer lists may
// cull this pass.
func (b *Builder) AllowRendererListCulling(allow bool) {
	b.ensureOpen()
	b.pass.allowRendererListCulling = allow
}

// EnableFoveatedRasterization flags the pass for foveated rendering.
func (b *Builder) EnableFoveatedRasterization(enable bool) {
	b.ensureOpen()
	b.pass.foveated = enable
}

// SetRenderFunc binds the pass's execution callback. Every pass binds
// exactly one; a second call is an authoring bug.
func (b *Builder) SetRenderFunc(fn RenderFunc) {
	b.ensureOpen()
	if b.pass.renderFunc != nil {
		panic(fmt.Errorf("%w: pass %q", ErrRenderFuncSet, b.pass.name))
	}
	b.pass.renderFunc = fn
}
