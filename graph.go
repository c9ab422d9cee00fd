package framegraph

import "fmt"

// GraphConfig holds construction options for a Graph.
type GraphConfig struct {
	// Allocator creates native objects on pool misses.
	// Defaults to NullAllocator.
	Allocator Allocator

	// Pool caches native objects across frames.
	// Defaults to a fresh MemoryPool.
	Pool Pool

	// SkipValidation disables the diagnostic contract checks on every
	// declaration. Leave it false during development; enable it in
	// optimized builds where declarations are known correct.
	SkipValidation bool
}

// Graph owns the registry and accumulates the passes of one execution.
// The usage protocol per frame is NewFrame, then for each pass AddPass /
// declarations / Dispose, after which Passes and the registry accessors
// feed the downstream compiler.
type Graph struct {
	registry *Registry
	passes   []*Pass

	frameIndex int
	recording  bool
	building   bool
	validation bool

	// fallbackTextures maps descriptor hashes to preallocated black
	// textures substituted for never-written fallback reads.
	fallbackTextures map[uint64]Handle

	nextRendererList int32
}

// NewGraph creates a frame graph with the given configuration.
func NewGraph(cfg GraphConfig) *Graph {
	return &Graph{
		registry: NewRegistry(RegistryConfig{
			Allocator: cfg.Allocator,
			Pool:      cfg.Pool,
		}),
		validation:       !cfg.SkipValidation,
		fallbackTextures: make(map[uint64]Handle),
	}
}

// Registry returns the resource registry of the graph.
func (g *Graph) Registry() *Registry { return g.registry }

// Passes returns the passes committed so far this frame, in declaration
// order.
func (g *Graph) Passes() []*Pass { return g.passes }

// FrameIndex returns the frame of the execution in progress.
func (g *Graph) FrameIndex() int { return g.frameIndex }

// ValidationEnabled reports whether declaration contract checks run.
func (g *Graph) ValidationEnabled() bool { return g.validation }

// NewFrame starts recording a new execution: per-frame records are
// recycled, the validity epoch advances (invalidating all non-shared
// handles from the previous frame), and the pass list resets. The
// previous execution must have fully completed before this is called.
//
// Fallback registrations do not survive the epoch: re-register fallback
// textures after each NewFrame.
func (g *Graph) NewFrame(frameIndex int) {
	g.frameIndex = frameIndex
	g.registry.NewFrame(frameIndex)
	g.passes = g.passes[:0]
	clear(g.fallbackTextures)
	g.recording = true
	g.building = false
}

// AddPass opens a builder for a new pass. Exactly one builder may be
// open at a time; dispose it before adding the next pass. Calling
// AddPass outside a frame is a programmer error.
func (g *Graph) AddPass(name string) *Builder {
	if !g.recording || g.building {
		panic(fmt.Errorf("%w: AddPass(%q)", ErrNotRecording, name))
	}
	g.building = true
	return &Builder{
		graph:    g,
		registry: g.registry,
		pass:     newPass(name, len(g.passes)),
	}
}

// commitPass is called by Builder.Dispose exactly once per pass.
func (g *Graph) commitPass(p *Pass) {
	g.passes = append(g.passes, p)
	g.building = false
}

// RegisterFallbackTexture offers h as the black fallback for every
// texture whose descriptor hashes like h's. ReadTexture substitutes it
// when a never-written fallback resource is read. The handle must be a
// valid texture created this frame (typically imported or cleared to
// black by an early pass).
func (g *Graph) RegisterFallbackTexture(h Handle) {
	rec := g.registry.Texture(h)
	if rec == nil || !rec.HasDesc() || !g.registry.ValidHandle(h) {
		panic(fmt.Errorf("%w: fallback texture %v", ErrInvalidHandle, h))
	}
	g.fallbackTextures[rec.Desc().Hash()] = h
}

// fallbackFor returns the registered black fallback matching desc.
func (g *Graph) fallbackFor(desc TextureDesc) (Handle, bool) {
	h, ok := g.fallbackTextures[desc.Hash()]
	return h, ok
}

// NewRendererList mints a renderer-list handle for this graph. The
// actual list contents live with the host renderer; the graph only
// tracks the dependency.
func (g *Graph) NewRendererList() RendererListHandle {
	g.nextRendererList++
	return RendererListHandle{id: g.nextRendererList}
}
