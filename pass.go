package framegraph

// MaxColorTargets is the largest render target index UseColorBuffer
// accepts, matching the usual MRT limit of graphics APIs.
const MaxColorTargets = 8

// ExecuteContext is handed to a pass's render function by the downstream
// executor. This core only plumbs it through.
type ExecuteContext struct {
	// Registry resolves handles to records and backing objects.
	Registry *Registry

	// Pass is the pass being executed.
	Pass *Pass

	// FrameIndex is the frame the execution belongs to.
	FrameIndex int
}

// RenderFunc is the execution callback of a pass. Every pass must bind
// exactly one; a pass without a render function is rejected by the
// downstream compiler.
type RenderFunc func(ctx *ExecuteContext)

// DepthAccess describes how a pass touches its depth buffer.
type DepthAccess uint8

const (
	// DepthRead samples or tests against the depth buffer.
	DepthRead DepthAccess = 1 << iota

	// DepthWrite updates the depth buffer.
	DepthWrite

	// DepthReadWrite both tests and updates.
	DepthReadWrite = DepthRead | DepthWrite
)

// RendererListHandle identifies a renderer list dependency. It carries no
// validity epoch; the only requirement on declaration is that it is not
// the zero value.
type RendererListHandle struct {
	id int32
}

// IsNull reports whether the handle identifies no list.
func (h RendererListHandle) IsNull() bool { return h.id == 0 }

// ID returns the numeric list identifier.
func (h RendererListHandle) ID() int32 { return h.id }

// Pass accumulates the resource dependencies one render pass declares
// through its builder. Once the builder is disposed the pass is final;
// the downstream compiler consumes the lists to compute lifetimes,
// culling, and execution order.
type Pass struct {
	name  string
	index int

	reads      []Handle
	writes     []Handle
	transients []Handle

	colorTargets [MaxColorTargets]Handle
	colorCount   int
	depthTarget  Handle

	rendererLists []RendererListHandle

	allowPassCulling         bool
	allowRendererListCulling bool
	asyncCompute             bool
	foveated                 bool

	renderFunc RenderFunc
}

func newPass(name string, index int) *Pass {
	return &Pass{
		name:                     name,
		index:                    index,
		allowPassCulling:         true,
		allowRendererListCulling: true,
	}
}

// Name returns the debug name of the pass.
func (p *Pass) Name() string { return p.name }

// Index returns the pass's position in declaration order.
func (p *Pass) Index() int { return p.index }

// Reads returns the handles the pass reads, in declaration order.
func (p *Pass) Reads() []Handle { return p.reads }

// Writes returns the handles the pass writes, in declaration order.
func (p *Pass) Writes() []Handle { return p.writes }

// Transients returns the pass-scoped resources the pass created.
func (p *Pass) Transients() []Handle { return p.transients }

// ColorTargets returns the bound render targets; unbound slots hold the
// null handle.
func (p *Pass) ColorTargets() []Handle { return p.colorTargets[:p.colorCount] }

// DepthTarget returns the bound depth buffer, or the null handle.
func (p *Pass) DepthTarget() Handle { return p.depthTarget }

// RendererLists returns the renderer-list dependencies of the pass.
func (p *Pass) RendererLists() []RendererListHandle { return p.rendererLists }

// AllowPassCulling reports whether the compiler may cull the pass when
// nothing consumes its outputs. Defaults to true.
func (p *Pass) AllowPassCulling() bool { return p.allowPassCulling }

// AllowRendererListCulling reports whether empty renderer lists may cull
// the pass. Defaults to true.
func (p *Pass) AllowRendererListCulling() bool { return p.allowRendererListCulling }

// AsyncCompute reports whether the pass is flagged for the async compute
// queue.
func (p *Pass) AsyncCompute() bool { return p.asyncCompute }

// Foveated reports whether foveated rasterization is enabled for the
// pass.
func (p *Pass) Foveated() bool { return p.foveated }

// RenderFunc returns the bound execution callback, or nil.
func (p *Pass) RenderFunc() RenderFunc { return p.renderFunc }

// setColorTarget binds h as render target idx.
func (p *Pass) setColorTarget(h Handle, idx int) {
	p.colorTargets[idx] = h
	if idx+1 > p.colorCount {
		p.colorCount = idx + 1
	}
}
