// Package framegraph tracks the lifetime, identity, and validity of
// transient GPU resources across the render passes of a frame.
//
// # Overview
//
// A frame graph separates what a frame renders from how its resources are
// allocated. Render passes declare the textures and buffers they read,
// write, or create; the graph records those declarations and exposes them
// to a downstream compiler that computes resource lifetimes, culls dead
// passes, and schedules pooled reuse of native GPU objects. This package
// implements the bookkeeping layer: handles, resource records, the pass
// builder, and the descriptor-keyed resource pool protocol. It performs
// no GPU work itself.
//
// # Quick Start
//
//	g := framegraph.NewGraph(framegraph.GraphConfig{})
//	g.NewFrame(frameIndex)
//
//	color := g.Registry().CreateTexture(
//	    framegraph.DefaultTextureDesc(1920, 1080, gputypes.TextureFormatRGBA8Unorm))
//
//	b := g.AddPass("opaque")
//	color = b.UseColorBuffer(color, 0)
//	b.SetRenderFunc(func(ctx *framegraph.ExecuteContext) {
//	    // issue draw calls
//	})
//	b.Dispose()
//
// Builders should be disposed on every exit path; the idiomatic form is
//
//	b := g.AddPass("shadows")
//	defer b.Dispose()
//
// # Handles and Validity
//
// A Handle is a small value identifying a logical resource by index, kind,
// and version. It does not own the backing object. Handles additionally
// carry a 16-bit validity tag rotated once per execution: authoring
// objects pooled across frames often retain handle values from a prior
// execution, and the tag lets Valid reject those without dereferencing
// anything. Resources created with CreateSharedTexture use a reserved tag
// and stay valid across executions.
//
// # Backends
//
// Native allocation is pluggable via the Allocator interface. The
// backend/native package allocates through gogpu/wgpu's HAL, and
// backend/gogpu through the gogpu framework's gpu.Backend. NullAllocator
// provides inert logical resources for tests and CPU-only runs.
//
// # Concurrency
//
// Pass declaration is a single-threaded, cooperative protocol: one open
// builder at a time, passes declared sequentially, the epoch advanced only
// between executions. None of the types in this package are safe for
// concurrent mutation unless documented otherwise.
package framegraph
