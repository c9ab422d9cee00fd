// Package backend hosts the native allocator registry for framegraph and
// the integration points with host GPU frameworks.
//
// Allocators create the native objects behind frame-graph resources on
// pool misses. Two implementations ship in sub-packages:
//
//   - backend/native: allocates through gogpu/wgpu's HAL (Pure Go WebGPU)
//   - backend/gogpu: allocates through the gogpu framework's gpu.Backend
//
// Hosts register whichever they constructed:
//
//	backend.Register(backend.BackendNative, func() framegraph.Allocator {
//	    return native.New(device)
//	})
//	g := framegraph.NewGraph(framegraph.GraphConfig{Allocator: backend.MustDefault()})
//
// The null allocator is always registered as a fallback, so MustDefault
// never fails on machines without a GPU.
package backend
