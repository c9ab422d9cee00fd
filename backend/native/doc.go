// Package native provides a Pure Go framegraph allocator using
// gogpu/wgpu's HAL layer.
//
// The allocator creates native textures and buffers through hal.Device
// on pool misses; pooling, lifetime, and reuse decisions stay with the
// framegraph core. Acceleration structures are not supported by the HAL
// and return framegraph.ErrNotSupported.
package native
