// Package gogpu provides a framegraph allocator backed by the gogpu
// framework's gpu.Backend.
//
// Use this allocator when the host application already runs on gogpu
// and owns a backend, device, and queue; graph resources then live on
// the same device as the host's own rendering. Acceleration structures
// are not exposed by gpu.Backend and return framegraph.ErrNotSupported.
package gogpu
