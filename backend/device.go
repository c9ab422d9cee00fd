package backend

import (
	"github.com/gogpu/framegraph"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// DeviceHandle provides GPU device access from the host application.
//
// The host (e.g. a gogpu.App) owns the device and surface; framegraph
// RECEIVES access through this interface rather than creating a device
// of its own, so graph resources share GPU memory with everything else
// the host renders.
//
// DeviceHandle is an alias for gpucontext.DeviceProvider, giving the
// interface a framegraph-local name while staying fully compatible with
// the gpucontext ecosystem.
type DeviceHandle = gpucontext.DeviceProvider

// NullDeviceHandle is a DeviceHandle that provides nil implementations.
// Used for CPU-only runs where no GPU is available.
type NullDeviceHandle struct{}

// Device returns nil for the null device.
func (NullDeviceHandle) Device() gpucontext.Device { return nil }

// Queue returns nil for the null device.
func (NullDeviceHandle) Queue() gpucontext.Queue { return nil }

// Adapter returns nil for the null device.
func (NullDeviceHandle) Adapter() gpucontext.Adapter { return nil }

// AdapterInfo returns unknown adapter info for the null device.
func (NullDeviceHandle) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Type: gpucontext.AdapterTypeUnknown}
}

// SurfaceFormat returns undefined format for the null device.
func (NullDeviceHandle) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// Ensure NullDeviceHandle implements DeviceHandle.
var _ DeviceHandle = NullDeviceHandle{}

// swapchainTexture stands in for the host's back buffer. The surface
// owns the native object, so Release is a no-op.
type swapchainTexture struct {
	label     string
	sizeBytes uint64
}

func (s *swapchainTexture) Label() string         { return s.label }
func (s *swapchainTexture) SetLabel(label string) { s.label = label }
func (s *swapchainTexture) SizeBytes() uint64     { return s.sizeBytes }
func (s *swapchainTexture) Release()              {}

// ImportBackBuffer registers the host's back buffer as an imported
// frame-graph texture so passes can bind it as a render target. The
// descriptor format comes from the provider's surface format; the
// backing object is owned by the surface and never pooled or released
// by the graph.
//
// Import again after every NewFrame, like any other handle.
func ImportBackBuffer(r *framegraph.Registry, provider DeviceHandle, width, height uint32) framegraph.Handle {
	desc := framegraph.DefaultTextureDesc(width, height, provider.SurfaceFormat())
	desc.Name = "backbuffer"
	desc.Usage = gputypes.TextureUsageRenderAttachment
	res := &swapchainTexture{
		label:     desc.Name,
		sizeBytes: uint64(width) * uint64(height) * 4,
	}
	return r.ImportTextureWithDesc(res, desc)
}
