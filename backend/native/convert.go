package native

import (
	"github.com/gogpu/gputypes"
	types "github.com/gogpu/gputypes"
)

// convertTextureFormat maps a gputypes texture format to its wgpu
// equivalent. Unknown formats fall back to RGBA8Unorm so a bad
// descriptor produces a visible-but-wrong texture instead of a crash.
func convertTextureFormat(format gputypes.TextureFormat) types.TextureFormat {
	switch format {
	case gputypes.TextureFormatR8Unorm:
		return types.TextureFormatR8Unorm
	case gputypes.TextureFormatRGBA8Unorm:
		return types.TextureFormatRGBA8Unorm
	case gputypes.TextureFormatBGRA8Unorm:
		return types.TextureFormatBGRA8Unorm
	case gputypes.TextureFormatDepth24PlusStencil8:
		return types.TextureFormatDepth24PlusStencil8
	default:
		return types.TextureFormatRGBA8Unorm
	}
}

// convertTextureUsage maps gputypes texture usage flags to wgpu flags.
func convertTextureUsage(usage gputypes.TextureUsage) types.TextureUsage {
	var out types.TextureUsage
	if usage&gputypes.TextureUsageCopySrc != 0 {
		out |= types.TextureUsageCopySrc
	}
	if usage&gputypes.TextureUsageCopyDst != 0 {
		out |= types.TextureUsageCopyDst
	}
	if usage&gputypes.TextureUsageTextureBinding != 0 {
		out |= types.TextureUsageTextureBinding
	}
	if usage&gputypes.TextureUsageRenderAttachment != 0 {
		out |= types.TextureUsageRenderAttachment
	}
	return out
}

// convertBufferUsage maps gputypes buffer usage flags to wgpu flags.
func convertBufferUsage(usage gputypes.BufferUsage) types.BufferUsage {
	var out types.BufferUsage
	if usage&gputypes.BufferUsageCopySrc != 0 {
		out |= types.BufferUsageCopySrc
	}
	if usage&gputypes.BufferUsageCopyDst != 0 {
		out |= types.BufferUsageCopyDst
	}
	if usage&gputypes.BufferUsageMapRead != 0 {
		out |= types.BufferUsageMapRead
	}
	if usage&gputypes.BufferUsageMapWrite != 0 {
		out |= types.BufferUsageMapWrite
	}
	if usage&gputypes.BufferUsageStorage != 0 {
		out |= types.BufferUsageStorage
	}
	if usage&gputypes.BufferUsageUniform != 0 {
		out |= types.BufferUsageUniform
	}
	if usage&gputypes.BufferUsageVertex != 0 {
		out |= types.BufferUsageVertex
	}
	return out
}
