// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import "github.com/gogpu/rrx/dse"

const (
	textureStreamPageMask = 0x3_FFFF
	textureStreamTmuShift = 19
	textureStreamTmuMask  = 0x7
)

// TextureStream returns the command that streams a texture into a texture
// unit. The pipeline word carries the page count and the unit; one DMA load
// per page follows it.
func TextureStream(tmu int, pageAddrs []uint32, pageSize uint32) Command {
	op := uint32(OpTextureStream) |
		uint32(len(pageAddrs))&textureStreamPageMask |
		uint32(tmu&textureStreamTmuMask)<<textureStreamTmuShift
	loads := make([]dse.Transfer, len(pageAddrs))
	for i, a := range pageAddrs {
		loads[i] = dse.Load(a, pageSize)
	}
	return Both(Pipeline{Op: op}, loads...)
}

// TextureStreamTMU returns the texture unit named by a texture stream word.
func TextureStreamTMU(word uint32) int {
	return int(word >> textureStreamTmuShift & textureStreamTmuMask)
}

// TextureStreamPages returns the page count named by a texture stream word.
func TextureStreamPages(word uint32) int {
	return int(word & textureStreamPageMask)
}

// TriangleStream returns the command carrying one triangle setup
// descriptor.
func TriangleStream(desc []uint32) Command {
	return PipelineOnly(Pipeline{
		Op:      uint32(OpTriangleStream) | uint32(4*len(desc))&ImmMask,
		Payload: desc,
	})
}
