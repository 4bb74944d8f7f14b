// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import "github.com/gogpu/rrx/dse"

// FramebufferFlags select the framebuffer operation and the buffers it
// applies to.
type FramebufferFlags uint32

// Framebuffer operations and buffer selectors.
const (
	FramebufferCommit  FramebufferFlags = 0x01
	FramebufferMemset  FramebufferFlags = 0x02
	FramebufferSwap    FramebufferFlags = 0x04
	FramebufferColor   FramebufferFlags = 0x10
	FramebufferDepth   FramebufferFlags = 0x20
	FramebufferStencil FramebufferFlags = 0x40
)

// Framebuffer returns a framebuffer operation command.
func Framebuffer(flags FramebufferFlags) Command {
	return PipelineOnly(Pipeline{Op: uint32(OpFramebuffer) | uint32(flags)&ImmMask})
}

// Memset returns the command that clears the selected buffers of the
// current band to their clear values.
func Memset(color, depth, stencil bool) Command {
	f := FramebufferMemset
	if color {
		f |= FramebufferColor
	}
	if depth {
		f |= FramebufferDepth
	}
	if stencil {
		f |= FramebufferStencil
	}
	return Framebuffer(f)
}

// Commit returns the command that writes the color buffer of the current
// band out of the rasterizer.
func Commit() Command {
	return Framebuffer(FramebufferCommit | FramebufferColor)
}

// Swap returns the command that presents the committed frame.
func Swap() Command {
	return Framebuffer(FramebufferSwap | FramebufferColor)
}

// FramebufferTransfer returns the DMA record moving n bytes of the committed
// color buffer. op is one of dse.OpCommitToStream, dse.OpCommitToMemory or
// dse.OpStreamFromMemory.
func FramebufferTransfer(op dse.Op, addr, n uint32) Command {
	return WithTransfer(dse.Transfer{Op: op, Len: n, Addr: addr})
}
