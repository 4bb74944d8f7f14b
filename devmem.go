// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rrx

import (
	"cmp"
	"errors"
	"fmt"

	"github.com/gogpu/rrx/gram"
	"github.com/gogpu/rrx/internal/logging"
	"github.com/gogpu/rrx/renderer"
)

// ErrDeviceMemory is returned when the framebuffers do not fit device
// memory.
var ErrDeviceMemory = errors.New("rrx: device memory exhausted")

// Bytes per pixel of the buffers placed in device memory.
const (
	colorBytesPerPixel   = 2
	depthBytesPerPixel   = 2
	stencilBytesPerPixel = 1
)

// DefaultDeviceMemoryBlockSize is the allocation granularity of device
// memory.
const DefaultDeviceMemoryBlockSize = 64 << 10

// placeBuffers allocates the buffers the framebuffer type reads and writes
// and stores their addresses in c.
func placeBuffers(a *gram.Allocator, c *renderer.Config) error {
	var color0, color1, depthStencil bool
	switch c.FramebufferType {
	case renderer.InternalToMemory:
		color0, color1 = true, true
	case renderer.ExternalMemoryToStream:
		color0, depthStencil = true, true
	case renderer.ExternalMemoryDoubleBuffer:
		color0, color1, depthStencil = true, true, true
	}

	pixels := cmp.Or(c.Width, renderer.DefaultWidth) * cmp.Or(c.Height, renderer.DefaultHeight)
	place := func(name string, dst *uint32, size int) error {
		addr := a.Alloc(size)
		if addr == gram.Invalid {
			return fmt.Errorf("%w: %s buffer of %d bytes, %v", ErrDeviceMemory, name, size, a)
		}
		*dst = addr
		logging.L().Debug("rrx: buffer placed", "buffer", name, "addr", addr, "bytes", size)
		return nil
	}
	if color0 {
		if err := place("color0", &c.ColorBufferAddr0, pixels*colorBytesPerPixel); err != nil {
			return err
		}
	}
	if color1 {
		if err := place("color1", &c.ColorBufferAddr1, pixels*colorBytesPerPixel); err != nil {
			return err
		}
	}
	if depthStencil {
		if err := place("depth", &c.DepthBufferAddr, pixels*depthBytesPerPixel); err != nil {
			return err
		}
		if err := place("stencil", &c.StencilBufferAddr, pixels*stencilBytesPerPixel); err != nil {
			return err
		}
	}
	return nil
}

// DeviceMemory returns the device memory allocator, or nil when the
// context was created without WithDeviceMemory.
func (c *Context) DeviceMemory() *gram.Allocator { return c.gram }

// AllocDeviceMemory reserves size bytes of device memory.
func (c *Context) AllocDeviceMemory(size int) (uint32, bool) {
	if c.gram == nil {
		return gram.Invalid, false
	}
	addr := c.gram.Alloc(size)
	return addr, addr != gram.Invalid
}

// FreeDeviceMemory releases memory returned by AllocDeviceMemory.
func (c *Context) FreeDeviceMemory(addr uint32) {
	if c.gram != nil {
		c.gram.Free(addr)
	}
}
