// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package renderer

import (
	"errors"
	"fmt"

	"github.com/gogpu/rrx/command"
	"github.com/gogpu/rrx/internal/mathx"
	"github.com/gogpu/rrx/texture"
)

// Configuration errors.
var (
	ErrInvalidConfig = errors.New("renderer: invalid configuration")
	ErrTooManyBands  = errors.New("renderer: not enough bus buffers for the band count")
)

// Default configuration values.
const (
	DefaultWidth                   = 640
	DefaultHeight                  = 480
	DefaultFramebufferSizeInPixels = 128 * 1024
	DefaultTMUCount                = command.MaxTMUs

	// maxResolution is the largest width or height the resolution
	// registers can hold.
	maxResolution = 2047
)

// FramebufferType selects where a finished band goes.
type FramebufferType uint8

// Framebuffer variants.
const (
	// InternalToStream streams each band from the rasterizer to the display.
	InternalToStream FramebufferType = iota
	// InternalToMemory commits each band into a color buffer in device
	// memory.
	InternalToMemory
	// ExternalMemoryToStream renders into device memory and streams the
	// result to the display.
	ExternalMemoryToStream
	// ExternalMemoryDoubleBuffer renders into one of two color buffers in
	// device memory and swaps them every frame.
	ExternalMemoryDoubleBuffer
)

// String returns the variant name.
func (t FramebufferType) String() string {
	switch t {
	case InternalToStream:
		return "InternalToStream"
	case InternalToMemory:
		return "InternalToMemory"
	case ExternalMemoryToStream:
		return "ExternalMemoryToStream"
	case ExternalMemoryDoubleBuffer:
		return "ExternalMemoryDoubleBuffer"
	default:
		return fmt.Sprintf("FramebufferType(%d)", uint8(t))
	}
}

// Config holds the renderer configuration.
type Config struct {
	// Width and Height are the largest render resolution. They fix the
	// number of bands the renderer allocates.
	// Default to DefaultWidth and DefaultHeight if <= 0.
	Width  int
	Height int

	// FramebufferSizeInPixels is the size of the on-chip framebuffer. A
	// frame larger than this is rendered in horizontal bands.
	// Defaults to DefaultFramebufferSizeInPixels if <= 0.
	FramebufferSizeInPixels int

	// TMUCount is the number of texture units of the device.
	// Defaults to DefaultTMUCount if <= 0.
	TMUCount int

	// GRAMBase is added to every device address.
	GRAMBase uint32

	// ColorBufferAddr0 and ColorBufferAddr1 are the color buffers in device
	// memory. Only the external and in-memory variants use them.
	ColorBufferAddr0  uint32
	ColorBufferAddr1  uint32
	DepthBufferAddr   uint32
	StencilBufferAddr uint32

	FramebufferType FramebufferType

	// MemoryOptimized records each frame once into a single list and
	// replays it per band.
	MemoryOptimized bool

	// FixedPointInterpolation encodes triangle descriptors in fixed point
	// and rebases them to each band.
	FixedPointInterpolation bool

	// Texture memory layout. Zero values use the texture package defaults.
	PageSize    int
	PageCount   int
	MaxTextures int
}

// applyDefaults fills zero fields.
func (c *Config) applyDefaults() {
	if c.Width <= 0 {
		c.Width = DefaultWidth
	}
	if c.Height <= 0 {
		c.Height = DefaultHeight
	}
	if c.FramebufferSizeInPixels <= 0 {
		c.FramebufferSizeInPixels = DefaultFramebufferSizeInPixels
	}
	if c.TMUCount <= 0 {
		c.TMUCount = DefaultTMUCount
	}
	if c.PageSize <= 0 {
		c.PageSize = texture.DefaultPageSize
	}
	if c.PageCount <= 0 {
		c.PageCount = texture.DefaultPageCount
	}
	if c.MaxTextures <= 1 {
		c.MaxTextures = texture.DefaultMaxTextures
	}
}

// Bands returns the number of bands a width × height frame needs.
func (c *Config) Bands(width, height int) int {
	return mathx.CeilDiv(width*height, c.FramebufferSizeInPixels)
}

func (c *Config) validate() error {
	if c.Width > maxResolution || c.Height > maxResolution {
		return fmt.Errorf("%w: resolution %dx%d exceeds %d", ErrInvalidConfig, c.Width, c.Height, maxResolution)
	}
	if c.TMUCount > command.MaxTMUs {
		return fmt.Errorf("%w: %d texture units, at most %d", ErrInvalidConfig, c.TMUCount, command.MaxTMUs)
	}
	if c.FramebufferType > ExternalMemoryDoubleBuffer {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, c.FramebufferType)
	}
	if c.Bands(c.Width, c.Height) > c.Height {
		return fmt.Errorf("%w: framebuffer of %d pixels holds less than one line", ErrInvalidConfig, c.FramebufferSizeInPixels)
	}
	if c.MemoryOptimized && c.FixedPointInterpolation && c.Bands(c.Width, c.Height) > 1 {
		return fmt.Errorf("%w: memory optimized replay cannot rebase fixed point descriptors", ErrInvalidConfig)
	}
	return nil
}

// buffersNeeded returns the bus buffers required for bands: one per band
// and list set plus one for texture uploads.
func (c *Config) buffersNeeded(bands int) int {
	if c.MemoryOptimized {
		return 3
	}
	return 2*bands + 1
}
