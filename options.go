// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rrx

import (
	"log/slog"

	"github.com/gogpu/rrx/gram"
	"github.com/gogpu/rrx/renderer"
)

// Option configures a Context during creation.
// Use functional options to customize Context behavior.
//
// Example:
//
//	// Default 640x480 renderer streaming to the display
//	ctx, err := rrx.New(conn)
//
//	// 1024x600 rendered into device memory
//	ctx, err := rrx.New(conn,
//	    rrx.WithResolution(1024, 600),
//	    rrx.WithRendererConfig(renderer.Config{
//	        FramebufferType:  renderer.InternalToMemory,
//	        ColorBufferAddr0: 0x0100_0000,
//	    }))
type Option func(*options)

// options holds optional configuration for Context creation.
type options struct {
	config          renderer.Config
	width, height   int
	memoryOptimized bool
	logger          *slog.Logger

	deviceMemory    int
	deviceBlockSize int
}

// defaultOptions returns the default context options.
func defaultOptions() options {
	return options{}
}

// rendererConfig merges the options into the renderer configuration.
func (o *options) rendererConfig() renderer.Config {
	c := o.config
	if o.width > 0 {
		c.Width = o.width
	}
	if o.height > 0 {
		c.Height = o.height
	}
	if o.memoryOptimized {
		c.MemoryOptimized = true
	}
	return c
}

// allocator returns the device memory allocator of WithDeviceMemory.
func (o *options) allocator() (*gram.Allocator, error) {
	bs := o.deviceBlockSize
	if bs <= 0 {
		bs = DefaultDeviceMemoryBlockSize
	}
	return gram.New(bs, o.deviceMemory/bs)
}

// WithResolution sets the largest render resolution. It overrides the
// resolution of WithRendererConfig regardless of order.
func WithResolution(width, height int) Option {
	return func(o *options) {
		o.width = width
		o.height = height
	}
}

// WithRendererConfig sets the renderer configuration.
func WithRendererConfig(c renderer.Config) Option {
	return func(o *options) {
		o.config = c
	}
}

// WithMemoryOptimized records each frame into a single display list that
// is replayed for every band. It trades bus bandwidth for host memory.
func WithMemoryOptimized() Option {
	return func(o *options) {
		o.memoryOptimized = true
	}
}

// WithLogger installs l as the package logger before the context is
// built. It is equivalent to calling SetLogger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// WithDeviceMemory manages size bytes of device memory. The color, depth
// and stencil buffers the framebuffer type needs are placed in it,
// replacing the addresses of WithRendererConfig. A blockSize <= 0 uses
// DefaultDeviceMemoryBlockSize.
func WithDeviceMemory(size, blockSize int) Option {
	return func(o *options) {
		o.deviceMemory = size
		o.deviceBlockSize = blockSize
	}
}
