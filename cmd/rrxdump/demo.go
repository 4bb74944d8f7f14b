// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"io"
	"os"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rrx"
	"github.com/gogpu/rrx/bus"
	"github.com/gogpu/rrx/command"
	"github.com/gogpu/rrx/renderer"
	"github.com/gogpu/rrx/texture"
	"github.com/gogpu/rrx/transform"
)

// demoBufferSize is the size of each bus buffer of the demo connector.
const demoBufferSize = 256 << 10

// writeDemo renders the demo scene into a capture file and returns the
// number of transfers recorded.
func writeDemo(path string, frames, width, height int) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	bw := bufio.NewWriter(f)
	n, err := renderDemo(bw, frames, width, height)
	if ferr := bw.Flush(); err == nil {
		err = ferr
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

// renderDemo draws a textured, spinning quad over a gouraud shaded
// triangle for the given number of frames.
func renderDemo(w io.Writer, frames, width, height int) (int, error) {
	cfg := renderer.Config{FramebufferSizeInPixels: renderer.DefaultFramebufferSizeInPixels}
	buffers := 2*cfg.Bands(width, height) + 1
	capture := bus.NewCapture(bus.NewMemory(buffers, demoBufferSize), w)

	ctx, err := rrx.New(capture, rrx.WithResolution(width, height))
	if err != nil {
		return 0, err
	}

	tex, err := ctx.CreateTexture()
	if err != nil {
		return 0, err
	}
	if err := ctx.TexImage(tex, checker(32, 4), texture.ConvertOptions{Format: command.RGBA4444, Mipmaps: true}); err != nil {
		return 0, err
	}

	ctx.SetClearColor(gputypes.Color{R: 0.1, G: 0.1, B: 0.2, A: 1})
	ctx.SetClearDepth(1)
	ctx.Enable(rrx.DepthTest)
	ctx.SetDepthMask(true)
	ctx.SetFog(command.FogTable{Mode: command.FogLinear, Start: 1, End: 20})
	ctx.SetFogColor(gputypes.Color{R: 0.1, G: 0.1, B: 0.2, A: 1})
	ctx.Enable(rrx.Fog)

	ctx.SetMatrixMode(transform.Projection)
	ctx.Perspective(60, float32(width)/float32(height), 0.5, 50)
	ctx.SetMatrixMode(transform.ModelView)

	for i := range frames {
		ctx.Clear(true, true, false)
		ctx.LoadIdentity()
		ctx.Translate(0, 0, -4)

		ctx.Disable(rrx.Texture0)
		ctx.Begin(transform.Triangles)
		ctx.Color4(1, 0, 0, 1)
		ctx.Vertex3(-2, -1.5, -1)
		ctx.Color4(0, 1, 0, 1)
		ctx.Vertex3(2, -1.5, -1)
		ctx.Color4(0, 0, 1, 1)
		ctx.Vertex3(0, 1.5, -1)
		ctx.End()

		ctx.Rotate(float32(i)*15, 0, 0, 1)
		ctx.Enable(rrx.Texture0)
		ctx.BindTexture(0, tex)
		ctx.Color4(1, 1, 1, 1)
		ctx.Begin(transform.Quads)
		for _, v := range [4][4]float32{{-1, -1, 0, 0}, {1, -1, 1, 0}, {1, 1, 1, 1}, {-1, 1, 0, 1}} {
			ctx.TexCoord2(0, v[2], v[3])
			ctx.Vertex3(v[0], v[1], 0)
		}
		ctx.End()
		ctx.Render()
	}
	if err := ctx.Close(); err != nil {
		return capture.Frames(), fmt.Errorf("close: %w", err)
	}
	return capture.Frames(), nil
}

// checker returns a size × size checkerboard with cells of cell pixels.
func checker(size, cell int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for y := range size {
		for x := range size {
			c := color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
			if (x/cell+y/cell)%2 == 1 {
				c = color.NRGBA{R: 0x20, G: 0x40, B: 0xc0, A: 0xff}
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
