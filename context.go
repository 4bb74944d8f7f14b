// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rrx

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rrx/bus"
	"github.com/gogpu/rrx/command"
	"github.com/gogpu/rrx/gram"
	"github.com/gogpu/rrx/internal/logging"
	"github.com/gogpu/rrx/renderer"
	"github.com/gogpu/rrx/transform"
)

// Context is the drawing state of one device. It is not safe for
// concurrent use; create one per device and pass it around.
type Context struct {
	r    *renderer.Renderer
	p    *transform.Pipeline
	gram *gram.Allocator

	features command.FeatureEnable
	fragment command.FragmentPipeline
	fog      command.FogTable
	texEnv   [transform.MaxTMUs]command.TexEnv

	// current vertex attributes
	color  mgl32.Vec4
	normal mgl32.Vec3
	tex    [transform.MaxTMUs]mgl32.Vec4

	width, height int
}

// New creates a context that renders through conn.
//
// Example:
//
//	ctx, err := rrx.New(conn,
//	    rrx.WithResolution(800, 600),
//	    rrx.WithMemoryOptimized())
func New(conn bus.Connector, opts ...Option) (*Context, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger != nil {
		SetLogger(o.logger)
	}

	rc := o.rendererConfig()
	var alloc *gram.Allocator
	if o.deviceMemory > 0 {
		var err error
		if alloc, err = o.allocator(); err != nil {
			return nil, err
		}
		if err := placeBuffers(alloc, &rc); err != nil {
			return nil, err
		}
	}

	r, err := renderer.New(conn, rc)
	if err != nil {
		return nil, err
	}
	cfg := r.Config()
	c := &Context{
		r:        r,
		gram:     alloc,
		fragment: command.DefaultFragmentPipeline(),
		fog:      command.DefaultFogTable(),
		color:    mgl32.Vec4{1, 1, 1, 1},
		normal:   mgl32.Vec3{0, 0, 1},
		width:    cfg.Width,
		height:   cfg.Height,
	}
	for t := range c.tex {
		c.tex[t] = mgl32.Vec4{0, 0, 0, 1}
		c.texEnv[t] = command.DefaultTexEnv(t)
	}
	c.p = transform.NewPipeline(r, cfg.Width, cfg.Height)
	logging.L().Debug("rrx: context created", "width", cfg.Width, "height", cfg.Height, "bands", r.Bands())
	return c, nil
}

// Renderer returns the renderer behind the context.
func (c *Context) Renderer() *renderer.Renderer { return c.r }

// Pipeline returns the vertex pipeline for state the context does not
// wrap, such as texture coordinate generation.
func (c *Context) Pipeline() *transform.Pipeline { return c.p }

// Width returns the current render width.
func (c *Context) Width() int { return c.width }

// Height returns the current render height.
func (c *Context) Height() int { return c.height }

// Stats returns the renderer counters.
func (c *Context) Stats() renderer.Stats { return c.r.Stats() }

// SetResolution changes the render resolution and resets the viewport to
// cover it. It fails when the frame needs more bands than New allocated.
func (c *Context) SetResolution(width, height int) bool {
	if !c.r.SetRenderResolution(width, height) {
		return false
	}
	c.width, c.height = width, height
	c.p.Viewport.Set(0, 0, float32(width), float32(height))
	return true
}

// Begin starts a primitive of the given mode.
func (c *Context) Begin(mode transform.DrawMode) bool { return c.p.Begin(mode) }

// End finishes the current primitive.
func (c *Context) End() bool { return c.p.End() }

// Color4 sets the color of subsequent vertices.
func (c *Context) Color4(r, g, b, a float32) { c.color = mgl32.Vec4{r, g, b, a} }

// Normal3 sets the normal of subsequent vertices.
func (c *Context) Normal3(x, y, z float32) { c.normal = mgl32.Vec3{x, y, z} }

// TexCoord2 sets the texture coordinates of unit tmu for subsequent
// vertices.
func (c *Context) TexCoord2(tmu int, s, t float32) {
	if tmu >= 0 && tmu < transform.MaxTMUs {
		c.tex[tmu] = mgl32.Vec4{s, t, 0, 1}
	}
}

// Vertex3 emits a vertex with the current attributes.
func (c *Context) Vertex3(x, y, z float32) bool { return c.Vertex4(x, y, z, 1) }

// Vertex4 emits a homogeneous vertex with the current attributes.
func (c *Context) Vertex4(x, y, z, w float32) bool {
	return c.p.Vertex(transform.Vertex{
		Pos:    mgl32.Vec4{x, y, z, w},
		Normal: c.normal,
		Color:  c.color,
		Tex:    c.tex,
	})
}

// DrawArrays draws a whole primitive from vertices.
func (c *Context) DrawArrays(mode transform.DrawMode, vertices []transform.Vertex) bool {
	ok := c.p.Begin(mode)
	for _, v := range vertices {
		ok = c.p.Vertex(v) && ok
	}
	return c.p.End() && ok
}

// SetMatrixMode selects the matrix the matrix operations modify.
func (c *Context) SetMatrixMode(m transform.MatrixMode) { c.p.Matrices.SetMode(m) }

// SetActiveTexture selects the texture unit of the texture matrix.
func (c *Context) SetActiveTexture(tmu int) { c.p.Matrices.SetTMU(tmu) }

// LoadIdentity resets the current matrix.
func (c *Context) LoadIdentity() { c.p.Matrices.LoadIdentity() }

// LoadMatrix replaces the current matrix.
func (c *Context) LoadMatrix(m mgl32.Mat4) { c.p.Matrices.Load(m) }

// MultMatrix multiplies the current matrix by m.
func (c *Context) MultMatrix(m mgl32.Mat4) { c.p.Matrices.Multiply(m) }

// Translate appends a translation to the current matrix.
func (c *Context) Translate(x, y, z float32) { c.p.Matrices.Translate(x, y, z) }

// Rotate appends a rotation of angle degrees around (x, y, z).
func (c *Context) Rotate(angle, x, y, z float32) { c.p.Matrices.Rotate(angle, x, y, z) }

// Scale appends a scale to the current matrix.
func (c *Context) Scale(x, y, z float32) { c.p.Matrices.Scale(x, y, z) }

// PushMatrix saves the current matrix. It reports false on stack overflow.
func (c *Context) PushMatrix() bool { return c.p.Matrices.Push() }

// PopMatrix restores the last saved matrix. It reports false on stack
// underflow.
func (c *Context) PopMatrix() bool { return c.p.Matrices.Pop() }

// Frustum multiplies the current matrix by a perspective projection.
func (c *Context) Frustum(left, right, bottom, top, near, far float32) {
	c.p.Matrices.Multiply(mgl32.Frustum(left, right, bottom, top, near, far))
}

// Ortho multiplies the current matrix by an orthographic projection.
func (c *Context) Ortho(left, right, bottom, top, near, far float32) {
	c.p.Matrices.Multiply(mgl32.Ortho(left, right, bottom, top, near, far))
}

// Perspective multiplies the current matrix by a perspective projection
// with a vertical field of view of fovy degrees.
func (c *Context) Perspective(fovy, aspect, near, far float32) {
	c.p.Matrices.Multiply(mgl32.Perspective(mgl32.DegToRad(fovy), aspect, near, far))
}

// Viewport places the viewport in window coordinates.
func (c *Context) Viewport(x, y, width, height int) {
	c.p.Viewport.Set(float32(x), float32(y), float32(width), float32(height))
}

// DepthRange maps normalized depth to [near, far].
func (c *Context) DepthRange(near, far float32) { c.p.Viewport.SetDepthRange(near, far) }

// SetClearColor sets the color used by Clear.
func (c *Context) SetClearColor(col gputypes.Color) bool { return c.r.SetClearColor(col) }

// SetClearDepth sets the depth used by Clear, in [0, 1].
func (c *Context) SetClearDepth(depth float64) bool {
	return c.r.SetClearDepth(command.DepthFromFloat(depth))
}

// SetClearStencil sets the stencil value used by Clear.
func (c *Context) SetClearStencil(v uint8) {
	c.p.Stencil.Front.Clear = v
	c.p.Stencil.Back.Clear = v
}

// Clear clears the selected buffers. With the scissor test enabled only
// the bands the scissor box touches are cleared.
func (c *Context) Clear(color, depth, stencil bool) bool {
	if stencil && !c.p.Stencil.Sync(c.p.Stencil.Front, c.r.SetStencil) {
		return false
	}
	return c.r.Clear(color, depth, stencil)
}

// Scissor sets the scissor box.
func (c *Context) Scissor(x, y int32, width, height uint32) bool {
	return c.r.SetScissorBox(x, y, width, height)
}

// Render finishes the frame and starts its upload. It blocks only while
// the previous frame is still uploading.
func (c *Context) Render() { c.r.Render() }

// Close renders the last frame and waits for its upload.
func (c *Context) Close() error { return c.r.Close() }
