// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rrx/command"
	"github.com/gogpu/rrx/raster"
)

// depthDownscale keeps the largest depth just below 1.0, the first value
// the 16-bit depth buffer cannot hold.
const depthDownscale = 65534.0 / 65536.0

// Viewport maps normalized device coordinates to window coordinates.
type Viewport struct {
	x, y          float32
	width, height float32
	depthScale    float32
	depthOffset   float32
}

// NewViewport returns a viewport covering width × height pixels with the
// default depth range [0, 1].
func NewViewport(width, height float32) Viewport {
	var vp Viewport
	vp.Set(0, 0, width, height)
	vp.SetDepthRange(0, 1)
	return vp
}

// Set places the viewport.
func (vp *Viewport) Set(x, y, width, height float32) {
	vp.x, vp.y = x, y
	vp.width, vp.height = width, height
}

// SetDepthRange maps NDC depth -1 and 1 to near and far.
func (vp *Viewport) SetDepthRange(near, far float32) {
	vp.depthScale = (far - near) / 2
	vp.depthOffset = (near + far) / 2
}

// Width returns the viewport width in pixels.
func (vp *Viewport) Width() float32 { return vp.width }

// Height returns the viewport height in pixels.
func (vp *Viewport) Height() float32 { return vp.height }

// Transform maps an NDC position to window coordinates. W is unchanged.
func (vp *Viewport) Transform(v mgl32.Vec4) mgl32.Vec4 {
	v[0] = (v[0]+1)*(vp.width/2) + vp.x
	v[1] = (v[1]+1)*(vp.height/2) + vp.y
	v[2] = (vp.depthScale*v[2] + vp.depthOffset) * depthDownscale
	return v
}

// PerspectiveDivide divides x, y and z by w and replaces w by 1/w.
func PerspectiveDivide(v mgl32.Vec4) mgl32.Vec4 {
	inv := 1 / v[3]
	return mgl32.Vec4{v[0] * inv, v[1] * inv, v[2] * inv, inv}
}

// frontFacing reports whether a window space triangle faces the viewer
// under ff. The rasterizer walks triangles clockwise, so a non-positive
// edge function means counter-clockwise in API terms.
func frontFacing(v0, v1, v2 mgl32.Vec4, ff gputypes.FrontFace) bool {
	ccw := raster.EdgeFunction(v0, v1, v2) <= 0
	if ff == gputypes.FrontFaceCW {
		return !ccw
	}
	return ccw
}

// Culling discards triangles by facing.
type Culling struct {
	Enabled   bool
	Mode      gputypes.CullMode
	FrontFace gputypes.FrontFace
}

// DefaultCulling returns culling disabled, back faces selected and
// counter-clockwise front faces.
func DefaultCulling() Culling {
	return Culling{Mode: gputypes.CullModeBack, FrontFace: gputypes.FrontFaceCCW}
}

// Cull reports whether the window space triangle is discarded.
func (c *Culling) Cull(v0, v1, v2 mgl32.Vec4) bool {
	if !c.Enabled {
		return false
	}
	front := frontFacing(v0, v1, v2, c.FrontFace)
	switch c.Mode {
	case gputypes.CullModeBack:
		return !front
	case gputypes.CullModeFront:
		return front
	default:
		return false
	}
}

// StencilSelector tracks the stencil configuration and picks the front or
// back face set for two-sided stencil.
type StencilSelector struct {
	// TwoSided enables separate front and back configurations. Without it
	// Front is used for every triangle.
	TwoSided bool
	Front    command.Stencil
	Back     command.Stencil

	uploaded command.Stencil
	synced   bool
}

// NewStencilSelector returns both faces in the default configuration.
func NewStencilSelector() *StencilSelector {
	return &StencilSelector{Front: command.DefaultStencil(), Back: command.DefaultStencil()}
}

// Face names a triangle face for stencil configuration.
type Face uint8

// Faces.
const (
	FaceFront Face = iota
	FaceBack
)

// Config returns the configuration that setters for face modify. Without
// two-sided stencil every face maps to Front.
func (s *StencilSelector) Config(face Face) *command.Stencil {
	if s.TwoSided && face == FaceBack {
		return &s.Back
	}
	return &s.Front
}

// Select returns the configuration for a window space triangle.
func (s *StencilSelector) Select(v0, v1, v2 mgl32.Vec4) command.Stencil {
	if s.TwoSided && !frontFacing(v0, v1, v2, gputypes.FrontFaceCCW) {
		return s.Back
	}
	return s.Front
}

// Sync calls emit with reg unless reg is the configuration last emitted.
// It reports emit's result.
func (s *StencilSelector) Sync(reg command.Stencil, emit func(command.Stencil) bool) bool {
	if s.synced && reg == s.uploaded {
		return true
	}
	if !emit(reg) {
		return false
	}
	s.uploaded, s.synced = reg, true
	return true
}

// Invalidate forces the next Sync to emit.
func (s *StencilSelector) Invalidate() { s.synced = false }
