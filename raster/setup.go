// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package raster performs triangle setup on the host: it turns a screen
// space triangle into the descriptor the rasterizer walks.
//
// Positions are converted to fixed point with EdgeBits fractional bits. The
// descriptor holds the bounding box in pixels, three integer edge functions
// with their per-pixel increments, and every interpolated attribute as a
// start value at the bounding box origin plus X and Y increments.
package raster

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/rrx/command"
)

const (
	// EdgeBits is the number of sub-pixel bits of the edge functions.
	EdgeBits = 5

	edgeOne  = 1 << EdgeBits
	edgeHalf = edgeOne / 2
)

// MaxTMUs is the number of texture units a descriptor carries.
const MaxTMUs = command.MaxTMUs

// Triangle is a screen space triangle. V holds x and y in pixels, z in
// depth range and w as 1/w after the perspective divide.
type Triangle struct {
	V     [3]mgl32.Vec4
	Color [3]mgl32.Vec4
	Tex   [3][MaxTMUs]mgl32.Vec4
}

// Setup holds the triangle setup state shared by all triangles of a frame.
type Setup struct {
	// TmuEnable selects the texture units whose coordinates are set up.
	TmuEnable [MaxTMUs]bool
	// Scaling normalizes w and recenters large texture coordinates to
	// keep them in the precision range of fixed point interpolation.
	Scaling bool

	scissor              bool
	scissorX0, scissorY0 int32
	scissorX1, scissorY1 int32
}

// SetScissorBox sets the scissor rectangle in pixels.
func (s *Setup) SetScissorBox(x, y int32, width, height uint32) {
	s.scissorX0 = x << EdgeBits
	s.scissorY0 = y << EdgeBits
	s.scissorX1 = int32(width<<EdgeBits) + s.scissorX0
	s.scissorY1 = int32(height<<EdgeBits) + s.scissorY0
}

// EnableScissor turns scissor rejection on or off.
func (s *Setup) EnableScissor(on bool) { s.scissor = on }

func toFixed(v mgl32.Vec4) [2]int32 {
	return [2]int32{int32(v[0] * edgeOne), int32(v[1] * edgeOne)}
}

func edge(a, b, c [2]int32) int32 {
	return (c[0]-a[0])*(b[1]-a[1]) - (c[1]-a[1])*(b[0]-a[0])
}

// EdgeFunction returns the signed doubled area of a, b, c in floating point.
// It is positive for triangles the rasterizer treats as front facing.
func EdgeFunction(a, b, c mgl32.Vec4) float32 {
	return (c[0]-a[0])*(b[1]-a[1]) - (c[1]-a[1])*(b[0]-a[0])
}

func edges(v [3][2]int32, p [2]int32) [3]int32 {
	return [3]int32{edge(v[1], v[2], p), edge(v[2], v[0], p), edge(v[0], v[1], p)}
}

// Rasterize fills desc for tri. It reports false for a degenerate triangle
// or one entirely outside the scissor box; desc is then undefined.
func (s *Setup) Rasterize(tri *Triangle, desc *Desc) bool {
	var v [3][2]int32
	for i := range v {
		v[i] = toFixed(tri.V[i])
	}
	area := edge(v[0], v[1], v[2])
	sign := int32(1)
	if area <= 0 {
		sign = -1
	}
	area *= sign
	if area <= 0 {
		return false
	}

	x0 := min(v[0][0], v[1][0], v[2][0]) + edgeHalf
	y0 := min(v[0][1], v[1][1], v[2][1]) + edgeHalf
	x1 := max(v[0][0], v[1][0], v[2][0]) + edgeOne + edgeHalf
	y1 := max(v[0][1], v[1][1], v[2][1]) + edgeOne + edgeHalf

	desc.BBStartX = uint16(x0 >> EdgeBits)
	desc.BBStartY = uint16(y0 >> EdgeBits)
	desc.BBEndX = uint16(x1 >> EdgeBits)
	desc.BBEndY = uint16(y1 >> EdgeBits)

	if s.scissor {
		x0, y0 = max(x0, s.scissorX0), max(y0, s.scissorY0)
		x1, y1 = min(x1, s.scissorX1), min(y1, s.scissorY1)
		if x0 >= x1 || y0 >= y1 {
			return false
		}
	}

	p := [2]int32{int32(desc.BBStartX) << EdgeBits, int32(desc.BBStartY) << EdgeBits}
	wi := edges(v, p)
	wx := edges(v, [2]int32{p[0] + edgeOne, p[1]})
	wy := edges(v, [2]int32{p[0], p[1] + edgeOne})
	for i := range 3 {
		wi[i] *= sign
		wx[i] = wx[i]*sign - wi[i]
		wy[i] = wy[i]*sign - wi[i]
	}
	desc.WInit, desc.WXInc, desc.WYInc = wi, wx, wy

	inv := 1 / float32(area)
	norm := func(w [3]int32) mgl32.Vec3 {
		return mgl32.Vec3{float32(w[0]), float32(w[1]), float32(w[2])}.Mul(inv)
	}
	wn, wxn, wyn := norm(wi), norm(wx), norm(wy)

	w := mgl32.Vec3{tri.V[0][3], tri.V[1][3], tri.V[2][3]}
	if s.Scaling {
		w = w.Normalize()
	}
	for t := range MaxTMUs {
		if !s.TmuEnable[t] {
			desc.Tex[t] = TexParams{}
			continue
		}
		ts := mgl32.Vec3{tri.Tex[0][t][0], tri.Tex[1][t][0], tri.Tex[2][t][0]}
		tt := mgl32.Vec3{tri.Tex[0][t][1], tri.Tex[1][t][1], tri.Tex[2][t][1]}
		tq := mgl32.Vec3{tri.Tex[0][t][3], tri.Tex[1][t][3], tri.Tex[2][t][3]}
		if s.Scaling {
			ts = recenter(ts)
			tt = recenter(tt)
		}
		ts, tt, tq = mulElem(ts, w), mulElem(tt, w), mulElem(tq, w)
		desc.Tex[t] = TexParams{
			Stq:     [3]float32{ts.Dot(wn), tt.Dot(wn), tq.Dot(wn)},
			StqXInc: [3]float32{ts.Dot(wxn), tt.Dot(wxn), tq.Dot(wxn)},
			StqYInc: [3]float32{ts.Dot(wyn), tt.Dot(wyn), tq.Dot(wyn)},
		}
	}

	vw := mgl32.Vec3{tri.V[0][3], tri.V[1][3], tri.V[2][3]}
	desc.DepthW, desc.DepthWXInc, desc.DepthWYInc = vw.Dot(wn), vw.Dot(wxn), vw.Dot(wyn)
	vz := mgl32.Vec3{tri.V[0][2], tri.V[1][2], tri.V[2][2]}
	desc.DepthZ, desc.DepthZXInc, desc.DepthZYInc = vz.Dot(wn), vz.Dot(wxn), vz.Dot(wyn)

	for c := range 4 {
		cv := mgl32.Vec3{tri.Color[0][c], tri.Color[1][c], tri.Color[2][c]}
		desc.Color[c] = cv.Dot(wn)
		desc.ColorXInc[c] = cv.Dot(wxn)
		desc.ColorYInc[c] = cv.Dot(wyn)
	}
	return true
}

// recenter shifts coordinates by their integer part when they leave
// [-4, 4]. Wrapping makes the shift invisible.
func recenter(v mgl32.Vec3) mgl32.Vec3 {
	lo := min(v[0], v[1], v[2])
	hi := max(v[0], v[1], v[2])
	if lo < -4 {
		g := float32(int32(lo))
		v = v.Sub(mgl32.Vec3{g, g, g})
	}
	if hi > 4 {
		g := float32(int32(hi))
		v = v.Sub(mgl32.Vec3{g, g, g})
	}
	return v
}

func mulElem(a, b mgl32.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{a[0] * b[0], a[1] * b[1], a[2] * b[2]}
}

// Visible reports whether the bounding box of desc intersects the screen
// lines [lineStart, lineEnd).
func (d *Desc) Visible(lineStart, lineEnd int) bool {
	return int(d.BBEndY) >= lineStart && int(d.BBStartY) < lineEnd
}

// Increment rebases desc to start at lineStart when its bounding box
// begins above it. It reports whether desc intersects [lineStart, lineEnd).
func (d *Desc) Increment(lineStart, lineEnd int) bool {
	if lineStart == 0 && int(d.BBStartY) < lineEnd {
		return true
	}
	if !d.Visible(lineStart, lineEnd) {
		return false
	}
	if int(d.BBStartY) >= lineStart {
		return true
	}
	diff := int32(lineStart - int(d.BBStartY))
	fd := float32(diff)
	for i := range 3 {
		d.WInit[i] += d.WYInc[i] * diff
	}
	d.DepthW += d.DepthWYInc * fd
	d.DepthZ += d.DepthZYInc * fd
	for i := range 4 {
		d.Color[i] += d.ColorYInc[i] * fd
	}
	for t := range d.Tex {
		for i := range 3 {
			d.Tex[t].Stq[i] += d.Tex[t].StqYInc[i] * fd
		}
	}
	return true
}
