// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package transform

import "github.com/go-gl/mathgl/mgl32"

// DrawMode is a primitive type.
type DrawMode uint8

// Draw modes.
const (
	Triangles DrawMode = iota
	TriangleStrip
	TriangleFan
	Quads
	QuadStrip
	Polygon
	Lines
	LineStrip
	LineLoop
)

var drawModeNames = [...]string{
	Triangles:     "Triangles",
	TriangleStrip: "TriangleStrip",
	TriangleFan:   "TriangleFan",
	Quads:         "Quads",
	QuadStrip:     "QuadStrip",
	Polygon:       "Polygon",
	Lines:         "Lines",
	LineStrip:     "LineStrip",
	LineLoop:      "LineLoop",
}

// String returns the draw mode name.
func (m DrawMode) String() string {
	if int(m) < len(drawModeNames) {
		return drawModeNames[m]
	}
	return "Unknown"
}

// IsLine reports whether m assembles lines.
func (m DrawMode) IsLine() bool { return m >= Lines }

// PrimitiveAssembler turns a vertex stream into triangles. Lines are
// expanded to two triangles of LineWidth pixels. Vertices are expected in
// clip space.
type PrimitiveAssembler struct {
	// LineWidth is the width of lines in pixels.
	LineWidth float32

	mode   DrawMode
	queue  [3]Vertex
	n      int
	count  int
	first  Vertex
	last   Vertex
	width  float32
	height float32
	out    [2][3]Vertex
}

// Begin starts a primitive of the given mode for a viewport of width ×
// height pixels.
func (a *PrimitiveAssembler) Begin(mode DrawMode, width, height float32) {
	a.mode = mode
	a.n = 0
	a.count = 0
	a.width, a.height = width, height
	if a.LineWidth <= 0 {
		a.LineWidth = 1
	}
}

// Mode returns the current draw mode.
func (a *PrimitiveAssembler) Mode() DrawMode { return a.mode }

func (a *PrimitiveAssembler) drop(k int) {
	copy(a.queue[:], a.queue[k:a.n])
	a.n -= k
}

// Push adds a vertex and returns the triangles it completes. The result is
// only valid until the next call.
func (a *PrimitiveAssembler) Push(v Vertex) [][3]Vertex {
	a.queue[a.n] = v
	a.n++
	if a.mode.IsLine() {
		return a.line()
	}
	return a.triangle()
}

func (a *PrimitiveAssembler) triangle() [][3]Vertex {
	if a.n < 3 {
		return nil
	}
	q := &a.queue
	odd := a.count&1 == 1
	var t [3]Vertex
	drop := 1
	switch a.mode {
	case Triangles:
		t = [3]Vertex{q[0], q[1], q[2]}
		drop = 3
	case TriangleFan, Polygon:
		if a.count == 0 {
			a.first = q[0]
		}
		t = [3]Vertex{a.first, q[1], q[2]}
	case TriangleStrip:
		if odd {
			t = [3]Vertex{q[1], q[0], q[2]}
		} else {
			t = [3]Vertex{q[0], q[1], q[2]}
		}
	case Quads:
		if odd {
			t = [3]Vertex{a.first, q[1], q[2]}
			drop = 3
		} else {
			a.first = q[0]
			t = [3]Vertex{a.first, q[1], q[2]}
		}
	case QuadStrip:
		if odd {
			t = [3]Vertex{q[0], q[2], q[1]}
		} else {
			t = [3]Vertex{q[0], q[1], q[2]}
		}
	}
	a.out[0] = t
	a.drop(drop)
	a.count++
	return a.out[:1]
}

func (a *PrimitiveAssembler) line() [][3]Vertex {
	if a.n < 2 {
		return nil
	}
	if a.count == 0 {
		a.first = a.queue[0]
	}
	v0, v1 := a.queue[0], a.queue[1]
	a.last = v1
	if a.mode == Lines {
		a.drop(2)
	} else {
		a.drop(1)
	}
	a.count++
	return a.expandLine(&v0, &v1)
}

// End finishes the primitive and returns the closing segment of a line
// loop, if any.
func (a *PrimitiveAssembler) End() [][3]Vertex {
	defer func() { a.n, a.count = 0, 0 }()
	if a.mode != LineLoop || a.count == 0 {
		return nil
	}
	return a.expandLine(&a.last, &a.first)
}

// expandLine builds the two triangles of a wide line in clip space.
func (a *PrimitiveAssembler) expandLine(p0, p1 *Vertex) [][3]Vertex {
	v0, v1 := p0.Pos, p1.Pos
	nx := -(v1[1]/v1[3] - v0[1]/v0[3])
	ny := v1[0]/v1[3] - v0[0]/v0[3]
	l := mgl32.Vec2{nx, ny}.Len()
	if l == 0 || a.width == 0 || a.height == 0 {
		return nil
	}
	half := a.LineWidth / 2 / l
	nx *= half * 2 / a.width
	ny *= half * 2 / a.height

	offset := func(v mgl32.Vec4, sign float32) mgl32.Vec4 {
		v[0] += sign * nx * v[3]
		v[1] += sign * ny * v[3]
		return v
	}
	q0, q1, q2, q3 := *p0, *p0, *p1, *p1
	q0.Pos = offset(v0, 1)
	q1.Pos = offset(v0, -1)
	q2.Pos = offset(v1, 1)
	q3.Pos = offset(v1, -1)

	a.out[0] = [3]Vertex{q0, q1, q2}
	a.out[1] = [3]Vertex{q2, q1, q3}
	return a.out[:2]
}
