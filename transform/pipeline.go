// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"github.com/gogpu/rrx/command"
	"github.com/gogpu/rrx/internal/logging"
	"github.com/gogpu/rrx/raster"
)

// Sink receives the window space triangles and stencil updates produced by
// a Pipeline. Both calls report false when the work could not be queued.
type Sink interface {
	DrawTriangle(tri *raster.Triangle) bool
	SetStencil(s command.Stencil) bool
}

// Pipeline runs vertices through transform, lighting, primitive assembly,
// clipping, viewport mapping and culling, and hands the surviving
// triangles to a Sink.
type Pipeline struct {
	Matrices  *MatrixStore
	Lighting  *Lighting
	TexGen    [MaxTMUs]TexGen
	Viewport  Viewport
	Culling   Culling
	Stencil   *StencilSelector
	Assembler PrimitiveAssembler

	// TmuEnable selects the texture units whose coordinates are generated
	// and transformed.
	TmuEnable [MaxTMUs]bool
	// NormalizeNormals renormalizes eye space normals before lighting.
	NormalizeNormals bool

	sink      Sink
	list, buf ClipList
	tri       raster.Triangle
	ok        bool
}

// NewPipeline returns a pipeline in its power-on state drawing into a
// width × height viewport.
func NewPipeline(sink Sink, width, height int) *Pipeline {
	p := &Pipeline{
		Matrices: NewMatrixStore(),
		Lighting: NewLighting(),
		Viewport: NewViewport(float32(width), float32(height)),
		Culling:  DefaultCulling(),
		Stencil:  NewStencilSelector(),
		sink:     sink,
	}
	for i := range p.TexGen {
		p.TexGen[i] = NewTexGen()
	}
	return p
}

// Begin starts a primitive. Derived matrices are refreshed and, for
// single-sided stencil, the stencil configuration is synchronized.
func (p *Pipeline) Begin(mode DrawMode) bool {
	p.Matrices.Recalculate()
	p.Assembler.Begin(mode, p.Viewport.Width(), p.Viewport.Height())
	p.ok = true
	if !p.Stencil.TwoSided {
		p.ok = p.Stencil.Sync(p.Stencil.Front, p.sink.SetStencil)
	}
	return p.ok
}

// Vertex feeds one object space vertex. It reports false once any
// triangle of the current primitive was rejected by the sink.
func (p *Pipeline) Vertex(v Vertex) bool {
	p.transform(&v)
	for _, t := range p.Assembler.Push(v) {
		if !p.drawTriangle(&t) {
			p.ok = false
		}
	}
	return p.ok
}

// End finishes the primitive and reports whether every triangle of it
// was accepted.
func (p *Pipeline) End() bool {
	for _, t := range p.Assembler.End() {
		if !p.drawTriangle(&t) {
			p.ok = false
		}
	}
	return p.ok
}

func (p *Pipeline) transform(v *Vertex) {
	m := p.Matrices
	for t := range MaxTMUs {
		if !p.TmuEnable[t] {
			continue
		}
		st := p.TexGen[t].Generate(v.Tex[t], v.Pos, v.Normal, m.ModelView(), m.Normal())
		v.Tex[t] = m.TextureMatrix(t).Mul4x1(st)
	}
	if p.Lighting.Enabled {
		n := m.Normal().Mat3().Mul3x1(v.Normal)
		if p.NormalizeNormals {
			n = normalize3(n)
		}
		eye := m.ModelView().Mul4x1(v.Pos)
		v.Color = p.Lighting.Shade(v.Color, eye, n)
	}
	v.Pos = m.MVP().Mul4x1(v.Pos)
}

func (p *Pipeline) toWindow(v *Vertex) {
	v.Pos = p.Viewport.Transform(PerspectiveDivide(v.Pos))
}

func (p *Pipeline) drawTriangle(t *[3]Vertex) bool {
	if Outside(t[0].Pos, t[1].Pos, t[2].Pos) {
		return true
	}
	var poly []Vertex
	if Inside(t[0].Pos, t[1].Pos, t[2].Pos) {
		poly = t[:]
	} else {
		copy(p.list[:3], t[:])
		poly = Clip(&p.list, &p.buf)
		if len(poly) < 3 {
			return true
		}
	}
	for i := range poly {
		p.toWindow(&poly[i])
	}

	// Clipping subdivides without reordering, so the first triangle of the
	// fan decides the facing of all of them.
	v0, v1, v2 := poly[0].Pos, poly[1].Pos, poly[2].Pos
	if p.Culling.Cull(v0, v1, v2) {
		return true
	}
	if p.Stencil.TwoSided {
		if !p.Stencil.Sync(p.Stencil.Select(v0, v1, v2), p.sink.SetStencil) {
			return false
		}
	}
	for i := 2; i < len(poly); i++ {
		p.fill(&poly[0], &poly[i-1], &poly[i])
		if !p.sink.DrawTriangle(&p.tri) {
			logging.L().Debug("transform: triangle rejected", "vertices", len(poly))
			return false
		}
	}
	return true
}

func (p *Pipeline) fill(a, b, c *Vertex) {
	for i, v := range [3]*Vertex{a, b, c} {
		p.tri.V[i] = v.Pos
		p.tri.Color[i] = v.Color
		p.tri.Tex[i] = v.Tex
	}
}
