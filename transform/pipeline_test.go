// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"

	"github.com/gogpu/rrx/command"
	"github.com/gogpu/rrx/raster"
)

type recordSink struct {
	tris     []raster.Triangle
	stencils []command.Stencil
	limit    int
}

func (s *recordSink) DrawTriangle(tri *raster.Triangle) bool {
	if s.limit > 0 && len(s.tris) >= s.limit {
		return false
	}
	s.tris = append(s.tris, *tri)
	return true
}

func (s *recordSink) SetStencil(st command.Stencil) bool {
	s.stencils = append(s.stencils, st)
	return true
}

func vtx(x, y float32) Vertex {
	return Vertex{
		Pos:   mgl32.Vec4{x, y, 0, 1},
		Color: mgl32.Vec4{1, 1, 1, 1},
		Tex:   [MaxTMUs]mgl32.Vec4{{0, 0, 0, 1}, {0, 0, 0, 1}},
	}
}

func draw(p *Pipeline, mode DrawMode, vs ...Vertex) bool {
	ok := p.Begin(mode)
	for _, v := range vs {
		ok = p.Vertex(v) && ok
	}
	return p.End() && ok
}

func TestPipelineTriangle(t *testing.T) {
	sink := &recordSink{}
	p := NewPipeline(sink, 100, 100)
	if !draw(p, Triangles, vtx(0, 0), vtx(0.5, 0), vtx(0, 0.5)) {
		t.Fatal("draw failed")
	}
	if len(sink.tris) != 1 {
		t.Fatalf("triangles = %d, want 1", len(sink.tris))
	}
	z := float32(0.5 * 65534.0 / 65536.0)
	want := [3]mgl32.Vec4{{50, 50, z, 1}, {75, 50, z, 1}, {50, 75, z, 1}}
	for i, v := range sink.tris[0].V {
		if !approxVec(v, want[i]) {
			t.Errorf("V[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestPipelineClipsToFan(t *testing.T) {
	sink := &recordSink{}
	p := NewPipeline(sink, 100, 100)
	draw(p, Triangles, vtx(0, 0), vtx(2, 0), vtx(0, 0.5))
	if len(sink.tris) != 2 {
		t.Fatalf("triangles = %d, want 2", len(sink.tris))
	}
	for _, tri := range sink.tris {
		for _, v := range tri.V {
			if v[0] > 100+1e-3 {
				t.Errorf("x = %v beyond viewport", v[0])
			}
		}
	}
}

func TestPipelineOutsideDropped(t *testing.T) {
	sink := &recordSink{}
	p := NewPipeline(sink, 100, 100)
	if !draw(p, Triangles, vtx(2, 0), vtx(3, 0), vtx(2, 1)) {
		t.Error("draw of invisible triangle failed")
	}
	if len(sink.tris) != 0 {
		t.Errorf("triangles = %d, want 0", len(sink.tris))
	}
}

func TestPipelineCulling(t *testing.T) {
	sink := &recordSink{}
	p := NewPipeline(sink, 100, 100)
	p.Culling.Enabled = true
	p.Culling.Mode = gputypes.CullModeBack
	draw(p, Triangles, vtx(0, 0), vtx(0, 0.5), vtx(0.5, 0))
	draw(p, Triangles, vtx(0, 0), vtx(0.5, 0), vtx(0, 0.5))
	if len(sink.tris) != 1 {
		t.Errorf("triangles = %d, want 1", len(sink.tris))
	}
}

func TestPipelineModelView(t *testing.T) {
	sink := &recordSink{}
	p := NewPipeline(sink, 100, 100)
	p.Matrices.SetMode(ModelView)
	p.Matrices.Translate(0.5, 0, 0)
	draw(p, Triangles, vtx(0, 0), vtx(0.25, 0), vtx(0, 0.25))
	if len(sink.tris) != 1 {
		t.Fatalf("triangles = %d, want 1", len(sink.tris))
	}
	if got := sink.tris[0].V[0][0]; !approx(got, 75) {
		t.Errorf("x = %v, want 75", got)
	}
}

func TestPipelineStencilSync(t *testing.T) {
	sink := &recordSink{}
	p := NewPipeline(sink, 100, 100)
	draw(p, Triangles, vtx(0, 0), vtx(0.5, 0), vtx(0, 0.5))
	draw(p, Triangles, vtx(0, 0), vtx(0.5, 0), vtx(0, 0.5))
	if len(sink.stencils) != 1 {
		t.Errorf("single sided stencil writes = %d, want 1", len(sink.stencils))
	}

	p.Stencil.TwoSided = true
	p.Stencil.Config(FaceBack).Ref = 5
	draw(p, Triangles, vtx(0, 0), vtx(0, 0.5), vtx(0.5, 0))
	if n := len(sink.stencils); n != 2 || sink.stencils[1].Ref != 5 {
		t.Errorf("two sided stencil writes = %d, want back config written", n)
	}
}

func TestPipelineSinkFull(t *testing.T) {
	sink := &recordSink{limit: 1}
	p := NewPipeline(sink, 100, 100)
	ok := draw(p, Triangles,
		vtx(0, 0), vtx(0.5, 0), vtx(0, 0.5),
		vtx(0, 0), vtx(-0.5, 0), vtx(0, -0.5))
	if ok {
		t.Error("draw() = true with a full sink")
	}
}

func TestPipelineLines(t *testing.T) {
	sink := &recordSink{}
	p := NewPipeline(sink, 100, 100)
	p.Assembler.LineWidth = 4
	draw(p, Lines, vtx(-0.5, 0), vtx(0.5, 0))
	if len(sink.tris) != 2 {
		t.Fatalf("triangles = %d, want 2", len(sink.tris))
	}
	ys := map[float32]bool{}
	for _, tri := range sink.tris {
		for _, v := range tri.V {
			ys[float32(int(v[1]+0.5))] = true
		}
	}
	if !ys[48] || !ys[52] || len(ys) != 2 {
		t.Errorf("line edges at %v, want 48 and 52", ys)
	}
}

func TestPipelineLighting(t *testing.T) {
	sink := &recordSink{}
	p := NewPipeline(sink, 100, 100)
	p.Lighting.Enabled = true
	p.Lighting.Lights[0].Enabled = true
	v := func(x, y float32) Vertex {
		w := vtx(x, y)
		w.Normal = mgl32.Vec3{0, 0, 1}
		return w
	}
	draw(p, Triangles, v(0, 0), v(0.5, 0), v(0, 0.5))
	if len(sink.tris) != 1 {
		t.Fatalf("triangles = %d, want 1", len(sink.tris))
	}
	if got := sink.tris[0].Color[0]; !approxVec(got, mgl32.Vec4{0.84, 0.84, 0.84, 1}) {
		t.Errorf("lit color = %v, want [0.84 0.84 0.84 1]", got)
	}
}

func TestPipelineTexGen(t *testing.T) {
	sink := &recordSink{}
	p := NewPipeline(sink, 100, 100)
	p.TmuEnable[0] = true
	p.TexGen[0].S = TexGenCoord{Enabled: true, Mode: ObjectLinear, Object: mgl32.Vec4{2, 0, 0, 0}}
	p.Matrices.SetMode(Texture)
	p.Matrices.Translate(0, 1, 0)
	draw(p, Triangles, vtx(0, 0), vtx(0.5, 0), vtx(0, 0.5))
	if len(sink.tris) != 1 {
		t.Fatalf("triangles = %d, want 1", len(sink.tris))
	}
	got := sink.tris[0].Tex[1][0]
	if !approx(got[0], 1) || !approx(got[1], 1) {
		t.Errorf("tex = %v, want s=1 t=1", got)
	}
}
