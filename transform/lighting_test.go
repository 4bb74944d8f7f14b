// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestLightingDefaults(t *testing.T) {
	l := NewLighting()
	if l.Lights[0].Diffuse != (mgl32.Vec4{1, 1, 1, 1}) || l.Lights[0].Specular != (mgl32.Vec4{1, 1, 1, 1}) {
		t.Error("light 0 is not white")
	}
	for i := 1; i < MaxLights; i++ {
		if l.Lights[i].Diffuse != (mgl32.Vec4{0, 0, 0, 1}) {
			t.Errorf("light %d diffuse = %v, want black", i, l.Lights[i].Diffuse)
		}
	}
}

func TestLightingAttenuation(t *testing.T) {
	l := NewLighting()
	l.Lights[0].Enabled = true
	l.Lights[0].QuadraticAttenuation = 1
	l.SetPosition(0, mgl32.Vec4{0, 0, 2, 1})

	got := l.Shade(mgl32.Vec4{1, 1, 1, 0.5}, mgl32.Vec4{0, 0, 0, 1}, mgl32.Vec3{0, 0, 1})
	// 0.04 scene ambient + 0.8 diffuse / (1 + 2²)
	want := mgl32.Vec4{0.2, 0.2, 0.2, 0.5}
	if !approxVec(got, want) {
		t.Errorf("Shade() = %v, want %v", got, want)
	}
}

func TestLightingBackFacingNormal(t *testing.T) {
	l := NewLighting()
	l.Lights[0].Enabled = true
	got := l.Shade(mgl32.Vec4{1, 1, 1, 1}, mgl32.Vec4{0, 0, 0, 1}, mgl32.Vec3{0, 0, -1})
	if !approxVec(got, mgl32.Vec4{0.04, 0.04, 0.04, 1}) {
		t.Errorf("Shade() = %v, want ambient only", got)
	}
}

func TestLightingColorMaterial(t *testing.T) {
	tests := []struct {
		name  string
		track ColorMaterial
		want  mgl32.Vec4
	}{
		// c = 0.5: ambient tracks 0.5·0.2, diffuse tracks 0.5·1.
		{"ambient and diffuse", TrackAmbientAndDiffuse, mgl32.Vec4{0.6, 0.6, 0.6, 1}},
		{"diffuse", TrackDiffuse, mgl32.Vec4{0.54, 0.54, 0.54, 1}},
		{"ambient", TrackAmbient, mgl32.Vec4{0.9, 0.9, 0.9, 1}},
		{"emission", TrackEmission, mgl32.Vec4{1.34, 1.34, 1.34, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLighting()
			l.Lights[0].Enabled = true
			l.EnableColorMaterial(true)
			l.SetColorMaterial(tt.track)
			got := l.Shade(mgl32.Vec4{0.5, 0.5, 0.5, 1}, mgl32.Vec4{0, 0, 0, 1}, mgl32.Vec3{0, 0, 1})
			if !approxVec(got, tt.want) {
				t.Errorf("Shade() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpecularExponent(t *testing.T) {
	tests := []struct {
		x, exp, want float32
	}{
		{0.5, 0, 1},
		{0.5, 1, 0.5},
		{0.5, 2, 0.25},
		{0, 3, 0},
	}
	for _, tt := range tests {
		if got := specular(tt.x, tt.exp); !approx(got, tt.want) {
			t.Errorf("specular(%v, %v) = %v, want %v", tt.x, tt.exp, got, tt.want)
		}
	}
}

func TestTexGenModes(t *testing.T) {
	id := mgl32.Ident4()
	v := mgl32.Vec4{3, 4, 5, 1}

	g := NewTexGen()
	st := mgl32.Vec4{9, 9, 9, 1}
	if got := g.Generate(st, v, mgl32.Vec3{0, 0, 1}, id, id); got != st {
		t.Errorf("disabled Generate() = %v, want unchanged", got)
	}

	g.S.Enabled = true
	g.S.Mode = ObjectLinear
	g.S.Object = mgl32.Vec4{2, 0, 0, 0}
	g.T.Enabled = true
	g.T.Mode = EyeLinear
	got := g.Generate(st, v, mgl32.Vec3{0, 0, 1}, mgl32.Translate3D(0, 1, 0), id)
	if got[0] != 6 || got[1] != 5 || got[2] != 9 {
		t.Errorf("Generate() = %v, want [6 5 9 1]", got)
	}
}

func TestTexGenSphereMap(t *testing.T) {
	id := mgl32.Ident4()
	g := NewTexGen()
	g.S = TexGenCoord{Enabled: true, Mode: SphereMap}
	g.T = TexGenCoord{Enabled: true, Mode: SphereMap}
	got := g.Generate(mgl32.Vec4{0, 0, 0, 1}, mgl32.Vec4{0, 0, -1, 1}, mgl32.Vec3{0, 0, 1}, id, id)
	if !approx(got[0], 0.5) || !approx(got[1], 0.5) {
		t.Errorf("sphere map = %v, want s=0.5 t=0.5", got)
	}
}

func TestTexGenReflectionMap(t *testing.T) {
	id := mgl32.Ident4()
	g := NewTexGen()
	g.R = TexGenCoord{Enabled: true, Mode: ReflectionMap}
	got := g.Generate(mgl32.Vec4{0, 0, 0, 1}, mgl32.Vec4{0, 0, -2, 1}, mgl32.Vec3{0, 0, 1}, id, id)
	if !approx(got[2], 1) {
		t.Errorf("reflection r = %v, want 1", got[2])
	}
}

func TestSetEyePlane(t *testing.T) {
	var c TexGenCoord
	SetEyePlane(&c, mgl32.Vec4{1, 2, 3, 4}, mgl32.Scale3D(2, 2, 2))
	if want := (mgl32.Vec4{2, 4, 6, 4}); c.Eye != want {
		t.Errorf("Eye = %v, want %v", c.Eye, want)
	}
}

func TestPrimitiveAssembler(t *testing.T) {
	tests := []struct {
		mode DrawMode
		n    int
		want [][3]int
	}{
		{Triangles, 6, [][3]int{{0, 1, 2}, {3, 4, 5}}},
		{TriangleStrip, 5, [][3]int{{0, 1, 2}, {2, 1, 3}, {2, 3, 4}}},
		{TriangleFan, 5, [][3]int{{0, 1, 2}, {0, 2, 3}, {0, 3, 4}}},
		{Polygon, 4, [][3]int{{0, 1, 2}, {0, 2, 3}}},
		{Quads, 8, [][3]int{{0, 1, 2}, {0, 2, 3}, {4, 5, 6}, {4, 6, 7}}},
		{QuadStrip, 6, [][3]int{{0, 1, 2}, {1, 3, 2}, {2, 3, 4}, {3, 5, 4}}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			var a PrimitiveAssembler
			a.Begin(tt.mode, 100, 100)
			var got [][3]int
			for i := range tt.n {
				for _, tri := range a.Push(Vertex{Pos: mgl32.Vec4{float32(i), 0, 0, 1}}) {
					got = append(got, [3]int{int(tri[0].Pos[0]), int(tri[1].Pos[0]), int(tri[2].Pos[0])})
				}
			}
			if len(a.End()) != 0 {
				t.Error("End() returned triangles")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("triangle %d = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestPrimitiveAssemblerLines(t *testing.T) {
	tests := []struct {
		mode DrawMode
		n    int
		want int
	}{
		{Lines, 4, 4},
		{LineStrip, 4, 6},
		{LineLoop, 4, 8},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			var a PrimitiveAssembler
			a.Begin(tt.mode, 100, 100)
			got := 0
			for i := range tt.n {
				got += len(a.Push(Vertex{Pos: mgl32.Vec4{float32(i) / 10, float32(i%2) / 10, 0, 1}}))
			}
			got += len(a.End())
			if got != tt.want {
				t.Errorf("triangles = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestPrimitiveAssemblerDegenerateLine(t *testing.T) {
	var a PrimitiveAssembler
	a.Begin(Lines, 100, 100)
	a.Push(vtx(0.1, 0.1))
	if got := a.Push(vtx(0.1, 0.1)); len(got) != 0 {
		t.Errorf("zero length line produced %d triangles", len(got))
	}
}
