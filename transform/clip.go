// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package transform

import "github.com/go-gl/mathgl/mgl32"

// Vertex is a vertex with its attributes. Pos is in object space on input
// and in clip space after the vertex transform.
type Vertex struct {
	Pos    mgl32.Vec4
	Normal mgl32.Vec3
	Color  mgl32.Vec4
	Tex    [MaxTMUs]mgl32.Vec4
}

// MaxClipVertices bounds a clipped triangle: three vertices plus one per
// clip plane.
const MaxClipVertices = 9

// ClipList holds the polygon of one triangle during clipping.
type ClipList [MaxClipVertices]Vertex

type outCode uint8

const (
	ocNear outCode = 1 << iota
	ocFar
	ocTop
	ocBottom
	ocLeft
	ocRight
)

var clipPlanes = [...]outCode{ocNear, ocFar, ocLeft, ocRight, ocTop, ocBottom}

func outCodeOf(v mgl32.Vec4) outCode {
	var c outCode
	w := v[3]
	if v[0] < -w {
		c |= ocLeft
	}
	if v[0] > w {
		c |= ocRight
	}
	if v[1] < -w {
		c |= ocBottom
	}
	if v[1] > w {
		c |= ocTop
	}
	if v[2] < -w {
		c |= ocNear
	}
	if v[2] > w {
		c |= ocFar
	}
	return c
}

// planeDist is the homogeneous distance of v to plane; it is zero on the
// plane and changes sign across it.
func planeDist(plane outCode, v mgl32.Vec4) float32 {
	switch plane {
	case ocRight:
		return v[0] - v[3]
	case ocLeft:
		return v[0] + v[3]
	case ocTop:
		return v[1] - v[3]
	case ocBottom:
		return v[1] + v[3]
	case ocNear:
		return v[2] + v[3]
	default:
		return v[2] - v[3]
	}
}

// Inside reports whether all three positions are inside the view volume.
func Inside(v0, v1, v2 mgl32.Vec4) bool {
	return outCodeOf(v0)|outCodeOf(v1)|outCodeOf(v2) == 0
}

// Outside reports whether all three positions are outside one plane.
func Outside(v0, v1, v2 mgl32.Vec4) bool {
	return outCodeOf(v0)&outCodeOf(v1)&outCodeOf(v2) != 0
}

func lerp(a, b mgl32.Vec4, t float32) mgl32.Vec4 {
	return a.Add(b.Sub(a).Mul(t))
}

// interpolate returns the vertex on plane between out and in.
func interpolate(plane outCode, out, in *Vertex) Vertex {
	d0 := planeDist(plane, out.Pos)
	d1 := planeDist(plane, in.Pos)
	t := d0 / (d0 - d1)
	v := Vertex{
		Pos:   lerp(out.Pos, in.Pos, t),
		Color: lerp(out.Color, in.Color, t),
	}
	for i := range v.Tex {
		v.Tex[i] = lerp(out.Tex[i], in.Tex[i], t)
	}
	return v
}

func clipAgainst(dst *ClipList, plane outCode, src []Vertex) int {
	n := 0
	for i := range src {
		cur := &src[i]
		if outCodeOf(cur.Pos)&plane == 0 {
			dst[n] = *cur
			n++
			continue
		}
		prev := &src[(i+len(src)-1)%len(src)]
		if outCodeOf(prev.Pos)&plane == 0 {
			dst[n] = interpolate(plane, cur, prev)
			n++
		}
		next := &src[(i+1)%len(src)]
		if outCodeOf(next.Pos)&plane == 0 {
			dst[n] = interpolate(plane, cur, next)
			n++
		}
	}
	return n
}

// Clip clips the triangle in list[0:3] against the view volume and returns
// the resulting convex polygon, which aliases either list or buf. Draw it
// as the fan (v0, vi, vi+1). A triangle that is fully inside is returned
// unchanged; an empty result means nothing is visible.
func Clip(list, buf *ClipList) []Vertex {
	oc0, oc1, oc2 := outCodeOf(list[0].Pos), outCodeOf(list[1].Pos), outCodeOf(list[2].Pos)
	if oc0|oc1|oc2 == 0 {
		return list[:3]
	}
	if oc0&oc1&oc2 != 0 {
		return nil
	}

	in, out := list, buf
	n := 3
	for _, plane := range clipPlanes {
		if m := clipAgainst(out, plane, in[:n]); m > 0 {
			in, out = out, in
			n = m
		}
	}
	if Outside(in[0].Pos, in[1].Pos, in[2].Pos) {
		return nil
	}
	return in[:n]
}
