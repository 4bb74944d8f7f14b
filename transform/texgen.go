// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// TexGenMode is a texture coordinate generation function.
type TexGenMode uint8

// Texture coordinate generation modes.
const (
	EyeLinear TexGenMode = iota
	ObjectLinear
	SphereMap
	ReflectionMap
)

// TexGenCoord is one generated coordinate: S, T or R.
type TexGenCoord struct {
	Enabled bool
	Mode    TexGenMode
	// Object is the object-linear plane.
	Object mgl32.Vec4
	// Eye is the eye-linear plane, already transformed to eye space.
	Eye mgl32.Vec4
}

// TexGen generates texture coordinates for one texture unit.
type TexGen struct {
	S, T, R TexGenCoord
}

// NewTexGen returns the power-on state: generation disabled, eye-linear
// mode and unit planes along X, Y and Z.
func NewTexGen() TexGen {
	x := mgl32.Vec4{1, 0, 0, 0}
	y := mgl32.Vec4{0, 1, 0, 0}
	z := mgl32.Vec4{0, 0, 1, 0}
	return TexGen{
		S: TexGenCoord{Object: x, Eye: x},
		T: TexGenCoord{Object: y, Eye: y},
		R: TexGenCoord{Object: z, Eye: z},
	}
}

// SetEyePlane stores plane for coordinate c in eye space. normal is the
// normal matrix current at the time of the call.
func SetEyePlane(c *TexGenCoord, plane mgl32.Vec4, normal mgl32.Mat4) {
	c.Eye = normal.Mul4x1(plane)
}

func (g *TexGen) enabled() bool { return g.S.Enabled || g.T.Enabled || g.R.Enabled }

func (g *TexGen) uses(m TexGenMode) bool {
	return g.S.Mode == m || g.T.Mode == m || g.R.Mode == m
}

// Generate overwrites the enabled coordinates of st for object space
// vertex v and object space normal n.
func (g *TexGen) Generate(st mgl32.Vec4, v mgl32.Vec4, n mgl32.Vec3, modelView, normal mgl32.Mat4) mgl32.Vec4 {
	if !g.enabled() {
		return st
	}
	coords := [3]*TexGenCoord{&g.S, &g.T, &g.R}

	var eye mgl32.Vec4
	var eyeNormal mgl32.Vec3
	if g.uses(EyeLinear) || g.uses(SphereMap) || g.uses(ReflectionMap) {
		eye = modelView.Mul4x1(v)
		eyeNormal = normal.Mat3().Mul3x1(n)
	}
	var sphere, reflect mgl32.Vec3
	if g.uses(SphereMap) {
		sphere = sphereVector(eye, eyeNormal)
	}
	if g.uses(ReflectionMap) {
		reflect = reflectionVector(eye, eyeNormal)
	}

	for i, c := range coords {
		if !c.Enabled {
			continue
		}
		switch c.Mode {
		case ObjectLinear:
			st[i] = c.Object.Dot(v)
		case EyeLinear:
			st[i] = c.Eye.Dot(eye)
		case SphereMap:
			st[i] = sphere[i]
		case ReflectionMap:
			st[i] = reflect[i]
		}
	}
	return st
}

func reflectionVector(eye mgl32.Vec4, n mgl32.Vec3) mgl32.Vec3 {
	u := normalize3(eye.Vec3())
	return u.Sub(n.Mul(2 * u.Dot(n)))
}

func sphereVector(eye mgl32.Vec4, n mgl32.Vec3) mgl32.Vec3 {
	r := reflectionVector(eye, n)
	r[2]++
	m := 1 / (2 * float32(math.Sqrt(float64(r.Dot(r)))))
	return r.Mul(m).Add(mgl32.Vec3{0.5, 0.5, 0.5})
}
