// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package transform

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxLights is the number of light sources.
const MaxLights = 8

// diffuseCutoff treats a smaller N·L as unlit.
const diffuseCutoff = 0.01

// Light is one light source. A Position with W == 0 is a directional light.
type Light struct {
	Enabled              bool
	Ambient              mgl32.Vec4
	Diffuse              mgl32.Vec4
	Specular             mgl32.Vec4
	Position             mgl32.Vec4
	ConstantAttenuation  float32
	LinearAttenuation    float32
	QuadraticAttenuation float32

	// derived from Position for directional lights
	dir      mgl32.Vec3
	halfway  mgl32.Vec3
	position mgl32.Vec3
}

// Material holds the surface reflectance used by the lighting equation.
type Material struct {
	Emission         mgl32.Vec4
	Ambient          mgl32.Vec4
	Diffuse          mgl32.Vec4
	Specular         mgl32.Vec4
	SpecularExponent float32
}

// ColorMaterial selects which material color tracks the vertex color.
type ColorMaterial uint8

// Color material tracking modes.
const (
	TrackAmbientAndDiffuse ColorMaterial = iota
	TrackAmbient
	TrackDiffuse
	TrackSpecular
	TrackEmission
)

// Lighting is the fixed-function lighting state.
type Lighting struct {
	Enabled      bool
	Lights       [MaxLights]Light
	Material     Material
	SceneAmbient mgl32.Vec4

	colorMaterial bool
	tracking      ColorMaterial
}

// NewLighting returns the power-on lighting state: lighting off, light 0
// white, the other lights black, all pointing down -Z.
func NewLighting() *Lighting {
	l := &Lighting{
		Material: Material{
			Emission: mgl32.Vec4{0, 0, 0, 1},
			Ambient:  mgl32.Vec4{0.2, 0.2, 0.2, 1},
			Diffuse:  mgl32.Vec4{0.8, 0.8, 0.8, 1},
			Specular: mgl32.Vec4{0, 0, 0, 1},
		},
		SceneAmbient: mgl32.Vec4{0.2, 0.2, 0.2, 1},
	}
	black := mgl32.Vec4{0, 0, 0, 1}
	for i := range l.Lights {
		l.Lights[i] = Light{
			Ambient:             black,
			Diffuse:             black,
			Specular:            black,
			ConstantAttenuation: 1,
		}
		l.SetPosition(i, mgl32.Vec4{0, 0, 1, 0})
	}
	l.Lights[0].Diffuse = mgl32.Vec4{1, 1, 1, 1}
	l.Lights[0].Specular = mgl32.Vec4{1, 1, 1, 1}
	return l
}

// SetPosition sets the eye space position of light i.
func (l *Lighting) SetPosition(i int, pos mgl32.Vec4) {
	lt := &l.Lights[i]
	lt.Position = pos
	lt.position = pos.Vec3()
	lt.dir = normalize3(pos.Vec3())
	lt.halfway = normalize3(lt.dir.Add(mgl32.Vec3{0, 0, 1}))
}

// EnableColorMaterial turns color material tracking on or off.
func (l *Lighting) EnableColorMaterial(on bool) { l.colorMaterial = on }

// ColorMaterialEnabled reports whether color material tracking is on.
func (l *Lighting) ColorMaterialEnabled() bool { return l.colorMaterial }

// SetColorMaterial selects the tracked material color.
func (l *Lighting) SetColorMaterial(m ColorMaterial) { l.tracking = m }

// material returns the material with tracked colors replaced by c.
func (l *Lighting) material(c mgl32.Vec4) Material {
	m := l.Material
	if !l.colorMaterial {
		return m
	}
	switch l.tracking {
	case TrackAmbient:
		m.Ambient = c
	case TrackDiffuse:
		m.Diffuse = c
	case TrackSpecular:
		m.Specular = c
	case TrackEmission:
		m.Emission = c
	default:
		m.Ambient, m.Diffuse = c, c
	}
	return m
}

// Shade returns the lit color of a vertex at eye space position v with
// eye space normal n and incoming color c. Alpha is carried over from c.
func (l *Lighting) Shade(c, v mgl32.Vec4, n mgl32.Vec3) mgl32.Vec4 {
	m := l.material(c)
	out := mulv(m.Ambient, l.SceneAmbient).Add(m.Emission)
	for i := range l.Lights {
		if l.Lights[i].Enabled {
			out = out.Add(l.light(&l.Lights[i], &m, v, n))
		}
	}
	out[3] = c[3]
	return out
}

func (l *Lighting) light(lt *Light, m *Material, v mgl32.Vec4, n mgl32.Vec3) mgl32.Vec4 {
	dir := lt.dir
	halfway := lt.halfway
	att := float32(1)
	if lt.Position[3] != 0 {
		d := lt.position.Sub(v.Vec3())
		dist := d.Len()
		dir = normalize3(d)
		halfway = normalize3(dir.Add(mgl32.Vec3{0, 0, 1}))
		att = 1 / (lt.ConstantAttenuation + lt.LinearAttenuation*dist + lt.QuadraticAttenuation*dist*dist)
	}

	diffuse := n.Dot(dir)
	if diffuse < diffuseCutoff {
		diffuse = 0
	}
	var spec float32
	if diffuse != 0 {
		spec = specular(max(n.Dot(halfway), 0), m.SpecularExponent)
	}

	col := mulv(lt.Diffuse, m.Diffuse).Mul(diffuse).
		Add(mulv(lt.Ambient, m.Ambient)).
		Add(mulv(lt.Specular, m.Specular).Mul(spec))
	return col.Mul(att)
}

func specular(x, exp float32) float32 {
	switch exp {
	case 0:
		return 1
	case 1:
		return x
	default:
		return float32(math.Pow(float64(x), float64(exp)))
	}
}

func mulv(a, b mgl32.Vec4) mgl32.Vec4 {
	return mgl32.Vec4{a[0] * b[0], a[1] * b[1], a[2] * b[2], a[3] * b[3]}
}

func normalize3(v mgl32.Vec3) mgl32.Vec3 {
	l := v.Len()
	if l == 0 {
		return v
	}
	return v.Mul(1 / l)
}
