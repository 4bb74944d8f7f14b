// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rrx

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rrx/command"
	"github.com/gogpu/rrx/transform"
)

// Capability is a switchable pipeline stage.
type Capability uint8

// Capabilities. Texture units and lights are numbered from Texture0 and
// Light0.
const (
	Fog Capability = iota
	Blend
	DepthTest
	AlphaTest
	ScissorTest
	StencilTest
	CullFace
	Lighting
	ColorMaterial
	Normalize
	TwoSidedStencil
	Texture0
	Light0 = Texture0 + transform.MaxTMUs
)

var capabilityNames = [...]string{
	Fog:             "Fog",
	Blend:           "Blend",
	DepthTest:       "DepthTest",
	AlphaTest:       "AlphaTest",
	ScissorTest:     "ScissorTest",
	StencilTest:     "StencilTest",
	CullFace:        "CullFace",
	Lighting:        "Lighting",
	ColorMaterial:   "ColorMaterial",
	Normalize:       "Normalize",
	TwoSidedStencil: "TwoSidedStencil",
}

// String returns the capability name.
func (c Capability) String() string {
	switch {
	case c >= Light0 && c < Light0+transform.MaxLights:
		return fmt.Sprintf("Light%d", c-Light0)
	case c >= Texture0 && c < Light0:
		return fmt.Sprintf("Texture%d", c-Texture0)
	case int(c) < len(capabilityNames):
		return capabilityNames[c]
	default:
		return fmt.Sprintf("Capability(%d)", uint8(c))
	}
}

// Enable switches a capability on.
func (c *Context) Enable(k Capability) bool { return c.setCapability(k, true) }

// Disable switches a capability off.
func (c *Context) Disable(k Capability) bool { return c.setCapability(k, false) }

// IsEnabled reports whether a capability is on.
func (c *Context) IsEnabled(k Capability) bool {
	f := &c.features
	switch {
	case k >= Light0 && k < Light0+transform.MaxLights:
		return c.p.Lighting.Lights[k-Light0].Enabled
	case k >= Texture0 && k < Light0:
		return f.Tmu[k-Texture0]
	}
	switch k {
	case Fog:
		return f.Fog
	case Blend:
		return f.Blending
	case DepthTest:
		return f.DepthTest
	case AlphaTest:
		return f.AlphaTest
	case ScissorTest:
		return f.Scissor
	case StencilTest:
		return f.StencilTest
	case CullFace:
		return c.p.Culling.Enabled
	case Lighting:
		return c.p.Lighting.Enabled
	case ColorMaterial:
		return c.p.Lighting.ColorMaterialEnabled()
	case Normalize:
		return c.p.NormalizeNormals
	case TwoSidedStencil:
		return c.p.Stencil.TwoSided
	}
	return false
}

func (c *Context) setCapability(k Capability, on bool) bool {
	f := &c.features
	switch {
	case k >= Light0 && k < Light0+transform.MaxLights:
		c.p.Lighting.Lights[k-Light0].Enabled = on
		return true
	case k >= Texture0 && k < Light0:
		t := k - Texture0
		f.Tmu[t] = on
		c.p.TmuEnable[t] = on
		return c.r.SetFeatureEnable(*f)
	}
	switch k {
	case Fog:
		f.Fog = on
	case Blend:
		f.Blending = on
	case DepthTest:
		f.DepthTest = on
	case AlphaTest:
		f.AlphaTest = on
	case ScissorTest:
		f.Scissor = on
	case StencilTest:
		f.StencilTest = on
	case CullFace:
		c.p.Culling.Enabled = on
		return true
	case Lighting:
		c.p.Lighting.Enabled = on
		return true
	case ColorMaterial:
		c.p.Lighting.EnableColorMaterial(on)
		return true
	case Normalize:
		c.p.NormalizeNormals = on
		return true
	case TwoSidedStencil:
		c.p.Stencil.TwoSided = on
		c.p.Stencil.Invalidate()
		return true
	default:
		return false
	}
	return c.r.SetFeatureEnable(*f)
}

// SetDepthFunc sets the depth test function.
func (c *Context) SetDepthFunc(fn gputypes.CompareFunction) bool {
	c.fragment.DepthFunc = fn
	return c.r.SetFragmentPipeline(c.fragment)
}

// SetDepthMask enables or disables depth buffer writes.
func (c *Context) SetDepthMask(on bool) bool {
	c.fragment.DepthMask = on
	return c.r.SetFragmentPipeline(c.fragment)
}

// SetAlphaFunc sets the alpha test function and reference in [0, 1].
func (c *Context) SetAlphaFunc(fn gputypes.CompareFunction, ref float64) bool {
	c.fragment.AlphaFunc = fn
	c.fragment.RefAlpha = uint8(command.PackColor(gputypes.Color{A: ref}))
	return c.r.SetFragmentPipeline(c.fragment)
}

// SetBlendFunc sets the blend factors.
func (c *Context) SetBlendFunc(src, dst gputypes.BlendFactor) bool {
	c.fragment.BlendSrc, c.fragment.BlendDst = src, dst
	return c.r.SetFragmentPipeline(c.fragment)
}

// SetColorMask enables writes per color channel.
func (c *Context) SetColorMask(r, g, b, a bool) bool {
	c.fragment.ColorMask = [4]bool{r, g, b, a}
	return c.r.SetFragmentPipeline(c.fragment)
}

// SetStencilFunc sets the stencil test of face. The register is written
// by the next Begin.
func (c *Context) SetStencilFunc(face transform.Face, fn gputypes.CompareFunction, ref, mask uint8) {
	s := c.p.Stencil.Config(face)
	s.Face.Compare = fn
	s.Ref, s.Mask = ref, mask
}

// SetStencilOp sets the stencil operations of face.
func (c *Context) SetStencilOp(face transform.Face, fail, depthFail, pass hal.StencilOperation) {
	s := c.p.Stencil.Config(face)
	s.Face.FailOp, s.Face.DepthFailOp, s.Face.PassOp = fail, depthFail, pass
}

// SetStencilMask selects the stencil bits of face that may be written.
func (c *Context) SetStencilMask(face transform.Face, mask uint8) {
	c.p.Stencil.Config(face).WriteMask = mask
}

// SetCullMode selects the faces CullFace discards.
func (c *Context) SetCullMode(mode gputypes.CullMode) { c.p.Culling.Mode = mode }

// SetFrontFace selects the winding of front faces.
func (c *Context) SetFrontFace(ff gputypes.FrontFace) { c.p.Culling.FrontFace = ff }

// SetFog sets the fog function and uploads its table.
func (c *Context) SetFog(t command.FogTable) bool {
	c.fog = t
	return c.r.SetFogLut(t.Lut(), t.Start, t.End)
}

// FogTable returns the current fog function.
func (c *Context) FogTable() command.FogTable { return c.fog }

// SetFogColor sets the fog color.
func (c *Context) SetFogColor(col gputypes.Color) bool { return c.r.SetFogColor(col) }

// SetLight configures light i. The position is transformed by the current
// model-view matrix; the enable state is left unchanged.
func (c *Context) SetLight(i int, l transform.Light) bool {
	if i < 0 || i >= transform.MaxLights {
		return false
	}
	lt := &c.p.Lighting.Lights[i]
	l.Enabled = lt.Enabled
	*lt = l
	c.p.Lighting.SetPosition(i, c.p.Matrices.ModelView().Mul4x1(l.Position))
	return true
}

// SetMaterial sets the surface material.
func (c *Context) SetMaterial(m transform.Material) { c.p.Lighting.Material = m }

// SetSceneAmbient sets the global ambient light.
func (c *Context) SetSceneAmbient(col mgl32.Vec4) { c.p.Lighting.SceneAmbient = col }

// SetColorMaterial selects which material color follows the vertex color.
func (c *Context) SetColorMaterial(m transform.ColorMaterial) { c.p.Lighting.SetColorMaterial(m) }

// SetTexEnv configures the color combiner of a texture unit.
func (c *Context) SetTexEnv(env command.TexEnv) bool {
	if env.TMU < 0 || env.TMU >= transform.MaxTMUs {
		return false
	}
	c.texEnv[env.TMU] = env
	return c.r.SetTexEnv(env)
}

// TexEnv returns the combiner configuration of a texture unit.
func (c *Context) TexEnv(tmu int) command.TexEnv { return c.texEnv[tmu] }

// SetTexEnvColor sets the constant color of a texture unit.
func (c *Context) SetTexEnvColor(tmu int, col gputypes.Color) bool {
	return c.r.SetTexEnvColor(tmu, col)
}
