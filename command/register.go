// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"math"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rrx/internal/mathx"
)

// Register is a device register value that can be written with a
// WRITE_REGISTER record.
type Register interface {
	Addr() uint32
	Value() uint32
}

// Register addresses.
const (
	AddrFeatureEnable     uint32 = 0x0
	AddrClearColor        uint32 = 0x1
	AddrClearDepth        uint32 = 0x2
	AddrFragmentPipeline  uint32 = 0x3
	AddrStencil           uint32 = 0x4
	AddrScissorStart      uint32 = 0x5
	AddrScissorEnd        uint32 = 0x6
	AddrYOffset           uint32 = 0x7
	AddrRenderResolution  uint32 = 0x8
	AddrFogColor          uint32 = 0x9
	AddrTexEnv            uint32 = 0xA
	AddrTexEnvColor       uint32 = 0xB
	AddrTmuTexture        uint32 = 0xC
	AddrColorBufferAddr   uint32 = 0x10
	AddrDepthBufferAddr   uint32 = 0x11
	AddrStencilBufferAddr uint32 = 0x12

	// TmuRegisterStride is the address distance between the register
	// blocks of two texture units.
	TmuRegisterStride uint32 = 3
	// MaxTMUs is the number of texture units the register map has room for.
	MaxTMUs = 2

	xyMask = 0x7ff
)

// WriteRegister returns the command writing r.
func WriteRegister(r Register) Command {
	return PipelineOnly(Pipeline{
		Op:      uint32(OpWriteRegister) | r.Addr()&ImmMask,
		Payload: []uint32{r.Value()},
	})
}

func bit(b bool, shift uint) uint32 {
	if b {
		return 1 << shift
	}
	return 0
}

// FeatureEnable switches fixed-function stages on and off.
type FeatureEnable struct {
	Fog         bool
	Blending    bool
	DepthTest   bool
	AlphaTest   bool
	Scissor     bool
	StencilTest bool
	Tmu         [MaxTMUs]bool
}

func (FeatureEnable) Addr() uint32 { return AddrFeatureEnable }

func (f FeatureEnable) Value() uint32 {
	return bit(f.Fog, 0) | bit(f.Blending, 1) | bit(f.DepthTest, 2) | bit(f.AlphaTest, 3) |
		bit(f.Tmu[0], 4) | bit(f.Scissor, 5) | bit(f.Tmu[1], 6) | bit(f.StencilTest, 7)
}

// PackColor converts a color with components in [0, 1] to RGBA8 with red in
// the most significant byte.
func PackColor(c gputypes.Color) uint32 {
	return uint32(unorm8(c.R))<<24 | uint32(unorm8(c.G))<<16 | uint32(unorm8(c.B))<<8 | uint32(unorm8(c.A))
}

func unorm8(v float64) uint8 {
	return uint8(math.Round(min(max(v, 0), 1) * 255))
}

// ClearColor is the color written by a color buffer memset.
type ClearColor struct{ Color gputypes.Color }

func (ClearColor) Addr() uint32    { return AddrClearColor }
func (r ClearColor) Value() uint32 { return PackColor(r.Color) }

// FogColor is the color fog blends towards.
type FogColor struct{ Color gputypes.Color }

func (FogColor) Addr() uint32    { return AddrFogColor }
func (r FogColor) Value() uint32 { return PackColor(r.Color) }

// TexEnvColor is the constant color of a texture environment.
type TexEnvColor struct {
	TMU   int
	Color gputypes.Color
}

func (r TexEnvColor) Addr() uint32  { return AddrTexEnvColor + uint32(r.TMU)*TmuRegisterStride }
func (r TexEnvColor) Value() uint32 { return PackColor(r.Color) }

// ClearDepth is the value written by a depth buffer memset.
type ClearDepth struct{ Depth uint16 }

// DepthFromFloat maps a depth in [0, 1] to the 16-bit depth buffer range.
func DepthFromFloat(d float64) uint16 {
	return uint16(math.Round(min(max(d, 0), 1) * 65535))
}

func (ClearDepth) Addr() uint32    { return AddrClearDepth }
func (r ClearDepth) Value() uint32 { return uint32(r.Depth) }

// XY is a register holding two 11-bit coordinates.
type XY struct{ X, Y uint16 }

func (v XY) value() uint32 {
	return uint32(v.Y&xyMask)<<16 | uint32(v.X&xyMask)
}

// ScissorStart is the lower left corner of the scissor box.
type ScissorStart XY

func (ScissorStart) Addr() uint32    { return AddrScissorStart }
func (r ScissorStart) Value() uint32 { return XY(r).value() }

// ScissorEnd is the upper right corner of the scissor box.
type ScissorEnd XY

func (ScissorEnd) Addr() uint32    { return AddrScissorEnd }
func (r ScissorEnd) Value() uint32 { return XY(r).value() }

// RenderResolution is the size of the full framebuffer.
type RenderResolution XY

func (RenderResolution) Addr() uint32    { return AddrRenderResolution }
func (r RenderResolution) Value() uint32 { return XY(r).value() }

// YOffset is the first screen line covered by a band.
type YOffset struct{ Y uint16 }

func (YOffset) Addr() uint32    { return AddrYOffset }
func (r YOffset) Value() uint32 { return XY{Y: r.Y}.value() }

// ColorBufferAddr is the device address of the color buffer.
type ColorBufferAddr struct{ Address uint32 }

func (ColorBufferAddr) Addr() uint32    { return AddrColorBufferAddr }
func (r ColorBufferAddr) Value() uint32 { return r.Address }

// DepthBufferAddr is the device address of the depth buffer.
type DepthBufferAddr struct{ Address uint32 }

func (DepthBufferAddr) Addr() uint32    { return AddrDepthBufferAddr }
func (r DepthBufferAddr) Value() uint32 { return r.Address }

// StencilBufferAddr is the device address of the stencil buffer.
type StencilBufferAddr struct{ Address uint32 }

func (StencilBufferAddr) Addr() uint32    { return AddrStencilBufferAddr }
func (r StencilBufferAddr) Value() uint32 { return r.Address }

// TestFunc converts a compare function to the 3-bit device encoding.
// Undefined maps to always.
func TestFunc(f gputypes.CompareFunction) uint32 {
	switch f {
	case gputypes.CompareFunctionNever:
		return 1
	case gputypes.CompareFunctionLess:
		return 2
	case gputypes.CompareFunctionEqual:
		return 3
	case gputypes.CompareFunctionLessEqual:
		return 4
	case gputypes.CompareFunctionGreater:
		return 5
	case gputypes.CompareFunctionNotEqual:
		return 6
	case gputypes.CompareFunctionGreaterEqual:
		return 7
	default:
		return 0
	}
}

// BlendFunc converts a blend factor to the 4-bit device encoding. Constant
// factors have no device equivalent and map to zero.
func BlendFunc(f gputypes.BlendFactor) uint32 {
	switch f {
	case gputypes.BlendFactorOne:
		return 1
	case gputypes.BlendFactorDst:
		return 2
	case gputypes.BlendFactorSrc:
		return 3
	case gputypes.BlendFactorOneMinusDst:
		return 4
	case gputypes.BlendFactorOneMinusSrc:
		return 5
	case gputypes.BlendFactorSrcAlpha:
		return 6
	case gputypes.BlendFactorOneMinusSrcAlpha:
		return 7
	case gputypes.BlendFactorDstAlpha:
		return 8
	case gputypes.BlendFactorOneMinusDstAlpha:
		return 9
	case gputypes.BlendFactorSrcAlphaSaturated:
		return 10
	default:
		return 0
	}
}

// StencilOp converts a stencil operation to the 3-bit device encoding.
func StencilOp(op hal.StencilOperation) uint32 {
	switch op {
	case hal.StencilOperationZero:
		return 1
	case hal.StencilOperationReplace:
		return 2
	case hal.StencilOperationIncrementClamp:
		return 3
	case hal.StencilOperationIncrementWrap:
		return 4
	case hal.StencilOperationDecrementClamp:
		return 5
	case hal.StencilOperationDecrementWrap:
		return 6
	case hal.StencilOperationInvert:
		return 7
	default:
		return 0
	}
}

// FragmentPipeline configures depth test, alpha test, color mask and
// blending.
type FragmentPipeline struct {
	DepthFunc gputypes.CompareFunction
	AlphaFunc gputypes.CompareFunction
	RefAlpha  uint8
	DepthMask bool
	// ColorMask enables writes per channel in R, G, B, A order.
	ColorMask [4]bool
	BlendSrc  gputypes.BlendFactor
	BlendDst  gputypes.BlendFactor
}

// DefaultFragmentPipeline returns the power-on fragment pipeline state.
func DefaultFragmentPipeline() FragmentPipeline {
	return FragmentPipeline{
		DepthFunc: gputypes.CompareFunctionLess,
		AlphaFunc: gputypes.CompareFunctionAlways,
		RefAlpha:  0xff,
		ColorMask: [4]bool{true, true, true, true},
		BlendSrc:  gputypes.BlendFactorOne,
		BlendDst:  gputypes.BlendFactorZero,
	}
}

func (FragmentPipeline) Addr() uint32 { return AddrFragmentPipeline }

func (r FragmentPipeline) Value() uint32 {
	return TestFunc(r.DepthFunc) |
		TestFunc(r.AlphaFunc)<<3 |
		uint32(r.RefAlpha)<<6 |
		bit(r.DepthMask, 14) |
		bit(r.ColorMask[3], 15) | bit(r.ColorMask[2], 16) | bit(r.ColorMask[1], 17) | bit(r.ColorMask[0], 18) |
		BlendFunc(r.BlendSrc)<<19 |
		BlendFunc(r.BlendDst)<<23
}

// Stencil configures the stencil test for one face.
type Stencil struct {
	Face hal.StencilFaceState
	// Ref is the reference value; Mask is applied to reference and buffer
	// before comparing. Both are 4 bits wide.
	Ref  uint8
	Mask uint8
	// WriteMask selects the buffer bits updated by the stencil operations.
	WriteMask uint8
	// Clear is the value written by a stencil buffer memset.
	Clear uint8
}

// DefaultStencil returns the power-on stencil state.
func DefaultStencil() Stencil {
	return Stencil{
		Face: hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionAlways,
			FailOp:      hal.StencilOperationKeep,
			DepthFailOp: hal.StencilOperationKeep,
			PassOp:      hal.StencilOperationKeep,
		},
		Mask:      0xf,
		WriteMask: 0xf,
	}
}

func (Stencil) Addr() uint32 { return AddrStencil }

func (r Stencil) Value() uint32 {
	return TestFunc(r.Face.Compare) |
		uint32(r.Mask&0xf)<<3 |
		uint32(r.Ref&0xf)<<7 |
		StencilOp(r.Face.PassOp)<<11 |
		StencilOp(r.Face.DepthFailOp)<<14 |
		StencilOp(r.Face.FailOp)<<17 |
		uint32(r.Clear&0xf)<<20 |
		uint32(r.WriteMask&0xf)<<24
}

// Combine is a texture environment combine function.
type Combine uint32

// Combine functions.
const (
	CombineReplace Combine = iota
	CombineModulate
	CombineAdd
	CombineAddSigned
	CombineInterpolate
	CombineSubtract
	CombineDot3RGB
	CombineDot3RGBA
)

// SrcReg selects a texture environment input.
type SrcReg uint32

// Texture environment inputs.
const (
	SrcTexture SrcReg = iota
	SrcConstant
	SrcPrimaryColor
	SrcPrevious
)

// Operand selects which part of an input a combiner uses.
type Operand uint32

// Combiner operands. Alpha operands only accept the first two.
const (
	OperandSrcAlpha Operand = iota
	OperandOneMinusSrcAlpha
	OperandSrcColor
	OperandOneMinusSrcColor
)

// TexEnv configures the color combiner of one texture unit.
type TexEnv struct {
	TMU          int
	CombineRGB   Combine
	CombineAlpha Combine
	SrcRGB       [3]SrcReg
	SrcAlpha     [3]SrcReg
	OperandRGB   [3]Operand
	OperandAlpha [3]Operand
	ShiftRGB     uint8
	ShiftAlpha   uint8
}

// DefaultTexEnv returns the modulate environment for tmu.
func DefaultTexEnv(tmu int) TexEnv {
	return TexEnv{
		TMU:          tmu,
		CombineRGB:   CombineModulate,
		CombineAlpha: CombineModulate,
		SrcRGB:       [3]SrcReg{SrcTexture, SrcPrevious, SrcConstant},
		SrcAlpha:     [3]SrcReg{SrcTexture, SrcPrevious, SrcConstant},
		OperandRGB:   [3]Operand{OperandSrcColor, OperandSrcColor, OperandSrcAlpha},
		OperandAlpha: [3]Operand{OperandSrcAlpha, OperandSrcAlpha, OperandSrcAlpha},
	}
}

func (r TexEnv) Addr() uint32 { return AddrTexEnv + uint32(r.TMU)*TmuRegisterStride }

func (r TexEnv) Value() uint32 {
	v := uint32(r.CombineRGB&7) | uint32(r.CombineAlpha&7)<<3
	for i := range 3 {
		v |= uint32(r.SrcRGB[i]&3) << (6 + 2*i)
		v |= uint32(r.SrcAlpha[i]&3) << (12 + 2*i)
		v |= uint32(r.OperandRGB[i]&3) << (18 + 2*i)
		v |= uint32(r.OperandAlpha[i]&1) << (24 + i)
	}
	return v | uint32(r.ShiftRGB&3)<<27 | uint32(r.ShiftAlpha&3)<<29
}

// PixelFormat is the texel layout of a texture.
type PixelFormat uint32

// Texel layouts. Every format is 16 bits per texel.
const (
	RGBA4444 PixelFormat = iota
	RGBA5551
	RGB565
)

// String returns the format name.
func (f PixelFormat) String() string {
	switch f {
	case RGBA4444:
		return "RGBA4444"
	case RGBA5551:
		return "RGBA5551"
	case RGB565:
		return "RGB565"
	default:
		return "PixelFormat(?)"
	}
}

// TmuTexture describes the texture bound to a texture unit.
type TmuTexture struct {
	TMU       int
	Width     uint16
	Height    uint16
	WrapS     gputypes.AddressMode
	WrapT     gputypes.AddressMode
	MagFilter gputypes.FilterMode
	MinFilter gputypes.FilterMode
	Format    PixelFormat
}

func (r TmuTexture) Addr() uint32 { return AddrTmuTexture + uint32(r.TMU)*TmuRegisterStride }

func (r TmuTexture) Value() uint32 {
	return uint32(mathx.Log2(r.Width)&0xf) |
		uint32(mathx.Log2(r.Height)&0xf)<<4 |
		wrapBit(r.WrapS)<<8 |
		wrapBit(r.WrapT)<<9 |
		bit(r.MagFilter == gputypes.FilterModeLinear, 10) |
		bit(r.MinFilter == gputypes.FilterModeLinear, 11) |
		uint32(r.Format&0xf)<<12
}

// wrapBit returns 1 for clamp to edge. Every other mode repeats.
func wrapBit(m gputypes.AddressMode) uint32 {
	if m == gputypes.AddressModeClampToEdge {
		return 1
	}
	return 0
}
