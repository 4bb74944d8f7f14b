// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/rrx/dse"
)

func TestCommandKind(t *testing.T) {
	p := Pipeline{Op: uint32(OpFramebuffer)}
	tr := dse.Load(0, 64)
	tests := []struct {
		name string
		cmd  Command
		want Kind
	}{
		{"empty", Command{}, KindNone},
		{"pipeline", PipelineOnly(p), KindPipeline},
		{"transfer", WithTransfer(tr), KindTransfer},
		{"both", Both(p, tr), KindBoth},
		{"both without transfers", Both(p), KindPipeline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cmd.Kind(); got != tt.want {
				t.Errorf("Kind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPipelineEncode(t *testing.T) {
	p := Pipeline{Op: 0x1000_0003, Payload: []uint32{0xCAFE}}
	buf := make([]byte, p.Size())
	if n := p.Encode(buf); n != 8 {
		t.Fatalf("Encode() = %d, want 8", n)
	}
	if got := binary.LittleEndian.Uint32(buf); got != 0x1000_0003 {
		t.Errorf("op = %#x, want %#x", got, 0x1000_0003)
	}
	if got := binary.LittleEndian.Uint32(buf[4:]); got != 0xCAFE {
		t.Errorf("payload = %#x, want %#x", got, 0xCAFE)
	}
}

func TestPayloadWords(t *testing.T) {
	tests := []struct {
		word uint32
		want int
		ok   bool
	}{
		{0, 0, true},
		{uint32(OpWriteRegister) | 5, 1, true},
		{uint32(OpFramebuffer) | 0x12, 0, true},
		{uint32(OpTriangleStream) | 192, 48, true},
		{uint32(OpFogLut), FogLutWords, true},
		{uint32(OpTextureStream) | 3, 0, true},
		{0x6000_0000, 0, false},
	}
	for _, tt := range tests {
		got, ok := PayloadWords(tt.word)
		if got != tt.want || ok != tt.ok {
			t.Errorf("PayloadWords(%#x) = %d, %v, want %d, %v", tt.word, got, ok, tt.want, tt.ok)
		}
	}
}

func TestResetsTextureLoads(t *testing.T) {
	for _, op := range []Opcode{OpTriangleStream, OpSetVertexCtx, OpRegularTriangle} {
		if !op.ResetsTextureLoads() {
			t.Errorf("%v.ResetsTextureLoads() = false, want true", op)
		}
	}
	for _, op := range []Opcode{OpWriteRegister, OpTextureStream, OpFramebuffer, OpFogLut} {
		if op.ResetsTextureLoads() {
			t.Errorf("%v.ResetsTextureLoads() = true, want false", op)
		}
	}
}

func TestWriteRegister(t *testing.T) {
	cmd := WriteRegister(YOffset{Y: 240})
	if cmd.Kind() != KindPipeline {
		t.Fatalf("Kind() = %v, want pipeline", cmd.Kind())
	}
	if got, want := cmd.Pipeline.Op, uint32(OpWriteRegister)|AddrYOffset; got != want {
		t.Errorf("op = %#x, want %#x", got, want)
	}
	if got, want := cmd.Pipeline.Payload[0], uint32(240)<<16; got != want {
		t.Errorf("value = %#x, want %#x", got, want)
	}
}

func TestRegisterValues(t *testing.T) {
	tests := []struct {
		name string
		reg  Register
		addr uint32
		want uint32
	}{
		{"feature fog", FeatureEnable{Fog: true}, 0x0, 0x01},
		{"feature tmu1 stencil", FeatureEnable{Tmu: [2]bool{false, true}, StencilTest: true}, 0x0, 0xC0},
		{"clear color", ClearColor{Color: gputypes.Color{R: 1, G: 0, B: 1, A: 0}}, 0x1, 0xFF00FF00},
		{"clear depth", ClearDepth{Depth: DepthFromFloat(1)}, 0x2, 0xFFFF},
		{"scissor start", ScissorStart{X: 10, Y: 20}, 0x5, 20<<16 | 10},
		{"scissor clamps", ScissorEnd{X: 0xFFFF, Y: 0x800}, 0x6, 0x7FF},
		{"resolution", RenderResolution{X: 640, Y: 480}, 0x8, 480<<16 | 640},
		{"color buffer", ColorBufferAddr{Address: 0x1000}, 0x10, 0x1000},
		{"depth buffer", DepthBufferAddr{Address: 0x2000}, 0x11, 0x2000},
		{"stencil buffer", StencilBufferAddr{Address: 0x3000}, 0x12, 0x3000},
		{"tex env color tmu1", TexEnvColor{TMU: 1, Color: gputypes.Color{A: 1}}, 0xE, 0xFF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reg.Addr(); got != tt.addr {
				t.Errorf("Addr() = %#x, want %#x", got, tt.addr)
			}
			if got := tt.reg.Value(); got != tt.want {
				t.Errorf("Value() = %#x, want %#x", got, tt.want)
			}
		})
	}
}

func TestFragmentPipelineDefault(t *testing.T) {
	// LESS, ALWAYS, ref 0xff, no depth writes, all colors, ONE, ZERO.
	want := uint32(2) | 0<<3 | 0xff<<6 | 0xf<<15 | 1<<19 | 0<<23
	if got := DefaultFragmentPipeline().Value(); got != want {
		t.Errorf("Value() = %#x, want %#x", got, want)
	}
}

func TestFragmentPipelineBlend(t *testing.T) {
	f := DefaultFragmentPipeline()
	f.BlendSrc = gputypes.BlendFactorSrcAlpha
	f.BlendDst = gputypes.BlendFactorOneMinusSrcAlpha
	f.DepthMask = true
	v := f.Value()
	if got := v >> 19 & 0xf; got != 6 {
		t.Errorf("blend src = %d, want 6", got)
	}
	if got := v >> 23 & 0xf; got != 7 {
		t.Errorf("blend dst = %d, want 7", got)
	}
	if v&(1<<14) == 0 {
		t.Error("depth mask bit not set")
	}
}

func TestStencilValue(t *testing.T) {
	s := Stencil{
		Face: hal.StencilFaceState{
			Compare:     gputypes.CompareFunctionEqual,
			FailOp:      hal.StencilOperationInvert,
			DepthFailOp: hal.StencilOperationIncrementWrap,
			PassOp:      hal.StencilOperationReplace,
		},
		Ref:       0x3,
		Mask:      0xF,
		WriteMask: 0x5,
		Clear:     0x1,
	}
	want := uint32(3) | 0xF<<3 | 0x3<<7 | 2<<11 | 4<<14 | 7<<17 | 1<<20 | 5<<24
	if got := s.Value(); got != want {
		t.Errorf("Value() = %#x, want %#x", got, want)
	}
	if got := DefaultStencil().Value(); got != 0xF<<3|0xF<<24 {
		t.Errorf("default Value() = %#x, want %#x", got, 0xF<<3|0xF<<24)
	}
}

func TestTestFunc(t *testing.T) {
	tests := []struct {
		f    gputypes.CompareFunction
		want uint32
	}{
		{gputypes.CompareFunctionUndefined, 0},
		{gputypes.CompareFunctionAlways, 0},
		{gputypes.CompareFunctionNever, 1},
		{gputypes.CompareFunctionLess, 2},
		{gputypes.CompareFunctionEqual, 3},
		{gputypes.CompareFunctionLessEqual, 4},
		{gputypes.CompareFunctionGreater, 5},
		{gputypes.CompareFunctionNotEqual, 6},
		{gputypes.CompareFunctionGreaterEqual, 7},
	}
	for _, tt := range tests {
		if got := TestFunc(tt.f); got != tt.want {
			t.Errorf("TestFunc(%v) = %d, want %d", tt.f, got, tt.want)
		}
	}
}

func TestTmuTextureValue(t *testing.T) {
	r := TmuTexture{
		TMU:       1,
		Width:     256,
		Height:    64,
		WrapS:     gputypes.AddressModeClampToEdge,
		WrapT:     gputypes.AddressModeRepeat,
		MagFilter: gputypes.FilterModeLinear,
		MinFilter: gputypes.FilterModeNearest,
		Format:    RGB565,
	}
	if got, want := r.Addr(), uint32(0xF); got != want {
		t.Errorf("Addr() = %#x, want %#x", got, want)
	}
	want := uint32(8) | 6<<4 | 1<<8 | 0<<9 | 1<<10 | 0<<11 | 2<<12
	if got := r.Value(); got != want {
		t.Errorf("Value() = %#x, want %#x", got, want)
	}
}

func TestTexEnvDefault(t *testing.T) {
	e := DefaultTexEnv(0)
	v := e.Value()
	if got := v & 7; got != uint32(CombineModulate) {
		t.Errorf("combine rgb = %d, want %d", got, CombineModulate)
	}
	if got := v >> 6 & 0x3f; got != uint32(SrcTexture)|uint32(SrcPrevious)<<2|uint32(SrcConstant)<<4 {
		t.Errorf("src rgb = %#x", got)
	}
	if got := DefaultTexEnv(1).Addr(); got != 0xD {
		t.Errorf("Addr() = %#x, want 0xd", got)
	}
}

func TestFramebufferCommands(t *testing.T) {
	if got, want := Memset(true, false, true).Pipeline.Op, uint32(0x2000_0052); got != want {
		t.Errorf("Memset op = %#x, want %#x", got, want)
	}
	if got, want := Commit().Pipeline.Op, uint32(0x2000_0011); got != want {
		t.Errorf("Commit op = %#x, want %#x", got, want)
	}
	if got, want := Swap().Pipeline.Op, uint32(0x2000_0014); got != want {
		t.Errorf("Swap op = %#x, want %#x", got, want)
	}
	tr := FramebufferTransfer(dse.OpCommitToStream, 0, 1024)
	if tr.Kind() != KindTransfer || tr.Transfers[0].Len != 1024 {
		t.Errorf("FramebufferTransfer = %+v", tr)
	}
}

func TestTextureStream(t *testing.T) {
	cmd := TextureStream(1, []uint32{0x1000, 0x3000}, 4096)
	if cmd.Kind() != KindBoth {
		t.Fatalf("Kind() = %v, want both", cmd.Kind())
	}
	op := cmd.Pipeline.Op
	if Class(op) != OpTextureStream {
		t.Errorf("class = %v, want TEXTURE_STREAM", Class(op))
	}
	if got := TextureStreamTMU(op); got != 1 {
		t.Errorf("tmu = %d, want 1", got)
	}
	if got := TextureStreamPages(op); got != 2 {
		t.Errorf("pages = %d, want 2", got)
	}
	for i, want := range []uint32{0x1000, 0x3000} {
		tr := cmd.Transfers[i]
		if tr.Op != dse.OpLoad || tr.Addr != want || tr.Len != 4096 {
			t.Errorf("transfer %d = %v", i, tr)
		}
	}
}

func TestTriangleStream(t *testing.T) {
	desc := make([]uint32, 48)
	cmd := TriangleStream(desc)
	if got, want := cmd.Pipeline.Op, uint32(0x3000_00C0); got != want {
		t.Errorf("op = %#x, want %#x", got, want)
	}
	if n, _ := PayloadWords(cmd.Pipeline.Op); n != 48 {
		t.Errorf("payload words = %d, want 48", n)
	}
}

func TestFogLut(t *testing.T) {
	tests := []struct {
		name  string
		table FogTable
		at    int
		want  float64
	}{
		{"one", FogTable{Mode: FogOne}, 5, 1},
		{"linear at start", FogTable{Mode: FogLinear, Start: 1, End: 9}, 0, 1},
		{"linear mid", FogTable{Mode: FogLinear, Start: 1, End: 9}, 2, 5.0 / 8},
		{"exp", FogTable{Mode: FogExp, Density: 0.5}, 1, math.Exp(-1)},
		{"exp2", FogTable{Mode: FogExp2, Density: 0.5}, 1, math.Exp(-1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lut := tt.table.Lut()
			if got := float64(lut[tt.at]); math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("lut[%d] = %v, want %v", tt.at, got, tt.want)
			}
		})
	}
}

func TestFogLutPayload(t *testing.T) {
	var lut [FogLutSize]float32
	for i := range lut {
		lut[i] = 1 - float32(i)/32
	}
	cmd := FogLut(lut, 0.5, 100)
	p := cmd.Pipeline
	if len(p.Payload) != FogLutWords {
		t.Fatalf("payload words = %d, want %d", len(p.Payload), FogLutWords)
	}
	if got := math.Float32frombits(p.Payload[0]); got != 1 {
		t.Errorf("lower = %v, want 1", got)
	}
	if got := math.Float32frombits(p.Payload[1]); got != 100 {
		t.Errorf("upper = %v, want 100", got)
	}
	if got := int32(p.Payload[3]); got != 1<<30 {
		t.Errorf("b[0] = %d, want %d", got, 1<<30)
	}
	wantM := int32(-1.0 / 32 / 256 * (1 << 30))
	if got := int32(p.Payload[2]); got != wantM {
		t.Errorf("m[0] = %d, want %d", got, wantM)
	}
}
