// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import "fmt"

// Opcode is the class of a pipeline record, stored in the top four bits of
// its first word.
type Opcode uint32

// Pipeline opcodes.
const (
	OpNop             Opcode = 0x0000_0000
	OpWriteRegister   Opcode = 0x1000_0000
	OpFramebuffer     Opcode = 0x2000_0000
	OpTriangleStream  Opcode = 0x3000_0000
	OpFogLut          Opcode = 0x4000_0000
	OpTextureStream   Opcode = 0x5000_0000
	OpPushVertex      Opcode = 0xD000_0000
	OpSetVertexCtx    Opcode = 0xE000_0000
	OpRegularTriangle Opcode = 0xF000_0000
)

const (
	// OpMask selects the opcode class of a record word.
	OpMask uint32 = 0xF000_0000
	// ImmMask selects the immediate bits of a record word.
	ImmMask uint32 = 0x0FFF_FFFF

	// FogLutWords is the payload length of a fog LUT record.
	FogLutWords = 66
)

// Class returns the opcode class of word.
func Class(word uint32) Opcode { return Opcode(word & OpMask) }

// String returns the opcode mnemonic.
func (o Opcode) String() string {
	switch Opcode(uint32(o) & OpMask) {
	case OpNop:
		return "NOP"
	case OpWriteRegister:
		return "WRITE_REGISTER"
	case OpFramebuffer:
		return "FRAMEBUFFER"
	case OpTriangleStream:
		return "TRIANGLE_STREAM"
	case OpFogLut:
		return "FOG_LUT"
	case OpTextureStream:
		return "TEXTURE_STREAM"
	case OpPushVertex:
		return "PUSH_VERTEX"
	case OpSetVertexCtx:
		return "SET_VERTEX_CTX"
	case OpRegularTriangle:
		return "REGULAR_TRIANGLE"
	default:
		return fmt.Sprintf("Opcode(%#x)", uint32(o)>>28)
	}
}

// PayloadWords returns the number of payload words that follow the record
// word. It reports false for an unknown opcode class.
func PayloadWords(word uint32) (int, bool) {
	imm := word & ImmMask
	switch Class(word) {
	case OpNop, OpFramebuffer, OpTextureStream, OpRegularTriangle:
		return 0, true
	case OpWriteRegister:
		return 1, true
	case OpFogLut:
		return FogLutWords, true
	case OpTriangleStream, OpPushVertex, OpSetVertexCtx:
		return int((imm + 3) / 4), true
	}
	return 0, false
}

// ResetsTextureLoads reports whether a record of this class consumes the
// textures bound so far, so that a later texture stream must not replace
// an earlier one.
func (o Opcode) ResetsTextureLoads() bool {
	switch o {
	case OpTriangleStream, OpSetVertexCtx, OpRegularTriangle:
		return true
	}
	return false
}
