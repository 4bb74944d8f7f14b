// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package dse describes the DMA stream engine records that share a display
// list with pipeline commands.
//
// Every record is two little-endian words: the opcode in the top four bits
// OR'ed with a 28-bit length, followed by a device address. A Store record
// carries its payload inline, right after the address word.
package dse

import (
	"encoding/binary"
	"fmt"
)

// Op is a DMA stream engine opcode. Only the top four bits are significant.
type Op uint32

// DMA opcodes.
const (
	OpNop              Op = 0x0000_0000
	OpStream           Op = 0x9000_0000
	OpLoad             Op = 0xB000_0000
	OpStore            Op = 0xD000_0000
	OpCommitToStream   Op = 0x6000_0000
	OpCommitToMemory   Op = 0xE000_0000
	OpStreamFromMemory Op = 0x7000_0000
)

const (
	// OpMask selects the opcode bits of a record word.
	OpMask uint32 = 0xF000_0000
	// ImmMask selects the immediate (length) bits of a record word.
	ImmMask uint32 = 0x0FFF_FFFF

	// MinTransferSize is the smallest transfer the device accepts.
	MinTransferSize = 512
	// RecordSize is the size of a record without its payload.
	RecordSize = 8
	// Align is the alignment of every record and payload.
	Align = 4
)

// String returns the mnemonic of the opcode.
func (o Op) String() string {
	switch Op(uint32(o) & OpMask) {
	case OpNop:
		return "NOP"
	case OpStream:
		return "STREAM"
	case OpLoad:
		return "LOAD"
	case OpStore:
		return "STORE"
	case OpCommitToStream:
		return "COMMIT_TO_STREAM"
	case OpCommitToMemory:
		return "COMMIT_TO_MEMORY"
	case OpStreamFromMemory:
		return "STREAM_FROM_MEMORY"
	default:
		return fmt.Sprintf("Op(%#x)", uint32(o)>>28)
	}
}

// Valid reports whether o is a known DMA opcode.
func (o Op) Valid() bool {
	switch Op(uint32(o) & OpMask) {
	case OpNop, OpStream, OpLoad, OpStore, OpCommitToStream, OpCommitToMemory, OpStreamFromMemory:
		return true
	}
	return false
}

// Transfer is one DMA record.
type Transfer struct {
	Op   Op
	Len  uint32
	Addr uint32
	// Payload is written inline after the record when non-nil. The inline
	// area is Len bytes rounded up to Align; bytes past len(Payload) are zero.
	Payload []byte
}

// Load returns a transfer that streams len bytes from device memory at addr
// into the command stream.
func Load(addr, n uint32) Transfer {
	return Transfer{Op: OpLoad, Len: n, Addr: addr}
}

// Store returns a transfer that writes data to device memory at addr.
// The transfer length is raised to MinTransferSize.
func Store(addr uint32, data []byte) Transfer {
	n := max(uint32(len(data)), MinTransferSize)
	return Transfer{Op: OpStore, Len: n, Addr: addr, Payload: data}
}

// Inline reports whether the transfer carries an inline payload.
func (t Transfer) Inline() bool { return t.Payload != nil }

// PayloadSize returns the number of inline bytes following the record.
func (t Transfer) PayloadSize() int {
	if !t.Inline() {
		return 0
	}
	return int((t.Len + Align - 1) &^ (Align - 1))
}

// Size returns the encoded size of the transfer in bytes.
func (t Transfer) Size() int {
	if t.Op == OpNop {
		return 0
	}
	return RecordSize + t.PayloadSize()
}

// Header returns the first record word.
func (t Transfer) Header() uint32 {
	return uint32(t.Op)&OpMask | t.Len&ImmMask
}

// Encode writes the transfer into dst, which must be at least Size bytes.
// It returns the number of bytes written.
func (t Transfer) Encode(dst []byte) int {
	if t.Op == OpNop {
		return 0
	}
	binary.LittleEndian.PutUint32(dst[0:], t.Header())
	binary.LittleEndian.PutUint32(dst[4:], t.Addr)
	n := t.PayloadSize()
	if n > 0 {
		body := dst[RecordSize : RecordSize+n]
		c := copy(body, t.Payload)
		clear(body[c:])
	}
	return RecordSize + n
}

// Decode parses a record header from src. The payload is not consumed.
func Decode(src []byte) (Transfer, bool) {
	if len(src) < RecordSize {
		return Transfer{}, false
	}
	h := binary.LittleEndian.Uint32(src)
	return Transfer{
		Op:   Op(h & OpMask),
		Len:  h & ImmMask,
		Addr: binary.LittleEndian.Uint32(src[4:]),
	}, true
}

// String formats the transfer for diagnostics.
func (t Transfer) String() string {
	return fmt.Sprintf("%s len=%d addr=%#08x", t.Op, t.Len, t.Addr)
}
