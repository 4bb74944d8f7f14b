// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package displaylist implements the fixed-capacity byte arena that carries
// commands to the device, the assembler that fills it, and a decoder that
// walks it back.
//
// A List never grows and never allocates after construction. Its buffer is
// owned by the bus connector; every failure to fit is reported as a false
// return and leaves the list unchanged.
package displaylist

import "encoding/binary"

// Align is the alignment of every allocation.
const Align = 4

// State tracks where a list is in its upload life cycle.
type State uint8

// List states.
const (
	Idle State = iota
	Queued
	Transferring
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case Queued:
		return "queued"
	case Transferring:
		return "transferring"
	default:
		return "idle"
	}
}

// List is a bump allocator over a caller supplied buffer with a separate
// read cursor for decoding.
type List struct {
	buf          []byte
	writePos     int
	readPos      int
	sectionStart int
	checkpoint   int
	state        State
}

// NewList wraps buf. The capacity is len(buf) rounded down to Align.
func NewList(buf []byte) *List {
	return &List{buf: buf[:len(buf)&^(Align-1)]}
}

func align(n int) int { return (n + Align - 1) &^ (Align - 1) }

// Alloc reserves size bytes, rounded up to Align, and returns the offset of
// the reservation.
func (l *List) Alloc(size int) (int, bool) {
	n := align(size)
	if size < 0 || l.writePos+n > len(l.buf) {
		return 0, false
	}
	off := l.writePos
	l.writePos += n
	return off, true
}

// Create reserves size bytes and returns them zeroed.
func (l *List) Create(size int) ([]byte, bool) {
	off, ok := l.Alloc(size)
	if !ok {
		return nil, false
	}
	b := l.buf[off:l.writePos]
	clear(b)
	return b, true
}

// Remove releases the last size bytes. It is only valid for rolling back
// an allocation made in the same call.
func (l *List) Remove(size int) {
	l.writePos = max(l.writePos-align(size), 0)
}

// Clear empties the list and resets its state to Idle.
func (l *List) Clear() {
	l.writePos = 0
	l.readPos = 0
	l.sectionStart = 0
	l.checkpoint = 0
	l.state = Idle
}

// Next consumes size bytes from the read cursor.
func (l *List) Next(size int) ([]byte, bool) {
	b, ok := l.LookAhead(size)
	if ok {
		l.readPos += align(size)
	}
	return b, ok
}

// LookAhead returns the next size bytes without consuming them.
func (l *List) LookAhead(size int) ([]byte, bool) {
	if size < 0 || l.readPos+size > l.writePos {
		return nil, false
	}
	return l.buf[l.readPos : l.readPos+size], true
}

// AtEnd reports whether the read cursor reached the write cursor.
func (l *List) AtEnd() bool { return l.readPos >= l.writePos }

// ResetRead rewinds the read cursor.
func (l *List) ResetRead() { l.readPos = 0 }

// Size returns the number of bytes written.
func (l *List) Size() int { return l.writePos }

// Capacity returns the size of the underlying buffer.
func (l *List) Capacity() int { return len(l.buf) }

// FreeSpace returns the number of bytes still available.
func (l *List) FreeSpace() int { return len(l.buf) - l.writePos }

// WritePos returns the write cursor.
func (l *List) WritePos() int { return l.writePos }

// Bytes returns the written part of the buffer.
func (l *List) Bytes() []byte { return l.buf[:l.writePos] }

// InitArea zero fills size bytes at start. Zero words decode as NOPs.
func (l *List) InitArea(start, size int) {
	end := min(start+size, len(l.buf))
	if start < 0 || start >= end {
		return
	}
	clear(l.buf[start:end])
}

// SaveSectionStart remembers the write cursor for RemoveSection.
func (l *List) SaveSectionStart() { l.sectionStart = l.writePos }

// RemoveSection zero fills everything written since SaveSectionStart. The
// write cursor is left in place.
func (l *List) RemoveSection() {
	l.InitArea(l.sectionStart, l.writePos-l.sectionStart)
}

// SectionStart returns the position saved by SaveSectionStart.
func (l *List) SectionStart() int { return l.sectionStart }

// SetCheckpoint remembers the write cursor for ResetToCheckpoint.
func (l *List) SetCheckpoint() { l.checkpoint = l.writePos }

// ResetToCheckpoint discards everything written since SetCheckpoint.
func (l *List) ResetToCheckpoint() { l.writePos = l.checkpoint }

// State returns the upload state.
func (l *List) State() State { return l.state }

// SetState sets the upload state.
func (l *List) SetState(s State) { l.state = s }

// PutWord stores a little-endian word at off.
func (l *List) PutWord(off int, v uint32) {
	binary.LittleEndian.PutUint32(l.buf[off:], v)
}

// Word loads the little-endian word at off.
func (l *List) Word(off int) uint32 {
	return binary.LittleEndian.Uint32(l.buf[off:])
}
