// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package displaylist

import (
	"bytes"
	"testing"
)

func TestListAlloc(t *testing.T) {
	l := NewList(make([]byte, 16))
	tests := []struct {
		size    int
		wantOff int
		wantOK  bool
	}{
		{3, 0, true},
		{4, 4, true},
		{9, 0, false},
		{8, 8, true},
		{1, 0, false},
	}
	for i, tt := range tests {
		off, ok := l.Alloc(tt.size)
		if ok != tt.wantOK || (ok && off != tt.wantOff) {
			t.Errorf("step %d: Alloc(%d) = %d, %v, want %d, %v", i, tt.size, off, ok, tt.wantOff, tt.wantOK)
		}
		if l.Size() > l.Capacity() {
			t.Fatalf("step %d: size %d exceeds capacity %d", i, l.Size(), l.Capacity())
		}
	}
	if l.FreeSpace() != 0 {
		t.Errorf("FreeSpace() = %d, want 0", l.FreeSpace())
	}
}

func TestListCapacityRoundsDown(t *testing.T) {
	l := NewList(make([]byte, 10))
	if got := l.Capacity(); got != 8 {
		t.Errorf("Capacity() = %d, want 8", got)
	}
}

func TestListFailedAllocDoesNotMutate(t *testing.T) {
	l := NewList(make([]byte, 8))
	l.Alloc(4)
	before := l.WritePos()
	if _, ok := l.Alloc(8); ok {
		t.Fatal("Alloc(8) succeeded on a list with 4 free bytes")
	}
	if l.WritePos() != before {
		t.Errorf("WritePos() = %d, want %d", l.WritePos(), before)
	}
}

func TestListCreateZeroes(t *testing.T) {
	buf := bytes.Repeat([]byte{0xFF}, 8)
	l := NewList(buf)
	b, ok := l.Create(6)
	if !ok || len(b) != 8 {
		t.Fatalf("Create(6) = %d bytes, %v, want 8 bytes", len(b), ok)
	}
	if !bytes.Equal(b, make([]byte, 8)) {
		t.Errorf("Create() returned %x, want zeros", b)
	}
}

func TestListRemoveAndClear(t *testing.T) {
	l := NewList(make([]byte, 32))
	l.Alloc(8)
	l.Alloc(6)
	l.Remove(6)
	if got := l.Size(); got != 8 {
		t.Errorf("Size() after Remove = %d, want 8", got)
	}
	l.SetState(Queued)
	l.Clear()
	if l.Size() != 0 || l.State() != Idle || !l.AtEnd() {
		t.Errorf("after Clear: size %d state %v", l.Size(), l.State())
	}
}

func TestListReadCursor(t *testing.T) {
	l := NewList(make([]byte, 16))
	off, _ := l.Alloc(8)
	l.PutWord(off, 0x11223344)
	l.PutWord(off+4, 0x55667788)

	peek, ok := l.LookAhead(4)
	if !ok || peek[0] != 0x44 {
		t.Fatalf("LookAhead(4) = %x, %v", peek, ok)
	}
	if _, ok := l.Next(4); !ok {
		t.Fatal("Next(4) failed")
	}
	if got := l.Word(4); got != 0x55667788 {
		t.Errorf("Word(4) = %#x, want %#x", got, 0x55667788)
	}
	if _, ok := l.Next(8); ok {
		t.Error("Next(8) read past the write cursor")
	}
	l.Next(4)
	if !l.AtEnd() {
		t.Error("AtEnd() = false after consuming all bytes")
	}
	l.ResetRead()
	if l.AtEnd() {
		t.Error("AtEnd() = true after ResetRead")
	}
}

func TestListRemoveSection(t *testing.T) {
	l := NewList(bytes.Repeat([]byte{0xAA}, 32))
	l.Alloc(8)
	l.SaveSectionStart()
	l.Alloc(12)
	l.RemoveSection()
	if got := l.Size(); got != 20 {
		t.Errorf("Size() = %d, want 20", got)
	}
	if !bytes.Equal(l.Bytes()[8:20], make([]byte, 12)) {
		t.Errorf("section not zeroed: %x", l.Bytes()[8:20])
	}
	if l.Bytes()[0] != 0xAA {
		t.Error("bytes before section start were modified")
	}
}

func TestListCheckpoint(t *testing.T) {
	l := NewList(make([]byte, 32))
	l.Alloc(8)
	l.SetCheckpoint()
	l.Alloc(16)
	l.ResetToCheckpoint()
	if got := l.Size(); got != 8 {
		t.Errorf("Size() = %d, want 8", got)
	}
}

func TestStateString(t *testing.T) {
	for s, want := range map[State]string{Idle: "idle", Queued: "queued", Transferring: "transferring"} {
		if got := s.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}
