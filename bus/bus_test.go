// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package bus

import (
	"bytes"
	"errors"
	"testing"
)

func TestMemoryWriteData(t *testing.T) {
	m := NewMemory(3, 16)
	if m.BufferCount() != 3 {
		t.Fatalf("BufferCount() = %d, want 3", m.BufferCount())
	}
	buf := m.RequestBuffer(1)
	copy(buf, "hello")
	if err := m.WriteData(1, 5); err != nil {
		t.Fatalf("WriteData() error = %v", err)
	}
	copy(buf, "xxxxx")

	got := m.Transfers()
	if len(got) != 1 {
		t.Fatalf("transfers = %d, want 1", len(got))
	}
	if got[0].Index != 1 || string(got[0].Data) != "hello" {
		t.Errorf("transfer = %d %q, want 1 %q", got[0].Index, got[0].Data, "hello")
	}
	if m.BytesWritten() != 5 {
		t.Errorf("BytesWritten() = %d, want 5", m.BytesWritten())
	}
	m.Reset()
	if len(m.Transfers()) != 0 || m.BytesWritten() != 0 {
		t.Error("Reset() kept transfers")
	}
}

func TestMemoryErrors(t *testing.T) {
	m := NewMemory(2, 8)
	tests := []struct {
		name        string
		index, size int
		wantIndex   bool
	}{
		{"negative index", -1, 0, true},
		{"index past end", 2, 0, true},
		{"oversized", 0, 9, false},
		{"negative size", 0, -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := m.WriteData(tt.index, tt.size)
			if err == nil {
				t.Fatal("WriteData() error = nil")
			}
			if got := errors.Is(err, ErrBufferIndex); got != tt.wantIndex {
				t.Errorf("errors.Is(ErrBufferIndex) = %v, want %v", got, tt.wantIndex)
			}
		})
	}
	if m.RequestBuffer(5) != nil {
		t.Error("RequestBuffer(5) != nil")
	}
}

func TestMemoryClearToSend(t *testing.T) {
	m := NewMemory(1, 4)
	if !m.ClearToSend() {
		t.Error("ClearToSend() = false without Busy")
	}
	busy := true
	m.Busy = func() bool { return busy }
	if m.ClearToSend() {
		t.Error("ClearToSend() = true while busy")
	}
	busy = false
	if !m.ClearToSend() {
		t.Error("ClearToSend() = false after busy cleared")
	}
}

func TestMemoryOnWrite(t *testing.T) {
	m := NewMemory(2, 4)
	var seen []int
	m.OnWrite = func(index int, data []byte) { seen = append(seen, index) }
	m.WriteData(1, 4)
	m.WriteData(0, 2)
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 0 {
		t.Errorf("OnWrite indices = %v, want [1 0]", seen)
	}
}

func TestCaptureRoundTrip(t *testing.T) {
	mem := NewMemory(2, 1024)
	var out bytes.Buffer
	c := NewCapture(mem, &out)

	want := []Transfer{
		{Index: 0, Data: bytes.Repeat([]byte{0xAB}, 1000)},
		{Index: 1, Data: []byte{1, 2, 3, 4}},
		{Index: 0, Data: []byte{}},
	}
	for _, tr := range want {
		copy(c.RequestBuffer(tr.Index), tr.Data)
		if err := c.WriteData(tr.Index, len(tr.Data)); err != nil {
			t.Fatalf("WriteData() error = %v", err)
		}
	}
	if c.Frames() != 3 {
		t.Errorf("Frames() = %d, want 3", c.Frames())
	}
	if len(mem.Transfers()) != 3 {
		t.Errorf("forwarded = %d, want 3", len(mem.Transfers()))
	}
	if out.Len() >= 1000 {
		t.Errorf("capture size = %d, want compressed below 1000", out.Len())
	}

	var got []Transfer
	err := ReadCapture(&out, func(index int, data []byte) error {
		got = append(got, Transfer{Index: index, Data: append([]byte(nil), data...)})
		return nil
	})
	if err != nil {
		t.Fatalf("ReadCapture() error = %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("frames = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Index != want[i].Index || !bytes.Equal(got[i].Data, want[i].Data) {
			t.Errorf("frame %d = %d/%d bytes, want %d/%d bytes",
				i, got[i].Index, len(got[i].Data), want[i].Index, len(want[i].Data))
		}
	}
}

func TestCaptureBadIndex(t *testing.T) {
	var out bytes.Buffer
	c := NewCapture(NewMemory(1, 8), &out)
	if err := c.WriteData(3, 1); !errors.Is(err, ErrBufferIndex) {
		t.Errorf("WriteData() error = %v, want ErrBufferIndex", err)
	}
	if out.Len() != 0 {
		t.Errorf("capture wrote %d bytes for a failed transfer", out.Len())
	}
}

func TestReadCaptureCorrupt(t *testing.T) {
	var good bytes.Buffer
	c := NewCapture(NewMemory(1, 64), &good)
	copy(c.RequestBuffer(0), "some display list bytes")
	c.WriteData(0, 23)
	full := good.Bytes()

	tests := []struct {
		name string
		data []byte
	}{
		{"bad magic", []byte("NOPE")},
		{"short magic", []byte("RR")},
		{"truncated frame", full[:len(full)-3]},
		{"bad block", append(append([]byte{}, captureMagic[:]...), 0, 3, 0xFF, 0xFF, 0xFF)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ReadCapture(bytes.NewReader(tt.data), func(int, []byte) error { return nil })
			if !errors.Is(err, ErrCaptureCorrupt) {
				t.Errorf("ReadCapture() error = %v, want ErrCaptureCorrupt", err)
			}
		})
	}
}

func TestReadCaptureEmpty(t *testing.T) {
	if err := ReadCapture(bytes.NewReader(nil), nil); err != nil {
		t.Errorf("ReadCapture(empty) error = %v", err)
	}
}

func TestReadCaptureCallbackError(t *testing.T) {
	var out bytes.Buffer
	c := NewCapture(NewMemory(1, 8), &out)
	c.WriteData(0, 8)
	c.WriteData(0, 8)
	stop := errors.New("stop")
	calls := 0
	err := ReadCapture(&out, func(int, []byte) error { calls++; return stop })
	if !errors.Is(err, stop) || calls != 1 {
		t.Errorf("ReadCapture() = %v after %d calls, want stop after 1", err, calls)
	}
}
