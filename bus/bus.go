// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package bus defines the transport between the renderer and the device.
//
// A Connector owns a fixed set of transfer buffers. The renderer encodes
// display lists directly into them and asks the connector to send the first
// size bytes of a buffer once the device is ready to receive.
package bus

import (
	"errors"
	"fmt"
	"sync"
)

// Errors returned by connectors and capture readers.
var (
	ErrBufferIndex    = errors.New("bus: buffer index out of range")
	ErrCaptureCorrupt = errors.New("bus: corrupt capture")
)

// Connector moves encoded display lists to the device.
type Connector interface {
	// WriteData sends the first size bytes of buffer index.
	WriteData(index, size int) error
	// ClearToSend reports whether the device can accept the next transfer.
	ClearToSend() bool
	// RequestBuffer returns buffer index. The slice stays valid for the
	// lifetime of the connector.
	RequestBuffer(index int) []byte
	// BufferCount returns the number of buffers.
	BufferCount() int
}

// Transfer is one recorded WriteData call.
type Transfer struct {
	Index int
	Data  []byte
}

// Memory is a Connector backed by host memory. It records every transfer
// and is always clear to send unless Busy is set.
//
// Memory is safe for concurrent use; the renderer writes from its upload
// goroutine while tests inspect it from another.
type Memory struct {
	mu        sync.Mutex
	buffers   [][]byte
	transfers []Transfer
	bytes     int

	// Busy, when set, is consulted by ClearToSend.
	Busy func() bool
	// OnWrite, when set, is called for every transfer after it was
	// recorded.
	OnWrite func(index int, data []byte)
}

// NewMemory returns a connector with count buffers of size bytes each.
func NewMemory(count, size int) *Memory {
	m := &Memory{buffers: make([][]byte, count)}
	for i := range m.buffers {
		m.buffers[i] = make([]byte, size)
	}
	return m
}

// RequestBuffer implements Connector. It returns nil for an out of range
// index.
func (m *Memory) RequestBuffer(index int) []byte {
	if index < 0 || index >= len(m.buffers) {
		return nil
	}
	return m.buffers[index]
}

// BufferCount implements Connector.
func (m *Memory) BufferCount() int { return len(m.buffers) }

// ClearToSend implements Connector.
func (m *Memory) ClearToSend() bool {
	if m.Busy != nil {
		return !m.Busy()
	}
	return true
}

// WriteData implements Connector. The data is copied, so the buffer may be
// reused as soon as WriteData returns.
func (m *Memory) WriteData(index, size int) error {
	if index < 0 || index >= len(m.buffers) {
		return fmt.Errorf("%w: %d of %d", ErrBufferIndex, index, len(m.buffers))
	}
	if size < 0 || size > len(m.buffers[index]) {
		return fmt.Errorf("bus: transfer of %d bytes exceeds buffer %d", size, index)
	}
	data := append([]byte(nil), m.buffers[index][:size]...)

	m.mu.Lock()
	m.transfers = append(m.transfers, Transfer{Index: index, Data: data})
	m.bytes += size
	onWrite := m.OnWrite
	m.mu.Unlock()

	if onWrite != nil {
		onWrite(index, data)
	}
	return nil
}

// Transfers returns a copy of the recorded transfers.
func (m *Memory) Transfers() []Transfer {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Transfer(nil), m.transfers...)
}

// BytesWritten returns the total number of bytes sent.
func (m *Memory) BytesWritten() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.bytes
}

// Reset forgets all recorded transfers.
func (m *Memory) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transfers = nil
	m.bytes = 0
}
