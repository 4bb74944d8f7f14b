// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package bus

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/golang/snappy"
)

// captureMagic opens every capture stream.
var captureMagic = [4]byte{'R', 'R', 'X', 'C'}

// maxCaptureFrame bounds the decoded size of one frame.
const maxCaptureFrame = 64 << 20

// Capture wraps a Connector and records every transfer to w before it is
// forwarded.
//
// The stream starts with a four byte magic followed by one frame per
// transfer: the buffer index and the compressed length as uvarints, then
// the transfer bytes as a snappy block.
type Capture struct {
	Connector

	mu      sync.Mutex
	w       io.Writer
	scratch []byte
	header  bool
	frames  int
}

// NewCapture returns a connector recording the transfers of conn to w.
func NewCapture(conn Connector, w io.Writer) *Capture {
	return &Capture{Connector: conn, w: w}
}

// WriteData records the transfer, then forwards it.
func (c *Capture) WriteData(index, size int) error {
	buf := c.RequestBuffer(index)
	if buf == nil {
		return fmt.Errorf("%w: %d", ErrBufferIndex, index)
	}
	if size < 0 || size > len(buf) {
		return fmt.Errorf("bus: capture of %d bytes exceeds buffer %d", size, index)
	}
	if err := c.record(index, buf[:size]); err != nil {
		return err
	}
	return c.Connector.WriteData(index, size)
}

func (c *Capture) record(index int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.header {
		if _, err := c.w.Write(captureMagic[:]); err != nil {
			return fmt.Errorf("bus: write capture header: %w", err)
		}
		c.header = true
	}
	c.scratch = snappy.Encode(c.scratch[:cap(c.scratch)], data)

	var hdr [2 * binary.MaxVarintLen64]byte
	n := binary.PutUvarint(hdr[:], uint64(index))
	n += binary.PutUvarint(hdr[n:], uint64(len(c.scratch)))
	if _, err := c.w.Write(hdr[:n]); err != nil {
		return fmt.Errorf("bus: write capture frame: %w", err)
	}
	if _, err := c.w.Write(c.scratch); err != nil {
		return fmt.Errorf("bus: write capture frame: %w", err)
	}
	c.frames++
	return nil
}

// Frames returns the number of transfers recorded.
func (c *Capture) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}

// ReadCapture decodes a capture stream and calls fn for every transfer in
// order. data is only valid during the call. An empty stream is not an
// error.
func ReadCapture(r io.Reader, fn func(index int, data []byte) error) error {
	br := bufio.NewReader(r)

	var magic [4]byte
	if _, err := io.ReadFull(br, magic[:]); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: header: %v", ErrCaptureCorrupt, err)
	}
	if magic != captureMagic {
		return fmt.Errorf("%w: bad magic %q", ErrCaptureCorrupt, magic[:])
	}

	var comp, out []byte
	for frame := 0; ; frame++ {
		index, err := binary.ReadUvarint(br)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: frame %d: %v", ErrCaptureCorrupt, frame, err)
		}
		n, err := binary.ReadUvarint(br)
		if err != nil || n > maxCaptureFrame {
			return fmt.Errorf("%w: frame %d length", ErrCaptureCorrupt, frame)
		}
		if uint64(cap(comp)) < n {
			comp = make([]byte, n)
		}
		comp = comp[:n]
		if _, err := io.ReadFull(br, comp); err != nil {
			return fmt.Errorf("%w: frame %d: %v", ErrCaptureCorrupt, frame, err)
		}
		m, err := snappy.DecodedLen(comp)
		if err != nil || m > maxCaptureFrame {
			return fmt.Errorf("%w: frame %d: %v", ErrCaptureCorrupt, frame, err)
		}
		if cap(out) < m {
			out = make([]byte, m)
		}
		dec, err := snappy.Decode(out[:m], comp)
		if err != nil {
			return fmt.Errorf("%w: frame %d: %v", ErrCaptureCorrupt, frame, err)
		}
		if err := fn(int(index), dec); err != nil {
			return err
		}
	}
}
