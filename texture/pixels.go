// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import "sync/atomic"

// Pixels is a reference counted texel buffer. The manager holds one
// reference from UpdateTexture until the slot is swept, so a caller may
// drop its own reference right after the update.
type Pixels struct {
	data []byte
	refs atomic.Int32
}

// NewPixels wraps data with a reference count of one.
func NewPixels(data []byte) *Pixels {
	p := &Pixels{data: data}
	p.refs.Store(1)
	return p
}

// Retain adds a reference and returns p.
func (p *Pixels) Retain() *Pixels {
	p.refs.Add(1)
	return p
}

// Release drops a reference. The buffer is freed with the last one.
func (p *Pixels) Release() {
	if p.refs.Add(-1) == 0 {
		p.data = nil
	}
}

// Refs returns the current reference count.
func (p *Pixels) Refs() int { return int(p.refs.Load()) }

// Bytes returns the texel data, or nil after the last Release.
func (p *Pixels) Bytes() []byte { return p.data }
