// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gram allocates runs of fixed-size blocks of device graphics
// memory.
package gram

import (
	"errors"
	"fmt"

	"github.com/gogpu/rrx/internal/mathx"
)

// Invalid is returned when an allocation cannot be served.
const Invalid = ^uint32(0)

// ErrInvalidGeometry is returned by New for a block size or count that
// cannot describe a memory.
var ErrInvalidGeometry = errors.New("gram: invalid block geometry")

// Allocator is a first-fit allocator over a block table. Every block of an
// allocated run is tagged with the start address of the run.
//
// Allocator is not safe for concurrent use.
type Allocator struct {
	blockSize int
	tags      []uint32
}

// New returns an allocator for blockCount blocks of blockSize bytes.
// blockSize must be positive and blockCount must not be negative.
func New(blockSize, blockCount int) (*Allocator, error) {
	if blockSize <= 0 || blockCount < 0 {
		return nil, fmt.Errorf("%w: %d blocks of %d bytes", ErrInvalidGeometry, blockCount, blockSize)
	}
	tags := make([]uint32, blockCount)
	for i := range tags {
		tags[i] = Invalid
	}
	return &Allocator{blockSize: blockSize, tags: tags}, nil
}

// BlockSize returns the size of one block in bytes.
func (a *Allocator) BlockSize() int { return a.blockSize }

// Blocks returns the total number of blocks.
func (a *Allocator) Blocks() int { return len(a.tags) }

// FreeBlocks returns the number of unallocated blocks.
func (a *Allocator) FreeBlocks() int {
	n := 0
	for _, t := range a.tags {
		if t == Invalid {
			n++
		}
	}
	return n
}

// Alloc reserves size bytes and returns the start address, or Invalid if
// size is zero or no contiguous run is free.
func (a *Allocator) Alloc(size int) uint32 {
	if size <= 0 {
		return Invalid
	}
	need := mathx.CeilDiv(size, a.blockSize)
	run := 0
	for i, t := range a.tags {
		if t != Invalid {
			run = 0
			continue
		}
		run++
		if run == need {
			first := i - need + 1
			addr := uint32(first * a.blockSize)
			for j := first; j <= i; j++ {
				a.tags[j] = addr
			}
			return addr
		}
	}
	return Invalid
}

// Free releases the run starting at addr. Unknown addresses are ignored.
func (a *Allocator) Free(addr uint32) {
	if addr == Invalid {
		return
	}
	found := false
	for i, t := range a.tags {
		if t == addr {
			a.tags[i] = Invalid
			found = true
		} else if found {
			return
		}
	}
}

// String describes the allocator usage.
func (a *Allocator) String() string {
	return fmt.Sprintf("gram: %d/%d blocks free, %d bytes per block", a.FreeBlocks(), a.Blocks(), a.blockSize)
}
