// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package command builds the records an Assembler writes into a display
// list.
//
// A Command is a tagged sum: it has a pipeline part, a DMA part, or both.
// The pipeline part is an opcode word followed by a fixed number of payload
// words and is consumed by the rasterizer pipeline. It must sit inside a
// stream section. The DMA part is a list of dse.Transfer records and must
// sit outside any stream section.
package command

import (
	"encoding/binary"

	"github.com/gogpu/rrx/dse"
)

// Kind identifies which parts a Command carries.
type Kind uint8

// Command kinds.
const (
	KindNone Kind = iota
	KindPipeline
	KindTransfer
	KindBoth
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindPipeline:
		return "pipeline"
	case KindTransfer:
		return "transfer"
	case KindBoth:
		return "both"
	default:
		return "none"
	}
}

// Pipeline is the pipeline part of a command.
type Pipeline struct {
	Op      uint32
	Payload []uint32
}

// Size returns the encoded size in bytes.
func (p *Pipeline) Size() int { return 4 + 4*len(p.Payload) }

// Encode writes the record into dst and returns the number of bytes written.
func (p *Pipeline) Encode(dst []byte) int {
	binary.LittleEndian.PutUint32(dst, p.Op)
	for i, w := range p.Payload {
		binary.LittleEndian.PutUint32(dst[4+4*i:], w)
	}
	return p.Size()
}

// Opcode returns the opcode class of the record.
func (p *Pipeline) Opcode() Opcode { return Class(p.Op) }

// Command is one unit handed to an Assembler.
type Command struct {
	Pipeline  *Pipeline
	Transfers []dse.Transfer
}

// PipelineOnly returns a command with only a pipeline part.
func PipelineOnly(p Pipeline) Command {
	return Command{Pipeline: &p}
}

// WithTransfer returns a command with only DMA records.
func WithTransfer(t ...dse.Transfer) Command {
	return Command{Transfers: t}
}

// Both returns a command with a pipeline part followed by DMA records.
func Both(p Pipeline, t ...dse.Transfer) Command {
	return Command{Pipeline: &p, Transfers: t}
}

// Kind reports which parts the command carries.
func (c Command) Kind() Kind {
	switch {
	case c.Pipeline != nil && len(c.Transfers) > 0:
		return KindBoth
	case c.Pipeline != nil:
		return KindPipeline
	case len(c.Transfers) > 0:
		return KindTransfer
	default:
		return KindNone
	}
}

// PipelineSize returns the encoded size of the pipeline part.
func (c Command) PipelineSize() int {
	if c.Pipeline == nil {
		return 0
	}
	return c.Pipeline.Size()
}

// TransferSize returns the encoded size of all DMA records.
func (c Command) TransferSize() int {
	n := 0
	for _, t := range c.Transfers {
		n += t.Size()
	}
	return n
}
