// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package displaylist

import "github.com/gogpu/rrx/command"

const maxTMUs = command.MaxTMUs

// loadSpan is the byte range of an encoded texture stream, from the write
// position before it (including a section header it opened) through its
// last DMA record.
type loadSpan struct {
	pos, size int
	pending   bool
}

// loadOptimizer drops texture streams that were replaced before any
// triangle used them. A superseded stream is zero filled in place, so the
// list size is unchanged and the zeros decode as NOPs.
type loadOptimizer struct {
	spans [maxTMUs]loadSpan
}

func (o *loadOptimizer) reset() { o.spans = [maxTMUs]loadSpan{} }

func (o *loadOptimizer) before(l *List, p *command.Pipeline) {
	op := p.Opcode()
	if op.ResetsTextureLoads() {
		o.reset()
		return
	}
	if op != command.OpTextureStream {
		return
	}
	s := &o.spans[command.TextureStreamTMU(p.Op)]
	if s.pending {
		l.InitArea(s.pos, s.size)
		s.pending = false
	}
}

func (o *loadOptimizer) after(p *command.Pipeline, start, end int) {
	if p.Opcode() != command.OpTextureStream {
		return
	}
	o.spans[command.TextureStreamTMU(p.Op)] = loadSpan{pos: start, size: end - start, pending: true}
}

// forgetFrom drops spans that start at or after pos.
func (o *loadOptimizer) forgetFrom(pos int) {
	for i := range o.spans {
		if o.spans[i].pos >= pos {
			o.spans[i] = loadSpan{}
		}
	}
}
