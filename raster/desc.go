// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package raster

import "math"

// Descriptor sizes in 32-bit words.
const (
	StaticWords  = 30
	TexWords     = 9
	fixedTexFrac = 28
	fixedColFrac = 24
	fixedDepFrac = 30
)

// DescWords returns the descriptor length for tmuCount texture units.
func DescWords(tmuCount int) int { return StaticWords + TexWords*tmuCount }

// TexParams are the interpolated S, T and Q of one texture unit.
type TexParams struct {
	Stq     [3]float32
	StqXInc [3]float32
	StqYInc [3]float32
}

// Desc is a triangle setup descriptor.
type Desc struct {
	BBStartX, BBStartY uint16
	BBEndX, BBEndY     uint16

	WInit, WXInc, WYInc [3]int32

	Color, ColorXInc, ColorYInc [4]float32

	DepthW, DepthWXInc, DepthWYInc float32
	DepthZ, DepthZXInc, DepthZYInc float32

	Tex [MaxTMUs]TexParams
}

type wordWriter struct {
	dst []uint32
}

func (w *wordWriter) u32(v uint32)  { w.dst = append(w.dst, v) }
func (w *wordWriter) i32(v int32)   { w.dst = append(w.dst, uint32(v)) }
func (w *wordWriter) f32(v float32) { w.dst = append(w.dst, math.Float32bits(v)) }

func (w *wordWriter) fixed(v float32, frac uint) {
	w.i32(int32(float64(v) * float64(int64(1)<<frac)))
}

func (d *Desc) header(w *wordWriter) {
	w.u32(0)
	w.u32(uint32(d.BBStartY)<<16 | uint32(d.BBStartX))
	w.u32(uint32(d.BBEndY)<<16 | uint32(d.BBEndX))
	for _, e := range [][3]int32{d.WInit, d.WXInc, d.WYInc} {
		for _, v := range e {
			w.i32(v)
		}
	}
}

// Words appends the floating point encoding of d for tmuCount texture
// units to dst.
func (d *Desc) Words(dst []uint32, tmuCount int) []uint32 {
	w := wordWriter{dst: dst}
	d.header(&w)
	for _, c := range [][4]float32{d.Color, d.ColorXInc, d.ColorYInc} {
		for _, v := range c {
			w.f32(v)
		}
	}
	for _, v := range []float32{d.DepthW, d.DepthWXInc, d.DepthWYInc, d.DepthZ, d.DepthZXInc, d.DepthZYInc} {
		w.f32(v)
	}
	for t := range min(tmuCount, MaxTMUs) {
		for _, s := range [][3]float32{d.Tex[t].Stq, d.Tex[t].StqXInc, d.Tex[t].StqYInc} {
			for _, v := range s {
				w.f32(v)
			}
		}
	}
	return w.dst
}

// FixedWords appends the fixed point encoding of d to dst. Colors use 24
// fractional bits, depth 30 and texture coordinates 28.
func (d *Desc) FixedWords(dst []uint32, tmuCount int) []uint32 {
	w := wordWriter{dst: dst}
	d.header(&w)
	for _, c := range [][4]float32{d.Color, d.ColorXInc, d.ColorYInc} {
		for _, v := range c {
			w.fixed(v, fixedColFrac)
		}
	}
	for _, v := range []float32{d.DepthW, d.DepthWXInc, d.DepthWYInc, d.DepthZ, d.DepthZXInc, d.DepthZYInc} {
		w.fixed(v, fixedDepFrac)
	}
	for t := range min(tmuCount, MaxTMUs) {
		for _, s := range [][3]float32{d.Tex[t].Stq, d.Tex[t].StqXInc, d.Tex[t].StqYInc} {
			for _, v := range s {
				w.fixed(v, fixedTexFrac)
			}
		}
	}
	return w.dst
}
