// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package command

import "math"

// FogMode selects the fog attenuation function.
type FogMode uint8

// Fog functions.
const (
	FogOne FogMode = iota
	FogLinear
	FogExp
	FogExp2
)

// String returns the mode name.
func (m FogMode) String() string {
	switch m {
	case FogLinear:
		return "linear"
	case FogExp:
		return "exp"
	case FogExp2:
		return "exp2"
	default:
		return "one"
	}
}

// FogLutSize is the number of sample points of a fog table, taken at
// depths 2^0 through 2^32.
const FogLutSize = 33

// FogTable describes a fog function.
type FogTable struct {
	Mode    FogMode
	Start   float32
	End     float32
	Density float32
}

// DefaultFogTable returns the power-on fog state: exp with density 1,
// start 0 and end 1.
func DefaultFogTable() FogTable {
	return FogTable{Mode: FogExp, Start: 0, End: 1, Density: 1}
}

func (f FogTable) eval(z float64) float64 {
	switch f.Mode {
	case FogLinear:
		return (float64(f.End) - z) / (float64(f.End) - float64(f.Start))
	case FogExp:
		return math.Exp(-(float64(f.Density) * z))
	case FogExp2:
		dz := float64(f.Density) * z
		return math.Exp(-(dz * dz))
	default:
		return 1
	}
}

// Lut samples the fog function at every power of two depth.
func (f FogTable) Lut() [FogLutSize]float32 {
	var lut [FogLutSize]float32
	for i := range lut {
		lut[i] = float32(f.eval(math.Ldexp(1, i)))
	}
	return lut
}

// FogLut returns the command uploading a sampled fog table. The device
// evaluates each interval [2^i, 2^(i+1)) as m*x+b in 2.30 fixed point,
// bounded by start and end.
func FogLut(lut [FogLutSize]float32, start, end float32) Command {
	const one = 1 << 30
	payload := make([]uint32, FogLutWords)
	payload[0] = math.Float32bits(max(start, 1.0))
	payload[1] = math.Float32bits(end)
	for i := range FogLutSize - 1 {
		m := (float64(lut[i+1]) - float64(lut[i])) / 256
		b := float64(lut[i])
		payload[2*(i+1)] = uint32(int32(m * one))
		payload[2*(i+1)+1] = uint32(int32(b * one))
	}
	return PipelineOnly(Pipeline{Op: uint32(OpFogLut), Payload: payload})
}
