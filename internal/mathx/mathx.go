// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package mathx provides the small integer helpers used when sizing
// display-list records, texture pages and framebuffer bands.
package mathx

import "golang.org/x/exp/constraints"

// CeilDiv returns ceil(x/y) for non-negative x and positive y.
func CeilDiv[T constraints.Integer](x, y T) T {
	return (x + y - 1) / y
}

// AlignUp rounds x up to the next multiple of align.
func AlignUp[T constraints.Integer](x, align T) T {
	if r := x % align; r != 0 {
		return x + align - r
	}
	return x
}

// IsPow2 reports whether x is a positive power of two.
func IsPow2[T constraints.Integer](x T) bool {
	return x > 0 && x&(x-1) == 0
}

// Log2 returns floor(log2(x)) for x > 0, and 0 otherwise.
func Log2[T constraints.Integer](x T) T {
	var n T
	for x > 1 {
		x >>= 1
		n++
	}
	return n
}

// NextPow2 returns the smallest power of two >= x. NextPow2(0) is 1.
func NextPow2[T constraints.Integer](x T) T {
	var p T = 1
	for p < x {
		p <<= 1
	}
	return p
}
