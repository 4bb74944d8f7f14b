// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"encoding/binary"
	"fmt"
	"image"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"

	"github.com/gogpu/rrx/command"
	"github.com/gogpu/rrx/internal/mathx"
)

// InternalFormat selects which source channels a texture keeps.
type InternalFormat uint8

// Internal formats.
const (
	RGBA InternalFormat = iota
	RGB
	Alpha
	Luminance
	Intensity
	LuminanceAlpha
	// RGBA1 keeps a one bit alpha, set when the source alpha is at least half.
	RGBA1
)

// DefaultMaxSize is the largest texture edge the texture units sample.
const DefaultMaxSize = 256

// ConvertOptions controls Convert.
type ConvertOptions struct {
	Internal InternalFormat
	Format   command.PixelFormat
	// MaxSize caps both edges. Defaults to DefaultMaxSize if <= 0.
	MaxSize int
	// Mipmaps builds the full mip chain down to 1x1.
	Mipmaps bool
}

// Convert turns src into a device image. Edges are scaled up to the next
// power of two, capped at MaxSize.
func Convert(src image.Image, opts ConvertOptions) (Image, error) {
	if opts.MaxSize <= 0 {
		opts.MaxSize = DefaultMaxSize
	}
	b := src.Bounds()
	if b.Empty() {
		return Image{}, fmt.Errorf("%w: empty source", ErrImageSize)
	}
	w := min(mathx.NextPow2(b.Dx()), opts.MaxSize)
	h := min(mathx.NextPow2(b.Dy()), opts.MaxSize)
	if !mathx.IsPow2(w) || !mathx.IsPow2(h) {
		return Image{}, fmt.Errorf("%w: max size %d is not a power of two", ErrImageSize, opts.MaxSize)
	}

	base := image.NewNRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(base, base.Bounds(), src, b, xdraw.Src, nil)

	img := Image{Format: opts.Format}
	img.Levels = append(img.Levels, encodeLevel(base, opts))
	if opts.Mipmaps {
		for _, lvl := range Mipmaps(base) {
			img.Levels = append(img.Levels, encodeLevel(lvl, opts))
		}
	}
	return img, nil
}

// Mipmaps returns the mip levels below base, each half the size of the one
// above, ending with 1x1.
func Mipmaps(base *image.NRGBA) []*image.NRGBA {
	var out []*image.NRGBA
	w, h := base.Bounds().Dx(), base.Bounds().Dy()
	cur := base
	for w > 1 || h > 1 {
		w, h = max(w/2, 1), max(h/2, 1)
		cur = imaging.Resize(cur, w, h, imaging.Box)
		out = append(out, cur)
	}
	return out
}

func encodeLevel(src *image.NRGBA, opts ConvertOptions) Level {
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	buf := make([]byte, w*h*BytesPerTexel)
	for y := range h {
		for x := range w {
			o := src.PixOffset(x, y)
			r, g, b, a := remap(src.Pix[o], src.Pix[o+1], src.Pix[o+2], src.Pix[o+3], opts.Internal)
			binary.LittleEndian.PutUint16(buf[(y*w+x)*BytesPerTexel:], PackTexel(r, g, b, a, opts.Format))
		}
	}
	return Level{Width: w, Height: h, Pixels: NewPixels(buf)}
}

func remap(r, g, b, a uint8, f InternalFormat) (uint8, uint8, uint8, uint8) {
	switch f {
	case RGB:
		return r, g, b, 0xff
	case Alpha:
		return 0, 0, 0, a
	case Luminance:
		return r, r, r, 0xff
	case Intensity:
		return r, r, r, r
	case LuminanceAlpha:
		return r, r, r, a
	case RGBA1:
		if a >= 0x80 {
			return r, g, b, 0xff
		}
		return r, g, b, 0
	default:
		return r, g, b, a
	}
}

// PackTexel packs 8-bit channels into a 16-bit texel.
func PackTexel(r, g, b, a uint8, f command.PixelFormat) uint16 {
	switch f {
	case command.RGBA5551:
		return uint16(r>>3)<<11 | uint16(g>>3)<<6 | uint16(b>>3)<<1 | uint16(a>>7)
	case command.RGB565:
		return uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
	default:
		return uint16(r>>4)<<12 | uint16(g>>4)<<8 | uint16(b>>4)<<4 | uint16(a>>4)
	}
}
