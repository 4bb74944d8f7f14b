// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package rrx

import (
	"errors"
	"fmt"
	"image"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rrx/texture"
)

// Texture errors.
var (
	ErrNoTexture     = errors.New("rrx: no texture handle left")
	ErrTextureMemory = errors.New("rrx: texture does not fit texture memory")
)

// CreateTexture allocates a texture handle.
func (c *Context) CreateTexture() (uint16, error) {
	h, ok := c.r.CreateTexture()
	if !ok {
		return 0, ErrNoTexture
	}
	return h, nil
}

// TexImage converts img and makes it the image of texture handle. The
// pixels reach the device with the next Render.
func (c *Context) TexImage(handle uint16, img image.Image, opts texture.ConvertOptions) error {
	t, err := texture.Convert(img, opts)
	if err != nil {
		return err
	}
	defer t.Release()
	return c.TexImageRaw(handle, t)
}

// TexImageRaw makes an already encoded image the image of texture handle.
// The texture retains the pixels; the caller keeps its own references.
func (c *Context) TexImageRaw(handle uint16, img texture.Image) error {
	if err := img.Validate(); err != nil {
		return err
	}
	if !c.r.UpdateTexture(handle, img) {
		return fmt.Errorf("%w: handle %d, %d bytes", ErrTextureMemory, handle, img.Size())
	}
	return nil
}

// BindTexture selects the texture sampled by unit tmu.
func (c *Context) BindTexture(tmu int, handle uint16) bool { return c.r.UseTexture(tmu, handle) }

// DeleteTexture releases a texture handle.
func (c *Context) DeleteTexture(handle uint16) bool { return c.r.DeleteTexture(handle) }

// IsTexture reports whether handle names a live texture.
func (c *Context) IsTexture(handle uint16) bool { return c.r.TextureValid(handle) }

// SetTextureWrap sets the wrap modes of a texture.
func (c *Context) SetTextureWrap(handle uint16, s, t gputypes.AddressMode) bool {
	ok := c.r.SetTextureWrapS(handle, s)
	return c.r.SetTextureWrapT(handle, t) && ok
}

// SetTextureFilter sets the filters of a texture.
func (c *Context) SetTextureFilter(handle uint16, mag, minify gputypes.FilterMode) bool {
	ok := c.r.SetTextureMagFilter(handle, mag)
	return c.r.SetTextureMinFilter(handle, minify) && ok
}
