// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package texture

import (
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/rrx/command"
)

func image1(size int) Image {
	// 2 bytes per texel: a 1-high image with size/2 texels.
	return NewImage(size/2, 1, command.RGBA4444, NewPixels(make([]byte, size)))
}

func newManager(pages int) *Manager {
	return NewManager(Config{PageSize: 4096, PageCount: pages, MaxTextures: 8})
}

func TestCreateTextureLowestHandle(t *testing.T) {
	m := newManager(4)
	for want := uint16(1); want <= 3; want++ {
		h, ok := m.CreateTexture()
		if !ok || h != want {
			t.Fatalf("CreateTexture() = %d, %v, want %d", h, ok, want)
		}
	}
	m.DeleteTexture(2)
	if h, _ := m.CreateTexture(); h != 2 {
		t.Errorf("CreateTexture() after delete = %d, want 2", h)
	}
}

func TestCreateTextureDefaults(t *testing.T) {
	m := newManager(4)
	h, _ := m.CreateTexture()
	cfg, ok := m.TmuConfig(h)
	if !ok {
		t.Fatal("TmuConfig() failed")
	}
	if cfg.WrapS != gputypes.AddressModeRepeat || cfg.WrapT != gputypes.AddressModeRepeat {
		t.Errorf("wrap = %v/%v, want repeat", cfg.WrapS, cfg.WrapT)
	}
	if cfg.MagFilter != gputypes.FilterModeLinear {
		t.Errorf("mag filter = %v, want linear", cfg.MagFilter)
	}
}

func TestHandleSpaceExhausted(t *testing.T) {
	m := newManager(4)
	for range 7 {
		if _, ok := m.CreateTexture(); !ok {
			t.Fatal("CreateTexture() failed early")
		}
	}
	if _, ok := m.CreateTexture(); ok {
		t.Error("CreateTexture() succeeded with a full handle table")
	}
}

func TestInvalidHandles(t *testing.T) {
	m := newManager(4)
	if m.TextureValid(0) {
		t.Error("handle 0 is valid")
	}
	if m.TextureValid(5) {
		t.Error("unallocated handle is valid")
	}
	if m.TextureValid(1000) {
		t.Error("out of range handle is valid")
	}
	if m.UpdateTexture(0, image1(4096)) {
		t.Error("UpdateTexture(0) succeeded")
	}
	if m.DeleteTexture(3) {
		t.Error("DeleteTexture of unallocated handle succeeded")
	}
	m.SetWrapS(0, gputypes.AddressModeClampToEdge)
	if m.Pages(0) != nil || m.DeviceAddresses(0) != nil {
		t.Error("pages returned for handle 0")
	}
}

func TestUpdateTexturePageCount(t *testing.T) {
	tests := []struct {
		size  int
		pages int
	}{
		{4096, 1},
		{8000, 2},
		{2, 1},
		{4096 * 3, 3},
	}
	for _, tt := range tests {
		m := newManager(8)
		h, _ := m.CreateTexture()
		if !m.UpdateTexture(h, image1(tt.size)) {
			t.Fatalf("UpdateTexture(%d bytes) failed", tt.size)
		}
		if got := len(m.Pages(h)); got != tt.pages {
			t.Errorf("%d bytes: pages = %d, want %d", tt.size, got, tt.pages)
		}
	}
}

func TestUpdateTextureExhaustionIsAtomic(t *testing.T) {
	m := newManager(2)
	h, _ := m.CreateTexture()
	if m.UpdateTexture(h, image1(4096*3)) {
		t.Fatal("UpdateTexture succeeded with too few pages")
	}
	if got := m.Stats().PagesUsed; got != 0 {
		t.Errorf("PagesUsed = %d, want 0", got)
	}
	if !m.UpdateTexture(h, image1(4096*2)) {
		t.Error("UpdateTexture failed with enough pages")
	}
}

func TestDeferredFree(t *testing.T) {
	m := newManager(4)
	h, _ := m.CreateTexture()
	m.UpdateTexture(h, image1(4096*2))
	first := m.Pages(h)

	if !m.UpdateTexture(h, image1(4096*2)) {
		t.Fatal("second UpdateTexture failed")
	}
	second := m.Pages(h)
	for _, a := range first {
		for _, b := range second {
			if a == b {
				t.Fatalf("page %d reused while the old slot is pending", a)
			}
		}
	}
	if got := m.Stats().PendingDeletes; got != 1 {
		t.Errorf("PendingDeletes = %d, want 1", got)
	}

	m.UploadTextures(func(uint32, uint32, []byte) bool { return true })
	st := m.Stats()
	if st.PendingDeletes != 0 || st.PagesUsed != 2 {
		t.Errorf("after upload: %+v, want 0 deletes and 2 pages", st)
	}
}

func TestSamplerDefaults(t *testing.T) {
	m := newManager(4)
	h, _ := m.CreateTexture()
	cfg, ok := m.TmuConfig(h)
	if !ok {
		t.Fatal("TmuConfig() = false")
	}
	want := command.TmuTexture{
		WrapS:     gputypes.AddressModeRepeat,
		WrapT:     gputypes.AddressModeRepeat,
		MagFilter: gputypes.FilterModeLinear,
		MinFilter: gputypes.FilterModeLinear,
	}
	if cfg.WrapS != want.WrapS || cfg.WrapT != want.WrapT || cfg.MagFilter != want.MagFilter || cfg.MinFilter != want.MinFilter {
		t.Errorf("TmuConfig() = %+v, want %+v", cfg, want)
	}
	if cfg.Value()&(1<<11) == 0 {
		t.Errorf("Value() = %#x, min filter bit 11 clear", cfg.Value())
	}
}

func TestSamplerCarriesOver(t *testing.T) {
	m := newManager(4)
	h, _ := m.CreateTexture()
	m.UpdateTexture(h, image1(64))
	m.SetWrapT(h, gputypes.AddressModeClampToEdge)
	m.SetMinFilter(h, gputypes.FilterModeNearest)
	m.UpdateTexture(h, NewImage(16, 8, command.RGB565, NewPixels(make([]byte, 256))))

	cfg, _ := m.TmuConfig(h)
	if cfg.WrapT != gputypes.AddressModeClampToEdge || cfg.MinFilter != gputypes.FilterModeNearest {
		t.Errorf("sampler not carried over: %+v", cfg)
	}
	if cfg.Width != 16 || cfg.Height != 8 || cfg.Format != command.RGB565 {
		t.Errorf("geometry = %dx%d %v, want 16x8 RGB565", cfg.Width, cfg.Height, cfg.Format)
	}
}

func TestUploadTextures(t *testing.T) {
	m := NewManager(Config{PageSize: 4096, PageCount: 8, MaxTextures: 4, GRAMBase: 0x10000})
	h, _ := m.CreateTexture()
	data := make([]byte, 6000)
	for i := range data {
		data[i] = byte(i)
	}
	m.UpdateTexture(h, NewImage(3000, 1, command.RGBA4444, NewPixels(data)))

	type push struct {
		offset, addr uint32
		n            int
		first        byte
	}
	var pushes []push
	m.UploadTextures(func(offset, addr uint32, b []byte) bool {
		pushes = append(pushes, push{offset, addr, len(b), b[0]})
		return true
	})
	want := []push{
		{0, 0x10000, 4096, 0},
		{4096, 0x11000, 6000 - 4096, byte(4096 % 256)},
	}
	if len(pushes) != len(want) {
		t.Fatalf("pushes = %+v, want %+v", pushes, want)
	}
	for i := range want {
		if pushes[i] != want[i] {
			t.Errorf("push %d = %+v, want %+v", i, pushes[i], want[i])
		}
	}
	if got := m.Stats().PendingUploads; got != 0 {
		t.Errorf("PendingUploads = %d, want 0", got)
	}

	n := 0
	m.UploadTextures(func(uint32, uint32, []byte) bool { n++; return true })
	if n != 0 {
		t.Errorf("second upload pushed %d pages, want 0", n)
	}
}

func TestUploadFailureKeepsPending(t *testing.T) {
	m := newManager(4)
	h, _ := m.CreateTexture()
	m.UpdateTexture(h, image1(4096*2))
	calls := 0
	m.UploadTextures(func(uint32, uint32, []byte) bool {
		calls++
		return calls != 1
	})
	if calls != 2 {
		t.Errorf("push calls = %d, want 2", calls)
	}
	if got := m.Stats().PendingUploads; got != 1 {
		t.Errorf("PendingUploads = %d, want 1", got)
	}
}

func TestMipmapPagesSpanLevels(t *testing.T) {
	m := NewManager(Config{PageSize: 512, PageCount: 8, MaxTextures: 4})
	h, _ := m.CreateTexture()
	img := Image{
		Format: command.RGBA4444,
		Levels: []Level{
			{Width: 16, Height: 16, Pixels: NewPixels(make([]byte, 512))},
			{Width: 8, Height: 8, Pixels: NewPixels(make([]byte, 128))},
			{Width: 4, Height: 4, Pixels: NewPixels(make([]byte, 32))},
		},
	}
	if !m.UpdateTexture(h, img) {
		t.Fatal("UpdateTexture failed")
	}
	var sizes []int
	m.UploadTextures(func(_, _ uint32, b []byte) bool {
		sizes = append(sizes, len(b))
		return true
	})
	if len(sizes) != 2 || sizes[0] != 512 || sizes[1] != 160 {
		t.Errorf("page sizes = %v, want [512 160]", sizes)
	}
}

func TestPageExclusivity(t *testing.T) {
	m := newManager(16)
	owner := map[int]uint16{}
	for range 5 {
		h, _ := m.CreateTexture()
		m.UpdateTexture(h, image1(4096*2))
		m.UpdateTexture(h, image1(4096))
		m.UploadTextures(func(uint32, uint32, []byte) bool { return true })
	}
	for h := uint16(1); h <= 5; h++ {
		for _, p := range m.Pages(h) {
			if o, ok := owner[p]; ok {
				t.Errorf("page %d owned by %d and %d", p, o, h)
			}
			owner[p] = h
		}
	}
}

func TestPixelsReleasedOnSweep(t *testing.T) {
	m := newManager(4)
	h, _ := m.CreateTexture()
	px := NewPixels(make([]byte, 64))
	m.UpdateTexture(h, NewImage(32, 1, command.RGBA4444, px))
	if got := px.Refs(); got != 2 {
		t.Errorf("Refs() = %d, want 2", got)
	}
	m.DeleteTexture(h)
	m.UploadTextures(func(uint32, uint32, []byte) bool { return true })
	if got := px.Refs(); got != 1 {
		t.Errorf("Refs() after sweep = %d, want 1", got)
	}
	if m.TextureValid(h) {
		t.Error("deleted texture still valid")
	}
}

func TestRejectsShortPixels(t *testing.T) {
	m := newManager(4)
	h, _ := m.CreateTexture()
	if m.UpdateTexture(h, NewImage(16, 16, command.RGBA4444, NewPixels(make([]byte, 10)))) {
		t.Error("UpdateTexture accepted short pixel data")
	}
}

func TestStatsString(t *testing.T) {
	m := NewManager(Config{PageSize: 4096, PageCount: 1024, MaxTextures: 8})
	h, _ := m.CreateTexture()
	m.UpdateTexture(h, image1(4096*300))
	s := m.Stats().String()
	if !strings.Contains(s, "300/1,024 pages") || !strings.Contains(s, "1,228,800 bytes") {
		t.Errorf("String() = %q", s)
	}
}
