// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package texture manages texture handles and the page pool of device
// texture memory.
//
// Texture memory is split into pages of equal size. A texture owns an
// ordered list of pages; the device streams them back to back into a
// texture unit. Updating a texture that may still be referenced by a queued
// display list never touches its pages: the data moves to a fresh slot and
// the old slot is reclaimed by the next UploadTextures.
package texture

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/gogpu/gputypes"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/rrx/command"
	"github.com/gogpu/rrx/internal/logging"
	"github.com/gogpu/rrx/internal/mathx"
)

// ErrImageSize is returned when pixel data does not match the image size.
var ErrImageSize = errors.New("texture: pixel data does not match image size")

// Default configuration values.
const (
	DefaultPageSize    = 4096
	DefaultPageCount   = 1024
	DefaultMaxTextures = 256

	// BytesPerTexel is the size of one texel in every supported format.
	BytesPerTexel = 2
)

// Config holds the manager configuration.
type Config struct {
	// PageSize is the size of one texture page in bytes.
	// Defaults to DefaultPageSize if <= 0.
	PageSize int

	// PageCount is the number of pages in the pool.
	// Defaults to DefaultPageCount if <= 0.
	PageCount int

	// MaxTextures bounds both the handle space and the slot table. Handle 0
	// is reserved. Defaults to DefaultMaxTextures if <= 1.
	MaxTextures int

	// GRAMBase is added to every device address.
	GRAMBase uint32
}

// Level is one mip level of an image.
type Level struct {
	Width  int
	Height int
	Pixels *Pixels
}

// Size returns the level size in bytes.
func (l Level) Size() int { return l.Width * l.Height * BytesPerTexel }

// Image is a texture with its mip chain. Levels[0] is the base level.
type Image struct {
	Levels []Level
	Format command.PixelFormat
}

// NewImage returns a single level image.
func NewImage(width, height int, format command.PixelFormat, pixels *Pixels) Image {
	return Image{Levels: []Level{{Width: width, Height: height, Pixels: pixels}}, Format: format}
}

// Size returns the size of all levels in bytes.
func (img Image) Size() int {
	n := 0
	for _, l := range img.Levels {
		n += l.Size()
	}
	return n
}

// Release drops the caller's reference to the pixels of every level.
func (img Image) Release() {
	for _, l := range img.Levels {
		if l.Pixels != nil {
			l.Pixels.Release()
		}
	}
}

// Validate checks that every level carries enough pixel data.
func (img Image) Validate() error {
	if len(img.Levels) == 0 {
		return fmt.Errorf("%w: no levels", ErrImageSize)
	}
	for i, l := range img.Levels {
		if l.Width <= 0 || l.Height <= 0 {
			return fmt.Errorf("%w: level %d is %dx%d", ErrImageSize, i, l.Width, l.Height)
		}
		if l.Pixels == nil || len(l.Pixels.Bytes()) < l.Size() {
			return fmt.Errorf("%w: level %d needs %d bytes", ErrImageSize, i, l.Size())
		}
	}
	return nil
}

type slot struct {
	inUse          bool
	requiresUpload bool
	requiresDelete bool
	levels         []Level
	sizeBytes      int
	sampler        command.TmuTexture
	pages          []int
}

func (s *slot) hasPixels() bool { return len(s.levels) > 0 }

func (s *slot) releasePixels() {
	for _, l := range s.levels {
		l.Pixels.Release()
	}
	s.levels = nil
	s.sizeBytes = 0
}

// pageData copies page j of the texture into buf and returns the filled
// part. Pages run across mip level boundaries.
func (s *slot) pageData(j int, buf []byte) []byte {
	off := j * len(buf)
	n := 0
	for _, l := range s.levels {
		size := l.Size()
		if off >= size {
			off -= size
			continue
		}
		n += copy(buf[n:], l.Pixels.Bytes()[off:size])
		off = 0
		if n == len(buf) {
			break
		}
	}
	return buf[:n]
}

// Stats reports manager usage.
type Stats struct {
	Textures       int
	PagesUsed      int
	PagesTotal     int
	PageSize       int
	PendingUploads int
	PendingDeletes int
}

var statsPrinter = message.NewPrinter(language.English)

// String returns a human-readable summary.
func (s Stats) String() string {
	return statsPrinter.Sprintf("Textures[%d live, %d/%d pages, %d bytes used, %d uploads, %d deletes pending]",
		s.Textures, s.PagesUsed, s.PagesTotal, s.PagesUsed*s.PageSize, s.PendingUploads, s.PendingDeletes)
}

// Manager owns the texture handle table, the slot table and the page pool.
//
// Manager is safe for concurrent use, but the renderer only calls it from
// the submitting goroutine.
type Manager struct {
	mu sync.Mutex

	pageSize int
	gramBase uint32

	lut   []int // handle -> slot, 0 when free
	slots []slot
	pages []bool

	scratch []byte
}

// NewManager returns a manager with config defaults applied.
func NewManager(config Config) *Manager {
	if config.PageSize <= 0 {
		config.PageSize = DefaultPageSize
	}
	if config.PageCount <= 0 {
		config.PageCount = DefaultPageCount
	}
	if config.MaxTextures <= 1 {
		config.MaxTextures = DefaultMaxTextures
	}
	return &Manager{
		pageSize: config.PageSize,
		gramBase: config.GRAMBase,
		lut:      make([]int, config.MaxTextures),
		slots:    make([]slot, config.MaxTextures),
		pages:    make([]bool, config.PageCount),
		scratch:  make([]byte, config.PageSize),
	}
}

// PageSize returns the page size in bytes.
func (m *Manager) PageSize() int { return m.pageSize }

func (m *Manager) allocSlot() (int, bool) {
	for i := 1; i < len(m.slots); i++ {
		if !m.slots[i].inUse {
			m.slots[i] = slot{inUse: true}
			return i, true
		}
	}
	logging.L().Warn("texture: slot table exhausted")
	return 0, false
}

// slotOf returns the slot of a live handle.
func (m *Manager) slotOf(handle uint16) (*slot, bool) {
	if handle == 0 || int(handle) >= len(m.lut) || m.lut[handle] == 0 {
		return nil, false
	}
	return &m.slots[m.lut[handle]], true
}

// CreateTexture returns the lowest free handle. The texture repeats in both
// directions and filters linearly on magnification and minification.
func (m *Manager) CreateTexture() (uint16, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for h := 1; h < len(m.lut); h++ {
		if m.lut[h] != 0 {
			continue
		}
		i, ok := m.allocSlot()
		if !ok {
			return 0, false
		}
		m.slots[i].sampler = command.TmuTexture{
			WrapS:     gputypes.AddressModeRepeat,
			WrapT:     gputypes.AddressModeRepeat,
			MagFilter: gputypes.FilterModeLinear,
			MinFilter: gputypes.FilterModeLinear,
		}
		m.lut[h] = i
		return uint16(h), true
	}
	return 0, false
}

// UpdateTexture replaces the texture data of handle and schedules it for
// upload. It reports false for an invalid handle, an invalid image, or when
// no slot or not enough pages are left.
func (m *Manager) UpdateTexture(handle uint16, img Image) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.slotOf(handle)
	if !ok {
		return false
	}
	if err := img.Validate(); err != nil {
		logging.L().Warn("texture: update rejected", "handle", handle, "err", err)
		return false
	}

	need := max(mathx.CeilDiv(img.Size(), m.pageSize), 1)
	free := m.freePageCount()
	if !old.hasPixels() {
		free += len(old.pages)
	}
	if free < need {
		logging.L().Warn("texture: page pool exhausted", "handle", handle, "pages", need, "free", free)
		return false
	}

	idx := m.lut[handle]
	if old.hasPixels() {
		next, ok := m.allocSlot()
		if !ok {
			return false
		}
		old.requiresDelete = true
		m.slots[next].sampler = old.sampler
		m.lut[handle] = next
		idx = next
		logging.L().Debug("texture: new slot", "handle", handle, "slot", next)
	} else {
		m.freePages(old)
	}

	s := &m.slots[idx]
	s.levels = make([]Level, len(img.Levels))
	for i, l := range img.Levels {
		l.Pixels.Retain()
		s.levels[i] = l
	}
	s.sizeBytes = img.Size()
	s.requiresUpload = true
	s.requiresDelete = false
	s.sampler.Width = uint16(img.Levels[0].Width)
	s.sampler.Height = uint16(img.Levels[0].Height)
	s.sampler.Format = img.Format

	if !m.allocPages(s, need) {
		m.freePages(s)
		return false
	}
	logging.L().Debug("texture: pages claimed", "handle", handle, "pages", s.pages)
	return true
}

func (m *Manager) allocPages(s *slot, n int) bool {
	s.pages = s.pages[:0]
	for p := range m.pages {
		if m.pages[p] {
			continue
		}
		m.pages[p] = true
		s.pages = append(s.pages, p)
		if len(s.pages) == n {
			return true
		}
	}
	return false
}

func (m *Manager) freePageCount() int {
	n := 0
	for _, used := range m.pages {
		if !used {
			n++
		}
	}
	return n
}

func (m *Manager) freePages(s *slot) {
	for _, p := range s.pages {
		m.pages[p] = false
	}
	s.pages = nil
}

// DeleteTexture releases handle. The slot is reclaimed by the next
// UploadTextures.
func (m *Manager) DeleteTexture(handle uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.slotOf(handle)
	if !ok {
		return false
	}
	s.requiresDelete = true
	m.lut[handle] = 0
	return true
}

// TextureValid reports whether handle names a live texture.
func (m *Manager) TextureValid(handle uint16) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slotOf(handle)
	return ok && s.inUse
}

// Image returns the image a texture currently holds. It reports false
// for an invalid handle or a texture without pixels.
func (m *Manager) Image(handle uint16) (Image, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slotOf(handle)
	if !ok || !s.hasPixels() {
		return Image{}, false
	}
	return Image{Levels: slices.Clone(s.levels), Format: s.sampler.Format}, true
}

// Pages returns the page indices of handle in streaming order.
func (m *Manager) Pages(handle uint16) []int {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slotOf(handle)
	if !ok {
		return nil
	}
	return append([]int(nil), s.pages...)
}

// DeviceAddresses returns the device address of every page of handle.
func (m *Manager) DeviceAddresses(handle uint16) []uint32 {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slotOf(handle)
	if !ok {
		return nil
	}
	addrs := make([]uint32, len(s.pages))
	for i, p := range s.pages {
		addrs[i] = m.pageAddress(p)
	}
	return addrs
}

func (m *Manager) pageAddress(p int) uint32 {
	return m.gramBase + uint32(p*m.pageSize)
}

// TmuConfig returns the sampler register of handle. The TMU field is left
// for the caller to set.
func (m *Manager) TmuConfig(handle uint16) (command.TmuTexture, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.slotOf(handle)
	if !ok {
		return command.TmuTexture{}, false
	}
	return s.sampler, true
}

func (m *Manager) setSampler(handle uint16, fn func(*command.TmuTexture)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.slotOf(handle); ok {
		fn(&s.sampler)
	}
}

// SetWrapS sets the S wrap mode of handle.
func (m *Manager) SetWrapS(handle uint16, mode gputypes.AddressMode) {
	m.setSampler(handle, func(t *command.TmuTexture) { t.WrapS = mode })
}

// SetWrapT sets the T wrap mode of handle.
func (m *Manager) SetWrapT(handle uint16, mode gputypes.AddressMode) {
	m.setSampler(handle, func(t *command.TmuTexture) { t.WrapT = mode })
}

// SetMagFilter sets the magnification filter of handle.
func (m *Manager) SetMagFilter(handle uint16, mode gputypes.FilterMode) {
	m.setSampler(handle, func(t *command.TmuTexture) { t.MagFilter = mode })
}

// SetMinFilter sets the minification filter of handle.
func (m *Manager) SetMinFilter(handle uint16, mode gputypes.FilterMode) {
	m.setSampler(handle, func(t *command.TmuTexture) { t.MinFilter = mode })
}

// PushFunc writes one page to the device. offset is the byte offset of the
// page within the texture and addr the device address of the page. data is
// only valid during the call.
type PushFunc func(offset, addr uint32, data []byte) bool

// UploadTextures pushes every page of every texture waiting for upload,
// then reclaims deleted slots. A texture stays pending if any page push
// fails.
func (m *Manager) UploadTextures(push PushFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i := range m.slots {
		s := &m.slots[i]
		if !s.requiresUpload || !s.hasPixels() {
			continue
		}
		ok := true
		for j, p := range s.pages {
			data := s.pageData(j, m.scratch)
			if len(data) == 0 {
				break
			}
			ok = push(uint32(j*m.pageSize), m.pageAddress(p), data) && ok
		}
		s.requiresUpload = !ok
	}
	for i := range m.slots {
		s := &m.slots[i]
		if !s.requiresDelete {
			continue
		}
		s.requiresDelete = false
		s.inUse = false
		s.releasePixels()
		m.freePages(s)
	}
}

// Stats returns current usage.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	st := Stats{PagesTotal: len(m.pages), PageSize: m.pageSize}
	for _, used := range m.pages {
		if used {
			st.PagesUsed++
		}
	}
	for i := range m.slots {
		s := &m.slots[i]
		if s.inUse && !s.requiresDelete {
			st.Textures++
		}
		if s.requiresUpload {
			st.PendingUploads++
		}
		if s.requiresDelete {
			st.PendingDeletes++
		}
	}
	return st
}
