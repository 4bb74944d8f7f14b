// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package renderer turns triangles and state changes into display lists and
// streams them to the device.
//
// A frame that does not fit into the on-chip framebuffer is split into
// horizontal bands. Every band owns a display list, and every state change
// is added to all of them. Two list sets are kept: the back set is filled
// by the caller while the front set of the previous frame is uploaded from
// a background task. Render is the only point where the two meet.
package renderer

import (
	"fmt"
	"runtime"
	"sync/atomic"

	"github.com/gogpu/gputypes"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/rrx/bus"
	"github.com/gogpu/rrx/command"
	"github.com/gogpu/rrx/displaylist"
	"github.com/gogpu/rrx/internal/logging"
	"github.com/gogpu/rrx/raster"
	"github.com/gogpu/rrx/texture"
)

// Stats reports renderer activity.
type Stats struct {
	Frames              int
	IntermediateUploads int
	Bands               int
	LinesPerBand        int

	Transfers        int64
	TextureTransfers int64
	BytesSent        int64
}

var statsPrinter = message.NewPrinter(language.English)

// String returns a human readable summary.
func (s Stats) String() string {
	return statsPrinter.Sprintf("frames=%d bands=%d×%d transfers=%d (textures %d) sent=%d bytes early=%d",
		s.Frames, s.Bands, s.LinesPerBand, s.Transfers, s.TextureTransfers, s.BytesSent, s.IntermediateUploads)
}

// Renderer encodes a frame into per-band display lists and uploads them.
//
// Renderer is not safe for concurrent use. The background upload task only
// touches the front list set.
type Renderer struct {
	config   Config
	conn     bus.Connector
	textures *texture.Manager
	uploader Uploader

	setup raster.Setup
	desc  raster.Desc
	words [][]uint32
	cmds  []command.Command
	skip  []bool

	sets        [2][]*displaylist.Assembler
	front, back int
	texUpload   *displaylist.Assembler
	texBuffer   int

	maxBands int
	bands    int
	lines    int
	width    int
	// yPrimed reports whether the device YOffset selects the last band
	// of the current layout, as the memory optimized replay expects.
	yPrimed bool

	colorAddr   uint32
	switchColor bool

	scissor                    bool
	scissorYStart, scissorYEnd int32

	bound [command.MaxTMUs]uint16

	frames       int
	intermediate int
	transfers    atomic.Int64
	texTransfers atomic.Int64
	bytesSent    atomic.Int64

	closed bool
}

// New returns a renderer drawing through conn.
//
// conn must provide one buffer per band and list set plus one for texture
// uploads, three in memory optimized mode.
func New(conn bus.Connector, config Config) (*Renderer, error) {
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	maxBands := config.Bands(config.Width, config.Height)
	if need := config.buffersNeeded(maxBands); conn.BufferCount() < need {
		return nil, fmt.Errorf("%w: %d bands need %d buffers, connector has %d",
			ErrTooManyBands, maxBands, need, conn.BufferCount())
	}

	r := &Renderer{
		config: config,
		conn:   conn,
		textures: texture.NewManager(texture.Config{
			PageSize:    config.PageSize,
			PageCount:   config.PageCount,
			MaxTextures: config.MaxTextures,
			GRAMBase:    config.GRAMBase,
		}),
		back:        0,
		front:       1,
		maxBands:    maxBands,
		switchColor: true,
		texBuffer:   conn.BufferCount() - 1,
	}
	r.setup.Scaling = config.FixedPointInterpolation

	perSet := maxBands
	if config.MemoryOptimized {
		perSet = 1
	}
	for set := range r.sets {
		r.sets[set] = make([]*displaylist.Assembler, perSet)
		for band := range perSet {
			buf := conn.RequestBuffer(r.bufferIndex(set, band))
			if buf == nil {
				return nil, fmt.Errorf("%w: %d", bus.ErrBufferIndex, r.bufferIndex(set, band))
			}
			r.sets[set][band] = displaylist.NewAssembler(buf, config.TMUCount)
		}
	}
	r.texUpload = displaylist.NewAssembler(conn.RequestBuffer(r.texBuffer), config.TMUCount)
	r.words = make([][]uint32, perSet)
	for i := range r.words {
		r.words[i] = make([]uint32, 0, raster.DescWords(config.TMUCount))
	}
	r.cmds = make([]command.Command, perSet)
	r.skip = make([]bool, perSet)

	r.bands = maxBands
	r.lines = config.Height / maxBands
	r.width = config.Width
	r.beginFrame()

	ok := true
	switch config.FramebufferType {
	case InternalToMemory:
		ok = r.SetColorBufferAddress(config.ColorBufferAddr1)
	case ExternalMemoryToStream, ExternalMemoryDoubleBuffer:
		ok = r.SetColorBufferAddress(config.ColorBufferAddr0) &&
			r.SetDepthBufferAddress(config.DepthBufferAddr) &&
			r.SetStencilBufferAddress(config.StencilBufferAddr)
	}
	if !ok || !r.SetRenderResolution(config.Width, config.Height) {
		return nil, fmt.Errorf("%w: bus buffers too small for the initial state", ErrInvalidConfig)
	}

	logging.L().Info("renderer: created",
		"width", config.Width, "height", config.Height,
		"bands", maxBands, "framebuffer", config.FramebufferType,
		"memoryOptimized", config.MemoryOptimized)
	return r, nil
}

// Config returns the configuration with defaults applied.
func (r *Renderer) Config() Config { return r.config }

// Textures returns the texture manager.
func (r *Renderer) Textures() *texture.Manager { return r.textures }

// Bands returns the current band count.
func (r *Renderer) Bands() int { return r.bands }

// LinesPerBand returns the height of one band.
func (r *Renderer) LinesPerBand() int { return r.lines }

// Stats returns activity counters.
func (r *Renderer) Stats() Stats {
	return Stats{
		Frames:              r.frames,
		IntermediateUploads: r.intermediate,
		Bands:               r.bands,
		LinesPerBand:        r.lines,
		Transfers:           r.transfers.Load(),
		TextureTransfers:    r.texTransfers.Load(),
		BytesSent:           r.bytesSent.Load(),
	}
}

func (r *Renderer) bufferIndex(set, band int) int {
	if r.config.MemoryOptimized {
		return set
	}
	return band + set*r.maxBands
}

func (r *Renderer) listsOf(set int) []*displaylist.Assembler {
	if r.config.MemoryOptimized {
		return r.sets[set]
	}
	return r.sets[set][:r.bands]
}

func (r *Renderer) deviceAddr(addr uint32) uint32 { return r.config.GRAMBase + addr }

// tryEach adds the command f builds for each back list. f reports false to
// skip a band. Nothing is added unless every command fits.
func (r *Renderer) tryEach(f func(band int) (command.Command, bool)) bool {
	lists := r.listsOf(r.back)
	for i, a := range lists {
		c, ok := f(i)
		r.skip[i] = !ok
		if !ok {
			continue
		}
		if !a.Fits(c) {
			clear(r.cmds)
			return false
		}
		r.cmds[i] = c
	}
	for i, a := range lists {
		if !r.skip[i] {
			a.AddCommand(r.cmds[i])
		}
	}
	clear(r.cmds)
	return true
}

// addEach is tryEach with an intermediate upload and one retry when a
// single band list is full.
func (r *Renderer) addEach(f func(band int) (command.Command, bool)) bool {
	if r.tryEach(f) {
		return true
	}
	if r.config.MemoryOptimized || r.bands != 1 {
		return false
	}
	logging.L().Warn("renderer: display list full, uploading early",
		"size", r.sets[r.back][0].Size())
	r.intermediateUpload()
	return r.tryEach(f)
}

func (r *Renderer) addAll(cmd command.Command) bool {
	return r.addEach(func(int) (command.Command, bool) { return cmd, true })
}

// WriteRegister writes reg in every band.
func (r *Renderer) WriteRegister(reg command.Register) bool {
	return r.addAll(command.WriteRegister(reg))
}

// DrawTriangle sets up tri and adds it to every band it touches. An
// invisible triangle is accepted without encoding anything.
func (r *Renderer) DrawTriangle(tri *raster.Triangle) bool {
	if !r.setup.Rasterize(tri, &r.desc) {
		return true
	}
	if r.config.MemoryOptimized {
		return r.addEach(func(int) (command.Command, bool) {
			return r.triangle(0, &r.desc), true
		})
	}
	return r.addEach(func(band int) (command.Command, bool) {
		start := band * r.lines
		end := start + r.lines
		d := r.desc
		if r.config.FixedPointInterpolation {
			if !d.Increment(start, end) {
				return command.Command{}, false
			}
		} else if !d.Visible(start, end) {
			return command.Command{}, false
		}
		return r.triangle(band, &d), true
	})
}

func (r *Renderer) triangle(band int, d *raster.Desc) command.Command {
	if r.config.FixedPointInterpolation {
		r.words[band] = d.FixedWords(r.words[band][:0], r.config.TMUCount)
	} else {
		r.words[band] = d.Words(r.words[band][:0], r.config.TMUCount)
	}
	return command.TriangleStream(r.words[band])
}

// Clear clears the selected buffers. With scissor enabled, bands outside
// the scissor lines are skipped.
func (r *Renderer) Clear(color, depth, stencil bool) bool {
	cmd := command.Memset(color, depth, stencil)
	return r.addEach(func(band int) (command.Command, bool) {
		if !r.scissor || r.config.MemoryOptimized {
			return cmd, true
		}
		start := int32(band * r.lines)
		end := start + int32(r.lines)
		return cmd, end >= r.scissorYStart && start < r.scissorYEnd
	})
}

// SetFeatureEnable enables and disables fixed function stages.
func (r *Renderer) SetFeatureEnable(f command.FeatureEnable) bool {
	r.scissor = f.Scissor
	r.setup.EnableScissor(f.Scissor)
	for t := range r.setup.TmuEnable {
		r.setup.TmuEnable[t] = f.Tmu[t] && t < r.config.TMUCount
	}
	return r.WriteRegister(f)
}

// SetClearColor sets the color used by Clear.
func (r *Renderer) SetClearColor(c gputypes.Color) bool {
	return r.WriteRegister(command.ClearColor{Color: c})
}

// SetClearDepth sets the depth used by Clear.
func (r *Renderer) SetClearDepth(depth uint16) bool {
	return r.WriteRegister(command.ClearDepth{Depth: depth})
}

// SetFragmentPipeline configures depth test, alpha test, masks and
// blending.
func (r *Renderer) SetFragmentPipeline(p command.FragmentPipeline) bool {
	return r.WriteRegister(p)
}

// SetStencil writes the stencil configuration.
func (r *Renderer) SetStencil(s command.Stencil) bool {
	return r.WriteRegister(s)
}

// SetTexEnv configures the color combiner of a texture unit.
func (r *Renderer) SetTexEnv(e command.TexEnv) bool {
	return r.WriteRegister(e)
}

// SetTexEnvColor sets the constant color of a texture unit.
func (r *Renderer) SetTexEnvColor(tmu int, c gputypes.Color) bool {
	return r.WriteRegister(command.TexEnvColor{TMU: tmu, Color: c})
}

// SetFogColor sets the fog color.
func (r *Renderer) SetFogColor(c gputypes.Color) bool {
	return r.WriteRegister(command.FogColor{Color: c})
}

// SetFogLut uploads a sampled fog table.
func (r *Renderer) SetFogLut(lut [command.FogLutSize]float32, start, end float32) bool {
	return r.addAll(command.FogLut(lut, start, end))
}

// SetScissorBox sets the scissor rectangle.
func (r *Renderer) SetScissorBox(x, y int32, width, height uint32) bool {
	ok := r.WriteRegister(command.ScissorStart{X: uint16(x), Y: uint16(y)})
	ok = ok && r.WriteRegister(command.ScissorEnd{X: uint16(x + int32(width)), Y: uint16(y + int32(height))})
	r.scissorYStart = y
	r.scissorYEnd = y + int32(height)
	r.setup.SetScissorBox(x, y, width, height)
	return ok
}

// SetRenderResolution changes the render resolution. It fails when the
// new resolution needs more bands than were allocated.
func (r *Renderer) SetRenderResolution(width, height int) bool {
	if width <= 0 || height <= 0 || width > maxResolution || height > maxResolution {
		return false
	}
	bands := r.config.Bands(width, height)
	if bands > r.maxBands || height/bands == 0 {
		return false
	}
	if bands != r.bands {
		logging.L().Info("renderer: band count changed", "from", r.bands, "to", bands)
	}
	if bands != r.bands || height/bands != r.lines {
		r.yPrimed = false
	}
	r.bands = bands
	r.lines = height / bands
	r.width = width
	logging.L().Debug("renderer: resolution", "width", width, "height", height, "lines", r.lines)
	return r.WriteRegister(command.RenderResolution{X: uint16(width), Y: uint16(r.lines)})
}

// SetColorBufferAddress sets the color buffer in device memory.
func (r *Renderer) SetColorBufferAddress(addr uint32) bool {
	r.colorAddr = addr
	return r.WriteRegister(command.ColorBufferAddr{Address: r.deviceAddr(addr)})
}

// SetDepthBufferAddress sets the depth buffer in device memory.
func (r *Renderer) SetDepthBufferAddress(addr uint32) bool {
	return r.WriteRegister(command.DepthBufferAddr{Address: r.deviceAddr(addr)})
}

// SetStencilBufferAddress sets the stencil buffer in device memory.
func (r *Renderer) SetStencilBufferAddress(addr uint32) bool {
	return r.WriteRegister(command.StencilBufferAddr{Address: r.deviceAddr(addr)})
}

// CreateTexture allocates a texture handle.
func (r *Renderer) CreateTexture() (uint16, bool) { return r.textures.CreateTexture() }

// UpdateTexture replaces the image of a texture. The data is uploaded by
// the next Render.
func (r *Renderer) UpdateTexture(handle uint16, img texture.Image) bool {
	return r.textures.UpdateTexture(handle, img)
}

// DeleteTexture releases a texture handle.
func (r *Renderer) DeleteTexture(handle uint16) bool { return r.textures.DeleteTexture(handle) }

// TextureValid reports whether handle names a live texture.
func (r *Renderer) TextureValid(handle uint16) bool { return r.textures.TextureValid(handle) }

// UseTexture binds a texture to a texture unit: the unit streams the
// texture pages, then its sampler register is written.
func (r *Renderer) UseTexture(tmu int, handle uint16) bool {
	if tmu < 0 || tmu >= r.config.TMUCount {
		return false
	}
	if !r.textures.TextureValid(handle) {
		return false
	}
	pages := r.textures.DeviceAddresses(handle)
	if !r.addAll(command.TextureStream(tmu, pages, uint32(r.textures.PageSize()))) {
		return false
	}
	reg, _ := r.textures.TmuConfig(handle)
	reg.TMU = tmu
	if !r.WriteRegister(reg) {
		return false
	}
	r.bound[tmu] = handle
	return true
}

// SetTextureWrapS sets the S wrap mode of a texture.
func (r *Renderer) SetTextureWrapS(handle uint16, mode gputypes.AddressMode) bool {
	r.textures.SetWrapS(handle, mode)
	return r.refreshSampler(handle)
}

// SetTextureWrapT sets the T wrap mode of a texture.
func (r *Renderer) SetTextureWrapT(handle uint16, mode gputypes.AddressMode) bool {
	r.textures.SetWrapT(handle, mode)
	return r.refreshSampler(handle)
}

// SetTextureMagFilter sets the magnification filter of a texture.
func (r *Renderer) SetTextureMagFilter(handle uint16, mode gputypes.FilterMode) bool {
	r.textures.SetMagFilter(handle, mode)
	return r.refreshSampler(handle)
}

// SetTextureMinFilter sets the minification filter of a texture.
func (r *Renderer) SetTextureMinFilter(handle uint16, mode gputypes.FilterMode) bool {
	r.textures.SetMinFilter(handle, mode)
	return r.refreshSampler(handle)
}

// refreshSampler rewrites the sampler register of the unit handle is bound
// to. An unbound texture needs no register write.
func (r *Renderer) refreshSampler(handle uint16) bool {
	for tmu := range r.config.TMUCount {
		if r.bound[tmu] != handle {
			continue
		}
		reg, ok := r.textures.TmuConfig(handle)
		if !ok {
			return false
		}
		reg.TMU = tmu
		return r.WriteRegister(reg)
	}
	return true
}

func (r *Renderer) waitClearToSend() {
	for !r.conn.ClearToSend() {
		runtime.Gosched()
	}
}

func (r *Renderer) write(index, size int) bool {
	if err := r.conn.WriteData(index, size); err != nil {
		logging.L().Warn("renderer: bus write failed", "buffer", index, "bytes", size, "err", err)
		return false
	}
	r.transfers.Add(1)
	r.bytesSent.Add(int64(size))
	return true
}
