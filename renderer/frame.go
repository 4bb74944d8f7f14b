// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package renderer

import (
	"github.com/gogpu/rrx/command"
	"github.com/gogpu/rrx/displaylist"
	"github.com/gogpu/rrx/dse"
	"github.com/gogpu/rrx/internal/logging"
)

// geometry is the band layout of one frame, captured for its upload.
type geometry struct {
	bands     int
	lines     int
	width     int
	colorAddr uint32
}

func (g geometry) bandBytes() uint32 { return uint32(g.lines * g.width * 2) }

// bandAddr returns the device memory address of band i. Band 0 is the top
// of the screen and lives at the end of the color buffer.
func (g geometry) bandAddr(i int) uint32 {
	return g.colorAddr + g.bandBytes()*uint32(g.bands-i-1)
}

func (r *Renderer) geometry() geometry {
	return geometry{
		bands:     r.bands,
		lines:     r.lines,
		width:     r.width,
		colorAddr: r.deviceAddr(r.colorAddr),
	}
}

// beginFrame empties the back lists and opens a frame in each of them.
// In memory optimized mode the list is replayed for every band, so the
// band offset is written by the replay instead.
func (r *Renderer) beginFrame() {
	for i, a := range r.listsOf(r.back) {
		a.Clear()
		a.Begin()
		if !r.config.MemoryOptimized {
			a.AddCommand(command.WriteRegister(command.YOffset{Y: uint16(i * r.lines)}))
		}
	}
}

func (r *Renderer) endFrame() {
	for _, a := range r.listsOf(r.back) {
		a.End()
	}
}

func (r *Renderer) flip() {
	r.front, r.back = r.back, r.front
	for _, a := range r.listsOf(r.front) {
		a.List().SetState(displaylist.Queued)
	}
}

// Render finishes the frame and starts its upload. It blocks only until
// the upload of the previous frame has finished.
func (r *Renderer) Render() {
	if err := r.uploader.Wait(); err != nil {
		logging.L().Warn("renderer: upload failed", "err", err)
	}
	if r.config.MemoryOptimized {
		r.renderReplay()
		return
	}

	lists := r.listsOf(r.back)
	for _, a := range lists {
		a.SaveSectionStart()
	}
	g := r.geometry()
	ok := r.addCommit()
	r.endFrame()
	ok = ok && r.addFramebufferTransfer(g)
	if !ok {
		logging.L().Warn("renderer: no room to commit the frame")
		for _, a := range lists {
			a.RemoveSection()
		}
	}
	addSwap(lists[0])

	r.flip()
	r.uploadTextures()
	r.beginFrame()
	r.swapColorBuffer()

	set, front := r.front, r.listsOf(r.front)
	r.uploader.Go(func() error {
		r.uploadLists(set, front)
		return nil
	})
	r.frames++
}

func (r *Renderer) addCommit() bool {
	switch r.config.FramebufferType {
	case InternalToStream, InternalToMemory:
		return r.tryEach(func(int) (command.Command, bool) { return command.Commit(), true })
	default:
		return true
	}
}

func (r *Renderer) addFramebufferTransfer(g geometry) bool {
	var op dse.Op
	switch r.config.FramebufferType {
	case InternalToStream:
		op = dse.OpCommitToStream
	case InternalToMemory:
		op = dse.OpCommitToMemory
	case ExternalMemoryToStream:
		op = dse.OpStreamFromMemory
	default:
		return true
	}
	return r.tryEach(func(band int) (command.Command, bool) {
		return framebufferTransfer(op, g, band), true
	})
}

func framebufferTransfer(op dse.Op, g geometry, band int) command.Command {
	addr := uint32(0)
	if op != dse.OpCommitToStream {
		addr = g.bandAddr(band)
	}
	return command.FramebufferTransfer(op, addr, g.bandBytes())
}

// addSwap appends the swap command to band 0, the last band uploaded.
func addSwap(a *displaylist.Assembler) {
	a.SaveSectionStart()
	ok := a.Begin() && a.AddCommand(command.Swap())
	a.End()
	if !ok {
		a.RemoveSection()
	}
}

// swapColorBuffer alternates the color buffers in double buffer mode.
func (r *Renderer) swapColorBuffer() {
	if r.config.FramebufferType != ExternalMemoryDoubleBuffer {
		return
	}
	if r.switchColor {
		r.SetColorBufferAddress(r.config.ColorBufferAddr1)
	} else {
		r.SetColorBufferAddress(r.config.ColorBufferAddr0)
	}
	r.switchColor = !r.switchColor
}

// uploadLists sends lists from the last band to the first.
func (r *Renderer) uploadLists(set int, lists []*displaylist.Assembler) {
	for i := len(lists) - 1; i >= 0; i-- {
		a := lists[i]
		r.waitClearToSend()
		a.List().SetState(displaylist.Transferring)
		logging.L().Debug("renderer: upload band", "band", i, "bytes", a.Size())
		r.write(r.bufferIndex(set, i), a.Size())
		a.List().SetState(displaylist.Idle)
	}
}

// uploadTextures pushes pending texture pages through the last bus buffer.
// It runs on the calling goroutine while no list upload is in flight.
func (r *Renderer) uploadTextures() {
	r.textures.UploadTextures(func(_, addr uint32, data []byte) bool {
		a := r.texUpload
		a.Clear()
		if !a.UploadToDeviceMemory(addr, data) {
			logging.L().Warn("renderer: texture page exceeds upload buffer", "bytes", len(data))
			return false
		}
		r.waitClearToSend()
		if !r.write(r.texBuffer, a.Size()) {
			return false
		}
		r.texTransfers.Add(1)
		return true
	})
}

// intermediateUpload flushes a full single band list in the middle of a
// frame and continues the frame in a fresh list.
func (r *Renderer) intermediateUpload() {
	if err := r.uploader.Wait(); err != nil {
		logging.L().Warn("renderer: upload failed", "err", err)
	}
	r.endFrame()
	r.flip()
	r.uploadTextures()
	r.uploadLists(r.front, r.listsOf(r.front))
	r.beginFrame()
	r.intermediate++
}

// renderReplay is Render in memory optimized mode: the single recorded
// list is uploaded once per band, each time followed by the band commit
// and the YOffset of the next band.
func (r *Renderer) renderReplay() {
	r.endFrame()
	r.flip()
	r.uploadTextures()

	g := r.geometry()
	if !r.yPrimed {
		r.yPrimed = r.primeYOffset(g)
	}
	set, a := r.front, r.sets[r.front][0]
	r.uploader.Go(func() error {
		r.replay(set, a, g)
		return nil
	})

	r.beginFrame()
	r.swapColorBuffer()
	r.frames++
}

// primeYOffset selects the last band before the first replay. Later
// frames inherit it from the wrap at the end of band 0.
func (r *Renderer) primeYOffset(g geometry) bool {
	a := r.texUpload
	a.Clear()
	ok := a.Begin() && a.AddCommand(command.WriteRegister(command.YOffset{Y: uint16((g.bands - 1) * g.lines)}))
	a.End()
	if !ok {
		logging.L().Warn("renderer: no room for the band offset")
		return false
	}
	r.waitClearToSend()
	return r.write(r.texBuffer, a.Size())
}

func (r *Renderer) replay(set int, a *displaylist.Assembler, g geometry) {
	commit := r.replayCommit()
	for i := g.bands - 1; i >= 0; i-- {
		r.waitClearToSend()
		a.SetCheckpoint()
		ok := true
		if commit.Kind() != command.KindNone {
			c := commit
			if c.Transfers != nil {
				c.Transfers = []dse.Transfer{framebufferTransfer(c.Transfers[0].Op, g, i).Transfers[0]}
			}
			ok = a.AddCommand(c)
		}
		if i == 0 {
			ok = a.AddCommand(command.Swap()) && ok
		}
		next := i - 1
		if next < 0 {
			next = g.bands - 1
		}
		ok = a.AddCommand(command.WriteRegister(command.YOffset{Y: uint16(next * g.lines)})) && ok
		if !ok {
			logging.L().Warn("renderer: no room to commit band", "band", i)
		}
		a.Finish()
		a.List().SetState(displaylist.Transferring)
		r.write(r.bufferIndex(set, 0), a.Size())
		a.ResetToCheckpoint()
	}
	a.List().SetState(displaylist.Idle)
}

// replayCommit returns the commit command template for the framebuffer
// type. Its transfer is rebuilt per band.
func (r *Renderer) replayCommit() command.Command {
	t := func(op dse.Op) []dse.Transfer { return []dse.Transfer{{Op: op}} }
	switch r.config.FramebufferType {
	case InternalToStream:
		c := command.Commit()
		c.Transfers = t(dse.OpCommitToStream)
		return c
	case InternalToMemory:
		c := command.Commit()
		c.Transfers = t(dse.OpCommitToMemory)
		return c
	case ExternalMemoryToStream:
		return command.Command{Transfers: t(dse.OpStreamFromMemory)}
	default:
		return command.Command{}
	}
}

// Close renders the final frame, restores the first color buffer and
// waits for the upload to finish.
func (r *Renderer) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	r.SetColorBufferAddress(r.config.ColorBufferAddr0)
	r.Render()
	return r.uploader.Wait()
}
