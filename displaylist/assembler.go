// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package displaylist

import (
	"github.com/gogpu/rrx/command"
	"github.com/gogpu/rrx/dse"
)

// SectionHeaderSize is the size of the STREAM record that opens a section.
const SectionHeaderSize = dse.RecordSize

// Assembler encodes commands into a List.
//
// Pipeline records are only valid inside a stream section and DMA records
// only outside of one. The assembler opens a section in front of the first
// pipeline record and closes it in front of the first DMA record, so callers
// may mix both kinds freely. A closed section header holds dse.OpStream and
// the byte length of the section body.
//
// Every AddCommand is atomic: if the encoded command does not fit, nothing
// is written.
type Assembler struct {
	list     *List
	tmuCount int

	sectionOpen  bool
	sectionStart int

	opt loadOptimizer

	mark Mark
}

// Mark is a saved assembler position. See Assembler.SetCheckpoint.
type Mark struct {
	pos          int
	sectionOpen  bool
	sectionStart int
	opt          loadOptimizer
}

// NewAssembler returns an assembler writing into buf. tmuCount bounds the
// texture units a texture stream may name.
func NewAssembler(buf []byte, tmuCount int) *Assembler {
	return &Assembler{
		list:     NewList(buf),
		tmuCount: min(max(tmuCount, 1), maxTMUs),
	}
}

// List returns the underlying display list.
func (a *Assembler) List() *List { return a.list }

// Size returns the number of bytes written.
func (a *Assembler) Size() int { return a.list.Size() }

// FreeSpace returns the number of bytes still available.
func (a *Assembler) FreeSpace() int { return a.list.FreeSpace() }

// SectionOpen reports whether a stream section is open.
func (a *Assembler) SectionOpen() bool { return a.sectionOpen }

// Clear empties the list and forgets all section and optimizer state.
func (a *Assembler) Clear() {
	a.list.Clear()
	a.sectionOpen = false
	a.sectionStart = 0
	a.opt.reset()
	a.mark = Mark{}
}

// Begin opens a stream section if none is open.
func (a *Assembler) Begin() bool {
	if a.sectionOpen {
		return true
	}
	return a.openSection()
}

// End closes the open stream section. It is a no-op without one.
func (a *Assembler) End() {
	if !a.sectionOpen {
		return
	}
	body := a.list.WritePos() - (a.sectionStart + SectionHeaderSize)
	a.list.PutWord(a.sectionStart, uint32(dse.OpStream)|uint32(body)&dse.ImmMask)
	a.sectionOpen = false
}

// Finish closes any open section. The list is then ready to upload.
func (a *Assembler) Finish() { a.End() }

func (a *Assembler) openSection() bool {
	off, ok := a.list.Alloc(SectionHeaderSize)
	if !ok {
		return false
	}
	a.list.PutWord(off, uint32(dse.OpStream))
	a.list.PutWord(off+4, 0)
	a.sectionOpen = true
	a.sectionStart = off
	return true
}

// CommandSize returns the number of bytes AddCommand would write for cmd
// in the current section state.
func (a *Assembler) CommandSize(cmd command.Command) int {
	n := 0
	if cmd.Pipeline != nil {
		if !a.sectionOpen {
			n += SectionHeaderSize
		}
		n += cmd.Pipeline.Size()
	}
	return n + cmd.TransferSize()
}

// Fits reports whether AddCommand(cmd) would succeed.
func (a *Assembler) Fits(cmd command.Command) bool {
	if !a.valid(cmd) {
		return false
	}
	return a.CommandSize(cmd) <= a.list.FreeSpace()
}

func (a *Assembler) valid(cmd command.Command) bool {
	if cmd.Pipeline != nil && cmd.Pipeline.Opcode() == command.OpTextureStream {
		return command.TextureStreamTMU(cmd.Pipeline.Op) < a.tmuCount
	}
	return true
}

// AddCommand encodes cmd. It returns false, leaving the list untouched, if
// cmd does not fit or names a texture unit out of range.
func (a *Assembler) AddCommand(cmd command.Command) bool {
	if !a.Fits(cmd) {
		return false
	}
	start := a.list.WritePos()
	if cmd.Pipeline != nil {
		a.opt.before(a.list, cmd.Pipeline)
		if !a.sectionOpen {
			a.openSection()
		}
		off, _ := a.list.Alloc(cmd.Pipeline.Size())
		cmd.Pipeline.Encode(a.list.buf[off:])
	}
	if cmd.TransferSize() > 0 {
		a.End()
		for _, t := range cmd.Transfers {
			if t.Op == dse.OpNop {
				continue
			}
			b, _ := a.list.Create(t.Size())
			t.Encode(b)
		}
	}
	if cmd.Pipeline != nil {
		a.opt.after(cmd.Pipeline, start, a.list.WritePos())
	}
	return true
}

// UploadToDeviceMemory adds a STORE of data to the device address addr.
func (a *Assembler) UploadToDeviceMemory(addr uint32, data []byte) bool {
	return a.AddCommand(command.WithTransfer(dse.Store(addr, data)))
}

// SaveSectionStart remembers the current position for RemoveSection.
func (a *Assembler) SaveSectionStart() { a.list.SaveSectionStart() }

// RemoveSection replaces everything written since SaveSectionStart with
// NOPs. A section opened in that range is dropped with it.
func (a *Assembler) RemoveSection() {
	start := a.list.SectionStart()
	a.list.RemoveSection()
	if a.sectionOpen && a.sectionStart >= start {
		a.sectionOpen = false
	}
	a.opt.forgetFrom(start)
}

// SetCheckpoint saves the current position, including section and texture
// load state, for ResetToCheckpoint.
func (a *Assembler) SetCheckpoint() {
	a.list.SetCheckpoint()
	a.mark = a.Mark()
}

// ResetToCheckpoint discards everything written since SetCheckpoint.
func (a *Assembler) ResetToCheckpoint() {
	a.list.ResetToCheckpoint()
	a.restore(a.mark)
}

// Mark returns the current position.
func (a *Assembler) Mark() Mark {
	return Mark{
		pos:          a.list.WritePos(),
		sectionOpen:  a.sectionOpen,
		sectionStart: a.sectionStart,
		opt:          a.opt,
	}
}

func (a *Assembler) restore(m Mark) {
	a.list.writePos = m.pos
	a.sectionOpen = m.sectionOpen
	a.sectionStart = m.sectionStart
	a.opt = m.opt
}
