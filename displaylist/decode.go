// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package displaylist

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gogpu/rrx/command"
	"github.com/gogpu/rrx/dse"
)

// Decoding errors.
var (
	ErrTruncated     = errors.New("displaylist: truncated record")
	ErrUnknownOpcode = errors.New("displaylist: unknown opcode")
)

// Record is one decoded record. Exactly one of Transfer and Pipeline is set.
type Record struct {
	// Offset is the byte offset of the record in the list.
	Offset int
	// Section is the offset of the enclosing stream section header, or -1
	// for a top-level record.
	Section int

	Transfer *dse.Transfer
	// Payload is the inline data of a STORE transfer.
	Payload []byte

	Pipeline *command.Pipeline
}

// Decode walks an encoded display list and calls fn for every record. Zero
// words are padding and are skipped at both levels. A STREAM record is
// reported before the records of its body.
func Decode(b []byte, fn func(Record) error) error {
	for off := 0; off < len(b); {
		if len(b)-off < 4 {
			return fmt.Errorf("%w at %d", ErrTruncated, off)
		}
		if binary.LittleEndian.Uint32(b[off:]) == 0 {
			off += 4
			continue
		}
		t, ok := dse.Decode(b[off:])
		if !ok {
			return fmt.Errorf("%w at %d", ErrTruncated, off)
		}
		if !t.Op.Valid() {
			return fmt.Errorf("%w %#x at %d", ErrUnknownOpcode, uint32(t.Op), off)
		}
		rec := Record{Offset: off, Section: -1, Transfer: &t}
		next := off + dse.RecordSize
		switch t.Op {
		case dse.OpStore:
			n := int(t.Len+dse.Align-1) &^ (dse.Align - 1)
			if next+n > len(b) {
				return fmt.Errorf("%w: store payload at %d", ErrTruncated, off)
			}
			rec.Payload = b[next : next+n]
			next += n
		case dse.OpStream:
			if next+int(t.Len) > len(b) {
				return fmt.Errorf("%w: section at %d", ErrTruncated, off)
			}
		}
		if err := fn(rec); err != nil {
			return err
		}
		if t.Op == dse.OpStream {
			if err := decodeSection(b[:next+int(t.Len)], next, off, fn); err != nil {
				return err
			}
			next += int(t.Len)
		}
		off = next
	}
	return nil
}

func decodeSection(b []byte, off, section int, fn func(Record) error) error {
	for off < len(b) {
		if len(b)-off < 4 {
			return fmt.Errorf("%w at %d", ErrTruncated, off)
		}
		word := binary.LittleEndian.Uint32(b[off:])
		if word == 0 {
			off += 4
			continue
		}
		n, ok := command.PayloadWords(word)
		if !ok {
			return fmt.Errorf("%w %#x at %d", ErrUnknownOpcode, word, off)
		}
		end := off + 4 + 4*n
		if end > len(b) {
			return fmt.Errorf("%w at %d", ErrTruncated, off)
		}
		p := &command.Pipeline{Op: word}
		if n > 0 {
			p.Payload = make([]uint32, n)
			for i := range p.Payload {
				p.Payload[i] = binary.LittleEndian.Uint32(b[off+4+4*i:])
			}
		}
		if err := fn(Record{Offset: off, Section: section, Pipeline: p}); err != nil {
			return err
		}
		off = end
	}
	return nil
}

// Records decodes b into a slice.
func Records(b []byte) ([]Record, error) {
	var out []Record
	err := Decode(b, func(r Record) error {
		out = append(out, r)
		return nil
	})
	return out, err
}
