// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package main

import (
	"cmp"
	"io"
	"maps"
	"slices"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/rrx/bus"
	"github.com/gogpu/rrx/command"
	"github.com/gogpu/rrx/displaylist"
)

const (
	ansiDSE   = "\x1b[36m"
	ansiPipe  = "\x1b[33m"
	ansiReset = "\x1b[0m"
)

// dumper prints decoded transfers and keeps the totals for the summary.
type dumper struct {
	w       io.Writer
	p       *message.Printer
	color   bool
	summary bool

	transfers int
	records   map[string]int
	bytes     map[int]int
}

func newDumper(w io.Writer, color, summary bool) *dumper {
	return &dumper{
		w:       w,
		p:       message.NewPrinter(language.English),
		color:   color,
		summary: summary,
		records: make(map[string]int),
		bytes:   make(map[int]int),
	}
}

// run dumps every transfer of a capture stream, then the summary.
func (d *dumper) run(r io.Reader) error {
	if err := bus.ReadCapture(r, d.transfer); err != nil {
		return err
	}
	d.printSummary()
	return nil
}

func (d *dumper) transfer(index int, data []byte) error {
	if !d.summary {
		d.p.Fprintf(d.w, "transfer %d: buffer %d, %d bytes\n", d.transfers, index, len(data))
	}
	d.transfers++
	d.bytes[index] += len(data)
	return displaylist.Decode(data, d.record)
}

func (d *dumper) record(r displaylist.Record) error {
	var class, name string
	var imm uint32
	var n int
	if t := r.Transfer; t != nil {
		class, name, imm, n = "DSE", t.Op.String(), t.Addr, int(t.Len)
	} else {
		p := r.Pipeline
		class, name, imm, n = "PIPE", p.Opcode().String(), p.Op&command.ImmMask, 4*len(p.Payload)
	}
	d.records[name]++
	if d.summary {
		return nil
	}

	indent := ""
	if r.Section >= 0 {
		indent = "  "
	}
	color := ansiDSE
	if class == "PIPE" {
		color = ansiPipe
	}
	if !d.color {
		color = ""
	}
	reset := ""
	if color != "" {
		reset = ansiReset
	}
	d.p.Fprintf(d.w, "%s%08x %s%-4s %-18s%s %#08x %d\n", indent, r.Offset, color, class, name, reset, imm, n)
	return nil
}

func (d *dumper) printSummary() {
	d.p.Fprintf(d.w, "%d transfers\n", d.transfers)

	names := slices.Collect(maps.Keys(d.records))
	slices.SortFunc(names, func(a, b string) int {
		if c := cmp.Compare(d.records[b], d.records[a]); c != 0 {
			return c
		}
		return cmp.Compare(a, b)
	})
	for _, name := range names {
		d.p.Fprintf(d.w, "  %-18s %8d\n", name, d.records[name])
	}
	for _, index := range slices.Sorted(maps.Keys(d.bytes)) {
		d.p.Fprintf(d.w, "  buffer %-11d %8d bytes\n", index, d.bytes[index])
	}
}
