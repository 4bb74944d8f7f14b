// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Command rrxdump prints the display lists recorded in a bus capture.
//
// Usage:
//
//	rrxdump [-summary] [-color auto|always|never] capture.rrxc
//	rrxdump -demo capture.rrxc [-frames n] [-width w] [-height h]
//
// With -demo it renders a short scene through a capturing connector and
// writes the capture instead of reading one.
package main

import (
	"bufio"
	"flag"
	"log"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/gogpu/rrx"
)

func main() {
	var (
		summary = flag.Bool("summary", false, "print records per opcode and bytes per buffer only")
		color   = flag.String("color", "auto", "colored output: auto, always or never")
		demoOut = flag.String("demo", "", "render a demo scene and write its capture to this file")
		frames  = flag.Int("frames", 4, "demo frames")
		width   = flag.Int("width", 320, "demo width")
		height  = flag.Int("height", 240, "demo height")
		verbose = flag.Bool("v", false, "log renderer diagnostics to stderr")
	)
	flag.Parse()

	if *verbose {
		rrx.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	if *demoOut != "" {
		n, err := writeDemo(*demoOut, *frames, *width, *height)
		if err != nil {
			log.Fatalf("demo: %v", err)
		}
		log.Printf("Capture of %d transfers saved to %s (%dx%d)", n, *demoOut, *width, *height)
		return
	}

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}
	f, err := os.Open(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to open capture: %v", err)
	}
	defer f.Close()

	out := bufio.NewWriter(os.Stdout)
	defer out.Flush()

	d := newDumper(out, useColor(*color), *summary)
	if err := d.run(f); err != nil {
		out.Flush()
		log.Fatalf("Failed to dump %s: %v", flag.Arg(0), err)
	}
}

func useColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	default:
		return term.IsTerminal(int(os.Stdout.Fd()))
	}
}
