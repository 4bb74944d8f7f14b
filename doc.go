// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package rrx drives a rasterizing GPU that lives on the far side of a
// byte-stream bus.
//
// # Overview
//
// The device has no vertex stage and a small on-chip framebuffer. rrx runs
// the fixed-function vertex pipeline on the host, sets up each triangle,
// splits the frame into horizontal bands that fit the framebuffer and
// records one display list per band. Render hands the finished lists to
// a bus.Connector while the application records the next frame.
//
// # Quick Start
//
//	conn := bus.NewMemory(7, 64*1024)
//	ctx, err := rrx.New(conn, rrx.WithResolution(640, 480))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ctx.Close()
//
//	ctx.SetMatrixMode(transform.Projection)
//	ctx.Perspective(60, 640.0/480.0, 0.1, 100)
//	ctx.SetMatrixMode(transform.ModelView)
//	ctx.Translate(0, 0, -3)
//
//	ctx.Clear(true, true, false)
//	ctx.Begin(transform.Triangles)
//	ctx.Color4(1, 0, 0, 1)
//	ctx.Vertex3(-1, -1, 0)
//	ctx.Vertex3(1, -1, 0)
//	ctx.Vertex3(0, 1, 0)
//	ctx.End()
//	ctx.Render()
//
// # Architecture
//
// The library is organized into:
//   - Public API: Context, Option, SetLogger
//   - transform: matrices, lighting, texture coordinate generation,
//     primitive assembly, clipping and culling
//   - raster: triangle setup into device descriptors
//   - command, dse: device register and DMA record encodings
//   - displaylist: per band display lists with stream sections and
//     texture load elimination
//   - texture, gram: texture memory and device memory allocation
//   - renderer: band fan-out, double buffered lists and bus upload
//   - bus: the Connector contract, an in-memory bus and capture files
//
// # Coordinate System
//
// Window coordinates have the origin at the bottom-left, the convention
// of the fixed-function pipeline.
//
// # Errors
//
// Drawing calls report false when a display list has no room left, the
// same way the device interface does. Construction and texture conversion
// return errors.
package rrx
