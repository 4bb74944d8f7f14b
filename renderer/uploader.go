// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package renderer

import (
	"golang.org/x/sync/errgroup"
)

// Uploader runs at most one background upload task. Starting a task joins
// the previous one first, so the caller never overlaps two uploads. Each
// task gets its own group so an error is reported by one Wait only.
type Uploader struct {
	g *errgroup.Group
}

// Go joins the running task, then starts fn.
func (u *Uploader) Go(fn func() error) error {
	err := u.Wait()
	u.g = new(errgroup.Group)
	u.g.Go(fn)
	return err
}

// Wait blocks until the running task finished and returns its error. It
// returns nil when no task runs.
func (u *Uploader) Wait() error {
	if u.g == nil {
		return nil
	}
	err := u.g.Wait()
	u.g = nil
	return err
}

// Running reports whether a task was started and not yet joined.
func (u *Uploader) Running() bool { return u.g != nil }
