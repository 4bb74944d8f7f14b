// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package transform implements the per-vertex half of the pipeline: matrix
// stacks, lighting, texture coordinate generation, primitive assembly,
// homogeneous clipping, viewport mapping, culling and stencil face
// selection.
//
// Matrices follow the mgl32 convention: column vectors, so a vertex v is
// transformed as M·v and appending a transform multiplies on the right.
package transform

import (
	"github.com/go-gl/mathgl/mgl32"

	"github.com/gogpu/rrx/raster"
)

// MaxTMUs is the number of texture units with their own texture matrix.
const MaxTMUs = raster.MaxTMUs

// MatrixMode selects the matrix that matrix operations modify.
type MatrixMode uint8

// Matrix modes.
const (
	ModelView MatrixMode = iota
	Projection
	Texture
	Color
)

// Stack depths per matrix mode.
const (
	ModelViewStackDepth  = 16
	ProjectionStackDepth = 4
	TextureStackDepth    = 16
	ColorStackDepth      = 16
)

// String returns the matrix mode name.
func (m MatrixMode) String() string {
	switch m {
	case ModelView:
		return "ModelView"
	case Projection:
		return "Projection"
	case Texture:
		return "Texture"
	case Color:
		return "Color"
	default:
		return "Unknown"
	}
}

// stack is a bounded matrix stack.
type stack struct {
	depth int
	items []mgl32.Mat4
}

func (s *stack) push(m mgl32.Mat4) bool {
	if len(s.items) >= s.depth {
		return false
	}
	s.items = append(s.items, m)
	return true
}

func (s *stack) pop(m *mgl32.Mat4) bool {
	if len(s.items) == 0 {
		return false
	}
	*m = s.items[len(s.items)-1]
	s.items = s.items[:len(s.items)-1]
	return true
}

// MatrixStore holds the current matrices and their stacks. The combined
// model-view-projection and the normal matrix are derived lazily by
// Recalculate, only when the model-view or projection matrix changed.
type MatrixStore struct {
	mode MatrixMode
	tmu  int

	modelView  mgl32.Mat4
	projection mgl32.Mat4
	texture    [MaxTMUs]mgl32.Mat4
	color      mgl32.Mat4
	mvp        mgl32.Mat4
	normal     mgl32.Mat4

	mvStack  stack
	pStack   stack
	tmStack  [MaxTMUs]stack
	colStack stack

	modelChanged      bool
	projectionChanged bool
}

// NewMatrixStore returns a store with every matrix set to identity and
// Projection as the current mode.
func NewMatrixStore() *MatrixStore {
	s := &MatrixStore{
		mode:              Projection,
		modelView:         mgl32.Ident4(),
		projection:        mgl32.Ident4(),
		color:             mgl32.Ident4(),
		mvp:               mgl32.Ident4(),
		normal:            mgl32.Ident4(),
		mvStack:           stack{depth: ModelViewStackDepth},
		pStack:            stack{depth: ProjectionStackDepth},
		colStack:          stack{depth: ColorStackDepth},
		modelChanged:      true,
		projectionChanged: true,
	}
	for i := range s.texture {
		s.texture[i] = mgl32.Ident4()
		s.tmStack[i] = stack{depth: TextureStackDepth}
	}
	return s
}

// SetMode selects the matrix modified by subsequent operations.
func (s *MatrixStore) SetMode(m MatrixMode) { s.mode = m }

// Mode returns the current matrix mode.
func (s *MatrixStore) Mode() MatrixMode { return s.mode }

// SetTMU selects the texture unit whose matrix Texture mode modifies.
// Out of range units are ignored.
func (s *MatrixStore) SetTMU(tmu int) {
	if tmu >= 0 && tmu < MaxTMUs {
		s.tmu = tmu
	}
}

func (s *MatrixStore) current() *mgl32.Mat4 {
	switch s.mode {
	case ModelView:
		s.modelChanged = true
		return &s.modelView
	case Projection:
		s.projectionChanged = true
		return &s.projection
	case Texture:
		return &s.texture[s.tmu]
	default:
		return &s.color
	}
}

func (s *MatrixStore) currentStack() *stack {
	switch s.mode {
	case ModelView:
		return &s.mvStack
	case Projection:
		return &s.pStack
	case Texture:
		return &s.tmStack[s.tmu]
	default:
		return &s.colStack
	}
}

// Load replaces the current matrix.
func (s *MatrixStore) Load(m mgl32.Mat4) { *s.current() = m }

// LoadIdentity resets the current matrix.
func (s *MatrixStore) LoadIdentity() { *s.current() = mgl32.Ident4() }

// Multiply appends m to the current matrix.
func (s *MatrixStore) Multiply(m mgl32.Mat4) {
	cur := s.current()
	*cur = cur.Mul4(m)
}

// Translate appends a translation.
func (s *MatrixStore) Translate(x, y, z float32) { s.Multiply(mgl32.Translate3D(x, y, z)) }

// Scale appends a scale.
func (s *MatrixStore) Scale(x, y, z float32) { s.Multiply(mgl32.Scale3D(x, y, z)) }

// Rotate appends a rotation of angle degrees around the axis (x, y, z).
// A zero axis leaves the matrix unchanged.
func (s *MatrixStore) Rotate(angle, x, y, z float32) {
	axis := mgl32.Vec3{x, y, z}
	if axis.Len() == 0 {
		return
	}
	s.Multiply(mgl32.HomogRotate3D(mgl32.DegToRad(angle), axis.Normalize()))
}

// Push saves the current matrix. It reports false when the stack of the
// current mode is full.
func (s *MatrixStore) Push() bool {
	m := *s.current()
	return s.currentStack().push(m)
}

// Pop restores the most recently pushed matrix. It reports false when the
// stack is empty.
func (s *MatrixStore) Pop() bool {
	return s.currentStack().pop(s.current())
}

// Recalculate refreshes the derived matrices if their inputs changed.
func (s *MatrixStore) Recalculate() {
	if s.modelChanged {
		s.normal = s.modelView.Inv().Transpose()
	}
	if s.modelChanged || s.projectionChanged {
		s.mvp = s.projection.Mul4(s.modelView)
	}
	s.modelChanged = false
	s.projectionChanged = false
}

// ModelView returns the model-view matrix.
func (s *MatrixStore) ModelView() mgl32.Mat4 { return s.modelView }

// Projection returns the projection matrix.
func (s *MatrixStore) Projection() mgl32.Mat4 { return s.projection }

// TextureMatrix returns the texture matrix of tmu.
func (s *MatrixStore) TextureMatrix(tmu int) mgl32.Mat4 { return s.texture[tmu] }

// ColorMatrix returns the color matrix.
func (s *MatrixStore) ColorMatrix() mgl32.Mat4 { return s.color }

// MVP returns the combined matrix as of the last Recalculate.
func (s *MatrixStore) MVP() mgl32.Mat4 { return s.mvp }

// Normal returns the normal matrix as of the last Recalculate.
func (s *MatrixStore) Normal() mgl32.Mat4 { return s.normal }
