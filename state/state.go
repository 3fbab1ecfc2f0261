// pdfbeaver - edit and optimize PDF content streams
// Copyright (C) 2026  The pdfbeaver authors
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package state models the graphics and text state of a content stream.
//
// A [Snapshot] captures the state after one instruction.  Snapshots are
// produced by the interpreter and consumed by a [Tracker], which makes
// them available to handlers.
package state

import (
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"github.com/qooxzuub/pdfbeaver/cursor"
	"github.com/qooxzuub/pdfbeaver/metrics"
	"github.com/qooxzuub/pdfbeaver/object"
)

// TextState holds the text state parameters.
type TextState struct {
	CharSpacing       float64 // Tc
	WordSpacing       float64 // Tw
	HorizontalScaling float64 // Tz, in percent
	Leading           float64 // TL
	Font              object.Name
	FontSize          float64
	RenderMode        int
	Rise              float64
	Knockout          bool

	// Metrics gives the glyph widths of the current font.  It is nil if no
	// font has been selected.
	Metrics metrics.Font

	// Matrix is the text matrix (Tm).
	Matrix matrix.Matrix

	// LineOffset is the difference between the translation parts of the
	// text line matrix and the text matrix.  Only the text matrix is
	// tracked directly; the line matrix is reconstructed from the two.
	LineOffset vec.Vec2
}

// NewTextState returns the text state at the start of a content stream.
func NewTextState() TextState {
	return TextState{
		HorizontalScaling: 100,
		Knockout:          true,
		Matrix:            matrix.Identity,
	}
}

// LineMatrix returns the text line matrix.
func (t *TextState) LineMatrix() matrix.Matrix {
	return cursor.LineMatrix(t.Matrix, t.LineOffset.X, t.LineOffset.Y)
}

// GraphicsState holds the parts of the graphics state which are needed for
// locating text.
type GraphicsState struct {
	CTM matrix.Matrix
}

// Snapshot is the combined graphics and text state at one point in the
// stream.  Snapshots are values: store them by copying, not by sharing
// pointers which are later modified.
type Snapshot struct {
	Text     TextState
	Graphics GraphicsState
}

// NewSnapshot returns the state at the start of a content stream.
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Text:     NewTextState(),
		Graphics: GraphicsState{CTM: matrix.Identity},
	}
}

// Clone returns a copy of s.
func (s *Snapshot) Clone() *Snapshot {
	if s == nil {
		return nil
	}
	res := *s
	return &res
}

// Position returns the text cursor position in the coordinate system of the
// container.  A nil snapshot is located at the origin.
func (s *Snapshot) Position() vec.Vec2 {
	if s == nil {
		return vec.Vec2{}
	}
	return cursor.Position(s.Text.Matrix, s.Graphics.CTM)
}
