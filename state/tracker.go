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

package state

import (
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"github.com/qooxzuub/pdfbeaver/cursor"
	"github.com/qooxzuub/pdfbeaver/metrics"
	"github.com/qooxzuub/pdfbeaver/object"
)

// Tracker receives the state before each instruction and makes it
// available to handlers.
//
// Trackers adopt snapshots passively: SetState replaces the entire state.
type Tracker interface {
	// SetState replaces the tracked state with a copy of s.
	// A nil s is ignored.
	SetState(s *Snapshot)

	// Snapshot returns a copy of the tracked state.
	Snapshot() *Snapshot
}

// Basic is the default [Tracker].
type Basic struct {
	current Snapshot
}

// NewBasic returns a tracker holding the initial state of a content stream.
func NewBasic() *Basic {
	return &Basic{current: *NewSnapshot()}
}

// SetState implements the [Tracker] interface.
func (b *Basic) SetState(s *Snapshot) {
	if s == nil {
		return
	}
	b.current = *s
}

// Snapshot implements the [Tracker] interface.
func (b *Basic) Snapshot() *Snapshot {
	return b.current.Clone()
}

// Text returns the current text state.
func (b *Basic) Text() TextState {
	return b.current.Text
}

// Matrices returns the current transformation matrix and the text
// rendering matrix (text matrix × CTM).
func (b *Basic) Matrices() (ctm, trm matrix.Matrix) {
	ctm = b.current.Graphics.CTM
	return ctm, cursor.RenderMatrix(b.current.Text.Matrix, ctm)
}

// UserPosition returns the text cursor position in user space.
func (b *Basic) UserPosition() vec.Vec2 {
	return b.current.Position()
}

// Literate is a [Tracker] which lets handlers substitute the font metrics
// used for width computations, for example after replacing the font of a
// text instruction.
type Literate struct {
	Basic
	active metrics.Font
}

// NewLiterate returns a new font-aware tracker.
func NewLiterate() *Literate {
	return &Literate{Basic: *NewBasic()}
}

// SetActiveFont registers metrics which take precedence over the metrics
// found in the tracked state.  Pass nil to remove the override.
func (l *Literate) SetActiveFont(f metrics.Font) {
	l.active = f
}

// Font returns the metrics used for width computations.
func (l *Literate) Font() metrics.Font {
	if l.active != nil {
		return l.active
	}
	return l.current.Text.Metrics
}

// Width returns the advance of showing seq with the current text state,
// in user space units along the text baseline.
func (l *Literate) Width(seq object.Array) float64 {
	text := l.current.Text
	text.Metrics = l.Font()
	tx := text.Advance(seq)

	_, trm := l.Matrices()
	p0 := cursor.Apply(trm, vec.Vec2{})
	p1 := cursor.Apply(trm, vec.Vec2{X: tx})
	return p1.Sub(p0).Length()
}
