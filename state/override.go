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
	"errors"
	"fmt"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/cursor"
	"github.com/qooxzuub/pdfbeaver/object"
)

// MoveLine implements the Td operator: the new line matrix is the old line
// matrix, translated by (tx, ty) in its own coordinate system, and the text
// matrix is set to the new line matrix.
func (t *TextState) MoveLine(tx, ty float64) {
	tlm := matrix.Translate(tx, ty).Mul(t.LineMatrix())
	t.Matrix = tlm
	t.LineOffset = vec.Vec2{}
}

// MoveLineSetLeading implements the TD operator.
func (t *TextState) MoveLineSetLeading(tx, ty float64) {
	t.Leading = -ty
	t.MoveLine(tx, ty)
}

// NextLine implements the T* operator.
func (t *TextState) NextLine() {
	t.MoveLine(0, -t.Leading)
}

// SetMatrix implements the Tm operator.  The text matrix and the text line
// matrix are both set to m.
func (t *TextState) SetMatrix(m matrix.Matrix) {
	t.Matrix = m
	t.LineOffset = vec.Vec2{}
}

// Advance returns the horizontal displacement, in unscaled text space
// units, caused by showing the elements of seq.  Strings advance by their
// glyph widths plus character and word spacing, numbers move the text
// position back by value/1000 em.  Both are scaled by the horizontal
// scaling.  Elements of other types are ignored.
//
// If no font is selected, the advance is zero.
func (t *TextState) Advance(seq object.Array) float64 {
	if t.Metrics == nil {
		return 0
	}
	hScale := t.HorizontalScaling / 100
	var tx float64
	for _, item := range seq {
		switch x := item.(type) {
		case object.String:
			w := t.Metrics.StringWidth(x) * t.FontSize
			w += float64(t.Metrics.CharCount(x)) * t.CharSpacing
			w += float64(t.Metrics.SpaceCount(x)) * t.WordSpacing
			tx += w * hScale
		case object.Integer, object.Real, object.Number, object.Decimal:
			v, err := object.GetNumber(x)
			if err != nil {
				continue
			}
			tx -= v / 1000 * t.FontSize * hScale
		}
	}
	return tx
}

// ShowArray implements the text matrix update of the TJ operator.  The text
// matrix moves along its own x axis; the text line matrix is unchanged.
func (t *TextState) ShowArray(seq object.Array) {
	if t.Metrics == nil {
		return
	}
	tx := t.Advance(seq)
	a, b := t.Matrix[0], t.Matrix[1]
	t.Matrix = cursor.Advance(t.Matrix, tx)
	t.LineOffset.X -= tx * a
	t.LineOffset.Y -= tx * b
}

// Show implements the text matrix update of the Tj operator.
func (t *TextState) Show(s object.String) {
	t.ShowArray(object.Array{s})
}

// An Override replaces the default state update for one operator.
// It must leave s unmodified if it returns an error.
type Override func(s *Snapshot, args []object.Object) error

// Overrides lists the operators for which the state update is computed
// here, rather than by the generic interpreter.  These are the operators
// which move the text cursor relative to the line matrix, or by the width
// of the text shown.
var Overrides = map[content.OpName]Override{
	content.OpTextMoveOffset: func(s *Snapshot, args []object.Object) error {
		tx, ty, err := twoNumbers(args)
		if err != nil {
			return err
		}
		s.Text.MoveLine(tx, ty)
		return nil
	},
	content.OpTextMoveOffsetSetLeading: func(s *Snapshot, args []object.Object) error {
		tx, ty, err := twoNumbers(args)
		if err != nil {
			return err
		}
		s.Text.MoveLineSetLeading(tx, ty)
		return nil
	},
	content.OpTextNextLine: func(s *Snapshot, args []object.Object) error {
		s.Text.NextLine()
		return nil
	},
	content.OpTextShowArray: func(s *Snapshot, args []object.Object) error {
		if len(args) < 1 {
			return errMissingOperand
		}
		seq, ok := args[len(args)-1].(object.Array)
		if !ok {
			return fmt.Errorf("expected array but got %T", args[len(args)-1])
		}
		s.Text.ShowArray(seq)
		return nil
	},
	content.OpTextShow: func(s *Snapshot, args []object.Object) error {
		str, err := lastString(args)
		if err != nil {
			return err
		}
		s.Text.Show(str)
		return nil
	},
	content.OpTextShowMoveNextLine: func(s *Snapshot, args []object.Object) error {
		str, err := lastString(args)
		if err != nil {
			return err
		}
		s.Text.NextLine()
		s.Text.Show(str)
		return nil
	},
	content.OpTextShowMoveNextLineSetSpacing: func(s *Snapshot, args []object.Object) error {
		if len(args) < 3 {
			return errMissingOperand
		}
		aw, err := object.GetNumber(args[len(args)-3])
		if err != nil {
			return err
		}
		ac, err := object.GetNumber(args[len(args)-2])
		if err != nil {
			return err
		}
		str, ok := args[len(args)-1].(object.String)
		if !ok {
			return fmt.Errorf("expected string but got %T", args[len(args)-1])
		}
		s.Text.WordSpacing = aw
		s.Text.CharSpacing = ac
		s.Text.NextLine()
		s.Text.Show(str)
		return nil
	},
}

var errMissingOperand = errors.New("missing operand")

// twoNumbers returns the last two operands as numbers.  Excess operands at
// the start are ignored.
func twoNumbers(args []object.Object) (float64, float64, error) {
	if len(args) < 2 {
		return 0, 0, errMissingOperand
	}
	x, err := object.GetNumber(args[len(args)-2])
	if err != nil {
		return 0, 0, err
	}
	y, err := object.GetNumber(args[len(args)-1])
	if err != nil {
		return 0, 0, err
	}
	return x, y, nil
}

func lastString(args []object.Object) (object.String, error) {
	if len(args) < 1 {
		return nil, errMissingOperand
	}
	str, ok := args[len(args)-1].(object.String)
	if !ok {
		return nil, fmt.Errorf("expected string but got %T", args[len(args)-1])
	}
	return str, nil
}
