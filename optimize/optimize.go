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

// Package optimize implements a peephole optimizer for runs of content
// stream instructions.
//
// The optimizer works in two passes.  A backward pass removes dead stores,
// which are state changes overwritten before any text is shown.  A forward
// pass removes instructions which set a parameter to its current value, and
// replaces absolute text matrices by relative moves where this is exact up
// to rounding.
package optimize

import (
	"math"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/internal/float"
	"github.com/qooxzuub/pdfbeaver/object"
)

// Tolerances used when comparing parameter values.
const (
	HorizontalScalingTolerance = 0.001
	FontSizeTolerance          = 0.001
	MatrixTolerance            = 0.0001
)

// RoundingDigits is the number of decimal places kept in generated Td
// operands.
const RoundingDigits = 4

// RelevantOperators lists the operators which the optimizer needs to see.
// Content stream editors must buffer these so that they reach [Ops].
var RelevantOperators = map[content.OpName]bool{
	content.OpTextSetMatrix:            true,
	content.OpTextMoveOffset:           true,
	content.OpTextMoveOffsetSetLeading: true,
	content.OpPushGraphicsState:        true,
	content.OpPopGraphicsState:         true,
	content.OpTransform:                true,
	content.OpTextBegin:                true,
	content.OpTextEnd:                  true,
	content.OpTextSetFont:              true,
	content.OpTextSetHorizontalScaling: true,
}

// IsRelevant reports whether op is one of the [RelevantOperators].
func IsRelevant(op content.OpName) bool {
	return RelevantOperators[op]
}

// Ops optimizes a run of instructions.  The input is not modified.
//
// Ops never fails: instructions with operands which cannot be interpreted
// are kept unchanged.
func Ops(ops []content.Operator) []content.Operator {
	if len(ops) == 0 {
		return nil
	}
	return consolidate(removeDeadStores(ops))
}

type category uint8

const (
	catMatrix category = 1 << iota
	catMove
	catScaling
	catFont
)

// removeDeadStores scans the instructions in reverse order and drops
// instructions whose effect is overwritten before it is used.
//
// Text objects do not act as a barrier here: a Td in one text object is
// dropped if a Tm follows in a later text object with no text shown in
// between.  The q operator is a barrier for Tz and Tf, which are part of
// the saved graphics state, but not for the text matrix.
func removeDeadStores(ops []content.Operator) []content.Operator {
	keep := make([]bool, len(ops))
	var overwritten category
	for i := len(ops) - 1; i >= 0; i-- {
		op := ops[i].Name

		if content.IsTextShow(op) {
			overwritten = 0
			keep[i] = true
			continue
		}

		var dead bool
		switch op {
		case content.OpTextSetMatrix, content.OpTextMoveOffset:
			dead = overwritten&catMatrix != 0
		case content.OpTextSetHorizontalScaling:
			dead = overwritten&catScaling != 0
		case content.OpTextSetFont:
			dead = overwritten&catFont != 0
		}
		if dead {
			continue
		}

		switch op {
		case content.OpPushGraphicsState:
			// text state parameters set after q are undone by the matching Q
			overwritten &^= catScaling | catFont
		case content.OpTextSetMatrix:
			overwritten |= catMatrix | catMove
		case content.OpTextSetHorizontalScaling:
			overwritten |= catScaling
		case content.OpTextSetFont:
			overwritten |= catFont
		}
		keep[i] = true
	}

	res := make([]content.Operator, 0, len(ops))
	for i, op := range ops {
		if keep[i] {
			res = append(res, op)
		}
	}
	return res
}

// tracked holds the parameter values seen so far in the forward pass.
// Parameters are unknown at the start of a run, since the run may follow
// instructions which the optimizer has not seen.
type tracked struct {
	scaling  *float64
	font     string
	fontSize *float64

	// tm is the current text matrix, or nil if unknown.
	tm *[6]float64
}

func consolidate(ops []content.Operator) []content.Operator {
	st := &tracked{}
	res := make([]content.Operator, 0, len(ops))
	for _, op := range ops {
		switch op.Name {
		case content.OpTextSetHorizontalScaling:
			if st.redundantScaling(op.Args) {
				continue
			}
		case content.OpTextSetFont:
			if st.redundantFont(op.Args) {
				continue
			}
		case content.OpTextSetMatrix:
			op = st.setMatrix(op)
		case content.OpTextMoveOffset, content.OpTextMoveOffsetSetLeading:
			st.moveLine(op.Args)
		case content.OpTextNextLine, content.OpTextShowMoveNextLine,
			content.OpTextShowMoveNextLineSetSpacing:
			st.tm = nil
		case content.OpTextBegin:
			st.tm = nil
		case content.OpPopGraphicsState:
			// Q restores the text state parameters
			st.scaling = nil
			st.fontSize = nil
		}
		res = append(res, op)
	}
	return res
}

func (st *tracked) redundantScaling(args []object.Object) bool {
	if len(args) < 1 {
		return false
	}
	tz, err := object.GetNumber(args[0])
	if err != nil {
		return false
	}
	if st.scaling != nil && math.Abs(tz-*st.scaling) < HorizontalScalingTolerance {
		return true
	}
	st.scaling = &tz
	return false
}

func (st *tracked) redundantFont(args []object.Object) bool {
	if len(args) < 2 {
		return false
	}
	name := fontKey(args[0])
	size, err := object.GetNumber(args[1])
	if err != nil {
		return false
	}
	if name == st.font && st.fontSize != nil && math.Abs(size-*st.fontSize) < FontSizeTolerance {
		return true
	}
	st.font = name
	st.fontSize = &size
	return false
}

func fontKey(obj object.Object) string {
	if name, ok := obj.(object.Name); ok {
		return string(name)
	}
	return object.Format(obj)
}

// setMatrix records the new text matrix and, if possible, returns an
// equivalent Td instruction.
func (st *tracked) setMatrix(op content.Operator) content.Operator {
	m, ok := getMatrix(op.Args)
	if !ok {
		st.tm = nil
		return op
	}
	res := op
	if td, ok := relativeMove(st.tm, m); ok {
		res = td
	}
	st.tm = &m
	return res
}

// relativeMove returns a Td instruction which moves from text matrix old to
// text matrix m.  This is only possible if both matrices have the same
// linear part and old is axis-aligned.
func relativeMove(old *[6]float64, m [6]float64) (content.Operator, bool) {
	if old == nil {
		return content.Operator{}, false
	}
	for i := range 4 {
		if math.Abs(m[i]-old[i]) >= MatrixTolerance {
			return content.Operator{}, false
		}
	}
	a, b, c, d := old[0], old[1], old[2], old[3]
	if !(max(math.Abs(b), math.Abs(c)) < MatrixTolerance && MatrixTolerance < min(math.Abs(a), math.Abs(d))) {
		return content.Operator{}, false
	}
	tx := float.Round((m[4]-old[4])/a, RoundingDigits)
	ty := float.Round((m[5]-old[5])/d, RoundingDigits)
	if math.IsNaN(tx) || math.IsInf(tx, 0) || math.IsNaN(ty) || math.IsInf(ty, 0) {
		return content.Operator{}, false
	}
	return content.Op(content.OpTextMoveOffset, object.Real(tx), object.Real(ty)), true
}

func (st *tracked) moveLine(args []object.Object) {
	if st.tm == nil {
		return
	}
	if len(args) < 2 {
		st.tm = nil
		return
	}
	tx, err1 := object.GetNumber(args[0])
	ty, err2 := object.GetNumber(args[1])
	if err1 != nil || err2 != nil {
		st.tm = nil
		return
	}
	m := *st.tm
	m[4] += tx*m[0] + ty*m[2]
	m[5] += tx*m[1] + ty*m[3]
	st.tm = &m
}

func getMatrix(args []object.Object) ([6]float64, bool) {
	var m [6]float64
	if len(args) != 6 {
		return m, false
	}
	for i, arg := range args {
		x, err := object.GetNumber(arg)
		if err != nil {
			return m, false
		}
		m[i] = x
	}
	return m, true
}
