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

package object

import (
	"errors"
	"fmt"
	"io"
	"math"
)

// A Number is either an Integer or a Real.
type Number float64

// PDF implements the [Object] interface.
func (x Number) PDF(w io.Writer) error {
	var obj Object
	if i := Integer(x); Number(i) == x {
		obj = i
	} else {
		obj = Real(x)
	}
	return obj.PDF(w)
}

// ErrNotNumber is returned by [GetNumber] if the object is not numeric.
var ErrNotNumber = errors.New("not a number")

// GetNumber makes sure obj is an [Integer], [Real], [Number] or [Decimal]
// and returns its value.
func GetNumber(obj Object) (float64, error) {
	switch x := obj.(type) {
	case Integer:
		return float64(x), nil
	case Real:
		return float64(x), nil
	case Number:
		return float64(x), nil
	case Decimal:
		y, err := x.Float()
		if err != nil {
			return 0, fmt.Errorf("%w: %v", ErrNotNumber, err)
		}
		return y, nil
	default:
		return 0, fmt.Errorf("%w: got %T", ErrNotNumber, obj)
	}
}

// SafeLimit is the largest magnitude a numeric operand may have while still
// being considered safe to rewrite.
const SafeLimit = 1 << 60

// IsUnsafe reports whether obj contains a numeric value which cannot be
// represented faithfully when the instruction is re-serialized: a value
// outside [-SafeLimit, SafeLimit], NaN or an infinity.  Arrays and
// dictionaries are inspected recursively.
func IsUnsafe(obj Object) bool {
	switch x := obj.(type) {
	case Integer:
		return x > SafeLimit || x < -SafeLimit
	case Real:
		return unsafeFloat(float64(x))
	case Number:
		return unsafeFloat(float64(x))
	case Decimal:
		y, err := x.Float()
		return err != nil || unsafeFloat(y)
	case Array:
		for _, elem := range x {
			if IsUnsafe(elem) {
				return true
			}
		}
	case Dict:
		for _, elem := range x {
			if IsUnsafe(elem) {
				return true
			}
		}
	}
	return false
}

func unsafeFloat(y float64) bool {
	return math.IsNaN(y) || math.IsInf(y, 0) || y > SafeLimit || y < -SafeLimit
}
