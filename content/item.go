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

package content

import "fmt"

// Kind distinguishes the variants of an [Item].
type Kind int

// These are the possible values of [Item.Kind].
const (
	// KindInstruction is a structured instruction, which is subject to
	// optimization and canonical serialization.
	KindInstruction Kind = iota

	// KindRaw is a chunk of bytes which is copied to the output verbatim.
	KindRaw

	// KindOriginal asks for the intercepted instruction to be kept as it
	// was parsed.
	KindOriginal
)

func (k Kind) String() string {
	switch k {
	case KindInstruction:
		return "instruction"
	case KindRaw:
		return "raw"
	case KindOriginal:
		return "original"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Item is one element of the output of a handler, after normalization.
type Item struct {
	Kind Kind

	// Op is set if Kind is KindInstruction.
	Op Operator

	// Raw is set if Kind is KindRaw.
	Raw []byte
}

// Instruction returns an [Item] holding the given instruction.
func Instruction(op Operator) Item {
	return Item{Kind: KindInstruction, Op: op}
}

// RawItem returns an [Item] holding a raw byte chunk.
func RawItem(b []byte) Item {
	return Item{Kind: KindRaw, Raw: b}
}

// Raw is a byte sequence which a handler wants to have copied into the
// output stream verbatim, bypassing the optimizer and the serializer.
type Raw []byte

// Marker is the type of the [Original] pass-through marker.
type Marker struct {
	name string
}

func (m *Marker) String() string {
	return "<" + m.name + ">"
}

// Original is returned by a handler (usually inside a slice) to keep the
// intercepted instruction unchanged.
var Original = &Marker{name: "ORIGINAL"}

// Unchanged is a complete handler result which keeps the intercepted
// instruction unchanged.
var Unchanged = []any{Original}

// Tuple is the loosely typed form of an instruction returned by handlers:
// either {operands, operator} or {operator}.  The operands can be a single
// value or a slice of values, the operator is a string or an [OpName].
type Tuple []any

// T is a short form for constructing a two-element [Tuple].
func T(operands any, op any) Tuple {
	return Tuple{operands, op}
}
