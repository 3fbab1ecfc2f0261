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

package metrics

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/qooxzuub/pdfbeaver/object"
)

func TestGuess(t *testing.T) {
	if w := Guess("Courier-Bold").Width; w != FixedPitchWidth {
		t.Errorf("Courier-Bold: got %g", w)
	}
	if w := Guess("Helvetica").Width; w != DefaultWidth {
		t.Errorf("Helvetica: got %g", w)
	}
	f := Guess("Times-Roman")
	if got := f.StringWidth([]byte("ab c")); got != 2 {
		t.Errorf("StringWidth = %g, want 2", got)
	}
	if got := f.SpaceCount([]byte("ab c ")); got != 2 {
		t.Errorf("SpaceCount = %d, want 2", got)
	}
}

func TestSimpleFromDict(t *testing.T) {
	dict := object.Dict{
		"Type":      object.Name("Font"),
		"Subtype":   object.Name("TrueType"),
		"BaseFont":  object.Name("Arial"),
		"FirstChar": object.Integer(65),
		"Widths":    object.Array{object.Integer(600), object.Integer(700), object.Real(550.5)},
		"FontDescriptor": object.Dict{
			"MissingWidth": object.Integer(250),
		},
	}
	f, err := FromDict(nil, dict)
	if err != nil {
		t.Fatal(err)
	}
	want := &Simple{FirstChar: 65, Widths: []float64{600, 700, 550.5}, MissingWidth: 250}
	if d := cmp.Diff(want, f); d != "" {
		t.Fatalf("unexpected font (-want +got):\n%s", d)
	}
	got := f.StringWidth([]byte("ABz"))
	if math.Abs(got-1.55) > 1e-9 {
		t.Errorf("StringWidth = %g, want 1.55", got)
	}
}

func TestType3Widths(t *testing.T) {
	dict := object.Dict{
		"Subtype":    object.Name("Type3"),
		"FirstChar":  object.Integer(0),
		"Widths":     object.Array{object.Integer(1)},
		"FontMatrix": object.Array{object.Real(0.5), object.Integer(0), object.Integer(0), object.Real(0.5), object.Integer(0), object.Integer(0)},
	}
	f, err := FromDict(nil, dict)
	if err != nil {
		t.Fatal(err)
	}
	if got := f.StringWidth([]byte{0}); got != 0.5 {
		t.Errorf("StringWidth = %g, want 0.5", got)
	}
}

func TestCompositeFromDict(t *testing.T) {
	refs := map[object.Reference]object.Object{
		object.NewReference(5, 0): object.Dict{
			"Subtype": object.Name("CIDFontType2"),
			"DW":      object.Integer(500),
			"W": object.Array{
				object.Integer(1), object.Array{object.Integer(100), object.Integer(200)},
				object.Integer(10), object.Integer(12), object.Integer(300),
			},
		},
	}
	resolve := func(obj object.Object) (object.Object, error) {
		if ref, ok := obj.(object.Reference); ok {
			return refs[ref], nil
		}
		return obj, nil
	}
	dict := object.Dict{
		"Subtype":         object.Name("Type0"),
		"DescendantFonts": object.Array{object.NewReference(5, 0)},
	}
	f, err := FromDict(resolve, dict)
	if err != nil {
		t.Fatal(err)
	}
	// CIDs 1, 2, 11 and 99
	s := []byte{0, 1, 0, 2, 0, 11, 0, 99}
	if got := f.StringWidth(s); got != 1.1 {
		t.Errorf("StringWidth = %g, want 1.1", got)
	}
	if got := f.CharCount(s); got != 4 {
		t.Errorf("CharCount = %d, want 4", got)
	}
	if got := f.SpaceCount([]byte{0, 32}); got != 0 {
		t.Errorf("SpaceCount = %d, want 0", got)
	}
}

func TestMalformed(t *testing.T) {
	f, err := FromDict(nil, object.Dict{"BaseFont": object.Name("Courier"), "Widths": object.Integer(3)})
	if err == nil {
		t.Error("expected an error")
	}
	if _, ok := f.(*Heuristic); !ok {
		t.Errorf("expected heuristic fallback, got %T", f)
	}
}
