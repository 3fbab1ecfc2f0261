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

// Package metrics provides glyph widths for computing how far a text
// showing operator advances the text matrix.
//
// Widths are read from the /Widths and /W arrays of font dictionaries where
// possible.  Otherwise a spacing heuristic is used.  Font programs are
// never parsed.
package metrics

import (
	"strings"

	"github.com/qooxzuub/pdfbeaver/object"
)

// Font gives the metrics needed to compute text advances.
type Font interface {
	// StringWidth returns the sum of the glyph widths for the character
	// codes in s, in text space units for a font size of 1.
	StringWidth(s []byte) float64

	// CharCount returns the number of character codes in s.
	CharCount(s []byte) int

	// SpaceCount returns the number of codes in s to which word spacing
	// applies.
	SpaceCount(s []byte) int
}

// Heuristic is a [Font] which assigns the same width to every glyph.
type Heuristic struct {
	// Width is the glyph width in text space units for a font size of 1.
	Width float64
}

// Default widths used by [Heuristic] fonts.
const (
	FixedPitchWidth = 0.6
	DefaultWidth    = 0.5
)

// Guess returns a [Heuristic] font for the given base font name.  Courier
// and other names which suggest a fixed-pitch font use FixedPitchWidth,
// all others use DefaultWidth.
func Guess(baseFont string) *Heuristic {
	name := strings.ToLower(baseFont)
	for _, key := range []string{"courier", "mono", "fixed"} {
		if strings.Contains(name, key) {
			return &Heuristic{Width: FixedPitchWidth}
		}
	}
	return &Heuristic{Width: DefaultWidth}
}

// StringWidth implements the [Font] interface.
func (f *Heuristic) StringWidth(s []byte) float64 {
	return float64(len(s)) * f.Width
}

// CharCount implements the [Font] interface.
func (f *Heuristic) CharCount(s []byte) int {
	return len(s)
}

// SpaceCount implements the [Font] interface.
func (f *Heuristic) SpaceCount(s []byte) int {
	return countSpaces(s)
}

// Simple is a [Font] for simple fonts, where each character code is one
// byte.
type Simple struct {
	FirstChar int

	// Widths holds the glyph widths in glyph space units (1/1000 of text
	// space) for the codes starting at FirstChar.
	Widths []float64

	// MissingWidth is used for codes outside the Widths array.
	MissingWidth float64
}

// StringWidth implements the [Font] interface.
func (f *Simple) StringWidth(s []byte) float64 {
	var w float64
	for _, c := range s {
		idx := int(c) - f.FirstChar
		if idx >= 0 && idx < len(f.Widths) {
			w += f.Widths[idx]
		} else {
			w += f.MissingWidth
		}
	}
	return w / 1000
}

// CharCount implements the [Font] interface.
func (f *Simple) CharCount(s []byte) int {
	return len(s)
}

// SpaceCount implements the [Font] interface.
func (f *Simple) SpaceCount(s []byte) int {
	return countSpaces(s)
}

// Composite is a [Font] for Type 0 fonts with a two-byte encoding such as
// Identity-H.
type Composite struct {
	// Widths maps CIDs to glyph widths, in glyph space units.
	Widths map[uint16]float64

	// DefaultWidth is used for CIDs not listed in Widths.
	DefaultWidth float64
}

// StringWidth implements the [Font] interface.
func (f *Composite) StringWidth(s []byte) float64 {
	var w float64
	for i := 0; i+1 < len(s); i += 2 {
		cid := uint16(s[i])<<8 | uint16(s[i+1])
		if wi, ok := f.Widths[cid]; ok {
			w += wi
		} else {
			w += f.DefaultWidth
		}
	}
	return w / 1000
}

// CharCount implements the [Font] interface.
func (f *Composite) CharCount(s []byte) int {
	return len(s) / 2
}

// SpaceCount implements the [Font] interface.
//
// Word spacing only applies to the single-byte code 32, so multi-byte
// encodings never have spaces.
func (f *Composite) SpaceCount(s []byte) int {
	return 0
}

func countSpaces(s []byte) int {
	n := 0
	for _, c := range s {
		if c == ' ' {
			n++
		}
	}
	return n
}

// Resolver follows indirect references to the objects they point to.
// Direct objects are returned unchanged.
type Resolver func(object.Object) (object.Object, error)
