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

// Package cursor computes text positions from the matrices of the
// graphics and text state.
//
// Matrices use the PDF convention [a b c d e f], acting on row vectors:
// a point (x, y) is mapped to (a·x + c·y + e, b·x + d·y + f).
package cursor

import (
	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"
)

// Apply maps the point p using m.
func Apply(m matrix.Matrix, p vec.Vec2) vec.Vec2 {
	return vec.Vec2{
		X: m[0]*p.X + m[2]*p.Y + m[4],
		Y: m[1]*p.X + m[3]*p.Y + m[5],
	}
}

// Position returns the location of the text cursor in the coordinate
// system of the container: the origin of text space, mapped by the text
// matrix tm and then by the current transformation matrix ctm.
func Position(tm, ctm matrix.Matrix) vec.Vec2 {
	return Apply(ctm, vec.Vec2{X: tm[4], Y: tm[5]})
}

// RenderMatrix returns the combined transformation tm × ctm, which maps text
// space to the coordinate system of the container.
func RenderMatrix(tm, ctm matrix.Matrix) matrix.Matrix {
	return tm.Mul(ctm)
}

// LineMatrix reconstructs the text line matrix from the text matrix tm and
// the offset (g, h) between the translation parts of the two matrices.
func LineMatrix(tm matrix.Matrix, g, h float64) matrix.Matrix {
	tlm := tm
	tlm[4] += g
	tlm[5] += h
	return tlm
}

// Advance moves the translation part of tm by tx units along its own x
// basis vector.
func Advance(tm matrix.Matrix, tx float64) matrix.Matrix {
	tm[4] += tx * tm[0]
	tm[5] += tx * tm[1]
	return tm
}
