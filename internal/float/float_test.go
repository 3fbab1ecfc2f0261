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

package float

import (
	"math"
	"testing"
)

func TestFormat(t *testing.T) {
	cases := []struct {
		x    float64
		prec int
		want string
	}{
		{0, -1, "0"},
		{math.Copysign(0, -1), -1, "0"},
		{-0.00001, 4, "0"},
		{1.5, -1, "1.5"},
		{100, 2, "100"},
		{0.125, 2, "0.12"},
		{-3.25, -1, "-3.25"},
		{1e20, -1, "100000000000000000000"},
	}
	for _, test := range cases {
		if got := Format(test.x, test.prec); got != test.want {
			t.Errorf("Format(%g, %d) = %q, want %q", test.x, test.prec, got, test.want)
		}
	}
}

func TestRound(t *testing.T) {
	cases := []struct {
		x    float64
		want float64
	}{
		{1.23456, 1.2346},
		{-2.5, -2.5},
		{10, 10},
	}
	for _, test := range cases {
		if got := Round(test.x, 4); got != test.want {
			t.Errorf("Round(%g) = %g, want %g", test.x, got, test.want)
		}
	}
	if got := Round(math.Inf(1), 4); !math.IsInf(got, 1) {
		t.Errorf("Round(+Inf) = %g", got)
	}
}
