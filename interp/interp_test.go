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

package interp

import (
	"errors"
	"math"
	"testing"

	"seehuhn.de/go/geom/matrix"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/metrics"
	"github.com/qooxzuub/pdfbeaver/object"
)

func collect(t *testing.T, in *Interpreter, data string) []*Step {
	t.Helper()
	var steps []*Step
	for step, err := range in.All([]byte(data)) {
		if err != nil {
			t.Fatal(err)
		}
		steps = append(steps, step)
	}
	return steps
}

func TestTextPosition(t *testing.T) {
	in := New(nil)
	steps := collect(t, in, "BT /F1 10 Tf 100 700 Td (abc) Tj ET")
	if len(steps) != 5 {
		t.Fatalf("got %d steps", len(steps))
	}

	td := steps[2].State.Text.Matrix
	if td != matrix.Translate(100, 700) {
		t.Errorf("after Td: %v", td)
	}

	// F1 is not a fixed-pitch name, so glyphs are 0.5 em wide
	tj := steps[3].State.Text.Matrix
	if math.Abs(tj[4]-115) > 1e-9 || tj[5] != 700 {
		t.Errorf("after Tj: %v", tj)
	}
	if steps[3].State.Text.Font != "F1" || steps[3].State.Text.FontSize != 10 {
		t.Errorf("font = %s %g", steps[3].State.Text.Font, steps[3].State.Text.FontSize)
	}
}

func TestFontResolver(t *testing.T) {
	fonts := func(name object.Name) metrics.Font {
		if name == "F2" {
			return &metrics.Heuristic{Width: 1}
		}
		return nil
	}
	in := New(fonts)
	steps := collect(t, in, "BT /F2 10 Tf (ab) Tj /Courier 10 Tf (ab) Tj ET")
	if e := steps[2].State.Text.Matrix[4]; e != 20 {
		t.Errorf("resolved font: e = %g, want 20", e)
	}
	if e := steps[4].State.Text.Matrix[4]; math.Abs(e-32) > 1e-9 {
		t.Errorf("guessed font: e = %g, want 32", e)
	}
}

func TestGraphicsStateStack(t *testing.T) {
	in := New(nil)
	steps := collect(t, in, "q 2 0 0 2 10 10 cm 1 0 0 1 5 0 cm Q")
	ctm := steps[2].State.Graphics.CTM
	want := matrix.Matrix{2, 0, 0, 2, 20, 10}
	if ctm != want {
		t.Errorf("CTM = %v, want %v", ctm, want)
	}
	if got := steps[3].State.Graphics.CTM; got != matrix.Identity {
		t.Errorf("CTM after Q = %v", got)
	}
}

func TestBeginTextResetsMatrix(t *testing.T) {
	in := New(nil)
	steps := collect(t, in, "BT 1 0 0 1 50 50 Tm ET BT ET")
	if got := steps[4].State.Text.Matrix; got != matrix.Identity {
		t.Errorf("text matrix after BT = %v", got)
	}
}

func TestTextStateOperators(t *testing.T) {
	in := New(nil)
	steps := collect(t, in, "1.5 Tc 2 Tw 80 Tz 14 TL 3 Tr 4 Ts")
	got := steps[len(steps)-1].State.Text
	if got.CharSpacing != 1.5 || got.WordSpacing != 2 || got.HorizontalScaling != 80 ||
		got.Leading != 14 || got.RenderMode != 3 || got.Rise != 4 {
		t.Errorf("unexpected text state %+v", got)
	}
}

func TestMalformed(t *testing.T) {
	in := New(nil)
	steps := collect(t, in, "10 Td 1 0 0 1 5 5 Tm /X Tz Q (a) 7 Tf")
	if len(steps) != 5 {
		t.Fatalf("got %d steps", len(steps))
	}
	want := matrix.Translate(5, 5)
	for _, step := range steps[2:] {
		if step.State.Text.Matrix != want || step.State.Text.HorizontalScaling != 100 {
			t.Errorf("%s changed the state", step.Operator)
		}
	}
	if steps[0].State.Text.Matrix != matrix.Identity {
		t.Error("Td with one operand moved the cursor")
	}
}

func TestStrict(t *testing.T) {
	in := New(nil)
	in.Strict = true
	var errs []error
	for _, err := range in.All([]byte("q Q Q")) {
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1", len(errs))
	}
	var mErr *MalformedError
	if !errors.As(errs[0], &mErr) {
		t.Fatalf("unexpected error type %T", errs[0])
	}
	if mErr.Op != content.OpPopGraphicsState || mErr.Pos != 4 {
		t.Errorf("got %q at %d", mErr.Op, mErr.Pos)
	}
}

func TestRawCoversInput(t *testing.T) {
	data := "q 1 0 0 1 0 0 cm BT (x) Tj ET Q 1 2 (dangling"
	steps := collect(t, New(nil), data)
	var joined []byte
	for _, step := range steps {
		joined = append(joined, step.Raw...)
	}
	if string(joined) != data {
		t.Errorf("joined = %q", joined)
	}
	last := steps[len(steps)-1]
	if !last.IsTrailer() || string(last.Raw) != " 1 2 (dangling" {
		t.Errorf("unexpected trailer %q", last.Raw)
	}
}

func TestNoTrailerForWhiteSpace(t *testing.T) {
	steps := collect(t, New(nil), "q Q \n")
	if len(steps) != 2 {
		t.Errorf("got %d steps", len(steps))
	}
}
