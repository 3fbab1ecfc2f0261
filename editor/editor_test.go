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

package editor

import (
	"errors"
	"strings"
	"testing"

	"seehuhn.de/go/geom/matrix"
	"seehuhn.de/go/geom/vec"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/interp"
	"github.com/qooxzuub/pdfbeaver/object"
	"github.com/qooxzuub/pdfbeaver/state"
)

// funcHandler calls one function for a fixed set of operators.
type funcHandler struct {
	ops map[content.OpName]bool
	fn  func(op content.OpName, args []object.Object, ctx *Context, raw []byte) ([]any, error)
}

func (h *funcHandler) ModifiedOperators() map[content.OpName]bool {
	return h.ops
}

func (h *funcHandler) Handle(op content.OpName, args []object.Object, ctx *Context, raw []byte) ([]any, error) {
	return h.fn(op, args, ctx, raw)
}

func handler(fn func(op content.OpName, args []object.Object, ctx *Context, raw []byte) ([]any, error), ops ...content.OpName) *funcHandler {
	h := &funcHandler{ops: map[content.OpName]bool{}, fn: fn}
	for _, op := range ops {
		h.ops[op] = true
	}
	return h
}

var noHandler = handler(nil)

func run(t *testing.T, in string, h Handler, opts *Options) string {
	t.Helper()
	e := New(interp.New(nil).All([]byte(in)), h, opts)
	out, err := e.Process()
	if err != nil {
		t.Fatal(err)
	}
	return string(out)
}

func TestPassThrough(t *testing.T) {
	in := "0.50 g  0 0 100 100 re\nf [1  2] 0 d"
	got := run(t, in, noHandler, &Options{Optimize: true})
	if got != in+"\n" {
		t.Errorf("got %q", got)
	}
}

func TestDeadStore(t *testing.T) {
	in := "1 0 0 1 100 100 Tm 1 0 0 1 100 90 Tm (B) Tj"
	got := run(t, in, noHandler, &Options{Optimize: true})
	if want := "1 0 0 1 100 90 Tm (B) Tj\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}

	got = run(t, in, noHandler, &Options{})
	if want := in + "\n"; got != want {
		t.Errorf("without optimization: got %q", got)
	}
}

func TestOptimizerWindows(t *testing.T) {
	// With no handler for Tj, text showing ends the optimizer's window.
	cases := []struct{ in, want string }{
		{
			"1 0 0 1 100 100 Tm (A) Tj 1 0 0 1 100 90 Tm (B) Tj",
			"1 0 0 1 100 100 Tm (A) Tj\n1 0 0 1 100 90 Tm (B) Tj",
		},
		{
			"1 0 0 1 100 100 Tm (A) Tj 1 0 0 1 100 90 Tm 10 5 Td (B) Tj",
			"1 0 0 1 100 100 Tm (A) Tj\n1 0 0 1 100 90 Tm\n10 5 Td (B) Tj",
		},
		{
			"1 0 0 1 100 100 Tm (A) Tj 1 0 0 1 100 90 Tm 10 5 Td 25 50 Td (B) Tj",
			"1 0 0 1 100 100 Tm (A) Tj\n1 0 0 1 100 90 Tm\n10 5 Td\n25 50 Td (B) Tj",
		},
		{
			"1 0 0 1 100 90 Tm 10 5 Td 1 2 3 4 5 6 Tm 25 50 Td (B) Tj",
			"1 2 3 4 5 6 Tm\n25 50 Td (B) Tj",
		},
	}
	for _, test := range cases {
		got := run(t, test.in, noHandler, &Options{Optimize: true})
		if got != test.want+"\n" {
			t.Errorf("%q:\n got %q\nwant %q", test.in, got, test.want+"\n")
		}
	}
}

// Each flush starts with unknown text state parameters, since
// instructions copied verbatim between flushes may have changed them.
func TestScalingAcrossWindows(t *testing.T) {
	cases := []struct{ in, want string }{
		{"50 Tz (a) Tj 100 Tz (b) Tj", "50 Tz (a) Tj\n100 Tz (b) Tj\n"},
		{"/F1 9 Tf (a) Tj /F1 9 Tf (b) Tj", "/F1 9 Tf (a) Tj\n/F1 9 Tf (b) Tj\n"},
	}
	for _, test := range cases {
		got := run(t, test.in, noHandler, &Options{Optimize: true})
		if got != test.want {
			t.Errorf("%q:\n got %q\nwant %q", test.in, got, test.want)
		}
	}
}

func TestHandlerResults(t *testing.T) {
	h := handler(func(op content.OpName, args []object.Object, ctx *Context, raw []byte) ([]any, error) {
		switch op {
		case content.OpSetFillGray:
			return []any{content.T(0.25, "g")}, nil
		case content.OpSetStrokeGray:
			return content.Unchanged, nil
		case content.OpRectangle:
			return []any{content.Raw("% removed"), "n"}, nil
		}
		return nil, nil
	}, "g", "G", "re", "S")

	in := "1 g 0  G 0 0 5 5 re 1 w S"
	got := run(t, in, h, nil)
	want := "0.25 g\n0 G\n% removed\nn 1 w\n"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestSpecialHandlers(t *testing.T) {
	var calls []string
	h := handler(func(op content.OpName, args []object.Object, ctx *Context, raw []byte) ([]any, error) {
		calls = append(calls, string(op))
		switch op {
		case StreamStart:
			if args != nil || ctx.Pre != nil || ctx.Post != nil {
				t.Error("stream start: unexpected arguments")
			}
			return []any{content.T(1, "g"), content.Original}, nil
		case StreamEnd:
			if args != nil || ctx.Pre == nil || ctx.Pre.Graphics.CTM != matrix.Scale(2, 2) {
				t.Error("stream end: unexpected arguments")
			}
			return []any{"Q"}, nil
		}
		return content.Unchanged, nil
	}, StreamStart, StreamEnd, "cm")

	got := run(t, "2 0 0 2 0 0 cm 0 0 m", h, nil)
	if want := "1 g\n2 0 0 2 0 0 cm 0 0 m\nQ\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if strings.Join(calls, " ") != "^ cm $" {
		t.Errorf("calls = %v", calls)
	}
}

func TestContextStates(t *testing.T) {
	type seen struct{ pre, post, tracked vec.Vec2 }
	var log []seen
	tracker := state.NewBasic()
	h := handler(func(op content.OpName, args []object.Object, ctx *Context, raw []byte) ([]any, error) {
		log = append(log, seen{ctx.Pre.Position(), ctx.Post.Position(), tracker.UserPosition()})
		if ctx.Tracker != tracker {
			t.Error("wrong tracker")
		}
		return content.Unchanged, nil
	}, "Td")

	e := New(interp.New(nil).All([]byte("BT 10 20 Td 5 5 Td ET")), h, &Options{Tracker: tracker})
	if _, err := e.Process(); err != nil {
		t.Fatal(err)
	}
	want := []seen{
		{vec.Vec2{}, vec.Vec2{X: 10, Y: 20}, vec.Vec2{}},
		{vec.Vec2{X: 10, Y: 20}, vec.Vec2{X: 15, Y: 25}, vec.Vec2{X: 10, Y: 20}},
	}
	if len(log) != len(want) {
		t.Fatalf("got %d calls", len(log))
	}
	for i := range want {
		if log[i] != want[i] {
			t.Errorf("%d: got %v, want %v", i, log[i], want[i])
		}
	}
	if p := e.Position(); p != (vec.Vec2{X: 15, Y: 25}) {
		t.Errorf("Position = %v", p)
	}
}

func TestUnsafeOperands(t *testing.T) {
	var called bool
	h := handler(func(op content.OpName, args []object.Object, ctx *Context, raw []byte) ([]any, error) {
		called = true
		return nil, nil
	}, "Tm", "BI")

	in := "1 0 0 1 0 99999999999999999999 Tm BI /W 1 /H 1 ID x EI"
	got := run(t, in, h, &Options{Optimize: true})
	if got != in+"\n" {
		t.Errorf("got %q", got)
	}
	if called {
		t.Error("handler called for unsafe instruction")
	}
}

func TestTrailingGarbage(t *testing.T) {
	in := "q Q 1 2 (unterminated"
	got := run(t, in, noHandler, &Options{Optimize: true})
	if want := "q\nQ 1 2 (unterminated\n"; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestErrors(t *testing.T) {
	errTest := errors.New("test")
	h := handler(func(op content.OpName, args []object.Object, ctx *Context, raw []byte) ([]any, error) {
		if op == "w" {
			return nil, errTest
		}
		return []any{3.5}, nil
	}, "w", "J")

	e := New(interp.New(nil).All([]byte("1 w")), h, nil)
	if _, err := e.Process(); !errors.Is(err, errTest) {
		t.Errorf("handler error: %v", err)
	}

	e = New(interp.New(nil).All([]byte("1 J")), h, nil)
	_, err := e.Process()
	var nErr *content.NormalizeError
	if !errors.As(err, &nErr) || nErr.Value != 3.5 {
		t.Errorf("normalize error: %v", err)
	}
}

func TestChunkSeparators(t *testing.T) {
	e := &Editor{}
	for _, chunk := range []string{"a", "b", " c", "", "d\n", "e"} {
		e.appendChunk([]byte(chunk))
	}
	var got []byte
	for _, c := range e.chunks {
		got = append(got, c...)
	}
	if string(got) != "a\nb c\nd\ne" {
		t.Errorf("got %q", got)
	}
}
