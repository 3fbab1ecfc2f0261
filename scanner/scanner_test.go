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

package scanner

import (
	"bytes"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/qooxzuub/pdfbeaver/object"
)

type instr struct {
	Op   string
	Args []object.Object
}

func scanAll(t *testing.T, in string) ([]instr, []*Token) {
	t.Helper()
	var res []instr
	var toks []*Token
	for tok, err := range New([]byte(in)).All() {
		if err != nil {
			t.Fatal(err)
		}
		res = append(res, instr{tok.Op, tok.Args})
		toks = append(toks, tok)
	}
	return res, toks
}

func TestScanner(t *testing.T) {
	cases := []struct {
		in   string
		want []instr
	}{
		{"", nil},
		{"q Q", []instr{{"q", nil}, {"Q", nil}}},
		{"1 0 0 1 100 90 Tm", []instr{{"Tm", []object.Object{
			object.Integer(1), object.Integer(0), object.Integer(0),
			object.Integer(1), object.Integer(100), object.Integer(90),
		}}}},
		{"/F1 12.5 Tf", []instr{{"Tf", []object.Object{object.Name("F1"), object.Real(12.5)}}}},
		{"(a\\(b\\)c) Tj", []instr{{"Tj", []object.Object{object.String("a(b)c")}}}},
		{"(x\\101\\n) Tj", []instr{{"Tj", []object.Object{object.String("xA\n")}}}},
		{"<48656C6C6F> Tj", []instr{{"Tj", []object.Object{object.String("Hello")}}}},
		{"<414> Tj", []instr{{"Tj", []object.Object{object.String("A@")}}}},
		{"[(A) -120 (B)] TJ", []instr{{"TJ", []object.Object{
			object.Array{object.String("A"), object.Integer(-120), object.String("B")},
		}}}},
		{"/Span <</MCID 3>> BDC EMC", []instr{
			{"BDC", []object.Object{object.Name("Span"), object.Dict{"MCID": object.Integer(3)}}},
			{"EMC", nil},
		}},
		{"% comment\n0 g", []instr{{"g", []object.Object{object.Integer(0)}}}},
		{"/A#20B Do", []instr{{"Do", []object.Object{object.Name("A B")}}}},
		{"true false null d0", []instr{{"d0", []object.Object{object.Bool(true), object.Bool(false), nil}}}},
		{"-.5 +3 Td", []instr{{"Td", []object.Object{object.Real(-0.5), object.Integer(3)}}}},
		{"T* ' \"", []instr{{"T*", nil}, {"'", nil}, {"\"", nil}}},
	}
	for _, test := range cases {
		got, _ := scanAll(t, test.in)
		if d := cmp.Diff(test.want, got); d != "" {
			t.Errorf("%q: unexpected result (-want +got):\n%s", test.in, d)
		}
	}
}

func TestLargeInteger(t *testing.T) {
	got, _ := scanAll(t, "99999999999999999999 w")
	if len(got) != 1 || len(got[0].Args) != 1 {
		t.Fatalf("unexpected result %v", got)
	}
	x, ok := got[0].Args[0].(object.Real)
	if !ok || x != 1e20 {
		t.Errorf("got %#v", got[0].Args[0])
	}
}

func TestRawSpans(t *testing.T) {
	in := "  q 1 0 0 1 5 5 cm\n% note\nBT /F1 9 Tf ET Q\n"
	_, toks := scanAll(t, in)

	var joined []byte
	for _, tok := range toks {
		joined = append(joined, tok.Raw...)
		if string(tok.Raw[len(tok.Raw)-len(tok.Op):]) != tok.Op {
			t.Errorf("raw %q does not end in %q", tok.Raw, tok.Op)
		}
	}
	if want := in[:len(in)-1]; string(joined) != want {
		t.Errorf("joined raw = %q, want %q", joined, want)
	}

	// Start points at the first operand
	if tok := toks[1]; in[tok.Start:tok.End] != "1 0 0 1 5 5 cm" {
		t.Errorf("cm span = %q", in[tok.Start:tok.End])
	}
}

func TestRest(t *testing.T) {
	s := New([]byte("0 g 1 2 (unterminated"))
	for range s.All() {
	}
	if got := string(s.Rest()); got != " 1 2 (unterminated" {
		t.Errorf("Rest = %q", got)
	}
}

func TestInlineImage(t *testing.T) {
	data := []byte{0x00, 'E', 'I', 0xff}
	in := "q BI /W 2 /H 2 /BPC 8 /CS /G /F [/AHx] ID " + string(data) + "\nEI Q"
	got, toks := scanAll(t, in)
	if len(got) != 3 || got[1].Op != "BI" {
		t.Fatalf("unexpected result %v", got)
	}
	img, ok := got[1].Args[0].(*object.InlineImage)
	if !ok {
		t.Fatalf("expected inline image, got %T", got[1].Args[0])
	}
	if !bytes.Equal(img.Data, data) {
		t.Errorf("data = %q, want %q", img.Data, data)
	}
	wantDict := object.Dict{
		"W": object.Integer(2), "H": object.Integer(2), "BPC": object.Integer(8),
		"CS": object.Name("G"), "F": object.Array{object.Name("AHx")},
	}
	if d := cmp.Diff(wantDict, img.Dict); d != "" {
		t.Errorf("unexpected dict (-want +got):\n%s", d)
	}
	if got := string(toks[1].Raw); got != in[1:len(in)-2] {
		t.Errorf("raw = %q", got)
	}
}

func TestInlineImageLength(t *testing.T) {
	in := "BI /L 4 ID a EI\nEI"
	got, _ := scanAll(t, in)
	if len(got) != 1 {
		t.Fatalf("unexpected result %v", got)
	}
	img := got[0].Args[0].(*object.InlineImage)
	if string(img.Data) != "a EI" {
		t.Errorf("data = %q", img.Data)
	}
}

func FuzzScanner(f *testing.F) {
	f.Add("q 1 0 0 1 0 0 cm BT /F1 12 Tf (Hello) Tj ET Q")
	f.Add("[(A) 1 <42>] TJ BI /W 1 ID x EI")
	f.Add("<< /A [1 2 >> ] (unbalanced")
	f.Fuzz(func(t *testing.T, in string) {
		s := New([]byte(in))
		var joined []byte
		for tok, err := range s.All() {
			if err != nil {
				return
			}
			joined = append(joined, tok.Raw...)
		}
		joined = append(joined, s.Rest()...)
		if string(joined) != in {
			t.Errorf("spans do not cover the input: %q != %q", joined, in)
		}
	})
}
