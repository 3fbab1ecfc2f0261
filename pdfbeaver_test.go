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

package pdfbeaver

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/document"
	"github.com/qooxzuub/pdfbeaver/object"
	"github.com/qooxzuub/pdfbeaver/registry"
	"github.com/qooxzuub/pdfbeaver/state"
)

func pageContent(t *testing.T, doc document.Document, i int) string {
	t.Helper()
	p, err := doc.Page(i)
	if err != nil {
		t.Fatal(err)
	}
	data, err := p.Content()
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestDeadStore(t *testing.T) {
	doc := document.NewMem()
	doc.AddPage(nil, []byte("1 0 0 1 100 100 Tm 1 0 0 1 100 90 Tm (B) Tj"))
	if err := Process(doc, registry.New(), nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := pageContent(t, doc, 0); got != "1 0 0 1 100 90 Tm (B) Tj\n" {
		t.Errorf("got %q", got)
	}
}

func TestNoOptimize(t *testing.T) {
	doc := document.NewMem()
	in := "1 0 0 1 100 100 Tm 1 0 0 1 100 90 Tm (B) Tj"
	doc.AddPage(nil, []byte(in))
	opts := DefaultOptions()
	opts.Optimize = false
	if err := Process(doc, registry.New(), opts, nil); err != nil {
		t.Fatal(err)
	}
	if got := pageContent(t, doc, 0); got != in+"\n" {
		t.Errorf("got %q", got)
	}
}

func TestSiblingContainers(t *testing.T) {
	doc := document.NewMem()
	doc.AddPage(nil, []byte("BT (secret) Tj ET"))
	doc.AddPage(nil, []byte("BT (secret) Tj ET"))

	redact := registry.New()
	err := redact.Register("Tj")(func(a *registry.Args) (any, error) {
		return content.T(object.String("XXXXXX"), "Tj"), nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := Process(doc, redact, nil, Index(0)); err != nil {
		t.Fatal(err)
	}
	if err := Process(doc, registry.New(), nil, Index(1)); err != nil {
		t.Fatal(err)
	}

	if got := pageContent(t, doc, 0); got != "BT\n(XXXXXX) Tj\nET\n" {
		t.Errorf("page 0: %q", got)
	}
	if got := pageContent(t, doc, 1); got != "BT (secret) Tj\nET\n" {
		t.Errorf("page 1: %q", got)
	}

	// clearing the handler has the same effect as a fresh registry
	redact.Unregister("Tj")
	doc.AddPage(nil, []byte("BT (secret) Tj ET"))
	if err := Process(doc, redact, nil, Index(2)); err != nil {
		t.Fatal(err)
	}
	if got := pageContent(t, doc, 2); got != "BT (secret) Tj\nET\n" {
		t.Errorf("page 2: %q", got)
	}
}

func TestUnsafeNumbers(t *testing.T) {
	doc := document.NewMem()
	in := "1 0 0 1 0 1152921504606846977 Tm 1 0 0 1 5 5 Tm (x) Tj"
	doc.AddPage(nil, []byte(in))

	reg := registry.New()
	_ = reg.Register("Tm")(func(*registry.Args) (any, error) {
		return "n", nil
	})
	if err := Process(doc, reg, nil, nil); err != nil {
		t.Fatal(err)
	}
	want := "1 0 0 1 0 1152921504606846977 Tm\nn (x) Tj\n"
	if got := pageContent(t, doc, 0); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestForms(t *testing.T) {
	doc := document.NewMem()
	fm := doc.AddForm(nil, []byte("0.5 g"))
	doc.AddPage(object.Dict{
		"Resources": object.Dict{"XObject": object.Dict{"Fm": fm}},
	}, []byte("1 g /Fm Do"))

	reg := registry.New()
	_ = reg.Register("g")(func(a *registry.Args) (any, error) {
		if a.Container.IsPage() || a.Page == nil || !a.Page.IsPage() {
			return registry.PassThrough, nil
		}
		return content.T(0, "g"), nil
	}, registry.ParamContainer, registry.ParamPage)

	if err := Process(doc, reg, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := pageContent(t, doc, 0); got != "1 g /Fm Do\n" {
		t.Errorf("page: %q", got)
	}
	if got := string(doc.Get(fm).(*object.Stream).Data); got != "0 g\n" {
		t.Errorf("form: %q", got)
	}

	// without recursion the form is left alone
	doc.Get(fm).(*object.Stream).Data = []byte("0.5 g")
	opts := DefaultOptions()
	opts.RecurseForms = false
	if err := Process(doc, reg, opts, nil); err != nil {
		t.Fatal(err)
	}
	if got := string(doc.Get(fm).(*object.Stream).Data); got != "0.5 g" {
		t.Errorf("form without recursion: %q", got)
	}
}

func TestFontMetrics(t *testing.T) {
	doc := document.NewMem()
	font := doc.Add(object.Dict{
		"Type":      object.Name("Font"),
		"Subtype":   object.Name("Type1"),
		"FirstChar": object.Integer(65),
		"Widths":    object.Array{object.Integer(250), object.Integer(750)},
	})
	doc.AddPage(object.Dict{
		"Resources": object.Dict{"Font": object.Dict{"F1": font}},
	}, []byte("BT /F1 10 Tf (ABAB) Tj 0 0 m ET"))

	var tracked []*state.Snapshot
	reg := registry.New()
	_ = reg.Register("m")(func(a *registry.Args) (any, error) {
		tracked = append(tracked, a.Context.Pre)
		return registry.PassThrough, nil
	}, registry.ParamContext)

	if err := Process(doc, reg, nil, nil); err != nil {
		t.Fatal(err)
	}
	if len(tracked) != 1 {
		t.Fatalf("handler called %d times", len(tracked))
	}
	// (0.25 + 0.75) * 2 * 10
	if x := tracked[0].Position().X; x != 20 {
		t.Errorf("x = %g, want 20", x)
	}
}

func TestNewTracker(t *testing.T) {
	doc := document.NewMem()
	fm := doc.AddForm(nil, []byte("0 g"))
	doc.AddPage(object.Dict{
		"Resources": object.Dict{"XObject": object.Dict{"Fm": fm}},
	}, []byte("0 g /Fm Do"))

	var trackers []state.Tracker
	opts := DefaultOptions()
	opts.NewTracker = func() state.Tracker {
		tr := state.NewLiterate()
		trackers = append(trackers, tr)
		return tr
	}
	reg := registry.New()
	_ = reg.Register("g")(func(a *registry.Args) (any, error) {
		if _, ok := a.Context.Tracker.(*state.Literate); !ok {
			t.Errorf("unexpected tracker %T", a.Context.Tracker)
		}
		return registry.PassThrough, nil
	}, registry.ParamContext)
	if err := Process(doc, reg, opts, nil); err != nil {
		t.Fatal(err)
	}
	if len(trackers) != 2 {
		t.Errorf("%d trackers created, want 2", len(trackers))
	}
}

func TestSelectPages(t *testing.T) {
	doc := document.NewMem()
	for range 3 {
		doc.AddPage(nil, []byte("q Q"))
	}
	p2, _ := doc.Page(2)

	sel, err := SelectPages([]any{0, p2, -2})
	if err != nil {
		t.Fatal(err)
	}
	pages, err := sel.resolve(doc)
	if err != nil {
		t.Fatal(err)
	}
	var refs []object.Reference
	for _, p := range pages {
		refs = append(refs, p.Ref())
	}
	p0, _ := doc.Page(0)
	p1, _ := doc.Page(1)
	if d := cmp.Diff([]object.Reference{p0.Ref(), p2.Ref(), p1.Ref()}, refs); d != "" {
		t.Errorf("(-want +got):\n%s", d)
	}

	for _, bad := range []any{"all", 1.5, []any{0, "x"}} {
		_, err := SelectPages(bad)
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Errorf("%v: got %v", bad, err)
		}
	}
}

func TestIndexOutOfRange(t *testing.T) {
	doc := document.NewMem()
	doc.AddPage(nil, []byte("0 g"))

	calls := 0
	reg := registry.New()
	_ = reg.Register("g")(func(*registry.Args) (any, error) {
		calls++
		return registry.PassThrough, nil
	})

	err := Process(doc, reg, nil, Index(0, 5))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v", err)
	}
	var idxErr *document.PageIndexError
	if !errors.As(err, &idxErr) || idxErr.Index != 5 {
		t.Errorf("got %v", err)
	}
	if calls != 0 {
		t.Error("pages were processed before the error was detected")
	}
}

func TestModifyPage(t *testing.T) {
	doc := document.NewMem()
	doc.AddPage(nil, []byte("0.5 G"))
	page, _ := doc.Page(0)

	reg := registry.New()
	_ = reg.Register("G")(func(a *registry.Args) (any, error) {
		return content.T(a.Operands, "RG"), nil
	}, registry.ParamOperands)
	if err := ModifyPage(doc, page, reg, nil); err != nil {
		t.Fatal(err)
	}
	if got := pageContent(t, doc, 0); got != "0.5 RG\n" {
		t.Errorf("got %q", got)
	}

	var cfgErr *ConfigError
	if err := ModifyPage(doc, nil, reg, nil); !errors.As(err, &cfgErr) {
		t.Errorf("nil page: %v", err)
	}
}

func TestDefaultRegistry(t *testing.T) {
	defer registry.Default.Unregister("sh")

	err := Register("sh")(func(*registry.Args) (any, error) {
		return nil, nil
	})
	if err != nil {
		t.Fatal(err)
	}
	doc := document.NewMem()
	doc.AddPage(nil, []byte("q /Sh1 sh Q"))
	if err := Process(doc, nil, nil, nil); err != nil {
		t.Fatal(err)
	}
	if got := pageContent(t, doc, 0); got != "q\nQ\n" {
		t.Errorf("got %q", got)
	}
}
