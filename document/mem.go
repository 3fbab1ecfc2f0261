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

package document

import (
	"fmt"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/object"
)

// Mem is a [Document] held in memory.  Streams are stored decoded.
//
// The zero value is an empty document.
type Mem struct {
	objects map[object.Reference]object.Object
	pages   []object.Reference
	next    uint32
}

// NewMem returns a new, empty document.
func NewMem() *Mem {
	return &Mem{}
}

// Add stores obj as a new indirect object.
func (m *Mem) Add(obj object.Object) object.Reference {
	m.next++
	ref := object.NewReference(m.next, 0)
	m.Set(ref, obj)
	return ref
}

// Set stores obj under the given reference, replacing any previous value.
func (m *Mem) Set(ref object.Reference, obj object.Object) {
	if m.objects == nil {
		m.objects = make(map[object.Reference]object.Object)
	}
	m.objects[ref] = obj
	if n := ref.Number(); n > m.next {
		m.next = n
	}
}

// Get returns the indirect object stored under ref, or nil.
func (m *Mem) Get(ref object.Reference) object.Object {
	return m.objects[ref]
}

// AddPage appends a page with the given content stream.  The entries of
// dict are copied into the page dictionary.
func (m *Mem) AddPage(dict object.Dict, data []byte) object.Reference {
	page := object.Dict{"Type": object.Name("Page")}
	for key, val := range dict {
		page[key] = val
	}
	if data != nil {
		page["Contents"] = m.Add(&object.Stream{Dict: object.Dict{}, Data: data})
	}
	ref := m.Add(page)
	m.pages = append(m.pages, ref)
	return ref
}

// AddForm stores a form XObject with the given resources and content.
func (m *Mem) AddForm(resources object.Dict, data []byte) object.Reference {
	dict := object.Dict{
		"Type":    object.Name("XObject"),
		"Subtype": object.Name("Form"),
		"BBox":    object.Array{object.Integer(0), object.Integer(0), object.Integer(1000), object.Integer(1000)},
	}
	if resources != nil {
		dict["Resources"] = resources
	}
	return m.Add(&object.Stream{Dict: dict, Data: data})
}

// Resolve implements the [Document] interface.
func (m *Mem) Resolve(obj object.Object) (object.Object, error) {
	for range maxRefDepth {
		ref, ok := obj.(object.Reference)
		if !ok {
			return obj, nil
		}
		obj = m.objects[ref]
	}
	return nil, fmt.Errorf("reference chain longer than %d", maxRefDepth)
}

const maxRefDepth = 32

// NumPages implements the [Document] interface.
func (m *Mem) NumPages() int {
	return len(m.pages)
}

// Page implements the [Document] interface.
func (m *Mem) Page(i int) (Container, error) {
	if i < 0 || i >= len(m.pages) {
		return nil, &PageIndexError{Index: i, NumPages: len(m.pages)}
	}
	ref := m.pages[i]
	if _, ok := m.objects[ref].(object.Dict); !ok {
		return nil, fmt.Errorf("page %d: expected dictionary but got %T", i, m.objects[ref])
	}
	return &memPage{doc: m, ref: ref}, nil
}

// Form implements the [Document] interface.
func (m *Mem) Form(ref object.Reference) (Container, error) {
	if !IsForm(m.objects[ref]) {
		return nil, fmt.Errorf("object %s: %w", ref, ErrNoContent)
	}
	return &memForm{doc: m, ref: ref}, nil
}

type memPage struct {
	doc *Mem
	ref object.Reference
}

func (p *memPage) Ref() object.Reference { return p.ref }

func (p *memPage) IsPage() bool { return true }

func (p *memPage) Dict() object.Dict {
	dict, _ := p.doc.objects[p.ref].(object.Dict)
	return dict
}

func (p *memPage) Content() ([]byte, error) {
	obj, err := p.doc.Resolve(p.Dict()["Contents"])
	if err != nil {
		return nil, err
	}
	switch x := obj.(type) {
	case nil:
		return nil, nil
	case *object.Stream:
		return x.Data, nil
	case object.Array:
		var segments [][]byte
		for _, elem := range x {
			obj, err := p.doc.Resolve(elem)
			if err != nil {
				return nil, err
			}
			stm, ok := obj.(*object.Stream)
			if !ok {
				return nil, fmt.Errorf("content segment: expected stream but got %T", obj)
			}
			segments = append(segments, stm.Data)
		}
		return content.Consolidate(segments...), nil
	}
	return nil, fmt.Errorf("page contents: unexpected type %T", obj)
}

// SetContent replaces the /Contents entry of the page by a new stream.
func (p *memPage) SetContent(data []byte) error {
	dict := p.Dict()
	if dict == nil {
		return fmt.Errorf("page %s: %w", p.ref, ErrNoContent)
	}
	dict["Contents"] = p.doc.Add(&object.Stream{Dict: object.Dict{}, Data: data})
	return nil
}

type memForm struct {
	doc *Mem
	ref object.Reference
}

func (f *memForm) Ref() object.Reference { return f.ref }

func (f *memForm) IsPage() bool { return false }

func (f *memForm) stream() *object.Stream {
	stm, _ := f.doc.objects[f.ref].(*object.Stream)
	return stm
}

func (f *memForm) Dict() object.Dict {
	if stm := f.stream(); stm != nil {
		return stm.Dict
	}
	return nil
}

func (f *memForm) Content() ([]byte, error) {
	stm := f.stream()
	if stm == nil {
		return nil, fmt.Errorf("object %s: %w", f.ref, ErrNoContent)
	}
	return stm.Data, nil
}

func (f *memForm) SetContent(data []byte) error {
	stm := f.stream()
	if stm == nil {
		return fmt.Errorf("object %s: %w", f.ref, ErrNoContent)
	}
	stm.Data = data
	return nil
}
