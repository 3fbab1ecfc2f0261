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

// Package pdffile connects PDF files to the content stream editor.
//
// A [File] reads a complete PDF document into memory, using the
// seehuhn.de/go/pdf library, and implements [document.Document].  Edited
// content streams are held in memory until the file is written.
package pdffile

import (
	"errors"
	"fmt"
	"io"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/document"
	"github.com/qooxzuub/pdfbeaver/object"
)

// File is a PDF document held in memory.
type File struct {
	data  *pdf.Data
	pages []pdf.Reference
	next  uint32
}

var _ document.Document = (*File)(nil)

// Open reads a PDF document.
func Open(r io.ReadSeeker) (*File, error) {
	data, err := pdf.Read(r, nil)
	if err != nil {
		return nil, err
	}
	pages, err := pagetree.FindPages(data)
	if err != nil {
		return nil, fmt.Errorf("page tree: %w", err)
	}
	f := &File{data: data, pages: pages, next: 1}
	if size, ok := data.GetMeta().Trailer["Size"].(pdf.Integer); ok && size > 1 {
		f.next = uint32(size)
	}
	return f, nil
}

// WriteTo writes the document, including all edits, to w.
func (f *File) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	err := f.data.Write(cw)
	return cw.n, err
}

// Close releases the resources held by the document.
func (f *File) Close() error {
	return f.data.Close()
}

// Resolve implements the [document.Document] interface.
func (f *File) Resolve(obj object.Object) (object.Object, error) {
	ref, ok := obj.(object.Reference)
	if !ok {
		return obj, nil
	}
	native, err := pdf.Resolve(f.data, toRef(ref))
	if err != nil {
		return nil, err
	}
	return fromPDF(native), nil
}

// NumPages implements the [document.Document] interface.
func (f *File) NumPages() int {
	return len(f.pages)
}

// Page implements the [document.Document] interface.
func (f *File) Page(i int) (document.Container, error) {
	if i < 0 || i >= len(f.pages) {
		return nil, &document.PageIndexError{Index: i, NumPages: len(f.pages)}
	}
	ref := f.pages[i]
	if ref == 0 {
		return nil, fmt.Errorf("page %d: %w", i, errDirectPage)
	}
	return &page{file: f, ref: ref}, nil
}

// Form implements the [document.Document] interface.
func (f *File) Form(ref object.Reference) (document.Container, error) {
	stm, err := pdf.GetStream(f.data, toRef(ref))
	if err != nil {
		return nil, err
	}
	if stm == nil || !document.IsForm(fromPDF(stm)) {
		return nil, fmt.Errorf("object %s: %w", ref, document.ErrNoContent)
	}
	return &form{file: f, ref: toRef(ref)}, nil
}

var errDirectPage = errors.New("page dictionary is not an indirect object")

// decode returns the decoded data of a stream.
func (f *File) decode(stm *pdf.Stream) ([]byte, error) {
	r, err := pdf.DecodeStream(f.data, stm, 0)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// alloc returns an unused object number for a new stream.  Numbers are
// allocated above the /Size of the original cross-reference table, which
// keeps them clear of the catalog and the info dictionary.
func (f *File) alloc() pdf.Reference {
	for {
		ref := pdf.NewReference(f.next, 0)
		f.next++
		if obj, _ := pdf.Resolve(f.data, ref); obj == nil {
			return ref
		}
	}
}

// putStream stores data as a compressed stream under ref.
func (f *File) putStream(ref pdf.Reference, dict pdf.Dict, data []byte) error {
	w, err := f.data.OpenStream(ref, dict, pdf.FilterCompress{})
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

type page struct {
	file *File
	ref  pdf.Reference
}

func (p *page) Ref() object.Reference { return fromRef(p.ref) }

func (p *page) IsPage() bool { return true }

func (p *page) pdfDict() (pdf.Dict, error) {
	return pdf.GetDict(p.file.data, p.ref)
}

func (p *page) Dict() object.Dict {
	dict, err := p.pdfDict()
	if err != nil {
		return nil
	}
	res, _ := fromPDF(dict).(object.Dict)
	return res
}

// Content returns the page content.  If /Contents is an array, the
// segments are joined.
func (p *page) Content() ([]byte, error) {
	dict, err := p.pdfDict()
	if err != nil {
		return nil, err
	}
	contents, err := pdf.Resolve(p.file.data, dict["Contents"])
	if err != nil {
		return nil, err
	}

	switch x := contents.(type) {
	case nil:
		return nil, nil
	case *pdf.Stream:
		return p.file.decode(x)
	case pdf.Array:
		var segments [][]byte
		for i, elem := range x {
			stm, err := pdf.GetStream(p.file.data, elem)
			if err != nil {
				return nil, fmt.Errorf("content segment %d: %w", i, err)
			}
			if stm == nil {
				continue
			}
			data, err := p.file.decode(stm)
			if err != nil {
				return nil, fmt.Errorf("content segment %d: %w", i, err)
			}
			segments = append(segments, data)
		}
		return content.Consolidate(segments...), nil
	}
	return nil, fmt.Errorf("page %s: unexpected /Contents type %T", p.ref, contents)
}

// SetContent stores data in a new stream and makes it the only content
// stream of the page.  The old streams are left in the file, since other
// pages may share them.
func (p *page) SetContent(data []byte) error {
	dict, err := p.pdfDict()
	if err != nil {
		return err
	}
	if dict == nil {
		return fmt.Errorf("page %s: %w", p.ref, document.ErrNoContent)
	}

	ref := p.file.alloc()
	if err := p.file.putStream(ref, nil, data); err != nil {
		return err
	}
	dict["Contents"] = ref
	return p.file.data.Put(p.ref, dict)
}

type form struct {
	file *File
	ref  pdf.Reference
}

func (x *form) Ref() object.Reference { return fromRef(x.ref) }

func (x *form) IsPage() bool { return false }

func (x *form) stream() (*pdf.Stream, error) {
	stm, err := pdf.GetStream(x.file.data, x.ref)
	if err != nil {
		return nil, err
	}
	if stm == nil {
		return nil, fmt.Errorf("object %s: %w", x.ref, document.ErrNoContent)
	}
	return stm, nil
}

func (x *form) Dict() object.Dict {
	stm, err := x.stream()
	if err != nil {
		return nil
	}
	res, _ := fromPDF(stm.Dict).(object.Dict)
	return res
}

func (x *form) Content() ([]byte, error) {
	stm, err := x.stream()
	if err != nil {
		return nil, err
	}
	return x.file.decode(stm)
}

// SetContent replaces the data of the form stream.  All other entries of
// the stream dictionary are kept.
func (x *form) SetContent(data []byte) error {
	stm, err := x.stream()
	if err != nil {
		return err
	}
	dict := make(pdf.Dict, len(stm.Dict))
	for key, val := range stm.Dict {
		switch key {
		case "Filter", "DecodeParms", "Length", "DL":
			continue
		}
		dict[key] = val
	}
	return x.file.putStream(x.ref, dict, data)
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}
