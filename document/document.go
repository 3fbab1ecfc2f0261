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

// Package document describes the documents whose content streams are
// edited.
//
// Reading and writing files is left to implementations of the [Document]
// interface, for example the one in package pdffile.  This package only
// contains the interfaces and [Mem], a document kept in memory.
package document

import (
	"errors"
	"fmt"

	"github.com/qooxzuub/pdfbeaver/object"
)

// A Container is a page or a form XObject, i.e. an object which has its
// own content stream.
type Container interface {
	// Ref identifies the container within its document.
	Ref() object.Reference

	// Dict returns the page dictionary, or the dictionary of the form
	// XObject stream.  For pages, inherited attributes like /Resources
	// and /MediaBox are included.
	Dict() object.Dict

	// Content returns the decoded content stream.  If the content of a
	// page is split over several streams, the segments are joined.
	Content() ([]byte, error)

	// SetContent replaces the content stream.
	SetContent(data []byte) error

	// IsPage reports whether the container is a page.
	IsPage() bool
}

// A Document gives access to the pages and form XObjects of a file.
type Document interface {
	// Resolve follows references until a direct object is found.
	// References to missing objects resolve to nil.
	Resolve(obj object.Object) (object.Object, error)

	// NumPages returns the number of pages in the document.
	NumPages() int

	// Page returns the page with the given index, starting from 0.
	Page(i int) (Container, error)

	// Form returns the form XObject stored under ref.  If the object is
	// not a form XObject, ErrNoContent is returned.
	Form(ref object.Reference) (Container, error)
}

// ErrNoContent indicates that an object does not have a content stream.
var ErrNoContent = errors.New("object has no content stream")

// PageIndexError is returned when a page index is out of range.
type PageIndexError struct {
	Index, NumPages int
}

func (err *PageIndexError) Error() string {
	return fmt.Sprintf("page index %d out of range [0,%d)", err.Index, err.NumPages)
}

// GetDict resolves obj and returns it as a dictionary.  A nil object gives
// a nil dictionary.
func GetDict(doc Document, obj object.Object) (object.Dict, error) {
	obj, err := doc.Resolve(obj)
	if err != nil {
		return nil, err
	}
	switch x := obj.(type) {
	case nil:
		return nil, nil
	case object.Dict:
		return x, nil
	case *object.Stream:
		return x.Dict, nil
	}
	return nil, fmt.Errorf("expected dictionary but got %T", obj)
}

// Resources returns the resource dictionary of a container.
func Resources(doc Document, c Container) (object.Dict, error) {
	return GetDict(doc, c.Dict()["Resources"])
}

// IsForm reports whether obj is a form XObject.
func IsForm(obj object.Object) bool {
	stm, ok := obj.(*object.Stream)
	if !ok {
		return false
	}
	name, _ := stm.Dict["Subtype"].(object.Name)
	return name == "Form"
}
