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
	"fmt"

	"github.com/qooxzuub/pdfbeaver/document"
)

// Selection determines the pages processed by [Process].  A nil Selection
// selects all pages of the document.
type Selection []selector

// selector is either a page index or an explicit page.
type selector struct {
	index int
	page  document.Container
}

// All selects every page of the document.
func All() Selection {
	return nil
}

// Index selects pages by their index, starting from 0.
func Index(idx ...int) Selection {
	sel := make(Selection, len(idx))
	for i, x := range idx {
		sel[i] = selector{index: x}
	}
	return sel
}

// Page selects the given page containers.
func Page(pages ...document.Container) Selection {
	sel := make(Selection, len(pages))
	for i, p := range pages {
		sel[i] = selector{page: p}
	}
	return sel
}

// SelectPages converts a loosely typed page list into a
// Selection.  Accepted are nil (all pages), an int, a document.Container,
// a []int, a []document.Container, and a []any holding ints and
// containers.
func SelectPages(v any) (Selection, error) {
	switch x := v.(type) {
	case nil:
		return All(), nil
	case Selection:
		return x, nil
	case int:
		return Index(x), nil
	case document.Container:
		return Page(x), nil
	case []int:
		return Index(x...), nil
	case []document.Container:
		return Page(x...), nil
	case []any:
		sel := make(Selection, 0, len(x))
		for _, item := range x {
			switch item := item.(type) {
			case int:
				sel = append(sel, selector{index: item})
			case document.Container:
				sel = append(sel, selector{page: item})
			default:
				return nil, &ConfigError{Err: fmt.Errorf("invalid item in page list: %T", item)}
			}
		}
		return sel, nil
	}
	return nil, &ConfigError{Err: fmt.Errorf("invalid type for page selection: %T", v)}
}

var errNilPage = errors.New("nil page")

// resolve returns the selected pages.  Index errors are reported before
// any page is returned.
func (s Selection) resolve(doc document.Document) ([]document.Container, error) {
	if s == nil {
		n := doc.NumPages()
		res := make([]document.Container, n)
		for i := range n {
			p, err := doc.Page(i)
			if err != nil {
				return nil, err
			}
			res[i] = p
		}
		return res, nil
	}

	res := make([]document.Container, len(s))
	for i, sel := range s {
		if sel.page != nil {
			res[i] = sel.page
			continue
		}
		idx := sel.index
		if idx < 0 {
			// negative indices count from the end
			idx += doc.NumPages()
		}
		if idx < 0 || idx >= doc.NumPages() {
			return nil, &ConfigError{Err: &document.PageIndexError{Index: sel.index, NumPages: doc.NumPages()}}
		}
		p, err := doc.Page(idx)
		if err != nil {
			return nil, err
		}
		res[i] = p
	}
	return res, nil
}
