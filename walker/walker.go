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

// Package walker applies a content stream transformation to pages and to
// the form XObjects they use.
package walker

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/qooxzuub/pdfbeaver/document"
	"github.com/qooxzuub/pdfbeaver/object"
)

// ProcessFunc computes the new content stream of container c, which is
// page itself or a form XObject used by page.
type ProcessFunc func(page, c document.Container, data []byte) ([]byte, error)

// A Walker visits pages and, recursively, the form XObjects in their
// resource dictionaries.
//
// Each object is visited at most once per call to [Walker.Walk], even if
// resources refer to each other in a cycle.
type Walker struct {
	Doc     document.Document
	Process ProcessFunc

	// Recurse enables processing of form XObjects.
	Recurse bool

	Logger *slog.Logger

	visited map[object.Reference]struct{}
}

// New creates a new Walker with recursion enabled.
func New(doc document.Document, process ProcessFunc) *Walker {
	return &Walker{Doc: doc, Process: process, Recurse: true}
}

// Walk processes the given pages, and if recursion is enabled, all form
// XObjects reachable from their resources.
//
// Errors while reading page content, and errors returned by the process
// function, abort the walk.  Form XObjects which cannot be read are
// logged and skipped.
func (w *Walker) Walk(pages ...document.Container) error {
	w.visited = make(map[object.Reference]struct{})

	for _, page := range pages {
		if ref := page.Ref(); ref != 0 {
			w.visited[ref] = struct{}{}
		}

		data, err := page.Content()
		if err != nil {
			return fmt.Errorf("page %s: %w", page.Ref(), err)
		}
		if err := w.update(page, page, data); err != nil {
			return err
		}

		if !w.Recurse {
			continue
		}
		res, err := document.Resources(w.Doc, page)
		if err != nil {
			w.logger().Warn("skipping unreadable resources",
				slog.String("page", page.Ref().String()),
				slog.Any("err", err))
			continue
		}
		if err := w.walkResources(page, res); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) update(page, c document.Container, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	out, err := w.Process(page, c, data)
	if err != nil {
		return fmt.Errorf("object %s: %w", c.Ref(), err)
	}
	return c.SetContent(out)
}

func (w *Walker) walkResources(page document.Container, res object.Dict) error {
	if res == nil {
		return nil
	}
	xObjects, err := document.GetDict(w.Doc, res["XObject"])
	if err != nil {
		w.logger().Warn("skipping unreadable XObject dictionary", slog.Any("err", err))
		return nil
	}

	names := make([]object.Name, 0, len(xObjects))
	for name := range xObjects {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		ref, isRef := xObjects[name].(object.Reference)
		if !isRef {
			continue
		}
		if _, seen := w.visited[ref]; seen {
			continue
		}
		w.visited[ref] = struct{}{}

		obj, err := w.Doc.Resolve(ref)
		if err != nil {
			w.skip(name, err)
			continue
		}
		if !document.IsForm(obj) {
			continue
		}
		form, err := w.Doc.Form(ref)
		if err != nil {
			w.skip(name, err)
			continue
		}
		data, err := form.Content()
		if err != nil {
			w.skip(name, err)
			continue
		}

		w.logger().Debug("processing form XObject", slog.String("name", string(name)))
		if err := w.update(page, form, data); err != nil {
			return err
		}

		formRes, err := document.Resources(w.Doc, form)
		if err != nil {
			w.skip(name, err)
			continue
		}
		if err := w.walkResources(page, formRes); err != nil {
			return err
		}
	}
	return nil
}

func (w *Walker) skip(name object.Name, err error) {
	w.logger().Warn("skipping malformed XObject",
		slog.String("name", string(name)),
		slog.Any("err", err))
}

func (w *Walker) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}
