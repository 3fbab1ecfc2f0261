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
	"log/slog"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/document"
	"github.com/qooxzuub/pdfbeaver/editor"
	"github.com/qooxzuub/pdfbeaver/interp"
	"github.com/qooxzuub/pdfbeaver/metrics"
	"github.com/qooxzuub/pdfbeaver/object"
	"github.com/qooxzuub/pdfbeaver/registry"
	"github.com/qooxzuub/pdfbeaver/state"
	"github.com/qooxzuub/pdfbeaver/walker"
)

// Options control how content streams are processed.
type Options struct {
	// Optimize enables the peephole optimizer.
	Optimize bool

	// RecurseForms enables processing of the form XObjects used by a page.
	RecurseForms bool

	// NewTracker is called once per content stream to create the state
	// tracker passed to handlers.  If this is nil, [state.NewBasic] is
	// used.
	NewTracker func() state.Tracker

	// Logger receives diagnostics about malformed content.  If this is
	// nil, slog.Default() is used.
	Logger *slog.Logger
}

// DefaultOptions returns the options used when nil options are passed.
func DefaultOptions() *Options {
	return &Options{
		Optimize:     true,
		RecurseForms: true,
	}
}

// ConfigError indicates invalid arguments, detected before any content is
// processed.
type ConfigError = registry.ConfigError

// Register attaches a handler function to the given operators in
// [registry.Default].
func Register(ops ...content.OpName) registry.Decorator {
	return registry.Default.Register(ops...)
}

// Process edits the selected pages of doc.  If h is nil,
// [registry.Default] is used.  If opts is nil, [DefaultOptions] are used.
//
// A form XObject used by several of the selected pages is only processed
// once, as part of the first page which uses it.
func Process(doc document.Document, h editor.Handler, opts *Options, pages Selection) error {
	containers, err := pages.resolve(doc)
	if err != nil {
		return err
	}
	return newRun(doc, h, opts).walk(containers...)
}

// ModifyPage edits a single page and, if enabled, the form XObjects it
// uses.
func ModifyPage(doc document.Document, page document.Container, h editor.Handler, opts *Options) error {
	if page == nil {
		return &ConfigError{Err: errNilPage}
	}
	return newRun(doc, h, opts).walk(page)
}

type run struct {
	doc     document.Document
	handler editor.Handler
	opts    *Options
	logger  *slog.Logger
}

func newRun(doc document.Document, h editor.Handler, opts *Options) *run {
	if h == nil {
		h = registry.Default
	}
	if opts == nil {
		opts = DefaultOptions()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &run{doc: doc, handler: h, opts: opts, logger: logger}
}

func (r *run) walk(pages ...document.Container) error {
	w := walker.New(r.doc, r.edit)
	w.Recurse = r.opts.RecurseForms
	w.Logger = r.logger
	return w.Walk(pages...)
}

// edit computes the new content stream of one container.
func (r *run) edit(page, c document.Container, data []byte) ([]byte, error) {
	in := interp.New(r.fonts(c))
	in.Logger = r.logger

	var tracker state.Tracker
	if r.opts.NewTracker != nil {
		tracker = r.opts.NewTracker()
	}

	e := editor.New(in.All(data), r.handler, &editor.Options{
		Optimize:  r.opts.Optimize,
		Tracker:   tracker,
		Container: c,
		Page:      page,
		Document:  r.doc,
		Logger:    r.logger,
	})
	return e.Process()
}

// fonts returns a font resolver for the /Font resources of c.
func (r *run) fonts(c document.Container) interp.FontResolver {
	res, err := document.Resources(r.doc, c)
	if err != nil {
		return nil
	}
	fonts, err := document.GetDict(r.doc, res["Font"])
	if err != nil || fonts == nil {
		return nil
	}

	cache := make(map[object.Name]metrics.Font)
	return func(name object.Name) metrics.Font {
		if f, ok := cache[name]; ok {
			return f
		}
		fontDict, ok := fonts[name]
		if !ok {
			return nil
		}
		f, err := metrics.FromDict(r.doc.Resolve, fontDict)
		if err != nil {
			r.logger.Debug("using approximate font metrics",
				slog.String("name", string(name)),
				slog.Any("err", err))
		}
		cache[name] = f
		return f
	}
}
