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

// Package registry maps content stream operators to handler functions.
//
// A [Registry] implements the [editor.Handler] interface.  Handler
// functions declare which values they need by listing parameter names at
// registration time; only these fields are set in the [Args] passed to
// the function.
package registry

import (
	"errors"
	"fmt"
	"iter"
	"slices"
	"strings"
	"sync"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/document"
	"github.com/qooxzuub/pdfbeaver/editor"
	"github.com/qooxzuub/pdfbeaver/object"
)

// Synthetic operators for handlers which run at the start and at the end
// of every content stream.
const (
	StreamStart = editor.StreamStart
	StreamEnd   = editor.StreamEnd
)

// PassThrough is a handler result which keeps the instruction unchanged.
var PassThrough = content.Unchanged

// Param names a value which can be passed to a handler function.
type Param string

// The allowed parameter names.  Several names refer to the same value.
const (
	ParamArgs      Param = "args"
	ParamArguments Param = "arguments"
	ParamOperands  Param = "operands"
	ParamContext   Param = "context"
	ParamRawBytes  Param = "raw_bytes"
	ParamOp        Param = "op"
	ParamOperator  Param = "operator"
	ParamContainer Param = "container"
	ParamPage      Param = "page"
	ParamPDF       Param = "pdf"
	ParamDocument  Param = "document"
)

var allowedParams = []Param{
	ParamArgs, ParamArguments, ParamContainer, ParamContext, ParamDocument,
	ParamOp, ParamOperands, ParamOperator, ParamPage, ParamPDF, ParamRawBytes,
}

// Args holds the values requested by a handler function.  Fields which
// were not requested are left at their zero value.
type Args struct {
	Operands  []object.Object
	Context   *editor.Context
	Raw       []byte
	Op        content.OpName
	Container document.Container
	Page      document.Container
	Document  document.Document
}

// Func is a handler function.  The result is normalized as described at
// [Registry.Handle].
type Func func(a *Args) (any, error)

// A Decorator attaches a handler function to the operators it was created
// for.  The params list the values the function needs.
type Decorator func(fn Func, params ...Param) error

// ConfigError indicates invalid configuration, detected before any
// content is processed.
type ConfigError struct {
	// Param is the offending parameter name, if the error was caused by
	// a handler registration.
	Param Param

	Err error
}

func (err *ConfigError) Error() string {
	if err.Param == "" {
		if err.Err == nil {
			return "invalid configuration"
		}
		return "invalid configuration: " + err.Err.Error()
	}
	names := make([]string, len(allowedParams))
	for i, p := range allowedParams {
		names[i] = string(p)
	}
	return fmt.Sprintf("parameter name %q not allowed, allowed names are: %s",
		err.Param, strings.Join(names, ", "))
}

func (err *ConfigError) Unwrap() error {
	return err.Err
}

// ErrNoOperators is returned when a handler is registered without any
// operators.
var ErrNoOperators = errors.New("no operators given")

type entry struct {
	fn   Func
	want uint16
}

// Registry maps operators to handler functions.
//
// A Registry can be used concurrently.
type Registry struct {
	mu       sync.RWMutex
	handlers map[content.OpName]entry
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{handlers: make(map[content.OpName]entry)}
}

// Default is the registry used by package-level registration helpers.
var Default = New()

// Register returns a [Decorator] for the given operators.  When a function
// is registered for an operator which already has a handler, the new
// function replaces the old one.
func (r *Registry) Register(ops ...content.OpName) Decorator {
	return func(fn Func, params ...Param) error {
		if len(ops) == 0 {
			return ErrNoOperators
		}
		if fn == nil {
			return errors.New("nil handler function")
		}
		var want uint16
		for _, p := range params {
			idx := slices.Index(allowedParams, p)
			if idx < 0 {
				return &ConfigError{Param: p}
			}
			want |= 1 << idx
		}

		r.mu.Lock()
		defer r.mu.Unlock()
		if r.handlers == nil {
			r.handlers = make(map[content.OpName]entry)
		}
		for _, op := range ops {
			r.handlers[op] = entry{fn: fn, want: want}
		}
		return nil
	}
}

// Unregister removes the handlers for the given operators.
func (r *Registry) Unregister(ops ...content.OpName) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, op := range ops {
		delete(r.handlers, op)
	}
}

// ModifiedOperators implements the [editor.Handler] interface.  The result
// is a new map, which the caller may modify.
func (r *Registry) ModifiedOperators() map[content.OpName]bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := make(map[content.OpName]bool, len(r.handlers))
	for op := range r.handlers {
		res[op] = true
	}
	return res
}

// Handle implements the [editor.Handler] interface.
//
// For operators without a handler, the result is the raw bytes of the
// instruction.  Otherwise the handler function is called and its result
// is turned into a list: nil gives an empty list, a []any is used as is,
// an iter.Seq[any] is collected, slices of instructions are expanded,
// and any other value becomes a list with one element.
func (r *Registry) Handle(op content.OpName, operands []object.Object, ctx *editor.Context, raw []byte) ([]any, error) {
	r.mu.RLock()
	h, ok := r.handlers[op]
	r.mu.RUnlock()
	if !ok {
		return []any{content.Raw(raw)}, nil
	}

	a := &Args{}
	if h.has(ParamArgs, ParamArguments, ParamOperands) {
		a.Operands = operands
	}
	if h.has(ParamContext) {
		a.Context = ctx
	}
	if h.has(ParamRawBytes) {
		a.Raw = raw
	}
	if h.has(ParamOp, ParamOperator) {
		a.Op = op
	}
	if ctx != nil {
		if h.has(ParamContainer) {
			a.Container = ctx.Container
		}
		if h.has(ParamPage) {
			a.Page = ctx.Page
		}
		if h.has(ParamPDF, ParamDocument) {
			a.Document = ctx.Document
		}
	}

	res, err := h.fn(a)
	if err != nil {
		return nil, err
	}
	return normalizeReturn(res), nil
}

func (h entry) has(params ...Param) bool {
	for _, p := range params {
		if h.want&(1<<slices.Index(allowedParams, p)) != 0 {
			return true
		}
	}
	return false
}

func normalizeReturn(res any) []any {
	switch x := res.(type) {
	case nil:
		return []any{}
	case []any:
		return x
	case iter.Seq[any]:
		return slices.Collect(x)
	case []content.Operator:
		return expand(x)
	case []content.Tuple:
		return expand(x)
	case []content.Item:
		return expand(x)
	case content.Stream:
		return expand([]content.Operator(x))
	}
	return []any{res}
}

func expand[T any](x []T) []any {
	res := make([]any, len(x))
	for i, v := range x {
		res[i] = v
	}
	return res
}
