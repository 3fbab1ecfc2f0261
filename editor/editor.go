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

// Package editor rewrites content streams.
//
// An [Editor] reads the instructions of one content stream, passes the
// instructions a [Handler] is interested in to the handler, and assembles
// the new content stream from the handler's results and the original bytes
// of all other instructions.  Runs of buffered instructions can be passed
// through the peephole optimizer before they are written.
package editor

import (
	"bytes"
	"fmt"
	"iter"
	"log/slog"

	"seehuhn.de/go/geom/vec"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/document"
	"github.com/qooxzuub/pdfbeaver/interp"
	"github.com/qooxzuub/pdfbeaver/object"
	"github.com/qooxzuub/pdfbeaver/optimize"
	"github.com/qooxzuub/pdfbeaver/state"
)

// Synthetic operators.  A handler registered for StreamStart is called once
// before the first instruction, a handler for StreamEnd once after the
// last.  Both are called with nil operands.
const (
	StreamStart content.OpName = "^"
	StreamEnd   content.OpName = "$"
)

// A Handler decides how instructions are rewritten.
type Handler interface {
	// ModifiedOperators returns the set of operators passed to Handle.
	ModifiedOperators() map[content.OpName]bool

	// Handle returns the replacement for one instruction.  Each element
	// of the result must be accepted by [content.Normalize], or be
	// [content.Original] to keep the instruction.
	Handle(op content.OpName, operands []object.Object, ctx *Context, raw []byte) ([]any, error)
}

// Context describes the situation in which a handler is called.
type Context struct {
	// Pre is the state before the instruction, Post the state after
	// baseline execution of the instruction.  Both are nil when the
	// StreamStart handler runs.
	Pre, Post *state.Snapshot

	Tracker state.Tracker

	// Container is the page or form XObject being edited.  Page is the
	// page which the top-level call started from.
	Container document.Container
	Page      document.Container
	Document  document.Document
}

// Options control an [Editor].
type Options struct {
	// Optimize enables the peephole optimizer for buffered instructions.
	Optimize bool

	// Tracker receives the state before each instruction.  If this is nil,
	// a [state.Basic] tracker is used.
	Tracker state.Tracker

	Container document.Container
	Page      document.Container
	Document  document.Document

	Logger *slog.Logger
}

// Editor rewrites one content stream.
type Editor struct {
	steps   iter.Seq2[*interp.Step, error]
	handler Handler
	opts    Options
	tracker state.Tracker
	logger  *slog.Logger

	handlerOps map[content.OpName]bool
	intercept  map[content.OpName]bool

	pending []content.Operator
	chunks  [][]byte
	pos     vec.Vec2
}

// New returns an editor which reads instructions from steps.
// If opts is nil, default options are used.
func New(steps iter.Seq2[*interp.Step, error], h Handler, opts *Options) *Editor {
	e := &Editor{
		steps:   steps,
		handler: h,
	}
	if opts != nil {
		e.opts = *opts
	}
	e.tracker = e.opts.Tracker
	if e.tracker == nil {
		e.tracker = state.NewBasic()
	}
	e.logger = e.opts.Logger
	if e.logger == nil {
		e.logger = slog.Default()
	}

	e.handlerOps = h.ModifiedOperators()
	e.intercept = make(map[content.OpName]bool, len(e.handlerOps)+len(optimize.RelevantOperators))
	for op := range e.handlerOps {
		e.intercept[op] = true
	}
	if e.opts.Optimize {
		for op := range optimize.RelevantOperators {
			e.intercept[op] = true
		}
	}
	return e
}

// Position returns the text cursor position, in the coordinate system of
// the container, after the most recently processed instruction.
func (e *Editor) Position() vec.Vec2 {
	return e.pos
}

// Process runs the editor and returns the new content stream.
//
// An error is returned if the handler fails, or if the handler returns a
// value which cannot be normalized.
func (e *Editor) Process() ([]byte, error) {
	e.pending = e.pending[:0]
	e.chunks = e.chunks[:0]
	e.pos = vec.Vec2{}

	if err := e.callSpecial(StreamStart, nil); err != nil {
		return nil, err
	}

	pre := state.NewSnapshot()
	for step, err := range e.steps {
		if err != nil {
			return nil, err
		}
		if err := e.processStep(step, pre); err != nil {
			return nil, err
		}
		if step.State != nil {
			pre = step.State
			e.pos = pre.Position()
		}
	}

	if err := e.callSpecial(StreamEnd, pre); err != nil {
		return nil, err
	}
	if err := e.flush(); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for _, chunk := range e.chunks {
		buf.Write(chunk)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (e *Editor) processStep(step *interp.Step, pre *state.Snapshot) error {
	e.tracker.SetState(pre)

	if !e.eligible(step) {
		if err := e.flush(); err != nil {
			return err
		}
		e.appendChunk(step.Raw)
		return nil
	}

	if !e.handlerOps[step.Operator] {
		e.pending = append(e.pending, content.Op(step.Operator, step.Operands...))
		return nil
	}
	return e.call(step.Operator, step.Operands, step.Raw, pre, step.State)
}

// eligible reports whether an instruction may be rewritten.  Instructions
// with numbers outside the range which can be represented safely, and
// instructions carrying inline image data, are always copied verbatim.
func (e *Editor) eligible(step *interp.Step) bool {
	if !e.intercept[step.Operator] {
		return false
	}
	for _, arg := range step.Operands {
		if _, isImage := arg.(*object.InlineImage); isImage {
			return false
		}
		if object.IsUnsafe(arg) {
			e.logger.Debug("copying instruction verbatim",
				slog.String("op", string(step.Operator)))
			return false
		}
	}
	return true
}

func (e *Editor) callSpecial(op content.OpName, s *state.Snapshot) error {
	if !e.handlerOps[op] {
		return nil
	}
	return e.call(op, nil, nil, s, s)
}

func (e *Editor) call(op content.OpName, operands []object.Object, raw []byte, pre, post *state.Snapshot) error {
	ctx := &Context{
		Pre:       pre,
		Post:      post,
		Tracker:   e.tracker,
		Container: e.opts.Container,
		Page:      e.opts.Page,
		Document:  e.opts.Document,
	}
	results, err := e.handler.Handle(op, operands, ctx, raw)
	if err != nil {
		return fmt.Errorf("%s handler: %w", op, err)
	}

	special := op == StreamStart || op == StreamEnd
	for _, res := range results {
		item, err := content.Normalize(res)
		if err != nil {
			return fmt.Errorf("%s handler: %w", op, err)
		}
		switch item.Kind {
		case content.KindOriginal:
			if !special {
				e.pending = append(e.pending, content.Op(op, operands...))
			}
		case content.KindRaw:
			if err := e.flush(); err != nil {
				return err
			}
			e.appendChunk(item.Raw)
		default:
			e.pending = append(e.pending, item.Op)
		}
	}
	return nil
}

func (e *Editor) flush() error {
	if len(e.pending) == 0 {
		return nil
	}
	ops := e.pending
	if e.opts.Optimize {
		ops = optimize.Ops(ops)
	}
	chunk, err := content.Format(ops)
	if err != nil {
		return err
	}
	e.appendChunk(chunk)
	e.pending = e.pending[:0]
	return nil
}

// appendChunk adds a piece of output.  A newline is inserted between
// chunks if this is needed to keep the last token of one chunk and the
// first token of the next apart.
func (e *Editor) appendChunk(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	if n := len(e.chunks); n > 0 {
		last := e.chunks[n-1]
		if !object.IsSpace(last[len(last)-1]) && !object.IsSpace(chunk[0]) {
			e.chunks = append(e.chunks, []byte{'\n'})
		}
	}
	e.chunks = append(e.chunks, chunk)
}
