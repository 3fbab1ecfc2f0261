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

// Package interp runs the baseline interpretation of a content stream.
//
// The interpreter follows the graphics state and the text state through a
// stream and reports, for every instruction, the state after the
// instruction has been executed.  The state updates for the operators which
// move the text cursor relative to the line matrix, or by the width of the
// shown text, are taken from [state.Overrides].
package interp

import (
	"bytes"
	"errors"
	"fmt"
	"iter"
	"log/slog"

	"seehuhn.de/go/geom/matrix"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/metrics"
	"github.com/qooxzuub/pdfbeaver/object"
	"github.com/qooxzuub/pdfbeaver/scanner"
	"github.com/qooxzuub/pdfbeaver/state"
)

// Step is one instruction of a content stream, together with the state
// after the instruction.
type Step struct {
	Operator content.OpName
	Operands []object.Object

	// Raw is the input from the end of the previous instruction up to the
	// end of this one.
	Raw []byte

	// State is the snapshot after baseline execution of the instruction.
	State *state.Snapshot
}

// IsTrailer reports whether the step holds the bytes after the last
// complete instruction of the stream.  Such a step has no operator.
func (s *Step) IsTrailer() bool {
	return s.Operator == ""
}

// A FontResolver returns the metrics for the font resource with the given
// name.  It returns nil if the font cannot be found.
type FontResolver func(name object.Name) metrics.Font

// Interpreter runs the baseline interpretation of content streams.
type Interpreter struct {
	// Fonts is used to find the metrics when a font is selected using Tf.
	// If Fonts is nil, or returns nil, the metrics are guessed from the
	// resource name.
	Fonts FontResolver

	// Strict makes malformed operands of baseline operators an error.
	// Otherwise they are logged and the state is left unchanged.
	Strict bool

	Logger *slog.Logger

	cur   *state.Snapshot
	stack []*state.Snapshot
}

// New returns a new interpreter.
func New(fonts FontResolver) *Interpreter {
	return &Interpreter{Fonts: fonts}
}

// MalformedError indicates that the operands of an instruction could not be
// interpreted.
type MalformedError struct {
	Op  content.OpName
	Pos int
	Err error
}

func (err *MalformedError) Error() string {
	middle := ""
	if err.Err != nil {
		middle = ": " + err.Err.Error()
	}
	return fmt.Sprintf("malformed %q instruction%s (at byte %d)", err.Op, middle, err.Pos)
}

func (err *MalformedError) Unwrap() error {
	return err.Err
}

// All interprets data and yields one step per instruction.  If the stream
// ends with bytes which do not form a complete instruction, a final step
// with an empty operator holds these bytes.
//
// Errors are only reported in strict mode.  After an error, iteration can
// continue with the next instruction.
func (in *Interpreter) All(data []byte) iter.Seq2[*Step, error] {
	return func(yield func(*Step, error) bool) {
		in.Reset()
		s := scanner.New(data)
		for tok, err := range s.All() {
			if err != nil {
				yield(nil, err)
				return
			}
			op := content.OpName(tok.Op)
			doErr := in.Do(op, tok.Args)
			step := &Step{
				Operator: op,
				Operands: tok.Args,
				Raw:      tok.Raw,
				State:    in.cur.Clone(),
			}
			var stepErr error
			if doErr != nil && in.Strict {
				stepErr = &MalformedError{Op: op, Pos: tok.Start, Err: doErr}
			}
			if !yield(step, stepErr) {
				return
			}
		}

		rest := s.Rest()
		if len(bytes.TrimLeft(rest, " \t\r\n\f\x00")) > 0 {
			yield(&Step{Raw: rest, State: in.cur.Clone()}, nil)
		}
	}
}

// Reset returns the interpreter to the state at the start of a stream.
func (in *Interpreter) Reset() {
	in.cur = state.NewSnapshot()
	in.stack = in.stack[:0]
}

// State returns a copy of the current state.
func (in *Interpreter) State() *state.Snapshot {
	if in.cur == nil {
		in.Reset()
	}
	return in.cur.Clone()
}

// Do executes a single instruction.  The state is changed only if the
// instruction is well-formed.  Malformed instructions are logged and the
// error is returned.
func (in *Interpreter) Do(op content.OpName, args []object.Object) error {
	if in.cur == nil {
		in.Reset()
	}
	next := in.cur.Clone()
	err := in.apply(next, op, args)
	if err != nil {
		in.logger().Debug("ignoring malformed instruction",
			slog.String("op", string(op)),
			slog.Any("err", err))
		return err
	}
	in.cur = next
	return nil
}

func (in *Interpreter) logger() *slog.Logger {
	if in.Logger != nil {
		return in.Logger
	}
	return slog.Default()
}

func (in *Interpreter) apply(s *state.Snapshot, op content.OpName, args []object.Object) error {
	if f, ok := state.Overrides[op]; ok {
		return f(s, args)
	}

	getNum := func() (float64, error) {
		if len(args) == 0 {
			return 0, errMissingOperand
		}
		x, err := object.GetNumber(args[0])
		args = args[1:]
		return x, err
	}
	getMatrix := func() (matrix.Matrix, error) {
		var m matrix.Matrix
		if len(args) < 6 {
			return m, errMissingOperand
		}
		for i := range m {
			x, err := getNum()
			if err != nil {
				return m, err
			}
			m[i] = x
		}
		return m, nil
	}

	// Excess operands at the start are ignored.
	switch op {
	case content.OpPushGraphicsState:
		in.stack = append(in.stack, s.Clone())
		return nil
	case content.OpPopGraphicsState:
		if len(in.stack) == 0 {
			return errors.New("unbalanced Q")
		}
		// The text matrix is not part of the graphics state.
		tm, offs := s.Text.Matrix, s.Text.LineOffset
		*s = *in.stack[len(in.stack)-1]
		s.Text.Matrix, s.Text.LineOffset = tm, offs
		in.stack = in.stack[:len(in.stack)-1]
		return nil
	case content.OpTextBegin:
		s.Text.SetMatrix(matrix.Identity)
		return nil
	case content.OpTextEnd:
		return nil
	}

	want := arity[op]
	if want == 0 {
		return nil
	}
	if len(args) < want {
		return errMissingOperand
	}
	args = args[len(args)-want:]

	switch op {
	case content.OpTransform:
		m, err := getMatrix()
		if err != nil {
			return err
		}
		s.Graphics.CTM = m.Mul(s.Graphics.CTM)
	case content.OpTextSetMatrix:
		m, err := getMatrix()
		if err != nil {
			return err
		}
		s.Text.SetMatrix(m)
	case content.OpTextSetCharacterSpacing:
		x, err := getNum()
		if err != nil {
			return err
		}
		s.Text.CharSpacing = x
	case content.OpTextSetWordSpacing:
		x, err := getNum()
		if err != nil {
			return err
		}
		s.Text.WordSpacing = x
	case content.OpTextSetHorizontalScaling:
		x, err := getNum()
		if err != nil {
			return err
		}
		s.Text.HorizontalScaling = x
	case content.OpTextSetLeading:
		x, err := getNum()
		if err != nil {
			return err
		}
		s.Text.Leading = x
	case content.OpTextSetRise:
		x, err := getNum()
		if err != nil {
			return err
		}
		s.Text.Rise = x
	case content.OpTextSetRenderingMode:
		x, ok := args[0].(object.Integer)
		if !ok {
			return fmt.Errorf("expected integer but got %T", args[0])
		}
		s.Text.RenderMode = int(x)
	case content.OpTextSetFont:
		name, ok := args[0].(object.Name)
		if !ok {
			return fmt.Errorf("expected font name but got %T", args[0])
		}
		args = args[1:]
		size, err := getNum()
		if err != nil {
			return err
		}
		s.Text.Font = name
		s.Text.FontSize = size
		s.Text.Metrics = in.metrics(name)
	}
	return nil
}

func (in *Interpreter) metrics(name object.Name) metrics.Font {
	if in.Fonts != nil {
		if f := in.Fonts(name); f != nil {
			return f
		}
	}
	return metrics.Guess(string(name))
}

// arity gives the number of operands of the baseline operators which are
// not handled by [state.Overrides].
var arity = map[content.OpName]int{
	content.OpTransform:                6,
	content.OpTextSetMatrix:            6,
	content.OpTextSetCharacterSpacing:  1,
	content.OpTextSetWordSpacing:       1,
	content.OpTextSetHorizontalScaling: 1,
	content.OpTextSetLeading:           1,
	content.OpTextSetRise:              1,
	content.OpTextSetRenderingMode:     1,
	content.OpTextSetFont:              2,
}

var errMissingOperand = errors.New("missing operand")
