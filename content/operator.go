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

package content

import (
	"bytes"
	"io"

	"github.com/qooxzuub/pdfbeaver/object"
)

// Operator represents a content stream instruction: an operator together
// with its operands.  The order of the operands is significant.
type Operator struct {
	Name OpName
	Args []object.Object
}

// Op is a convenience constructor for an [Operator].
func Op(name OpName, args ...object.Object) Operator {
	return Operator{Name: name, Args: args}
}

func (o Operator) String() string {
	buf := &bytes.Buffer{}
	_ = o.write(buf)
	return buf.String()
}

func (o Operator) write(w io.Writer) error {
	if o.Name == OpBeginInlineImage && len(o.Args) == 1 {
		if img, ok := o.Args[0].(*object.InlineImage); ok {
			return img.PDF(w)
		}
	}

	for _, arg := range o.Args {
		if err := object.Write(w, arg); err != nil {
			return err
		}
		if _, err := w.Write([]byte(" ")); err != nil {
			return err
		}
	}
	_, err := w.Write([]byte(o.Name))
	return err
}

// Stream is a sequence of content stream instructions.
type Stream []Operator

// Write writes the instructions to w in content stream format, one
// instruction per line.
func (s Stream) Write(w io.Writer) error {
	for _, op := range s {
		if err := op.write(w); err != nil {
			return err
		}
		if _, err := w.Write([]byte("\n")); err != nil {
			return err
		}
	}
	return nil
}

// Format returns the content stream representation of the instructions,
// separated by newlines.  Unlike [Stream.Write], no newline is added after
// the last instruction.
func Format(s []Operator) ([]byte, error) {
	buf := &bytes.Buffer{}
	for i, op := range s {
		if i > 0 {
			buf.WriteByte('\n')
		}
		if err := op.write(buf); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}
