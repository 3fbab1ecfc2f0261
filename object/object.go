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

// Package object implements the operand types which can occur in PDF
// content streams, together with the few container types needed to
// describe pages and form XObjects.
package object

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/qooxzuub/pdfbeaver/internal/float"
)

// Object represents an operand in a content stream, or a value stored in a
// document.  The basic types which implement this interface are [Array],
// [Bool], [Decimal], [Dict], [Integer], [Name], [Real], [Reference],
// [*Stream], [String] and [*InlineImage].  The PDF null object is
// represented by a nil Object.
type Object interface {
	// PDF writes the content stream representation of the object to w.
	PDF(w io.Writer) error
}

// Bool represents a boolean value.
type Bool bool

// PDF implements the [Object] interface.
func (x Bool) PDF(w io.Writer) error {
	var s string
	if x {
		s = "true"
	} else {
		s = "false"
	}
	_, err := w.Write([]byte(s))
	return err
}

// Integer represents an integer constant.
type Integer int64

// PDF implements the [Object] interface.
func (x Integer) PDF(w io.Writer) error {
	s := strconv.FormatInt(int64(x), 10)
	_, err := w.Write([]byte(s))
	return err
}

// Real represents a real number.
type Real float64

// PDF implements the [Object] interface.
func (x Real) PDF(w io.Writer) error {
	_, err := w.Write([]byte(float.Format(float64(x), -1)))
	return err
}

// Decimal is a fixed-precision decimal number, stored exactly as written.
// Use this type to emit a number with a specific textual form, for example
// "0.50" or "1.000".
type Decimal string

// PDF implements the [Object] interface.
func (x Decimal) PDF(w io.Writer) error {
	if _, err := strconv.ParseFloat(string(x), 64); err != nil {
		return fmt.Errorf("invalid decimal %q", string(x))
	}
	_, err := w.Write([]byte(x))
	return err
}

// Float returns the numeric value of x.
func (x Decimal) Float() (float64, error) {
	return strconv.ParseFloat(string(x), 64)
}

// String represents a byte string.  The character set encoding, if any, is
// determined by the font in use.
type String []byte

// PDF implements the [Object] interface.
func (x String) PDF(w io.Writer) error {
	l := []byte(x)

	level := 0
	for _, c := range l {
		if c == '(' {
			level++
		} else if c == ')' {
			level--
			if level < 0 {
				break
			}
		}
	}
	balanced := level == 0

	var funny []int
	for i, c := range l {
		if c < 32 || c == '\\' ||
			!balanced && (c == '(' || c == ')') {
			funny = append(funny, i)
		}
	}
	n := len(l)

	buf := &bytes.Buffer{}
	if 3*len(funny) <= n {
		buf.WriteString("(")
		pos := 0
		for _, i := range funny {
			if pos < i {
				buf.Write(l[pos:i])
			}
			switch c := l[i]; c {
			case '\r':
				buf.WriteString(`\r`)
			case '\n':
				buf.WriteString(`\n`)
			case '\t':
				buf.WriteString(`\t`)
			case '\b':
				buf.WriteString(`\b`)
			case '\f':
				buf.WriteString(`\f`)
			case '(':
				buf.WriteString(`\(`)
			case ')':
				buf.WriteString(`\)`)
			case '\\':
				buf.WriteString(`\\`)
			default:
				fmt.Fprintf(buf, `\%03o`, c)
			}
			pos = i + 1
		}
		if pos < n {
			buf.Write(l[pos:n])
		}
		buf.WriteString(")")
	} else {
		fmt.Fprintf(buf, "<%x>", l)
	}

	_, err := w.Write(buf.Bytes())
	return err
}

// Name represents a name object.  The value does not include the leading
// slash.
type Name string

// PDF implements the [Object] interface.
func (x Name) PDF(w io.Writer) error {
	buf := &bytes.Buffer{}
	buf.WriteByte('/')
	for _, c := range []byte(x) {
		if c < 0x21 || c > 0x7e || c == '#' || IsDelimiter(c) {
			fmt.Fprintf(buf, "#%02x", c)
		} else {
			buf.WriteByte(c)
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// Array represents an array of objects.
type Array []Object

func (x Array) String() string {
	return "<Array, " + strconv.Itoa(len(x)) + " elements>"
}

// PDF implements the [Object] interface.
func (x Array) PDF(w io.Writer) error {
	_, err := w.Write([]byte("["))
	if err != nil {
		return err
	}
	for i, val := range x {
		if i > 0 {
			_, err := w.Write([]byte(" "))
			if err != nil {
				return err
			}
		}
		err = Write(w, val)
		if err != nil {
			return err
		}
	}
	_, err = w.Write([]byte("]"))
	return err
}

// Dict represents a dictionary object.
type Dict map[Name]Object

func (x Dict) String() string {
	res := []string{}
	if tp, ok := x["Type"].(Name); ok {
		res = append(res, string(tp)+" Dict")
	} else {
		res = append(res, "Dict")
	}
	if len(x) != 1 {
		res = append(res, strconv.Itoa(len(x))+" entries")
	} else {
		res = append(res, "1 entry")
	}
	return "<" + strings.Join(res, ", ") + ">"
}

// PDF implements the [Object] interface.
//
// Keys are written in sorted order.  Entries with a nil value are omitted.
func (x Dict) PDF(w io.Writer) error {
	if x == nil {
		_, err := w.Write([]byte("null"))
		return err
	}

	keys := make([]Name, 0, len(x))
	for key, val := range x {
		if val == nil {
			continue
		}
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})

	_, err := w.Write([]byte("<<"))
	if err != nil {
		return err
	}
	for i, name := range keys {
		if i > 0 {
			if _, err := w.Write([]byte(" ")); err != nil {
				return err
			}
		}
		if err := name.PDF(w); err != nil {
			return err
		}
		if _, err := w.Write([]byte(" ")); err != nil {
			return err
		}
		if err := x[name].PDF(w); err != nil {
			return err
		}
	}
	_, err = w.Write([]byte(">>"))
	return err
}

// Reference identifies an indirect object in a document.
type Reference uint64

// NewReference returns a new reference to the object with the given number
// and generation.
func NewReference(number uint32, generation uint16) Reference {
	return Reference(uint64(number) | uint64(generation)<<32)
}

// Number returns the object number of the reference.
func (x Reference) Number() uint32 {
	return uint32(x)
}

// Generation returns the generation number of the reference.
func (x Reference) Generation() uint16 {
	return uint16(x >> 32)
}

func (x Reference) String() string {
	return fmt.Sprintf("%d %d R", x.Number(), x.Generation())
}

// PDF implements the [Object] interface.
func (x Reference) PDF(w io.Writer) error {
	_, err := w.Write([]byte(x.String()))
	return err
}

// Stream represents a stream object held in memory.  Data holds the decoded
// stream contents.
type Stream struct {
	Dict
	Data []byte
}

func (x *Stream) String() string {
	return fmt.Sprintf("<Stream, %d bytes>", len(x.Data))
}

// PDF implements the [Object] interface.
func (x *Stream) PDF(w io.Writer) error {
	if err := x.Dict.PDF(w); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\nstream\n")); err != nil {
		return err
	}
	if _, err := w.Write(x.Data); err != nil {
		return err
	}
	_, err := w.Write([]byte("\nendstream"))
	return err
}

// InlineImage is an image embedded directly in a content stream, between
// the BI and EI operators.  Dict holds the image parameters (using the
// abbreviated keys from the stream) and Data holds the bytes following the
// ID operator.
type InlineImage struct {
	Dict Dict
	Data []byte
}

func (x *InlineImage) String() string {
	return fmt.Sprintf("<InlineImage, %d bytes>", len(x.Data))
}

// PDF implements the [Object] interface.
// The output includes the BI, ID and EI operators.
func (x *InlineImage) PDF(w io.Writer) error {
	keys := make([]Name, 0, len(x.Dict))
	for key := range x.Dict {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})

	buf := &bytes.Buffer{}
	buf.WriteString("BI")
	for _, key := range keys {
		buf.WriteByte(' ')
		if err := key.PDF(buf); err != nil {
			return err
		}
		buf.WriteByte(' ')
		if err := Write(buf, x.Dict[key]); err != nil {
			return err
		}
	}
	buf.WriteString(" ID ")
	buf.Write(x.Data)
	buf.WriteString("\nEI")
	_, err := w.Write(buf.Bytes())
	return err
}

// Write writes the content stream representation of obj to w.
// A nil object is written as "null".
func Write(w io.Writer, obj Object) error {
	if obj == nil {
		_, err := w.Write([]byte("null"))
		return err
	}
	return obj.PDF(w)
}

// Format formats an object as a string, in the same way as it would be
// written to a content stream.
func Format(obj Object) string {
	buf := &bytes.Buffer{}
	err := Write(buf, obj)
	if err != nil {
		return fmt.Sprintf("<%v>", err)
	}
	return buf.String()
}

// IsSpace reports whether c is a white-space character in the PDF syntax.
func IsSpace(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

// IsDelimiter reports whether c is a delimiter character in the PDF syntax.
func IsDelimiter(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}
