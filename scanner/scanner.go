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

// Package scanner breaks content streams into instructions, keeping track
// of the bytes each instruction was read from.
package scanner

import (
	"bytes"
	"errors"
	"io"
	"iter"
	"math"
	"strconv"

	"github.com/qooxzuub/pdfbeaver/object"
)

// Token is one instruction of a content stream.
type Token struct {
	// Op is the name of the operator.
	Op string

	// Args holds the operands, in stream order.  Inline images are reported
	// as a single BI token with one *object.InlineImage operand.
	Args []object.Object

	// Raw is the input from the end of the previous instruction up to and
	// including the operator keyword.  Concatenating Raw for all tokens
	// gives back the scanned input, except for any trailing bytes after the
	// last operator.
	Raw []byte

	// Start is the offset of the first byte of the instruction's first
	// token within the input.  End is the offset just past the operator.
	Start, End int
}

// A Scanner breaks a content stream into tokens.
//
// Parse errors are ignored as much as possible.
type Scanner struct {
	data  []byte
	pos   int
	end   int
	stack []*scanStackFrame
	args  []object.Object
}

type scanStackFrame struct {
	data   []object.Object
	isDict bool
}

// New returns a new scanner for the given content stream bytes.
func New(data []byte) *Scanner {
	return &Scanner{data: data}
}

// Next returns the next instruction.  At the end of the input, io.EOF is
// returned.
func (s *Scanner) Next() (*Token, error) {
	prevEnd := s.pos
	start := -1

	for {
		tokStart, obj, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		if start < 0 {
			start = tokStart
		}

		switch obj {
		case operator("<<"):
			s.stack = append(s.stack, &scanStackFrame{isDict: true})
			continue
		case operator(">>"):
			if len(s.stack) == 0 || !s.stack[len(s.stack)-1].isDict {
				// unexpected '>>'
				continue
			}
			entry := s.stack[len(s.stack)-1]
			s.stack = s.stack[:len(s.stack)-1]
			obj = makeDict(entry.data)
		case operator("["):
			s.stack = append(s.stack, &scanStackFrame{})
			continue
		case operator("]"):
			if len(s.stack) == 0 || s.stack[len(s.stack)-1].isDict {
				// unexpected ']'
				continue
			}
			obj = object.Array(s.stack[len(s.stack)-1].data)
			s.stack = s.stack[:len(s.stack)-1]
		}

		if len(s.stack) > 0 { // we are inside a dict or array
			s.stack[len(s.stack)-1].data = append(s.stack[len(s.stack)-1].data, obj)
			continue
		}

		op, isOp := obj.(operator)
		if !isOp {
			s.args = append(s.args, obj)
			continue
		}

		tok := &Token{
			Op:    string(op),
			Args:  s.args,
			Start: start,
		}
		s.args = nil

		if op == "BI" {
			// A truncated image extends to the end of the input.
			img, _ := s.readInlineImage()
			tok.Args = append(tok.Args, img)
		}

		tok.End = s.pos
		tok.Raw = s.data[prevEnd:s.pos]
		s.end = s.pos
		return tok, nil
	}
}

// Rest returns the input following the last instruction returned by
// [Scanner.Next].  After Next has returned io.EOF, this is the part of the
// input which does not form a complete instruction.
func (s *Scanner) Rest() []byte {
	return s.data[s.end:]
}

// All returns an iterator over the remaining instructions.
func (s *Scanner) All() iter.Seq2[*Token, error] {
	return func(yield func(*Token, error) bool) {
		for {
			tok, err := s.Next()
			if err == io.EOF {
				return
			}
			if !yield(tok, err) || err != nil {
				return
			}
		}
	}
}

func makeDict(data []object.Object) object.Dict {
	dict := object.Dict{}
	for i := 0; i+1 < len(data); i += 2 {
		key, ok := data[i].(object.Name)
		if !ok {
			// invalid key
			continue
		}
		val := data[i+1]
		if val == nil {
			continue
		}
		dict[key] = val
	}
	return dict
}

// nextToken returns the next token together with its start offset.
func (s *Scanner) nextToken() (int, object.Object, error) {
	s.skipWhiteSpace()
	if s.pos >= len(s.data) {
		return s.pos, nil, io.EOF
	}
	start := s.pos
	bb := s.data[s.pos:min(s.pos+2, len(s.data))]

	switch {
	case bb[0] == '/':
		s.pos++
		return start, s.readName(), nil
	case bb[0] == '(':
		s.pos++
		str, err := s.readString()
		if err != nil {
			// an unterminated string swallows the rest of the input
			return start, nil, io.EOF
		}
		return start, str, nil
	case string(bb) == "<<":
		s.pos += 2
		return start, operator("<<"), nil
	case bb[0] == '<':
		s.pos++
		return start, s.readHexString(), nil
	case string(bb) == ">>":
		s.pos += 2
		return start, operator(">>"), nil
	}

	s.pos++
	if !isRegular(bb[0]) {
		return start, operator(bb[:1]), nil
	}
	for s.pos < len(s.data) && isRegular(s.data[s.pos]) {
		s.pos++
	}
	opBytes := s.data[start:s.pos]

	if x := parseNumber(opBytes); x != nil {
		return start, x, nil
	}
	switch string(opBytes) {
	case "false":
		return start, object.Bool(false), nil
	case "true":
		return start, object.Bool(true), nil
	case "null":
		return start, nil, nil
	}
	return start, operator(opBytes), nil
}

// readString reads a PDF string (not including the leading parenthesis).
// An unterminated string extends to the end of the input.
func (s *Scanner) readString() (object.String, error) {
	var res []byte
	bracketLevel := 1
	ignoreLF := false
	for s.pos < len(s.data) {
		b := s.data[s.pos]
		s.pos++
		if ignoreLF && b == 10 {
			ignoreLF = false
			continue
		}
		ignoreLF = false
		switch b {
		case '(':
			bracketLevel++
			res = append(res, b)
		case ')':
			bracketLevel--
			if bracketLevel == 0 {
				return object.String(res), nil
			}
			res = append(res, b)
		case '\\':
			if s.pos >= len(s.data) {
				return object.String(res), io.ErrUnexpectedEOF
			}
			b = s.data[s.pos]
			s.pos++
			switch b {
			case 'n':
				res = append(res, '\n')
			case 'r':
				res = append(res, '\r')
			case 't':
				res = append(res, '\t')
			case 'b':
				res = append(res, '\b')
			case 'f':
				res = append(res, '\f')
			case 10: // LF
				// ignore
			case 13: // CR or CR+LF
				ignoreLF = true
			case '0', '1', '2', '3', '4', '5', '6', '7': // octal
				oct := b - '0'
				for i := 0; i < 2 && s.pos < len(s.data); i++ {
					b = s.data[s.pos]
					if b < '0' || b > '7' {
						break
					}
					s.pos++
					oct = oct*8 + (b - '0')
				}
				res = append(res, oct)
			default: // includes '(', ')' and '\\'
				res = append(res, b)
			}
		default:
			res = append(res, b)
		}
	}
	return object.String(res), io.ErrUnexpectedEOF
}

// readHexString reads a hex string (not including the leading '<').
// Invalid characters are skipped.
func (s *Scanner) readHexString() object.String {
	var res []byte
	first := true
	var hi byte
	for s.pos < len(s.data) {
		b := s.data[s.pos]
		s.pos++
		if b == '>' {
			break
		}
		lo := hexDigit(b)
		if lo == 255 {
			continue
		}
		if first {
			hi = lo << 4
			first = false
		} else {
			res = append(res, hi|lo)
			first = true
		}
	}
	if !first {
		res = append(res, hi)
	}
	return object.String(res)
}

// readName reads a PDF name object (not including the leading slash).
func (s *Scanner) readName() object.Name {
	var name []byte
	for s.pos < len(s.data) {
		b := s.data[s.pos]
		if b == '#' && s.pos+2 < len(s.data) {
			high := hexDigit(s.data[s.pos+1])
			low := hexDigit(s.data[s.pos+2])
			if high != 255 && low != 255 {
				name = append(name, high<<4|low)
				s.pos += 3
				continue
			}
		}
		if !isRegular(b) {
			break
		}
		name = append(name, b)
		s.pos++
	}
	return object.Name(name)
}

// readInlineImage reads the image parameters and data following a BI
// operator, up to and including the EI operator.
func (s *Scanner) readInlineImage() (*object.InlineImage, error) {
	var kv []object.Object
	var stack []*scanStackFrame
	for {
		_, obj, err := s.nextToken()
		if err != nil {
			return &object.InlineImage{Dict: makeDict(kv)}, err
		}
		switch obj {
		case operator("ID"):
			if len(stack) == 0 {
				return s.readImageData(makeDict(kv))
			}
		case operator("["):
			stack = append(stack, &scanStackFrame{})
			continue
		case operator("]"):
			if len(stack) == 0 {
				continue
			}
			obj = object.Array(stack[len(stack)-1].data)
			stack = stack[:len(stack)-1]
		}
		if len(stack) > 0 {
			stack[len(stack)-1].data = append(stack[len(stack)-1].data, obj)
		} else {
			kv = append(kv, obj)
		}
	}
}

func (s *Scanner) readImageData(dict object.Dict) (*object.InlineImage, error) {
	// a single white-space character separates ID from the data
	if s.pos < len(s.data) && object.IsSpace(s.data[s.pos]) {
		s.pos++
	}
	img := &object.InlineImage{Dict: dict}

	dataStart := s.pos
	length := -1
	for _, key := range []object.Name{"L", "Length"} {
		if n, ok := dict[key].(object.Integer); ok && n >= 0 {
			length = int(n)
		}
	}
	if length >= 0 && dataStart+length <= len(s.data) {
		img.Data = s.data[dataStart : dataStart+length]
		s.pos = dataStart + length
		s.skipWhiteSpace()
		if bytes.HasPrefix(s.data[s.pos:], []byte("EI")) {
			s.pos += 2
			return img, nil
		}
		s.pos = dataStart
	}

	// Scan for EI surrounded by white space.
	for i := dataStart; i+2 <= len(s.data); i++ {
		if s.data[i] != 'E' || s.data[i+1] != 'I' {
			continue
		}
		if i > dataStart && !object.IsSpace(s.data[i-1]) {
			continue
		}
		if i+2 < len(s.data) && isRegular(s.data[i+2]) {
			continue
		}
		end := i
		if end > dataStart {
			end-- // white space before EI
		}
		img.Data = s.data[dataStart:end]
		s.pos = i + 2
		return img, nil
	}
	img.Data = s.data[dataStart:]
	s.pos = len(s.data)
	return img, errMissingEI
}

var errMissingEI = errors.New("inline image without EI")

// skipWhiteSpace skips all input (including comments) until a non-whitespace
// character is found.
func (s *Scanner) skipWhiteSpace() {
	for s.pos < len(s.data) {
		b := s.data[s.pos]
		if object.IsSpace(b) {
			s.pos++
		} else if b == '%' {
			for s.pos < len(s.data) && s.data[s.pos] != 10 && s.data[s.pos] != 13 {
				s.pos++
			}
		} else {
			break
		}
	}
}

func isRegular(c byte) bool {
	return !object.IsSpace(c) && !object.IsDelimiter(c)
}

func hexDigit(c byte) byte {
	if c >= '0' && c <= '9' {
		return c - '0'
	} else if c >= 'A' && c <= 'F' {
		return c - 'A' + 10
	} else if c >= 'a' && c <= 'f' {
		return c - 'a' + 10
	} else {
		return 255
	}
}

// parseNumber tries to interpret s as a number.
// The function returns [object.Integer] or [object.Real] in case s is a
// valid number, and nil otherwise.  Integers which do not fit into an int64
// are returned as reals.
func parseNumber(s []byte) object.Object {
	x, err := strconv.ParseInt(string(s), 10, 64)
	if err == nil {
		return object.Integer(x)
	}

	isSimple := len(s) > 0
	hasDigit := false
	for i, c := range s {
		if i == 0 && (c == '+' || c == '-') {
			continue
		}
		if c == '.' {
			continue
		}
		if c < '0' || c > '9' {
			isSimple = false
			break
		}
		hasDigit = true
	}

	if isSimple && hasDigit {
		y, err := strconv.ParseFloat(string(s), 64)
		if err == nil && !math.IsNaN(y) {
			return object.Real(y)
		}
		if errors.Is(err, strconv.ErrRange) {
			return object.Real(y)
		}
	}

	return nil
}

// operator is a PDF operator found in a content stream.
type operator string

// PDF implements the [object.Object] interface.
func (x operator) PDF(w io.Writer) error {
	_, err := w.Write([]byte(x))
	return err
}
