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

	"github.com/qooxzuub/pdfbeaver/object"
)

// Consolidate joins the segments of a content stream which is split over
// several streams.  A single space is inserted after segments which do not
// end in white space, and white space at both ends of the result is
// removed.
func Consolidate(segments ...[]byte) []byte {
	var buf bytes.Buffer
	for _, seg := range segments {
		if len(seg) == 0 {
			continue
		}
		buf.Write(seg)
		if !object.IsSpace(seg[len(seg)-1]) {
			buf.WriteByte(' ')
		}
	}
	return bytes.Trim(buf.Bytes(), whiteSpace)
}

const whiteSpace = "\x00\t\n\f\r "
