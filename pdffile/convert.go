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

package pdffile

import (
	"seehuhn.de/go/pdf"

	"github.com/qooxzuub/pdfbeaver/object"
)

func toRef(ref object.Reference) pdf.Reference {
	return pdf.NewReference(ref.Number(), ref.Generation())
}

func fromRef(ref pdf.Reference) object.Reference {
	return object.NewReference(ref.Number(), ref.Generation())
}

// fromPDF converts a PDF object to the object model of the editor.
// References are kept as references.  Streams are converted without their
// data.  Values of unknown types are dropped.
func fromPDF(obj pdf.Object) object.Object {
	switch x := obj.(type) {
	case pdf.Boolean:
		return object.Bool(x)
	case pdf.Integer:
		return object.Integer(x)
	case pdf.Real:
		return object.Real(x)
	case pdf.Number:
		return object.Number(x)
	case pdf.String:
		return object.String(x)
	case pdf.Name:
		return object.Name(x)
	case pdf.Reference:
		return fromRef(x)
	case pdf.Array:
		res := make(object.Array, len(x))
		for i, elem := range x {
			res[i] = fromPDF(elem)
		}
		return res
	case pdf.Dict:
		return fromDict(x)
	case *pdf.Stream:
		return &object.Stream{Dict: fromDict(x.Dict)}
	}
	return nil
}

func fromDict(dict pdf.Dict) object.Dict {
	if dict == nil {
		return nil
	}
	res := make(object.Dict, len(dict))
	for key, val := range dict {
		if v := fromPDF(val); v != nil {
			res[object.Name(key)] = v
		}
	}
	return res
}
