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

package metrics

import (
	"errors"
	"fmt"

	"github.com/qooxzuub/pdfbeaver/object"
)

// FromDict returns the metrics for the font dictionary obj.
//
// The returned Font is never nil.  If the dictionary is malformed, a
// heuristic font is returned together with an error describing the
// problem, so that callers can log it and carry on.
func FromDict(resolve Resolver, obj object.Object) (Font, error) {
	if resolve == nil {
		resolve = identity
	}

	dict, err := getDict(resolve, obj)
	if err != nil {
		return Guess(""), err
	}
	base, _ := dict["BaseFont"].(object.Name)

	subtype, _ := dict["Subtype"].(object.Name)
	if subtype == "Type0" {
		f, err := compositeFromDict(resolve, dict)
		if err != nil {
			return Guess(string(base)), err
		}
		return f, nil
	}

	widths, err := getArray(resolve, dict["Widths"])
	if err != nil {
		return Guess(string(base)), err
	}
	if widths == nil {
		return Guess(string(base)), nil
	}

	res := &Simple{}
	if fc, err := getNumber(resolve, dict["FirstChar"]); err == nil {
		res.FirstChar = int(fc)
	}
	res.Widths = make([]float64, len(widths))
	for i, w := range widths {
		x, err := getNumber(resolve, w)
		if err != nil {
			return Guess(string(base)), fmt.Errorf("Widths[%d]: %w", i, err)
		}
		res.Widths[i] = x
	}
	if fd, err := getDict(resolve, dict["FontDescriptor"]); err == nil && fd != nil {
		if mw, err := getNumber(resolve, fd["MissingWidth"]); err == nil {
			res.MissingWidth = mw
		}
	}

	if subtype == "Type3" {
		// Type 3 widths are in glyph space, which need not be 1/1000 of
		// text space.
		fm, err := getArray(resolve, dict["FontMatrix"])
		if err == nil && len(fm) == 6 {
			if a, err := getNumber(resolve, fm[0]); err == nil {
				scale := a * 1000
				for i := range res.Widths {
					res.Widths[i] *= scale
				}
				res.MissingWidth *= scale
			}
		}
	}

	return res, nil
}

func compositeFromDict(resolve Resolver, dict object.Dict) (*Composite, error) {
	desc, err := getArray(resolve, dict["DescendantFonts"])
	if err != nil {
		return nil, err
	}
	if len(desc) == 0 {
		return nil, errors.New("missing DescendantFonts")
	}
	cidFont, err := getDict(resolve, desc[0])
	if err != nil {
		return nil, err
	}

	res := &Composite{
		Widths:       map[uint16]float64{},
		DefaultWidth: 1000,
	}
	if dw, err := getNumber(resolve, cidFont["DW"]); err == nil {
		res.DefaultWidth = dw
	}

	w, err := getArray(resolve, cidFont["W"])
	if err != nil {
		return nil, err
	}

	// The /W array has entries of the forms
	//   c [w1 w2 ... wn]
	//   cFirst cLast w
	for i := 0; i < len(w); {
		first, err := getNumber(resolve, w[i])
		if err != nil {
			return nil, fmt.Errorf("W[%d]: %w", i, err)
		}
		if i+1 >= len(w) {
			break
		}
		next, err := resolve(w[i+1])
		if err != nil {
			return nil, err
		}
		if list, ok := next.(object.Array); ok {
			for j, wj := range list {
				x, err := getNumber(resolve, wj)
				if err != nil {
					return nil, fmt.Errorf("W[%d][%d]: %w", i+1, j, err)
				}
				res.Widths[uint16(int(first)+j)] = x
			}
			i += 2
			continue
		}
		if i+2 >= len(w) {
			break
		}
		last, err := getNumber(resolve, next)
		if err != nil {
			return nil, fmt.Errorf("W[%d]: %w", i+1, err)
		}
		x, err := getNumber(resolve, w[i+2])
		if err != nil {
			return nil, fmt.Errorf("W[%d]: %w", i+2, err)
		}
		for cid := int(first); cid <= int(last) && cid <= 0xFFFF; cid++ {
			res.Widths[uint16(cid)] = x
		}
		i += 3
	}

	return res, nil
}

func identity(obj object.Object) (object.Object, error) {
	return obj, nil
}

func getDict(resolve Resolver, obj object.Object) (object.Dict, error) {
	obj, err := resolve(obj)
	if err != nil {
		return nil, err
	}
	switch x := obj.(type) {
	case nil:
		return nil, nil
	case object.Dict:
		return x, nil
	case *object.Stream:
		return x.Dict, nil
	default:
		return nil, fmt.Errorf("expected dictionary but got %T", obj)
	}
}

func getArray(resolve Resolver, obj object.Object) (object.Array, error) {
	obj, err := resolve(obj)
	if err != nil {
		return nil, err
	}
	switch x := obj.(type) {
	case nil:
		return nil, nil
	case object.Array:
		return x, nil
	default:
		return nil, fmt.Errorf("expected array but got %T", obj)
	}
}

func getNumber(resolve Resolver, obj object.Object) (float64, error) {
	obj, err := resolve(obj)
	if err != nil {
		return 0, err
	}
	return object.GetNumber(obj)
}
