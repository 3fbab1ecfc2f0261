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

package recipes

import (
	"fmt"
	"math"
	"slices"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/document"
	"github.com/qooxzuub/pdfbeaver/object"
	"github.com/qooxzuub/pdfbeaver/registry"
)

// colorOps are the operators which set a gray or RGB colour.
var colorOps = []content.OpName{
	content.OpSetStrokeRGB, content.OpSetFillRGB,
	content.OpSetStrokeGray, content.OpSetFillGray,
}

// Darken scales all gray and RGB colours by factor.  Colours with all
// components equal to 1 (white) are left unchanged.
func Darken(factor float64) *registry.Registry {
	r := registry.New()
	register(r, func(a *registry.Args) (any, error) {
		x, ok := components(a.Operands)
		if !ok || slices.Min(x) == 1 {
			return registry.PassThrough, nil
		}
		for i := range x {
			x[i] *= factor
		}
		return content.T(x, a.Op), nil
	}, []registry.Param{registry.ParamOperands, registry.ParamOp}, colorOps...)
	return r
}

// DarkMode paints a black background behind every page and inverts all
// gray and RGB colours.
func DarkMode() *registry.Registry {
	r := registry.New()
	register(r, func(a *registry.Args) (any, error) {
		if a.Container == nil || !a.Container.IsPage() {
			return nil, nil
		}
		box, err := mediaBox(a.Document, a.Container)
		if err != nil {
			return nil, err
		}
		rect := []float64{
			box[0], box[1],
			math.Abs(box[2] - box[0]), math.Abs(box[3] - box[1]),
		}
		return []any{
			content.T(0, content.OpSetFillGray),
			content.T(rect, content.OpRectangle),
			content.OpFill,
			content.T(1, content.OpSetFillGray),
			content.T(1, content.OpSetStrokeGray),
		}, nil
	}, []registry.Param{registry.ParamContainer, registry.ParamDocument}, registry.StreamStart)

	register(r, func(a *registry.Args) (any, error) {
		x, ok := components(a.Operands)
		if !ok {
			return registry.PassThrough, nil
		}
		for i := range x {
			x[i] = 1 - x[i]
		}
		return content.T(x, a.Op), nil
	}, []registry.Param{registry.ParamOperands, registry.ParamOp}, colorOps...)
	return r
}

// components returns the operands as numbers.
func components(args []object.Object) ([]float64, bool) {
	if len(args) == 0 {
		return nil, false
	}
	x := make([]float64, len(args))
	for i, arg := range args {
		v, err := object.GetNumber(arg)
		if err != nil {
			return nil, false
		}
		x[i] = v
	}
	return x, true
}

// mediaBox returns the /MediaBox of a page, following the /Parent chain
// for inherited values.
func mediaBox(doc document.Document, page document.Container) ([4]float64, error) {
	var box [4]float64
	dict := page.Dict()
	for depth := 0; dict != nil && depth < maxParentDepth; depth++ {
		obj, err := doc.Resolve(dict["MediaBox"])
		if err != nil {
			return box, err
		}
		if arr, ok := obj.(object.Array); ok {
			if len(arr) != 4 {
				return box, fmt.Errorf("MediaBox: expected 4 elements, got %d", len(arr))
			}
			for i, elem := range arr {
				x, err := object.GetNumber(elem)
				if err != nil {
					return box, fmt.Errorf("MediaBox: %w", err)
				}
				box[i] = x
			}
			return box, nil
		}
		dict, err = document.GetDict(doc, dict["Parent"])
		if err != nil {
			return box, err
		}
	}
	return box, fmt.Errorf("page %s: missing MediaBox", page.Ref())
}

const maxParentDepth = 64
