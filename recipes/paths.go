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
	"math"

	"seehuhn.de/go/geom/vec"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/object"
	"github.com/qooxzuub/pdfbeaver/registry"
)

// paintOps end a path.
var paintOps = []content.OpName{
	content.OpStroke, content.OpCloseAndStroke,
	content.OpFill, content.OpFillCompat, content.OpFillEvenOdd,
	content.OpFillAndStroke, content.OpFillAndStrokeEvenOdd,
	content.OpCloseFillAndStroke, content.OpCloseFillAndStrokeEvenOdd,
	content.OpEndPath,
}

// segmentOps continue a path without being simplified.  The buffered
// points must be written before them.
var segmentOps = []content.OpName{
	content.OpCurveTo, content.OpCurveToV, content.OpCurveToY,
	content.OpClosePath, content.OpRectangle,
	content.OpClipNonZero, content.OpClipEvenOdd,
}

// SimplifyPaths reduces the number of points of polygonal paths, using the
// Ramer-Douglas-Peucker algorithm.  Points are removed if they are closer
// than epsilon to the simplified path.
//
// Only runs of m and l instructions are simplified.  A run ends at the
// next path segment of another kind, or when the path is painted.
// Instructions with invalid operands are copied unchanged.
func SimplifyPaths(epsilon float64) *registry.Registry {
	s := &simplifier{epsilon: epsilon}

	r := registry.New()
	register(r, func(*registry.Args) (any, error) {
		s.points = s.points[:0]
		return nil, nil
	}, nil, registry.StreamStart)

	register(r, func(a *registry.Args) (any, error) {
		res := s.flush()
		p, ok := point(a.Operands)
		if !ok {
			return append(res, content.Raw(a.Raw)), nil
		}
		s.points = append(s.points, p)
		return res, nil
	}, []registry.Param{registry.ParamOperands, registry.ParamRawBytes}, content.OpMoveTo)

	register(r, func(a *registry.Args) (any, error) {
		if len(s.points) == 0 {
			return content.Raw(a.Raw), nil
		}
		if p, ok := point(a.Operands); ok {
			s.points = append(s.points, p)
		}
		return nil, nil
	}, []registry.Param{registry.ParamOperands, registry.ParamRawBytes}, content.OpLineTo)

	register(r, func(a *registry.Args) (any, error) {
		return append(s.flush(), a.Op), nil
	}, []registry.Param{registry.ParamOp}, paintOps...)

	register(r, func(*registry.Args) (any, error) {
		return append(s.flush(), content.Original), nil
	}, nil, segmentOps...)

	// a path left open at the end of the stream is written out as is
	register(r, func(*registry.Args) (any, error) {
		return s.flush(), nil
	}, nil, registry.StreamEnd)
	return r
}

type simplifier struct {
	epsilon float64
	points  []vec.Vec2
}

// flush returns the instructions for the simplified buffered path.
func (s *simplifier) flush() []any {
	if len(s.points) == 0 {
		return []any{}
	}
	path := simplify(s.points, s.epsilon)
	res := make([]any, 0, len(path))
	for i, p := range path {
		op := content.OpLineTo
		if i == 0 {
			op = content.OpMoveTo
		}
		res = append(res, content.T([]float64{p.X, p.Y}, op))
	}
	s.points = s.points[:0]
	return res
}

func point(args []object.Object) (vec.Vec2, bool) {
	if len(args) != 2 {
		return vec.Vec2{}, false
	}
	x, err := object.GetNumber(args[0])
	if err != nil {
		return vec.Vec2{}, false
	}
	y, err := object.GetNumber(args[1])
	if err != nil {
		return vec.Vec2{}, false
	}
	return vec.Vec2{X: x, Y: y}, true
}

// simplify applies the Ramer-Douglas-Peucker algorithm to a polyline.
// The first and last point are always kept.
func simplify(points []vec.Vec2, epsilon float64) []vec.Vec2 {
	if len(points) < 3 {
		return append([]vec.Vec2(nil), points...)
	}

	last := len(points) - 1
	var dMax float64
	idx := 0
	for i := 1; i < last; i++ {
		d := lineDistance(points[i], points[0], points[last])
		if d > dMax {
			idx, dMax = i, d
		}
	}
	if dMax <= epsilon {
		return []vec.Vec2{points[0], points[last]}
	}

	left := simplify(points[:idx+1], epsilon)
	right := simplify(points[idx:], epsilon)
	return append(left[:len(left)-1], right...)
}

// lineDistance returns the distance of p from the line through a and b.
// If a and b coincide, this is the distance between p and a.
func lineDistance(p, a, b vec.Vec2) float64 {
	if a == b {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	dx, dy := b.X-a.X, b.Y-a.Y
	return math.Abs(dy*p.X-dx*p.Y+b.X*a.Y-b.Y*a.X) / math.Hypot(dx, dy)
}
