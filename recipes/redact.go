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
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/internal/float"
	"github.com/qooxzuub/pdfbeaver/object"
	"github.com/qooxzuub/pdfbeaver/registry"
	"github.com/qooxzuub/pdfbeaver/state"
)

// Redact removes text instructions containing target from the content
// stream, and covers the place where the text was with gray rectangles.
// The redacted text is replaced by a spacer TJ instruction of the same
// width, so the text which follows does not move.
//
// Every text showing instruction is preceded by an explicit Tm with its
// original text matrix, and all Td instructions are removed.
//
// In preview mode the text is kept and the rectangles are only stroked.
//
// Text is matched after decoding the strings as Windows-1252.  This is
// only approximately right for most fonts.
func Redact(target string, preview bool) *registry.Registry {
	rd := &redactor{
		target:  norm.NFC.String(target),
		preview: preview,
	}

	r := registry.New()
	register(r, func(*registry.Args) (any, error) {
		rd.rects = rd.rects[:0]
		return nil, nil
	}, nil, registry.StreamStart)
	register(r, func(*registry.Args) (any, error) {
		return nil, nil
	}, nil, content.OpTextMoveOffset)
	register(r, rd.show,
		[]registry.Param{registry.ParamOperands, registry.ParamContext},
		content.OpTextShow, content.OpTextShowArray)
	register(r, rd.draw, nil, registry.StreamEnd)
	return r
}

type redactor struct {
	target  string
	preview bool
	rects   [][4]float64
}

func (rd *redactor) show(a *registry.Args) (any, error) {
	pre, post := a.Context.Pre, a.Context.Post
	if pre == nil || post == nil {
		return registry.PassThrough, nil
	}
	ts := pre.Text

	var text any = content.Original
	if len(a.Operands) > 0 && strings.Contains(decode(a.Operands[0]), rd.target) {
		start, end := pre.Position(), post.Position()
		width := math.Abs(end.X - start.X)

		if !rd.preview {
			if spacer, ok := spacerTJ(width, ts); ok {
				text = spacer
			}
		}
		rd.rects = append(rd.rects, [4]float64{
			start.X,
			start.Y - 0.2*ts.FontSize,
			width,
			ts.FontSize,
		})
	}
	return []any{content.T(ts.Matrix, content.OpTextSetMatrix), text}, nil
}

func (rd *redactor) draw(*registry.Args) (any, error) {
	if len(rd.rects) == 0 {
		return nil, nil
	}
	setColor, paint := content.OpSetFillGray, content.OpFill
	if rd.preview {
		setColor, paint = content.OpSetStrokeGray, content.OpCloseAndStroke
	}

	res := []any{content.T(0.5, setColor)}
	for _, rect := range rd.rects {
		res = append(res, content.T(rect[:], content.OpRectangle))
	}
	res = append(res, paint)
	rd.rects = rd.rects[:0]
	return res, nil
}

// spacerTJ returns a TJ instruction which moves the text position by
// width, without showing any glyphs.
func spacerTJ(width float64, ts state.TextState) (content.Operator, bool) {
	scale := ts.FontSize * ts.HorizontalScaling / 100
	if scale == 0 {
		return content.Operator{}, false
	}
	kern := float.Round(-width/scale*1000, 4)
	return content.Op(content.OpTextShowArray, object.Array{object.Real(kern)}), true
}

// decode returns the text of a string or of the strings in a TJ array.
func decode(obj object.Object) string {
	var raw []byte
	switch x := obj.(type) {
	case object.String:
		raw = x
	case object.Array:
		for _, elem := range x {
			if s, ok := elem.(object.String); ok {
				raw = append(raw, s...)
			}
		}
	}
	text, err := charmap.Windows1252.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return norm.NFC.String(string(text))
}
