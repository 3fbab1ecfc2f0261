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

// Package pdfbeaver edits and optimizes PDF content streams.
//
// Handlers are registered for content stream operators.  When a page is
// processed, every instruction with a registered operator is passed to its
// handler, together with the graphics and text state before and after the
// instruction.  The handler returns the instructions which replace the
// original one.  All other instructions are copied to the output byte for
// byte.
//
// A handler which darkens all gray levels could look like this:
//
//	reg := registry.New()
//	err := reg.Register("g", "G")(func(a *registry.Args) (any, error) {
//		x, err := object.GetNumber(a.Operands[0])
//		if err != nil {
//			return registry.PassThrough, nil
//		}
//		return content.T(x/2, a.Op), nil
//	}, registry.ParamOperands, registry.ParamOp)
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = pdfbeaver.Process(doc, reg, nil, nil)
//
// Instructions which set the text matrix, the font and similar parameters
// are buffered, and runs of buffered instructions are optimized before
// they are written: dead stores are removed and absolute text positioning
// is replaced by relative moves where possible.  Optimization can be
// disabled using [Options].
//
// Form XObjects used by a page are processed recursively.
package pdfbeaver
