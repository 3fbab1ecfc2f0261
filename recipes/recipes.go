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

// Package recipes provides ready-made handlers for common content stream
// edits.
//
// Every constructor returns a fresh [registry.Registry].  Recipes which
// keep state between instructions, like [Redact] and [SimplifyPaths], must
// not be shared between goroutines.
package recipes

import (
	"errors"
	"fmt"

	"github.com/qooxzuub/pdfbeaver/content"
	"github.com/qooxzuub/pdfbeaver/registry"
)

// Params holds the parameters of the recipes which can be selected by
// name.  Fields which a recipe does not use are ignored.
type Params struct {
	Factor  float64 // darken
	Target  string  // redact
	Preview bool    // redact
	Epsilon float64 // simplify
}

// Default parameter values, used for zero fields of [Params].
const (
	DefaultFactor  = 0.5
	DefaultEpsilon = 2.0
)

// Names lists the recipes known to [New].
var Names = []string{"identity", "darken", "darkmode", "redact", "simplify"}

// ErrUnknown is returned by [New] for recipe names not in [Names].
var ErrUnknown = errors.New("unknown recipe")

// New returns the recipe with the given name.
func New(name string, p Params) (*registry.Registry, error) {
	switch name {
	case "identity":
		return Identity(), nil
	case "darken":
		if p.Factor == 0 {
			p.Factor = DefaultFactor
		}
		if p.Factor < 0 {
			return nil, fmt.Errorf("darken: invalid factor %g", p.Factor)
		}
		return Darken(p.Factor), nil
	case "darkmode":
		return DarkMode(), nil
	case "redact":
		if p.Target == "" {
			return nil, errors.New("redact: missing target")
		}
		return Redact(p.Target, p.Preview), nil
	case "simplify":
		if p.Epsilon == 0 {
			p.Epsilon = DefaultEpsilon
		}
		if p.Epsilon < 0 {
			return nil, fmt.Errorf("simplify: invalid epsilon %g", p.Epsilon)
		}
		return SimplifyPaths(p.Epsilon), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknown, name)
}

// Identity returns an empty registry.  Processing with it only applies the
// optimizer.
func Identity() *registry.Registry {
	return registry.New()
}

// register attaches fn to ops.  The parameter lists used in this package
// are fixed, so a failure is a programming error.
func register(r *registry.Registry, fn registry.Func, params []registry.Param, ops ...content.OpName) {
	if err := r.Register(ops...)(fn, params...); err != nil {
		panic(err)
	}
}
