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

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/qooxzuub/pdfbeaver"
	"github.com/qooxzuub/pdfbeaver/recipes"
	"github.com/qooxzuub/pdfbeaver/registry"
)

// config is the contents of a recipe file.
//
//	pages: 1,3-5
//	steps:
//	  - recipe: redact
//	    target: Secret
//	  - recipe: darken
//	    factor: 0.7
type config struct {
	Pages string `yaml:"pages"`
	Steps []step `yaml:"steps"`
}

type step struct {
	Recipe  string  `yaml:"recipe"`
	Factor  float64 `yaml:"factor"`
	Target  string  `yaml:"target"`
	Preview bool    `yaml:"preview"`
	Epsilon float64 `yaml:"epsilon"`
}

func readConfig(fname string) (*config, error) {
	data, err := os.ReadFile(fname)
	if err != nil {
		return nil, err
	}
	return parseConfig(data)
}

func parseConfig(data []byte) (*config, error) {
	cfg := &config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("recipe file: %w", err)
	}
	if len(cfg.Steps) == 0 {
		return nil, errors.New("recipe file: no steps")
	}
	for i, s := range cfg.Steps {
		if _, err := s.registry(); err != nil {
			return nil, fmt.Errorf("recipe file: step %d: %w", i+1, err)
		}
	}
	return cfg, nil
}

// registry returns a fresh registry for the step.  Recipes keep state,
// so every file needs its own.
func (s step) registry() (*registry.Registry, error) {
	return recipes.New(s.Recipe, recipes.Params{
		Factor:  s.Factor,
		Target:  s.Target,
		Preview: s.Preview,
		Epsilon: s.Epsilon,
	})
}

// parsePages converts a list of page numbers and ranges, like "1,3-5",
// into a selection.  Page numbers start at 1.  An empty string selects
// all pages.
func parsePages(list string) (pdfbeaver.Selection, error) {
	list = strings.TrimSpace(list)
	if list == "" {
		return pdfbeaver.All(), nil
	}

	var idx []int
	for part := range strings.SplitSeq(list, ",") {
		part = strings.TrimSpace(part)
		from, to, isRange := strings.Cut(part, "-")
		first, err := strconv.Atoi(from)
		if err != nil || first < 1 {
			return nil, fmt.Errorf("invalid page number %q", part)
		}
		last := first
		if isRange {
			last, err = strconv.Atoi(to)
			if err != nil || last < first {
				return nil, fmt.Errorf("invalid page range %q", part)
			}
		}
		for p := first; p <= last; p++ {
			idx = append(idx, p-1)
		}
	}
	return pdfbeaver.Index(idx...), nil
}
