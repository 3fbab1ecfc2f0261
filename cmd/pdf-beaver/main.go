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

// Pdf-beaver edits the content streams of PDF files.
//
// Usage:
//
//	pdf-beaver [flags] in.pdf out.pdf [in2.pdf out2.pdf ...]
//
// The edit is either one of the built-in recipes, selected with -recipe,
// or a list of recipe steps read from a YAML file given with -config.
// Several pairs of input and output files are processed concurrently.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/qooxzuub/pdfbeaver"
	"github.com/qooxzuub/pdfbeaver/pdffile"
	"github.com/qooxzuub/pdfbeaver/recipes"
)

func main() {
	recipe := flag.String("recipe", "identity", "recipe to apply: "+strings.Join(recipes.Names, ", "))
	configFile := flag.String("config", "", "read recipe steps from this YAML file")
	pages := flag.String("pages", "", "pages to process, e.g. 1,3-5 (default all)")
	noOptimize := flag.Bool("no-optimize", false, "disable the peephole optimizer")
	noRecurse := flag.Bool("no-recurse", false, "do not edit form XObjects")
	jobs := flag.Int("j", runtime.GOMAXPROCS(0), "number of files to process concurrently")
	verbose := flag.Bool("v", false, "log details about malformed content")
	logJSON := flag.Bool("log-json", false, "write log messages in JSON format")

	factor := flag.Float64("factor", recipes.DefaultFactor, "darken: colour scale factor")
	target := flag.String("target", "", "redact: text to remove")
	preview := flag.Bool("preview", false, "redact: only mark the text")
	epsilon := flag.Float64("epsilon", recipes.DefaultEpsilon, "simplify: tolerance in user space units")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 || len(args)%2 != 0 {
		fmt.Fprintln(os.Stderr, "error: expected pairs of input and output files")
		flag.Usage()
		os.Exit(1)
	}

	logger := newLogger(*verbose, *logJSON)

	cfg := &config{
		Pages: *pages,
		Steps: []step{{
			Recipe:  *recipe,
			Factor:  *factor,
			Target:  *target,
			Preview: *preview,
			Epsilon: *epsilon,
		}},
	}
	if *configFile != "" {
		fileCfg, err := readConfig(*configFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		if fileCfg.Pages == "" {
			fileCfg.Pages = *pages
		}
		cfg = fileCfg
	} else if _, err := cfg.Steps[0].registry(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	sel, err := parsePages(cfg.Pages)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	opts := pdfbeaver.DefaultOptions()
	opts.Optimize = !*noOptimize
	opts.RecurseForms = !*noRecurse
	opts.Logger = logger

	r := &runner{
		cfg:   cfg,
		sel:   sel,
		opts:  opts,
		total: len(args) / 2,
	}
	if !*verbose && term.IsTerminal(int(os.Stderr.Fd())) {
		r.progress = true
	}

	err = r.run(context.Background(), args, *jobs)
	if r.progress {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger(verbose, json bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	hOpts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(os.Stderr, hOpts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, hOpts))
}

type runner struct {
	cfg   *config
	sel   pdfbeaver.Selection
	opts  *pdfbeaver.Options
	total int

	progress bool
	mu       sync.Mutex
	done     int
}

// run processes the file pairs in args, with at most jobs files open at
// the same time.
func (r *runner) run(ctx context.Context, args []string, jobs int) error {
	g, ctx := errgroup.WithContext(ctx)
	if jobs > 0 {
		g.SetLimit(jobs)
	}
	for i := 0; i < len(args); i += 2 {
		in, out := args[i], args[i+1]
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.processFile(in, out); err != nil {
				return fmt.Errorf("%s: %w", in, err)
			}
			r.step()
			return nil
		})
	}
	return g.Wait()
}

func (r *runner) processFile(in, out string) error {
	fd, err := os.Open(in)
	if err != nil {
		return err
	}
	defer fd.Close()

	doc, err := pdffile.Open(fd)
	if err != nil {
		return err
	}
	defer doc.Close()

	logger := r.opts.Logger.With(slog.String("file", in))
	opts := *r.opts
	opts.Logger = logger
	for _, s := range r.cfg.Steps {
		reg, err := s.registry()
		if err != nil {
			return err
		}
		if err := pdfbeaver.Process(doc, reg, &opts, r.sel); err != nil {
			return fmt.Errorf("%s: %w", s.Recipe, err)
		}
	}

	w, err := os.Create(out)
	if err != nil {
		return err
	}
	if _, err := doc.WriteTo(w); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func (r *runner) step() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
	if r.progress {
		fmt.Fprintf(os.Stderr, "\r%d/%d files", r.done, r.total)
	}
}
