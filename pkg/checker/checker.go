// Package checker provides the high-level API for checking SQL scripts for
// bare table references.
//
// A Checker runs the full pipeline per file: normalize (strip comments,
// pad structural tokens), render dbt-style template constructs, extract
// table references with the dialect grammar, and classify the references
// against the macro-produced set. Files are processed independently; a
// failure in one file never stops the batch.
//
// # Quick Start
//
//	c := checker.New(types.Dialect_ANSI)
//	result := c.CheckFiles(context.Background(), []string{"models/orders.sql"})
//	if !result.IsClean() {
//	    os.Exit(result.Status())
//	}
//
// Checker is safe for concurrent use by multiple goroutines.
package checker

import (
	"context"
	"log/slog"
	"os"

	"github.com/pkg/errors"
	"github.com/refguard/refguard/pkg/classifier"
	"github.com/refguard/refguard/pkg/extractor"
	"github.com/refguard/refguard/pkg/normalize"
	"github.com/refguard/refguard/pkg/templater"
	"github.com/refguard/refguard/pkg/types"
)

// Checker checks templated SQL scripts for bare table references.
type Checker struct {
	dialect types.Dialect
	opts    checkOptions
}

// New creates a new Checker for the given dialect.
func New(dialect types.Dialect, opts ...Option) *Checker {
	c := &Checker{dialect: dialect}
	for _, opt := range opts {
		opt(&c.opts)
	}
	return c
}

// CheckSQL runs the pipeline on a single script held in memory and returns
// the bare table references found. A template or grammar failure is
// returned as an error.
func (c *Checker) CheckSQL(sql string) ([]string, error) {
	normalized := normalize.Normalize(sql)

	rendered, err := templater.RenderWithResolver(normalized, c.opts.resolver)
	if err != nil {
		return nil, errors.Wrap(err, "failed to render template constructs")
	}

	tables, err := extractor.ExtractTables(rendered.SQL, c.dialect)
	if err != nil {
		return nil, err
	}

	bare := classifier.Classify(tables, rendered.Templated, classifier.Options{
		IgnoreDotless: c.opts.ignoreDotless,
	})
	return bare, nil
}

// CheckFile reads and checks a single file. Read, template and parse
// failures are recorded on the result, not returned.
func (c *Checker) CheckFile(path string) FileResult {
	result := FileResult{File: path}

	content, err := os.ReadFile(path)
	if err != nil {
		result.Err = errors.Wrapf(err, "failed to read SQL file: %s", path)
		return result
	}

	bare, err := c.CheckSQL(string(content))
	if err != nil {
		result.Err = err
		return result
	}

	result.BareTables = bare
	return result
}

// CheckFiles checks every file in order and folds the per-file statuses
// into an aggregate result. All files are checked and reported; there is
// no early abort on failure. The context is consulted between files and a
// cancellation stops the batch with partial results.
func (c *Checker) CheckFiles(ctx context.Context, paths []string) *RunResult {
	run := &RunResult{}

	for _, path := range paths {
		select {
		case <-ctx.Done():
			slog.Warn("check cancelled", "remaining", len(paths)-len(run.Results))
			return run
		default:
		}

		result := c.CheckFile(path)
		if result.Err != nil {
			slog.Debug("file check failed", "file", path, "error", result.Err)
		}
		run.add(result)
	}

	return run
}
