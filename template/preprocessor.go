// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package template implements the shader template preprocessor: a
// deterministic text-to-text pipeline that expands a directive language
// (@set, @foreach, @property, @piece/@insertpiece, @counter) into concrete
// shader source, driven by an integer property table.
//
// The five stages run in a fixed order:
//
//  1. Math:       property mutation directives with inline arithmetic
//  2. ForEach:    loop expansion
//  3. Properties: conditional blocks
//  4. Pieces:     named block collection and insertion (fixed point)
//  5. Counters:   auto-incrementing counter substitution
//
// Stages never abort: syntax errors are accumulated and the pipeline
// continues with best-effort text, so a single compilation attempt can
// surface every problem at once. The only exception is the piece fixed
// point, which stops on the first error (and on an iteration cap) to bound
// adversarial templates.
package template

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/compute/property"
)

// maxPieceIterations caps the collect/insert fixed point. The original
// error-driven loop could spin forever on a piece that inserts itself
// through an intermediate piece without ever tripping a syntax error.
const maxPieceIterations = 32

// Processor expands templates against a property table. The table is
// explicit state passed in by the caller and mutated by @set-family
// directives during processing; it is not shared ambient state.
//
// A Processor is not safe for concurrent use.
type Processor struct {
	props  *property.Table
	pieces map[string]string
	log    *slog.Logger
}

// NewProcessor returns a processor bound to the given property table.
func NewProcessor(props *property.Table) *Processor {
	return &Processor{
		props:  props,
		pieces: make(map[string]string),
		log:    slog.New(discardHandler{}),
	}
}

// SetLogger routes the processor's debug diagnostics to l. By default they
// are discarded.
func (p *Processor) SetLogger(l *slog.Logger) {
	if l != nil {
		p.log = l
	}
}

// discardHandler is a slog.Handler that drops every record. Enabled returns
// false so disabled logging costs nothing.
type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

// Properties returns the property table the processor mutates.
func (p *Processor) Properties() *property.Table { return p.props }

// Piece returns the collected body for a named piece.
func (p *Processor) Piece(name string) (string, bool) {
	body, ok := p.pieces[name]
	return body, ok
}

// PieceCount returns the number of collected pieces.
func (p *Processor) PieceCount() int { return len(p.pieces) }

// Process runs the full five-stage pipeline over a template and returns the
// expanded text plus every syntax error encountered, joined. A non-nil error
// does not invalidate the returned text: the caller may still attempt to
// compile it and let the downstream compiler reject it.
func (p *Processor) Process(in string) (string, error) {
	var errs []error

	out, err := p.Math(in)
	if err != nil {
		errs = append(errs, err)
	}
	out, err = p.ForEach(out)
	if err != nil {
		errs = append(errs, err)
	}
	out, err = p.EvalProperties(out)
	if err != nil {
		errs = append(errs, err)
	}

	// Piece fixed point. Inserted pieces may contain further piece
	// references or unresolved conditionals, so collect/insert repeats
	// until no markers remain. It runs only while the text is error-free
	// so far and stops on the first error or the iteration cap.
	iter := 0
	for len(errs) == 0 && containsPieceMarker(out) {
		if iter == maxPieceIterations {
			errs = append(errs, fmt.Errorf(
				"piece expansion did not converge after %d iterations (piece inserting itself?)",
				maxPieceIterations))
			break
		}
		iter++

		out, err = p.CollectPieces(out)
		if err != nil {
			errs = append(errs, err)
			break
		}
		out, err = p.InsertPieces(out)
		if err != nil {
			errs = append(errs, err)
			break
		}
		if findDirective(out, 0, "property", true) >= 0 {
			out, err = p.EvalProperties(out)
			if err != nil {
				errs = append(errs, err)
				break
			}
		}
	}

	out, err = p.Counters(out)
	if err != nil {
		errs = append(errs, err)
	}

	return out, errors.Join(errs...)
}

// ProcessFragment runs a piece fragment file through the pipeline stages
// that matter for fragments: math, loops, conditionals, piece collection
// and counters. The expanded text itself is discarded; fragments exist to
// contribute pieces and property mutations to the main template.
func (p *Processor) ProcessFragment(in string) error {
	var errs []error

	out, err := p.Math(in)
	if err != nil {
		errs = append(errs, err)
	}
	out, err = p.ForEach(out)
	if err != nil {
		errs = append(errs, err)
	}
	out, err = p.EvalProperties(out)
	if err != nil {
		errs = append(errs, err)
	}
	out, err = p.CollectPieces(out)
	if err != nil {
		errs = append(errs, err)
	}
	if _, err = p.Counters(out); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// containsPieceMarker reports whether any @piece or @insertpiece directive
// remains in the text.
func containsPieceMarker(s string) bool {
	return findDirective(s, 0, "piece", true) >= 0 ||
		findDirective(s, 0, "insertpiece", true) >= 0
}
