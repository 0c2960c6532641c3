// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package template

import (
	"errors"
	"fmt"
	"strings"
)

// CollectPieces gathers @piece blocks into the processor's piece table and
// removes them from the text:
//
//	@piece( Name ) body @end
//
// Pieces declared in fragment files and in the main template share one
// table. Redeclaring a piece is a syntax error; the first definition wins.
func (p *Processor) CollectPieces(in string) (string, error) {
	var b strings.Builder
	var errs []error

	pos := 0
	for {
		idx := findDirective(in, pos, "piece", true)
		if idx < 0 {
			b.WriteString(in[pos:])
			break
		}

		args, bodyStart, err := parseArgs(in, idx)
		if err == nil && len(args) != 1 {
			err = fmt.Errorf("@piece expects 1 argument, got %d", len(args))
		}
		if err != nil {
			errs = append(errs, err)
			b.WriteString(in[pos : idx+1])
			pos = idx + 1
			continue
		}

		blk, err := findBlockEnd(in, bodyStart)
		if err != nil {
			errs = append(errs, fmt.Errorf("@piece(%s): %w", args[0], err))
			b.WriteString(in[pos : idx+1])
			pos = idx + 1
			continue
		}

		name := args[0]
		if _, exists := p.pieces[name]; exists {
			errs = append(errs, fmt.Errorf("piece %q already defined", name))
		} else {
			p.pieces[name] = in[bodyStart:blk.bodyEnd]
		}

		b.WriteString(in[pos:idx])
		pos = blk.afterEnd
	}

	return b.String(), errors.Join(errs...)
}

// InsertPieces substitutes @insertpiece(Name) references with the collected
// piece bodies. A reference to an unknown piece expands to nothing; that is
// a normal way for templates to declare optional hooks, so it is logged at
// debug level rather than treated as an error.
//
// Substituted bodies are not re-scanned within this pass. Pieces that insert
// further pieces are resolved by the caller's fixed-point loop, which caps
// the iteration count.
func (p *Processor) InsertPieces(in string) (string, error) {
	var b strings.Builder
	var errs []error

	pos := 0
	for {
		idx := findDirective(in, pos, "insertpiece", true)
		if idx < 0 {
			b.WriteString(in[pos:])
			break
		}

		args, after, err := parseArgs(in, idx)
		if err == nil && len(args) != 1 {
			err = fmt.Errorf("@insertpiece expects 1 argument, got %d", len(args))
		}
		if err != nil {
			errs = append(errs, err)
			b.WriteString(in[pos : idx+1])
			pos = idx + 1
			continue
		}

		body, ok := p.pieces[args[0]]
		if !ok {
			p.log.Debug("template: inserting undeclared piece as empty",
				"piece", args[0])
		}

		b.WriteString(in[pos:idx])
		b.WriteString(body)
		pos = after
	}

	return b.String(), errors.Join(errs...)
}
