// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package template

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ForEach expands @foreach blocks:
//
//	@foreach( bound, var [, start ] ) body @end
//
// The body is emitted once per iteration with every boundary-delimited
// occurrence of @var replaced by the iteration index. Iteration runs from
// start (default 0) while the index is less than bound; both bound and
// start are expressions evaluated against the property table, so loop
// bounds may depend on values the math stage just produced.
//
// The expanded text is re-scanned in place, so nested loops expand from the
// outside in and an inner bound may reference the outer loop variable.
func (p *Processor) ForEach(in string) (string, error) {
	var errs []error

	out := in
	pos := 0
	for {
		idx := findDirective(out, pos, "foreach", true)
		if idx < 0 {
			break
		}

		args, bodyStart, err := parseArgs(out, idx)
		if err == nil && (len(args) < 2 || len(args) > 3) {
			err = fmt.Errorf("@foreach expects 2 or 3 arguments, got %d", len(args))
		}
		if err != nil {
			errs = append(errs, err)
			pos = idx + 1
			continue
		}

		blk, err := findBlockEnd(out, bodyStart)
		if err != nil {
			errs = append(errs, fmt.Errorf("@foreach: %w", err))
			pos = idx + 1
			continue
		}
		if blk.elsePos >= 0 {
			errs = append(errs, errors.New("@foreach does not take @else"))
		}

		bound, err := evalExpr(args[0], p.props)
		if err != nil {
			errs = append(errs, fmt.Errorf("@foreach bound: %w", err))
			// Drop the malformed loop entirely; its body is meaningless.
			out = out[:idx] + out[blk.afterEnd:]
			pos = idx
			continue
		}
		start := int32(0)
		if len(args) == 3 {
			start, err = evalExpr(args[2], p.props)
			if err != nil {
				errs = append(errs, fmt.Errorf("@foreach start: %w", err))
				out = out[:idx] + out[blk.afterEnd:]
				pos = idx
				continue
			}
		}

		body := out[bodyStart:blk.bodyEnd]
		loopVar := args[1]

		var b strings.Builder
		for i := start; i < bound; i++ {
			b.WriteString(replaceVar(body, loopVar, strconv.FormatInt(int64(i), 10)))
		}

		out = out[:idx] + b.String() + out[blk.afterEnd:]
		pos = idx // re-scan the expansion for nested loops
	}

	return out, errors.Join(errs...)
}

// EvalProperties resolves @property conditional blocks:
//
//	@property( expr ) taken [@else not-taken] @end
//
// expr supports boolean composition (&&, ||, !) and comparisons against
// named property values; a nonzero result takes the first branch. The block
// is replaced by the chosen branch and the result re-scanned, so nested
// conditionals resolve from the outside in.
func (p *Processor) EvalProperties(in string) (string, error) {
	var errs []error

	out := in
	pos := 0
	for {
		idx := findDirective(out, pos, "property", true)
		if idx < 0 {
			break
		}

		args, bodyStart, err := parseArgs(out, idx)
		if err == nil && len(args) == 0 {
			err = errors.New("@property expects a condition")
		}
		if err != nil {
			errs = append(errs, err)
			pos = idx + 1
			continue
		}

		blk, err := findBlockEnd(out, bodyStart)
		if err != nil {
			errs = append(errs, fmt.Errorf("@property: %w", err))
			pos = idx + 1
			continue
		}

		taken := int32(0)
		// Re-join in case the condition itself contained a top-level comma;
		// that is malformed, and evaluation will say so.
		cond := strings.Join(args, ",")
		v, evalErr := evalExpr(cond, p.props)
		if evalErr != nil {
			errs = append(errs, fmt.Errorf("@property(%s): %w", cond, evalErr))
			// Unknown truth value: fall through to the not-taken branch so
			// later stages still see minimal text.
		} else {
			taken = v
		}

		var branch string
		if blk.elsePos >= 0 {
			if taken != 0 {
				branch = out[bodyStart:blk.elsePos]
			} else {
				branch = out[blk.elsePos+len("@else") : blk.bodyEnd]
			}
		} else if taken != 0 {
			branch = out[bodyStart:blk.bodyEnd]
		}

		out = out[:idx] + branch + out[blk.afterEnd:]
		pos = idx // re-scan the branch for nested conditionals
	}

	return out, errors.Join(errs...)
}
