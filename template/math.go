// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package template

import (
	"errors"
	"fmt"
	"strings"
)

// mathOps maps a directive name to the operation it applies to the named
// property. @set overwrites; the others combine with the current value
// (absent properties read as 0). @pset is the fragment-file spelling of
// @set and behaves identically.
var mathOps = map[string]func(cur, arg int32) (int32, error){
	"set":  func(_, arg int32) (int32, error) { return arg, nil },
	"pset": func(_, arg int32) (int32, error) { return arg, nil },
	"add":  func(cur, arg int32) (int32, error) { return cur + arg, nil },
	"sub":  func(cur, arg int32) (int32, error) { return cur - arg, nil },
	"mul":  func(cur, arg int32) (int32, error) { return cur * arg, nil },
	"div": func(cur, arg int32) (int32, error) {
		if arg == 0 {
			return cur, errors.New("@div by zero")
		}
		return cur / arg, nil
	},
	"mod": func(cur, arg int32) (int32, error) {
		if arg == 0 {
			return cur, errors.New("@mod by zero")
		}
		return cur % arg, nil
	},
	"min": func(cur, arg int32) (int32, error) { return min(cur, arg), nil },
	"max": func(cur, arg int32) (int32, error) { return max(cur, arg), nil },
}

// mathOpNames fixes the scan order so that document-order processing is
// deterministic regardless of map iteration.
var mathOpNames = [...]string{"set", "pset", "add", "sub", "mul", "div", "mod", "min", "max"}

// Math evaluates the property-mutation directives in document order,
// resolving their inline arithmetic against the property table. Each
// well-formed directive mutates the table and is removed from the text.
// A malformed directive is recorded as an error and left in place so later
// stages (and the shader compiler) can surface further diagnostics.
func (p *Processor) Math(in string) (string, error) {
	var b strings.Builder
	var errs []error

	pos := 0
	for pos < len(in) {
		idx, name := nextMathDirective(in, pos)
		if idx < 0 {
			b.WriteString(in[pos:])
			break
		}

		args, after, err := parseArgs(in, idx)
		if err == nil && len(args) != 2 {
			err = fmt.Errorf("@%s expects 2 arguments, got %d", name, len(args))
		}
		if err != nil {
			errs = append(errs, err)
			// Leave the malformed directive in the output and move on.
			b.WriteString(in[pos : idx+1])
			pos = idx + 1
			continue
		}

		target := args[0]
		val, evalErr := evalExpr(args[1], p.props)
		if evalErr != nil {
			errs = append(errs, fmt.Errorf("@%s(%s): %w", name, target, evalErr))
			b.WriteString(in[pos:after])
			pos = after
			continue
		}

		cur := p.props.Get(target)
		res, opErr := mathOps[name](cur, val)
		if opErr != nil {
			errs = append(errs, fmt.Errorf("@%s(%s): %w", name, target, opErr))
			b.WriteString(in[pos:after])
			pos = after
			continue
		}
		p.props.Set(target, res)

		b.WriteString(in[pos:idx])
		pos = after
	}

	return b.String(), errors.Join(errs...)
}

// nextMathDirective finds the earliest math directive at or after from.
func nextMathDirective(s string, from int) (int, string) {
	best := -1
	bestName := ""
	for _, name := range mathOpNames {
		idx := findDirective(s, from, name, true)
		if idx >= 0 && (best < 0 || idx < best) {
			best = idx
			bestName = name
		}
	}
	return best, bestName
}
