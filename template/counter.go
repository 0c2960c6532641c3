// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package template

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Counters substitutes the read-out directives, running last so that only
// text surviving every earlier stage is counted:
//
//	@counter( name )  emits the property's current value, then increments it
//	@value( name )    emits the property's current value
//
// Absent properties read as 0, so a fresh counter starts at zero.
func (p *Processor) Counters(in string) (string, error) {
	var b strings.Builder
	var errs []error

	pos := 0
	for {
		idx, increment := nextCounterDirective(in, pos)
		if idx < 0 {
			b.WriteString(in[pos:])
			break
		}

		args, after, err := parseArgs(in, idx)
		if err == nil && len(args) != 1 {
			err = fmt.Errorf("counter directive expects 1 argument, got %d", len(args))
		}
		if err != nil {
			errs = append(errs, err)
			b.WriteString(in[pos : idx+1])
			pos = idx + 1
			continue
		}

		name := args[0]
		v := p.props.Get(name)
		b.WriteString(in[pos:idx])
		b.WriteString(strconv.FormatInt(int64(v), 10))
		if increment {
			p.props.Set(name, v+1)
		}
		pos = after
	}

	return b.String(), errors.Join(errs...)
}

// nextCounterDirective finds the earliest @counter or @value at or after
// from. The second result reports whether the directive increments.
func nextCounterDirective(s string, from int) (int, bool) {
	ctr := findDirective(s, from, "counter", true)
	val := findDirective(s, from, "value", true)
	switch {
	case ctr < 0:
		return val, false
	case val < 0:
		return ctr, true
	case ctr < val:
		return ctr, true
	default:
		return val, false
	}
}
