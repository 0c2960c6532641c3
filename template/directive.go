// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package template

import (
	"fmt"
	"strings"
)

// Directive scanning helpers shared by all preprocessor stages.
//
// A directive is "@" + name, optionally followed by a parenthesized argument
// list. Block directives (@foreach, @property, @piece) run to a matching
// @end, with nesting; @property additionally allows a top-level @else.

// findDirective returns the byte offset of the next occurrence of "@"+name
// at or after from, or -1. When wantParen is true the name must be followed
// by "(" (after optional spaces or tabs); otherwise the name must not be
// followed by a name byte, so "@end" does not match inside "@endless".
func findDirective(s string, from int, name string, wantParen bool) int {
	marker := "@" + name
	for from <= len(s)-len(marker) {
		idx := strings.Index(s[from:], marker)
		if idx < 0 {
			return -1
		}
		idx += from
		after := idx + len(marker)
		if wantParen {
			j := after
			for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
				j++
			}
			if j < len(s) && s[j] == '(' {
				return idx
			}
		} else {
			if after >= len(s) || !isNameByte(s[after]) {
				return idx
			}
		}
		from = idx + 1
	}
	return -1
}

// parseArgs scans the parenthesized argument list that starts at or after
// pos (which points at the directive's "@"). It returns the top-level
// comma-separated arguments, trimmed, and the offset just past the closing
// parenthesis.
func parseArgs(s string, pos int) (args []string, end int, err error) {
	open := strings.IndexByte(s[pos:], '(')
	if open < 0 {
		return nil, 0, fmt.Errorf("missing '(' after directive at offset %d", pos)
	}
	open += pos

	depth := 0
	argStart := open + 1
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				args = append(args, strings.TrimSpace(s[argStart:i]))
				return args, i + 1, nil
			}
		case ',':
			if depth == 1 {
				args = append(args, strings.TrimSpace(s[argStart:i]))
				argStart = i + 1
			}
		}
	}
	return nil, 0, fmt.Errorf("unbalanced parentheses in directive at offset %d", pos)
}

// blockEnd describes the extent of a block directive's body.
type blockEnd struct {
	bodyEnd  int // offset of the matching @end
	afterEnd int // offset just past the matching @end
	elsePos  int // offset of a top-level @else, or -1
}

// blockOpeners are the directives that consume a matching @end.
var blockOpeners = [...]string{"foreach", "property", "piece"}

// findBlockEnd locates the @end matching a block whose body starts at from.
// Nested blocks are skipped; a top-level @else is reported but not consumed.
func findBlockEnd(s string, from int) (blockEnd, error) {
	depth := 1
	elsePos := -1
	pos := from
	for pos < len(s) {
		at := strings.IndexByte(s[pos:], '@')
		if at < 0 {
			break
		}
		pos += at
		switch {
		case matchesOpener(s, pos):
			depth++
			pos++
		case directiveAt(s, pos, "end"):
			depth--
			if depth == 0 {
				return blockEnd{bodyEnd: pos, afterEnd: pos + len("@end"), elsePos: elsePos}, nil
			}
			pos++
		case directiveAt(s, pos, "else"):
			if depth == 1 && elsePos < 0 {
				elsePos = pos
			}
			pos++
		default:
			pos++
		}
	}
	return blockEnd{}, fmt.Errorf("missing @end for block starting at offset %d", from)
}

// matchesOpener reports whether a block-opening directive starts at pos.
func matchesOpener(s string, pos int) bool {
	for _, name := range blockOpeners {
		if directiveAt(s, pos, name) && hasParen(s, pos+1+len(name)) {
			return true
		}
	}
	return false
}

// directiveAt reports whether "@"+name occurs exactly at pos, with a
// non-name byte following.
func directiveAt(s string, pos int, name string) bool {
	marker := "@" + name
	if !strings.HasPrefix(s[pos:], marker) {
		return false
	}
	after := pos + len(marker)
	return after >= len(s) || !isNameByte(s[after])
}

// hasParen reports whether "(" follows at pos after optional spaces or tabs.
func hasParen(s string, pos int) bool {
	for pos < len(s) && (s[pos] == ' ' || s[pos] == '\t') {
		pos++
	}
	return pos < len(s) && s[pos] == '('
}

// replaceVar substitutes every boundary-delimited occurrence of "@"+name
// with val, leaving longer names that merely share the prefix untouched
// (so replacing "@n" does not corrupt "@num_slots").
func replaceVar(s, name, val string) string {
	marker := "@" + name
	var b strings.Builder
	pos := 0
	for {
		idx := strings.Index(s[pos:], marker)
		if idx < 0 {
			b.WriteString(s[pos:])
			return b.String()
		}
		idx += pos
		after := idx + len(marker)
		if after < len(s) && (isNameByte(s[after]) || s[after] >= '0' && s[after] <= '9') {
			b.WriteString(s[pos:after])
			pos = after
			continue
		}
		b.WriteString(s[pos:idx])
		b.WriteString(val)
		pos = after
	}
}
