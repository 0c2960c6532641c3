// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package template

import (
	"fmt"
	"strconv"

	"github.com/gogpu/compute/property"
)

// evalExpr evaluates an integer expression against a property table.
//
// Grammar (lowest to highest precedence):
//
//	or    := and { "||" and }
//	and   := cmp { "&&" cmp }
//	cmp   := add [ ("=="|"!="|"<"|"<="|">"|">=") add ]
//	add   := mul { ("+"|"-") mul }
//	mul   := unary { ("*"|"/"|"%") unary }
//	unary := [ "!" | "-" ] primary
//	prim  := number | name | "(" or ")"
//
// Names resolve through the table; absent names evaluate to 0, matching the
// table's checked-absence contract. Boolean results are 1 or 0.
func evalExpr(src string, props *property.Table) (int32, error) {
	toks, err := lexExpr(src)
	if err != nil {
		return 0, err
	}
	p := &exprParser{toks: toks, props: props, src: src}
	v, err := p.parseOr()
	if err != nil {
		return 0, err
	}
	if p.pos != len(p.toks) {
		return 0, fmt.Errorf("unexpected %q in expression %q", p.toks[p.pos].text, src)
	}
	return v, nil
}

type exprTokenKind int

const (
	tokNumber exprTokenKind = iota
	tokName
	tokOp
)

type exprToken struct {
	kind exprTokenKind
	text string
	num  int32
}

func lexExpr(src string) ([]exprToken, error) {
	var toks []exprToken
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c >= '0' && c <= '9':
			j := i
			for j < len(src) && src[j] >= '0' && src[j] <= '9' {
				j++
			}
			n, err := strconv.ParseInt(src[i:j], 10, 32)
			if err != nil {
				return nil, fmt.Errorf("bad number %q: %w", src[i:j], err)
			}
			toks = append(toks, exprToken{kind: tokNumber, num: int32(n)})
			i = j

		case isNameByte(c):
			j := i
			for j < len(src) && (isNameByte(src[j]) || src[j] >= '0' && src[j] <= '9') {
				j++
			}
			toks = append(toks, exprToken{kind: tokName, text: src[i:j]})
			i = j

		default:
			// Two-character operators first.
			if i+1 < len(src) {
				op := src[i : i+2]
				switch op {
				case "&&", "||", "==", "!=", "<=", ">=":
					toks = append(toks, exprToken{kind: tokOp, text: op})
					i += 2
					continue
				}
			}
			switch c {
			case '+', '-', '*', '/', '%', '(', ')', '!', '<', '>':
				toks = append(toks, exprToken{kind: tokOp, text: string(c)})
				i++
			default:
				return nil, fmt.Errorf("unexpected character %q in expression %q", c, src)
			}
		}
	}
	if len(toks) == 0 {
		return nil, fmt.Errorf("empty expression")
	}
	return toks, nil
}

func isNameByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

type exprParser struct {
	toks  []exprToken
	pos   int
	props *property.Table
	src   string
}

func (p *exprParser) peekOp() string {
	if p.pos < len(p.toks) && p.toks[p.pos].kind == tokOp {
		return p.toks[p.pos].text
	}
	return ""
}

func (p *exprParser) parseOr() (int32, error) {
	v, err := p.parseAnd()
	if err != nil {
		return 0, err
	}
	for p.peekOp() == "||" {
		p.pos++
		r, err := p.parseAnd()
		if err != nil {
			return 0, err
		}
		v = boolInt(v != 0 || r != 0)
	}
	return v, nil
}

func (p *exprParser) parseAnd() (int32, error) {
	v, err := p.parseCmp()
	if err != nil {
		return 0, err
	}
	for p.peekOp() == "&&" {
		p.pos++
		r, err := p.parseCmp()
		if err != nil {
			return 0, err
		}
		v = boolInt(v != 0 && r != 0)
	}
	return v, nil
}

func (p *exprParser) parseCmp() (int32, error) {
	v, err := p.parseAdd()
	if err != nil {
		return 0, err
	}
	op := p.peekOp()
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		p.pos++
		r, err := p.parseAdd()
		if err != nil {
			return 0, err
		}
		switch op {
		case "==":
			v = boolInt(v == r)
		case "!=":
			v = boolInt(v != r)
		case "<":
			v = boolInt(v < r)
		case "<=":
			v = boolInt(v <= r)
		case ">":
			v = boolInt(v > r)
		case ">=":
			v = boolInt(v >= r)
		}
	}
	return v, nil
}

func (p *exprParser) parseAdd() (int32, error) {
	v, err := p.parseMul()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peekOp() {
		case "+":
			p.pos++
			r, err := p.parseMul()
			if err != nil {
				return 0, err
			}
			v += r
		case "-":
			p.pos++
			r, err := p.parseMul()
			if err != nil {
				return 0, err
			}
			v -= r
		default:
			return v, nil
		}
	}
}

func (p *exprParser) parseMul() (int32, error) {
	v, err := p.parseUnary()
	if err != nil {
		return 0, err
	}
	for {
		switch p.peekOp() {
		case "*":
			p.pos++
			r, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			v *= r
		case "/":
			p.pos++
			r, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if r == 0 {
				return 0, fmt.Errorf("division by zero in expression %q", p.src)
			}
			v /= r
		case "%":
			p.pos++
			r, err := p.parseUnary()
			if err != nil {
				return 0, err
			}
			if r == 0 {
				return 0, fmt.Errorf("modulo by zero in expression %q", p.src)
			}
			v %= r
		default:
			return v, nil
		}
	}
}

func (p *exprParser) parseUnary() (int32, error) {
	switch p.peekOp() {
	case "!":
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return boolInt(v == 0), nil
	case "-":
		p.pos++
		v, err := p.parseUnary()
		if err != nil {
			return 0, err
		}
		return -v, nil
	}
	return p.parsePrimary()
}

func (p *exprParser) parsePrimary() (int32, error) {
	if p.pos >= len(p.toks) {
		return 0, fmt.Errorf("unexpected end of expression %q", p.src)
	}
	t := p.toks[p.pos]
	switch t.kind {
	case tokNumber:
		p.pos++
		return t.num, nil
	case tokName:
		p.pos++
		return p.props.Get(t.text), nil
	case tokOp:
		if t.text == "(" {
			p.pos++
			v, err := p.parseOr()
			if err != nil {
				return 0, err
			}
			if p.peekOp() != ")" {
				return 0, fmt.Errorf("missing ')' in expression %q", p.src)
			}
			p.pos++
			return v, nil
		}
	}
	return 0, fmt.Errorf("unexpected %q in expression %q", t.text, p.src)
}

func boolInt(b bool) int32 {
	if b {
		return 1
	}
	return 0
}
