// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package template

import (
	"strings"
	"testing"

	"github.com/gogpu/compute/property"
)

func newTestProcessor() *Processor {
	return NewProcessor(property.NewTable())
}

func TestMath(t *testing.T) {
	p := newTestProcessor()
	p.props.Set("radius", 3)

	out, err := p.Math("@set( radius, 4 )@add( radius, 2 )@mul( radius, radius )done")
	if err != nil {
		t.Fatalf("Math failed: %v", err)
	}
	if out != "done" {
		t.Errorf("expected directives removed, got %q", out)
	}
	// set to 4, add 2 -> 6, mul by its own value -> 36.
	if got := p.props.Get("radius"); got != 36 {
		t.Errorf("expected radius 36, got %d", got)
	}
}

func TestMathExpressions(t *testing.T) {
	p := newTestProcessor()
	p.props.Set("width", 256)

	out, err := p.Math("@set( groups, (width + 63) / 64 )@min( groups, 2 )")
	if err != nil {
		t.Fatalf("Math failed: %v", err)
	}
	if out != "" {
		t.Errorf("expected empty output, got %q", out)
	}
	if got := p.props.Get("groups"); got != 2 {
		t.Errorf("expected groups 2, got %d", got)
	}
}

func TestMathErrorsAccumulate(t *testing.T) {
	p := newTestProcessor()
	p.props.Set("a", 5)

	out, err := p.Math("@div( a, 0 )@set( b )@add( a, 1 )")
	if err == nil {
		t.Fatal("expected errors for @div by zero and bad arity")
	}
	if !strings.Contains(err.Error(), "zero") {
		t.Errorf("expected a by-zero error, got %v", err)
	}
	// The well-formed trailing directive still ran.
	if got := p.props.Get("a"); got != 6 {
		t.Errorf("expected a 6, got %d", got)
	}
	// Failed directives stay visible in the text.
	if !strings.Contains(out, "set") {
		t.Errorf("expected malformed directive left in output, got %q", out)
	}
}

func TestPsetAliasesSet(t *testing.T) {
	p := newTestProcessor()
	if _, err := p.Math("@pset( mode, 2 )"); err != nil {
		t.Fatalf("Math failed: %v", err)
	}
	if got := p.props.Get("mode"); got != 2 {
		t.Errorf("expected mode 2, got %d", got)
	}
}

func TestForEach(t *testing.T) {
	p := newTestProcessor()

	out, err := p.ForEach("@foreach( 3, n )x@n;@end")
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if out != "x0;x1;x2;" {
		t.Errorf("expected x0;x1;x2; got %q", out)
	}
}

func TestForEachStartAndBoundFromProperties(t *testing.T) {
	p := newTestProcessor()
	p.props.Set("slots", 4)

	out, err := p.ForEach("@foreach( slots, n, 2 )@n @end")
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if out != "2 3 " {
		t.Errorf("expected %q, got %q", "2 3 ", out)
	}
}

func TestForEachNested(t *testing.T) {
	p := newTestProcessor()

	out, err := p.ForEach("@foreach( 2, i )@foreach( 2, j )(@i,@j)@end@end")
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if out != "(0,0)(0,1)(1,0)(1,1)" {
		t.Errorf("expected all pairs, got %q", out)
	}
}

func TestForEachVarBoundary(t *testing.T) {
	p := newTestProcessor()

	// @n must replace, @nn must not.
	out, err := p.ForEach("@foreach( 1, n )@n @nn@end")
	if err != nil {
		t.Fatalf("ForEach failed: %v", err)
	}
	if out != "0 @nn" {
		t.Errorf("expected loop variable boundary respected, got %q", out)
	}
}

func TestEvalProperties(t *testing.T) {
	p := newTestProcessor()
	p.props.Set("width", 8)

	out, err := p.EvalProperties("@property( width > 4 )big@end tail")
	if err != nil {
		t.Fatalf("EvalProperties failed: %v", err)
	}
	if out != "big tail" {
		t.Errorf("expected taken branch, got %q", out)
	}

	out, err = p.EvalProperties("@property( width > 100 )big@else small@end")
	if err != nil {
		t.Fatalf("EvalProperties failed: %v", err)
	}
	if out != " small" {
		t.Errorf("expected else branch, got %q", out)
	}
}

func TestEvalPropertiesNested(t *testing.T) {
	p := newTestProcessor()
	p.props.Set("a", 1)
	p.props.Set("b", 0)

	out, err := p.EvalProperties("@property( a )@property( b )both@else a-only@end@end")
	if err != nil {
		t.Fatalf("EvalProperties failed: %v", err)
	}
	if out != " a-only" {
		t.Errorf("expected inner else branch, got %q", out)
	}
}

func TestEvalPropertiesErrorTakesElse(t *testing.T) {
	p := newTestProcessor()

	out, err := p.EvalProperties("@property( 1 / 0 )on@else off@end")
	if err == nil {
		t.Fatal("expected evaluation error")
	}
	if out != " off" {
		t.Errorf("expected not-taken branch on error, got %q", out)
	}
}

func TestCounters(t *testing.T) {
	p := newTestProcessor()

	out, err := p.Counters("@counter(idx)@counter(idx)@value(idx)")
	if err != nil {
		t.Fatalf("Counters failed: %v", err)
	}
	if out != "012" {
		t.Errorf("expected 012, got %q", out)
	}
	if got := p.props.Get("idx"); got != 2 {
		t.Errorf("expected idx 2 after two increments, got %d", got)
	}
}

func TestCollectAndInsertPieces(t *testing.T) {
	p := newTestProcessor()

	out, err := p.Process("@piece( Header )// common@end@insertpiece( Header )\nmain")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if out != "// common\nmain" {
		t.Errorf("expected piece body substituted, got %q", out)
	}
	if body, ok := p.Piece("Header"); !ok || body != "// common" {
		t.Errorf("expected collected piece body, got %q (%v)", body, ok)
	}
}

func TestInsertUnknownPieceIsEmpty(t *testing.T) {
	p := newTestProcessor()

	out, err := p.Process("@insertpiece( CustomHook )done")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if out != "done" {
		t.Errorf("expected empty expansion for undeclared piece, got %q", out)
	}
}

func TestPieceRedefinitionFirstWins(t *testing.T) {
	p := newTestProcessor()

	err := p.ProcessFragment("@piece( P )first@end@piece( P )second@end")
	if err == nil {
		t.Fatal("expected redefinition error")
	}
	if body, _ := p.Piece("P"); body != "first" {
		t.Errorf("expected first definition to win, got %q", body)
	}
}

func TestPiecesAcrossFragments(t *testing.T) {
	p := newTestProcessor()

	if err := p.ProcessFragment("@piece( Decl )var x: u32;@end"); err != nil {
		t.Fatalf("ProcessFragment failed: %v", err)
	}
	out, err := p.Process("@insertpiece( Decl )")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if out != "var x: u32;" {
		t.Errorf("expected fragment piece inserted, got %q", out)
	}
}

func TestPieceFixedPoint(t *testing.T) {
	p := newTestProcessor()

	out, err := p.Process("@piece( Outer )@insertpiece( Inner )@end" +
		"@piece( Inner )X@end" +
		"@insertpiece( Outer )")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if out != "X" {
		t.Errorf("expected nested piece resolved, got %q", out)
	}
}

func TestPieceInsertionReevaluatesConditionals(t *testing.T) {
	p := newTestProcessor()
	p.props.Set("enabled", 1)

	out, err := p.Process("@piece( P )@property( enabled )on@else off@end@end@insertpiece( P )")
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	if out != "on" {
		t.Errorf("expected conditional inside piece resolved, got %q", out)
	}
}

func TestSelfInsertingPieceDoesNotHang(t *testing.T) {
	p := newTestProcessor()

	_, err := p.Process("@piece( Loop )@insertpiece( Loop )@end@insertpiece( Loop )")
	if err == nil {
		t.Fatal("expected convergence error for self-inserting piece")
	}
	if !strings.Contains(err.Error(), "converge") {
		t.Errorf("expected convergence error, got %v", err)
	}
}

func TestProcessPipeline(t *testing.T) {
	p := newTestProcessor()
	p.props.Set("texture_slots", 2)

	in := "@set( threads, 64 )" +
		"@property( texture_slots )" +
		"@foreach( texture_slots, n )binding @counter(b): tex@n;\n@end" +
		"@end" +
		"workgroup_size(@value(threads))"
	out, err := p.Process(in)
	if err != nil {
		t.Fatalf("Process failed: %v", err)
	}
	want := "binding 0: tex0;\nbinding 1: tex1;\nworkgroup_size(64)"
	if out != want {
		t.Errorf("expected %q, got %q", want, out)
	}
}

func TestProcessReturnsTextAlongsideErrors(t *testing.T) {
	p := newTestProcessor()

	out, err := p.Process("@div( x, 0 )survivor")
	if err == nil {
		t.Fatal("expected error from @div by zero")
	}
	if !strings.Contains(out, "survivor") {
		t.Errorf("expected best-effort text alongside the error, got %q", out)
	}
}

func TestProcessFragmentDiscardsOutputKeepsState(t *testing.T) {
	p := newTestProcessor()

	err := p.ProcessFragment("@pset( quality, 3 )@piece( Q )q@end plain text")
	if err != nil {
		t.Fatalf("ProcessFragment failed: %v", err)
	}
	if got := p.props.Get("quality"); got != 3 {
		t.Errorf("expected quality 3, got %d", got)
	}
	if p.PieceCount() != 1 {
		t.Errorf("expected 1 piece, got %d", p.PieceCount())
	}
}
