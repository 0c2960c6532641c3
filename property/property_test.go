// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package property

import "testing"

func TestInternStable(t *testing.T) {
	a := Intern("threads_per_group_x")
	b := Intern("threads_per_group_x")
	if a != b {
		t.Errorf("expected identical IDs for the same name, got %v and %v", a, b)
	}
	if a == Intern("threads_per_group_y") {
		t.Error("expected distinct IDs for distinct names")
	}
}

func TestIDString(t *testing.T) {
	id := Intern("kernel_radius")
	if got := id.String(); got != "kernel_radius" {
		t.Errorf("expected interned name back, got %q", got)
	}
}

func TestTableSetGet(t *testing.T) {
	tb := NewTable()
	tb.Set("alpha", 3)
	tb.Set("beta", -1)

	if got := tb.Get("alpha"); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
	if got := tb.Get("beta"); got != -1 {
		t.Errorf("expected -1, got %d", got)
	}
	if got := tb.Get("missing"); got != 0 {
		t.Errorf("expected 0 for absent property, got %d", got)
	}
	if _, ok := tb.GetOK("missing"); ok {
		t.Error("expected GetOK to report absence")
	}
	if v, ok := tb.GetOK("alpha"); !ok || v != 3 {
		t.Errorf("expected (3, true), got (%d, %v)", v, ok)
	}
}

func TestTableLastSetWins(t *testing.T) {
	tb := NewTable()
	tb.Set("alpha", 1)
	tb.Set("beta", 2)
	tb.Set("alpha", 7)

	if got := tb.Get("alpha"); got != 7 {
		t.Errorf("expected 7, got %d", got)
	}
	// Updating must not reorder.
	props := tb.Properties()
	if len(props) != 2 {
		t.Fatalf("expected 2 properties, got %d", len(props))
	}
	if props[0].Key != Intern("alpha") || props[1].Key != Intern("beta") {
		t.Error("expected insertion order to survive an update")
	}
}

func TestTableRemove(t *testing.T) {
	tb := NewTable()
	tb.Set("a", 1)
	tb.Set("b", 2)
	tb.Set("c", 3)

	if !tb.Remove(Intern("b")) {
		t.Fatal("expected Remove to report presence")
	}
	if tb.Remove(Intern("b")) {
		t.Error("expected second Remove to report absence")
	}
	if tb.Len() != 2 {
		t.Errorf("expected 2 properties, got %d", tb.Len())
	}
	// Remaining order and index must stay consistent.
	if got := tb.Get("c"); got != 3 {
		t.Errorf("expected 3 after removal, got %d", got)
	}
	props := tb.Properties()
	if props[0].Key != Intern("a") || props[1].Key != Intern("c") {
		t.Error("expected relative order preserved after removal")
	}
}

func TestSnapshotIsOwned(t *testing.T) {
	tb := NewTable()
	tb.Set("a", 1)

	snap := tb.Snapshot()
	tb.Set("a", 99)

	if snap[0].Value != 1 {
		t.Errorf("expected snapshot to be unaffected by later writes, got %d", snap[0].Value)
	}
	if tb.Snapshot() == nil {
		t.Error("expected non-nil snapshot for non-empty table")
	}

	empty := NewTable()
	if empty.Snapshot() != nil {
		t.Error("expected nil snapshot for empty table")
	}
}

func TestSetAllAndClear(t *testing.T) {
	src := NewTable()
	src.Set("x", 10)
	src.Set("y", 20)

	dst := NewTable()
	dst.Set("x", 1)
	dst.SetAll(src.Properties())

	if got := dst.Get("x"); got != 10 {
		t.Errorf("expected SetAll to overwrite, got %d", got)
	}
	if got := dst.Get("y"); got != 20 {
		t.Errorf("expected 20, got %d", got)
	}

	dst.Clear()
	if dst.Len() != 0 {
		t.Errorf("expected empty table after Clear, got %d", dst.Len())
	}
	if _, ok := dst.GetOK("x"); ok {
		t.Error("expected index cleared too")
	}
}

func TestEqual(t *testing.T) {
	a := NewTable()
	a.Set("x", 1)
	a.Set("y", 2)

	b := NewTable()
	b.Set("x", 1)
	b.Set("y", 2)

	if !Equal(a.Properties(), b.Properties()) {
		t.Error("expected equal sequences")
	}

	b.Set("y", 3)
	if Equal(a.Properties(), b.Properties()) {
		t.Error("expected value difference to break equality")
	}

	// Same pairs, different insertion order: not equal by design.
	c := NewTable()
	c.Set("y", 2)
	c.Set("x", 1)
	if Equal(a.Properties(), c.Properties()) {
		t.Error("expected order difference to break equality")
	}
}
