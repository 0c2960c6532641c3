// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package property implements the ordered integer property tables that drive
// template expansion and shader variant selection.
//
// A property is a named 32-bit integer. Names are interned to 64-bit IDs so
// that tables can be compared and searched without string allocations on the
// dispatch hot path. Tables preserve insertion order, which makes snapshots
// deterministic and cheap to compare.
package property

import (
	"fmt"
	"hash/fnv"
	"sync"
)

// ID is an interned property name. Two IDs are equal exactly when the names
// they were interned from are equal (FNV-1a collisions notwithstanding,
// matching the behavior of hashed string identifiers in rendering engines).
type ID uint64

// intern keeps the reverse mapping for diagnostics and error messages.
// Lookup is only needed on cold paths (logging, errors), so a single
// RWMutex-guarded map is enough.
var (
	internMu sync.RWMutex
	interned = make(map[ID]string)
)

// Intern hashes a name to its ID and records the reverse mapping.
func Intern(name string) ID {
	h := fnv.New64a()
	_, _ = h.Write([]byte(name)) // fnv.Write never returns an error
	id := ID(h.Sum64())

	internMu.RLock()
	_, known := interned[id]
	internMu.RUnlock()
	if !known {
		internMu.Lock()
		interned[id] = name
		internMu.Unlock()
	}
	return id
}

// String returns the name the ID was interned from, or a hex form if the ID
// was never interned in this process.
func (id ID) String() string {
	internMu.RLock()
	name, ok := interned[id]
	internMu.RUnlock()
	if ok {
		return name
	}
	return fmt.Sprintf("property(0x%016x)", uint64(id))
}

// Property is a single named integer value.
type Property struct {
	Key   ID
	Value int32
}

// Table is an ordered mapping from interned names to integer values.
// Iteration order is first-insert order; setting an existing key updates
// the value in place without reordering.
//
// The zero value is not usable; call NewTable.
type Table struct {
	props []Property
	index map[ID]int
}

// NewTable returns an empty table.
func NewTable() *Table {
	return &Table{index: make(map[ID]int)}
}

// Set inserts or overwrites a property by name. Last set wins.
func (t *Table) Set(name string, value int32) {
	t.SetID(Intern(name), value)
}

// SetID inserts or overwrites a property by interned ID.
func (t *Table) SetID(id ID, value int32) {
	if i, ok := t.index[id]; ok {
		t.props[i].Value = value
		return
	}
	t.index[id] = len(t.props)
	t.props = append(t.props, Property{Key: id, Value: value})
}

// Get returns the value for name, or 0 if the property is absent.
// Absence is a normal, checked condition, not an error.
func (t *Table) Get(name string) int32 {
	return t.GetID(Intern(name))
}

// GetID returns the value for id, or 0 if absent.
func (t *Table) GetID(id ID) int32 {
	if i, ok := t.index[id]; ok {
		return t.props[i].Value
	}
	return 0
}

// GetOK returns the value for name and whether it is present.
func (t *Table) GetOK(name string) (int32, bool) {
	return t.GetIDOK(Intern(name))
}

// GetIDOK returns the value for id and whether it is present.
func (t *Table) GetIDOK(id ID) (int32, bool) {
	if i, ok := t.index[id]; ok {
		return t.props[i].Value, true
	}
	return 0, false
}

// Remove deletes a property by ID. Returns true if it was present.
// The removal preserves the relative order of the remaining properties.
func (t *Table) Remove(id ID) bool {
	i, ok := t.index[id]
	if !ok {
		return false
	}
	t.props = append(t.props[:i], t.props[i+1:]...)
	delete(t.index, id)
	for j := i; j < len(t.props); j++ {
		t.index[t.props[j].Key] = j
	}
	return true
}

// Len returns the number of properties in the table.
func (t *Table) Len() int { return len(t.props) }

// Properties returns the table's ordered backing slice as a read-only view.
// Callers must not modify it; use Snapshot for an owned copy.
func (t *Table) Properties() []Property { return t.props }

// Snapshot returns an owned copy of the ordered property sequence.
func (t *Table) Snapshot() []Property {
	if len(t.props) == 0 {
		return nil
	}
	out := make([]Property, len(t.props))
	copy(out, t.props)
	return out
}

// SetAll applies every property in props to the table, in order.
func (t *Table) SetAll(props []Property) {
	for _, p := range props {
		t.SetID(p.Key, p.Value)
	}
}

// Clear removes all properties while keeping allocated capacity.
func (t *Table) Clear() {
	t.props = t.props[:0]
	clear(t.index)
}

// Equal reports whether two ordered property sequences are identical:
// same length, same keys in the same order, same values.
func Equal(a, b []Property) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
