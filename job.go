// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compute

import (
	"strconv"
	"strings"

	"github.com/gogpu/compute/property"
)

// Job is the queue-facing description of a compute operation: a shader
// template, the integer properties steering its expansion, the resources to
// bind, and a cached index into the manager's pipeline cache.
//
// Jobs are created through Manager.CreateJob and owned by the manager's
// registry until DestroyAllJobs. A Job is not safe for concurrent use; see
// the package documentation for the threading model.
type Job struct {
	name       string
	sourceFile string
	pieceFiles []string

	props *property.Table

	constBuffers []BufferSlot
	textureSlots []TextureSlot
	uavSlots     []TextureSlot

	params      []ShaderParam
	paramsDirty bool

	// psoIndex is the job's index into the manager's pipeline cache, or
	// psoIndexUnset when the job must be re-resolved on the next dispatch.
	psoIndex int

	// autoMarkers are the per-slot marker properties written by the last
	// refreshAutoProperties, removed before the next refresh so markers for
	// vacated slots do not linger.
	autoMarkers []property.ID
}

// psoIndexUnset marks a job whose pipeline cache entry must be recomputed.
const psoIndexUnset = -1

// ShaderParam is a named block of float constants uploaded alongside the
// dispatch (filter weights, scales). The backend consumes them; the core
// only stores and invalidates them.
type ShaderParam struct {
	Name   string
	Values []float32
}

func newJob(name, sourceFile string, pieceFiles []string) *Job {
	return &Job{
		name:       name,
		sourceFile: sourceFile,
		pieceFiles: pieceFiles,
		props:      property.NewTable(),
		psoIndex:   psoIndexUnset,
	}
}

// Name returns the registry name the job was created under.
func (j *Job) Name() string { return j.name }

// SourceFile returns the logical filename of the job's shader template.
func (j *Job) SourceFile() string { return j.sourceFile }

// PieceFiles returns the logical filenames of included template fragments.
func (j *Job) PieceFiles() []string { return j.pieceFiles }

// SetProperty sets a per-job property and invalidates the cached pipeline,
// forcing re-resolution on the next dispatch.
func (j *Job) SetProperty(name string, value int32) {
	j.props.Set(name, value)
	j.InvalidateCache()
}

// Property returns a property value, 0 when absent.
func (j *Job) Property(name string) int32 {
	return j.props.Get(name)
}

// RemoveProperty deletes a per-job property.
func (j *Job) RemoveProperty(name string) bool {
	ok := j.props.Remove(property.Intern(name))
	if ok {
		j.InvalidateCache()
	}
	return ok
}

// SetThreadsPerGroup sets the workgroup size properties.
func (j *Job) SetThreadsPerGroup(x, y, z uint32) {
	j.props.Set(PropThreadsPerGroupX, int32(x))
	j.props.Set(PropThreadsPerGroupY, int32(y))
	j.props.Set(PropThreadsPerGroupZ, int32(z))
	j.InvalidateCache()
}

// SetNumThreadGroups sets the dispatch dimension properties.
func (j *Job) SetNumThreadGroups(x, y, z uint32) {
	j.props.Set(PropNumThreadGroupsX, int32(x))
	j.props.Set(PropNumThreadGroupsY, int32(y))
	j.props.Set(PropNumThreadGroupsZ, int32(z))
	j.InvalidateCache()
}

// SetConstBuffer binds a constant buffer slot, replacing any previous
// binding at the same slot index.
func (j *Job) SetConstBuffer(slot BufferSlot) {
	j.constBuffers = setBufferSlot(j.constBuffers, slot)
	j.InvalidateCache()
}

// SetTexture binds a texture (or raw buffer view) slot for read access.
func (j *Job) SetTexture(slot TextureSlot) {
	if slot.Access == 0 {
		slot.Access = AccessRead
	}
	j.textureSlots = setTextureSlot(j.textureSlots, slot)
	j.InvalidateCache()
}

// SetUav binds a UAV slot for write access.
func (j *Job) SetUav(slot TextureSlot) {
	if slot.Access == 0 {
		slot.Access = AccessWrite
	}
	j.uavSlots = setTextureSlot(j.uavSlots, slot)
	j.InvalidateCache()
}

// ConstBuffers returns the job's constant buffer bindings in slot order.
func (j *Job) ConstBuffers() []BufferSlot { return j.constBuffers }

// TextureSlots returns the job's texture bindings in slot order.
func (j *Job) TextureSlots() []TextureSlot { return j.textureSlots }

// UavSlots returns the job's UAV bindings in slot order.
func (j *Job) UavSlots() []TextureSlot { return j.uavSlots }

// SetParam stores a named float constant block, replacing an existing block
// with the same name, and marks the params dirty for the backend.
func (j *Job) SetParam(name string, values []float32) {
	for i := range j.params {
		if j.params[i].Name == name {
			j.params[i].Values = values
			j.paramsDirty = true
			return
		}
	}
	j.params = append(j.params, ShaderParam{Name: name, Values: values})
	j.paramsDirty = true
}

// RemoveParamsWithPrefix drops every float constant block whose name starts
// with prefix. Returns the number removed.
func (j *Job) RemoveParamsWithPrefix(prefix string) int {
	kept := j.params[:0]
	removed := 0
	for _, p := range j.params {
		if strings.HasPrefix(p.Name, prefix) {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	j.params = kept
	if removed > 0 {
		j.paramsDirty = true
	}
	return removed
}

// Params returns the job's float constant blocks.
func (j *Job) Params() []ShaderParam { return j.params }

// TakeParamsDirty reports whether params changed since the last call and
// clears the flag. Backends poll this to know when to re-upload constants.
func (j *Job) TakeParamsDirty() bool {
	d := j.paramsDirty
	j.paramsDirty = false
	return d
}

// InvalidateCache forgets the cached pipeline index so the next dispatch
// re-resolves against the manager's cache.
func (j *Job) InvalidateCache() {
	j.psoIndex = psoIndexUnset
}

// refreshAutoProperties recomputes the resource-count properties from the
// current bindings: slot totals, one-past-highest slot indices, and the
// per-slot marker properties templates use to emit binding declarations.
// Called by the manager right before a cache lookup.
func (j *Job) refreshAutoProperties() {
	for _, id := range j.autoMarkers {
		j.props.Remove(id)
	}
	j.autoMarkers = j.autoMarkers[:0]

	num, maxSlot := int32(0), int32(0)
	for _, t := range j.textureSlots {
		num++
		if int32(t.Slot)+1 > maxSlot {
			maxSlot = int32(t.Slot) + 1
		}
		id := property.Intern(PropTexture + strconv.FormatUint(uint64(t.Slot), 10))
		j.props.SetID(id, 1)
		j.autoMarkers = append(j.autoMarkers, id)
	}
	j.props.Set(PropNumTextureSlots, num)
	j.props.Set(PropMaxTextureSlot, maxSlot)

	num, maxSlot = 0, 0
	for _, u := range j.uavSlots {
		num++
		if int32(u.Slot)+1 > maxSlot {
			maxSlot = int32(u.Slot) + 1
		}
		id := property.Intern(PropUav + strconv.FormatUint(uint64(u.Slot), 10))
		j.props.SetID(id, 1)
		j.autoMarkers = append(j.autoMarkers, id)
	}
	j.props.Set(PropNumUavSlots, num)
	j.props.Set(PropMaxUavSlot, maxSlot)
}

// setBufferSlot inserts or replaces a binding, keeping the list ordered by
// slot index so binding order is deterministic.
func setBufferSlot(slots []BufferSlot, s BufferSlot) []BufferSlot {
	for i := range slots {
		if slots[i].Slot == s.Slot {
			slots[i] = s
			return slots
		}
		if slots[i].Slot > s.Slot {
			return append(slots[:i], append([]BufferSlot{s}, slots[i:]...)...)
		}
	}
	return append(slots, s)
}

func setTextureSlot(slots []TextureSlot, s TextureSlot) []TextureSlot {
	for i := range slots {
		if slots[i].Slot == s.Slot {
			slots[i] = s
			return slots
		}
		if slots[i].Slot > s.Slot {
			return append(slots[:i], append([]TextureSlot{s}, slots[i:]...)...)
		}
	}
	return append(slots, s)
}
