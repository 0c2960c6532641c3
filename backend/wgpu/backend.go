// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package wgpu implements compute.Backend over wgpu's hardware abstraction
// layer. WGSL source is compiled to SPIR-V through naga, pipeline layouts
// are derived from the resource slots bound for each dispatch, and every
// dispatch is submitted as a single fenced command buffer.
//
// The backend binds buffer-backed resources only: compute templates that
// sample typed images must bind them as raw buffer views. This matches the
// storage-buffer-centric layout of WGSL compute kernels.
package wgpu

import (
	"fmt"
	"strings"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/compute"
)

// fenceTimeout is the maximum time to wait for GPU work to complete.
const fenceTimeout = 5 * time.Second

// program is the backend's compiled shader handle.
type program struct {
	module     hal.ShaderModule
	entryPoint string
	label      string
}

// psoState caches the HAL objects built for one compute.PipelineState.
// The pipeline itself is created lazily on first dispatch, once the
// binding layout is known from the staged slots.
type psoState struct {
	pipeline hal.ComputePipeline
	layout   hal.PipelineLayout
	bgLayout hal.BindGroupLayout
	sig      string
}

// stagedBinding is one buffer slot staged between SetPipeline and
// DispatchGroups.
type stagedBinding struct {
	binding uint32
	buffer  hal.Buffer
	offset  uint64
	size    uint64
	kind    gputypes.BufferBindingType
}

// Backend dispatches compute work through a HAL device and queue.
//
// Bind/SetPipeline/DispatchGroups follow the manager's single-threaded
// calling convention and report failures through Err, since the binding
// contract itself is fire-and-forget.
type Backend struct {
	device hal.Device
	queue  hal.Queue

	states  map[*compute.PipelineState]*psoState
	staged  []stagedBinding
	current *compute.PipelineState
	lastErr error
}

// New creates a backend over the given HAL device and queue.
func New(device hal.Device, queue hal.Queue) *Backend {
	return &Backend{
		device: device,
		queue:  queue,
		states: make(map[*compute.PipelineState]*psoState),
	}
}

// Name implements compute.Backend.
func (b *Backend) Name() string { return "wgpu" }

// SupportedProfiles implements compute.Backend. WGSL is the native and only
// language; naga handles the SPIR-V translation.
func (b *Backend) SupportedProfiles() []compute.Profile {
	return []compute.Profile{compute.ProfileWGSL}
}

// Err returns and clears the error recorded by the most recent binding or
// dispatch sequence, if any.
func (b *Backend) Err() error {
	err := b.lastErr
	b.lastErr = nil
	return err
}

// Compile implements compute.Backend: WGSL source is compiled to SPIR-V
// words and wrapped in a HAL shader module.
func (b *Backend) Compile(src compute.ShaderSource) (compute.Program, error) {
	if src.Profile != compute.ProfileWGSL {
		return nil, fmt.Errorf("wgpu backend: unsupported profile %q", src.Profile)
	}

	spirvBytes, err := naga.Compile(src.Source)
	if err != nil {
		return nil, fmt.Errorf("wgpu backend: compile %s: %w", src.Name, err)
	}

	// SPIR-V is little-endian 32-bit words.
	spirvCode := make([]uint32, len(spirvBytes)/4)
	for i := range spirvCode {
		spirvCode[i] = uint32(spirvBytes[i*4]) |
			uint32(spirvBytes[i*4+1])<<8 |
			uint32(spirvBytes[i*4+2])<<16 |
			uint32(spirvBytes[i*4+3])<<24
	}

	module, err := b.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  src.Name,
		Source: hal.ShaderSource{SPIRV: spirvCode},
	})
	if err != nil {
		return nil, fmt.Errorf("wgpu backend: create shader module %s: %w", src.Name, err)
	}

	entry := src.EntryPoint
	if entry == "" {
		entry = "main"
	}
	return &program{module: module, entryPoint: entry, label: src.Name}, nil
}

// PipelineCreated implements compute.Backend. HAL pipeline construction is
// deferred to the first dispatch, when the binding layout is known.
func (b *Backend) PipelineCreated(pso *compute.PipelineState) error {
	if pso.Program != nil {
		if _, ok := pso.Program.(*program); !ok {
			return fmt.Errorf("wgpu backend: pipeline carries foreign program %T", pso.Program)
		}
	}
	b.states[pso] = &psoState{}
	compute.Logger().Debug("wgpu backend: pipeline registered",
		"hash", pso.SourceHash.String(),
		"threads_per_group", pso.ThreadsPerGroup,
		"num_groups", pso.NumThreadGroups)
	return nil
}

// PipelineDestroyed implements compute.Backend, releasing the cached HAL
// objects for the pipeline state.
func (b *Backend) PipelineDestroyed(pso *compute.PipelineState) {
	st, ok := b.states[pso]
	if !ok {
		return
	}
	b.destroyState(st)
	delete(b.states, pso)
	if b.current == pso {
		b.current = nil
	}
}

func (b *Backend) destroyState(st *psoState) {
	if st.pipeline != nil {
		b.device.DestroyComputePipeline(st.pipeline)
		st.pipeline = nil
	}
	if st.layout != nil {
		b.device.DestroyPipelineLayout(st.layout)
		st.layout = nil
	}
	if st.bgLayout != nil {
		b.device.DestroyBindGroupLayout(st.bgLayout)
		st.bgLayout = nil
	}
	st.sig = ""
}

// Close releases every cached HAL object. Programs compiled through this
// backend must not be dispatched afterwards.
func (b *Backend) Close() {
	for pso, st := range b.states {
		b.destroyState(st)
		delete(b.states, pso)
	}
	b.staged = nil
	b.current = nil
}

// BindConstBuffer implements compute.Backend.
func (b *Backend) BindConstBuffer(slot compute.BufferSlot) {
	b.stageBuffer(slot.Slot, slot.Buffer, slot.Offset, slot.SizeBytes,
		gputypes.BufferBindingTypeUniform)
}

// BindTexture implements compute.Backend. Only buffer-backed slots are
// supported; they bind as read-only storage.
func (b *Backend) BindTexture(slot compute.TextureSlot) {
	if slot.Buffer == nil {
		b.fail(fmt.Errorf("wgpu backend: texture slot %d: typed image bindings are not supported, bind a buffer view", slot.Slot))
		return
	}
	b.stageBuffer(slot.Slot, slot.Buffer, slot.Offset, slot.SizeBytes,
		gputypes.BufferBindingTypeReadOnlyStorage)
}

// BindUav implements compute.Backend. Only buffer-backed slots are
// supported; they bind as read-write storage.
func (b *Backend) BindUav(slot compute.TextureSlot) {
	if slot.Buffer == nil {
		b.fail(fmt.Errorf("wgpu backend: uav slot %d: typed image bindings are not supported, bind a buffer view", slot.Slot))
		return
	}
	b.stageBuffer(slot.Slot, slot.Buffer, slot.Offset, slot.SizeBytes,
		gputypes.BufferBindingTypeStorage)
}

func (b *Backend) stageBuffer(binding uint32, buf compute.Buffer, offset, size uint32, kind gputypes.BufferBindingType) {
	hb, ok := buf.(hal.Buffer)
	if !ok {
		b.fail(fmt.Errorf("wgpu backend: slot %d: expected hal.Buffer, got %T", binding, buf))
		return
	}
	b.staged = append(b.staged, stagedBinding{
		binding: binding,
		buffer:  hb,
		offset:  uint64(offset),
		size:    uint64(size),
		kind:    kind,
	})
}

// SetPipeline implements compute.Backend.
func (b *Backend) SetPipeline(pso *compute.PipelineState) {
	b.current = pso
}

// DispatchGroups implements compute.Backend: it materializes the pipeline
// for the staged binding layout if needed, builds the bind group, encodes a
// single compute pass and submits it behind a fence.
func (b *Backend) DispatchGroups(x, y, z uint32) {
	staged := b.staged
	b.staged = b.staged[:0]

	pso := b.current
	if pso == nil {
		b.fail(fmt.Errorf("wgpu backend: dispatch without SetPipeline"))
		return
	}
	if pso.Program == nil {
		// Compilation was disabled for this variant; nothing to run.
		compute.Logger().Debug("wgpu backend: skipping dispatch of shaderless pipeline",
			"hash", pso.SourceHash.String())
		return
	}
	st, ok := b.states[pso]
	if !ok {
		b.fail(fmt.Errorf("wgpu backend: dispatch of unregistered pipeline %s", pso.SourceHash))
		return
	}

	if err := b.dispatch(pso, st, staged, x, y, z); err != nil {
		b.fail(err)
	}
}

func (b *Backend) fail(err error) {
	b.lastErr = err
	compute.Logger().Warn("wgpu backend: dispatch error", "err", err)
}

func (b *Backend) dispatch(pso *compute.PipelineState, st *psoState, staged []stagedBinding, x, y, z uint32) error {
	prog := pso.Program.(*program)

	sig := layoutSignature(staged)
	if st.pipeline == nil || st.sig != sig {
		if err := b.rebuildPipeline(prog, st, staged, sig); err != nil {
			return err
		}
	}

	entries := make([]gputypes.BindGroupEntry, len(staged))
	for i, s := range staged {
		entries[i] = gputypes.BindGroupEntry{
			Binding: s.binding,
			Resource: gputypes.BufferBinding{
				Buffer: s.buffer.NativeHandle(),
				Offset: s.offset,
				Size:   s.size, // 0 = entire buffer
			},
		}
	}
	bg, err := b.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   prog.label + "_bg",
		Layout:  st.bgLayout,
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("wgpu backend: create bind group: %w", err)
	}
	defer b.device.DestroyBindGroup(bg)

	encoder, err := b.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: prog.label,
	})
	if err != nil {
		return fmt.Errorf("wgpu backend: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(prog.label); err != nil {
		return fmt.Errorf("wgpu backend: begin encoding: %w", err)
	}

	pass := encoder.BeginComputePass(&hal.ComputePassDescriptor{Label: prog.label})
	pass.SetPipeline(st.pipeline)
	pass.SetBindGroup(0, bg, nil)
	pass.Dispatch(x, y, z)
	pass.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("wgpu backend: end encoding: %w", err)
	}
	defer b.device.FreeCommandBuffer(cmdBuf)

	fence, err := b.device.CreateFence()
	if err != nil {
		return fmt.Errorf("wgpu backend: create fence: %w", err)
	}
	defer b.device.DestroyFence(fence)

	if err := b.queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("wgpu backend: submit: %w", err)
	}
	ok, err := b.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("wgpu backend: wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("wgpu backend: GPU timeout after %s", fenceTimeout)
	}

	compute.Logger().Debug("wgpu backend: dispatched",
		"label", prog.label, "groups", [3]uint32{x, y, z}, "bindings", len(staged))
	return nil
}

// rebuildPipeline recreates the HAL layout chain and pipeline for a new
// binding signature.
func (b *Backend) rebuildPipeline(prog *program, st *psoState, staged []stagedBinding, sig string) error {
	b.destroyState(st)

	layoutEntries := make([]gputypes.BindGroupLayoutEntry, len(staged))
	for i, s := range staged {
		layoutEntries[i] = gputypes.BindGroupLayoutEntry{
			Binding:    s.binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: s.kind},
		}
	}

	bgLayout, err := b.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   prog.label + "_bgl",
		Entries: layoutEntries,
	})
	if err != nil {
		return fmt.Errorf("wgpu backend: create bind group layout: %w", err)
	}
	st.bgLayout = bgLayout

	layout, err := b.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            prog.label + "_pl",
		BindGroupLayouts: []hal.BindGroupLayout{bgLayout},
	})
	if err != nil {
		b.destroyState(st)
		return fmt.Errorf("wgpu backend: create pipeline layout: %w", err)
	}
	st.layout = layout

	pipeline, err := b.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
		Label:  prog.label,
		Layout: layout,
		Compute: hal.ComputeState{
			Module:     prog.module,
			EntryPoint: prog.entryPoint,
		},
	})
	if err != nil {
		b.destroyState(st)
		return fmt.Errorf("wgpu backend: create compute pipeline: %w", err)
	}
	st.pipeline = pipeline
	st.sig = sig

	compute.Logger().Debug("wgpu backend: pipeline built",
		"label", prog.label, "bindings", len(staged))
	return nil
}

// layoutSignature is a cheap identity for a staged binding layout, used to
// detect when the pipeline must be rebuilt.
func layoutSignature(staged []stagedBinding) string {
	var b strings.Builder
	for _, s := range staged {
		fmt.Fprintf(&b, "%d:%v;", s.binding, s.kind)
	}
	return b.String()
}
