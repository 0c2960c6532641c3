// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package wgpu

import (
	"strings"
	"testing"

	"github.com/gogpu/gputypes"

	"github.com/gogpu/compute"
)

func TestSupportedProfiles(t *testing.T) {
	b := New(nil, nil)
	profiles := b.SupportedProfiles()
	if len(profiles) != 1 || profiles[0] != compute.ProfileWGSL {
		t.Errorf("expected wgsl only, got %v", profiles)
	}
}

func TestCompileRejectsForeignProfile(t *testing.T) {
	b := New(nil, nil)
	_, err := b.Compile(compute.ShaderSource{Profile: compute.ProfileHLSL, Source: "x"})
	if err == nil {
		t.Fatal("expected error for non-wgsl profile")
	}
	if !strings.Contains(err.Error(), "profile") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPipelineCreatedRejectsForeignProgram(t *testing.T) {
	b := New(nil, nil)
	pso := &compute.PipelineState{Program: "not a program"}
	if err := b.PipelineCreated(pso); err == nil {
		t.Error("expected error for foreign program handle")
	}

	// Shaderless pipelines (disabled variants) register fine.
	if err := b.PipelineCreated(&compute.PipelineState{}); err != nil {
		t.Errorf("expected nil-program pipeline accepted, got %v", err)
	}
}

func TestBindErrorsAreRecorded(t *testing.T) {
	b := New(nil, nil)

	// Typed image bindings are unsupported.
	b.BindTexture(compute.TextureSlot{Slot: 2})
	if err := b.Err(); err == nil {
		t.Error("expected recorded error for typed texture slot")
	}
	if err := b.Err(); err != nil {
		t.Errorf("expected Err to clear, got %v", err)
	}

	// Non-HAL buffers are rejected.
	b.BindConstBuffer(compute.BufferSlot{Slot: 0, Buffer: "bogus"})
	if err := b.Err(); err == nil {
		t.Error("expected recorded error for foreign buffer handle")
	}
}

func TestDispatchWithoutPipelineIsRecorded(t *testing.T) {
	b := New(nil, nil)
	b.DispatchGroups(1, 1, 1)
	if err := b.Err(); err == nil {
		t.Error("expected recorded error for dispatch without SetPipeline")
	}
}

func TestDispatchSkipsShaderlessPipeline(t *testing.T) {
	b := New(nil, nil)
	pso := &compute.PipelineState{}
	if err := b.PipelineCreated(pso); err != nil {
		t.Fatalf("PipelineCreated failed: %v", err)
	}
	b.SetPipeline(pso)
	b.DispatchGroups(4, 4, 1)
	if err := b.Err(); err != nil {
		t.Errorf("expected disabled variant to dispatch as a no-op, got %v", err)
	}
}

func TestLayoutSignature(t *testing.T) {
	a := []stagedBinding{
		{binding: 0, kind: gputypes.BufferBindingTypeUniform},
		{binding: 1, kind: gputypes.BufferBindingTypeStorage},
	}
	b := []stagedBinding{
		{binding: 0, kind: gputypes.BufferBindingTypeUniform},
		{binding: 1, kind: gputypes.BufferBindingTypeReadOnlyStorage},
	}
	if layoutSignature(a) == layoutSignature(b) {
		t.Error("expected differing binding kinds to change the signature")
	}
	if layoutSignature(a) != layoutSignature(a) {
		t.Error("expected signature to be deterministic")
	}
	if layoutSignature(nil) != "" {
		t.Error("expected empty signature for no bindings")
	}
}
