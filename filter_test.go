// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compute

import (
	"testing"

	"github.com/chewxy/math32"
)

func TestGaussianWeightsNormalized(t *testing.T) {
	for _, radius := range []int{0, 2, 8, 16} {
		weights, err := GaussianWeights(radius, 0.5)
		if err != nil {
			t.Fatalf("GaussianWeights(%d) failed: %v", radius, err)
		}
		if len(weights) != radius+1 {
			t.Fatalf("expected %d weights, got %d", radius+1, len(weights))
		}

		// The full mirrored kernel must sum to 1.
		sum := float32(0)
		for _, w := range weights {
			if w < 0 {
				t.Errorf("radius %d: negative weight %v", radius, w)
			}
			sum += w
		}
		total := sum*2 - weights[radius]
		if math32.Abs(total-1) > 1e-3 {
			t.Errorf("radius %d: kernel sums to %v, want 1", radius, total)
		}

		// Weights grow toward the center tap.
		for i := 1; i < len(weights); i++ {
			if weights[i] < weights[i-1] {
				t.Errorf("radius %d: weights not monotonic at %d", radius, i)
			}
		}
	}
}

func TestGaussianWeightsRejectsOddRadius(t *testing.T) {
	if _, err := GaussianWeights(3, 0.5); err == nil {
		t.Error("expected error for odd radius")
	}
	if _, err := GaussianWeights(-2, 0.5); err == nil {
		t.Error("expected error for negative radius")
	}
}

func TestSetGaussianFilterParams(t *testing.T) {
	job := newJob("blur", "blur.any_glsl", nil)

	if err := SetGaussianFilterParams(job, 8, 0.5); err != nil {
		t.Fatalf("SetGaussianFilterParams failed: %v", err)
	}
	if got := job.Property("kernel_radius"); got != 8 {
		t.Errorf("expected kernel_radius 8, got %d", got)
	}
	if !job.TakeParamsDirty() {
		t.Error("expected params marked dirty")
	}

	// 9 weights chunked in blocks of 4.
	params := job.Params()
	wantLens := map[string]int{
		"c_weights[0]": 4,
		"c_weights[4]": 4,
		"c_weights[8]": 1,
	}
	if len(params) != len(wantLens) {
		t.Fatalf("expected %d param blocks, got %d", len(wantLens), len(params))
	}
	for _, p := range params {
		if want, ok := wantLens[p.Name]; !ok || len(p.Values) != want {
			t.Errorf("unexpected param block %q with %d values", p.Name, len(p.Values))
		}
	}

	// Shrinking the radius removes the stale tail blocks.
	if err := SetGaussianFilterParams(job, 4, 0.5); err != nil {
		t.Fatalf("SetGaussianFilterParams failed: %v", err)
	}
	for _, p := range job.Params() {
		if p.Name == "c_weights[8]" {
			t.Error("expected stale weight block removed")
		}
	}
	if got := job.Property("kernel_radius"); got != 4 {
		t.Errorf("expected kernel_radius 4, got %d", got)
	}
}
