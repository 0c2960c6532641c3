// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compute

import (
	"fmt"

	"github.com/chewxy/math32"
)

// weightsPerParam is how many floats fit in one shader param block; weights
// are chunked so backends with small push-constant granularity can upload
// them directly.
const weightsPerParam = 4

// GaussianWeights returns kernelRadius+1 normalized one-sided gaussian
// kernel weights. kernelRadius must be even; deviationFactor scales the
// standard deviation relative to the radius. The full mirrored kernel
// (2*radius+1 taps, center counted once) sums to 1 within floating-point
// tolerance.
func GaussianWeights(kernelRadius int, deviationFactor float32) ([]float32, error) {
	if kernelRadius < 0 || kernelRadius%2 != 0 {
		return nil, fmt.Errorf("compute: kernel radius must be even and non-negative, got %d", kernelRadius)
	}

	deviation := float32(kernelRadius) * deviationFactor
	if deviation <= 0 {
		// Degenerate kernel: a single center tap.
		deviation = 0.5
	}

	weights := make([]float32, kernelRadius+1)
	sum := float32(0)
	for i := range weights {
		x := float32(i) - float32(kernelRadius)
		w := 1 / math32.Sqrt(2*math32.Pi*deviation*deviation)
		w *= math32.Exp(-(x * x) / (2 * deviation * deviation))
		sum += w
		weights[i] = w
	}

	// The kernel is mirrored around the last tap; count the center once.
	sum = sum*2 - weights[kernelRadius]
	for i := range weights {
		weights[i] /= sum
	}
	return weights, nil
}

// SetGaussianFilterParams configures a separable gaussian blur job: it sets
// the kernel_radius property (invalidating the cached pipeline only when
// the radius actually changed) and stores the normalized weights as
// c_weights[i] shader param blocks, replacing any blocks from a previous,
// possibly larger, radius.
func SetGaussianFilterParams(job *Job, kernelRadius int, deviationFactor float32) error {
	weights, err := GaussianWeights(kernelRadius, deviationFactor)
	if err != nil {
		return err
	}

	if job.Property("kernel_radius") != int32(kernelRadius) {
		job.SetProperty("kernel_radius", int32(kernelRadius))
	}

	job.RemoveParamsWithPrefix("c_weights[")
	for i := 0; i < len(weights); i += weightsPerParam {
		end := min(i+weightsPerParam, len(weights))
		job.SetParam(fmt.Sprintf("c_weights[%d]", i), weights[i:end])
	}
	return nil
}
