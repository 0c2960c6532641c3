package compute

// PipelineState is the immutable bundle of compiled code plus dispatch
// dimensions, ready for submission. Instances are owned jointly by the
// manager's PSO cache and the backend, which is notified on creation and
// destruction.
type PipelineState struct {
	// Program is the compiled shader, shared with every other pipeline
	// state whose generated source hashed identically. Nil when the
	// template disabled compilation for this property combination.
	Program Program

	// SourceHash is the 128-bit content hash of the generated source.
	SourceHash Hash128

	// ThreadsPerGroup is the GPU workgroup size.
	ThreadsPerGroup [3]uint32

	// NumThreadGroups is the number of workgroups to dispatch.
	NumThreadGroups [3]uint32
}

// threadDimensionNames pairs each dimension with its property name, in the
// order they appear in ThreadsPerGroup then NumThreadGroups.
var threadDimensionNames = [6]string{
	PropThreadsPerGroupX, PropThreadsPerGroupY, PropThreadsPerGroupZ,
	PropNumThreadGroupsX, PropNumThreadGroupsY, PropNumThreadGroupsZ,
}

// validateDims returns a ConfigError naming every zero dimension, or nil
// when all six are positive. Zero dimensions are fatal: some APIs (Metal)
// cannot dispatch without explicit sizes, so they are never defaulted.
func (p *PipelineState) validateDims() error {
	var missing []string
	for i, name := range threadDimensionNames {
		var v uint32
		if i < 3 {
			v = p.ThreadsPerGroup[i]
		} else {
			v = p.NumThreadGroups[i-3]
		}
		if v == 0 {
			missing = append(missing, name)
		}
	}
	if missing != nil {
		return newDimensionError(missing)
	}
	return nil
}
