package compute

// Buffer is an opaque GPU buffer handle owned by the graphics layer.
// The core never inspects it; it flows through to the Backend's binding
// calls unchanged.
type Buffer any

// Texture is an opaque GPU texture handle owned by the graphics layer.
type Texture any

// Program is an opaque handle to GPU-compiled shader code, immutable after
// creation. Any number of pipeline states may share one Program.
type Program any

// Access describes how a dispatch accesses a UAV resource.
type Access uint8

// UAV access modes.
const (
	AccessRead Access = 1 + iota
	AccessWrite
	AccessReadWrite
)

func (a Access) String() string {
	switch a {
	case AccessRead:
		return "read"
	case AccessWrite:
		return "write"
	case AccessReadWrite:
		return "readwrite"
	}
	return "unknown"
}

// BufferSlot binds a constant buffer to a numbered slot, optionally
// restricted to a byte range. SizeBytes 0 means "to the end".
type BufferSlot struct {
	Slot      uint32
	Buffer    Buffer
	Offset    uint32
	SizeBytes uint32
}

// TextureSlot binds either a typed texture or a raw buffer view to a
// numbered slot. When Buffer is non-nil the slot is bound as a byte range
// of that buffer instead of a typed image.
type TextureSlot struct {
	Slot      uint32
	Texture   Texture
	Buffer    Buffer
	Offset    uint32
	SizeBytes uint32
	MipLevel  uint8
	Access    Access
}

// ShaderSource carries one final, fully preprocessed shader text to the
// backend compiler together with its profile-specific parameters.
type ShaderSource struct {
	// Name labels the program for debugging (content hash + template name).
	Name string

	// Profile is the shading language of Source.
	Profile Profile

	// Source is the final generated text. It is the content-addressing key:
	// byte-identical sources must compile to a shared Program.
	Source string

	// EntryPoint is the kernel entry function, "main" by convention.
	EntryPoint string

	// Target is the compute target version for profiles that require one
	// (HLSL cs_5_0 and friends); empty otherwise.
	Target string

	// SkeletalAnimation and PoseAnimation mark support baked into the
	// generated code, deduced from the job's properties.
	SkeletalAnimation bool
	PoseAnimation     bool
}

// Backend is the graphics-layer collaborator. It compiles final shader
// source, receives pipeline lifecycle notifications, and performs the
// side-effecting binds and the dispatch itself against the active context.
//
// The Manager guarantees call ordering per dispatch: all constant buffers,
// then all texture reads, then all UAV writes, then SetPipeline, then
// DispatchGroups. PipelineCreated and PipelineDestroyed bracket every
// pipeline state's life, so backends can build and tear down API-specific
// companions (Metal argument buffers, cached HAL pipelines).
type Backend interface {
	// Name returns the backend identifier (e.g. "wgpu").
	Name() string

	// SupportedProfiles lists accepted shading-language profiles, best first.
	SupportedProfiles() []Profile

	// Compile compiles final generated source into an executable program.
	Compile(src ShaderSource) (Program, error)

	// PipelineCreated notifies the backend of a newly built pipeline state.
	// An error aborts the dispatch and the state is not cached.
	PipelineCreated(pso *PipelineState) error

	// PipelineDestroyed notifies the backend that a pipeline state was
	// released from the cache.
	PipelineDestroyed(pso *PipelineState)

	// BindConstBuffer binds a constant buffer slot for the next dispatch.
	BindConstBuffer(slot BufferSlot)

	// BindTexture binds a texture or raw buffer slot for read access.
	BindTexture(slot TextureSlot)

	// BindUav binds a UAV slot for write access.
	BindUav(slot TextureSlot)

	// SetPipeline makes the pipeline state current.
	SetPipeline(pso *PipelineState)

	// DispatchGroups submits the compute dispatch with the given
	// thread-group counts.
	DispatchGroups(x, y, z uint32)
}
