package compute

// Well-known property names consumed by the dispatcher and refreshed
// automatically before each cache lookup. Templates read and write them
// like any other property.
const (
	// Thread-group sizing. All six must be nonzero by dispatch time, set
	// either from code or by the template itself.
	PropThreadsPerGroupX = "threads_per_group_x"
	PropThreadsPerGroupY = "threads_per_group_y"
	PropThreadsPerGroupZ = "threads_per_group_z"
	PropNumThreadGroupsX = "num_thread_groups_x"
	PropNumThreadGroupsY = "num_thread_groups_y"
	PropNumThreadGroupsZ = "num_thread_groups_z"

	// Auto-computed from the job's texture bindings: the number of occupied
	// slots, one past the highest occupied slot, and a per-slot marker
	// ("texture0", "texture1", ...) for each occupied slot.
	PropNumTextureSlots = "num_texture_slots"
	PropMaxTextureSlot  = "max_texture_slot"
	PropTexture         = "texture"

	// Auto-computed from the job's UAV bindings, same scheme as textures.
	PropNumUavSlots = "num_uav_slots"
	PropMaxUavSlot  = "max_uav_slot"
	PropUav         = "uav"

	// PropDisableCompilation lets a template opt out of producing a shader
	// for a property combination: @set( disable_compilation, 1 ). The flag
	// lives in the per-attempt compilation table, so it never leaks into
	// subsequent attempts.
	PropDisableCompilation = "disable_compilation"

	// Animation support baked into the compiled program.
	PropSkeleton = "skeleton"
	PropPose     = "pose"

	// PropHighQuality mirrors the manager's quality setting into templates.
	PropHighQuality = "high_quality"

	// PropGlslVersion is injected when compiling for the GLSL profile.
	PropGlslVersion = "glsl_version"
)
