package compute

// Profile identifies a shading-language target. The manager selects one
// from the backend's supported list and uses its file extension to pick
// template fragment files.
type Profile string

// Supported shading-language profiles.
const (
	ProfileWGSL Profile = "wgsl"
	ProfileGLSL Profile = "glsl"
	ProfileHLSL Profile = "hlsl"
	ProfileMSL  Profile = "msl"
)

// FileExtension returns the template file extension for the profile.
// Piece files are only consumed when their name carries the extension of
// the active profile, so one job can ship per-language fragments side by
// side.
func (p Profile) FileExtension() string {
	switch p {
	case ProfileWGSL:
		return ".wgsl"
	case ProfileGLSL:
		return ".glsl"
	case ProfileHLSL:
		return ".hlsl"
	case ProfileMSL:
		return ".metal"
	default:
		return ""
	}
}

// Valid reports whether p names a known profile.
func (p Profile) Valid() bool {
	switch p {
	case ProfileWGSL, ProfileGLSL, ProfileHLSL, ProfileMSL:
		return true
	}
	return false
}

// hlslComputeTargets are the HLSL compute shader targets, best to worst.
// The manager picks the first one the backend reports as supported.
var hlslComputeTargets = [...]string{"cs_5_0", "cs_4_1", "cs_4_0"}

// hlslTargetProvider is implemented by backends that can report which HLSL
// compute targets the driver accepts, best first.
type hlslTargetProvider interface {
	SupportedHLSLTargets() []string
}
