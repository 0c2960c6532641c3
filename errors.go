package compute

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors.
var (
	// ErrJobNotFound is returned by FindJob for names that were never
	// registered. Callers that treat absence as a normal branch should use
	// LookupJob instead.
	ErrJobNotFound = errors.New("compute: job not found")
)

// ConfigError is a fatal configuration error: a dispatch was requested for
// a pipeline whose required dimensions were never set. It is raised before
// any resource binding and nothing is registered in any cache.
type ConfigError struct {
	// Missing lists the property names that resolved to zero.
	Missing []string

	// Hint suggests a remediation.
	Hint string
}

func (e *ConfigError) Error() string {
	msg := "compute: invalid dispatch configuration: " +
		strings.Join(e.Missing, ", ") + " must be nonzero"
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

// newDimensionError builds the ConfigError for zero thread-group dimensions.
func newDimensionError(missing []string) *ConfigError {
	return &ConfigError{
		Missing: missing,
		Hint: fmt.Sprintf("set them from the template with @set( %s, 64 ) "+
			"or from code with Job.SetThreadsPerGroup / Job.SetNumThreadGroups",
			PropThreadsPerGroupX),
	}
}
