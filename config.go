package compute

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config configures a Manager. The zero value selects the backend's
// preferred profile and disables dumping.
type Config struct {
	// Profile forces a shading-language profile. Empty picks the first
	// profile the backend reports.
	Profile Profile `toml:"profile"`

	// DumpPreprocessed writes every fully expanded shader source to
	// OutputDir for offline inspection.
	DumpPreprocessed bool `toml:"dump_preprocessed"`

	// OutputDir receives preprocessed dumps. Defaults to "." when dumping
	// is enabled.
	OutputDir string `toml:"output_dir"`

	// HighQuality mirrors the engine's quality toggle into templates as
	// the high_quality property.
	HighQuality bool `toml:"high_quality"`
}

// LoadConfig reads a Config from a TOML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("compute: read config: %w", err)
	}
	var c Config
	if err := toml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("compute: parse config %q: %w", path, err)
	}
	if c.Profile != "" && !c.Profile.Valid() {
		return nil, fmt.Errorf("compute: config %q: unknown profile %q", path, c.Profile)
	}
	return &c, nil
}
