// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package compute

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "compute.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
profile = "glsl"
dump_preprocessed = true
output_dir = "/tmp/shaders"
high_quality = true
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Profile != ProfileGLSL {
		t.Errorf("expected glsl, got %q", cfg.Profile)
	}
	if !cfg.DumpPreprocessed || cfg.OutputDir != "/tmp/shaders" || !cfg.HighQuality {
		t.Errorf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Profile != "" || cfg.DumpPreprocessed || cfg.HighQuality {
		t.Errorf("expected zero config, got %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.toml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadConfig(writeConfig(t, "profile = [1, 2]")); err == nil {
		t.Error("expected error for malformed TOML")
	}
	if _, err := LoadConfig(writeConfig(t, `profile = "spirv"`)); err == nil {
		t.Error("expected error for unknown profile")
	}
}
