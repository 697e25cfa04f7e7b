package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/bldgltf/pkg/material"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Export.Generator != "bldgltf" {
		t.Errorf("expected generator bldgltf, got %s", cfg.Export.Generator)
	}
	if cfg.ColorBy() != material.BySurfaceType {
		t.Errorf("expected surface_type coloring, got %s", cfg.Export.ColorBy)
	}
	if cfg.Export.Tolerance != 0.001 {
		t.Errorf("expected tolerance 0.001, got %v", cfg.Export.Tolerance)
	}
	if cfg.Export.Binary || cfg.Export.AssignColors {
		t.Error("expected binary and assign_colors off by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.LogFile != "" {
		t.Errorf("unexpected logging defaults %+v", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromFile(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
export:
  generator: "site survey"
  color_by: thermal_zone
  binary: true
  tolerance: 0.01

logging:
  level: "debug"
  log_file: "bldgltf.log"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Export.Generator != "site survey" {
		t.Errorf("expected generator 'site survey', got %s", cfg.Export.Generator)
	}
	if cfg.ColorBy() != material.ByThermalZone {
		t.Errorf("expected thermal_zone, got %s", cfg.Export.ColorBy)
	}
	if !cfg.Export.Binary || cfg.Export.Tolerance != 0.01 {
		t.Errorf("unexpected export section %+v", cfg.Export)
	}
	if cfg.Export.AssignColors {
		t.Error("unset key should keep its default")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.LogFile != "bldgltf.log" {
		t.Errorf("unexpected logging section %+v", cfg.Logging)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "invalid.yaml")

	invalidYAML := `
export:
  tolerance: not a number
  invalid syntax here
`
	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	if err := loadFromFile(Default(), configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	if err := loadFromFile(Default(), "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty color scheme", func(c *Config) { c.Export.ColorBy = "" }, false},
		{"unknown color scheme", func(c *Config) { c.Export.ColorBy = "rainbow" }, true},
		{"zero tolerance", func(c *Config) { c.Export.Tolerance = 0 }, false},
		{"negative tolerance", func(c *Config) { c.Export.Tolerance = -1 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	cfg := Default()
	cfg.Export.Tolerance = -1
	if err := cfg.Validate(); !errors.Is(err, ErrNegativeTolerance) {
		t.Errorf("expected ErrNegativeTolerance, got %v", err)
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	t.Setenv("HOME", tmpDir)
	os.Chdir(tmpDir)

	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	if err := os.WriteFile(filepath.Join(tmpDir, "bldgltf.yaml"), []byte("export:\n  binary: true\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}
	if path := findConfigFile(); path == "" {
		t.Error("expected to find bldgltf.yaml in current directory")
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*testing.T, *Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "color-by flag",
			setup: func() { *flagColorBy = "boundary" },
			verify: func(t *testing.T, cfg *Config) {
				if cfg.ColorBy() != material.ByBoundary {
					t.Errorf("expected boundary, got %s", cfg.Export.ColorBy)
				}
			},
			teardown: func() { *flagColorBy = "" },
		},
		{
			name:  "binary flag",
			setup: func() { *flagBinary = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Export.Binary {
					t.Error("expected binary output")
				}
			},
			teardown: func() { *flagBinary = false },
		},
		{
			name: "tolerance and generator flags",
			setup: func() {
				*flagTolerance = 0.05
				*flagGenerator = "ci"
			},
			verify: func(t *testing.T, cfg *Config) {
				if cfg.Export.Tolerance != 0.05 || cfg.Export.Generator != "ci" {
					t.Errorf("unexpected export section %+v", cfg.Export)
				}
			},
			teardown: func() {
				*flagTolerance = 0
				*flagGenerator = ""
			},
		},
		{
			name:  "assign-colors flag",
			setup: func() { *flagAssignColors = true },
			verify: func(t *testing.T, cfg *Config) {
				if !cfg.Export.AssignColors {
					t.Error("expected assign_colors")
				}
			},
			teardown: func() { *flagAssignColors = false },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(t, cfg)
		})
	}
}

func TestParseFlags(t *testing.T) {
	defer func() { *flagBinary, *flagColorBy = false, "" }()

	rest, err := ParseFlags([]string{"-binary", "-color-by", "construction", "model.yaml", "out.glb"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 2 || rest[0] != "model.yaml" || rest[1] != "out.glb" {
		t.Errorf("unexpected positional args %v", rest)
	}
	if !*flagBinary || *flagColorBy != "construction" {
		t.Error("flags not parsed")
	}
}

func TestLoadPriority(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")

	yamlContent := `
export:
  color_by: construction
  generator: from file
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagColorBy = "building_story"
	defer func() {
		*flagConfig = ""
		*flagColorBy = ""
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.ColorBy() != material.ByBuildingStory {
		t.Errorf("expected building_story from flag, got %s", cfg.Export.ColorBy)
	}
	if cfg.Export.Generator != "from file" {
		t.Errorf("expected generator from file, got %s", cfg.Export.Generator)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	*flagConfig = ""
	*flagColorBy = "rainbow"
	defer func() { *flagColorBy = "" }()

	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmp)
	os.Chdir(tmp)

	if _, err := Load(); err == nil {
		t.Error("expected an unknown color scheme to fail")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := Default()
	cfg.Export.ColorBy = string(material.ByConstruction)
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatal(err)
	}
	if loaded.ColorBy() != material.ByConstruction {
		t.Errorf("saved color scheme lost, got %s", loaded.Export.ColorBy)
	}
}
