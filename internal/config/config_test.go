package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SANTRAL_CONFIG", filepath.Join(t.TempDir(), "missing.toml"))

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path == "" {
		t.Error("database path default missing")
	}
	if cfg.UI.Theme != "orange" {
		t.Errorf("theme = %q, want orange", cfg.UI.Theme)
	}
	if !cfg.UI.PiPEnabled {
		t.Error("pip should default on")
	}
}

func TestLoadReadsFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	body := `
[database]
path = "/tmp/other.db"

[ui]
theme = "blue"
pip_enabled = false
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("SANTRAL_CONFIG", path)
	t.Setenv("SANTRAL_UI_THEME", "pink")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.Path != "/tmp/other.db" {
		t.Errorf("database path = %q", cfg.Database.Path)
	}
	if cfg.UI.Theme != "pink" {
		t.Errorf("theme = %q, want the env override", cfg.UI.Theme)
	}
	if cfg.UI.PiPEnabled {
		t.Error("pip should follow the file value off")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	t.Setenv("SANTRAL_CONFIG", path)

	want := Config{
		Database:     DatabaseConfig{Path: "/tmp/santral.db"},
		Provisioning: ProvisioningConfig{URL: "https://panel.example/api"},
		Directory:    DirectoryConfig{URL: "https://panel.example/dir"},
		UI:           UIConfig{Theme: "green", PiPEnabled: false},
	}
	if err := Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.UI.Theme != "green" || got.UI.PiPEnabled {
		t.Errorf("ui = %+v", got.UI)
	}
	if got.Provisioning.URL != want.Provisioning.URL || got.Directory.URL != want.Directory.URL {
		t.Errorf("urls = %+v / %+v", got.Provisioning, got.Directory)
	}
}
