package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("log level = %q, want info", cfg.Log.Level)
	}
	if cfg.UI.LineHeight != 1 {
		t.Errorf("line height = %v, want 1", cfg.UI.LineHeight)
	}
	if cfg.Raw() != nil {
		t.Error("raw document should be nil for defaults")
	}
}

func TestLoadReadsValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	doc := `
[log]
level = "debug"
file = "/tmp/caret-test.log"

[session]
path = "/tmp/caret-test.db"

[ui]
line_height = 18.5

[bindings]
"<ctrl>u" = "undo"
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if cfg.Session.Path != "/tmp/caret-test.db" {
		t.Errorf("session path = %q", cfg.Session.Path)
	}
	if cfg.UI.LineHeight != 18.5 {
		t.Errorf("line height = %v", cfg.UI.LineHeight)
	}
	if len(cfg.Raw()) == 0 {
		t.Error("raw document should be kept for the bindings section")
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("want error for malformed config")
	}
}

func TestLineHeightFloorsToOne(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[ui]\nline_height = -3.0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.UI.LineHeight != 1 {
		t.Errorf("line height = %v, want clamped to 1", cfg.UI.LineHeight)
	}
}
