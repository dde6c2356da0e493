package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "beanwalk.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
journal: /ledger/main.bean
checker:
  command: /usr/local/bin/bean-check
  args: ["--verbose"]
tree_walker: true
verify: true
log_level: debug
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Journal != "/ledger/main.bean" {
		t.Errorf("Journal = %q", cfg.Journal)
	}
	if cfg.Checker.Command != "/usr/local/bin/bean-check" {
		t.Errorf("Checker.Command = %q", cfg.Checker.Command)
	}
	if len(cfg.Checker.Args) != 1 || cfg.Checker.Args[0] != "--verbose" {
		t.Errorf("Checker.Args = %v", cfg.Checker.Args)
	}
	if !cfg.TreeWalker || !cfg.Verify {
		t.Error("tree_walker/verify flags not loaded")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, `journal: main.bean`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Checker.Command != "bean-check" {
		t.Errorf("default checker command = %q, want bean-check", cfg.Checker.Command)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("default log level = %q, want info", cfg.LogLevel)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/beanwalk.yaml"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"empty is valid", Config{}, false},
		{"known level", Config{LogLevel: "warn"}, false},
		{"unknown level", Config{LogLevel: "loud"}, true},
		{"verify without tree walker", Config{Verify: true}, true},
		{"verify with tree walker", Config{Verify: true, TreeWalker: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
