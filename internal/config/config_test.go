package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom_FullConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
theme: latte
log_level: debug
module_path: /opt/boost/boost_v11_plus.py
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg.Theme != "latte" {
		t.Errorf("Theme: got %q, want %q", cfg.Theme, "latte")
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel: got %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.ModulePath != "/opt/boost/boost_v11_plus.py" {
		t.Errorf("ModulePath: got %q", cfg.ModulePath)
	}
}

func TestLoadFrom_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadFrom_MalformedReturnsDefaultsAndError(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("theme: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(configPath)
	if err == nil {
		t.Error("expected parse error")
	}
	if cfg != DefaultConfig() {
		t.Errorf("got %+v, want defaults", cfg)
	}
}

func TestLoadFrom_EmptyValuesFallBack(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte("theme: \"\"\nlog_level: \"\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != "mocha" || cfg.LogLevel != "info" {
		t.Errorf("got %+v, want mocha/info", cfg)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("theme: frappe\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(dir)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Theme != "frappe" {
		t.Errorf("Theme = %q, want frappe", cfg.Theme)
	}
}

func TestResolveModulePath_Configured(t *testing.T) {
	cfg := Config{ModulePath: "/srv/boost_v11_plus.py"}
	got := cfg.ResolveModulePathWith(func() (string, error) {
		t.Error("executable lookup should not run when module_path is set")
		return "", nil
	})
	if got != "/srv/boost_v11_plus.py" {
		t.Errorf("got %q", got)
	}
}

func TestResolveModulePath_NextToExecutable(t *testing.T) {
	dir := t.TempDir()
	exe := filepath.Join(dir, "boost-installer")
	if err := os.WriteFile(exe, nil, 0755); err != nil {
		t.Fatal(err)
	}
	resolvedDir, err := filepath.EvalSymlinks(dir)
	if err != nil {
		t.Fatal(err)
	}

	cfg := DefaultConfig()
	got := cfg.ResolveModulePathWith(func() (string, error) { return exe, nil })
	if want := filepath.Join(resolvedDir, "boost_v11_plus.py"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestResolveModulePath_ExecutableError(t *testing.T) {
	cfg := DefaultConfig()
	got := cfg.ResolveModulePathWith(func() (string, error) { return "", errors.New("no exe") })
	if got != "boost_v11_plus.py" {
		t.Errorf("got %q", got)
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	tests := map[string]string{
		"~":             home,
		"~/pinokio/api": filepath.Join(home, "pinokio", "api"),
		"/abs/path":     "/abs/path",
		"~other/x":      "~other/x",
	}
	for in, want := range tests {
		if got := ExpandHome(in); got != want {
			t.Errorf("ExpandHome(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestResolveDirs_ExplicitConfigDir(t *testing.T) {
	if got := ResolveConfigDir("/tmp/cfg"); got != "/tmp/cfg" {
		t.Errorf("ResolveConfigDir = %q", got)
	}
	if got := ResolveStateDir("/tmp/cfg"); got != "/tmp/cfg" {
		t.Errorf("ResolveStateDir = %q", got)
	}
	if got := ResolveStateDir(""); filepath.Base(got) != "boost-installer" {
		t.Errorf("ResolveStateDir default = %q", got)
	}
}
