package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Engine.Path != "nvim" {
		t.Errorf("Engine.Path = %q, want %q", cfg.Engine.Path, "nvim")
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "info")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "nvimlink.toml", `
[engine]
path = "/usr/bin/nvim"
pre_script = "/etc/nvimlink/pre.vim"
clean = true
profile = "work"

[ui]
width = 240

[log]
level = "debug"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine.Path != "/usr/bin/nvim" {
		t.Errorf("Engine.Path = %q", cfg.Engine.Path)
	}
	if cfg.Engine.PreScript != "/etc/nvimlink/pre.vim" {
		t.Errorf("Engine.PreScript = %q", cfg.Engine.PreScript)
	}
	if !cfg.Engine.Clean {
		t.Error("Engine.Clean = false, want true")
	}
	if cfg.Engine.Profile != "work" {
		t.Errorf("Engine.Profile = %q", cfg.Engine.Profile)
	}
	if cfg.UI.Width != 240 {
		t.Errorf("UI.Width = %d, want 240", cfg.UI.Width)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "nvimlink.yaml", `
engine:
  path: /opt/nvim
  debug_listen: "127.0.0.1:7777"
ui:
  width: 120
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Engine.Path != "/opt/nvim" {
		t.Errorf("Engine.Path = %q", cfg.Engine.Path)
	}
	if cfg.Engine.DebugListen != "127.0.0.1:7777" {
		t.Errorf("Engine.DebugListen = %q", cfg.Engine.DebugListen)
	}
	if cfg.UI.Width != 120 {
		t.Errorf("UI.Width = %d, want 120", cfg.UI.Width)
	}
	// Unset sections keep defaults.
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want default info", cfg.Log.Level)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load(missing) error = %v, want nil", err)
	}
	if cfg.Engine.Path != "nvim" {
		t.Errorf("missing file should yield defaults, got path %q", cfg.Engine.Path)
	}
}

func TestLoadUnsupportedFormat(t *testing.T) {
	path := writeFile(t, t.TempDir(), "nvimlink.json", `{}`)

	_, err := Load(path)
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("Load(.json) = %v, want ErrUnsupportedFormat", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := writeFile(t, t.TempDir(), "bad.toml", `engine = [not toml`)

	if _, err := Load(path); err == nil {
		t.Error("Load(malformed) error = nil, want parse error")
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvDebugListen, "0.0.0.0:9000")

	cfg := Default()
	cfg.Engine.DebugListen = "127.0.0.1:1234"
	cfg.ApplyEnv()

	if cfg.Engine.DebugListen != "0.0.0.0:9000" {
		t.Errorf("DebugListen = %q, want env override", cfg.Engine.DebugListen)
	}
}

func TestApplyEnvUnset(t *testing.T) {
	t.Setenv(EnvDebugListen, "")

	cfg := Default()
	cfg.Engine.DebugListen = "127.0.0.1:1234"
	cfg.ApplyEnv()

	if cfg.Engine.DebugListen != "127.0.0.1:1234" {
		t.Errorf("DebugListen = %q, want file value preserved", cfg.Engine.DebugListen)
	}
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Engine.Path = ""
	if err := cfg.Validate(); !errors.Is(err, ErrNoEnginePath) {
		t.Errorf("Validate() = %v, want ErrNoEnginePath", err)
	}

	cfg = Default()
	cfg.UI.Width = -1
	if err := cfg.Validate(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Validate() = %v, want ErrInvalidValue", err)
	}
}
