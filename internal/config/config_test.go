package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()

	if cfg.LogPath == "" {
		t.Fatal("expected a default log path")
	}
	if cfg.RebootDelaySeconds != 60 {
		t.Fatalf("expected 60s reboot delay, got %d", cfg.RebootDelaySeconds)
	}
	if cfg.AutoAcceptEula {
		t.Fatal("EULA auto-accept must default to off")
	}
	if cfg.IncludeOptional {
		t.Fatal("optional updates must be excluded by default")
	}
}

func TestLoadReadsConfigFile(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "winup.yaml")
	content := []byte("auto_accept_eula: true\nreboot_delay_seconds: 15\nlog_path: C:\\logs\\custom.log\n")
	if err := os.WriteFile(path, content, 0600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if !cfg.AutoAcceptEula {
		t.Fatal("expected auto_accept_eula from file")
	}
	if cfg.RebootDelaySeconds != 15 {
		t.Fatalf("expected reboot delay 15, got %d", cfg.RebootDelaySeconds)
	}
	if cfg.LogPath != `C:\logs\custom.log` {
		t.Fatalf("expected log path override, got %q", cfg.LogPath)
	}
	// Unset keys keep their defaults.
	if cfg.RebootTimeoutSeconds != 300 {
		t.Fatalf("expected default reboot timeout, got %d", cfg.RebootTimeoutSeconds)
	}
}

func TestLoadMissingFileKeepsDefaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load without config file should succeed, got %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("expected default log level, got %q", cfg.LogLevel)
	}
}
