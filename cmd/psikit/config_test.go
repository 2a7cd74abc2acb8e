package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := loadConfig(writeConfig(t, "pid = 0x1FFE\nformat = \"ts\"\n"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.PID != 0x1FFE || cfg.Format != "ts" {
		t.Fatalf("cfg %+v", cfg)
	}
	if cfg.PrivateFamily || cfg.ShortCRC {
		t.Fatalf("unset keys should keep defaults: %+v", cfg)
	}
}

func TestLoadConfigRejectsBadValues(t *testing.T) {
	t.Parallel()

	if _, err := loadConfig(writeConfig(t, "pid = 0x2000\n")); err == nil {
		t.Fatal("out of range pid accepted")
	}
	if _, err := loadConfig(writeConfig(t, "format = \"json\"\n")); err == nil {
		t.Fatal("unknown format accepted")
	}
}
