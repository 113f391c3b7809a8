package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dashgate.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoadConfig_ValidFile(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "0.0.0.0:9000"
  read_timeout: 10s

dispatch:
  allowed_name_pattern: "[a-z]+"
  retention_period_min: 15
  coalesce_builds: false
  sweep_schedule: "*/5 * * * *"
  sweep_max_age: 2h

store:
  backend: "memory"

telemetry:
  logging:
    level: "debug"
    format: "text"
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:9000" {
		t.Errorf("expected listen address %q, got %q", "0.0.0.0:9000", cfg.Server.ListenAddress)
	}
	if cfg.Server.ReadTimeout != 10*time.Second {
		t.Errorf("expected read timeout 10s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("expected default write timeout, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.Dispatch.AllowedNamePattern != "[a-z]+" {
		t.Errorf("expected pattern %q, got %q", "[a-z]+", cfg.Dispatch.AllowedNamePattern)
	}
	if cfg.Dispatch.Retention() != 15*time.Minute {
		t.Errorf("expected retention 15m, got %v", cfg.Dispatch.Retention())
	}
	if cfg.Dispatch.CoalesceBuilds {
		t.Error("expected coalescing to be disabled by the file")
	}
	if cfg.Dispatch.SweepMaxAge != 2*time.Hour {
		t.Errorf("expected sweep max age 2h, got %v", cfg.Dispatch.SweepMaxAge)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("expected memory backend, got %q", cfg.Store.Backend)
	}
	if !cfg.Store.SQLite.WALMode {
		t.Error("expected WAL mode to keep its default when omitted")
	}
	if cfg.Telemetry.Logging.Format != "text" {
		t.Errorf("expected text format, got %q", cfg.Telemetry.Logging.Format)
	}
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("failed to load defaults: %v", err)
	}
	if cfg.Server.ListenAddress != DefaultListenAddress {
		t.Errorf("expected default listen address, got %q", cfg.Server.ListenAddress)
	}
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read configuration file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "server:\n  listen_address: [unclosed\n")

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected error for malformed YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse configuration file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadConfig_ValidationFailure(t *testing.T) {
	path := writeConfig(t, `
dispatch:
  allowed_name_pattern: "[unclosed"
`)

	_, err := LoadConfig(path)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "dispatch.allowed_name_pattern") {
		t.Errorf("expected error to name the field, got %v", err)
	}
}

func TestLoadConfigWithEnvOverrides_BasicOverrides(t *testing.T) {
	path := writeConfig(t, `
server:
  listen_address: "127.0.0.1:8050"
store:
  backend: "sqlite"
`)

	t.Setenv("DASHGATE_SERVER_LISTEN_ADDRESS", "0.0.0.0:7000")
	t.Setenv("DASHGATE_STORE_BACKEND", "memory")
	t.Setenv("DASHGATE_TELEMETRY_LOGGING_LEVEL", "warn")

	cfg, err := LoadConfigWithEnvOverrides(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ListenAddress != "0.0.0.0:7000" {
		t.Errorf("expected env listen address, got %q", cfg.Server.ListenAddress)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("expected env backend, got %q", cfg.Store.Backend)
	}
	if cfg.Telemetry.Logging.Level != "warn" {
		t.Errorf("expected env logging level, got %q", cfg.Telemetry.Logging.Level)
	}
}

func TestLoadConfigWithEnvOverrides_TypedValues(t *testing.T) {
	t.Setenv("DASHGATE_SERVER_READ_TIMEOUT", "3s")
	t.Setenv("DASHGATE_SERVER_MAX_HEADER_BYTES", "2048")
	t.Setenv("DASHGATE_DISPATCH_COALESCE_BUILDS", "false")
	t.Setenv("DASHGATE_BUILDER_MAX_BODY_BYTES", "4096")
	t.Setenv("DASHGATE_TELEMETRY_TRACING_SAMPLE_RATIO", "0.25")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ReadTimeout != 3*time.Second {
		t.Errorf("expected read timeout 3s, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Server.MaxHeaderBytes != 2048 {
		t.Errorf("expected max header bytes 2048, got %d", cfg.Server.MaxHeaderBytes)
	}
	if cfg.Dispatch.CoalesceBuilds {
		t.Error("expected coalescing disabled by env")
	}
	if cfg.Builder.MaxBodyBytes != 4096 {
		t.Errorf("expected max body 4096, got %d", cfg.Builder.MaxBodyBytes)
	}
	if cfg.Telemetry.Tracing.SampleRatio != 0.25 {
		t.Errorf("expected sample ratio 0.25, got %v", cfg.Telemetry.Tracing.SampleRatio)
	}
}

func TestLoadConfigWithEnvOverrides_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("DASHGATE_SERVER_READ_TIMEOUT", "soon")
	t.Setenv("DASHGATE_DISPATCH_RETENTION_PERIOD_MIN", "ten")
	t.Setenv("DASHGATE_DISPATCH_COALESCE_BUILDS", "maybe")

	cfg, err := LoadConfigWithEnvOverrides("")
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.ReadTimeout != DefaultReadTimeout {
		t.Errorf("expected default read timeout, got %v", cfg.Server.ReadTimeout)
	}
	if cfg.Dispatch.RetentionPeriodMin != DefaultRetentionPeriodMin {
		t.Errorf("expected default retention, got %d", cfg.Dispatch.RetentionPeriodMin)
	}
	if !cfg.Dispatch.CoalesceBuilds {
		t.Error("expected default coalescing")
	}
}

func TestLoadConfigWithEnvOverrides_LegacyNames(t *testing.T) {
	tests := []struct {
		name          string
		env           map[string]string
		wantPattern   string
		wantRetention int
	}{
		{
			name: "legacy names apply",
			env: map[string]string{
				LegacyEnvAllowedNamePattern: "[a-z]+",
				LegacyEnvRetentionPeriodMin: "5",
			},
			wantPattern:   "[a-z]+",
			wantRetention: 5,
		},
		{
			name: "prefixed names win",
			env: map[string]string{
				LegacyEnvAllowedNamePattern:              "[a-z]+",
				LegacyEnvRetentionPeriodMin:              "5",
				"DASHGATE_DISPATCH_ALLOWED_NAME_PATTERN": "[0-9]+",
				"DASHGATE_DISPATCH_RETENTION_PERIOD_MIN": "7",
			},
			wantPattern:   "[0-9]+",
			wantRetention: 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := LoadConfigWithEnvOverrides("")
			if err != nil {
				t.Fatalf("failed to load config: %v", err)
			}
			if cfg.Dispatch.AllowedNamePattern != tt.wantPattern {
				t.Errorf("expected pattern %q, got %q", tt.wantPattern, cfg.Dispatch.AllowedNamePattern)
			}
			if cfg.Dispatch.RetentionPeriodMin != tt.wantRetention {
				t.Errorf("expected retention %d, got %d", tt.wantRetention, cfg.Dispatch.RetentionPeriodMin)
			}
		})
	}
}
