package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

func newTestLogger(t *testing.T, cfg Config) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	cfg.Writer = buf
	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return logger, buf
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("failed to decode log line %q: %v", buf.String(), err)
	}
	return entry
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "valid JSON config", config: Config{Level: "info", Format: "json", RedactSecrets: true}},
		{name: "valid text config", config: Config{Level: "debug", Format: "text"}},
		{name: "empty values use defaults", config: Config{}},
		{name: "invalid log level", config: Config{Level: "loud", Format: "json"}, wantErr: true},
		{name: "invalid format", config: Config{Level: "info", Format: "console"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.config.Writer = &bytes.Buffer{}
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLogger_LevelFiltering(t *testing.T) {
	tests := []struct {
		name      string
		logLevel  string
		logMethod func(*Logger, string)
		wantLog   bool
	}{
		{
			name:      "debug level logs debug",
			logLevel:  "debug",
			logMethod: func(l *Logger, msg string) { l.Debug(msg) },
			wantLog:   true,
		},
		{
			name:      "info level filters debug",
			logLevel:  "info",
			logMethod: func(l *Logger, msg string) { l.Debug(msg) },
			wantLog:   false,
		},
		{
			name:      "warn level filters info",
			logLevel:  "warn",
			logMethod: func(l *Logger, msg string) { l.Info(msg) },
			wantLog:   false,
		},
		{
			name:      "warn level logs error",
			logLevel:  "warn",
			logMethod: func(l *Logger, msg string) { l.Error(msg) },
			wantLog:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestLogger(t, Config{Level: tt.logLevel, Format: "json"})
			tt.logMethod(logger, "test message")

			hasLog := strings.Contains(buf.String(), "test message")
			if hasLog != tt.wantLog {
				t.Errorf("logged = %v, want %v (output: %q)", hasLog, tt.wantLog, buf.String())
			}
		})
	}
}

func TestLogger_ContextFields(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info", Format: "json"})

	ctx := WithRequestID(context.Background(), "req-123")
	ctx = WithTenant(ctx, "demo1")
	logger.InfoContext(ctx, "forwarding", "path", "/page")

	entry := decodeLine(t, buf)
	if entry["request_id"] != "req-123" {
		t.Errorf("expected request_id req-123, got %v", entry["request_id"])
	}
	if entry["tenant"] != "demo1" {
		t.Errorf("expected tenant demo1, got %v", entry["tenant"])
	}
	if entry["path"] != "/page" {
		t.Errorf("expected path /page, got %v", entry["path"])
	}
}

func TestLogger_SlogCarriesContextFields(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info", Format: "json"})

	ctx := WithTenant(context.Background(), "acme")
	logger.Slog().InfoContext(ctx, "built")

	entry := decodeLine(t, buf)
	if entry["tenant"] != "acme" {
		t.Errorf("expected tenant acme from *slog.Logger, got %v", entry["tenant"])
	}
}

func TestLogger_With(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info", Format: "json"})

	logger.With("component", "dispatch").Info("ready")

	entry := decodeLine(t, buf)
	if entry["component"] != "dispatch" {
		t.Errorf("expected component field, got %v", entry["component"])
	}
}

func TestLogger_WithContext(t *testing.T) {
	logger, _ := newTestLogger(t, Config{Level: "info", Format: "json"})

	if got := logger.WithContext(context.Background()); got != logger {
		t.Error("expected the same logger when context carries no fields")
	}
	if got := logger.WithContext(WithRequestID(context.Background(), "r")); got == logger {
		t.Error("expected a derived logger when context carries fields")
	}
}

func TestLogger_Redaction(t *testing.T) {
	tests := []struct {
		name    string
		redact  bool
		wantRaw bool
	}{
		{name: "redaction enabled", redact: true, wantRaw: false},
		{name: "redaction disabled", redact: false, wantRaw: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, buf := newTestLogger(t, Config{Level: "info", Format: "json", RedactSecrets: tt.redact})

			logger.Info("request", "query", "page=2&token=abcdef123456", "authorization", "Bearer abcdef123456")

			hasRaw := strings.Contains(buf.String(), "abcdef123456")
			if hasRaw != tt.wantRaw {
				t.Errorf("raw secret present = %v, want %v (output: %q)", hasRaw, tt.wantRaw, buf.String())
			}
		})
	}
}

func TestLogger_RedactsWithAttrs(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info", Format: "json", RedactSecrets: true})

	logger.Slog().With("password", "hunter2hunter2").Info("login")

	if strings.Contains(buf.String(), "hunter2hunter2") {
		t.Errorf("expected password to be redacted: %q", buf.String())
	}
}

func TestLogger_Formats(t *testing.T) {
	logger, buf := newTestLogger(t, Config{Level: "info", Format: "text"})
	logger.Info("hello", "key", "value")

	if !strings.Contains(buf.String(), "key=value") {
		t.Errorf("expected text output, got %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"trace", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseLevel(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseLevel(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
