package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// clearEnv blanks every environment variable the loader consults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range []string{"SENDER_EMAIL", "SMTP_SERVER", "SMTP_PORT", "LOG_LEVEL"} {
		t.Setenv(env, "")
	}
}

// writeConfig writes a settings file in a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "securemail.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return path
}

func TestLoad_FromFile(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, `sender_email: me@example.com
smtp:
  server: smtp.example.com
  port: 587
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SenderEmail != "me@example.com" {
		t.Errorf("SenderEmail: got %q, want %q", cfg.SenderEmail, "me@example.com")
	}
	if cfg.SMTP.Server != "smtp.example.com" {
		t.Errorf("SMTP.Server: got %q, want %q", cfg.SMTP.Server, "smtp.example.com")
	}
	if cfg.SMTP.Port != 587 {
		t.Errorf("SMTP.Port: got %d, want %d", cfg.SMTP.Port, 587)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "info")
	}
}

func TestLoad_EnvVarOverrides(t *testing.T) {
	path := writeConfig(t, `sender_email: me@example.com
smtp:
  server: smtp.example.com
  port: 587
`)

	t.Setenv("SENDER_EMAIL", "other@example.com")
	t.Setenv("SMTP_SERVER", "smtp.other.com")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.SenderEmail != "other@example.com" {
		t.Errorf("SenderEmail: got %q, want %q", cfg.SenderEmail, "other@example.com")
	}
	if cfg.SMTP.Server != "smtp.other.com" {
		t.Errorf("SMTP.Server: got %q, want %q", cfg.SMTP.Server, "smtp.other.com")
	}
	if cfg.SMTP.Port != 2525 {
		t.Errorf("SMTP.Port: got %d, want %d", cfg.SMTP.Port, 2525)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level: got %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_MissingFileCreatesTemplate(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "securemail.yaml")

	_, err := Load(path)
	if !errors.Is(err, ErrTemplateCreated) {
		t.Fatalf("got %v, want ErrTemplateCreated", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("template file was not written: %v", err)
	}
	if !strings.Contains(string(data), "youremail@example.com") {
		t.Errorf("template missing placeholder sender: %q", string(data))
	}
	if !strings.Contains(string(data), "smtp.gmail.com") {
		t.Errorf("template missing placeholder server: %q", string(data))
	}
}

func TestLoad_MissingRequiredKey(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name    string
		content string
		wantKey string
	}{
		{
			name:    "sender_email",
			content: "smtp:\n  server: smtp.example.com\n  port: 587\n",
			wantKey: "sender_email",
		},
		{
			name:    "smtp.server",
			content: "sender_email: me@example.com\nsmtp:\n  port: 587\n",
			wantKey: "smtp.server",
		},
		{
			name:    "smtp.port",
			content: "sender_email: me@example.com\nsmtp:\n  server: smtp.example.com\n",
			wantKey: "smtp.port",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			_, err := Load(path)
			if err == nil {
				t.Fatal("expected error for missing required setting")
			}
			if !strings.Contains(err.Error(), tt.wantKey) {
				t.Errorf("error %q does not name missing setting %q", err, tt.wantKey)
			}
		})
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	clearEnv(t)

	path := writeConfig(t, "sender_email: [unterminated\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}
