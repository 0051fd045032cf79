package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"calmmate/config"
)

func TestLoad_ExpandsEnvAndAppliesDefaults(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "gsk-test-123")

	raw := `
groq:
  api_key: "${GROQ_API_KEY}"
storage:
  retention: "48h"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	if cfg.Groq.APIKey != "gsk-test-123" {
		t.Errorf("api key: got %q", cfg.Groq.APIKey)
	}
	if cfg.Storage.Retention != "48h" {
		t.Errorf("retention: got %q", cfg.Storage.Retention)
	}

	// Everything unset falls back to defaults.
	if cfg.Server.Addr != ":8000" {
		t.Errorf("addr: got %q", cfg.Server.Addr)
	}
	if cfg.Storage.UploadDir != "uploaded_audio" || cfg.Storage.ReplyDir != "voice_replies" {
		t.Errorf("dirs: got %q, %q", cfg.Storage.UploadDir, cfg.Storage.ReplyDir)
	}
	if cfg.Media.MinDuration != 1.0 {
		t.Errorf("min duration: got %v", cfg.Media.MinDuration)
	}
	if cfg.Groq.WhisperModel != "whisper-large-v3-turbo" {
		t.Errorf("whisper model: got %q", cfg.Groq.WhisperModel)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("log: got %q, %q", cfg.Log.Level, cfg.Log.Format)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server: [unclosed"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := config.Load(path); err == nil {
		t.Fatal("expected error")
	}
}
