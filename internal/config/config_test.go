package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubber/internal/config"
)

func TestDefaultValidates(t *testing.T) {
	cfg := config.Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Merge.AudioCodec != "aac" {
		t.Fatalf("unexpected default audio codec %q", cfg.Merge.AudioCodec)
	}
	if !cfg.Merge.KeepOriginal {
		t.Fatal("expected keep_original default true")
	}
	if cfg.Jobs.MaxConcurrentPerOwner != 2 {
		t.Fatalf("unexpected default concurrency cap %d", cfg.Jobs.MaxConcurrentPerOwner)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
data_dir = "` + filepath.Join(dir, "data") + `"
api_bind = " 127.0.0.1:9000 "

[merge]
audio_codec = "MP3"
output_format = "WEBM"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected config at %s to be loaded, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Merge.AudioCodec != "mp3" {
		t.Fatalf("expected lowercased codec, got %q", cfg.Merge.AudioCodec)
	}
	if cfg.Merge.OutputFormat != "webm" {
		t.Fatalf("expected lowercased format, got %q", cfg.Merge.OutputFormat)
	}
	if cfg.Paths.APIBind != "127.0.0.1:9000" {
		t.Fatalf("expected trimmed bind, got %q", cfg.Paths.APIBind)
	}
	if !filepath.IsAbs(cfg.Paths.DataDir) {
		t.Fatalf("expected absolute data dir, got %q", cfg.Paths.DataDir)
	}
}

func TestLoadRejectsUnknownCodec(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[merge]
video_codec = "av1"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, _, _, err := config.Load(path)
	if err == nil {
		t.Fatal("expected validation error for unsupported codec")
	}
	if !strings.Contains(err.Error(), "video_codec") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	if _, _, exists, err := config.Load(path); err != nil || !exists {
		t.Fatalf("sample config should load cleanly: exists=%v err=%v", exists, err)
	}
}
