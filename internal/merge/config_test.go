package merge_test

import (
	"testing"

	"dubber/internal/merge"
)

func TestNormalizedFillsDefaults(t *testing.T) {
	cfg := merge.Config{}.Normalized()
	if cfg.AudioCodec != merge.AudioAAC {
		t.Fatalf("expected aac default, got %q", cfg.AudioCodec)
	}
	if cfg.VideoCodec != merge.VideoCopy {
		t.Fatalf("expected copy default, got %q", cfg.VideoCodec)
	}
	if cfg.SocialWidth != 1080 || cfg.SocialHeight != 1080 {
		t.Fatalf("expected 1080x1080 default, got %dx%d", cfg.SocialWidth, cfg.SocialHeight)
	}
}

func TestNormalizedIsIdempotent(t *testing.T) {
	cfg := merge.Config{
		ReplaceAudio: true,
		KeepOriginal: true,
		AudioCodec:   "MP3",
		SocialMedia:  true,
		SocialFormat: "WebM",
	}
	once := cfg.Normalized()
	twice := once.Normalized()
	if once != twice {
		t.Fatalf("normalization not idempotent: %+v vs %+v", once, twice)
	}
	if once.KeepOriginal {
		t.Fatal("keep_original must be cleared when replace_audio is set")
	}
	if once.OutputExtension() != "webm" {
		t.Fatalf("expected webm extension, got %q", once.OutputExtension())
	}
}

func TestOutputExtension(t *testing.T) {
	cases := []struct {
		name string
		cfg  merge.Config
		want string
	}{
		{"default", merge.Config{}, "mp4"},
		{"webm requested", merge.Config{OutputFormat: "webm"}, "webm"},
		{"mov falls back to mp4", merge.Config{OutputFormat: "mov"}, "mp4"},
		{"social overrides", merge.Config{OutputFormat: "webm", SocialMedia: true, SocialFormat: "mov"}, "mov"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.OutputExtension(); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
