package match_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dubber/internal/match"
	"dubber/internal/merge"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestMatchByNameReturnsIntersection(t *testing.T) {
	audioDir := t.TempDir()
	videoDir := t.TempDir()
	outDir := t.TempDir()

	for _, name := range []string{"episode1.mp3", "episode2.mp3", "extra.mp3"} {
		writeFile(t, filepath.Join(audioDir, name))
	}
	for _, name := range []string{"episode2.mkv", "episode1.mkv", "other.mkv"} {
		writeFile(t, filepath.Join(videoDir, name))
	}

	pairs, err := match.Match(audioDir, videoDir, outDir, merge.Config{})
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	// Lexicographic by base name.
	if filepath.Base(pairs[0].VideoPath) != "episode1.mkv" {
		t.Fatalf("unexpected first pair: %+v", pairs[0])
	}
	want := filepath.Join(outDir, "episode1_merged.mp4")
	if pairs[0].OutputPath != want {
		t.Fatalf("expected output %s, got %s", want, pairs[0].OutputPath)
	}
}

func TestMatchIgnoresForeignExtensions(t *testing.T) {
	audioDir := t.TempDir()
	videoDir := t.TempDir()

	writeFile(t, filepath.Join(audioDir, "track.mp3"))
	writeFile(t, filepath.Join(audioDir, "notes.txt"))
	writeFile(t, filepath.Join(videoDir, "TRACK.MKV"))

	pairs, err := match.Match(audioDir, videoDir, t.TempDir(), merge.Config{})
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	// Extension matching is case-insensitive but base names are compared
	// exactly, so "track" vs "TRACK" falls through to the positional tier.
	if len(pairs) != 1 {
		t.Fatalf("expected 1 positional pair, got %d", len(pairs))
	}
	if filepath.Base(pairs[0].OutputPath) != "TRACK_merged.mp4" {
		t.Fatalf("unexpected output: %s", pairs[0].OutputPath)
	}
}

func TestPositionalFallbackPairsByCreationOrder(t *testing.T) {
	audioDir := t.TempDir()
	videoDir := t.TempDir()
	outDir := t.TempDir()

	for _, name := range []string{"a-take.mp3", "b-take.mp3", "c-take.mp3"} {
		writeFile(t, filepath.Join(audioDir, name))
		time.Sleep(5 * time.Millisecond)
	}
	for _, name := range []string{"first.mkv", "second.mkv"} {
		writeFile(t, filepath.Join(videoDir, name))
		time.Sleep(5 * time.Millisecond)
	}

	pairs, err := match.Match(audioDir, videoDir, outDir, merge.Config{})
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(pairs) != 2 {
		t.Fatalf("expected min(3,2)=2 pairs, got %d", len(pairs))
	}
	if filepath.Base(pairs[0].AudioPath) != "a-take.mp3" || filepath.Base(pairs[0].VideoPath) != "first.mkv" {
		t.Fatalf("unexpected first positional pair: %+v", pairs[0])
	}
	if filepath.Base(pairs[1].OutputPath) != "second_merged.mp4" {
		t.Fatalf("unexpected output derivation: %s", pairs[1].OutputPath)
	}
}

func TestEmptyAudioDirectoryIsNotAnError(t *testing.T) {
	audioDir := t.TempDir()
	videoDir := t.TempDir()
	writeFile(t, filepath.Join(videoDir, "only.mkv"))

	pairs, err := match.Match(audioDir, videoDir, t.TempDir(), merge.Config{})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(pairs) != 0 {
		t.Fatalf("expected no pairs, got %d", len(pairs))
	}
}

func TestMissingDirectory(t *testing.T) {
	videoDir := t.TempDir()
	_, err := match.Match(filepath.Join(videoDir, "missing"), videoDir, t.TempDir(), merge.Config{})
	if !errors.Is(err, match.ErrDirectoryNotFound) {
		t.Fatalf("expected ErrDirectoryNotFound, got %v", err)
	}
}

func TestSocialFormatDrivesOutputExtension(t *testing.T) {
	audioDir := t.TempDir()
	videoDir := t.TempDir()
	writeFile(t, filepath.Join(audioDir, "clip.mp3"))
	writeFile(t, filepath.Join(videoDir, "clip.mkv"))

	cfg := merge.Config{SocialMedia: true, SocialFormat: "webm"}
	pairs, err := match.Match(audioDir, videoDir, t.TempDir(), cfg)
	if err != nil {
		t.Fatalf("Match failed: %v", err)
	}
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if filepath.Ext(pairs[0].OutputPath) != ".webm" {
		t.Fatalf("expected .webm output, got %s", pairs[0].OutputPath)
	}
}
