package prefs

import (
	"context"
	"path/filepath"
	"testing"

	"dubber/internal/config"
	"dubber/internal/jobs"
	"dubber/internal/merge"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	js, err := jobs.OpenPath(filepath.Join(t.TempDir(), jobs.DatabaseFile))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = js.Close() })

	cfg := config.Default()
	store, err := New(js.DB(), &cfg)
	if err != nil {
		t.Fatalf("open prefs store: %v", err)
	}
	return store
}

func TestGetFallsBackToDefaults(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Get(context.Background(), "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.OwnerID != "alice" {
		t.Fatalf("owner id not filled in: %+v", got)
	}
	if got.MaxConcurrentJobs != 2 {
		t.Fatalf("expected default concurrency 2, got %d", got.MaxConcurrentJobs)
	}
	if got.Merge.AudioCodec != merge.AudioAAC {
		t.Fatalf("expected default audio codec, got %q", got.Merge.AudioCodec)
	}
}

func TestSetAndGetRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	saved := store.Defaults("alice")
	saved.AudioDir = "/media/audio"
	saved.Merge.SocialMedia = true
	saved.Merge.SocialFormat = merge.FormatWebM
	saved.MaxConcurrentJobs = 4
	if err := store.Set(ctx, saved); err != nil {
		t.Fatalf("set: %v", err)
	}

	got, err := store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.AudioDir != "/media/audio" || !got.Merge.SocialMedia || got.MaxConcurrentJobs != 4 {
		t.Fatalf("round trip mismatch: %+v", got)
	}

	// Saving again overwrites rather than duplicating.
	saved.MaxConcurrentJobs = 1
	if err := store.Set(ctx, saved); err != nil {
		t.Fatalf("second set: %v", err)
	}
	got, err = store.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.MaxConcurrentJobs != 1 {
		t.Fatalf("expected overwrite, got %d", got.MaxConcurrentJobs)
	}
}

func TestSetRejectsBadValues(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	bad := store.Defaults("alice")
	bad.Merge.AudioCodec = "flac"
	if err := store.Set(ctx, bad); err == nil {
		t.Fatal("expected error for unsupported codec")
	}

	bad = store.Defaults("alice")
	bad.MaxConcurrentJobs = 0
	if err := store.Set(ctx, bad); err == nil {
		t.Fatal("expected error for zero concurrency")
	}

	bad = store.Defaults("")
	if err := store.Set(ctx, bad); err == nil {
		t.Fatal("expected error for empty owner")
	}
}
