package api

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"dubber/internal/jobs"
	"dubber/internal/match"
	"dubber/internal/merge"
)

func TestMergeOptionsApplyLayering(t *testing.T) {
	base := merge.Config{
		AudioCodec:   merge.AudioAAC,
		VideoCodec:   merge.VideoCopy,
		OutputFormat: merge.FormatMP4,
		KeepOriginal: true,
	}

	replace := true
	opts := MergeOptions{
		ReplaceAudio: &replace,
		AudioCodec:   "mp3",
		SocialWidth:  720,
	}

	got := opts.Apply(base)
	if !got.ReplaceAudio {
		t.Fatal("explicit replaceAudio should win")
	}
	if got.KeepOriginal {
		t.Fatal("normalization drops keepOriginal when replacing")
	}
	if got.AudioCodec != merge.AudioMP3 {
		t.Fatalf("explicit codec should win, got %q", got.AudioCodec)
	}
	if got.VideoCodec != merge.VideoCopy {
		t.Fatalf("unsent field should keep base value, got %q", got.VideoCodec)
	}
	if got.SocialWidth != 720 {
		t.Fatalf("explicit width should win, got %d", got.SocialWidth)
	}
}

func TestMergeOptionsUnsentBoolsKeepBase(t *testing.T) {
	var req StartRequest
	if err := json.Unmarshal([]byte(`{"mp3Dir":"/a","mkvDir":"/v","outDir":"/o"}`), &req); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	base := merge.Config{NormalizeAudio: true, AudioCodec: merge.AudioAAC}
	got := req.Apply(base)
	if !got.NormalizeAudio {
		t.Fatal("unsent normalizeAudio should keep the base value")
	}
}

func TestStatusFromJob(t *testing.T) {
	job := jobs.New("alice", "/a", "/v", "/o")
	job.MarkRunning()
	job.SetProgress("[1/2] Merging ep1.mkv", 40)

	got := StatusFromJob(job)
	if !got.Running || got.Percent != 40 || got.Status != "running" {
		t.Fatalf("unexpected status payload: %+v", got)
	}

	job.MarkFailed("no matching files found")
	got = StatusFromJob(job)
	if got.Running || got.Percent != -1 {
		t.Fatalf("failed job should not report running: %+v", got)
	}

	stopped := jobs.New("alice", "/a", "/v", "/o")
	stopped.MarkRunning()
	stopped.SetProgress("[1/3] Merging ep1.mkv", 33)
	stopped.MarkStopped()
	got = StatusFromJob(stopped)
	if got.Running || got.Percent != -1 || got.Status != "stopped" {
		t.Fatalf("stopped job must report percent -1: %+v", got)
	}
}

func TestSummaryFromJobTimestamps(t *testing.T) {
	job := jobs.New("alice", "/a", "/v", "/o")
	summary := SummaryFromJob(job)
	if summary.CompletedAt != "" {
		t.Fatalf("pending job has no completion time: %+v", summary)
	}
	if _, err := time.Parse(time.RFC3339, summary.CreatedAt); err != nil {
		t.Fatalf("createdAt not RFC3339: %v", err)
	}

	job.MarkCompleted("done")
	summary = SummaryFromJob(job)
	if summary.CompletedAt == "" {
		t.Fatal("completed job should expose completion time")
	}
}

func TestMatchesFromPairs(t *testing.T) {
	resp := MatchesFromPairs([]match.Pair{
		{AudioPath: "/a/x.mp3", VideoPath: "/v/x.mkv", OutputPath: "/o/x_merged.mp4"},
	})
	if !resp.Success || resp.Total != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}

	raw, err := json.Marshal(resp)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, key := range []string{`"mp3"`, `"mkv"`, `"output"`, `"total"`} {
		if !strings.Contains(string(raw), key) {
			t.Fatalf("payload missing %s: %s", key, raw)
		}
	}
}
