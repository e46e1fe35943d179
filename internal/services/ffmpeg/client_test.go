package ffmpeg

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"dubber/internal/merge"
	"dubber/internal/services"
)

func TestParseProgressLine(t *testing.T) {
	if msg, pct, ok := parseProgressLine("  Duration: 00:01:40.00, start: 0.000000", "clip.mkv", 100); !ok || pct != 10 || msg != "Processing: clip.mkv" {
		t.Fatalf("duration line: msg=%q pct=%d ok=%v", msg, pct, ok)
	}

	// Halfway through a 100s file lands at 10 + 45.
	_, pct, ok := parseProgressLine("frame=  100 fps=25 time=00:00:50.00 bitrate=1k", "clip.mkv", 100)
	if !ok || pct != 55 {
		t.Fatalf("time line with duration: pct=%d ok=%v", pct, ok)
	}

	// Past the end the percentage caps at 95.
	_, pct, _ = parseProgressLine("time=00:02:30.00", "clip.mkv", 100)
	if pct != 95 {
		t.Fatalf("expected cap at 95, got %d", pct)
	}

	// With no known duration progress creeps by elapsed seconds.
	_, pct, ok = parseProgressLine("time=00:00:30.00", "clip.mkv", 0)
	if !ok || pct != 25 {
		t.Fatalf("time line without duration: pct=%d ok=%v", pct, ok)
	}
	_, pct, _ = parseProgressLine("time=01:00:00.00", "clip.mkv", 0)
	if pct != 90 {
		t.Fatalf("expected cap at 90, got %d", pct)
	}

	if _, _, ok := parseProgressLine("Press [q] to stop", "clip.mkv", 100); ok {
		t.Fatal("unrelated output should not report progress")
	}
}

func TestScanProgressLinesSplitsCarriageReturns(t *testing.T) {
	scanner := bufio.NewScanner(strings.NewReader("time=00:00:01.00\rtime=00:00:02.00\nDuration: x\n"))
	scanner.Split(scanProgressLines)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %v", len(lines), lines)
	}
}

func writeStub(t *testing.T, dir, name, script string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

func stubClient(t *testing.T, ffmpegScript string) *CLI {
	t.Helper()
	dir := t.TempDir()
	ffmpegPath := writeStub(t, dir, "ffmpeg", ffmpegScript)
	probePath := writeStub(t, dir, "ffprobe", "echo 100.0\n")
	return NewCLI(WithBinary(ffmpegPath), WithProbeBinary(probePath))
}

func TestMergeReportsProgress(t *testing.T) {
	client := stubClient(t, `
echo "  Duration: 00:01:40.00, start: 0.000000" >&2
printf 'frame=1 time=00:00:50.00 bitrate=1k\r' >&2
exit 0
`)

	var messages []string
	var percents []int
	err := client.Merge(context.Background(), testPair(), merge.Config{}, func(msg string, pct int) {
		messages = append(messages, msg)
		percents = append(percents, pct)
	})
	if err != nil {
		t.Fatalf("merge failed: %v", err)
	}

	if len(percents) < 4 {
		t.Fatalf("expected start, duration, time and completion reports, got %v", percents)
	}
	if percents[0] != 5 {
		t.Fatalf("first report should be 5, got %d", percents[0])
	}
	if percents[len(percents)-1] != 100 {
		t.Fatalf("final report should be 100, got %d", percents[len(percents)-1])
	}
	if !strings.HasPrefix(messages[len(messages)-1], "Completed:") {
		t.Fatalf("final message %q", messages[len(messages)-1])
	}
	for i := 1; i < len(percents); i++ {
		if percents[i] < percents[i-1] {
			t.Fatalf("progress went backwards: %v", percents)
		}
	}
}

func TestMergeFailureReportsMinusOne(t *testing.T) {
	client := stubClient(t, "echo 'boom' >&2\nexit 1\n")

	last := 0
	err := client.Merge(context.Background(), testPair(), merge.Config{}, func(_ string, pct int) {
		last = pct
	})
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected ErrExternalTool, got %v", err)
	}
	if last != -1 {
		t.Fatalf("expected final progress -1, got %d", last)
	}
}

func TestMergeCancelled(t *testing.T) {
	client := stubClient(t, "sleep 10\n")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- client.Merge(ctx, testPair(), merge.Config{}, func(_ string, pct int) {})
	}()
	cancel()

	if err := <-done; !errors.Is(err, services.ErrCancelled) {
		t.Fatalf("expected ErrCancelled, got %v", err)
	}
}

func TestAvailable(t *testing.T) {
	client := stubClient(t, "exit 0\n")
	if err := client.Available(); err != nil {
		t.Fatalf("stub binary should resolve: %v", err)
	}

	missing := NewCLI(WithBinary("/nonexistent/ffmpeg-missing"))
	if err := missing.Available(); !errors.Is(err, services.ErrToolUnavailable) {
		t.Fatalf("expected ErrToolUnavailable, got %v", err)
	}
}
