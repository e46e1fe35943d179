// Package ffmpeg shells out to ffmpeg and ffprobe to merge an audio track
// into a video file, reporting coarse progress parsed from ffmpeg's output.
package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"dubber/internal/match"
	"dubber/internal/merge"
	"dubber/internal/services"
)

// ProgressFunc receives human-readable status and a percentage in [0,100],
// or -1 when the merge has failed.
type ProgressFunc func(message string, percent int)

// Client abstracts the external merge tool so callers can stub it in tests.
type Client interface {
	// Available reports whether the underlying binaries can be resolved.
	Available() error
	// Merge combines one audio/video pair into pair.OutputPath. The child
	// process is killed when ctx is cancelled.
	Merge(ctx context.Context, pair match.Pair, cfg merge.Config, progress ProgressFunc) error
}

// CLI invokes the ffmpeg and ffprobe binaries.
type CLI struct {
	binary      string
	probeBinary string
}

// Option adjusts a CLI client.
type Option func(*CLI)

// WithBinary overrides the ffmpeg binary path.
func WithBinary(path string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(path) != "" {
			c.binary = path
		}
	}
}

// WithProbeBinary overrides the ffprobe binary path.
func WithProbeBinary(path string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(path) != "" {
			c.probeBinary = path
		}
	}
}

// NewCLI returns a client that shells out to ffmpeg on PATH unless
// overridden by options.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg", probeBinary: "ffprobe"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

func (c *CLI) Available() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return services.Wrap(services.ErrToolUnavailable, "ffmpeg", fmt.Sprintf("%s not found on PATH", c.binary), err)
	}
	return nil
}

func (c *CLI) Merge(ctx context.Context, pair match.Pair, cfg merge.Config, progress ProgressFunc) error {
	cfg = cfg.Normalized()
	report := func(message string, percent int) {
		if progress != nil {
			progress(message, percent)
		}
	}

	name := filepath.Base(pair.VideoPath)
	report("Starting: "+name, 5)

	// Duration is only used to scale progress; merging proceeds without it.
	duration, _ := c.DurationSeconds(ctx, pair.VideoPath)

	cmd := exec.CommandContext(ctx, c.binary, buildArgs(pair, cfg)...)
	cmd.WaitDelay = 5 * time.Second

	pipe, err := cmd.StdoutPipe()
	if err != nil {
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "create output pipe", err)
	}
	cmd.Stderr = cmd.Stdout

	if err := cmd.Start(); err != nil {
		if ctx.Err() != nil {
			return services.Wrap(services.ErrCancelled, "ffmpeg", "merge cancelled", ctx.Err())
		}
		return services.Wrap(services.ErrExternalTool, "ffmpeg", "start ffmpeg", err)
	}

	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), 512*1024)
	scanner.Split(scanProgressLines)
	for scanner.Scan() {
		if message, percent, ok := parseProgressLine(scanner.Text(), name, duration); ok {
			report(message, percent)
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			report("Cancelled: "+name, -1)
			return services.Wrap(services.ErrCancelled, "ffmpeg", "merge cancelled", ctx.Err())
		}
		report("Failed: "+name, -1)
		return services.Wrap(services.ErrExternalTool, "ffmpeg", fmt.Sprintf("merge %s", name), err)
	}

	report("Completed: "+name, 100)
	return nil
}

// scanProgressLines splits on both \n and \r so that ffmpeg's in-place
// status updates surface as individual lines.
func scanProgressLines(data []byte, atEOF bool) (int, []byte, error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func parseProgressLine(line, name string, duration float64) (string, int, bool) {
	trimmed := strings.TrimSpace(line)
	switch {
	case strings.HasPrefix(trimmed, "Duration:"):
		return "Processing: " + name, 10, true
	case strings.Contains(trimmed, "time="):
		elapsed, ok := parseElapsed(trimmed)
		if !ok {
			return "", 0, false
		}
		percent := 0
		if duration > 0 {
			percent = int(elapsed/duration*90) + 10
			if percent > 95 {
				percent = 95
			}
		} else {
			percent = 10 + int(elapsed/2)
			if percent > 90 {
				percent = 90
			}
		}
		return fmt.Sprintf("Merging: %s (%s elapsed)", name, formatClock(elapsed)), percent, true
	}
	return "", 0, false
}

// parseElapsed extracts the HH:MM:SS.ss value following "time=".
func parseElapsed(line string) (float64, bool) {
	idx := strings.Index(line, "time=")
	if idx < 0 {
		return 0, false
	}
	value := line[idx+len("time="):]
	if end := strings.IndexByte(value, ' '); end >= 0 {
		value = value[:end]
	}
	var hours, minutes int
	var seconds float64
	if _, err := fmt.Sscanf(value, "%d:%d:%f", &hours, &minutes, &seconds); err != nil {
		return 0, false
	}
	return float64(hours)*3600 + float64(minutes)*60 + seconds, true
}

func formatClock(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%02d:%02d:%02d", total/3600, (total%3600)/60, total%60)
}
