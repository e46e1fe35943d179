package ffmpeg

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"dubber/internal/services"
)

// DurationSeconds asks ffprobe for the container duration of path.
func (c *CLI) DurationSeconds(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, c.probeBinary,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "ffprobe", fmt.Sprintf("probe %s", path), err)
	}
	value := strings.TrimSpace(string(out))
	duration, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "ffprobe", fmt.Sprintf("parse duration %q", value), err)
	}
	return duration, nil
}
