package config

import (
	"fmt"
	"strings"
)

var (
	allowedAudioCodecs  = []string{"aac", "mp3", "copy"}
	allowedVideoCodecs  = []string{"copy", "h264", "hevc"}
	allowedFormats      = []string{"mp4", "webm", "mov"}
	allowedSocialFormat = []string{"mp4", "mov", "webm"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		return fmt.Errorf("paths.data_dir must be set")
	}
	return nil
}

func (c *Config) validateMerge() error {
	if !contains(allowedAudioCodecs, c.Merge.AudioCodec) {
		return fmt.Errorf("merge.audio_codec: unsupported value %q (expected one of %s)",
			c.Merge.AudioCodec, strings.Join(allowedAudioCodecs, ", "))
	}
	if !contains(allowedVideoCodecs, c.Merge.VideoCodec) {
		return fmt.Errorf("merge.video_codec: unsupported value %q (expected one of %s)",
			c.Merge.VideoCodec, strings.Join(allowedVideoCodecs, ", "))
	}
	if !contains(allowedFormats, c.Merge.OutputFormat) {
		return fmt.Errorf("merge.output_format: unsupported value %q (expected one of %s)",
			c.Merge.OutputFormat, strings.Join(allowedFormats, ", "))
	}
	if !contains(allowedSocialFormat, c.Merge.SocialFormat) {
		return fmt.Errorf("merge.social_format: unsupported value %q (expected one of %s)",
			c.Merge.SocialFormat, strings.Join(allowedSocialFormat, ", "))
	}
	if c.Merge.SocialWidth <= 0 || c.Merge.SocialHeight <= 0 {
		return fmt.Errorf("merge.social_width and merge.social_height must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
