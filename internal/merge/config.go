package merge

import (
	"fmt"
	"strings"

	"dubber/internal/config"
)

// Audio codec values accepted for the replacement track.
const (
	AudioAAC  = "aac"
	AudioMP3  = "mp3"
	AudioCopy = "copy"
)

// Video codec values. Copy passes the stream through untouched.
const (
	VideoCopy = "copy"
	VideoH264 = "h264"
	VideoHEVC = "hevc"
)

// Container formats.
const (
	FormatMP4  = "mp4"
	FormatWebM = "webm"
	FormatMOV  = "mov"
)

// Config describes how one merge job combines audio and video.
//
// KeepOriginal is consequential only when ReplaceAudio is false: replacing
// the audio always drops the original track. When SocialMedia is set the
// social fields override OutputFormat for both scaling and the container.
type Config struct {
	ReplaceAudio   bool
	KeepOriginal   bool
	NormalizeAudio bool
	AudioCodec     string
	VideoCodec     string
	OutputFormat   string
	SocialMedia    bool
	SocialWidth    int
	SocialHeight   int
	SocialFormat   string
}

// FromDefaults builds a Config from the global configuration defaults.
func FromDefaults(d config.Merge) Config {
	return Config{
		ReplaceAudio:   d.ReplaceAudio,
		KeepOriginal:   d.KeepOriginal,
		NormalizeAudio: d.NormalizeAudio,
		AudioCodec:     d.AudioCodec,
		VideoCodec:     d.VideoCodec,
		OutputFormat:   d.OutputFormat,
		SocialMedia:    d.SocialMedia,
		SocialWidth:    d.SocialWidth,
		SocialHeight:   d.SocialHeight,
		SocialFormat:   d.SocialFormat,
	}
}

// Normalized returns a copy with canonical lowercase values and defaults
// filled in. Normalizing an already-normalized config is a no-op.
func (c Config) Normalized() Config {
	out := c
	out.AudioCodec = strings.ToLower(strings.TrimSpace(c.AudioCodec))
	out.VideoCodec = strings.ToLower(strings.TrimSpace(c.VideoCodec))
	out.OutputFormat = strings.ToLower(strings.TrimSpace(c.OutputFormat))
	out.SocialFormat = strings.ToLower(strings.TrimSpace(c.SocialFormat))

	if out.AudioCodec == "" {
		out.AudioCodec = AudioAAC
	}
	if out.VideoCodec == "" {
		out.VideoCodec = VideoCopy
	}
	if out.OutputFormat == "" {
		out.OutputFormat = FormatMP4
	}
	if out.SocialFormat == "" {
		out.SocialFormat = FormatMP4
	}
	if out.SocialWidth <= 0 {
		out.SocialWidth = 1080
	}
	if out.SocialHeight <= 0 {
		out.SocialHeight = 1080
	}
	if out.ReplaceAudio {
		out.KeepOriginal = false
	}
	return out
}

// Validate rejects codec and container values ffmpeg would not accept
// from us. Call it on a normalized config.
func (c Config) Validate() error {
	switch c.AudioCodec {
	case AudioAAC, AudioMP3, AudioCopy:
	default:
		return fmt.Errorf("unsupported audio codec %q", c.AudioCodec)
	}
	switch c.VideoCodec {
	case VideoCopy, VideoH264, VideoHEVC:
	default:
		return fmt.Errorf("unsupported video codec %q", c.VideoCodec)
	}
	switch c.OutputFormat {
	case FormatMP4, FormatWebM, FormatMOV:
	default:
		return fmt.Errorf("unsupported output format %q", c.OutputFormat)
	}
	switch c.SocialFormat {
	case FormatMP4, FormatWebM, FormatMOV:
	default:
		return fmt.Errorf("unsupported social format %q", c.SocialFormat)
	}
	return nil
}

// OutputExtension resolves the container extension (without dot) for output
// files: the social format when social output is requested, webm when
// explicitly configured, mp4 otherwise.
func (c Config) OutputExtension() string {
	n := c.Normalized()
	if n.SocialMedia {
		return n.SocialFormat
	}
	if n.OutputFormat == FormatWebM {
		return FormatWebM
	}
	return FormatMP4
}
