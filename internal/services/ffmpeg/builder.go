package ffmpeg

import (
	"fmt"

	"dubber/internal/match"
	"dubber/internal/merge"
)

// buildArgs constructs the complete ffmpeg argument slice for one pair.
// Input 0 is the video file, input 1 the replacement audio. The caller is
// expected to pass a normalized config.
func buildArgs(pair match.Pair, cfg merge.Config) []string {
	args := make([]string, 0, 32)

	args = append(args, "-hide_banner", "-nostdin", "-y")
	args = append(args, "-i", pair.VideoPath, "-i", pair.AudioPath)

	args = appendVideoArgs(args, cfg)
	args = appendAudioArgs(args, cfg)
	args = appendContainerArgs(args, cfg)

	args = append(args, pair.OutputPath)
	return args
}

func appendVideoArgs(args []string, cfg merge.Config) []string {
	args = append(args, "-map", "0:v:0")

	codec := videoEncoder(cfg.VideoCodec)
	if cfg.SocialMedia {
		args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", cfg.SocialWidth, cfg.SocialHeight))
		// A scale filter forces a decode, so stream copy is off the table.
		if codec == "copy" {
			codec = "libx264"
		}
	}
	return append(args, "-c:v", codec)
}

func appendAudioArgs(args []string, cfg merge.Config) []string {
	args = append(args, "-map", "1:a:0")

	codec := audioEncoder(cfg.AudioCodec)
	if cfg.NormalizeAudio {
		args = append(args, "-filter:a:0", "loudnorm")
		// loudnorm re-encodes; keep the requested codec unless it was copy.
		if codec == "copy" {
			codec = "aac"
		}
	}
	args = append(args, "-c:a:0", codec)

	if cfg.KeepOriginal && !cfg.ReplaceAudio {
		args = append(args, "-map", "0:a:0?", "-c:a:1", "copy")
	}
	return args
}

func appendContainerArgs(args []string, cfg merge.Config) []string {
	format := containerFormat(cfg)
	args = append(args, "-f", format)
	if format == merge.FormatMP4 {
		args = append(args, "-movflags", "+faststart")
	}
	return args
}

func containerFormat(cfg merge.Config) string {
	if cfg.SocialMedia {
		return cfg.SocialFormat
	}
	if cfg.OutputFormat == merge.FormatWebM {
		return merge.FormatWebM
	}
	return merge.FormatMP4
}

func videoEncoder(codec string) string {
	switch codec {
	case merge.VideoH264:
		return "libx264"
	case merge.VideoHEVC:
		return "libx265"
	default:
		return "copy"
	}
}

func audioEncoder(codec string) string {
	switch codec {
	case merge.AudioMP3:
		return "libmp3lame"
	case merge.AudioCopy:
		return "copy"
	default:
		return "aac"
	}
}
