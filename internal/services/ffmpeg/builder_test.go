package ffmpeg

import (
	"strings"
	"testing"

	"dubber/internal/match"
	"dubber/internal/merge"
)

func testPair() match.Pair {
	return match.Pair{
		AudioPath:  "/in/audio/take.mp3",
		VideoPath:  "/in/video/take.mkv",
		OutputPath: "/out/take_merged.mp4",
	}
}

func argString(cfg merge.Config) string {
	return strings.Join(buildArgs(testPair(), cfg.Normalized()), " ")
}

func TestBuildArgsDefaults(t *testing.T) {
	args := argString(merge.Config{})

	for _, want := range []string{
		"-i /in/video/take.mkv -i /in/audio/take.mp3",
		"-map 0:v:0 -c:v copy",
		"-map 1:a:0 -c:a:0 aac",
		"-f mp4 -movflags +faststart",
	} {
		if !strings.Contains(args, want) {
			t.Errorf("args missing %q:\n%s", want, args)
		}
	}
	if !strings.HasSuffix(args, "/out/take_merged.mp4") {
		t.Errorf("output path should be last: %s", args)
	}
	if strings.Contains(args, "0:a:0") {
		t.Errorf("original audio mapped without keepOriginal: %s", args)
	}
}

func TestBuildArgsKeepOriginal(t *testing.T) {
	args := argString(merge.Config{KeepOriginal: true})
	if !strings.Contains(args, "-map 0:a:0? -c:a:1 copy") {
		t.Errorf("expected original audio passthrough:\n%s", args)
	}
}

func TestBuildArgsReplaceWinsOverKeep(t *testing.T) {
	args := argString(merge.Config{ReplaceAudio: true, KeepOriginal: true})
	if strings.Contains(args, "0:a:0") {
		t.Errorf("replaceAudio should drop the original track:\n%s", args)
	}
}

func TestBuildArgsSocialForcesEncode(t *testing.T) {
	args := argString(merge.Config{
		SocialMedia:  true,
		SocialWidth:  720,
		SocialHeight: 1280,
		SocialFormat: merge.FormatMOV,
	})
	if !strings.Contains(args, "-vf scale=720:1280") {
		t.Errorf("expected scale filter:\n%s", args)
	}
	if !strings.Contains(args, "-c:v libx264") {
		t.Errorf("scaled video cannot use stream copy:\n%s", args)
	}
	if !strings.Contains(args, "-f mov") {
		t.Errorf("social format should pick the container:\n%s", args)
	}
}

func TestBuildArgsNormalizeForcesAudioEncode(t *testing.T) {
	args := argString(merge.Config{AudioCodec: merge.AudioCopy, NormalizeAudio: true})
	if !strings.Contains(args, "-filter:a:0 loudnorm") {
		t.Errorf("expected loudnorm filter:\n%s", args)
	}
	if !strings.Contains(args, "-c:a:0 aac") {
		t.Errorf("loudnorm requires a re-encode:\n%s", args)
	}
}

func TestBuildArgsWebM(t *testing.T) {
	args := argString(merge.Config{OutputFormat: merge.FormatWebM})
	if !strings.Contains(args, "-f webm") {
		t.Errorf("expected webm container:\n%s", args)
	}
	if strings.Contains(args, "faststart") {
		t.Errorf("faststart is mp4-only:\n%s", args)
	}
}
