package config

const (
	defaultDataDir           = "~/.local/share/dubber"
	defaultLogDir            = "~/.local/share/dubber/logs"
	defaultAPIBind           = "127.0.0.1:7519"
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
	defaultAudioCodec        = "aac"
	defaultVideoCodec        = "copy"
	defaultOutputFormat      = "mp4"
	defaultSocialFormat      = "mp4"
	defaultSocialDimension   = 1080
	defaultMaxConcurrent     = 2
	defaultWatchPollInterval = 5
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		FFmpeg: FFmpeg{
			Binary:      "ffmpeg",
			ProbeBinary: "ffprobe",
		},
		Merge: Merge{
			KeepOriginal: true,
			AudioCodec:   defaultAudioCodec,
			VideoCodec:   defaultVideoCodec,
			OutputFormat: defaultOutputFormat,
			SocialWidth:  defaultSocialDimension,
			SocialHeight: defaultSocialDimension,
			SocialFormat: defaultSocialFormat,
		},
		Jobs: Jobs{
			MaxConcurrentPerOwner: defaultMaxConcurrent,
		},
		Watch: Watch{
			PollInterval: defaultWatchPollInterval,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
