package config

const (
	defaultOutputDir   = "./reframed"
	defaultLogDir      = "~/.local/share/reframe/logs"
	defaultHistoryPath = "~/.local/share/reframe/history.db"

	defaultAspect    = "source"
	defaultScale     = 1080
	defaultScaleMode = "auto"
	defaultCRF       = 28
	defaultPreset    = "medium"

	defaultFFmpegBinary  = "ffmpeg"
	defaultFFprobeBinary = "ffprobe"

	defaultNtfyRequestTimeout = 10

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Encoding: Encoding{
			Aspect:        defaultAspect,
			Scale:         defaultScale,
			ScaleMode:     defaultScaleMode,
			CRF:           defaultCRF,
			Preset:        defaultPreset,
			FFmpegBinary:  defaultFFmpegBinary,
			FFprobeBinary: defaultFFprobeBinary,
		},
		Notifications: Notifications{
			Enabled:        true,
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath,
		},
	}
}
