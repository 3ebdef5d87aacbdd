package config

import (
	"github.com/ytget/yt-queue/internal/model"
	"github.com/ytget/yt-queue/internal/platform"
)

// Log levels for the console
const (
	LogLevelDebug   = "DEBUG"
	LogLevelInfo    = "INFO"
	LogLevelWarning = "WARNING"
	LogLevelError   = "ERROR"
)

// Default values
const (
	DefaultMaxParallel  = 1
	DefaultLogLevel     = LogLevelInfo
	DefaultWindowWidth  = 800
	DefaultWindowHeight = 700
	MinParallel         = 1
	MaxParallel         = 5
)

// Settings holds the persisted application configuration. The session
// adapter loads it once at startup and writes it on change and at shutdown.
type Settings struct {
	DownloadDir    string            `json:"download_dir"`
	Quality        model.Quality     `json:"quality"`
	AudioOnly      bool              `json:"audio_only"`
	AudioFormat    model.AudioFormat `json:"audio_format"`
	MaxParallel    int               `json:"max_parallel"`
	LogLevel       string            `json:"log_level"`
	ConsoleVisible bool              `json:"console_visible"`
	WindowWidth    int               `json:"window_width"`
	WindowHeight   int               `json:"window_height"`
	SabrCeiling    model.Quality     `json:"sabr_ceiling"`
	ForceSabr      bool              `json:"force_sabr"`
}

// DefaultSettings returns the configuration used on first run
func DefaultSettings() Settings {
	downloadDir, err := platform.GetHomeDownloadsDir()
	if err != nil {
		downloadDir = "/tmp/downloads"
	}
	return Settings{
		DownloadDir:    downloadDir,
		Quality:        model.Quality1080p,
		AudioFormat:    model.AudioDefault,
		MaxParallel:    DefaultMaxParallel,
		LogLevel:       DefaultLogLevel,
		ConsoleVisible: true,
		WindowWidth:    DefaultWindowWidth,
		WindowHeight:   DefaultWindowHeight,
		SabrCeiling:    model.Quality360p,
	}
}

// Normalize clamps out-of-range values and fills empty fields with defaults.
// Loaded snapshots from older versions pass through here.
func (s *Settings) Normalize() {
	defaults := DefaultSettings()

	if s.DownloadDir == "" {
		s.DownloadDir = defaults.DownloadDir
	}
	if s.Quality == "" {
		s.Quality = defaults.Quality
	}
	if s.AudioFormat == "" {
		s.AudioFormat = defaults.AudioFormat
	}
	if s.MaxParallel < MinParallel {
		s.MaxParallel = MinParallel
	}
	if s.MaxParallel > MaxParallel {
		s.MaxParallel = MaxParallel
	}
	switch s.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError:
	default:
		s.LogLevel = defaults.LogLevel
	}
	if s.WindowWidth <= 0 {
		s.WindowWidth = defaults.WindowWidth
	}
	if s.WindowHeight <= 0 {
		s.WindowHeight = defaults.WindowHeight
	}
	if s.SabrCeiling == "" {
		s.SabrCeiling = defaults.SabrCeiling
	}
}

// RequestedFormat builds the format spec from the current quality selection
func (s *Settings) RequestedFormat() model.FormatSpec {
	if s.AudioOnly {
		return model.AudioOnlyFormat(s.AudioFormat)
	}
	return model.VideoFormat(s.Quality)
}

// QualityOptions returns the selectable video quality tiers
func QualityOptions() []model.Quality {
	return model.QualityLadder
}

// AudioOptions returns the selectable audio presets
func AudioOptions() []model.AudioFormat {
	options := []model.AudioFormat{model.AudioDefault}
	return append(options, model.AudioLadder...)
}

// LogLevelOptions returns the selectable console log levels
func LogLevelOptions() []string {
	return []string{LogLevelDebug, LogLevelInfo, LogLevelWarning, LogLevelError}
}
