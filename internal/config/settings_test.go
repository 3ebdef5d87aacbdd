package config

import (
	"testing"

	"github.com/ytget/yt-queue/internal/model"
)

func TestDefaultSettings(t *testing.T) {
	settings := DefaultSettings()

	if settings.DownloadDir == "" {
		t.Error("Download directory should not be empty")
	}
	if settings.Quality != model.Quality1080p {
		t.Errorf("Expected default quality 1080p, got %s", settings.Quality)
	}
	if settings.MaxParallel != DefaultMaxParallel {
		t.Errorf("Expected default max parallel %d, got %d", DefaultMaxParallel, settings.MaxParallel)
	}
	if settings.LogLevel != LogLevelInfo {
		t.Errorf("Expected default log level INFO, got %s", settings.LogLevel)
	}
	if !settings.ConsoleVisible {
		t.Error("Console should be visible by default")
	}
	if settings.SabrCeiling != model.Quality360p {
		t.Errorf("Expected default SABR ceiling 360p, got %s", settings.SabrCeiling)
	}
}

func TestNormalize_Clamping(t *testing.T) {
	settings := Settings{MaxParallel: 0}
	settings.Normalize()
	if settings.MaxParallel != MinParallel {
		t.Errorf("Max parallel should be clamped to %d, got %d", MinParallel, settings.MaxParallel)
	}

	settings.MaxParallel = 50
	settings.Normalize()
	if settings.MaxParallel != MaxParallel {
		t.Errorf("Max parallel should be clamped to %d, got %d", MaxParallel, settings.MaxParallel)
	}
}

func TestNormalize_FillsDefaults(t *testing.T) {
	var settings Settings
	settings.Normalize()

	if settings.DownloadDir == "" {
		t.Error("Normalize should fill the download directory")
	}
	if settings.Quality == "" {
		t.Error("Normalize should fill the quality")
	}
	if settings.LogLevel != DefaultLogLevel {
		t.Errorf("Expected log level %s, got %s", DefaultLogLevel, settings.LogLevel)
	}
	if settings.WindowWidth != DefaultWindowWidth || settings.WindowHeight != DefaultWindowHeight {
		t.Error("Normalize should fill the window geometry")
	}
}

func TestNormalize_RejectsUnknownLogLevel(t *testing.T) {
	settings := Settings{LogLevel: "VERBOSE"}
	settings.Normalize()
	if settings.LogLevel != DefaultLogLevel {
		t.Errorf("Unknown log level should fall back to %s, got %s", DefaultLogLevel, settings.LogLevel)
	}
}

func TestRequestedFormat(t *testing.T) {
	settings := Settings{Quality: model.Quality720p}
	spec := settings.RequestedFormat()
	if spec.AudioOnly || spec.Quality != model.Quality720p {
		t.Errorf("Expected video 720p spec, got %+v", spec)
	}

	settings.AudioOnly = true
	settings.AudioFormat = model.AudioMP3
	spec = settings.RequestedFormat()
	if !spec.AudioOnly || spec.Audio != model.AudioMP3 {
		t.Errorf("Expected audio mp3 spec, got %+v", spec)
	}
}
