package ui

import (
	"fmt"

	"fyne.io/fyne/v2/widget"

	"github.com/ytget/yt-queue/internal/model"
)

// StatusImportance maps an item status onto the label importance used for
// coloring in the queue list
func StatusImportance(status model.ItemStatus) widget.Importance {
	switch status {
	case model.StatusDone:
		return widget.SuccessImportance
	case model.StatusFailed:
		return widget.DangerImportance
	case model.StatusQualityBlocked, model.StatusAgeRestricted:
		return widget.WarningImportance
	case model.StatusResolving, model.StatusDownloading:
		return widget.HighImportance
	}
	return widget.MediumImportance
}

// StatusText returns the queue list label for a status, with a glyph for the
// in-flight states
func StatusText(status model.ItemStatus) string {
	switch status {
	case model.StatusResolving:
		return "⏳ " + status.String()
	case model.StatusDownloading:
		return "▶ " + status.String()
	case model.StatusDone:
		return "✓ " + status.String()
	case model.StatusFailed:
		return "✗ " + status.String()
	}
	return status.String()
}

// FormatSpeed renders a bytes-per-second rate for the progress line
func FormatSpeed(bps float64) string {
	switch {
	case bps >= 1024*1024:
		return fmt.Sprintf("%.1f MB/s", bps/1024/1024)
	case bps >= 1024:
		return fmt.Sprintf("%.0f KB/s", bps/1024)
	case bps > 0:
		return fmt.Sprintf("%.0f B/s", bps)
	}
	return ""
}

// FormatETA renders a seconds-remaining estimate
func FormatETA(sec int) string {
	if sec <= 0 {
		return ""
	}
	if sec >= 3600 {
		return fmt.Sprintf("%d:%02d:%02d", sec/3600, (sec%3600)/60, sec%60)
	}
	return fmt.Sprintf("%d:%02d", sec/60, sec%60)
}

// levelRank orders console log levels for threshold filtering
func levelRank(level string) int {
	switch level {
	case "DEBUG":
		return 0
	case "INFO":
		return 1
	case "WARNING":
		return 2
	case "ERROR":
		return 3
	}
	return 1
}

// LevelVisible reports whether a message at the given level passes the
// configured console threshold
func LevelVisible(level, threshold string) bool {
	return levelRank(level) >= levelRank(threshold)
}
