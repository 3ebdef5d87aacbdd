package model

import (
	"fmt"
	"strings"
	"time"
)

// QueueItem represents a single unit of download work
type QueueItem struct {
	ID              string     `json:"id"`
	VideoID         string     `json:"video_id,omitempty"` // resolved platform identifier
	SourceURL       string     `json:"source_url"`
	Title           string     `json:"title,omitempty"`
	DurationSec     int        `json:"duration_sec,omitempty"`
	RequestedFormat FormatSpec `json:"requested_format"`
	EffectiveFormat FormatSpec `json:"effective_format,omitempty"`
	Status          ItemStatus `json:"status"`
	ErrorDetail     string     `json:"error_detail,omitempty"`
	OrderIndex      int        `json:"order_index"`
	OutputPath      string     `json:"output_path,omitempty"`
	AddedAt         time.Time  `json:"added_at"`
	FinishedAt      time.Time  `json:"finished_at,omitempty"`
}

// Reset returns the item to Pending and clears the per-attempt fields.
// The caller decides which statuses are eligible (see ItemStatus.IsResettable).
func (it *QueueItem) Reset() {
	it.Status = StatusPending
	it.ErrorDetail = ""
	it.EffectiveFormat = FormatSpec{}
	it.OutputPath = ""
	it.FinishedAt = time.Time{}
}

// GetDisplayTitle returns the title when resolved, otherwise the source URL
func (it *QueueItem) GetDisplayTitle() string {
	if it.Title != "" && !strings.HasPrefix(it.Title, "http") {
		return it.Title
	}
	return it.SourceURL
}

// GetDurationString returns the duration formatted as hh:mm:ss, or "—" when unknown
func (it *QueueItem) GetDurationString() string {
	if it.DurationSec <= 0 {
		return "—"
	}

	hours := it.DurationSec / 3600
	minutes := (it.DurationSec % 3600) / 60
	seconds := it.DurationSec % 60

	if hours > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}
