package download

import (
	"context"
	"errors"

	"github.com/ytget/yt-queue/internal/model"
)

// Error classes surfaced by fetching and validation
var (
	// ErrFetch indicates the download or transcode failed
	ErrFetch = errors.New("fetch failed")
	// ErrValidation indicates the downloaded artifact is malformed or empty
	ErrValidation = errors.New("downloaded file failed validation")
)

// ProgressFunc receives download progress as it arrives
type ProgressFunc func(percent int, speedBps float64, etaSec int)

// FetchRequest describes one download: source URL, the effective format to
// fetch, and where the file goes.
type FetchRequest struct {
	URL            string
	Format         model.FormatSpec
	DestinationDir string
}

// FetchResult reports where the downloaded file landed
type FetchResult struct {
	FilePath     string
	BytesWritten int64
}

// Fetcher performs the actual download and optional audio extraction.
// Implementations must honor context cancellation at progress boundaries.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest, onProgress ProgressFunc) (*FetchResult, error)
}
