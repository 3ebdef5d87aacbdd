package metadata

import (
	"context"
	"errors"

	"github.com/ytget/yt-queue/internal/model"
)

// ErrResolution marks a failed metadata lookup. These are retryable; the
// cache never stores them and the engine leaves the item claimable on the
// next start.
var ErrResolution = errors.New("metadata resolution")

// Prober resolves a URL to video metadata: title, duration, available
// formats and restriction flags. Playlist URLs resolve to their members.
type Prober interface {
	Probe(ctx context.Context, url string) (*model.VideoInfo, error)
}

// ProberFunc adapts a function to the Prober interface
type ProberFunc func(ctx context.Context, url string) (*model.VideoInfo, error)

// Probe implements Prober
func (f ProberFunc) Probe(ctx context.Context, url string) (*model.VideoInfo, error) {
	return f(ctx, url)
}
