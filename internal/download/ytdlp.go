package download

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/ytget/yt-queue/internal/model"
)

// YtdlpFetcher downloads videos through the yt-dlp binary
type YtdlpFetcher struct{}

// NewYtdlpFetcher creates a yt-dlp backed fetcher
func NewYtdlpFetcher() *YtdlpFetcher {
	return &YtdlpFetcher{}
}

// Fetch downloads a single video into the destination directory
func (f *YtdlpFetcher) Fetch(ctx context.Context, req FetchRequest, onProgress ProgressFunc) (*FetchResult, error) {
	dl := ytdlp.New().
		ForceOverwrites().
		RestrictFilenames().
		NoPlaylist().
		Output(req.DestinationDir + "/%(title)s.%(ext)s")

	if req.Format.AudioOnly {
		dl = dl.ExtractAudio()
		applyAudioPreset(dl, req.Format.Audio)
	} else {
		dl = dl.Format(VideoSelector(req.Format.Quality))
	}

	if onProgress != nil {
		dl.ProgressFunc(500*time.Millisecond, func(update ytdlp.ProgressUpdate) {
			onProgress(progressPercent(&update), progressSpeed(&update), progressETA(&update))
		})
	}

	result, err := dl.Run(ctx, req.URL)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	out := &FetchResult{}
	if result != nil {
		info, infoErr := result.GetExtractedInfo()
		if infoErr == nil && len(info) > 0 {
			if info[0].Filename != nil {
				out.FilePath = *info[0].Filename
			}
		}
	}
	return out, nil
}

// VideoSelector builds the yt-dlp format expression for a quality tier
func VideoSelector(quality model.Quality) string {
	switch quality {
	case model.QualityBest, "":
		return "bestvideo+bestaudio/best"
	case model.QualityLowest:
		return "worstvideo+worstaudio/worst"
	default:
		h := quality.Height()
		if h <= 0 {
			return "bestvideo+bestaudio/best"
		}
		return fmt.Sprintf("bestvideo[height<=%d]+bestaudio/best[height<=%d]", h, h)
	}
}

// applyAudioPreset maps an audio preset onto yt-dlp extraction flags
func applyAudioPreset(dl *ytdlp.Command, preset model.AudioFormat) {
	switch preset {
	case model.AudioMP3:
		dl.AudioFormat("mp3").AudioQuality("192K")
	case model.AudioM4AHigh:
		dl.AudioFormat("m4a").AudioQuality("0")
	case model.AudioM4AStandard:
		dl.AudioFormat("m4a").AudioQuality("128K")
	case model.AudioOpus:
		dl.AudioFormat("opus").AudioQuality("128K")
	case model.AudioOpusMedium:
		dl.AudioFormat("opus").AudioQuality("96K")
	case model.AudioOpusLow:
		dl.AudioFormat("opus").AudioQuality("64K")
	case model.AudioLowest:
		dl.Format("worstaudio/worst")
	case model.AudioBest:
		dl.AudioQuality("0")
	default:
		// AudioDefault keeps yt-dlp's native container choice
	}
}

func progressPercent(update *ytdlp.ProgressUpdate) int {
	if update.TotalBytes <= 0 {
		return 0
	}
	return int(float64(update.DownloadedBytes) / float64(update.TotalBytes) * 100)
}

func progressSpeed(update *ytdlp.ProgressUpdate) float64 {
	if update.Started.IsZero() {
		return 0
	}
	elapsed := time.Since(update.Started)
	if elapsed.Seconds() <= 0 {
		return 0
	}
	return float64(update.DownloadedBytes) / elapsed.Seconds()
}

func progressETA(update *ytdlp.ProgressUpdate) int {
	eta := update.ETA()
	if eta <= 0 {
		return 0
	}
	return int(eta.Seconds())
}

// forbiddenIndicators mark HTTP 403 responses that a lower quality tier can
// sometimes work around.
var forbiddenIndicators = []string{
	"http error 403",
	"403 forbidden",
}

// IsForbiddenError reports whether the failure looks like a 403 rejection
func IsForbiddenError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, indicator := range forbiddenIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}

// ageIndicators mark videos that require sign-in to confirm age
var ageIndicators = []string{
	"sign in to confirm your age",
	"age-restricted",
	"age restricted",
}

// IsAgeRestrictedError reports whether the failure is an age gate
func IsAgeRestrictedError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, indicator := range ageIndicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}
	return false
}
