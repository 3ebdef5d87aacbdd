package metadata

import (
	"context"
	"fmt"
	"strings"
	"time"

	goytdlp "github.com/lrstanley/go-ytdlp"
	ytdlpv2 "github.com/ytget/ytdlp/v2"

	"github.com/ytget/yt-queue/internal/model"
)

// Timeout constants
const (
	DefaultProbeTimeout = 60 * time.Second
)

// URL parameters and templates
const (
	PlaylistParam           = "list="
	ParamSeparator          = "&"
	YouTubeVideoURLTemplate = "https://www.youtube.com/watch?v=%s"
)

// sabrIndicators are the yt-dlp warning fragments that signal SABR-restricted
// delivery. The signal is a heuristic, not a protocol; treat it accordingly.
var sabrIndicators = []string{
	"require a gvs po token",
	"sabr formats require",
	"https formats require a gvs po token",
}

// AgeLimitRestricted is the age limit at and above which content counts as
// age-gated when no stream is accessible.
const AgeLimitRestricted = 18

// YtdlpProber resolves metadata through the yt-dlp wrapper. Playlist URLs are
// expanded to their member videos without probing each member.
type YtdlpProber struct {
	timeout time.Duration
}

// NewYtdlpProber creates a prober with the default timeout
func NewYtdlpProber() *YtdlpProber {
	return &YtdlpProber{timeout: DefaultProbeTimeout}
}

// SetTimeout sets the timeout for probe operations
func (p *YtdlpProber) SetTimeout(timeout time.Duration) {
	p.timeout = timeout
}

// Probe implements Prober
func (p *YtdlpProber) Probe(ctx context.Context, url string) (*model.VideoInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if IsPlaylistURL(url) {
		return p.probePlaylist(ctx, url)
	}
	return p.probeVideo(ctx, url)
}

// probeVideo extracts metadata for a single video without downloading
func (p *YtdlpProber) probeVideo(ctx context.Context, url string) (*model.VideoInfo, error) {
	dl := goytdlp.New().
		SkipDownload().
		NoPlaylist()

	result, err := dl.Run(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", url, err)
	}

	extracted, err := result.GetExtractedInfo()
	if err != nil || len(extracted) == 0 {
		return nil, fmt.Errorf("probe %s: no metadata extracted", url)
	}
	raw := extracted[0]

	info := &model.VideoInfo{
		VideoID:        raw.ID,
		SabrRestricted: ContainsSabrIndicator(result.Stderr),
	}
	if raw.Title != nil {
		info.Title = *raw.Title
	}
	if raw.Duration != nil {
		info.DurationSec = int(*raw.Duration)
	}
	if raw.AgeLimit != nil && int(*raw.AgeLimit) >= AgeLimitRestricted {
		info.AgeRestricted = true
	}

	for _, f := range raw.Formats {
		if f == nil {
			continue
		}
		var sf model.StreamFormat
		if f.FormatID != nil {
			sf.FormatID = *f.FormatID
		}
		if f.Height != nil {
			sf.Height = int(*f.Height)
		}
		if f.FPS != nil {
			sf.FPS = int(*f.FPS)
		}
		if f.ABR != nil {
			sf.Bitrate = int(*f.ABR)
		}
		if f.VCodec != nil {
			sf.VideoCodec = *f.VCodec
		}
		if f.ACodec != nil {
			sf.AudioCodec = *f.ACodec
		}
		if f.Extension != nil {
			sf.Container = *f.Extension
		}
		info.Formats = append(info.Formats, sf)
	}

	return info, nil
}

// probePlaylist expands a playlist URL into member entries
func (p *YtdlpProber) probePlaylist(ctx context.Context, url string) (*model.VideoInfo, error) {
	playlistID := ExtractPlaylistID(url)
	if playlistID == "" {
		return nil, fmt.Errorf("could not extract playlist ID from URL: %s", url)
	}

	d := ytdlpv2.New()
	items, err := d.GetPlaylistItemsAll(ctx, playlistID, 0)
	if err != nil {
		return nil, fmt.Errorf("expand playlist %s: %w", playlistID, err)
	}

	info := &model.VideoInfo{
		VideoID:    playlistID,
		IsPlaylist: true,
	}
	for _, it := range items {
		info.Entries = append(info.Entries, model.PlaylistEntry{
			VideoID: it.VideoID,
			Title:   it.Title,
			URL:     fmt.Sprintf(YouTubeVideoURLTemplate, it.VideoID),
		})
	}

	return info, nil
}

// IsPlaylistURL checks whether the URL references a playlist
func IsPlaylistURL(url string) bool {
	return strings.Contains(url, PlaylistParam)
}

// ExtractPlaylistID extracts the playlist ID from the various URL formats:
// watch?v=X&list=ID, playlist?list=ID, with or without trailing parameters.
func ExtractPlaylistID(url string) string {
	if !strings.Contains(url, PlaylistParam) {
		return ""
	}
	parts := strings.Split(url, PlaylistParam)
	if len(parts) < 2 {
		return ""
	}
	id := parts[1]
	if strings.Contains(id, ParamSeparator) {
		id = strings.Split(id, ParamSeparator)[0]
	}
	return id
}

// ContainsSabrIndicator reports whether yt-dlp warning output carries one of
// the known SABR restriction fragments.
func ContainsSabrIndicator(output string) bool {
	lower := strings.ToLower(output)
	for _, indicator := range sabrIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}
