package resolve

import (
	"errors"

	"github.com/ytget/yt-queue/internal/model"
)

// Block reasons reported through Resolution.BlockErr
var (
	// ErrQualityBlocked indicates no SABR-compatible format was available
	ErrQualityBlocked = errors.New("no compatible format available")
	// ErrAgeRestricted indicates age-gated content with no accessible stream
	ErrAgeRestricted = errors.New("age-restricted content with no accessible stream")
)

// DefaultSabrCeiling is the best quality tier that still works under SABR
// restrictions. The boundary is a heuristic, so it stays configurable.
const DefaultSabrCeiling = model.Quality360p

// Resolution is the outcome of matching a requested format against the
// formats a video actually offers.
type Resolution struct {
	Effective model.FormatSpec
	Adjusted  bool
	Blocked   bool
	BlockErr  error
}

// Resolver selects the effective download format for a video, applying
// nearest-available fallback and the SABR compatibility ceiling.
type Resolver struct {
	sabrCeiling model.Quality
}

// NewResolver creates a resolver with the default SABR ceiling
func NewResolver() *Resolver {
	return &Resolver{sabrCeiling: DefaultSabrCeiling}
}

// SetSabrCeiling overrides the SABR compatibility boundary
func (r *Resolver) SetSabrCeiling(q model.Quality) {
	if q != "" {
		r.sabrCeiling = q
	}
}

// Resolve picks the effective format for the requested spec. An exact match
// is returned unchanged; a miss falls back to the nearest available tier at
// or below the request, then to the closest tier above. SABR-restricted
// content is downgraded to the ceiling tier unless forceSabr bypasses the
// check. Blocked results carry ErrQualityBlocked or ErrAgeRestricted.
func (r *Resolver) Resolve(info *model.VideoInfo, requested model.FormatSpec, forceSabr bool) Resolution {
	if requested.AudioOnly {
		return r.resolveAudio(info, requested, forceSabr)
	}
	return r.resolveVideo(info, requested, forceSabr)
}

// resolveAudio handles audio-only requests. Audio extraction is a transcode
// target rather than a stream pick, so the preset passes through as long as
// any audio track exists. Restricted delivery narrows the choice to the
// SABR-compatible extractions; anything else downgrades to standard MP3.
func (r *Resolver) resolveAudio(info *model.VideoInfo, requested model.FormatSpec, forceSabr bool) Resolution {
	if !info.HasAudioStream() {
		if info.AgeRestricted {
			return blocked(ErrAgeRestricted)
		}
		return blocked(ErrQualityBlocked)
	}
	if info.SabrRestricted && !forceSabr && !requested.Audio.SabrCompatible() {
		return Resolution{Effective: model.AudioOnlyFormat(model.AudioMP3), Adjusted: true}
	}
	return Resolution{Effective: requested}
}

func (r *Resolver) resolveVideo(info *model.VideoInfo, requested model.FormatSpec, forceSabr bool) Resolution {
	tiers := concreteTiers(info)
	if len(tiers) == 0 {
		if info.AgeRestricted {
			return blocked(ErrAgeRestricted)
		}
		return blocked(ErrQualityBlocked)
	}

	effective, adjusted := pickTier(tiers, requested.Quality)

	if info.SabrRestricted && !forceSabr && effective.Rank() < r.sabrCeiling.Rank() {
		capped, ok := bestAtOrBelow(tiers, r.sabrCeiling)
		if !ok {
			return blocked(ErrQualityBlocked)
		}
		return Resolution{Effective: model.VideoFormat(capped), Adjusted: true}
	}

	return Resolution{Effective: model.VideoFormat(effective), Adjusted: adjusted}
}

// pickTier maps the requested tier onto the concrete tiers, best first.
// Best and Lowest always resolve to the matching extreme without counting as
// an adjustment.
func pickTier(tiers []model.Quality, requested model.Quality) (model.Quality, bool) {
	switch requested {
	case model.QualityBest:
		return tiers[0], false
	case model.QualityLowest:
		return tiers[len(tiers)-1], false
	}

	// Exact match
	for _, tier := range tiers {
		if tier == requested {
			return tier, false
		}
	}

	// Nearest available at or below the request
	for _, tier := range tiers {
		if tier.Rank() > requested.Rank() {
			return tier, true
		}
	}

	// Nothing below; closest tier above the request
	return tiers[len(tiers)-1], true
}

// bestAtOrBelow returns the best concrete tier not better than the ceiling
func bestAtOrBelow(tiers []model.Quality, ceiling model.Quality) (model.Quality, bool) {
	for _, tier := range tiers {
		if tier.Rank() >= ceiling.Rank() {
			return tier, true
		}
	}
	return "", false
}

// concreteTiers lists the quality tiers actually offered, best first
func concreteTiers(info *model.VideoInfo) []model.Quality {
	seen := make(map[model.Quality]bool)
	for _, f := range info.Formats {
		if f.HasVideo() && f.Height > 0 {
			seen[model.QualityForHeight(f.Height)] = true
		}
	}

	var tiers []model.Quality
	for _, tier := range model.QualityLadder {
		if seen[tier] {
			tiers = append(tiers, tier)
		}
	}
	return tiers
}

func blocked(reason error) Resolution {
	return Resolution{Blocked: true, BlockErr: reason}
}
