package model

import "strings"

// Quality represents a ranked video quality tier
type Quality string

const (
	QualityBest   Quality = "Best"
	Quality2160p  Quality = "2160p"
	Quality1440p  Quality = "1440p"
	Quality1080p  Quality = "1080p"
	Quality720p   Quality = "720p"
	Quality480p   Quality = "480p"
	Quality360p   Quality = "360p"
	Quality240p   Quality = "240p"
	Quality144p   Quality = "144p"
	QualityLowest Quality = "Lowest"
)

// QualityLadder lists video quality tiers from best to worst
var QualityLadder = []Quality{
	QualityBest,
	Quality2160p,
	Quality1440p,
	Quality1080p,
	Quality720p,
	Quality480p,
	Quality360p,
	Quality240p,
	Quality144p,
	QualityLowest,
}

// Rank returns the position of the quality on the ladder; lower is better.
// Unknown tiers rank below Lowest.
func (q Quality) Rank() int {
	for i, tier := range QualityLadder {
		if tier == q {
			return i
		}
	}
	return len(QualityLadder)
}

// Height returns the pixel height associated with the tier, 0 for the
// open-ended tiers (Best, Lowest).
func (q Quality) Height() int {
	switch q {
	case Quality2160p:
		return 2160
	case Quality1440p:
		return 1440
	case Quality1080p:
		return 1080
	case Quality720p:
		return 720
	case Quality480p:
		return 480
	case Quality360p:
		return 360
	case Quality240p:
		return 240
	case Quality144p:
		return 144
	}
	return 0
}

// QualityForHeight maps a stream pixel height to its quality tier
func QualityForHeight(height int) Quality {
	switch {
	case height >= 2160:
		return Quality2160p
	case height >= 1440:
		return Quality1440p
	case height >= 1080:
		return Quality1080p
	case height >= 720:
		return Quality720p
	case height >= 480:
		return Quality480p
	case height >= 360:
		return Quality360p
	case height >= 240:
		return Quality240p
	}
	return Quality144p
}

// AudioFormat represents an audio extraction preset, ranked by bitrate
type AudioFormat string

const (
	AudioDefault     AudioFormat = "default"
	AudioBest        AudioFormat = "best"
	AudioMP3         AudioFormat = "standard_mp3"  // ~192kbps MP3
	AudioM4AHigh     AudioFormat = "high_m4a"      // ~160kbps AAC
	AudioM4AStandard AudioFormat = "standard_m4a"  // ~128kbps AAC
	AudioOpus        AudioFormat = "standard_webm" // ~128kbps Opus
	AudioOpusMedium  AudioFormat = "medium_webm"   // ~70kbps Opus
	AudioOpusLow     AudioFormat = "low_webm"      // ~48kbps Opus
	AudioLowest      AudioFormat = "lowest"
)

// AudioLadder lists audio presets from best to worst
var AudioLadder = []AudioFormat{
	AudioBest,
	AudioMP3,
	AudioM4AHigh,
	AudioM4AStandard,
	AudioOpus,
	AudioOpusMedium,
	AudioOpusLow,
	AudioLowest,
}

// Rank returns the position of the audio preset on the ladder; lower is better
func (a AudioFormat) Rank() int {
	for i, f := range AudioLadder {
		if f == a {
			return i
		}
	}
	return len(AudioLadder)
}

// SabrCompatible reports whether the preset is usable under SABR
// restrictions. Empirically only MP3 and high-AAC extraction survive.
func (a AudioFormat) SabrCompatible() bool {
	return a == AudioMP3 || a == AudioM4AHigh
}

// FormatSpec is a user-facing format choice: either a video quality tier or
// an audio-only preset.
type FormatSpec struct {
	AudioOnly bool        `json:"audio_only"`
	Quality   Quality     `json:"quality,omitempty"`
	Audio     AudioFormat `json:"audio,omitempty"`
}

// VideoFormat builds a video FormatSpec
func VideoFormat(q Quality) FormatSpec {
	return FormatSpec{Quality: q}
}

// AudioOnlyFormat builds an audio-only FormatSpec
func AudioOnlyFormat(a AudioFormat) FormatSpec {
	return FormatSpec{AudioOnly: true, Audio: a}
}

// IsZero reports whether the spec carries no choice at all
func (f FormatSpec) IsZero() bool {
	return !f.AudioOnly && f.Quality == "" && f.Audio == ""
}

// String returns a display form like "1080p" or "Audio-standard_mp3"
func (f FormatSpec) String() string {
	if f.AudioOnly {
		return "Audio-" + string(f.Audio)
	}
	return string(f.Quality)
}

// ParseFormatSpec parses the display form produced by String
func ParseFormatSpec(s string) FormatSpec {
	if rest, ok := strings.CutPrefix(s, "Audio-"); ok {
		return AudioOnlyFormat(AudioFormat(rest))
	}
	return VideoFormat(Quality(s))
}
