package model

// StreamFormat describes one downloadable stream reported by the extractor
type StreamFormat struct {
	FormatID   string `json:"format_id,omitempty"`
	Height     int    `json:"height,omitempty"`
	FPS        int    `json:"fps,omitempty"`
	Bitrate    int    `json:"bitrate,omitempty"` // kbps, audio streams
	VideoCodec string `json:"vcodec,omitempty"`
	AudioCodec string `json:"acodec,omitempty"`
	Container  string `json:"container,omitempty"`
}

// HasVideo reports whether the stream carries a video track
func (f StreamFormat) HasVideo() bool {
	return f.VideoCodec != "" && f.VideoCodec != "none"
}

// HasAudio reports whether the stream carries an audio track
func (f StreamFormat) HasAudio() bool {
	return f.AudioCodec != "" && f.AudioCodec != "none"
}

// PlaylistEntry identifies one member of a resolved playlist
type PlaylistEntry struct {
	VideoID string `json:"video_id"`
	Title   string `json:"title,omitempty"`
	URL     string `json:"url"`
}

// VideoInfo is the metadata probe result for a URL
type VideoInfo struct {
	VideoID        string          `json:"video_id,omitempty"`
	Title          string          `json:"title,omitempty"`
	DurationSec    int             `json:"duration_sec,omitempty"`
	Formats        []StreamFormat  `json:"formats,omitempty"`
	IsPlaylist     bool            `json:"is_playlist,omitempty"`
	Entries        []PlaylistEntry `json:"entries,omitempty"`
	SabrRestricted bool            `json:"sabr_restricted,omitempty"`
	AgeRestricted  bool            `json:"age_restricted,omitempty"`
}

// HasAudioStream reports whether any audio track is available
func (v *VideoInfo) HasAudioStream() bool {
	for _, f := range v.Formats {
		if f.HasAudio() {
			return true
		}
	}
	return false
}
