package metadata

// Package metadata resolves URLs to video information through yt-dlp and
// caches results with a fixed time-to-live. Playlist URLs expand to their
// member videos. Probe failures are surfaced, never cached.
