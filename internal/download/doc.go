package download

// Package download implements the execution engine built on top of yt-dlp
// (via github.com/lrstanley/go-ytdlp). It claims queue items in order,
// resolves their effective format, runs the fetch with quality fallback after
// 403 rejections, validates the result, and maintains the download archive
// used for duplicate detection. Progress and state changes flow to the UI as
// events on a bounded channel.
