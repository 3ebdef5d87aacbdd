package platform

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// FFprobe constants
const (
	FFprobeCommand       = "ffprobe"
	FFprobeLogLevel      = "error"
	FFprobeShowEntries   = "format=format_name"
	FFprobeStreamEntries = "stream=codec_name"
	FFprobeOutputFormat  = "csv=p=0"
	FFprobeTimeout       = 15 * time.Second
)

// FileProbe is the result of probing a downloaded media file
type FileProbe struct {
	Container string
	Codec     string
	SizeBytes int64
}

// FFprobeAvailable reports whether ffprobe is on PATH. When it is not,
// validation degrades to a size-only check.
func FFprobeAvailable() bool {
	_, err := exec.LookPath(FFprobeCommand)
	return err == nil
}

// ProbeFile inspects a media file with ffprobe, returning its container,
// first stream codec and size.
func ProbeFile(ctx context.Context, path string) (*FileProbe, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("probe file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, FFprobeTimeout)
	defer cancel()

	formatOut, err := exec.CommandContext(ctx, FFprobeCommand,
		"-v", FFprobeLogLevel,
		"-show_entries", FFprobeShowEntries,
		"-of", FFprobeOutputFormat,
		path,
	).Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	codecOut, err := exec.CommandContext(ctx, FFprobeCommand,
		"-v", FFprobeLogLevel,
		"-select_streams", "0",
		"-show_entries", FFprobeStreamEntries,
		"-of", FFprobeOutputFormat,
		path,
	).Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	return &FileProbe{
		Container: strings.TrimSpace(string(formatOut)),
		Codec:     strings.TrimSpace(string(codecOut)),
		SizeBytes: info.Size(),
	}, nil
}

// MatchesExtension checks whether the probed container family covers the
// file extension. ffprobe reports container lists like "mov,mp4,m4a,3gp".
func (p *FileProbe) MatchesExtension(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" || p.Container == "" {
		return true
	}
	for _, name := range strings.Split(p.Container, ",") {
		if strings.TrimSpace(name) == ext {
			return true
		}
	}
	// Common aliases not listed verbatim by ffprobe
	switch ext {
	case "m4a", "mp4":
		return strings.Contains(p.Container, "mp4") || strings.Contains(p.Container, "mov")
	case "mkv", "webm":
		return strings.Contains(p.Container, "matroska") || strings.Contains(p.Container, "webm")
	case "mp3":
		return strings.Contains(p.Container, "mp3")
	}
	return false
}
