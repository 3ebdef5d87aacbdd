package download

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Archive file constants. The line format matches yt-dlp's download archive
// ("youtube <id>") so external tools can share the file.
const (
	ArchiveFileName = "download-archive.txt"
	ArchiveSite     = "youtube"
)

// Archive is the append-only record of completed downloads, used for
// duplicate-skip detection. External tools may append concurrently, so every
// membership check re-reads the file and removal rewrites while preserving
// lines it does not recognize.
type Archive struct {
	path string
	mu   sync.Mutex
}

// NewArchive creates an archive handle for the given download directory
func NewArchive(downloadDir string) *Archive {
	return &Archive{path: filepath.Join(downloadDir, ArchiveFileName)}
}

// Path returns the archive file location
func (a *Archive) Path() string {
	return a.path
}

// Contains reports whether the video ID was already downloaded
func (a *Archive) Contains(videoID string) bool {
	if videoID == "" {
		return false
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ids, _, err := a.read()
	if err != nil {
		return false
	}
	return ids[videoID]
}

// Append records a completed download. Already-present IDs are not duplicated.
func (a *Archive) Append(videoID string) error {
	if videoID == "" {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	ids, _, err := a.read()
	if err == nil && ids[videoID] {
		return nil
	}

	f, err := os.OpenFile(a.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open archive: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s %s\n", ArchiveSite, videoID); err != nil {
		return fmt.Errorf("append archive: %w", err)
	}
	return nil
}

// Remove drops the video ID from the archive so a Reset can re-download it.
// Lines for other IDs, including ones written by external tools, survive.
func (a *Archive) Remove(videoID string) error {
	if videoID == "" {
		return nil
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	_, lines, err := a.read()
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read archive: %w", err)
	}

	kept := lines[:0]
	target := ArchiveSite + " " + videoID
	for _, line := range lines {
		if strings.TrimSpace(line) != target {
			kept = append(kept, line)
		}
	}

	out := strings.Join(kept, "\n")
	if out != "" {
		out += "\n"
	}
	if err := os.WriteFile(a.path, []byte(out), 0o644); err != nil {
		return fmt.Errorf("rewrite archive: %w", err)
	}
	return nil
}

// read returns the set of archived IDs and the raw lines; caller holds the lock
func (a *Archive) read() (map[string]bool, []string, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	ids := make(map[string]bool)
	var lines []string

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)

		fields := strings.Fields(line)
		if len(fields) == 2 && fields[0] == ArchiveSite {
			ids[fields[1]] = true
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, err
	}
	return ids, lines, nil
}
