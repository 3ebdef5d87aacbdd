package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/ytget/yt-queue/internal/config"
	"github.com/ytget/yt-queue/internal/model"
)

// ErrPersistence wraps load/save failures. They degrade to defaults and a
// log line, never a crash.
var ErrPersistence = errors.New("session persistence")

// DefaultFileName is the session document file name
const DefaultFileName = "session.json"

// Document is the persisted session: settings plus the queue snapshot
type Document struct {
	Settings config.Settings   `json:"settings"`
	Queue    []model.QueueItem `json:"queue"`
}

// Adapter loads and saves the session document. Writes go to a temp file
// first and then rename into place, so a crash mid-write leaves the previous
// snapshot intact.
type Adapter struct {
	path string
	mu   sync.Mutex
}

// NewAdapter creates a session adapter persisting to the given file path
func NewAdapter(path string) *Adapter {
	return &Adapter{path: path}
}

// DefaultPath returns the session file location under the user config dir
func DefaultPath() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(base, "yt-queue", DefaultFileName)
}

// Load reads the session document. A missing or corrupt file yields default
// settings and an empty queue with a warning; startup never fails on it.
func (a *Adapter) Load() Document {
	a.mu.Lock()
	defer a.mu.Unlock()

	doc := Document{Settings: config.DefaultSettings()}

	data, err := os.ReadFile(a.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("session load: %v, starting with defaults", err)
		}
		return doc
	}

	if err := json.Unmarshal(data, &doc); err != nil {
		log.Printf("session load: corrupt document %s: %v, starting with defaults", a.path, err)
		return Document{Settings: config.DefaultSettings()}
	}

	doc.Settings.Normalize()
	return doc
}

// Save writes the session document atomically
func (a *Adapter) Save(doc Document) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal: %v", ErrPersistence, err)
	}

	dir := filepath.Dir(a.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: ensure dir %s: %v", ErrPersistence, dir, err)
	}

	tmp, err := os.CreateTemp(dir, DefaultFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("%w: create temp: %v", ErrPersistence, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("%w: write temp: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: close temp: %v", ErrPersistence, err)
	}

	if err := os.Rename(tmpName, a.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("%w: replace %s: %v", ErrPersistence, a.path, err)
	}
	return nil
}
