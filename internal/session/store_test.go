package session

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/ytget/yt-queue/internal/config"
	"github.com/ytget/yt-queue/internal/model"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	adapter := NewAdapter(path)

	added := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	doc := Document{
		Settings: config.Settings{
			DownloadDir:    "/home/user/Downloads",
			Quality:        model.Quality720p,
			AudioOnly:      true,
			AudioFormat:    model.AudioMP3,
			MaxParallel:    2,
			LogLevel:       config.LogLevelDebug,
			ConsoleVisible: true,
			WindowWidth:    1024,
			WindowHeight:   768,
			SabrCeiling:    model.Quality480p,
			ForceSabr:      true,
		},
		Queue: []model.QueueItem{
			{
				ID:              "item-1",
				VideoID:         "dQw4w9WgXcQ",
				SourceURL:       "https://youtube.com/watch?v=dQw4w9WgXcQ",
				Title:           "Test Video",
				DurationSec:     212,
				RequestedFormat: model.VideoFormat(model.Quality1080p),
				EffectiveFormat: model.VideoFormat(model.Quality720p),
				Status:          model.StatusDone,
				OrderIndex:      0,
				OutputPath:      "/home/user/Downloads/Test Video.mp4",
				AddedAt:         added,
				FinishedAt:      added.Add(time.Minute),
			},
			{
				ID:              "item-2",
				SourceURL:       "https://youtube.com/watch?v=abc",
				RequestedFormat: model.AudioOnlyFormat(model.AudioMP3),
				Status:          model.StatusFailed,
				ErrorDetail:     "HTTP Error 403: Forbidden",
				OrderIndex:      1,
				AddedAt:         added,
			},
		},
	}

	if err := adapter.Save(doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := adapter.Load()
	if !reflect.DeepEqual(loaded.Settings, doc.Settings) {
		t.Errorf("Settings did not round-trip:\nsaved  %+v\nloaded %+v", doc.Settings, loaded.Settings)
	}
	if len(loaded.Queue) != len(doc.Queue) {
		t.Fatalf("Expected %d queue items, got %d", len(doc.Queue), len(loaded.Queue))
	}
	for i := range doc.Queue {
		if !loaded.Queue[i].AddedAt.Equal(doc.Queue[i].AddedAt) {
			t.Errorf("Item %d AddedAt did not round-trip", i)
		}
		saved := doc.Queue[i]
		got := loaded.Queue[i]
		saved.AddedAt, got.AddedAt = time.Time{}, time.Time{}
		saved.FinishedAt, got.FinishedAt = time.Time{}, time.Time{}
		if !reflect.DeepEqual(saved, got) {
			t.Errorf("Item %d did not round-trip:\nsaved  %+v\nloaded %+v", i, saved, got)
		}
	}
}

func TestLoad_MissingFile(t *testing.T) {
	adapter := NewAdapter(filepath.Join(t.TempDir(), "nope", "session.json"))

	doc := adapter.Load()
	if len(doc.Queue) != 0 {
		t.Errorf("Expected empty queue, got %d items", len(doc.Queue))
	}
	if doc.Settings.DownloadDir == "" {
		t.Error("Expected default settings on a missing file")
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	adapter := NewAdapter(path)
	doc := adapter.Load()
	if len(doc.Queue) != 0 {
		t.Error("Corrupt file should yield an empty queue")
	}
	if doc.Settings.MaxParallel < config.MinParallel {
		t.Error("Corrupt file should yield normalized default settings")
	}
}

func TestSave_ReplacesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.json")
	adapter := NewAdapter(path)

	first := Document{Settings: config.DefaultSettings()}
	if err := adapter.Save(first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	second := first
	second.Queue = []model.QueueItem{{ID: "x", SourceURL: "u", Status: model.StatusPending}}
	if err := adapter.Save(second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// No temp files should survive
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "session.json" {
		t.Errorf("Expected only session.json in dir, got %v", entries)
	}

	loaded := adapter.Load()
	if len(loaded.Queue) != 1 || loaded.Queue[0].ID != "x" {
		t.Error("Expected the second snapshot to be loaded")
	}
}
