package metadata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ytget/yt-queue/internal/model"
)

func TestCache_LookupWithinTTL(t *testing.T) {
	calls := 0
	cache := NewCache(ProberFunc(func(ctx context.Context, url string) (*model.VideoInfo, error) {
		calls++
		return &model.VideoInfo{VideoID: "abc", Title: "Test Video"}, nil
	}))

	info, hit, err := cache.Lookup(context.Background(), "https://youtube.com/watch?v=abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if hit {
		t.Error("First lookup should be a miss")
	}
	if info.Title != "Test Video" {
		t.Errorf("Expected title 'Test Video', got %q", info.Title)
	}

	info, hit, err = cache.Lookup(context.Background(), "https://youtube.com/watch?v=abc")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !hit {
		t.Error("Second lookup within TTL should be a hit")
	}
	if info.VideoID != "abc" {
		t.Errorf("Expected cached video ID 'abc', got %q", info.VideoID)
	}

	if calls != 1 {
		t.Errorf("Expected exactly 1 prober call, got %d", calls)
	}
}

func TestCache_LookupAfterExpiry(t *testing.T) {
	calls := 0
	cache := NewCache(ProberFunc(func(ctx context.Context, url string) (*model.VideoInfo, error) {
		calls++
		return &model.VideoInfo{VideoID: "abc"}, nil
	}))

	now := time.Now()
	cache.now = func() time.Time { return now }

	if _, _, err := cache.Lookup(context.Background(), "u"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	// Advance past the TTL
	now = now.Add(DefaultTTL + time.Second)

	_, hit, err := cache.Lookup(context.Background(), "u")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if hit {
		t.Error("Lookup after expiry should be a miss")
	}
	if calls != 2 {
		t.Errorf("Expected 2 prober calls, got %d", calls)
	}
}

func TestCache_FailuresNotCached(t *testing.T) {
	calls := 0
	fail := true
	cache := NewCache(ProberFunc(func(ctx context.Context, url string) (*model.VideoInfo, error) {
		calls++
		if fail {
			return nil, errors.New("network unreachable")
		}
		return &model.VideoInfo{VideoID: "abc"}, nil
	}))

	if _, _, err := cache.Lookup(context.Background(), "u"); err == nil {
		t.Fatal("Expected error from failing prober")
	} else if !errors.Is(err, ErrResolution) {
		t.Errorf("Expected a resolution error, got %v", err)
	}

	// Retry should hit the prober again, not a cached failure
	fail = false
	info, hit, err := cache.Lookup(context.Background(), "u")
	if err != nil {
		t.Fatalf("Expected retry to succeed, got %v", err)
	}
	if hit {
		t.Error("Retry after failure should be a miss")
	}
	if info == nil || info.VideoID != "abc" {
		t.Error("Expected fresh result after retry")
	}
	if calls != 2 {
		t.Errorf("Expected 2 prober calls, got %d", calls)
	}
}

func TestCache_CallersGetCopies(t *testing.T) {
	cache := NewCache(ProberFunc(func(ctx context.Context, url string) (*model.VideoInfo, error) {
		return &model.VideoInfo{
			VideoID: "abc",
			Formats: []model.StreamFormat{{Height: 1080, VideoCodec: "avc1"}},
		}, nil
	}))

	first, _, err := cache.Lookup(context.Background(), "u")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	first.Title = "mutated"
	first.Formats[0].Height = 1

	second, hit, err := cache.Lookup(context.Background(), "u")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !hit {
		t.Fatal("Expected a cache hit")
	}
	if second.Title == "mutated" || second.Formats[0].Height == 1 {
		t.Error("Caller mutation leaked into the cache")
	}
}

func TestCache_Sweep(t *testing.T) {
	cache := NewCache(ProberFunc(func(ctx context.Context, url string) (*model.VideoInfo, error) {
		return &model.VideoInfo{}, nil
	}))

	now := time.Now()
	cache.now = func() time.Time { return now }

	for _, u := range []string{"a", "b", "c"} {
		if _, _, err := cache.Lookup(context.Background(), u); err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
	}

	now = now.Add(DefaultTTL + time.Second)
	if _, _, err := cache.Lookup(context.Background(), "d"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	removed := cache.Sweep()
	if removed != 3 {
		t.Errorf("Expected 3 entries swept, got %d", removed)
	}
	if cache.Len() != 1 {
		t.Errorf("Expected 1 entry left, got %d", cache.Len())
	}
}
