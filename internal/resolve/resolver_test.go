package resolve

import (
	"errors"
	"testing"

	"github.com/ytget/yt-queue/internal/model"
)

func videoWithHeights(heights ...int) *model.VideoInfo {
	info := &model.VideoInfo{}
	for _, h := range heights {
		info.Formats = append(info.Formats, model.StreamFormat{
			Height:     h,
			VideoCodec: "avc1",
			AudioCodec: "mp4a",
		})
	}
	return info
}

func TestResolve_ExactMatchUnchanged(t *testing.T) {
	resolver := NewResolver()
	info := videoWithHeights(1080, 720, 480, 360)

	for _, q := range []model.Quality{model.Quality1080p, model.Quality720p, model.Quality480p, model.Quality360p} {
		res := resolver.Resolve(info, model.VideoFormat(q), false)
		if res.Blocked {
			t.Fatalf("Resolve(%s) unexpectedly blocked", q)
		}
		if res.Adjusted {
			t.Errorf("Resolve(%s) adjusted an exact match", q)
		}
		if res.Effective.Quality != q {
			t.Errorf("Resolve(%s) = %s, expected exact match", q, res.Effective.Quality)
		}
	}
}

func TestResolve_FallbackBelow(t *testing.T) {
	resolver := NewResolver()
	info := videoWithHeights(720, 480)

	res := resolver.Resolve(info, model.VideoFormat(model.Quality1080p), false)
	if res.Blocked {
		t.Fatal("Resolve unexpectedly blocked")
	}
	if !res.Adjusted {
		t.Error("Expected adjusted=true for a fallback")
	}
	if res.Effective.Quality != model.Quality720p {
		t.Errorf("Expected fallback to 720p, got %s", res.Effective.Quality)
	}
}

func TestResolve_FallbackAboveWhenNothingBelow(t *testing.T) {
	resolver := NewResolver()
	info := videoWithHeights(1080, 720)

	res := resolver.Resolve(info, model.VideoFormat(model.Quality360p), false)
	if res.Blocked {
		t.Fatal("Resolver must never block when formats exist and SABR is off")
	}
	if !res.Adjusted {
		t.Error("Expected adjusted=true")
	}
	if res.Effective.Quality != model.Quality720p {
		t.Errorf("Expected closest tier above (720p), got %s", res.Effective.Quality)
	}
}

func TestResolve_BestAndLowest(t *testing.T) {
	resolver := NewResolver()
	info := videoWithHeights(1080, 480)

	res := resolver.Resolve(info, model.VideoFormat(model.QualityBest), false)
	if res.Adjusted || res.Effective.Quality != model.Quality1080p {
		t.Errorf("Best should resolve to highest available unadjusted, got %s adjusted=%v",
			res.Effective.Quality, res.Adjusted)
	}

	res = resolver.Resolve(info, model.VideoFormat(model.QualityLowest), false)
	if res.Adjusted || res.Effective.Quality != model.Quality480p {
		t.Errorf("Lowest should resolve to lowest available unadjusted, got %s adjusted=%v",
			res.Effective.Quality, res.Adjusted)
	}
}

func TestResolve_SabrDowngrade(t *testing.T) {
	resolver := NewResolver()
	info := videoWithHeights(1080, 360)
	info.SabrRestricted = true

	res := resolver.Resolve(info, model.VideoFormat(model.Quality1080p), false)
	if res.Blocked {
		t.Fatal("Resolve unexpectedly blocked")
	}
	if !res.Adjusted {
		t.Error("Expected adjusted=true for SABR downgrade")
	}
	if res.Effective.Quality != model.Quality360p {
		t.Errorf("Expected SABR downgrade to 360p, got %s", res.Effective.Quality)
	}
}

func TestResolve_SabrBlockedWhenNoCompatibleTier(t *testing.T) {
	resolver := NewResolver()
	info := videoWithHeights(1080)
	info.SabrRestricted = true

	res := resolver.Resolve(info, model.VideoFormat(model.Quality1080p), false)
	if !res.Blocked {
		t.Fatal("Expected blocked=true when no SABR-compatible tier exists")
	}
	if !errors.Is(res.BlockErr, ErrQualityBlocked) {
		t.Errorf("Expected ErrQualityBlocked, got %v", res.BlockErr)
	}
}

func TestResolve_ForceSabrBypassesCeiling(t *testing.T) {
	resolver := NewResolver()
	info := videoWithHeights(1080)
	info.SabrRestricted = true

	res := resolver.Resolve(info, model.VideoFormat(model.Quality1080p), true)
	if res.Blocked {
		t.Fatal("Force SABR must not block")
	}
	if res.Adjusted {
		t.Error("Force SABR must attempt the requested format unchanged")
	}
	if res.Effective.Quality != model.Quality1080p {
		t.Errorf("Expected 1080p, got %s", res.Effective.Quality)
	}
}

func TestResolve_SabrCompatibleAudioUnchanged(t *testing.T) {
	resolver := NewResolver()
	info := videoWithHeights(1080)
	info.SabrRestricted = true

	for _, preset := range []model.AudioFormat{model.AudioMP3, model.AudioM4AHigh} {
		res := resolver.Resolve(info, model.AudioOnlyFormat(preset), false)
		if res.Blocked || res.Adjusted {
			t.Errorf("Resolve(Audio-%s) should pass the SABR check, got blocked=%v adjusted=%v",
				preset, res.Blocked, res.Adjusted)
		}
		if res.Effective.Audio != preset {
			t.Errorf("Expected audio preset unchanged, got %s", res.Effective.Audio)
		}
	}
}

func TestResolve_SabrDowngradesIncompatibleAudio(t *testing.T) {
	resolver := NewResolver()
	info := videoWithHeights(1080)
	info.SabrRestricted = true

	res := resolver.Resolve(info, model.AudioOnlyFormat(model.AudioOpus), false)
	if res.Blocked {
		t.Fatal("Resolve unexpectedly blocked")
	}
	if !res.Adjusted {
		t.Error("Expected adjusted=true for incompatible audio preset")
	}
	if res.Effective.Audio != model.AudioMP3 {
		t.Errorf("Expected downgrade to %s, got %s", model.AudioMP3, res.Effective.Audio)
	}

	// Force overrides the downgrade
	forced := resolver.Resolve(info, model.AudioOnlyFormat(model.AudioOpus), true)
	if forced.Adjusted || forced.Effective.Audio != model.AudioOpus {
		t.Errorf("Expected forced preset unchanged, got adjusted=%v %s",
			forced.Adjusted, forced.Effective.Audio)
	}
}

func TestResolve_NeverBlockedWhenFormatsAvailable(t *testing.T) {
	resolver := NewResolver()
	info := videoWithHeights(720, 240)

	for _, q := range model.QualityLadder {
		res := resolver.Resolve(info, model.VideoFormat(q), false)
		if res.Blocked {
			t.Errorf("Resolve(%s) blocked with a non-empty format set", q)
		}
	}
}

func TestResolve_AgeRestrictedNoStreams(t *testing.T) {
	resolver := NewResolver()
	info := &model.VideoInfo{AgeRestricted: true}

	res := resolver.Resolve(info, model.VideoFormat(model.Quality720p), false)
	if !res.Blocked {
		t.Fatal("Expected blocked=true")
	}
	if !errors.Is(res.BlockErr, ErrAgeRestricted) {
		t.Errorf("Expected ErrAgeRestricted, got %v", res.BlockErr)
	}
}

func TestResolve_CustomCeiling(t *testing.T) {
	resolver := NewResolver()
	resolver.SetSabrCeiling(model.Quality480p)

	info := videoWithHeights(1080, 480)
	info.SabrRestricted = true

	res := resolver.Resolve(info, model.VideoFormat(model.Quality1080p), false)
	if res.Blocked {
		t.Fatal("Resolve unexpectedly blocked")
	}
	if res.Effective.Quality != model.Quality480p {
		t.Errorf("Expected downgrade to custom ceiling 480p, got %s", res.Effective.Quality)
	}
}
