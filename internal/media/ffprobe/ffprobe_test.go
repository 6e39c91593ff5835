package ffprobe

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func decodeResult(t *testing.T, payload string) Result {
	t.Helper()
	var result Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	return result
}

func TestVideoDescriptorFromResult(t *testing.T) {
	result := decodeResult(t, `{
		"streams": [
			{"index": 0, "codec_type": "audio", "codec_name": "aac"},
			{"index": 1, "codec_type": "video", "codec_name": "h264", "width": 1920, "height": 1080}
		],
		"format": {"filename": "clip.mp4", "duration": "123.94", "size": "1048576"}
	}`)
	video, err := result.Video("clip.mp4")
	if err != nil {
		t.Fatalf("video: %v", err)
	}
	if video.Width != 1920 || video.Height != 1080 {
		t.Fatalf("unexpected dimensions %dx%d", video.Width, video.Height)
	}
	if video.DurationSeconds != 123 {
		t.Fatalf("expected truncated duration 123, got %d", video.DurationSeconds)
	}
	if video.SizeBytes != 1048576 {
		t.Fatalf("unexpected size %d", video.SizeBytes)
	}
	if video.RotationDegrees != 0 {
		t.Fatalf("unexpected rotation %d", video.RotationDegrees)
	}
}

func TestRotationPrefersStreamTag(t *testing.T) {
	result := decodeResult(t, `{
		"streams": [{
			"codec_type": "video", "width": 1080, "height": 1920,
			"tags": {"rotate": "90"},
			"side_data_list": [{"side_data_type": "Display Matrix", "rotation": -180}]
		}],
		"format": {"duration": "10"}
	}`)
	video, err := result.Video("vertical.mp4")
	if err != nil {
		t.Fatalf("video: %v", err)
	}
	if video.RotationDegrees != 90 {
		t.Fatalf("expected rotation 90 from tag, got %d", video.RotationDegrees)
	}
	if video.EffectiveWidth() != 1920 || video.EffectiveHeight() != 1080 {
		t.Fatalf("expected effective 1920x1080, got %dx%d", video.EffectiveWidth(), video.EffectiveHeight())
	}
}

func TestRotationFallsBackToDisplayMatrix(t *testing.T) {
	result := decodeResult(t, `{
		"streams": [{
			"codec_type": "video", "width": 1080, "height": 1920,
			"side_data_list": [{"side_data_type": "Display Matrix", "rotation": -90.00}]
		}],
		"format": {}
	}`)
	video, err := result.Video("vertical.mp4")
	if err != nil {
		t.Fatalf("video: %v", err)
	}
	if video.RotationDegrees != -90 {
		t.Fatalf("expected rotation -90 from side data, got %d", video.RotationDegrees)
	}
	if video.EffectiveWidth() != 1920 {
		t.Fatalf("expected quarter-turn swap, got effective width %d", video.EffectiveWidth())
	}
}

func TestVideoRejectsMissingVideoStream(t *testing.T) {
	result := decodeResult(t, `{
		"streams": [{"codec_type": "audio", "codec_name": "mp3"}],
		"format": {"duration": "10"}
	}`)
	if _, err := result.Video("audio.mp3"); err == nil {
		t.Fatal("expected error for audio-only input")
	}
}

func TestVideoRejectsDegenerateDimensions(t *testing.T) {
	result := decodeResult(t, `{
		"streams": [{"codec_type": "video", "width": 0, "height": 1080}],
		"format": {}
	}`)
	if _, err := result.Video("broken.mp4"); err == nil {
		t.Fatal("expected error for zero-width stream")
	}
}

func TestDurationFallsBackToStream(t *testing.T) {
	result := decodeResult(t, `{
		"streams": [{"codec_type": "video", "width": 640, "height": 480, "duration": "42.9"}],
		"format": {"duration": "N/A"}
	}`)
	video, err := result.Video("clip.avi")
	if err != nil {
		t.Fatalf("video: %v", err)
	}
	if video.DurationSeconds != 42 {
		t.Fatalf("expected stream duration 42, got %d", video.DurationSeconds)
	}
}

func TestUnknownDurationIsZero(t *testing.T) {
	result := decodeResult(t, `{
		"streams": [{"codec_type": "video", "width": 640, "height": 480}],
		"format": {}
	}`)
	video, err := result.Video("clip.avi")
	if err != nil {
		t.Fatalf("video: %v", err)
	}
	if video.DurationSeconds != 0 {
		t.Fatalf("expected zero duration, got %d", video.DurationSeconds)
	}
}

func TestInspectRejectsEmptyPath(t *testing.T) {
	if _, err := Inspect(context.Background(), "ffprobe", "  "); err == nil || !strings.Contains(err.Error(), "empty path") {
		t.Fatalf("expected empty path error, got %v", err)
	}
}
