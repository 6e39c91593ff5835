package ffprobe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strconv"
	"strings"
)

var commandContext = exec.CommandContext

// Result represents the parsed output from an ffprobe inspection.
type Result struct {
	Streams []Stream `json:"streams"`
	Format  Format   `json:"format"`
}

// Stream describes a single stream in the media container.
type Stream struct {
	Index        int        `json:"index"`
	CodecName    string     `json:"codec_name"`
	CodecType    string     `json:"codec_type"`
	Width        int        `json:"width"`
	Height       int        `json:"height"`
	Duration     string     `json:"duration"`
	Tags         StreamTags `json:"tags"`
	SideDataList []SideData `json:"side_data_list"`
}

// StreamTags captures the container-level stream tags reframe cares
// about.
type StreamTags struct {
	Rotate string `json:"rotate"`
}

// SideData captures per-stream side data; only display-matrix rotation
// is consumed.
type SideData struct {
	Type     string  `json:"side_data_type"`
	Rotation float64 `json:"rotation"`
}

// Format captures container-level metadata extracted by ffprobe.
type Format struct {
	Filename string `json:"filename"`
	Duration string `json:"duration"`
	Size     string `json:"size"`
}

// Video is the probed descriptor of one input file, immutable once
// created. Dimensions are pre-rotation; use EffectiveWidth/Height for
// geometry decisions.
type Video struct {
	Path            string
	Width           int
	Height          int
	RotationDegrees int
	DurationSeconds int
	SizeBytes       int64
}

// EffectiveWidth returns the width after rotation correction.
func (v Video) EffectiveWidth() int {
	if v.quarterTurn() {
		return v.Height
	}
	return v.Width
}

// EffectiveHeight returns the height after rotation correction.
func (v Video) EffectiveHeight() int {
	if v.quarterTurn() {
		return v.Width
	}
	return v.Height
}

func (v Video) quarterTurn() bool {
	rotation := v.RotationDegrees % 360
	if rotation < 0 {
		rotation += 360
	}
	return rotation == 90 || rotation == 270
}

// Inspect executes ffprobe against the provided path and decodes the
// JSON response.
func Inspect(ctx context.Context, binary string, path string) (Result, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		binary = "ffprobe"
	}
	path = strings.TrimSpace(path)
	if path == "" {
		return Result{}, errors.New("ffprobe inspect: empty path")
	}

	cmd := commandContext(ctx, binary, "-v", "error", "-hide_banner", "-show_format", "-show_streams", "-of", "json", "--", path)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return Result{}, fmt.Errorf("ffprobe inspect: %w: %s", err, strings.TrimSpace(string(output)))
	}

	var result Result
	if err := json.Unmarshal(output, &result); err != nil {
		return Result{}, fmt.Errorf("ffprobe parse: %w", err)
	}
	return result, nil
}

// Probe inspects the file and builds its video descriptor. Sources
// without a usable video stream, or with degenerate dimensions, are
// rejected here so downstream geometry never divides by zero.
func Probe(ctx context.Context, binary string, path string) (Video, error) {
	result, err := Inspect(ctx, binary, path)
	if err != nil {
		return Video{}, err
	}
	return result.Video(path)
}

// Video extracts the descriptor for the first video stream carrying
// positive dimensions.
func (r Result) Video(path string) (Video, error) {
	stream, ok := r.primaryVideoStream()
	if !ok {
		return Video{}, fmt.Errorf("ffprobe: no video stream with usable dimensions in %s", path)
	}
	video := Video{
		Path:            path,
		Width:           stream.Width,
		Height:          stream.Height,
		RotationDegrees: stream.rotation(),
		DurationSeconds: truncateSeconds(r.durationSeconds(stream)),
		SizeBytes:       r.SizeBytes(),
	}
	return video, nil
}

func (r Result) primaryVideoStream() (Stream, bool) {
	for _, stream := range r.Streams {
		if !strings.EqualFold(stream.CodecType, "video") {
			continue
		}
		if stream.Width > 0 && stream.Height > 0 {
			return stream, true
		}
	}
	return Stream{}, false
}

// rotation reads the quarter-turn metadata, preferring the stream tag
// over display-matrix side data when both exist.
func (s Stream) rotation() int {
	if tag := strings.TrimSpace(s.Tags.Rotate); tag != "" {
		if value, err := strconv.Atoi(tag); err == nil {
			return value
		}
	}
	for _, side := range s.SideDataList {
		if !strings.EqualFold(strings.TrimSpace(side.Type), "Display Matrix") {
			continue
		}
		if side.Rotation != 0 {
			return int(math.Round(side.Rotation))
		}
	}
	return 0
}

func (r Result) durationSeconds(stream Stream) float64 {
	if seconds := parseFloat(r.Format.Duration); seconds > 0 {
		return seconds
	}
	return parseFloat(stream.Duration)
}

// SizeBytes returns the reported container size in bytes, or 0 when
// unavailable.
func (r Result) SizeBytes() int64 {
	size := parseFloat(r.Format.Size)
	if size < 0 {
		return 0
	}
	return int64(size)
}

func truncateSeconds(seconds float64) int {
	if math.IsNaN(seconds) || seconds <= 0 {
		return 0
	}
	return int(seconds)
}

func parseFloat(value string) float64 {
	cleaned := strings.TrimSpace(value)
	if cleaned == "" {
		return 0
	}
	if parsed, err := strconv.ParseFloat(cleaned, 64); err == nil {
		return parsed
	}
	return 0
}
