package geometry

import (
	"fmt"
	"strings"
)

// ScaleMode selects which output axis is pinned to the requested scale
// value.
type ScaleMode string

const (
	ScaleModeAuto   ScaleMode = "auto"
	ScaleModeWidth  ScaleMode = "width"
	ScaleModeHeight ScaleMode = "height"
	ScaleModeLong   ScaleMode = "long"
	ScaleModeShort  ScaleMode = "short"
)

// ParseScaleMode validates a scale mode string.
func ParseScaleMode(value string) (ScaleMode, error) {
	mode := ScaleMode(strings.ToLower(strings.TrimSpace(value)))
	switch mode {
	case "":
		return ScaleModeAuto, nil
	case ScaleModeAuto, ScaleModeWidth, ScaleModeHeight, ScaleModeLong, ScaleModeShort:
		return mode, nil
	default:
		return "", fmt.Errorf("scale mode %q: expected auto, width, height, long, or short", value)
	}
}

// Axis identifies the dimension pinned to the scale value.
type Axis string

const (
	AxisWidth  Axis = "width"
	AxisHeight Axis = "height"
)

// Plan is the computed transform for one file. All dimensions and
// offsets are even; the crop rectangle is centered in the source frame.
type Plan struct {
	CropWidth   int
	CropHeight  int
	CropOffsetX int
	CropOffsetY int

	OutputWidth  int
	OutputHeight int

	// ScaledBy records which axis carried the requested scale value.
	ScaledBy Axis
}

// Compute derives the crop rectangle and output dimensions for a
// source frame. Inputs must be validated upstream: dimensions positive
// and scaleValue positive. The function is pure and idempotent.
func Compute(sourceWidth, sourceHeight int, aspect Aspect, scaleValue int, mode ScaleMode, orientation Orientation) Plan {
	target := aspect.Ratio(sourceWidth, sourceHeight)
	current := float64(sourceWidth) / float64(sourceHeight)

	plan := Plan{
		CropWidth:  sourceWidth,
		CropHeight: sourceHeight,
	}
	switch {
	case current > target:
		// Source proportionally wider than target: trim width.
		plan.CropHeight = sourceHeight
		plan.CropWidth = floorToEven(float64(sourceHeight) * target)
		plan.CropOffsetX = floorToEven(float64(sourceWidth-plan.CropWidth) / 2)
	case current < target:
		// Source proportionally taller than target: trim height.
		plan.CropWidth = sourceWidth
		plan.CropHeight = floorToEven(float64(sourceWidth) / target)
		plan.CropOffsetY = floorToEven(float64(sourceHeight-plan.CropHeight) / 2)
	}

	plan.ScaledBy = selectAxis(mode, orientation, plan.CropWidth, plan.CropHeight)
	switch plan.ScaledBy {
	case AxisWidth:
		plan.OutputWidth = scaleValue
		plan.OutputHeight = floorToEven(float64(plan.CropHeight) * float64(scaleValue) / float64(plan.CropWidth))
	case AxisHeight:
		plan.OutputHeight = scaleValue
		plan.OutputWidth = floorToEven(float64(plan.CropWidth) * float64(scaleValue) / float64(plan.CropHeight))
	}
	return plan
}

func selectAxis(mode ScaleMode, orientation Orientation, cropWidth, cropHeight int) Axis {
	switch mode {
	case ScaleModeWidth:
		return AxisWidth
	case ScaleModeHeight:
		return AxisHeight
	case ScaleModeLong:
		if cropWidth >= cropHeight {
			return AxisWidth
		}
		return AxisHeight
	case ScaleModeShort:
		if cropWidth <= cropHeight {
			return AxisWidth
		}
		return AxisHeight
	default: // auto
		if orientation == OrientationVertical {
			return AxisHeight
		}
		return AxisWidth
	}
}

// floorToEven returns the largest even integer not exceeding x.
// Encoder chroma subsampling forbids odd frame dimensions.
func floorToEven(x float64) int {
	return 2 * int(x/2)
}

// CropNeeded reports whether the plan trims any part of the source
// frame for the given source dimensions.
func (p Plan) CropNeeded(sourceWidth, sourceHeight int) bool {
	return p.CropWidth != sourceWidth || p.CropHeight != sourceHeight
}

// Filter renders the ffmpeg video filter chain for the plan. The crop
// stage is omitted when the full frame is retained.
func (p Plan) Filter(sourceWidth, sourceHeight int) string {
	stages := make([]string, 0, 2)
	if p.CropNeeded(sourceWidth, sourceHeight) {
		stages = append(stages, fmt.Sprintf("crop=%d:%d:%d:%d", p.CropWidth, p.CropHeight, p.CropOffsetX, p.CropOffsetY))
	}
	stages = append(stages, fmt.Sprintf("scale=%d:%d", p.OutputWidth, p.OutputHeight))
	return strings.Join(stages, ",")
}

// Summary renders the plan for logs and dry-run output.
func (p Plan) Summary() string {
	return fmt.Sprintf("crop %dx%d+%d+%d -> %dx%d (scaled by %s)",
		p.CropWidth, p.CropHeight, p.CropOffsetX, p.CropOffsetY, p.OutputWidth, p.OutputHeight, p.ScaledBy)
}
