package geometry

// Orientation classifies a frame by the relation of its effective
// width and height.
type Orientation string

const (
	OrientationHorizontal Orientation = "horizontal"
	OrientationVertical   Orientation = "vertical"
	OrientationSquare     Orientation = "square"
)

// Classify returns the orientation of a frame given its effective
// (rotation-corrected) dimensions. Total over positive integers.
func Classify(effectiveWidth, effectiveHeight int) Orientation {
	switch {
	case effectiveWidth < effectiveHeight:
		return OrientationVertical
	case effectiveWidth == effectiveHeight:
		return OrientationSquare
	default:
		return OrientationHorizontal
	}
}

// EffectiveDimensions applies container rotation metadata to the
// stored dimensions. Quarter-turn rotations swap width and height;
// every other value leaves them untouched.
func EffectiveDimensions(width, height, rotationDegrees int) (int, int) {
	rotation := rotationDegrees % 360
	if rotation < 0 {
		rotation += 360
	}
	if rotation == 90 || rotation == 270 {
		return height, width
	}
	return width, height
}
