package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// Aspect describes the target aspect ratio for a run. The zero value
// is not valid; construct via SourceAspect or ParseAspect.
type Aspect struct {
	// Inherit keeps the source ratio, turning the crop into a no-op.
	Inherit bool
	W       int
	H       int
}

// SourceAspect returns an aspect that inherits the source ratio.
func SourceAspect() Aspect {
	return Aspect{Inherit: true}
}

// ParseAspect parses "source" or a "W:H" pair with positive integer
// components.
func ParseAspect(value string) (Aspect, error) {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if trimmed == "" || trimmed == "source" {
		return SourceAspect(), nil
	}
	parts := strings.SplitN(trimmed, ":", 2)
	if len(parts) != 2 {
		return Aspect{}, fmt.Errorf("aspect %q: expected W:H or \"source\"", value)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Aspect{}, fmt.Errorf("aspect %q: width: %w", value, err)
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Aspect{}, fmt.Errorf("aspect %q: height: %w", value, err)
	}
	if w <= 0 || h <= 0 {
		return Aspect{}, fmt.Errorf("aspect %q: components must be positive", value)
	}
	return Aspect{W: w, H: h}, nil
}

// Ratio resolves the target ratio against the given source dimensions.
func (a Aspect) Ratio(sourceWidth, sourceHeight int) float64 {
	if a.Inherit {
		return float64(sourceWidth) / float64(sourceHeight)
	}
	return float64(a.W) / float64(a.H)
}

// String renders the aspect for logs and summaries.
func (a Aspect) String() string {
	if a.Inherit {
		return "source"
	}
	return fmt.Sprintf("%d:%d", a.W, a.H)
}
