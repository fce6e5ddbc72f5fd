package mapdoc

import (
	"fmt"
	"math"
)

// RescaleWarnThreshold is the relative scale deviation above which replacing
// the base image warns that coordinates will be rescaled.
const RescaleWarnThreshold = 0.001

// AspectRatioError blocks a base-image replacement whose dimensions are not
// a uniform scaling of the reference dimensions. It reports both dimension
// pairs and both ratios so the message can show exactly what mismatched.
type AspectRatioError struct {
	RefWidth, RefHeight int
	NewWidth, NewHeight int
}

func (e *AspectRatioError) Error() string {
	refRatio := float64(e.RefWidth) / float64(e.RefHeight)
	newRatio := float64(e.NewWidth) / float64(e.NewHeight)
	return fmt.Sprintf(
		"image dimensions %dx%d (ratio %.4f) do not match the map's aspect ratio %dx%d (ratio %.4f); the replacement must be a uniform scaling",
		e.NewWidth, e.NewHeight, newRatio, e.RefWidth, e.RefHeight, refRatio)
}

// ValidateReplacement checks a candidate base image of newWidth x newHeight
// against the reference dimensions. On success it returns the uniform scale
// factor and, when the scale deviates from 1 by more than
// RescaleWarnThreshold, a non-blocking warning describing the coordinate
// rescale about to happen.
func ValidateReplacement(refWidth, refHeight, newWidth, newHeight int) (scale float64, warning string, err error) {
	if refWidth <= 0 || refHeight <= 0 {
		return 0, "", fmt.Errorf("map has invalid reference dimensions %dx%d", refWidth, refHeight)
	}
	if newWidth <= 0 || newHeight <= 0 {
		return 0, "", fmt.Errorf("replacement image has invalid dimensions %dx%d", newWidth, newHeight)
	}

	scale = float64(newWidth) / float64(refWidth)
	if newHeight != int(math.Round(float64(refHeight)*scale)) {
		return 0, "", &AspectRatioError{
			RefWidth: refWidth, RefHeight: refHeight,
			NewWidth: newWidth, NewHeight: newHeight,
		}
	}

	if math.Abs(scale-1) > RescaleWarnThreshold {
		warning = fmt.Sprintf(
			"all pins and regions will be rescaled by %.1f%% to fit the new image",
			scale*100)
	}
	return scale, warning, nil
}

// Rescale returns a new configuration with every coordinate scaled
// uniformly and the reference dimensions replaced.
//
// Pin positions, polygon vertices, circle centers and the scale-bar pixel
// reference are rounded to whole pixels after scaling. Circle radii are a
// continuous quantity and scale without rounding. Everything else is
// carried through unchanged.
func Rescale(c *MapConfig, scale float64, newWidth, newHeight int) *MapConfig {
	out := c.Clone()
	out.Width = newWidth
	out.Height = newHeight

	for i := range out.Pins {
		out.Pins[i].X = roundScaled(out.Pins[i].X, scale)
		out.Pins[i].Y = roundScaled(out.Pins[i].Y, scale)
	}

	for i := range out.Shapes {
		s := &out.Shapes[i]
		switch s.Kind {
		case RegionPolygon:
			for j := range s.Points {
				s.Points[j] = s.Points[j].Scale(scale).Round()
			}
		case RegionCircle:
			s.X = math.Round(s.X * scale)
			s.Y = math.Round(s.Y * scale)
			s.Radius = s.Radius * scale
		default:
			// Unknown kinds carry through untouched, matching the miss
			// convention of Contains; the codec rejects them on load.
		}
	}

	if out.Scale != nil {
		out.Scale.Pixels = math.Round(out.Scale.Pixels * scale)
	}
	return out
}

func roundScaled(v int, scale float64) int {
	return int(math.Round(float64(v) * scale))
}
