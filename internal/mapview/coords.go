// Package mapview holds the interaction logic of the map viewport: the
// pixel/renderer coordinate model, the polygon drawing state machine, the
// hover/click disambiguation controller, and the synchronizer that keeps
// visual primitives in step with the current configuration. Everything here
// is synchronous and toolkit-agnostic; the ui packages supply the widgets.
package mapview

import (
	"vault-atlas/pkg/geometry"
)

// Frame converts between the two coordinate systems of a map: pixel space
// (the reference image, origin top-left, Y down) and renderer space (the
// viewport, origin bottom-left, Y up). X is shared; Y is flipped about the
// image height.
type Frame struct {
	Width  float64
	Height float64

	toRenderer geometry.Affine
	toPixel    geometry.Affine
}

// NewFrame creates a frame for a map with the given reference dimensions.
func NewFrame(width, height float64) Frame {
	// rendererY = height - pixelY, its own inverse.
	flip := geometry.Translation(0, height).Compose(geometry.ScaleXY(1, -1))
	return Frame{
		Width:      width,
		Height:     height,
		toRenderer: flip,
		toPixel:    flip,
	}
}

// ToRenderer converts a pixel-space point to renderer space.
func (f Frame) ToRenderer(p geometry.Point2D) geometry.Point2D {
	return f.toRenderer.Apply(p)
}

// ToPixel converts a renderer-space point to pixel space.
func (f Frame) ToPixel(p geometry.Point2D) geometry.Point2D {
	return f.toPixel.Apply(p)
}

// Bounds returns the pannable rectangle of the map in renderer space.
func (f Frame) Bounds() geometry.Rect {
	return geometry.Rect{X: 0, Y: 0, Width: f.Width, Height: f.Height}
}

// FitZoom returns the largest zoom level at which the whole map fits inside
// a viewport of the given size. The viewport enforces this as its minimum
// zoom, so users cannot pan past the image edge by zooming out.
func (f Frame) FitZoom(viewWidth, viewHeight float64) float64 {
	if f.Width <= 0 || f.Height <= 0 || viewWidth <= 0 || viewHeight <= 0 {
		return 1
	}
	zx := viewWidth / f.Width
	zy := viewHeight / f.Height
	if zx < zy {
		return zx
	}
	return zy
}

// ClampZoom bounds a requested zoom level to [FitZoom, max].
func (f Frame) ClampZoom(zoom, viewWidth, viewHeight, max float64) float64 {
	min := f.FitZoom(viewWidth, viewHeight)
	if zoom < min {
		return min
	}
	if zoom > max {
		return max
	}
	return zoom
}
