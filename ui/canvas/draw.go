package canvas

import (
	"image"
	"image/color"
	"strconv"

	"vault-atlas/internal/mapdoc"
	"vault-atlas/internal/mapview"
	"vault-atlas/pkg/geometry"
)

var defaultRegionColor = color.RGBA{R: 66, G: 133, B: 244, A: 255}

// compositeLayer draws a layer image onto the output, scaled by the current
// zoom and blended with the layer's opacity. Nearest-neighbor sampling; map
// images are large and pre-scaled sampling is not worth the memory.
func (mc *MapCanvas) compositeLayer(output *image.RGBA, prim *layerPrimitive) {
	src := prim.img
	srcBounds := src.Bounds()
	opacity := prim.layer.Opacity
	if opacity <= 0 {
		return
	}
	if opacity > 1 {
		opacity = 1
	}

	outBounds := output.Bounds()
	maxX := int(float64(srcBounds.Dx()) * mc.zoom)
	maxY := int(float64(srcBounds.Dy()) * mc.zoom)
	if maxX > outBounds.Max.X {
		maxX = outBounds.Max.X
	}
	if maxY > outBounds.Max.Y {
		maxY = outBounds.Max.Y
	}

	for y := 0; y < maxY; y++ {
		srcY := srcBounds.Min.Y + int(float64(y)/mc.zoom)
		for x := 0; x < maxX; x++ {
			srcX := srcBounds.Min.X + int(float64(x)/mc.zoom)
			r, g, b, a := src.At(srcX, srcY).RGBA()
			if a == 0 {
				continue
			}
			alpha := opacity * float64(a) / 0xffff
			blendPixel(output, x, y, uint8(r>>8), uint8(g>>8), uint8(b>>8), alpha)
		}
	}
}

// drawRegion renders one region primitive according to its style. Hidden
// regions draw nothing at all; they stay hit-testable through the geometry
// layer, not the raster.
func (mc *MapCanvas) drawRegion(output *image.RGBA, prim *regionPrimitive) {
	var fillAlpha float64
	var thickness int
	switch prim.style {
	case mapview.RegionHidden:
		return
	case mapview.RegionVisible:
		fillAlpha, thickness = 0.15, 1
	case mapview.RegionHighlighted:
		fillAlpha, thickness = 0.55, 3
	}

	col := parseHexColor(prim.region.Color, defaultRegionColor)

	switch prim.region.Kind {
	case mapdoc.RegionPolygon:
		mc.fillPolygon(output, prim.region.Points, col, fillAlpha)
		mc.outlinePolygon(output, prim.region.Points, col, thickness)
	case mapdoc.RegionCircle:
		cx := prim.region.X * mc.zoom
		cy := prim.region.Y * mc.zoom
		r := prim.region.Radius * mc.zoom
		mc.fillCircle(output, cx, cy, r, col, fillAlpha)
		mc.ringCircle(output, cx, cy, r, col, float64(thickness))
	}
}

// drawDraft renders the in-progress polygon as an open polyline with vertex
// dots.
func (mc *MapCanvas) drawDraft(output *image.RGBA) {
	col := color.RGBA{R: 255, G: 193, B: 7, A: 255}
	for i := 0; i+1 < len(mc.draft); i++ {
		p1 := mc.draft[i].Scale(mc.zoom)
		p2 := mc.draft[i+1].Scale(mc.zoom)
		drawLine(output, int(p1.X), int(p1.Y), int(p2.X), int(p2.Y), col, 2)
	}
	for _, p := range mc.draft {
		s := p.Scale(mc.zoom)
		mc.fillCircle(output, s.X, s.Y, 4, col, 1)
	}
}

// drawPin renders a pin marker: its icon when one resolves, otherwise a
// colored dot with a darker rim.
func (mc *MapCanvas) drawPin(output *image.RGBA, prim *pinPrimitive) {
	var opacity, scale float64
	switch prim.style {
	case mapview.PinConcealed:
		opacity, scale = 0.05, 1
	case mapview.PinGhost:
		opacity, scale = 0.45, 1
	case mapview.PinHighlighted:
		opacity, scale = 1, 1.4
	default:
		opacity, scale = 1, 1
	}

	cx := float64(prim.pin.X) * mc.zoom
	cy := float64(prim.pin.Y) * mc.zoom

	if prim.icon != nil {
		mc.blitIcon(output, prim.icon, cx, cy, opacity, scale)
		return
	}

	col := parseHexColor(prim.pin.Color, color.RGBA{R: 217, G: 48, B: 37, A: 255})
	r := float64(markerSize) / 3 * scale
	mc.fillCircle(output, cx, cy, r, col, opacity)
	rim := color.RGBA{R: col.R / 2, G: col.G / 2, B: col.B / 2, A: 255}
	mc.ringCircle(output, cx, cy, r, rim, 2)
}

// blitIcon draws an icon centered at (cx, cy), optionally enlarged.
func (mc *MapCanvas) blitIcon(output *image.RGBA, icon image.Image, cx, cy, opacity, scale float64) {
	b := icon.Bounds()
	w := float64(b.Dx()) * scale
	h := float64(b.Dy()) * scale
	x0 := int(cx - w/2)
	y0 := int(cy - h/2)

	for y := 0; y < int(h); y++ {
		srcY := b.Min.Y + int(float64(y)/scale)
		for x := 0; x < int(w); x++ {
			srcX := b.Min.X + int(float64(x)/scale)
			r, g, bl, a := icon.At(srcX, srcY).RGBA()
			if a == 0 {
				continue
			}
			alpha := opacity * float64(a) / 0xffff
			blendPixel(output, x0+x, y0+y, uint8(r>>8), uint8(g>>8), uint8(bl>>8), alpha)
		}
	}
}

// fillPolygon fills a polygon using the scanline algorithm, blending with
// the given alpha. Points are image coordinates, scaled here.
func (mc *MapCanvas) fillPolygon(output *image.RGBA, points []geometry.Point2D, col color.RGBA, alpha float64) {
	if len(points) < 3 || alpha <= 0 {
		return
	}
	bounds := output.Bounds()

	scaled := make([]geometry.Point2D, len(points))
	minY, maxY := points[0].Y*mc.zoom, points[0].Y*mc.zoom
	for i, p := range points {
		scaled[i] = p.Scale(mc.zoom)
		if scaled[i].Y < minY {
			minY = scaled[i].Y
		}
		if scaled[i].Y > maxY {
			maxY = scaled[i].Y
		}
	}

	n := len(scaled)
	for y := int(minY); y <= int(maxY); y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		var xs []float64
		for i := 0; i < n; i++ {
			p1 := scaled[i]
			p2 := scaled[(i+1)%n]
			if (p1.Y <= float64(y) && p2.Y > float64(y)) ||
				(p2.Y <= float64(y) && p1.Y > float64(y)) {
				t := (float64(y) - p1.Y) / (p2.Y - p1.Y)
				xs = append(xs, p1.X+t*(p2.X-p1.X))
			}
		}
		// Insertion sort; edge counts are tiny.
		for i := 1; i < len(xs); i++ {
			for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
				xs[j], xs[j-1] = xs[j-1], xs[j]
			}
		}
		for i := 0; i+1 < len(xs); i += 2 {
			for x := int(xs[i]); x <= int(xs[i+1]); x++ {
				if x >= bounds.Min.X && x < bounds.Max.X {
					blendPixel(output, x, y, col.R, col.G, col.B, alpha)
				}
			}
		}
	}
}

// outlinePolygon draws the closed polygon outline.
func (mc *MapCanvas) outlinePolygon(output *image.RGBA, points []geometry.Point2D, col color.RGBA, thickness int) {
	n := len(points)
	if n < 2 || thickness <= 0 {
		return
	}
	for i := 0; i < n; i++ {
		p1 := points[i].Scale(mc.zoom)
		p2 := points[(i+1)%n].Scale(mc.zoom)
		drawLine(output, int(p1.X), int(p1.Y), int(p2.X), int(p2.Y), col, thickness)
	}
}

// fillCircle fills a disc, blending with the given alpha.
func (mc *MapCanvas) fillCircle(output *image.RGBA, cx, cy, r float64, col color.RGBA, alpha float64) {
	if alpha <= 0 || r <= 0 {
		return
	}
	bounds := output.Bounds()
	r2 := r * r
	for y := int(cy - r - 1); y <= int(cy+r+1); y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := int(cx - r - 1); x <= int(cx+r+1); x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx := float64(x) - cx
			dy := float64(y) - cy
			if dx*dx+dy*dy <= r2 {
				blendPixel(output, x, y, col.R, col.G, col.B, alpha)
			}
		}
	}
}

// ringCircle draws a circle outline of the given thickness.
func (mc *MapCanvas) ringCircle(output *image.RGBA, cx, cy, r float64, col color.RGBA, thickness float64) {
	if thickness <= 0 || r <= 0 {
		return
	}
	bounds := output.Bounds()
	outer2 := r * r
	inner := r - thickness
	if inner < 0 {
		inner = 0
	}
	inner2 := inner * inner
	for y := int(cy - r - 1); y <= int(cy+r+1); y++ {
		if y < bounds.Min.Y || y >= bounds.Max.Y {
			continue
		}
		for x := int(cx - r - 1); x <= int(cx+r+1); x++ {
			if x < bounds.Min.X || x >= bounds.Max.X {
				continue
			}
			dx := float64(x) - cx
			dy := float64(y) - cy
			d2 := dx*dx + dy*dy
			if d2 <= outer2 && d2 >= inner2 {
				output.SetRGBA(x, y, col)
			}
		}
	}
}

// drawLine draws a line using Bresenham's algorithm.
func drawLine(output *image.RGBA, x1, y1, x2, y2 int, col color.RGBA, thickness int) {
	bounds := output.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	if dx < 0 {
		dx = -dx
	}
	if dy < 0 {
		dy = -dy
	}
	sx := 1
	if x1 > x2 {
		sx = -1
	}
	sy := 1
	if y1 > y2 {
		sy = -1
	}
	err := dx - dy

	for {
		for t := -thickness / 2; t <= thickness/2; t++ {
			for s := -thickness / 2; s <= thickness/2; s++ {
				px, py := x1+s, y1+t
				if px >= bounds.Min.X && px < bounds.Max.X && py >= bounds.Min.Y && py < bounds.Max.Y {
					output.SetRGBA(px, py, col)
				}
			}
		}
		if x1 == x2 && y1 == y2 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

// blendPixel alpha-blends a color over the existing pixel.
func blendPixel(output *image.RGBA, x, y int, r, g, b uint8, alpha float64) {
	if alpha >= 1 {
		output.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		return
	}
	old := output.RGBAAt(x, y)
	blend := func(src, dst uint8) uint8 {
		return uint8(float64(src)*alpha + float64(dst)*(1-alpha))
	}
	output.SetRGBA(x, y, color.RGBA{
		R: blend(r, old.R),
		G: blend(g, old.G),
		B: blend(b, old.B),
		A: 255,
	})
}

// parseHexColor parses "#rrggbb" (and "#rgb"), falling back when the string
// is empty or malformed.
func parseHexColor(s string, fallback color.RGBA) color.RGBA {
	if len(s) == 0 || s[0] != '#' {
		return fallback
	}
	hex := s[1:]
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return fallback
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return fallback
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 255,
	}
}
