package canvas

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHexColor(t *testing.T) {
	fallback := color.RGBA{R: 1, G: 2, B: 3, A: 255}

	assert.Equal(t, color.RGBA{R: 0x42, G: 0x85, B: 0xf4, A: 255}, parseHexColor("#4285f4", fallback))
	assert.Equal(t, color.RGBA{R: 0xff, G: 0x00, B: 0xff, A: 255}, parseHexColor("#f0f", fallback))
	assert.Equal(t, fallback, parseHexColor("", fallback))
	assert.Equal(t, fallback, parseHexColor("red", fallback))
	assert.Equal(t, fallback, parseHexColor("#12345", fallback))
	assert.Equal(t, fallback, parseHexColor("#zzzzzz", fallback))
}

func TestBlendPixel(t *testing.T) {
	out := image.NewRGBA(image.Rect(0, 0, 2, 1))
	out.SetRGBA(0, 0, color.RGBA{A: 255})

	blendPixel(out, 0, 0, 255, 255, 255, 1)
	assert.Equal(t, color.RGBA{R: 255, G: 255, B: 255, A: 255}, out.RGBAAt(0, 0))

	out.SetRGBA(1, 0, color.RGBA{A: 255})
	blendPixel(out, 1, 0, 200, 100, 0, 0.5)
	got := out.RGBAAt(1, 0)
	assert.Equal(t, uint8(100), got.R)
	assert.Equal(t, uint8(50), got.G)
	assert.Equal(t, uint8(0), got.B)
}

func TestDrawLineStaysInBounds(t *testing.T) {
	out := image.NewRGBA(image.Rect(0, 0, 10, 10))
	col := color.RGBA{R: 255, A: 255}

	// Endpoints well outside the image must not panic and must mark the
	// crossing pixels.
	drawLine(out, -5, 5, 15, 5, col, 1)
	assert.Equal(t, col, out.RGBAAt(0, 5))
	assert.Equal(t, col, out.RGBAAt(9, 5))
	assert.Equal(t, color.RGBA{}, out.RGBAAt(5, 0))
}
