package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAffineApply(t *testing.T) {
	tr := Translation(10, -5)
	got := tr.Apply(Point2D{1, 2})
	assert.InDelta(t, 11, got.X, 1e-9)
	assert.InDelta(t, -3, got.Y, 1e-9)

	sc := ScaleXY(2, 3)
	got = sc.Apply(Point2D{4, 5})
	assert.InDelta(t, 8, got.X, 1e-9)
	assert.InDelta(t, 15, got.Y, 1e-9)
}

func TestAffineComposeInverse(t *testing.T) {
	// Y-flip within a height-100 space: y' = 100 - y.
	flip := Translation(0, 100).Compose(ScaleXY(1, -1))
	got := flip.Apply(Point2D{30, 25})
	assert.InDelta(t, 30, got.X, 1e-9)
	assert.InDelta(t, 75, got.Y, 1e-9)

	inv, ok := flip.Inverse()
	require.True(t, ok)
	back := inv.Apply(got)
	assert.InDelta(t, 30, back.X, 1e-9)
	assert.InDelta(t, 25, back.Y, 1e-9)
}
