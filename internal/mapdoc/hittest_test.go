package mapdoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vault-atlas/pkg/geometry"
)

func overlappingShapes() []MapRegion {
	return []MapRegion{
		{
			ID:   "poly",
			Kind: RegionPolygon,
			Points: []geometry.Point2D{
				{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 100}, {X: 0, Y: 100},
			},
		},
		{ID: "circle", Kind: RegionCircle, X: 50, Y: 50, Radius: 30},
		{ID: "far", Kind: RegionCircle, X: 500, Y: 500, Radius: 10},
	}
}

func TestRegionsAtReturnsAllMatchesInOrder(t *testing.T) {
	shapes := overlappingShapes()

	hits := RegionsAt(50, 50, shapes, nil)
	require.Len(t, hits, 2)
	assert.Equal(t, "poly", hits[0].ID)
	assert.Equal(t, "circle", hits[1].ID)

	hits = RegionsAt(10, 10, shapes, nil)
	require.Len(t, hits, 1)
	assert.Equal(t, "poly", hits[0].ID)

	assert.Empty(t, RegionsAt(300, 300, shapes, nil))
}

func TestRegionsAtLayerFiltering(t *testing.T) {
	shapes := overlappingShapes()
	shapes[0].LayerID = "off"
	shapes[1].LayerID = "on"

	layers := []MapLayer{
		{ID: "on", Visible: true},
		{ID: "off", Visible: false},
	}

	hits := RegionsAt(50, 50, shapes, layers)
	require.Len(t, hits, 1)
	assert.Equal(t, "circle", hits[0].ID)

	// A dangling layer reference hides the region as well.
	shapes[1].LayerID = "gone"
	hits = RegionsAt(50, 50, shapes, layers)
	assert.Empty(t, hits)

	// nil layers means no filtering at all.
	hits = RegionsAt(50, 50, shapes, nil)
	assert.Len(t, hits, 2)
}
