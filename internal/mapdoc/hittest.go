package mapdoc

import (
	"vault-atlas/pkg/geometry"
)

// RegionsAt returns every region containing the pixel-space point, in input
// order. That order is the tie-break order for disambiguation menus, so it
// must be stable.
//
// When layers is non-nil, regions whose layer resolves to hidden are
// excluded. Pass nil to hit-test regardless of visibility (the management
// console's context menu wants all regions under the cursor).
func RegionsAt(x, y float64, shapes []MapRegion, layers []MapLayer) []*MapRegion {
	p := geometry.Point2D{X: x, Y: y}
	var hits []*MapRegion
	for i := range shapes {
		r := &shapes[i]
		if layers != nil && !IsLayerVisible(r.LayerID, layers) {
			continue
		}
		if r.Contains(p) {
			hits = append(hits, r)
		}
	}
	return hits
}
