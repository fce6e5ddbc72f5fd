package mapdoc

import (
	"encoding/json"
	"fmt"

	"vault-atlas/pkg/geometry"
)

// RegionKind discriminates the region shape variants.
type RegionKind string

const (
	RegionPolygon RegionKind = "polygon"
	RegionCircle  RegionKind = "circle"
)

// MapRegion is a spatial annotation covering an area of the map: either a
// polygon or a circle, selected by Kind. Geometry and rendering switch
// exhaustively on Kind so a new shape variant fails loudly rather than
// silently rendering nothing.
type MapRegion struct {
	ID   string
	Kind RegionKind

	// Polygon fields
	Points []geometry.Point2D

	// Circle fields
	X      float64
	Y      float64
	Radius float64

	LayerID    string
	TargetPage string
	TargetMap  string
	Label      string
	Color      string
}

// regionJSON is the wire form of MapRegion. Shape fields are pointers so
// each variant only serializes its own geometry.
type regionJSON struct {
	ID         string              `json:"id"`
	Kind       RegionKind          `json:"type"`
	Points     []geometry.Point2D  `json:"points,omitempty"`
	X          *float64            `json:"x,omitempty"`
	Y          *float64            `json:"y,omitempty"`
	Radius     *float64            `json:"radius,omitempty"`
	LayerID    string              `json:"layerId,omitempty"`
	TargetPage string              `json:"targetPage,omitempty"`
	TargetMap  string              `json:"targetMap,omitempty"`
	Label      string              `json:"label,omitempty"`
	Color      string              `json:"color,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (r MapRegion) MarshalJSON() ([]byte, error) {
	out := regionJSON{
		ID:         r.ID,
		Kind:       r.Kind,
		LayerID:    r.LayerID,
		TargetPage: r.TargetPage,
		TargetMap:  r.TargetMap,
		Label:      r.Label,
		Color:      r.Color,
	}
	switch r.Kind {
	case RegionPolygon:
		out.Points = r.Points
	case RegionCircle:
		x, y, radius := r.X, r.Y, r.Radius
		out.X, out.Y, out.Radius = &x, &y, &radius
	default:
		return nil, fmt.Errorf("unknown region kind %q", r.Kind)
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *MapRegion) UnmarshalJSON(data []byte) error {
	var in regionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*r = MapRegion{
		ID:         in.ID,
		Kind:       in.Kind,
		LayerID:    in.LayerID,
		TargetPage: in.TargetPage,
		TargetMap:  in.TargetMap,
		Label:      in.Label,
		Color:      in.Color,
	}
	switch in.Kind {
	case RegionPolygon:
		r.Points = in.Points
	case RegionCircle:
		if in.X != nil {
			r.X = *in.X
		}
		if in.Y != nil {
			r.Y = *in.Y
		}
		if in.Radius != nil {
			r.Radius = *in.Radius
		}
	default:
		return fmt.Errorf("unknown region kind %q", in.Kind)
	}
	return nil
}

// Contains reports whether the pixel-space point lies within the region.
// Total: never fails, unknown kinds simply miss.
func (r *MapRegion) Contains(p geometry.Point2D) bool {
	switch r.Kind {
	case RegionPolygon:
		return geometry.PointInPolygon(p, r.Points)
	case RegionCircle:
		return geometry.PointInCircle(p, geometry.Circle{X: r.X, Y: r.Y, Radius: r.Radius})
	default:
		return false
	}
}

// HasTarget reports whether the region carries any navigation target.
func (r *MapRegion) HasTarget() bool {
	return r.TargetPage != "" || r.TargetMap != ""
}

// Bounds returns the axis-aligned bounding box of the region, used for
// anchoring previews and tooltips.
func (r *MapRegion) Bounds() geometry.Rect {
	switch r.Kind {
	case RegionPolygon:
		return geometry.BoundingBox(r.Points)
	case RegionCircle:
		return geometry.NewRect(r.X-r.Radius, r.Y-r.Radius, 2*r.Radius, 2*r.Radius)
	default:
		return geometry.Rect{}
	}
}

func (r MapRegion) clone() MapRegion {
	out := r
	out.Points = append([]geometry.Point2D(nil), r.Points...)
	return out
}
