package geometry

// PointInPolygon tests if a point is inside a polygon using ray casting.
//
// Points exactly on a polygon edge or vertex are classified by floating-point
// happenstance: depending on rounding they may fall on either side. Callers
// must not rely on any particular boundary behavior.
func PointInPolygon(p Point2D, polygon []Point2D) bool {
	if len(polygon) < 3 {
		return false
	}

	inside := false
	n := len(polygon)

	for i := 0; i < n; i++ {
		j := (i + 1) % n
		pi, pj := polygon[i], polygon[j]

		// Check if ray from p going right intersects edge pi-pj
		if ((pi.Y > p.Y) != (pj.Y > p.Y)) &&
			(p.X < (pj.X-pi.X)*(p.Y-pi.Y)/(pj.Y-pi.Y)+pi.X) {
			inside = !inside
		}
	}

	return inside
}

// PointInCircle tests if a point is inside or on the boundary of a circle.
// The boundary is inclusive: a point at exactly radius distance is inside.
func PointInCircle(p Point2D, c Circle) bool {
	dx := p.X - c.X
	dy := p.Y - c.Y
	return dx*dx+dy*dy <= c.Radius*c.Radius
}
