package geometry

import (
	"gonum.org/v1/gonum/mat"
)

// Affine is a 2D affine transform stored as a 3x3 homogeneous matrix.
type Affine struct {
	m *mat.Dense
}

// Identity returns the identity transform.
func Identity() Affine {
	return Affine{m: mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})}
}

// Translation returns a translation transform.
func Translation(tx, ty float64) Affine {
	return Affine{m: mat.NewDense(3, 3, []float64{
		1, 0, tx,
		0, 1, ty,
		0, 0, 1,
	})}
}

// ScaleXY returns a scaling transform with independent axis factors.
func ScaleXY(sx, sy float64) Affine {
	return Affine{m: mat.NewDense(3, 3, []float64{
		sx, 0, 0,
		0, sy, 0,
		0, 0, 1,
	})}
}

// Apply applies the transform to a point.
func (a Affine) Apply(p Point2D) Point2D {
	v := mat.NewVecDense(3, []float64{p.X, p.Y, 1})
	var out mat.VecDense
	out.MulVec(a.m, v)
	return Point2D{X: out.AtVec(0), Y: out.AtVec(1)}
}

// Compose returns this transform composed with another (a then applied after other).
func (a Affine) Compose(other Affine) Affine {
	var out mat.Dense
	out.Mul(a.m, other.m)
	return Affine{m: &out}
}

// Inverse returns the inverse transform, if it exists.
func (a Affine) Inverse() (Affine, bool) {
	var inv mat.Dense
	if err := inv.Inverse(a.m); err != nil {
		return Affine{}, false
	}
	return Affine{m: &inv}, true
}
