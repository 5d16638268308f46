package geom

// Matrix2x2 is the affine map (u,v) -> (u',v') = M*(u,v) + T used as a
// surface element's upTrans: it maps a child element's local (u,v) to
// its parent's (u,v) on the same patch.
type Matrix2x2 struct {
	M11, M12 float64
	M21, M22 float64
	Tu, Tv   float64
}

// Identity2x2 is the upTrans of a root surface element (no parent).
var Identity2x2 = Matrix2x2{M11: 1, M22: 1}

// Apply maps a local (u,v) through the transform.
func (m Matrix2x2) Apply(u, v float64) (float64, float64) {
	return m.M11*u + m.M12*v + m.Tu, m.M21*u + m.M22*v + m.Tv
}

// Compose returns the transform equivalent to applying m first, then
// outer: outer.Compose(m) maps a grandchild's (u,v) all the way to the
// root patch's (u,v) in one step, by composing upTrans chains.
func (outer Matrix2x2) Compose(inner Matrix2x2) Matrix2x2 {
	tu, tv := outer.Apply(inner.Tu, inner.Tv)
	return Matrix2x2{
		M11: outer.M11*inner.M11 + outer.M12*inner.M21,
		M12: outer.M11*inner.M12 + outer.M12*inner.M22,
		M21: outer.M21*inner.M11 + outer.M22*inner.M21,
		M22: outer.M21*inner.M12 + outer.M22*inner.M22,
		Tu:  tu,
		Tv:  tv,
	}
}

// Determinant returns the Jacobian determinant of the linear part.
func (m Matrix2x2) Determinant() float64 {
	return m.M11*m.M22 - m.M12*m.M21
}

// TriangleSubTransforms returns the 4 fixed affine sub-transforms that
// split the standard triangle ((0,0),(1,0),(0,1)) into 4 equal-area
// sub-triangles: 3 corner triangles plus the central (point-symmetric)
// one, matching regular quadtree subdivision of a triangular element.
func TriangleSubTransforms() [4]Matrix2x2 {
	return [4]Matrix2x2{
		{M11: 0.5, M22: 0.5, Tu: 0, Tv: 0},   // corner at (0,0)
		{M11: 0.5, M22: 0.5, Tu: 0.5, Tv: 0}, // corner at (1,0)
		{M11: 0.5, M22: 0.5, Tu: 0, Tv: 0.5}, // corner at (0,1)
		{M11: -0.5, M22: -0.5, Tu: 0.5, Tv: 0.5}, // central, point-reflected
	}
}

// QuadSubTransforms returns the 4 fixed affine sub-transforms that split
// the unit square [0,1]x[0,1] into 4 equal quadrants.
func QuadSubTransforms() [4]Matrix2x2 {
	return [4]Matrix2x2{
		{M11: 0.5, M22: 0.5, Tu: 0, Tv: 0},
		{M11: 0.5, M22: 0.5, Tu: 0.5, Tv: 0},
		{M11: 0.5, M22: 0.5, Tu: 0, Tv: 0.5},
		{M11: 0.5, M22: 0.5, Tu: 0.5, Tv: 0.5},
	}
}
