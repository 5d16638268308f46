package geom

// Plane is the oriented plane {x : Normal.Dot(x) == D}, with Normal a
// unit vector. Distance(p) is positive on the side Normal points to.
type Plane struct {
	Normal Vector3
	D      float64
}

// PlaneThrough builds the plane through p with the given unit normal.
func PlaneThrough(p Vector3, normal Vector3) Plane {
	return Plane{Normal: normal, D: normal.Dot(p)}
}

// PlaneFromPoints builds the oriented plane through three points, with
// the normal given by the right-hand rule over (b-a)x(c-a). Returns
// false if the points are collinear (normal too small to normalize).
func PlaneFromPoints(a, b, c Vector3) (Plane, bool) {
	n := b.Sub(a).Cross(c.Sub(a))
	if n.Length() < Epsilon {
		return Plane{}, false
	}
	n = n.Normalize()
	return Plane{Normal: n, D: n.Dot(a)}, true
}

// Distance returns the signed distance from p to the plane.
func (pl Plane) Distance(p Vector3) float64 {
	return pl.Normal.Dot(p) - pl.D
}

// Side classifies p against the plane using a tolerance scaled by |D|,
// matching the shaft builder's duplicate-plane tolerance (epsilon*|d|).
func (pl Plane) Side(p Vector3, eps float64) int {
	d := pl.Distance(p)
	tol := eps * (1 + absF(pl.D))
	switch {
	case d > tol:
		return 1
	case d < -tol:
		return -1
	default:
		return 0
	}
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// NearestCorner returns the AABB corner index closest to the plane along
// -Normal (the "nearest" corner in the shaft classification sense: the
// corner with the smallest signed distance).
func (pl Plane) NearestCorner() int {
	return pl.extremeCorner(false)
}

// FarthestCorner returns the AABB corner index farthest along +Normal.
func (pl Plane) FarthestCorner() int {
	return pl.extremeCorner(true)
}

// extremeCorner precomputes, from the sign of each normal component,
// which of the 8 AABB corner indices is nearest/farthest along the
// plane's normal. This is the "precomputed sign triple" the box-to-box
// shaft planes carry for constant-time AABB classification: the corner
// selection depends only on the signs of Normal.X/Y/Z, not on the box
// itself, so it is computed once per plane and reused for every
// candidate AABB tested against it.
func (pl Plane) extremeCorner(farthest bool) int {
	bit := func(comp float64) int {
		positive := comp >= 0
		if positive == farthest {
			return 1
		}
		return 0
	}
	idx := 0
	if bit(pl.Normal.X) == 1 {
		idx |= 1
	}
	if bit(pl.Normal.Y) == 1 {
		idx |= 2
	}
	if bit(pl.Normal.Z) == 1 {
		idx |= 4
	}
	return idx
}

// ClassifyAABB reports how an AABB relates to the plane's positive side,
// using the precomputed nearest/farthest corner indices for O(1)
// classification: Inside (all of box on positive side), Outside (all on
// negative side), or Straddling.
type BoxClass int

const (
	BoxInside BoxClass = iota
	BoxOutside
	BoxStraddling
)

func (pl Plane) ClassifyAABB(box AABB) BoxClass {
	near := pl.Distance(box.Corner(pl.NearestCorner()))
	far := pl.Distance(box.Corner(pl.FarthestCorner()))
	switch {
	case near >= 0:
		return BoxInside
	case far < 0:
		return BoxOutside
	default:
		return BoxStraddling
	}
}
