package geom

import "math"

// AABB is an axis-aligned bounding box. An empty box has Min > Max on
// every axis so that Union with it behaves as the identity.
type AABB struct {
	Min, Max Vector3
}

// EmptyAABB returns a box that contains no points.
func EmptyAABB() AABB {
	inf := math.Inf(1)
	return AABB{Min: Vector3{inf, inf, inf}, Max: Vector3{-inf, -inf, -inf}}
}

func (b AABB) IsEmpty() bool {
	return b.Min.X > b.Max.X || b.Min.Y > b.Max.Y || b.Min.Z > b.Max.Z
}

// Extend grows b to contain p, returning the result.
func (b AABB) Extend(p Vector3) AABB {
	return AABB{
		Min: Vector3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)},
		Max: Vector3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)},
	}
}

// Union returns the smallest box containing both a and b.
func (a AABB) Union(b AABB) AABB {
	if a.IsEmpty() {
		return b
	}
	if b.IsEmpty() {
		return a
	}
	return AABB{
		Min: Vector3{math.Min(a.Min.X, b.Min.X), math.Min(a.Min.Y, b.Min.Y), math.Min(a.Min.Z, b.Min.Z)},
		Max: Vector3{math.Max(a.Max.X, b.Max.X), math.Max(a.Max.Y, b.Max.Y), math.Max(a.Max.Z, b.Max.Z)},
	}
}

// Overlaps reports whether a and b share any volume.
func (a AABB) Overlaps(b AABB) bool {
	return a.Min.X <= b.Max.X && a.Max.X >= b.Min.X &&
		a.Min.Y <= b.Max.Y && a.Max.Y >= b.Min.Y &&
		a.Min.Z <= b.Max.Z && a.Max.Z >= b.Min.Z
}

// Center returns the box's midpoint.
func (a AABB) Center() Vector3 {
	return a.Min.Midpoint(a.Max)
}

// Corner returns one of the 8 corners of the box, selected by a 3-bit
// index (bit0=X, bit1=Y, bit2=Z; 0 picks Min on that axis, 1 picks Max).
func (a AABB) Corner(i int) Vector3 {
	x := a.Min.X
	if i&1 != 0 {
		x = a.Max.X
	}
	y := a.Min.Y
	if i&2 != 0 {
		y = a.Max.Y
	}
	z := a.Min.Z
	if i&4 != 0 {
		z = a.Max.Z
	}
	return Vector3{x, y, z}
}

// Volume returns the box's volume, or 0 for an empty/degenerate box.
func (a AABB) Volume() float64 {
	if a.IsEmpty() {
		return 0
	}
	d := a.Max.Sub(a.Min)
	return math.Max(d.X, 0) * math.Max(d.Y, 0) * math.Max(d.Z, 0)
}

// EquivalentBlockerSize returns the diameter of a sphere with the same
// volume as the box, used by multi-resolution visibility as a cluster's
// blockerSize.
func (a AABB) EquivalentBlockerSize() float64 {
	v := a.Volume()
	if v <= 0 {
		return 0
	}
	r := math.Cbrt(3 * v / (4 * math.Pi))
	return 2 * r
}
