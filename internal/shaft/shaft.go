// Package shaft builds and queries the convex envelope between two
// bounding regions used to cull occluder candidates for a link.
package shaft

import (
	"sort"

	"github.com/rpkgo/galerkin/internal/geom"
)

const maxPlanes = 16

// Shaft is the ephemeral convex envelope between a source and a
// receiver region. It owns no heap-scale state beyond its plane slice
// and two small omit lists, so callers are expected to build one per
// link and let it go out of scope once culling for that link is done.
type Shaft struct {
	Source, Receiver geom.AABB
	Extent           geom.AABB
	Planes           []geom.Plane

	OmitPatches        []uint32
	DontOpenGeometries []uint32

	// TieBreak is a segment guaranteed to lie inside the shaft,
	// center-to-center by construction, used both for tie-breaking and
	// as the single-occluder cut test's probe ray.
	TieBreak [2]geom.Vector3

	Cut bool
}

// NewBoxToBox builds the shaft between two AABBs: for each of the 3
// axes, the plane through a src edge parallel to that axis and the
// matching (same-corner) rcv edge is kept when both boxes lie on its
// non-negative side, i.e. it is tangent to both; duplicate planes are
// dropped, up to 8 total.
func NewBoxToBox(src, rcv geom.AABB) *Shaft {
	s := &Shaft{
		Source:   src,
		Receiver: rcv,
		Extent:   src.Union(rcv),
		TieBreak: [2]geom.Vector3{src.Center(), rcv.Center()},
	}

	for axis := 0; axis < 3; axis++ {
		u, v := otherAxes(axis)
		for _, su := range []int{-1, 1} {
			for _, sv := range []int{-1, 1} {
				cornerSrc := cornerIndex(u, v, su, sv)
				cornerRcv := cornerIndex(u, v, su, sv)
				a := src.Corner(cornerSrc)
				b := rcv.Corner(cornerRcv)

				edgeDir := axisVector(axis)
				n := edgeDir.Cross(b.Sub(a))
				if n.Length() < geom.Epsilon {
					continue
				}
				n = n.Normalize()
				pl := geom.PlaneThrough(a, n)
				if !separates(pl, src, rcv) {
					pl = geom.PlaneThrough(a, n.Scale(-1))
					if !separates(pl, src, rcv) {
						continue
					}
				}
				s.addPlaneDedup(pl, geom.Epsilon)
			}
		}
	}
	sortPlanes(s.Planes)
	return s
}

// NewPolygonToPolygon builds the shaft between two convex polygons
// (each a closed loop of vertices, coplanar per face): one plane per
// (edge of p1, vertex of p2) pair that has every vertex of both
// polygons on the same side, with duplicates (by normal and offset,
// tolerance eps*|d|) dropped. At most 16 planes are kept.
func NewPolygonToPolygon(p1, p2 []geom.Vector3, eps float64) *Shaft {
	box1, box2 := boundsOf(p1), boundsOf(p2)
	s := &Shaft{
		Source:   box1,
		Receiver: box2,
		Extent:   box1.Union(box2),
		TieBreak: [2]geom.Vector3{box1.Center(), box2.Center()},
	}

	tryAdd := func(a, b, c geom.Vector3) {
		pl, ok := geom.PlaneFromPoints(a, b, c)
		if !ok {
			return
		}
		if !allSameSide(pl, p1, eps) || !allSameSide(pl, p2, eps) {
			pl = geom.Plane{Normal: pl.Normal.Scale(-1), D: -pl.D}
			if !allSameSide(pl, p1, eps) || !allSameSide(pl, p2, eps) {
				return
			}
		}
		s.addPlaneDedup(pl, eps)
	}

	for i := range p1 {
		e0, e1 := p1[i], p1[(i+1)%len(p1)]
		for _, v := range p2 {
			if len(s.Planes) >= maxPlanes {
				return s
			}
			tryAdd(e0, e1, v)
		}
	}
	sortPlanes(s.Planes)
	return s
}

func (s *Shaft) addPlane(pl geom.Plane) {
	if len(s.Planes) >= maxPlanes {
		return
	}
	s.Planes = append(s.Planes, pl)
}

func (s *Shaft) addPlaneDedup(pl geom.Plane, eps float64) {
	tol := eps * (1 + absF(pl.D))
	for _, existing := range s.Planes {
		if existing.Normal.Sub(pl.Normal).Length() < tol && absF(existing.D-pl.D) < tol {
			return
		}
	}
	s.addPlane(pl)
}

// ClassifyAABB reports how box relates to the shaft: Inside when every
// plane keeps it fully on the interior side, Outside as soon as one
// plane rejects it entirely, Overlap otherwise.
func (s *Shaft) ClassifyAABB(box geom.AABB) geom.BoxClass {
	if !s.Extent.Overlaps(box) {
		return geom.BoxOutside
	}
	straddling := false
	for _, pl := range s.Planes {
		switch pl.ClassifyAABB(box) {
		case geom.BoxOutside:
			return geom.BoxOutside
		case geom.BoxStraddling:
			straddling = true
		}
	}
	if straddling {
		return geom.BoxStraddling
	}
	return geom.BoxInside
}

// FullyOccludedBy reports whether a single candidate occluder (given as
// a convex polygon) fully blocks the shaft: every vertex of the
// polygon lies outside the shaft along some plane's negative side is
// NOT what we want here (that would mean the occluder misses the
// shaft); instead a full block means the tie-break segment passes
// through the polygon's plane between the two endpoints. Setting Cut
// records that this shaft is now known fully blocked.
func (s *Shaft) FullyOccludedBy(polygon []geom.Vector3) bool {
	pl, ok := geom.PlaneFromPoints(polygon[0], polygon[1], polygon[2])
	if !ok {
		return false
	}
	d0 := pl.Distance(s.TieBreak[0])
	d1 := pl.Distance(s.TieBreak[1])
	if d0*d1 >= 0 {
		return false
	}
	t := d0 / (d0 - d1)
	hit := s.TieBreak[0].Add(s.TieBreak[1].Sub(s.TieBreak[0]).Scale(t))
	if !pointInConvexPolygon(hit, polygon, pl.Normal) {
		return false
	}
	s.Cut = true
	return true
}

func separates(pl geom.Plane, src, rcv geom.AABB) bool {
	return allCornersNonNegative(pl, src) && allCornersNonNegative(pl, rcv)
}

func allCornersNonNegative(pl geom.Plane, box geom.AABB) bool {
	for i := 0; i < 8; i++ {
		if pl.Distance(box.Corner(i)) < -geom.Epsilon {
			return false
		}
	}
	return true
}

func allSameSide(pl geom.Plane, pts []geom.Vector3, eps float64) bool {
	for _, p := range pts {
		if pl.Side(p, eps) < 0 {
			return false
		}
	}
	return true
}

func pointInConvexPolygon(p geom.Vector3, poly []geom.Vector3, normal geom.Vector3) bool {
	for i := range poly {
		e0, e1 := poly[i], poly[(i+1)%len(poly)]
		edge := e1.Sub(e0)
		toP := p.Sub(e0)
		if edge.Cross(toP).Dot(normal) < -geom.Epsilon {
			return false
		}
	}
	return true
}

func boundsOf(pts []geom.Vector3) geom.AABB {
	box := geom.EmptyAABB()
	for _, p := range pts {
		box = box.Extend(p)
	}
	return box
}

func otherAxes(axis int) (int, int) {
	switch axis {
	case 0:
		return 1, 2
	case 1:
		return 0, 2
	default:
		return 0, 1
	}
}

func axisVector(axis int) geom.Vector3 {
	switch axis {
	case 0:
		return geom.Vector3{X: 1}
	case 1:
		return geom.Vector3{Y: 1}
	default:
		return geom.Vector3{Z: 1}
	}
}

// cornerIndex maps a sign along axes u,v (+1 => Max, -1 => Min) to the
// AABB corner bit index, leaving the third axis's bit at 0 (Min); the
// edge-sweep construction never needs to distinguish that axis since
// the plane's normal is perpendicular to it.
func cornerIndex(u, v, su, sv int) int {
	idx := 0
	if su > 0 {
		idx |= 1 << uint(u)
	}
	if sv > 0 {
		idx |= 1 << uint(v)
	}
	return idx
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// sortPlanes orders the plane set by normal then offset, giving
// deterministic shaft construction for two fixed input boxes.
func sortPlanes(planes []geom.Plane) {
	sort.Slice(planes, func(i, j int) bool {
		a, b := planes[i], planes[j]
		switch {
		case a.Normal.X != b.Normal.X:
			return a.Normal.X < b.Normal.X
		case a.Normal.Y != b.Normal.Y:
			return a.Normal.Y < b.Normal.Y
		case a.Normal.Z != b.Normal.Z:
			return a.Normal.Z < b.Normal.Z
		default:
			return a.D < b.D
		}
	})
}
