package element

import (
	"math"

	"github.com/rpkgo/galerkin/internal/arena"
)

// RecomputeArea re-derives e's Area as the sum of its children's Area,
// recursively. Leaves keep their own Area (set at construction from the
// owning patch). This is the bottom-up half of the area-conservation
// invariant; RegularSubdivide/AddIrregularChild already keep areas
// consistent at construction time, so this is mainly a verification and
// cluster-geometry-changed recomputation helper.
func RecomputeArea(h *Hierarchy, id arena.Index) float64 {
	e := h.Get(id)
	if e.IsLeaf() {
		return e.Area
	}

	total := 0.0
	if e.Kind == KindSurface {
		for _, c := range e.Children {
			if c != arena.Nil {
				total += RecomputeArea(h, c)
			}
		}
	} else {
		for _, c := range e.Irregular {
			total += RecomputeArea(h, c)
		}
	}
	e.Area = total
	return total
}

// CheckAreaConservation reports whether every non-leaf element under id
// satisfies area == sum(children.area) within the given relative
// tolerance.
func CheckAreaConservation(h *Hierarchy, id arena.Index, relTol float64) bool {
	e := h.Get(id)
	if e.IsLeaf() {
		return true
	}

	var children []arena.Index
	if e.Kind == KindSurface {
		children = e.Children[:]
	} else {
		children = e.Irregular
	}

	sum := 0.0
	for _, c := range children {
		if c == arena.Nil {
			continue
		}
		if !CheckAreaConservation(h, c, relTol) {
			return false
		}
		sum += h.Get(c).Area
	}

	if e.Area == 0 {
		return math.Abs(sum) < relTol
	}
	return math.Abs(sum-e.Area)/e.Area < relTol
}
