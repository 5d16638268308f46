// Package element implements the surface/cluster element hierarchy: a
// forest of surface quadtrees hanging off an octree-shaped cluster
// hierarchy whose root represents the whole scene, plus the push-pull
// pass that keeps radiance consistent across levels.
package element

import (
	"github.com/rpkgo/galerkin/internal/arena"
	"github.com/rpkgo/galerkin/internal/basis"
	"github.com/rpkgo/galerkin/internal/color"
	"github.com/rpkgo/galerkin/internal/geom"
)

// Kind distinguishes the two element variants that share one record.
type Kind uint8

const (
	KindSurface Kind = iota
	KindCluster
)

// Element is one node of the hierarchy. Surface elements carry UpTrans
// and up to 4 regular Children; cluster elements carry Irregular
// instead and always use a constant (size-1) basis.
type Element struct {
	ID     arena.Index
	Kind   Kind
	Parent arena.Index

	IsLightSource       bool
	InteractionsCreated bool

	// Surface-only.
	PatchID   uint32
	Shape     basis.Shape
	UpTrans   geom.Matrix2x2
	ChildSeq  int // this element's 0..3 index among its parent's regular children
	Children  [4]arena.Index

	// Cluster-only.
	GeometryID uint32
	Irregular  []arena.Index

	Area        float64
	MinimumArea float64
	BlockerSize float64

	BasisSize int
	BasisUsed int

	Radiance         []color.Color
	ReceivedRadiance []color.Color
	UnShotRadiance   []color.Color

	Potential         float64
	ReceivedPotential float64
	UnShotPotential   float64
	DirectPotential   float64

	// Links holds the interaction-arena indices this element currently
	// owns. Ownership moves between receiver and source lists depending
	// on the iteration method (gathering vs. shooting), and the list is
	// wholesale replaced — never appended past a stale entry — whenever
	// refinement subdivides this element, per the no-double-ownership
	// invariant.
	Links []arena.Index
}

// IsLeaf reports whether e has no regular or irregular children.
func (e *Element) IsLeaf() bool {
	if e.Kind == KindCluster {
		return len(e.Irregular) == 0
	}
	for _, c := range e.Children {
		if c != arena.Nil {
			return false
		}
	}
	return true
}

// NumRegularChildren counts non-nil regular children (0 or 4: regular
// subdivision is all-or-nothing).
func (e *Element) NumRegularChildren() int {
	n := 0
	for _, c := range e.Children {
		if c != arena.Nil {
			n++
		}
	}
	return n
}

// allocCoefficients lazily sizes the three coefficient arrays to
// BasisSize, per the resource policy: arrays are allocated on first use
// and only reallocated when the basis grows.
func (e *Element) allocCoefficients() {
	if len(e.Radiance) < e.BasisSize {
		grow := func(s []color.Color) []color.Color {
			out := make([]color.Color, e.BasisSize)
			copy(out, s)
			return out
		}
		e.Radiance = grow(e.Radiance)
		e.ReceivedRadiance = grow(e.ReceivedRadiance)
		e.UnShotRadiance = grow(e.UnShotRadiance)
	}
}

// Hierarchy owns the element arena and the basis/filter tables every
// element references. It is the "Context threaded explicitly" value for
// this package: no package-level state.
type Hierarchy struct {
	arena *arena.Arena[*Element]
}

func NewHierarchy() *Hierarchy {
	return &Hierarchy{arena: arena.New[*Element]()}
}

func (h *Hierarchy) Get(id arena.Index) *Element { return h.arena.Get(id) }

func (h *Hierarchy) Set(id arena.Index, e *Element) { h.arena.Set(id, e) }

// NewSurfaceRoot allocates a top-level surface element for one patch,
// with no parent and the identity upTrans.
func (h *Hierarchy) NewSurfaceRoot(patchID uint32, shape basis.Shape, basisSize int, area float64) arena.Index {
	e := &Element{
		Kind:        KindSurface,
		PatchID:     patchID,
		Shape:       shape,
		UpTrans:     geom.Identity2x2,
		Area:        area,
		MinimumArea: area,
		BlockerSize: area,
		BasisSize:   basisSize,
		BasisUsed:   basisSize,
	}
	id := h.arena.Alloc(e)
	e.ID = id
	e.allocCoefficients()
	return id
}

// NewClusterRoot allocates the root cluster element representing the
// whole scene.
func (h *Hierarchy) NewClusterRoot(geometryID uint32, area, minimumArea, blockerSize float64) arena.Index {
	e := &Element{
		Kind:        KindCluster,
		GeometryID:  geometryID,
		Area:        area,
		MinimumArea: minimumArea,
		BlockerSize: blockerSize,
		BasisSize:   1,
		BasisUsed:   1,
	}
	id := h.arena.Alloc(e)
	e.ID = id
	e.allocCoefficients()
	return id
}
