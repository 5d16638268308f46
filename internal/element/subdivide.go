package element

import (
	"github.com/rpkgo/galerkin/internal/arena"
	"github.com/rpkgo/galerkin/internal/basis"
	"github.com/rpkgo/galerkin/internal/geom"
)

// RegularSubdivide splits a surface element into its 4 fixed regular
// children if it has none yet, and returns their indices. Calling it
// again on an already-subdivided element is a no-op that returns the
// existing children, since refinement only ever moves coarser to finer.
func (h *Hierarchy) RegularSubdivide(parentID arena.Index) [4]arena.Index {
	parent := h.Get(parentID)
	if parent.NumRegularChildren() == 4 {
		return parent.Children
	}

	subTransforms := regularSubTransforms(parent.Shape)
	for sigma := 0; sigma < 4; sigma++ {
		child := &Element{
			Kind:        KindSurface,
			Parent:      parentID,
			PatchID:     parent.PatchID,
			Shape:       parent.Shape,
			ChildSeq:    sigma,
			UpTrans:     parent.UpTrans.Compose(subTransforms[sigma]),
			Area:        parent.Area / 4,
			MinimumArea: parent.MinimumArea,
			BlockerSize: parent.BlockerSize / 2,
			BasisSize:   parent.BasisSize,
			BasisUsed:   parent.BasisUsed,
		}
		id := h.arena.Alloc(child)
		child.ID = id
		child.allocCoefficients()
		parent.Children[sigma] = id
	}
	return parent.Children
}

// AddIrregularChild appends a sub-cluster or surface element to a
// cluster's irregular child list. Clusters take 2-8 sub-elements; the
// caller (clustering construction, out of this package's scope) is
// responsible for respecting that bound.
func (h *Hierarchy) AddIrregularChild(parentID, childID arena.Index) {
	parent := h.Get(parentID)
	child := h.Get(childID)
	child.Parent = parentID
	parent.Irregular = append(parent.Irregular, childID)
}

func regularSubTransforms(shape basis.Shape) [4]geom.Matrix2x2 {
	if shape == basis.Triangle {
		return geom.TriangleSubTransforms()
	}
	return geom.QuadSubTransforms()
}
