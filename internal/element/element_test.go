package element

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpkgo/galerkin/internal/basis"
	"github.com/rpkgo/galerkin/internal/color"
)

type constantMaterial struct {
	rho, ed color.Color
}

func (m constantMaterial) Reflectance(uint32) color.Color { return m.rho }
func (m constantMaterial) Emittance(uint32) color.Color   { return m.ed }

func TestRegularSubdivideAreaConservation(t *testing.T) {
	h := NewHierarchy()
	root := h.NewSurfaceRoot(1, basis.Quad, 1, 4.0)
	h.RegularSubdivide(root)

	require.True(t, CheckAreaConservation(h, root, 1e-9))
	for _, c := range h.Get(root).Children {
		require.Equal(t, 1.0, h.Get(c).Area)
	}
}

func TestPushPullZeroesReceivedRadiance(t *testing.T) {
	h := NewHierarchy()
	root := h.NewSurfaceRoot(1, basis.Quad, 1, 4.0)
	h.RegularSubdivide(root)

	for _, c := range h.Get(root).Children {
		h.Get(c).ReceivedRadiance[0] = color.Gray(2)
	}

	mat := constantMaterial{rho: color.Gray(0.5), ed: color.Black}
	PushPull(h, mat, Gathering, root)

	for _, c := range h.Get(root).Children {
		require.True(t, h.Get(c).ReceivedRadiance[0].IsZero())
	}
	require.True(t, h.Get(root).ReceivedRadiance[0].IsZero())
}

func TestPushPullLeafReflectsAndEmits(t *testing.T) {
	h := NewHierarchy()
	leaf := h.NewSurfaceRoot(1, basis.Quad, 1, 1.0)
	h.Get(leaf).ReceivedRadiance[0] = color.Gray(1.0)

	mat := constantMaterial{rho: color.Gray(0.5), ed: color.Gray(0.1)}
	PushPull(h, mat, Gathering, leaf)

	got := h.Get(leaf).Radiance[0]
	require.InDelta(t, 0.6, got.R, 1e-9)
}

func TestPushPullFixedPointOnZeroInput(t *testing.T) {
	h := NewHierarchy()
	root := h.NewSurfaceRoot(1, basis.Quad, 1, 4.0)
	h.RegularSubdivide(root)

	mat := constantMaterial{rho: color.Gray(0.5), ed: color.Black}
	PushPull(h, mat, Gathering, root)

	require.True(t, h.Get(root).Radiance[0].IsZero())
	for _, c := range h.Get(root).Children {
		require.True(t, h.Get(c).Radiance[0].IsZero())
	}
}

func TestPushPullAreaWeightedParentRadiance(t *testing.T) {
	h := NewHierarchy()
	root := h.NewSurfaceRoot(1, basis.Quad, 1, 4.0)
	h.RegularSubdivide(root)

	children := h.Get(root).Children
	h.Get(children[0]).ReceivedRadiance[0] = color.Gray(4.0)

	mat := constantMaterial{rho: color.White, ed: color.Black}
	PushPull(h, mat, Gathering, root)

	// Only one of four equal-area children received anything, so the
	// parent's area-weighted average should be a quarter of that child's.
	require.InDelta(t, 1.0, h.Get(root).Radiance[0].R, 1e-9)
}
