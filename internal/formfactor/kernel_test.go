package formfactor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpkgo/galerkin/envconfig"
	"github.com/rpkgo/galerkin/internal/basis"
	"github.com/rpkgo/galerkin/internal/element"
	"github.com/rpkgo/galerkin/internal/geom"
)

type flatSurface struct {
	origin geom.Vector3
	normal geom.Vector3
}

func (f flatSurface) WorldPoint(patchID uint32, u, v float64) (geom.Vector3, geom.Vector3) {
	return f.origin.Add(geom.Vec3(u, v, 0)), f.normal
}

type dualSurface struct {
	a, b flatSurface
}

func (d dualSurface) WorldPoint(patchID uint32, u, v float64) (geom.Vector3, geom.Vector3) {
	if patchID == 1 {
		return d.a.WorldPoint(patchID, u, v)
	}
	return d.b.WorldPoint(patchID, u, v)
}

type noOracle struct{}

func (noOracle) SegmentHitsPatch(a, b geom.Vector3, patchID uint32) bool { return false }

func baseConfig() envconfig.Config {
	return envconfig.Config{
		ReceiverCubatureDegree: 2,
		SourceCubatureDegree:   2,
		ClusterCubatureDegree:  2,
	}
}

func TestFacingQuadsYieldPositiveFormFactor(t *testing.T) {
	h := element.NewHierarchy()
	rcvID := h.NewSurfaceRoot(1, basis.Quad, 1, 1.0)
	srcID := h.NewSurfaceRoot(2, basis.Quad, 1, 1.0)

	surf := dualSurface{
		a: flatSurface{origin: geom.Vec3(0, 0, 0), normal: geom.Vec3(0, 0, 1)},
		b: flatSurface{origin: geom.Vec3(0, 0, 1), normal: geom.Vec3(0, 0, -1)},
	}
	k := NewKernel(surf, noOracle{})

	link := k.Evaluate(baseConfig(), Request{
		Receiver:     h.Get(rcvID),
		Source:       h.Get(srcID),
		ReceiverAABB: geom.AABB{Min: geom.Vec3(0, 0, 0), Max: geom.Vec3(1, 1, 0)},
		SourceAABB:   geom.AABB{Min: geom.Vec3(0, 0, 1), Max: geom.Vec3(1, 1, 1)},
	})

	require.Greater(t, link.K[0], 0.0)
	require.Equal(t, uint8(255), link.Visibility)
	require.True(t, link.ExactProven)
}

func TestIdenticalElementsAreDegenerate(t *testing.T) {
	h := element.NewHierarchy()
	id := h.NewSurfaceRoot(1, basis.Quad, 1, 1.0)

	k := NewKernel(flatSurface{}, noOracle{})
	link := k.Evaluate(baseConfig(), Request{Receiver: h.Get(id), Source: h.Get(id)})

	require.Equal(t, uint8(0), link.Visibility)
	require.Equal(t, 0.0, link.DeltaK[0])
	require.Equal(t, 0.0, link.K[0])
}

func TestOverlappingClustersAreDegenerate(t *testing.T) {
	h := element.NewHierarchy()
	rcvID := h.NewClusterRoot(1, 8, 1, 2)
	srcID := h.NewClusterRoot(2, 8, 1, 2)

	k := NewKernel(flatSurface{}, noOracle{})
	box := geom.AABB{Min: geom.Vec3(0, 0, 0), Max: geom.Vec3(2, 2, 2)}
	link := k.Evaluate(baseConfig(), Request{
		Receiver: h.Get(rcvID), Source: h.Get(srcID),
		ReceiverAABB: box, SourceAABB: box,
	})

	require.Equal(t, uint8(128), link.Visibility)
	require.Equal(t, 1.0, link.DeltaK[0])
}
