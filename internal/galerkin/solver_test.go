package galerkin

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpkgo/galerkin/envconfig"
	"github.com/rpkgo/galerkin/internal/arena"
	"github.com/rpkgo/galerkin/internal/basis"
	"github.com/rpkgo/galerkin/internal/cluster"
	"github.com/rpkgo/galerkin/internal/color"
	"github.com/rpkgo/galerkin/internal/element"
	"github.com/rpkgo/galerkin/internal/formfactor"
	"github.com/rpkgo/galerkin/internal/geom"
	"github.com/rpkgo/galerkin/internal/refine"
)

// facingQuads is a two-patch scene: a unit square light at z=1 facing
// down onto a unit square receiver at z=0, one metre apart.
type facingQuads struct {
	top, bottom arena.Index
}

func (f facingQuads) Reflectance(uint32) color.Color { return color.Gray(0.5) }
func (f facingQuads) Emittance(patchID uint32) color.Color {
	if patchID == 1 {
		return color.Gray(1.0)
	}
	return color.Black
}

func (f facingQuads) WorldPoint(patchID uint32, u, v float64) (geom.Vector3, geom.Vector3) {
	if patchID == 1 {
		return geom.Vec3(u, v, 1), geom.Vec3(0, 0, -1)
	}
	return geom.Vec3(u, v, 0), geom.Vec3(0, 0, 1)
}

func (f facingQuads) Bounds(e *element.Element) geom.AABB {
	if e.PatchID == 1 {
		return geom.AABB{Min: geom.Vec3(0, 0, 1), Max: geom.Vec3(1, 1, 1)}
	}
	return geom.AABB{Min: geom.Vec3(0, 0, 0), Max: geom.Vec3(1, 1, 0)}
}
func (f facingQuads) Occluders(_, _ *element.Element) []formfactor.OccluderNode { return nil }
func (f facingQuads) RepresentativePoint(_ *element.Element) geom.Vector3      { return geom.Vector3{} }
func (f facingQuads) Leaves(_ *element.Element) []cluster.Leaf                 { return nil }

func (f facingQuads) SurfaceRoots() []arena.Index { return []arena.Index{f.top, f.bottom} }
func (f facingQuads) RootCluster() arena.Index    { return arena.Nil }

type alwaysVisible struct{}

func (alwaysVisible) SegmentHitsPatch(a, b geom.Vector3, patchID uint32) bool { return false }

func newFacingQuadsSolver(t *testing.T) (*Solver, *facingQuads) {
	t.Helper()
	h := element.NewHierarchy()
	top := h.NewSurfaceRoot(1, basis.Quad, 1, 1.0)
	bottom := h.NewSurfaceRoot(2, basis.Quad, 1, 1.0)
	h.Get(top).IsLightSource = true
	h.Get(top).Radiance[0] = color.Gray(1.0)

	scene := &facingQuads{top: top, bottom: bottom}
	cfg := envconfig.Config{
		IterationMethod:        envconfig.Jacobi,
		ClusteringStrategy:     envconfig.Isotropic,
		BasisType:              envconfig.Constant,
		ErrorNorm:              envconfig.RadianceError,
		ReceiverCubatureDegree: 4,
		SourceCubatureDegree:   4,
		ClusterCubatureDegree:  2,
		RelLinkErrorThreshold:  0.05,
	}
	stats := refine.Stats{TotalSceneArea: 2.0, MaxSelfEmittedRadiance: 1.0}

	s, err := New(cfg, h, scene, alwaysVisible{}, stats)
	require.NoError(t, err)
	return s, scene
}

func TestTwoParallelQuadsJacobiOneIteration(t *testing.T) {
	s, scene := newFacingQuadsSolver(t)

	stats := s.Iterate()
	require.Equal(t, 2, stats.Elements)
	require.Equal(t, 2, stats.Links)

	top := s.H.Get(scene.top)
	bottom := s.H.Get(scene.bottom)

	// The top patch re-derives its own emission every gathering pass:
	// nothing reflects back onto it from a still-dark receiver.
	require.InDelta(t, 1.0, top.Radiance[0].R, 1e-9)

	// Analytical form factor between two coincident-aligned unit
	// squares 1m apart is ~0.1998; reflectance 0.5 halves it.
	require.InDelta(t, 0.0999, bottom.Radiance[0].R, 0.03)
	require.True(t, bottom.Radiance[0].R > 0)
}

func TestClusteredSelfLinkSeedsOnce(t *testing.T) {
	h := element.NewHierarchy()
	root := h.NewClusterRoot(1, 2.0, 0.0, 1.0)
	scene := clusterOnlyScene{root: root}

	cfg := envconfig.Config{
		Clustered: true, ClusteringStrategy: envconfig.Isotropic,
		ReceiverCubatureDegree: 2, SourceCubatureDegree: 2, ClusterCubatureDegree: 2,
		Hierarchical: false,
	}
	s, err := New(cfg, h, scene, alwaysVisible{}, refine.Stats{TotalSceneArea: 2.0, MaxSelfEmittedRadiance: 1.0})
	require.NoError(t, err)

	s.seedLinks()
	require.Len(t, h.Get(root).Links, 1)

	s.seedLinks()
	require.Len(t, h.Get(root).Links, 1)
}

type clusterOnlyScene struct{ root arena.Index }

func (clusterOnlyScene) Reflectance(uint32) color.Color { return color.White }
func (clusterOnlyScene) Emittance(uint32) color.Color   { return color.Black }
func (clusterOnlyScene) WorldPoint(uint32, float64, float64) (geom.Vector3, geom.Vector3) {
	return geom.Vector3{}, geom.Vector3{}
}
func (s clusterOnlyScene) Bounds(e *element.Element) geom.AABB {
	return geom.AABB{Min: geom.Vec3(0, 0, 0), Max: geom.Vec3(1, 1, 1)}
}
func (clusterOnlyScene) Occluders(_, _ *element.Element) []formfactor.OccluderNode { return nil }
func (clusterOnlyScene) RepresentativePoint(_ *element.Element) geom.Vector3       { return geom.Vector3{} }
func (clusterOnlyScene) Leaves(_ *element.Element) []cluster.Leaf                  { return nil }
func (s clusterOnlyScene) SurfaceRoots() []arena.Index                             { return nil }
func (s clusterOnlyScene) RootCluster() arena.Index                                { return s.root }
