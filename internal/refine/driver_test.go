package refine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpkgo/galerkin/envconfig"
	"github.com/rpkgo/galerkin/internal/basis"
	"github.com/rpkgo/galerkin/internal/cluster"
	"github.com/rpkgo/galerkin/internal/color"
	"github.com/rpkgo/galerkin/internal/element"
	"github.com/rpkgo/galerkin/internal/formfactor"
	"github.com/rpkgo/galerkin/internal/geom"
	"github.com/rpkgo/galerkin/internal/interaction"
)

type planeScene struct {
	aabbs map[uint32]geom.AABB
}

func (s planeScene) Bounds(e *element.Element) geom.AABB {
	if e.Kind == element.KindCluster {
		return s.aabbs[e.GeometryID]
	}
	return s.aabbs[e.PatchID]
}
func (s planeScene) Occluders(rcv, src *element.Element) []formfactor.OccluderNode { return nil }
func (s planeScene) RepresentativePoint(e *element.Element) geom.Vector3           { return geom.Vec3(0, 0, 0) }
func (s planeScene) Leaves(e *element.Element) []cluster.Leaf                     { return nil }

type facingSurfaces struct {
	a, b geom.Vector3
}

func (f facingSurfaces) WorldPoint(patchID uint32, u, v float64) (geom.Vector3, geom.Vector3) {
	if patchID == 1 {
		return f.a.Add(geom.Vec3(u, v, 0)), geom.Vec3(0, 0, 1)
	}
	return f.b.Add(geom.Vec3(u, v, 0)), geom.Vec3(0, 0, -1)
}

type noOracle struct{}

func (noOracle) SegmentHitsPatch(a, b geom.Vector3, patchID uint32) bool { return false }

type whiteMaterial struct{}

func (whiteMaterial) Reflectance(uint32) color.Color { return color.White }
func (whiteMaterial) Emittance(uint32) color.Color   { return color.Black }

func TestAccurateEnoughTransportsAndKeepsLink(t *testing.T) {
	cfg := envconfig.Config{
		Hierarchical: true, ErrorNorm: envconfig.RadianceError,
		RelLinkErrorThreshold: 1.0, RelMinElemArea: 0.0,
		ReceiverCubatureDegree: 2, SourceCubatureDegree: 2, ClusterCubatureDegree: 2,
	}
	h := element.NewHierarchy()
	rcv := h.NewSurfaceRoot(1, basis.Quad, 1, 1.0)
	src := h.NewSurfaceRoot(2, basis.Quad, 1, 1.0)
	h.Get(src).Radiance[0] = color.Gray(1.0)

	scene := planeScene{aabbs: map[uint32]geom.AABB{
		1: {Min: geom.Vec3(0, 0, 0), Max: geom.Vec3(1, 1, 0)},
		2: {Min: geom.Vec3(0, 0, 1), Max: geom.Vec3(1, 1, 1)},
	}}
	surf := facingSurfaces{a: geom.Vec3(0, 0, 0), b: geom.Vec3(0, 0, 1)}
	kernel := formfactor.NewKernel(surf, noOracle{})
	graph := interaction.NewGraph()
	strat, _ := cluster.New(envconfig.Isotropic, 0)
	stats := Stats{TotalSceneArea: 2, MaxSelfEmittedRadiance: 1.0}
	d := New(h, graph, kernel, scene, whiteMaterial{}, strat, cfg, stats)

	link := kernel.Evaluate(cfg, formfactor.Request{
		Receiver: h.Get(rcv), Source: h.Get(src),
		ReceiverAABB: scene.aabbs[1], SourceAABB: scene.aabbs[2],
	})
	link.Receiver, link.Source = rcv, src
	linkID := graph.AddLink(h, rcv, link)

	d.Refine(rcv)

	require.Contains(t, h.Get(rcv).Links, linkID)
	require.False(t, h.Get(rcv).ReceivedRadiance[0].IsZero())
}

func TestNonHierarchicalAlwaysAccurate(t *testing.T) {
	cfg := envconfig.Config{Hierarchical: false}
	link := interaction.Link{R: 1, S: 1, K: []float64{1}, DeltaK: []float64{1000}}
	d := &Driver{Cfg: cfg}
	code := d.classify(link, &element.Element{BasisSize: 1}, &element.Element{BasisSize: 1})
	require.Equal(t, AccurateEnough, code)
}
