package main

import (
	"github.com/rpkgo/galerkin/internal/arena"
	"github.com/rpkgo/galerkin/internal/basis"
	"github.com/rpkgo/galerkin/internal/cluster"
	"github.com/rpkgo/galerkin/internal/color"
	"github.com/rpkgo/galerkin/internal/element"
	"github.com/rpkgo/galerkin/internal/formfactor"
	"github.com/rpkgo/galerkin/internal/geom"
)

// demoScene is a two unit-square patches facing each other, one metre
// apart: a light-emitting ceiling over a diffuse floor. It exists only
// to give the CLI something to iterate over; real scenes are supplied
// by an embedding program through galerkin.Scene.
type demoScene struct {
	light, floor arena.Index
}

func newDemoScene(h *element.Hierarchy, basisSize int) *demoScene {
	light := h.NewSurfaceRoot(1, basis.Quad, basisSize, 1.0)
	floor := h.NewSurfaceRoot(2, basis.Quad, basisSize, 1.0)
	le := h.Get(light)
	le.IsLightSource = true
	le.Radiance[0] = color.Gray(1.0)
	return &demoScene{light: light, floor: floor}
}

func (s *demoScene) Reflectance(uint32) color.Color { return color.Gray(0.5) }
func (s *demoScene) Emittance(patchID uint32) color.Color {
	if patchID == 1 {
		return color.Gray(1.0)
	}
	return color.Black
}

func (s *demoScene) WorldPoint(patchID uint32, u, v float64) (geom.Vector3, geom.Vector3) {
	if patchID == 1 {
		return geom.Vec3(u, v, 1), geom.Vec3(0, 0, -1)
	}
	return geom.Vec3(u, v, 0), geom.Vec3(0, 0, 1)
}

func (s *demoScene) Bounds(e *element.Element) geom.AABB {
	if e.PatchID == 1 {
		return geom.AABB{Min: geom.Vec3(0, 0, 1), Max: geom.Vec3(1, 1, 1)}
	}
	return geom.AABB{Min: geom.Vec3(0, 0, 0), Max: geom.Vec3(1, 1, 0)}
}

func (s *demoScene) Occluders(_, _ *element.Element) []formfactor.OccluderNode { return nil }
func (s *demoScene) RepresentativePoint(_ *element.Element) geom.Vector3      { return geom.Vector3{} }
func (s *demoScene) Leaves(_ *element.Element) []cluster.Leaf                 { return nil }
func (s *demoScene) SurfaceRoots() []arena.Index                              { return []arena.Index{s.light, s.floor} }
func (s *demoScene) RootCluster() arena.Index                                 { return arena.Nil }

type alwaysVisibleOracle struct{}

func (alwaysVisibleOracle) SegmentHitsPatch(a, b geom.Vector3, patchID uint32) bool { return false }
