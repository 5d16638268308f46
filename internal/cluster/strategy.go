// Package cluster resolves intra-cluster directionality: given a
// sample point looking into (or out of) a cluster, what radiance
// should the cluster endpoint of a link contribute.
package cluster

import (
	"fmt"

	"github.com/rpkgo/galerkin/envconfig"
	"github.com/rpkgo/galerkin/internal/color"
	"github.com/rpkgo/galerkin/internal/geom"
	"github.com/rpkgo/galerkin/internal/render"
)

// Leaf is one surface leaf of a cluster, as seen by a strategy: its
// world position/normal, its contribution area, and its current
// radiance (gathering) or un-shot radiance (shooting) coefficient.
type Leaf struct {
	PatchID  uint32
	Position geom.Vector3
	Normal   geom.Vector3
	Area     float64
	Radiance color.Color
}

// Strategy resolves a cluster's directionally-varying radiance as seen
// from eye, given its leaves and its constant (isotropic) coefficient.
type Strategy interface {
	Resolve(eye geom.Vector3, constant color.Color, leaves []Leaf) color.Color
}

// New builds the configured strategy. clusterID identifies the cluster
// for the z-visibility strategy's render cache; it is unused by the
// other two.
func New(strategy envconfig.ClusteringStrategy, clusterID uint32) (Strategy, error) {
	switch strategy {
	case envconfig.Isotropic:
		return isotropic{}, nil
	case envconfig.Oriented:
		return oriented{}, nil
	case envconfig.ZVisibility:
		return newZVisibility(clusterID), nil
	default:
		return nil, fmt.Errorf("cluster: unknown strategy %v", strategy)
	}
}

// isotropic ignores direction entirely: the cluster behaves as a
// single constant-radiance patch.
type isotropic struct{}

func (isotropic) Resolve(_ geom.Vector3, constant color.Color, _ []Leaf) color.Color {
	return constant
}

// oriented implements the projected-area-weighted cosine formula:
// radiance = (4/A) * sum(max(0,cos) * leafArea * leafRadiance), where
// A/4 is the mean projected area over a hemisphere.
type oriented struct{}

func (oriented) Resolve(eye geom.Vector3, constant color.Color, leaves []Leaf) color.Color {
	total := 0.0
	for _, l := range leaves {
		total += l.Area
	}
	if total <= 0 {
		return constant
	}

	var sum color.Color
	for _, l := range leaves {
		dir := eye.Sub(l.Position)
		d := dir.Length()
		if d < geom.Epsilon {
			continue
		}
		dir = dir.Scale(1 / d)
		cos := dir.Dot(l.Normal)
		if cos <= 0 {
			continue
		}
		sum = sum.AddScaled(l.Radiance, cos*l.Area)
	}
	return sum.Scale(4 / total)
}

// zVisibility renders the cluster's leaves into the shared software
// z-buffer and averages visible leaves weighted by covered pixel
// count; a cache keyed on (clusterID, eye) skips re-rendering
// identical views.
type zVisibility struct {
	clusterID uint32
	renderer  *render.Renderer
	cache     map[cacheKey]color.Color
}

type cacheKey struct {
	clusterID  uint32
	ex, ey, ez int64 // eye position, quantized to a fixed grid for cache hits
}

const zVisibilityGridScale = 1e4

func newZVisibility(clusterID uint32) *zVisibility {
	return &zVisibility{
		clusterID: clusterID,
		renderer:  render.Shared(32, 32),
		cache:     make(map[cacheKey]color.Color),
	}
}

func (z *zVisibility) Resolve(eye geom.Vector3, constant color.Color, leaves []Leaf) color.Color {
	key := z.key(eye)
	if c, ok := z.cache[key]; ok {
		return c
	}

	samples := make([]render.Sample, len(leaves))
	for i, l := range leaves {
		samples[i] = render.Sample{PatchID: l.PatchID, Position: l.Position, Normal: l.Normal, Area: l.Area, Radiance: l.Radiance}
	}

	mean, _, ok := z.renderer.Render(eye, samples)
	if !ok {
		mean = constant
	}
	z.cache[key] = mean
	return mean
}

func (z *zVisibility) key(eye geom.Vector3) cacheKey {
	return cacheKey{
		clusterID: z.clusterID,
		ex:        int64(eye.X * zVisibilityGridScale),
		ey:        int64(eye.Y * zVisibilityGridScale),
		ez:        int64(eye.Z * zVisibilityGridScale),
	}
}
