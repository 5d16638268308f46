package render

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpkgo/galerkin/internal/color"
	"github.com/rpkgo/galerkin/internal/geom"
)

func TestRenderNearestLeafWins(t *testing.T) {
	r := NewRenderer(16, 16)
	samples := []Sample{
		{PatchID: 1, Position: geom.Vec3(0, 0, 5), Radiance: color.Gray(1.0)},
		{PatchID: 2, Position: geom.Vec3(0, 0, 10), Radiance: color.Gray(0.2)},
	}

	mean, fractions, ok := r.Render(geom.Vec3(0, 0, 0), samples)
	require.True(t, ok)
	require.InDelta(t, 1.0, mean.R, 1e-9)
	require.InDelta(t, 1.0, fractions[1], 1e-9)
	require.NotContains(t, fractions, uint32(2))
}

func TestRenderEmptyReturnsNotOk(t *testing.T) {
	r := NewRenderer(4, 4)
	_, _, ok := r.Render(geom.Vec3(0, 0, 0), nil)
	require.False(t, ok)
}

func TestRenderCachedCoalesces(t *testing.T) {
	r := NewRenderer(8, 8)
	samples := []Sample{{PatchID: 1, Position: geom.Vec3(0, 0, 1), Radiance: color.White}}

	m1, _, ok1 := r.RenderCached("k", geom.Vec3(0, 0, 0), samples)
	m2, _, ok2 := r.RenderCached("k", geom.Vec3(0, 0, 0), samples)
	require.True(t, ok1)
	require.True(t, ok2)
	require.Equal(t, m1, m2)
}
