package cluster

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpkgo/galerkin/envconfig"
	"github.com/rpkgo/galerkin/internal/color"
	"github.com/rpkgo/galerkin/internal/geom"
)

func TestIsotropicIgnoresLeaves(t *testing.T) {
	s, err := New(envconfig.Isotropic, 1)
	require.NoError(t, err)

	got := s.Resolve(geom.Vec3(0, 0, 0), color.Gray(0.7), []Leaf{
		{Position: geom.Vec3(1, 0, 0), Normal: geom.Vec3(1, 0, 0), Area: 1, Radiance: color.Gray(99)},
	})
	require.Equal(t, color.Gray(0.7), got)
}

func TestOrientedWeightsByCosineAndArea(t *testing.T) {
	s, err := New(envconfig.Oriented, 1)
	require.NoError(t, err)

	leaves := []Leaf{
		{Position: geom.Vec3(0, 0, 0), Normal: geom.Vec3(0, 0, 1), Area: 1, Radiance: color.Gray(1.0)},
		{Position: geom.Vec3(0, 0, 0), Normal: geom.Vec3(0, 0, -1), Area: 1, Radiance: color.Gray(5.0)},
	}
	eye := geom.Vec3(0, 0, 10)

	got := s.Resolve(eye, color.Black, leaves)
	// Only the leaf facing the eye (normal +Z) contributes; cos=1, area=1,
	// total area=2, so result = (4/2)*1*1*1.0 = 2.0.
	require.InDelta(t, 2.0, got.R, 1e-9)
}

func TestZVisibilityCachesByQuantizedEye(t *testing.T) {
	s, err := New(envconfig.ZVisibility, 42)
	require.NoError(t, err)

	leaves := []Leaf{{PatchID: 1, Position: geom.Vec3(0, 0, 5), Normal: geom.Vec3(0, 0, -1), Area: 1, Radiance: color.Gray(0.5)}}
	eye := geom.Vec3(0, 0, 0)

	a := s.Resolve(eye, color.Black, leaves)
	b := s.Resolve(eye, color.Black, leaves)
	require.Equal(t, a, b)
}
