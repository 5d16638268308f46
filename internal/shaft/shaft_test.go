package shaft

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpkgo/galerkin/internal/geom"
)

func box(minX, minY, minZ, maxX, maxY, maxZ float64) geom.AABB {
	return geom.AABB{Min: geom.Vec3(minX, minY, minZ), Max: geom.Vec3(maxX, maxY, maxZ)}
}

func TestBoxToBoxPlanesSeparateBothBoxes(t *testing.T) {
	src := box(0, 0, 0, 1, 1, 1)
	rcv := box(5, 5, 0, 6, 6, 1)

	s := NewBoxToBox(src, rcv)
	require.NotEmpty(t, s.Planes)
	for _, pl := range s.Planes {
		require.True(t, separates(pl, src, rcv))
	}
}

func TestBoxToBoxDeterministic(t *testing.T) {
	src := box(0, 0, 0, 1, 1, 1)
	rcv := box(4, 3, 2, 5, 4, 3)

	a := NewBoxToBox(src, rcv)
	b := NewBoxToBox(src, rcv)
	require.Equal(t, a.Planes, b.Planes)
}

func TestTouchingBoxesClassifyEndpointsInside(t *testing.T) {
	src := box(0, 0, 0, 1, 1, 1)
	rcv := box(1, 0, 0, 2, 1, 1)

	s := NewBoxToBox(src, rcv)
	require.Equal(t, geom.BoxInside, s.ClassifyAABB(src))
	require.Equal(t, geom.BoxInside, s.ClassifyAABB(rcv))
}

func TestClassifyAABBOutsideExtent(t *testing.T) {
	src := box(0, 0, 0, 1, 1, 1)
	rcv := box(10, 10, 10, 11, 11, 11)

	s := NewBoxToBox(src, rcv)
	far := box(-100, -100, -100, -99, -99, -99)
	require.Equal(t, geom.BoxOutside, s.ClassifyAABB(far))
}

func TestPolygonToPolygonCapsAt16Planes(t *testing.T) {
	p1 := []geom.Vector3{geom.Vec3(0, 0, 0), geom.Vec3(1, 0, 0), geom.Vec3(1, 1, 0), geom.Vec3(0, 1, 0)}
	p2 := []geom.Vector3{geom.Vec3(0, 0, 5), geom.Vec3(1, 0, 5), geom.Vec3(1, 1, 5), geom.Vec3(0, 1, 5)}

	s := NewPolygonToPolygon(p1, p2, 1e-6)
	require.LessOrEqual(t, len(s.Planes), maxPlanes)
}
