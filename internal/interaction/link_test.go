package interaction

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rpkgo/galerkin/internal/arena"
	"github.com/rpkgo/galerkin/internal/basis"
	"github.com/rpkgo/galerkin/internal/element"
)

func TestAddLinkAppearsOnOwner(t *testing.T) {
	h := element.NewHierarchy()
	receiver := h.NewSurfaceRoot(1, basis.Quad, 1, 1.0)
	source := h.NewSurfaceRoot(2, basis.Quad, 1, 1.0)

	g := NewGraph()
	id := g.AddLink(h, receiver, Link{Source: source, Receiver: receiver, R: 1, S: 1, K: []float64{0.2}, DeltaK: []float64{0.01}})

	require.Contains(t, h.Get(receiver).Links, id)
	require.Equal(t, 0.2, g.Get(id).K[0])
}

func TestRemoveAndDestroyDropsOwnership(t *testing.T) {
	h := element.NewHierarchy()
	receiver := h.NewSurfaceRoot(1, basis.Quad, 1, 1.0)
	source := h.NewSurfaceRoot(2, basis.Quad, 1, 1.0)

	g := NewGraph()
	id := g.AddLink(h, receiver, Link{Source: source, Receiver: receiver, R: 1, S: 1})
	g.RemoveAndDestroy(h, receiver, id)

	require.NotContains(t, h.Get(receiver).Links, id)
}

func TestReplaceLinksSwapsWholeList(t *testing.T) {
	h := element.NewHierarchy()
	receiver := h.NewSurfaceRoot(1, basis.Quad, 1, 1.0)

	replacement := []arena.Index{arena.Index(7), arena.Index(9)}
	ReplaceLinks(h, receiver, replacement)

	require.Equal(t, replacement, h.Get(receiver).Links)
}
