// Package interaction implements the directed link graph between pairs
// of elements: generalized form factors, error bounds, visibility, and
// the light-transport evaluation over one link.
package interaction

import (
	"github.com/rpkgo/galerkin/internal/arena"
	"github.com/rpkgo/galerkin/internal/element"
)

// Link is a directed edge, source -> receiver, carrying the
// generalized form factors K (shape R x S, row-major: K[alpha*S+beta])
// and an error-estimation vector DeltaK.
type Link struct {
	ID       arena.Index
	Source   arena.Index
	Receiver arena.Index

	R, S int // basis coefficients effectively used on receiver/source

	K      []float64
	DeltaK []float64

	// Visibility is the quantised [0,255] visibility fraction; 0 is
	// fully occluded, 255 fully visible. ExactProven resolves the
	// 254-vs-255 sentinel ambiguity explicitly: 255 only when the
	// kernel proved full visibility exactly (no occluders, or exact ray
	// tests that all passed), 254 when every pair came out visible but
	// at least one pair's visibility was a multi-resolution extinction
	// estimate rather than an exact ray test.
	Visibility  uint8
	ExactProven bool
}

// Graph owns the link arena. Gathering iteration methods keep a link on
// its receiver's Element.Links; Southwell shooting keeps it on the
// source's.
type Graph struct {
	arena *arena.Arena[Link]
}

func NewGraph() *Graph { return &Graph{arena: arena.New[Link]()} }

func (g *Graph) Get(id arena.Index) Link { return g.arena.Get(id) }

// AddLink stores link under ownerID's Element.Links and returns its new
// interaction-arena index. An element never holds the same link twice:
// callers must not add a link already present in ownerID's list.
func (g *Graph) AddLink(h *element.Hierarchy, ownerID arena.Index, link Link) arena.Index {
	id := g.arena.Alloc(link)
	link.ID = id
	g.arena.Set(id, link)

	owner := h.Get(ownerID)
	owner.Links = append(owner.Links, id)
	return id
}

// RemoveAndDestroy removes linkID from ownerID's list and releases its
// K/DeltaK storage.
func (g *Graph) RemoveAndDestroy(h *element.Hierarchy, ownerID arena.Index, linkID arena.Index) {
	owner := h.Get(ownerID)
	for i, l := range owner.Links {
		if l == linkID {
			owner.Links = append(owner.Links[:i], owner.Links[i+1:]...)
			break
		}
	}
	g.arena.Free(linkID)
}

// ReplaceLinks swaps ownerID's entire link list for replacements, used
// when refinement subdivides an element: the element never holds both
// its old link and its children's refined links at once.
func ReplaceLinks(h *element.Hierarchy, ownerID arena.Index, replacements []arena.Index) {
	h.Get(ownerID).Links = replacements
}
