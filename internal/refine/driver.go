// Package refine implements the hierarchical refinement driver: the
// oracle that decides whether a link is accurate enough, and the
// bottom-up recursion that subdivides and re-evaluates links that
// aren't.
package refine

import (
	"math"

	"github.com/rpkgo/galerkin/envconfig"
	"github.com/rpkgo/galerkin/internal/arena"
	"github.com/rpkgo/galerkin/internal/cluster"
	"github.com/rpkgo/galerkin/internal/color"
	"github.com/rpkgo/galerkin/internal/element"
	"github.com/rpkgo/galerkin/internal/formfactor"
	"github.com/rpkgo/galerkin/internal/geom"
	"github.com/rpkgo/galerkin/internal/interaction"
)

// Code is the oracle's decision for one link.
type Code int

const (
	AccurateEnough Code = iota
	RegularSubdivideReceiver
	RegularSubdivideSource
	SubdivideReceiverCluster
	SubdivideSourceCluster
)

// Scene supplies the geometry-dependent operations the driver needs
// but doesn't own: world-space bounds, shaft-culled occluder
// candidates, and cluster leaf enumeration for directional resolution.
type Scene interface {
	Bounds(e *element.Element) geom.AABB
	Occluders(receiver, source *element.Element) []formfactor.OccluderNode
	RepresentativePoint(e *element.Element) geom.Vector3
	Leaves(clusterElem *element.Element) []cluster.Leaf
}

// Stats is the read-only scene-wide statistics the oracle's threshold
// and error terms are normalized against.
type Stats struct {
	TotalSceneArea         float64
	MaxSelfEmittedRadiance float64
	MaxSelfEmittedPower    float64
	MaxDirectPotential     float64
}

// Driver owns nothing; New hands it the hierarchy, graph, kernel, and
// collaborators it operates over, and it keeps references to them,
// per the explicit Context-threading convention used across this engine.
type Driver struct {
	H               *element.Hierarchy
	Graph           *interaction.Graph
	Kernel          *formfactor.Kernel
	Scene           Scene
	Material        element.PatchMaterial
	ClusterStrategy cluster.Strategy
	Cfg             envconfig.Config
	Stats           Stats

	// Counters mirror the oracle's decisions across a refinement pass,
	// for per-iteration reporting.
	Counters map[Code]int
}

func New(h *element.Hierarchy, g *interaction.Graph, k *formfactor.Kernel, scene Scene, mat element.PatchMaterial, strat cluster.Strategy, cfg envconfig.Config, stats Stats) *Driver {
	return &Driver{H: h, Graph: g, Kernel: k, Scene: scene, Material: mat, ClusterStrategy: strat, Cfg: cfg, Stats: stats, Counters: make(map[Code]int)}
}

// Refine recursively refines ownerID's subtree, then its own link
// list, replacing the list with whatever links survive at the end so
// no link is ever transported twice within the pass.
func (d *Driver) Refine(ownerID arena.Index) {
	owner := d.H.Get(ownerID)

	if owner.Kind == element.KindSurface {
		for _, c := range owner.Children {
			if c != arena.Nil {
				d.Refine(c)
			}
		}
	} else {
		for _, c := range owner.Irregular {
			d.Refine(c)
		}
	}

	// Walk a snapshot: refineOne removes subdivided links from
	// owner.Links and AddLink appends new ones while this loop runs.
	links := append([]arena.Index(nil), owner.Links...)
	var kept []arena.Index
	for _, linkID := range links {
		for _, id := range d.refineOne(ownerID, linkID) {
			// Links built for a subdivided receiver's (or, when shooting,
			// source's) children already sit on that child's own list.
			l := d.Graph.Get(id)
			linkOwner := l.Receiver
			if d.Cfg.IterationMethod == envconfig.Southwell {
				linkOwner = l.Source
			}
			if linkOwner == ownerID {
				kept = append(kept, id)
			}
		}
	}
	interaction.ReplaceLinks(d.H, ownerID, kept)
}

// refineOne classifies one existing link and either keeps it
// (transporting light over it) or destroys it and recurses into
// fresh child links, returning whatever link IDs should end up back
// on ownerID's list.
func (d *Driver) refineOne(ownerID, linkID arena.Index) []arena.Index {
	link := d.Graph.Get(linkID)
	rcv := d.H.Get(link.Receiver)
	src := d.H.Get(link.Source)

	code := d.classify(link, rcv, src)
	d.Counters[code]++

	if code == AccurateEnough {
		d.transport(linkID)
		return []arena.Index{linkID}
	}

	d.Graph.RemoveAndDestroy(d.H, ownerID, linkID)
	return d.subdivide(code, rcv, src)
}

// classify is the oracle: it decides whether the link's current error
// estimate is below threshold, and if not, which side to subdivide.
func (d *Driver) classify(link interaction.Link, rcv, src *element.Element) Code {
	if !d.Cfg.Hierarchical {
		return AccurateEnough
	}

	threshold := d.threshold(rcv)
	approx := d.approxError(link, rcv, src)
	if approx <= threshold {
		return AccurateEnough
	}

	minArea := d.Cfg.RelMinElemArea * d.Stats.TotalSceneArea
	subdivideSource := src.Area > rcv.Area
	if src.Kind == element.KindCluster && src.IsLightSource {
		subdivideSource = true
	}

	if subdivideSource {
		if src.Area <= minArea {
			return AccurateEnough
		}
		if src.Kind == element.KindCluster {
			return SubdivideSourceCluster
		}
		return RegularSubdivideSource
	}
	if rcv.Area <= minArea {
		return AccurateEnough
	}
	if rcv.Kind == element.KindCluster {
		return SubdivideReceiverCluster
	}
	return RegularSubdivideReceiver
}

func (d *Driver) threshold(rcv *element.Element) float64 {
	t := d.Cfg.RelLinkErrorThreshold * d.Stats.MaxSelfEmittedRadiance
	if d.Cfg.ErrorNorm == envconfig.PowerError {
		area := rcv.Area
		if area <= 0 {
			area = 1
		}
		t = d.Cfg.RelLinkErrorThreshold * d.Stats.MaxSelfEmittedPower / (math.Pi * area)
	}
	if d.Cfg.ImportanceDriven && d.Stats.MaxDirectPotential > geom.Epsilon {
		denom := 2 * rcv.ReceivedPotential / d.Stats.MaxDirectPotential
		if denom > geom.Epsilon {
			t /= denom
		}
	}
	return t
}

func (d *Driver) approxError(link interaction.Link, rcv, src *element.Element) float64 {
	if len(link.DeltaK) == 0 {
		return 0
	}
	rho := color.White
	if rcv.Kind == element.KindSurface && d.Material != nil {
		rho = d.Material.Reflectance(rcv.PatchID)
	}
	srcRad := radianceOf(d.Cfg, src)
	approx := color.ToScalar(rho.Scale(link.DeltaK[0]).Mul(srcRad))
	if d.Cfg.ImportanceDriven && rcv.Kind == element.KindCluster {
		approx += link.DeltaK[0] * rcv.ReceivedPotential
	}
	return approx
}

func radianceOf(cfg envconfig.Config, e *element.Element) color.Color {
	if cfg.IterationMethod == envconfig.Southwell && len(e.UnShotRadiance) > 0 {
		return e.UnShotRadiance[0]
	}
	if len(e.Radiance) > 0 {
		return e.Radiance[0]
	}
	return color.Black
}

// subdivide expands the chosen side's children (regular for surfaces,
// the pre-built cluster children for clusters) and recurses a fresh
// link through each child pair, discarding zero-visibility results.
func (d *Driver) subdivide(code Code, rcv, src *element.Element) []arena.Index {
	var out []arena.Index
	switch code {
	case RegularSubdivideReceiver:
		for _, c := range d.H.RegularSubdivide(rcv.ID) {
			out = append(out, d.buildAndRefine(d.H.Get(c), src)...)
		}
	case RegularSubdivideSource:
		for _, c := range d.H.RegularSubdivide(src.ID) {
			out = append(out, d.buildAndRefine(rcv, d.H.Get(c))...)
		}
	case SubdivideReceiverCluster:
		for _, c := range rcv.Irregular {
			out = append(out, d.buildAndRefine(d.H.Get(c), src)...)
		}
	case SubdivideSourceCluster:
		for _, c := range src.Irregular {
			out = append(out, d.buildAndRefine(rcv, d.H.Get(c))...)
		}
	}
	return out
}

// buildAndRefine constructs a fresh link for (rcv,src), re-culling the
// shaft against the scene's already-reduced candidate list, and
// immediately classifies it: accurate links are stored on the correct
// owner, inaccurate ones recurse further, and zero-visibility links
// are dropped outright.
func (d *Driver) buildAndRefine(rcv, src *element.Element) []arena.Index {
	if rcv.Area <= 0 || src.Area <= 0 {
		return nil
	}

	rAABB := d.Scene.Bounds(rcv)
	sAABB := d.Scene.Bounds(src)
	occluders := d.Scene.Occluders(rcv, src)
	target := d.Cfg.RelMinElemArea * d.Stats.TotalSceneArea

	link := d.Kernel.Evaluate(d.Cfg, formfactor.Request{
		Receiver: rcv, Source: src,
		ReceiverAABB: rAABB, SourceAABB: sAABB,
		Occluders: occluders, TargetFeatureSize: target,
	})
	if link.Visibility == 0 {
		return nil
	}
	link.Receiver, link.Source = rcv.ID, src.ID

	ownerID := rcv.ID
	if d.Cfg.IterationMethod == envconfig.Southwell {
		ownerID = src.ID
	}
	linkID := d.Graph.AddLink(d.H, ownerID, link)

	return d.refineOne(ownerID, linkID)
}

// transport updates the receiver's
// received-radiance (or received-potential, under importance driving)
// coefficients from the link's generalized form factors and the
// source's current radiance, resolving directional cluster endpoints
// through the configured clustering strategy.
func (d *Driver) transport(linkID arena.Index) {
	link := d.Graph.Get(linkID)
	rcv := d.H.Get(link.Receiver)
	src := d.H.Get(link.Source)

	srcCoeffs := src.Radiance
	if d.Cfg.IterationMethod == envconfig.Southwell {
		srcCoeffs = src.UnShotRadiance
	}
	srcRad := make([]color.Color, len(srcCoeffs))
	copy(srcRad, srcCoeffs)
	if src.Kind == element.KindCluster && src.ID != rcv.ID && d.ClusterStrategy != nil && len(srcRad) > 0 {
		eye := d.Scene.RepresentativePoint(rcv)
		leaves := d.Scene.Leaves(src)
		srcRad[0] = d.ClusterStrategy.Resolve(eye, srcRad[0], leaves)
	}

	m, s := link.R, link.S
	for alpha := 0; alpha < m && alpha < len(rcv.ReceivedRadiance); alpha++ {
		var sum color.Color
		for beta := 0; beta < s && beta < len(srcRad); beta++ {
			sum = sum.AddScaled(srcRad[beta], link.K[alpha*s+beta])
		}
		rcv.ReceivedRadiance[alpha] = rcv.ReceivedRadiance[alpha].Add(sum)
	}

	if d.Cfg.ImportanceDriven {
		rcv.ReceivedPotential += link.K[0] * src.Potential
	}
}
