package formfactor

import (
	"math"

	"github.com/rpkgo/galerkin/envconfig"
	"github.com/rpkgo/galerkin/internal/basis"
	"github.com/rpkgo/galerkin/internal/element"
	"github.com/rpkgo/galerkin/internal/geom"
)

// worldSamples maps a cubature rule's reference-domain nodes to world
// positions and outward normals for one element. A cluster's rule
// nodes are 3D and index its AABB directly; a surface's are 2D and go
// through the element's composed up-transform before the scene turns
// them into world space.
func (k *Kernel) worldSamples(e *element.Element, box geom.AABB, rule basis.Rule) ([]geom.Vector3, []geom.Vector3) {
	pos := make([]geom.Vector3, len(rule.Nodes))
	nrm := make([]geom.Vector3, len(rule.Nodes))
	for i, node := range rule.Nodes {
		if e.Kind == element.KindCluster {
			pos[i] = geom.Vec3(
				box.Min.X+node[0]*(box.Max.X-box.Min.X),
				box.Min.Y+node[1]*(box.Max.Y-box.Min.Y),
				box.Min.Z+node[2]*(box.Max.Z-box.Min.Z),
			)
			nrm[i] = geom.Vector3{}
			continue
		}
		u, v := e.UpTrans.Apply(node[0], node[1])
		pos[i], nrm[i] = k.surf.WorldPoint(e.PatchID, u, v)
	}
	return pos, nrm
}

// evaluatePair computes the kernel value G(x,y) for one sample pair and
// reports whether the visibility test behind it was proven exact.
func (k *Kernel) evaluatePair(cfg envconfig.Config, req Request, rcv, src *element.Element, x, xn, y, yn geom.Vector3) (float64, bool) {
	d := geom.Distance(x, y)
	if d < geom.Epsilon {
		return 0, true
	}
	dirXY := y.Sub(x).Scale(1 / d)

	cosReceiver := 0.25
	if rcv.Kind != element.KindCluster {
		cosReceiver = dirXY.Dot(xn)
	}
	cosSource := 0.25
	if src.Kind != element.KindCluster {
		cosSource = -dirXY.Dot(yn)
	}
	if cosReceiver <= 0 || cosSource <= 0 {
		return 0, true
	}

	vis, exact := k.visibility(cfg, req, x, y, d)
	if vis <= 0 {
		return 0, exact
	}
	g := cosReceiver * cosSource / (math.Pi * d * d) * vis
	return g, exact
}

func (k *Kernel) visibility(cfg envconfig.Config, req Request, x, y geom.Vector3, totalDist float64) (float64, bool) {
	if len(req.Occluders) == 0 {
		return 1, true
	}
	if cfg.ExactVisibility || !cfg.MultiResolutionVisibility {
		return k.exactVisibility(req, x, y), true
	}

	transmittance := 1.0
	exact := true
	for _, node := range req.Occluders {
		t, isExact := k.traverseMultiRes(node, x, y, req.TargetFeatureSize, totalDist)
		transmittance *= t
		exact = exact && isExact
	}
	return transmittance, exact
}

// exactVisibility walks the occluder tree, retrying last time's blocker
// for this (receiver,source) pair first: shadow rays tend to keep
// hitting the same occluder across refinement steps and consecutive
// iterations, so the cache usually turns the common case into one ray
// instead of a full traversal.
func (k *Kernel) exactVisibility(req Request, x, y geom.Vector3) float64 {
	key := [2]uint32{req.Receiver.PatchID, req.Source.PatchID}
	if cached, ok := k.shadowCache[key]; ok && k.oracle.SegmentHitsPatch(x, y, cached) {
		return 0
	}

	for _, node := range req.Occluders {
		if patchID, hit := k.blocked(node, x, y); hit {
			k.shadowCache[key] = patchID
			return 0
		}
	}
	delete(k.shadowCache, key)
	return 1
}

func (k *Kernel) blocked(node OccluderNode, x, y geom.Vector3) (uint32, bool) {
	if !segmentOverlapsBox(x, y, node.Bounds()) {
		return 0, false
	}
	if patchID, ok := node.Patch(); ok {
		return patchID, k.oracle.SegmentHitsPatch(x, y, patchID)
	}
	for _, child := range node.Children() {
		if patchID, hit := k.blocked(child, x, y); hit {
			return patchID, true
		}
	}
	return 0, false
}

// traverseMultiRes implements the isotropic-medium approximation: below
// a target feature size the subtree is treated as participating medium
// of extinction area/(4*volume); above it, the traversal recurses, and
// at a primitive a single ray decides 0/1.
func (k *Kernel) traverseMultiRes(node OccluderNode, x, y geom.Vector3, targetFeature, totalDist float64) (float64, bool) {
	box := node.Bounds()
	tEnter, tExit, hit := segmentBoxInterval(x, y, box)
	if !hit {
		return 1, true
	}

	if patchID, ok := node.Patch(); ok {
		if k.oracle.SegmentHitsPatch(x, y, patchID) {
			return 0, true
		}
		return 1, true
	}

	d := geom.Distance(x, box.Center())
	tMid := totalDist / 2
	blockerSize := box.EquivalentBlockerSize()
	srcSize := 0.0
	f := srcSize
	if tMid > geom.Epsilon {
		f = srcSize + d*(blockerSize-srcSize)/tMid
	}

	if f >= targetFeature {
		transmittance := 1.0
		exact := true
		for _, child := range node.Children() {
			t, childExact := k.traverseMultiRes(child, x, y, targetFeature, totalDist)
			transmittance *= t
			exact = exact && childExact
		}
		return transmittance, exact
	}

	volume := node.Volume()
	if volume <= 0 {
		return 1, false
	}
	kappa := node.Area() / (4 * volume)
	dt := (tExit - tEnter) * totalDist
	return math.Exp(-kappa * dt), false
}

func segmentOverlapsBox(a, b geom.Vector3, box geom.AABB) bool {
	_, _, hit := segmentBoxInterval(a, b, box)
	return hit
}

// segmentBoxInterval returns the [tEnter,tExit] parameter interval
// (in [0,1] along a->b) where the segment lies inside box, via the
// slab method, and whether any such interval exists.
func segmentBoxInterval(a, b geom.Vector3, box geom.AABB) (float64, float64, bool) {
	dir := b.Sub(a)
	tMin, tMax := 0.0, 1.0

	axis := func(d, aMin, bMin, bMax float64) bool {
		if math.Abs(d) < geom.Epsilon {
			return aMin >= bMin && aMin <= bMax
		}
		t0 := (bMin - aMin) / d
		t1 := (bMax - aMin) / d
		if t0 > t1 {
			t0, t1 = t1, t0
		}
		if t0 > tMin {
			tMin = t0
		}
		if t1 < tMax {
			tMax = t1
		}
		return tMin <= tMax
	}

	if !axis(dir.X, a.X, box.Min.X, box.Max.X) {
		return 0, 0, false
	}
	if !axis(dir.Y, a.Y, box.Min.Y, box.Max.Y) {
		return 0, 0, false
	}
	if !axis(dir.Z, a.Z, box.Min.Z, box.Max.Z) {
		return 0, 0, false
	}
	return tMin, tMax, true
}
