// Package formfactor implements the numerical cubature kernel that
// fills in a link's generalized form factors, error estimate, and
// quantized visibility.
package formfactor

import (
	"math"

	"github.com/rpkgo/galerkin/envconfig"
	"github.com/rpkgo/galerkin/internal/basis"
	"github.com/rpkgo/galerkin/internal/element"
	"github.com/rpkgo/galerkin/internal/geom"
	"github.com/rpkgo/galerkin/internal/interaction"
)

// Surface maps a patch's local domain coordinates to a world-space
// point and outward normal. Implemented by the scene.
type Surface interface {
	WorldPoint(patchID uint32, u, v float64) (pos, normal geom.Vector3)
}

// OccluderNode is one node of the scene's occlusion hierarchy, built
// from the shaft-culled candidate list. Leaves carry a single patch;
// compounds carry children and the aggregate area/volume of their
// subtree, needed by multi-resolution visibility's extinction model.
type OccluderNode interface {
	Bounds() geom.AABB
	Area() float64
	Volume() float64
	Children() []OccluderNode
	Patch() (patchID uint32, ok bool)
}

// RayOracle tests a single patch for a hit along a segment. It is the
// primitive the form-factor kernel bottoms out on once multi-resolution
// visibility has recursed down to an individual occluder.
type RayOracle interface {
	SegmentHitsPatch(a, b geom.Vector3, patchID uint32) bool
}

// Request bundles one link's evaluation inputs. ReceiverAABB/SourceAABB
// are world-space bounds, used for the cluster/cluster degeneracy test
// and as the 3D cubature domain when the corresponding side is a
// cluster.
type Request struct {
	Receiver, Source  *element.Element
	ReceiverAABB      geom.AABB
	SourceAABB        geom.AABB
	Occluders         []OccluderNode
	TargetFeatureSize float64
}

// Kernel evaluates form factors over links, caching shadow-ray results
// across consecutive calls for the same (receiver,source) pair.
type Kernel struct {
	surf   Surface
	oracle RayOracle

	// shadowCache remembers, per (receiver,source) patch pair, the last
	// patch that blocked the ray between them, so the next evaluation
	// tries that occluder first before falling back to a full traversal.
	shadowCache map[[2]uint32]uint32
}

func NewKernel(surf Surface, oracle RayOracle) *Kernel {
	return &Kernel{surf: surf, oracle: oracle, shadowCache: make(map[[2]uint32]uint32)}
}

// Evaluate fills and returns a fresh Link for req. It never panics on
// degenerate geometry: overlapping clusters and identical elements are
// recovered locally with a conservative K/deltaK/visibility per the
// degenerate-case policy, rather than aborting the caller's iteration.
func (k *Kernel) Evaluate(cfg envconfig.Config, req Request) interaction.Link {
	rcv, src := req.Receiver, req.Source

	if rcv.Kind == element.KindCluster && src.Kind == element.KindCluster && req.ReceiverAABB.Overlaps(req.SourceAABB) {
		return interaction.Link{R: rcv.BasisSize, S: src.BasisSize, K: zeros(rcv.BasisSize * src.BasisSize), DeltaK: []float64{1.0}, Visibility: 128}
	}
	if rcv.Kind == element.KindSurface && src.Kind == element.KindSurface && rcv.ID == src.ID {
		return interaction.Link{R: rcv.BasisSize, S: src.BasisSize, K: zeros(rcv.BasisSize * src.BasisSize), DeltaK: []float64{0.0}, Visibility: 0}
	}

	rcvRule, rcvBasis := k.ruleAndBasis(rcv, cfg.ReceiverCubatureDegree, cfg.ClusterCubatureDegree)
	srcRule, srcBasis := k.ruleAndBasis(src, cfg.SourceCubatureDegree, cfg.ClusterCubatureDegree)

	xs, xn := k.worldSamples(rcv, req.ReceiverAABB, rcvRule)
	ys, yn := k.worldSamples(src, req.SourceAABB, srcRule)

	R, S := rcv.BasisSize, src.BasisSize
	K := make([]float64, R*S)
	gSamples := make([]float64, 0, len(xs)*len(ys))
	nonZero := 0
	exactOnly := true

	// G_beta(x_k): per-source-basis partial sums, reused across receiver
	// bases so the O(R*S) assembly below doesn't re-walk source samples.
	gBeta := make([][]float64, len(xs))
	for kIdx, x := range xs {
		gBeta[kIdx] = make([]float64, S)
		for lIdx, y := range ys {
			g, exact := k.evaluatePair(cfg, req, rcv, src, x, xn[kIdx], y, yn[lIdx])
			gSamples = append(gSamples, g)
			if g > 0 {
				nonZero++
			}
			if !exact {
				exactOnly = false
			}
			w := srcRule.Weights[lIdx]
			for beta := 0; beta < S; beta++ {
				phiBeta := basisEval(srcBasis, beta, srcRule.Nodes[lIdx])
				gBeta[kIdx][beta] += w * g * phiBeta
			}
		}
		srcArea := areaOf(src, req.SourceAABB)
		for beta := 0; beta < S; beta++ {
			gBeta[kIdx][beta] *= srcArea
		}
	}

	for alpha := 0; alpha < R; alpha++ {
		for beta := 0; beta < S; beta++ {
			sum := 0.0
			for kIdx := range xs {
				phiAlpha := basisEval(rcvBasis, alpha, rcvRule.Nodes[kIdx])
				sum += rcvRule.Weights[kIdx] * phiAlpha * gBeta[kIdx][beta]
			}
			K[alpha*S+beta] = areaOf(rcv, req.ReceiverAABB) * sum
		}
	}

	deltaK := assembleError(R, S, K, gBeta, rcvRule, rcvBasis, gSamples)

	vis := uint8(0)
	total := len(xs) * len(ys)
	if total > 0 {
		vis = uint8(math.Round(255 * float64(nonZero) / float64(total)))
	}
	exactProven := len(req.Occluders) == 0 || exactOnly
	if len(req.Occluders) > 0 && vis == 255 && !exactProven {
		vis = 254
	}

	return interaction.Link{R: R, S: S, K: K, DeltaK: deltaK, Visibility: vis, ExactProven: exactProven}
}

func zeros(n int) []float64 { return make([]float64, n) }

func (k *Kernel) ruleAndBasis(e *element.Element, surfaceDegree, clusterDegree int) (basis.Rule, *basis.Set) {
	if e.Kind == element.KindCluster {
		return basis.ClusterRule(clusterDegree), nil
	}
	set := basis.Build(e.Shape, e.BasisSize)
	if e.Shape == basis.Triangle {
		return basis.TriangleRule(surfaceDegree), set
	}
	return basis.QuadRule(surfaceDegree), set
}

func basisEval(set *basis.Set, idx int, node [3]float64) float64 {
	if set == nil {
		return 1 // cluster constant basis, already normalized to 1 by construction
	}
	return set.Evaluate(idx, node[0], node[1])
}

func areaOf(e *element.Element, box geom.AABB) float64 {
	if e.Kind == element.KindCluster {
		return box.Volume()
	}
	if e.Area <= 0 {
		return 1
	}
	return e.Area
}

func assembleError(R, S int, K []float64, gBeta [][]float64, rcvRule basis.Rule, rcvBasis *basis.Set, gSamples []float64) []float64 {
	if R == 1 && S == 1 {
		if len(gSamples) == 0 {
			return []float64{0}
		}
		gMin, gMax := gSamples[0], gSamples[0]
		for _, g := range gSamples {
			if g < gMin {
				gMin = g
			}
			if g > gMax {
				gMax = g
			}
		}
		avg := 0.0
		for _, g := range gSamples {
			avg += g
		}
		avg /= float64(len(gSamples))
		return []float64{math.Max(avg-gMin, gMax-avg)}
	}

	maxResidual := 0.0
	for kIdx := range gBeta {
		residual := 0.0
		for beta := 0; beta < S; beta++ {
			approx := 0.0
			for alpha := 0; alpha < R; alpha++ {
				phiAlpha := basisEval(rcvBasis, alpha, rcvRule.Nodes[kIdx])
				approx += K[alpha*S+beta] * phiAlpha
			}
			residual += gBeta[kIdx][beta] - approx
		}
		if math.Abs(residual) > maxResidual {
			maxResidual = math.Abs(residual)
		}
	}
	return []float64{maxResidual}
}
