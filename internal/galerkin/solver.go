// Package galerkin is the top-level entry point: it threads the
// resolved configuration, the scene and ray-oracle collaborators, and
// the scene-wide statistics through the element hierarchy, interaction
// graph, form-factor kernel, and refinement driver as a single
// explicit value, and drives the iteration loop (Jacobi, Gauss-Seidel,
// Southwell shooting) that the rest of this module assembles.
package galerkin

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/rpkgo/galerkin/envconfig"
	"github.com/rpkgo/galerkin/internal/arena"
	"github.com/rpkgo/galerkin/internal/cluster"
	"github.com/rpkgo/galerkin/internal/color"
	"github.com/rpkgo/galerkin/internal/element"
	"github.com/rpkgo/galerkin/internal/formfactor"
	"github.com/rpkgo/galerkin/internal/interaction"
	"github.com/rpkgo/galerkin/internal/refine"
)

// Scene bundles every contract the core consumes from scene geometry:
// patch material lookup, world-space sampling, and the refinement
// driver's bounds/occluder/leaf queries, plus the two enumeration
// hooks the iteration loop needs to seed initial links.
type Scene interface {
	element.PatchMaterial
	formfactor.Surface
	refine.Scene

	// SurfaceRoots lists the top-level surface elements to link
	// all-pairs when Cfg.Clustered is false.
	SurfaceRoots() []arena.Index
	// RootCluster is the element representing the whole scene, used
	// as the sole self-link seed when Cfg.Clustered is true. Returns
	// arena.Nil if the scene has no cluster hierarchy.
	RootCluster() arena.Index
}

// IterationStats is one iteration's summary: the counts a caller
// reports to its user, plus a breakdown of the oracle's decisions.
type IterationStats struct {
	IterationNumber  int
	CPUSeconds       float64
	Elements         int
	Clusters         int
	Links            int
	OracleCodeCounts map[refine.Code]int
}

// Solver owns no package-level state; every method call threads its
// receiver's fields explicitly, matching the single Context value this
// engine uses in place of the source's process-wide globals.
type Solver struct {
	H      *element.Hierarchy
	Graph  *interaction.Graph
	Kernel *formfactor.Kernel
	Scene  Scene
	Cfg    envconfig.Config

	cluster cluster.Strategy
	driver  *refine.Driver
	runID   uuid.UUID

	iteration int
}

// New resolves the clustering strategy, builds the form-factor kernel
// and refinement driver, and returns a Solver ready to iterate over h.
// h must already contain whatever surface/cluster roots scene.SurfaceRoots
// and scene.RootCluster name; this package never builds scene geometry.
func New(cfg envconfig.Config, h *element.Hierarchy, scene Scene, oracle formfactor.RayOracle, stats refine.Stats) (*Solver, error) {
	var clusterID uint32
	if root := scene.RootCluster(); root != arena.Nil {
		clusterID = uint32(root)
	}
	strat, err := cluster.New(cfg.ClusteringStrategy, clusterID)
	if err != nil {
		return nil, fmt.Errorf("galerkin: %w", err)
	}

	kernel := formfactor.NewKernel(scene, oracle)
	graph := interaction.NewGraph()
	driver := refine.New(h, graph, kernel, scene, scene, strat, cfg, stats)
	runID := uuid.New()

	slog.Info("galerkin solver initialised",
		"runID", runID,
		"iterationMethod", cfg.IterationMethod,
		"clustered", cfg.Clustered,
		"clusteringStrategy", cfg.ClusteringStrategy,
		"hierarchical", cfg.Hierarchical,
	)

	return &Solver{
		H: h, Graph: graph, Kernel: kernel, Scene: scene, Cfg: cfg,
		cluster: strat, driver: driver, runID: runID,
	}, nil
}

// RunID identifies this solver's run for correlating logs and stats
// across packages; it has no bearing on element or link identity,
// which stays arena-indexed.
func (s *Solver) RunID() uuid.UUID { return s.runID }

// Iterate runs exactly one push-pull (Jacobi/GaussSeidel) or shooting
// (Southwell) pass and returns its reported statistics.
func (s *Solver) Iterate() IterationStats {
	start := time.Now()
	s.iteration++
	s.seedLinks()

	s.driver.Counters = make(map[refine.Code]int)
	if s.Cfg.IterationMethod == envconfig.Southwell {
		s.iterateSouthwell()
	} else {
		s.iterateGathering()
	}

	elements, clusters, links := s.countTree()
	stats := IterationStats{
		IterationNumber:  s.iteration,
		CPUSeconds:       time.Since(start).Seconds(),
		Elements:         elements,
		Clusters:         clusters,
		Links:            links,
		OracleCodeCounts: s.driver.Counters,
	}
	slog.Info("iteration complete",
		"runID", s.runID,
		"iterationNumber", stats.IterationNumber,
		"cpuSeconds", stats.CPUSeconds,
		"elements", stats.Elements,
		"clusters", stats.Clusters,
		"links", stats.Links,
	)
	return stats
}

// roots returns the top-level elements the iteration loop refines and
// push-pulls independently: the single root cluster when clustered,
// otherwise every surface root.
func (s *Solver) roots() []arena.Index {
	if s.Cfg.Clustered {
		if root := s.Scene.RootCluster(); root != arena.Nil {
			return []arena.Index{root}
		}
	}
	return s.Scene.SurfaceRoots()
}

func (s *Solver) iterateGathering() {
	mode := element.Gathering
	for _, root := range s.roots() {
		s.driver.Refine(root)
	}
	for _, root := range s.roots() {
		element.PushPull(s.H, s.Scene, mode, root)
	}
}

// iterateSouthwell shoots from the single element currently holding
// the most un-shot power, refines and transports only that element's
// own (source-owned) links, propagates the shot through the whole
// hierarchy by push-pull, and zeroes the shooter's un-shot quantities
// once its contribution has been distributed.
func (s *Solver) iterateSouthwell() {
	roots := s.roots()
	shooter := s.pickShooter(roots)
	if shooter == arena.Nil {
		return
	}

	s.driver.Refine(shooter)
	for _, root := range roots {
		element.PushPull(s.H, s.Scene, element.Shooting, root)
	}

	e := s.H.Get(shooter)
	for k := range e.UnShotRadiance {
		e.UnShotRadiance[k] = color.Black
	}
	e.UnShotPotential = 0
}

// pickShooter walks every root's subtree for the element with the
// largest un-shot power (area times luma of its constant coefficient)
// and currently-owned links, since an element with nothing to shoot
// over contributes nothing by choosing it.
func (s *Solver) pickShooter(roots []arena.Index) arena.Index {
	best := arena.Nil
	bestPower := 0.0
	var walk func(id arena.Index)
	walk = func(id arena.Index) {
		e := s.H.Get(id)
		if len(e.Links) > 0 && len(e.UnShotRadiance) > 0 {
			power := e.Area * color.ToScalar(e.UnShotRadiance[0])
			if power > bestPower {
				bestPower, best = power, id
			}
		}
		if e.Kind == element.KindSurface {
			for _, c := range e.Children {
				if c != arena.Nil {
					walk(c)
				}
			}
		} else {
			for _, c := range e.Irregular {
				walk(c)
			}
		}
	}
	for _, r := range roots {
		walk(r)
	}
	return best
}

// countTree reports total element/cluster/link counts across every
// root's subtree, for the per-iteration report.
func (s *Solver) countTree() (elements, clusters, links int) {
	var walk func(id arena.Index)
	walk = func(id arena.Index) {
		e := s.H.Get(id)
		elements++
		if e.Kind == element.KindCluster {
			clusters++
		}
		links += len(e.Links)
		if e.Kind == element.KindSurface {
			for _, c := range e.Children {
				if c != arena.Nil {
					walk(c)
				}
			}
		} else {
			for _, c := range e.Irregular {
				walk(c)
			}
		}
	}
	for _, r := range s.roots() {
		walk(r)
	}
	return elements, clusters, links
}
