package galerkin

import (
	"github.com/rpkgo/galerkin/envconfig"
	"github.com/rpkgo/galerkin/internal/arena"
	"github.com/rpkgo/galerkin/internal/formfactor"
)

// seedLinks creates each element's initial interactions exactly once,
// guarded by InteractionsCreated so a later iteration never reseeds an
// element refinement has already subdivided. When Cfg.Clustered, the
// root cluster gets a single self-link: the kernel's cluster/cluster
// overlap test treats a cluster against itself as maximally degenerate
// (deltaK=1.0, K=0), so the oracle subdivides it as soon as the root's
// radiance makes deltaK times that radiance exceed the error threshold;
// while the root still carries zero radiance the link is accepted and
// transports nothing.
// Otherwise, every pair of top-level surface elements is linked
// directly, the classical all-pairs seed.
func (s *Solver) seedLinks() {
	if s.Cfg.Clustered {
		s.seedClusterSelfLink()
		return
	}
	s.seedAllPairs()
}

func (s *Solver) seedClusterSelfLink() {
	root := s.Scene.RootCluster()
	if root == arena.Nil {
		return
	}
	e := s.H.Get(root)
	if e.InteractionsCreated {
		return
	}

	box := s.Scene.Bounds(e)
	link := s.Kernel.Evaluate(s.Cfg, formfactor.Request{
		Receiver: e, Source: e,
		ReceiverAABB: box, SourceAABB: box,
	})
	link.Receiver, link.Source = root, root
	s.Graph.AddLink(s.H, root, link)
	e.InteractionsCreated = true
}

func (s *Solver) seedAllPairs() {
	roots := s.Scene.SurfaceRoots()
	for i, rID := range roots {
		rcv := s.H.Get(rID)
		if rcv.InteractionsCreated {
			continue
		}
		for j, sID := range roots {
			if i == j {
				continue
			}
			src := s.H.Get(sID)
			link := s.Kernel.Evaluate(s.Cfg, formfactor.Request{
				Receiver: rcv, Source: src,
				ReceiverAABB: s.Scene.Bounds(rcv), SourceAABB: s.Scene.Bounds(src),
				Occluders: s.Scene.Occluders(rcv, src),
			})
			if link.Visibility == 0 {
				continue
			}
			link.Receiver, link.Source = rID, sID

			owner := rID
			if s.Cfg.IterationMethod == envconfig.Southwell {
				owner = sID
			}
			s.Graph.AddLink(s.H, owner, link)
		}
		rcv.InteractionsCreated = true
	}
}
