// Package render implements the scratch software z-buffer used by the
// z-visibility clustering strategy to resolve which cluster leaves are
// visible from a sample point.
package render

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/rpkgo/galerkin/internal/color"
	"github.com/rpkgo/galerkin/internal/geom"
)

// Sample is one cluster leaf as seen by the renderer: a point, its
// outward normal, its contribution area, and its current radiance.
type Sample struct {
	PatchID  uint32
	Position geom.Vector3
	Normal   geom.Vector3
	Area     float64
	Radiance color.Color
}

// Renderer is a fixed-resolution software z-buffer. It has no
// concurrency state of its own beyond the package-level singleflight
// group that deduplicates identical renders; instances are cheap and
// disposable, and Shared keeps one process-wide instance alive. Render
// allocates its depth and owner grids afresh on every call.
type Renderer struct {
	width, height int
}

func NewRenderer(width, height int) *Renderer {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	return &Renderer{width: width, height: height}
}

var (
	sharedOnce sync.Once
	shared     *Renderer
	renderGrp  singleflight.Group
)

// Shared returns the process-wide renderer, creating it with the given
// resolution on first call. Later calls ignore the resolution argument
// and return the already-built instance, matching the "initialised
// once when z-visibility is selected, torn down at shutdown" resource
// policy: Teardown is the only way to force a rebuild.
func Shared(width, height int) *Renderer {
	sharedOnce.Do(func() { shared = NewRenderer(width, height) })
	return shared
}

// Teardown releases the process-wide renderer so a later Shared call
// builds a fresh one.
func Teardown() {
	sharedOnce = sync.Once{}
	shared = nil
}

// Render rasterizes samples as seen from eye and returns the area-
// weighted mean radiance of the visible leaves, plus per-leaf visible
// pixel fractions. Background (uncovered) pixels contribute no area:
// the mean is taken over covered pixels only, not the full grid.
func (r *Renderer) Render(eye geom.Vector3, samples []Sample) (color.Color, map[uint32]float64, bool) {
	if len(samples) == 0 {
		return color.Black, nil, false
	}

	forward := centroid(samples).Sub(eye)
	if forward.Length() < geom.Epsilon {
		return color.Black, nil, false
	}
	forward = forward.Normalize()
	right, up := tangentBasis(forward)

	depth := make([]float64, r.width*r.height)
	owner := make([]int, r.width*r.height)
	for i := range depth {
		depth[i] = -1
		owner[i] = -1
	}

	for leafIdx, s := range samples {
		dir := s.Position.Sub(eye)
		d := dir.Length()
		if d < geom.Epsilon {
			continue
		}
		dir = dir.Scale(1 / d)
		// dir is a unit vector, so its components along right/up/forward
		// already lie in [-1,1]; no separate field-of-view scale needed.
		dx := dir.Dot(right)
		dy := dir.Dot(up)
		px, py, inBounds := pixelOf(dx, dy, r.width, r.height)
		if !inBounds {
			continue
		}
		idx := py*r.width + px
		if owner[idx] == -1 || d < depth[idx] {
			depth[idx] = d
			owner[idx] = leafIdx
		}
	}

	counts := make(map[int]int)
	covered := 0
	for _, o := range owner {
		if o >= 0 {
			counts[o]++
			covered++
		}
	}
	if covered == 0 {
		return color.Black, nil, false
	}

	var mean color.Color
	fractions := make(map[uint32]float64, len(counts))
	for leafIdx, n := range counts {
		frac := float64(n) / float64(covered)
		fractions[samples[leafIdx].PatchID] = frac
		mean = mean.AddScaled(samples[leafIdx].Radiance, frac)
	}
	return mean, fractions, true
}

// cachedResult is the boxed return value shared by concurrent
// RenderCached callers racing for the same key.
type cachedResult struct {
	mean      color.Color
	fractions map[uint32]float64
	ok        bool
}

// RenderCached renders samples under key, coalescing concurrent calls
// for the same key into a single render pass via singleflight. The
// engine's own iteration loop is single-threaded, so in practice this
// only matters if a caller fans out cluster queries across goroutines;
// it costs nothing when calls are already serial.
func (r *Renderer) RenderCached(key string, eye geom.Vector3, samples []Sample) (color.Color, map[uint32]float64, bool) {
	v, _, _ := renderGrp.Do(key, func() (interface{}, error) {
		mean, fractions, ok := r.Render(eye, samples)
		return cachedResult{mean, fractions, ok}, nil
	})
	res := v.(cachedResult)
	return res.mean, res.fractions, res.ok
}

func centroid(samples []Sample) geom.Vector3 {
	sum := geom.Vector3{}
	for _, s := range samples {
		sum = sum.Add(s.Position)
	}
	return sum.Scale(1 / float64(len(samples)))
}

// tangentBasis builds an arbitrary orthonormal (right,up) pair
// perpendicular to forward.
func tangentBasis(forward geom.Vector3) (geom.Vector3, geom.Vector3) {
	ref := geom.Vec3(0, 1, 0)
	if absF(forward.Dot(ref)) > 0.99 {
		ref = geom.Vec3(1, 0, 0)
	}
	right := forward.Cross(ref).Normalize()
	up := right.Cross(forward).Normalize()
	return right, up
}

func pixelOf(dx, dy float64, width, height int) (int, int, bool) {
	if dx < -1 || dx > 1 || dy < -1 || dy > 1 {
		return 0, 0, false
	}
	px := int((dx + 1) / 2 * float64(width))
	py := int((dy + 1) / 2 * float64(height))
	if px >= width {
		px = width - 1
	}
	if py >= height {
		py = height - 1
	}
	return px, py, true
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
