package element

import (
	"github.com/rpkgo/galerkin/internal/arena"
	"github.com/rpkgo/galerkin/internal/basis"
	"github.com/rpkgo/galerkin/internal/color"
)

// GatherMode selects which push-pull formula step 5 uses at the current
// node: gathering overwrites radiance with bUp, shooting accumulates
// into both radiance and unShotRadiance.
type GatherMode int

const (
	Gathering GatherMode = iota
	Shooting
)

// PatchMaterial supplies the per-patch diffuse reflectance/emittance a
// leaf surface element needs to turn received radiance into reflected
// radiance. Implemented by the scene, an external collaborator.
type PatchMaterial interface {
	Reflectance(patchID uint32) color.Color
	Emittance(patchID uint32) color.Color
}

// PushPull runs one full push-pull pass rooted at id, per the element
// hierarchy's radiance-consistency contract: after it returns,
// ReceivedRadiance is zero everywhere and Radiance at every non-leaf
// equals the area-weighted average of its children's Radiance.
func PushPull(h *Hierarchy, mat PatchMaterial, mode GatherMode, id arena.Index) []color.Color {
	e := h.Get(id)
	e.allocCoefficients()

	bDown := make([]color.Color, e.BasisSize)
	for k := range bDown {
		bDown[k] = e.ReceivedRadiance[k].Scale(1 / areaOrOne(e.Area))
		e.ReceivedRadiance[k] = color.Black
	}

	var bUp []color.Color
	switch {
	case e.IsLeaf() && e.Kind == KindSurface:
		bUp = leafReflect(mat, mode, e, bDown)
	case e.Kind == KindSurface && e.NumRegularChildren() == 4:
		bUp = pushPullRegular(h, mat, mode, e, bDown)
	case e.Kind == KindCluster && len(e.Irregular) > 0:
		bUp = pushPullIrregular(h, mat, mode, e, bDown)
	default:
		// Cluster with no children yet, or surface leaf being treated as
		// an interior node transiently during refinement: reflect as a
		// degenerate single-child case so the pass stays total.
		bUp = leafReflect(mat, mode, e, bDown)
	}

	commit(mode, e, bUp)
	return e.Radiance
}

func areaOrOne(area float64) float64 {
	if area <= 0 {
		return 1
	}
	return area
}

func leafReflect(mat PatchMaterial, mode GatherMode, e *Element, bDown []color.Color) []color.Color {
	bUp := make([]color.Color, e.BasisSize)
	if e.Kind != KindSurface || mat == nil {
		copy(bUp, bDown)
		return bUp
	}
	rho := mat.Reflectance(e.PatchID)
	for k := range bDown {
		bUp[k] = bDown[k].Mul(rho)
	}
	if mode == Gathering {
		bUp[0] = bUp[0].Add(mat.Emittance(e.PatchID))
	}
	return bUp
}

func pushPullRegular(h *Hierarchy, mat PatchMaterial, mode GatherMode, e *Element, bDown []color.Color) []color.Color {
	bUp := make([]color.Color, e.BasisSize)
	set := basis.Build(e.Shape, e.BasisSize)
	filter := basis.Filter(set)

	for sigma, childID := range e.Children {
		if childID == arena.Nil {
			continue
		}
		child := h.Get(childID)
		child.allocCoefficients()

		pushed := pushColors(filter, sigma, bDown, e.BasisSize)
		for k := range pushed {
			child.ReceivedRadiance[k] = child.ReceivedRadiance[k].Add(pushed[k].Scale(areaOrOne(child.Area)))
		}

		childBUp := PushPull(h, mat, mode, childID)
		pullColors(filter, sigma, childBUp, bUp, e.BasisSize)
	}
	return bUp
}

func pushPullIrregular(h *Hierarchy, mat PatchMaterial, mode GatherMode, e *Element, bDown []color.Color) []color.Color {
	bUp := make([]color.Color, e.BasisSize)
	constantBDown := bDown[0]

	for _, childID := range e.Irregular {
		child := h.Get(childID)
		child.allocCoefficients()
		child.ReceivedRadiance[0] = child.ReceivedRadiance[0].Add(constantBDown.Scale(areaOrOne(child.Area)))

		childBUp := PushPull(h, mat, mode, childID)
		if len(childBUp) == 0 {
			continue
		}
		ratio := areaOrOne(child.Area) / areaOrOne(e.Area)
		bUp[0] = bUp[0].AddScaled(childBUp[0], ratio)
	}
	return bUp
}

// pushColors applies the push half of one filter step to a colour
// vector: bDown'[beta] = sum_alpha H[sigma,alpha,beta]*bDown[alpha].
func pushColors(f *basis.FilterTable, sigma int, bDown []color.Color, size int) []color.Color {
	out := make([]color.Color, size)
	for beta := 0; beta < size; beta++ {
		var sum color.Color
		for alpha := 0; alpha < size && alpha < len(bDown); alpha++ {
			sum = sum.AddScaled(bDown[alpha], f.At(sigma, alpha, beta))
		}
		out[beta] = sum
	}
	return out
}

// pullColors accumulates the pull half of one filter step into
// parentBUp: += (1/4) * sum_beta H[sigma,alpha,beta]*childBUp[beta].
func pullColors(f *basis.FilterTable, sigma int, childBUp, parentBUp []color.Color, size int) {
	for alpha := 0; alpha < size && alpha < len(parentBUp); alpha++ {
		var sum color.Color
		for beta := 0; beta < size && beta < len(childBUp); beta++ {
			sum = sum.AddScaled(childBUp[beta], f.At(sigma, alpha, beta))
		}
		parentBUp[alpha] = parentBUp[alpha].AddScaled(sum, 0.25)
	}
}

func commit(mode GatherMode, e *Element, bUp []color.Color) {
	e.allocCoefficients()
	switch mode {
	case Gathering:
		copy(e.Radiance, bUp)
	case Shooting:
		for k := range bUp {
			if k >= len(e.Radiance) {
				break
			}
			e.Radiance[k] = e.Radiance[k].Add(bUp[k])
			e.UnShotRadiance[k] = e.UnShotRadiance[k].Add(bUp[k])
		}
	}
}
