package basis

import (
	"github.com/pdevine/tensor"

	"github.com/rpkgo/galerkin/internal/geom"
)

// FilterTable holds the precomputed push-pull filter
// H[sigma,alpha,beta] = integral over S of phi_alpha(chi_sigma(u,v)) * phi_beta(u,v) du dv
// for the 4 regular sub-transforms chi_sigma of one shape/size pair. It
// is computed once from the fixed cubature rule used to build the basis
// itself and never mutated afterward.
type FilterTable struct {
	Size int
	data *tensor.Dense
}

var filterCache = map[[2]int]*FilterTable{}

// Filter returns the push-pull filter table for the given basis set,
// building it on first use from the set's own quadrature rule.
func Filter(s *Set) *FilterTable {
	key := [2]int{int(s.Shape), s.Size}
	if f, ok := filterCache[key]; ok {
		return f
	}

	var subTransforms [4]geom.Matrix2x2
	if s.Shape == Triangle {
		subTransforms = geom.TriangleSubTransforms()
	} else {
		subTransforms = geom.QuadSubTransforms()
	}

	data := tensor.New(tensor.WithShape(4, s.Size, s.Size), tensor.Of(tensor.Float64))
	for sigma, chi := range subTransforms {
		for alpha := 0; alpha < s.Size; alpha++ {
			for beta := 0; beta < s.Size; beta++ {
				sum := 0.0
				for k, n := range s.rule.Nodes {
					u, v := chi.Apply(n[0], n[1])
					sum += s.rule.Weights[k] * s.Evaluate(alpha, u, v) * s.Evaluate(beta, n[0], n[1])
				}
				_ = data.SetAt(sum, sigma, alpha, beta)
			}
		}
	}

	f := &FilterTable{Size: s.Size, data: data}
	filterCache[key] = f
	return f
}

// At returns H[sigma,alpha,beta].
func (f *FilterTable) At(sigma, alpha, beta int) float64 {
	v, err := f.data.At(sigma, alpha, beta)
	if err != nil {
		return 0
	}
	return v.(float64)
}

// Push computes bDown'[beta] = sum_alpha H[sigma,alpha,beta] * bDown[alpha]
// for regular child sigma, the first half of one push-pull step.
func (f *FilterTable) Push(sigma int, bDown []float64) []float64 {
	out := make([]float64, f.Size)
	for beta := 0; beta < f.Size; beta++ {
		sum := 0.0
		for alpha := 0; alpha < f.Size && alpha < len(bDown); alpha++ {
			sum += f.At(sigma, alpha, beta) * bDown[alpha]
		}
		out[beta] = sum
	}
	return out
}

// Pull accumulates (1/4) * sum_beta H[sigma,alpha,beta] * childBUp[beta]
// into parentBUp, the second half of one push-pull step for regular
// children (the constant 1/4 reflects that 4 equal-area children each
// contribute a quarter of the parent's average).
func (f *FilterTable) Pull(sigma int, childBUp []float64, parentBUp []float64) {
	for alpha := 0; alpha < f.Size && alpha < len(parentBUp); alpha++ {
		sum := 0.0
		for beta := 0; beta < f.Size && beta < len(childBUp); beta++ {
			sum += f.At(sigma, alpha, beta) * childBUp[beta]
		}
		parentBUp[alpha] += sum / 4
	}
}
