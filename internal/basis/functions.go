package basis

import (
	"math"

	"github.com/rpkgo/galerkin/envconfig"
	"gonum.org/v1/gonum/mat"
)

// Shape distinguishes the two standard domains a basis can live on.
type Shape int

const (
	Triangle Shape = iota
	Quad
)

// exponent is one term u^I * v^J of the monomial basis.
type exponent struct{ I, J int }

// monomialsUpToDegree lists every (i,j) with i+j <= degree, in the fixed
// order: all degree-0 terms, then degree-1, etc. This ordering is what
// gives basis sizes 1, 3, 6, 10 for degree 0..3 on either shape, per the
// fixed basisSize table.
func monomialsUpToDegree(degree int) []exponent {
	var terms []exponent
	for d := 0; d <= degree; d++ {
		for i := 0; i <= d; i++ {
			terms = append(terms, exponent{I: i, J: d - i})
		}
	}
	return terms
}

func degreeForSize(size int) int {
	switch size {
	case 1:
		return 0
	case 3:
		return 1
	case 6:
		return 2
	case 10:
		return 3
	default:
		return 0
	}
}

// Set is a precomputed orthonormal basis on one Shape, up to one of the
// four fixed sizes {1,3,6,10}. Evaluate and the push-pull filter table
// are the only things downstream code needs from it.
type Set struct {
	Shape     Shape
	Size      int
	terms     []exponent
	coeffs    *mat.Dense // Size x Size: row alpha gives the monomial coefficients of phi_alpha
	rule      Rule
}

// cache keyed by (shape, size); basis tables are expensive to build
// (a Gram-Schmidt pass plus a quadrature-evaluated push-pull filter) and
// never mutated once built, so every element referencing the same
// (shape, basisSize) pair shares one Set.
var cache = map[[2]int]*Set{}

// Build returns the orthonormal basis of the given size on shape,
// computing it on first use and caching it thereafter.
func Build(shape Shape, size int) *Set {
	key := [2]int{int(shape), size}
	if s, ok := cache[key]; ok {
		return s
	}

	degree := degreeForSize(size)
	terms := monomialsUpToDegree(degree)

	var rule Rule
	// Integrate exactly enough to resolve products of two degree-`degree`
	// monomials (total degree 2*degree) during Gram-Schmidt.
	quadratureDegree := 2*degree + 2
	if shape == Triangle {
		rule = TriangleRule(quadratureDegree)
	} else {
		rule = QuadRule(quadratureDegree)
	}

	coeffs := gramSchmidt(terms, rule)

	s := &Set{Shape: shape, Size: size, terms: terms, coeffs: coeffs, rule: rule}
	cache[key] = s
	return s
}

// monomial evaluates u^I * v^J.
func (e exponent) eval(u, v float64) float64 {
	r := 1.0
	for i := 0; i < e.I; i++ {
		r *= u
	}
	for j := 0; j < e.J; j++ {
		r *= v
	}
	return r
}

func innerProduct(a, b func(u, v float64) float64, rule Rule) float64 {
	sum := 0.0
	for k, n := range rule.Nodes {
		sum += rule.Weights[k] * a(n[0], n[1]) * b(n[0], n[1])
	}
	return sum
}

// gramSchmidt orthonormalizes the monomial sequence under the rule's
// quadrature inner product, returning the Size x Size matrix whose row
// alpha holds phi_alpha's coefficients against the monomial basis.
func gramSchmidt(terms []exponent, rule Rule) *mat.Dense {
	n := len(terms)
	coeffs := mat.NewDense(n, n, nil)

	monomialAt := func(row *mat.Dense, r int, u, v float64) float64 {
		sum := 0.0
		for j, t := range terms {
			sum += row.At(r, j) * t.eval(u, v)
		}
		return sum
	}

	for alpha := 0; alpha < n; alpha++ {
		// Start from the raw monomial.
		coeffs.Set(alpha, alpha, 1)

		phiAlpha := func(u, v float64) float64 { return monomialAt(coeffs, alpha, u, v) }

		// Subtract projections onto every earlier, already-orthonormal phi_beta.
		for beta := 0; beta < alpha; beta++ {
			phiBeta := func(u, v float64) float64 { return monomialAt(coeffs, beta, u, v) }
			proj := innerProduct(phiAlpha, phiBeta, rule)
			for j := 0; j <= alpha; j++ {
				coeffs.Set(alpha, j, coeffs.At(alpha, j)-proj*coeffs.At(beta, j))
			}
		}

		norm2 := innerProduct(phiAlpha, phiAlpha, rule)
		if norm2 < 1e-12 {
			// Degenerate-geometry style recovery: a basis term that
			// vanishes under quadrature (shouldn't happen for these fixed
			// low-degree tables, but keeps Build total rather than
			// panicking) is left as the zero functional.
			continue
		}
		scale := 1 / math.Sqrt(norm2)
		for j := 0; j <= alpha; j++ {
			coeffs.Set(alpha, j, coeffs.At(alpha, j)*scale)
		}
	}

	return coeffs
}

// Evaluate returns phi_alpha(u,v).
func (s *Set) Evaluate(alpha int, u, v float64) float64 {
	sum := 0.0
	for j, t := range s.terms {
		sum += s.coeffs.At(alpha, j) * t.eval(u, v)
	}
	return sum
}

// ShapeFor maps a runtime "is this a triangle" flag to the Shape enum,
// the one place callers outside this package need to construct one.
func ShapeFor(isTriangle bool) Shape {
	if isTriangle {
		return Triangle
	}
	return Quad
}

// SizeFor returns the configured maximum basis size.
func SizeFor(bt envconfig.BasisType) int { return bt.MaxBasisSize() }
