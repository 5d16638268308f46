package basis

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Rule is a weighted-sum numerical integration rule over a standard
// domain: a set of (u,v) nodes in [0,1]^2 (the third coordinate is
// unused for surface rules, populated for cluster/3D rules) with
// strictly positive weights summing to the domain's measure: 1 for the
// unit square and cube, 1/2 for the standard triangle.
type Rule struct {
	Nodes   [][3]float64
	Weights []float64
}

// gaussLegendre01 returns the n-point Gauss-Legendre nodes and weights on
// [0,1], built via the Golub-Welsch algorithm: the nodes are the
// eigenvalues of the symmetric tridiagonal Jacobi matrix for Legendre
// polynomials, and each weight is twice the squared first component of
// the corresponding normalized eigenvector.
func gaussLegendre01(n int) (nodes, weights []float64) {
	if n < 1 {
		n = 1
	}
	jacobi := mat.NewSymDense(n, nil)
	for i := 0; i < n-1; i++ {
		k := float64(i + 1)
		b := k / math.Sqrt(4*k*k-1)
		jacobi.SetSym(i, i+1, b)
	}

	var eig mat.EigenSym
	ok := eig.Factorize(jacobi, true)
	if !ok {
		// Degenerate factorization (n==1 or numerical failure): fall back
		// to the single-point midpoint rule, which is exact for n==1.
		return []float64{0.5}, []float64{1}
	}

	values := eig.Values(nil)
	var vectors mat.Dense
	eig.VectorsTo(&vectors)

	type pair struct{ x, w float64 }
	pairs := make([]pair, n)
	for i := 0; i < n; i++ {
		v0 := vectors.At(0, i)
		w := 2 * v0 * v0
		x := (values[i] + 1) / 2 // map [-1,1] -> [0,1]
		pairs[i] = pair{x, w / 2}  // halve weight for the domain-length-1 interval
	}
	// insertion sort by node position: n is always small (<=8) here.
	for i := 1; i < n; i++ {
		j := i
		for j > 0 && pairs[j-1].x > pairs[j].x {
			pairs[j-1], pairs[j] = pairs[j], pairs[j-1]
			j--
		}
	}

	nodes = make([]float64, n)
	weights = make([]float64, n)
	for i, p := range pairs {
		nodes[i], weights[i] = p.x, p.w
	}
	return nodes, weights
}

// pointsForDegree maps a cubature "degree" setting (1..10) to the
// number of 1D Gauss points needed to integrate a
// polynomial of that degree exactly (degree 2n-1 exactness for n
// points), with a small cushion for the basis-function products this
// rule is also asked to integrate.
func pointsForDegree(degree int) int {
	n := (degree + 3) / 2
	if n < 1 {
		n = 1
	}
	if n > 8 {
		n = 8
	}
	return n
}

// QuadRule returns a tensor-product Gauss-Legendre rule on the unit
// square [0,1]^2, exact for the given polynomial degree.
func QuadRule(degree int) Rule {
	n := pointsForDegree(degree)
	nodes1D, w1D := gaussLegendre01(n)

	r := Rule{}
	for i, u := range nodes1D {
		for j, v := range nodes1D {
			r.Nodes = append(r.Nodes, [3]float64{u, v, 0})
			r.Weights = append(r.Weights, w1D[i]*w1D[j])
		}
	}
	return r
}

// TriangleRule returns a rule on the standard triangle {(u,v): u,v>=0,
// u+v<=1}, built by collapsing a tensor-product square rule through the
// Duffy transform (u,v) = (s, t*(1-s)), whose Jacobian (1-s) is folded
// into the weights. This keeps triangle and quad cubature on one
// algorithmic footing instead of needing a separate triangle-specific
// point table.
func TriangleRule(degree int) Rule {
	n := pointsForDegree(degree + 1) // Duffy's Jacobian raises the needed degree by one
	nodes1D, w1D := gaussLegendre01(n)

	r := Rule{}
	for i, s := range nodes1D {
		for j, t := range nodes1D {
			u := s
			v := t * (1 - s)
			jac := 1 - s
			r.Nodes = append(r.Nodes, [3]float64{u, v, 0})
			r.Weights = append(r.Weights, w1D[i]*w1D[j]*jac)
		}
	}
	return r
}

// ClusterRule returns a tensor-product Gauss-Legendre rule on the unit
// cube [0,1]^3, used for 3D cubature over a cluster's AABB.
func ClusterRule(degree int) Rule {
	n := pointsForDegree(degree)
	nodes1D, w1D := gaussLegendre01(n)

	r := Rule{}
	for i, x := range nodes1D {
		for j, y := range nodes1D {
			for k, z := range nodes1D {
				r.Nodes = append(r.Nodes, [3]float64{x, y, z})
				r.Weights = append(r.Weights, w1D[i]*w1D[j]*w1D[k])
			}
		}
	}
	return r
}
