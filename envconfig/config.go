// Package envconfig reads the solver's configuration from environment
// variables, one function per setting, following the same pattern the
// rest of this module's ambient stack uses for logging and errors.
//
// Settings with an enumerated domain (iteration method, clustering
// strategy, basis type, error norm, shaft cull mode/strategy) are
// validated against their closed set; an unrecognized value is rejected
// with a suggestion for the closest valid spelling rather than silently
// falling back to a default, since configuration errors are treated as
// fatal at initialisation.
package envconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
)

// IterationMethod selects the push-pull formula and link ownership.
type IterationMethod int

const (
	Jacobi IterationMethod = iota
	GaussSeidel
	Southwell
)

func (m IterationMethod) String() string {
	switch m {
	case Jacobi:
		return "Jacobi"
	case GaussSeidel:
		return "GaussSeidel"
	case Southwell:
		return "Southwell"
	default:
		return "Unknown"
	}
}

var iterationMethods = map[string]IterationMethod{
	"Jacobi":      Jacobi,
	"GaussSeidel": GaussSeidel,
	"Southwell":   Southwell,
}

// ClusteringStrategy resolves intra-cluster directionality.
type ClusteringStrategy int

const (
	Isotropic ClusteringStrategy = iota
	Oriented
	ZVisibility
)

func (s ClusteringStrategy) String() string {
	switch s {
	case Isotropic:
		return "Isotropic"
	case Oriented:
		return "Oriented"
	case ZVisibility:
		return "ZVisibility"
	default:
		return "Unknown"
	}
}

var clusteringStrategies = map[string]ClusteringStrategy{
	"Isotropic":   Isotropic,
	"Oriented":    Oriented,
	"ZVisibility": ZVisibility,
}

// BasisType selects the maximum basis size: 1/3/6/10.
type BasisType int

const (
	Constant BasisType = iota
	Linear
	Quadratic
	Cubic
)

func (b BasisType) String() string {
	switch b {
	case Constant:
		return "Constant"
	case Linear:
		return "Linear"
	case Quadratic:
		return "Quadratic"
	case Cubic:
		return "Cubic"
	default:
		return "Unknown"
	}
}

// MaxBasisSize returns the fixed basis size for this type: 1, 3, 6, or 10.
func (b BasisType) MaxBasisSize() int {
	switch b {
	case Constant:
		return 1
	case Linear:
		return 3
	case Quadratic:
		return 6
	case Cubic:
		return 10
	default:
		return 1
	}
}

var basisTypes = map[string]BasisType{
	"Constant":  Constant,
	"Linear":    Linear,
	"Quadratic": Quadratic,
	"Cubic":     Cubic,
}

// ErrorNorm selects how the oracle's threshold is scaled.
type ErrorNorm int

const (
	RadianceError ErrorNorm = iota
	PowerError
)

func (n ErrorNorm) String() string {
	if n == PowerError {
		return "PowerError"
	}
	return "RadianceError"
}

var errorNorms = map[string]ErrorNorm{
	"RadianceError": RadianceError,
	"PowerError":    PowerError,
}

// ShaftCullMode controls when shaft culling runs at all.
type ShaftCullMode int

const (
	AlwaysDoShaftCulling ShaftCullMode = iota
	DoShaftCullingForRefinement
	NeverShaftCull
)

var shaftCullModes = map[string]ShaftCullMode{
	"AlwaysDoShaftCulling":       AlwaysDoShaftCulling,
	"DoShaftCullingForRefinement": DoShaftCullingForRefinement,
	"Never":                      NeverShaftCull,
}

func (m ShaftCullMode) String() string {
	switch m {
	case AlwaysDoShaftCulling:
		return "AlwaysDoShaftCulling"
	case DoShaftCullingForRefinement:
		return "DoShaftCullingForRefinement"
	default:
		return "Never"
	}
}

// ShaftCullStrategy controls the open-vs-keep policy for OVERLAP candidates.
type ShaftCullStrategy int

const (
	AlwaysOpen ShaftCullStrategy = iota
	KeepClosed
	OverlapOpen
)

var shaftCullStrategies = map[string]ShaftCullStrategy{
	"AlwaysOpen":  AlwaysOpen,
	"KeepClosed":  KeepClosed,
	"OverlapOpen": OverlapOpen,
}

func (s ShaftCullStrategy) String() string {
	switch s {
	case AlwaysOpen:
		return "AlwaysOpen"
	case KeepClosed:
		return "KeepClosed"
	default:
		return "OverlapOpen"
	}
}

// Var returns an environment variable's value with surrounding quotes and
// whitespace trimmed, matching this module's other env-var getters.
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(lookupEnv(key)), "\"'")
}

// IterationMethodSetting reads GALERKIN_ITERATION_METHOD (default Jacobi).
func IterationMethodSetting() (IterationMethod, error) {
	return parseEnum("GALERKIN_ITERATION_METHOD", Jacobi, iterationMethods)
}

// ClusteringStrategySetting reads GALERKIN_CLUSTERING_STRATEGY (default Isotropic).
func ClusteringStrategySetting() (ClusteringStrategy, error) {
	return parseEnum("GALERKIN_CLUSTERING_STRATEGY", Isotropic, clusteringStrategies)
}

// BasisTypeSetting reads GALERKIN_BASIS_TYPE (default Constant).
func BasisTypeSetting() (BasisType, error) {
	return parseEnum("GALERKIN_BASIS_TYPE", Constant, basisTypes)
}

// ErrorNormSetting reads GALERKIN_ERROR_NORM (default RadianceError).
func ErrorNormSetting() (ErrorNorm, error) {
	return parseEnum("GALERKIN_ERROR_NORM", RadianceError, errorNorms)
}

// ShaftCullModeSetting reads GALERKIN_SHAFT_CULL_MODE (default DoShaftCullingForRefinement).
func ShaftCullModeSetting() (ShaftCullMode, error) {
	return parseEnum("GALERKIN_SHAFT_CULL_MODE", DoShaftCullingForRefinement, shaftCullModes)
}

// ShaftCullStrategySetting reads GALERKIN_SHAFT_CULL_STRATEGY (default OverlapOpen).
func ShaftCullStrategySetting() (ShaftCullStrategy, error) {
	return parseEnum("GALERKIN_SHAFT_CULL_STRATEGY", OverlapOpen, shaftCullStrategies)
}

// Clustered reads GALERKIN_CLUSTERED (default false).
func Clustered() bool { return BoolWithDefault("GALERKIN_CLUSTERED")(false) }

// ImportanceDriven reads GALERKIN_IMPORTANCE_DRIVEN (default false).
func ImportanceDriven() bool { return BoolWithDefault("GALERKIN_IMPORTANCE_DRIVEN")(false) }

// Hierarchical reads GALERKIN_HIERARCHICAL (default true); when false the
// oracle always returns ACCURATE_ENOUGH and no refinement occurs.
func Hierarchical() bool { return BoolWithDefault("GALERKIN_HIERARCHICAL")(true) }

// ExactVisibility reads GALERKIN_EXACT_VISIBILITY (default false).
func ExactVisibility() bool { return BoolWithDefault("GALERKIN_EXACT_VISIBILITY")(false) }

// MultiResolutionVisibility reads GALERKIN_MULTIRESOLUTION_VISIBILITY (default false).
func MultiResolutionVisibility() bool {
	return BoolWithDefault("GALERKIN_MULTIRESOLUTION_VISIBILITY")(false)
}

// RelMinElemArea reads GALERKIN_REL_MIN_ELEM_AREA, a fraction in [0,1]
// below which subdivision refuses to go. Default 1e-6.
func RelMinElemArea() (float64, error) {
	return parseFraction("GALERKIN_REL_MIN_ELEM_AREA", 1e-6)
}

// RelLinkErrorThreshold reads GALERKIN_REL_LINK_ERROR_THRESHOLD, a
// positive float. Default 0.05.
func RelLinkErrorThreshold() (float64, error) {
	return parsePositiveFloat("GALERKIN_REL_LINK_ERROR_THRESHOLD", 0.05)
}

// ReceiverCubatureDegree reads GALERKIN_RECEIVER_CUBATURE_DEGREE (default 4).
func ReceiverCubatureDegree() (int, error) {
	return parseDegree("GALERKIN_RECEIVER_CUBATURE_DEGREE", 4)
}

// SourceCubatureDegree reads GALERKIN_SOURCE_CUBATURE_DEGREE (default 2).
func SourceCubatureDegree() (int, error) {
	return parseDegree("GALERKIN_SOURCE_CUBATURE_DEGREE", 2)
}

// ClusterCubatureDegree reads GALERKIN_CLUSTER_CUBATURE_DEGREE (default 2).
func ClusterCubatureDegree() (int, error) {
	return parseDegree("GALERKIN_CLUSTER_CUBATURE_DEGREE", 2)
}

func parseDegree(key string, def int) (int, error) {
	s := Var(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 10 {
		return 0, fmt.Errorf("%s: invalid cubature degree %q, expected an integer in [1,10]: %w", key, s, ErrInvalidConfig)
	}
	return n, nil
}

func parseFraction(key string, def float64) (float64, error) {
	s := Var(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 || f > 1 {
		return 0, fmt.Errorf("%s: invalid fraction %q, expected a float in [0,1]: %w", key, s, ErrInvalidConfig)
	}
	return f, nil
}

func parsePositiveFloat(key string, def float64) (float64, error) {
	s := Var(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return 0, fmt.Errorf("%s: invalid value %q, expected a positive float: %w", key, s, ErrInvalidConfig)
	}
	return f, nil
}

// parseEnum looks up a string env var in a closed set of valid spellings.
// On mismatch it suggests the closest valid spelling by Levenshtein
// distance, since a typo'd enum is the single most common configuration
// error in practice.
func parseEnum[T any](key string, def T, table map[string]T) (T, error) {
	s := Var(key)
	if s == "" {
		return def, nil
	}
	if v, ok := table[s]; ok {
		return v, nil
	}

	best, bestDist := "", -1
	for candidate := range table {
		d := levenshtein.ComputeDistance(s, candidate)
		if bestDist == -1 || d < bestDist {
			best, bestDist = candidate, d
		}
	}

	var zero T
	if bestDist >= 0 && bestDist <= len(s)/2+2 {
		return zero, fmt.Errorf("%s: unrecognized value %q, did you mean %q?: %w", key, s, best, ErrInvalidConfig)
	}
	return zero, fmt.Errorf("%s: unrecognized value %q: %w", key, s, ErrInvalidConfig)
}
