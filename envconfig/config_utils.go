package envconfig

import (
	"fmt"
	"os"
	"strconv"
)

// lookupEnv is the single os.Getenv call site, kept separate so tests can
// substitute it without mutating the process environment.
var lookupEnv = os.Getenv

// BoolWithDefault returns a function that reads a boolean env var, falling
// back to defaultValue when unset. An unparseable value is treated as
// true, without an error or a log line.
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		s := Var(k)
		if s == "" {
			return defaultValue
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return true
		}
		return b
	}
}

// EnvVar describes one environment variable for documentation/reporting
// purposes (surfaced in the CLI driver's `run` help text).
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// Config is the fully resolved, immutable set of settings for one
// solver run. Resolve validates every enum exhaustively; once built, a
// Config is passed by value into internal/galerkin.Solver and never
// re-read from the environment.
type Config struct {
	IterationMethod           IterationMethod
	Clustered                 bool
	ClusteringStrategy        ClusteringStrategy
	ImportanceDriven          bool
	Hierarchical              bool
	ExactVisibility           bool
	MultiResolutionVisibility bool
	ShaftCullMode             ShaftCullMode
	ShaftCullStrategy         ShaftCullStrategy
	BasisType                 BasisType
	ErrorNorm                 ErrorNorm
	RelMinElemArea            float64
	RelLinkErrorThreshold     float64
	ReceiverCubatureDegree    int
	SourceCubatureDegree      int
	ClusterCubatureDegree     int
}

// Resolve reads every configuration value from the environment and
// validates it. A configuration error here is fatal at initialisation
// and is returned, never logged-and-exited, since this package has
// no process of its own.
func Resolve() (Config, error) {
	var cfg Config
	var err error

	if cfg.IterationMethod, err = IterationMethodSetting(); err != nil {
		return Config{}, err
	}
	cfg.Clustered = Clustered()
	if cfg.ClusteringStrategy, err = ClusteringStrategySetting(); err != nil {
		return Config{}, err
	}
	cfg.ImportanceDriven = ImportanceDriven()
	cfg.Hierarchical = Hierarchical()
	cfg.ExactVisibility = ExactVisibility()
	cfg.MultiResolutionVisibility = MultiResolutionVisibility()
	if cfg.ShaftCullMode, err = ShaftCullModeSetting(); err != nil {
		return Config{}, err
	}
	if cfg.ShaftCullStrategy, err = ShaftCullStrategySetting(); err != nil {
		return Config{}, err
	}
	if cfg.BasisType, err = BasisTypeSetting(); err != nil {
		return Config{}, err
	}
	if cfg.ErrorNorm, err = ErrorNormSetting(); err != nil {
		return Config{}, err
	}
	if cfg.RelMinElemArea, err = RelMinElemArea(); err != nil {
		return Config{}, err
	}
	if cfg.RelLinkErrorThreshold, err = RelLinkErrorThreshold(); err != nil {
		return Config{}, err
	}
	if cfg.ReceiverCubatureDegree, err = ReceiverCubatureDegree(); err != nil {
		return Config{}, err
	}
	if cfg.SourceCubatureDegree, err = SourceCubatureDegree(); err != nil {
		return Config{}, err
	}
	if cfg.ClusterCubatureDegree, err = ClusterCubatureDegree(); err != nil {
		return Config{}, err
	}

	if cfg.ReceiverCubatureDegree < cfg.SourceCubatureDegree {
		return Config{}, fmt.Errorf("GALERKIN_RECEIVER_CUBATURE_DEGREE (%d) must be >= GALERKIN_SOURCE_CUBATURE_DEGREE (%d): %w",
			cfg.ReceiverCubatureDegree, cfg.SourceCubatureDegree, ErrInvalidConfig)
	}

	return cfg, nil
}

// AsMap reports every resolved setting with its description, for the CLI
// driver's `run` help text and (through Values) its `config` table.
func (c Config) AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"GALERKIN_ITERATION_METHOD":            {"GALERKIN_ITERATION_METHOD", c.IterationMethod, "Jacobi, GaussSeidel, or Southwell"},
		"GALERKIN_CLUSTERED":                   {"GALERKIN_CLUSTERED", c.Clustered, "Seed iteration from a single root-cluster self-link"},
		"GALERKIN_CLUSTERING_STRATEGY":         {"GALERKIN_CLUSTERING_STRATEGY", c.ClusteringStrategy, "Isotropic, Oriented, or ZVisibility"},
		"GALERKIN_IMPORTANCE_DRIVEN":           {"GALERKIN_IMPORTANCE_DRIVEN", c.ImportanceDriven, "Add a potential pass and reweight the error threshold"},
		"GALERKIN_HIERARCHICAL":                {"GALERKIN_HIERARCHICAL", c.Hierarchical, "Allow oracle-driven subdivision"},
		"GALERKIN_EXACT_VISIBILITY":            {"GALERKIN_EXACT_VISIBILITY", c.ExactVisibility, "Use ray-level visibility for every cubature pair"},
		"GALERKIN_MULTIRESOLUTION_VISIBILITY":  {"GALERKIN_MULTIRESOLUTION_VISIBILITY", c.MultiResolutionVisibility, "Enable the hierarchical extinction approximation"},
		"GALERKIN_SHAFT_CULL_MODE":             {"GALERKIN_SHAFT_CULL_MODE", c.ShaftCullMode, "AlwaysDoShaftCulling, DoShaftCullingForRefinement, or Never"},
		"GALERKIN_SHAFT_CULL_STRATEGY":         {"GALERKIN_SHAFT_CULL_STRATEGY", c.ShaftCullStrategy, "AlwaysOpen, KeepClosed, or OverlapOpen"},
		"GALERKIN_BASIS_TYPE":                  {"GALERKIN_BASIS_TYPE", c.BasisType, "Constant, Linear, Quadratic, or Cubic"},
		"GALERKIN_ERROR_NORM":                  {"GALERKIN_ERROR_NORM", c.ErrorNorm, "RadianceError or PowerError"},
		"GALERKIN_REL_MIN_ELEM_AREA":           {"GALERKIN_REL_MIN_ELEM_AREA", c.RelMinElemArea, "Subdivision floor as a fraction of total scene area"},
		"GALERKIN_REL_LINK_ERROR_THRESHOLD":    {"GALERKIN_REL_LINK_ERROR_THRESHOLD", c.RelLinkErrorThreshold, "Oracle accuracy threshold"},
		"GALERKIN_RECEIVER_CUBATURE_DEGREE":    {"GALERKIN_RECEIVER_CUBATURE_DEGREE", c.ReceiverCubatureDegree, "Cubature rule degree for the receiver side"},
		"GALERKIN_SOURCE_CUBATURE_DEGREE":      {"GALERKIN_SOURCE_CUBATURE_DEGREE", c.SourceCubatureDegree, "Cubature rule degree for the source side"},
		"GALERKIN_CLUSTER_CUBATURE_DEGREE":     {"GALERKIN_CLUSTER_CUBATURE_DEGREE", c.ClusterCubatureDegree, "Cubature rule degree for cluster (3D) sampling"},
	}
}

// Values reports every resolved setting as a string, for simple rendering.
func (c Config) Values() map[string]string {
	vals := make(map[string]string, len(c.AsMap()))
	for k, v := range c.AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
