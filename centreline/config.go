package centreline

import (
	"os"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"

	"github.com/notargets/vesselmap/mesh/writers"
	"github.com/notargets/vesselmap/types"
)

// Config controls how a tree is turned into points
type Config struct {
	Tree string `json:"tree"`
	// Distance between consecutive points
	Step float64 `json:"step"`
	// Angle in degrees of daughters given by length only
	BranchAngle float64 `json:"branchAngle"`
	// Zero keeps the tree in the XY plane
	SphereRadius float64 `json:"sphereRadius"`
	RadiusBase   float64 `json:"radiusBase"`
	// Taper daughters by Murray's law instead of keeping RadiusBase everywhere
	Taper          bool    `json:"taper"`
	DecreaseLength float64 `json:"decreaseLength"`
}

// DefaultConfig is the bifurcation used for the c216 meshes
func DefaultConfig() Config {
	return Config{
		Tree:           "[1.7, [(1.7, 60), None, None], [(1.7, 120), None, None]]",
		Step:           0.1,
		BranchAngle:    45,
		RadiusBase:     0.382,
		Taper:          true,
		DecreaseLength: 3,
	}
}

func (cfg Config) Validate() error {
	switch {
	case cfg.Step <= 0:
		return errors.Wrapf(types.ErrConfiguration, "centreline step must be positive, got %v", cfg.Step)
	case cfg.RadiusBase <= 0:
		return errors.Wrapf(types.ErrConfiguration, "base radius must be positive, got %v", cfg.RadiusBase)
	case cfg.SphereRadius < 0:
		return errors.Wrapf(types.ErrConfiguration, "sphere radius must not be negative, got %v", cfg.SphereRadius)
	case cfg.Taper && cfg.DecreaseLength <= 0:
		return errors.Wrapf(types.ErrConfiguration, "decrease length must be positive, got %v", cfg.DecreaseLength)
	}
	return nil
}

// ReadConfig overlays a YAML file onto the defaults
func ReadConfig(filename string) (cfg Config, err error) {
	var data []byte
	cfg = DefaultConfig()
	if data, err = os.ReadFile(filename); err != nil {
		return cfg, types.IOError(err, "reading %s", filename)
	}
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, errors.Wrapf(types.ErrConfiguration, "%s: %v", filename, err)
	}
	return
}

// Generate parses the configured tree, builds it and writes it to filename
func Generate(cfg Config, filename string) (cl *Centreline, err error) {
	var tree *TreeExpr
	if tree, err = ParseTree(cfg.Tree); err != nil {
		return
	}
	if cl, err = Build(tree, cfg); err != nil {
		return
	}
	if err = writers.WriteMeshFile(filename, cl.PolyData()); err != nil {
		return nil, err
	}
	return
}
