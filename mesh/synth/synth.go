// Package synth builds labelled bifurcation meshes with the native cell ordering the
// reordering pipeline expects: branch-major, then ring, then quad, and for the fine
// grids, row-major cells inside each quad.
package synth

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/types"
)

const (
	LabelArray = "branchId"
	FieldArray = "initialATP"
)

type Config struct {
	Branches     int
	Rings        int
	QuadsPerRing int
	Radius       float64
	RingLength   float64
	// Half angle between the daughter branches, degrees
	BranchAngle float64
}

func DefaultConfig() Config {
	return Config{
		Branches:     3,
		Rings:        3,
		QuadsPerRing: 12,
		Radius:       0.382,
		RingLength:   0.5,
		BranchAngle:  30,
	}
}

func (cfg Config) Validate() error {
	switch {
	case cfg.Branches < 1:
		return errors.Wrapf(types.ErrConfiguration, "synthetic mesh needs at least one branch, got %d", cfg.Branches)
	case cfg.Rings < 1 || cfg.QuadsPerRing < 3:
		return errors.Wrapf(types.ErrConfiguration, "synthetic mesh needs rings >= 1 and quads per ring >= 3, got %d, %d",
			cfg.Rings, cfg.QuadsPerRing)
	case cfg.Radius <= 0 || cfg.RingLength <= 0:
		return errors.Wrapf(types.ErrConfiguration, "radius and ring length must be positive")
	}
	return nil
}

// frame is the cylinder frame of one branch
type frame struct {
	origin, axis, u, v r3.Vec
}

func (cfg Config) frame(label int) (f frame) {
	var (
		length = float64(cfg.Rings) * cfg.RingLength
		theta  = cfg.BranchAngle * math.Pi / 180
	)
	f.v = r3.Vec{Z: 1}
	switch {
	case label == 0:
		f.origin = r3.Vec{X: -length}
		f.axis = r3.Vec{X: 1}
	default:
		// daughters alternate left and right, fanning out with the label
		side := 1.0
		if label%2 == 0 {
			side = -1
		}
		ang := side * theta * float64((label+1)/2)
		f.axis = r3.Vec{X: math.Cos(ang), Y: math.Sin(ang)}
	}
	f.u = r3.Unit(r3.Cross(f.v, f.axis))
	return
}

// point is vertex (ring boundary k, angular position j) of a branch; j may equal qpr
func (cfg Config) point(f frame, k, j float64) r3.Vec {
	theta := 2 * math.Pi * j / float64(cfg.QuadsPerRing)
	radial := r3.Add(r3.Scale(math.Cos(theta), f.u), r3.Scale(math.Sin(theta), f.v))
	return r3.Add(f.origin, r3.Add(r3.Scale(k*cfg.RingLength, f.axis), r3.Scale(cfg.Radius, radial)))
}

// TaskMesh builds the coarse quad mesh with one branch label per cell. Each branch
// has its own (rings+1)*(quadsPerRing+1) points, the angular seam is duplicated.
func TaskMesh(cfg Config) (pd *mesh.PolyData, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	var (
		q      = cfg.QuadsPerRing
		labels []float64
	)
	pd = mesh.NewPolyData()
	for label := 0; label < cfg.Branches; label++ {
		var (
			f    = cfg.frame(label)
			base = len(pd.Points)
		)
		for k := 0; k <= cfg.Rings; k++ {
			for j := 0; j <= q; j++ {
				pd.Points = append(pd.Points, cfg.point(f, float64(k), float64(j)))
			}
		}
		p := func(k, j int) int { return base + k*(q+1) + j }
		for k := 0; k < cfg.Rings; k++ {
			for j := 0; j < q; j++ {
				pd.Polys = append(pd.Polys, []int{p(k, j), p(k, j+1), p(k+1, j+1), p(k+1, j)})
				labels = append(labels, float64(label))
			}
		}
	}
	pd.AddCellArray(&mesh.DataArray{Name: LabelArray, Components: 1, Values: labels})
	pd.CellScalars = LabelArray
	return
}

// FineMesh subdivides every coarse quad, in native quad order, into rows x cols cells.
// Each quad carries its own (rows+1)*(cols+1) points.
func FineMesh(cfg Config, rows, cols int) (pd *mesh.PolyData, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	if rows < 1 || cols < 1 {
		return nil, errors.Wrapf(types.ErrConfiguration, "fine grid must be at least 1x1, got %dx%d", rows, cols)
	}
	pd = mesh.NewPolyData()
	for label := 0; label < cfg.Branches; label++ {
		f := cfg.frame(label)
		for k := 0; k < cfg.Rings; k++ {
			for j := 0; j < cfg.QuadsPerRing; j++ {
				base := len(pd.Points)
				for a := 0; a <= rows; a++ {
					for b := 0; b <= cols; b++ {
						kk := float64(k) + float64(a)/float64(rows)
						jj := float64(j) + float64(b)/float64(cols)
						pd.Points = append(pd.Points, cfg.point(f, kk, jj))
					}
				}
				p := func(a, b int) int { return base + a*(cols+1) + b }
				for a := 0; a < rows; a++ {
					for b := 0; b < cols; b++ {
						pd.Polys = append(pd.Polys, []int{p(a, b), p(a, b+1), p(a+1, b+1), p(a+1, b)})
					}
				}
			}
		}
	}
	return
}

// FieldFunc gives the field value of a fine cell from its native id and centroid
type FieldFunc func(cellID int, centroid r3.Vec) float64

// ATPProfile is a smooth initial ATP distribution rising along the x axis
func ATPProfile(_ int, c r3.Vec) float64 {
	return 0.5 + 0.3*math.Tanh(c.X)
}

// NativeID uses the cell id itself as the field value, which makes reordering visible
func NativeID(cellID int, _ r3.Vec) float64 {
	return float64(cellID)
}

// FieldMesh is the fine mesh at the given resolution carrying a per-cell scalar field
func FieldMesh(cfg Config, rows, cols int, fn FieldFunc) (pd *mesh.PolyData, err error) {
	if pd, err = FineMesh(cfg, rows, cols); err != nil {
		return
	}
	vals := make([]float64, len(pd.Polys))
	for i := range pd.Polys {
		vals[i] = fn(i, pd.PolyCentroid(i))
	}
	pd.AddCellArray(&mesh.DataArray{Name: FieldArray, Components: 1, Values: vals})
	pd.CellScalars = FieldArray
	return
}
