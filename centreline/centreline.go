// Package centreline synthesises bifurcating vessel centrelines from a nested list
// description of the tree. The tree grows from the origin along +x, left daughters
// turn towards +y and right daughters towards -y.
package centreline

import (
	"fmt"
	"io"
	"math"

	"github.com/emirpasic/gods/stacks/arraystack"
	"github.com/pkg/errors"
	"github.com/plan-systems/klog"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/types"
)

const RadiiArray = "radiiScalars"

// Direction of a segment relative to its parent
const (
	Trunk = 0.
	Left  = 1.
	Right = -1.
)

// Segment is one polyline of the tree
type Segment struct {
	ID     int
	Parent int // -1 for the trunk
	Length float64
	// Angle in radians, measured clockwise from +y. Right daughters use pi - angle.
	Angle     float64
	Direction float64
	PointIDs  []int
}

// Centreline is the generated tree: segments in depth first order, left before right
type Centreline struct {
	Segments []*Segment
	Points   []r3.Vec
	Radii    []float64
}

type workItem struct {
	tree      *TreeExpr
	parent    int
	direction float64
}

// Build generates the points of every segment. A daughter starts at the last point of
// its parent and shares that point id.
func Build(tree *TreeExpr, cfg Config) (cl *Centreline, err error) {
	if err = cfg.Validate(); err != nil {
		return
	}
	var (
		stack = arraystack.New()
		// planar end point of every segment, daughters start there
		ends []r3.Vec
	)
	cl = &Centreline{}
	stack.Push(workItem{tree: tree, parent: -1, direction: Trunk})
	for !stack.Empty() {
		v, _ := stack.Pop()
		item := v.(workItem)
		length, angleDeg, hasAngle := item.tree.Domain.values()
		if !hasAngle {
			angleDeg = cfg.BranchAngle
		}
		if length <= 0 {
			return nil, errors.Wrapf(types.ErrConfiguration, "segment %d has length %v", len(cl.Segments), length)
		}
		seg := &Segment{
			ID:        len(cl.Segments),
			Parent:    item.parent,
			Length:    length,
			Angle:     angleDeg * math.Pi / 180,
			Direction: item.direction,
		}
		angle := seg.Angle
		if seg.Direction < 0 {
			angle = math.Pi - angle
		}
		var first r3.Vec
		if seg.Parent >= 0 {
			first = ends[seg.Parent]
		}
		var (
			n   = int(length/cfg.Step) + 1
			dx  = 1.
			dy  = seg.Direction
			end r3.Vec
		)
		if seg.Direction != Trunk {
			dx, dy = math.Sin(angle), math.Cos(angle)*seg.Direction
		}
		for pID := 0; pID < n; pID++ {
			d := cfg.Step * float64(pID)
			end = r3.Vec{X: first.X + dx*d, Y: first.Y + dy*d, Z: first.Z}
			if pID == 0 && seg.Parent >= 0 {
				parent := cl.Segments[seg.Parent].PointIDs
				seg.PointIDs = append(seg.PointIDs, parent[len(parent)-1])
				continue
			}
			seg.PointIDs = append(seg.PointIDs, len(cl.Points))
			cl.Points = append(cl.Points, cfg.place(end))
		}
		cl.Segments = append(cl.Segments, seg)
		ends = append(ends, end)
		// right is pushed first so the left subtree is generated first
		if right := item.tree.Right.subtree(); right != nil {
			stack.Push(workItem{tree: right, parent: seg.ID, direction: Right})
		}
		if left := item.tree.Left.subtree(); left != nil {
			stack.Push(workItem{tree: left, parent: seg.ID, direction: Left})
		}
	}
	if cfg.SphereRadius > 0 && len(cl.Points) > 0 {
		origin := cl.Points[0]
		for i := range cl.Points {
			cl.Points[i] = r3.Sub(cl.Points[i], origin)
		}
	}
	if cfg.Taper {
		cl.Radii = cl.murray(cfg)
	} else {
		cl.Radii = make([]float64, len(cl.Points))
		for i := range cl.Radii {
			cl.Radii[i] = cfg.RadiusBase
		}
	}
	klog.V(1).Infof("centreline: %d segments, %d points", len(cl.Segments), len(cl.Points))
	return
}

// place maps a planar point onto the sphere, if one is configured
func (cfg Config) place(p r3.Vec) r3.Vec {
	R := cfg.SphereRadius
	if R <= 0 {
		return p
	}
	var (
		lon = p.X / R
		lat = 2*math.Atan(math.Exp(p.Y/R)) - math.Pi/2
	)
	return r3.Vec{
		X: R * math.Cos(lat) * math.Cos(lon),
		Y: R * math.Cos(lat) * math.Sin(lon),
		Z: R * math.Sin(lat),
	}
}

// murray assigns the base radius along the trunk. Every daughter shrinks from its
// parent's radius r to r/cbrt(2) over DecreaseLength*r, exponentially, then stays constant.
func (cl *Centreline) murray(cfg Config) (radii []float64) {
	radii = make([]float64, len(cl.Points))
	decrease := cfg.DecreaseLength / cfg.Step
	for _, seg := range cl.Segments {
		if seg.Parent < 0 {
			for _, id := range seg.PointIDs {
				radii[id] = cfg.RadiusBase
			}
			continue
		}
		var (
			parent   = radii[seg.PointIDs[0]]
			child    = math.Cbrt(parent * parent * parent / 2)
			distance = math.Min(parent*decrease, float64(len(seg.PointIDs)))
			k        = (math.Log(child) - math.Log(parent)) / distance
		)
		for i, id := range seg.PointIDs[1:] {
			step := float64(i + 1)
			if step < distance {
				radii[id] = parent * math.Exp(k*step)
			} else {
				radii[id] = child
			}
		}
	}
	return
}

// PolyData returns the centreline as polylines with the radii as active point scalars
func (cl *Centreline) PolyData() *mesh.PolyData {
	pd := mesh.NewPolyData()
	pd.Points = cl.Points
	for _, seg := range cl.Segments {
		pd.Lines = append(pd.Lines, seg.PointIDs)
	}
	pd.AddPointArray(&mesh.DataArray{Name: RadiiArray, Components: 1, Values: cl.Radii})
	pd.PointScalars = RadiiArray
	return pd
}

func (cl *Centreline) Print(w io.Writer) {
	fmt.Fprintf(w, "Number of points in the centreline: %d\n", len(cl.Points))
	for _, seg := range cl.Segments {
		fmt.Fprintf(w, "segment %3d parent %3d length %8.3f angle %6.1f points %d\n",
			seg.ID, seg.Parent, seg.Length, seg.Angle*180/math.Pi, len(seg.PointIDs))
	}
}
