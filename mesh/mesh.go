package mesh

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/vesselmap/types"
)

// CellKind represents the polydata cell sections
type CellKind int

const (
	Vertex CellKind = iota
	Line
	Polygon
)

func (k CellKind) String() string {
	return [...]string{"Vertex", "Line", "Polygon"}[k]
}

// DataArray is a named point or cell attribute, stored tuple-major
type DataArray struct {
	Name       string
	Components int
	Values     []float64
}

// NumTuples returns the number of tuples held by the array
func (da *DataArray) NumTuples() int {
	if da.Components <= 1 {
		return len(da.Values)
	}
	return len(da.Values) / da.Components
}

// Ints converts a single component array to integers, rejecting non integral values
func (da *DataArray) Ints() (I []int, err error) {
	if da.Components > 1 {
		err = fmt.Errorf("array %q has %d components, expected 1", da.Name, da.Components)
		return
	}
	I = make([]int, len(da.Values))
	for i, v := range da.Values {
		if v != math.Trunc(v) {
			err = fmt.Errorf("array %q value %v at %d is not integral", da.Name, v, i)
			return
		}
		I[i] = int(v)
	}
	return
}

// PolyData is an unstructured surface mesh: points plus vertex, line and polygon cells.
// Cell attribute arrays are indexed in section order: verts, then lines, then polys.
type PolyData struct {
	Points []r3.Vec

	Verts [][]int
	Lines [][]int
	Polys [][]int

	PointData []*DataArray
	CellData  []*DataArray

	// Names of the active scalar arrays, if any
	PointScalars string
	CellScalars  string
}

func NewPolyData() *PolyData {
	return &PolyData{}
}

func (pd *PolyData) NumPoints() int { return len(pd.Points) }

func (pd *PolyData) NumCells() int {
	return len(pd.Verts) + len(pd.Lines) + len(pd.Polys)
}

// PolyOffset is the cell data index of the first polygon
func (pd *PolyData) PolyOffset() int {
	return len(pd.Verts) + len(pd.Lines)
}

// CellArray finds a cell attribute by name. An empty name selects the active
// scalars, or the only array when there is exactly one.
func (pd *PolyData) CellArray(name string) (da *DataArray, err error) {
	return findArray(pd.CellData, name, pd.CellScalars, "cell")
}

func (pd *PolyData) PointArray(name string) (da *DataArray, err error) {
	return findArray(pd.PointData, name, pd.PointScalars, "point")
}

func findArray(arrays []*DataArray, name, active, kind string) (da *DataArray, err error) {
	if name == "" {
		name = active
	}
	if name == "" {
		if len(arrays) == 1 {
			return arrays[0], nil
		}
		err = errors.Wrapf(types.ErrConfiguration,
			"no %s array name given and no active scalars among %d arrays", kind, len(arrays))
		return
	}
	for _, a := range arrays {
		if a.Name == name {
			return a, nil
		}
	}
	err = errors.Wrapf(types.ErrConfiguration, "%s array %q not found", kind, name)
	return
}

// AddCellArray appends a cell attribute, replacing one of the same name
func (pd *PolyData) AddCellArray(da *DataArray) {
	pd.CellData = replaceArray(pd.CellData, da)
}

func (pd *PolyData) AddPointArray(da *DataArray) {
	pd.PointData = replaceArray(pd.PointData, da)
}

func replaceArray(arrays []*DataArray, da *DataArray) []*DataArray {
	for i, a := range arrays {
		if a.Name == da.Name {
			arrays[i] = da
			return arrays
		}
	}
	return append(arrays, da)
}

// ExtractPolys copies the given polygons, in the given order, into a new mesh holding
// only the points they use. Points are renumbered in order of first use and the
// polygon attribute arrays are carried along.
func (pd *PolyData) ExtractPolys(polyIDs []int) (out *PolyData, err error) {
	var (
		newID  = make(map[int]int)
		offset = pd.PolyOffset()
	)
	out = NewPolyData()
	out.Polys = make([][]int, len(polyIDs))
	for i, pid := range polyIDs {
		if pid < 0 || pid >= len(pd.Polys) {
			err = errors.Wrapf(types.ErrIndexOutOfRange,
				"polygon %d outside mesh of %d polygons", pid, len(pd.Polys))
			return
		}
		src := pd.Polys[pid]
		cell := make([]int, len(src))
		for j, ptID := range src {
			nid, ok := newID[ptID]
			if !ok {
				nid = len(out.Points)
				newID[ptID] = nid
				out.Points = append(out.Points, pd.Points[ptID])
			}
			cell[j] = nid
		}
		out.Polys[i] = cell
	}
	for _, a := range pd.CellData {
		nc := a.Components
		if nc < 1 {
			nc = 1
		}
		na := &DataArray{Name: a.Name, Components: a.Components,
			Values: make([]float64, 0, len(polyIDs)*nc)}
		for _, pid := range polyIDs {
			k := (offset + pid) * nc
			na.Values = append(na.Values, a.Values[k:k+nc]...)
		}
		out.CellData = append(out.CellData, na)
	}
	out.CellScalars = pd.CellScalars
	return
}

// PolyCentroid is the vertex average of a polygon
func (pd *PolyData) PolyCentroid(pid int) (c r3.Vec) {
	poly := pd.Polys[pid]
	for _, ptID := range poly {
		c = r3.Add(c, pd.Points[ptID])
	}
	if len(poly) > 0 {
		c = r3.Scale(1/float64(len(poly)), c)
	}
	return
}

// Bounds returns the axis aligned bounding box of the points
func (pd *PolyData) Bounds() (lo, hi r3.Vec) {
	if len(pd.Points) == 0 {
		return
	}
	lo, hi = pd.Points[0], pd.Points[0]
	for _, p := range pd.Points[1:] {
		lo = r3.Vec{X: math.Min(lo.X, p.X), Y: math.Min(lo.Y, p.Y), Z: math.Min(lo.Z, p.Z)}
		hi = r3.Vec{X: math.Max(hi.X, p.X), Y: math.Max(hi.Y, p.Y), Z: math.Max(hi.Z, p.Z)}
	}
	return
}

// PrintStatistics prints mesh statistics
func (pd *PolyData) PrintStatistics(w io.Writer) {
	fmt.Fprintf(w, "Mesh Statistics:\n")
	fmt.Fprintf(w, "  Points: %d\n", pd.NumPoints())
	fmt.Fprintf(w, "  Cells: %d\n", pd.NumCells())
	counts := [...]int{len(pd.Verts), len(pd.Lines), len(pd.Polys)}
	for k, n := range counts {
		if n > 0 {
			fmt.Fprintf(w, "    %s: %d\n", CellKind(k), n)
		}
	}
	for _, a := range pd.CellData {
		fmt.Fprintf(w, "  Cell array %q: %d tuples x %d\n", a.Name, a.NumTuples(), max(a.Components, 1))
	}
	for _, a := range pd.PointData {
		fmt.Fprintf(w, "  Point array %q: %d tuples x %d\n", a.Name, a.NumTuples(), max(a.Components, 1))
	}
	lo, hi := pd.Bounds()
	fmt.Fprintf(w, "  Bounds: [%g, %g] x [%g, %g] x [%g, %g]\n", lo.X, hi.X, lo.Y, hi.Y, lo.Z, hi.Z)
}
