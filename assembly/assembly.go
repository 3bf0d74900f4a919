// Package assembly builds per-branch meshes whose cells follow the canonical order.
package assembly

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/ordering"
	"github.com/notargets/vesselmap/types"
	"github.com/notargets/vesselmap/utils"
)

// Branch is one branch of one mesh level in canonical cell order
type Branch struct {
	// Mesh shares the full point table of the source; unreferenced points are unused
	Mesh *mesh.PolyData
	// Points lists the point ids introduced by each cell in turn, without repeats
	Points []int
	// Block shape used for point selection
	Rows, Cols int
}

// Assemble gathers the source polygons named by ids, in order. ids are absolute
// polygon indices into src. The selected point list walks the result in rows x cols
// blocks: rings x quads for the coarse level, the element grid for fine levels.
func Assemble(src *mesh.PolyData, ids utils.Index, rows, cols int) (b *Branch, err error) {
	if err = ids.CheckBounds(len(src.Polys)); err != nil {
		return nil, errors.Wrapf(types.ErrIndexOutOfRange, "mesh of %d polygons: %v", len(src.Polys), err)
	}
	var (
		pd     = mesh.NewPolyData()
		offset = src.PolyOffset()
	)
	pd.Points = src.Points
	pd.Polys = make([][]int, len(ids))
	for i, id := range ids {
		pd.Polys[i] = src.Polys[id]
	}
	for _, a := range src.CellData {
		nc := max(a.Components, 1)
		na := &mesh.DataArray{Name: a.Name, Components: a.Components, Values: make([]float64, 0, len(ids)*nc)}
		for _, id := range ids {
			k := (offset + id) * nc
			na.Values = append(na.Values, a.Values[k:k+nc]...)
		}
		pd.CellData = append(pd.CellData, na)
	}
	pd.CellScalars = src.CellScalars
	b = &Branch{Mesh: pd, Rows: rows, Cols: cols}
	if b.Points, err = ordering.SelectPoints(pd.Polys, rows, cols); err != nil {
		return nil, err
	}
	return
}

func (b *Branch) NumCells() int { return len(b.Mesh.Polys) }

// PointCoords returns the coordinates of the selected points in emission order
func (b *Branch) PointCoords() (pts []r3.Vec) {
	pts = make([]r3.Vec, len(b.Points))
	for i, id := range b.Points {
		pts[i] = b.Mesh.Points[id]
	}
	return
}

// Centroids places one vertex cell at the centroid of every polygon, in order
func (b *Branch) Centroids() (pd *mesh.PolyData) {
	n := len(b.Mesh.Polys)
	pd = mesh.NewPolyData()
	pd.Points = make([]r3.Vec, n)
	pd.Verts = make([][]int, n)
	for i := range b.Mesh.Polys {
		pd.Points[i] = b.Mesh.PolyCentroid(i)
		pd.Verts[i] = []int{i}
	}
	return
}
