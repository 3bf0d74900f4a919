package writers

import (
	"bufio"
	"io"
	"os"

	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/types"
)

// WriteLegacyVTK writes the mesh as an ASCII legacy VTK POLYDATA file
func WriteLegacyVTK(filename string, pd *mesh.PolyData) (err error) {
	var file *os.File
	if file, err = os.Create(filename); err != nil {
		return types.IOError(err, "creating %s", filename)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = types.IOError(cerr, "closing %s", filename)
		}
	}()
	w := bufio.NewWriter(file)
	if err = EncodeLegacyVTK(w, pd, "vesselmap"); err != nil {
		return types.IOError(err, "writing %s", filename)
	}
	if err = w.Flush(); err != nil {
		return types.IOError(err, "writing %s", filename)
	}
	return
}

// EncodeLegacyVTK writes the legacy (version 4.2 style) ASCII layout
func EncodeLegacyVTK(w io.Writer, pd *mesh.PolyData, title string) (err error) {
	ew := &errWriter{w: w}
	ew.printf("# vtk DataFile Version 4.2\n")
	ew.printf("%s\n", title)
	ew.printf("ASCII\n")
	ew.printf("DATASET POLYDATA\n")
	ew.printf("POINTS %d double\n", pd.NumPoints())
	for _, p := range pd.Points {
		ew.printf("%s %s %s\n", ftoa(p.X), ftoa(p.Y), ftoa(p.Z))
	}
	writeLegacyCells(ew, "VERTICES", pd.Verts)
	writeLegacyCells(ew, "LINES", pd.Lines)
	writeLegacyCells(ew, "POLYGONS", pd.Polys)
	writeLegacyData(ew, "CELL_DATA", pd.NumCells(), pd.CellScalars, pd.CellData)
	writeLegacyData(ew, "POINT_DATA", pd.NumPoints(), pd.PointScalars, pd.PointData)
	return ew.err
}

func writeLegacyCells(ew *errWriter, keyword string, cells [][]int) {
	if len(cells) == 0 {
		return
	}
	size := 0
	for _, cell := range cells {
		size += len(cell) + 1
	}
	ew.printf("%s %d %d\n", keyword, len(cells), size)
	for _, cell := range cells {
		ew.printf("%d", len(cell))
		for _, id := range cell {
			ew.printf(" %d", id)
		}
		ew.printf("\n")
	}
}

// writeLegacyData emits the active array as SCALARS and everything else in a FIELD block
func writeLegacyData(ew *errWriter, keyword string, n int, active string, arrays []*mesh.DataArray) {
	if len(arrays) == 0 {
		return
	}
	var rest []*mesh.DataArray
	ew.printf("%s %d\n", keyword, n)
	for _, a := range arrays {
		if a.Name != active {
			rest = append(rest, a)
			continue
		}
		nc := max(a.Components, 1)
		ew.printf("SCALARS %s double %d\n", a.Name, nc)
		ew.printf("LOOKUP_TABLE default\n")
		writeLegacyRows(ew, a.Values, 9)
	}
	if len(rest) == 0 {
		return
	}
	ew.printf("FIELD FieldData %d\n", len(rest))
	for _, a := range rest {
		nc := max(a.Components, 1)
		ew.printf("%s %d %d double\n", a.Name, nc, a.NumTuples())
		writeLegacyRows(ew, a.Values, 9)
	}
}

func writeLegacyRows(ew *errWriter, vals []float64, perRow int) {
	for i := 0; i < len(vals); i += perRow {
		for j, v := range vals[i:min(i+perRow, len(vals))] {
			if j > 0 {
				ew.printf(" ")
			}
			ew.printf("%s", ftoa(v))
		}
		ew.printf("\n")
	}
}
