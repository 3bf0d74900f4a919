package writers

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/types"
)

// WriteVTP writes the mesh as an ASCII VTK XML PolyData file
func WriteVTP(filename string, pd *mesh.PolyData) (err error) {
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
	if err = EncodeVTP(w, pd); err != nil {
		return types.IOError(err, "writing %s", filename)
	}
	if err = w.Flush(); err != nil {
		return types.IOError(err, "writing %s", filename)
	}
	return
}

// EncodeVTP streams the XML document. Points are Float64, connectivity and offsets Int64.
func EncodeVTP(w io.Writer, pd *mesh.PolyData) (err error) {
	ew := &errWriter{w: w}
	ew.printf("<?xml version=\"1.0\"?>\n")
	ew.printf("<VTKFile type=\"PolyData\" version=\"1.0\" byte_order=\"LittleEndian\" header_type=\"UInt64\">\n")
	ew.printf("  <PolyData>\n")
	ew.printf("    <Piece NumberOfPoints=\"%d\" NumberOfVerts=\"%d\" NumberOfLines=\"%d\" NumberOfStrips=\"0\" NumberOfPolys=\"%d\">\n",
		pd.NumPoints(), len(pd.Verts), len(pd.Lines), len(pd.Polys))

	writeAttributes(ew, "PointData", pd.PointScalars, pd.PointData)
	writeAttributes(ew, "CellData", pd.CellScalars, pd.CellData)

	ew.printf("      <Points>\n")
	ew.printf("        <DataArray type=\"Float64\" Name=\"Points\" NumberOfComponents=\"3\" format=\"ascii\">\n")
	for _, p := range pd.Points {
		ew.printf("          %s %s %s\n", ftoa(p.X), ftoa(p.Y), ftoa(p.Z))
	}
	ew.printf("        </DataArray>\n")
	ew.printf("      </Points>\n")

	writeCells(ew, "Verts", pd.Verts)
	writeCells(ew, "Lines", pd.Lines)
	writeCells(ew, "Polys", pd.Polys)

	ew.printf("    </Piece>\n")
	ew.printf("  </PolyData>\n")
	ew.printf("</VTKFile>\n")
	return ew.err
}

func writeAttributes(ew *errWriter, section, active string, arrays []*mesh.DataArray) {
	if len(arrays) == 0 {
		return
	}
	if active != "" {
		ew.printf("      <%s Scalars=\"%s\">\n", section, active)
	} else {
		ew.printf("      <%s>\n", section)
	}
	for _, a := range arrays {
		nc := max(a.Components, 1)
		ew.printf("        <DataArray type=\"Float64\" Name=\"%s\" NumberOfComponents=\"%d\" format=\"ascii\">\n",
			a.Name, nc)
		writeRows(ew, a.Values, 6*nc)
		ew.printf("        </DataArray>\n")
	}
	ew.printf("      </%s>\n", section)
}

func writeCells(ew *errWriter, section string, cells [][]int) {
	if len(cells) == 0 {
		return
	}
	var (
		offsets = make([]int, len(cells))
		n       int
	)
	ew.printf("      <%s>\n", section)
	ew.printf("        <DataArray type=\"Int64\" Name=\"connectivity\" format=\"ascii\">\n")
	for i, cell := range cells {
		ew.printf("         ")
		for _, id := range cell {
			ew.printf(" %d", id)
		}
		ew.printf("\n")
		n += len(cell)
		offsets[i] = n
	}
	ew.printf("        </DataArray>\n")
	ew.printf("        <DataArray type=\"Int64\" Name=\"offsets\" format=\"ascii\">\n")
	for i := 0; i < len(offsets); i += 6 {
		ew.printf("         ")
		for _, o := range offsets[i:min(i+6, len(offsets))] {
			ew.printf(" %d", o)
		}
		ew.printf("\n")
	}
	ew.printf("        </DataArray>\n")
	ew.printf("      </%s>\n", section)
}

func writeRows(ew *errWriter, vals []float64, perRow int) {
	for i := 0; i < len(vals); i += perRow {
		ew.printf("         ")
		for _, v := range vals[i:min(i+perRow, len(vals))] {
			ew.printf(" %s", ftoa(v))
		}
		ew.printf("\n")
	}
}

// ftoa prints the shortest representation that reads back to the same float64
func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// errWriter keeps the first write error and turns later writes into no-ops
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) printf(format string, args ...interface{}) {
	if ew.err != nil {
		return
	}
	_, ew.err = fmt.Fprintf(ew.w, format, args...)
}
