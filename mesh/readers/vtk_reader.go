package readers

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/types"
)

// ReadLegacyVTK reads an ASCII legacy VTK POLYDATA file
func ReadLegacyVTK(filename string) (pd *mesh.PolyData, err error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, types.IOError(err, "reading %s", filename)
	}
	defer file.Close()

	if pd, err = parseLegacyVTK(bufio.NewScanner(file)); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", filename)
	}
	return
}

// tokenizer walks the whitespace separated tokens after the three header lines
type tokenizer struct {
	scanner *bufio.Scanner
	pending []string
}

func (tk *tokenizer) next() (tok string, err error) {
	for len(tk.pending) == 0 {
		if !tk.scanner.Scan() {
			if err = tk.scanner.Err(); err == nil {
				err = errEOF
			}
			return
		}
		tk.pending = strings.Fields(tk.scanner.Text())
	}
	tok, tk.pending = tk.pending[0], tk.pending[1:]
	return
}

func (tk *tokenizer) unread(tok string) {
	tk.pending = append([]string{tok}, tk.pending...)
}

var errEOF = fmt.Errorf("unexpected end of file")

func (tk *tokenizer) int() (n int, err error) {
	var tok string
	if tok, err = tk.next(); err != nil {
		return
	}
	if n, err = strconv.Atoi(tok); err != nil {
		err = fmt.Errorf("expected integer, got %q", tok)
	}
	return
}

func (tk *tokenizer) floats(n int) (vals []float64, err error) {
	vals = make([]float64, n)
	for i := range vals {
		var tok string
		if tok, err = tk.next(); err != nil {
			return
		}
		if vals[i], err = strconv.ParseFloat(tok, 64); err != nil {
			err = fmt.Errorf("expected number, got %q", tok)
			return
		}
	}
	return
}

func parseLegacyVTK(scanner *bufio.Scanner) (pd *mesh.PolyData, err error) {
	var header [3]string
	scanner.Buffer(make([]byte, 1024*1024), 64*1024*1024)
	for i := range header {
		if !scanner.Scan() {
			return nil, errors.Wrap(types.ErrIO, "truncated legacy VTK header")
		}
		header[i] = strings.TrimSpace(scanner.Text())
	}
	if !strings.HasPrefix(header[0], "# vtk DataFile") {
		return nil, errors.Wrapf(types.ErrIO, "not a legacy VTK file: %q", header[0])
	}
	if !strings.EqualFold(header[2], "ASCII") {
		return nil, errors.Wrapf(types.ErrIO, "only ASCII legacy VTK is supported, got %q", header[2])
	}
	if pd, err = parseLegacyBody(&tokenizer{scanner: scanner}); err != nil {
		err = errors.Wrap(types.ErrIO, err.Error())
	}
	return
}

func parseLegacyBody(tk *tokenizer) (pd *mesh.PolyData, err error) {
	var (
		tok     string
		attrs   *[]*mesh.DataArray
		active  *string
		nTuples int
	)
	pd = mesh.NewPolyData()
	for {
		if tok, err = tk.next(); err != nil {
			if err == errEOF {
				err = nil
			}
			return
		}
		switch strings.ToUpper(tok) {
		case "DATASET":
			if tok, err = tk.next(); err != nil {
				return
			}
			if strings.ToUpper(tok) != "POLYDATA" {
				err = fmt.Errorf("unsupported dataset %q, expected POLYDATA", tok)
				return
			}
		case "POINTS":
			var n int
			var coords []float64
			if n, err = tk.int(); err != nil {
				return
			}
			if _, err = tk.next(); err != nil { // data type
				return
			}
			if coords, err = tk.floats(3 * n); err != nil {
				return
			}
			pd.Points = make([]r3.Vec, n)
			for i := range pd.Points {
				pd.Points[i] = r3.Vec{X: coords[3*i], Y: coords[3*i+1], Z: coords[3*i+2]}
			}
		case "VERTICES":
			pd.Verts, err = readLegacyCells(tk)
		case "LINES":
			pd.Lines, err = readLegacyCells(tk)
		case "POLYGONS":
			pd.Polys, err = readLegacyCells(tk)
		case "TRIANGLE_STRIPS":
			err = fmt.Errorf("triangle strips are not supported")
		case "POINT_DATA":
			nTuples, err = tk.int()
			attrs, active = &pd.PointData, &pd.PointScalars
		case "CELL_DATA":
			nTuples, err = tk.int()
			attrs, active = &pd.CellData, &pd.CellScalars
		case "SCALARS":
			err = readLegacyScalars(tk, attrs, active, nTuples)
		case "FIELD":
			err = readLegacyField(tk, attrs)
		case "METADATA":
			err = skipMetadata(tk)
		default:
			err = fmt.Errorf("unexpected keyword %q", tok)
		}
		if err != nil {
			return
		}
	}
}

func readLegacyCells(tk *tokenizer) (cells [][]int, err error) {
	var n, size int
	if n, err = tk.int(); err != nil {
		return
	}
	if size, err = tk.int(); err != nil {
		return
	}
	peek, err := tk.next()
	if err != nil {
		return
	}
	if strings.ToUpper(peek) == "OFFSETS" {
		// version 5 layout: n offsets, then size connectivity entries
		var offs, conn []float64
		if _, err = tk.next(); err != nil {
			return
		}
		if offs, err = tk.floats(n); err != nil {
			return
		}
		if peek, err = tk.next(); err != nil || strings.ToUpper(peek) != "CONNECTIVITY" {
			return nil, fmt.Errorf("expected CONNECTIVITY after OFFSETS")
		}
		if _, err = tk.next(); err != nil {
			return
		}
		if conn, err = tk.floats(size); err != nil {
			return
		}
		cells = make([][]int, 0, n-1)
		for i := 0; i+1 < n; i++ {
			lo, hi := int(offs[i]), int(offs[i+1])
			if lo > hi || hi > len(conn) {
				return nil, fmt.Errorf("cell %d offsets out of range", i)
			}
			cell := make([]int, hi-lo)
			for j := range cell {
				cell[j] = int(conn[lo+j])
			}
			cells = append(cells, cell)
		}
		return
	}
	tk.unread(peek)
	cells = make([][]int, n)
	read := 0
	for i := range cells {
		var np int
		if np, err = tk.int(); err != nil {
			return
		}
		cell := make([]int, np)
		for j := range cell {
			if cell[j], err = tk.int(); err != nil {
				return
			}
		}
		cells[i] = cell
		read += np + 1
	}
	if read != size {
		err = fmt.Errorf("cell list size is %d, header says %d", read, size)
	}
	return
}

func readLegacyScalars(tk *tokenizer, attrs *[]*mesh.DataArray, active *string, nTuples int) (err error) {
	var (
		name string
		nc   = 1
		tok  string
		vals []float64
	)
	if attrs == nil {
		return fmt.Errorf("SCALARS outside POINT_DATA or CELL_DATA")
	}
	if name, err = tk.next(); err != nil {
		return
	}
	if _, err = tk.next(); err != nil { // data type
		return
	}
	if tok, err = tk.next(); err != nil {
		return
	}
	if strings.ToUpper(tok) != "LOOKUP_TABLE" {
		if nc, err = strconv.Atoi(tok); err != nil {
			return fmt.Errorf("expected component count or LOOKUP_TABLE, got %q", tok)
		}
		if tok, err = tk.next(); err != nil {
			return
		}
	}
	if strings.ToUpper(tok) != "LOOKUP_TABLE" {
		return fmt.Errorf("expected LOOKUP_TABLE, got %q", tok)
	}
	if _, err = tk.next(); err != nil { // table name
		return
	}
	if vals, err = tk.floats(nc * nTuples); err != nil {
		return
	}
	*attrs = append(*attrs, &mesh.DataArray{Name: name, Components: nc, Values: vals})
	if *active == "" {
		*active = name
	}
	return
}

func readLegacyField(tk *tokenizer, attrs *[]*mesh.DataArray) (err error) {
	var nArrays int
	if attrs == nil {
		return fmt.Errorf("FIELD outside POINT_DATA or CELL_DATA")
	}
	if _, err = tk.next(); err != nil { // field name
		return
	}
	if nArrays, err = tk.int(); err != nil {
		return
	}
	for i := 0; i < nArrays; i++ {
		var (
			name   string
			nc, nt int
			vals   []float64
			tok    string
		)
		if name, err = tk.next(); err != nil {
			return
		}
		if nc, err = tk.int(); err != nil {
			return
		}
		if nt, err = tk.int(); err != nil {
			return
		}
		if _, err = tk.next(); err != nil { // data type
			return
		}
		if vals, err = tk.floats(nc * nt); err != nil {
			return
		}
		*attrs = append(*attrs, &mesh.DataArray{Name: name, Components: nc, Values: vals})
		// optional per array METADATA block
		if tok, err = tk.next(); err != nil {
			if err == errEOF {
				err = nil
			}
			return
		}
		if strings.ToUpper(tok) == "METADATA" {
			if err = skipMetadata(tk); err != nil {
				return
			}
			continue
		}
		tk.unread(tok)
	}
	return
}

// skipMetadata consumes a METADATA block, which ends at an empty line
func skipMetadata(tk *tokenizer) (err error) {
	tk.pending = nil
	for tk.scanner.Scan() {
		if strings.TrimSpace(tk.scanner.Text()) == "" {
			return
		}
	}
	return tk.scanner.Err()
}
