package sinks

import (
	"bufio"
	"fmt"
	"os"

	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/vesselmap/types"
)

// TableSink writes the flat text tables of one branch: connectivity rows
// "<n> <i0> <i1> ..." and coordinate rows "<x> <y> <z>" at 6 decimals
type TableSink struct {
	PointsPath string
	CellsPath  string
}

func (s TableSink) Write(cells [][]int, pts []r3.Vec) (err error) {
	if err = writeLines(s.CellsPath, func(w *bufio.Writer) (err error) {
		for _, cell := range cells {
			if _, err = fmt.Fprintf(w, "%d", len(cell)); err != nil {
				return
			}
			for _, id := range cell {
				if _, err = fmt.Fprintf(w, " %d", id); err != nil {
					return
				}
			}
			if err = w.WriteByte('\n'); err != nil {
				return
			}
		}
		return
	}); err != nil {
		return
	}
	return writeLines(s.PointsPath, func(w *bufio.Writer) (err error) {
		for _, p := range pts {
			if _, err = fmt.Fprintf(w, "%.6f %.6f %.6f\n", p.X, p.Y, p.Z); err != nil {
				return
			}
		}
		return
	})
}

// writeLines creates filename and closes it on every path, keeping the first error
func writeLines(filename string, fill func(w *bufio.Writer) error) (err error) {
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
	if err = fill(w); err != nil {
		return types.IOError(err, "writing %s", filename)
	}
	if err = w.Flush(); err != nil {
		return types.IOError(err, "writing %s", filename)
	}
	return
}
