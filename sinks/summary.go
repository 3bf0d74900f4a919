package sinks

import (
	"bufio"
	"fmt"
)

// Summary holds the mesh dimensions reported in configuration_info.txt
type Summary struct {
	QuadsPerRing int
	Rings        int
	// Element grids per task quad, rows x cols
	SMCRows, SMCCols int
	ECRows, ECCols   int
}

// WriteSummary writes the fixed format run summary the solver parses
func WriteSummary(filename string, s Summary) error {
	return writeLines(filename, func(w *bufio.Writer) (err error) {
		var (
			smcCells = s.SMCRows * s.SMCCols
			ecCells  = s.ECRows * s.ECCols
		)
		rows := []struct {
			what    string
			n, m, k int
		}{
			{"Total number of points per branch (vtk points)",
				(s.QuadsPerRing + 1) * (s.Rings + 1), s.QuadsPerRing + 1, s.Rings + 1},
			{"Total number of cells per branch (vtk cells)",
				s.QuadsPerRing * s.Rings, s.QuadsPerRing, s.Rings},
			{"Total number of SMC mesh points per processor mesh (vtk points)",
				(s.SMCRows + 1) * (s.SMCCols + 1), s.SMCRows + 1, s.SMCCols + 1},
			{"Total number of SMC mesh cells per processor mesh (vtk cells)",
				smcCells, s.SMCRows, s.SMCCols},
			{"Total number of EC mesh points per processor mesh (vtk points)",
				(s.ECRows + 1) * (s.ECCols + 1), s.ECRows + 1, s.ECCols + 1},
			{"Total number of EC mesh cells per processor mesh (vtk cells)",
				ecCells, s.ECRows, s.ECCols},
			{"Total number of EC mesh centeroid points per processor mesh (vtk points)",
				ecCells, s.ECRows, s.ECCols},
			{"Total number of EC mesh centeroid cells per processor mesh (vtk cells)",
				ecCells, s.ECRows, s.ECCols},
		}
		if _, err = fmt.Fprintf(w, "Processors information\n"); err != nil {
			return
		}
		for _, r := range rows {
			if _, err = fmt.Fprintf(w, "%s = %d\t\tm = %d n = %d\n", r.what, r.n, r.m, r.k); err != nil {
				return
			}
		}
		return
	})
}
