package ordering

import (
	"github.com/pkg/errors"

	"github.com/notargets/vesselmap/types"
)

var (
	allCorners = []int{0, 1, 2, 3}
	firstRow   = []int{1, 2}
	firstCol   = []int{0, 1}
	interior   = []int{1}
)

// Corners lists the corners of the quad at canonical position (row, col) of a block
// that no earlier cell of the block has introduced. Corner 3 is always shared with a
// cell visited later, except for the very first cell.
func Corners(row, col int) []int {
	switch {
	case row == 0 && col == 0:
		return allCorners
	case row == 0:
		return firstRow
	case col == 0:
		return firstCol
	default:
		return interior
	}
}

// SelectPoints walks canonically ordered quads in consecutive rows*cols blocks and
// returns the point ids each quad introduces, in emission order. A block of r x c
// quads yields (r+1)*(c+1) points.
func SelectPoints(cells [][]int, rows, cols int) (pts []int, err error) {
	if rows < 1 || cols < 1 {
		return nil, errors.Wrapf(types.ErrConfiguration, "block must be at least 1x1, got %dx%d", rows, cols)
	}
	block := rows * cols
	if len(cells)%block != 0 {
		return nil, errors.Wrapf(types.ErrConfiguration,
			"%d cells do not fill whole %dx%d blocks", len(cells), rows, cols)
	}
	pts = make([]int, 0, len(cells)/block*(rows+1)*(cols+1))
	for i, cell := range cells {
		if len(cell) != 4 {
			return nil, errors.Wrapf(types.ErrInconsistentTopology,
				"cell %d has %d points, expected a quad", i, len(cell))
		}
		pos := i % block
		for _, corner := range Corners(pos/cols, pos%cols) {
			pts = append(pts, cell[corner])
		}
	}
	return
}
