package ordering

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/vesselmap/types"
)

// gridCells builds native quads of a rings x q structured grid with its own points
func gridCells(rings, q int) (cells [][]int) {
	p := func(k, j int) int { return k*(q+1) + j }
	for k := 0; k < rings; k++ {
		for j := 0; j < q; j++ {
			cells = append(cells, []int{p(k, j), p(k, j+1), p(k+1, j+1), p(k+1, j)})
		}
	}
	return
}

func TestCorners(t *testing.T) {
	assert.Equal(t, []int{0, 1, 2, 3}, Corners(0, 0))
	assert.Equal(t, []int{1, 2}, Corners(0, 5))
	assert.Equal(t, []int{0, 1}, Corners(3, 0))
	assert.Equal(t, []int{1}, Corners(2, 2))
}

func TestSelectPointsCoarse(t *testing.T) {
	for _, tc := range []struct{ rings, q int }{{3, 4}, {1, 12}, {6, 20}} {
		native := gridCells(tc.rings, tc.q)
		ids, err := CanonicalIds(Coarse(tc.rings, tc.q))
		require.NoError(t, err)
		ordered := make([][]int, len(ids))
		for i, id := range ids {
			ordered[i] = native[id]
		}
		pts, err := SelectPoints(ordered, tc.rings, tc.q)
		require.NoError(t, err)
		assert.Equal(t, (tc.q+1)*(tc.rings+1), len(pts))
		seen := map[int]bool{}
		for _, pt := range pts {
			assert.False(t, seen[pt], "point %d emitted twice", pt)
			seen[pt] = true
		}
	}
}

func TestSelectPointsFine(t *testing.T) {
	var (
		rows, cols = 4, 5
		quads      = 3
		native     [][]int
	)
	// each quad owns its own (rows+1)*(cols+1) points
	for q := 0; q < quads; q++ {
		base := q * (rows + 1) * (cols + 1)
		for _, c := range gridCells(rows, cols) {
			native = append(native, []int{c[0] + base, c[1] + base, c[2] + base, c[3] + base})
		}
	}
	ids, err := CanonicalIds(Fine(1, quads, rows, cols))
	require.NoError(t, err)
	ordered := make([][]int, len(ids))
	for i, id := range ids {
		ordered[i] = native[id]
	}
	pts, err := SelectPoints(ordered, rows, cols)
	require.NoError(t, err)
	assert.Equal(t, quads*(rows+1)*(cols+1), len(pts))
	seen := map[int]bool{}
	for _, pt := range pts {
		assert.False(t, seen[pt])
		seen[pt] = true
	}
	// the first quad starts on the far row of its first cell
	assert.Equal(t, ordered[0][0], pts[0])
	assert.Equal(t, (rows-1)*(cols+1), pts[0])
}

func TestSelectPointsErrors(t *testing.T) {
	_, err := SelectPoints(gridCells(2, 3), 4, 3)
	assert.True(t, errors.Is(err, types.ErrConfiguration))
	_, err = SelectPoints([][]int{{0, 1, 2}}, 1, 1)
	assert.True(t, errors.Is(err, types.ErrInconsistentTopology))
	_, err = SelectPoints(nil, 0, 1)
	assert.True(t, errors.Is(err, types.ErrConfiguration))
}
