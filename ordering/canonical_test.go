package ordering

import (
	"sort"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/vesselmap/types"
	"github.com/notargets/vesselmap/utils"
)

func assertPermutation(t *testing.T, ids utils.Index, n int) {
	sorted := append(utils.Index(nil), ids...)
	sort.Ints(sorted)
	assert.Equal(t, []int(utils.NewRange(0, n-1)), []int(sorted))
}

func TestCanonicalIdsCoarse(t *testing.T) {
	ids, err := CanonicalIds(Coarse(3, 4))
	require.NoError(t, err)
	assert.Equal(t, utils.Index{8, 9, 10, 11, 4, 5, 6, 7, 0, 1, 2, 3}, ids)

	// gathering a native field with value[i] = i gives the same sequence
	field := utils.NewRange(0, 11)
	got := make(utils.Index, len(ids))
	for i, id := range ids {
		got[i] = field[id]
	}
	assert.Equal(t, ids, got)
}

func TestCanonicalIdsBijection(t *testing.T) {
	for _, p := range []Params{
		Coarse(5, 12),
		Fine(3, 4, 2, 3),
		Fine(2, 12, 4, 20),
		Fine(2, 12, 52, 4),
	} {
		ids, err := CanonicalIds(p)
		require.NoError(t, err)
		assert.Equal(t, p.BranchCells(), len(ids))
		assert.Equal(t, p.Len(), len(ids))
		assertPermutation(t, ids, p.BranchCells())
	}
}

func TestCanonicalIdsQuadBlocks(t *testing.T) {
	p := Fine(3, 4, 2, 3)
	ids, err := CanonicalIds(p)
	require.NoError(t, err)
	rings, err := RingOrder(p)
	require.NoError(t, err)
	block := p.CellsPerQuad()
	i := 0
	for _, ring := range rings {
		for quad := 0; quad < p.QuadsPerRing; quad++ {
			start := (ring*p.QuadsPerRing + quad) * block
			blk := append(utils.Index(nil), ids[i:i+block]...)
			// rows run backwards, columns forwards
			assert.Equal(t, start+(p.Rows-1)*p.Cols, blk[0])
			sort.Ints(blk)
			assert.Equal(t, []int(utils.NewRange(start, start+block-1)), []int(blk))
			i += block
		}
	}
}

func TestCanonicalIdsScaleCirc(t *testing.T) {
	p := Coarse(2, 20)
	p.ScaleCirc = 2
	ids, err := CanonicalIds(p)
	require.NoError(t, err)
	assert.Equal(t, 20, len(ids))
	assert.Equal(t, p.Len(), len(ids))
	perRing := map[int]int{}
	for _, id := range ids {
		assert.Equal(t, 0, (id%20)%2)
		perRing[id/20]++
	}
	assert.Equal(t, map[int]int{0: 10, 1: 10}, perRing)
}

func TestRingOrder(t *testing.T) {
	p := Coarse(8, 4)
	rings, err := RingOrder(p)
	require.NoError(t, err)
	assert.Equal(t, utils.Index{7, 6, 5, 4, 3, 2, 1, 0}, rings)

	p.ScaleAxial = 2
	rings, err = RingOrder(p)
	require.NoError(t, err)
	assert.Equal(t, utils.Index{5, 7, 1, 3}, rings)

	p.RingGroup = 2
	rings, err = RingOrder(p)
	require.NoError(t, err)
	assert.Equal(t, utils.Index{6, 7, 2, 3}, rings)

	{ // three surviving rings cannot be swapped in pairs
		q := Coarse(6, 4)
		q.ScaleAxial = 2
		_, err = RingOrder(q)
		assert.True(t, errors.Is(err, types.ErrConfiguration))
	}
}

func TestCanonicalIdsDecimated(t *testing.T) {
	p := Fine(8, 4, 2, 3)
	p.ScaleCirc, p.ScaleAxial = 2, 2
	ids, err := CanonicalIds(p)
	require.NoError(t, err)
	assert.Equal(t, p.BranchCells()/4, len(ids))

	// fold mode covers the whole branch exactly once
	p.Fold = true
	p.RingGroup = 2
	ids, err = CanonicalIds(p)
	require.NoError(t, err)
	assert.Equal(t, p.BranchCells(), len(ids))
	assertPermutation(t, ids, p.BranchCells())

	var cells []Cell
	require.NoError(t, Walk(p, func(c Cell) { cells = append(cells, c) }))
	// first cell: ring 6, quad 0, top row, no extra offsets
	assert.Equal(t, Cell{Ring: 6, Quad: 0, Row: 1, Col: 0, ID: (6*4)*6 + 3}, cells[0])
	// the second extra circumferential pass reads the next quad
	assert.Equal(t, cells[0].ID+6, cells[3].ID)
	assert.Equal(t, 1, cells[3].ExtraCirc)
	// the second extra axial pass reads two rings back
	half := 2 * 3 * 2
	assert.Equal(t, 1, cells[half].ExtraAxial)
	assert.Equal(t, cells[0].ID-2*4*6, cells[half].ID)
}

func TestParamsValidate(t *testing.T) {
	assert.NoError(t, Fine(3, 4, 2, 3).Validate(72))
	assert.True(t, errors.Is(Fine(3, 4, 2, 3).Validate(71), types.ErrConfiguration))

	bad := []Params{
		{Rings: 3, QuadsPerRing: 4, Rows: 1, Cols: 1, ScaleCirc: 0, ScaleAxial: 1},
		{Rings: 3, QuadsPerRing: 4, Rows: 1, Cols: 1, ScaleCirc: 8, ScaleAxial: 1},
		{Rings: 3, QuadsPerRing: 4, Rows: 1, Cols: 1, ScaleCirc: 3, ScaleAxial: 1},
		{Rings: 3, QuadsPerRing: 4, Rows: 1, Cols: 1, ScaleCirc: 1, ScaleAxial: 4},
		{Rings: 4, QuadsPerRing: 4, Rows: 1, Cols: 1, ScaleCirc: 1, ScaleAxial: 3},
		{Rings: 3, QuadsPerRing: 4, Rows: 1, Cols: 1, ScaleCirc: 1, ScaleAxial: 2, RingGroup: 2},
		{Rings: 0, QuadsPerRing: 4, Rows: 1, Cols: 1, ScaleCirc: 1, ScaleAxial: 1},
	}
	for i, p := range bad {
		assert.True(t, errors.Is(p.Validate(1000), types.ErrConfiguration), "case %d", i)
		_, err := CanonicalIds(p)
		assert.True(t, errors.Is(err, types.ErrConfiguration), "case %d", i)
	}
}
