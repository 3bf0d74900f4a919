package mesh

import (
	"bytes"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/vesselmap/types"
)

func twoQuads() *PolyData {
	pd := NewPolyData()
	pd.Points = []r3.Vec{
		{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 2, Y: 0},
		{X: 0, Y: 1}, {X: 1, Y: 1}, {X: 2, Y: 1},
		{X: 9, Y: 9}, // unused
	}
	pd.Polys = [][]int{
		{0, 1, 4, 3},
		{1, 2, 5, 4},
	}
	pd.AddCellArray(&DataArray{Name: "labels", Components: 1, Values: []float64{3, 7}})
	pd.CellScalars = "labels"
	return pd
}

func TestExtractPolys(t *testing.T) {
	pd := twoQuads()
	out, err := pd.ExtractPolys([]int{1})
	require.NoError(t, err)
	assert.Equal(t, 4, out.NumPoints())
	assert.Equal(t, [][]int{{0, 1, 2, 3}}, out.Polys)
	assert.Equal(t, pd.Points[1], out.Points[0])
	assert.Equal(t, pd.Points[4], out.Points[3])
	labels, err := out.CellArray("")
	require.NoError(t, err)
	assert.Equal(t, []float64{7}, labels.Values)

	{ // Shared points are renumbered once, in order of first use
		out, err = pd.ExtractPolys([]int{1, 0})
		require.NoError(t, err)
		assert.Equal(t, 6, out.NumPoints())
		assert.Equal(t, []int{4, 0, 3, 5}, out.Polys[1])
	}

	_, err = pd.ExtractPolys([]int{2})
	assert.True(t, errors.Is(err, types.ErrIndexOutOfRange))
}

func TestCellArrayLookup(t *testing.T) {
	pd := twoQuads()
	da, err := pd.CellArray("labels")
	require.NoError(t, err)
	I, err := da.Ints()
	require.NoError(t, err)
	assert.Equal(t, []int{3, 7}, I)

	_, err = pd.CellArray("missing")
	assert.True(t, errors.Is(err, types.ErrConfiguration))

	pd.AddCellArray(&DataArray{Name: "other", Components: 1, Values: []float64{0.5, 1}})
	pd.CellScalars = ""
	_, err = pd.CellArray("")
	assert.True(t, errors.Is(err, types.ErrConfiguration))

	other, _ := pd.CellArray("other")
	_, err = other.Ints()
	assert.Error(t, err)
}

func TestCentroidAndStatistics(t *testing.T) {
	pd := twoQuads()
	assert.Equal(t, r3.Vec{X: 0.5, Y: 0.5}, pd.PolyCentroid(0))
	lo, hi := pd.Bounds()
	assert.Equal(t, r3.Vec{}, lo)
	assert.Equal(t, r3.Vec{X: 9, Y: 9}, hi)

	var buf bytes.Buffer
	pd.PrintStatistics(&buf)
	assert.Contains(t, buf.String(), "Points: 7")
	assert.Contains(t, buf.String(), "Polygon: 2")
	assert.Contains(t, buf.String(), `Cell array "labels": 2 tuples x 1`)
}
