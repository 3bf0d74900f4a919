package topology

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/vesselmap/types"
)

func labelRun(counts ...int) (labels []int) {
	for l, n := range counts {
		for i := 0; i < n; i++ {
			labels = append(labels, l)
		}
	}
	return
}

func TestResolve(t *testing.T) {
	lay, err := Resolve(labelRun(12, 12, 12), 4, RingCheckStrict)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 3, 1: 3, 2: 3}, lay.Rings)
	assert.Equal(t, []int{0, 1, 2}, lay.Labels())
	assert.True(t, lay.Uniform())
	assert.Equal(t, 12, lay.BranchCells(1))
	assert.Equal(t, 24, lay.FirstCell(2))
	assert.Equal(t, "{0:3, 1:3, 2:3}", lay.String())

	// Branch 1 of an 8 cell per quad fine mesh starts at 1*4*3*8
	off, err := lay.CellOffset(1, 8)
	require.NoError(t, err)
	assert.Equal(t, 96, off)
	off, err = lay.CellOffset(0, 8)
	require.NoError(t, err)
	assert.Equal(t, 0, off)

	_, err = lay.CellOffset(5, 8)
	assert.True(t, errors.Is(err, types.ErrConfiguration))
}

func TestResolveRingCheck(t *testing.T) {
	labels := labelRun(12, 8, 8)
	_, err := Resolve(labels, 4, RingCheckStrict)
	assert.True(t, errors.Is(err, types.ErrInconsistentTopology))

	lay, err := Resolve(labels, 4, RingCheckWarn)
	require.NoError(t, err)
	assert.Equal(t, map[int]int{0: 3, 1: 2, 2: 2}, lay.Rings)
	assert.False(t, lay.Uniform())
	// warn only lets the task level through, offsets always need uniform rings
	_, err = lay.CellOffset(1, 8)
	assert.True(t, errors.Is(err, types.ErrInconsistentTopology))
}

func TestResolveErrors(t *testing.T) {
	{ // inexact ring count
		_, err := Resolve(labelRun(12, 10, 12), 4, RingCheckWarn)
		assert.True(t, errors.Is(err, types.ErrConfiguration))
	}
	{ // label gap
		labels := append(labelRun(4), 2, 2, 2, 2)
		_, err := Resolve(labels, 4, RingCheckWarn)
		assert.True(t, errors.Is(err, types.ErrInconsistentTopology))
	}
	{ // interleaved labels
		labels := []int{0, 0, 1, 1, 0, 0, 1, 1}
		_, err := Resolve(labels, 2, RingCheckWarn)
		assert.True(t, errors.Is(err, types.ErrInconsistentTopology))
	}
	{
		_, err := Resolve(nil, 4, RingCheckWarn)
		assert.True(t, errors.Is(err, types.ErrInconsistentTopology))
		_, err = Resolve(labelRun(4), 0, RingCheckWarn)
		assert.True(t, errors.Is(err, types.ErrConfiguration))
	}
}

func TestParseRingCheck(t *testing.T) {
	rc, err := ParseRingCheck("Strict")
	require.NoError(t, err)
	assert.Equal(t, RingCheckStrict, rc)
	rc, err = ParseRingCheck("")
	require.NoError(t, err)
	assert.Equal(t, RingCheckWarn, rc)
	_, err = ParseRingCheck("lenient")
	assert.True(t, errors.Is(err, types.ErrConfiguration))
	assert.Equal(t, "strict", RingCheckStrict.String())
}
