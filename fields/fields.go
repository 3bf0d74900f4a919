// Package fields applies canonical orderings to per-cell scalar arrays.
package fields

import (
	"fmt"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/notargets/vesselmap/types"
	"github.com/notargets/vesselmap/utils"
)

// Reorder gathers field[offset+id] for every id in turn. The ids are the canonical
// sequence of one branch, relative to the start of its block of n values at offset.
// An id outside the block belongs to another branch and is an error.
func Reorder(field []float64, offset, n int, ids utils.Index) (out []float64, err error) {
	var block []float64
	if block, err = branchBlock(field, offset, n); err != nil {
		return
	}
	out = make([]float64, len(ids))
	for i, id := range ids {
		if id < 0 || id >= n {
			return nil, errors.Wrapf(types.ErrIndexOutOfRange,
				"canonical position %d maps to native id %d outside the branch block [%d, %d)",
				i, offset+id, offset, offset+n)
		}
		out[i] = block[id]
	}
	return
}

// branchBlock is field[offset:offset+n]
func branchBlock(field []float64, offset, n int) ([]float64, error) {
	if offset < 0 || n < 0 || offset+n > len(field) {
		return nil, errors.Wrapf(types.ErrIndexOutOfRange,
			"branch block [%d, %d) outside field of %d values", offset, offset+n, len(field))
	}
	return field[offset : offset+n], nil
}

// SelectionMatrix is the len(ids) x n 0/1 matrix whose product with a branch block
// equals the gathered field
func SelectionMatrix(ids utils.Index, n int) (S utils.CSR, err error) {
	if S, err = utils.NewSelectionCSR("selection", ids, n); err != nil {
		err = errors.Wrap(types.ErrIndexOutOfRange, err.Error())
	}
	return
}

// VerifyReorder recomputes the reordered field as a sparse product and compares
func VerifyReorder(field []float64, offset, n int, ids utils.Index, got []float64) (err error) {
	var (
		S     utils.CSR
		want  []float64
		block []float64
	)
	if block, err = branchBlock(field, offset, n); err != nil {
		return
	}
	if S, err = SelectionMatrix(ids, n); err != nil {
		return
	}
	if want, err = S.MulVec(block); err != nil {
		return errors.Wrap(types.ErrInconsistentTopology, err.Error())
	}
	if len(want) != len(got) {
		return errors.Wrapf(types.ErrInconsistentTopology,
			"reordered field has %d values, selection gives %d", len(got), len(want))
	}
	for i := range want {
		if want[i] != got[i] {
			return errors.Wrapf(types.ErrInconsistentTopology,
				"reordered value %d is %v, selection gives %v", i, got[i], want[i])
		}
	}
	return
}

// IsPermutation reports whether ids visits every one of n native ids exactly once
func IsPermutation(ids utils.Index, n int) bool {
	if len(ids) != n {
		return false
	}
	S, err := utils.NewSelectionCSR("permutation", ids, n)
	if err != nil {
		return false
	}
	for _, c := range S.ColumnCounts() {
		if c != 1 {
			return false
		}
	}
	return true
}

// Stats summarises a field for the run log
type Stats struct {
	N              int
	Min, Max, Mean float64
}

func Summarize(vals []float64) (st Stats) {
	st.N = len(vals)
	if st.N == 0 {
		return
	}
	st.Min, st.Max = floats.Min(vals), floats.Max(vals)
	st.Mean = floats.Sum(vals) / float64(st.N)
	return
}

func (st Stats) String() string {
	return fmt.Sprintf("n = %d, min = %8.5f, max = %8.5f, mean = %8.5f", st.N, st.Min, st.Max, st.Mean)
}
