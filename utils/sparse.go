package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
)

// CSR wraps a compressed sparse row matrix with a name for diagnostics
type CSR struct {
	M    *sparse.CSR
	name string
}

// NewSelectionCSR builds the len(I) x nc matrix with a single 1 in row i at column I[i].
// Multiplying it with a vector gathers the entries named by I.
func NewSelectionCSR(name string, I Index, nc int) (R CSR, err error) {
	if err = I.CheckBounds(nc); err != nil {
		err = fmt.Errorf("selection matrix %q: %v", name, err)
		return
	}
	var (
		nr   = len(I)
		ia   = make([]int, nr+1)
		ja   = make([]int, nr)
		data = make([]float64, nr)
	)
	for i, j := range I {
		ia[i+1] = i + 1
		ja[i] = j
		data[i] = 1
	}
	R = CSR{
		M:    sparse.NewCSR(nr, nc, ia, ja, data),
		name: name,
	}
	return
}

func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) NNZ() int            { return m.M.NNZ() }
func (m CSR) Name() string        { return m.name }

// MulVec returns m * x
func (m CSR) MulVec(x []float64) (y []float64, err error) {
	nr, nc := m.Dims()
	if len(x) != nc {
		err = fmt.Errorf("matrix %q has %d columns, vector has %d entries", m.name, nc, len(x))
		return
	}
	y = make([]float64, nr)
	m.M.MulVecTo(y, false, x)
	return
}

// ColumnCounts returns the number of non zeros in each column
func (m CSR) ColumnCounts() (counts []int) {
	_, nc := m.Dims()
	counts = make([]int, nc)
	m.M.DoNonZero(func(_, j int, _ float64) {
		counts[j]++
	})
	return
}
