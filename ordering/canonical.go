// Package ordering maps native cell storage order to the canonical
// branch/ring/quad/row/column traversal order.
package ordering

import (
	"github.com/pkg/errors"

	"github.com/notargets/vesselmap/types"
	"github.com/notargets/vesselmap/utils"
)

// Params fixes the traversal of one branch at one resolution level.
// The coarse level is Rows = Cols = 1.
type Params struct {
	Rings        int
	QuadsPerRing int
	Rows, Cols   int

	// Decimation factors, 1 keeps every quad and every ring
	ScaleCirc  int
	ScaleAxial int
	// Number of consecutive rings decimated together, 1 if zero
	RingGroup int
	// Fold makes every surviving quad absorb its decimated neighbours, so the
	// sequence still covers the whole branch
	Fold bool
}

// Coarse returns the parameters of the task quad level of a branch
func Coarse(rings, quadsPerRing int) Params {
	return Params{Rings: rings, QuadsPerRing: quadsPerRing, Rows: 1, Cols: 1, ScaleCirc: 1, ScaleAxial: 1}
}

// Fine returns the parameters of an element grid level of a branch
func Fine(rings, quadsPerRing, rows, cols int) Params {
	return Params{Rings: rings, QuadsPerRing: quadsPerRing, Rows: rows, Cols: cols, ScaleCirc: 1, ScaleAxial: 1}
}

func (p Params) ringGroup() int {
	if p.RingGroup < 1 {
		return 1
	}
	return p.RingGroup
}

// CellsPerQuad is the number of fine cells nested in one coarse quad
func (p Params) CellsPerQuad() int { return p.Rows * p.Cols }

// BranchCells is the native cell count of the branch at this level
func (p Params) BranchCells() int { return p.Rings * p.QuadsPerRing * p.CellsPerQuad() }

// Len is the length of the canonical sequence
func (p Params) Len() int {
	if p.Fold {
		return p.BranchCells()
	}
	return p.BranchCells() / (p.ScaleCirc * p.ScaleAxial)
}

func (p Params) check() error {
	var (
		rg = p.ringGroup()
	)
	switch {
	case p.Rings < 1 || p.QuadsPerRing < 1 || p.Rows < 1 || p.Cols < 1:
		return errors.Wrapf(types.ErrConfiguration,
			"rings, quads per ring, rows and cols must be positive, got %d, %d, %d, %d",
			p.Rings, p.QuadsPerRing, p.Rows, p.Cols)
	case p.ScaleCirc < 1 || p.ScaleAxial < 1:
		return errors.Wrapf(types.ErrConfiguration,
			"scale factors must be at least 1, got circ %d axial %d", p.ScaleCirc, p.ScaleAxial)
	case p.ScaleCirc > p.QuadsPerRing:
		return errors.Wrapf(types.ErrConfiguration,
			"circumferential scale %d exceeds %d quads per ring", p.ScaleCirc, p.QuadsPerRing)
	case p.QuadsPerRing%p.ScaleCirc != 0:
		return errors.Wrapf(types.ErrConfiguration,
			"circumferential scale %d does not divide %d quads per ring", p.ScaleCirc, p.QuadsPerRing)
	}
	if p.ScaleAxial == 1 {
		return nil
	}
	if p.Rings%rg != 0 {
		return errors.Wrapf(types.ErrConfiguration, "ring group %d does not divide %d rings", rg, p.Rings)
	}
	groups := p.Rings / rg
	switch {
	case p.ScaleAxial > groups:
		return errors.Wrapf(types.ErrConfiguration,
			"axial scale %d exceeds %d ring groups", p.ScaleAxial, groups)
	case groups%p.ScaleAxial != 0:
		return errors.Wrapf(types.ErrConfiguration,
			"axial scale %d does not divide %d ring groups", p.ScaleAxial, groups)
	case (groups/p.ScaleAxial*rg)%2 != 0:
		return errors.Wrapf(types.ErrConfiguration,
			"axial scale %d leaves %d rings, pairwise swap needs an even count",
			p.ScaleAxial, groups/p.ScaleAxial*rg)
	}
	return nil
}

// Validate checks the parameters against the native cell count of the branch's source array
func (p Params) Validate(nativeCells int) (err error) {
	if err = p.check(); err != nil {
		return
	}
	if p.BranchCells() > nativeCells {
		err = errors.Wrapf(types.ErrConfiguration,
			"%d rings x %d quads x %d cells per quad exceeds the %d native cells",
			p.Rings, p.QuadsPerRing, p.CellsPerQuad(), nativeCells)
	}
	return
}

// RingOrder lists native ring indices in visiting order: from the last ring down to 0.
// Under axial decimation only every ScaleAxial-th ring group survives and the
// survivors are exchanged pairwise.
func RingOrder(p Params) (rings utils.Index, err error) {
	if err = p.check(); err != nil {
		return
	}
	rings = utils.NewReverseRange(0, p.Rings-1)
	if p.ScaleAxial == 1 {
		return
	}
	var (
		rg   = p.ringGroup()
		kept = make(utils.Index, 0, len(rings)/p.ScaleAxial)
	)
	for pos, ring := range rings {
		if (pos/rg)%p.ScaleAxial == 0 {
			kept = append(kept, ring)
		}
	}
	if err = kept.SwapPairs(); err != nil {
		return nil, errors.Wrap(types.ErrConfiguration, err.Error())
	}
	return kept, nil
}

// Cell is one step of the canonical traversal
type Cell struct {
	Ring, Quad int
	// Row and Col are local to the quad's element grid
	Row, Col int
	// Fold repetitions, zero unless Params.Fold is set
	ExtraAxial, ExtraCirc int
	// Native id relative to the start of the branch
	ID int
}

// Walk visits every cell of the canonical traversal in order
func Walk(p Params, visit func(c Cell)) (err error) {
	var (
		rings  utils.Index
		rc     = p.CellsPerQuad()
		rg     = p.ringGroup()
		nAxial = 1
		nCirc  = 1
	)
	if rings, err = RingOrder(p); err != nil {
		return
	}
	if p.Fold {
		nAxial, nCirc = p.ScaleAxial, p.ScaleCirc
	}
	for _, ring := range rings {
		for quad := 0; quad < p.QuadsPerRing; quad++ {
			if quad%p.ScaleCirc != 0 {
				continue
			}
			base := (ring*p.QuadsPerRing + quad) * rc
			for ea := 0; ea < nAxial; ea++ {
				axialOffset := -ea * rc * p.QuadsPerRing * rg
				for row := p.Rows - 1; row >= 0; row-- {
					for ec := 0; ec < nCirc; ec++ {
						circOffset := ec * rc
						for col := 0; col < p.Cols; col++ {
							visit(Cell{
								Ring: ring, Quad: quad, Row: row, Col: col,
								ExtraAxial: ea, ExtraCirc: ec,
								ID: base + row*p.Cols + col + circOffset + axialOffset,
							})
						}
					}
				}
			}
		}
	}
	return
}

// CanonicalIds returns the native ids of one branch, relative to the branch start,
// in canonical order
func CanonicalIds(p Params) (ids utils.Index, err error) {
	if err = p.check(); err != nil {
		return
	}
	ids = make(utils.Index, 0, p.Len())
	if err = Walk(p, func(c Cell) { ids = append(ids, c.ID) }); err != nil {
		return nil, err
	}
	return
}
