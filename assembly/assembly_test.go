package assembly

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/vesselmap/mesh/synth"
	"github.com/notargets/vesselmap/ordering"
	"github.com/notargets/vesselmap/types"
	"github.com/notargets/vesselmap/utils"
)

func TestAssembleCoarse(t *testing.T) {
	cfg := synth.DefaultConfig()
	cfg.Branches, cfg.QuadsPerRing = 1, 4
	src, err := synth.TaskMesh(cfg)
	require.NoError(t, err)

	ids, err := ordering.CanonicalIds(ordering.Coarse(cfg.Rings, cfg.QuadsPerRing))
	require.NoError(t, err)
	b, err := Assemble(src, ids, cfg.Rings, cfg.QuadsPerRing)
	require.NoError(t, err)

	assert.Equal(t, 12, b.NumCells())
	// full point table retained
	assert.Equal(t, src.NumPoints(), b.Mesh.NumPoints())
	assert.Equal(t, src.Polys[8], b.Mesh.Polys[0])
	assert.Equal(t, src.Polys[3], b.Mesh.Polys[11])
	assert.Equal(t, (4+1)*(3+1), len(b.Points))
	assert.Equal(t, len(b.Points), len(b.PointCoords()))
	assert.Equal(t, src.Points[b.Points[0]], b.PointCoords()[0])

	labels, err := b.Mesh.CellArray("")
	require.NoError(t, err)
	assert.Equal(t, 12, labels.NumTuples())
}

func TestAssembleFineAndCentroids(t *testing.T) {
	cfg := synth.DefaultConfig()
	cfg.QuadsPerRing = 4
	rows, cols := 2, 5
	src, err := synth.FineMesh(cfg, rows, cols)
	require.NoError(t, err)

	p := ordering.Fine(cfg.Rings, cfg.QuadsPerRing, rows, cols)
	ids, err := ordering.CanonicalIds(p)
	require.NoError(t, err)
	// second branch of three
	ids = ids.AddInPlace(p.BranchCells())
	b, err := Assemble(src, ids, rows, cols)
	require.NoError(t, err)
	assert.Equal(t, p.BranchCells(), b.NumCells())
	assert.Equal(t, p.BranchCells()/(rows*cols)*(rows+1)*(cols+1), len(b.Points))

	cent := b.Centroids()
	assert.Equal(t, b.NumCells(), cent.NumPoints())
	assert.Equal(t, b.NumCells(), len(cent.Verts))
	assert.Equal(t, []int{7}, cent.Verts[7])
	assert.InDelta(t, 0, r3.Norm(r3.Sub(src.PolyCentroid(ids[7]), cent.Points[7])), 1e-12)
}

func TestAssembleOutOfRange(t *testing.T) {
	cfg := synth.DefaultConfig()
	src, err := synth.TaskMesh(cfg)
	require.NoError(t, err)
	_, err = Assemble(src, utils.Index{0, len(src.Polys)}, 1, 2)
	assert.True(t, errors.Is(err, types.ErrIndexOutOfRange))
	_, err = Assemble(src, utils.Index{-1}, 1, 1)
	assert.True(t, errors.Is(err, types.ErrIndexOutOfRange))
}
