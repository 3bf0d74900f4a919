package sinks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/robert-malhotra/go-hdf5/hdf5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/vesselmap/types"
)

func TestHDF5SinkRoundTrip(t *testing.T) {
	dir := t.TempDir()
	vals := []float64{0.25, 0.5, 0.75, 1}
	parent := HDF5Sink{Path: filepath.Join(dir, "parent_atp.h5"), Dataset: "atp"}
	attrs := &GridAttrs{SMCsPerRow: 8, SMCsPerCol: 104, ECsPerCol: 8, ECsPerRow: 40}
	require.NoError(t, parent.Write(vals, attrs))

	f, err := hdf5.Open(parent.Path)
	require.NoError(t, err)
	defer f.Close()
	ds, err := f.Root().OpenDataset("atp")
	require.NoError(t, err)
	got, err := ds.ReadFloat32()
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 0.5, 0.75, 1}, got)
	for name, want := range map[string]int32{
		"numSMCsPerRow": 8, "numSMCsPerCol": 104, "numECsPerCol": 8, "numECsPerRow": 40,
	} {
		a := ds.Attr(name)
		require.NotNil(t, a, name)
		v, err := a.ReadInt32()
		require.NoError(t, err)
		assert.Equal(t, []int32{want}, v, name)
	}

	// daughters carry no attributes
	left := HDF5Sink{Path: filepath.Join(dir, "left_daughter_atp.h5"), Dataset: "atp"}
	require.NoError(t, left.Write(vals, nil))
	f2, err := hdf5.Open(left.Path)
	require.NoError(t, err)
	defer f2.Close()
	ds2, err := f2.Root().OpenDataset("atp")
	require.NoError(t, err)
	assert.Empty(t, ds2.Attrs())

	bad := HDF5Sink{Path: filepath.Join(dir, "missing", "x.h5"), Dataset: "atp"}
	assert.True(t, errors.Is(bad.Write(vals, nil), types.ErrIO))
}

func TestTableSink(t *testing.T) {
	dir := t.TempDir()
	s := TableSink{PointsPath: filepath.Join(dir, "p.txt"), CellsPath: filepath.Join(dir, "c.txt")}
	require.NoError(t, s.Write(
		[][]int{{0, 1, 4, 3}, {7}},
		[]r3.Vec{{X: 1, Y: -0.5, Z: 1.0 / 3}, {X: 2e-7}},
	))
	cells, err := os.ReadFile(s.CellsPath)
	require.NoError(t, err)
	assert.Equal(t, "4 0 1 4 3\n1 7\n", string(cells))
	pts, err := os.ReadFile(s.PointsPath)
	require.NoError(t, err)
	assert.Equal(t, "1.000000 -0.500000 0.333333\n0.000000 0.000000 0.000000\n", string(pts))

	bad := TableSink{PointsPath: s.PointsPath, CellsPath: filepath.Join(dir, "no", "c.txt")}
	assert.True(t, errors.Is(bad.Write(nil, nil), types.ErrIO))
}

func TestWriteSummary(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "configuration_info.txt")
	require.NoError(t, WriteSummary(filename, Summary{
		QuadsPerRing: 12, Rings: 3, SMCRows: 52, SMCCols: 4, ECRows: 4, ECCols: 20,
	}))
	raw, err := os.ReadFile(filename)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, "Processors information", lines[0])
	assert.Equal(t, "Total number of points per branch (vtk points) = 52\t\tm = 13 n = 4", lines[1])
	assert.Equal(t, "Total number of cells per branch (vtk cells) = 36\t\tm = 12 n = 3", lines[2])
	assert.Equal(t, "Total number of SMC mesh points per processor mesh (vtk points) = 265\t\tm = 53 n = 5", lines[3])
	assert.Equal(t, "Total number of SMC mesh cells per processor mesh (vtk cells) = 208\t\tm = 52 n = 4", lines[4])
	assert.Equal(t, "Total number of EC mesh points per processor mesh (vtk points) = 105\t\tm = 5 n = 21", lines[5])
	assert.Equal(t, "Total number of EC mesh cells per processor mesh (vtk cells) = 80\t\tm = 4 n = 20", lines[6])
	assert.Equal(t, "Total number of EC mesh centeroid points per processor mesh (vtk points) = 80\t\tm = 4 n = 20", lines[7])
	assert.Equal(t, "Total number of EC mesh centeroid cells per processor mesh (vtk cells) = 80\t\tm = 4 n = 20", lines[8])
}
