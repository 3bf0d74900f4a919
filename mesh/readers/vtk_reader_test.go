package readers

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/types"
)

func parseLegacyString(s string) (*mesh.PolyData, error) {
	return parseLegacyVTK(bufio.NewScanner(strings.NewReader(s)))
}

func TestReadLegacyVTK(t *testing.T) {
	doc := `# vtk DataFile Version 3.0
two quads
ASCII
DATASET POLYDATA
POINTS 6 float
0 0 0 1 0 0 2 0 0
0 1 0 1 1 0 2 1 0
POLYGONS 2 10
4 0 1 4 3
4 1 2 5 4
CELL_DATA 2
SCALARS labels int 1
LOOKUP_TABLE default
0 1
FIELD FieldData 1
initialATP 1 2 double
0.25 0.75
POINT_DATA 6
FIELD FieldData 1
radii 1 6 double
METADATA
INFORMATION 0

`
	filename := filepath.Join(t.TempDir(), "quads.vtk")
	require.NoError(t, os.WriteFile(filename, []byte(doc), 0644))
	pd, err := ReadMeshFile(filename)
	assert.Error(t, err) // radii needs 6 values

	doc = doc[:len(doc)-len("METADATA\nINFORMATION 0\n\n")] + "1 1 1 1 1 1\nMETADATA\nINFORMATION 0\n\n"
	require.NoError(t, os.WriteFile(filename, []byte(doc), 0644))
	pd, err = ReadMeshFile(filename)
	require.NoError(t, err)
	assert.Equal(t, [][]int{{0, 1, 4, 3}, {1, 2, 5, 4}}, pd.Polys)
	assert.Equal(t, "labels", pd.CellScalars)
	atp, err := pd.CellArray("initialATP")
	require.NoError(t, err)
	assert.Equal(t, []float64{0.25, 0.75}, atp.Values)
	radii, err := pd.PointArray("radii")
	require.NoError(t, err)
	assert.Equal(t, 6, radii.NumTuples())

	{ // version 5 cell layout
		v5 := `# vtk DataFile Version 5.1
v5
ASCII
DATASET POLYDATA
POINTS 6 float
0 0 0 1 0 0 2 0 0 0 1 0 1 1 0 2 1 0
POLYGONS 3 8
OFFSETS vtktypeint64
0 4 8
CONNECTIVITY vtktypeint64
0 1 4 3 1 2 5 4
`
		pd, err = parseLegacyString(v5)
		require.NoError(t, err)
		assert.Equal(t, [][]int{{0, 1, 4, 3}, {1, 2, 5, 4}}, pd.Polys)
	}

	{ // size mismatch in the classic layout
		_, err = parseLegacyString("# vtk DataFile Version 3.0\nx\nASCII\nDATASET POLYDATA\nPOINTS 1 float\n0 0 0\nLINES 1 5\n2 0 0\n")
		assert.True(t, errors.Is(err, types.ErrIO))
	}

	{ // binary legacy files are rejected
		_, err = parseLegacyString("# vtk DataFile Version 3.0\nx\nBINARY\n")
		assert.True(t, errors.Is(err, types.ErrIO))
	}
}
