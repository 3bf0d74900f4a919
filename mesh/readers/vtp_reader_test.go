package readers

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"math"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/vesselmap/types"
)

// unit square split in two quads, labelled 0 and 1
var (
	testCoords = []float64{0, 0, 0, 1, 0, 0, 2, 0, 0, 0, 1, 0, 1, 1, 0, 2, 1, 0}
	testConn   = []int64{0, 1, 4, 3, 1, 2, 5, 4}
	testOffs   = []int64{4, 8}
	testLabels = []int32{0, 1}
)

func float64Bytes(vals []float64) []byte {
	b := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(b[8*i:], math.Float64bits(v))
	}
	return b
}

func int64Bytes(vals []int64) []byte {
	b := make([]byte, 8*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint64(b[8*i:], uint64(v))
	}
	return b
}

func int32Bytes(vals []int32) []byte {
	b := make([]byte, 4*len(vals))
	for i, v := range vals {
		binary.LittleEndian.PutUint32(b[4*i:], uint32(v))
	}
	return b
}

// rawBlock prefixes the payload with a UInt32 byte count
func rawBlock(payload []byte) []byte {
	hdr := make([]byte, 4)
	binary.LittleEndian.PutUint32(hdr, uint32(len(payload)))
	return append(hdr, payload...)
}

// zlibBlock compresses the payload as a single block with a UInt64 header
func zlibBlock(t *testing.T, payload []byte) []byte {
	var zb bytes.Buffer
	zw := zlib.NewWriter(&zb)
	_, err := zw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	hdr := make([]byte, 32)
	binary.LittleEndian.PutUint64(hdr[0:], 1)
	binary.LittleEndian.PutUint64(hdr[8:], uint64(len(payload)))
	binary.LittleEndian.PutUint64(hdr[16:], uint64(len(payload)))
	binary.LittleEndian.PutUint64(hdr[24:], uint64(zb.Len()))
	return append(hdr, zb.Bytes()...)
}

func checkTestMesh(t *testing.T, raw []byte) {
	pd, err := ParseVTP(raw)
	require.NoError(t, err)
	assert.Equal(t, 6, pd.NumPoints())
	assert.Equal(t, r3.Vec{X: 1, Y: 1}, pd.Points[4])
	assert.Equal(t, [][]int{{0, 1, 4, 3}, {1, 2, 5, 4}}, pd.Polys)
	labels, err := pd.CellArray("")
	require.NoError(t, err)
	assert.Equal(t, "labels", labels.Name)
	assert.Equal(t, []float64{0, 1}, labels.Values)
}

func TestParseVTPASCII(t *testing.T) {
	doc := `<?xml version="1.0"?>
<VTKFile type="PolyData" version="0.1" byte_order="LittleEndian">
  <PolyData>
    <Piece NumberOfPoints="6" NumberOfVerts="0" NumberOfLines="0" NumberOfStrips="0" NumberOfPolys="2">
      <CellData Scalars="labels">
        <DataArray type="Int32" Name="labels" format="ascii">0 1</DataArray>
      </CellData>
      <Points>
        <DataArray type="Float32" NumberOfComponents="3" format="ascii">
          0 0 0 1 0 0 2 0 0 0 1 0 1 1 0 2 1 0
        </DataArray>
      </Points>
      <Polys>
        <DataArray type="Int64" Name="connectivity" format="ascii">0 1 4 3 1 2 5 4</DataArray>
        <DataArray type="Int64" Name="offsets" format="ascii">4 8</DataArray>
      </Polys>
    </Piece>
  </PolyData>
</VTKFile>
`
	checkTestMesh(t, []byte(doc))
}

func TestParseVTPInlineBinary(t *testing.T) {
	enc := func(payload []byte) string {
		// header and payload encoded as separate base64 streams
		hdr := rawBlock(nil)
		binary.LittleEndian.PutUint32(hdr, uint32(len(payload)))
		return base64.StdEncoding.EncodeToString(hdr) + base64.StdEncoding.EncodeToString(payload)
	}
	joint := func(payload []byte) string {
		return base64.StdEncoding.EncodeToString(rawBlock(payload))
	}
	for _, encode := range []func([]byte) string{enc, joint} {
		doc := fmt.Sprintf(`<VTKFile type="PolyData" version="0.1" byte_order="LittleEndian" header_type="UInt32">
  <PolyData>
    <Piece NumberOfPoints="6" NumberOfPolys="2">
      <CellData Scalars="labels">
        <DataArray type="Int32" Name="labels" format="binary">%s</DataArray>
      </CellData>
      <Points>
        <DataArray type="Float64" NumberOfComponents="3" format="binary">
          %s
        </DataArray>
      </Points>
      <Polys>
        <DataArray type="Int64" Name="connectivity" format="binary">%s</DataArray>
        <DataArray type="Int64" Name="offsets" format="binary">%s</DataArray>
      </Polys>
    </Piece>
  </PolyData>
</VTKFile>`,
			encode(int32Bytes(testLabels)), encode(float64Bytes(testCoords)),
			encode(int64Bytes(testConn)), encode(int64Bytes(testOffs)))
		checkTestMesh(t, []byte(doc))
	}
}

func TestParseVTPAppendedCompressed(t *testing.T) {
	var (
		blob    bytes.Buffer
		offsets []int
	)
	for _, payload := range [][]byte{
		int32Bytes(testLabels), float64Bytes(testCoords), int64Bytes(testConn), int64Bytes(testOffs),
	} {
		offsets = append(offsets, blob.Len())
		blob.Write(zlibBlock(t, payload))
	}
	var doc bytes.Buffer
	fmt.Fprintf(&doc, `<VTKFile type="PolyData" version="1.0" byte_order="LittleEndian" header_type="UInt64" compressor="vtkZLibDataCompressor">
  <PolyData>
    <Piece NumberOfPoints="6" NumberOfPolys="2">
      <CellData Scalars="labels">
        <DataArray type="Int32" Name="labels" format="appended" offset="%d"/>
      </CellData>
      <Points>
        <DataArray type="Float64" NumberOfComponents="3" format="appended" offset="%d"/>
      </Points>
      <Polys>
        <DataArray type="Int64" Name="connectivity" format="appended" offset="%d"/>
        <DataArray type="Int64" Name="offsets" format="appended" offset="%d"/>
      </Polys>
    </Piece>
  </PolyData>
  <AppendedData encoding="raw">
   _`, offsets[0], offsets[1], offsets[2], offsets[3])
	doc.Write(blob.Bytes())
	doc.WriteString("\n  </AppendedData>\n</VTKFile>\n")
	checkTestMesh(t, doc.Bytes())
}

func TestParseVTPErrors(t *testing.T) {
	_, err := ParseVTP([]byte(`<VTKFile type="UnstructuredGrid"><UnstructuredGrid/></VTKFile>`))
	assert.True(t, errors.Is(err, types.ErrIO))

	_, err = ParseVTP([]byte(`<VTKFile type="PolyData"><PolyData>
<Piece NumberOfPoints="1"><Points><DataArray type="Float64" format="ascii">0 0</DataArray></Points></Piece>
</PolyData></VTKFile>`))
	assert.True(t, errors.Is(err, types.ErrIO))

	_, err = ReadMeshFile(filepath.Join(t.TempDir(), "missing.vtp"))
	assert.True(t, errors.Is(err, types.ErrIO))

	_, err = ReadMeshFile("mesh.stl")
	assert.True(t, errors.Is(err, types.ErrIO))
}
