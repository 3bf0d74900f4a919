package readers

import (
	"bytes"
	"compress/zlib"
	"encoding/base64"
	"encoding/binary"
	"encoding/xml"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/types"
)

// XML PolyData file layout, only the parts used here
type vtkFile struct {
	XMLName    xml.Name     `xml:"VTKFile"`
	Type       string       `xml:"type,attr"`
	ByteOrder  string       `xml:"byte_order,attr"`
	HeaderType string       `xml:"header_type,attr"`
	Compressor string       `xml:"compressor,attr"`
	PolyData   *xmlPolyData `xml:"PolyData"`
	Appended   *xmlAppended `xml:"AppendedData"`
}

type xmlAppended struct {
	Encoding string `xml:"encoding,attr"`
}

type xmlPolyData struct {
	Pieces []xmlPiece `xml:"Piece"`
}

type xmlPiece struct {
	NumberOfPoints int           `xml:"NumberOfPoints,attr"`
	NumberOfVerts  int           `xml:"NumberOfVerts,attr"`
	NumberOfLines  int           `xml:"NumberOfLines,attr"`
	NumberOfStrips int           `xml:"NumberOfStrips,attr"`
	NumberOfPolys  int           `xml:"NumberOfPolys,attr"`
	PointData      xmlAttributes `xml:"PointData"`
	CellData       xmlAttributes `xml:"CellData"`
	Points         xmlArrays     `xml:"Points"`
	Verts          xmlArrays     `xml:"Verts"`
	Lines          xmlArrays     `xml:"Lines"`
	Polys          xmlArrays     `xml:"Polys"`
}

type xmlAttributes struct {
	Scalars string         `xml:"Scalars,attr"`
	Arrays  []xmlDataArray `xml:"DataArray"`
}

type xmlArrays struct {
	Arrays []xmlDataArray `xml:"DataArray"`
}

type xmlDataArray struct {
	Type               string `xml:"type,attr"`
	Name               string `xml:"Name,attr"`
	NumberOfComponents int    `xml:"NumberOfComponents,attr"`
	Format             string `xml:"format,attr"`
	Offset             int64  `xml:"offset,attr"`
	Data               string `xml:",chardata"`
}

// vtpDecoder holds the file wide settings needed to decode binary blocks
type vtpDecoder struct {
	order      binary.ByteOrder
	headerSize int
	compressed bool
	appended   []byte
	appendB64  bool
}

// ReadVTP reads a VTK XML PolyData file. ASCII, inline binary and appended data
// (raw or base64) are supported, optionally zlib compressed.
func ReadVTP(filename string) (pd *mesh.PolyData, err error) {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, types.IOError(err, "reading %s", filename)
	}
	if pd, err = ParseVTP(raw); err != nil {
		return nil, errors.Wrapf(err, "parsing %s", filename)
	}
	return
}

// ParseVTP decodes the bytes of a VTK XML PolyData file
func ParseVTP(raw []byte) (pd *mesh.PolyData, err error) {
	var (
		vf      vtkFile
		dec     *vtpDecoder
		xmlPart []byte
		blob    []byte
	)
	if xmlPart, blob, err = splitAppended(raw); err != nil {
		return
	}
	if err = xml.Unmarshal(xmlPart, &vf); err != nil {
		return nil, errors.Wrapf(types.ErrIO, "invalid XML: %v", err)
	}
	if vf.Type != "PolyData" || vf.PolyData == nil {
		return nil, errors.Wrapf(types.ErrIO, "unsupported VTK XML type %q, expected PolyData", vf.Type)
	}
	if dec, err = newVTPDecoder(&vf, blob); err != nil {
		return
	}
	pd = mesh.NewPolyData()
	for i := range vf.PolyData.Pieces {
		if err = dec.addPiece(pd, &vf.PolyData.Pieces[i]); err != nil {
			return nil, errors.Wrapf(err, "piece %d", i)
		}
	}
	return
}

// splitAppended cuts the raw appended section out of the file so the remainder can
// be parsed as XML. The returned blob starts right after the leading underscore.
func splitAppended(raw []byte) (xmlPart, blob []byte, err error) {
	start := bytes.Index(raw, []byte("<AppendedData"))
	if start < 0 {
		return raw, nil, nil
	}
	gt := bytes.IndexByte(raw[start:], '>')
	if gt < 0 {
		return nil, nil, errors.Wrap(types.ErrIO, "unterminated AppendedData tag")
	}
	tagEnd := start + gt + 1
	us := bytes.IndexByte(raw[tagEnd:], '_')
	end := bytes.LastIndex(raw, []byte("</AppendedData>"))
	if us < 0 || end < tagEnd+us+1 {
		return nil, nil, errors.Wrap(types.ErrIO, "malformed AppendedData section")
	}
	blob = raw[tagEnd+us+1 : end]
	xmlPart = make([]byte, 0, tagEnd+len(raw)-end)
	xmlPart = append(xmlPart, raw[:tagEnd]...)
	xmlPart = append(xmlPart, raw[end:]...)
	return
}

func newVTPDecoder(vf *vtkFile, blob []byte) (dec *vtpDecoder, err error) {
	dec = &vtpDecoder{order: binary.LittleEndian, headerSize: 4, appended: blob}
	switch vf.ByteOrder {
	case "", "LittleEndian":
	case "BigEndian":
		dec.order = binary.BigEndian
	default:
		return nil, errors.Wrapf(types.ErrIO, "unknown byte order %q", vf.ByteOrder)
	}
	switch vf.HeaderType {
	case "", "UInt32":
	case "UInt64":
		dec.headerSize = 8
	default:
		return nil, errors.Wrapf(types.ErrIO, "unsupported header type %q", vf.HeaderType)
	}
	switch vf.Compressor {
	case "":
	case "vtkZLibDataCompressor":
		dec.compressed = true
	default:
		return nil, errors.Wrapf(types.ErrIO, "unsupported compressor %q", vf.Compressor)
	}
	if vf.Appended != nil {
		switch vf.Appended.Encoding {
		case "raw":
		case "base64":
			dec.appendB64 = true
		default:
			return nil, errors.Wrapf(types.ErrIO, "unsupported appended encoding %q", vf.Appended.Encoding)
		}
	}
	return
}

func (dec *vtpDecoder) addPiece(pd *mesh.PolyData, pc *xmlPiece) (err error) {
	var (
		base   = len(pd.Points)
		coords []float64
	)
	if pc.NumberOfStrips > 0 {
		return errors.Wrap(types.ErrIO, "triangle strips are not supported")
	}
	if len(pc.Points.Arrays) != 1 {
		return errors.Wrapf(types.ErrIO, "expected one points array, got %d", len(pc.Points.Arrays))
	}
	if coords, err = dec.values(&pc.Points.Arrays[0]); err != nil {
		return
	}
	if len(coords) != 3*pc.NumberOfPoints {
		return errors.Wrapf(types.ErrIO, "points array holds %d values, expected %d",
			len(coords), 3*pc.NumberOfPoints)
	}
	for i := 0; i < pc.NumberOfPoints; i++ {
		pd.Points = append(pd.Points, r3.Vec{X: coords[3*i], Y: coords[3*i+1], Z: coords[3*i+2]})
	}
	sections := []struct {
		arrays *xmlArrays
		n      int
		dst    *[][]int
	}{
		{&pc.Verts, pc.NumberOfVerts, &pd.Verts},
		{&pc.Lines, pc.NumberOfLines, &pd.Lines},
		{&pc.Polys, pc.NumberOfPolys, &pd.Polys},
	}
	for _, s := range sections {
		var cells [][]int
		if s.n == 0 {
			continue
		}
		if cells, err = dec.cells(s.arrays, s.n, base); err != nil {
			return
		}
		*s.dst = append(*s.dst, cells...)
	}
	if err = dec.attributes(&pd.PointData, &pc.PointData, pc.NumberOfPoints); err != nil {
		return
	}
	nCells := pc.NumberOfVerts + pc.NumberOfLines + pc.NumberOfPolys
	if err = dec.attributes(&pd.CellData, &pc.CellData, nCells); err != nil {
		return
	}
	if pc.PointData.Scalars != "" {
		pd.PointScalars = pc.PointData.Scalars
	}
	if pc.CellData.Scalars != "" {
		pd.CellScalars = pc.CellData.Scalars
	}
	return
}

func (dec *vtpDecoder) cells(xa *xmlArrays, n, base int) (cells [][]int, err error) {
	var (
		conn, offs []float64
	)
	for i := range xa.Arrays {
		a := &xa.Arrays[i]
		switch a.Name {
		case "connectivity":
			conn, err = dec.values(a)
		case "offsets":
			offs, err = dec.values(a)
		}
		if err != nil {
			return
		}
	}
	if len(offs) != n {
		return nil, errors.Wrapf(types.ErrIO, "cell offsets hold %d entries, expected %d", len(offs), n)
	}
	cells = make([][]int, n)
	prev := 0
	for i, o := range offs {
		end := int(o)
		if end < prev || end > len(conn) {
			return nil, errors.Wrapf(types.ErrIO, "cell %d offset %d out of range", i, end)
		}
		cell := make([]int, end-prev)
		for j := range cell {
			cell[j] = int(conn[prev+j]) + base
		}
		cells[i] = cell
		prev = end
	}
	return
}

func (dec *vtpDecoder) attributes(dst *[]*mesh.DataArray, src *xmlAttributes, nTuples int) (err error) {
	for i := range src.Arrays {
		var (
			a    = &src.Arrays[i]
			vals []float64
			nc   = a.NumberOfComponents
		)
		if nc < 1 {
			nc = 1
		}
		if vals, err = dec.values(a); err != nil {
			return
		}
		if len(vals) != nc*nTuples {
			return errors.Wrapf(types.ErrIO, "array %q holds %d values, expected %d",
				a.Name, len(vals), nc*nTuples)
		}
		var existing *mesh.DataArray
		for _, e := range *dst {
			if e.Name == a.Name {
				existing = e
			}
		}
		if existing != nil {
			existing.Values = append(existing.Values, vals...)
			continue
		}
		*dst = append(*dst, &mesh.DataArray{Name: a.Name, Components: nc, Values: vals})
	}
	return
}

// values decodes a DataArray into float64 regardless of its storage type
func (dec *vtpDecoder) values(a *xmlDataArray) (vals []float64, err error) {
	var payload []byte
	switch a.Format {
	case "ascii":
		fields := strings.Fields(a.Data)
		vals = make([]float64, len(fields))
		for i, f := range fields {
			if vals[i], err = strconv.ParseFloat(f, 64); err != nil {
				return nil, errors.Wrapf(types.ErrIO, "array %q: %v", a.Name, err)
			}
		}
		return
	case "binary":
		payload, err = dec.decodeBase64(strings.Join(strings.Fields(a.Data), ""), true)
	case "appended":
		if dec.appended == nil {
			return nil, errors.Wrapf(types.ErrIO, "array %q refers to missing appended data", a.Name)
		}
		if a.Offset < 0 || a.Offset > int64(len(dec.appended)) {
			return nil, errors.Wrapf(types.ErrIO, "array %q appended offset %d out of range", a.Name, a.Offset)
		}
		if dec.appendB64 {
			payload, err = dec.decodeBase64(string(dec.appended[a.Offset:]), false)
		} else {
			payload, err = dec.decodeRaw(dec.appended[a.Offset:])
		}
	default:
		return nil, errors.Wrapf(types.ErrIO, "array %q has unsupported format %q", a.Name, a.Format)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "array %q", a.Name)
	}
	return dec.convert(a.Type, payload)
}

func (dec *vtpDecoder) header(b []byte, i int) uint64 {
	p := b[i*dec.headerSize:]
	if dec.headerSize == 8 {
		return dec.order.Uint64(p)
	}
	return uint64(dec.order.Uint32(p))
}

// decodeRaw reads a header plus payload block from unencoded bytes
func (dec *vtpDecoder) decodeRaw(b []byte) (payload []byte, err error) {
	hs := dec.headerSize
	if len(b) < hs {
		return nil, errors.Wrap(types.ErrIO, "truncated block header")
	}
	if !dec.compressed {
		n := dec.header(b, 0)
		if uint64(len(b)-hs) < n {
			return nil, errors.Wrapf(types.ErrIO, "block of %d bytes truncated", n)
		}
		return b[hs : hs+int(n)], nil
	}
	nb := int(dec.header(b, 0))
	hdrLen := (3 + nb) * hs
	if len(b) < hdrLen {
		return nil, errors.Wrap(types.ErrIO, "truncated compressed block header")
	}
	return dec.inflate(b[:hdrLen], b[hdrLen:])
}

func b64Len(n int) int { return 4 * ((n + 2) / 3) }

// decodeBase64 decodes a header plus payload block. VTK encodes the header and the
// payload as separate base64 streams; inline data written as a single stream is
// accepted as well.
func (dec *vtpDecoder) decodeBase64(s string, inline bool) (payload []byte, err error) {
	var (
		enc = base64.StdEncoding
		hs  = dec.headerSize
		hdr []byte
	)
	s = strings.TrimLeft(s, " \t\r\n")
	if len(s) < b64Len(hs) {
		return nil, errors.Wrap(types.ErrIO, "truncated base64 block header")
	}
	if !dec.compressed {
		if hdr, err = enc.DecodeString(s[:b64Len(hs)]); err == nil && len(hdr) == hs {
			n := int(dec.header(hdr, 0))
			end := b64Len(hs) + b64Len(n)
			if end <= len(s) {
				if payload, err = enc.DecodeString(s[b64Len(hs):end]); err == nil && len(payload) == n {
					return
				}
			}
		}
		if !inline {
			return nil, errors.Wrap(types.ErrIO, "invalid base64 block")
		}
		var all []byte
		if all, err = enc.DecodeString(s); err != nil || len(all) < hs {
			return nil, errors.Wrap(types.ErrIO, "invalid base64 block")
		}
		n := int(dec.header(all, 0))
		if len(all)-hs < n {
			return nil, errors.Wrap(types.ErrIO, "truncated base64 block")
		}
		return all[hs : hs+n], nil
	}
	var first []byte
	if first, err = enc.DecodeString(s[:b64Len(hs)]); err != nil || len(first) < hs {
		return nil, errors.Wrap(types.ErrIO, "invalid compressed block header")
	}
	nb := int(dec.header(first, 0))
	hdrLen := (3 + nb) * hs
	if len(s) < b64Len(hdrLen) {
		return nil, errors.Wrap(types.ErrIO, "truncated compressed block header")
	}
	if hdr, err = enc.DecodeString(s[:b64Len(hdrLen)]); err != nil {
		return nil, errors.Wrap(types.ErrIO, "invalid compressed block header")
	}
	total := 0
	for i := 0; i < nb; i++ {
		total += int(dec.header(hdr, 3+i))
	}
	rest := s[b64Len(hdrLen):]
	if len(rest) < b64Len(total) {
		return nil, errors.Wrap(types.ErrIO, "truncated compressed payload")
	}
	var data []byte
	if data, err = enc.DecodeString(rest[:b64Len(total)]); err != nil {
		return nil, errors.Wrap(types.ErrIO, "invalid compressed payload")
	}
	return dec.inflate(hdr, data)
}

func (dec *vtpDecoder) inflate(hdr, data []byte) (payload []byte, err error) {
	var (
		nb       = int(dec.header(hdr, 0))
		pos      int
		out      bytes.Buffer
		lastSize = int(dec.header(hdr, 2))
	)
	for i := 0; i < nb; i++ {
		cs := int(dec.header(hdr, 3+i))
		if pos+cs > len(data) {
			return nil, errors.Wrap(types.ErrIO, "truncated compressed block")
		}
		zr, zerr := zlib.NewReader(bytes.NewReader(data[pos : pos+cs]))
		if zerr != nil {
			return nil, errors.Wrapf(types.ErrIO, "zlib block %d: %v", i, zerr)
		}
		_, zerr = io.Copy(&out, zr)
		zr.Close()
		if zerr != nil {
			return nil, errors.Wrapf(types.ErrIO, "zlib block %d: %v", i, zerr)
		}
		pos += cs
	}
	want := 0
	if nb > 0 {
		want = (nb-1)*int(dec.header(hdr, 1)) + lastSize
		if lastSize == 0 {
			want = nb * int(dec.header(hdr, 1))
		}
	}
	if out.Len() != want {
		return nil, errors.Wrapf(types.ErrIO, "inflated %d bytes, header says %d", out.Len(), want)
	}
	return out.Bytes(), nil
}

func (dec *vtpDecoder) convert(typ string, b []byte) (vals []float64, err error) {
	var size int
	switch typ {
	case "Int8", "UInt8":
		size = 1
	case "Int16", "UInt16":
		size = 2
	case "Int32", "UInt32", "Float32":
		size = 4
	case "Int64", "UInt64", "Float64":
		size = 8
	default:
		return nil, errors.Wrapf(types.ErrIO, "unsupported data type %q", typ)
	}
	if len(b)%size != 0 {
		return nil, errors.Wrapf(types.ErrIO, "%d bytes is not a whole number of %s values", len(b), typ)
	}
	o := dec.order
	vals = make([]float64, len(b)/size)
	for i := range vals {
		p := b[i*size:]
		switch typ {
		case "Int8":
			vals[i] = float64(int8(p[0]))
		case "UInt8":
			vals[i] = float64(p[0])
		case "Int16":
			vals[i] = float64(int16(o.Uint16(p)))
		case "UInt16":
			vals[i] = float64(o.Uint16(p))
		case "Int32":
			vals[i] = float64(int32(o.Uint32(p)))
		case "UInt32":
			vals[i] = float64(o.Uint32(p))
		case "Float32":
			vals[i] = float64(math.Float32frombits(o.Uint32(p)))
		case "Int64":
			vals[i] = float64(int64(o.Uint64(p)))
		case "UInt64":
			vals[i] = float64(o.Uint64(p))
		case "Float64":
			vals[i] = math.Float64frombits(o.Uint64(p))
		}
	}
	return
}
