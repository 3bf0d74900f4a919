// Package sinks writes the per-branch outputs read by the coupled cells solver.
package sinks

import (
	"github.com/robert-malhotra/go-hdf5/hdf5"

	"github.com/notargets/vesselmap/types"
)

// GridAttrs are the cell grid dimensions stored with the root branch dataset
type GridAttrs struct {
	SMCsPerRow int
	SMCsPerCol int
	ECsPerCol  int
	ECsPerRow  int
}

func (ga *GridAttrs) options() (opts []hdf5.DatasetOption) {
	if ga == nil {
		return
	}
	return []hdf5.DatasetOption{
		hdf5.WithAttribute("numSMCsPerRow", int32(ga.SMCsPerRow)),
		hdf5.WithAttribute("numSMCsPerCol", int32(ga.SMCsPerCol)),
		hdf5.WithAttribute("numECsPerCol", int32(ga.ECsPerCol)),
		hdf5.WithAttribute("numECsPerRow", int32(ga.ECsPerRow)),
	}
}

// HDF5Sink writes one single precision dataset per file
type HDF5Sink struct {
	Path    string
	Dataset string
}

// Write stores vals as a float32 dataset. Attributes are attached only when attrs is non nil.
func (s HDF5Sink) Write(vals []float64, attrs *GridAttrs) (err error) {
	var (
		f    *hdf5.File
		data = make([]float32, len(vals))
	)
	for i, v := range vals {
		data[i] = float32(v)
	}
	if f, err = hdf5.Create(s.Path); err != nil {
		return types.IOError(err, "creating %s", s.Path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = types.IOError(cerr, "closing %s", s.Path)
		}
	}()
	if _, err = f.Root().CreateDataset(s.Dataset, data, attrs.options()...); err != nil {
		return types.IOError(err, "writing dataset %s to %s", s.Dataset, s.Path)
	}
	return
}
