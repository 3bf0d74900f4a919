package writers

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/types"
)

// WriteMeshFile writes a mesh file based on extension
func WriteMeshFile(filename string, pd *mesh.PolyData) error {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".vtp":
		return WriteVTP(filename, pd)
	case ".vtk":
		return WriteLegacyVTK(filename, pd)
	default:
		return errors.Wrapf(types.ErrIO, "unsupported mesh format: %s", ext)
	}
}
