package readers

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/notargets/vesselmap/mesh"
	"github.com/notargets/vesselmap/types"
)

// ReadMeshFile reads a mesh file based on extension
func ReadMeshFile(filename string) (*mesh.PolyData, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	switch ext {
	case ".vtp":
		return ReadVTP(filename)
	case ".vtk":
		return ReadLegacyVTK(filename)
	default:
		return nil, errors.Wrapf(types.ErrIO, "unsupported mesh format: %s", ext)
	}
}
