package loaders

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ErrUnsupportedFormat is returned for mesh files whose extension has no loader
var ErrUnsupportedFormat = errors.New("unsupported mesh format")

// MeshData contains the raw vertex and face data of a loaded mesh.
// Polygons are triangulated as fans, so Faces holds 3 indices per triangle.
type MeshData struct {
	Vertices []core.Vec3
	Faces    []int
}

// TriangleCount returns the number of triangles in the mesh
func (m *MeshData) TriangleCount() int {
	return len(m.Faces) / 3
}

// LoadMesh loads an OBJ or PLY file, chosen by extension
func LoadMesh(filename string) (*MeshData, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".obj":
		return LoadOBJ(filename)
	case ".ply":
		return LoadPLY(filename)
	default:
		return nil, fmt.Errorf("%s: %w", filename, ErrUnsupportedFormat)
	}
}

// appendFan triangulates a convex polygon around its first vertex
func appendFan(faces []int, polygon []int) []int {
	for i := 1; i+1 < len(polygon); i++ {
		faces = append(faces, polygon[0], polygon[i], polygon[i+1])
	}
	return faces
}
