package geometry

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// TriangleMesh represents a collection of triangles with efficient ray intersection.
// It uses an internal BVH for fast intersection tests.
type TriangleMesh struct {
	shapes     []Shape // Triangles, or vertex spheres in point mode
	bvh        *BVH
	material   *material.Material
	degenerate int
}

// TriangleMeshOptions contains optional parameters for triangle mesh creation.
// Vertices are transformed scale first, then rotated about +Y, then translated.
type TriangleMeshOptions struct {
	Scale       float64   // Uniform scale; 0 means 1
	RotateY     float64   // Rotation about +Y in degrees
	Translate   core.Vec3 // Offset applied last
	AsPoints    bool      // Replace each triangle with spheres at its vertices
	PointRadius float64   // Sphere radius in point mode
}

// NewTriangleMesh creates a new triangle mesh from vertices and face indices.
// Each group of 3 indices in faces forms a triangle.
func NewTriangleMesh(vertices []core.Vec3, faces []int, mat *material.Material, options *TriangleMeshOptions) (*TriangleMesh, error) {
	if len(faces)%3 != 0 {
		return nil, fmt.Errorf("face index count %d is not a multiple of 3: %w", len(faces), core.ErrInvalidScene)
	}
	if len(faces) == 0 {
		return nil, fmt.Errorf("mesh has no faces: %w", core.ErrInvalidScene)
	}
	if options == nil {
		options = &TriangleMeshOptions{}
	}

	workingVertices := transformVertices(vertices, options)
	numTriangles := len(faces) / 3

	mesh := &TriangleMesh{material: mat}
	if options.AsPoints {
		mesh.shapes = make([]Shape, 0, numTriangles*3)
	} else {
		mesh.shapes = make([]Shape, 0, numTriangles)
	}

	for i := 0; i < numTriangles; i++ {
		i0, i1, i2 := faces[i*3], faces[i*3+1], faces[i*3+2]
		for _, idx := range [3]int{i0, i1, i2} {
			if idx < 0 || idx >= len(workingVertices) {
				return nil, fmt.Errorf("face %d references vertex %d of %d: %w", i, idx, len(workingVertices), core.ErrInvalidScene)
			}
		}

		v0, v1, v2 := workingVertices[i0], workingVertices[i1], workingVertices[i2]
		if options.AsPoints {
			mesh.shapes = append(mesh.shapes,
				NewSphere(v0, options.PointRadius, mat),
				NewSphere(v1, options.PointRadius, mat),
				NewSphere(v2, options.PointRadius, mat),
			)
			continue
		}

		triangle := NewTriangle(v0, v1, v2, mat)
		if triangle.Degenerate() != nil {
			mesh.degenerate++
		}
		mesh.shapes = append(mesh.shapes, triangle)
	}

	bvh, err := NewBVH(mesh.shapes)
	if err != nil {
		return nil, err
	}
	mesh.bvh = bvh

	return mesh, nil
}

// transformVertices applies scale, then rotate-Y, then translate
func transformVertices(vertices []core.Vec3, options *TriangleMeshOptions) []core.Vec3 {
	scale := options.Scale
	if scale == 0 {
		scale = 1
	}
	if scale == 1 && options.RotateY == 0 && options.Translate == (core.Vec3{}) {
		return vertices
	}

	out := make([]core.Vec3, len(vertices))
	for i, v := range vertices {
		v = v.Multiply(scale)
		if options.RotateY != 0 {
			v = v.RotateY(options.RotateY)
		}
		out[i] = v.Add(options.Translate)
	}
	return out
}

func (tm *TriangleMesh) isShape() {}

// Hit tests if a ray intersects with any triangle in the mesh
func (tm *TriangleMesh) Hit(ray core.Ray, tMin, tMax float64, rec *material.HitRecord, sampler core.Sampler) bool {
	return tm.bvh.Hit(ray, tMin, tMax, rec, sampler)
}

// BoundingBox returns the axis-aligned bounding box for the entire mesh
func (tm *TriangleMesh) BoundingBox() core.AABB {
	return tm.bvh.BoundingBox()
}

// GetTriangleCount returns the number of primitives in this mesh
func (tm *TriangleMesh) GetTriangleCount() int {
	return len(tm.shapes)
}

// DegenerateCount returns how many zero-area triangles the mesh kept
func (tm *TriangleMesh) DegenerateCount() int {
	return tm.degenerate
}

// GetShapes returns the individual primitives (for debugging or special operations)
func (tm *TriangleMesh) GetShapes() []Shape {
	return tm.shapes
}

// Material returns the material shared by all primitives of the mesh
func (tm *TriangleMesh) Material() *material.Material {
	return tm.material
}

// Stats returns statistics about the mesh's internal BVH
func (tm *TriangleMesh) Stats() BVHStats {
	return tm.bvh.Stats()
}
