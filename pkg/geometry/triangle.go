package geometry

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

const (
	// triangleEpsilon rejects rays (nearly) parallel to the triangle plane
	triangleEpsilon = 1e-8
	// minAreaSquared is the squared cross-product length below which a
	// triangle or quad spans no area
	minAreaSquared = 1e-30
)

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3          // The three vertices
	Material   *material.Material // Material of the triangle
	normal     core.Vec3          // Cached geometric normal
	bbox       core.AABB          // Cached bounding box
	degenerate bool
}

// NewTriangle creates a new triangle from three vertices
func NewTriangle(v0, v1, v2 core.Vec3, mat *material.Material) *Triangle {
	t := &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		Material: mat,
	}

	cross := v1.Subtract(v0).Cross(v2.Subtract(v0))
	t.normal = cross.Normalize()
	t.degenerate = cross.LengthSquared() < minAreaSquared
	t.bbox = core.NewAABBFromPoints(v0, v1, v2).PadToMinimum()

	return t
}

func (t *Triangle) isShape() {}

// Degenerate returns ErrDegenerateGeometry when the vertices are collinear.
// Degenerate triangles are never hit.
func (t *Triangle) Degenerate() error {
	if t.degenerate {
		return fmt.Errorf("triangle %v %v %v: %w", t.V0, t.V1, t.V2, core.ErrDegenerateGeometry)
	}
	return nil
}

// Hit tests if a ray intersects with the triangle using the Möller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64, rec *material.HitRecord, sampler core.Sampler) bool {
	if t.degenerate {
		return false
	}

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	det := edge1.Dot(h)

	// Ray lies in (or parallel to) the triangle plane
	if det > -triangleEpsilon && det < triangleEpsilon {
		return false
	}

	f := 1.0 / det
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return false
	}

	tHit := f * edge2.Dot(q)
	if tHit < tMin || tHit >= tMax {
		return false
	}

	rec.T = tHit
	rec.Point = ray.At(tHit)
	rec.UV = core.NewVec2(u, v)
	rec.Material = t.Material
	rec.SetFaceNormal(ray, t.normal)

	return true
}

// BoundingBox returns the axis-aligned bounding box for this triangle
func (t *Triangle) BoundingBox() core.AABB {
	return t.bbox
}

// GetNormal returns the triangle's geometric normal
func (t *Triangle) GetNormal() core.Vec3 {
	return t.normal
}
