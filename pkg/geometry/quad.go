package geometry

import (
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Quad represents a parallelogram defined by a corner and two edge vectors
type Quad struct {
	Corner   core.Vec3          // One corner of the quad
	U        core.Vec3          // First edge vector
	V        core.Vec3          // Second edge vector
	Normal   core.Vec3          // Unit normal (U × V normalized)
	Material *material.Material // Material of the quad
	D        float64            // Plane equation constant: normal · p = D
	W        core.Vec3          // Reciprocal basis for planar coordinates
	bbox     core.AABB
}

// NewQuad creates a new quad from a corner point and two edge vectors
func NewQuad(corner, u, v core.Vec3, mat *material.Material) *Quad {
	n := u.Cross(v)
	normal := n.Normalize()

	q := &Quad{
		Corner:   corner,
		U:        u,
		V:        v,
		Normal:   normal,
		Material: mat,
		D:        normal.Dot(corner),
	}
	if n.LengthSquared() >= minAreaSquared {
		q.W = n.Multiply(1.0 / n.Dot(n))
	}

	q.bbox = core.NewAABBFromPoints(
		corner,
		corner.Add(u),
		corner.Add(v),
		corner.Add(u).Add(v),
	).PadToMinimum()

	return q
}

func (q *Quad) isShape() {}

// Degenerate returns ErrDegenerateGeometry when the edges span no area.
// Degenerate quads are never hit.
func (q *Quad) Degenerate() error {
	if q.W == (core.Vec3{}) {
		return fmt.Errorf("quad at %v with edges %v, %v: %w", q.Corner, q.U, q.V, core.ErrDegenerateGeometry)
	}
	return nil
}

// Hit tests if a ray intersects with the quad
func (q *Quad) Hit(ray core.Ray, tMin, tMax float64, rec *material.HitRecord, sampler core.Sampler) bool {
	if q.W == (core.Vec3{}) {
		return false
	}

	denominator := ray.Direction.Dot(q.Normal)

	// Ray parallel to the plane
	if math.Abs(denominator) < 1e-8 {
		return false
	}

	t := (q.D - ray.Origin.Dot(q.Normal)) / denominator
	if t < tMin || t >= tMax {
		return false
	}

	hitPoint := ray.At(t)
	hitVector := hitPoint.Subtract(q.Corner)

	// Planar coordinates of the hit point in the (U, V) basis
	alpha := q.W.Dot(hitVector.Cross(q.V))
	beta := q.W.Dot(q.U.Cross(hitVector))

	if alpha < 0 || alpha > 1 || beta < 0 || beta > 1 {
		return false
	}

	rec.T = t
	rec.Point = hitPoint
	rec.UV = core.NewVec2(alpha, beta)
	rec.Material = q.Material
	rec.SetFaceNormal(ray, q.Normal)

	return true
}

// BoundingBox returns the axis-aligned bounding box for this quad
func (q *Quad) BoundingBox() core.AABB {
	return q.bbox
}
