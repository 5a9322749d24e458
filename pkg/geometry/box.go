package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Box represents an axis-aligned cuboid made up of 6 quads.
// Rotated boxes are built by wrapping a Box in RotateY.
type Box struct {
	Min, Max core.Vec3          // Opposite corners
	Material *material.Material // Material for all faces
	faces    [6]*Quad           // The 6 quad faces
	bbox     core.AABB          // Cached bounding box
}

// NewBox creates a box spanning the two opposite corners a and b, in any order
func NewBox(a, b core.Vec3, mat *material.Material) *Box {
	minCorner := core.NewVec3(math.Min(a.X, b.X), math.Min(a.Y, b.Y), math.Min(a.Z, b.Z))
	maxCorner := core.NewVec3(math.Max(a.X, b.X), math.Max(a.Y, b.Y), math.Max(a.Z, b.Z))

	box := &Box{
		Min:      minCorner,
		Max:      maxCorner,
		Material: mat,
	}
	box.generateFaces()
	box.bbox = core.NewAABB(minCorner, maxCorner).PadToMinimum()

	return box
}

// generateFaces creates the 6 quad faces with outward-facing normals
func (b *Box) generateFaces() {
	dx := core.NewVec3(b.Max.X-b.Min.X, 0, 0)
	dy := core.NewVec3(0, b.Max.Y-b.Min.Y, 0)
	dz := core.NewVec3(0, 0, b.Max.Z-b.Min.Z)

	b.faces = [6]*Quad{
		NewQuad(core.NewVec3(b.Min.X, b.Min.Y, b.Max.Z), dx, dy, b.Material),          // front (+Z)
		NewQuad(core.NewVec3(b.Max.X, b.Min.Y, b.Max.Z), dz.Negate(), dy, b.Material), // right (+X)
		NewQuad(core.NewVec3(b.Max.X, b.Min.Y, b.Min.Z), dx.Negate(), dy, b.Material), // back (-Z)
		NewQuad(core.NewVec3(b.Min.X, b.Min.Y, b.Min.Z), dz, dy, b.Material),          // left (-X)
		NewQuad(core.NewVec3(b.Min.X, b.Max.Y, b.Max.Z), dx, dz.Negate(), b.Material), // top (+Y)
		NewQuad(core.NewVec3(b.Min.X, b.Min.Y, b.Min.Z), dx, dz, b.Material),          // bottom (-Y)
	}
}

func (b *Box) isShape() {}

// Hit tests if a ray intersects with any face of the box
func (b *Box) Hit(ray core.Ray, tMin, tMax float64, rec *material.HitRecord, sampler core.Sampler) bool {
	hitAnything := false
	closestSoFar := tMax

	for _, face := range b.faces {
		if face.Hit(ray, tMin, closestSoFar, rec, sampler) {
			hitAnything = true
			closestSoFar = rec.T
		}
	}

	return hitAnything
}

// BoundingBox returns the axis-aligned bounding box for this box
func (b *Box) BoundingBox() core.AABB {
	return b.bbox
}

// Faces returns the six quads making up the box
func (b *Box) Faces() [6]*Quad {
	return b.faces
}
