package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// ConstantMedium is a volume of uniform density bounded by a closed shape,
// such as smoke or fog. Rays scatter inside it with an isotropic phase function.
type ConstantMedium struct {
	Boundary      Shape
	Density       float64
	PhaseFunction *material.Material
	negInvDensity float64
}

// NewConstantMedium fills boundary with a medium of the given density and albedo
func NewConstantMedium(boundary Shape, density float64, albedo core.Vec3) *ConstantMedium {
	return &ConstantMedium{
		Boundary:      boundary,
		Density:       density,
		PhaseFunction: material.NewIsotropic(albedo),
		negInvDensity: -1.0 / density,
	}
}

func (c *ConstantMedium) isShape() {}

// Hit samples a scattering distance inside the boundary with one draw from sampler.
func (c *ConstantMedium) Hit(ray core.Ray, tMin, tMax float64, rec *material.HitRecord, sampler core.Sampler) bool {
	if c.Density <= 0 {
		return false
	}

	var entry, exit material.HitRecord
	if !c.Boundary.Hit(ray, math.Inf(-1), math.Inf(1), &entry, sampler) {
		return false
	}
	if !c.Boundary.Hit(ray, entry.T+0.0001, math.Inf(1), &exit, sampler) {
		return false
	}

	t0 := math.Max(entry.T, tMin)
	t1 := math.Min(exit.T, tMax)
	if t0 >= t1 {
		return false
	}
	t0 = math.Max(t0, 0)

	rayLength := ray.Direction.Length()
	distanceInsideBoundary := (t1 - t0) * rayLength
	hitDistance := c.negInvDensity * math.Log(1-sampler.Get1D())

	if hitDistance > distanceInsideBoundary {
		return false
	}

	rec.T = t0 + hitDistance/rayLength
	rec.Point = ray.At(rec.T)
	rec.Normal = ray.Direction.Normalize().Negate() // arbitrary, faces the ray
	rec.FrontFace = true
	rec.UV = core.Vec2{}
	rec.Material = c.PhaseFunction

	return true
}

// BoundingBox returns the boundary's bounding box
func (c *ConstantMedium) BoundingBox() core.AABB {
	return c.Boundary.BoundingBox()
}
