package geometry

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Shape is anything a ray can hit. The set of shapes is closed: Sphere,
// Quad, Triangle, Box, the instance transforms, ConstantMedium,
// TriangleMesh and BVH.
//
// Hit reports the closest intersection with t in [tMin, tMax). On a hit it
// fills rec in place; on a miss rec is left untouched. The normal written
// to rec is unit length and faces the incoming ray.
// Shapes that sample, such as ConstantMedium, draw from sampler; the rest ignore it.
type Shape interface {
	Hit(ray core.Ray, tMin, tMax float64, rec *material.HitRecord, sampler core.Sampler) bool
	BoundingBox() core.AABB
	isShape()
}
