package geometry

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Translate is an instance of Object moved by Offset
type Translate struct {
	Object Shape
	Offset core.Vec3
	bbox   core.AABB
}

// NewTranslate wraps object so it appears shifted by offset
func NewTranslate(object Shape, offset core.Vec3) *Translate {
	return &Translate{
		Object: object,
		Offset: offset,
		bbox:   object.BoundingBox().Translate(offset),
	}
}

func (t *Translate) isShape() {}

// Hit moves the ray into object space, intersects, and moves the hit point back
func (t *Translate) Hit(ray core.Ray, tMin, tMax float64, rec *material.HitRecord, sampler core.Sampler) bool {
	offsetRay := core.NewRay(ray.Origin.Subtract(t.Offset), ray.Direction)
	if !t.Object.Hit(offsetRay, tMin, tMax, rec, sampler) {
		return false
	}
	rec.Point = rec.Point.Add(t.Offset)
	return true
}

// BoundingBox returns the translated bounding box
func (t *Translate) BoundingBox() core.AABB {
	return t.bbox
}

// RotateY is an instance of Object rotated about the +Y axis
type RotateY struct {
	Object   Shape
	Degrees  float64
	sinTheta float64
	cosTheta float64
	bbox     core.AABB
}

// NewRotateY wraps object so it appears rotated by degrees about +Y
func NewRotateY(object Shape, degrees float64) *RotateY {
	sinTheta, cosTheta := math.Sincos(degrees * math.Pi / 180.0)
	r := &RotateY{
		Object:   object,
		Degrees:  degrees,
		sinTheta: sinTheta,
		cosTheta: cosTheta,
	}

	corners := object.BoundingBox().Corners()
	rotated := make([]core.Vec3, len(corners))
	for i, c := range corners {
		rotated[i] = r.toWorld(c)
	}
	r.bbox = core.NewAABBFromPoints(rotated...)

	return r
}

func (r *RotateY) isShape() {}

// toObject rotates a world-space vector by -theta
func (r *RotateY) toObject(v core.Vec3) core.Vec3 {
	return core.NewVec3(
		r.cosTheta*v.X-r.sinTheta*v.Z,
		v.Y,
		r.sinTheta*v.X+r.cosTheta*v.Z,
	)
}

// toWorld rotates an object-space vector by +theta
func (r *RotateY) toWorld(v core.Vec3) core.Vec3 {
	return core.NewVec3(
		r.cosTheta*v.X+r.sinTheta*v.Z,
		v.Y,
		-r.sinTheta*v.X+r.cosTheta*v.Z,
	)
}

// Hit rotates the ray into object space, intersects, and rotates the result back
func (r *RotateY) Hit(ray core.Ray, tMin, tMax float64, rec *material.HitRecord, sampler core.Sampler) bool {
	rotatedRay := core.NewRay(r.toObject(ray.Origin), r.toObject(ray.Direction))
	if !r.Object.Hit(rotatedRay, tMin, tMax, rec, sampler) {
		return false
	}

	// Rotation preserves dot products, so the normal still faces the ray
	rec.Point = r.toWorld(rec.Point)
	rec.Normal = r.toWorld(rec.Normal)
	return true
}

// BoundingBox returns the box of the rotated object's box corners
func (r *RotateY) BoundingBox() core.AABB {
	return r.bbox
}
