package integrator

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// PointsIntegrator is a debug integrator that shows each surface's flat color.
// Combined with point-mode meshes it gives a quick preview of mesh placement.
type PointsIntegrator struct{}

// NewPointsIntegrator creates a points integrator
func NewPointsIntegrator() *PointsIntegrator {
	return &PointsIntegrator{}
}

// RayColor returns the first hit's display color, or the background on a miss
func (p *PointsIntegrator) RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Vec3 {
	var hit material.HitRecord
	if !scene.BVH.Hit(ray, shadowAcneEpsilon, math.Inf(1), &hit, sampler) {
		return scene.Background.Color(ray)
	}
	return hit.Material.DisplayColor(hit.UV, hit.Point)
}
