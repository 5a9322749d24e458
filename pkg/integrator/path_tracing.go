package integrator

import (
	"math"
	"sync/atomic"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/scene"
)

const (
	// Rays start this far along their direction to avoid re-hitting their own surface
	shadowAcneEpsilon = 0.001

	// Paths whose throughput sums below this cannot contribute visibly
	minThroughput = 0.0001
)

// PathTracingIntegrator implements unidirectional path tracing
type PathTracingIntegrator struct {
	config        scene.SamplingConfig
	instabilities atomic.Int64
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(config scene.SamplingConfig) *PathTracingIntegrator {
	return &PathTracingIntegrator{
		config: config,
	}
}

// RayColor estimates the radiance arriving along ray.
// The primary ray is always intersected; MaxDepth limits the number of scatter events.
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Vec3 {
	radiance := core.Vec3{}
	throughput := core.NewVec3(1, 1, 1)

	for depth := 0; ; depth++ {
		var hit material.HitRecord
		if !scene.BVH.Hit(ray, shadowAcneEpsilon, math.Inf(1), &hit, sampler) {
			radiance = radiance.Add(throughput.MultiplyVec(scene.Background.Color(ray)))
			break
		}

		emitted := hit.Material.Emitted(hit.UV, hit.Point)
		radiance = radiance.Add(throughput.MultiplyVec(emitted))

		if depth >= pt.config.MaxDepth {
			break
		}

		scatter, didScatter := hit.Material.Scatter(ray, &hit, sampler)
		if !didScatter {
			break
		}

		throughput = throughput.MultiplyVec(scatter.Attenuation)
		if throughput.X+throughput.Y+throughput.Z < minThroughput {
			break
		}
		ray = scatter.Scattered
	}

	return pt.sanitize(radiance)
}

// sanitize replaces NaN, infinite or negative radiance with black and counts it
func (pt *PathTracingIntegrator) sanitize(radiance core.Vec3) core.Vec3 {
	if radiance.IsFinite() && radiance.X >= 0 && radiance.Y >= 0 && radiance.Z >= 0 {
		return radiance
	}
	pt.instabilities.Add(1)
	return core.Vec3{}
}

// Instabilities returns how many samples were discarded as numerically unstable
func (pt *PathTracingIntegrator) Instabilities() int64 {
	return pt.instabilities.Load()
}
