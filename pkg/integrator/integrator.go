package integrator

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// Integrator defines the interface for light transport algorithms.
// Implementations must be safe for concurrent use; the sampler is owned by the caller.
type Integrator interface {
	RayColor(ray core.Ray, scene *scene.Scene, sampler core.Sampler) core.Vec3
}

// New returns the integrator a scene's sampling config asks for
func New(config scene.SamplingConfig) Integrator {
	if config.AsPoints {
		return NewPointsIntegrator()
	}
	return NewPathTracingIntegrator(config)
}
