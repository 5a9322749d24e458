package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// NewSpecular creates a glossy material: a diffuse base under a specular coat.
// specProb is the chance a bounce is specular; smoothness blends that bounce
// between the diffuse direction (0) and a mirror reflection (1).
func NewSpecular(albedo, specColor core.Vec3, smoothness, specProb float64) *Material {
	return &Material{
		Kind:       KindSpecular,
		Texture:    NewSolidTexture(albedo),
		SpecColor:  specColor,
		Smoothness: math.Max(0.0, math.Min(smoothness, 1.0)),
		SpecProb:   math.Max(0.0, math.Min(specProb, 1.0)),
	}
}

func (m *Material) scatterSpecular(rayIn core.Ray, rec *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	diffuse := core.SampleCosineHemisphere(rec.Normal, sampler.Get2D())

	if sampler.Get1D() >= m.SpecProb {
		return ScatterResult{
			Incoming:    rayIn,
			Scattered:   core.NewRay(rec.Point, diffuse),
			Attenuation: m.Texture.Value(rec.UV, rec.Point),
		}, true
	}

	mirror := rayIn.Direction.Normalize().Reflect(rec.Normal)
	direction := diffuse.Lerp(mirror, m.Smoothness)
	if direction.NearZero() {
		direction = rec.Normal
	}

	return ScatterResult{
		Incoming:    rayIn,
		Scattered:   core.NewRay(rec.Point, direction.Normalize()),
		Attenuation: m.SpecColor,
	}, true
}
