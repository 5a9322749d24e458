package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// NewDielectric creates a new clear dielectric material
func NewDielectric(refractiveIndex float64) *Material {
	return NewTintedDielectric(refractiveIndex, core.Grey(1.0))
}

// NewTintedDielectric creates a dielectric that attenuates by tint on every interaction
func NewTintedDielectric(refractiveIndex float64, tint core.Vec3) *Material {
	return &Material{Kind: KindDielectric, RefractiveIndex: refractiveIndex, Color: tint}
}

func (m *Material) scatterDielectric(rayIn core.Ray, rec *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// Determine if we're entering or exiting the material
	var refractionRatio float64
	if rec.FrontFace {
		refractionRatio = 1.0 / m.RefractiveIndex
	} else {
		refractionRatio = m.RefractiveIndex
	}

	unitDirection := rayIn.Direction.Normalize()

	cosTheta := math.Min(-unitDirection.Dot(rec.Normal), 1.0)
	sinTheta := math.Sqrt(math.Max(0, 1.0-cosTheta*cosTheta))

	cannotRefract := refractionRatio*sinTheta > 1.0

	var direction core.Vec3
	if cannotRefract || Reflectance(cosTheta, refractionRatio) > sampler.Get1D() {
		direction = unitDirection.Reflect(rec.Normal)
	} else {
		direction = unitDirection.Refract(rec.Normal, refractionRatio)
	}

	return ScatterResult{
		Incoming:    rayIn,
		Scattered:   core.NewRay(rec.Point, direction),
		Attenuation: m.Color,
	}, true
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation.
// An index-matched boundary (ratio 1) reflects nothing.
func Reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	if r0 == 0 {
		return 0
	}
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
