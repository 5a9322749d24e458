package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// NewMetal creates a new metal material
func NewMetal(albedo core.Vec3, fuzzness float64) *Material {
	return NewTexturedMetal(NewSolidTexture(albedo), fuzzness)
}

// NewTexturedMetal creates a metal whose reflectance varies over the surface
func NewTexturedMetal(albedo *Texture, fuzzness float64) *Material {
	return &Material{
		Kind:    KindMetal,
		Texture: albedo,
		Fuzz:    math.Max(0.0, math.Min(fuzzness, 1.0)),
	}
}

func (m *Material) scatterMetal(rayIn core.Ray, rec *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	reflected := rayIn.Direction.Normalize().Reflect(rec.Normal)

	if m.Fuzz > 0 {
		reflected = reflected.Add(core.SampleOnUnitSphere(sampler.Get2D()).Multiply(m.Fuzz))
	}

	// Fuzz can push the ray below the surface
	if reflected.Dot(rec.Normal) <= 0 {
		return ScatterResult{}, false
	}

	return ScatterResult{
		Incoming:    rayIn,
		Scattered:   core.NewRay(rec.Point, reflected),
		Attenuation: m.Texture.Value(rec.UV, rec.Point),
	}, true
}
