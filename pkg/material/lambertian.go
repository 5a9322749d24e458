package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// NewLambertian creates a new lambertian material with solid color
func NewLambertian(albedo core.Vec3) *Material {
	return NewTexturedLambertian(NewSolidTexture(albedo))
}

// NewTexturedLambertian creates a new lambertian material with texture
func NewTexturedLambertian(albedo *Texture) *Material {
	return &Material{Kind: KindLambertian, Texture: albedo}
}

func (m *Material) scatterLambertian(rayIn core.Ray, rec *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	// normal + random unit vector is cosine distributed about the normal
	direction := rec.Normal.Add(core.SampleOnUnitSphere(sampler.Get2D()))
	if direction.NearZero() {
		direction = rec.Normal
	}

	return ScatterResult{
		Incoming:    rayIn,
		Scattered:   core.NewRay(rec.Point, direction.Normalize()),
		Attenuation: m.Texture.Value(rec.UV, rec.Point),
	}, true
}
