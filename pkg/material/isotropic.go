package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// NewIsotropic creates a phase function that scatters uniformly in all directions.
// It is used inside participating media.
func NewIsotropic(albedo core.Vec3) *Material {
	return NewTexturedIsotropic(NewSolidTexture(albedo))
}

// NewTexturedIsotropic creates an isotropic phase function with textured albedo
func NewTexturedIsotropic(albedo *Texture) *Material {
	return &Material{Kind: KindIsotropic, Texture: albedo}
}

func (m *Material) scatterIsotropic(rayIn core.Ray, rec *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	return ScatterResult{
		Incoming:    rayIn,
		Scattered:   core.NewRay(rec.Point, core.SampleOnUnitSphere(sampler.Get2D())),
		Attenuation: m.Texture.Value(rec.UV, rec.Point),
	}, true
}
