package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Kind selects the scattering model of a Material
type Kind int

const (
	KindLambertian Kind = iota
	KindMetal
	KindDielectric
	KindSpecular
	KindLight
	KindEmissive
	KindIsotropic
)

func (k Kind) String() string {
	switch k {
	case KindLambertian:
		return "lambertian"
	case KindMetal:
		return "metal"
	case KindDielectric:
		return "dielectric"
	case KindSpecular:
		return "specular"
	case KindLight:
		return "light"
	case KindEmissive:
		return "emissive"
	case KindIsotropic:
		return "isotropic"
	default:
		return "unknown"
	}
}

// Material describes how a surface scatters and emits light.
// Only the fields belonging to Kind are meaningful. Materials are immutable
// once built and shared by pointer between shapes.
type Material struct {
	Kind Kind

	Texture *Texture  // lambertian, metal, specular base, emissive, isotropic
	Color   core.Vec3 // dielectric tint, light color

	Fuzz            float64 // metal, clamped to [0,1]
	RefractiveIndex float64 // dielectric

	SpecColor  core.Vec3 // specular highlight tint
	Smoothness float64   // specular: 0 diffuse, 1 mirror
	SpecProb   float64   // specular: probability of a specular bounce

	Strength float64 // light, emissive
}

// Scatter generates a scattered ray for rayIn at rec.
// It returns false when the ray is absorbed.
func (m *Material) Scatter(rayIn core.Ray, rec *HitRecord, sampler core.Sampler) (ScatterResult, bool) {
	switch m.Kind {
	case KindLambertian:
		return m.scatterLambertian(rayIn, rec, sampler)
	case KindMetal:
		return m.scatterMetal(rayIn, rec, sampler)
	case KindDielectric:
		return m.scatterDielectric(rayIn, rec, sampler)
	case KindSpecular:
		return m.scatterSpecular(rayIn, rec, sampler)
	case KindIsotropic:
		return m.scatterIsotropic(rayIn, rec, sampler)
	default:
		// Light sources absorb everything that hits them
		return ScatterResult{}, false
	}
}

// Emitted returns the radiance emitted at a surface point
func (m *Material) Emitted(uv core.Vec2, point core.Vec3) core.Vec3 {
	switch m.Kind {
	case KindLight:
		return m.Color.Multiply(m.Strength)
	case KindEmissive:
		return m.Texture.Value(uv, point).Multiply(m.Strength)
	default:
		return core.Vec3{}
	}
}

// IsEmissive reports whether the material emits light
func (m *Material) IsEmissive() bool {
	return m.Kind == KindLight || m.Kind == KindEmissive
}

// DisplayColor returns a flat color for previews and point-cloud rendering
func (m *Material) DisplayColor(uv core.Vec2, point core.Vec3) core.Vec3 {
	switch m.Kind {
	case KindDielectric, KindLight:
		return m.Color
	default:
		if m.Texture == nil {
			return core.Vec3{}
		}
		return m.Texture.Value(uv, point)
	}
}
