package material

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// NewLight creates a uniform area light emitting color
func NewLight(color core.Vec3) *Material {
	return NewLightWithStrength(color, 1.0)
}

// NewLightWithStrength creates a uniform area light emitting color*strength
func NewLightWithStrength(color core.Vec3, strength float64) *Material {
	return &Material{Kind: KindLight, Color: color, Strength: strength}
}

// NewEmissive creates a light whose emission follows a texture
func NewEmissive(emission *Texture, strength float64) *Material {
	return &Material{Kind: KindEmissive, Texture: emission, Strength: strength}
}
