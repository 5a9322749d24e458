package material

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// TextureKind selects how a Texture produces its color
type TextureKind int

const (
	TextureSolid TextureKind = iota
	TextureChecker
	TextureImage
	TextureNoise
)

func (k TextureKind) String() string {
	switch k {
	case TextureSolid:
		return "solid"
	case TextureChecker:
		return "checker"
	case TextureImage:
		return "image"
	case TextureNoise:
		return "noise"
	default:
		return "unknown"
	}
}

// Texture provides spatially-varying colors for materials.
// Only the fields belonging to Kind are meaningful. Textures are immutable
// once built and are shared by pointer between materials.
type Texture struct {
	Kind TextureKind

	Color core.Vec3 // solid

	InvScale  float64  // checker: cells per unit length
	Even, Odd *Texture // checker

	Image *ImageData // image

	Scale  float64 // noise frequency
	Perlin *Perlin // noise
}

// NewSolidTexture creates a texture with uniform color
func NewSolidTexture(color core.Vec3) *Texture {
	return &Texture{Kind: TextureSolid, Color: color}
}

// NewCheckerTexture creates a 3D checker lattice with cells of the given size
func NewCheckerTexture(scale float64, even, odd *Texture) *Texture {
	return &Texture{Kind: TextureChecker, InvScale: 1.0 / scale, Even: even, Odd: odd}
}

// NewCheckerColors is a convenience for a checker of two solid colors
func NewCheckerColors(scale float64, even, odd core.Vec3) *Texture {
	return NewCheckerTexture(scale, NewSolidTexture(even), NewSolidTexture(odd))
}

// NewImageTexture creates a texture sampled from decoded image data
func NewImageTexture(image *ImageData) *Texture {
	return &Texture{Kind: TextureImage, Image: image}
}

// NewNoiseTexture creates a marble-like Perlin turbulence texture
func NewNoiseTexture(scale float64, perlin *Perlin) *Texture {
	return &Texture{Kind: TextureNoise, Scale: scale, Perlin: perlin}
}

// Value returns the color at given UV coordinates and 3D point.
// UV is used for image textures, the point for procedural textures.
func (t *Texture) Value(uv core.Vec2, point core.Vec3) core.Vec3 {
	switch t.Kind {
	case TextureSolid:
		return t.Color
	case TextureChecker:
		return t.checkerValue(uv, point)
	case TextureImage:
		return t.Image.Sample(uv)
	case TextureNoise:
		return t.noiseValue(point)
	default:
		return core.Vec3{}
	}
}

func (t *Texture) checkerValue(uv core.Vec2, point core.Vec3) core.Vec3 {
	x := int64(math.Floor(t.InvScale * point.X))
	y := int64(math.Floor(t.InvScale * point.Y))
	z := int64(math.Floor(t.InvScale * point.Z))

	if (x+y+z)%2 == 0 {
		return t.Even.Value(uv, point)
	}
	return t.Odd.Value(uv, point)
}
