package scene

import (
	"math/rand"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// textureSceneCamera looks at the origin with a slight defocus blur
func textureSceneCamera(center core.Vec3) geometry.CameraConfig {
	return geometry.CameraConfig{
		Center:        center,
		LookAt:        core.NewVec3(0, 0, 0),
		Up:            core.NewVec3(0, 1, 0),
		Width:         400,
		AspectRatio:   16.0 / 10.0,
		VFov:          20.0,
		Aperture:      0.0087, // 0.05 degree defocus cone at the focus distance
		FocusDistance: 10.0,
	}
}

// NewCheckeredSpheresScene creates two large checkered spheres touching at the origin
func NewCheckeredSpheresScene() *Scene {
	s := New(textureSceneCamera(core.NewVec3(12, 3, 3)), DefaultBackground(), DefaultSamplingConfig())

	checker := material.NewTexturedLambertian(material.NewCheckerColors(0.32,
		core.NewVec3(0.2, 0.3, 0.1), // even
		core.NewVec3(0.9, 0.9, 0.9), // odd
	))
	s.AddMaterial("checker", checker)

	s.Add(
		geometry.NewSphere(core.NewVec3(0, -10, 0), 10, checker),
		geometry.NewSphere(core.NewVec3(0, 10, 0), 10, checker),
	)

	return s
}

// NewPerlinSpheresScene creates a marble sphere resting on a marble ground sphere
func NewPerlinSpheresScene() *Scene {
	s := New(textureSceneCamera(core.NewVec3(13, 2, 3)), DefaultBackground(), DefaultSamplingConfig())

	perlin := material.NewPerlin(rand.New(rand.NewSource(perlinSeed)))
	marble := material.NewTexturedLambertian(material.NewNoiseTexture(4, perlin))
	s.AddMaterial("marble", marble)

	s.Add(
		geometry.NewSphere(core.NewVec3(0, -1000, 0), 1000, marble),
		geometry.NewSphere(core.NewVec3(0, 2, 0), 2, marble),
	)

	return s
}
