package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewDefaultScene creates a default scene with spheres, ground, and camera
func NewDefaultScene() *Scene {
	cameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(0, 0.75, 2), // Position camera higher and farther back
		LookAt:        core.NewVec3(0, 0.5, -1), // Look at the sphere center
		Up:            core.NewVec3(0, 1, 0),    // Standard up direction
		Width:         400,
		AspectRatio:   16.0 / 9.0,
		VFov:          40.0, // Narrower field of view for focus effect
		Aperture:      0.05, // Strong depth of field blur
		FocusDistance: 0.0,  // Auto-calculate focus distance
	}

	samplingConfig := DefaultSamplingConfig()
	samplingConfig.SamplesPerPixel = 200
	samplingConfig.SamplesStepSize = 20

	s := New(cameraConfig, DefaultBackground(), samplingConfig)

	// Create materials
	lambertianGreen := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0).Multiply(0.6))
	lambertianBlue := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	specularRed := material.NewSpecular(core.NewVec3(0.65, 0.25, 0.2), core.NewVec3(1, 1, 1), 0.9, 0.1)
	metalSilver := material.NewMetal(core.NewVec3(0.8, 0.8, 0.8), 0.0)
	metalGold := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.3)
	materialGlass := material.NewDielectric(1.5)
	sun := material.NewLightWithStrength(core.NewVec3(1.0, 14.0/15.0, 13.0/15.0), 15)

	s.AddMaterial("ground", lambertianGreen)
	s.AddMaterial("blue", lambertianBlue)
	s.AddMaterial("red", specularRed)
	s.AddMaterial("silver", metalSilver)
	s.AddMaterial("gold", metalGold)
	s.AddMaterial("glass", materialGlass)
	s.AddMaterial("sun", sun)

	// Create spheres with different materials
	sphereCenter := geometry.NewSphere(core.NewVec3(0, 0.5, -1), 0.5, specularRed)
	sphereLeft := geometry.NewSphere(core.NewVec3(-1, 0.5, -1), 0.5, metalSilver)
	sphereRight := geometry.NewSphere(core.NewVec3(1, 0.5, -1), 0.5, metalGold)
	solidGlassSphere := geometry.NewSphere(core.NewVec3(0.5, 0.25, -0.5), 0.25, materialGlass)

	// Large but finite ground so the scene has proper bounds
	groundQuad := NewGroundQuad(core.NewVec3(0, 0, 0), 10000.0, lambertianGreen)

	// Hollow glass sphere with blue sphere inside; the negative radius flips the normals
	hollowGlassOuter := geometry.NewSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.25, materialGlass)
	hollowGlassInner := geometry.NewSphere(core.NewVec3(-0.5, 0.25, -0.5), -0.24, materialGlass)
	hollowGlassCenter := geometry.NewSphere(core.NewVec3(-0.5, 0.25, -0.5), 0.20, lambertianBlue)

	// Distant emissive sphere: pos [30, 30.5, 15], r: 10
	sunSphere := geometry.NewSphere(core.NewVec3(30, 30.5, 15), 10, sun)

	s.Add(sphereCenter, sphereLeft, sphereRight, groundQuad,
		solidGlassSphere, hollowGlassOuter, hollowGlassInner, hollowGlassCenter, sunSphere)

	return s
}
