package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// NewCornellScene creates a classic Cornell box scene with quad walls and area lighting
func NewCornellScene() *Scene {
	config := geometry.CameraConfig{
		Center:        core.NewVec3(278, 278, -800), // Position camera outside the box looking in
		LookAt:        core.NewVec3(278, 278, 0),    // Look at the center of the box
		Up:            core.NewVec3(0, 1, 0),        // Standard up direction
		Width:         400,
		AspectRatio:   1.0,  // Square aspect ratio for Cornell box
		VFov:          40.0, // Field of view
		Aperture:      0.0,  // No depth of field for Cornell box
		FocusDistance: 0.0,  // Auto-calculate focus distance
	}

	samplingConfig := DefaultSamplingConfig()
	samplingConfig.SamplesPerPixel = 150
	samplingConfig.SamplesStepSize = 10
	samplingConfig.MaxDepth = 40

	// Black background: all light comes from the ceiling panel
	s := New(config, NewConstantBackground(core.Vec3{}), samplingConfig)

	// Create materials
	white := material.NewLambertian(core.NewVec3(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewVec3(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewVec3(0.12, 0.45, 0.15))
	light := material.NewLight(core.NewVec3(15.0, 15.0, 15.0))
	mirror := material.NewMetal(core.NewVec3(0.8, 0.8, 0.9), 0.0)
	glass := material.NewDielectric(1.5)

	s.AddMaterial("white", white)
	s.AddMaterial("red", red)
	s.AddMaterial("green", green)
	s.AddMaterial("light", light)
	s.AddMaterial("mirror", mirror)
	s.AddMaterial("glass", glass)

	// Cornell box dimensions (standard 555x555x555 units)
	boxSize := 555.0

	// Wall normals are u × v and must face into the box

	// Floor (white) - XZ plane at y=0, facing up
	floor := geometry.NewQuad(
		core.NewVec3(0, 0, 0),       // corner
		core.NewVec3(0, 0, boxSize), // u vector (Z direction)
		core.NewVec3(boxSize, 0, 0), // v vector (X direction)
		white,
	)

	// Ceiling (white) - XZ plane at y=boxSize, facing down
	ceiling := geometry.NewQuad(
		core.NewVec3(0, boxSize, 0), // corner
		core.NewVec3(boxSize, 0, 0), // u vector (X direction)
		core.NewVec3(0, 0, boxSize), // v vector (Z direction)
		white,
	)

	// Back wall (white) - XY plane at z=boxSize, facing the camera
	backWall := geometry.NewQuad(
		core.NewVec3(0, 0, boxSize), // corner
		core.NewVec3(0, boxSize, 0), // u vector (Y direction)
		core.NewVec3(boxSize, 0, 0), // v vector (X direction)
		white,
	)

	// Left wall (red) - YZ plane at x=boxSize, seen on the left from -Z
	leftWall := geometry.NewQuad(
		core.NewVec3(boxSize, 0, 0), // corner
		core.NewVec3(0, 0, boxSize), // u vector (Z direction)
		core.NewVec3(0, boxSize, 0), // v vector (Y direction)
		red,
	)

	// Right wall (green) - YZ plane at x=0
	rightWall := geometry.NewQuad(
		core.NewVec3(0, 0, 0),       // corner
		core.NewVec3(0, boxSize, 0), // u vector (Y direction)
		core.NewVec3(0, 0, boxSize), // v vector (Z direction)
		green,
	)

	// Ceiling light (smaller quad in the center of the ceiling, facing down)
	lightSize := 130.0
	lightOffset := (boxSize - lightSize) / 2.0
	ceilingLight := geometry.NewQuad(
		core.NewVec3(lightOffset, boxSize-1, lightOffset), // corner (slightly below ceiling)
		core.NewVec3(lightSize, 0, 0),                     // u vector (X direction)
		core.NewVec3(0, 0, lightSize),                     // v vector (Z direction)
		light,
	)

	s.Add(floor, ceiling, backWall, leftWall, rightWall, ceilingLight)

	// Tall rotated block in the back and a short one in front
	tallBox := geometry.NewTranslate(
		geometry.NewRotateY(geometry.NewBox(core.NewVec3(0, 0, 0), core.NewVec3(165, 330, 165), white), 15),
		core.NewVec3(265, 0, 295),
	)
	shortBox := geometry.NewTranslate(
		geometry.NewRotateY(geometry.NewBox(core.NewVec3(0, 0, 0), core.NewVec3(165, 165, 165), white), -18),
		core.NewVec3(130, 0, 65),
	)

	// Mirror sphere on the short block, glass sphere in front of the tall one
	mirrorSphere := geometry.NewSphere(core.NewVec3(212, 245, 147), 80, mirror)
	glassSphere := geometry.NewSphere(core.NewVec3(420, 90, 120), 90, glass)

	s.Add(tallBox, shortBox, mirrorSphere, glassSphere)

	return s
}
