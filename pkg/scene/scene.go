package scene

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// Scene contains all the elements needed for rendering.
// A scene is read-only once Preprocess has returned.
type Scene struct {
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	Background     Background
	SamplingConfig SamplingConfig
	Shapes         []geometry.Shape              // Objects in the scene
	Materials      map[string]*material.Material // Named materials, for lookup by scene files
	BVH            *geometry.BVH                 // Acceleration structure for ray-object intersection
}

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int     // Image width, taken from the camera
	Height          int     // Image height, derived from width and aspect ratio
	SamplesPerPixel int     // Number of rays per pixel
	SamplesStepSize int     // Samples per progressive pass; 0 renders in one pass
	MaxDepth        int     // Maximum ray bounce depth
	AsPoints        bool    // Render meshes as vertex spheres with flat colors
	PointRadius     float64 // Vertex sphere radius in point mode
}

// DefaultSamplingConfig returns the settings used when a scene does not override them
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		SamplesPerPixel: 100,
		MaxDepth:        50,
		PointRadius:     0.01,
	}
}

// New creates an empty scene with the given camera and background
func New(cameraConfig geometry.CameraConfig, background Background, sampling SamplingConfig) *Scene {
	return &Scene{
		CameraConfig:   cameraConfig,
		Background:     background,
		SamplingConfig: sampling,
		Shapes:         make([]geometry.Shape, 0),
		Materials:      make(map[string]*material.Material),
	}
}

// Add appends shapes to the scene
func (s *Scene) Add(shapes ...geometry.Shape) {
	s.Shapes = append(s.Shapes, shapes...)
}

// AddMaterial registers a named material
func (s *Scene) AddMaterial(name string, mat *material.Material) {
	if s.Materials == nil {
		s.Materials = make(map[string]*material.Material)
	}
	s.Materials[name] = mat
}

// Material looks up a registered material by name
func (s *Scene) Material(name string) (*material.Material, error) {
	mat, ok := s.Materials[name]
	if !ok {
		return nil, fmt.Errorf("unknown material %q: %w", name, core.ErrInvalidScene)
	}
	return mat, nil
}

// NewGroundQuad creates a large quad to replace infinite ground planes
// Creates a horizontal quad centered at the given point with normal pointing up (0,1,0)
func NewGroundQuad(center core.Vec3, size float64, mat *material.Material) *geometry.Quad {
	corner := core.NewVec3(center.X-size/2, center.Y, center.Z-size/2)
	// u × v = (0,0,size) × (size,0,0) points up
	u := core.NewVec3(0, 0, size)
	v := core.NewVec3(size, 0, 0)
	return geometry.NewQuad(corner, u, v, mat)
}

// Validate reports configuration problems that make the scene unrenderable
func (s *Scene) Validate() error {
	if s.CameraConfig.Width <= 0 {
		return fmt.Errorf("image width must be positive, got %d: %w", s.CameraConfig.Width, core.ErrInvalidScene)
	}
	if s.SamplingConfig.SamplesPerPixel <= 0 {
		return fmt.Errorf("samples per pixel must be positive, got %d: %w", s.SamplingConfig.SamplesPerPixel, core.ErrInvalidScene)
	}
	if s.SamplingConfig.SamplesStepSize < 0 {
		return fmt.Errorf("samples step size must not be negative, got %d: %w", s.SamplingConfig.SamplesStepSize, core.ErrInvalidScene)
	}
	if s.SamplingConfig.MaxDepth < 0 {
		return fmt.Errorf("max bounces must not be negative, got %d: %w", s.SamplingConfig.MaxDepth, core.ErrInvalidScene)
	}
	if s.SamplingConfig.AsPoints && s.SamplingConfig.PointRadius <= 0 {
		return fmt.Errorf("point radius must be positive in point mode, got %g: %w", s.SamplingConfig.PointRadius, core.ErrInvalidScene)
	}
	if len(s.Shapes) == 0 {
		return fmt.Errorf("scene has no primitives: %w", core.ErrInvalidScene)
	}
	for name, mat := range s.Materials {
		if mat == nil {
			return fmt.Errorf("material %q is nil: %w", name, core.ErrInvalidScene)
		}
	}
	return nil
}

// Preprocess validates the scene, creates the camera and builds the BVH.
// It must be called before rendering.
func (s *Scene) Preprocess() error {
	if err := s.Validate(); err != nil {
		return err
	}

	s.Camera = geometry.NewCamera(s.CameraConfig)
	s.SamplingConfig.Width = s.Camera.Width()
	s.SamplingConfig.Height = s.Camera.Height()

	bvh, err := geometry.NewBVH(s.Shapes)
	if err != nil {
		return fmt.Errorf("building bvh: %w", err)
	}
	s.BVH = bvh

	return nil
}

// GetPrimitiveCount returns the total number of primitive objects in the scene
func (s *Scene) GetPrimitiveCount() int {
	count := 0
	for _, shape := range s.Shapes {
		count += countPrimitivesInShape(shape)
	}
	return count
}

// countPrimitivesInShape counts primitives in a single shape, handling complex objects
func countPrimitivesInShape(shape geometry.Shape) int {
	switch obj := shape.(type) {
	case *geometry.TriangleMesh:
		return obj.GetTriangleCount()
	case *geometry.Box:
		return 6
	case *geometry.Translate:
		return countPrimitivesInShape(obj.Object)
	case *geometry.RotateY:
		return countPrimitivesInShape(obj.Object)
	case *geometry.ConstantMedium:
		return countPrimitivesInShape(obj.Boundary)
	default:
		return 1
	}
}
