package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

// fixedSampler always returns the same value, so GetRay hits pixel centers
type fixedSampler struct{ value float64 }

func (s fixedSampler) Get1D() float64 { return s.value }
func (s fixedSampler) Get2D() core.Vec2 {
	return core.NewVec2(s.value, s.value)
}
func (s fixedSampler) Get3D() core.Vec3 {
	return core.NewVec3(s.value, s.value, s.value)
}

func testCameraConfig() CameraConfig {
	return CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		Width:       400,
		AspectRatio: 1.0,
		VFov:        45.0,
	}
}

func TestCameraGetCameraForward(t *testing.T) {
	camera := NewCamera(testCameraConfig())

	forward := camera.GetCameraForward()
	if !vecNear(forward, core.NewVec3(0, 0, -1), 1e-6) {
		t.Errorf("Expected forward direction (0,0,-1), got %v", forward)
	}
}

func TestCamera_TopLeftOrigin(t *testing.T) {
	camera := NewCamera(testCameraConfig())
	center := fixedSampler{value: 0.5}

	topLeft := camera.GetRay(0, 0, center).Direction
	if topLeft.X >= 0 || topLeft.Y <= 0 {
		t.Errorf("Pixel (0,0) should look up and to the left, got %v", topLeft)
	}

	bottomRight := camera.GetRay(camera.Width()-1, camera.Height()-1, center).Direction
	if bottomRight.X <= 0 || bottomRight.Y >= 0 {
		t.Errorf("Last pixel should look down and to the right, got %v", bottomRight)
	}
}

func TestCamera_CenterRay(t *testing.T) {
	config := testCameraConfig()
	config.Width = 2
	camera := NewCamera(config)

	// With two pixels, the shared corner of all four is the image center
	ray := camera.GetRay(1, 1, fixedSampler{value: 0})
	if !vecNear(ray.Direction.Normalize(), core.NewVec3(0, 0, -1), 1e-9) {
		t.Errorf("Expected center ray along -Z, got %v", ray.Direction.Normalize())
	}
	if ray.Origin != config.Center {
		t.Errorf("Pinhole ray should start at the camera center, got %v", ray.Origin)
	}
}

func TestCamera_FieldOfView(t *testing.T) {
	camera := NewCamera(testCameraConfig())

	// Top edge of the image sits at half the vertical fov
	top := camera.GetRay(camera.Width()/2, 0, fixedSampler{value: 0}).Direction.Normalize()
	angle := math.Atan2(top.Y, -top.Z) * 180 / math.Pi
	if math.Abs(angle-22.5) > 1e-6 {
		t.Errorf("Expected top edge at 22.5 degrees, got %f", angle)
	}
}

func TestCamera_Aperture(t *testing.T) {
	config := testCameraConfig()
	config.Aperture = 0.5
	config.FocusDistance = 4
	camera := NewCamera(config)

	lensSamples := []core.Vec2{
		core.NewVec2(0.1, 0.9),
		core.NewVec2(0.7, 0.3),
		core.NewVec2(0.99, 0.5),
		core.NewVec2(0.5, 0.5),
	}

	// Every lens sample converges on the same point of the focal plane
	var focus core.Vec3
	for i, lens := range lensSamples {
		sampler := &sequenceSampler{values: []core.Vec2{core.NewVec2(0.5, 0.5), lens}}
		ray := camera.GetRay(200, 200, sampler)
		if ray.Origin.Length() > 0.25+1e-9 {
			t.Fatalf("Ray origin %v outside lens radius", ray.Origin)
		}
		p := ray.At(1)
		if math.Abs(p.Z-(-4)) > 1e-9 {
			t.Errorf("Expected focal plane at z=-4, got %v", p)
		}
		if i > 0 && !vecNear(p, focus, 1e-9) {
			t.Errorf("Lens sample %d focuses at %v, expected %v", i, p, focus)
		}
		focus = p
	}
}

// sequenceSampler returns its 2D values in order, wrapping around
type sequenceSampler struct {
	values []core.Vec2
	next   int
}

func (s *sequenceSampler) Get1D() float64 { return s.Get2D().X }
func (s *sequenceSampler) Get3D() core.Vec3 {
	v := s.Get2D()
	return core.NewVec3(v.X, v.Y, 0)
}
func (s *sequenceSampler) Get2D() core.Vec2 {
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

func TestImageHeight(t *testing.T) {
	tests := []struct {
		width    int
		aspect   float64
		expected int
	}{
		{400, 16.0 / 9.0, 225},
		{400, 1.0, 400},
		{1, 16.0 / 9.0, 1},
		{100, 0, 100},
	}

	for _, tt := range tests {
		if got := ImageHeight(tt.width, tt.aspect); got != tt.expected {
			t.Errorf("ImageHeight(%d, %f) = %d, want %d", tt.width, tt.aspect, got, tt.expected)
		}
	}
}
