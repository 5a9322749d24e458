package material

import (
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

func colorNear(a, b core.Vec3) bool {
	return a.Subtract(b).Length() < 1e-9
}

func TestImageTextureCorners(t *testing.T) {
	// Layout:
	//   white black
	//   black white
	pixels := []core.Vec3{
		core.NewVec3(1, 1, 1), core.NewVec3(0, 0, 0), // Row 0 (top)
		core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1), // Row 1 (bottom)
	}
	texture := NewImageTexture(NewImageData(2, 2, pixels))

	white := core.NewVec3(1, 1, 1)
	black := core.NewVec3(0, 0, 0)

	tests := []struct {
		name     string
		uv       core.Vec2
		expected core.Vec3
	}{
		{"bottom-left", core.NewVec2(0, 0), black},
		{"bottom-right", core.NewVec2(1, 0), white},
		{"top-left", core.NewVec2(0, 1), white},
		{"top-right", core.NewVec2(1, 1), black},
		{"center blends all four", core.NewVec2(0.5, 0.5), core.Grey(0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := texture.Value(tt.uv, core.Vec3{})
			if !colorNear(result, tt.expected) {
				t.Errorf("UV%v: expected %v, got %v", tt.uv, tt.expected, result)
			}
		})
	}
}

func TestImageTextureBilinear(t *testing.T) {
	// 2x1 gradient: black on the left, red on the right
	pixels := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)}
	texture := NewImageTexture(NewImageData(2, 1, pixels))

	for _, u := range []float64{0, 0.25, 0.5, 0.75, 1} {
		result := texture.Value(core.NewVec2(u, 0.5), core.Vec3{})
		if !colorNear(result, core.NewVec3(u, 0, 0)) {
			t.Errorf("u=%.2f: expected red %.2f, got %v", u, u, result)
		}
	}
}

func TestImageTextureClamping(t *testing.T) {
	pixels := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0)}
	texture := NewImageTexture(NewImageData(2, 1, pixels))

	if result := texture.Value(core.NewVec2(-3, 0.5), core.Vec3{}); !colorNear(result, core.NewVec3(0, 0, 0)) {
		t.Errorf("UV below range should clamp to left edge, got %v", result)
	}
	if result := texture.Value(core.NewVec2(7, 2), core.Vec3{}); !colorNear(result, core.NewVec3(1, 0, 0)) {
		t.Errorf("UV above range should clamp to right edge, got %v", result)
	}
}

func TestImageTextureEmpty(t *testing.T) {
	texture := NewImageTexture(NewImageData(0, 0, nil))
	if result := texture.Value(core.NewVec2(0.5, 0.5), core.Vec3{}); result != missingImageColor {
		t.Errorf("Empty image should return the missing-image color, got %v", result)
	}
}
