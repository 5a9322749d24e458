package scene

import "github.com/df07/go-pathtracer/pkg/core"

// Background is the radiance returned for rays that escape the scene.
// A gradient blends Bottom into Top by the ray direction's y component.
type Background struct {
	Top      core.Vec3
	Bottom   core.Vec3
	Gradient bool
}

// NewConstantBackground returns a background of a single color
func NewConstantBackground(color core.Vec3) Background {
	return Background{Top: color, Bottom: color}
}

// NewGradientBackground returns a vertical sky gradient
func NewGradientBackground(bottom, top core.Vec3) Background {
	return Background{Top: top, Bottom: bottom, Gradient: true}
}

// DefaultBackground is the white-to-blue sky
func DefaultBackground() Background {
	return NewGradientBackground(core.NewVec3(1, 1, 1), core.NewVec3(0.5, 0.7, 1.0))
}

// Color returns the background radiance seen along ray
func (b Background) Color(ray core.Ray) core.Vec3 {
	if !b.Gradient {
		return b.Top
	}

	unitDirection := ray.Direction.Normalize()

	// Map y from [-1,1] to [0,1]
	t := 0.5 * (unitDirection.Y + 1.0)

	return b.Bottom.Multiply(1.0 - t).Add(b.Top.Multiply(t))
}
