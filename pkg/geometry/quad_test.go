package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

func TestQuad_Hit_BasicIntersection(t *testing.T) {
	// 1x1 quad in the XZ plane at y=0
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), testMaterial)

	ray := core.NewRay(core.NewVec3(0.25, 1, 0.75), core.NewVec3(0, -1, 0))

	var rec material.HitRecord
	if !quad.Hit(ray, 0.001, 1000.0, &rec, testSampler) {
		t.Fatal("Expected hit, but got miss")
	}

	if math.Abs(rec.T-1.0) > 1e-9 {
		t.Errorf("Expected t=1, got t=%f", rec.T)
	}
	if !vecNear(rec.Point, core.NewVec3(0.25, 0, 0.75), 1e-9) {
		t.Errorf("Expected hit point (0.25, 0, 0.75), got %v", rec.Point)
	}
	if math.Abs(rec.UV.X-0.25) > 1e-9 || math.Abs(rec.UV.Y-0.75) > 1e-9 {
		t.Errorf("Expected UV (0.25, 0.75), got %v", rec.UV)
	}
	// U × V = X × Z = -Y; the ray comes from above so it sees the back face
	if rec.FrontFace {
		t.Error("Expected back face hit")
	}
	if !vecNear(rec.Normal, core.NewVec3(0, 1, 0), 1e-9) {
		t.Errorf("Expected normal facing the ray (0,1,0), got %v", rec.Normal)
	}
}

func TestQuad_Hit_OutsideBounds(t *testing.T) {
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), testMaterial)

	tests := []struct {
		name      string
		rayOrigin core.Vec3
		rayDir    core.Vec3
	}{
		{"outside X bounds (negative)", core.NewVec3(-0.5, 1, 0.5), core.NewVec3(0, -1, 0)},
		{"outside X bounds (positive)", core.NewVec3(1.5, 1, 0.5), core.NewVec3(0, -1, 0)},
		{"outside Z bounds (negative)", core.NewVec3(0.5, 1, -0.5), core.NewVec3(0, -1, 0)},
		{"outside Z bounds (positive)", core.NewVec3(0.5, 1, 1.5), core.NewVec3(0, -1, 0)},
		{"parallel to plane", core.NewVec3(0.5, 1, 0.5), core.NewVec3(1, 0, 0)},
		{"pointing away", core.NewVec3(0.5, 1, 0.5), core.NewVec3(0, 1, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec material.HitRecord
			if quad.Hit(core.NewRay(tt.rayOrigin, tt.rayDir), 0.001, 1000.0, &rec, testSampler) {
				t.Errorf("Expected miss, got hit at %v", rec.Point)
			}
		})
	}
}

func TestQuad_Parallelogram(t *testing.T) {
	// Skewed quad: V leans along X
	quad := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), core.NewVec3(1, 1, 0), testMaterial)

	tests := []struct {
		name      string
		x, y      float64
		shouldHit bool
	}{
		{"inside near top right", 2.8, 0.9, true},
		{"inside bottom", 1.0, 0.1, true},
		{"left of slanted edge", 0.2, 0.8, false},
		{"right of slanted edge", 2.9, 0.1, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.NewVec3(tt.x, tt.y, 1), core.NewVec3(0, 0, -1))
			var rec material.HitRecord
			if got := quad.Hit(ray, 0.001, 10, &rec, testSampler); got != tt.shouldHit {
				t.Errorf("Expected hit=%v, got %v", tt.shouldHit, got)
			}
		})
	}
}

func TestQuad_BoundingBoxPadded(t *testing.T) {
	quad := NewQuad(core.NewVec3(0, 2, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 0, 1), testMaterial)
	box := quad.BoundingBox()

	if box.Size().Y <= 0 {
		t.Errorf("Flat quad box should be padded along Y, got size %v", box.Size())
	}
	if !box.ContainsPoint(core.NewVec3(0.5, 2, 0.5)) {
		t.Error("Quad box should contain the quad")
	}
}

func TestQuad_Degenerate(t *testing.T) {
	degenerate := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(2, 0, 0), testMaterial)

	if err := degenerate.Degenerate(); !errors.Is(err, core.ErrDegenerateGeometry) {
		t.Errorf("Expected ErrDegenerateGeometry, got %v", err)
	}

	directions := []core.Vec3{
		core.NewVec3(0, -1, 0),
		core.NewVec3(0, 0, -1),
		core.NewVec3(0.3, -1, 0.2),
	}
	for _, dir := range directions {
		var rec material.HitRecord
		ray := core.NewRay(core.NewVec3(0.5, 1, 1).Subtract(dir), dir)
		if degenerate.Hit(ray, 0.001, math.Inf(1), &rec, testSampler) {
			t.Errorf("Degenerate quad must never be hit (direction %v)", dir)
		}
	}

	valid := NewQuad(core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), testMaterial)
	if err := valid.Degenerate(); err != nil {
		t.Errorf("Expected valid quad, got %v", err)
	}
}
