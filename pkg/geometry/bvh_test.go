package geometry

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// randomShapes scatters spheres, triangles and quads inside a 20-unit cube.
// Every shape gets its own material so hits can be matched to shapes.
func randomShapes(random *rand.Rand, n int) []Shape {
	point := func() core.Vec3 {
		return core.NewVec3(random.Float64()*20-10, random.Float64()*20-10, random.Float64()*20-10)
	}
	offset := func() core.Vec3 {
		return core.NewVec3(random.Float64()*2-1, random.Float64()*2-1, random.Float64()*2-1)
	}

	shapes := make([]Shape, 0, n)
	for i := 0; i < n; i++ {
		mat := material.NewLambertian(core.NewVec3(float64(i)/float64(n), 0.5, 0.5))
		switch i % 3 {
		case 0:
			shapes = append(shapes, NewSphere(point(), 0.2+random.Float64(), mat))
		case 1:
			p := point()
			shapes = append(shapes, NewTriangle(p, p.Add(offset()), p.Add(offset()), mat))
		default:
			shapes = append(shapes, NewQuad(point(), offset(), offset(), mat))
		}
	}
	return shapes
}

// bruteForceHit tests every shape and keeps the closest hit
func bruteForceHit(shapes []Shape, ray core.Ray, tMin, tMax float64, rec *material.HitRecord) bool {
	hitAnything := false
	closest := tMax
	for _, shape := range shapes {
		var tmp material.HitRecord
		if shape.Hit(ray, tMin, closest, &tmp, testSampler) {
			hitAnything = true
			closest = tmp.T
			*rec = tmp
		}
	}
	return hitAnything
}

func TestBVH_MatchesBruteForce(t *testing.T) {
	random := rand.New(rand.NewSource(7))
	shapes := randomShapes(random, 300)

	bvh, err := NewBVH(shapes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	hits := 0
	for i := 0; i < 2000; i++ {
		origin := core.NewVec3(random.Float64()*30-15, random.Float64()*30-15, random.Float64()*30-15)
		target := core.NewVec3(random.Float64()*20-10, random.Float64()*20-10, random.Float64()*20-10)
		ray := core.NewRay(origin, target.Subtract(origin))

		var expected, got material.HitRecord
		expectedHit := bruteForceHit(shapes, ray, 0.001, math.Inf(1), &expected)
		gotHit := bvh.Hit(ray, 0.001, math.Inf(1), &got, testSampler)

		if expectedHit != gotHit {
			t.Fatalf("Ray %d: brute force hit=%v, bvh hit=%v", i, expectedHit, gotHit)
		}
		if !gotHit {
			continue
		}
		hits++
		if math.Abs(expected.T-got.T) > 1e-9 {
			t.Errorf("Ray %d: brute force t=%f, bvh t=%f", i, expected.T, got.T)
		}
		if got.Material != expected.Material {
			t.Errorf("Ray %d: bvh hit a different shape than brute force", i)
		}
		if got.Normal.Dot(ray.Direction) > 0 {
			t.Errorf("Ray %d: normal %v does not face the ray", i, got.Normal)
		}
	}

	if hits == 0 {
		t.Fatal("Expected some rays to hit the scene")
	}
}

func TestBVH_Validate(t *testing.T) {
	shapes := randomShapes(rand.New(rand.NewSource(11)), 101)

	bvh, err := NewBVH(shapes)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if err := bvh.Validate(); err != nil {
		t.Errorf("Validate failed: %v", err)
	}

	box := bvh.BoundingBox()
	for i, shape := range shapes {
		if !box.Contains(shape.BoundingBox()) {
			t.Errorf("Root box does not contain shape %d", i)
		}
	}

	stats := bvh.Stats()
	if stats.LeafNodes != len(shapes) {
		t.Errorf("Expected %d leaves, got %d", len(shapes), stats.LeafNodes)
	}
	if stats.TotalNodes != 2*len(shapes)-1 {
		t.Errorf("Expected %d nodes, got %d", 2*len(shapes)-1, stats.TotalNodes)
	}
	// Median splits keep the tree balanced
	if stats.MaxDepth > int(math.Ceil(math.Log2(float64(len(shapes))))) {
		t.Errorf("Tree too deep: %d", stats.MaxDepth)
	}
}

func TestBVH_Empty(t *testing.T) {
	_, err := NewBVH(nil)
	if !errors.Is(err, core.ErrInvalidScene) {
		t.Errorf("Expected ErrInvalidScene, got %v", err)
	}
}

func TestBVH_SmallTrees(t *testing.T) {
	a := NewSphere(core.NewVec3(-2, 0, 0), 1, testMaterial)
	b := NewSphere(core.NewVec3(2, 0, 0), 1, testMaterial)

	single, err := NewBVH([]Shape{a})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !single.Root.IsLeaf() || single.Root.Shape != a {
		t.Error("Single shape BVH should be one leaf")
	}

	pair, err := NewBVH([]Shape{b, a})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if pair.Root.IsLeaf() {
		t.Fatal("Two shape BVH should have an internal root")
	}
	// Sorted along X, so the left child holds the sphere with the smaller center
	if pair.Root.Left.Shape != a || pair.Root.Right.Shape != b {
		t.Error("Expected children ordered by centroid along X")
	}
}

func TestBVH_NearestHitWins(t *testing.T) {
	near := NewSphere(core.NewVec3(0, 0, -3), 1, testMaterial)
	far := NewSphere(core.NewVec3(0, 0, -10), 1, testMaterial)

	bvh, err := NewBVH([]Shape{far, near})
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	tests := []struct {
		name      string
		origin    core.Vec3
		direction core.Vec3
		expectedT float64
	}{
		{"from +Z", core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1), 2},
		{"from -Z", core.NewVec3(0, 0, -15), core.NewVec3(0, 0, 1), 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var rec material.HitRecord
			if !bvh.Hit(core.NewRay(tt.origin, tt.direction), 0.001, math.Inf(1), &rec, testSampler) {
				t.Fatal("Expected hit")
			}
			if math.Abs(rec.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got %f", tt.expectedT, rec.T)
			}
		})
	}
}

func TestBVH_Deterministic(t *testing.T) {
	shapes := randomShapes(rand.New(rand.NewSource(3)), 50)
	original := make([]Shape, len(shapes))
	copy(original, shapes)

	a, _ := NewBVH(shapes)
	b, _ := NewBVH(shapes)

	var walk func(x, y *BVHNode) bool
	walk = func(x, y *BVHNode) bool {
		if x.IsLeaf() || y.IsLeaf() {
			return x.Shape == y.Shape
		}
		return x.BoundingBox == y.BoundingBox && walk(x.Left, y.Left) && walk(x.Right, y.Right)
	}
	if !walk(a.Root, b.Root) {
		t.Error("Same input should build the same tree")
	}

	for i := range shapes {
		if shapes[i] != original[i] {
			t.Fatal("NewBVH reordered the caller's slice")
		}
	}
}
