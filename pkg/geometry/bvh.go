package geometry

import (
	"fmt"
	"sort"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/material"
)

// BVHNode represents a node in the Bounding Volume Hierarchy.
// A leaf holds exactly one shape; an internal node has two children and the
// union of their boxes.
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Shape       Shape // Non-nil only for leaf nodes
}

// IsLeaf reports whether the node holds a shape
func (n *BVHNode) IsLeaf() bool {
	return n.Shape != nil
}

// BVH represents a Bounding Volume Hierarchy for fast ray-object intersection.
// It is immutable after construction and safe for concurrent Hit calls.
type BVH struct {
	Root       *BVHNode
	shapeCount int
}

// NewBVH constructs a BVH from a slice of shapes.
// Construction is deterministic for a given input order.
func NewBVH(shapes []Shape) (*BVH, error) {
	if len(shapes) == 0 {
		return nil, fmt.Errorf("cannot build BVH from zero shapes: %w", core.ErrInvalidScene)
	}

	// Copy so sorting never reorders the caller's slice
	shapesCopy := make([]Shape, len(shapes))
	copy(shapesCopy, shapes)

	return &BVH{
		Root:       buildBVH(shapesCopy),
		shapeCount: len(shapes),
	}, nil
}

// buildBVH recursively splits shapes at the median centroid along the axis
// where the centroids spread the most
func buildBVH(shapes []Shape) *BVHNode {
	if len(shapes) == 1 {
		return &BVHNode{
			BoundingBox: shapes[0].BoundingBox(),
			Shape:       shapes[0],
		}
	}

	axis := centroidSplitAxis(shapes)
	sortShapesByAxis(shapes, axis)

	mid := (len(shapes) + 1) / 2
	left := buildBVH(shapes[:mid])
	right := buildBVH(shapes[mid:])

	return &BVHNode{
		BoundingBox: left.BoundingBox.Union(right.BoundingBox),
		Left:        left,
		Right:       right,
	}
}

// centroidSplitAxis returns the axis of greatest centroid extent
func centroidSplitAxis(shapes []Shape) int {
	first := shapes[0].BoundingBox().Center()
	bounds := core.NewAABB(first, first)
	for _, shape := range shapes[1:] {
		c := shape.BoundingBox().Center()
		bounds = bounds.Union(core.NewAABB(c, c))
	}

	return bounds.LongestAxis()
}

// sortShapesByAxis stable-sorts shapes by their bounding box center along axis
func sortShapesByAxis(shapes []Shape, axis int) {
	sort.SliceStable(shapes, func(i, j int) bool {
		return shapes[i].BoundingBox().Center().Axis(axis) < shapes[j].BoundingBox().Center().Axis(axis)
	})
}

func (bvh *BVH) isShape() {}

// Hit finds the closest intersection with any shape in the BVH
func (bvh *BVH) Hit(ray core.Ray, tMin, tMax float64, rec *material.HitRecord, sampler core.Sampler) bool {
	if bvh.Root == nil || !bvh.Root.BoundingBox.Hit(ray, tMin, tMax) {
		return false
	}
	return bvh.hitNode(bvh.Root, ray, tMin, tMax, rec, sampler)
}

// hitNode tests a node whose box the ray is already known to enter.
// The nearer child is visited first so the farther one can often be culled.
func (bvh *BVH) hitNode(node *BVHNode, ray core.Ray, tMin, tMax float64, rec *material.HitRecord, sampler core.Sampler) bool {
	if node.Shape != nil {
		return node.Shape.Hit(ray, tMin, tMax, rec, sampler)
	}

	first, second := node.Left, node.Right
	tFirst, hitFirst := first.BoundingBox.Intersect(ray, tMin, tMax)
	tSecond, hitSecond := second.BoundingBox.Intersect(ray, tMin, tMax)
	if hitSecond && (!hitFirst || tSecond < tFirst) {
		first, second = second, first
		tFirst, tSecond = tSecond, tFirst
		hitFirst, hitSecond = hitSecond, hitFirst
	}

	hitAnything := false
	closestSoFar := tMax

	if hitFirst && bvh.hitNode(first, ray, tMin, closestSoFar, rec, sampler) {
		hitAnything = true
		closestSoFar = rec.T
	}

	// Skip the far child when its box starts beyond the closest hit
	if hitSecond && tSecond < closestSoFar && bvh.hitNode(second, ray, tMin, closestSoFar, rec, sampler) {
		hitAnything = true
	}

	return hitAnything
}

// BoundingBox returns the overall bounding box of the BVH
func (bvh *BVH) BoundingBox() core.AABB {
	if bvh.Root == nil {
		return core.AABB{}
	}
	return bvh.Root.BoundingBox
}

// ShapeCount returns the number of shapes the BVH was built from
func (bvh *BVH) ShapeCount() int {
	return bvh.shapeCount
}

// BVHStats contains statistics about the BVH structure
type BVHStats struct {
	TotalNodes int
	LeafNodes  int
	MaxDepth   int
	AvgDepth   float64 // Mean leaf depth
}

// Stats returns statistics about the BVH structure
func (bvh *BVH) Stats() BVHStats {
	if bvh.Root == nil {
		return BVHStats{}
	}

	stats := BVHStats{}
	collectStats(bvh.Root, 0, &stats)

	if stats.LeafNodes > 0 {
		stats.AvgDepth = stats.AvgDepth / float64(stats.LeafNodes)
	}

	return stats
}

// collectStats recursively collects statistics about the BVH
func collectStats(node *BVHNode, depth int, stats *BVHStats) {
	stats.TotalNodes++

	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	if node.Shape != nil {
		stats.LeafNodes++
		stats.AvgDepth += float64(depth) // summed here, divided in Stats
		return
	}

	collectStats(node.Left, depth+1, stats)
	collectStats(node.Right, depth+1, stats)
}

// Validate checks the structural invariants: leaves hold one shape whose box
// they contain, internal nodes have two children and contain both boxes.
func (bvh *BVH) Validate() error {
	if bvh.Root == nil {
		return fmt.Errorf("bvh has no root: %w", core.ErrInvalidScene)
	}
	leaves, err := validateNode(bvh.Root, 0)
	if err != nil {
		return err
	}
	if leaves != bvh.shapeCount {
		return fmt.Errorf("bvh has %d leaves for %d shapes", leaves, bvh.shapeCount)
	}
	return nil
}

func validateNode(node *BVHNode, depth int) (int, error) {
	if node.Shape != nil {
		if node.Left != nil || node.Right != nil {
			return 0, fmt.Errorf("leaf at depth %d has children", depth)
		}
		if !node.BoundingBox.Contains(node.Shape.BoundingBox()) {
			return 0, fmt.Errorf("leaf at depth %d does not contain its shape", depth)
		}
		return 1, nil
	}

	if node.Left == nil || node.Right == nil {
		return 0, fmt.Errorf("internal node at depth %d is missing a child", depth)
	}
	if !node.BoundingBox.Contains(node.Left.BoundingBox) || !node.BoundingBox.Contains(node.Right.BoundingBox) {
		return 0, fmt.Errorf("internal node at depth %d does not contain its children", depth)
	}

	leftLeaves, err := validateNode(node.Left, depth+1)
	if err != nil {
		return 0, err
	}
	rightLeaves, err := validateNode(node.Right, depth+1)
	if err != nil {
		return 0, err
	}
	return leftLeaves + rightLeaves, nil
}
