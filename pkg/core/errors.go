package core

import "errors"

var (
	// ErrInvalidScene marks a scene that cannot be rendered: no primitives,
	// non-positive image size or sample count, or a dangling material reference.
	ErrInvalidScene = errors.New("invalid scene")

	// ErrDegenerateGeometry marks a zero-area primitive. Such primitives are
	// kept in the scene but never report a hit.
	ErrDegenerateGeometry = errors.New("degenerate geometry")
)
