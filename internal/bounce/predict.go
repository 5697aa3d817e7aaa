// Package bounce predicts how a ball launched from the ghost ball rebounds off
// the rails of a rectangular table. Everything here is a pure function of its
// inputs: nothing is cached, rendered, or persisted.
package bounce

import "github.com/playmatatu/aimguide/internal/geometry"

// Input is an immutable snapshot of everything a prediction needs.
type Input struct {
	TableRect  geometry.Rect  `json:"tableRect"`
	BallRadius float64        `json:"ballRadius"`
	ObjectBall geometry.Point `json:"objectBall"`
	GhostBall  geometry.Point `json:"ghostBall"`
	MaxBounces int            `json:"maxBounces"`
}

// Predict returns the bounce path for in. Malformed geometry never fails; it
// yields an empty path or a path shorter than MaxBounces.
func Predict(in Input) Path {
	boundary := DeriveBoundary(in.TableRect, in.BallRadius)
	dir, ok := ResolveDirection(in.ObjectBall, in.GhostBall, boundary)
	if !ok {
		return Path{}
	}
	return Trace(in.GhostBall, dir, boundary, in.MaxBounces)
}
