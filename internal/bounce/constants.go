package bounce

// Geometry thresholds for the bounce predictor.
// Tolerance matches the editor's "ball is resting on the rail" check in
// screen pixels; Epsilon is the numeric slack for intersection maths.
const (
	Tolerance = 1.0
	Epsilon   = 1e-6
)
