package geo

// DefaultThresholdMeters is the radius inside which a reported device
// position authorizes a visit transition.
const DefaultThresholdMeters = 500

// Gate decides whether a reported position is near enough to a target
// coordinate. The caller is responsible for distinguishing "no position
// available" from "position is far away"; a Gate only ever sees a position
// that exists.
type Gate struct {
	ThresholdMeters float64
}

// NewGate returns a gate with the given threshold in meters, falling back to
// DefaultThresholdMeters when the value is not positive.
func NewGate(thresholdMeters float64) Gate {
	if thresholdMeters <= 0 {
		thresholdMeters = DefaultThresholdMeters
	}
	return Gate{ThresholdMeters: thresholdMeters}
}

// Evaluate returns the unrounded distance from current to target and whether
// that distance is within the threshold. A distance exactly equal to the
// threshold counts as nearby.
func (g Gate) Evaluate(current, target Coordinate) (distanceMeters float64, nearby bool) {
	d := DistanceMeters(current, target)
	return d, d <= g.ThresholdMeters
}

// IsNearby reports whether current is within the gate's threshold of target.
func (g Gate) IsNearby(current, target Coordinate) bool {
	_, nearby := g.Evaluate(current, target)
	return nearby
}
