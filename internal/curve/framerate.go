package curve

import "math"

// DefaultFrameRate is used when a clip is created without an explicit rate.
const DefaultFrameRate FrameRate = 30

// timeEpsilon is the tolerance under which two key times are the same time.
const timeEpsilon = 1e-6

// FrameRate converts between continuous clip time (seconds) and frame
// indices.
type FrameRate float64

// FPS returns the rate as a float, falling back to DefaultFrameRate for
// non-positive values.
func (r FrameRate) FPS() float64 {
	if r <= 0 {
		return float64(DefaultFrameRate)
	}
	return float64(r)
}

// TimeToFrame quantizes t to the nearest frame index.
func (r FrameRate) TimeToFrame(t float64) int {
	return int(math.Round(t * r.FPS()))
}

// FrameToTime returns the time of frame f.
func (r FrameRate) FrameToTime(f int) float64 {
	return float64(f) / r.FPS()
}

// SameTime reports whether a and b are the same key time.
func SameTime(a, b float64) bool {
	return math.Abs(a-b) < timeEpsilon
}
