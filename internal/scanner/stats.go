package scanner

import "math"

// pstdev computes the population standard deviation with Welford's
// single-pass accumulation, which stays numerically stable on the
// near-constant price runs the breakout module screens for.
func pstdev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var mean, m2 float64
	for i, v := range values {
		delta := v - mean
		mean += delta / float64(i+1)
		m2 += delta * (v - mean)
	}
	return math.Sqrt(m2 / float64(len(values)))
}
