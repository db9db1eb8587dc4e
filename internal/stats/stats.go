package stats

import "math"

// Pearson computes the population Pearson correlation coefficient of the
// two series. It returns 0 when fewer than two points are given, when the
// lengths differ, or when either series has zero variance.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0
	}

	meanX := Mean(xs)
	meanY := Mean(ys)

	var cov, varX, varY float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}

	stdX := math.Sqrt(varX / float64(n))
	stdY := math.Sqrt(varY / float64(n))
	if stdX == 0 || stdY == 0 {
		return 0
	}

	return (cov / float64(n)) / (stdX * stdY)
}

// Mean returns the arithmetic mean, or 0 for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return Sum(xs) / float64(len(xs))
}

// Sum returns the sum of the slice.
func Sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

// Min returns the smallest value, or 0 for an empty slice.
func Min(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x < m {
			m = x
		}
	}
	return m
}

// Max returns the largest value, or 0 for an empty slice.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	m := xs[0]
	for _, x := range xs[1:] {
		if x > m {
			m = x
		}
	}
	return m
}

// Diffs returns the elementwise difference xs[i] - ys[i]. The slices must
// be the same length; the shorter length is used otherwise.
func Diffs(xs, ys []float64) []float64 {
	n := len(xs)
	if len(ys) < n {
		n = len(ys)
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		out[i] = xs[i] - ys[i]
	}
	return out
}

// PctChanges returns percentage changes between consecutive values.
// out[0] is 0, and a zero previous value yields 0 rather than +Inf.
func PctChanges(xs []float64) []float64 {
	out := make([]float64, len(xs))
	for i := 1; i < len(xs); i++ {
		if xs[i-1] == 0 {
			continue
		}
		out[i] = (xs[i] - xs[i-1]) / xs[i-1] * 100
	}
	return out
}

// RollingMean computes a trailing moving average with the given window.
// Positions with fewer than minPeriods available values copy the partial
// mean, matching pandas rolling(min_periods=...) semantics.
func RollingMean(xs []float64, window, minPeriods int) []float64 {
	if window < 1 {
		window = 1
	}
	if minPeriods < 1 {
		minPeriods = 1
	}

	out := make([]float64, len(xs))
	var sum float64
	for i := range xs {
		sum += xs[i]
		if i >= window {
			sum -= xs[i-window]
		}

		have := i + 1
		if have > window {
			have = window
		}
		if have >= minPeriods {
			out[i] = sum / float64(have)
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// LinearFit returns the least-squares slope and intercept of y on x.
// A degenerate input (n < 2 or constant x) yields slope 0 and the mean of y.
func LinearFit(xs, ys []float64) (slope, intercept float64) {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0, Mean(ys)
	}

	meanX := Mean(xs)
	meanY := Mean(ys)

	var cov, varX float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		cov += dx * (ys[i] - meanY)
		varX += dx * dx
	}
	if varX == 0 {
		return 0, meanY
	}

	slope = cov / varX
	intercept = meanY - slope*meanX
	return slope, intercept
}
