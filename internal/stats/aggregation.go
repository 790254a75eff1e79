// Package stats holds the descriptive helpers used by the aggregation
// pipeline. Empty input yields zero values.
package stats

// Mean calculates the arithmetic mean of a slice of float64 values
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// Min returns the minimum value
func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	min := values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
	}
	return min
}

// Max returns the maximum value
func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	max := values[0]
	for _, v := range values[1:] {
		if v > max {
			max = v
		}
	}
	return max
}

// Normalize rescales values to [0, 1]. A constant slice maps to all zeros.
func Normalize(values []float64) []float64 {
	result := make([]float64, len(values))

	min, max := Min(values), Max(values)
	if max == min {
		return result
	}
	for i, v := range values {
		result[i] = (v - min) / (max - min)
	}
	return result
}
