// Package analysis provides the statistical utilities used around the
// classifier: price anomaly detection and the pre-training supplier score.
package analysis

import "sort"

// minAnomalySample is the smallest list the IQR rule is meaningful for.
const minAnomalySample = 4

// Quantile returns the q-quantile of values using linear interpolation
// between closest ranks. values need not be sorted.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	frac := pos - float64(lo)
	if lo+1 >= len(sorted) {
		return sorted[lo]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// DetectAnomalies flags values outside [Q1 - 1.5*IQR, Q1 + 1.5*IQR].
// Fewer than four samples is an insufficient sample and yields an empty
// set. The result supports membership tests only; no order is implied.
func DetectAnomalies(values []float64) map[float64]bool {
	anomalies := make(map[float64]bool)
	if len(values) < minAnomalySample {
		return anomalies
	}

	q1 := Quantile(values, 0.25)
	q3 := Quantile(values, 0.75)
	iqr := q3 - q1

	lower := q1 - 1.5*iqr
	upper := q1 + 1.5*iqr

	for _, v := range values {
		if v < lower || v > upper {
			anomalies[v] = true
		}
	}
	return anomalies
}
