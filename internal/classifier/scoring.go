// Package classifier implements the supplier quality classifier: the
// composite cohort score, equal-frequency rating buckets, and a regression
// model trained on the engineered features and persisted alongside its
// feature scaler.
package classifier

import (
	"github.com/quotana/quotana/internal/analysis"
	"github.com/quotana/quotana/internal/model"
)

// Composite score weights over min-max normalized cohort metrics.
const (
	weightLeadTime   = 0.4
	weightRecurrence = 0.3
	weightDiscount   = 0.3

	normEpsilon = 1e-6
)

// minMaxNormalize scales values into [0,1] across the cohort. The epsilon
// keeps a constant column at zero instead of dividing by zero.
func minMaxNormalize(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	minV, maxV := values[0], values[0]
	for _, v := range values[1:] {
		if v < minV {
			minV = v
		}
		if v > maxV {
			maxV = v
		}
	}

	out := make([]float64, len(values))
	span := maxV - minV + normEpsilon
	for i, v := range values {
		out[i] = (v - minV) / span
	}
	return out
}

// CompositeScores computes the continuous quality score for each supplier:
// shorter lead times, higher recurrence and higher discount rates score
// higher. Normalization is relative to the cohort, so scores from
// different cohorts are not comparable.
func CompositeScores(cohort []model.SupplierFeatures) []float64 {
	leadTimes := make([]float64, len(cohort))
	recurrences := make([]float64, len(cohort))
	discounts := make([]float64, len(cohort))
	for i, s := range cohort {
		leadTimes[i] = s.AvgLeadTime
		recurrences[i] = float64(s.Recurrence)
		discounts[i] = s.DiscountRate
	}

	normLead := minMaxNormalize(leadTimes)
	normRec := minMaxNormalize(recurrences)
	normDisc := minMaxNormalize(discounts)

	scores := make([]float64, len(cohort))
	for i := range cohort {
		scores[i] = weightLeadTime*(1-normLead[i]) +
			weightRecurrence*normRec[i] +
			weightDiscount*normDisc[i]
	}
	return scores
}

// RatingsFromScores assigns 1-5 ratings by splitting the cohort's score
// distribution into five equal-frequency quantile buckets. The bucket
// boundaries depend on the cohort composition, not on absolute thresholds;
// that is a property of the design, not an accident.
func RatingsFromScores(scores []float64) []int {
	edges := make([]float64, 6)
	for i := 0; i <= 5; i++ {
		edges[i] = analysis.Quantile(scores, float64(i)/5)
	}

	ratings := make([]int, len(scores))
	for i, s := range scores {
		rating := 5
		for bucket := 1; bucket < 5; bucket++ {
			if s <= edges[bucket] {
				rating = bucket
				break
			}
		}
		ratings[i] = rating
	}
	return ratings
}

// clampRating rounds a continuous prediction into the integer range [1,5].
func clampRating(prediction float64) int {
	r := int(prediction + 0.5)
	if prediction < 0 {
		r = int(prediction - 0.5)
	}
	if r < 1 {
		return 1
	}
	if r > 5 {
		return 5
	}
	return r
}
