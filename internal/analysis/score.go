package analysis

// PreferredRegion is the project region with facilitated logistics.
const PreferredRegion = "GO"

// HeuristicSupplierScore is the rule-based 0-100 supplier score used before
// a trained classifier exists. Base 50; shorter lead times, the preferred
// region and a large purchase volume add points; capped at 100.
func HeuristicSupplierScore(avgLeadTimeDays float64, historicalVolume float64, region string) int {
	score := 50

	switch {
	case avgLeadTimeDays <= 7:
		score += 20
	case avgLeadTimeDays <= 15:
		score += 10
	}

	if region == PreferredRegion {
		score += 10
	}

	if historicalVolume > 1000 {
		score += 20
	}

	if score > 100 {
		score = 100
	}
	return score
}
