package analysis

// Health score bands. The score starts at a fixed baseline and is clamped
// to [0, 100] after the margin and runway adjustments.
const (
	scoreBaseline = 70
	scoreMax      = 100
	scoreMin      = 0
)

// HealthScore derives the bounded health score from computed metrics.
// The runway band [3, 6] months is deliberately neutral: no adjustment.
func HealthScore(m Metrics) int {
	score := scoreBaseline

	switch {
	case m.NetMarginPercent > 20:
		score += 20
	case m.NetMarginPercent > 0:
		score += 10
	default:
		score -= 10
	}

	switch {
	case m.RunwayMonths > 12:
		score += 20
	case m.RunwayMonths > 6:
		score += 10
	case m.RunwayMonths < 3:
		score -= 20
	}

	if score > scoreMax {
		return scoreMax
	}
	if score < scoreMin {
		return scoreMin
	}
	return score
}
