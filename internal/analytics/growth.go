package analytics

const (
	TrendIncreasing = "increasing"
	TrendStable     = "stable"
	TrendDecreasing = "decreasing"
)

// GrowthInputs feeds the growth score: week-over-week activity counts, the
// recent solution-accuracy average in [0,1], and the assignment completion
// ratio in [0,1].
type GrowthInputs struct {
	EventsThisWeek  int
	EventsLastWeek  int
	Accuracy        float64
	CompletionRatio float64
}

// GrowthScore folds the three inputs into [0,100]. The activity share uses
// this/(this+last) so more activity this week can only raise the score;
// accuracy and completion enter linearly. 50/30/20 weighting.
func GrowthScore(in GrowthInputs) float64 {
	activity := 0.5
	if in.EventsThisWeek > 0 || in.EventsLastWeek > 0 {
		activity = float64(in.EventsThisWeek) / float64(in.EventsThisWeek+in.EventsLastWeek)
	}
	score := 100 * (0.5*activity + 0.3*clamp01(in.Accuracy) + 0.2*clamp01(in.CompletionRatio))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ClassifyTrend labels the week-over-week trajectory. Changes within ±15% of
// last week count as stable.
func ClassifyTrend(thisWeek, lastWeek int) string {
	if lastWeek == 0 {
		if thisWeek > 0 {
			return TrendIncreasing
		}
		return TrendStable
	}
	delta := float64(thisWeek-lastWeek) / float64(lastWeek)
	switch {
	case delta > 0.15:
		return TrendIncreasing
	case delta < -0.15:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
