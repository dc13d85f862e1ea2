package scorer

import (
	"math/rand"

	"github.com/sells-group/lead-quality-cli/internal/model"
)

// synthesizeLabels derives a binary good/poor label for each feature
// vector. Labels stand in for conversion data the pipeline does not
// have: high-value feature combinations earn additive credit, bounded
// gaussian noise keeps the classifier from memorizing the rule, and
// the result is thresholded into a class. Labels exist only for the
// duration of training and are never attached to leads.
//
// Rows are independent and may be labeled in any order.
func synthesizeLabels(features []model.FeatureVector, cfg labelConfig, rng *rand.Rand) []int {
	labels := make([]int, len(features))
	for i, fv := range features {
		score := 0.0

		// Good email plus a decision maker is the strongest signal.
		if fv.EmailQuality >= 0.8 && fv.TitleValue >= 0.8 {
			score += 0.4
		}
		if fv.DataCompleteness >= 0.75 {
			score += 0.3
		}
		if fv.IndustryFit >= 0.9 {
			score += 0.2
		}
		if fv.PhoneQuality >= 0.8 {
			score += 0.1
		}

		score += rng.NormFloat64() * cfg.noiseStdDev
		score = clamp(score, 0, 1)

		if score > cfg.threshold {
			labels[i] = 1
		}
	}
	return labels
}

// labelConfig carries the two knobs label synthesis needs.
type labelConfig struct {
	noiseStdDev float64
	threshold   float64
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
