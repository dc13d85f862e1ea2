package scorer

import (
	"github.com/sells-group/lead-quality-cli/internal/config"
	"github.com/sells-group/lead-quality-cli/internal/model"
)

// Categorize maps a score to its display bucket. Thresholds are
// inclusive on the lower bound of each bucket and evaluated in
// descending order.
func Categorize(score float64, cfg config.ModelConfig) model.Category {
	switch {
	case score >= cfg.HotThreshold:
		return model.CategoryHot
	case score >= cfg.WarmThreshold:
		return model.CategoryWarm
	case score >= cfg.ColdThreshold:
		return model.CategoryCold
	default:
		return model.CategoryLowPriority
	}
}

// CategorizeAll maps a score slice to categories, index-aligned.
func CategorizeAll(scores []float64, cfg config.ModelConfig) []model.Category {
	out := make([]model.Category, len(scores))
	for i, s := range scores {
		out[i] = Categorize(s, cfg)
	}
	return out
}
