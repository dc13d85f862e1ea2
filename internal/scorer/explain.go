package scorer

import "github.com/sells-group/lead-quality-cli/internal/model"

// Explain returns human-readable reasons for a lead's feature profile,
// for display next to the score.
func Explain(fv model.FeatureVector) []string {
	var reasons []string

	if fv.EmailQuality >= 0.8 {
		reasons = append(reasons, "Valid business email")
	} else if fv.EmailQuality <= 0.3 {
		reasons = append(reasons, "Missing or poor email")
	}

	if fv.TitleValue >= 0.8 {
		reasons = append(reasons, "Decision maker role")
	} else if fv.TitleValue <= 0.3 {
		reasons = append(reasons, "Low-influence role")
	}

	if fv.DataCompleteness >= 0.75 {
		reasons = append(reasons, "Complete contact info")
	} else {
		reasons = append(reasons, "Missing contact details")
	}

	return reasons
}
