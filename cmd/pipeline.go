package main

import (
	"math/rand"

	"github.com/sells-group/lead-quality-cli/internal/config"
	"github.com/sells-group/lead-quality-cli/internal/feature"
	"github.com/sells-group/lead-quality-cli/internal/model"
	"github.com/sells-group/lead-quality-cli/internal/scorer"
)

// scoreResult is the output of one full scoring pass.
type scoreResult struct {
	Leads      []model.ScoredLead
	Stats      model.TrainStats
	Importance []model.FeatureWeight
}

// scoreLeads runs the full pipeline over a lead table: feature
// extraction, model training on synthetic labels, prediction, and
// categorization.
func scoreLeads(leads []model.Lead, featureCfg config.FeatureConfig, modelCfg config.ModelConfig) (*scoreResult, error) {
	if err := feature.ValidateConfig(featureCfg); err != nil {
		return nil, err
	}
	if err := scorer.ValidateConfig(modelCfg); err != nil {
		return nil, err
	}

	extractor := feature.NewExtractor(featureCfg)
	features := extractor.Extract(leads)

	sc := scorer.New(modelCfg)
	rng := rand.New(rand.NewSource(modelCfg.Seed))
	stats, err := sc.Train(features, rng)
	if err != nil {
		return nil, err
	}

	scores, err := sc.PredictScores(features)
	if err != nil {
		return nil, err
	}

	scored := make([]model.ScoredLead, len(leads))
	for i := range leads {
		scored[i] = model.ScoredLead{
			Lead:     leads[i],
			Features: features[i],
			Score:    scores[i],
			Category: scorer.Categorize(scores[i], modelCfg),
		}
	}

	return &scoreResult{
		Leads:      scored,
		Stats:      stats,
		Importance: sc.FeatureImportance(),
	}, nil
}
