package scorer

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/lead-quality-cli/internal/model"
)

func TestSynthesizeLabelsNoiseless(t *testing.T) {
	cfg := labelConfig{noiseStdDev: 0, threshold: 0.6}

	tests := []struct {
		name string
		fv   model.FeatureVector
		want int
	}{
		{"all signals", goodFeatures(), 1},
		{"no signals", poorFeatures(), 0},
		{
			// 0.4 + 0.3 = 0.7 > 0.6
			"email+title and completeness",
			model.FeatureVector{EmailQuality: 0.9, TitleValue: 1.0, DataCompleteness: 0.8},
			1,
		},
		{
			// 0.3 + 0.2 = 0.5, below threshold
			"completeness and industry only",
			model.FeatureVector{DataCompleteness: 0.75, IndustryFit: 0.9},
			0,
		},
		{
			// exactly threshold is not a positive: 0.3 + 0.2 + 0.1 = 0.6
			"exact threshold",
			model.FeatureVector{DataCompleteness: 0.75, IndustryFit: 0.9, PhoneQuality: 0.8},
			0,
		},
		{
			// email alone does not earn the combination bonus
			"email without title",
			model.FeatureVector{EmailQuality: 1.0, TitleValue: 0.6, DataCompleteness: 1.0},
			0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := synthesizeLabels([]model.FeatureVector{tt.fv}, cfg, rand.New(rand.NewSource(1)))
			assert.Equal(t, tt.want, got[0])
		})
	}
}

func TestSynthesizeLabelsSeededReproducible(t *testing.T) {
	cfg := labelConfig{noiseStdDev: 0.05, threshold: 0.6}
	features := separableTable(100)

	a := synthesizeLabels(features, cfg, rand.New(rand.NewSource(42)))
	b := synthesizeLabels(features, cfg, rand.New(rand.NewSource(42)))
	assert.Equal(t, a, b)
}

func TestSynthesizeLabelsNoiseBounded(t *testing.T) {
	// Even with noise, a strongly negative profile should essentially
	// never cross the 0.6 threshold and a maximal one should always
	// land at 1 after clamping.
	cfg := labelConfig{noiseStdDev: 0.05, threshold: 0.6}
	rng := rand.New(rand.NewSource(9))

	many := make([]model.FeatureVector, 1000)
	for i := range many {
		many[i] = poorFeatures()
	}
	labels := synthesizeLabels(many, cfg, rng)
	for i, label := range labels {
		assert.Equal(t, 0, label, "poor profile labeled positive at %d", i)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.0, clamp(-0.2, 0, 1))
	assert.Equal(t, 1.0, clamp(1.7, 0, 1))
	assert.Equal(t, 0.5, clamp(0.5, 0, 1))
}
