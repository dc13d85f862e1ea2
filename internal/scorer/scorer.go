package scorer

import (
	"math"
	"math/rand"
	"sort"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lead-quality-cli/internal/config"
	"github.com/sells-group/lead-quality-cli/internal/model"
)

// Sentinel errors. ErrNoLeads is a configuration problem at train
// time; ErrNotTrained is a state problem at predict time.
var (
	ErrNoLeads    = eris.New("scorer: feature table is empty")
	ErrNotTrained = eris.New("scorer: model is not trained")
)

// Scorer owns the lead quality model. It starts untrained; Train moves
// it to the trained state, atomically replacing classifier and scaler
// together. Scorer is not safe for concurrent training and prediction;
// callers that share one must serialize access.
type Scorer struct {
	cfg   config.ModelConfig
	state *trainedState
}

// trainedState holds the fitted classifier and scaler as a unit, so a
// Scorer can never observe one without the other.
type trainedState struct {
	forest *forest
	scaler *standardScaler
}

// New creates an untrained Scorer with the given model config.
func New(cfg config.ModelConfig) *Scorer {
	return &Scorer{cfg: cfg}
}

// Trained reports whether the model has been trained.
func (s *Scorer) Trained() bool { return s.state != nil }

// Train synthesizes labels for the feature table, fits the scaler and
// classifier on a 80/20 split, and reports accuracy on both splits.
// The rng drives label noise; the split and ensemble use the config
// seed so the partition is fixed across runs. On error the Scorer's
// previous state is left untouched.
func (s *Scorer) Train(features []model.FeatureVector, rng *rand.Rand) (model.TrainStats, error) {
	if len(features) == 0 {
		return model.TrainStats{}, ErrNoLeads
	}

	x := make([][]float64, len(features))
	for i, fv := range features {
		x[i] = fv.Values()
	}
	y := synthesizeLabels(features, labelConfig{
		noiseStdDev: s.cfg.NoiseStdDev,
		threshold:   s.cfg.LabelThreshold,
	}, rng)

	// Fixed random partition, independent of the label noise source.
	seeded := rand.New(rand.NewSource(s.cfg.Seed)) //nolint:gosec // reproducibility, not crypto
	perm := seeded.Perm(len(x))
	nTest := int(math.Round(float64(len(x)) * s.cfg.TestFraction))
	if nTest >= len(x) {
		nTest = len(x) - 1
	}
	testIdx, trainIdx := perm[:nTest], perm[nTest:]

	trainX := make([][]float64, len(trainIdx))
	trainY := make([]int, len(trainIdx))
	for i, id := range trainIdx {
		trainX[i], trainY[i] = x[id], y[id]
	}
	testX := make([][]float64, len(testIdx))
	testY := make([]int, len(testIdx))
	for i, id := range testIdx {
		testX[i], testY[i] = x[id], y[id]
	}

	// Scale on the training split only.
	scaler := fitScaler(trainX)
	trainScaled := scaler.transform(trainX)
	testScaled := scaler.transform(testX)

	f := fitForest(trainScaled, trainY, forestParams{
		trees:        s.cfg.Trees,
		maxDepth:     s.cfg.MaxDepth,
		minLeafSize:  1,
		featureCount: len(model.FeatureNames),
	}, seeded)

	positives := 0
	for _, label := range y {
		positives += label
	}

	stats := model.TrainStats{
		TrainAccuracy: accuracy(f, trainScaled, trainY),
		TestAccuracy:  accuracy(f, testScaled, testY),
		TotalSamples:  len(features),
		PositiveLeads: positives,
	}

	s.state = &trainedState{forest: f, scaler: scaler}

	zap.L().Info("scorer: training complete",
		zap.Int("total_samples", stats.TotalSamples),
		zap.Int("positive_leads", stats.PositiveLeads),
		zap.Float64("train_accuracy", stats.TrainAccuracy),
		zap.Float64("test_accuracy", stats.TestAccuracy),
	)

	return stats, nil
}

// PredictScores returns the positive-class probability for each row,
// in input order. Scoring an already-trained model is deterministic.
func (s *Scorer) PredictScores(features []model.FeatureVector) ([]float64, error) {
	if s.state == nil {
		return nil, ErrNotTrained
	}

	x := make([][]float64, len(features))
	for i, fv := range features {
		x[i] = fv.Values()
	}
	scaled := s.state.scaler.transform(x)

	scores := make([]float64, len(scaled))
	for i, row := range scaled {
		scores[i] = s.state.forest.predictProb(row)
	}
	return scores, nil
}

// FeatureImportance returns the trained per-feature importances,
// rounded to 3 decimals and sorted descending. Empty when untrained.
func (s *Scorer) FeatureImportance() []model.FeatureWeight {
	if s.state == nil {
		return nil
	}

	weights := make([]model.FeatureWeight, len(model.FeatureNames))
	for i, name := range model.FeatureNames {
		weights[i] = model.FeatureWeight{
			Name:       name,
			Importance: math.Round(s.state.forest.importance[i]*1000) / 1000,
		}
	}
	sort.SliceStable(weights, func(a, b int) bool {
		return weights[a].Importance > weights[b].Importance
	})
	return weights
}

// accuracy is the fraction of rows whose hard class (prob >= 0.5)
// matches the label.
func accuracy(f *forest, x [][]float64, y []int) float64 {
	if len(x) == 0 {
		return 0
	}
	correct := 0
	for i, row := range x {
		pred := 0
		if f.predictProb(row) >= 0.5 {
			pred = 1
		}
		if pred == y[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(x))
}
