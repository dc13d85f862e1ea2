package scorer

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// standardScaler centers each feature column to zero mean and unit
// variance. Fit on the training split only; the same transform is
// applied to everything scored afterwards.
type standardScaler struct {
	mean []float64
	std  []float64
}

// fitScaler computes per-column mean and standard deviation over rows.
func fitScaler(rows [][]float64) *standardScaler {
	if len(rows) == 0 {
		return &standardScaler{}
	}
	cols := len(rows[0])
	s := &standardScaler{
		mean: make([]float64, cols),
		std:  make([]float64, cols),
	}

	col := make([]float64, len(rows))
	for j := 0; j < cols; j++ {
		for i := range rows {
			col[i] = rows[i][j]
		}
		s.mean[j] = stat.Mean(col, nil)
		s.std[j] = stat.StdDev(col, nil)
		// A constant (or single-row) column scales to zero rather than NaN.
		if s.std[j] == 0 || math.IsNaN(s.std[j]) {
			s.std[j] = 1
		}
	}
	return s
}

// transform returns scaled copies of rows; the input is not modified.
func (s *standardScaler) transform(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		scaled := make([]float64, len(row))
		for j, v := range row {
			scaled[j] = (v - s.mean[j]) / s.std[j]
		}
		out[i] = scaled
	}
	return out
}
