package scorer

import (
	"math"
	"math/rand"
	"sort"
)

// forest is a bagged ensemble of CART trees over the five feature
// columns. Chosen over a single tree for robustness on the small,
// noisy synthetic-label tables this pipeline trains on, and because
// accumulated Gini decrease gives an interpretable per-feature
// importance.
type forest struct {
	trees      []*treeNode
	importance []float64 // normalized Gini importance per feature column
}

// treeNode is one node of a CART tree. Leaves carry the positive-class
// fraction of the training rows that reached them.
type treeNode struct {
	feature   int
	threshold float64
	left      *treeNode
	right     *treeNode
	leaf      bool
	prob      float64
}

// forestParams bundles the ensemble hyperparameters.
type forestParams struct {
	trees        int
	maxDepth     int
	minLeafSize  int
	featureCount int
}

// fitForest trains the ensemble. Each tree sees a bootstrap sample of
// the rows and considers a random sqrt-sized feature subset at every
// split. All randomness comes from rng.
func fitForest(x [][]float64, y []int, p forestParams, rng *rand.Rand) *forest {
	if p.minLeafSize <= 0 {
		p.minLeafSize = 1
	}
	f := &forest{
		trees:      make([]*treeNode, 0, p.trees),
		importance: make([]float64, p.featureCount),
	}

	// Features considered per split: sqrt of the column count.
	mtry := int(math.Sqrt(float64(p.featureCount)))
	if mtry < 1 {
		mtry = 1
	}

	for t := 0; t < p.trees; t++ {
		// Bootstrap sample with replacement.
		idx := make([]int, len(x))
		for i := range idx {
			idx[i] = rng.Intn(len(x))
		}
		b := &treeBuilder{
			x:           x,
			y:           y,
			mtry:        mtry,
			maxDepth:    p.maxDepth,
			minLeafSize: p.minLeafSize,
			rng:         rng,
			importance:  f.importance,
			total:       float64(len(idx)),
		}
		f.trees = append(f.trees, b.build(idx, 0))
	}

	// Normalize accumulated Gini decrease across the whole ensemble.
	var sum float64
	for _, v := range f.importance {
		sum += v
	}
	if sum > 0 {
		for i := range f.importance {
			f.importance[i] /= sum
		}
	}

	return f
}

// predictProb returns the mean positive-class probability across trees.
func (f *forest) predictProb(row []float64) float64 {
	if len(f.trees) == 0 {
		return 0
	}
	var sum float64
	for _, t := range f.trees {
		sum += t.predict(row)
	}
	return sum / float64(len(f.trees))
}

func (n *treeNode) predict(row []float64) float64 {
	for !n.leaf {
		if row[n.feature] <= n.threshold {
			n = n.left
		} else {
			n = n.right
		}
	}
	return n.prob
}

// treeBuilder grows a single tree; importance accumulates weighted
// impurity decrease into the shared forest slice.
type treeBuilder struct {
	x           [][]float64
	y           []int
	mtry        int
	maxDepth    int
	minLeafSize int
	rng         *rand.Rand
	importance  []float64
	total       float64
}

func (b *treeBuilder) build(idx []int, depth int) *treeNode {
	pos := 0
	for _, i := range idx {
		pos += b.y[i]
	}

	// Stop on purity, depth, or size.
	if pos == 0 || pos == len(idx) || depth >= b.maxDepth || len(idx) < 2*b.minLeafSize {
		return &treeNode{leaf: true, prob: float64(pos) / float64(len(idx))}
	}

	feat, thresh, gain, ok := b.bestSplit(idx, pos)
	if !ok {
		return &treeNode{leaf: true, prob: float64(pos) / float64(len(idx))}
	}

	var left, right []int
	for _, i := range idx {
		if b.x[i][feat] <= thresh {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	b.importance[feat] += gain * float64(len(idx)) / b.total

	return &treeNode{
		feature:   feat,
		threshold: thresh,
		left:      b.build(left, depth+1),
		right:     b.build(right, depth+1),
	}
}

// bestSplit scans a random feature subset for the threshold with the
// largest Gini impurity decrease. Candidate thresholds are midpoints
// between consecutive distinct values.
func (b *treeBuilder) bestSplit(idx []int, pos int) (feature int, threshold, gain float64, ok bool) {
	n := len(idx)
	parentGini := giniImpurity(pos, n)

	features := b.rng.Perm(len(b.importance))[:b.mtry]

	vals := make([]float64, n)
	bestGain := 0.0

	for _, feat := range features {
		for i, id := range idx {
			vals[i] = b.x[id][feat]
		}
		order := make([]int, n)
		for i := range order {
			order[i] = i
		}
		sort.Slice(order, func(a, c int) bool { return vals[order[a]] < vals[order[c]] })

		// Walk the sorted rows tracking left-side counts.
		leftN, leftPos := 0, 0
		for k := 0; k < n-1; k++ {
			i := idx[order[k]]
			leftN++
			leftPos += b.y[i]

			v, next := vals[order[k]], vals[order[k+1]]
			if v == next {
				continue
			}
			if leftN < b.minLeafSize || n-leftN < b.minLeafSize {
				continue
			}

			rightN := n - leftN
			rightPos := pos - leftPos
			split := parentGini -
				(float64(leftN)/float64(n))*giniImpurity(leftPos, leftN) -
				(float64(rightN)/float64(n))*giniImpurity(rightPos, rightN)

			if split > bestGain {
				bestGain = split
				feature = feat
				threshold = (v + next) / 2
				ok = true
			}
		}
	}

	return feature, threshold, bestGain, ok
}

// giniImpurity for a binary node with pos positives out of n rows.
func giniImpurity(pos, n int) float64 {
	if n == 0 {
		return 0
	}
	p := float64(pos) / float64(n)
	return 2 * p * (1 - p)
}
