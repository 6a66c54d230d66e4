// Package split partitions a feature matrix and label vector into disjoint
// train and held-out sets with deterministic, seeded row assignment.
package split

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/tabfit/tabfit/pkg/errors"
)

// Result holds the two partitions of a train/test split. Rows are disjoint
// between the pair and cover the input exactly.
type Result struct {
	XTrain *mat.Dense
	XTest  *mat.Dense
	YTrain *mat.Dense
	YTest  *mat.Dense

	// TrainIndex and TestIndex record which input rows landed where.
	TrainIndex []int
	TestIndex  []int
}

// TrainTest splits X (n x d) and y (n x 1) by trainFraction using a seeded
// permutation: the same seed and row count always produce the same
// memberships. trainFraction must lie strictly in (0, 1).
func TrainTest(X, y mat.Matrix, trainFraction float64, seed int64) (*Result, error) {
	if trainFraction <= 0 || trainFraction >= 1 {
		return nil, errors.NewInvalidConfigurationError("train_fraction", "must be in (0, 1)", trainFraction)
	}

	n, d := X.Dims()
	yRows, yCols := y.Dims()
	if yRows != n {
		return nil, errors.NewDimensionError("split.TrainTest", n, yRows, 0)
	}
	if yCols != 1 {
		return nil, errors.NewDimensionError("split.TrainTest", 1, yCols, 1)
	}
	if n == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "split.TrainTest")
	}

	nTrain := int(math.Round(trainFraction * float64(n)))
	if nTrain < 1 {
		nTrain = 1
	}
	if nTrain >= n {
		nTrain = n - 1
	}

	perm := rand.New(rand.NewSource(seed)).Perm(n)
	trainIdx := perm[:nTrain]
	testIdx := perm[nTrain:]

	res := &Result{
		XTrain:     takeRows(X, trainIdx, d),
		XTest:      takeRows(X, testIdx, d),
		YTrain:     takeRows(y, trainIdx, 1),
		YTest:      takeRows(y, testIdx, 1),
		TrainIndex: trainIdx,
		TestIndex:  testIdx,
	}
	return res, nil
}

func takeRows(m mat.Matrix, idx []int, cols int) *mat.Dense {
	out := mat.NewDense(len(idx), cols, nil)
	for i, r := range idx {
		for j := 0; j < cols; j++ {
			out.Set(i, j, m.At(r, j))
		}
	}
	return out
}
