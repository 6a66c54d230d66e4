package bayes

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/tabfit/tabfit/pkg/errors"
)

func gaussianData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(10, 2, []float64{
		0.0, 0.2,
		0.1, 0.0,
		-0.1, 0.1,
		0.2, -0.2,
		0.0, 0.0,
		5.0, 5.2,
		5.1, 4.9,
		4.9, 5.1,
		5.2, 5.0,
		5.0, 5.0,
	})
	y := mat.NewDense(10, 1, []float64{0, 0, 0, 0, 0, 1, 1, 1, 1, 1})
	return X, y
}

func TestGaussianNBFitPredict(t *testing.T) {
	X, y := gaussianData()
	nb := NewGaussianNB()
	if err := nb.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	acc, err := nb.Score(X, y)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if acc != 1.0 {
		t.Errorf("training accuracy = %v, want 1.0 on separated clusters", acc)
	}

	priorSum := 0.0
	for _, p := range nb.Prior {
		priorSum += p
	}
	if math.Abs(priorSum-1.0) > 1e-12 {
		t.Errorf("priors sum to %v, want 1", priorSum)
	}

	if got := nb.Classes(); len(got) != 2 || got[0] != 0 || got[1] != 1 {
		t.Errorf("Classes = %v, want [0 1]", got)
	}
}

func TestGaussianNBProba(t *testing.T) {
	X, y := gaussianData()
	nb := NewGaussianNB()
	if err := nb.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	proba, err := nb.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}
	rows, cols := proba.Dims()
	if rows != 10 || cols != 2 {
		t.Fatalf("proba dims = %dx%d, want 10x2", rows, cols)
	}
	for i := 0; i < rows; i++ {
		sum := proba.At(i, 0) + proba.At(i, 1)
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("row %d probabilities sum to %v, want 1", i, sum)
		}
	}
	if proba.At(0, 0) < 0.99 {
		t.Errorf("sample 0: P(0) = %v, want near 1", proba.At(0, 0))
	}
}

func TestGaussianNBSampleWeight(t *testing.T) {
	X, y := gaussianData()

	weighted := NewGaussianNB()
	if err := weighted.SetFitParams(map[string]any{
		"sample_weight": []float64{3, 3, 3, 3, 3, 1, 1, 1, 1, 1},
	}); err != nil {
		t.Fatalf("SetFitParams: %v", err)
	}
	if err := weighted.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	// Class 0 carries three times the weight, so its prior dominates.
	if math.Abs(weighted.Prior[0]-0.75) > 1e-12 {
		t.Errorf("weighted prior for class 0 = %v, want 0.75", weighted.Prior[0])
	}
}

func TestGaussianNBErrors(t *testing.T) {
	nb := NewGaussianNB()
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	var nfErr *errors.NotFittedError
	if _, err := nb.Predict(X); !errors.As(err, &nfErr) {
		t.Errorf("Predict before fit: err = %v, want NotFittedError", err)
	}

	yOne := mat.NewDense(2, 1, []float64{1, 1})
	if err := nb.Fit(X, yOne); !errors.Is(err, errors.ErrInvalidDataset) {
		t.Errorf("Fit with one class: err = %v, want ErrInvalidDataset", err)
	}

	yBad := mat.NewDense(3, 1, []float64{0, 1, 0})
	var dimErr *errors.DimensionError
	if err := nb.Fit(X, yBad); !errors.As(err, &dimErr) {
		t.Errorf("Fit with mismatched rows: err = %v, want DimensionError", err)
	}
}
