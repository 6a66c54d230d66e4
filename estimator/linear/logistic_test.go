package linear

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/tabfit/tabfit/core/model"
	"github.com/tabfit/tabfit/pkg/errors"
)

// separable binary data: class 1 sits well above class 0 in both features.
func binaryData() (*mat.Dense, *mat.Dense) {
	X := mat.NewDense(8, 2, []float64{
		0.0, 0.1,
		0.2, 0.0,
		0.1, 0.3,
		0.3, 0.2,
		3.0, 3.1,
		3.2, 2.9,
		2.9, 3.3,
		3.1, 3.0,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})
	return X, y
}

func TestLogisticRegressionBinary(t *testing.T) {
	X, y := binaryData()
	lr := NewLogisticRegression(WithMaxIter(500))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	acc, err := lr.Score(X, y)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if acc != 1.0 {
		t.Errorf("training accuracy = %v, want 1.0 on separable data", acc)
	}

	classes := lr.Classes()
	if len(classes) != 2 || classes[0] != 0 || classes[1] != 1 {
		t.Errorf("Classes = %v, want [0 1]", classes)
	}
}

func TestLogisticRegressionProba(t *testing.T) {
	X, y := binaryData()
	lr := NewLogisticRegression(WithMaxIter(500))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	proba, err := lr.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}
	rows, cols := proba.Dims()
	if rows != 8 || cols != 2 {
		t.Fatalf("proba dims = %dx%d, want 8x2", rows, cols)
	}
	for i := 0; i < rows; i++ {
		sum := proba.At(i, 0) + proba.At(i, 1)
		if math.Abs(sum-1.0) > 1e-9 {
			t.Errorf("row %d probabilities sum to %v, want 1", i, sum)
		}
	}
	// High-feature samples should favor class 1.
	if proba.At(4, 1) <= proba.At(4, 0) {
		t.Errorf("sample 4: P(1)=%v not above P(0)=%v", proba.At(4, 1), proba.At(4, 0))
	}
}

func TestLogisticRegressionMulticlass(t *testing.T) {
	// Three clusters along the first feature.
	var rowsData []float64
	var labels []float64
	centers := []float64{0.0, 5.0, 10.0}
	for c, center := range centers {
		for k := 0; k < 6; k++ {
			rowsData = append(rowsData, center+0.1*float64(k), center-0.1*float64(k))
			labels = append(labels, float64(c))
		}
	}
	X := mat.NewDense(18, 2, rowsData)
	y := mat.NewDense(18, 1, labels)

	lr := NewLogisticRegression(WithMaxIter(800))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	acc, err := lr.Score(X, y)
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	if acc < 0.9 {
		t.Errorf("training accuracy = %v, want >= 0.9", acc)
	}
	if got := lr.Classes(); len(got) != 3 {
		t.Errorf("Classes = %v, want three classes", got)
	}

	proba, err := lr.PredictProba(X)
	if err != nil {
		t.Fatalf("PredictProba: %v", err)
	}
	_, cols := proba.Dims()
	if cols != 3 {
		t.Errorf("proba columns = %d, want 3", cols)
	}
}

func TestLogisticRegressionDeterministic(t *testing.T) {
	X, y := binaryData()
	a := NewLogisticRegression(WithMaxIter(200))
	b := NewLogisticRegression(WithMaxIter(200))
	if err := a.Fit(X, y); err != nil {
		t.Fatalf("Fit a: %v", err)
	}
	if err := b.Fit(X, y); err != nil {
		t.Fatalf("Fit b: %v", err)
	}
	for j := range a.Coef[0] {
		if a.Coef[0][j] != b.Coef[0][j] {
			t.Errorf("coef %d differs across identical fits: %v vs %v", j, a.Coef[0][j], b.Coef[0][j])
		}
	}
}

func TestLogisticRegressionFeatureImportances(t *testing.T) {
	// Only the first feature is informative; the second is constant.
	X := mat.NewDense(8, 2, []float64{
		0.0, 1.0,
		0.2, 1.0,
		0.1, 1.0,
		0.3, 1.0,
		3.0, 1.0,
		3.2, 1.0,
		2.9, 1.0,
		3.1, 1.0,
	})
	y := mat.NewDense(8, 1, []float64{0, 0, 0, 0, 1, 1, 1, 1})

	lr := NewLogisticRegression(WithMaxIter(500))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}
	imp, err := lr.FeatureImportances()
	if err != nil {
		t.Fatalf("FeatureImportances: %v", err)
	}
	if len(imp) != 2 {
		t.Fatalf("len(imp) = %d, want 2", len(imp))
	}
	if imp[0] <= imp[1] {
		t.Errorf("informative feature importance %v not above constant feature %v", imp[0], imp[1])
	}
}

func TestLogisticRegressionErrors(t *testing.T) {
	lr := NewLogisticRegression()
	X := mat.NewDense(2, 2, []float64{1, 2, 3, 4})

	var nfErr *errors.NotFittedError
	if _, err := lr.Predict(X); !errors.As(err, &nfErr) {
		t.Errorf("Predict before fit: err = %v, want NotFittedError", err)
	}

	yBad := mat.NewDense(3, 1, []float64{0, 1, 0})
	var dimErr *errors.DimensionError
	if err := lr.Fit(X, yBad); !errors.As(err, &dimErr) {
		t.Errorf("Fit with mismatched rows: err = %v, want DimensionError", err)
	}

	yOne := mat.NewDense(2, 1, []float64{1, 1})
	if err := lr.Fit(X, yOne); !errors.Is(err, errors.ErrInvalidDataset) {
		t.Errorf("Fit with one class: err = %v, want ErrInvalidDataset", err)
	}
}

func TestLogisticRegressionGobRoundTrip(t *testing.T) {
	X, y := binaryData()
	lr := NewLogisticRegression(WithMaxIter(300))
	if err := lr.Fit(X, y); err != nil {
		t.Fatalf("Fit: %v", err)
	}

	blob, err := model.Encode(lr)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	restored := &LogisticRegression{}
	if err := model.Decode(restored, blob); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want, _ := lr.Predict(X)
	got, err := restored.Predict(X)
	if err != nil {
		t.Fatalf("Predict after decode: %v", err)
	}
	for i := 0; i < 8; i++ {
		if got.At(i, 0) != want.At(i, 0) {
			t.Errorf("row %d: decoded model predicts %v, original %v", i, got.At(i, 0), want.At(i, 0))
		}
	}
}
