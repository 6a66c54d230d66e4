// Package linear provides linear classifiers for the model registry.
package linear

import (
	"encoding/gob"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/tabfit/tabfit/core/model"
	"github.com/tabfit/tabfit/estimator"
	"github.com/tabfit/tabfit/pkg/errors"
)

// ClassName is the qualified name the registry resolves to this model.
const ClassName = "linear.LogisticRegression"

func init() {
	gob.Register(&LogisticRegression{})
	estimator.Register(
		ClassName,
		[]string{"penalty", "C", "fit_intercept", "max_iter", "tol"},
		[]string{"sample_weight"},
		func(ctor map[string]any) (model.Classifier, error) {
			opts, err := optionsFromParams(ctor)
			if err != nil {
				return nil, err
			}
			return NewLogisticRegression(opts...), nil
		},
	)
}

// LogisticRegression is a gradient-descent logistic classifier. Binary
// problems train a single weight row; multiclass problems train one row per
// class one-vs-rest. Fields are exported for gob persistence.
type LogisticRegression struct {
	State *model.StateManager

	// Hyperparameters
	Penalty      string  // "l2" or "none"
	C            float64 // inverse regularization strength
	FitIntercept bool
	MaxIter      int
	Tol          float64

	// Fitted parameters
	Coef      [][]float64 // 1 x n_features for binary, n_classes x n_features otherwise
	Intercept []float64
	ClassList []int
	NIter     []int

	sampleWeight []float64
}

// Option configures a LogisticRegression before fitting.
type Option func(*LogisticRegression)

// WithPenalty sets the regularization type ("l2" or "none").
func WithPenalty(penalty string) Option {
	return func(lr *LogisticRegression) { lr.Penalty = penalty }
}

// WithC sets the inverse regularization strength.
func WithC(c float64) Option {
	return func(lr *LogisticRegression) { lr.C = c }
}

// WithFitIntercept sets whether an intercept term is trained.
func WithFitIntercept(fit bool) Option {
	return func(lr *LogisticRegression) { lr.FitIntercept = fit }
}

// WithMaxIter sets the iteration budget per weight row.
func WithMaxIter(maxIter int) Option {
	return func(lr *LogisticRegression) { lr.MaxIter = maxIter }
}

// WithTol sets the gradient-norm stopping tolerance.
func WithTol(tol float64) Option {
	return func(lr *LogisticRegression) { lr.Tol = tol }
}

// NewLogisticRegression creates an unfitted classifier with scikit-learn
// compatible defaults.
func NewLogisticRegression(opts ...Option) *LogisticRegression {
	lr := &LogisticRegression{
		State:        model.NewStateManager(),
		Penalty:      "l2",
		C:            1.0,
		FitIntercept: true,
		MaxIter:      100,
		Tol:          1e-4,
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

func optionsFromParams(params map[string]any) ([]Option, error) {
	penalty, err := estimator.StringParam(params, "penalty", "l2")
	if err != nil {
		return nil, err
	}
	if penalty != "l2" && penalty != "none" {
		return nil, errors.NewInvalidConfigurationError("penalty", `must be "l2" or "none"`, penalty)
	}
	c, err := estimator.Float64Param(params, "C", 1.0)
	if err != nil {
		return nil, err
	}
	intercept, err := estimator.BoolParam(params, "fit_intercept", true)
	if err != nil {
		return nil, err
	}
	maxIter, err := estimator.IntParam(params, "max_iter", 100)
	if err != nil {
		return nil, err
	}
	tol, err := estimator.Float64Param(params, "tol", 1e-4)
	if err != nil {
		return nil, err
	}
	return []Option{
		WithPenalty(penalty),
		WithC(c),
		WithFitIntercept(intercept),
		WithMaxIter(maxIter),
		WithTol(tol),
	}, nil
}

// SetFitParams accepts fit-time parameters ("sample_weight").
func (lr *LogisticRegression) SetFitParams(params map[string]any) error {
	w, err := estimator.FloatSliceParam(params, "sample_weight")
	if err != nil {
		return err
	}
	lr.sampleWeight = w
	return nil
}

// Fit trains the classifier. Weights start at zero, so fitting is
// deterministic for a given input.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return errors.NewDimensionError("LogisticRegression.Fit", 1, yCols, 1)
	}
	if nSamples != yRows {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, yRows, 0)
	}
	if lr.sampleWeight != nil && len(lr.sampleWeight) != nSamples {
		return errors.NewDimensionError("LogisticRegression.Fit", nSamples, len(lr.sampleWeight), 0)
	}

	lr.ClassList = extractClasses(y)
	if len(lr.ClassList) < 2 {
		return errors.NewInvalidDatasetError("LogisticRegression.Fit", "need at least two classes in y")
	}

	rows := len(lr.ClassList)
	if rows == 2 {
		rows = 1
	}
	lr.Coef = make([][]float64, rows)
	for i := range lr.Coef {
		lr.Coef[i] = make([]float64, nFeatures)
	}
	lr.Intercept = make([]float64, rows)
	lr.NIter = make([]int, rows)

	if len(lr.ClassList) == 2 {
		// The single weight row scores membership of the higher class.
		lr.fitRow(X, y, 0, lr.ClassList[1])
	} else {
		for idx, class := range lr.ClassList {
			lr.fitRow(X, y, idx, class)
		}
	}

	lr.State.SetDimensions(nFeatures, nSamples)
	lr.State.SetFitted()
	return nil
}

// fitRow runs gradient descent for one weight row against the one-vs-rest
// target class.
func (lr *LogisticRegression) fitRow(X, y mat.Matrix, row, target int) {
	nSamples, nFeatures := X.Dims()
	weights := lr.Coef[row]
	intercept := &lr.Intercept[row]

	yBin := make([]float64, nSamples)
	totalWeight := 0.0
	for i := 0; i < nSamples; i++ {
		if int(y.At(i, 0)) == target {
			yBin[i] = 1.0
		}
		totalWeight += lr.weightAt(i)
	}

	const baseLearningRate = 1.0

	grad := make([]float64, nFeatures)
	for iter := 0; iter < lr.MaxIter; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradIntercept := 0.0

		for i := 0; i < nSamples; i++ {
			z := *intercept
			for j := 0; j < nFeatures; j++ {
				z += X.At(i, j) * weights[j]
			}
			residual := lr.weightAt(i) * (sigmoid(z) - yBin[i])
			gradIntercept += residual
			for j := 0; j < nFeatures; j++ {
				grad[j] += residual * X.At(i, j)
			}
		}
		for j := range grad {
			grad[j] /= totalWeight
		}
		gradIntercept /= totalWeight

		if lr.Penalty == "l2" {
			lambda := 1.0 / lr.C
			for j := range weights {
				grad[j] += lambda * weights[j] / float64(nSamples)
			}
		}

		learningRate := baseLearningRate / (1.0 + 0.1*float64(iter))
		for j := range weights {
			weights[j] -= learningRate * grad[j]
		}
		if lr.FitIntercept {
			*intercept -= learningRate * gradIntercept
		}
		lr.NIter[row] = iter + 1

		maxGrad := math.Abs(gradIntercept)
		for _, g := range grad {
			if math.Abs(g) > maxGrad {
				maxGrad = math.Abs(g)
			}
		}
		if maxGrad < lr.Tol {
			break
		}
	}
}

func (lr *LogisticRegression) weightAt(i int) float64 {
	if lr.sampleWeight == nil {
		return 1.0
	}
	return lr.sampleWeight[i]
}

// decisionFunction returns the raw per-row scores for one sample.
func (lr *LogisticRegression) decisionFunction(X mat.Matrix, i int) []float64 {
	nFeatures, _ := lr.State.GetDimensions()
	scores := make([]float64, len(lr.Coef))
	for r := range lr.Coef {
		z := lr.Intercept[r]
		for j := 0; j < nFeatures; j++ {
			z += X.At(i, j) * lr.Coef[r][j]
		}
		scores[r] = z
	}
	return scores
}

// Predict returns an n_samples x 1 matrix of predicted class codes.
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.checkPredict(X, "Predict"); err != nil {
		return nil, err
	}
	nSamples, _ := X.Dims()
	out := mat.NewDense(nSamples, 1, nil)

	for i := 0; i < nSamples; i++ {
		scores := lr.decisionFunction(X, i)
		if len(lr.ClassList) == 2 {
			if sigmoid(scores[0]) >= 0.5 {
				out.Set(i, 0, float64(lr.ClassList[1]))
			} else {
				out.Set(i, 0, float64(lr.ClassList[0]))
			}
			continue
		}
		best := 0
		for r := 1; r < len(scores); r++ {
			if scores[r] > scores[best] {
				best = r
			}
		}
		out.Set(i, 0, float64(lr.ClassList[best]))
	}
	return out, nil
}

// PredictProba returns per-class probabilities, columns ordered like
// Classes(). Binary uses the sigmoid, multiclass a softmax over the
// one-vs-rest scores.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := lr.checkPredict(X, "PredictProba"); err != nil {
		return nil, err
	}
	nSamples, _ := X.Dims()
	nClasses := len(lr.ClassList)
	out := mat.NewDense(nSamples, nClasses, nil)

	for i := 0; i < nSamples; i++ {
		scores := lr.decisionFunction(X, i)
		if nClasses == 2 {
			p := sigmoid(scores[0])
			out.Set(i, 0, 1.0-p)
			out.Set(i, 1, p)
			continue
		}
		maxScore := scores[0]
		for _, s := range scores[1:] {
			if s > maxScore {
				maxScore = s
			}
		}
		sum := 0.0
		for r, s := range scores {
			scores[r] = math.Exp(s - maxScore)
			sum += scores[r]
		}
		for r := range scores {
			out.Set(i, r, scores[r]/sum)
		}
	}
	return out, nil
}

// Score returns mean accuracy on X against y.
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	pred, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	nSamples, _ := X.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if pred.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// Classes returns the fitted class codes, ascending.
func (lr *LogisticRegression) Classes() []int {
	return append([]int(nil), lr.ClassList...)
}

// FeatureImportances ranks features by mean absolute coefficient across
// weight rows.
func (lr *LogisticRegression) FeatureImportances() ([]float64, error) {
	if !lr.State.IsFitted() {
		return nil, errors.NewNotFittedError("LogisticRegression", "FeatureImportances")
	}
	nFeatures, _ := lr.State.GetDimensions()
	imp := make([]float64, nFeatures)
	for _, row := range lr.Coef {
		for j, w := range row {
			imp[j] += math.Abs(w)
		}
	}
	for j := range imp {
		imp[j] /= float64(len(lr.Coef))
	}
	return imp, nil
}

// GetParams returns the hyperparameters for artifact metadata.
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       lr.Penalty,
		"C":             lr.C,
		"fit_intercept": lr.FitIntercept,
		"max_iter":      lr.MaxIter,
		"tol":           lr.Tol,
	}
}

func (lr *LogisticRegression) checkPredict(X mat.Matrix, method string) error {
	if !lr.State.IsFitted() {
		return errors.NewNotFittedError("LogisticRegression", method)
	}
	nFeatures, _ := lr.State.GetDimensions()
	_, cols := X.Dims()
	if cols != nFeatures {
		return errors.NewDimensionError("LogisticRegression."+method, nFeatures, cols, 1)
	}
	return nil
}

func extractClasses(y mat.Matrix) []int {
	rows, _ := y.Dims()
	seen := map[int]bool{}
	for i := 0; i < rows; i++ {
		seen[int(y.At(i, 0))] = true
	}
	classes := make([]int, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Ints(classes)
	return classes
}

func sigmoid(z float64) float64 {
	return 1.0 / (1.0 + math.Exp(-z))
}
