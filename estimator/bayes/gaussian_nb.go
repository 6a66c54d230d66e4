// Package bayes provides naive Bayes classifiers for the model registry.
package bayes

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
const ClassName = "bayes.GaussianNB"

func init() {
	gob.Register(&GaussianNB{})
	estimator.Register(
		ClassName,
		[]string{"var_smoothing"},
		[]string{"sample_weight"},
		func(ctor map[string]any) (model.Classifier, error) {
			smoothing, err := estimator.Float64Param(ctor, "var_smoothing", 1e-9)
			if err != nil {
				return nil, err
			}
			return NewGaussianNB(WithVarSmoothing(smoothing)), nil
		},
	)
}

// GaussianNB is a Gaussian naive Bayes classifier. Per class it stores the
// feature means and variances plus the class prior; prediction maximizes the
// log joint likelihood. Fields are exported for gob persistence.
type GaussianNB struct {
	State *model.StateManager

	VarSmoothing float64

	ClassList []int
	Prior     []float64   // class priors, ordered like ClassList
	Theta     [][]float64 // per-class feature means
	Sigma     [][]float64 // per-class feature variances, smoothed

	sampleWeight []float64
}

// Option configures a GaussianNB before fitting.
type Option func(*GaussianNB)

// WithVarSmoothing sets the portion of the largest feature variance added
// to all variances for numerical stability.
func WithVarSmoothing(s float64) Option {
	return func(nb *GaussianNB) { nb.VarSmoothing = s }
}

// NewGaussianNB creates an unfitted classifier with scikit-learn compatible
// defaults.
func NewGaussianNB(opts ...Option) *GaussianNB {
	nb := &GaussianNB{
		State:        model.NewStateManager(),
		VarSmoothing: 1e-9,
	}
	for _, opt := range opts {
		opt(nb)
	}
	return nb
}

// SetFitParams accepts fit-time parameters ("sample_weight").
func (nb *GaussianNB) SetFitParams(params map[string]any) error {
	w, err := estimator.FloatSliceParam(params, "sample_weight")
	if err != nil {
		return err
	}
	nb.sampleWeight = w
	return nil
}

// Fit estimates per-class feature means, variances and priors.
func (nb *GaussianNB) Fit(X, y mat.Matrix) error {
	nSamples, nFeatures := X.Dims()
	yRows, yCols := y.Dims()
	if yCols != 1 {
		return errors.NewDimensionError("GaussianNB.Fit", 1, yCols, 1)
	}
	if nSamples != yRows {
		return errors.NewDimensionError("GaussianNB.Fit", nSamples, yRows, 0)
	}
	if nb.sampleWeight != nil && len(nb.sampleWeight) != nSamples {
		return errors.NewDimensionError("GaussianNB.Fit", nSamples, len(nb.sampleWeight), 0)
	}

	classIndex := map[int]int{}
	for i := 0; i < nSamples; i++ {
		c := int(y.At(i, 0))
		if _, ok := classIndex[c]; !ok {
			classIndex[c] = 0
		}
	}
	nb.ClassList = make([]int, 0, len(classIndex))
	for c := range classIndex {
		nb.ClassList = append(nb.ClassList, c)
	}
	sort.Ints(nb.ClassList)
	for idx, c := range nb.ClassList {
		classIndex[c] = idx
	}
	nClasses := len(nb.ClassList)
	if nClasses < 2 {
		return errors.NewInvalidDatasetError("GaussianNB.Fit", "need at least two classes in y")
	}

	weightSum := make([]float64, nClasses)
	nb.Theta = alloc2d(nClasses, nFeatures)
	nb.Sigma = alloc2d(nClasses, nFeatures)
	nb.Prior = make([]float64, nClasses)

	total := 0.0
	for i := 0; i < nSamples; i++ {
		c := classIndex[int(y.At(i, 0))]
		w := nb.weightAt(i)
		weightSum[c] += w
		total += w
		for j := 0; j < nFeatures; j++ {
			nb.Theta[c][j] += w * X.At(i, j)
		}
	}
	for c := 0; c < nClasses; c++ {
		if weightSum[c] == 0 {
			return errors.NewInvalidDatasetError("GaussianNB.Fit", "class with zero total weight")
		}
		for j := 0; j < nFeatures; j++ {
			nb.Theta[c][j] /= weightSum[c]
		}
		nb.Prior[c] = weightSum[c] / total
	}

	maxVar := 0.0
	for i := 0; i < nSamples; i++ {
		c := classIndex[int(y.At(i, 0))]
		w := nb.weightAt(i)
		for j := 0; j < nFeatures; j++ {
			d := X.At(i, j) - nb.Theta[c][j]
			nb.Sigma[c][j] += w * d * d
		}
	}
	for c := 0; c < nClasses; c++ {
		for j := 0; j < nFeatures; j++ {
			nb.Sigma[c][j] /= weightSum[c]
			if nb.Sigma[c][j] > maxVar {
				maxVar = nb.Sigma[c][j]
			}
		}
	}
	epsilon := nb.VarSmoothing * maxVar
	if epsilon == 0 {
		epsilon = nb.VarSmoothing
	}
	for c := 0; c < nClasses; c++ {
		for j := 0; j < nFeatures; j++ {
			nb.Sigma[c][j] += epsilon
		}
	}

	nb.State.SetDimensions(nFeatures, nSamples)
	nb.State.SetFitted()
	return nil
}

func (nb *GaussianNB) weightAt(i int) float64 {
	if nb.sampleWeight == nil {
		return 1.0
	}
	return nb.sampleWeight[i]
}

// jointLogLikelihood returns log P(class) + log P(x | class) per class for
// sample i.
func (nb *GaussianNB) jointLogLikelihood(X mat.Matrix, i int) []float64 {
	nFeatures, _ := nb.State.GetDimensions()
	jll := make([]float64, len(nb.ClassList))
	for c := range nb.ClassList {
		ll := math.Log(nb.Prior[c])
		for j := 0; j < nFeatures; j++ {
			v := nb.Sigma[c][j]
			d := X.At(i, j) - nb.Theta[c][j]
			ll -= 0.5*math.Log(2*math.Pi*v) + d*d/(2*v)
		}
		jll[c] = ll
	}
	return jll
}

// Predict returns an n_samples x 1 matrix of predicted class codes.
func (nb *GaussianNB) Predict(X mat.Matrix) (mat.Matrix, error) {
	if err := nb.checkPredict(X, "Predict"); err != nil {
		return nil, err
	}
	nSamples, _ := X.Dims()
	out := mat.NewDense(nSamples, 1, nil)
	for i := 0; i < nSamples; i++ {
		jll := nb.jointLogLikelihood(X, i)
		best := 0
		for c := 1; c < len(jll); c++ {
			if jll[c] > jll[best] {
				best = c
			}
		}
		out.Set(i, 0, float64(nb.ClassList[best]))
	}
	return out, nil
}

// PredictProba normalizes the joint log likelihoods into class
// probabilities, columns ordered like Classes().
func (nb *GaussianNB) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	if err := nb.checkPredict(X, "PredictProba"); err != nil {
		return nil, err
	}
	nSamples, _ := X.Dims()
	nClasses := len(nb.ClassList)
	out := mat.NewDense(nSamples, nClasses, nil)
	for i := 0; i < nSamples; i++ {
		jll := nb.jointLogLikelihood(X, i)
		maxLL := jll[0]
		for _, ll := range jll[1:] {
			if ll > maxLL {
				maxLL = ll
			}
		}
		sum := 0.0
		for c := range jll {
			jll[c] = math.Exp(jll[c] - maxLL)
			sum += jll[c]
		}
		for c := range jll {
			out.Set(i, c, jll[c]/sum)
		}
	}
	return out, nil
}

// Score returns mean accuracy on X against y.
func (nb *GaussianNB) Score(X, y mat.Matrix) (float64, error) {
	pred, err := nb.Predict(X)
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
func (nb *GaussianNB) Classes() []int {
	return append([]int(nil), nb.ClassList...)
}

// GetParams returns the hyperparameters for artifact metadata.
func (nb *GaussianNB) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"var_smoothing": nb.VarSmoothing,
	}
}

func (nb *GaussianNB) checkPredict(X mat.Matrix, method string) error {
	if !nb.State.IsFitted() {
		return errors.NewNotFittedError("GaussianNB", method)
	}
	nFeatures, _ := nb.State.GetDimensions()
	_, cols := X.Dims()
	if cols != nFeatures {
		return errors.NewDimensionError("GaussianNB."+method, nFeatures, cols, 1)
	}
	return nil
}

func alloc2d(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}
