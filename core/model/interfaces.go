// Package model defines the estimator and transformer contracts that the
// training pipeline consumes. Estimators are black boxes to the pipeline:
// anything implementing Classifier can be registered, fitted under a
// compute backend, evaluated and persisted.
package model

import (
	"gonum.org/v1/gonum/mat"
)

// Fitter is the interface for trainable models.
type Fitter interface {
	// Fit trains the model on X (n_samples x n_features) and y
	// (n_samples x 1 integer class codes).
	Fit(X, y mat.Matrix) error
}

// Predictor is the interface for models that predict class codes.
type Predictor interface {
	// Predict returns an n_samples x 1 matrix of predicted class codes.
	Predict(X mat.Matrix) (mat.Matrix, error)
}

// Scorer is the interface for models that compute an accuracy-style score.
type Scorer interface {
	// Score returns mean accuracy of Predict(X) against y.
	Score(X, y mat.Matrix) (float64, error)
}

// ProbabilityPredictor is the interface for models exposing per-class
// probability estimates. The discrimination-curve report requires it.
type ProbabilityPredictor interface {
	// PredictProba returns an n_samples x n_classes matrix of class
	// probabilities, columns ordered like Classes().
	PredictProba(X mat.Matrix) (mat.Matrix, error)
}

// Classifier combines the interfaces the pipeline requires of a model.
type Classifier interface {
	Fitter
	Predictor
	Scorer
	ProbabilityPredictor

	// Classes returns the unique class codes seen during fitting, ascending.
	Classes() []int
}

// FeatureImporter is an optional capability: models that can rank their
// input features implement it. The feature-importance report is skipped
// for models that do not.
type FeatureImporter interface {
	// FeatureImportances returns one non-negative weight per input feature.
	FeatureImportances() ([]float64, error)
}

// Transformer is the interface for fitted data transforms (scalers,
// encoders over numeric matrices).
type Transformer interface {
	// Fit learns the transform parameters from X.
	Fit(X mat.Matrix) error

	// Transform applies the fitted transform to X.
	Transform(X mat.Matrix) (mat.Matrix, error)

	// FitTransform fits on X and returns the transformed X.
	FitTransform(X mat.Matrix) (mat.Matrix, error)
}

// ParameterGetter exposes a model's hyperparameters, mainly for artifact
// metadata.
type ParameterGetter interface {
	GetParams() map[string]interface{}
}
