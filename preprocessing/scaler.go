// Package preprocessing provides the fitted transforms the pipeline
// persists alongside the model: the standard feature scaler and the label
// encoder. Both are immutable once fitted.
package preprocessing

import (
	"encoding/gob"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/tabfit/tabfit/core/model"
	"github.com/tabfit/tabfit/pkg/errors"
)

func init() {
	gob.Register(&StandardScaler{})
	gob.Register(&LabelEncoder{})
}

// StandardScaler standardizes features to zero mean and unit variance per
// column. It is fitted exclusively on the train partition and then applied
// to both partitions.
type StandardScaler struct {
	State *model.StateManager

	// Mean is the per-feature mean computed during Fit.
	Mean []float64

	// Scale is the per-feature standard deviation computed during Fit.
	Scale []float64

	// NFeatures is the number of features seen during Fit.
	NFeatures int

	// WithMean controls whether the mean is subtracted.
	WithMean bool

	// WithStd controls whether values are divided by the deviation.
	WithStd bool
}

// NewStandardScaler creates a scaler with the given centering and scaling
// behavior.
func NewStandardScaler(withMean, withStd bool) *StandardScaler {
	return &StandardScaler{
		State:    model.NewStateManager(),
		WithMean: withMean,
		WithStd:  withStd,
	}
}

// NewStandardScalerDefault creates a scaler that both centers and scales.
func NewStandardScalerDefault() *StandardScaler {
	return NewStandardScaler(true, true)
}

// Fit computes per-column mean and deviation from X.
func (s *StandardScaler) Fit(X mat.Matrix) error {
	r, c := X.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(errors.ErrEmptyData, "StandardScaler.Fit")
	}

	s.NFeatures = c
	s.Mean = make([]float64, c)
	s.Scale = make([]float64, c)

	for j := 0; j < c; j++ {
		if s.WithMean {
			sum := 0.0
			for i := 0; i < r; i++ {
				sum += X.At(i, j)
			}
			s.Mean[j] = sum / float64(r)
		}

		if s.WithStd {
			sumSquares := 0.0
			for i := 0; i < r; i++ {
				diff := X.At(i, j) - s.Mean[j]
				sumSquares += diff * diff
			}
			s.Scale[j] = math.Sqrt(sumSquares / float64(r))
			// Constant columns would divide by zero.
			if math.Abs(s.Scale[j]) < 1e-8 {
				s.Scale[j] = 1.0
			}
		} else {
			s.Scale[j] = 1.0
		}
	}

	s.State.SetDimensions(c, r)
	s.State.SetFitted()
	return nil
}

// Transform standardizes X with the fitted statistics.
func (s *StandardScaler) Transform(X mat.Matrix) (mat.Matrix, error) {
	if !s.State.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "Transform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.Transform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, (X.At(i, j)-s.Mean[j])/s.Scale[j])
		}
	}
	return result, nil
}

// FitTransform fits on X and returns the transformed X.
func (s *StandardScaler) FitTransform(X mat.Matrix) (mat.Matrix, error) {
	if err := s.Fit(X); err != nil {
		return nil, err
	}
	return s.Transform(X)
}

// InverseTransform maps standardized data back to the original scale.
func (s *StandardScaler) InverseTransform(X mat.Matrix) (mat.Matrix, error) {
	if !s.State.IsFitted() {
		return nil, errors.NewNotFittedError("StandardScaler", "InverseTransform")
	}

	r, c := X.Dims()
	if c != s.NFeatures {
		return nil, errors.NewDimensionError("StandardScaler.InverseTransform", s.NFeatures, c, 1)
	}

	result := mat.NewDense(r, c, nil)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			result.Set(i, j, X.At(i, j)*s.Scale[j]+s.Mean[j])
		}
	}
	return result, nil
}

// GetParams returns the scaler's parameters.
func (s *StandardScaler) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"with_mean": s.WithMean,
		"with_std":  s.WithStd,
	}
}

// String returns a short description of the scaler.
func (s *StandardScaler) String() string {
	if !s.State.IsFitted() {
		return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t)", s.WithMean, s.WithStd)
	}
	return fmt.Sprintf("StandardScaler(with_mean=%t, with_std=%t, n_features=%d)",
		s.WithMean, s.WithStd, s.NFeatures)
}
