// Package estimator resolves model descriptors into ready-to-fit
// classifiers. A descriptor names a registered classifier class and carries
// a flat parameter map; each registered class declares up front which keys
// are constructor parameters and which are fit parameters, so the split is
// validated before any model is built.
package estimator

import (
	"github.com/tabfit/tabfit/pkg/errors"
)

// Descriptor names a classifier class and its raw parameters. The zero
// Params map is valid and means defaults everywhere.
type Descriptor struct {
	Class  string         `json:"class" yaml:"class"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`
}

// Named builds a bare descriptor from a qualified class name, e.g.
// "linear.LogisticRegression".
func Named(class string) Descriptor {
	return Descriptor{Class: class}
}

// Validate checks the descriptor shape before resolution.
func (d Descriptor) Validate() error {
	if d.Class == "" {
		return errors.NewInvalidConfigurationError("model_class", "class name must not be empty", d.Class)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Parameter coercion helpers
// ---------------------------------------------------------------------------

// Float64Param coerces a descriptor parameter to float64. YAML and JSON
// decoders deliver numbers as int or float64 depending on the literal.
func Float64Param(params map[string]any, key string, def float64) (float64, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	default:
		return 0, errors.NewInvalidConfigurationError(key, "expected a number", v)
	}
}

// IntParam coerces a descriptor parameter to int.
func IntParam(params map[string]any, key string, def int) (int, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case float64:
		return int(x), nil
	default:
		return 0, errors.NewInvalidConfigurationError(key, "expected an integer", v)
	}
}

// BoolParam coerces a descriptor parameter to bool.
func BoolParam(params map[string]any, key string, def bool) (bool, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, errors.NewInvalidConfigurationError(key, "expected a boolean", v)
	}
	return b, nil
}

// StringParam coerces a descriptor parameter to string.
func StringParam(params map[string]any, key string, def string) (string, error) {
	v, ok := params[key]
	if !ok {
		return def, nil
	}
	s, ok := v.(string)
	if !ok {
		return "", errors.NewInvalidConfigurationError(key, "expected a string", v)
	}
	return s, nil
}

// FloatSliceParam coerces a descriptor parameter to []float64.
func FloatSliceParam(params map[string]any, key string) ([]float64, error) {
	v, ok := params[key]
	if !ok {
		return nil, nil
	}
	switch x := v.(type) {
	case []float64:
		return x, nil
	case []any:
		out := make([]float64, len(x))
		for i, e := range x {
			f, err := Float64Param(map[string]any{key: e}, key, 0)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	default:
		return nil, errors.NewInvalidConfigurationError(key, "expected a list of numbers", v)
	}
}
