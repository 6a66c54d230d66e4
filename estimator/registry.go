package estimator

import (
	"sort"
	"sync"

	"github.com/tabfit/tabfit/core/model"
	"github.com/tabfit/tabfit/pkg/errors"
)

// Factory builds a classifier from its constructor parameters. The map only
// contains keys the class registered as constructor keys.
type Factory func(ctor map[string]any) (model.Classifier, error)

// FitParamSetter is implemented by classifiers that accept fit-time
// parameters (sample weights and the like) in addition to X and y.
type FitParamSetter interface {
	SetFitParams(params map[string]any) error
}

type registration struct {
	ctorKeys map[string]struct{}
	fitKeys  map[string]struct{}
	factory  Factory
}

var (
	mu       sync.RWMutex
	registry = map[string]registration{}
)

// Register adds a classifier class to the registry. ctorKeys and fitKeys
// declare the only parameter names the class accepts; everything else in a
// descriptor is rejected at resolution time. Called from package init.
func Register(class string, ctorKeys, fitKeys []string, factory Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[class]; dup {
		panic("estimator: duplicate registration of " + class)
	}
	registry[class] = registration{
		ctorKeys: keySet(ctorKeys),
		fitKeys:  keySet(fitKeys),
		factory:  factory,
	}
}

// Known returns the sorted registered class names.
func Known() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Plan is a resolved descriptor: a constructed, unfitted classifier plus
// the parameters to apply at fit time.
type Plan struct {
	Class     string
	Model     model.Classifier
	FitParams map[string]any
}

// Resolve looks the descriptor's class up in the registry, partitions its
// parameters into constructor and fit groups, and constructs the model.
// Unknown classes and unknown parameter keys fail before anything is built.
func Resolve(d Descriptor) (*Plan, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	mu.RLock()
	reg, ok := registry[d.Class]
	mu.RUnlock()
	if !ok {
		return nil, errors.NewUnresolvableClassError(d.Class, Known())
	}

	ctor := map[string]any{}
	fit := map[string]any{}
	for key, val := range d.Params {
		switch {
		case contains(reg.ctorKeys, key):
			ctor[key] = val
		case contains(reg.fitKeys, key):
			fit[key] = val
		default:
			return nil, errors.NewInvalidConfigurationError(key, "unknown parameter for "+d.Class, val)
		}
	}

	m, err := reg.factory(ctor)
	if err != nil {
		return nil, err
	}
	return &Plan{Class: d.Class, Model: m, FitParams: fit}, nil
}

// ApplyFitParams hands the plan's fit parameters to the model when it
// supports them. A plan with fit parameters for a model that cannot take
// them is a configuration error.
func (p *Plan) ApplyFitParams() error {
	if len(p.FitParams) == 0 {
		return nil
	}
	setter, ok := p.Model.(FitParamSetter)
	if !ok {
		return errors.NewInvalidConfigurationError("params", p.Class+" does not accept fit parameters", p.FitParams)
	}
	return setter.SetFitParams(p.FitParams)
}

func keySet(keys []string) map[string]struct{} {
	s := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		s[k] = struct{}{}
	}
	return s
}

func contains(s map[string]struct{}, k string) bool {
	_, ok := s[k]
	return ok
}
