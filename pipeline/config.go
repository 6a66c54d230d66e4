package pipeline

import (
	"github.com/tabfit/tabfit/artifact"
	"github.com/tabfit/tabfit/compute"
	"github.com/tabfit/tabfit/estimator"
	"github.com/tabfit/tabfit/pkg/errors"
	"github.com/tabfit/tabfit/pkg/log"
)

// Config describes one training run.
type Config struct {
	// Dataset is the reference the loader resolves (.csv or .parquet path).
	Dataset string

	// ModelDescriptor names the classifier class and its parameters.
	ModelDescriptor estimator.Descriptor

	// LabelColumn is the categorical target column.
	LabelColumn string

	// TrainFraction is the share of rows used for fitting; the rest is the
	// held-out set. Strictly between 0 and 1.
	TrainFraction float64

	// SampleFraction optionally downsamples the prepared rows before the
	// split. In (0, 1], 1 keeps everything.
	SampleFraction float64

	// RandomSeed drives sampling and the train/test split. Nil means the
	// default seed; an explicit zero is honored.
	RandomSeed *int64

	// TestSetKey and TestSetFormat control the held-out artifact.
	TestSetKey    string
	TestSetFormat string

	// Backend runs the fit and frame materialization. Defaults to the
	// local backend sized to the machine.
	Backend compute.Backend

	// Store receives the run's artifacts. Required.
	Store artifact.Store

	// Logs provides loggers for the run. Defaults to a stderr zerolog
	// provider.
	Logs log.LoggerProvider
}

// Default values for optional Config fields.
const (
	DefaultLabelColumn    = "label"
	DefaultTrainFraction  = 0.75
	DefaultSampleFraction = 1.0
	DefaultRandomSeed     = 42
	DefaultTestSetKey     = "test_set"
	DefaultTestSetFormat  = "parquet"
)

// withDefaults fills unset fields in place.
func (c *Config) withDefaults() {
	if c.LabelColumn == "" {
		c.LabelColumn = DefaultLabelColumn
	}
	if c.TrainFraction == 0 {
		c.TrainFraction = DefaultTrainFraction
	}
	if c.SampleFraction == 0 {
		c.SampleFraction = DefaultSampleFraction
	}
	if c.RandomSeed == nil {
		seed := int64(DefaultRandomSeed)
		c.RandomSeed = &seed
	}
	if c.TestSetKey == "" {
		c.TestSetKey = DefaultTestSetKey
	}
	if c.TestSetFormat == "" {
		c.TestSetFormat = DefaultTestSetFormat
	}
	if c.Backend == nil {
		c.Backend = compute.NewLocal(0)
	}
	if c.Logs == nil {
		c.Logs = log.NewZerologProvider(log.LevelInfo)
	}
}

// Validate rejects configurations the pipeline cannot run.
func (c *Config) Validate() error {
	if c.Dataset == "" {
		return errors.NewInvalidConfigurationError("dataset", "dataset reference is required", c.Dataset)
	}
	if c.Store == nil {
		return errors.NewInvalidConfigurationError("store", "artifact store is required", nil)
	}
	if err := c.ModelDescriptor.Validate(); err != nil {
		return err
	}
	if c.TrainFraction <= 0 || c.TrainFraction >= 1 {
		return errors.NewInvalidConfigurationError("train_fraction", "must be in (0, 1)", c.TrainFraction)
	}
	if c.SampleFraction <= 0 || c.SampleFraction > 1 {
		return errors.NewInvalidConfigurationError("sample_fraction", "must be in (0, 1]", c.SampleFraction)
	}
	switch c.TestSetFormat {
	case "parquet", "csv", "json":
	default:
		return errors.NewInvalidConfigurationError("test_set_format", `must be "parquet", "csv" or "json"`, c.TestSetFormat)
	}
	return nil
}
