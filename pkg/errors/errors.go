// Package errors provides the typed error kinds used across the tabfit
// training pipeline, built on cockroachdb/errors for stack traces and
// wrapping, with zerolog object marshalling for structured log output.
//
// Every pipeline stage fails with exactly one of the kinds defined here;
// callers distinguish them with errors.Is against the Err* sentinels or
// errors.As against the concrete types.
package errors

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Sentinels for errors.Is matching
//
// ===========================================================================

var (
	// ErrDataUnavailable marks a dataset reference that cannot be resolved.
	ErrDataUnavailable = errors.New("data unavailable")

	// ErrInvalidDataset marks a dataset that violates a preparation
	// precondition (missing label column, residual nulls, no usable rows).
	ErrInvalidDataset = errors.New("invalid dataset")

	// ErrInvalidConfiguration marks malformed pipeline or model configuration.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrUnresolvableClass marks a model descriptor naming an unknown class.
	ErrUnresolvableClass = errors.New("unresolvable class")

	// ErrTrainingFailed marks a failure of the distributed fit.
	ErrTrainingFailed = errors.New("training failed")

	// ErrEvaluationFailed marks a load-bearing report that could not
	// produce metrics.
	ErrEvaluationFailed = errors.New("evaluation failed")

	// ErrArtifactWriteFailed marks a persistence failure for any artifact.
	ErrArtifactWriteFailed = errors.New("artifact write failed")

	// ErrEmptyData is returned when an operation receives no rows or columns.
	ErrEmptyData = errors.New("empty data")
)

// ===========================================================================
//
//	Structured error types
//
// ===========================================================================

// DataUnavailableError reports a dataset reference that could not be opened.
type DataUnavailableError struct {
	Ref    string
	Reason string
}

func (e *DataUnavailableError) Error() string {
	return fmt.Sprintf("tabfit: dataset %q unavailable: %s", e.Ref, e.Reason)
}

func (e *DataUnavailableError) Unwrap() error { return ErrDataUnavailable }

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *DataUnavailableError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("dataset_ref", e.Ref).
		Str("reason", e.Reason).
		Str("type", "DataUnavailableError")
}

// NewDataUnavailableError creates a DataUnavailableError with a stack trace.
func NewDataUnavailableError(ref, reason string) error {
	return errors.WithStack(&DataUnavailableError{Ref: ref, Reason: reason})
}

// InvalidDatasetError reports a dataset that fails a preparation precondition.
type InvalidDatasetError struct {
	Op     string
	Reason string
}

func (e *InvalidDatasetError) Error() string {
	return fmt.Sprintf("tabfit: %s: invalid dataset: %s", e.Op, e.Reason)
}

func (e *InvalidDatasetError) Unwrap() error { return ErrInvalidDataset }

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *InvalidDatasetError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("operation", e.Op).
		Str("reason", e.Reason).
		Str("type", "InvalidDatasetError")
}

// NewInvalidDatasetError creates an InvalidDatasetError with a stack trace.
func NewInvalidDatasetError(op, reason string) error {
	return errors.WithStack(&InvalidDatasetError{Op: op, Reason: reason})
}

// InvalidConfigurationError reports a malformed or out-of-range parameter.
type InvalidConfigurationError struct {
	Param  string
	Reason string
	Value  interface{}
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("tabfit: invalid configuration for %q: %s (got: %v)", e.Param, e.Reason, e.Value)
}

func (e *InvalidConfigurationError) Unwrap() error { return ErrInvalidConfiguration }

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *InvalidConfigurationError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("param", e.Param).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "InvalidConfigurationError")
}

// NewInvalidConfigurationError creates an InvalidConfigurationError with a
// stack trace.
func NewInvalidConfigurationError(param, reason string, value interface{}) error {
	return errors.WithStack(&InvalidConfigurationError{Param: param, Reason: reason, Value: value})
}

// UnresolvableClassError reports a model descriptor whose qualified class
// name is not present in the estimator registry.
type UnresolvableClassError struct {
	Class string
	Known []string
}

func (e *UnresolvableClassError) Error() string {
	return fmt.Sprintf("tabfit: cannot resolve estimator class %q (registered: %v)", e.Class, e.Known)
}

func (e *UnresolvableClassError) Unwrap() error { return ErrUnresolvableClass }

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *UnresolvableClassError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("class", e.Class).
		Strs("registered", e.Known).
		Str("type", "UnresolvableClassError")
}

// NewUnresolvableClassError creates an UnresolvableClassError with a stack
// trace.
func NewUnresolvableClassError(class string, known []string) error {
	return errors.WithStack(&UnresolvableClassError{Class: class, Known: known})
}

// TrainingFailedError reports a failed distributed fit. Backend identifies
// the compute backend the fit ran under.
type TrainingFailedError struct {
	Backend string
	Class   string
	Err     error
}

func (e *TrainingFailedError) Error() string {
	return fmt.Sprintf("tabfit: training %s on backend %q failed: %v", e.Class, e.Backend, e.Err)
}

func (e *TrainingFailedError) Unwrap() error { return ErrTrainingFailed }

// Cause returns the underlying fit error.
func (e *TrainingFailedError) Cause() error { return e.Err }

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *TrainingFailedError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("backend", e.Backend).
		Str("class", e.Class).
		AnErr("cause", e.Err).
		Str("type", "TrainingFailedError")
}

// NewTrainingFailedError creates a TrainingFailedError with a stack trace.
func NewTrainingFailedError(backend, class string, err error) error {
	return errors.WithStack(&TrainingFailedError{Backend: backend, Class: class, Err: err})
}

// EvaluationFailedError reports a load-bearing report kind that could not
// produce its scalar metrics.
type EvaluationFailedError struct {
	Report string
	Err    error
}

func (e *EvaluationFailedError) Error() string {
	return fmt.Sprintf("tabfit: evaluation report %q failed: %v", e.Report, e.Err)
}

func (e *EvaluationFailedError) Unwrap() error { return ErrEvaluationFailed }

// Cause returns the underlying report error.
func (e *EvaluationFailedError) Cause() error { return e.Err }

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *EvaluationFailedError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("report", e.Report).
		AnErr("cause", e.Err).
		Str("type", "EvaluationFailedError")
}

// NewEvaluationFailedError creates an EvaluationFailedError with a stack
// trace.
func NewEvaluationFailedError(report string, err error) error {
	return errors.WithStack(&EvaluationFailedError{Report: report, Err: err})
}

// ArtifactWriteFailedError reports a persistence failure for one artifact.
type ArtifactWriteFailedError struct {
	Key  string
	Path string
	Err  error
}

func (e *ArtifactWriteFailedError) Error() string {
	return fmt.Sprintf("tabfit: writing artifact %q to %q failed: %v", e.Key, e.Path, e.Err)
}

func (e *ArtifactWriteFailedError) Unwrap() error { return ErrArtifactWriteFailed }

// Cause returns the underlying write error.
func (e *ArtifactWriteFailedError) Cause() error { return e.Err }

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *ArtifactWriteFailedError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("artifact_key", e.Key).
		Str("path", e.Path).
		AnErr("cause", e.Err).
		Str("type", "ArtifactWriteFailedError")
}

// NewArtifactWriteFailedError creates an ArtifactWriteFailedError with a
// stack trace.
func NewArtifactWriteFailedError(key, path string, err error) error {
	return errors.WithStack(&ArtifactWriteFailedError{Key: key, Path: path, Err: err})
}

// NotFittedError is returned when Predict or Transform is called on an
// estimator or transformer that has not been fitted.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("tabfit: %s: not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace.
func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError is returned when input dimensions do not match the fitted
// shape. Axis is 0 for rows, 1 for columns/features.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("tabfit: %s: dimension mismatch on axis %d (%s). Expected %d, got %d",
		e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *DimensionError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace.
func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ===========================================================================
//
//	cockroachdb/errors passthroughs
//
// ===========================================================================

// Is reports whether err matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain matching target's type.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}
