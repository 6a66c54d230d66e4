package errors

import (
	"strings"
	"testing"
)

func TestErrorKindsMatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
	}{
		{"data unavailable", NewDataUnavailableError("s3://bucket/x.csv", "no such key"), ErrDataUnavailable},
		{"invalid dataset", NewInvalidDatasetError("prepare", "missing label column"), ErrInvalidDataset},
		{"invalid configuration", NewInvalidConfigurationError("train_fraction", "must be in (0,1)", 1.5), ErrInvalidConfiguration},
		{"unresolvable class", NewUnresolvableClassError("linear.Nope", []string{"linear.LogisticRegression"}), ErrUnresolvableClass},
		{"training failed", NewTrainingFailedError("local", "linear.LogisticRegression", New("worker crash")), ErrTrainingFailed},
		{"evaluation failed", NewEvaluationFailedError("ROCAUC", New("no probabilities")), ErrEvaluationFailed},
		{"artifact write failed", NewArtifactWriteFailedError("model", "/runs/1/models", New("disk full")), ErrArtifactWriteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !Is(tt.err, tt.sentinel) {
				t.Errorf("Is(%v, sentinel) = false, want true", tt.err)
			}
			// Wrapping must preserve the kind.
			wrapped := Wrap(tt.err, "stage failed")
			if !Is(wrapped, tt.sentinel) {
				t.Errorf("wrapped error lost its kind: %v", wrapped)
			}
		})
	}
}

func TestErrorKindsAreDistinct(t *testing.T) {
	err := NewInvalidDatasetError("prepare", "nulls found")
	if Is(err, ErrInvalidConfiguration) {
		t.Error("InvalidDatasetError must not match ErrInvalidConfiguration")
	}
	if Is(err, ErrTrainingFailed) {
		t.Error("InvalidDatasetError must not match ErrTrainingFailed")
	}
}

func TestAsExtractsConcreteType(t *testing.T) {
	err := Wrap(NewUnresolvableClassError("tree.Missing", []string{"linear.LogisticRegression"}), "model builder")

	var ucErr *UnresolvableClassError
	if !As(err, &ucErr) {
		t.Fatal("As failed to extract *UnresolvableClassError")
	}
	if ucErr.Class != "tree.Missing" {
		t.Errorf("Class = %q, want %q", ucErr.Class, "tree.Missing")
	}
}

func TestNotFittedErrorMessage(t *testing.T) {
	err := NewNotFittedError("StandardScaler", "Transform")
	msg := err.Error()
	if !strings.Contains(msg, "StandardScaler") || !strings.Contains(msg, "Transform") {
		t.Errorf("unexpected message: %q", msg)
	}
}

func TestDimensionErrorAxisNames(t *testing.T) {
	rowErr := NewDimensionError("Split", 100, 99, 0)
	if !strings.Contains(rowErr.Error(), "rows") {
		t.Errorf("axis 0 should report rows: %q", rowErr.Error())
	}
	colErr := NewDimensionError("Transform", 4, 3, 1)
	if !strings.Contains(colErr.Error(), "features") {
		t.Errorf("axis 1 should report features: %q", colErr.Error())
	}
}

func TestRecoverConvertsPanic(t *testing.T) {
	fn := func() (err error) {
		defer Recover(&err, "test.fn")
		panic("boom")
	}

	err := fn()
	if err == nil {
		t.Fatal("expected error from recovered panic")
	}

	var panicErr *PanicError
	if !As(err, &panicErr) {
		t.Fatalf("expected *PanicError, got %T", err)
	}
	if panicErr.Operation != "test.fn" {
		t.Errorf("Operation = %q, want %q", panicErr.Operation, "test.fn")
	}
	if panicErr.StackTrace == "" {
		t.Error("expected a captured stack trace")
	}
}
