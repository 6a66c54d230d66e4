// Package frame implements the distributed tabular frame the pipeline
// prepares features on. A Frame pairs an eagerly known schema with a
// lazily computed table: transformations (SelectNumeric, Sample, Drop)
// stack deferred computations, and only the concrete checkpoints —
// HasMissing, NumRows, ToMatrix, StringColumn — force them, materializing
// partition-parallel on the compute backend the frame is bound to.
package frame

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"

	"gonum.org/v1/gonum/mat"

	"github.com/tabfit/tabfit/compute"
	"github.com/tabfit/tabfit/pkg/errors"
)

// Frame is an immutable, lazily evaluated table bound to a compute backend.
type Frame struct {
	backend compute.Backend
	cols    []Column
	fut     *Future[*Table]
}

// New creates a frame over a deferred table computation. The schema must
// describe the table the future resolves to.
func New(backend compute.Backend, cols []Column, fut *Future[*Table]) *Frame {
	return &Frame{backend: backend, cols: append([]Column(nil), cols...), fut: fut}
}

// FromTable creates an already materialized frame, mainly for tests.
func FromTable(backend compute.Backend, t *Table) *Frame {
	return New(backend, t.Columns(), Resolved(t))
}

// Backend returns the compute backend the frame materializes on.
func (f *Frame) Backend() compute.Backend { return f.backend }

// Columns returns the schema in order.
func (f *Frame) Columns() []Column { return f.cols }

// Names returns the ordered column names — the header retained for
// artifact reconstruction.
func (f *Frame) Names() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// HasColumn reports whether the schema contains name.
func (f *Frame) HasColumn(name string) bool {
	for _, c := range f.cols {
		if c.Name == name {
			return true
		}
	}
	return false
}

// SelectNumeric lazily restricts the frame to numeric columns plus the
// named label column (which is categorical by contract and survives the
// filter regardless of its kind). Other non-numeric columns are dropped
// silently. Returns the new frame and the number of dropped columns.
func (f *Frame) SelectNumeric(label string) (*Frame, int) {
	keep := func(c Column) bool { return c.Kind == Numeric || c.Name == label }

	var cols []Column
	dropped := 0
	for _, c := range f.cols {
		if keep(c) {
			cols = append(cols, c)
		} else {
			dropped++
		}
	}

	parent := f.fut
	fut := Defer(func(ctx context.Context) (*Table, error) {
		t, err := parent.Force(ctx)
		if err != nil {
			return nil, err
		}
		return t.selectColumns(keep), nil
	})
	return New(f.backend, cols, fut), dropped
}

// Drop lazily removes one column from the frame.
func (f *Frame) Drop(name string) *Frame {
	var cols []Column
	for _, c := range f.cols {
		if c.Name != name {
			cols = append(cols, c)
		}
	}

	parent := f.fut
	fut := Defer(func(ctx context.Context) (*Table, error) {
		t, err := parent.Force(ctx)
		if err != nil {
			return nil, err
		}
		return t.selectColumns(func(c Column) bool { return c.Name != name }), nil
	})
	return New(f.backend, cols, fut)
}

// Sample lazily selects a uniform random fraction of rows with a seeded
// permutation, so the same seed and input size select the same rows. A
// fraction of 1.0 keeps every row (only the index is reset). The fraction
// must be in (0, 1].
func (f *Frame) Sample(fraction float64, seed int64) (*Frame, error) {
	if fraction <= 0 || fraction > 1 {
		return nil, errors.NewInvalidConfigurationError("sample_fraction", "must be in (0, 1]", fraction)
	}

	parent := f.fut
	fut := Defer(func(ctx context.Context) (*Table, error) {
		t, err := parent.Force(ctx)
		if err != nil {
			return nil, err
		}
		if fraction == 1.0 {
			return t, nil
		}
		n := t.Rows()
		k := int(math.Round(fraction * float64(n)))
		idx := rand.New(rand.NewSource(seed)).Perm(n)[:k]
		return t.takeRows(idx), nil
	})
	return New(f.backend, f.cols, fut), nil
}

// NumRows forces the frame and returns its row count.
func (f *Frame) NumRows(ctx context.Context) (int, error) {
	t, err := f.fut.Force(ctx)
	if err != nil {
		return 0, err
	}
	return t.Rows(), nil
}

// HasMissing forces the frame and reports whether any cell is missing.
// The scan fans out over row partitions on the backend.
func (f *Frame) HasMissing(ctx context.Context) (bool, error) {
	t, err := f.fut.Force(ctx)
	if err != nil {
		return false, err
	}

	var found atomic.Bool
	err = f.backend.Map(ctx, partitions(t.Rows()), func(part int) error {
		if found.Load() {
			return nil
		}
		start, end := partitionBounds(t.Rows(), part)
		if t.missingInRows(start, end) {
			found.Store(true)
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	return found.Load(), nil
}

// StringColumn forces the frame and returns the named column's cells as
// strings (numeric label columns are formatted compactly).
func (f *Frame) StringColumn(ctx context.Context, name string) ([]string, error) {
	t, err := f.fut.Force(ctx)
	if err != nil {
		return nil, err
	}
	vals, ok := t.StringValues(name)
	if !ok {
		return nil, errors.NewInvalidDatasetError("StringColumn", "column "+name+" not found")
	}
	return vals, nil
}

// ToMatrix forces the frame and materializes its numeric columns as a
// dense row-major matrix in schema order, filling partition-parallel on
// the backend. Non-numeric columns must have been dropped first.
func (f *Frame) ToMatrix(ctx context.Context) (*mat.Dense, error) {
	t, err := f.fut.Force(ctx)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, c := range f.cols {
		if c.Kind != Numeric {
			return nil, errors.NewInvalidDatasetError("ToMatrix", "non-numeric column "+c.Name+" in feature frame")
		}
		names = append(names, c.Name)
	}
	rows, colCount := t.Rows(), len(names)
	if rows == 0 || colCount == 0 {
		return nil, errors.NewInvalidDatasetError("ToMatrix", "empty frame after filtering")
	}

	out := mat.NewDense(rows, colCount, nil)
	err = f.backend.Map(ctx, partitions(rows), func(part int) error {
		start, end := partitionBounds(rows, part)
		for j, name := range names {
			col := t.NumericColumn(name)
			for i := start; i < end; i++ {
				out.Set(i, j, col[i])
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
