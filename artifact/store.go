// Package artifact persists the products of a training run: the fitted
// model with its metrics and figures, the fitted transforms, and the
// held-out test set. A Store implementation decides where the bytes land;
// the filesystem store writes one bundle directory per run.
package artifact

import (
	"context"

	"github.com/tabfit/tabfit/frame"
)

// Standard artifact keys and labels.
const (
	// KeyModel is the fitted classifier's artifact key.
	KeyModel = "model"

	// KeyScaler is the fitted standardizer's artifact key.
	KeyScaler = "standard_scaler"

	// KeyEncoder is the fitted label encoder's artifact key.
	KeyEncoder = "label_encoder"

	// LabelClass tags the model artifact with its resolved class name.
	LabelClass = "class"

	// LabelName tags transform artifacts with their kind.
	LabelName = "label"

	// LabelDataType tags dataset artifacts with their role.
	LabelDataType = "data-type"

	// DataTypeHeldOut marks the untouched evaluation rows.
	DataTypeHeldOut = "held-out"
)

// Figure is a named PNG attached to a model artifact.
type Figure struct {
	Name string
	PNG  []byte
}

// ModelArtifact is the fitted classifier plus everything logged with it.
type ModelArtifact struct {
	Key     string
	Body    []byte // gob-encoded model
	Params  map[string]interface{}
	Metrics map[string]float64
	Figures []Figure
	Labels  map[string]string
}

// Artifact is a generic binary artifact (fitted transforms).
type Artifact struct {
	Key    string
	Body   []byte // gob-encoded object
	Labels map[string]string
}

// DatasetArtifact is a materialized table written in a tabular format.
type DatasetArtifact struct {
	Key     string
	Format  string // "parquet", "csv" or "json"
	Columns []frame.Column
	Rows    []map[string]any
	Labels  map[string]string
}

// Store persists run artifacts. Implementations return the location the
// artifact was written to.
type Store interface {
	// LogModel writes the model body, its metadata and its figures.
	LogModel(ctx context.Context, m *ModelArtifact) (string, error)

	// LogArtifact writes a generic binary artifact and its metadata.
	LogArtifact(ctx context.Context, a *Artifact) (string, error)

	// LogDataset writes a tabular artifact in the requested format.
	LogDataset(ctx context.Context, d *DatasetArtifact) (string, error)
}
