package artifact

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"path"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/spf13/afero"

	"github.com/tabfit/tabfit/frame"
	"github.com/tabfit/tabfit/pkg/errors"
	"github.com/tabfit/tabfit/pkg/log"
)

// FSStore writes artifacts beneath <root>/<runID> on an afero filesystem.
// Binary bodies get a JSON metadata sidecar next to them; figures go under
// the plots subpath.
type FSStore struct {
	fs     afero.Fs
	root   string
	runID  string
	logger log.Logger

	modelsSubpath string
	dataSubpath   string
	plotsSubpath  string
}

// FSOption configures an FSStore.
type FSOption func(*FSStore)

// WithModelsSubpath overrides where model and transform artifacts are
// written within the bundle.
func WithModelsSubpath(p string) FSOption {
	return func(s *FSStore) { s.modelsSubpath = p }
}

// WithDataSubpath overrides where dataset artifacts are written within the
// bundle.
func WithDataSubpath(p string) FSOption {
	return func(s *FSStore) { s.dataSubpath = p }
}

// WithPlotsSubpath overrides where figures are written, relative to the
// models subpath.
func WithPlotsSubpath(p string) FSOption {
	return func(s *FSStore) { s.plotsSubpath = p }
}

// NewFSStore creates a store for one run. Each store gets a fresh bundle
// identifier, so repeated runs never overwrite each other.
func NewFSStore(fs afero.Fs, root string, logger log.Logger, opts ...FSOption) *FSStore {
	s := &FSStore{
		fs:            fs,
		root:          root,
		runID:         uuid.NewString(),
		logger:        logger.With(log.ComponentKey, "artifact"),
		modelsSubpath: "models",
		dataSubpath:   "data",
		plotsSubpath:  "plots",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RunID returns the bundle identifier artifacts are written under.
func (s *FSStore) RunID() string { return s.runID }

// BundleDir returns the run's bundle directory.
func (s *FSStore) BundleDir() string { return path.Join(s.root, s.runID) }

type metadata struct {
	Key       string                 `json:"key"`
	Labels    map[string]string      `json:"labels,omitempty"`
	Params    map[string]interface{} `json:"params,omitempty"`
	Metrics   map[string]float64     `json:"metrics,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

// LogModel writes the model body, metadata sidecar and figures.
func (s *FSStore) LogModel(ctx context.Context, m *ModelArtifact) (string, error) {
	dir := path.Join(s.BundleDir(), s.modelsSubpath)
	body := path.Join(dir, m.Key+".gob")
	if err := s.writeFile(ctx, m.Key, body, m.Body); err != nil {
		return "", err
	}
	meta := metadata{
		Key:       m.Key,
		Labels:    m.Labels,
		Params:    m.Params,
		Metrics:   m.Metrics,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.writeMetadata(ctx, m.Key, path.Join(dir, m.Key+".json"), meta); err != nil {
		return "", err
	}
	for _, fig := range m.Figures {
		figPath := path.Join(dir, s.plotsSubpath, fig.Name+".png")
		if err := s.writeFile(ctx, m.Key, figPath, fig.PNG); err != nil {
			return "", err
		}
	}
	s.logger.Info("model artifact written",
		"key", m.Key, "path", body, "figures", len(m.Figures))
	return body, nil
}

// LogArtifact writes a generic binary artifact and its metadata sidecar.
func (s *FSStore) LogArtifact(ctx context.Context, a *Artifact) (string, error) {
	dir := path.Join(s.BundleDir(), s.modelsSubpath)
	body := path.Join(dir, a.Key+".gob")
	if err := s.writeFile(ctx, a.Key, body, a.Body); err != nil {
		return "", err
	}
	meta := metadata{Key: a.Key, Labels: a.Labels, CreatedAt: time.Now().UTC()}
	if err := s.writeMetadata(ctx, a.Key, path.Join(dir, a.Key+".json"), meta); err != nil {
		return "", err
	}
	s.logger.Info("artifact written", "key", a.Key, "path", body)
	return body, nil
}

// LogDataset writes a tabular artifact in the requested format plus its
// metadata sidecar.
func (s *FSStore) LogDataset(ctx context.Context, d *DatasetArtifact) (string, error) {
	dir := path.Join(s.BundleDir(), s.dataSubpath)
	body := path.Join(dir, d.Key+"."+d.Format)

	var data []byte
	var err error
	switch d.Format {
	case "parquet":
		data, err = encodeParquet(d)
	case "csv":
		data, err = encodeCSV(d)
	case "json":
		data, err = json.MarshalIndent(d.Rows, "", "  ")
	default:
		return "", errors.NewInvalidConfigurationError("test_set_format", "unsupported format", d.Format)
	}
	if err != nil {
		return "", errors.NewArtifactWriteFailedError(d.Key, body, err)
	}

	if err := s.writeFile(ctx, d.Key, body, data); err != nil {
		return "", err
	}
	meta := metadata{Key: d.Key, Labels: d.Labels, CreatedAt: time.Now().UTC()}
	if err := s.writeMetadata(ctx, d.Key, path.Join(dir, d.Key+".json"), meta); err != nil {
		return "", err
	}
	s.logger.Info("dataset artifact written",
		"key", d.Key, "path", body, log.SamplesKey, len(d.Rows))
	return body, nil
}

func (s *FSStore) writeFile(ctx context.Context, key, p string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return errors.NewArtifactWriteFailedError(key, p, err)
	}
	if err := s.fs.MkdirAll(path.Dir(p), 0o755); err != nil {
		return errors.NewArtifactWriteFailedError(key, p, err)
	}
	if err := afero.WriteFile(s.fs, p, data, 0o644); err != nil {
		return errors.NewArtifactWriteFailedError(key, p, err)
	}
	return nil
}

func (s *FSStore) writeMetadata(ctx context.Context, key, p string, meta metadata) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return errors.NewArtifactWriteFailedError(key, p, err)
	}
	return s.writeFile(ctx, key, p, data)
}

// encodeParquet builds a flat schema from the artifact's columns and writes
// all rows in one row group.
func encodeParquet(d *DatasetArtifact) ([]byte, error) {
	group := parquet.Group{}
	for _, c := range d.Columns {
		if c.Kind == frame.Numeric {
			group[c.Name] = parquet.Leaf(parquet.DoubleType)
		} else {
			group[c.Name] = parquet.String()
		}
	}
	schema := parquet.NewSchema(d.Key, group)

	var buf bytes.Buffer
	w := parquet.NewGenericWriter[map[string]any](&buf, schema)
	if _, err := w.Write(d.Rows); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeCSV(d *DatasetArtifact) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		header[i] = c.Name
	}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	rec := make([]string, len(d.Columns))
	for _, row := range d.Rows {
		for i, c := range d.Columns {
			switch v := row[c.Name].(type) {
			case float64:
				rec[i] = strconv.FormatFloat(v, 'g', -1, 64)
			case string:
				rec[i] = v
			case nil:
				rec[i] = ""
			default:
				rec[i] = ""
			}
		}
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
