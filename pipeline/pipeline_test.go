package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/tabfit/tabfit/artifact"
	"github.com/tabfit/tabfit/estimator"
	"github.com/tabfit/tabfit/estimator/bayes"
	"github.com/tabfit/tabfit/estimator/linear"
	"github.com/tabfit/tabfit/pkg/errors"
	"github.com/tabfit/tabfit/pkg/log"
)

// writeDataset writes a separable two-class CSV: 50 low-valued cat rows and
// 50 high-valued dog rows.
func writeDataset(t *testing.T) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("f1,f2,label\n")
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "%.2f,%.2f,cat\n", float64(i)*0.01, float64(i)*0.02)
	}
	for i := 0; i < 50; i++ {
		fmt.Fprintf(&b, "%.2f,%.2f,dog\n", 5.0+float64(i)*0.01, 5.0+float64(i)*0.02)
	}
	path := filepath.Join(t.TempDir(), "train.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	return path
}

func testConfig(t *testing.T, ref string) (Config, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	provider, _ := log.NewTestLoggerProvider(log.LevelDebug)
	store := artifact.NewFSStore(fs, "artifacts", provider.GetLogger())
	return Config{
		Dataset:         ref,
		ModelDescriptor: estimator.Named(linear.ClassName),
		TestSetFormat:   "csv",
		Store:           store,
		Logs:            provider,
	}, fs
}

func countFiles(t *testing.T, fs afero.Fs) int {
	t.Helper()
	n := 0
	err := afero.Walk(fs, "artifacts", func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info != nil && !info.IsDir() {
			n++
		}
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	return n
}

func TestTrainEndToEnd(t *testing.T) {
	cfg, fs := testConfig(t, writeDataset(t))

	res, err := Train(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	if res.RunID == "" {
		t.Error("empty run id")
	}
	if res.Class != linear.ClassName {
		t.Errorf("res.Class = %q, want %q", res.Class, linear.ClassName)
	}

	for _, p := range []string{res.ModelPath, res.ScalerPath, res.EncoderPath, res.TestSetPath} {
		if p == "" {
			t.Fatal("missing artifact path in result")
		}
		if ok, _ := afero.Exists(fs, p); !ok {
			t.Errorf("expected artifact %s to exist", p)
		}
	}

	// 100 rows at the default 0.75 train fraction leave 25 held out.
	raw, err := afero.ReadFile(fs, res.TestSetPath)
	if err != nil {
		t.Fatalf("read test set: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if got := len(lines) - 1; got != 25 {
		t.Errorf("held-out rows = %d, want 25", got)
	}
	if lines[0] != "f1,f2,label" {
		t.Errorf("held-out header = %q, want f1,f2,label", lines[0])
	}

	for _, key := range []string{"accuracy", "micro", "macro", "precision-cat", "recall-dog"} {
		if _, ok := res.Metrics[key]; !ok {
			t.Errorf("metric %q missing from result", key)
		}
	}
	if acc := res.Metrics["accuracy"]; acc < 0.9 {
		t.Errorf("accuracy = %v, want >= 0.9 on separable data", acc)
	}
}

func TestTrainGaussianNB(t *testing.T) {
	cfg, _ := testConfig(t, writeDataset(t))
	cfg.ModelDescriptor = estimator.Named(bayes.ClassName)

	res, err := Train(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if res.Metrics["accuracy"] < 0.9 {
		t.Errorf("accuracy = %v, want >= 0.9", res.Metrics["accuracy"])
	}
}

func TestTrainMissingLabelColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nolabel.csv")
	body := "f1,f2\n1,2\n3,4\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	cfg, fs := testConfig(t, path)

	_, err := Train(context.Background(), cfg)
	if !errors.Is(err, errors.ErrInvalidDataset) {
		t.Errorf("err = %v, want ErrInvalidDataset", err)
	}
	if n := countFiles(t, fs); n != 0 {
		t.Errorf("failed run left %d artifact files behind", n)
	}
}

func TestTrainNullCell(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nulls.csv")
	body := "f1,f2,label\n1,2,cat\n3,,dog\n5,6,cat\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	cfg, fs := testConfig(t, path)

	_, err := Train(context.Background(), cfg)
	if !errors.Is(err, errors.ErrInvalidDataset) {
		t.Errorf("err = %v, want ErrInvalidDataset", err)
	}
	if n := countFiles(t, fs); n != 0 {
		t.Errorf("failed run left %d artifact files behind", n)
	}
}

func TestTrainUnknownModelClass(t *testing.T) {
	cfg, fs := testConfig(t, writeDataset(t))
	cfg.ModelDescriptor = estimator.Named("tree.DecisionTreeClassifier")

	_, err := Train(context.Background(), cfg)
	if !errors.Is(err, errors.ErrUnresolvableClass) {
		t.Errorf("err = %v, want ErrUnresolvableClass", err)
	}
	if n := countFiles(t, fs); n != 0 {
		t.Errorf("failed run left %d artifact files behind", n)
	}
}

func TestTrainConfigValidation(t *testing.T) {
	base := func() Config {
		cfg, _ := testConfig(t, "train.csv")
		return cfg
	}
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty dataset", func(c *Config) { c.Dataset = "" }},
		{"nil store", func(c *Config) { c.Store = nil }},
		{"train fraction too high", func(c *Config) { c.TrainFraction = 1.5 }},
		{"negative sample fraction", func(c *Config) { c.SampleFraction = -0.5 }},
		{"bad test set format", func(c *Config) { c.TestSetFormat = "xlsx" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			_, err := Train(context.Background(), cfg)
			if !errors.Is(err, errors.ErrInvalidConfiguration) {
				t.Errorf("err = %v, want ErrInvalidConfiguration", err)
			}
		})
	}
}

func TestTrainSampleFraction(t *testing.T) {
	cfg, fs := testConfig(t, writeDataset(t))
	cfg.SampleFraction = 0.5

	res, err := Train(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	raw, err := afero.ReadFile(fs, res.TestSetPath)
	if err != nil {
		t.Fatalf("read test set: %v", err)
	}
	// 50 sampled rows at 0.75 train fraction leave 12 held out.
	lines := strings.Split(strings.TrimSpace(string(raw)), "\n")
	if got := len(lines) - 1; got != 12 {
		t.Errorf("held-out rows = %d, want 12", got)
	}
}

func TestTrainIdempotent(t *testing.T) {
	ref := writeDataset(t)

	cfgA, fsA := testConfig(t, ref)
	resA, err := Train(context.Background(), cfgA)
	if err != nil {
		t.Fatalf("Train a: %v", err)
	}
	cfgB, fsB := testConfig(t, ref)
	resB, err := Train(context.Background(), cfgB)
	if err != nil {
		t.Fatalf("Train b: %v", err)
	}

	if resA.RunID == resB.RunID {
		t.Error("two runs share a run id")
	}

	testA, err := afero.ReadFile(fsA, resA.TestSetPath)
	if err != nil {
		t.Fatalf("read test set a: %v", err)
	}
	testB, err := afero.ReadFile(fsB, resB.TestSetPath)
	if err != nil {
		t.Fatalf("read test set b: %v", err)
	}
	if string(testA) != string(testB) {
		t.Error("same seed produced different held-out sets")
	}

	for key, va := range resA.Metrics {
		if vb, ok := resB.Metrics[key]; !ok || va != vb {
			t.Errorf("metric %q differs across identical runs: %v vs %v", key, va, vb)
		}
	}
}

func TestTrainStructuredDescriptor(t *testing.T) {
	cfg, _ := testConfig(t, writeDataset(t))
	cfg.ModelDescriptor = estimator.Descriptor{
		Class: linear.ClassName,
		Params: map[string]any{
			"max_iter": 300,
			"penalty":  "l2",
		},
	}

	if _, err := Train(context.Background(), cfg); err != nil {
		t.Fatalf("Train: %v", err)
	}
}

func TestTrainUnknownDescriptorParam(t *testing.T) {
	cfg, fs := testConfig(t, writeDataset(t))
	cfg.ModelDescriptor = estimator.Descriptor{
		Class:  linear.ClassName,
		Params: map[string]any{"n_estimators": 10},
	}

	_, err := Train(context.Background(), cfg)
	if !errors.Is(err, errors.ErrInvalidConfiguration) {
		t.Errorf("err = %v, want ErrInvalidConfiguration", err)
	}
	if n := countFiles(t, fs); n != 0 {
		t.Errorf("failed run left %d artifact files behind", n)
	}
}

func TestTrainEmptyDataset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.csv")
	if err := os.WriteFile(path, []byte("f1,f2,label\n"), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	cfg, fs := testConfig(t, path)

	_, err := Train(context.Background(), cfg)
	if !errors.Is(err, errors.ErrInvalidDataset) {
		t.Errorf("err = %v, want ErrInvalidDataset", err)
	}
	if n := countFiles(t, fs); n != 0 {
		t.Errorf("failed run left %d artifact files behind", n)
	}
}

func TestTrainSampleFractionRoundsToZeroRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiny.csv")
	body := "f1,f2,label\n1,2,cat\n3,4,dog\n5,6,cat\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	cfg, fs := testConfig(t, path)
	cfg.SampleFraction = 0.1

	_, err := Train(context.Background(), cfg)
	if !errors.Is(err, errors.ErrInvalidDataset) {
		t.Errorf("err = %v, want ErrInvalidDataset", err)
	}
	if n := countFiles(t, fs); n != 0 {
		t.Errorf("failed run left %d artifact files behind", n)
	}
}

func TestTrainTransformSidecarLabels(t *testing.T) {
	cfg, fs := testConfig(t, writeDataset(t))

	res, err := Train(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}

	tests := []struct {
		path string
		want string
	}{
		{res.ScalerPath, artifact.KeyScaler},
		{res.EncoderPath, artifact.KeyEncoder},
	}
	for _, tt := range tests {
		sidecar := strings.TrimSuffix(tt.path, ".gob") + ".json"
		raw, err := afero.ReadFile(fs, sidecar)
		if err != nil {
			t.Fatalf("read sidecar %s: %v", sidecar, err)
		}
		var meta struct {
			Labels map[string]string `json:"labels"`
		}
		if err := json.Unmarshal(raw, &meta); err != nil {
			t.Fatalf("unmarshal sidecar %s: %v", sidecar, err)
		}
		if got := meta.Labels[artifact.LabelName]; got != tt.want {
			t.Errorf("%s label = %q, want %q", sidecar, got, tt.want)
		}
	}
}

func TestConfigRandomSeed(t *testing.T) {
	var cfg Config
	cfg.withDefaults()
	if cfg.RandomSeed == nil || *cfg.RandomSeed != DefaultRandomSeed {
		t.Errorf("unset seed = %v, want default %d", cfg.RandomSeed, DefaultRandomSeed)
	}

	zero := int64(0)
	cfg = Config{RandomSeed: &zero}
	cfg.withDefaults()
	if *cfg.RandomSeed != 0 {
		t.Errorf("explicit zero seed rewritten to %d", *cfg.RandomSeed)
	}
}

func TestTrainSeedZero(t *testing.T) {
	cfg, _ := testConfig(t, writeDataset(t))
	zero := int64(0)
	cfg.RandomSeed = &zero

	res, err := Train(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if res.Metrics["accuracy"] < 0.9 {
		t.Errorf("accuracy = %v, want >= 0.9", res.Metrics["accuracy"])
	}
}
