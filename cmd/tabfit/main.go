// Command tabfit runs the single-stage training pipeline from a YAML run
// configuration.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tabfit/tabfit/artifact"
	"github.com/tabfit/tabfit/compute"
	"github.com/tabfit/tabfit/estimator"
	"github.com/tabfit/tabfit/pipeline"
	"github.com/tabfit/tabfit/pkg/log"

	_ "github.com/tabfit/tabfit/estimator/bayes"
	_ "github.com/tabfit/tabfit/estimator/linear"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "tabfit",
		Short:         "Train a tabular classifier and log its artifacts",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newTrainCmd(), newModelsCmd())
	return root
}

// runConfig is the YAML shape of a run file.
type runConfig struct {
	Dataset     string `yaml:"dataset"`
	LabelColumn string `yaml:"label_column"`

	Model struct {
		Class  string         `yaml:"class"`
		Params map[string]any `yaml:"params"`
	} `yaml:"model"`

	TrainFraction  float64 `yaml:"train_fraction"`
	SampleFraction float64 `yaml:"sample_fraction"`
	RandomSeed     *int64  `yaml:"random_seed"`

	TestSetKey    string `yaml:"test_set_key"`
	TestSetFormat string `yaml:"test_set_format"`

	ArtifactRoot string `yaml:"artifact_root"`
	LogLevel     string `yaml:"log_level"`
	Workers      int    `yaml:"workers"`
}

func newTrainCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Run one training pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(configPath)
			if err != nil {
				return fmt.Errorf("reading run config: %w", err)
			}
			var rc runConfig
			if err := yaml.Unmarshal(raw, &rc); err != nil {
				return fmt.Errorf("parsing run config: %w", err)
			}

			provider := log.NewZerologProvider(log.ToLogLevel(rc.LogLevel))

			root := rc.ArtifactRoot
			if root == "" {
				root = "artifacts"
			}
			store := artifact.NewFSStore(afero.NewOsFs(), root, provider.GetLogger())

			backend := compute.NewLocal(rc.Workers)
			defer backend.Close()

			cfg := pipeline.Config{
				Dataset: rc.Dataset,
				ModelDescriptor: estimator.Descriptor{
					Class:  rc.Model.Class,
					Params: rc.Model.Params,
				},
				LabelColumn:    rc.LabelColumn,
				TrainFraction:  rc.TrainFraction,
				SampleFraction: rc.SampleFraction,
				RandomSeed:     rc.RandomSeed,
				TestSetKey:     rc.TestSetKey,
				TestSetFormat:  rc.TestSetFormat,
				Backend:        backend,
				Store:          store,
				Logs:           provider,
			}

			res, err := pipeline.Train(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "run %s complete (%s)\n", res.RunID, res.Class)
			keys := make([]string, 0, len(res.Metrics))
			for k := range res.Metrics {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-24s %.4f\n", k, res.Metrics[k])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "artifacts: %s\n", res.ModelPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "tabfit.yaml", "path to the run configuration")
	return cmd
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List registered model classes",
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range estimator.Known() {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
		},
	}
}
