// Package tabfit trains tabular classifiers in a single pipeline stage:
// load a dataset, prepare numeric features, split and standardize, fit a
// registered model on a compute backend, evaluate it on the held-out rows
// and persist every artifact of the run.
//
// # Quick Start
//
// Train a logistic regression from a CSV file and write the run bundle to
// the local filesystem:
//
//	package main
//
//	import (
//	    "context"
//	    "log"
//
//	    "github.com/spf13/afero"
//
//	    "github.com/tabfit/tabfit/artifact"
//	    "github.com/tabfit/tabfit/estimator"
//	    _ "github.com/tabfit/tabfit/estimator/linear"
//	    "github.com/tabfit/tabfit/pipeline"
//	    tlog "github.com/tabfit/tabfit/pkg/log"
//	)
//
//	func main() {
//	    logs := tlog.NewZerologProvider(tlog.LevelInfo)
//	    store := artifact.NewFSStore(afero.NewOsFs(), "artifacts", logs.GetLogger())
//
//	    res, err := pipeline.Train(context.Background(), pipeline.Config{
//	        Dataset:         "iris.csv",
//	        ModelDescriptor: estimator.Named("linear.LogisticRegression"),
//	        Store:           store,
//	        Logs:            logs,
//	    })
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    log.Printf("run %s: accuracy %.3f", res.RunID, res.Metrics["accuracy"])
//	}
//
// # Packages
//
//   - dataset resolves CSV and Parquet references into lazy frames
//   - frame is the lazily evaluated table bound to a compute backend
//   - preprocessing holds the standard scaler and label encoder
//   - split produces seeded train/test partitions
//   - estimator resolves model descriptors against the class registry
//   - compute abstracts where frame materialization and fitting run
//   - evaluate renders the post-fit report battery
//   - artifact persists models, transforms and the held-out test set
//   - pipeline wires the stages together
package tabfit
