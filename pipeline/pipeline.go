// Package pipeline orchestrates a single-stage training run: load the
// dataset, prepare numeric features, split and scale, fit the resolved
// classifier on the compute backend, run the report battery and persist
// every artifact of the run. Preparation failures surface before any
// artifact is written, so a failed run leaves nothing behind.
package pipeline

import (
	"context"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/tabfit/tabfit/artifact"
	"github.com/tabfit/tabfit/core/model"
	"github.com/tabfit/tabfit/dataset"
	"github.com/tabfit/tabfit/estimator"
	"github.com/tabfit/tabfit/evaluate"
	"github.com/tabfit/tabfit/frame"
	"github.com/tabfit/tabfit/pkg/errors"
	"github.com/tabfit/tabfit/pkg/log"
	"github.com/tabfit/tabfit/preprocessing"
	"github.com/tabfit/tabfit/split"
)

// Result summarizes a completed run.
type Result struct {
	RunID   string
	Class   string
	Metrics map[string]float64

	ModelPath   string
	ScalerPath  string
	EncoderPath string
	TestSetPath string
}

// Train executes the full pipeline described by cfg.
func Train(ctx context.Context, cfg Config) (*Result, error) {
	cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := cfg.Logs.GetLoggerWithName("pipeline")
	started := time.Now()

	// Resolve the descriptor first: an unknown class must fail before any
	// data is touched.
	plan, err := estimator.Resolve(cfg.ModelDescriptor)
	if err != nil {
		return nil, err
	}
	if err := plan.ApplyFitParams(); err != nil {
		return nil, err
	}
	logger = logger.With(log.ModelClassKey, plan.Class, log.BackendKey, cfg.Backend.Name())

	prep, err := prepare(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	sp, err := split.TrainTest(prep.X, prep.y, cfg.TrainFraction, *cfg.RandomSeed)
	if err != nil {
		return nil, err
	}
	logger.Info("split complete", log.StageKey, "split",
		"train_rows", len(sp.TrainIndex), "test_rows", len(sp.TestIndex))

	scaler := preprocessing.NewStandardScalerDefault()
	xTrainScaled, err := scaler.FitTransform(sp.XTrain)
	if err != nil {
		return nil, err
	}
	xTestScaled, err := scaler.Transform(sp.XTest)
	if err != nil {
		return nil, err
	}

	fitStart := time.Now()
	err = cfg.Backend.Run(ctx, func(ctx context.Context) error {
		return plan.Model.Fit(xTrainScaled, sp.YTrain)
	})
	if err != nil {
		return nil, errors.NewTrainingFailedError(cfg.Backend.Name(), plan.Class, err)
	}
	logger.Info("fit complete", log.StageKey, "fit",
		log.DurationMsKey, time.Since(fitStart).Milliseconds(),
		log.ClassesKey, len(plan.Model.Classes()))

	battery := evaluate.NewBattery(logger)
	report, err := battery.Run(ctx, evaluate.Input{
		Model:        plan.Model,
		XTest:        xTestScaled,
		YTest:        sp.YTest,
		ClassNames:   prep.encoder.Classes(),
		FeatureNames: prep.featureNames,
	})
	if err != nil {
		return nil, err
	}
	logger.Info("evaluation complete", log.StageKey, "evaluate",
		log.MetricKeyPrefix+"accuracy", report.Metrics["accuracy"])

	res, err := logArtifacts(ctx, cfg, logger, plan, scaler, prep, sp, report)
	if err != nil {
		return nil, err
	}
	res.Metrics = report.Metrics
	res.Class = plan.Class

	logger.Info("run complete", log.StageKey, "done",
		log.RunIDKey, res.RunID,
		log.DurationMsKey, time.Since(started).Milliseconds())
	return res, nil
}

// prepared carries everything the downstream stages need from data
// preparation.
type prepared struct {
	X            *mat.Dense
	y            *mat.Dense
	encoder      *preprocessing.LabelEncoder
	featureNames []string
	testColumns  []frame.Column
	labels       []string
}

// prepare loads the dataset and turns it into a numeric feature matrix and
// encoded label vector.
func prepare(ctx context.Context, cfg Config, logger log.Logger) (*prepared, error) {
	loadStart := time.Now()
	fr, err := dataset.Load(ctx, cfg.Dataset, cfg.Backend)
	if err != nil {
		return nil, err
	}
	logger.Info("dataset resolved", log.StageKey, "load",
		"dataset", cfg.Dataset,
		log.DurationMsKey, time.Since(loadStart).Milliseconds())

	if !fr.HasColumn(cfg.LabelColumn) {
		return nil, errors.NewInvalidDatasetError("prepare",
			"label column "+strconv.Quote(cfg.LabelColumn)+" not found")
	}

	fr, dropped := fr.SelectNumeric(cfg.LabelColumn)
	missing, err := fr.HasMissing(ctx)
	if err != nil {
		return nil, err
	}
	if missing {
		return nil, errors.NewInvalidDatasetError("prepare", "dataset contains missing values")
	}

	fr, err = fr.Sample(cfg.SampleFraction, *cfg.RandomSeed)
	if err != nil {
		return nil, err
	}
	rows, err := fr.NumRows(ctx)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		return nil, errors.NewInvalidDatasetError("prepare", "dataset has no rows after sampling")
	}

	labels, err := fr.StringColumn(ctx, cfg.LabelColumn)
	if err != nil {
		return nil, err
	}
	encoder := preprocessing.NewLabelEncoder()
	codes, err := encoder.FitTransform(labels)
	if err != nil {
		return nil, err
	}

	features := fr.Drop(cfg.LabelColumn)
	X, err := features.ToMatrix(ctx)
	if err != nil {
		return nil, err
	}
	y := mat.NewDense(len(codes), 1, nil)
	for i, c := range codes {
		y.Set(i, 0, float64(c))
	}

	rows, cols := X.Dims()
	logger.Info("features prepared", log.StageKey, "prepare",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.ClassesKey, encoder.NumClasses(),
		log.ColumnsDroppedKey, dropped)

	return &prepared{
		X:            X,
		y:            y,
		encoder:      encoder,
		featureNames: features.Names(),
		testColumns:  fr.Columns(),
		labels:       labels,
	}, nil
}

// logArtifacts persists the model, the fitted transforms and the held-out
// test set, in that order.
func logArtifacts(ctx context.Context, cfg Config, logger log.Logger,
	plan *estimator.Plan, scaler *preprocessing.StandardScaler,
	prep *prepared, sp *split.Result, report *evaluate.Result) (*Result, error) {

	res := &Result{}
	if rid, ok := cfg.Store.(interface{ RunID() string }); ok {
		res.RunID = rid.RunID()
	}

	modelBody, err := model.Encode(plan.Model)
	if err != nil {
		return nil, errors.NewArtifactWriteFailedError(artifact.KeyModel, "", err)
	}
	figures := make([]artifact.Figure, len(report.Figures))
	for i, f := range report.Figures {
		figures[i] = artifact.Figure{Name: f.Name, PNG: f.PNG}
	}
	var params map[string]interface{}
	if pg, ok := plan.Model.(model.ParameterGetter); ok {
		params = pg.GetParams()
	}
	res.ModelPath, err = cfg.Store.LogModel(ctx, &artifact.ModelArtifact{
		Key:     artifact.KeyModel,
		Body:    modelBody,
		Params:  params,
		Metrics: report.Metrics,
		Figures: figures,
		Labels:  map[string]string{artifact.LabelClass: plan.Class},
	})
	if err != nil {
		return nil, err
	}

	scalerBody, err := model.Encode(scaler)
	if err != nil {
		return nil, errors.NewArtifactWriteFailedError(artifact.KeyScaler, "", err)
	}
	res.ScalerPath, err = cfg.Store.LogArtifact(ctx, &artifact.Artifact{
		Key:    artifact.KeyScaler,
		Body:   scalerBody,
		Labels: map[string]string{artifact.LabelName: artifact.KeyScaler},
	})
	if err != nil {
		return nil, err
	}

	encoderBody, err := model.Encode(prep.encoder)
	if err != nil {
		return nil, errors.NewArtifactWriteFailedError(artifact.KeyEncoder, "", err)
	}
	res.EncoderPath, err = cfg.Store.LogArtifact(ctx, &artifact.Artifact{
		Key:    artifact.KeyEncoder,
		Body:   encoderBody,
		Labels: map[string]string{artifact.LabelName: artifact.KeyEncoder},
	})
	if err != nil {
		return nil, err
	}

	res.TestSetPath, err = cfg.Store.LogDataset(ctx, &artifact.DatasetArtifact{
		Key:     cfg.TestSetKey,
		Format:  cfg.TestSetFormat,
		Columns: prep.testColumns,
		Rows:    heldOutRows(prep, sp, cfg.LabelColumn),
		Labels:  map[string]string{artifact.LabelDataType: artifact.DataTypeHeldOut},
	})
	if err != nil {
		return nil, err
	}

	logger.Info("artifacts written", log.StageKey, "log_artifacts",
		log.RunIDKey, res.RunID)
	return res, nil
}

// heldOutRows reassembles the untouched test rows: original feature values
// with the label string appended.
func heldOutRows(prep *prepared, sp *split.Result, labelColumn string) []map[string]any {
	rows := make([]map[string]any, len(sp.TestIndex))
	for i, src := range sp.TestIndex {
		row := make(map[string]any, len(prep.featureNames)+1)
		for j, name := range prep.featureNames {
			row[name] = sp.XTest.At(i, j)
		}
		row[labelColumn] = prep.labels[src]
		rows[i] = row
	}
	return rows
}
