package evaluate

import (
	"context"

	"gonum.org/v1/gonum/mat"

	"github.com/tabfit/tabfit/core/model"
	"github.com/tabfit/tabfit/pkg/errors"
	"github.com/tabfit/tabfit/pkg/log"
)

// Input carries everything the report battery needs about a fitted model
// and its held-out data.
type Input struct {
	Model        model.Classifier
	XTest        mat.Matrix
	YTest        mat.Matrix
	ClassNames   []string // label strings indexed by class code
	FeatureNames []string // scaled feature column names, matrix order
}

// Result aggregates the battery's metrics and figures.
type Result struct {
	Metrics map[string]float64
	Figures []Figure
}

// Battery runs the full report suite against a fitted classifier. The
// discrimination-curve and per-class score reports are load-bearing: their
// failure fails the battery. The confusion matrix and feature importance
// reports are best-effort and are skipped with a warning on failure.
type Battery struct {
	logger  log.Logger
	surface *Surface
}

// NewBattery creates a battery logging through logger.
func NewBattery(logger log.Logger) *Battery {
	return &Battery{
		logger:  logger.With(log.ComponentKey, "evaluate"),
		surface: NewSurface(),
	}
}

// Run evaluates the model on the held-out set and returns all metrics and
// figures produced.
func (b *Battery) Run(ctx context.Context, in Input) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	res := &Result{Metrics: map[string]float64{}}

	accuracy, err := in.Model.Score(in.XTest, in.YTest)
	if err != nil {
		return nil, errors.NewEvaluationFailedError("accuracy", err)
	}
	res.Metrics["accuracy"] = accuracy

	rocMetrics, rocFig, err := ROCAUC(b.surface, in.Model, in.XTest, in.YTest, in.ClassNames)
	if err != nil {
		return nil, errors.NewEvaluationFailedError("roc-auc", err)
	}
	for k, v := range rocMetrics {
		res.Metrics[k] = v
	}
	res.Figures = append(res.Figures, rocFig)
	b.logger.Info("discrimination report complete",
		log.MetricKeyPrefix+"micro", rocMetrics["micro"],
		log.MetricKeyPrefix+"macro", rocMetrics["macro"])

	crMetrics, crFig, err := ClassificationReport(b.surface, in.Model, in.XTest, in.YTest, in.ClassNames)
	if err != nil {
		return nil, errors.NewEvaluationFailedError("classification-report", err)
	}
	for k, v := range crMetrics {
		res.Metrics[k] = v
	}
	res.Figures = append(res.Figures, crFig)

	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	cmFig, err := ConfusionMatrix(b.surface, in.Model, in.XTest, in.YTest, in.ClassNames)
	if err != nil {
		b.logger.Warn("confusion matrix skipped", log.ErrKey, err)
	} else {
		res.Figures = append(res.Figures, cmFig)
	}

	if importer, ok := in.Model.(model.FeatureImporter); ok {
		fiFig, err := FeatureImportances(b.surface, importer, in.FeatureNames)
		if err != nil {
			b.logger.Warn("feature importance report skipped", log.ErrKey, err)
		} else {
			res.Figures = append(res.Figures, fiFig)
		}
	} else {
		b.logger.Debug("model does not expose feature importances")
	}

	return res, nil
}
