package evaluate

import (
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/tabfit/tabfit/core/model"
	"github.com/tabfit/tabfit/pkg/errors"
)

// FeatureImportances renders a bar chart of the model's feature weights.
// The model must implement the FeatureImporter capability; callers gate on
// that before invoking the report.
func FeatureImportances(surface *Surface, m model.FeatureImporter, featureNames []string) (Figure, error) {
	imp, err := m.FeatureImportances()
	if err != nil {
		return Figure{}, err
	}
	if len(featureNames) != len(imp) {
		return Figure{}, errors.NewDimensionError("FeatureImportances", len(imp), len(featureNames), 0)
	}

	return surface.Render("feature-importances", func(p *plot.Plot) error {
		p.Title.Text = "Feature Importances"
		p.Y.Label.Text = "Importance"
		bars, err := plotter.NewBarChart(plotter.Values(imp), vg.Points(20))
		if err != nil {
			return errors.Wrap(err, "importance bars")
		}
		p.Add(bars)
		p.NominalX(featureNames...)
		return nil
	})
}
