package evaluate

import (
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"

	"github.com/tabfit/tabfit/core/model"
)

// ConfusionMatrix renders the predicted-vs-actual count heatmap. It
// contributes a figure only, no metrics.
func ConfusionMatrix(surface *Surface, m model.Classifier, X, y mat.Matrix, classNames []string) (Figure, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return Figure{}, err
	}
	classes := m.Classes()
	index := make(map[int]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	nSamples, _ := X.Dims()
	grid := newScoreGrid(len(classes), len(classes))
	for i := 0; i < nSamples; i++ {
		truth, okT := index[int(y.At(i, 0))]
		guess, okG := index[int(pred.At(i, 0))]
		if okT && okG {
			grid.set(truth, guess, grid.Z(guess, truth)+1)
		}
	}

	return surface.Render("confusion-matrix", func(p *plot.Plot) error {
		p.Title.Text = "Confusion Matrix"
		p.X.Label.Text = "Predicted"
		p.Y.Label.Text = "Actual"
		hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
		p.Add(hm)
		labels := make([]string, len(classes))
		for i, c := range classes {
			labels[i] = className(classNames, c)
		}
		p.NominalX(labels...)
		p.NominalY(labels...)
		return nil
	})
}
