package evaluate

import (
	"strconv"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"

	"github.com/tabfit/tabfit/core/model"
)

// classScores holds the per-class counts a classification report is built
// from.
type classScores struct {
	tp, fp, fn int
}

// ClassificationReport computes precision, recall and F1 per class and
// returns them as "<score>-<class>" metrics plus a score heatmap figure.
func ClassificationReport(surface *Surface, m model.Classifier, X, y mat.Matrix, classNames []string) (map[string]float64, Figure, error) {
	pred, err := m.Predict(X)
	if err != nil {
		return nil, Figure{}, err
	}
	classes := m.Classes()
	nSamples, _ := X.Dims()

	counts := make(map[int]*classScores, len(classes))
	for _, c := range classes {
		counts[c] = &classScores{}
	}
	for i := 0; i < nSamples; i++ {
		truth := int(y.At(i, 0))
		guess := int(pred.At(i, 0))
		if tc, ok := counts[truth]; ok {
			if truth == guess {
				tc.tp++
			} else {
				tc.fn++
			}
		}
		if truth != guess {
			if gc, ok := counts[guess]; ok {
				gc.fp++
			}
		}
	}

	metrics := make(map[string]float64, 3*len(classes))
	grid := newScoreGrid(len(classes), 3)
	for ci, c := range classes {
		s := counts[c]
		precision := rate(s.tp, s.tp+s.fp)
		recall := rate(s.tp, s.tp+s.fn)
		f1 := 0.0
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		name := className(classNames, c)
		metrics["precision-"+name] = precision
		metrics["recall-"+name] = recall
		metrics["f1-"+name] = f1
		grid.set(ci, 0, precision)
		grid.set(ci, 1, recall)
		grid.set(ci, 2, f1)
	}

	fig, err := surface.Render("classification-report", func(p *plot.Plot) error {
		p.Title.Text = "Classification Report"
		hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
		p.Add(hm)
		scoreLabels := []string{"precision", "recall", "f1"}
		p.NominalX(scoreLabels...)
		rowLabels := make([]string, len(classes))
		for i, c := range classes {
			rowLabels[i] = className(classNames, c)
		}
		p.NominalY(rowLabels...)
		return nil
	})
	if err != nil {
		return nil, Figure{}, err
	}
	return metrics, fig, nil
}

// className maps a class code to the encoder's label, falling back to the
// code itself when the name table is short.
func className(names []string, code int) string {
	if code >= 0 && code < len(names) {
		return names[code]
	}
	return strconv.Itoa(code)
}

// scoreGrid is a row-major grid implementing plotter.GridXYZ, rows are
// classes and columns are scores.
type scoreGrid struct {
	rows, cols int
	z          []float64
}

func newScoreGrid(rows, cols int) *scoreGrid {
	return &scoreGrid{rows: rows, cols: cols, z: make([]float64, rows*cols)}
}

func (g *scoreGrid) set(row, col int, v float64) { g.z[row*g.cols+col] = v }

func (g *scoreGrid) Dims() (c, r int)   { return g.cols, g.rows }
func (g *scoreGrid) Z(c, r int) float64 { return g.z[r*g.cols+c] }
func (g *scoreGrid) X(c int) float64    { return float64(c) }
func (g *scoreGrid) Y(r int) float64    { return float64(r) }

var _ plotter.GridXYZ = (*scoreGrid)(nil)
