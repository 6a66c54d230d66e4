package evaluate

import (
	"sort"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"

	"github.com/tabfit/tabfit/core/model"
	"github.com/tabfit/tabfit/pkg/errors"
)

// rocPoint is one (false positive rate, true positive rate) step of a
// receiver operating characteristic curve.
type rocPoint struct {
	fpr float64
	tpr float64
}

// ROCAUC computes one-vs-rest ROC curves per class from the model's
// probability estimates and returns micro and macro averaged AUC metrics
// plus the curve figure.
func ROCAUC(surface *Surface, m model.Classifier, X, y mat.Matrix, classNames []string) (map[string]float64, Figure, error) {
	proba, err := m.PredictProba(X)
	if err != nil {
		return nil, Figure{}, err
	}
	classes := m.Classes()
	nSamples, nClasses := proba.Dims()
	if nClasses != len(classes) {
		return nil, Figure{}, errors.NewDimensionError("ROCAUC", len(classes), nClasses, 1)
	}

	// Per-class OVR curves plus a pooled score list for the micro average.
	curves := make([][]rocPoint, nClasses)
	aucs := make([]float64, nClasses)
	var pooled []scoredTarget
	for c := 0; c < nClasses; c++ {
		st := make([]scoredTarget, nSamples)
		for i := 0; i < nSamples; i++ {
			st[i] = scoredTarget{
				score:    proba.At(i, c),
				positive: int(y.At(i, 0)) == classes[c],
			}
		}
		pooled = append(pooled, st...)
		curves[c] = rocCurve(st)
		aucs[c] = rocArea(curves[c])
	}

	macro := 0.0
	for _, a := range aucs {
		macro += a
	}
	macro /= float64(nClasses)
	micro := rocArea(rocCurve(pooled))

	metrics := map[string]float64{
		"micro": micro,
		"macro": macro,
	}

	fig, err := surface.Render("roc-auc", func(p *plot.Plot) error {
		p.Title.Text = "ROC Curves"
		p.X.Label.Text = "False Positive Rate"
		p.Y.Label.Text = "True Positive Rate"
		for c, curve := range curves {
			pts := make(plotter.XYs, len(curve))
			for i, pt := range curve {
				pts[i] = plotter.XY{X: pt.fpr, Y: pt.tpr}
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return errors.Wrap(err, "roc curve line")
			}
			line.Color = plotutil.Color(c)
			p.Add(line)
			p.Legend.Add(className(classNames, classes[c]), line)
		}
		diag, err := plotter.NewLine(plotter.XYs{{X: 0, Y: 0}, {X: 1, Y: 1}})
		if err != nil {
			return errors.Wrap(err, "roc diagonal")
		}
		p.Add(diag)
		return nil
	})
	if err != nil {
		return nil, Figure{}, err
	}
	return metrics, fig, nil
}

type scoredTarget struct {
	score    float64
	positive bool
}

// rocCurve computes the ROC steps for one binary score list. Scores are
// visited from most to least confident; ties advance together.
func rocCurve(st []scoredTarget) []rocPoint {
	sorted := append([]scoredTarget(nil), st...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].score > sorted[j].score })

	totalPos, totalNeg := 0, 0
	for _, s := range sorted {
		if s.positive {
			totalPos++
		} else {
			totalNeg++
		}
	}

	curve := []rocPoint{{0, 0}}
	tp, fp := 0, 0
	for i := 0; i < len(sorted); {
		j := i
		for j < len(sorted) && sorted[j].score == sorted[i].score {
			if sorted[j].positive {
				tp++
			} else {
				fp++
			}
			j++
		}
		curve = append(curve, rocPoint{
			fpr: rate(fp, totalNeg),
			tpr: rate(tp, totalPos),
		})
		i = j
	}
	last := curve[len(curve)-1]
	if last.fpr != 1 || last.tpr != 1 {
		curve = append(curve, rocPoint{1, 1})
	}
	return curve
}

// rocArea integrates the curve with the trapezoid rule.
func rocArea(curve []rocPoint) float64 {
	area := 0.0
	for i := 1; i < len(curve); i++ {
		dx := curve[i].fpr - curve[i-1].fpr
		area += dx * (curve[i].tpr + curve[i-1].tpr) / 2
	}
	return area
}

func rate(count, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(count) / float64(total)
}
