// Package evaluate runs the post-fit report battery: discrimination curves,
// per-class scores, the confusion matrix and feature importances. Each
// report draws on its own surface and contributes named metrics and PNG
// figures to the battery result.
package evaluate

import (
	"bytes"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"

	"github.com/tabfit/tabfit/pkg/errors"
)

// Figure is a rendered report image, keyed by report name.
type Figure struct {
	Name string
	PNG  []byte
}

// Surface renders reports to PNG bytes. Every Render call draws on a fresh
// plot, so one report's state never leaks into the next.
type Surface struct {
	width  vg.Length
	height vg.Length
}

// NewSurface creates a surface with the default 6x4 inch canvas.
func NewSurface() *Surface {
	return &Surface{width: 6 * vg.Inch, height: 4 * vg.Inch}
}

// Render draws one report on a fresh plot and returns it as a PNG figure.
func (s *Surface) Render(name string, draw func(p *plot.Plot) error) (Figure, error) {
	p := plot.New()
	if err := draw(p); err != nil {
		return Figure{}, err
	}
	wt, err := p.WriterTo(s.width, s.height, "png")
	if err != nil {
		return Figure{}, errors.Wrapf(err, "rendering %s", name)
	}
	var buf bytes.Buffer
	if _, err := wt.WriteTo(&buf); err != nil {
		return Figure{}, errors.Wrapf(err, "encoding %s", name)
	}
	return Figure{Name: name, PNG: buf.Bytes()}, nil
}
