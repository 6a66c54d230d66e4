package preprocessing

import (
	"fmt"
	"sort"

	"github.com/tabfit/tabfit/core/model"
	"github.com/tabfit/tabfit/pkg/errors"
)

// LabelEncoder maps the distinct values of a categorical label column to
// zero-based integer codes. The mapping is a bijection over the observed
// label set: codes are assigned in lexical order of the labels, so the
// same label set always yields the same codes. The fitted encoder is
// persisted as an artifact to allow inverse mapping at inference time.
type LabelEncoder struct {
	State *model.StateManager

	// ClassList holds the distinct labels in code order.
	ClassList []string

	// Codes maps each label to its code.
	Codes map[string]int
}

// NewLabelEncoder creates an unfitted LabelEncoder.
func NewLabelEncoder() *LabelEncoder {
	return &LabelEncoder{State: model.NewStateManager()}
}

// Fit learns the label-to-code mapping from labels.
func (e *LabelEncoder) Fit(labels []string) error {
	if len(labels) == 0 {
		return errors.Wrap(errors.ErrEmptyData, "LabelEncoder.Fit")
	}

	seen := make(map[string]struct{})
	for _, l := range labels {
		seen[l] = struct{}{}
	}

	e.ClassList = make([]string, 0, len(seen))
	for l := range seen {
		e.ClassList = append(e.ClassList, l)
	}
	sort.Strings(e.ClassList)

	e.Codes = make(map[string]int, len(e.ClassList))
	for code, l := range e.ClassList {
		e.Codes[l] = code
	}

	e.State.SetDimensions(1, len(labels))
	e.State.SetFitted()
	return nil
}

// Transform maps labels to their codes. A label not seen during Fit is an
// error.
func (e *LabelEncoder) Transform(labels []string) ([]int, error) {
	if !e.State.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "Transform")
	}

	out := make([]int, len(labels))
	for i, l := range labels {
		code, ok := e.Codes[l]
		if !ok {
			return nil, errors.Newf("LabelEncoder.Transform: unseen label %q", l)
		}
		out[i] = code
	}
	return out, nil
}

// FitTransform fits on labels and returns their codes.
func (e *LabelEncoder) FitTransform(labels []string) ([]int, error) {
	if err := e.Fit(labels); err != nil {
		return nil, err
	}
	return e.Transform(labels)
}

// InverseTransform maps codes back to their original labels.
func (e *LabelEncoder) InverseTransform(codes []int) ([]string, error) {
	if !e.State.IsFitted() {
		return nil, errors.NewNotFittedError("LabelEncoder", "InverseTransform")
	}

	out := make([]string, len(codes))
	for i, code := range codes {
		if code < 0 || code >= len(e.ClassList) {
			return nil, errors.Newf("LabelEncoder.InverseTransform: code %d out of range [0, %d)", code, len(e.ClassList))
		}
		out[i] = e.ClassList[code]
	}
	return out, nil
}

// Classes returns the distinct labels in code order, for report labeling.
func (e *LabelEncoder) Classes() []string {
	return append([]string(nil), e.ClassList...)
}

// NumClasses returns the number of distinct labels.
func (e *LabelEncoder) NumClasses() int { return len(e.ClassList) }

// String returns a short description of the encoder.
func (e *LabelEncoder) String() string {
	if !e.State.IsFitted() {
		return "LabelEncoder()"
	}
	return fmt.Sprintf("LabelEncoder(n_classes=%d)", len(e.ClassList))
}
