package frame

import (
	"context"
	"math"
	"testing"

	"github.com/tabfit/tabfit/compute"
)

// buildTable constructs a small mixed-type table:
// f1, f2 numeric, name string, label string.
func buildTable(rows int) *Table {
	cols := []Column{
		{Name: "f1", Kind: Numeric},
		{Name: "f2", Kind: Numeric},
		{Name: "name", Kind: String},
		{Name: "label", Kind: String},
	}
	t := NewTable(cols, rows)
	for i := 0; i < rows; i++ {
		t.SetNumeric("f1", i, float64(i))
		t.SetNumeric("f2", i, float64(i)*2)
		t.SetString("name", i, "row")
		if i%2 == 0 {
			t.SetString("label", i, "a")
		} else {
			t.SetString("label", i, "b")
		}
	}
	return t
}

func TestSelectNumericKeepsLabelAndDropsStrings(t *testing.T) {
	backend := compute.NewLocal(2)
	defer backend.Close()
	f := FromTable(backend, buildTable(10))

	filtered, dropped := f.SelectNumeric("label")
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}

	want := []string{"f1", "f2", "label"}
	got := filtered.Names()
	if len(got) != len(want) {
		t.Fatalf("columns = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("column %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestHasMissingDetectsNaNAndStringNulls(t *testing.T) {
	backend := compute.NewLocal(2)
	defer backend.Close()
	ctx := context.Background()

	clean := FromTable(backend, buildTable(10))
	if missing, err := clean.HasMissing(ctx); err != nil || missing {
		t.Errorf("clean frame: missing=%v err=%v, want false nil", missing, err)
	}

	nanTable := buildTable(10)
	nanTable.SetNumeric("f2", 3, math.NaN())
	if missing, err := FromTable(backend, nanTable).HasMissing(ctx); err != nil || !missing {
		t.Errorf("NaN frame: missing=%v err=%v, want true nil", missing, err)
	}

	nullTable := buildTable(10)
	nullTable.SetStringNull("label", 7)
	if missing, err := FromTable(backend, nullTable).HasMissing(ctx); err != nil || !missing {
		t.Errorf("string-null frame: missing=%v err=%v, want true nil", missing, err)
	}
}

func TestSampleDeterministicForSeed(t *testing.T) {
	backend := compute.NewLocal(2)
	defer backend.Close()
	ctx := context.Background()

	base := buildTable(100)

	sampleF1 := func(seed int64) []float64 {
		f, err := FromTable(backend, base).Sample(0.4, seed)
		if err != nil {
			t.Fatalf("Sample: %v", err)
		}
		m, err := f.Drop("label").Drop("name").ToMatrix(ctx)
		if err != nil {
			t.Fatalf("ToMatrix: %v", err)
		}
		rows, _ := m.Dims()
		out := make([]float64, rows)
		for i := 0; i < rows; i++ {
			out[i] = m.At(i, 0)
		}
		return out
	}

	a := sampleF1(42)
	b := sampleF1(42)
	if len(a) != 40 {
		t.Fatalf("sampled rows = %d, want 40", len(a))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("row %d differs across same-seed samples: %v vs %v", i, a[i], b[i])
		}
	}

	c := sampleF1(7)
	same := true
	for i := range a {
		if a[i] != c[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different seeds produced identical samples")
	}
}

func TestSampleFullFractionIsIdentity(t *testing.T) {
	backend := compute.NewLocal(1)
	defer backend.Close()
	ctx := context.Background()

	f, err := FromTable(backend, buildTable(20)).Sample(1.0, 42)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	m, err := f.Drop("label").Drop("name").ToMatrix(ctx)
	if err != nil {
		t.Fatalf("ToMatrix: %v", err)
	}
	for i := 0; i < 20; i++ {
		if m.At(i, 0) != float64(i) {
			t.Fatalf("row %d reordered by full-fraction sample", i)
		}
	}
}

func TestSampleRejectsBadFraction(t *testing.T) {
	backend := compute.NewLocal(1)
	defer backend.Close()
	f := FromTable(backend, buildTable(5))

	for _, frac := range []float64{0, -0.1, 1.5} {
		if _, err := f.Sample(frac, 1); err == nil {
			t.Errorf("Sample(%v) should fail", frac)
		}
	}
}

func TestToMatrixRejectsNonNumericAndEmpty(t *testing.T) {
	backend := compute.NewLocal(1)
	defer backend.Close()
	ctx := context.Background()

	withString := FromTable(backend, buildTable(5))
	if _, err := withString.ToMatrix(ctx); err == nil {
		t.Error("ToMatrix with string columns should fail")
	}

	empty := FromTable(backend, NewTable([]Column{{Name: "f1", Kind: Numeric}}, 0))
	if _, err := empty.ToMatrix(ctx); err == nil {
		t.Error("ToMatrix on empty frame should fail")
	}
}

func TestStringColumnFormatsNumericLabels(t *testing.T) {
	backend := compute.NewLocal(1)
	defer backend.Close()
	ctx := context.Background()

	cols := []Column{{Name: "label", Kind: Numeric}}
	tab := NewTable(cols, 3)
	tab.SetNumeric("label", 0, 0)
	tab.SetNumeric("label", 1, 1)
	tab.SetNumeric("label", 2, 2)

	vals, err := FromTable(backend, tab).StringColumn(ctx, "label")
	if err != nil {
		t.Fatalf("StringColumn: %v", err)
	}
	want := []string{"0", "1", "2"}
	for i := range want {
		if vals[i] != want[i] {
			t.Errorf("vals[%d] = %q, want %q", i, vals[i], want[i])
		}
	}
}

func TestLazinessDefersUntilForce(t *testing.T) {
	backend := compute.NewLocal(1)
	defer backend.Close()
	ctx := context.Background()

	computed := false
	fut := Defer(func(context.Context) (*Table, error) {
		computed = true
		return buildTable(4), nil
	})
	f := New(backend, buildTable(0).Columns(), fut)

	filtered, _ := f.SelectNumeric("label")
	dropped := filtered.Drop("label")
	if computed {
		t.Fatal("transformations must not force the frame")
	}

	if _, err := dropped.NumRows(ctx); err != nil {
		t.Fatalf("NumRows: %v", err)
	}
	if !computed {
		t.Fatal("NumRows should force the frame")
	}
}
