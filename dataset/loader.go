// Package dataset resolves dataset references into lazy frames. A
// reference is a path whose extension selects the source codec: .csv or
// .parquet. Resolution validates the source and reads its schema; cell
// decoding is deferred to the frame's first force, where it fans out over
// row partitions on the compute backend.
package dataset

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/tabfit/tabfit/compute"
	"github.com/tabfit/tabfit/frame"
	"github.com/tabfit/tabfit/pkg/errors"
)

// Load resolves ref into a frame bound to backend. It fails with a
// DataUnavailable kind when the reference cannot be resolved.
func Load(ctx context.Context, ref string, backend compute.Backend) (*frame.Frame, error) {
	switch strings.ToLower(filepath.Ext(ref)) {
	case ".csv":
		return loadCSV(ref, backend)
	case ".parquet":
		return loadParquet(ref, backend)
	default:
		return nil, errors.NewDataUnavailableError(ref, "unsupported format "+filepath.Ext(ref))
	}
}

// ---------------------------------------------------------------------------
// CSV
// ---------------------------------------------------------------------------

func loadCSV(ref string, backend compute.Backend) (*frame.Frame, error) {
	f, err := os.Open(ref)
	if err != nil {
		return nil, errors.NewDataUnavailableError(ref, err.Error())
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.NewDataUnavailableError(ref, "malformed csv: "+err.Error())
	}
	if len(records) < 1 {
		return nil, errors.NewDataUnavailableError(ref, "no header row")
	}

	header := records[0]
	rows := records[1:]
	cols := sniffCSVKinds(header, rows)

	fut := frame.Defer(func(ctx context.Context) (*frame.Table, error) {
		return decodeCSV(ctx, backend, cols, rows)
	})
	return frame.New(backend, cols, fut), nil
}

// sniffCSVKinds classifies a column as numeric when every non-empty cell
// parses as a float. Empty cells are missing values and do not vote.
func sniffCSVKinds(header []string, rows [][]string) []frame.Column {
	cols := make([]frame.Column, len(header))
	for j, name := range header {
		kind := frame.Numeric
		for _, rec := range rows {
			if j >= len(rec) || rec[j] == "" {
				continue
			}
			if _, err := strconv.ParseFloat(rec[j], 64); err != nil {
				kind = frame.String
				break
			}
		}
		cols[j] = frame.Column{Name: name, Kind: kind}
	}
	return cols
}

// decodeCSV fills a table from raw records, one backend task per row
// partition.
func decodeCSV(ctx context.Context, backend compute.Backend, cols []frame.Column, rows [][]string) (*frame.Table, error) {
	t := frame.NewTable(cols, len(rows))
	const span = 4096
	parts := (len(rows) + span - 1) / span

	err := backend.Map(ctx, parts, func(part int) error {
		start := part * span
		end := start + span
		if end > len(rows) {
			end = len(rows)
		}
		for i := start; i < end; i++ {
			rec := rows[i]
			for j, c := range cols {
				cell := ""
				if j < len(rec) {
					cell = rec[j]
				}
				if c.Kind == frame.Numeric {
					if cell == "" {
						t.SetNumeric(c.Name, i, nan())
						continue
					}
					v, err := strconv.ParseFloat(cell, 64)
					if err != nil {
						return errors.Newf("dataset: row %d column %q: %v", i, c.Name, err)
					}
					t.SetNumeric(c.Name, i, v)
				} else {
					if cell == "" {
						t.SetStringNull(c.Name, i)
						continue
					}
					t.SetString(c.Name, i, cell)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ---------------------------------------------------------------------------
// Parquet
// ---------------------------------------------------------------------------

func loadParquet(ref string, backend compute.Backend) (*frame.Frame, error) {
	f, err := os.Open(ref)
	if err != nil {
		return nil, errors.NewDataUnavailableError(ref, err.Error())
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, errors.NewDataUnavailableError(ref, err.Error())
	}
	pf, err := parquet.OpenFile(f, info.Size())
	if err != nil {
		f.Close()
		return nil, errors.NewDataUnavailableError(ref, "malformed parquet: "+err.Error())
	}
	f.Close()

	cols, err := parquetColumns(ref, pf)
	if err != nil {
		return nil, err
	}

	fut := frame.Defer(func(ctx context.Context) (*frame.Table, error) {
		return decodeParquet(ref, cols)
	})
	return frame.New(backend, cols, fut), nil
}

func parquetColumns(ref string, pf *parquet.File) ([]frame.Column, error) {
	fields := pf.Schema().Fields()
	cols := make([]frame.Column, 0, len(fields))
	for _, field := range fields {
		if !field.Leaf() {
			return nil, errors.NewDataUnavailableError(ref, "nested column "+field.Name()+" not supported")
		}
		switch field.Type().Kind() {
		case parquet.Boolean, parquet.Int32, parquet.Int64, parquet.Float, parquet.Double:
			cols = append(cols, frame.Column{Name: field.Name(), Kind: frame.Numeric})
		default:
			cols = append(cols, frame.Column{Name: field.Name(), Kind: frame.String})
		}
	}
	return cols, nil
}

func decodeParquet(ref string, cols []frame.Column) (*frame.Table, error) {
	f, err := os.Open(ref)
	if err != nil {
		return nil, errors.NewDataUnavailableError(ref, err.Error())
	}
	defer f.Close()

	reader := parquet.NewGenericReader[map[string]any](f)
	defer reader.Close()

	total := int(reader.NumRows())
	t := frame.NewTable(cols, total)

	buf := make([]map[string]any, 256)
	row := 0
	for {
		for i := range buf {
			buf[i] = map[string]any{}
		}
		n, err := reader.Read(buf)
		for i := 0; i < n; i++ {
			if err := setParquetRow(t, cols, row, buf[i]); err != nil {
				return nil, err
			}
			row++
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.NewDataUnavailableError(ref, "reading parquet: "+err.Error())
		}
	}
	return t, nil
}

func setParquetRow(t *frame.Table, cols []frame.Column, row int, rec map[string]any) error {
	for _, c := range cols {
		val, ok := rec[c.Name]
		if c.Kind == frame.Numeric {
			if !ok || val == nil {
				t.SetNumeric(c.Name, row, nan())
				continue
			}
			f, err := toFloat(val)
			if err != nil {
				return errors.Newf("dataset: row %d column %q: %v", row, c.Name, err)
			}
			t.SetNumeric(c.Name, row, f)
		} else {
			if !ok || val == nil {
				t.SetStringNull(c.Name, row)
				continue
			}
			t.SetString(c.Name, row, toString(val))
		}
	}
	return nil
}

func toFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, errors.Newf("unsupported numeric value %T", v)
	}
}

func toString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(v)
	}
}

func nan() float64 { return math.NaN() }
