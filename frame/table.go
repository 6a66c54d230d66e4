package frame

import (
	"math"
	"strconv"
)

// Kind is the scalar type of a column.
type Kind int

const (
	// Numeric columns hold float64 cells; a NaN cell is a missing value.
	Numeric Kind = iota
	// String columns hold string cells with an explicit null mask.
	String
)

// String returns the kind name.
func (k Kind) String() string {
	if k == Numeric {
		return "numeric"
	}
	return "string"
}

// Column is a named, typed column of the frame schema. Order matters: the
// schema order is the header retained for artifact reconstruction.
type Column struct {
	Name string
	Kind Kind
}

// Table is a materialized, column-major table. It is the concrete value a
// Frame's future resolves to; pipeline code never mutates one after it is
// produced.
type Table struct {
	cols    []Column
	numeric map[string][]float64
	str     map[string][]string
	strNull map[string][]bool
	rows    int
}

// NewTable creates an empty table with the given schema.
func NewTable(cols []Column, rows int) *Table {
	t := &Table{
		cols:    append([]Column(nil), cols...),
		numeric: make(map[string][]float64),
		str:     make(map[string][]string),
		strNull: make(map[string][]bool),
		rows:    rows,
	}
	for _, c := range cols {
		if c.Kind == Numeric {
			t.numeric[c.Name] = make([]float64, rows)
		} else {
			t.str[c.Name] = make([]string, rows)
			t.strNull[c.Name] = make([]bool, rows)
		}
	}
	return t
}

// Rows returns the row count.
func (t *Table) Rows() int { return t.rows }

// Columns returns the schema in order.
func (t *Table) Columns() []Column { return t.cols }

// SetNumeric sets a numeric cell. Use NaN for a missing value.
func (t *Table) SetNumeric(col string, row int, v float64) {
	t.numeric[col][row] = v
}

// SetString sets a string cell.
func (t *Table) SetString(col string, row int, v string) {
	t.str[col][row] = v
}

// SetStringNull marks a string cell as missing.
func (t *Table) SetStringNull(col string, row int) {
	t.strNull[col][row] = true
}

// NumericColumn returns the backing slice of a numeric column, or nil.
func (t *Table) NumericColumn(name string) []float64 {
	return t.numeric[name]
}

// StringValues renders a column's cells as strings. Numeric cells are
// formatted compactly, matching how class labels are reported downstream.
func (t *Table) StringValues(name string) ([]string, bool) {
	if vals, ok := t.str[name]; ok {
		return vals, true
	}
	if vals, ok := t.numeric[name]; ok {
		out := make([]string, len(vals))
		for i, v := range vals {
			out[i] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		return out, true
	}
	return nil, false
}

// hasColumn reports whether the schema contains name.
func (t *Table) hasColumn(name string) bool {
	for _, c := range t.cols {
		if c.Name == name {
			return true
		}
	}
	return false
}

// missingInRows reports whether any cell in rows [start, end) is missing.
func (t *Table) missingInRows(start, end int) bool {
	for _, c := range t.cols {
		if c.Kind == Numeric {
			vals := t.numeric[c.Name]
			for i := start; i < end; i++ {
				if math.IsNaN(vals[i]) {
					return true
				}
			}
		} else {
			nulls := t.strNull[c.Name]
			for i := start; i < end; i++ {
				if nulls[i] {
					return true
				}
			}
		}
	}
	return false
}

// selectColumns builds a new table restricted to keep, preserving order.
// Column data is shared, not copied; tables are immutable by convention.
func (t *Table) selectColumns(keep func(Column) bool) *Table {
	out := &Table{
		numeric: make(map[string][]float64),
		str:     make(map[string][]string),
		strNull: make(map[string][]bool),
		rows:    t.rows,
	}
	for _, c := range t.cols {
		if !keep(c) {
			continue
		}
		out.cols = append(out.cols, c)
		if c.Kind == Numeric {
			out.numeric[c.Name] = t.numeric[c.Name]
		} else {
			out.str[c.Name] = t.str[c.Name]
			out.strNull[c.Name] = t.strNull[c.Name]
		}
	}
	return out
}

// takeRows builds a new table containing the given rows, in index order.
func (t *Table) takeRows(idx []int) *Table {
	out := NewTable(t.cols, len(idx))
	for _, c := range t.cols {
		if c.Kind == Numeric {
			src, dst := t.numeric[c.Name], out.numeric[c.Name]
			for i, r := range idx {
				dst[i] = src[r]
			}
		} else {
			src, dst := t.str[c.Name], out.str[c.Name]
			srcNull, dstNull := t.strNull[c.Name], out.strNull[c.Name]
			for i, r := range idx {
				dst[i] = src[r]
				dstNull[i] = srcNull[r]
			}
		}
	}
	return out
}

// partitionSize is the row span of one distributed partition. Concrete
// checks and materialization fan out over partitions of this size.
const partitionSize = 4096

// partitions returns the number of row partitions for n rows.
func partitions(n int) int {
	if n == 0 {
		return 0
	}
	return (n + partitionSize - 1) / partitionSize
}

// partitionBounds returns the [start, end) row range of partition p.
func partitionBounds(n, p int) (int, int) {
	start := p * partitionSize
	end := start + partitionSize
	if end > n {
		end = n
	}
	return start, end
}
