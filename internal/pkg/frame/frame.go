// Package frame provides an ordered tabular container for decoded API records.
// Rows keep the key order of the source JSON, columns are the first-seen
// union of row keys. A missing key and a nil value both mean a null cell.
package frame

import (
	"math"
	"sort"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cast"
)

type Frame struct {
	columns []string
	rows    []*orderedmap.OrderedMap
}

func New(columns ...string) *Frame {
	f := &Frame{}
	for _, col := range columns {
		f.AddColumn(col)
	}
	return f
}

// FromRows builds a frame from decoded records.
// Nil rows are skipped.
func FromRows(rows []*orderedmap.OrderedMap) *Frame {
	f := New()
	for _, row := range rows {
		if row != nil {
			f.Append(row)
		}
	}
	return f
}

func (f *Frame) Len() int {
	return len(f.rows)
}

func (f *Frame) Empty() bool {
	return len(f.rows) == 0
}

func (f *Frame) Columns() []string {
	out := make([]string, len(f.columns))
	copy(out, f.columns)
	return out
}

func (f *Frame) HasColumn(name string) bool {
	for _, col := range f.columns {
		if col == name {
			return true
		}
	}
	return false
}

func (f *Frame) AddColumn(name string) {
	if !f.HasColumn(name) {
		f.columns = append(f.columns, name)
	}
}

func (f *Frame) Row(i int) *orderedmap.OrderedMap {
	return f.rows[i]
}

func (f *Frame) Rows() []*orderedmap.OrderedMap {
	out := make([]*orderedmap.OrderedMap, len(f.rows))
	copy(out, f.rows)
	return out
}

func (f *Frame) First() *orderedmap.OrderedMap {
	if len(f.rows) == 0 {
		return nil
	}
	return f.rows[0]
}

func (f *Frame) Last() *orderedmap.OrderedMap {
	if len(f.rows) == 0 {
		return nil
	}
	return f.rows[len(f.rows)-1]
}

// Append adds the row and merges its keys into the columns.
func (f *Frame) Append(row *orderedmap.OrderedMap) {
	for _, key := range row.Keys() {
		f.AddColumn(key)
	}
	f.rows = append(f.rows, row)
}

func (f *Frame) Value(i int, column string) (any, bool) {
	value, found := f.rows[i].Get(column)
	if !found || value == nil {
		return nil, false
	}
	return value, true
}

// IsNull reports whether the cell is missing, nil or NaN.
func (f *Frame) IsNull(i int, column string) bool {
	value, found := f.rows[i].Get(column)
	if !found || value == nil {
		return true
	}
	if v, ok := value.(float64); ok && math.IsNaN(v) {
		return true
	}
	return false
}

// Float64 returns the cell as float64, false for null or unconvertible cells.
func (f *Frame) Float64(i int, column string) (float64, bool) {
	value, found := f.Value(i, column)
	if !found {
		return 0, false
	}
	v, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// String returns the cell as string, "" for null cells.
func (f *Frame) String(i int, column string) string {
	value, found := f.Value(i, column)
	if !found {
		return ""
	}
	return cast.ToString(value)
}

// Set writes the cell and registers the column.
func (f *Frame) Set(i int, column string, value any) {
	f.AddColumn(column)
	f.rows[i].Set(column, value)
}

// Filter returns a new frame with rows for which keep returns true.
// The rows are shared with the source frame, use Clone for a deep copy.
func (f *Frame) Filter(keep func(i int) bool) *Frame {
	out := New(f.columns...)
	for i, row := range f.rows {
		if keep(i) {
			out.rows = append(out.rows, row)
		}
	}
	return out
}

// Select returns a new frame with the given columns only, in the given order.
// The rows are deep copies holding just the selected cells.
func (f *Frame) Select(columns ...string) *Frame {
	out := New(columns...)
	for _, row := range f.rows {
		selected := orderedmap.New()
		for _, col := range columns {
			if value, found := row.Get(col); found {
				selected.Set(col, value)
			} else {
				selected.Set(col, nil)
			}
		}
		out.rows = append(out.rows, selected)
	}
	return out
}

// SortByFloat returns a new frame with rows ordered by the column value.
// The sort is stable, null cells go last.
func (f *Frame) SortByFloat(column string, ascending bool) *Frame {
	out := f.Filter(func(int) bool { return true })
	sort.SliceStable(out.rows, func(a, b int) bool {
		av, aok := out.value(out.rows[a], column)
		bv, bok := out.value(out.rows[b], column)
		switch {
		case !aok && !bok:
			return false
		case !aok:
			return false
		case !bok:
			return true
		case ascending:
			return av < bv
		default:
			return av > bv
		}
	})
	return out
}

func (f *Frame) value(row *orderedmap.OrderedMap, column string) (float64, bool) {
	value, found := row.Get(column)
	if !found || value == nil {
		return 0, false
	}
	v, err := cast.ToFloat64E(value)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

// Sum adds up the column values, null cells are skipped.
func (f *Frame) Sum(column string) float64 {
	var total float64
	for i := range f.rows {
		if v, ok := f.Float64(i, column); ok {
			total += v
		}
	}
	return total
}

// RoundColumn rounds numeric cells of the column in place.
func (f *Frame) RoundColumn(column string, decimals int) {
	for i := range f.rows {
		if v, ok := f.Float64(i, column); ok {
			f.rows[i].Set(column, Round(v, decimals))
		}
	}
}

// RoundNumeric rounds every numeric cell of the frame in place.
func (f *Frame) RoundNumeric(decimals int) {
	for _, col := range f.columns {
		f.RoundColumn(col, decimals)
	}
}

// Clone returns a deep copy of the frame.
func (f *Frame) Clone() *Frame {
	out := New(f.columns...)
	for _, row := range f.rows {
		out.rows = append(out.rows, row.Clone())
	}
	return out
}

// Concat joins the frames top to bottom, columns are merged in first-seen order.
// Nil and empty frames are skipped, nil is returned if nothing remains.
func Concat(frames ...*Frame) *Frame {
	var out *Frame
	for _, f := range frames {
		if f == nil || f.Empty() {
			continue
		}
		if out == nil {
			out = New()
		}
		for _, col := range f.columns {
			out.AddColumn(col)
		}
		out.rows = append(out.rows, f.rows...)
	}
	return out
}

// Round rounds half away from zero to the given number of decimals.
func Round(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Round(v*p) / p
}
