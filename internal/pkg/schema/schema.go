// Package schema validates and postprocesses decoded tabular results.
// A schema is declarative: column kinds, required flags, patterns,
// plausibility windows and derived columns. Validation never drops rows,
// implausible values are unit-corrected or reported.
package schema

import (
	"math"

	"github.com/spf13/cast"
	"github.com/umisama/go-regexpcache"

	"github.com/owi-lab/go-metadatabase/internal/pkg/client"
	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
	"github.com/owi-lab/go-metadatabase/internal/pkg/log"
)

type Kind int

const (
	String Kind = iota
	Float
	Int
	Bool
)

func (k Kind) String() string {
	switch k {
	case Float:
		return "float"
	case Int:
		return "int"
	case Bool:
		return "bool"
	default:
		return "string"
	}
}

type Column struct {
	Name     string
	Kind     Kind
	Required bool
	// Pattern is a regexp the whole cell value must match, string kind only.
	Pattern string
}

// Window is a physical plausibility band. A value outside the band is
// multiplied or divided by 1000 when exactly one of the corrections lands
// inside, a wrong unit of the source data is the usual cause.
type Window struct {
	Column string
	// When restricts the window to rows with this discriminator value,
	// an empty When applies to all rows.
	When string
	Min  float64
	Max  float64
}

// Derived is a column computed after validation, the function
// never observes unvalidated cells.
type Derived struct {
	Name string
	Func func(data *frame.Frame, row int) any
}

type Schema struct {
	Name    string
	Columns []Column
	// Discriminator selects the window per row, e.g. a type tag column.
	Discriminator string
	Windows       []Window
	Derived       []Derived
}

// Apply validates and postprocesses the result in place.
// The order is fixed: required columns, cell coercion, patterns,
// plausibility windows, derived columns. Applying the same schema
// twice yields the same data.
func Apply(result *client.Result, s Schema, logger log.Logger) (*client.Result, error) {
	data := result.Data
	if data.Len() == 0 {
		return result, nil
	}

	if err := checkRequired(data, s); err != nil {
		return nil, err
	}
	if err := coerce(data, s); err != nil {
		return nil, err
	}
	applyWindows(data, s, logger)
	for _, d := range s.Derived {
		for i := 0; i < data.Len(); i++ {
			data.Set(i, d.Name, d.Func(data, i))
		}
	}

	return result, nil
}

func checkRequired(data *frame.Frame, s Schema) error {
	var missing []string
	for _, col := range s.Columns {
		if col.Required && !data.HasColumn(col.Name) {
			missing = append(missing, col.Name)
		}
	}
	if len(missing) > 0 {
		return &SchemaViolationError{Schema: s.Name, Columns: missing}
	}
	return nil
}

func coerce(data *frame.Frame, s Schema) error {
	for _, col := range s.Columns {
		if !data.HasColumn(col.Name) {
			continue
		}
		for i := 0; i < data.Len(); i++ {
			if data.IsNull(i, col.Name) {
				continue
			}
			value, _ := data.Value(i, col.Name)
			coerced, err := coerceValue(value, col.Kind)
			if err != nil {
				return &TypeCoercionError{Schema: s.Name, Column: col.Name, Row: i, Value: value, Expected: col.Kind.String()}
			}
			data.Set(i, col.Name, coerced)

			if col.Pattern != "" {
				if str, ok := coerced.(string); !ok || !regexpcache.MustCompile(col.Pattern).MatchString(str) {
					return &TypeCoercionError{Schema: s.Name, Column: col.Name, Row: i, Value: value, Expected: "string matching " + col.Pattern}
				}
			}
		}
	}
	return nil
}

// coerceValue converts only when no information is lost.
func coerceValue(value any, kind Kind) (any, error) {
	switch kind {
	case Float:
		return cast.ToFloat64E(value)
	case Int:
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, err
		}
		if f != math.Trunc(f) {
			return nil, &TypeCoercionError{Value: value, Expected: "int"}
		}
		return int64(f), nil
	case Bool:
		return cast.ToBoolE(value)
	default:
		return cast.ToStringE(value)
	}
}

func applyWindows(data *frame.Frame, s Schema, logger log.Logger) {
	for _, w := range s.Windows {
		for i := 0; i < data.Len(); i++ {
			if w.When != "" && data.String(i, s.Discriminator) != w.When {
				continue
			}
			v, ok := data.Float64(i, w.Column)
			if !ok || (v >= w.Min && v <= w.Max) {
				continue
			}

			up := v * 1000
			down := v / 1000
			upFits := up >= w.Min && up <= w.Max
			downFits := down >= w.Min && down <= w.Max
			title := data.String(i, "title")
			switch {
			case upFits && !downFits:
				data.Set(i, w.Column, up)
				logger.Warnf(`%s: "%s" value %v of "%s" corrected to %v, wrong unit in the source data`, s.Name, w.Column, v, title, up)
			case downFits && !upFits:
				data.Set(i, w.Column, down)
				logger.Warnf(`%s: "%s" value %v of "%s" corrected to %v, wrong unit in the source data`, s.Name, w.Column, v, title, down)
			default:
				logger.Warnf(`%s: "%s" value %v of "%s" is outside the plausible range [%v, %v]`, s.Name, w.Column, v, title, w.Min, w.Max)
			}
		}
	}
}
