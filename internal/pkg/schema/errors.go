package schema

import (
	"fmt"
	"strings"
)

// SchemaViolationError - the result is missing required columns.
type SchemaViolationError struct {
	Schema  string
	Columns []string
}

func (e *SchemaViolationError) Error() string {
	return fmt.Sprintf(`schema "%s" violation: missing required columns "%s"`, e.Schema, strings.Join(e.Columns, `", "`))
}

// TypeCoercionError - a cell value cannot be converted to the declared kind,
// or does not match the declared pattern.
type TypeCoercionError struct {
	Schema   string
	Column   string
	Row      int
	Value    any
	Expected string
}

func (e *TypeCoercionError) Error() string {
	if e.Schema == "" {
		return fmt.Sprintf(`value "%v" is not a valid %s`, e.Value, e.Expected)
	}
	return fmt.Sprintf(`schema "%s": column "%s" row %d: value "%v" is not a valid %s`, e.Schema, e.Column, e.Row, e.Value, e.Expected)
}
