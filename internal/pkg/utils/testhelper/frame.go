// Package testhelper provides assertions shared by the package tests.
package testhelper

import (
	"math"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"

	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
)

type tHelper interface {
	Helper()
}

// FrameDiff returns a human readable diff of two frames.
// Floats closer than tolerance compare as equal.
func FrameDiff(expected, actual *frame.Frame, tolerance float64) string {
	return cmp.Diff(
		frameRows(expected),
		frameRows(actual),
		cmpopts.EquateApprox(0, tolerance),
		cmpopts.EquateEmpty(),
	)
}

// AssertFrameEqual fails the test when the frames differ by more than the tolerance.
func AssertFrameEqual(t assert.TestingT, expected, actual *frame.Frame, tolerance float64) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	if diff := FrameDiff(expected, actual, tolerance); diff != "" {
		return assert.Fail(t, "frames are not equal (-expected +actual):\n"+diff)
	}
	return true
}

func frameRows(f *frame.Frame) []map[string]any {
	if f == nil {
		return nil
	}
	out := make([]map[string]any, 0, f.Len())
	for _, row := range f.Rows() {
		m := map[string]any{}
		for _, key := range row.Keys() {
			value, _ := row.Get(key)
			m[key] = normalizeNumber(value)
		}
		out = append(out, m)
	}
	return out
}

// normalizeNumber maps every numeric type to float64 and NaN to nil,
// decoded payloads and computed frames may hold the same value in a
// different Go type.
func normalizeNumber(value any) any {
	switch v := value.(type) {
	case int:
		return float64(v)
	case int32:
		return float64(v)
	case int64:
		return float64(v)
	case float32:
		return float64(v)
	case float64:
		if math.IsNaN(v) {
			return nil
		}
		return v
	default:
		return value
	}
}
