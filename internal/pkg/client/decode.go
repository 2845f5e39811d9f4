package client

import (
	"bytes"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cast"

	"github.com/owi-lab/go-metadatabase/internal/pkg/encoding/json"
	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
)

// Decode converts the response body to a tabular result.
//
// Accepted shapes: a list of records, a single record, or a paginated
// envelope {"count": n, "results": [...]}. An empty list is a valid
// result with Exists == false.
func Decode(envelope *Envelope, kind ResultKind) (*Result, error) {
	rows, err := decodeRows(envelope.Body)
	if err != nil {
		return nil, err
	}

	data := frame.FromRows(rows)
	result := &Result{Data: data, Exists: data.Len() > 0}

	if kind == KindSingle {
		switch data.Len() {
		case 0:
			// Exists stays false, not an error
		case 1:
			if value, found := data.Value(0, "id"); found {
				if id, err := cast.ToInt64E(value); err == nil {
					result.ID = &id
				}
			}
		default:
			return nil, &AmbiguousResultError{Count: data.Len()}
		}
	}

	return result, nil
}

func decodeRows(body []byte) ([]*orderedmap.OrderedMap, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, &MalformedResponseError{Reason: "empty response body"}
	}

	switch body[0] {
	case '[':
		var rows []*orderedmap.OrderedMap
		if err := json.Decode(body, &rows); err != nil {
			return nil, &MalformedResponseError{Reason: err.Error()}
		}
		for _, row := range rows {
			if row == nil {
				return nil, &MalformedResponseError{Reason: "list contains a non-object item"}
			}
		}
		return rows, nil

	case '{':
		record := orderedmap.New()
		if err := json.Decode(body, record); err != nil {
			return nil, &MalformedResponseError{Reason: err.Error()}
		}
		if results, found := record.Get("results"); found {
			if _, paginated := record.Get("count"); paginated {
				return paginatedRows(results)
			}
		}
		return []*orderedmap.OrderedMap{record}, nil

	default:
		return nil, &MalformedResponseError{Reason: "expected a JSON list or object"}
	}
}

func paginatedRows(results any) ([]*orderedmap.OrderedMap, error) {
	items, ok := results.([]any)
	if !ok {
		return nil, &MalformedResponseError{Reason: `"results" is not a list`}
	}
	rows := make([]*orderedmap.OrderedMap, 0, len(items))
	for _, item := range items {
		row, ok := item.(*orderedmap.OrderedMap)
		if !ok {
			return nil, &MalformedResponseError{Reason: `"results" contains a non-object item`}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
