package client

import (
	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
)

// Envelope is the raw HTTP response, it lives only between Send and Decode.
type Envelope struct {
	Status int
	Body   []byte
}

// Result is a decoded tabular response.
//
// Invariants: Exists == false implies Data has zero rows,
// ID != nil implies Exists and exactly one row.
type Result struct {
	Data   *frame.Frame
	Exists bool
	ID     *int64
}
