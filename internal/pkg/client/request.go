package client

import (
	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/umisama/go-regexpcache"

	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/errors"
)

// ResultKind determines how the decoded records are interpreted.
type ResultKind int

const (
	// KindList - any number of records may match.
	KindList ResultKind = iota
	// KindSingle - a unique key query, more than one match is an integrity error.
	KindSingle
)

// Filter key: snake case segments joined by Django "__" lookups.
const lookupKeyPattern = `^[a-z][a-z0-9]*(_{1,2}[a-z0-9]+)*$`

// Request is an immutable descriptor of one API query.
// The credential is not part of the descriptor, it lives on the client.
type Request struct {
	path   string
	kind   ResultKind
	params *orderedmap.OrderedMap
}

func NewRequest(path string, kind ResultKind) Request {
	return Request{path: path, kind: kind, params: orderedmap.New()}
}

func (r Request) Path() string {
	return r.path
}

func (r Request) Kind() ResultKind {
	return r.kind
}

func (r Request) Params() *orderedmap.OrderedMap {
	return r.params.Clone()
}

// WithParam returns a copy of the request with the filter parameter set.
// The value is passed to the API verbatim. An invalid key is a programming
// error and panics, the lookup syntax is pinned by lookupKeyPattern.
func (r Request) WithParam(key, value string) Request {
	if !regexpcache.MustCompile(lookupKeyPattern).MatchString(key) {
		panic(errors.Errorf(`invalid filter key "%s"`, key))
	}
	clone := r
	clone.params = r.params.Clone()
	clone.params.Set(key, value)
	return clone
}

// Param is one filter key-value pair.
type Param struct {
	Key   string
	Value string
}

// WithParams sets the given filters in order, empty values are skipped.
func (r Request) WithParams(params ...Param) Request {
	out := r
	for _, p := range params {
		if p.Value == "" {
			continue
		}
		out = out.WithParam(p.Key, p.Value)
	}
	return out
}
