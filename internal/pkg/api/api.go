// Package api glues the http client, the decoder and the schema layer
// into one retrieval pipeline shared by all database surfaces.
package api

import (
	"context"

	"github.com/owi-lab/go-metadatabase/internal/pkg/client"
	"github.com/owi-lab/go-metadatabase/internal/pkg/log"
	"github.com/owi-lab/go-metadatabase/internal/pkg/schema"
)

// API is embedded by the route surfaces (locations, geometry),
// each of them adds its own path prefix and schemas.
type API struct {
	client *client.Client
	logger log.Logger
}

func New(c *client.Client, logger log.Logger) *API {
	return &API{client: c, logger: logger}
}

func (a *API) Client() *client.Client {
	return a.client
}

func (a *API) Logger() log.Logger {
	return a.logger
}

// ProcessData runs one request through the full pipeline:
// send, decode the body into a frame, validate and postprocess by the schema.
func (a *API) ProcessData(ctx context.Context, request client.Request, s schema.Schema) (*client.Result, error) {
	envelope, err := a.client.Send(ctx, request)
	if err != nil {
		return nil, err
	}

	result, err := client.Decode(envelope, request.Kind())
	if err != nil {
		return nil, err
	}

	return schema.Apply(result, s, a.logger)
}
