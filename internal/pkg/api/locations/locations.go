// Package locations covers the "/locations" routes of the database API:
// project sites and the asset locations inside them.
package locations

import (
	"context"

	"github.com/owi-lab/go-metadatabase/internal/pkg/api"
	"github.com/owi-lab/go-metadatabase/internal/pkg/client"
	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
	"github.com/owi-lab/go-metadatabase/internal/pkg/schema"
)

const subdir = "/locations"

type API struct {
	*api.API
}

func NewAPI(base *api.API) *API {
	return &API{API: base}
}

// ProjectSites lists all project sites, optionally narrowed by extra filters.
func (a *API) ProjectSites(ctx context.Context, filters ...client.Param) (*client.Result, error) {
	request := client.NewRequest(subdir+"/projectsites/", client.KindList).
		WithParams(filters...)
	return a.ProcessData(ctx, request, schema.Schema{})
}

// ProjectSite is a unique lookup of one project site by title.
func (a *API) ProjectSite(ctx context.Context, title string, filters ...client.Param) (*client.Result, error) {
	request := client.NewRequest(subdir+"/projectsites/", client.KindSingle).
		WithParam("projectsite", title).
		WithParams(filters...)
	return a.ProcessData(ctx, request, schema.Schema{})
}

// AssetLocationsOptions narrows the asset location listing.
// A non-empty Assets list switches to per-title unique lookups,
// concatenated into one result.
type AssetLocationsOptions struct {
	ProjectSite string
	Assets      []string
	Filters     []client.Param
}

func (a *API) AssetLocations(ctx context.Context, opts AssetLocationsOptions) (*client.Result, error) {
	if len(opts.Assets) > 0 {
		return a.assetLocationsByTitle(ctx, opts)
	}

	request := client.NewRequest(subdir+"/assetlocations/", client.KindList).
		WithParams(opts.Filters...)
	if opts.ProjectSite != "" {
		request = request.WithParam("projectsite__title", opts.ProjectSite)
	}
	return a.ProcessData(ctx, request, schema.Schema{})
}

// assetLocationsByTitle resolves each requested title as a unique lookup.
// A duplicated asset title in the database fails the whole call,
// a missing one only shrinks the result.
func (a *API) assetLocationsByTitle(ctx context.Context, opts AssetLocationsOptions) (*client.Result, error) {
	frames := make([]*frame.Frame, 0, len(opts.Assets))
	for _, asset := range opts.Assets {
		request := client.NewRequest(subdir+"/assetlocations/", client.KindSingle).
			WithParam("assetlocation", asset).
			WithParams(opts.Filters...)
		if opts.ProjectSite != "" {
			request = request.WithParam("projectsite__title", opts.ProjectSite)
		}

		result, err := a.ProcessData(ctx, request, schema.Schema{})
		if err != nil {
			return nil, err
		}
		frames = append(frames, result.Data)
	}

	data := frame.Concat(frames...)
	return &client.Result{Data: data, Exists: data.Len() > 0}, nil
}

// AssetLocation is a unique lookup of one asset location by title,
// optionally scoped to a project site.
func (a *API) AssetLocation(ctx context.Context, title, projectSite string, filters ...client.Param) (*client.Result, error) {
	request := client.NewRequest(subdir+"/assetlocations/", client.KindSingle).
		WithParam("assetlocation", title).
		WithParams(filters...)
	if projectSite != "" {
		request = request.WithParam("projectsite", projectSite)
	}
	return a.ProcessData(ctx, request, schema.Schema{})
}
