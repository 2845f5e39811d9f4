// Package geometry covers the "/geometry/userroutes" routes of the
// database API: model definitions, subassemblies, building blocks and
// materials, plus the turbine processing built on top of them.
package geometry

import (
	"context"
	"strconv"

	"github.com/owi-lab/go-metadatabase/internal/pkg/api"
	"github.com/owi-lab/go-metadatabase/internal/pkg/api/locations"
	"github.com/owi-lab/go-metadatabase/internal/pkg/client"
	"github.com/owi-lab/go-metadatabase/internal/pkg/schema"
	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/errors"
)

// User routes serve the turbine data, model definitions live under the
// plain routes.
const (
	subdir       = "/geometry/userroutes"
	routesSubdir = "/geometry/routes"
)

type API struct {
	*api.API
	locations *locations.API
}

func NewAPI(base *api.API) *API {
	return &API{API: base, locations: locations.NewAPI(base)}
}

// ModelDefinitions lists the model definitions, optionally narrowed to
// one project site.
func (a *API) ModelDefinitions(ctx context.Context, site string, filters ...client.Param) (*client.Result, error) {
	request := client.NewRequest(routesSubdir+"/modeldefinitions/", client.KindList).
		WithParams(filters...)
	if site != "" {
		request = request.WithParam("site", site)
	}
	return a.ProcessData(ctx, request, schema.Schema{})
}

// ModelDefinitionIDOptions identifies one model definition. At least one
// of AssetLocation and ProjectSite is required, a missing project site
// is resolved from the asset location first. An empty ModelDefinition
// title is allowed only when the site has a single definition.
type ModelDefinitionIDOptions struct {
	AssetLocation   string
	ProjectSite     string
	ModelDefinition string
}

// ModelDefinitionID resolves a model definition title to its ID.
// The returned flag reports whether the project site has several
// definitions, so unfiltered listings would mix them.
func (a *API) ModelDefinitionID(ctx context.Context, opts ModelDefinitionIDOptions) (int64, bool, error) {
	if opts.AssetLocation == "" && opts.ProjectSite == "" {
		return 0, false, errors.New("either the asset location or the project site must be given")
	}

	site := opts.ProjectSite
	if site == "" {
		location, err := a.locations.AssetLocation(ctx, opts.AssetLocation, "")
		if err != nil {
			return 0, false, err
		}
		if !location.Exists {
			return 0, false, errors.Errorf(`no location found for asset "%s"`, opts.AssetLocation)
		}
		site = location.Data.String(0, "projectsite_name")
	}

	definitions, err := a.ModelDefinitions(ctx, site)
	if err != nil {
		return 0, false, err
	}
	if !definitions.Exists {
		return 0, false, errors.Errorf(`no model definitions found for project site "%s"`, site)
	}

	data := definitions.Data
	multiple := data.Len() > 1
	matching := data
	if opts.ModelDefinition == "" {
		if multiple {
			return 0, false, errors.Errorf(`project site "%s" has %d model definitions, specify which one to use`, site, data.Len())
		}
	} else {
		matching = data.Filter(func(i int) bool {
			return data.String(i, "title") == opts.ModelDefinition
		})
		switch {
		case matching.Empty():
			return 0, false, errors.Errorf(`model definition "%s" not found for project site "%s"`, opts.ModelDefinition, site)
		case matching.Len() > 1:
			return 0, false, errors.Errorf(`model definition "%s" is duplicated for project site "%s", check the database consistency`, opts.ModelDefinition, site)
		}
	}

	id, found := matching.Float64(0, "id")
	if !found {
		return 0, false, errors.Errorf(`model definition listing of project site "%s" has no usable id`, site)
	}
	return int64(id), multiple, nil
}

// Materials lists the material catalogue.
func (a *API) Materials(ctx context.Context, filters ...client.Param) (*client.Result, error) {
	request := client.NewRequest(subdir+"/materials/", client.KindList).
		WithParams(filters...)
	return a.ProcessData(ctx, request, schema.Schema{})
}

// BuildingBlocksOptions narrows the building block listing, zero values
// are skipped.
type BuildingBlocksOptions struct {
	ProjectSite     string
	AssetLocation   string
	SubAssemblyType string
	SubAssemblyID   int64
	Filters         []client.Param
}

func (a *API) BuildingBlocks(ctx context.Context, opts BuildingBlocksOptions) (*client.Result, error) {
	request := client.NewRequest(subdir+"/buildingblocks/", client.KindList).
		WithParams(opts.Filters...)
	if opts.ProjectSite != "" {
		request = request.WithParam("sub_assembly__asset__projectsite__title", opts.ProjectSite)
	}
	if opts.AssetLocation != "" {
		request = request.WithParam("sub_assembly__asset__title", opts.AssetLocation)
	}
	if opts.SubAssemblyType != "" {
		request = request.WithParam("sub_assembly__subassembly_type", opts.SubAssemblyType)
	}
	if opts.SubAssemblyID != 0 {
		request = request.WithParam("sub_assembly__id", strconv.FormatInt(opts.SubAssemblyID, 10))
	}
	return a.ProcessData(ctx, request, schema.Schema{})
}

// BuildingBlocksBySubAssembly implements structure.BlockSource, the
// assembler fetches blocks through it one subassembly at a time.
func (a *API) BuildingBlocksBySubAssembly(ctx context.Context, subAssemblyID int64) (*client.Result, error) {
	return a.BuildingBlocks(ctx, BuildingBlocksOptions{SubAssemblyID: subAssemblyID})
}
