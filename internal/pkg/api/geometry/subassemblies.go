package geometry

import (
	"context"
	"strconv"

	"github.com/owi-lab/go-metadatabase/internal/pkg/client"
	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
	"github.com/owi-lab/go-metadatabase/internal/pkg/geometry/structure"
	"github.com/owi-lab/go-metadatabase/internal/pkg/schema"
	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/errors"
)

// Subassembly vertical positions come in mm LAT. A value outside the
// plausibility window of its type is three orders of magnitude off and
// the schema corrects the unit.
var subAssemblySchema = schema.Schema{
	Name: "subassemblies",
	Columns: []schema.Column{
		{Name: "subassembly_type", Kind: schema.String, Required: true},
		{Name: "z_position", Kind: schema.Float},
	},
	Discriminator: "subassembly_type",
	Windows: []schema.Window{
		{Column: "z_position", When: "TW", Min: 1000, Max: 100000},
		{Column: "z_position", When: "TP", Min: -20000, Max: -1000},
		{Column: "z_position", When: "MP", Min: -100000, Max: -10000},
	},
}

// SubAssembliesOptions narrows the subassembly listing. A ModelDefinition
// title is resolved to its ID first, which needs ProjectSite or
// AssetLocation to be set as well.
type SubAssembliesOptions struct {
	ProjectSite     string
	AssetLocation   string
	SubAssemblyType string
	ModelDefinition string
	Filters         []client.Param
}

// SubAssemblies lists subassemblies, validated against the subassembly
// schema.
func (a *API) SubAssemblies(ctx context.Context, opts SubAssembliesOptions) (*client.Result, error) {
	request := client.NewRequest(subdir+"/subassemblies/", client.KindList).
		WithParams(opts.Filters...)
	if opts.ProjectSite != "" {
		request = request.WithParam("asset__projectsite__title", opts.ProjectSite)
	}
	if opts.AssetLocation != "" {
		request = request.WithParam("asset__title", opts.AssetLocation)
	}
	if opts.SubAssemblyType != "" {
		request = request.WithParam("subassembly_type", opts.SubAssemblyType)
	}
	if opts.ModelDefinition != "" {
		id, _, err := a.ModelDefinitionID(ctx, ModelDefinitionIDOptions{
			AssetLocation:   opts.AssetLocation,
			ProjectSite:     opts.ProjectSite,
			ModelDefinition: opts.ModelDefinition,
		})
		if err != nil {
			return nil, err
		}
		request = request.WithParam("model_definition", strconv.FormatInt(id, 10))
	}
	return a.ProcessData(ctx, request, subAssemblySchema)
}

// SubAssemblyObjectsOptions narrows the typed subassembly lookup.
type SubAssemblyObjectsOptions struct {
	SubAssemblyType string
	ModelDefinition string
}

// SubAssemblyObjects returns the subassemblies of one turbine as typed
// records keyed by subassembly type. A repeated type means the listing
// mixes several model definitions and is an error.
func (a *API) SubAssemblyObjects(ctx context.Context, turbine string, opts SubAssemblyObjectsOptions) (map[string]*structure.SubAssembly, error) {
	result, err := a.SubAssemblies(ctx, SubAssembliesOptions{
		AssetLocation:   turbine,
		SubAssemblyType: opts.SubAssemblyType,
		ModelDefinition: opts.ModelDefinition,
	})
	if err != nil {
		return nil, err
	}
	if !result.Exists {
		return nil, errNoSubAssemblies(turbine)
	}

	materials, err := a.materialCatalogue(ctx)
	if err != nil {
		return nil, err
	}

	out := make(map[string]*structure.SubAssembly, result.Data.Len())
	for i := 0; i < result.Data.Len(); i++ {
		sa := structure.NewSubAssembly(result.Data, i, materials, a)
		if _, taken := out[sa.Type]; taken {
			return nil, errors.Errorf(`turbine "%s" has several "%s" subassemblies, specify a model definition`, turbine, sa.Type)
		}
		out[sa.Type] = sa
	}
	return out, nil
}

// materialCatalogue fetches the material listing as typed records.
func (a *API) materialCatalogue(ctx context.Context) ([]structure.Material, error) {
	result, err := a.Materials(ctx)
	if err != nil {
		return nil, err
	}
	if !result.Exists {
		return nil, errors.New("no materials found in the database")
	}
	return structure.MaterialsFromFrame(result.Data), nil
}

// needsModelDefinition reports a subassembly listing that mixes several
// model definitions, visible as repeated subassembly types.
func needsModelDefinition(f *frame.Frame, turbine string) error {
	seen := make(map[string]bool, f.Len())
	for i := 0; i < f.Len(); i++ {
		t := f.String(i, "subassembly_type")
		if seen[t] {
			return errors.Errorf(`multiple model definitions found for turbine "%s", specify which one to use`, turbine)
		}
		seen[t] = true
	}
	return nil
}

func errNoSubAssemblies(turbine string) error {
	return errors.Errorf(`no subassemblies found for turbine "%s", check the model definition or the database data`, turbine)
}
