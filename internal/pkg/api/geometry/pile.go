package geometry

import (
	"context"

	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
	"github.com/owi-lab/go-metadatabase/internal/pkg/geometry/assembly"
	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/errors"
)

// MonopilePileOptions adjusts the pile table. A nil Cutoff keeps the
// full pile, otherwise rows ending above the cutoff depth are dropped
// and the first remaining row starts at it.
type MonopilePileOptions struct {
	ModelDefinition string
	Cutoff          *float64
}

// MonopilePile builds the monopile geometry table of one turbine with
// the mudline as depth reference. The pile penetration follows from the
// monopile toe and the water depth at the turbine location, each can of
// the pile becomes one row between its conversion to depths.
func (a *API) MonopilePile(ctx context.Context, site, turbine string, opts MonopilePileOptions) (*frame.Frame, error) {
	blocks, err := a.BuildingBlocks(ctx, BuildingBlocksOptions{
		ProjectSite:     site,
		AssetLocation:   turbine,
		SubAssemblyType: "MP",
	})
	if err != nil {
		return nil, err
	}

	subAssemblies, err := a.SubAssemblies(ctx, SubAssembliesOptions{
		ProjectSite:     site,
		AssetLocation:   turbine,
		SubAssemblyType: "MP",
		ModelDefinition: opts.ModelDefinition,
	})
	if err != nil {
		return nil, err
	}
	if !subAssemblies.Exists {
		return nil, errNoSubAssemblies(turbine)
	}
	if err := needsModelDefinition(subAssemblies.Data, turbine); err != nil {
		return nil, err
	}

	location, err := a.locations.AssetLocation(ctx, turbine, site)
	if err != nil {
		return nil, err
	}
	if !location.Exists {
		return nil, errors.Errorf(`no location found for turbine "%s", the water depth is unknown`, turbine)
	}
	waterDepth, found := location.Data.Float64(0, "elevation")
	if !found {
		return nil, errors.Errorf(`location of turbine "%s" has no elevation`, turbine)
	}
	toe, found := subAssemblies.Data.Float64(0, "z_position")
	if !found {
		return nil, errors.Errorf(`monopile subassembly of turbine "%s" has no vertical position`, turbine)
	}
	penetration := -(1e-3*toe - waterDepth)

	data := blocks.Data
	cans := data.Filter(func(i int) bool {
		return !data.IsNull(i, "bottom_outer_diameter")
	}).SortByFloat("z_position", false)

	out := frame.New(
		"title",
		assembly.ColPileFrom, assembly.ColPileTo, assembly.ColPileMaterial,
		assembly.ColPileUnitWeight, assembly.ColWallThickness,
		assembly.ColPileDiameter, assembly.ColYoungsModulus, assembly.ColPoissonsRatio,
	)
	// The topmost can caps the pile head, depth segments start from
	// the second can down.
	for i := 1; i < cans.Len(); i++ {
		previous, _ := cans.Float64(i-1, "z_position")
		z, _ := cans.Float64(i, "z_position")
		density, _ := cans.Float64(i, "density")
		wall, _ := cans.Float64(i, "wall_thickness")
		bottom, _ := cans.Float64(i, "bottom_outer_diameter")
		top, _ := cans.Float64(i, "top_outer_diameter")
		young, _ := cans.Float64(i, "youngs_modulus")
		poisson, _ := cans.Float64(i, "poissons_ratio")

		row := orderedmap.New()
		row.Set("title", cans.String(i, "title"))
		row.Set(assembly.ColPileFrom, penetration-1e-3*previous)
		row.Set(assembly.ColPileTo, penetration-1e-3*z)
		row.Set(assembly.ColPileMaterial, cans.String(i, "material_name"))
		row.Set(assembly.ColPileUnitWeight, 1e-2*density-10)
		row.Set(assembly.ColWallThickness, wall)
		row.Set(assembly.ColPileDiameter, 1e-3*0.5*(bottom+top))
		row.Set(assembly.ColYoungsModulus, young)
		row.Set(assembly.ColPoissonsRatio, poisson)
		out.Append(row)
	}

	if opts.Cutoff != nil {
		cutoff := *opts.Cutoff
		out = out.Filter(func(i int) bool {
			v, found := out.Float64(i, assembly.ColPileTo)
			return found && v > cutoff
		})
		if !out.Empty() {
			out.Set(0, assembly.ColPileFrom, cutoff)
		}
	}
	return out, nil
}
