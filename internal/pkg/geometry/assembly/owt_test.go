package assembly

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owi-lab/go-metadatabase/internal/pkg/client"
	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
	"github.com/owi-lab/go-metadatabase/internal/pkg/log"
	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/testhelper"
)

// The test turbine spans -60 mLAT (pile toe) to +75 mLAT (tower top):
// a 50 m monopile with its head at -10, a 30 m transition piece from
// -15 to +15 overlapping the pile head, and a 60 m tower on top.

type farmSource struct {
	blocks map[int64]*frame.Frame
}

func (s *farmSource) BuildingBlocksBySubAssembly(_ context.Context, id int64) (*client.Result, error) {
	f, found := s.blocks[id]
	if !found {
		return &client.Result{Data: frame.New()}, nil
	}
	return &client.Result{Data: f, Exists: true}, nil
}

func row(kv ...any) *orderedmap.OrderedMap {
	out := orderedmap.New()
	for i := 0; i < len(kv); i += 2 {
		out.Set(kv[i].(string), kv[i+1])
	}
	return out
}

func frameOf(rows ...*orderedmap.OrderedMap) *frame.Frame {
	return frame.FromRows(rows)
}

func farmMaterials() *frame.Frame {
	return frameOf(
		row("id", 1, "title", "Steel S355", "description", "Structural steel",
			"density", 8000.0, "poisson_ratio", 0.3, "young_modulus", 210.0),
		row("id", 2, "title", "Grout", "description", "",
			"density", 2100.0, "poisson_ratio", 0.19, "young_modulus", 15.0),
	)
}

func can(id int, title string, z, height, bottomOD, topOD, wall float64) *orderedmap.OrderedMap {
	return row(
		"id", id, "title", title, "description", "",
		"x_position", 0.0, "y_position", 0.0, "z_position", z,
		"height", height, "bottom_outer_diameter", bottomOD, "top_outer_diameter", topOD,
		"wall_thickness", wall, "material", 1,
	)
}

func pointMass(id int, title string, z, mass float64) *orderedmap.OrderedMap {
	return row(
		"id", id, "title", title, "description", "",
		"x_position", 0.0, "y_position", 0.0, "z_position", z, "mass", mass,
	)
}

func monopileBlockRows(prefix string) *frame.Frame {
	lower := strings.ToLower(prefix)
	return frameOf(
		can(101, lower+"_mp can 1", 0, 20000, 5000, 5000, 60),
		can(102, lower+"_mp can 2", 20000, 20000, 5000, 5000, 60),
		can(103, lower+"_mp can 3", 40000, 10000, 5000, 5000, 60),
		pointMass(104, lower+"_mp internal platform", 45000, 5000),
	)
}

func transitionPieceBlockRows(prefix string) *frame.Frame {
	lower := strings.ToLower(prefix)
	grout := can(205, lower+"_tp grout", 2000, 8000, 5100, 5100, 45)
	grout.Set("material", 2)
	jTube := row(
		"id", 207, "title", lower+"_tp j tube", "description", "",
		"x_position", 0.0, "y_position", 0.0, "z_position", 1000.0,
		"height", 25000.0, "mass_distribution", 100.0, "volume_distribution", 0.05,
	)
	return frameOf(
		can(201, lower+"_tp can 1", 0, 10000, 5200, 5200, 50),
		can(202, lower+"_tp can 2", 10000, 10000, 5200, 5200, 50),
		can(203, lower+"_tp can 3", 20000, 10000, 5200, 4600, 40),
		grout,
		pointMass(206, lower+"_tp platform", 28000, 12000),
		jTube,
	)
}

func towerBlockRows(prefix string) *frame.Frame {
	lower := strings.ToLower(prefix)
	rna := pointMass(304, prefix+"_TW_RNA", 62000, 350000)
	rna.Set("moment_of_inertia_x", 1.0e8)
	rna.Set("moment_of_inertia_y", 1.2e8)
	rna.Set("moment_of_inertia_z", 9.0e7)
	return frameOf(
		can(301, lower+"_tw can 1", 0, 30000, 4600, 4000, 30),
		can(302, lower+"_tw can 2", 30000, 30000, 4000, 3400, 25),
		pointMass(303, lower+"_tw internal equipment", 10000, 2000),
		rna,
	)
}

func subAssemblyRow(id int, title, saType string, z float64) *orderedmap.OrderedMap {
	return row(
		"id", id, "title", title, "description", "",
		"x_position", 0.0, "y_position", 0.0, "z_position", z,
		"subassembly_type", saType, "source", "full", "asset", 7,
	)
}

func locationRow(title string, elevation float64) *frame.Frame {
	return frameOf(row("title", title, "elevation", elevation))
}

func fullTurbine(t *testing.T, logger log.Logger, prefix string, base int64) *OWT {
	t.Helper()
	source := &farmSource{blocks: map[int64]*frame.Frame{
		base + 1: monopileBlockRows(prefix),
		base + 2: transitionPieceBlockRows(prefix),
		base + 3: towerBlockRows(prefix),
	}}
	subs := frameOf(
		subAssemblyRow(int(base+1), prefix+"_MP", "MP", -60000.0),
		subAssemblyRow(int(base+2), prefix+"_TP", "TP", -15000.0),
		subAssemblyRow(int(base+3), prefix+"_TW", "TW", 15000.0),
	)
	owt, err := NewOWT(context.Background(), logger, farmMaterials(), subs, locationRow(prefix, -25.0), source, nil)
	require.NoError(t, err)
	return owt
}

func substructureTurbine(t *testing.T, logger log.Logger, prefix string, base int64) *OWT {
	t.Helper()
	source := &farmSource{blocks: map[int64]*frame.Frame{
		base + 1: monopileBlockRows(prefix),
		base + 2: transitionPieceBlockRows(prefix),
	}}
	subs := frameOf(
		subAssemblyRow(int(base+1), prefix+"_MP", "MP", -60000.0),
		subAssemblyRow(int(base+2), prefix+"_TP", "TP", -15000.0),
	)
	owt, err := NewOWT(context.Background(), logger, farmMaterials(), subs, locationRow(prefix, -25.0), source, nil)
	require.NoError(t, err)
	return owt
}

// brokenTurbine has two tower cans starting at the same elevation, its
// processing must fail.
func brokenTurbine(t *testing.T, logger log.Logger, prefix string, base int64) *OWT {
	t.Helper()
	tower := frameOf(
		can(301, strings.ToLower(prefix)+"_tw can 1", 0, 30000, 4600, 4000, 30),
		can(302, strings.ToLower(prefix)+"_tw can 2", 0, 20000, 4000, 3400, 25),
	)
	source := &farmSource{blocks: map[int64]*frame.Frame{base + 3: tower}}
	subs := frameOf(subAssemblyRow(int(base+3), prefix+"_TW", "TW", 15000.0))
	owt, err := NewOWT(context.Background(), logger, farmMaterials(), subs, locationRow(prefix, -25.0), source, nil)
	require.NoError(t, err)
	return owt
}

func newTestOWT(t *testing.T) (*OWT, log.DebugLogger) {
	t.Helper()
	logger := log.NewDebugLogger()
	return fullTurbine(t, logger, "AAB01", 0), logger
}

func TestNewOWT_DerivedElevations(t *testing.T) {
	t.Parallel()
	owt, _ := newTestOWT(t)

	assert.Equal(t, Unprocessed, owt.State())
	assert.Len(t, owt.SubAssemblies(), 3)
	assert.Equal(t, -25.0, owt.WaterDepth())
	require.NotNil(t, owt.TowerBase())
	assert.Equal(t, 15.0, *owt.TowerBase())
	require.NotNil(t, owt.PileHead())
	assert.Equal(t, -10.0, *owt.PileHead())
	assert.Equal(t, 4, owt.TowerBlocks().Len())
	assert.Equal(t, 6, owt.TransitionPieceBlocks().Len())
	assert.Equal(t, 4, owt.MonopileBlocks().Len())
}

func TestNewOWT_ExplicitElevations(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	source := &farmSource{blocks: map[int64]*frame.Frame{
		1: monopileBlockRows("AAB01"),
		2: transitionPieceBlockRows("AAB01"),
		3: towerBlockRows("AAB01"),
	}}
	subs := frameOf(
		subAssemblyRow(1, "AAB01_MP", "MP", -60000.0),
		subAssemblyRow(2, "AAB01_TP", "TP", -15000.0),
		subAssemblyRow(3, "AAB01_TW", "TW", 15000.0),
	)

	owt, err := NewOWT(context.Background(), logger, farmMaterials(), subs, locationRow("AAB01", -25.0), source, &Elevations{TowerBase: 16.0, PileHead: -9.5})
	require.NoError(t, err)
	assert.Equal(t, 16.0, *owt.TowerBase())
	assert.Equal(t, -9.5, *owt.PileHead())
}

func TestOWT_AccessBeforeProcessing(t *testing.T) {
	t.Parallel()
	owt, logger := newTestOWT(t)

	assert.True(t, owt.Tower().Empty())
	assert.Nil(t, owt.PileToe())
	assert.True(t, owt.Substructure().Empty())

	warnings := logger.WarnMessages()
	assert.Contains(t, warnings, `"tower" accessed before processing, run ProcessStructure first`)
	assert.Contains(t, warnings, `"pile toe" accessed before processing, run ProcessStructure first`)
	assert.Contains(t, warnings, `"substructure" accessed before assembly, run AssembleTPMP first`)
}

func TestOWT_ProcessStructureFull_Sections(t *testing.T) {
	t.Parallel()
	owt, _ := newTestOWT(t)
	require.NoError(t, owt.ProcessStructure(Full))

	assert.Equal(t, Processed, owt.State())
	require.NotNil(t, owt.PileToe())
	assert.Equal(t, -60.0, *owt.PileToe())

	expectedColumns := []string{
		"title",
		ColElevationFrom, ColElevationTo, ColHeight,
		ColDiameterFrom, ColDiameterTo, ColVolume, ColWallThickness,
		ColYoungsModulus, ColPoissonsRatio, ColMass, ColRho,
	}
	assert.Equal(t, expectedColumns, owt.Monopile().Columns())

	monopile := owt.Monopile()
	require.Equal(t, 3, monopile.Len())
	for i, expected := range []float64{-60, -40, -20} {
		v, ok := monopile.Float64(i, ColElevationTo)
		require.True(t, ok)
		assert.Equal(t, expected, v)
	}
	top, _ := monopile.Float64(2, ColElevationFrom)
	assert.Equal(t, -10.0, top)

	tower := owt.Tower()
	require.Equal(t, 2, tower.Len())
	assert.Equal(t, "aab01_tw can 1", tower.String(0, "title"))
	elevationTo, _ := tower.Float64(0, ColElevationTo)
	assert.Equal(t, 15.0, elevationTo)
	height, _ := tower.Float64(0, ColHeight)
	assert.Equal(t, 30.0, height)
	diameterFrom, _ := tower.Float64(0, ColDiameterFrom)
	assert.Equal(t, 4.0, diameterFrom)
	diameterTo, _ := tower.Float64(0, ColDiameterTo)
	assert.Equal(t, 4.6, diameterTo)
	mass, _ := tower.Float64(0, ColMass)
	assert.InDelta(t, 96.5851, mass, 0.001)
	rho, _ := tower.Float64(0, ColRho)
	assert.InDelta(t, 3.2195, rho, 0.001)
	wall, _ := tower.Float64(0, ColWallThickness)
	assert.Equal(t, 30.0, wall)
	young, _ := tower.Float64(0, ColYoungsModulus)
	assert.Equal(t, 210.0, young)
	poisson, _ := tower.Float64(0, ColPoissonsRatio)
	assert.Equal(t, 0.3, poisson)

	tp := owt.TransitionPiece()
	require.Equal(t, 3, tp.Len())
	for i, expected := range []float64{-15, -5, 5} {
		v, ok := tp.Float64(i, ColElevationTo)
		require.True(t, ok)
		assert.Equal(t, expected, v)
	}
}

func TestOWT_ProcessStructureFull_RNA(t *testing.T) {
	t.Parallel()
	owt, _ := newTestOWT(t)
	require.NoError(t, owt.ProcessStructure(Full))

	rna := owt.RNA()
	require.Equal(t, 1, rna.Len())
	assert.Equal(t, "AAB01_TW_RNA", rna.String(0, "title"))
	z, _ := rna.Float64(0, ColZ)
	assert.Equal(t, 77.0, z)
	mass, _ := rna.Float64(0, ColMass)
	assert.Equal(t, 350.0, mass)
	ixx, _ := rna.Float64(0, ColIxx)
	assert.Equal(t, 1.0e5, ixx)
	iyy, _ := rna.Float64(0, ColIyy)
	assert.Equal(t, 1.2e5, iyy)
	izz, _ := rna.Float64(0, ColIzz)
	assert.Equal(t, 9.0e4, izz)
}

func TestOWT_ProcessStructureFull_Masses(t *testing.T) {
	t.Parallel()
	owt, _ := newTestOWT(t)
	require.NoError(t, owt.ProcessStructure(Full))

	twLumped := owt.TWLumpedMass()
	require.Equal(t, 1, twLumped.Len())
	assert.Equal(t, "aab01_tw internal equipment", twLumped.String(0, "title"))
	z, _ := twLumped.Float64(0, ColZ)
	assert.Equal(t, 25.0, z)
	mass, _ := twLumped.Float64(0, ColMass)
	assert.Equal(t, 2.0, mass)

	tpLumped := owt.TPLumpedMass()
	require.Equal(t, 1, tpLumped.Len())
	z, _ = tpLumped.Float64(0, ColZ)
	assert.Equal(t, 13.0, z)
	mass, _ = tpLumped.Float64(0, ColMass)
	assert.Equal(t, 12.0, mass)

	mpLumped := owt.MPLumpedMass()
	require.Equal(t, 1, mpLumped.Len())
	z, _ = mpLumped.Float64(0, ColZ)
	assert.Equal(t, -15.0, z)
	mass, _ = mpLumped.Float64(0, ColMass)
	assert.Equal(t, 5.0, mass)

	distributed := owt.TPDistributedMass()
	require.Equal(t, 1, distributed.Len())
	assert.Equal(t, "aab01_tp j tube", distributed.String(0, "title"))
	z, _ = distributed.Float64(0, ColZ)
	assert.Equal(t, -12.0, z)
	height, _ := distributed.Float64(0, ColHeight)
	assert.Equal(t, 25.0, height)
	mass, _ = distributed.Float64(0, ColMass)
	assert.Equal(t, 2.5, mass)
	volume, _ := distributed.Float64(0, ColVolume)
	assert.Equal(t, 1.0, volume)

	grout := owt.Grout()
	require.Equal(t, 1, grout.Len())
	z, _ = grout.Float64(0, ColZ)
	assert.Equal(t, -11.0, z)
	height, _ = grout.Float64(0, ColHeight)
	assert.Equal(t, 8.0, height)
	mass, _ = grout.Float64(0, ColMass)
	assert.InDelta(t, 12.0058, mass, 0.001)
	volume, _ = grout.Float64(0, ColVolume)
	assert.InDelta(t, 5.71707, volume, 0.001)

	assert.True(t, owt.MPDistributedMass().Empty())
}

func TestOWT_ProcessStructureSingleCategory(t *testing.T) {
	t.Parallel()
	owt, logger := newTestOWT(t)
	require.NoError(t, owt.ProcessStructure(TW))

	assert.Equal(t, Processed, owt.State())
	assert.Equal(t, 2, owt.Tower().Len())
	assert.Equal(t, 1, owt.RNA().Len())

	// The other categories were not processed, their tables are empty
	// and no warning is logged once the state is processed.
	logger.Truncate()
	assert.True(t, owt.Monopile().Empty())
	assert.True(t, owt.Grout().Empty())
	assert.Empty(t, logger.WarnMessages())
}

func TestOWT_ProcessStructureUnknownOption(t *testing.T) {
	t.Parallel()
	owt, _ := newTestOWT(t)

	err := owt.ProcessStructure(Option("tower"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown processing option "tower"`)
}

func TestOWT_ProcessStructureDuplicateElevations(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	owt := brokenTurbine(t, logger, "AAB09", 100)

	err := owt.ProcessStructure(TW)
	require.Error(t, err)
	geometryErr := &NonMonotonicGeometryError{}
	require.ErrorAs(t, err, &geometryErr)
	assert.Equal(t, "TW", geometryErr.Category)
	assert.Equal(t, 15.0, geometryErr.Elevation)
	assert.Equal(t, `duplicate elevation 15 in "TW" sections, stacking order is ambiguous`, geometryErr.Error())
	assert.Equal(t, Unprocessed, owt.State())
}

func TestOWT_ProcessStructureRepeatable(t *testing.T) {
	t.Parallel()
	owt, _ := newTestOWT(t)
	require.NoError(t, owt.ProcessStructure(Full))

	firstTower := owt.Tower()
	firstTotals, found := owt.CategoryTotals(TW)
	require.True(t, found)

	// Re-processing replaces all derived state with the same values.
	require.NoError(t, owt.ProcessStructure(Full))
	assert.Equal(t, Processed, owt.State())
	testhelper.AssertFrameEqual(t, firstTower, owt.Tower(), 1e-9)

	totals, found := owt.CategoryTotals(TW)
	require.True(t, found)
	assert.Equal(t, firstTotals, totals)
}

func TestOWT_AssembleTPMP_Overlapped(t *testing.T) {
	t.Parallel()
	owt, _ := newTestOWT(t)
	require.NoError(t, owt.ProcessStructure(Full))
	require.NoError(t, owt.AssembleTPMP())

	substructure := owt.Substructure()
	require.Equal(t, 6, substructure.Len())

	// The lowest transition piece can overlapped the pile head and was
	// cut at -10 mLAT, from 10 m down to 5 m of height.
	trimmed := 3
	assert.Equal(t, "aab01_tp can 1", substructure.String(trimmed, "title"))
	elevationTo, _ := substructure.Float64(trimmed, ColElevationTo)
	assert.Equal(t, -10.0, elevationTo)
	elevationFrom, _ := substructure.Float64(trimmed, ColElevationFrom)
	assert.Equal(t, -5.0, elevationFrom)
	height, _ := substructure.Float64(trimmed, ColHeight)
	assert.Equal(t, 5.0, height)
	volume, _ := substructure.Float64(trimmed, ColVolume)
	assert.InDelta(t, 4.04480, volume, 0.001)
	mass, _ := substructure.Float64(trimmed, ColMass)
	assert.InDelta(t, 32.3584, mass, 0.001)
	rho, _ := substructure.Float64(trimmed, ColRho)
	assert.InDelta(t, 6.47168, rho, 0.001)

	// The cut does not leak into the processed transition piece table.
	original, _ := owt.TransitionPiece().Float64(0, ColElevationTo)
	assert.Equal(t, -15.0, original)

	// The skirt is the complement below the pile head.
	skirt := owt.TPSkirt()
	require.Equal(t, 1, skirt.Len())
	skirtFrom, _ := skirt.Float64(0, ColElevationFrom)
	assert.Equal(t, -10.0, skirtFrom)
	skirtTo, _ := skirt.Float64(0, ColElevationTo)
	assert.Equal(t, -15.0, skirtTo)
	skirtMass, _ := skirt.Float64(0, ColMass)
	assert.InDelta(t, 32.3584, skirtMass, 0.001)
}

func TestOWT_AssembleTPMP_Bolted(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	source := &farmSource{blocks: map[int64]*frame.Frame{
		1: monopileBlockRows("AAB01"),
		2: transitionPieceBlockRows("AAB01"),
		3: towerBlockRows("AAB01"),
	}}
	subs := frameOf(
		subAssemblyRow(1, "AAB01_MP", "MP", -60000.0),
		subAssemblyRow(2, "AAB01_TP", "TP", -15000.0),
		subAssemblyRow(3, "AAB01_TW", "TW", 15000.0),
	)
	// With the pile head pinned to the transition piece bottom the
	// connection is bolted, nothing is trimmed.
	owt, err := NewOWT(context.Background(), logger, farmMaterials(), subs, locationRow("AAB01", -25.0), source, &Elevations{TowerBase: 15.0, PileHead: -15.0})
	require.NoError(t, err)
	require.NoError(t, owt.ProcessStructure(Full))
	require.NoError(t, owt.AssembleTPMP())

	substructure := owt.Substructure()
	require.Equal(t, 6, substructure.Len())
	height, _ := substructure.Float64(3, ColHeight)
	assert.Equal(t, 10.0, height)
	assert.True(t, owt.TPSkirt().Empty())
}

func TestOWT_AssembleTPMP_NotProcessed(t *testing.T) {
	t.Parallel()
	owt, _ := newTestOWT(t)

	err := owt.AssembleTPMP()
	require.Error(t, err)
	assert.Equal(t, "transition piece and monopile sections need to be processed first", err.Error())
}

func TestOWT_AssembleFullStructure(t *testing.T) {
	t.Parallel()
	owt, _ := newTestOWT(t)
	require.NoError(t, owt.ProcessStructure(Full))

	err := owt.AssembleFullStructure()
	require.Error(t, err)
	assert.Equal(t, "substructure needs to be assembled first, run AssembleTPMP", err.Error())

	require.NoError(t, owt.AssembleTPMP())
	require.NoError(t, owt.AssembleFullStructure())

	full := owt.FullStructure()
	require.Equal(t, 8, full.Len())
	bottom, _ := full.Float64(0, ColElevationTo)
	assert.Equal(t, -60.0, bottom)
	top, _ := full.Float64(7, ColElevationFrom)
	assert.Equal(t, 75.0, top)
}

func TestOWT_ExtendFrames(t *testing.T) {
	t.Parallel()
	owt, _ := newTestOWT(t)
	require.NoError(t, owt.ProcessStructure(Full))
	require.NoError(t, owt.ExtendFrames())

	assert.Equal(t, "TW", owt.Tower().String(0, ColSubassembly))
	assert.Equal(t, "TW", owt.RNA().String(0, ColSubassembly))
	assert.Equal(t, "TP", owt.Grout().String(0, ColSubassembly))
	assert.Equal(t, "MP", owt.Monopile().String(0, ColSubassembly))

	assert.Equal(t, 6, owt.Substructure().Len())
	assert.Equal(t, 8, owt.FullStructure().Len())
}

func TestOWT_ExtendFrames_NoTower(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	owt := substructureTurbine(t, logger, "AAB02", 10)
	require.NoError(t, owt.ProcessStructure(TP))
	require.NoError(t, owt.ProcessStructure(MP))
	require.NoError(t, owt.ExtendFrames())

	assert.Equal(t, 6, owt.Substructure().Len())

	logger.Truncate()
	assert.True(t, owt.FullStructure().Empty())
	assert.Contains(t, logger.WarnMessages(), `"full structure" accessed before assembly, run AssembleFullStructure first`)
}

func TestOWT_CategoryTotals(t *testing.T) {
	t.Parallel()
	owt, _ := newTestOWT(t)
	require.NoError(t, owt.ProcessStructure(Full))

	mp, found := owt.CategoryTotals(MP)
	require.True(t, found)
	assert.Equal(t, 50.0, mp.Height)
	assert.InDelta(t, 377.4672, mp.Mass, 0.001)

	tp, found := owt.CategoryTotals(TP)
	require.True(t, found)
	assert.Equal(t, 30.0, tp.Height)
	assert.InDelta(t, 204.7974, tp.Mass, 0.001)

	tw, found := owt.CategoryTotals(TW)
	require.True(t, found)
	assert.Equal(t, 60.0, tw.Height)
	assert.InDelta(t, 167.8572, tw.Mass, 0.001)

	_, found = owt.CategoryTotals(Full)
	assert.False(t, found)

	again, found := owt.CategoryTotals(MP)
	require.True(t, found)
	assert.Equal(t, mp, again)
}

func TestOWT_CategoryTotalsBeforeProcessing(t *testing.T) {
	t.Parallel()
	owt, logger := newTestOWT(t)

	_, found := owt.CategoryTotals(MP)
	assert.False(t, found)
	assert.Contains(t, logger.WarnMessages(), "category totals accessed before processing, run ProcessStructure first")
}

func TestOWT_MonopileGeometry(t *testing.T) {
	t.Parallel()
	owt, _ := newTestOWT(t)

	pile, err := owt.MonopileGeometry(context.Background(), math.NaN())
	require.NoError(t, err)

	// Pile toe at -60 mLAT and mudline at -25 mLAT give 35 m of
	// penetration, depths count down from there.
	expected := frameOf(
		row("title", "aab01_mp can 2",
			ColPileFrom, -5.0, ColPileTo, 15.0,
			ColPileMaterial, "Steel S355", ColPileUnitWeight, 70.0,
			ColWallThickness, 60.0, ColPileDiameter, 5.0,
			ColYoungsModulus, 210.0, ColPoissonsRatio, 0.3),
		row("title", "aab01_mp can 1",
			ColPileFrom, 15.0, ColPileTo, 35.0,
			ColPileMaterial, "Steel S355", ColPileUnitWeight, 70.0,
			ColWallThickness, 60.0, ColPileDiameter, 5.0,
			ColYoungsModulus, 210.0, ColPoissonsRatio, 0.3),
	)
	testhelper.AssertFrameEqual(t, expected, pile, 1e-9)
}

func TestOWT_MonopileGeometryCutoff(t *testing.T) {
	t.Parallel()
	owt, _ := newTestOWT(t)

	pile, err := owt.MonopileGeometry(context.Background(), 20.0)
	require.NoError(t, err)

	// Only the lowest can reaches below the cutoff, its upper end is
	// pinned to it.
	expected := frameOf(
		row("title", "aab01_mp can 1",
			ColPileFrom, 20.0, ColPileTo, 35.0,
			ColPileMaterial, "Steel S355", ColPileUnitWeight, 70.0,
			ColWallThickness, 60.0, ColPileDiameter, 5.0,
			ColYoungsModulus, 210.0, ColPoissonsRatio, 0.3),
	)
	testhelper.AssertFrameEqual(t, expected, pile, 1e-9)
}

func TestOWT_MonopileGeometryNoMonopile(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	owt := brokenTurbine(t, logger, "AAB09", 100)

	_, err := owt.MonopileGeometry(context.Background(), math.NaN())
	require.Error(t, err)
	assert.Equal(t, "monopile subassembly data not found", err.Error())
}
