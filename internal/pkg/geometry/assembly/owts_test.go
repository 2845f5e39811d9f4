package assembly

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/owi-lab/go-metadatabase/internal/pkg/log"
)

func newTestFarm(t *testing.T, clock clockwork.Clock) (*OWTs, log.DebugLogger) {
	t.Helper()
	logger := log.NewDebugLogger()
	farm, err := NewOWTs(
		logger, clock,
		[]string{"AAB01", "AAB02"},
		[]*OWT{fullTurbine(t, logger, "AAB01", 0), fullTurbine(t, logger, "AAB02", 10)},
	)
	require.NoError(t, err)
	return farm, logger
}

func TestNewOWTs_Validation(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	owt := fullTurbine(t, logger, "AAB01", 0)

	_, err := NewOWTs(logger, nil, nil, nil)
	require.Error(t, err)
	assert.Equal(t, "at least one turbine is required", err.Error())

	_, err = NewOWTs(logger, nil, []string{"AAB01", "AAB02"}, []*OWT{owt})
	require.Error(t, err)
	assert.Equal(t, "each turbine needs exactly one assembler", err.Error())

	_, err = NewOWTs(logger, nil, []string{"AAB01", "AAB02"}, []*OWT{owt, nil})
	require.Error(t, err)
	assert.Equal(t, `turbine "AAB02" has no assembler`, err.Error())

	_, err = NewOWTs(logger, nil, []string{"AAB01", "AAB01"}, []*OWT{owt, owt})
	require.Error(t, err)
	assert.Equal(t, `duplicate turbine "AAB01"`, err.Error())
}

func TestOWTs_SelectAndBlocks(t *testing.T) {
	t.Parallel()
	farm, _ := newTestFarm(t, nil)

	assert.Equal(t, []string{"AAB01", "AAB02"}, farm.Turbines())

	owt, err := farm.Select("AAB01")
	require.NoError(t, err)
	assert.Equal(t, -10.0, *owt.PileHead())

	_, err = farm.Select("ZZZ99")
	require.Error(t, err)
	assert.Equal(t, `unknown turbine "ZZZ99"`, err.Error())

	second, err := farm.SelectAt(1)
	require.NoError(t, err)
	selected, err := farm.Select("AAB02")
	require.NoError(t, err)
	assert.Same(t, selected, second)

	_, err = farm.SelectAt(2)
	require.Error(t, err)
	assert.Equal(t, "turbine index 2 out of range, 2 turbines are loaded", err.Error())

	assert.Equal(t, 8, farm.TowerBlocks().Len())
	assert.Equal(t, 12, farm.TransitionPieceBlocks().Len())
	assert.Equal(t, 8, farm.MonopileBlocks().Len())
}

func TestOWTs_ProcessStructures(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	farm, _ := newTestFarm(t, clock)

	require.NoError(t, farm.ProcessStructures())

	ledger := farm.Ledger()
	require.Len(t, ledger, 2)
	for i, turbine := range []string{"AAB01", "AAB02"} {
		assert.Equal(t, turbine, ledger[i].Turbine)
		assert.Equal(t, StatusSuccess, ledger[i].Status)
		assert.NoError(t, ledger[i].Err)
		assert.Equal(t, clock.Now(), ledger[i].At)
	}
	assert.Equal(t, []string{"AAB01", "AAB02"}, farm.Succeeded())
	assert.Empty(t, farm.Failed())

	// Each member went through the full pipeline.
	owt, err := farm.Select("AAB02")
	require.NoError(t, err)
	assert.Equal(t, Processed, owt.State())
	assert.Equal(t, 8, owt.FullStructure().Len())
}

func TestOWTs_ProcessStructuresPartialFailure(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	farm, err := NewOWTs(
		logger, nil,
		[]string{"AAB01", "AAB02"},
		[]*OWT{fullTurbine(t, logger, "AAB01", 0), brokenTurbine(t, logger, "AAB02", 10)},
	)
	require.NoError(t, err)

	require.NoError(t, farm.ProcessStructures())

	assert.Equal(t, []string{"AAB01"}, farm.Succeeded())
	failed := farm.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "AAB02", failed[0].Turbine)
	geometryErr := &NonMonotonicGeometryError{}
	require.ErrorAs(t, failed[0].Err, &geometryErr)
	assert.Equal(t, "TW", geometryErr.Category)
	assert.Contains(t, logger.WarnMessages(), `processing of turbine "AAB02" failed: duplicate elevation 15 in "TW" sections, stacking order is ambiguous`)

	// The failing turbine is excluded from every aggregate.
	assert.Equal(t, 1, farm.AllTurbines().Len())
	assert.Equal(t, 3, farm.Monopile().Len())
	assert.Equal(t, 8, farm.FullStructure().Len())
	toes := farm.PileToe()
	require.Len(t, toes, 1)
	require.NotNil(t, toes["AAB01"])
	assert.Equal(t, -60.0, *toes["AAB01"])
}

func TestOWTs_ProcessStructuresAllFail(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	farm, err := NewOWTs(
		logger, nil,
		[]string{"AAB08", "AAB09"},
		[]*OWT{brokenTurbine(t, logger, "AAB08", 0), brokenTurbine(t, logger, "AAB09", 10)},
	)
	require.NoError(t, err)

	err = farm.ProcessStructures()
	require.Error(t, err)
	assert.Equal(t, "processing failed for all 2 turbines", err.Error())
	assert.Empty(t, farm.Succeeded())
	assert.Len(t, farm.Failed(), 2)
}

func TestOWTs_Aggregates(t *testing.T) {
	t.Parallel()
	farm, _ := newTestFarm(t, nil)
	require.NoError(t, farm.ProcessStructures())

	assert.Equal(t, 4, farm.Tower().Len())
	assert.Equal(t, 6, farm.TransitionPiece().Len())
	assert.Equal(t, 6, farm.Monopile().Len())
	assert.Equal(t, 2, farm.RNA().Len())
	assert.Equal(t, 2, farm.Grout().Len())
	assert.Equal(t, 12, farm.Substructure().Len())
	assert.Equal(t, 2, farm.TPSkirt().Len())
	assert.Equal(t, 16, farm.FullStructure().Len())
	assert.True(t, farm.MPDistributedMass().Empty())

	tubular := farm.AllTubularStructures()
	require.Equal(t, 16, tubular.Len())
	assert.Equal(t, "aab01_tw can 1", tubular.String(0, "title"))
	assert.Equal(t, "TW", tubular.String(0, ColSubassembly))
	assert.Equal(t, "aab02_tw can 1", tubular.String(8, "title"))

	lumped := farm.AllLumpedMass()
	require.Equal(t, 8, lumped.Len())
	assert.Equal(t, []string{"title", ColX, ColY, ColZ, ColMass, ColDescription, ColSubassembly}, lumped.Columns())
	assert.Equal(t, "AAB01_TW_RNA", lumped.String(0, "title"))
	mass, _ := lumped.Float64(0, ColMass)
	assert.Equal(t, 350.0, mass)
	assert.Equal(t, "AAB02_TW_RNA", lumped.String(4, "title"))

	distributed := farm.AllDistributedMass()
	require.Equal(t, 4, distributed.Len())
	assert.Equal(t, "aab01_tp j tube", distributed.String(0, "title"))
	assert.Equal(t, "aab01_tp grout", distributed.String(1, "title"))
}

func TestOWTs_AllTurbines(t *testing.T) {
	t.Parallel()
	farm, _ := newTestFarm(t, nil)
	require.NoError(t, farm.ProcessStructures())

	summary := farm.AllTurbines()
	require.Equal(t, 2, summary.Len())
	assert.Equal(t, "AAB01", summary.String(0, "Turbine name"))
	assert.Equal(t, "AAB02", summary.String(1, "Turbine name"))

	depth, _ := summary.Float64(0, "Water depth [m]")
	assert.Equal(t, -25.0, depth)
	toe, _ := summary.Float64(0, "Monopile toe [m]")
	assert.Equal(t, -60.0, toe)
	head, _ := summary.Float64(0, "Monopile head [m]")
	assert.Equal(t, -10.0, head)
	base, _ := summary.Float64(0, "Tower base [m]")
	assert.Equal(t, 15.0, base)

	mpHeight, _ := summary.Float64(0, "Monopile height [m]")
	assert.Equal(t, 50.0, mpHeight)
	mpMass, _ := summary.Float64(0, "Monopile mass [t]")
	assert.Equal(t, 377.47, mpMass)
	tpHeight, _ := summary.Float64(0, "Transition piece height [m]")
	assert.Equal(t, 30.0, tpHeight)
	tpMass, _ := summary.Float64(0, "Transition piece mass [t]")
	assert.Equal(t, 204.8, tpMass)
	twHeight, _ := summary.Float64(0, "Tower height [m]")
	assert.Equal(t, 60.0, twHeight)
	twMass, _ := summary.Float64(0, "Tower mass [t]")
	assert.Equal(t, 167.86, twMass)
	rnaMass, _ := summary.Float64(0, "RNA mass [t]")
	assert.Equal(t, 350.0, rnaMass)
}

func TestOWTs_MixedFarm(t *testing.T) {
	t.Parallel()
	logger := log.NewDebugLogger()
	farm, err := NewOWTs(
		logger, nil,
		[]string{"AAB01", "AAB02"},
		[]*OWT{fullTurbine(t, logger, "AAB01", 0), substructureTurbine(t, logger, "AAB02", 10)},
	)
	require.NoError(t, err)
	require.NoError(t, farm.ProcessStructures())

	assert.Equal(t, []string{"AAB01", "AAB02"}, farm.Succeeded())

	// The turbine without a tower contributes no tower, RNA or full
	// structure rows, its substructure is still aggregated.
	assert.Equal(t, 2, farm.Tower().Len())
	assert.Equal(t, 1, farm.RNA().Len())
	assert.Equal(t, 14, farm.AllTubularStructures().Len())
	assert.Equal(t, 6, farm.AllLumpedMass().Len())
	assert.Equal(t, 12, farm.Substructure().Len())
	assert.Equal(t, 8, farm.FullStructure().Len())

	summary := farm.AllTurbines()
	require.Equal(t, 2, summary.Len())
	assert.False(t, summary.IsNull(1, "Tower base [m]"))
	assert.True(t, summary.IsNull(1, "Tower height [m]"))
	assert.True(t, summary.IsNull(1, "Tower mass [t]"))
	assert.True(t, summary.IsNull(1, "RNA mass [t]"))
	mpMass, _ := summary.Float64(1, "Monopile mass [t]")
	assert.Equal(t, 377.47, mpMass)
}

func TestOWTs_AggregatesBeforeProcessing(t *testing.T) {
	t.Parallel()
	farm, logger := newTestFarm(t, nil)

	assert.True(t, farm.AllTurbines().Empty())
	assert.Empty(t, farm.PileToe())
	assert.Contains(t, logger.WarnMessages(), "aggregates accessed before processing, run ProcessStructures first")
}

func TestOWTs_ReprocessRefreshesAggregates(t *testing.T) {
	t.Parallel()
	clock := clockwork.NewFakeClock()
	farm, _ := newTestFarm(t, clock)

	require.NoError(t, farm.ProcessStructures())
	first := clock.Now()
	require.Equal(t, 2, farm.AllTurbines().Len())

	clock.Advance(time.Hour)
	require.NoError(t, farm.ProcessStructures())

	ledger := farm.Ledger()
	require.Len(t, ledger, 2)
	assert.Equal(t, first.Add(time.Hour), ledger[0].At)
	assert.Equal(t, 2, farm.AllTurbines().Len())
	assert.Equal(t, 6, farm.Monopile().Len())
}
