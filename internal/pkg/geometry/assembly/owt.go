// Package assembly turns subassembly records into the section tables,
// point masses and stitched support structure of offshore wind
// turbines, one turbine per assembler or a whole farm batched.
package assembly

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/keboola/go-utils/pkg/orderedmap"

	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
	"github.com/owi-lab/go-metadatabase/internal/pkg/geometry/structure"
	"github.com/owi-lab/go-metadatabase/internal/pkg/log"
	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/errors"
)

// Column names of the processed tables. Elevations are in mLAT,
// depths of the pile table in meters below mudline.
const (
	ColElevationFrom = "Elevation from [mLAT]"
	ColElevationTo   = "Elevation to [mLAT]"
	ColHeight        = "Height [m]"
	ColDiameterFrom  = "Diameter from [m]"
	ColDiameterTo    = "Diameter to [m]"
	ColVolume        = "Volume [m3]"
	ColWallThickness = "Wall thickness [mm]"
	ColYoungsModulus = "Youngs modulus [GPa]"
	ColPoissonsRatio = "Poissons ratio [-]"
	ColMass          = "Mass [t]"
	ColRho           = "rho [t/m]"
	ColX             = "X [m]"
	ColY             = "Y [m]"
	ColZ             = "Z [mLAT]"
	ColIxx           = "Ixx [tm2]"
	ColIyy           = "Iyy [tm2]"
	ColIzz           = "Izz [tm2]"
	ColDescription   = "Description"
	ColSubassembly   = "Subassembly"

	ColPileFrom       = "Depth from [m]"
	ColPileTo         = "Depth to [m]"
	ColPileMaterial   = "Pile material"
	ColPileUnitWeight = "Pile material submerged unit weight [kN/m3]"
	ColPileDiameter   = "Diameter [m]"
)

// Structural steel constants of the section tables.
const (
	DefaultYoungsModulus = 210.0 // GPa
	DefaultPoissonsRatio = 0.3
)

// Option selects the categories one processing pass covers.
type Option string

const (
	Full Option = "full"
	TW   Option = "TW"
	TP   Option = "TP"
	MP   Option = "MP"
)

// State reports whether the assembler ran a processing pass.
type State int

const (
	Unprocessed State = iota
	Processed
)

// Elevations pins the two reference levels, mLAT, instead of deriving
// them from the subassembly geometry.
type Elevations struct {
	TowerBase float64
	PileHead  float64
}

// Totals of one processed category, meters and tonnes. The mass covers
// the sections plus every mass item attached to the category.
type Totals struct {
	Height float64
	Mass   float64
}

// OWT assembles the structure of a single offshore wind turbine.
// The raw building block frames are materialized once at construction,
// every processing pass is pure computation on top of them.
type OWT struct {
	logger log.Logger

	materials     *frame.Frame
	subAssemblies map[string]*structure.SubAssembly
	twFrame       *frame.Frame
	tpFrame       *frame.Frame
	mpFrame       *frame.Frame

	towerBase  *float64
	pileHead   *float64
	waterDepth float64
	pileToe    *float64

	rna               *frame.Frame
	tower             *frame.Frame
	transitionPiece   *frame.Frame
	monopile          *frame.Frame
	twLumpedMass      *frame.Frame
	tpLumpedMass      *frame.Frame
	mpLumpedMass      *frame.Frame
	tpDistributedMass *frame.Frame
	mpDistributedMass *frame.Frame
	grout             *frame.Frame

	substructure  *frame.Frame
	tpSkirt       *frame.Frame
	fullStructure *frame.Frame

	state         State
	partAssembled bool
	fullAssembled bool
	totals        map[Option]Totals
}

// NewOWT builds the assembler of one turbine. Each subassembly row
// becomes a SubAssembly keyed by its type and its building blocks are
// fetched through the block source right away. Explicit elevations
// override the derived tower base and pile head.
func NewOWT(ctx context.Context, logger log.Logger, materials, subAssemblies, location *frame.Frame, blocks structure.BlockSource, explicit *Elevations) (*OWT, error) {
	owt := &OWT{
		logger:        logger,
		materials:     materials,
		subAssemblies: make(map[string]*structure.SubAssembly),
	}

	catalogue := structure.MaterialsFromFrame(materials)
	for i := 0; i < subAssemblies.Len(); i++ {
		sa := structure.NewSubAssembly(subAssemblies, i, catalogue, blocks)
		owt.subAssemblies[sa.Type] = sa
	}

	var err error
	if sa, found := owt.subAssemblies[string(TW)]; found {
		if owt.twFrame, err = sa.AsFrame(ctx, false); err != nil {
			return nil, err
		}
	}
	if sa, found := owt.subAssemblies[string(TP)]; found {
		if owt.tpFrame, err = sa.AsFrame(ctx, false); err != nil {
			return nil, err
		}
	}
	if sa, found := owt.subAssemblies[string(MP)]; found {
		if owt.mpFrame, err = sa.AsFrame(ctx, false); err != nil {
			return nil, err
		}
	}

	owt.waterDepth = math.NaN()
	if location != nil && !location.Empty() {
		if v, found := location.Float64(0, "elevation"); found {
			owt.waterDepth = v
		}
	}

	if explicit != nil {
		towerBase, pileHead := explicit.TowerBase, explicit.PileHead
		owt.towerBase, owt.pileHead = &towerBase, &pileHead
		return owt, nil
	}
	if sa, found := owt.subAssemblies[string(TW)]; found {
		v, err := sa.AbsoluteBottom(ctx)
		if err != nil {
			return nil, err
		}
		owt.towerBase = &v
	} else if sa, found := owt.subAssemblies[string(TP)]; found {
		v, err := sa.AbsoluteTop(ctx)
		if err != nil {
			return nil, err
		}
		owt.towerBase = &v
	}
	if sa, found := owt.subAssemblies[string(MP)]; found {
		v, err := sa.AbsoluteTop(ctx)
		if err != nil {
			return nil, err
		}
		owt.pileHead = &v
	}
	return owt, nil
}

func (o *OWT) State() State {
	return o.state
}

// WaterDepth is the asset location elevation, mLAT. NaN when the
// location carries no elevation.
func (o *OWT) WaterDepth() float64 {
	return o.waterDepth
}

func (o *OWT) TowerBase() *float64 {
	return o.towerBase
}

func (o *OWT) PileHead() *float64 {
	return o.pileHead
}

func (o *OWT) Materials() *frame.Frame {
	return o.materials
}

func (o *OWT) SubAssemblies() map[string]*structure.SubAssembly {
	return o.subAssemblies
}

// TowerBlocks returns the raw tower building block frame, nil when the
// turbine has no tower subassembly.
func (o *OWT) TowerBlocks() *frame.Frame {
	return o.twFrame
}

func (o *OWT) TransitionPieceBlocks() *frame.Frame {
	return o.tpFrame
}

func (o *OWT) MonopileBlocks() *frame.Frame {
	return o.mpFrame
}

// ProcessStructure builds the tables of the selected categories,
// replacing any previous version of the same tables. Full requires all
// three subassemblies, the single-category options can be combined by
// calling the method once per present category.
func (o *OWT) ProcessStructure(option Option) error {
	o.totals = nil
	switch option {
	case Full:
		for _, category := range []Option{TW, TP, MP} {
			if err := o.processCategory(category); err != nil {
				return err
			}
		}
	case TW, TP, MP:
		if err := o.processCategory(option); err != nil {
			return err
		}
	default:
		return errors.Errorf(`unknown processing option "%s", use one of full, TW, TP, MP`, option)
	}
	o.state = Processed
	return nil
}

// processCategory computes every table of one category and assigns
// them together, an error never leaves a half-built category behind.
func (o *OWT) processCategory(category Option) error {
	switch category {
	case TW:
		rna, err := o.rnaTable()
		if err != nil {
			return err
		}
		tower, err := o.sectionTable(TW)
		if err != nil {
			return err
		}
		lumped, err := o.lumpedTable(TW)
		if err != nil {
			return err
		}
		o.rna, o.tower, o.twLumpedMass = rna, tower, lumped
	case TP:
		sections, err := o.sectionTable(TP)
		if err != nil {
			return err
		}
		lumped, err := o.lumpedTable(TP)
		if err != nil {
			return err
		}
		distributed, err := o.distributedTable(TP)
		if err != nil {
			return err
		}
		grout, err := o.groutTable()
		if err != nil {
			return err
		}
		o.transitionPiece, o.tpLumpedMass, o.tpDistributedMass, o.grout = sections, lumped, distributed, grout
	case MP:
		sections, err := o.sectionTable(MP)
		if err != nil {
			return err
		}
		lumped, err := o.lumpedTable(MP)
		if err != nil {
			return err
		}
		distributed, err := o.distributedTable(MP)
		if err != nil {
			return err
		}
		o.monopile, o.mpLumpedMass, o.mpDistributedMass = sections, lumped, distributed
	}
	return nil
}

// sectionTable renders the tubular cans of one category as stacked
// sections, ordered bottom-up. The monopile pass also pins the pile
// toe elevation.
func (o *OWT) sectionTable(category Option) (*frame.Frame, error) {
	var source *frame.Frame
	var base float64
	switch category {
	case TW:
		if o.twFrame == nil {
			return nil, errors.New("tower subassembly data not found")
		}
		if o.towerBase == nil {
			return nil, errors.New("tower base elevation is not set")
		}
		source = tubularSections(o.twFrame)
		base = *o.towerBase
	case TP:
		if o.tpFrame == nil {
			return nil, errors.New("transition piece subassembly data not found")
		}
		if o.towerBase == nil {
			return nil, errors.New("tower base elevation is not set")
		}
		source = tubularSections(o.tpFrame)
		base = *o.towerBase - 1e-3*source.Sum("height")
	case MP:
		if o.mpFrame == nil {
			return nil, errors.New("monopile subassembly data not found")
		}
		if o.pileHead == nil {
			return nil, errors.New("pile head elevation is not set")
		}
		source = tubularSections(o.mpFrame)
		toe := *o.pileHead - 1e-3*source.Sum("height")
		rounded := frame.Round(toe, 3)
		o.pileToe = &rounded
		base = toe
	default:
		return nil, errors.Errorf(`unknown section category "%s"`, category)
	}

	out := frame.New(
		"title",
		ColElevationFrom, ColElevationTo, ColHeight,
		ColDiameterFrom, ColDiameterTo, ColVolume, ColWallThickness,
		ColYoungsModulus, ColPoissonsRatio, ColMass, ColRho,
	)
	for i := 0; i < source.Len(); i++ {
		z, _ := source.Float64(i, "z")
		height, _ := source.Float64(i, "height")
		mass, _ := source.Float64(i, "mass")
		volume, _ := source.Float64(i, "volume")
		wall, _ := source.Float64(i, "wall_thickness")
		bottom, top, err := splitDiameter(source.String(i, "OD"))
		if err != nil {
			return nil, errors.PrefixErrorf(err, `building block "%s"`, source.String(i, "title"))
		}

		heightM := 1e-3 * height
		massT := 1e-3 * mass
		row := orderedmap.New()
		row.Set("title", source.String(i, "title"))
		row.Set(ColElevationFrom, frame.Round(base+1e-3*(z+height), 3))
		row.Set(ColElevationTo, frame.Round(base+1e-3*z, 3))
		row.Set(ColHeight, heightM)
		row.Set(ColDiameterFrom, 1e-3*top)
		row.Set(ColDiameterTo, 1e-3*bottom)
		row.Set(ColVolume, volume)
		row.Set(ColWallThickness, wall)
		row.Set(ColYoungsModulus, DefaultYoungsModulus)
		row.Set(ColPoissonsRatio, DefaultPoissonsRatio)
		row.Set(ColMass, massT)
		row.Set(ColRho, massT/heightM)
		out.Append(row)
	}

	out = out.SortByFloat(ColElevationTo, true)
	for i := 1; i < out.Len(); i++ {
		previous, _ := out.Float64(i-1, ColElevationTo)
		current, _ := out.Float64(i, ColElevationTo)
		if previous == current {
			return nil, &NonMonotonicGeometryError{Category: string(category), Elevation: current}
		}
	}
	return out, nil
}

// rnaTable collects the rotor-nacelle assembly items of the tower.
func (o *OWT) rnaTable() (*frame.Frame, error) {
	if o.twFrame == nil {
		return nil, errors.New("tower subassembly data not found")
	}
	if o.towerBase == nil {
		return nil, errors.New("tower base elevation is not set")
	}

	source := o.twFrame
	out := frame.New("title", ColX, ColY, ColZ, ColMass, ColIxx, ColIyy, ColIzz, ColDescription)
	for i := 0; i < source.Len(); i++ {
		if !strings.Contains(source.String(i, "title"), "RNA") {
			continue
		}
		row := orderedmap.New()
		row.Set("title", source.String(i, "title"))
		setScaled(row, ColX, source, i, "x", 1e-3)
		setScaled(row, ColY, source, i, "y", 1e-3)
		if z, found := source.Float64(i, "z"); found {
			row.Set(ColZ, frame.Round(*o.towerBase+1e-3*z, 3))
		} else {
			row.Set(ColZ, nil)
		}
		setScaled(row, ColMass, source, i, "mass", 1e-3)
		inertia := inertiaOf(source, i)
		row.Set(ColIxx, scaledOrNil(inertia.X, 1e-3))
		row.Set(ColIyy, scaledOrNil(inertia.Y, 1e-3))
		row.Set(ColIzz, scaledOrNil(inertia.Z, 1e-3))
		row.Set(ColDescription, source.String(i, "description"))
		out.Append(row)
	}
	return out, nil
}

// lumpedTable collects the point masses of one category. The vertical
// reference differs per category: tower masses hang off the tower
// base, transition piece masses off the subassembly origin and
// monopile masses off the pile toe.
func (o *OWT) lumpedTable(category Option) (*frame.Frame, error) {
	var source *frame.Frame
	var bottom float64
	switch category {
	case TW:
		if o.twFrame == nil {
			return nil, errors.New("tower subassembly data not found")
		}
		if o.towerBase == nil {
			return nil, errors.New("tower base elevation is not set")
		}
		masses := lumpedRows(o.twFrame)
		source = masses.Filter(func(i int) bool {
			return !strings.Contains(masses.String(i, "title"), "RNA")
		})
		bottom = *o.towerBase
	case TP:
		if o.tpFrame == nil {
			return nil, errors.New("transition piece subassembly data not found")
		}
		source = lumpedRows(o.tpFrame)
		bottom = 1e-3 * o.subAssemblies[string(TP)].Position.Z
	case MP:
		if o.mpFrame == nil {
			return nil, errors.New("monopile subassembly data not found")
		}
		if o.pileToe == nil {
			return nil, errors.New("monopile pile toe is not set, process the monopile sections first")
		}
		source = lumpedRows(o.mpFrame)
		bottom = *o.pileToe
	default:
		return nil, errors.Errorf(`unknown mass category "%s"`, category)
	}

	out := frame.New("title", ColX, ColY, ColZ, ColMass, ColDescription)
	for i := 0; i < source.Len(); i++ {
		row := orderedmap.New()
		row.Set("title", source.String(i, "title"))
		setScaled(row, ColX, source, i, "x", 1e-3)
		setScaled(row, ColY, source, i, "y", 1e-3)
		if z, found := source.Float64(i, "z"); found {
			row.Set(ColZ, frame.Round(bottom+1e-3*z, 3))
		} else {
			row.Set(ColZ, nil)
		}
		setScaled(row, ColMass, source, i, "mass", 1e-3)
		row.Set(ColDescription, source.String(i, "description"))
		out.Append(row)
	}
	return out, nil
}

// distributedTable collects the masses spread along a length of the
// transition piece or the monopile.
func (o *OWT) distributedTable(category Option) (*frame.Frame, error) {
	var source *frame.Frame
	var bottom float64
	switch category {
	case TP:
		if o.tpFrame == nil {
			return nil, errors.New("transition piece subassembly data not found")
		}
		if o.towerBase == nil {
			return nil, errors.New("tower base elevation is not set")
		}
		source = distributedRows(o.tpFrame)
		z, _ := o.tpFrame.Float64(0, "z")
		bottom = *o.towerBase - 1e-3*z
	case MP:
		if o.mpFrame == nil {
			return nil, errors.New("monopile subassembly data not found")
		}
		if o.pileToe == nil {
			return nil, errors.New("monopile pile toe is not set, process the monopile sections first")
		}
		source = distributedRows(o.mpFrame)
		bottom = *o.pileToe
	default:
		return nil, errors.Errorf(`unknown mass category "%s"`, category)
	}
	return massDistributionTable(source, bottom), nil
}

// groutTable collects the grout rows of the transition piece, they
// share the vertical reference of the distributed masses.
func (o *OWT) groutTable() (*frame.Frame, error) {
	if o.tpFrame == nil {
		return nil, errors.New("transition piece subassembly data not found")
	}
	if o.towerBase == nil {
		return nil, errors.New("tower base elevation is not set")
	}
	source := groutRows(o.tpFrame)
	z, _ := o.tpFrame.Float64(0, "z")
	bottom := *o.towerBase - 1e-3*z
	return massDistributionTable(source, bottom), nil
}

func massDistributionTable(source *frame.Frame, bottom float64) *frame.Frame {
	out := frame.New("title", ColX, ColY, ColZ, ColHeight, ColMass, ColVolume, ColDescription)
	for i := 0; i < source.Len(); i++ {
		row := orderedmap.New()
		row.Set("title", source.String(i, "title"))
		setScaled(row, ColX, source, i, "x", 1e-3)
		setScaled(row, ColY, source, i, "y", 1e-3)
		if z, found := source.Float64(i, "z"); found {
			row.Set(ColZ, frame.Round(bottom+1e-3*z, 3))
		} else {
			row.Set(ColZ, nil)
		}
		setScaled(row, ColHeight, source, i, "height", 1e-3)
		setScaled(row, ColMass, source, i, "mass", 1e-3)
		if v, found := source.Float64(i, "volume"); found {
			row.Set(ColVolume, v)
		} else {
			row.Set(ColVolume, nil)
		}
		row.Set(ColDescription, source.String(i, "description"))
		out.Append(row)
	}
	return out
}

// CategoryTotals returns the cumulative height and total mass of one
// category, false when the category has not been processed. The values
// are cached until the next processing pass.
func (o *OWT) CategoryTotals(category Option) (Totals, bool) {
	if o.state == Unprocessed {
		o.logger.Warnf(`category totals accessed before processing, run ProcessStructure first`)
		return Totals{}, false
	}
	if t, found := o.totals[category]; found {
		return t, true
	}

	var t Totals
	switch category {
	case TW:
		if o.tower == nil {
			return Totals{}, false
		}
		t = Totals{
			Height: o.tower.Sum(ColHeight),
			Mass:   o.tower.Sum(ColMass) + sumOrZero(o.twLumpedMass, ColMass),
		}
	case TP:
		if o.transitionPiece == nil {
			return Totals{}, false
		}
		t = Totals{
			Height: o.transitionPiece.Sum(ColHeight),
			Mass: o.transitionPiece.Sum(ColMass) +
				sumOrZero(o.tpDistributedMass, ColMass) +
				sumOrZero(o.tpLumpedMass, ColMass) +
				sumOrZero(o.grout, ColMass),
		}
	case MP:
		if o.monopile == nil {
			return Totals{}, false
		}
		t = Totals{
			Height: o.monopile.Sum(ColHeight),
			Mass: o.monopile.Sum(ColMass) +
				sumOrZero(o.mpDistributedMass, ColMass) +
				sumOrZero(o.mpLumpedMass, ColMass),
		}
	default:
		return Totals{}, false
	}

	if o.totals == nil {
		o.totals = make(map[Option]Totals)
	}
	o.totals[category] = t
	return t, true
}

// PileToe is pinned by the monopile processing pass, mLAT.
func (o *OWT) PileToe() *float64 {
	if o.state == Unprocessed {
		o.logger.Warnf(`"pile toe" accessed before processing, run ProcessStructure first`)
		return nil
	}
	return o.pileToe
}

func (o *OWT) RNA() *frame.Frame {
	return o.processedTable("RNA", o.rna)
}

func (o *OWT) Tower() *frame.Frame {
	return o.processedTable("tower", o.tower)
}

func (o *OWT) TransitionPiece() *frame.Frame {
	return o.processedTable("transition piece", o.transitionPiece)
}

func (o *OWT) Monopile() *frame.Frame {
	return o.processedTable("monopile", o.monopile)
}

func (o *OWT) TWLumpedMass() *frame.Frame {
	return o.processedTable("tower lumped masses", o.twLumpedMass)
}

func (o *OWT) TPLumpedMass() *frame.Frame {
	return o.processedTable("transition piece lumped masses", o.tpLumpedMass)
}

func (o *OWT) MPLumpedMass() *frame.Frame {
	return o.processedTable("monopile lumped masses", o.mpLumpedMass)
}

func (o *OWT) TPDistributedMass() *frame.Frame {
	return o.processedTable("transition piece distributed masses", o.tpDistributedMass)
}

func (o *OWT) MPDistributedMass() *frame.Frame {
	return o.processedTable("monopile distributed masses", o.mpDistributedMass)
}

func (o *OWT) Grout() *frame.Frame {
	return o.processedTable("grout", o.grout)
}

func (o *OWT) Substructure() *frame.Frame {
	return o.assembledTable("substructure", o.partAssembled, "AssembleTPMP", o.substructure)
}

func (o *OWT) TPSkirt() *frame.Frame {
	return o.assembledTable("transition piece skirt", o.partAssembled, "AssembleTPMP", o.tpSkirt)
}

func (o *OWT) FullStructure() *frame.Frame {
	return o.assembledTable("full structure", o.fullAssembled, "AssembleFullStructure", o.fullStructure)
}

func (o *OWT) processedTable(name string, f *frame.Frame) *frame.Frame {
	if o.state == Unprocessed {
		o.logger.Warnf(`"%s" accessed before processing, run ProcessStructure first`, name)
		return frame.New()
	}
	if f == nil {
		return frame.New()
	}
	return f
}

func (o *OWT) assembledTable(name string, ready bool, method string, f *frame.Frame) *frame.Frame {
	if !ready {
		o.logger.Warnf(`"%s" accessed before assembly, run %s first`, name, method)
		return frame.New()
	}
	if f == nil {
		return frame.New()
	}
	return f
}

// AssembleTPMP stitches the transition piece onto the monopile. Cans
// starting above the pile head form the upper part, an overlapped can
// is cut at the head. Cans ending below the head become the skirt.
func (o *OWT) AssembleTPMP() error {
	if o.transitionPiece == nil || o.monopile == nil {
		return errors.New("transition piece and monopile sections need to be processed first")
	}
	if o.pileHead == nil {
		return errors.New("pile head elevation is not set")
	}
	head := *o.pileHead

	tp := o.transitionPiece
	above := tp.Filter(func(i int) bool {
		v, found := tp.Float64(i, ColElevationFrom)
		return found && v > head
	})
	if !above.Empty() {
		// A bolted connection starts exactly at the pile head and is
		// stacked as is, an overlapped one is trimmed down to it.
		if v, found := above.Float64(0, ColElevationTo); !found || v != head {
			above = modifyCan(above, head, true)
		} else {
			above = above.Clone()
		}
	}
	o.substructure = frame.Concat(o.monopile.Clone(), above)

	skirt := tp.Filter(func(i int) bool {
		v, found := tp.Float64(i, ColElevationTo)
		return found && v < head
	})
	if !skirt.Empty() {
		skirt = modifyCan(skirt, head, false)
	}
	o.tpSkirt = skirt
	o.partAssembled = true
	return nil
}

// AssembleFullStructure stacks the tower on top of the substructure.
func (o *OWT) AssembleFullStructure() error {
	if o.substructure == nil {
		return errors.New("substructure needs to be assembled first, run AssembleTPMP")
	}
	if o.tower == nil {
		return errors.New("tower sections need to be processed first")
	}
	o.fullStructure = frame.Concat(o.substructure.Clone(), o.tower.Clone())
	o.fullAssembled = true
	return nil
}

// ExtendFrames tags every processed table with its subassembly type
// and assembles the support structure from the categories present.
func (o *OWT) ExtendFrames() error {
	tag := func(f *frame.Frame, category Option) {
		if f == nil {
			return
		}
		for i := 0; i < f.Len(); i++ {
			f.Set(i, ColSubassembly, string(category))
		}
		f.AddColumn(ColSubassembly)
	}
	tag(o.rna, TW)
	tag(o.tower, TW)
	tag(o.twLumpedMass, TW)
	tag(o.transitionPiece, TP)
	tag(o.tpLumpedMass, TP)
	tag(o.tpDistributedMass, TP)
	tag(o.grout, TP)
	tag(o.monopile, MP)
	tag(o.mpLumpedMass, MP)
	tag(o.mpDistributedMass, MP)

	_, hasTW := o.subAssemblies[string(TW)]
	_, hasTP := o.subAssemblies[string(TP)]
	_, hasMP := o.subAssemblies[string(MP)]
	if hasTP && hasMP {
		if err := o.AssembleTPMP(); err != nil {
			return err
		}
	} else {
		o.tpSkirt = nil
	}
	if hasTW && o.substructure != nil {
		if err := o.AssembleFullStructure(); err != nil {
			return err
		}
	} else {
		o.fullStructure = nil
	}
	return nil
}

// MonopileGeometry renders the pile with the mudline as the depth
// reference, the way lateral soil analysis expects it. A NaN cutoff
// keeps the full pile, any other value drops the rows above it and
// pins the first depth to the cutoff.
func (o *OWT) MonopileGeometry(ctx context.Context, cutoffPoint float64) (*frame.Frame, error) {
	sa, found := o.subAssemblies[string(MP)]
	if !found || o.mpFrame == nil {
		return nil, errors.New("monopile subassembly data not found")
	}
	blocks, err := sa.BuildingBlocks(ctx)
	if err != nil {
		return nil, err
	}
	material := blocks[0].Material
	if material == nil {
		return nil, errors.Errorf(`building block "%s": material data is missing`, blocks[0].Title)
	}

	cans := o.mpFrame.Filter(func(i int) bool {
		return o.mpFrame.String(i, "OD") != ""
	})
	penetration := -(1e-3*sa.Position.Z - o.waterDepth)
	out := frame.New(
		"title",
		ColPileFrom, ColPileTo, ColPileMaterial, ColPileUnitWeight,
		ColWallThickness, ColPileDiameter, ColYoungsModulus, ColPoissonsRatio,
	)
	// The topmost can caps the pile head, depth segments start from
	// the second row down.
	for i := 1; i < cans.Len(); i++ {
		previous, _ := cans.Float64(i-1, "z")
		z, _ := cans.Float64(i, "z")
		wall, _ := cans.Float64(i, "wall_thickness")
		bottom, top, err := splitDiameter(cans.String(i, "OD"))
		if err != nil {
			return nil, errors.PrefixErrorf(err, `building block "%s"`, cans.String(i, "title"))
		}
		row := orderedmap.New()
		row.Set("title", cans.String(i, "title"))
		row.Set(ColPileFrom, penetration-1e-3*previous)
		row.Set(ColPileTo, penetration-1e-3*z)
		row.Set(ColPileMaterial, material.Title)
		row.Set(ColPileUnitWeight, 1e-2*material.Density-10)
		row.Set(ColWallThickness, wall)
		row.Set(ColPileDiameter, 1e-3*0.5*(bottom+top))
		row.Set(ColYoungsModulus, material.YoungModulus)
		row.Set(ColPoissonsRatio, material.PoissonRatio)
		out.Append(row)
	}
	if !math.IsNaN(cutoffPoint) {
		out = out.Filter(func(i int) bool {
			v, found := out.Float64(i, ColPileTo)
			return found && v > cutoffPoint
		})
		if !out.Empty() {
			out.Set(0, ColPileFrom, cutoffPoint)
		}
	}
	return out, nil
}

// modifyCan cuts one end of a can stack at the altitude. The cut end
// keeps a linearly interpolated diameter and the derived can
// properties are recomputed.
func modifyCan(f *frame.Frame, altitude float64, atBottom bool) *frame.Frame {
	out := f.Clone()
	i := 0
	if !atBottom {
		i = out.Len() - 1
	}
	elevationFrom, _ := out.Float64(i, ColElevationFrom)
	elevationTo, _ := out.Float64(i, ColElevationTo)
	diameterFrom, _ := out.Float64(i, ColDiameterFrom)
	diameterTo, _ := out.Float64(i, ColDiameterTo)
	diameter := interpolateDiameter(elevationFrom, elevationTo, diameterFrom, diameterTo, altitude)
	if atBottom {
		out.Set(i, ColElevationTo, altitude)
		out.Set(i, ColDiameterTo, diameter)
	} else {
		out.Set(i, ColElevationFrom, altitude)
		out.Set(i, ColDiameterFrom, diameter)
	}
	adjustCan(out, i)
	return out
}

// adjustCan recomputes height, volume, mass and linear density of the
// can after one of its elevations moved. The original steel density is
// recovered from the previous mass and volume.
func adjustCan(f *frame.Frame, i int) {
	mass, _ := f.Float64(i, ColMass)
	volume, _ := f.Float64(i, ColVolume)
	density := mass / volume

	elevationFrom, _ := f.Float64(i, ColElevationFrom)
	elevationTo, _ := f.Float64(i, ColElevationTo)
	diameterFrom, _ := f.Float64(i, ColDiameterFrom)
	diameterTo, _ := f.Float64(i, ColDiameterTo)
	wall, _ := f.Float64(i, ColWallThickness)

	height := elevationFrom - elevationTo
	wallM := 1e-3 * wall
	rBottom := diameterTo / 2
	rTop := diameterFrom / 2
	newVolume := frustum(rBottom, rTop, height) - frustum(rBottom-wallM, rTop-wallM, height)
	newMass := newVolume * density

	f.Set(i, ColHeight, height)
	f.Set(i, ColVolume, newVolume)
	f.Set(i, ColMass, newMass)
	f.Set(i, ColRho, newMass/height)
}

// interpolateDiameter evaluates the can taper at the altitude.
func interpolateDiameter(elevationFrom, elevationTo, diameterFrom, diameterTo, altitude float64) float64 {
	if elevationFrom == elevationTo {
		return diameterTo
	}
	t := (altitude - elevationTo) / (elevationFrom - elevationTo)
	return diameterTo + t*(diameterFrom-diameterTo)
}

// frustum volume of a conical section, radii and height in meters.
func frustum(rBottom, rTop, height float64) float64 {
	return math.Pi / 3 * height * (rBottom*rBottom + rBottom*rTop + rTop*rTop)
}

// splitDiameter parses the "bottom/top" outer diameter notation of the
// building block frames, a single value means a straight can.
func splitDiameter(od string) (bottom, top float64, err error) {
	parts := strings.Split(od, "/")
	bottom, err = strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return 0, 0, errors.Errorf(`malformed outer diameter "%s"`, od)
	}
	top = bottom
	if len(parts) > 1 {
		top, err = strconv.ParseFloat(strings.TrimSpace(parts[len(parts)-1]), 64)
		if err != nil {
			return 0, 0, errors.Errorf(`malformed outer diameter "%s"`, od)
		}
	}
	return bottom, top, nil
}

// tubularSections keeps the steel cans, grout is tracked separately.
func tubularSections(f *frame.Frame) *frame.Frame {
	return f.Filter(func(i int) bool {
		return f.String(i, "OD") != "" && !isGroutTitle(f.String(i, "title"))
	})
}

// lumpedRows keeps the point masses, they carry no diameter and no
// height.
func lumpedRows(f *frame.Frame) *frame.Frame {
	return f.Filter(func(i int) bool {
		return f.String(i, "OD") == "" && f.IsNull(i, "height")
	})
}

// distributedRows keeps the masses spread along a height.
func distributedRows(f *frame.Frame) *frame.Frame {
	return f.Filter(func(i int) bool {
		return f.String(i, "OD") == "" && !f.IsNull(i, "height") && !isGroutTitle(f.String(i, "title"))
	})
}

func groutRows(f *frame.Frame) *frame.Frame {
	return f.Filter(func(i int) bool {
		return isGroutTitle(f.String(i, "title")) && !f.IsNull(i, "height")
	})
}

func isGroutTitle(title string) bool {
	return strings.Contains(strings.ToLower(title), "grout")
}

func setScaled(row *orderedmap.OrderedMap, column string, f *frame.Frame, i int, source string, factor float64) {
	if v, found := f.Float64(i, source); found {
		row.Set(column, factor*v)
	} else {
		row.Set(column, nil)
	}
}

func scaledOrNil(p *float64, factor float64) any {
	if p == nil {
		return nil
	}
	return factor * *p
}

func inertiaOf(f *frame.Frame, i int) structure.Inertia {
	if v, found := f.Value(i, "moment_of_inertia"); found {
		if inertia, ok := v.(structure.Inertia); ok {
			return inertia
		}
	}
	return structure.Inertia{}
}

func sumOrZero(f *frame.Frame, column string) float64 {
	if f == nil {
		return 0
	}
	return f.Sum(column)
}
