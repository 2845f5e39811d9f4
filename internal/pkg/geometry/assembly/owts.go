package assembly

import (
	"math"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/sasha-s/go-deadlock"

	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
	"github.com/owi-lab/go-metadatabase/internal/pkg/log"
	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/errors"
)

// Status of one turbine in the batch ledger.
type Status string

const (
	StatusSuccess Status = "success"
	StatusFailure Status = "failure"
)

// LedgerEntry records the processing outcome of one turbine.
type LedgerEntry struct {
	Turbine string
	Status  Status
	Err     error
	At      time.Time
}

// OWTs batches the assemblers of a whole farm. ProcessStructures runs
// every member and keeps a per-turbine ledger, the farm-wide tables
// are concatenated lazily and cached per processing revision, so a
// re-run never serves stale aggregates.
type OWTs struct {
	logger log.Logger
	clock  clockwork.Clock

	turbines []string
	members  map[string]*OWT

	twBlocks *frame.Frame
	tpBlocks *frame.Frame
	mpBlocks *frame.Frame

	lock          deadlock.Mutex
	revision      int
	ledger        []LedgerEntry
	cache         *aggregates
	cacheRevision int
}

type aggregates struct {
	pileToe map[string]*float64

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
	substructure      *frame.Frame
	tpSkirt           *frame.Frame
	fullStructure     *frame.Frame

	allTubular     *frame.Frame
	allDistributed *frame.Frame
	allLumped      *frame.Frame
	allTurbines    *frame.Frame
}

// NewOWTs pairs turbine names with their assemblers, one to one. The
// order of the turbines is kept in the ledger and every aggregate.
func NewOWTs(logger log.Logger, clock clockwork.Clock, turbines []string, members []*OWT) (*OWTs, error) {
	if len(turbines) == 0 {
		return nil, errors.New("at least one turbine is required")
	}
	if len(turbines) != len(members) {
		return nil, errors.New("each turbine needs exactly one assembler")
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	b := &OWTs{
		logger:   logger,
		clock:    clock,
		turbines: make([]string, len(turbines)),
		members:  make(map[string]*OWT, len(turbines)),
	}
	copy(b.turbines, turbines)

	var tw, tp, mp []*frame.Frame
	for i, turbine := range turbines {
		member := members[i]
		if member == nil {
			return nil, errors.Errorf(`turbine "%s" has no assembler`, turbine)
		}
		if _, dup := b.members[turbine]; dup {
			return nil, errors.Errorf(`duplicate turbine "%s"`, turbine)
		}
		b.members[turbine] = member
		tw = append(tw, member.twFrame)
		tp = append(tp, member.tpFrame)
		mp = append(mp, member.mpFrame)
	}
	b.twBlocks = frame.Concat(tw...)
	b.tpBlocks = frame.Concat(tp...)
	b.mpBlocks = frame.Concat(mp...)
	return b, nil
}

func (b *OWTs) Turbines() []string {
	out := make([]string, len(b.turbines))
	copy(out, b.turbines)
	return out
}

// Select returns the assembler of one turbine by name.
func (b *OWTs) Select(turbine string) (*OWT, error) {
	if owt, found := b.members[turbine]; found {
		return owt, nil
	}
	return nil, errors.Errorf(`unknown turbine "%s"`, turbine)
}

// SelectAt returns the assembler at a position of the turbine list.
func (b *OWTs) SelectAt(index int) (*OWT, error) {
	if index < 0 || index >= len(b.turbines) {
		return nil, errors.Errorf("turbine index %d out of range, %d turbines are loaded", index, len(b.turbines))
	}
	return b.members[b.turbines[index]], nil
}

// TowerBlocks returns the raw tower building blocks of all members.
func (b *OWTs) TowerBlocks() *frame.Frame {
	return orEmpty(b.twBlocks)
}

func (b *OWTs) TransitionPieceBlocks() *frame.Frame {
	return orEmpty(b.tpBlocks)
}

func (b *OWTs) MonopileBlocks() *frame.Frame {
	return orEmpty(b.mpBlocks)
}

// ProcessStructures runs the full pipeline of every member in order.
// A failing turbine does not stop the batch, its outcome lands in the
// ledger and it is excluded from the aggregates. An error is returned
// only when every turbine fails.
func (b *OWTs) ProcessStructures() error {
	b.lock.Lock()
	defer b.lock.Unlock()

	b.revision++
	b.ledger = b.ledger[:0]
	failures := 0
	for _, turbine := range b.turbines {
		err := processMember(b.members[turbine])
		entry := LedgerEntry{Turbine: turbine, Status: StatusSuccess, At: b.clock.Now()}
		if err != nil {
			entry.Status = StatusFailure
			entry.Err = err
			failures++
			b.logger.Warnf(`processing of turbine "%s" failed: %s`, turbine, err)
		}
		b.ledger = append(b.ledger, entry)
	}
	if failures == len(b.turbines) {
		return errors.Errorf("processing failed for all %d turbines", failures)
	}
	return nil
}

// processMember covers all subassemblies the turbine has, either as
// one full pass or category by category, and assembles the structure.
func processMember(owt *OWT) error {
	if len(owt.subAssemblies) == 3 {
		if err := owt.ProcessStructure(Full); err != nil {
			return err
		}
	} else {
		for _, category := range []Option{TW, TP, MP} {
			if _, found := owt.subAssemblies[string(category)]; !found {
				continue
			}
			if err := owt.ProcessStructure(category); err != nil {
				return err
			}
		}
	}
	return owt.ExtendFrames()
}

// Ledger returns a copy of the outcomes of the last batch run.
func (b *OWTs) Ledger() []LedgerEntry {
	b.lock.Lock()
	defer b.lock.Unlock()
	out := make([]LedgerEntry, len(b.ledger))
	copy(out, b.ledger)
	return out
}

// Succeeded lists the turbines processed without an error, in order.
func (b *OWTs) Succeeded() []string {
	b.lock.Lock()
	defer b.lock.Unlock()
	var out []string
	for _, entry := range b.ledger {
		if entry.Status == StatusSuccess {
			out = append(out, entry.Turbine)
		}
	}
	return out
}

// Failed lists the failing ledger entries with their reasons.
func (b *OWTs) Failed() []LedgerEntry {
	b.lock.Lock()
	defer b.lock.Unlock()
	var out []LedgerEntry
	for _, entry := range b.ledger {
		if entry.Status == StatusFailure {
			out = append(out, entry)
		}
	}
	return out
}

// PileToe maps each processed turbine to its pile toe elevation.
func (b *OWTs) PileToe() map[string]*float64 {
	return b.aggregate().pileToe
}

func (b *OWTs) RNA() *frame.Frame {
	return orEmpty(b.aggregate().rna)
}

func (b *OWTs) Tower() *frame.Frame {
	return orEmpty(b.aggregate().tower)
}

func (b *OWTs) TransitionPiece() *frame.Frame {
	return orEmpty(b.aggregate().transitionPiece)
}

func (b *OWTs) Monopile() *frame.Frame {
	return orEmpty(b.aggregate().monopile)
}

func (b *OWTs) TWLumpedMass() *frame.Frame {
	return orEmpty(b.aggregate().twLumpedMass)
}

func (b *OWTs) TPLumpedMass() *frame.Frame {
	return orEmpty(b.aggregate().tpLumpedMass)
}

func (b *OWTs) MPLumpedMass() *frame.Frame {
	return orEmpty(b.aggregate().mpLumpedMass)
}

func (b *OWTs) TPDistributedMass() *frame.Frame {
	return orEmpty(b.aggregate().tpDistributedMass)
}

func (b *OWTs) MPDistributedMass() *frame.Frame {
	return orEmpty(b.aggregate().mpDistributedMass)
}

func (b *OWTs) Grout() *frame.Frame {
	return orEmpty(b.aggregate().grout)
}

func (b *OWTs) Substructure() *frame.Frame {
	return orEmpty(b.aggregate().substructure)
}

func (b *OWTs) TPSkirt() *frame.Frame {
	return orEmpty(b.aggregate().tpSkirt)
}

func (b *OWTs) FullStructure() *frame.Frame {
	return orEmpty(b.aggregate().fullStructure)
}

// AllTubularStructures concatenates the tower, transition piece and
// monopile sections of every processed turbine.
func (b *OWTs) AllTubularStructures() *frame.Frame {
	return orEmpty(b.aggregate().allTubular)
}

// AllDistributedMass concatenates the distributed masses including
// grout of every processed turbine.
func (b *OWTs) AllDistributedMass() *frame.Frame {
	return orEmpty(b.aggregate().allDistributed)
}

// AllLumpedMass concatenates the point masses of every processed
// turbine, the RNA items are pruned to the shared mass columns.
func (b *OWTs) AllLumpedMass() *frame.Frame {
	return orEmpty(b.aggregate().allLumped)
}

// AllTurbines summarizes the farm, one row per processed turbine with
// the reference elevations and per-category heights and masses,
// rounded to two decimals.
func (b *OWTs) AllTurbines() *frame.Frame {
	return orEmpty(b.aggregate().allTurbines)
}

// aggregate returns the farm-wide tables of the current revision,
// building them on first access after a processing run.
func (b *OWTs) aggregate() *aggregates {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.revision == 0 {
		b.logger.Warnf("aggregates accessed before processing, run ProcessStructures first")
		return &aggregates{pileToe: make(map[string]*float64)}
	}
	if b.cache == nil || b.cacheRevision != b.revision {
		b.cache = b.buildAggregates()
		b.cacheRevision = b.revision
	}
	return b.cache
}

func (b *OWTs) buildAggregates() *aggregates {
	succeeded := make(map[string]bool, len(b.ledger))
	for _, entry := range b.ledger {
		if entry.Status == StatusSuccess {
			succeeded[entry.Turbine] = true
		}
	}

	agg := &aggregates{pileToe: make(map[string]*float64)}
	var rna, tower, tp, mp []*frame.Frame
	var twLump, tpLump, mpLump, tpDist, mpDist, grout []*frame.Frame
	var substructure, tpSkirt, fullStructure []*frame.Frame
	var tubular, distributed, lumped []*frame.Frame
	summary := frame.New(
		"Turbine name", "Water depth [m]",
		"Monopile toe [m]", "Monopile head [m]", "Tower base [m]",
		"Monopile height [m]", "Monopile mass [t]",
		"Transition piece height [m]", "Transition piece mass [t]",
		"Tower height [m]", "Tower mass [t]", "RNA mass [t]",
	)

	for _, turbine := range b.turbines {
		if !succeeded[turbine] {
			continue
		}
		owt := b.members[turbine]
		agg.pileToe[turbine] = owt.pileToe

		rna = append(rna, owt.rna)
		tower = append(tower, owt.tower)
		tp = append(tp, owt.transitionPiece)
		mp = append(mp, owt.monopile)
		twLump = append(twLump, owt.twLumpedMass)
		tpLump = append(tpLump, owt.tpLumpedMass)
		mpLump = append(mpLump, owt.mpLumpedMass)
		tpDist = append(tpDist, owt.tpDistributedMass)
		mpDist = append(mpDist, owt.mpDistributedMass)
		grout = append(grout, owt.grout)
		substructure = append(substructure, owt.substructure)
		tpSkirt = append(tpSkirt, owt.tpSkirt)
		fullStructure = append(fullStructure, owt.fullStructure)

		tubular = append(tubular, owt.tower, owt.transitionPiece, owt.monopile)
		distributed = append(distributed, owt.tpDistributedMass, owt.grout, owt.mpDistributedMass)
		lumped = append(lumped, prunedRNA(owt.rna), owt.twLumpedMass, owt.tpLumpedMass, owt.mpLumpedMass)

		summary.Append(summaryRow(turbine, owt))
	}

	agg.rna = concatClone(rna...)
	agg.tower = concatClone(tower...)
	agg.transitionPiece = concatClone(tp...)
	agg.monopile = concatClone(mp...)
	agg.twLumpedMass = concatClone(twLump...)
	agg.tpLumpedMass = concatClone(tpLump...)
	agg.mpLumpedMass = concatClone(mpLump...)
	agg.tpDistributedMass = concatClone(tpDist...)
	agg.mpDistributedMass = concatClone(mpDist...)
	agg.grout = concatClone(grout...)
	agg.substructure = concatClone(substructure...)
	agg.tpSkirt = concatClone(tpSkirt...)
	agg.fullStructure = concatClone(fullStructure...)
	agg.allTubular = concatClone(tubular...)
	agg.allDistributed = concatClone(distributed...)
	agg.allLumped = concatClone(lumped...)

	summary.RoundNumeric(2)
	agg.allTurbines = summary
	return agg
}

func summaryRow(turbine string, owt *OWT) *orderedmap.OrderedMap {
	row := orderedmap.New()
	row.Set("Turbine name", turbine)
	row.Set("Water depth [m]", nanToNil(owt.waterDepth))
	row.Set("Monopile toe [m]", derefOrNil(owt.pileToe))
	row.Set("Monopile head [m]", derefOrNil(owt.pileHead))
	row.Set("Tower base [m]", derefOrNil(owt.towerBase))

	setTotals := func(heightColumn, massColumn string, category Option) {
		if t, found := owt.CategoryTotals(category); found {
			row.Set(heightColumn, t.Height)
			row.Set(massColumn, t.Mass)
		} else {
			row.Set(heightColumn, nil)
			row.Set(massColumn, nil)
		}
	}
	setTotals("Monopile height [m]", "Monopile mass [t]", MP)
	setTotals("Transition piece height [m]", "Transition piece mass [t]", TP)
	setTotals("Tower height [m]", "Tower mass [t]", TW)

	if owt.rna != nil {
		row.Set("RNA mass [t]", owt.rna.Sum(ColMass))
	} else {
		row.Set("RNA mass [t]", nil)
	}
	return row
}

// prunedRNA drops the inertia columns so the RNA rows stack with the
// plain point masses.
func prunedRNA(f *frame.Frame) *frame.Frame {
	if f == nil {
		return nil
	}
	return f.Select("title", ColX, ColY, ColZ, ColMass, ColDescription, ColSubassembly)
}

func concatClone(frames ...*frame.Frame) *frame.Frame {
	out := frame.Concat(frames...)
	if out == nil {
		return nil
	}
	return out.Clone()
}

func orEmpty(f *frame.Frame) *frame.Frame {
	if f == nil {
		return frame.New()
	}
	return f
}

func nanToNil(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func derefOrNil(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}
