// Package structure models the physical pieces of one offshore wind
// turbine: materials, building blocks and the subassemblies built from
// them. Raw dimensions are millimeters and kilograms as served by the
// API, derived quantities convert to meters and tonnes where noted.
package structure

import (
	"math"
	"strconv"

	"github.com/keboola/go-utils/pkg/orderedmap"
	"github.com/spf13/cast"

	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/errors"
)

// DefaultReferenceSystem is the vertical datum used when the record
// does not carry one.
const DefaultReferenceSystem = "LAT"

// Material is one record of the materials catalogue.
type Material struct {
	ID           int64
	Title        string
	Description  string
	Density      float64 // kg/m3
	PoissonRatio float64
	YoungModulus float64
}

// MaterialsFromFrame converts the materials listing into typed records.
func MaterialsFromFrame(f *frame.Frame) []Material {
	out := make([]Material, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		id, _ := f.Value(i, "id")
		density, _ := f.Float64(i, "density")
		poisson, _ := f.Float64(i, "poisson_ratio")
		young, _ := f.Float64(i, "young_modulus")
		out = append(out, Material{
			ID:           cast.ToInt64(id),
			Title:        f.String(i, "title"),
			Description:  f.String(i, "description"),
			Density:      density,
			PoissonRatio: poisson,
			YoungModulus: young,
		})
	}
	return out
}

// Position places a component relative to its parent, coordinates in
// mm, rotations in degrees. A missing coordinate is NaN.
type Position struct {
	X, Y, Z            float64
	Alpha, Beta, Gamma float64
	ReferenceSystem    string
}

// Inertia holds the moment of inertia of a lumped mass around the
// three axes, kg*m2. Nil components were not reported.
type Inertia struct {
	X, Y, Z *float64
}

// BlockKind is inferred from which defining field the record carries,
// checked in a fixed order: a tubular section has an outer diameter,
// a lumped mass has a point mass, a distributed mass has a mass per
// unit length.
type BlockKind int

const (
	TubularSection BlockKind = iota
	LumpedMass
	DistributedMass
)

func (k BlockKind) String() string {
	switch k {
	case TubularSection:
		return "tubular_section"
	case LumpedMass:
		return "lumped_mass"
	case DistributedMass:
		return "distributed_mass"
	default:
		return "unknown"
	}
}

// BuildingBlock is one can, mass or appurtenance of a subassembly.
type BuildingBlock struct {
	ID          int64
	Title       string
	Description string
	Position    Position
	Material    *Material

	kind               BlockKind
	height             *float64
	mass               *float64
	massDistribution   *float64
	volumeDistribution *float64
	bottomOD           *float64
	topOD              *float64
	wallThickness      *float64
	inertia            Inertia
}

// NewBuildingBlock reads one row of the building blocks listing.
// The material reference is resolved against the given catalogue.
func NewBuildingBlock(f *frame.Frame, i int, materials []Material) (*BuildingBlock, error) {
	b := &BuildingBlock{
		ID:                 int64FromRow(f, i, "id"),
		Title:              f.String(i, "title"),
		Description:        f.String(i, "description"),
		Position:           positionFromRow(f, i),
		height:             nullableFloat(f, i, "height"),
		mass:               nullableFloat(f, i, "mass"),
		massDistribution:   nullableFloat(f, i, "mass_distribution"),
		volumeDistribution: nullableFloat(f, i, "volume_distribution"),
		bottomOD:           nullableFloat(f, i, "bottom_outer_diameter"),
		topOD:              nullableFloat(f, i, "top_outer_diameter"),
		wallThickness:      nullableFloat(f, i, "wall_thickness"),
		inertia: Inertia{
			X: nullableFloat(f, i, "moment_of_inertia_x"),
			Y: nullableFloat(f, i, "moment_of_inertia_y"),
			Z: nullableFloat(f, i, "moment_of_inertia_z"),
		},
	}

	switch {
	case b.bottomOD != nil:
		b.kind = TubularSection
	case b.mass != nil:
		b.kind = LumpedMass
	case b.massDistribution != nil:
		b.kind = DistributedMass
	default:
		return nil, errors.Errorf(`building block "%s" has no supported type`, b.Title)
	}

	if materialID := nullableFloat(f, i, "material"); materialID != nil {
		for j := range materials {
			if materials[j].ID == int64(*materialID) {
				b.Material = &materials[j]
				break
			}
		}
	}
	return b, nil
}

func (b *BuildingBlock) Kind() BlockKind {
	return b.kind
}

// Height in mm, as reported. Nil for records without one.
func (b *BuildingBlock) Height() *float64 {
	return b.height
}

// WallThickness in mm, tubular sections only.
func (b *BuildingBlock) WallThickness() *float64 {
	if b.kind != TubularSection {
		return nil
	}
	return b.wallThickness
}

// BottomOuterDiameter in mm, tubular sections only.
func (b *BuildingBlock) BottomOuterDiameter() *float64 {
	if b.kind != TubularSection {
		return nil
	}
	return b.bottomOD
}

// TopOuterDiameter in mm, tubular sections only.
func (b *BuildingBlock) TopOuterDiameter() *float64 {
	if b.kind != TubularSection {
		return nil
	}
	return b.topOD
}

// DiameterString renders the outer diameter in mm, "bottom/top" for a
// tapered section, a single value for a straight one, empty when the
// record has no diameters.
func (b *BuildingBlock) DiameterString() string {
	bottom, top := b.BottomOuterDiameter(), b.TopOuterDiameter()
	if !nonZero(bottom) || !nonZero(top) {
		return ""
	}
	if *bottom != *top {
		return strconv.FormatInt(int64(math.Round(*bottom)), 10) + "/" + strconv.FormatInt(int64(math.Round(*top)), 10)
	}
	return strconv.FormatInt(int64(math.Round(*bottom)), 10)
}

// Volume in m3. A tubular section is the shell between two conical
// frustums, a distributed mass integrates its per-length volume over
// the height. Lumped masses have no volume.
func (b *BuildingBlock) Volume() (*float64, error) {
	switch b.kind {
	case TubularSection:
		if !nonZero(b.height) {
			return nil, errors.Errorf(`building block "%s": height data is missing`, b.Title)
		}
		if b.topOD == nil || b.wallThickness == nil {
			return nil, errors.Errorf(`building block "%s": diameter or wall thickness data is missing`, b.Title)
		}
		outer := frustumVolume(*b.bottomOD/2, *b.topOD/2, *b.height)
		inner := frustumVolume(*b.bottomOD/2-*b.wallThickness, *b.topOD/2-*b.wallThickness, *b.height)
		v := (outer - inner) / 1e9
		return &v, nil
	case DistributedMass:
		if !nonZero(b.height) {
			return nil, errors.Errorf(`building block "%s": height data is missing`, b.Title)
		}
		v := math.Round(*b.volumeDistribution * *b.height / 1000)
		return &v, nil
	default:
		return nil, nil
	}
}

// Mass in kg: the raw value for a lumped mass, per-length mass times
// height for a distributed one, volume times material density for a
// tubular section, rounded to one decimal as the upstream service
// reports it.
func (b *BuildingBlock) Mass() (*float64, error) {
	switch b.kind {
	case LumpedMass:
		return b.mass, nil
	case DistributedMass:
		if !nonZero(b.height) {
			return nil, errors.Errorf(`building block "%s": height data is missing`, b.Title)
		}
		m := math.Round(*b.massDistribution * *b.height / 1000)
		return &m, nil
	default:
		if b.Material == nil {
			return nil, errors.Errorf(`building block "%s": material data is missing`, b.Title)
		}
		volume, err := b.Volume()
		if err != nil {
			return nil, err
		}
		if b.Material.Density == 0 || !nonZero(volume) {
			return nil, errors.Errorf(`building block "%s": density or volume data is missing`, b.Title)
		}
		m := frame.Round(*volume*b.Material.Density, 1)
		return &m, nil
	}
}

// MomentOfInertia is only reported for lumped masses.
func (b *BuildingBlock) MomentOfInertia() Inertia {
	if b.kind != LumpedMass {
		return Inertia{}
	}
	return b.inertia
}

// AsRow flattens the block into one frame row.
func (b *BuildingBlock) AsRow() (*orderedmap.OrderedMap, error) {
	volume, err := b.Volume()
	if err != nil {
		return nil, err
	}
	mass, err := b.Mass()
	if err != nil {
		return nil, err
	}

	row := orderedmap.New()
	row.Set("title", b.Title)
	row.Set("x", b.Position.X)
	row.Set("y", b.Position.Y)
	row.Set("z", b.Position.Z)
	row.Set("OD", b.DiameterString())
	row.Set("wall_thickness", deref(b.WallThickness()))
	row.Set("height", deref(b.Height()))
	row.Set("volume", deref(volume))
	row.Set("mass", deref(mass))
	row.Set("moment_of_inertia", b.MomentOfInertia())
	row.Set("description", b.Description)
	return row, nil
}

func (b *BuildingBlock) String() string {
	return b.Title + " (" + b.kind.String() + ")"
}

// frustumVolume of a conical frustum, radii and height in mm, mm3.
func frustumVolume(rBottom, rTop, height float64) float64 {
	return math.Pi * height / 3 * (rBottom*rBottom + rBottom*rTop + rTop*rTop)
}

func nonZero(p *float64) bool {
	return p != nil && *p != 0
}

func deref(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func nullableFloat(f *frame.Frame, i int, column string) *float64 {
	if v, ok := f.Float64(i, column); ok {
		return &v
	}
	return nil
}

func floatOrNaN(f *frame.Frame, i int, column string) float64 {
	if v, ok := f.Float64(i, column); ok {
		return v
	}
	return math.NaN()
}

func floatOrZero(f *frame.Frame, i int, column string) float64 {
	if v, ok := f.Float64(i, column); ok {
		return v
	}
	return 0
}

func int64FromRow(f *frame.Frame, i int, column string) int64 {
	v, _ := f.Value(i, column)
	return cast.ToInt64(v)
}

func positionFromRow(f *frame.Frame, i int) Position {
	ref := f.String(i, "vertical_position_reference_system")
	if ref == "" {
		ref = DefaultReferenceSystem
	}
	return Position{
		X:               floatOrNaN(f, i, "x_position"),
		Y:               floatOrNaN(f, i, "y_position"),
		Z:               floatOrNaN(f, i, "z_position"),
		Alpha:           floatOrZero(f, i, "alpha"),
		Beta:            floatOrZero(f, i, "beta"),
		Gamma:           floatOrZero(f, i, "gamma"),
		ReferenceSystem: ref,
	}
}
