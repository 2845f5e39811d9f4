package structure

import (
	"context"
	"math"
	"strings"

	"github.com/owi-lab/go-metadatabase/internal/pkg/client"
	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/errors"
)

// AbsolutePositionColumn is the block elevation in the vertical datum, m.
const AbsolutePositionColumn = "absolute_position, m"

// BlockSource fetches the building blocks of one subassembly.
// The geometry API implements it.
type BlockSource interface {
	BuildingBlocksBySubAssembly(ctx context.Context, subAssemblyID int64) (*client.Result, error)
}

// SubAssembly is one major part of the turbine structure, TW tower,
// TP transition piece or MP monopile. Its building blocks are fetched
// once, on first use.
type SubAssembly struct {
	ID          int64
	Title       string
	Description string
	Position    Position
	Type        string
	Source      string
	Asset       int64
	Materials   []Material

	api    BlockSource
	blocks []*BuildingBlock
}

// NewSubAssembly reads one row of the subassemblies listing.
func NewSubAssembly(f *frame.Frame, i int, materials []Material, api BlockSource) *SubAssembly {
	return &SubAssembly{
		ID:          int64FromRow(f, i, "id"),
		Title:       f.String(i, "title"),
		Description: f.String(i, "description"),
		Position:    positionFromRow(f, i),
		Type:        f.String(i, "subassembly_type"),
		Source:      f.String(i, "source"),
		Asset:       int64FromRow(f, i, "asset"),
		Materials:   materials,
		api:         api,
	}
}

// BuildingBlocks returns the blocks of the subassembly, fetching them
// on the first call.
func (s *SubAssembly) BuildingBlocks(ctx context.Context) ([]*BuildingBlock, error) {
	if s.blocks != nil {
		return s.blocks, nil
	}
	if s.api == nil {
		return nil, errors.New("no block source configured")
	}

	result, err := s.api.BuildingBlocksBySubAssembly(ctx, s.ID)
	if err != nil {
		return nil, err
	}
	if !result.Exists {
		return nil, errors.Errorf(`no building blocks found for subassembly "%s"`, s.Title)
	}

	blocks := make([]*BuildingBlock, 0, result.Data.Len())
	for i := 0; i < result.Data.Len(); i++ {
		block, err := NewBuildingBlock(result.Data, i, s.Materials)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	s.blocks = blocks
	return s.blocks, nil
}

// Height in mm, the sum of the tubular sections. A grout sleeve
// overlaps the structure, its height does not extend it.
func (s *SubAssembly) Height(ctx context.Context) (float64, error) {
	blocks, err := s.BuildingBlocks(ctx)
	if err != nil {
		return 0, err
	}

	height := 0.0
	for _, b := range blocks {
		if b.Kind() != TubularSection || strings.Contains(strings.ToLower(b.Title), "grout") {
			continue
		}
		if h := b.Height(); nonZero(h) {
			height += *h
		}
	}
	return height, nil
}

// Mass in kg, the sum over all blocks.
func (s *SubAssembly) Mass(ctx context.Context) (float64, error) {
	blocks, err := s.BuildingBlocks(ctx)
	if err != nil {
		return 0, err
	}

	mass := 0.0
	for _, b := range blocks {
		m, err := b.Mass()
		if err != nil {
			return 0, err
		}
		if nonZero(m) {
			mass += *m
		}
	}
	return mass, nil
}

// AsFrame renders the blocks one row each, sorted top down.
// includeAbsolute adds AbsolutePositionColumn, the block elevation in
// the vertical datum: (z + subassembly z) / 1000.
func (s *SubAssembly) AsFrame(ctx context.Context, includeAbsolute bool) (*frame.Frame, error) {
	blocks, err := s.BuildingBlocks(ctx)
	if err != nil {
		return nil, err
	}

	f := frame.New()
	for _, b := range blocks {
		row, err := b.AsRow()
		if err != nil {
			return nil, err
		}
		f.Append(row)
	}
	f = f.SortByFloat("z", false)

	if includeAbsolute {
		f.AddColumn(AbsolutePositionColumn)
		for i := 0; i < f.Len(); i++ {
			if z, ok := f.Float64(i, "z"); ok {
				f.Set(i, AbsolutePositionColumn, (z+s.Position.Z)/1000)
			}
		}
	}
	return f, nil
}

// AbsoluteBottom is the lowest block elevation, m.
func (s *SubAssembly) AbsoluteBottom(ctx context.Context) (float64, error) {
	f, err := s.AsFrame(ctx, true)
	if err != nil {
		return 0, err
	}
	return floatOrNaN(f, f.Len()-1, AbsolutePositionColumn), nil
}

// AbsoluteTop is the elevation of the topmost fully described tubular
// section plus its height, m, rounded to mm precision.
func (s *SubAssembly) AbsoluteTop(ctx context.Context) (float64, error) {
	f, err := s.AsFrame(ctx, true)
	if err != nil {
		return 0, err
	}

	complete := f.Filter(func(i int) bool {
		for _, column := range f.Columns() {
			if f.IsNull(i, column) {
				return false
			}
		}
		return true
	})
	if complete.Empty() {
		return math.NaN(), nil
	}

	absolute := floatOrNaN(complete, 0, AbsolutePositionColumn)
	height := floatOrNaN(complete, 0, "height")
	return frame.Round(absolute+height/1000, 3), nil
}

func (s *SubAssembly) String() string {
	return s.Type + " subassembly: " + s.Title
}
