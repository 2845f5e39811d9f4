package geometry

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/owi-lab/go-metadatabase/internal/pkg/client"
	"github.com/owi-lab/go-metadatabase/internal/pkg/frame"
	"github.com/owi-lab/go-metadatabase/internal/pkg/geometry/assembly"
	"github.com/owi-lab/go-metadatabase/internal/pkg/utils/errors"
)

// ProcessorOptions configures the batch assembler build.
type ProcessorOptions struct {
	// ModelDefinition narrows each turbine to one model definition title.
	ModelDefinition string
	// Elevations pins the tower base and pile head of a turbine instead
	// of deriving them from the subassembly positions.
	Elevations map[string]assembly.Elevations
	// Concurrency bounds the per-turbine fetch fan-out, zero or one
	// keeps it sequential.
	Concurrency int
}

// Processor fetches everything the batch assembler needs and builds it:
// the material catalogue once, then per turbine its location and
// subassemblies. A turbine with missing or ambiguous records is skipped
// with a warning as long as at least one other survives, transport
// failures abort the whole build.
func (a *API) Processor(ctx context.Context, turbines []string, opts ProcessorOptions) (*assembly.OWTs, error) {
	if len(turbines) == 0 {
		return nil, errors.New("at least one turbine is required")
	}

	materials, err := a.Materials(ctx)
	if err != nil {
		return nil, err
	}
	if !materials.Exists {
		return nil, errors.New("no materials found in the database")
	}

	members := make([]*assembly.OWT, len(turbines))
	skipped := make([]error, len(turbines))

	group, groupCtx := errgroup.WithContext(ctx)
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	group.SetLimit(concurrency)
	for i, turbine := range turbines {
		group.Go(func() error {
			owt, err := a.assembleTurbine(groupCtx, turbine, materials.Data, opts)
			switch {
			case err == nil:
				members[i] = owt
			case transportFailure(err):
				return errors.PrefixErrorf(err, `turbine "%s"`, turbine)
			default:
				skipped[i] = errors.PrefixErrorf(err, `turbine "%s"`, turbine)
			}
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	survivors := make([]string, 0, len(turbines))
	owts := make([]*assembly.OWT, 0, len(turbines))
	failures := errors.NewMultiError()
	for i, turbine := range turbines {
		if members[i] != nil {
			survivors = append(survivors, turbine)
			owts = append(owts, members[i])
			continue
		}
		failures.Append(skipped[i])
		a.Logger().Warnf("skipping %s", skipped[i])
	}
	if len(survivors) == 0 {
		return nil, errors.PrefixErrorf(failures.ErrorOrNil(), "fetching failed for all %d turbines", len(turbines))
	}

	return assembly.NewOWTs(a.Logger(), nil, survivors, owts)
}

// assembleTurbine fetches the location and subassemblies of one turbine
// and builds its assembler. The constructor fetches the building blocks
// eagerly, so a returned assembler is complete.
func (a *API) assembleTurbine(ctx context.Context, turbine string, materials *frame.Frame, opts ProcessorOptions) (*assembly.OWT, error) {
	location, err := a.locations.AssetLocation(ctx, turbine, "")
	if err != nil {
		return nil, err
	}
	if !location.Exists {
		return nil, errors.Errorf(`no location found for turbine "%s"`, turbine)
	}

	subAssemblies, err := a.SubAssemblies(ctx, SubAssembliesOptions{
		ProjectSite:     location.Data.String(0, "projectsite_name"),
		AssetLocation:   turbine,
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

	var elevations *assembly.Elevations
	if pinned, found := opts.Elevations[turbine]; found {
		elevations = &pinned
	}
	return assembly.NewOWT(ctx, a.Logger(), materials, subAssemblies.Data, location.Data, a, elevations)
}

// transportFailure reports failures that would hit every turbine the
// same way. The fan-out aborts on them instead of skipping the turbine.
func transportFailure(err error) bool {
	var connectionErr *client.ConnectionError
	var requestErr *client.ClientRequestError
	var serverErr *client.ServerError
	var malformedErr *client.MalformedResponseError
	return errors.As(err, &connectionErr) ||
		errors.As(err, &requestErr) ||
		errors.As(err, &serverErr) ||
		errors.As(err, &malformedErr) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded)
}
