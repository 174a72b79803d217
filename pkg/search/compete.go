package search

import (
	"context"
	"fmt"

	"github.com/limaJavier/examtabling/pkg/model"
	"golang.org/x/sync/errgroup"
)

// Compete runs the timetablers concurrently on the same input and returns their results in the
// given order together with the index of the best scoring one. Ties go to the earlier timetabler.
func Compete(ctx context.Context, input model.ModelInput, timetablers ...Timetabler) ([]Result, int, error) {
	if len(timetablers) == 0 {
		return nil, -1, fmt.Errorf("nothing to compete")
	}

	results := make([]Result, len(timetablers))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, timetabler := range timetablers {
		group.Go(func() error {
			result, err := timetabler.Build(groupCtx, input)
			if err != nil {
				return fmt.Errorf("%v: %w", timetabler.Algorithm(), err)
			}
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, -1, err
	}

	winner := 0
	for i, result := range results {
		if result.Score > results[winner].Score {
			winner = i
		}
	}
	return results, winner, nil
}
