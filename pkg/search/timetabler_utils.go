package search

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/limaJavier/examtabling/pkg/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// State shared by every search: the catalogs with their codec, evaluator and candidate generator,
// plus the best solution found so far
type run struct {
	id        uuid.UUID
	algorithm string
	options   Options
	logger    *zap.Logger
	start     time.Time

	input     model.ModelInput
	codec     *model.Codec
	evaluator *model.Evaluator
	generator *model.CandidateGenerator

	best        model.Solution
	bestScore   float64
	foundAt     int
	completed   int
	evaluations int
}

func newRun(algorithm string, input model.ModelInput, options Options) *run {
	id := uuid.New()
	logger := options.Logger.With(zap.String("run", id.String()), zap.String("algorithm", algorithm))

	//** Initialize dependencies
	codec := model.NewCodec(input, logger)
	return &run{
		id:        id,
		algorithm: algorithm,
		options:   options,
		logger:    logger,
		start:     time.Now(),
		input:     input,
		codec:     codec,
		evaluator: model.NewEvaluator(codec),
		generator: model.NewCandidateGenerator(input, logger),
		bestScore: math.Inf(-1),
	}
}

// Keeps the solution when it beats the best so far
func (run *run) offer(solution model.Solution, score float64, iteration int) bool {
	if run.best != nil && score <= run.bestScore {
		return false
	}
	run.best = solution.Clone()
	run.bestScore = score
	run.foundAt = iteration
	return true
}

func (run *run) iterationDone(iteration, evaluations int, started time.Time) {
	run.completed++
	run.evaluations += evaluations
	run.options.Observer.ObserveEvaluations(run.algorithm, evaluations)
	run.options.Observer.ObserveIteration(run.algorithm, run.bestScore, time.Since(started))

	if iteration%run.options.LogEvery == 0 {
		run.logger.Info("search progress",
			zap.Int("iteration", iteration),
			zap.Float64("best", run.bestScore),
			zap.Int("found_at", run.foundAt),
		)
	}
}

func (run *run) result(ctx context.Context) (Result, error) {
	if run.best == nil {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}
		return Result{}, errors.New("search finished without a solution")
	}

	result := Result{
		RunId:       run.id,
		Algorithm:   run.algorithm,
		Solution:    run.best,
		FoundAt:     run.foundAt,
		Iterations:  run.completed,
		Evaluations: run.evaluations,
		Cancelled:   ctx.Err() != nil,
	}

	//** Repair rooms
	if run.options.RepairRooms {
		repaired := model.RepairRooms(run.input, run.best, run.logger)
		if score := run.evaluator.Score(repaired); score > run.bestScore {
			run.logger.Info("room repair improved the schedule", zap.Float64("before", run.bestScore), zap.Float64("after", score))
			result.Solution = repaired
			result.Repaired = true
		}
	}

	result.Score, result.Report = run.evaluator.EvaluateSolution(result.Solution)
	result.Schedule = run.codec.Decode(result.Solution)
	result.Duration = time.Since(run.start)

	counts := result.Report.Counts()
	run.logger.Info("search finished",
		zap.Float64("score", result.Score),
		zap.Int("found_at", result.FoundAt),
		zap.Int("iterations", result.Iterations),
		zap.Int("evaluations", result.Evaluations),
		zap.Int("conflicts", counts.Total()),
		zap.Bool("cancelled", result.Cancelled),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func newRandom(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

// Scores the solutions on at most workers goroutines
func evaluateAll(ctx context.Context, evaluator *model.Evaluator, solutions []model.Solution, workers int) ([]float64, error) {
	scores := make([]float64, len(solutions))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(workers)

	for i, solution := range solutions {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			scores[i] = evaluator.Score(solution)
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}

// Picks an index with probability proportional to its weight. Degenerate weights fall back to a
// uniform choice.
func roulette(weights []float64, rng *rand.Rand) int {
	total := 0.0
	for _, weight := range weights {
		total += weight
	}
	if total <= 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return rng.Intn(len(weights))
	}

	target := rng.Float64() * total
	cumulative := 0.0
	for i, weight := range weights {
		cumulative += weight
		if target < cumulative {
			return i
		}
	}
	return len(weights) - 1
}
