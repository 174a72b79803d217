package search

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"slices"
	"time"

	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type AntColonyConfig struct {
	Ants              int     `mapstructure:"ants" validate:"gte=1"`
	Iterations        int     `mapstructure:"iterations" validate:"gte=1"`
	LocalSearchRounds int     `mapstructure:"local_search_rounds" validate:"gte=0"`
	Alpha             float64 `mapstructure:"alpha" validate:"gte=0"` // Pheromone influence
	Beta              float64 `mapstructure:"beta" validate:"gte=0"`  // Heuristic influence
	EvaporationRate   float64 `mapstructure:"evaporation_rate" validate:"gte=0,lte=1"`
	Q                 float64 `mapstructure:"q" validate:"gt=0"` // Deposit scale
	MinPheromone      float64 `mapstructure:"min_pheromone" validate:"gt=0"`
	MaxPheromone      float64 `mapstructure:"max_pheromone" validate:"gtefield=MinPheromone"`
	InitialPheromone  float64 `mapstructure:"initial_pheromone" validate:"gt=0"`
}

func DefaultAntColonyConfig() AntColonyConfig {
	return AntColonyConfig{
		Ants:              20,
		Iterations:        100,
		LocalSearchRounds: 10,
		Alpha:             0.9,
		Beta:              2.8,
		EvaporationRate:   0.5,
		Q:                 100,
		MinPheromone:      0.1,
		MaxPheromone:      10,
		InitialPheromone:  1,
	}
}

const fallbackSlots = 3

type antColonyTimetabler struct {
	config  AntColonyConfig
	options Options
}

func NewAntColonyTimetabler(config AntColonyConfig, options Options) (Timetabler, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid ant colony configuration: %w", err)
	}
	options, err := options.normalize()
	if err != nil {
		return nil, fmt.Errorf("invalid search options: %w", err)
	}
	return &antColonyTimetabler{config: config, options: options}, nil
}

func (timetabler *antColonyTimetabler) Algorithm() string {
	return AntColony
}

// A colony lives for one Build. Ants only read the pheromone table; it is updated once every ant
// of the iteration has finished.
type antColony struct {
	*run
	config    AntColonyConfig
	pheromone *PheromoneTable
}

type tour struct {
	solution    model.Solution
	score       float64
	evaluations int // Evaluator calls made while building and improving the solution
}

func (timetabler *antColonyTimetabler) Build(ctx context.Context, input model.ModelInput) (Result, error) {
	if len(input.Exams) == 0 {
		return Result{}, model.ErrEmptyCatalog
	}

	config := timetabler.config
	colony := &antColony{
		run:       newRun(AntColony, input, timetabler.options),
		config:    config,
		pheromone: NewPheromoneTable(len(input.Exams), len(input.Timeslots), len(input.Rooms), config.InitialPheromone, config.MinPheromone, config.MaxPheromone),
	}
	rng := newRandom(timetabler.options.Seed)

	for iteration := range config.Iterations {
		if ctx.Err() != nil {
			colony.logger.Info("search cancelled", zap.Int("iteration", iteration))
			break
		}
		started := time.Now()

		// Seeds are drawn before the fork so the outcome does not depend on scheduling
		seeds := make([]int64, config.Ants)
		for ant := range seeds {
			seeds[ant] = rng.Int63()
		}

		tours, err := colony.walk(ctx, seeds)
		if err != nil {
			colony.logger.Info("search cancelled", zap.Int("iteration", iteration))
			break
		}

		for _, tour := range tours {
			if colony.offer(tour.solution, tour.score, iteration) {
				colony.logger.Debug("best improved", zap.Int("iteration", iteration), zap.Float64("best", tour.score))
			}
		}
		colony.updatePheromone(tours)
		colony.iterationDone(iteration, lo.SumBy(tours, func(tour tour) int { return tour.evaluations }), started)
	}

	return colony.result(ctx)
}

// Runs every ant of an iteration concurrently
func (colony *antColony) walk(ctx context.Context, seeds []int64) ([]tour, error) {
	tours := make([]tour, len(seeds))
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(colony.options.Workers)

	for ant, seed := range seeds {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}
			rng := newRandom(seed)
			solution, constructed := colony.construct(rng)
			solution, score, improved := colony.localSearch(solution, rng)
			tours[ant] = tour{solution: solution, score: score, evaluations: constructed + improved}
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}
	return tours, nil
}

// Builds a solution exam by exam in catalog order, choosing among the candidate (timeslots, rooms)
// pairs by roulette over pheromone^alpha * heuristic^beta. Also returns the number of partial
// evaluations it made.
func (colony *antColony) construct(rng *rand.Rand) (model.Solution, int) {
	solution := make(model.Solution, 0, len(colony.input.Exams))
	evaluations := 0
	for examIndex := range colony.input.Exams {
		exam := &colony.input.Exams[examIndex]
		timeslotCombinations := colony.generator.TimeslotCombinations(model.RequiredSlots(exam), rng)
		roomCombinations := colony.generator.RoomCombinations(exam.Enrollment())

		candidates := make([]model.Assignment, 0, len(timeslotCombinations)*len(roomCombinations))
		weights := make([]float64, 0, cap(candidates))
		for _, timeslots := range timeslotCombinations {
			for _, rooms := range roomCombinations {
				candidate := model.Assignment{Exam: examIndex, Timeslots: timeslots, Rooms: rooms}
				partial := append(solution[:len(solution):len(solution)], candidate)

				pheromone := colony.pheromone.Mean(examIndex, timeslots, rooms)
				heuristic := 1 / (1 - math.Min(colony.evaluator.PartialScore(partial), -1))
				evaluations++

				candidates = append(candidates, candidate)
				weights = append(weights, math.Pow(pheromone, colony.config.Alpha)*math.Pow(heuristic, colony.config.Beta))
			}
		}

		if len(candidates) == 0 {
			solution = append(solution, colony.randomAssignment(examIndex, rng))
			continue
		}
		solution = append(solution, candidates[roulette(weights, rng)].Clone())
	}
	return solution, evaluations
}

// Random timeslots and up to three random rooms, used when no candidate exists
func (colony *antColony) randomAssignment(examIndex int, rng *rand.Rand) model.Assignment {
	exam := &colony.input.Exams[examIndex]
	timeslots := rng.Perm(len(colony.input.Timeslots))
	timeslots = timeslots[:min(model.RequiredSlots(exam), len(timeslots))]
	slices.Sort(timeslots)

	rooms := rng.Perm(len(colony.input.Rooms))
	return model.Assignment{
		Exam:      examIndex,
		Timeslots: timeslots,
		Rooms:     rooms[:min(fallbackSlots, len(rooms))],
	}
}

type move int

const (
	swapTimeslots move = iota
	changeRooms
	changeTimeslots
)

// Tries a fixed number of random moves, keeping those that strictly improve the score. Also returns
// the number of evaluations it made.
func (colony *antColony) localSearch(solution model.Solution, rng *rand.Rand) (model.Solution, float64, int) {
	best, bestScore := solution, colony.evaluator.Score(solution)
	evaluations := 1
	if len(best) == 0 {
		return best, bestScore, evaluations
	}

	for range colony.config.LocalSearchRounds {
		candidate := slices.Clone(best)
		position := rng.Intn(len(candidate))
		exam := &colony.input.Exams[candidate[position].Exam]

		switch move(rng.Intn(3)) {
		case swapTimeslots:
			if len(candidate) < 2 {
				continue
			}
			// The two exams trade timeslots
			other := (position + 1 + rng.Intn(len(candidate)-1)) % len(candidate)
			first, second := candidate[position], candidate[other]
			candidate[position] = model.Assignment{Exam: first.Exam, Timeslots: second.Timeslots, Rooms: first.Rooms}
			candidate[other] = model.Assignment{Exam: second.Exam, Timeslots: first.Timeslots, Rooms: second.Rooms}
		case changeRooms:
			combinations := colony.generator.RoomCombinations(exam.Enrollment())
			candidate[position] = model.Assignment{
				Exam:      candidate[position].Exam,
				Timeslots: candidate[position].Timeslots,
				Rooms:     combinations[rng.Intn(len(combinations))],
			}
		case changeTimeslots:
			combinations := colony.generator.TimeslotCombinations(model.RequiredSlots(exam), rng)
			if len(combinations) == 0 {
				continue
			}
			candidate[position] = model.Assignment{
				Exam:      candidate[position].Exam,
				Timeslots: combinations[rng.Intn(len(combinations))],
				Rooms:     candidate[position].Rooms,
			}
		}

		evaluations++
		if score := colony.evaluator.Score(candidate); score > bestScore {
			best, bestScore = candidate, score
		}
	}
	return best, bestScore, evaluations
}

// Evaporates every trail, then lets each ant deposit Q / (1 - min(score, -1)) on the triples it used
func (colony *antColony) updatePheromone(tours []tour) {
	colony.pheromone.Evaporate(colony.config.EvaporationRate)
	for _, tour := range tours {
		amount := colony.config.Q / (1 - math.Min(tour.score, -1))
		for _, assignment := range tour.solution {
			colony.pheromone.Deposit(assignment, amount)
		}
	}
}
