package search

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/limaJavier/examtabling/pkg/model"
	"go.uber.org/zap"
)

type GeneticConfig struct {
	PopulationSize int     `mapstructure:"population_size" validate:"gte=2"`
	Generations    int     `mapstructure:"generations" validate:"gte=1"`
	MutationRate   float64 `mapstructure:"mutation_rate" validate:"gte=0,lte=1"`
	TargetScore    float64 `mapstructure:"target_score"` // Stop once the best score reaches it
	TournamentSize int     `mapstructure:"tournament_size" validate:"gte=1"`
}

func DefaultGeneticConfig() GeneticConfig {
	return GeneticConfig{
		PopulationSize: 50,
		Generations:    100,
		MutationRate:   0.1,
		TargetScore:    0,
		TournamentSize: 3,
	}
}

type geneticTimetabler struct {
	config  GeneticConfig
	options Options
}

func NewGeneticTimetabler(config GeneticConfig, options Options) (Timetabler, error) {
	if err := validate.Struct(config); err != nil {
		return nil, fmt.Errorf("invalid genetic configuration: %w", err)
	}
	options, err := options.normalize()
	if err != nil {
		return nil, fmt.Errorf("invalid search options: %w", err)
	}
	return &geneticTimetabler{config: config, options: options}, nil
}

func (timetabler *geneticTimetabler) Algorithm() string {
	return Genetic
}

func (timetabler *geneticTimetabler) Build(ctx context.Context, input model.ModelInput) (Result, error) {
	if len(input.Exams) == 0 {
		return Result{}, model.ErrEmptyCatalog
	}

	run := newRun(Genetic, input, timetabler.options)
	rng := newRandom(timetabler.options.Seed)
	mutator := mutator{timeslots: len(input.Timeslots), rooms: len(input.Rooms)}

	population := make([]model.Solution, timetabler.config.PopulationSize)
	for i := range population {
		population[i] = randomSolution(run, rng)
	}

	for generation := range timetabler.config.Generations {
		if ctx.Err() != nil {
			run.logger.Info("search cancelled", zap.Int("generation", generation))
			break
		}
		started := time.Now()

		scores, err := evaluateAll(ctx, run.evaluator, population, timetabler.options.Workers)
		if err != nil {
			run.logger.Info("search cancelled", zap.Int("generation", generation))
			break
		}

		for i, solution := range population {
			if run.offer(solution, scores[i], generation) {
				run.logger.Debug("best improved", zap.Int("generation", generation), zap.Float64("best", scores[i]))
			}
		}
		run.iterationDone(generation, len(population), started)

		if run.bestScore >= timetabler.config.TargetScore {
			run.logger.Info("target score reached", zap.Int("generation", generation), zap.Float64("best", run.bestScore))
			break
		}

		population = timetabler.nextGeneration(population, scores, mutator, rng)
	}

	return run.result(ctx)
}

// Breeds a population of the same size through tournament selection, two-point crossover and mutation
func (timetabler *geneticTimetabler) nextGeneration(population []model.Solution, scores []float64, mutator mutator, rng *rand.Rand) []model.Solution {
	next := make([]model.Solution, 0, len(population)+1)
	for len(next) < len(population) {
		parent1 := tournament(population, scores, timetabler.config.TournamentSize, rng)
		parent2 := tournament(population, scores, timetabler.config.TournamentSize, rng)

		child1, child2 := crossover(parent1, parent2, rng)
		if rng.Float64() < timetabler.config.MutationRate {
			child1 = mutator.mutate(child1, rng)
		}
		if rng.Float64() < timetabler.config.MutationRate {
			child2 = mutator.mutate(child2, rng)
		}

		next = append(next, child1, child2)
	}
	return next[:len(population)]
}

// One assignment per exam: a random window of the slots the exam needs and randomly ordered rooms
// until its enrollment is seated
func randomSolution(run *run, rng *rand.Rand) model.Solution {
	solution := make(model.Solution, 0, len(run.input.Exams))
	for examIndex := range run.input.Exams {
		exam := &run.input.Exams[examIndex]

		rooms := make([]int, 0)
		capacity := uint64(0)
		for _, room := range rng.Perm(len(run.input.Rooms)) {
			rooms = append(rooms, room)
			if capacity += run.input.Rooms[room].Capacity; capacity >= exam.Enrollment() {
				break
			}
		}

		solution = append(solution, model.Assignment{
			Exam:      examIndex,
			Timeslots: run.generator.RandomWindow(model.RequiredSlots(exam), rng),
			Rooms:     rooms,
		})
	}
	return solution
}
