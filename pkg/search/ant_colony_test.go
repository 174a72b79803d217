package search

import (
	"context"
	"testing"

	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAntColonyConfig() AntColonyConfig {
	config := DefaultAntColonyConfig()
	config.Ants = 4
	config.Iterations = 5
	config.LocalSearchRounds = 5
	return config
}

func TestAntColonyTimetabler(t *testing.T) {
	t.Run("Builds one assignment per exam", func(t *testing.T) {
		//** Arrange
		input := newTestInput(t)
		observer := newRecordingObserver()
		options := newTestOptions(t, 42, 4)
		options.Observer = observer
		timetabler, err := NewAntColonyTimetabler(newTestAntColonyConfig(), options)
		require.NoError(t, err)

		//** Act
		result, err := timetabler.Build(context.Background(), input)

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, AntColony, result.Algorithm)
		assert.Len(t, result.Solution, len(input.Exams))
		exams := make(map[int]bool)
		for _, assignment := range result.Solution {
			exams[assignment.Exam] = true
			assert.NotEmpty(t, assignment.Timeslots)
			assert.NotEmpty(t, assignment.Rooms)
		}
		assert.Len(t, exams, len(input.Exams))
		assert.Equal(t, newTestEvaluator(input).Score(result.Solution), result.Score)
		assert.Equal(t, 5, result.Iterations)
		assert.Less(t, result.FoundAt, 5)
		assert.Equal(t, 5, observer.iterations[AntColony])
		assert.Equal(t, result.Evaluations, observer.evaluations[AntColony])
		assert.Greater(t, result.Evaluations, 5*4*6) // Construction scores partial schedules as well
	})

	t.Run("Exam longer than any day is reported", func(t *testing.T) {
		//** Arrange
		input := newTestInput(t)
		input.Exams[1].Duration = 900 // Needs 7 slots, days hold 3
		timetabler, err := NewAntColonyTimetabler(newTestAntColonyConfig(), newTestOptions(t, 3, 2))
		require.NoError(t, err)

		//** Act
		result, err := timetabler.Build(context.Background(), input)

		//** Assert
		require.NoError(t, err)
		flagged := lo.Map(result.Report.NonConsecutiveSlots, func(slots model.NonConsecutiveSlots, _ int) uint64 { return slots.ExamId })
		assert.Contains(t, flagged, input.Exams[1].Id)
		assert.False(t, result.Report.Empty())
	})

	t.Run("Same seed gives the same result regardless of workers", func(t *testing.T) {
		//** Arrange
		input := newTestInput(t)
		sequential, err := NewAntColonyTimetabler(newTestAntColonyConfig(), newTestOptions(t, 9, 1))
		require.NoError(t, err)
		parallel, err := NewAntColonyTimetabler(newTestAntColonyConfig(), newTestOptions(t, 9, 8))
		require.NoError(t, err)

		//** Act
		result1, err1 := sequential.Build(context.Background(), input)
		result2, err2 := parallel.Build(context.Background(), input)

		//** Assert
		require.NoError(t, err1)
		require.NoError(t, err2)
		assert.Equal(t, result1.Solution, result2.Solution)
		assert.Equal(t, result1.Score, result2.Score)
	})

	t.Run("Local search never worsens a solution", func(t *testing.T) {
		//** Arrange
		input := newTestInput(t)
		options, err := newTestOptions(t, 5, 1).normalize()
		require.NoError(t, err)
		colony := &antColony{
			run:       newRun(AntColony, input, options),
			config:    newTestAntColonyConfig(),
			pheromone: NewPheromoneTable(len(input.Exams), len(input.Timeslots), len(input.Rooms), 1, 0.1, 10),
		}
		rng := newRandom(5)

		for range 10 {
			//** Act
			solution, constructed := colony.construct(rng)
			initial := colony.evaluator.Score(solution)
			improved, score, evaluations := colony.localSearch(solution, rng)

			//** Assert
			assert.Positive(t, constructed)
			assert.GreaterOrEqual(t, evaluations, 1)
			assert.LessOrEqual(t, evaluations, colony.config.LocalSearchRounds+1)
			assert.GreaterOrEqual(t, score, initial)
			assert.Equal(t, colony.evaluator.Score(improved), score)
		}
	})

	t.Run("Pheromone stays within bounds", func(t *testing.T) {
		//** Arrange
		input := newTestInput(t)
		options, err := newTestOptions(t, 5, 2).normalize()
		require.NoError(t, err)
		config := newTestAntColonyConfig()
		config.Q = 1e6
		colony := &antColony{
			run:       newRun(AntColony, input, options),
			config:    config,
			pheromone: NewPheromoneTable(len(input.Exams), len(input.Timeslots), len(input.Rooms), 1, config.MinPheromone, config.MaxPheromone),
		}

		for i := range 10 {
			//** Act
			tours, err := colony.walk(context.Background(), []int64{int64(i), int64(i + 100)})
			require.NoError(t, err)
			colony.updatePheromone(tours)

			//** Assert
			for _, value := range colony.pheromone.Values() {
				assert.GreaterOrEqual(t, value, config.MinPheromone)
				assert.LessOrEqual(t, value, config.MaxPheromone)
			}
		}
	})

	t.Run("Cancelled before the first iteration", func(t *testing.T) {
		//** Arrange
		input := newTestInput(t)
		timetabler, err := NewAntColonyTimetabler(newTestAntColonyConfig(), newTestOptions(t, 1, 2))
		require.NoError(t, err)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		//** Act
		_, err = timetabler.Build(ctx, input)

		//** Assert
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestNewAntColonyTimetabler(t *testing.T) {
	invalid := map[string]func(config *AntColonyConfig){
		"No ants":              func(config *AntColonyConfig) { config.Ants = 0 },
		"No iterations":        func(config *AntColonyConfig) { config.Iterations = 0 },
		"Negative rounds":      func(config *AntColonyConfig) { config.LocalSearchRounds = -1 },
		"Evaporation over 1":   func(config *AntColonyConfig) { config.EvaporationRate = 2 },
		"Zero deposit":         func(config *AntColonyConfig) { config.Q = 0 },
		"Inverted bounds":      func(config *AntColonyConfig) { config.MaxPheromone = 0.05 },
		"Zero lower bound":     func(config *AntColonyConfig) { config.MinPheromone = 0 },
		"Zero initial deposit": func(config *AntColonyConfig) { config.InitialPheromone = 0 },
	}

	for name, mutate := range invalid {
		t.Run(name, func(t *testing.T) {
			//** Arrange
			config := DefaultAntColonyConfig()
			mutate(&config)

			//** Act
			_, err := NewAntColonyTimetabler(config, DefaultOptions())

			//** Assert
			assert.Error(t, err)
		})
	}
}
