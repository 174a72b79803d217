package model

import (
	"math/rand"
	"testing"
	"time"

	. "github.com/onsi/gomega"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestRequiredSlots(t *testing.T) {
	durations := map[uint64]int{0: 1, 60: 1, 120: 1, 180: 1, 240: 2, 360: 3}

	for duration, expected := range durations {
		assert.Equal(t, expected, RequiredSlots(&Exam{Duration: duration}), "duration %d", duration)
	}
}

func TestTimeslotCombinations(t *testing.T) {
	// Three weeks with three slots per day
	input, err := ProcessRawInput(newTestRawInput(), ExamPeriod{
		Start:       time.Date(2024, time.June, 2, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, time.June, 22, 0, 0, 0, 0, time.UTC),
		SlotsPerDay: 3,
	})
	assert.NoError(t, err)
	generator := NewCandidateGenerator(input, zaptest.NewLogger(t))
	rng := rand.New(rand.NewSource(7))

	t.Run("Single slot exams may take any timeslot", func(t *testing.T) {
		//** Act
		combinations := generator.TimeslotCombinations(1, rng)

		//** Assert
		assert.Len(t, combinations, len(input.Timeslots))
		for position, combination := range combinations {
			assert.Equal(t, []int{position}, combination)
		}
	})

	t.Run("Multi slot exams take consecutive slots on one date", func(t *testing.T) {
		for _, k := range []int{2, 3} {
			//** Act
			combinations := generator.TimeslotCombinations(k, rng)

			//** Assert
			assert.NotEmpty(t, combinations)
			assert.LessOrEqual(t, len(combinations), maxTimeslotCombinations)
			for _, combination := range combinations {
				assert.Len(t, combination, k)
				for i := 1; i < len(combination); i++ {
					previous, current := input.Timeslots[combination[i-1]], input.Timeslots[combination[i]]
					assert.Equal(t, previous.Id+1, current.Id)
					assert.Equal(t, previous.DateKey(), current.DateKey())
				}
			}
		}
	})

	t.Run("Impossible windows fall back to one timeslot", func(t *testing.T) {
		//** Act
		combinations := generator.TimeslotCombinations(4, rng)
		window := generator.RandomWindow(4, rng)

		//** Assert
		assert.Len(t, combinations, 1)
		assert.Len(t, combinations[0], 1)
		assert.Len(t, window, 1)
	})

	t.Run("Random windows are consecutive", func(t *testing.T) {
		for range 20 {
			//** Act
			window := generator.RandomWindow(2, rng)

			//** Assert
			assert.Len(t, window, 2)
			assert.Equal(t, input.Timeslots[window[0]].Id+1, input.Timeslots[window[1]].Id)
			assert.Equal(t, input.Timeslots[window[0]].DateKey(), input.Timeslots[window[1]].DateKey())
		}
	})

	t.Run("No timeslots", func(t *testing.T) {
		//** Arrange
		empty := NewCandidateGenerator(ModelInput{Rooms: input.Rooms}, zaptest.NewLogger(t))

		//** Act & Assert
		assert.Empty(t, empty.TimeslotCombinations(1, rng))
		assert.Empty(t, empty.RandomWindow(2, rng))
	})
}

func TestRoomCombinations(t *testing.T) {
	input := ModelInput{
		Rooms: []Room{
			{Id: 1, Name: "A", Capacity: 10},
			{Id: 2, Name: "B", Capacity: 40},
			{Id: 3, Name: "C", Capacity: 25},
			{Id: 4, Name: "D", Capacity: 30},
			{Id: 5, Name: "E", Capacity: 20},
			{Id: 6, Name: "F", Capacity: 35},
			{Id: 7, Name: "G", Capacity: 15},
		},
	}
	generator := NewCandidateGenerator(input, zaptest.NewLogger(t))

	t.Run("Single rooms first, largest first", func(t *testing.T) {
		//** Act
		combinations := generator.RoomCombinations(12)

		//** Assert
		assert.Equal(t, [][]int{{1}, {5}, {3}, {2}, {4}}, combinations)
	})

	t.Run("Pairs when few single rooms fit", func(t *testing.T) {
		//** Act
		combinations := generator.RoomCombinations(38)

		//** Assert
		g := NewWithT(t)
		g.Expect(combinations[0]).To(Equal([]int{1}))
		g.Expect(len(combinations)).To(BeNumerically("<=", maxRoomCombinations))
		for _, combination := range combinations[1:] {
			g.Expect(combination).To(HaveLen(2))
			g.Expect(input.Rooms[combination[0]].Capacity + input.Rooms[combination[1]].Capacity).To(BeNumerically(">=", 38))
		}
	})

	t.Run("Three largest rooms when nothing else fits", func(t *testing.T) {
		//** Act
		combinations := generator.RoomCombinations(100)

		//** Assert
		assert.Equal(t, [][]int{{1, 5, 3}}, combinations)
	})

	t.Run("No rooms", func(t *testing.T) {
		//** Arrange
		empty := NewCandidateGenerator(ModelInput{}, zaptest.NewLogger(t))

		//** Act
		combinations := empty.RoomCombinations(1)

		//** Assert
		assert.Equal(t, [][]int{{}}, combinations)
	})
}
