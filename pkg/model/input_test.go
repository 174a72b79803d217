package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessRawInput(t *testing.T) {
	t.Run("Valid input", func(t *testing.T) {
		//** Arrange
		raw := newTestRawInput()
		raw.Exams[0].Students = []uint64{1, 2, 2, 3}

		//** Act
		input, err := ProcessRawInput(raw, newTestPeriod())

		//** Assert
		require.NoError(t, err)
		assert.Equal(t, uint64(3), input.Exams[0].Enrollment())
		assert.Len(t, input.Timeslots, 4)
		assert.Equal(t, []string{"2024-06-03", "2024-06-04"}, input.Dates)
		assert.Equal(t, DefaultRestDays, input.RestDays)
		assert.Equal(t, DefaultWeekendDays, input.WeekendDays)
	})

	invalid := map[string]struct {
		mutate func(raw *RawModelInput)
		err    error
	}{
		"No exams":          {func(raw *RawModelInput) { raw.Exams = nil }, ErrEmptyCatalog},
		"Duplicate student": {func(raw *RawModelInput) { raw.Students[1].Id = 1 }, ErrDuplicateId},
		"Duplicate room":    {func(raw *RawModelInput) { raw.Rooms[1].Id = 1 }, ErrDuplicateId},
		"Duplicate exam":    {func(raw *RawModelInput) { raw.Exams[1].Id = 1 }, ErrDuplicateId},
		"Unknown student":   {func(raw *RawModelInput) { raw.Exams[1].Students = []uint64{4, 42} }, ErrUnknownStudent},
		"Empty room":        {func(raw *RawModelInput) { raw.Rooms[0].Capacity = 0 }, ErrInvalidRoom},
	}

	for name, scenario := range invalid {
		t.Run(name, func(t *testing.T) {
			//** Arrange
			raw := newTestRawInput()
			scenario.mutate(&raw)

			//** Act
			_, err := ProcessRawInput(raw, newTestPeriod())

			//** Assert
			assert.ErrorIs(t, err, scenario.err)
		})
	}
}

func TestInputFromJson(t *testing.T) {
	t.Run("Valid file", func(t *testing.T) {
		//** Act
		input, err := InputFromJson("testdata/input.json", newTestPeriod())

		//** Assert
		require.NoError(t, err)
		assert.Len(t, input.Students, 5)
		assert.Equal(t, Room{Id: 2, Name: "Large", Capacity: 5}, input.Rooms[1])
		assert.Equal(t, Exam{Id: 1, CourseName: "Algebra", Duration: 120, Students: []uint64{1, 2, 3}, Priority: 1}, input.Exams[0])
	})

	t.Run("Missing file", func(t *testing.T) {
		//** Act
		_, err := InputFromJson("testdata/missing.json", newTestPeriod())

		//** Assert
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("Malformed file", func(t *testing.T) {
		//** Arrange
		file := filepath.Join(t.TempDir(), "input.json")
		require.NoError(t, os.WriteFile(file, []byte("{students"), 0666))

		//** Act
		_, err := InputFromJson(file, newTestPeriod())

		//** Assert
		assert.Error(t, err)
	})
}
