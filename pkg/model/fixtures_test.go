package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// Two exams (3 and 2 students) with disjoint students, a small and a large room, and two weekdays
// with two slots each
func newTestRawInput() RawModelInput {
	return RawModelInput{
		Students: []Student{{1, "Ana"}, {2, "Bruno"}, {3, "Carla"}, {4, "Dario"}, {5, "Elena"}},
		Rooms: []Room{
			{Id: 1, Name: "Small", Capacity: 2},
			{Id: 2, Name: "Large", Capacity: 5},
		},
		Exams: []Exam{
			{Id: 1, CourseName: "Algebra", Duration: 120, Students: []uint64{1, 2, 3}, Priority: 1},
			{Id: 2, CourseName: "Biology", Duration: 120, Students: []uint64{4, 5}, Priority: 2},
		},
	}
}

func newTestPeriod() ExamPeriod {
	return ExamPeriod{
		Start:       time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC), // Monday
		End:         time.Date(2024, time.June, 4, 0, 0, 0, 0, time.UTC),
		SlotsPerDay: 2,
	}
}

func newTestInput(t *testing.T) ModelInput {
	t.Helper()
	input, err := ProcessRawInput(newTestRawInput(), newTestPeriod())
	require.NoError(t, err)
	return input
}

func newTestEvaluator(input ModelInput) *Evaluator {
	return NewEvaluator(NewCodec(input, nil))
}
