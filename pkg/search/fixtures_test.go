package search

import (
	"testing"
	"time"

	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestInput(t *testing.T) model.ModelInput {
	t.Helper()
	raw := model.RawModelInput{
		Rooms: []model.Room{
			{Id: 1, Name: "Lab", Capacity: 4},
			{Id: 2, Name: "Classroom", Capacity: 6},
			{Id: 3, Name: "Hall", Capacity: 10},
		},
		Exams: []model.Exam{
			{Id: 1, CourseName: "Algebra", Duration: 120, Students: []uint64{1, 2, 3, 4, 5, 6}, Priority: 3},
			{Id: 2, CourseName: "Biology", Duration: 240, Students: []uint64{4, 5, 6, 7, 8, 9}, Priority: 2},
			{Id: 3, CourseName: "Chemistry", Duration: 120, Students: []uint64{7, 8, 9, 10, 11, 12}, Priority: 4},
			{Id: 4, CourseName: "Drawing", Duration: 60, Students: []uint64{1, 5, 9}, Priority: 1},
		},
	}
	for id := uint64(1); id <= 12; id++ {
		raw.Students = append(raw.Students, model.Student{Id: id, Name: "student"})
	}

	input, err := model.ProcessRawInput(raw, model.ExamPeriod{
		Start:       time.Date(2024, time.June, 3, 0, 0, 0, 0, time.UTC),
		End:         time.Date(2024, time.June, 9, 0, 0, 0, 0, time.UTC),
		SlotsPerDay: 3,
	})
	require.NoError(t, err)
	return input
}

func newTestOptions(t *testing.T, seed int64, workers int) Options {
	return Options{
		Seed:     seed,
		Workers:  workers,
		LogEvery: 5,
		Logger:   zaptest.NewLogger(t),
	}
}

func newTestEvaluator(input model.ModelInput) *model.Evaluator {
	return model.NewEvaluator(model.NewCodec(input, nil))
}

type recordingObserver struct {
	iterations  map[string]int
	evaluations map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{iterations: make(map[string]int), evaluations: make(map[string]int)}
}

func (observer *recordingObserver) ObserveIteration(algorithm string, _ float64, _ time.Duration) {
	observer.iterations[algorithm]++
}

func (observer *recordingObserver) ObserveEvaluations(algorithm string, count int) {
	observer.evaluations[algorithm] += count
}
