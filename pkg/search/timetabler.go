package search

import (
	"context"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/limaJavier/examtabling/pkg/model"
	"go.uber.org/zap"
)

const (
	Genetic   = "genetic"
	AntColony = "ant-colony"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type Timetabler interface {
	// Searches for the best schedule of the input's exams. Cancelling the context stops the search
	// after the current iteration and returns the best schedule found so far.
	Build(ctx context.Context, input model.ModelInput) (Result, error)

	Algorithm() string
}

// Observer receives search progress, e.g. to export metrics
type Observer interface {
	ObserveIteration(algorithm string, best float64, duration time.Duration)
	ObserveEvaluations(algorithm string, count int)
}

type Options struct {
	Seed        int64
	Workers     int `validate:"gte=1"`
	LogEvery    int `validate:"gte=1"` // Iterations between progress logs
	RepairRooms bool
	Logger      *zap.Logger `validate:"-"`
	Observer    Observer    `validate:"-"`
}

func DefaultOptions() Options {
	return Options{
		Seed:     1,
		Workers:  runtime.NumCPU(),
		LogEvery: 10,
	}
}

type Result struct {
	RunId       uuid.UUID
	Algorithm   string
	Solution    model.Solution
	Schedule    []model.DecodedAssignment
	Score       float64
	Report      model.ConflictReport
	FoundAt     int // Generation or iteration that produced the best solution
	Iterations  int // Completed generations or iterations
	Evaluations int
	Duration    time.Duration
	Cancelled   bool
	Repaired    bool // Room repair improved the best solution
}

type nopObserver struct{}

func (nopObserver) ObserveIteration(string, float64, time.Duration) {}
func (nopObserver) ObserveEvaluations(string, int)                 {}

func (options Options) normalize() (Options, error) {
	if err := validate.Struct(options); err != nil {
		return Options{}, err
	}
	if options.Logger == nil {
		options.Logger = zap.NewNop()
	}
	if options.Observer == nil {
		options.Observer = nopObserver{}
	}
	return options, nil
}
