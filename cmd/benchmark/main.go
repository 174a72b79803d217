package main

import (
	"cmp"
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/examtabling/internal/config"
	"github.com/limaJavier/examtabling/internal/csvio"
	"github.com/limaJavier/examtabling/internal/logging"
	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/limaJavier/examtabling/pkg/search"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const resultsFile = "benchmark_results.csv"

type BenchmarkResult struct {
	Algorithm   string  `csv:"algorithm"`
	Seed        int64   `csv:"seed"`
	Score       float64 `csv:"score"`
	Conflicts   int     `csv:"conflicts"`
	Student     int     `csv:"student_conflicts"`
	Room        int     `csv:"room_conflicts"`
	Capacity    int     `csv:"capacity_issues"`
	FoundAt     int     `csv:"found_at"`
	Iterations  int     `csv:"iterations"`
	Evaluations int     `csv:"evaluations"`
	Duration    int64   `csv:"duration_ms"`
}

var (
	configPath string
	seedsFlag  string
	parallel   int
	outPath    string

	rootCmd = &cobra.Command{
		Use:          "benchmark",
		Short:        "Runs both algorithms over a range of seeds and writes the results as CSV",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE:         runBenchmark,
	}
)

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file")
	rootCmd.Flags().StringVar(&seedsFlag, "seeds", "1-5", "Seeds to run, e.g. \"1-5\" or \"1,7,9-12\"")
	rootCmd.Flags().IntVar(&parallel, "parallel", 2, "Searches running at the same time")
	rootCmd.Flags().StringVarP(&outPath, "out", "o", resultsFile, "Path to the results CSV")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("benchmark: %v", err)
	}
}

func runBenchmark(_ *cobra.Command, _ []string) error {
	seeds, err := parseSeeds(seedsFlag)
	if err != nil {
		return err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := config.Validate(cfg); err != nil {
		return err
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}

	period, err := cfg.Period.ExamPeriod()
	if err != nil {
		return err
	}
	var input model.ModelInput
	if cfg.Data.Input != "" {
		input, err = model.InputFromJson(cfg.Data.Input, period)
	} else {
		input, err = csvio.LoadInput(csvio.Paths{Students: cfg.Data.Students, Rooms: cfg.Data.Rooms, Exams: cfg.Data.Exams}, period)
	}
	if err != nil {
		return fmt.Errorf("cannot load input: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := benchmark(ctx, cfg, input, seeds, logger)
	if err != nil {
		return err
	}
	return toCsv(results, outPath)
}

// Runs every (algorithm, seed) pair, at most parallel at a time. Each search is single-threaded so
// runs do not compete for workers.
func benchmark(ctx context.Context, cfg config.Config, input model.ModelInput, seeds []int64, logger *zap.Logger) ([]BenchmarkResult, error) {
	results := make([]BenchmarkResult, 0, 2*len(seeds))
	var mutex sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(max(parallel, 1))
	for _, seed := range seeds {
		for _, algorithm := range []string{search.Genetic, search.AntColony} {
			group.Go(func() error {
				options := cfg.SearchOptions()
				options.Seed = seed
				options.Workers = 1
				options.Logger = logger.With(zap.Int64("seed", seed))

				timetabler, err := newTimetabler(algorithm, cfg, options)
				if err != nil {
					return err
				}
				logger.Info("benchmarking", zap.String("algorithm", algorithm), zap.Int64("seed", seed))
				result, err := timetabler.Build(groupCtx, input)
				if err != nil {
					return fmt.Errorf("%v with seed %v: %w", algorithm, seed, err)
				}

				mutex.Lock()
				defer mutex.Unlock()
				results = append(results, toBenchmarkResult(result, seed))
				return nil
			})
		}
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	slices.SortFunc(results, func(a, b BenchmarkResult) int {
		if c := strings.Compare(a.Algorithm, b.Algorithm); c != 0 {
			return c
		}
		return cmp.Compare(a.Seed, b.Seed)
	})
	return results, nil
}

func newTimetabler(algorithm string, cfg config.Config, options search.Options) (search.Timetabler, error) {
	if algorithm == search.Genetic {
		return search.NewGeneticTimetabler(cfg.Genetic, options)
	}
	return search.NewAntColonyTimetabler(cfg.AntColony, options)
}

func toBenchmarkResult(result search.Result, seed int64) BenchmarkResult {
	counts := result.Report.Counts()
	return BenchmarkResult{
		Algorithm:   result.Algorithm,
		Seed:        seed,
		Score:       result.Score,
		Conflicts:   counts.Total(),
		Student:     counts.StudentConflicts,
		Room:        counts.RoomConflicts,
		Capacity:    counts.CapacityIssues,
		FoundAt:     result.FoundAt,
		Iterations:  result.Iterations,
		Evaluations: result.Evaluations,
		Duration:    result.Duration.Milliseconds(),
	}
}

func toCsv(results []BenchmarkResult, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create CSV file: %w", err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&results, file); err != nil {
		return fmt.Errorf("cannot write CSV records: %w", err)
	}
	return nil
}

// Parses comma separated seeds and inclusive ranges, e.g. "1,4-6" is 1, 4, 5 and 6. Duplicates are
// dropped and the order of first appearance is kept.
func parseSeeds(seedsStr string) ([]int64, error) {
	seeds := make([]int64, 0)
	for _, part := range strings.Split(seedsStr, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		bounds := strings.SplitN(part, "-", 2)
		first, err := strconv.ParseInt(strings.TrimSpace(bounds[0]), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q", part)
		}
		last := first
		if len(bounds) == 2 {
			if last, err = strconv.ParseInt(strings.TrimSpace(bounds[1]), 10, 64); err != nil || last < first {
				return nil, fmt.Errorf("invalid seed range %q", part)
			}
		}
		for seed := first; seed <= last; seed++ {
			seeds = append(seeds, seed)
		}
	}

	seeds = lo.Uniq(seeds)
	if len(seeds) == 0 {
		return nil, fmt.Errorf("no seeds in %q", seedsStr)
	}
	return seeds, nil
}

