package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/google/uuid"
	"github.com/limaJavier/examtabling/internal/csvio"
	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/limaJavier/examtabling/pkg/search"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runGenetic(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	timetabler, err := search.NewGeneticTimetabler(env.config.Genetic, env.options)
	if err != nil {
		return err
	}
	return runOne(env, timetabler)
}

func runAntColony(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	timetabler, err := search.NewAntColonyTimetabler(env.config.AntColony, env.options)
	if err != nil {
		return err
	}
	return runOne(env, timetabler)
}

func runOne(env environment, timetabler search.Timetabler) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	result, err := timetabler.Build(ctx, env.input)
	if err != nil {
		return fmt.Errorf("an error occurred during timetable construction: %w", err)
	}
	return report(result)
}

func runCompete(cmd *cobra.Command, _ []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}
	genetic, err := search.NewGeneticTimetabler(env.config.Genetic, env.options)
	if err != nil {
		return err
	}
	antColony, err := search.NewAntColonyTimetabler(env.config.AntColony, env.options)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, winner, err := search.Compete(ctx, env.input, genetic, antColony)
	if err != nil {
		return fmt.Errorf("an error occurred during timetable construction: %w", err)
	}
	for _, result := range results {
		fmt.Printf("%-12v score %10.2f  conflicts %4d  found at %4d  in %v\n",
			result.Algorithm, result.Score, result.Report.Counts().Total(), result.FoundAt, result.Duration)
	}
	fmt.Printf("Winner: %v\n\n", results[winner].Algorithm)
	return report(results[winner])
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	env, err := setup(cmd)
	if err != nil {
		return err
	}

	file, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("cannot open schedule: %w", err)
	}
	defer file.Close()
	lines, err := readAssignments(file)
	if err != nil {
		return fmt.Errorf("cannot read schedule: %w", err)
	}

	codec := model.NewCodec(env.input, env.logger)
	solution := make(model.Solution, 0, len(lines))
	for _, line := range lines {
		assignment, err := codec.Parse(line)
		if err != nil {
			env.logger.Warn("skipping assignment", zap.Error(err))
			continue
		}
		solution = append(solution, assignment)
	}

	score, conflicts := model.NewEvaluator(codec).EvaluateSolution(solution)
	return report(search.Result{
		RunId:    uuid.New(),
		Solution: solution,
		Schedule: codec.Decode(solution),
		Score:    score,
		Report:   conflicts,
	})
}

// Non-empty lines that are not # comments
func readAssignments(reader io.Reader) ([]string, error) {
	lines := make([]string, 0)
	scanner := bufio.NewScanner(reader)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" && !strings.HasPrefix(line, "#") {
			lines = append(lines, line)
		}
	}
	return lines, scanner.Err()
}

// Prints the schedule and its conflicts, then writes the requested CSV files
func report(result search.Result) error {
	if result.Algorithm != "" {
		fmt.Printf("Algorithm: %v (run %v)\n", result.Algorithm, result.RunId)
		fmt.Printf("Iterations: %v, evaluations: %v, best found at: %v, duration: %v\n",
			result.Iterations, result.Evaluations, result.FoundAt, result.Duration)
		if result.Cancelled {
			fmt.Println("Search was interrupted; showing the best schedule found so far")
		}
	}
	fmt.Printf("Score: %.2f\n\n", result.Score)

	for _, assignment := range result.Schedule {
		rooms := lo.Map(assignment.Rooms, func(room *model.Room, _ int) string { return room.Name })
		slots := lo.Map(assignment.Timeslots, func(timeslot *model.Timeslot, _ int) string { return timeslot.String() })
		fmt.Printf("%-8v %-30v %v  [%v]\n", assignment.Exam.Id, assignment.Exam.CourseName, strings.Join(slots, ", "), strings.Join(rooms, ", "))
	}
	fmt.Println()

	if err := model.WriteConflictReport(os.Stdout, result.Report); err != nil {
		return err
	}

	if outPath != "" {
		if err := csvio.ExportSchedule(outPath, result.RunId, result.Schedule); err != nil {
			return err
		}
	}
	if conflictsPath != "" {
		if err := csvio.ExportConflicts(conflictsPath, result.Report); err != nil {
			return err
		}
	}
	return nil
}
