package main

import (
	"log"

	"github.com/spf13/cobra"
)

var (
	configPath    string
	inputPath     string
	studentsPath  string
	roomsPath     string
	examsPath     string
	outPath       string
	conflictsPath string
	metricsAddr   string
	logLevel      string
	seed          int64
	workers       int
	repairRooms   bool
	generations   int
	population    int
	ants          int
	iterations    int

	rootCmd = &cobra.Command{
		Use:           "examtabling",
		Short:         "Builds university exam timetables with a genetic algorithm and an ant colony",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	geneticCmd = &cobra.Command{
		Use:   "genetic",
		Short: "Searches a timetable with the genetic algorithm",
		Args:  cobra.NoArgs,
		RunE:  runGenetic,
	}

	antColonyCmd = &cobra.Command{
		Use:   "ant-colony",
		Short: "Searches a timetable with the ant colony",
		Args:  cobra.NoArgs,
		RunE:  runAntColony,
	}

	competeCmd = &cobra.Command{
		Use:   "compete",
		Short: "Runs both algorithms on the same input and reports the best timetable",
		Args:  cobra.NoArgs,
		RunE:  runCompete,
	}

	evaluateCmd = &cobra.Command{
		Use:   "evaluate [schedule file]",
		Short: "Scores a timetable written as one assignment per line, e.g. C1-TS1+TS2-R3",
		Args:  cobra.ExactArgs(1),
		RunE:  runEvaluate,
	}
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to a YAML configuration file")
	flags.StringVar(&inputPath, "input", "", "Path to a JSON document holding students, rooms and exams")
	flags.StringVar(&studentsPath, "students", "", "Path to the students CSV (id,name)")
	flags.StringVar(&roomsPath, "rooms", "", "Path to the rooms CSV (id,room_name,capacity)")
	flags.StringVar(&examsPath, "exams", "", "Path to the exams CSV (id,course_name,duration,student_ids,priority)")
	flags.StringVarP(&outPath, "out", "o", "", "Path where the schedule CSV will be written")
	flags.StringVar(&conflictsPath, "conflicts", "", "Path where the conflicts CSV will be written")
	flags.StringVar(&metricsAddr, "metrics-addr", "", "Address serving Prometheus metrics, e.g. :9090")
	flags.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn or error")
	flags.Int64Var(&seed, "seed", 0, "Seed of the random generator")
	flags.IntVar(&workers, "workers", 0, "Goroutines evaluating schedules")
	flags.BoolVar(&repairRooms, "repair-rooms", false, "Reassign rooms of the best schedule when it improves the score")

	geneticCmd.Flags().IntVar(&generations, "generations", 0, "Number of generations")
	geneticCmd.Flags().IntVar(&population, "population", 0, "Population size")
	antColonyCmd.Flags().IntVar(&ants, "ants", 0, "Ants per iteration")
	antColonyCmd.Flags().IntVar(&iterations, "iterations", 0, "Number of iterations")

	rootCmd.AddCommand(geneticCmd, antColonyCmd, competeCmd, evaluateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Fatalf("examtabling: %v", err)
	}
}
