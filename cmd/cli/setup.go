package main

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/limaJavier/examtabling/internal/config"
	"github.com/limaJavier/examtabling/internal/csvio"
	"github.com/limaJavier/examtabling/internal/logging"
	"github.com/limaJavier/examtabling/internal/metrics"
	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/limaJavier/examtabling/pkg/search"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Everything a command needs before searching
type environment struct {
	config  config.Config
	logger  *zap.Logger
	input   model.ModelInput
	options search.Options
}

func setup(cmd *cobra.Command) (environment, error) {
	//** Configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return environment{}, err
	}
	applyFlags(cmd, &cfg)
	if err := config.Validate(cfg); err != nil {
		return environment{}, err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return environment{}, err
	}

	//** Input
	period, err := cfg.Period.ExamPeriod()
	if err != nil {
		return environment{}, err
	}
	input, err := loadInput(cfg.Data, period)
	if err != nil {
		return environment{}, err
	}
	logger.Info("input loaded",
		zap.Int("students", len(input.Students)),
		zap.Int("rooms", len(input.Rooms)),
		zap.Int("exams", len(input.Exams)),
		zap.Int("timeslots", len(input.Timeslots)),
	)

	options := cfg.SearchOptions()
	options.Logger = logger
	if cfg.MetricsAddr != "" {
		options.Observer = serveMetrics(cfg.MetricsAddr, logger)
	}
	return environment{config: cfg, logger: logger, input: input, options: options}, nil
}

// Flags set on the command line take precedence over the configuration file
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("input") || flags.Changed("students") || flags.Changed("rooms") || flags.Changed("exams") {
		cfg.Data = config.DataConfig{Input: inputPath, Students: studentsPath, Rooms: roomsPath, Exams: examsPath}
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = metricsAddr
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("repair-rooms") {
		cfg.RepairRooms = repairRooms
	}
	if flags.Changed("generations") {
		cfg.Genetic.Generations = generations
	}
	if flags.Changed("population") {
		cfg.Genetic.PopulationSize = population
	}
	if flags.Changed("ants") {
		cfg.AntColony.Ants = ants
	}
	if flags.Changed("iterations") {
		cfg.AntColony.Iterations = iterations
	}
}

func loadInput(data config.DataConfig, period model.ExamPeriod) (model.ModelInput, error) {
	if data.Input != "" {
		return model.InputFromJson(data.Input, period)
	}
	return csvio.LoadInput(csvio.Paths{Students: data.Students, Rooms: data.Rooms, Exams: data.Exams}, period)
}

func serveMetrics(addr string, logger *zap.Logger) search.Observer {
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	go func() {
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	logger.Info("serving metrics", zap.String("addr", fmt.Sprintf("%v/metrics", addr)))
	return collector
}
