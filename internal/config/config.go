package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/limaJavier/examtabling/pkg/search"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

type Config struct {
	Data        DataConfig             `mapstructure:"data"`
	Period      PeriodConfig           `mapstructure:"period"`
	Genetic     search.GeneticConfig   `mapstructure:"genetic"`
	AntColony   search.AntColonyConfig `mapstructure:"ant_colony"`
	Seed        int64                  `mapstructure:"seed"`
	Workers     int                    `mapstructure:"workers" validate:"gte=1"`
	LogLevel    string                 `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogEvery    int                    `mapstructure:"log_every" validate:"gte=1"`
	RepairRooms bool                   `mapstructure:"repair_rooms"`
	MetricsAddr string                 `mapstructure:"metrics_addr"` // Empty disables the metrics endpoint
}

// Either a single JSON document or the three CSV files
type DataConfig struct {
	Input    string `mapstructure:"input" validate:"required_without_all=Students Rooms Exams"`
	Students string `mapstructure:"students" validate:"required_without=Input"`
	Rooms    string `mapstructure:"rooms" validate:"required_without=Input"`
	Exams    string `mapstructure:"exams" validate:"required_without=Input"`
}

type PeriodConfig struct {
	Start       time.Time      `mapstructure:"start" validate:"required"`
	End         time.Time      `mapstructure:"end" validate:"required,gtefield=Start"`
	SlotsPerDay int            `mapstructure:"slots_per_day" validate:"gte=1"`
	RestDays    []string       `mapstructure:"rest_days" validate:"dive,oneof=sunday monday tuesday wednesday thursday friday saturday"` // Nil means Friday and Saturday
	WeekendDays []string       `mapstructure:"weekend_days" validate:"dive,oneof=sunday monday tuesday wednesday thursday friday saturday"` // Nil means Saturday and Sunday
	Windows     []WindowConfig `mapstructure:"windows" validate:"dive"`
}

type WindowConfig struct {
	Start string `mapstructure:"start" validate:"required,datetime=15:04"`
	End   string `mapstructure:"end" validate:"required,datetime=15:04"`
}

func Default() Config {
	return Config{
		Period:    PeriodConfig{SlotsPerDay: 3},
		Genetic:   search.DefaultGeneticConfig(),
		AntColony: search.DefaultAntColonyConfig(),
		Seed:      1,
		Workers:   runtime.NumCPU(),
		LogLevel:  "info",
		LogEvery:  10,
	}
}

// Reads a YAML (or JSON) file over the defaults. An empty path yields the defaults. The result is
// not validated, so flags can still fill in missing values.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cannot read config file: %w", err)
	}
	return Parse(bytes)
}

func Parse(bytes []byte) (Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("cannot parse config: %w", err)
	}

	config := Default()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &config,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.ComposeDecodeHookFunc(mapstructure.StringToTimeHookFunc(time.DateOnly)),
	})
	if err != nil {
		return Config{}, err
	}
	if err := decoder.Decode(raw); err != nil {
		return Config{}, fmt.Errorf("cannot decode config: %w", err)
	}
	return config, nil
}

func Validate(config Config) error {
	if err := validate.Struct(config); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			fields := make([]string, 0, len(validationErrors))
			for _, fieldError := range validationErrors {
				fields = append(fields, fmt.Sprintf("%v (%v)", fieldError.Namespace(), fieldError.Tag()))
			}
			return fmt.Errorf("invalid config: %v", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func (period PeriodConfig) ExamPeriod() (model.ExamPeriod, error) {
	examPeriod := model.ExamPeriod{
		Start:       period.Start,
		End:         period.End,
		SlotsPerDay: period.SlotsPerDay,
	}
	var err error
	if examPeriod.RestDays, err = parseWeekdays(period.RestDays); err != nil {
		return model.ExamPeriod{}, fmt.Errorf("invalid rest days: %w", err)
	}
	if examPeriod.WeekendDays, err = parseWeekdays(period.WeekendDays); err != nil {
		return model.ExamPeriod{}, fmt.Errorf("invalid weekend days: %w", err)
	}
	for _, window := range period.Windows {
		examPeriod.Windows = append(examPeriod.Windows, model.TimeWindow{Start: window.Start, End: window.End})
	}
	return examPeriod, nil
}

// Nil stays nil so the model falls back to its defaults
func parseWeekdays(names []string) ([]time.Weekday, error) {
	if names == nil {
		return nil, nil
	}
	days := make([]time.Weekday, 0, len(names))
	for _, name := range names {
		weekday, ok := weekdays[strings.ToLower(name)]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", name)
		}
		days = append(days, weekday)
	}
	return days, nil
}

// Search options shared by both algorithms
func (config Config) SearchOptions() search.Options {
	return search.Options{
		Seed:        config.Seed,
		Workers:     config.Workers,
		LogEvery:    config.LogEvery,
		RepairRooms: config.RepairRooms,
	}
}
