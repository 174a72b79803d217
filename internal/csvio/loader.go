package csvio

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/samber/lo"
)

const idSeparator = ";"

type studentRow struct {
	Id   uint64 `csv:"id"`
	Name string `csv:"name"`
}

type roomRow struct {
	Id       uint64 `csv:"id"`
	Name     string `csv:"room_name"`
	Capacity uint64 `csv:"capacity"`
}

type examRow struct {
	Id         uint64 `csv:"id"`
	CourseName string `csv:"course_name"`
	Duration   uint64 `csv:"duration"`
	Students   idList `csv:"student_ids"`
	Priority   int    `csv:"priority"`
}

// Student ids written as "1;2;3"
type idList []uint64

func (ids *idList) UnmarshalCSV(field string) error {
	*ids = idList{}
	for _, token := range strings.Split(field, idSeparator) {
		if token = strings.TrimSpace(token); token == "" {
			continue
		}
		id, err := strconv.ParseUint(token, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid student id %q", token)
		}
		*ids = append(*ids, id)
	}
	return nil
}

func (ids idList) MarshalCSV() (string, error) {
	return joinIds(ids), nil
}

// Paths of the three catalog files
type Paths struct {
	Students string
	Rooms    string
	Exams    string
}

// Reads the three catalogs and builds the model input for the period
func LoadInput(paths Paths, period model.ExamPeriod) (model.ModelInput, error) {
	students, err := LoadStudents(paths.Students)
	if err != nil {
		return model.ModelInput{}, err
	}
	rooms, err := LoadRooms(paths.Rooms)
	if err != nil {
		return model.ModelInput{}, err
	}
	exams, err := LoadExams(paths.Exams)
	if err != nil {
		return model.ModelInput{}, err
	}
	return model.ProcessRawInput(model.RawModelInput{Students: students, Rooms: rooms, Exams: exams}, period)
}

func LoadStudents(path string) ([]model.Student, error) {
	rows, err := load[studentRow](path)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row *studentRow, _ int) model.Student {
		return model.Student{Id: row.Id, Name: row.Name}
	}), nil
}

func LoadRooms(path string) ([]model.Room, error) {
	rows, err := load[roomRow](path)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row *roomRow, _ int) model.Room {
		return model.Room{Id: row.Id, Name: row.Name, Capacity: row.Capacity}
	}), nil
}

func LoadExams(path string) ([]model.Exam, error) {
	rows, err := load[examRow](path)
	if err != nil {
		return nil, err
	}
	return lo.Map(rows, func(row *examRow, _ int) model.Exam {
		return model.Exam{
			Id:         row.Id,
			CourseName: row.CourseName,
			Duration:   row.Duration,
			Students:   []uint64(row.Students),
			Priority:   row.Priority,
		}
	}), nil
}

func load[T any](path string) ([]*T, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open %v: %w", path, err)
	}
	defer file.Close()

	rows := []*T{}
	if err := gocsv.UnmarshalFile(file, &rows); err != nil {
		return nil, fmt.Errorf("cannot parse %v: %w", path, err)
	}
	return rows, nil
}
