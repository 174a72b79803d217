package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/samber/lo"
)

var (
	ErrEmptyCatalog   = errors.New("the exam catalog is empty")
	ErrUnknownStudent = errors.New("exam references an unknown student")
	ErrDuplicateId    = errors.New("duplicate id")
	ErrInvalidRoom    = errors.New("room capacity must be positive")
)

type RawModelInput struct {
	Students []Student
	Rooms    []Room
	Exams    []Exam
}

type Student struct {
	Id   uint64
	Name string
}

type Room struct {
	Id       uint64
	Name     string `mapstructure:"room_name"`
	Capacity uint64
}

type Exam struct {
	Id         uint64
	CourseName string   `mapstructure:"course_name"`
	Duration   uint64   // Minutes
	Students   []uint64 `mapstructure:"student_ids"`
	Priority   int      // Doubles as the exam's difficulty when clustering days
}

// Number of enrolled students
func (exam *Exam) Enrollment() uint64 {
	return uint64(len(exam.Students))
}

type ModelInput struct {
	Students  []Student
	Rooms     []Room
	Exams     []Exam
	Timeslots []Timeslot
	RestDays    []time.Weekday
	WeekendDays []time.Weekday
	Dates     []string // Distinct timeslot dates in generation order
}

func InputFromJson(file string, period ExamPeriod) (ModelInput, error) {
	bytes, err := os.ReadFile(file)
	if err != nil {
		return ModelInput{}, fmt.Errorf("cannot read input file: %w", err)
	}

	var inputJson map[string]any
	if err := json.Unmarshal(bytes, &inputJson); err != nil {
		return ModelInput{}, fmt.Errorf("cannot parse input file: %w", err)
	}

	var rawInput RawModelInput
	if err := mapstructure.Decode(inputJson, &rawInput); err != nil {
		return ModelInput{}, fmt.Errorf("cannot decode input file: %w", err)
	}
	return ProcessRawInput(rawInput, period)
}

// Validates the raw catalogs and attaches the timeslots generated for the exam period
func ProcessRawInput(rawInput RawModelInput, period ExamPeriod) (ModelInput, error) {
	if len(rawInput.Exams) == 0 {
		return ModelInput{}, ErrEmptyCatalog
	}

	//** Check ids
	if id, ok := firstDuplicate(lo.Map(rawInput.Students, func(student Student, _ int) uint64 { return student.Id })); ok {
		return ModelInput{}, fmt.Errorf("%w: student %d", ErrDuplicateId, id)
	}
	if id, ok := firstDuplicate(lo.Map(rawInput.Rooms, func(room Room, _ int) uint64 { return room.Id })); ok {
		return ModelInput{}, fmt.Errorf("%w: room %d", ErrDuplicateId, id)
	}
	if id, ok := firstDuplicate(lo.Map(rawInput.Exams, func(exam Exam, _ int) uint64 { return exam.Id })); ok {
		return ModelInput{}, fmt.Errorf("%w: exam %d", ErrDuplicateId, id)
	}

	//** Check rooms
	if room, ok := lo.Find(rawInput.Rooms, func(room Room) bool { return room.Capacity == 0 }); ok {
		return ModelInput{}, fmt.Errorf("%w: room %d (%v)", ErrInvalidRoom, room.Id, room.Name)
	}

	//** Check enrollments
	known := lo.SliceToMap(rawInput.Students, func(student Student) (uint64, bool) { return student.Id, true })
	exams := make([]Exam, 0, len(rawInput.Exams))
	for _, exam := range rawInput.Exams {
		if student, ok := lo.Find(exam.Students, func(student uint64) bool { return !known[student] }); ok {
			return ModelInput{}, fmt.Errorf("%w: exam %d (%v) enrolls student %d", ErrUnknownStudent, exam.Id, exam.CourseName, student)
		}
		exam.Students = lo.Uniq(exam.Students) // Enrollment counts each student once
		exams = append(exams, exam)
	}

	timeslots := period.GenerateTimeslots()
	return ModelInput{
		Students:    rawInput.Students,
		Rooms:       rawInput.Rooms,
		Exams:       exams,
		Timeslots:   timeslots,
		RestDays:    period.restDays(),
		WeekendDays: period.weekendDays(),
		Dates:       distinctDates(timeslots),
	}, nil
}

func firstDuplicate(ids []uint64) (uint64, bool) {
	seen := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return id, true
		}
		seen[id] = true
	}
	return 0, false
}

func distinctDates(timeslots []Timeslot) []string {
	dates := make([]string, 0)
	for _, timeslot := range timeslots {
		if key := timeslot.DateKey(); !slices.Contains(dates, key) {
			dates = append(dates, key)
		}
	}
	return dates
}
