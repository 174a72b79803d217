package search

import (
	"slices"

	"github.com/limaJavier/examtabling/pkg/model"
)

// PheromoneTable holds one value per (exam, timeslot, room) triple, always within [min, max].
// Reads may run concurrently; updates must not overlap with anything else.
type PheromoneTable struct {
	indexer model.Indexer
	values  []float64
	min     float64
	max     float64

	exams, timeslots, rooms int
}

func NewPheromoneTable(exams, timeslots, rooms int, initial, lower, upper float64) *PheromoneTable {
	indexer := model.NewIndexer(exams, timeslots, rooms)
	values := make([]float64, indexer.Size())
	for i := range values {
		values[i] = clamp(initial, lower, upper)
	}
	return &PheromoneTable{
		indexer:   indexer,
		values:    values,
		min:       lower,
		max:       upper,
		exams:     exams,
		timeslots: timeslots,
		rooms:     rooms,
	}
}

// Value of a triple. Out of range triples read as the lower bound.
func (table *PheromoneTable) Value(exam, timeslot, room int) float64 {
	if !table.contains(exam, timeslot, room) {
		return table.min
	}
	return table.values[table.indexer.Index(exam, timeslot, room)]
}

// Mean over every triple the candidate would touch, or the lower bound when it touches none
func (table *PheromoneTable) Mean(exam int, timeslots, rooms []int) float64 {
	total, count := 0.0, 0
	for _, timeslot := range timeslots {
		for _, room := range rooms {
			if table.contains(exam, timeslot, room) {
				total += table.values[table.indexer.Index(exam, timeslot, room)]
				count++
			}
		}
	}
	if count == 0 {
		return table.min
	}
	return total / float64(count)
}

// Scales every value by (1 - rate) without going below the lower bound
func (table *PheromoneTable) Evaporate(rate float64) {
	for i, value := range table.values {
		table.values[i] = max(value*(1-rate), table.min)
	}
}

// Adds amount to every triple the assignment touches without going above the upper bound
func (table *PheromoneTable) Deposit(assignment model.Assignment, amount float64) {
	for _, timeslot := range assignment.Timeslots {
		for _, room := range assignment.Rooms {
			if table.contains(assignment.Exam, timeslot, room) {
				index := table.indexer.Index(assignment.Exam, timeslot, room)
				table.values[index] = clamp(table.values[index]+amount, table.min, table.max)
			}
		}
	}
}

func (table *PheromoneTable) Values() []float64 {
	return slices.Clone(table.values)
}

func (table *PheromoneTable) contains(exam, timeslot, room int) bool {
	return exam >= 0 && exam < table.exams &&
		timeslot >= 0 && timeslot < table.timeslots &&
		room >= 0 && room < table.rooms
}

func clamp(value, lower, upper float64) float64 {
	return min(max(value, lower), upper)
}
