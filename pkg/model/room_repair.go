package model

import (
	"slices"

	"github.com/onsi/gomega/matchers/support/goraph/bipartitegraph"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type unassignableError struct {
}

func (err unassignableError) Error() string {
	return "not all exams can be assigned a room of their own"
}

// RepairRooms reassigns rooms date by date so that exams sharing a date sit in distinct rooms that
// seat them on their own. Exams no single room can seat keep their rooms, and those rooms are
// withheld from the matching. Dates that admit no complete matching are left untouched. The input
// solution is not modified.
func RepairRooms(input ModelInput, solution Solution, logger *zap.Logger) Solution {
	if logger == nil {
		logger = zap.NewNop()
	}
	repaired := solution.Clone()
	largest := lo.MaxBy(input.Rooms, func(a, b Room) bool { return a.Capacity > b.Capacity }).Capacity

	//** Group assignments by date of their first timeslot
	positionsByDate := make(map[string][]int)
	dates := make([]string, 0)
	for position, assignment := range repaired {
		if !validAssignment(input, assignment) {
			continue
		}
		date := input.Timeslots[assignment.Timeslots[0]].DateKey()
		if _, ok := positionsByDate[date]; !ok {
			dates = append(dates, date)
		}
		positionsByDate[date] = append(positionsByDate[date], position)
	}
	slices.Sort(dates)

	for _, date := range dates {
		positions := positionsByDate[date]
		enrollment := func(position int) uint64 { return input.Exams[repaired[position].Exam].Enrollment() }

		// Exams needing several rooms keep theirs
		participants, fixed := lo.FilterReject(positions, func(position int, _ int) bool { return enrollment(position) <= largest })
		reserved := lo.FlatMap(fixed, func(position int, _ int) []int { return repaired[position].Rooms })
		rooms := lo.Filter(lo.Range(len(input.Rooms)), func(room int, _ int) bool { return !slices.Contains(reserved, room) })

		fits := func(position, room int) bool { return input.Rooms[room].Capacity >= enrollment(position) }
		assignments, err := assignRooms(participants, rooms, fits)
		if _, ok := err.(unassignableError); ok {
			logger.Debug("cannot repair rooms", zap.String("date", date), zap.Error(err))
			continue
		} else if err != nil {
			logger.Debug("cannot build room graph", zap.String("date", date), zap.Error(err))
			continue
		}

		for position, room := range assignments {
			repaired[position].Rooms = []int{room}
		}
	}

	return repaired
}

func validAssignment(input ModelInput, assignment Assignment) bool {
	within := func(size int) func(int) bool {
		return func(index int) bool { return index >= 0 && index < size }
	}
	return within(len(input.Exams))(assignment.Exam) &&
		len(assignment.Timeslots) > 0 &&
		lo.EveryBy(assignment.Timeslots, within(len(input.Timeslots))) &&
		lo.EveryBy(assignment.Rooms, within(len(input.Rooms)))
}

// Matches every position to a distinct room it fits in
func assignRooms(positions []int, rooms []int, fits func(position, room int) bool) (map[int]int, error) {
	assignments := make(map[int]int, len(positions))
	if len(positions) == 0 {
		return assignments, nil
	}

	// Build neighbors predicate based on fitness
	neighbors := func(positionAny any, roomAny any) (bool, error) {
		return fits(positionAny.(int), roomAny.(int)), nil
	}

	// Transform positions and rooms to slices of any
	positionsAny, roomsAny := lo.Map(positions, func(position int, _ int) any { return position }), lo.Map(rooms, func(room int, _ int) any { return room })

	graph, err := bipartitegraph.NewBipartiteGraph(positionsAny, roomsAny, neighbors)
	if err != nil {
		return nil, err
	}

	matching := graph.LargestMatching()

	// Check the matching is a maximum one
	if len(matching) < len(positions) {
		return nil, unassignableError{}
	}

	for _, edge := range matching {
		positionIndex, roomIndex := edge.Node1, edge.Node2-len(positions)
		assignments[positions[positionIndex]] = rooms[roomIndex]
	}

	return assignments, nil
}
