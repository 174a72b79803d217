package model

import (
	"slices"
	"strings"

	"github.com/samber/lo"
)

// Assignment places the exam at catalog position Exam on an ordered set of timeslots and rooms, both
// given as catalog positions. Nothing forces an assignment to be feasible.
type Assignment struct {
	Exam      int
	Timeslots []int
	Rooms     []int
}

func (assignment Assignment) Clone() Assignment {
	return Assignment{
		Exam:      assignment.Exam,
		Timeslots: slices.Clone(assignment.Timeslots),
		Rooms:     slices.Clone(assignment.Rooms),
	}
}

// Textual form, e.g. "C1-TS1+TS2-R3"
func (assignment Assignment) String() string {
	timeslots := lo.Map(assignment.Timeslots, func(timeslot int, _ int) string { return timeslotToken(timeslot) })
	rooms := lo.Map(assignment.Rooms, func(room int, _ int) string { return roomToken(room) })
	return examToken(assignment.Exam) + tokenSeparator + strings.Join(timeslots, memberSeparator) + tokenSeparator + strings.Join(rooms, memberSeparator)
}

// One assignment per exam
type Solution []Assignment

func (solution Solution) Clone() Solution {
	return lo.Map(solution, func(assignment Assignment, _ int) Assignment { return assignment.Clone() })
}

func (solution Solution) Strings() []string {
	return lo.Map(solution, func(assignment Assignment, _ int) string { return assignment.String() })
}

// An assignment resolved against the catalogs. Entity pointers reference the catalog entries.
type DecodedAssignment struct {
	Exam      *Exam
	Timeslots []*Timeslot
	Rooms     []*Room
}

func (assignment DecodedAssignment) complete() bool {
	return len(assignment.Timeslots) > 0 && len(assignment.Rooms) > 0
}

func (assignment DecodedAssignment) resolved() bool {
	return assignment.Exam != nil &&
		!slices.Contains(assignment.Timeslots, nil) &&
		!slices.Contains(assignment.Rooms, nil)
}

func (assignment DecodedAssignment) TotalCapacity() uint64 {
	return lo.SumBy(assignment.Rooms, func(room *Room) uint64 { return room.Capacity })
}
