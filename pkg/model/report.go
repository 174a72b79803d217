package model

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/samber/lo"
)

const (
	reportPreview     = 10
	reportTopStudents = 5
)

type StudentConflict struct {
	StudentId    uint64
	Date         string
	TimeslotId   uint64
	FirstExamId  uint64
	SecondExamId uint64
}

type RoomConflict struct {
	RoomId       uint64
	Date         string
	TimeslotId   uint64
	FirstExamId  uint64
	SecondExamId uint64
}

type CapacityIssue struct {
	ExamId    uint64
	Needed    uint64
	Available uint64
}

func (issue CapacityIssue) Deficit() uint64 {
	return issue.Needed - issue.Available
}

type SameDayExams struct {
	StudentId uint64
	Date      string
	ExamIds   []uint64
}

// Slot-set that is split across ids or dates, or shorter than the exam needs
type NonConsecutiveSlots struct {
	ExamId      uint64
	TimeslotIds []uint64
	Required    int
}

// Violations found by one evaluation. Collections are filled in evaluation order.
type ConflictReport struct {
	StudentConflicts    []StudentConflict
	RoomConflicts       []RoomConflict
	CapacityIssues      []CapacityIssue
	SameDayExams        []SameDayExams
	NonConsecutiveSlots []NonConsecutiveSlots
}

type ConflictCounts struct {
	StudentConflicts    int
	RoomConflicts       int
	CapacityIssues      int
	SameDayExams        int
	NonConsecutiveSlots int
}

func (counts ConflictCounts) Total() int {
	return counts.StudentConflicts + counts.RoomConflicts + counts.CapacityIssues + counts.SameDayExams + counts.NonConsecutiveSlots
}

func (report ConflictReport) Counts() ConflictCounts {
	return ConflictCounts{
		StudentConflicts:    len(report.StudentConflicts),
		RoomConflicts:       len(report.RoomConflicts),
		CapacityIssues:      len(report.CapacityIssues),
		SameDayExams:        len(report.SameDayExams),
		NonConsecutiveSlots: len(report.NonConsecutiveSlots),
	}
}

func (report ConflictReport) Empty() bool {
	return report.Counts().Total() == 0
}

type StudentConflictCount struct {
	StudentId uint64
	Conflicts int
}

// Students with the most double-bookings, most conflicted first and ties by id
func (report ConflictReport) MostConflictedStudents(limit int) []StudentConflictCount {
	counts := lo.CountValuesBy(report.StudentConflicts, func(conflict StudentConflict) uint64 { return conflict.StudentId })
	ranking := lo.MapToSlice(counts, func(student uint64, conflicts int) StudentConflictCount {
		return StudentConflictCount{StudentId: student, Conflicts: conflicts}
	})
	slices.SortFunc(ranking, func(a, b StudentConflictCount) int {
		if c := cmp.Compare(b.Conflicts, a.Conflicts); c != 0 {
			return c
		}
		return cmp.Compare(a.StudentId, b.StudentId)
	})
	return ranking[:min(limit, len(ranking))]
}

// Writes a human readable summary: counts, a preview of every collection and the most conflicted students
func WriteConflictReport(w io.Writer, report ConflictReport) error {
	counts := report.Counts()
	printer := &reportPrinter{w: w}

	printer.printf("Conflict report\n")
	printer.printf("  student conflicts:      %d\n", counts.StudentConflicts)
	printer.printf("  room conflicts:         %d\n", counts.RoomConflicts)
	printer.printf("  capacity issues:        %d\n", counts.CapacityIssues)
	printer.printf("  same-day exams:         %d\n", counts.SameDayExams)
	printer.printf("  non-consecutive slots:  %d\n", counts.NonConsecutiveSlots)
	if report.Empty() {
		printer.printf("No conflicts found\n")
		return printer.err
	}

	printSection(printer, "Student conflicts", report.StudentConflicts, func(conflict StudentConflict) string {
		return fmt.Sprintf("student %d on %v (timeslot %d): exams %d and %d", conflict.StudentId, conflict.Date, conflict.TimeslotId, conflict.FirstExamId, conflict.SecondExamId)
	})
	printSection(printer, "Room conflicts", report.RoomConflicts, func(conflict RoomConflict) string {
		return fmt.Sprintf("room %d on %v (timeslot %d): exams %d and %d", conflict.RoomId, conflict.Date, conflict.TimeslotId, conflict.FirstExamId, conflict.SecondExamId)
	})
	printSection(printer, "Capacity issues", report.CapacityIssues, func(issue CapacityIssue) string {
		return fmt.Sprintf("exam %d: needs %d seats, has %d (short by %d)", issue.ExamId, issue.Needed, issue.Available, issue.Deficit())
	})
	printSection(printer, "Same-day exams", report.SameDayExams, func(exams SameDayExams) string {
		return fmt.Sprintf("student %d on %v: exams %v", exams.StudentId, exams.Date, exams.ExamIds)
	})
	printSection(printer, "Non-consecutive slots", report.NonConsecutiveSlots, func(slots NonConsecutiveSlots) string {
		return fmt.Sprintf("exam %d: timeslots %v (needs %d)", slots.ExamId, slots.TimeslotIds, slots.Required)
	})

	if students := report.MostConflictedStudents(reportTopStudents); len(students) > 0 {
		printer.printf("\nMost conflicted students\n")
		for _, student := range students {
			printer.printf("  student %d: %d conflicts\n", student.StudentId, student.Conflicts)
		}
	}
	return printer.err
}

// Keeps the first write error so callers check once
type reportPrinter struct {
	w   io.Writer
	err error
}

func (printer *reportPrinter) printf(format string, args ...any) {
	if printer.err != nil {
		return
	}
	_, printer.err = fmt.Fprintf(printer.w, format, args...)
}

func printSection[T any](printer *reportPrinter, title string, entries []T, describe func(T) string) {
	if len(entries) == 0 {
		return
	}
	printer.printf("\n%v\n", title)
	for _, entry := range entries[:min(reportPreview, len(entries))] {
		printer.printf("  %v\n", describe(entry))
	}
	if hidden := len(entries) - reportPreview; hidden > 0 {
		printer.printf("  ... and %d more\n", hidden)
	}
}
