package csvio

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/google/uuid"
	"github.com/limaJavier/examtabling/pkg/model"
	"github.com/samber/lo"
)

type ScheduleRow struct {
	Run        string `csv:"run_id"`
	ExamId     uint64 `csv:"exam_id"`
	CourseName string `csv:"course_name"`
	Date       string `csv:"date"`
	Weekday    string `csv:"weekday"`
	Start      string `csv:"start"`
	End        string `csv:"end"`
	Timeslots  string `csv:"timeslot_ids"`
	Rooms      string `csv:"rooms"`
	Enrollment uint64 `csv:"enrollment"`
	Capacity   uint64 `csv:"capacity"`
}

type ConflictRow struct {
	Kind     string `csv:"kind"`
	Date     string `csv:"date"`
	Timeslot string `csv:"timeslot_id"`
	Student  string `csv:"student_id"`
	Room     string `csv:"room_id"`
	Exams    string `csv:"exam_ids"`
	Detail   string `csv:"detail"`
}

// One row per placed exam, in schedule order. The times span from the first slot's start to the
// last slot's end.
func ScheduleRows(runId uuid.UUID, schedule []model.DecodedAssignment) []*ScheduleRow {
	rows := make([]*ScheduleRow, 0, len(schedule))
	for _, assignment := range schedule {
		if assignment.Exam == nil || len(assignment.Timeslots) == 0 {
			continue
		}
		first, last := assignment.Timeslots[0], assignment.Timeslots[len(assignment.Timeslots)-1]
		rows = append(rows, &ScheduleRow{
			Run:        runId.String(),
			ExamId:     assignment.Exam.Id,
			CourseName: assignment.Exam.CourseName,
			Date:       first.DateKey(),
			Weekday:    first.Weekday().String(),
			Start:      first.Start,
			End:        last.End,
			Timeslots:  joinIds(lo.Map(assignment.Timeslots, func(timeslot *model.Timeslot, _ int) uint64 { return timeslot.Id })),
			Rooms:      strings.Join(lo.Map(assignment.Rooms, func(room *model.Room, _ int) string { return room.Name }), idSeparator),
			Enrollment: assignment.Exam.Enrollment(),
			Capacity:   assignment.TotalCapacity(),
		})
	}
	return rows
}

// One row per violation, grouped by kind
func ConflictRows(report model.ConflictReport) []*ConflictRow {
	rows := make([]*ConflictRow, 0, report.Counts().Total())
	for _, conflict := range report.StudentConflicts {
		rows = append(rows, &ConflictRow{
			Kind:     "student",
			Date:     conflict.Date,
			Timeslot: fmt.Sprint(conflict.TimeslotId),
			Student:  fmt.Sprint(conflict.StudentId),
			Exams:    joinIds([]uint64{conflict.FirstExamId, conflict.SecondExamId}),
		})
	}
	for _, conflict := range report.RoomConflicts {
		rows = append(rows, &ConflictRow{
			Kind:     "room",
			Date:     conflict.Date,
			Timeslot: fmt.Sprint(conflict.TimeslotId),
			Room:     fmt.Sprint(conflict.RoomId),
			Exams:    joinIds([]uint64{conflict.FirstExamId, conflict.SecondExamId}),
		})
	}
	for _, issue := range report.CapacityIssues {
		rows = append(rows, &ConflictRow{
			Kind:   "capacity",
			Exams:  fmt.Sprint(issue.ExamId),
			Detail: fmt.Sprintf("needs %d, has %d", issue.Needed, issue.Available),
		})
	}
	for _, sameDay := range report.SameDayExams {
		rows = append(rows, &ConflictRow{
			Kind:    "same_day",
			Date:    sameDay.Date,
			Student: fmt.Sprint(sameDay.StudentId),
			Exams:   joinIds(sameDay.ExamIds),
		})
	}
	for _, slots := range report.NonConsecutiveSlots {
		rows = append(rows, &ConflictRow{
			Kind:   "non_consecutive",
			Exams:  fmt.Sprint(slots.ExamId),
			Detail: fmt.Sprintf("timeslots %v, needs %d", joinIds(slots.TimeslotIds), slots.Required),
		})
	}
	return rows
}

func WriteSchedule(out io.Writer, runId uuid.UUID, schedule []model.DecodedAssignment) error {
	rows := ScheduleRows(runId, schedule)
	return gocsv.Marshal(&rows, out)
}

func WriteConflicts(out io.Writer, report model.ConflictReport) error {
	rows := ConflictRows(report)
	return gocsv.Marshal(&rows, out)
}

// Writes the schedule to path, replacing any existing file
func ExportSchedule(path string, runId uuid.UUID, schedule []model.DecodedAssignment) error {
	return export(path, func(out io.Writer) error { return WriteSchedule(out, runId, schedule) })
}

func ExportConflicts(path string, report model.ConflictReport) error {
	return export(path, func(out io.Writer) error { return WriteConflicts(out, report) })
}

func export(path string, write func(io.Writer) error) error {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %v: %w", path, err)
	}
	defer out.Close()

	if err := write(out); err != nil {
		return fmt.Errorf("cannot write %v: %w", path, err)
	}
	return nil
}

func joinIds(ids []uint64) string {
	return strings.Join(lo.Map(ids, func(id uint64, _ int) string { return strconv.FormatUint(id, 10) }), idSeparator)
}
