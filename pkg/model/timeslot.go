package model

import (
	"fmt"
	"slices"
	"time"
)

type TimeWindow struct {
	Start string // HH:MM, 24-hour clock
	End   string
}

var (
	DefaultWindows  = []TimeWindow{{"09:00", "11:00"}, {"12:00", "14:00"}, {"15:00", "17:00"}}
	DefaultRestDays = []time.Weekday{time.Friday, time.Saturday}
	// Exams may fall on these days but cost a small penalty
	DefaultWeekendDays = []time.Weekday{time.Saturday, time.Sunday}
)

type Timeslot struct {
	Id    uint64
	Date  time.Time
	Start string
	End   string
}

// Key used to group timeslots falling on the same day
func (timeslot *Timeslot) DateKey() string {
	return timeslot.Date.Format(time.DateOnly)
}

func (timeslot *Timeslot) Weekday() time.Weekday {
	return timeslot.Date.Weekday()
}

func (timeslot *Timeslot) String() string {
	return fmt.Sprintf("%v %v-%v", timeslot.DateKey(), timeslot.Start, timeslot.End)
}

type ExamPeriod struct {
	Start       time.Time
	End         time.Time // Inclusive
	SlotsPerDay int
	RestDays    []time.Weekday // Nil means DefaultRestDays, an empty slice means none
	WeekendDays []time.Weekday // Nil means DefaultWeekendDays, an empty slice means none
	Windows     []TimeWindow   // Empty means DefaultWindows
}

// Generates the period's timeslots in date order, skipping rest days. Ids start at 1 and increase
// strictly, so slots on the same day carry consecutive ids.
func (period ExamPeriod) GenerateTimeslots() []Timeslot {
	windows := period.Windows
	if len(windows) == 0 {
		windows = DefaultWindows
	}
	slotsPerDay := min(max(period.SlotsPerDay, 0), len(windows))
	restDays := period.restDays()

	timeslots := make([]Timeslot, 0)
	current, end := truncateDate(period.Start), truncateDate(period.End)
	for nextId := uint64(1); !current.After(end); current = current.AddDate(0, 0, 1) {
		if slices.Contains(restDays, current.Weekday()) {
			continue
		}
		for _, window := range windows[:slotsPerDay] {
			timeslots = append(timeslots, Timeslot{
				Id:    nextId,
				Date:  current,
				Start: window.Start,
				End:   window.End,
			})
			nextId++
		}
	}
	return timeslots
}

func (period ExamPeriod) restDays() []time.Weekday {
	if period.RestDays == nil {
		return DefaultRestDays
	}
	return period.RestDays
}

func (period ExamPeriod) weekendDays() []time.Weekday {
	if period.WeekendDays == nil {
		return DefaultWeekendDays
	}
	return period.WeekendDays
}

func truncateDate(date time.Time) time.Time {
	year, month, day := date.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
