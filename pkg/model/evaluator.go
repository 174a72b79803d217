package model

import (
	"math"
	"slices"
	"time"

	"github.com/samber/lo"
)

// Penalty weights
const (
	incompletePenalty     = 200
	invalidDataPenalty    = 150
	capacityWeight        = 20
	roomConflictPenalty   = 40
	studentConflictWeight = 70
	sameDayWeight         = 25
	contiguityPenalty     = 50
	difficultyWeight      = 3
	weekendPenalty        = 10
	spreadBonus           = 5
)

const (
	difficultyAverageThreshold = 3.5
	difficultyTotalThreshold   = 15
	spreadThreshold            = 0.7
)

// Evaluator scores decoded schedules. It only reads the catalogs, so a single instance may be shared
// by concurrent searches.
type Evaluator struct {
	codec      *Codec
	exams      []Exam
	weekendDays []time.Weekday
	periodDays  int
}

func NewEvaluator(codec *Codec) *Evaluator {
	input := codec.input
	return &Evaluator{
		codec:       codec,
		exams:       input.Exams,
		weekendDays: input.WeekendDays,
		periodDays:  len(input.Dates),
	}
}

type slotKey struct {
	timeslot uint64
	room     uint64
}

type seatKey struct {
	student  uint64
	date     string
	timeslot uint64
}

// Distinct exams per date for one student, dates in order of appearance
type studentDays struct {
	dates []string
	exams map[string][]uint64
}

// Returns the score (the negated penalty, higher is better) of the given assignments together with the
// violations found. Exams absent from the assignments are not penalized; see EvaluateSolution.
func (evaluator *Evaluator) Evaluate(decoded []DecodedAssignment) (float64, ConflictReport) {
	var report ConflictReport
	penalty := 0.0

	roomClaims := make(map[slotKey]uint64)
	seatClaims := make(map[seatKey]uint64)
	students := make([]uint64, 0)
	days := make(map[uint64]*studentDays)
	dates := make([]string, 0)
	examsByDate := make(map[string][]*Exam)

	for _, assignment := range decoded {
		//** Unresolved references
		if !assignment.resolved() {
			penalty += invalidDataPenalty
			continue
		}
		//** Incompleteness
		if !assignment.complete() {
			penalty += incompletePenalty
			continue
		}
		exam := assignment.Exam

		//** Capacity
		if needed, available := exam.Enrollment(), assignment.TotalCapacity(); needed > available {
			deficit := float64(needed - available)
			penalty += capacityWeight * (deficit + math.Floor(math.Pow(deficit, 1.5)/10))
			report.CapacityIssues = append(report.CapacityIssues, CapacityIssue{ExamId: exam.Id, Needed: needed, Available: available})
		}

		//** Room double-booking
		for _, timeslot := range assignment.Timeslots {
			for _, room := range assignment.Rooms {
				key := slotKey{timeslot.Id, room.Id}
				claimant, claimed := roomClaims[key]
				switch {
				case !claimed:
					roomClaims[key] = exam.Id
				case claimant == exam.Id:
					penalty += roomConflictPenalty / 2
				default:
					penalty += roomConflictPenalty
					report.RoomConflicts = append(report.RoomConflicts, RoomConflict{
						RoomId:       room.Id,
						Date:         timeslot.DateKey(),
						TimeslotId:   timeslot.Id,
						FirstExamId:  claimant,
						SecondExamId: exam.Id,
					})
				}
			}
		}

		//** Student double-booking
		for _, student := range exam.Students {
			ledger, ok := days[student]
			if !ok {
				ledger = &studentDays{exams: make(map[string][]uint64)}
				days[student] = ledger
				students = append(students, student)
			}

			for _, timeslot := range assignment.Timeslots {
				date := timeslot.DateKey()
				key := seatKey{student, date, timeslot.Id}
				if claimant, claimed := seatClaims[key]; !claimed {
					seatClaims[key] = exam.Id
				} else if claimant != exam.Id {
					penalty += studentConflictWeight
					report.StudentConflicts = append(report.StudentConflicts, StudentConflict{
						StudentId:    student,
						Date:         date,
						TimeslotId:   timeslot.Id,
						FirstExamId:  claimant,
						SecondExamId: exam.Id,
					})
				}

				if _, ok := ledger.exams[date]; !ok {
					ledger.dates = append(ledger.dates, date)
				}
				if !slices.Contains(ledger.exams[date], exam.Id) {
					ledger.exams[date] = append(ledger.exams[date], exam.Id)
				}
			}
		}

		//** Contiguity
		// Fewer slots than the exam needs is flagged as well, e.g. the single-slot fallback
		if required := RequiredSlots(exam); !consecutive(assignment.Timeslots) || len(assignment.Timeslots) < required {
			penalty += contiguityPenalty
			report.NonConsecutiveSlots = append(report.NonConsecutiveSlots, NonConsecutiveSlots{
				ExamId:      exam.Id,
				TimeslotIds: lo.Map(assignment.Timeslots, func(timeslot *Timeslot, _ int) uint64 { return timeslot.Id }),
				Required:    required,
			})
		}

		//** Day of the exam
		first := assignment.Timeslots[0]
		date := first.DateKey()
		if _, ok := examsByDate[date]; !ok {
			dates = append(dates, date)
		}
		examsByDate[date] = append(examsByDate[date], exam)
		if slices.Contains(evaluator.weekendDays, first.Weekday()) {
			penalty += weekendPenalty
		}
	}

	//** Same-day multiplicity
	for _, student := range students {
		ledger := days[student]
		for _, date := range ledger.dates {
			exams := ledger.exams[date]
			if len(exams) < 2 {
				continue
			}
			extra := float64(len(exams) - 1)
			penalty += sameDayWeight * extra * extra
			report.SameDayExams = append(report.SameDayExams, SameDayExams{StudentId: student, Date: date, ExamIds: slices.Clone(exams)})
		}
	}

	//** Difficulty clustering
	for _, date := range dates {
		exams := examsByDate[date]
		if len(exams) < 2 {
			continue
		}
		count := float64(len(exams))
		total := float64(lo.SumBy(exams, func(exam *Exam) int { return exam.Priority }))
		if average := total / count; average > difficultyAverageThreshold {
			excess := average - difficultyAverageThreshold
			penalty += difficultyWeight * excess * excess * count
		}
		if total > difficultyTotalThreshold {
			penalty += difficultyWeight * (total - difficultyTotalThreshold)
		}
	}

	//** Spread
	if evaluator.periodDays > 0 && float64(len(dates))/float64(evaluator.periodDays) > spreadThreshold {
		tenths := 10 * len(dates) / evaluator.periodDays
		penalty -= float64(spreadBonus * tenths)
	}

	if penalty == 0 {
		return 0, report // Not -0
	}
	return -penalty, report
}

// Scores a full solution. Every catalog exam the solution fails to place (missing or malformed
// assignment) counts as incomplete.
func (evaluator *Evaluator) EvaluateSolution(solution Solution) (float64, ConflictReport) {
	decoded := evaluator.codec.Decode(solution)
	score, report := evaluator.Evaluate(decoded)

	placed := make(map[*Exam]bool, len(decoded))
	for _, assignment := range decoded {
		placed[assignment.Exam] = true
	}
	for i := range evaluator.exams {
		if !placed[&evaluator.exams[i]] {
			score -= incompletePenalty
		}
	}
	return score, report
}

// Score of a full solution
func (evaluator *Evaluator) Score(solution Solution) float64 {
	score, _ := evaluator.EvaluateSolution(solution)
	return score
}

// Score of the assignments made so far, ignoring exams not yet placed
func (evaluator *Evaluator) PartialScore(solution Solution) float64 {
	score, _ := evaluator.Evaluate(evaluator.codec.Decode(solution))
	return score
}

// Checks whether the timeslots have strictly consecutive ids on a single date
func consecutive(timeslots []*Timeslot) bool {
	for i := 1; i < len(timeslots); i++ {
		if timeslots[i].Id != timeslots[i-1].Id+1 || timeslots[i].DateKey() != timeslots[0].DateKey() {
			return false
		}
	}
	return true
}
