package model

import (
	"cmp"
	"math/rand"
	"slices"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	slotMinutes               = 120
	maxTimeslotCombinations   = 20
	maxSingleRoomCombinations = 5
	minSingleRoomCombinations = 3
	maxRoomCombinations       = 10
	fallbackRooms             = 3
)

// Number of timeslots an exam occupies
func RequiredSlots(exam *Exam) int {
	return max(1, int(exam.Duration/slotMinutes))
}

// CandidateGenerator bounds the choices offered to the searches: contiguous timeslot windows and room
// sets that cover an exam's enrollment. It is safe for concurrent use.
type CandidateGenerator struct {
	timeslots int
	ids       []uint64
	days      [][]int // Timeslot positions per date, sorted by id
	rooms     []int   // Room positions, largest capacity first
	capacity  []uint64
	logger    *zap.Logger
	warned    sync.Map
}

func NewCandidateGenerator(input ModelInput, logger *zap.Logger) *CandidateGenerator {
	if logger == nil {
		logger = zap.NewNop()
	}

	//** Group timeslots by date
	byDate := lo.GroupBy(lo.Range(len(input.Timeslots)), func(position int) string { return input.Timeslots[position].DateKey() })
	days := make([][]int, 0, len(byDate))
	for _, date := range distinctDates(input.Timeslots) {
		day := byDate[date]
		slices.SortFunc(day, func(a, b int) int { return cmp.Compare(input.Timeslots[a].Id, input.Timeslots[b].Id) })
		days = append(days, day)
	}

	//** Sort rooms by capacity
	capacity := lo.Map(input.Rooms, func(room Room, _ int) uint64 { return room.Capacity })
	rooms := lo.Range(len(input.Rooms))
	slices.SortStableFunc(rooms, func(a, b int) int { return cmp.Compare(capacity[b], capacity[a]) })

	return &CandidateGenerator{
		timeslots: len(input.Timeslots),
		ids:       lo.Map(input.Timeslots, func(timeslot Timeslot, _ int) uint64 { return timeslot.Id }),
		days:      days,
		rooms:     rooms,
		capacity:  capacity,
		logger:    logger,
	}
}

// Returns at most 20 sets of k timeslots with consecutive ids on one date. With k = 1 every timeslot
// is a candidate. When no date has a window of k slots a single random timeslot is returned.
func (generator *CandidateGenerator) TimeslotCombinations(k int, rng *rand.Rand) [][]int {
	if generator.timeslots == 0 {
		generator.warnOnce("no timeslots to choose from", 0)
		return nil
	}
	if k <= 1 {
		return lo.Map(lo.Range(generator.timeslots), func(position int, _ int) []int { return []int{position} })
	}

	windows := generator.windows(k)
	if len(windows) == 0 {
		generator.warnOnce("no date has enough consecutive timeslots, falling back to a single timeslot", k)
		return [][]int{{rng.Intn(generator.timeslots)}}
	}
	if len(windows) > maxTimeslotCombinations {
		sample := rng.Perm(len(windows))[:maxTimeslotCombinations]
		windows = lo.Map(sample, func(index int, _ int) []int { return windows[index] })
	}
	return windows
}

// Returns a random window of k consecutive timeslots on a random date, or a single random timeslot
// when no date has one
func (generator *CandidateGenerator) RandomWindow(k int, rng *rand.Rand) []int {
	if generator.timeslots == 0 {
		generator.warnOnce("no timeslots to choose from", 0)
		return nil
	}
	if k <= 1 {
		return []int{rng.Intn(generator.timeslots)}
	}

	perDay := lo.FilterMap(generator.days, func(day []int, _ int) ([][]int, bool) {
		windows := generator.dayWindows(day, k)
		return windows, len(windows) > 0
	})
	if len(perDay) == 0 {
		generator.warnOnce("no date has enough consecutive timeslots, falling back to a single timeslot", k)
		return []int{rng.Intn(generator.timeslots)}
	}
	windows := perDay[rng.Intn(len(perDay))]
	return windows[rng.Intn(len(windows))]
}

// Returns room sets covering the required capacity, fewest rooms first: up to 5 single rooms, then
// pairs when fewer than 3 single rooms fit (10 sets at most), else the 3 largest rooms together.
// Without rooms the only candidate is the empty set.
func (generator *CandidateGenerator) RoomCombinations(requiredCapacity uint64) [][]int {
	if len(generator.rooms) == 0 {
		generator.warnOnce("no rooms to choose from", 0)
		return [][]int{{}}
	}

	combinations := make([][]int, 0, maxRoomCombinations)
	//** Single rooms
	for _, room := range generator.rooms {
		if generator.capacity[room] >= requiredCapacity {
			combinations = append(combinations, []int{room})
			if len(combinations) == maxSingleRoomCombinations {
				break
			}
		}
	}

	//** Pairs
	if len(combinations) < minSingleRoomCombinations {
	pairs:
		for i, room1 := range generator.rooms {
			for _, room2 := range generator.rooms[i+1:] {
				if generator.capacity[room1]+generator.capacity[room2] >= requiredCapacity {
					combinations = append(combinations, []int{room1, room2})
					if len(combinations) == maxRoomCombinations {
						break pairs
					}
				}
			}
		}
	}

	//** Largest rooms
	if len(combinations) == 0 {
		combinations = append(combinations, slices.Clone(generator.rooms[:min(fallbackRooms, len(generator.rooms))]))
	}
	return combinations
}

func (generator *CandidateGenerator) windows(k int) [][]int {
	return lo.FlatMap(generator.days, func(day []int, _ int) [][]int { return generator.dayWindows(day, k) })
}

func (generator *CandidateGenerator) dayWindows(day []int, k int) [][]int {
	windows := make([][]int, 0)
	for start := 0; start+k <= len(day); start++ {
		window := day[start : start+k]
		if generator.consecutive(window) {
			windows = append(windows, slices.Clone(window))
		}
	}
	return windows
}

func (generator *CandidateGenerator) consecutive(window []int) bool {
	for i := 1; i < len(window); i++ {
		if generator.ids[window[i]] != generator.ids[window[i-1]]+1 {
			return false
		}
	}
	return true
}

type warning struct {
	message string
	slots   int
}

// Degenerate fallbacks repeat on every construction, so each kind is logged once
func (generator *CandidateGenerator) warnOnce(message string, slots int) {
	if _, loaded := generator.warned.LoadOrStore(warning{message, slots}, true); !loaded {
		generator.logger.Warn(message, zap.Int("slots", slots))
	}
}
