package search

import (
	"math/rand"
	"slices"

	"github.com/limaJavier/examtabling/pkg/model"
)

const maxExamSlots = 3

// Returns the best of a sample of distinct individuals
func tournament(population []model.Solution, scores []float64, size int, rng *rand.Rand) model.Solution {
	contenders := rng.Perm(len(population))[:min(size, len(population))]
	winner := contenders[0]
	for _, contender := range contenders[1:] {
		if scores[contender] > scores[winner] {
			winner = contender
		}
	}
	return population[winner]
}

// Two-point crossover. Children swap the middle segment [cut1, cut2) of their parents, so they keep
// the parents' lengths. Parents shorter than 2 are returned as they are.
func crossover(parent1, parent2 model.Solution, rng *rand.Rand) (model.Solution, model.Solution) {
	length := min(len(parent1), len(parent2))
	if length < 2 {
		return parent1, parent2
	}

	cut1, cut2 := 1, length
	if length >= 3 {
		cut1 = 1 + rng.Intn(length-2)            // [1, length-2]
		cut2 = cut1 + 1 + rng.Intn(length-cut1-1) // [cut1+1, length-1]
	}

	child1 := slices.Concat(parent1[:cut1], parent2[cut1:cut2], parent1[cut2:])
	child2 := slices.Concat(parent2[:cut1], parent1[cut1:cut2], parent2[cut2:])
	return child1, child2
}

type mutationTarget int

const (
	mutateTimeslots mutationTarget = iota
	mutateRooms
	mutateBoth
)

type mutationAction int

const (
	addMember mutationAction = iota
	removeMember
	changeMembers
)

// Mutates one random assignment. Children share assignments with their parents, so the mutated
// solution is always a fresh copy.
type mutator struct {
	timeslots int
	rooms     int
}

func (mutator mutator) mutate(solution model.Solution, rng *rand.Rand) model.Solution {
	mutated := solution.Clone()
	if len(mutated) == 0 {
		return mutated
	}

	assignment := &mutated[rng.Intn(len(mutated))]
	target := mutationTarget(rng.Intn(3))
	if target == mutateTimeslots || target == mutateBoth {
		mutator.mutateTimeslots(assignment, rng)
	}
	if target == mutateRooms || target == mutateBoth {
		mutator.mutateRooms(assignment, rng)
	}
	return mutated
}

func randomAction(members int, rng *rand.Rand) mutationAction {
	if members > 1 {
		return mutationAction(rng.Intn(3))
	}
	return []mutationAction{addMember, changeMembers}[rng.Intn(2)]
}

// Adds the slot after the last one, removes a slot or shifts every slot by one position
func (mutator mutator) mutateTimeslots(assignment *model.Assignment, rng *rand.Rand) {
	if mutator.timeslots == 0 {
		return
	}
	if len(assignment.Timeslots) == 0 {
		assignment.Timeslots = []int{rng.Intn(mutator.timeslots)}
		return
	}

	switch randomAction(len(assignment.Timeslots), rng) {
	case addMember:
		if next := slices.Max(assignment.Timeslots) + 1; len(assignment.Timeslots) < maxExamSlots && next < mutator.timeslots {
			assignment.Timeslots = append(assignment.Timeslots, next)
		}
	case removeMember:
		index := rng.Intn(len(assignment.Timeslots))
		assignment.Timeslots = slices.Delete(assignment.Timeslots, index, index+1)
	case changeMembers:
		delta := []int{-1, 1}[rng.Intn(2)]
		for i, timeslot := range assignment.Timeslots {
			if shifted := timeslot + delta; shifted >= 0 && shifted < mutator.timeslots {
				assignment.Timeslots[i] = shifted
			}
		}
	}
}

// Adds an absent room, removes a room or replaces one
func (mutator mutator) mutateRooms(assignment *model.Assignment, rng *rand.Rand) {
	if mutator.rooms == 0 {
		return
	}
	if len(assignment.Rooms) == 0 {
		assignment.Rooms = []int{rng.Intn(mutator.rooms)}
		return
	}

	switch randomAction(len(assignment.Rooms), rng) {
	case addMember:
		if room := rng.Intn(mutator.rooms); !slices.Contains(assignment.Rooms, room) {
			assignment.Rooms = append(assignment.Rooms, room)
		}
	case removeMember:
		index := rng.Intn(len(assignment.Rooms))
		assignment.Rooms = slices.Delete(assignment.Rooms, index, index+1)
	case changeMembers:
		assignment.Rooms[rng.Intn(len(assignment.Rooms))] = rng.Intn(mutator.rooms)
	}
}
