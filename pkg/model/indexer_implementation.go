package model

type indexerImplementation struct {
	exams     int
	timeslots int
	rooms     int
}

func (indexer *indexerImplementation) Index(exam, timeslot, room int) int {
	return exam + indexer.exams*timeslot + indexer.exams*indexer.timeslots*room
}

func (indexer *indexerImplementation) Size() int {
	return indexer.exams * indexer.timeslots * indexer.rooms
}
