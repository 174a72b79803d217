package model

// Indexer gives a unique index to an (exam, timeslot, room) triple. Indices cover [0, Size())
// without gaps, so they can address a dense table.
type Indexer interface {
	// Returns a unique index for the triple
	Index(exam, timeslot, room int) int
	// Number of distinct triples
	Size() int
}

func NewIndexer(exams, timeslots, rooms int) Indexer {
	return &indexerImplementation{
		exams:     exams,
		timeslots: timeslots,
		rooms:     rooms,
	}
}
