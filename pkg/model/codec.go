package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

const (
	examPrefix     = "C"
	timeslotPrefix = "TS"
	roomPrefix     = "R"

	tokenSeparator  = "-"
	memberSeparator = "+"
)

type MalformedEncodingError struct {
	Encoding string
	Reason   string
}

func (err *MalformedEncodingError) Error() string {
	return fmt.Sprintf("malformed assignment %q: %v", err.Encoding, err.Reason)
}

func examToken(index int) string     { return examPrefix + strconv.Itoa(index+1) }
func timeslotToken(index int) string { return timeslotPrefix + strconv.Itoa(index+1) }
func roomToken(index int) string     { return roomPrefix + strconv.Itoa(index+1) }

// Codec translates between catalog entities, their symbolic tokens and typed assignments. Tokens are
// derived from catalog positions, so they stay stable for as long as the input does.
type Codec struct {
	input  ModelInput
	logger *zap.Logger
}

func NewCodec(input ModelInput, logger *zap.Logger) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Codec{input: input, logger: logger}
}

// Returns the exam, timeslot and room tokens in catalog order
func (codec *Codec) Tokens() (exams, timeslots, rooms []string) {
	exams = lo.Times(len(codec.input.Exams), examToken)
	timeslots = lo.Times(len(codec.input.Timeslots), timeslotToken)
	rooms = lo.Times(len(codec.input.Rooms), roomToken)
	return exams, timeslots, rooms
}

func (codec *Codec) Format(assignment Assignment) string {
	return assignment.String()
}

func (codec *Codec) Parse(encoded string) (Assignment, error) {
	malformed := func(format string, args ...any) error {
		return &MalformedEncodingError{Encoding: encoded, Reason: fmt.Sprintf(format, args...)}
	}

	parts := strings.Split(strings.TrimSpace(encoded), tokenSeparator)
	if len(parts) != 3 {
		return Assignment{}, malformed("expected 3 parts, got %d", len(parts))
	}

	exam, err := parseToken(parts[0], examPrefix, len(codec.input.Exams))
	if err != nil {
		return Assignment{}, malformed("exam: %v", err)
	}
	timeslots, err := parseTokens(parts[1], timeslotPrefix, len(codec.input.Timeslots))
	if err != nil {
		return Assignment{}, malformed("timeslot: %v", err)
	}
	rooms, err := parseTokens(parts[2], roomPrefix, len(codec.input.Rooms))
	if err != nil {
		return Assignment{}, malformed("room: %v", err)
	}

	return Assignment{Exam: exam, Timeslots: timeslots, Rooms: rooms}, nil
}

// Resolves an assignment against the catalogs
func (codec *Codec) DecodeAssignment(assignment Assignment) (DecodedAssignment, error) {
	if assignment.Exam < 0 || assignment.Exam >= len(codec.input.Exams) {
		return DecodedAssignment{}, &MalformedEncodingError{Encoding: assignment.String(), Reason: "unknown exam"}
	}

	decoded := DecodedAssignment{
		Exam:      &codec.input.Exams[assignment.Exam],
		Timeslots: make([]*Timeslot, 0, len(assignment.Timeslots)),
		Rooms:     make([]*Room, 0, len(assignment.Rooms)),
	}
	for _, timeslot := range assignment.Timeslots {
		if timeslot < 0 || timeslot >= len(codec.input.Timeslots) {
			return DecodedAssignment{}, &MalformedEncodingError{Encoding: assignment.String(), Reason: "unknown timeslot"}
		}
		decoded.Timeslots = append(decoded.Timeslots, &codec.input.Timeslots[timeslot])
	}
	for _, room := range assignment.Rooms {
		if room < 0 || room >= len(codec.input.Rooms) {
			return DecodedAssignment{}, &MalformedEncodingError{Encoding: assignment.String(), Reason: "unknown room"}
		}
		decoded.Rooms = append(decoded.Rooms, &codec.input.Rooms[room])
	}
	return decoded, nil
}

// Decodes every assignment of the solution. Malformed assignments are skipped.
func (codec *Codec) Decode(solution Solution) []DecodedAssignment {
	decoded := make([]DecodedAssignment, 0, len(solution))
	for _, assignment := range solution {
		resolved, err := codec.DecodeAssignment(assignment)
		if err != nil {
			codec.logger.Debug("skipping assignment", zap.Error(err))
			continue
		}
		decoded = append(decoded, resolved)
	}
	return decoded
}

// Parses and decodes textual assignments. Malformed ones are skipped.
func (codec *Codec) DecodeStrings(encoded []string) []DecodedAssignment {
	solution := make(Solution, 0, len(encoded))
	for _, text := range encoded {
		assignment, err := codec.Parse(text)
		if err != nil {
			codec.logger.Debug("skipping assignment", zap.Error(err))
			continue
		}
		solution = append(solution, assignment)
	}
	return codec.Decode(solution)
}

func parseTokens(part, prefix string, size int) ([]int, error) {
	if part == "" {
		return nil, fmt.Errorf("no tokens")
	}
	tokens := strings.Split(part, memberSeparator)
	indices := make([]int, 0, len(tokens))
	for _, token := range tokens {
		index, err := parseToken(token, prefix, size)
		if err != nil {
			return nil, err
		}
		indices = append(indices, index)
	}
	return indices, nil
}

func parseToken(token, prefix string, size int) (int, error) {
	digits, ok := strings.CutPrefix(token, prefix)
	if !ok {
		return 0, fmt.Errorf("token %q lacks prefix %q", token, prefix)
	}
	number, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("token %q is not numbered", token)
	}
	if number < 1 || number > size {
		return 0, fmt.Errorf("token %q matches no entity", token)
	}
	return number - 1, nil
}
