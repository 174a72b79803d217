package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestCodecTokens(t *testing.T) {
	//** Arrange
	input := newTestInput(t)
	codec := NewCodec(input, zaptest.NewLogger(t))

	//** Act
	exams, timeslots, rooms := codec.Tokens()

	//** Assert
	assert.Equal(t, []string{"C1", "C2"}, exams)
	assert.Equal(t, []string{"TS1", "TS2", "TS3", "TS4"}, timeslots)
	assert.Equal(t, []string{"R1", "R2"}, rooms)
}

func TestCodecRoundTrip(t *testing.T) {
	//** Arrange
	input := newTestInput(t)
	codec := NewCodec(input, zaptest.NewLogger(t))
	assignment := Assignment{Exam: 1, Timeslots: []int{2, 3}, Rooms: []int{0, 1}}

	//** Act
	encoded := codec.Format(assignment)
	parsed, err := codec.Parse(encoded)
	require.NoError(t, err)
	decoded := codec.DecodeStrings([]string{encoded})

	//** Assert
	assert.Equal(t, "C2-TS3+TS4-R1+R2", encoded)
	assert.Equal(t, assignment, parsed)
	require.Len(t, decoded, 1)
	assert.Same(t, &input.Exams[1], decoded[0].Exam)
	assert.Same(t, &input.Timeslots[2], decoded[0].Timeslots[0])
	assert.Same(t, &input.Timeslots[3], decoded[0].Timeslots[1])
	assert.Same(t, &input.Rooms[0], decoded[0].Rooms[0])
	assert.Same(t, &input.Rooms[1], decoded[0].Rooms[1])
}

func TestCodecParse(t *testing.T) {
	input := newTestInput(t)
	codec := NewCodec(input, zaptest.NewLogger(t))

	malformed := map[string]string{
		"Missing part":        "C1-TS1",
		"Extra part":          "C1-TS1-R1-R2",
		"Wrong exam prefix":   "X1-TS1-R1",
		"Wrong slot prefix":   "C1-R1-R1",
		"Unnumbered token":    "C1-TSa-R1",
		"Unknown exam":        "C3-TS1-R1",
		"Unknown timeslot":    "C1-TS5-R1",
		"Zero room":           "C1-TS1-R0",
		"Empty rooms":         "C1-TS1-",
		"Dangling separator":  "C1-TS1+-R1",
		"Empty encoding":      "",
		"Negative timeslot":   "C1-TS-1-R1",
		"Timeslot with rooms": "C1-TS1+R1-R1",
	}

	for name, encoded := range malformed {
		t.Run(name, func(t *testing.T) {
			//** Act
			_, err := codec.Parse(encoded)

			//** Assert
			var target *MalformedEncodingError
			assert.ErrorAs(t, err, &target)
		})
	}
}

func TestCodecDecodeSkipsMalformed(t *testing.T) {
	//** Arrange
	input := newTestInput(t)
	codec := NewCodec(input, zaptest.NewLogger(t))
	solution := Solution{
		{Exam: 0, Timeslots: []int{0}, Rooms: []int{1}},
		{Exam: 5, Timeslots: []int{0}, Rooms: []int{1}},
		{Exam: 1, Timeslots: []int{-1}, Rooms: []int{0}},
	}

	//** Act
	decoded := codec.Decode(solution)
	decodedStrings := codec.DecodeStrings([]string{"C1-TS1-R2", "garbage", "C2-TS9-R1"})

	//** Assert
	assert.Len(t, decoded, 1)
	assert.Same(t, &input.Exams[0], decoded[0].Exam)
	assert.Equal(t, decoded, decodedStrings)
}
