package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AttemptDateFormat is the fixed second-precision layout attempt dates are
// persisted in.
const AttemptDateFormat = "2006-01-02 15:04:05"

// Payload serializes the score as the stored two-field document.
func (s Score) Payload() string {
	data, _ := json.Marshal(s)
	return string(data)
}

// ParseScorePayload parses a stored scoring payload. The schema is strict:
// exactly the two known fields, and the counts must satisfy
// 0 <= correct_count <= total_questions. Anything else is corrupt data and is
// rejected rather than interpreted.
func ParseScorePayload(raw string) (Score, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	var score Score
	if err := dec.Decode(&score); err != nil {
		return Score{}, fmt.Errorf("parse score payload: %w", err)
	}
	if score.CorrectCount < 0 || score.TotalQuestions < 0 || score.CorrectCount > score.TotalQuestions {
		return Score{}, fmt.Errorf("score payload out of range: %d/%d", score.CorrectCount, score.TotalQuestions)
	}
	return score, nil
}
