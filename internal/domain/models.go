package domain

import (
	"strings"
	"time"
)

// AccountType distinguishes the two flat roles the platform knows about.
type AccountType string

const (
	AccountStudent AccountType = "Student"
	AccountTeacher AccountType = "Teacher"
)

// Valid reports whether the account type is one of the known roles.
func (t AccountType) Valid() bool {
	return t == AccountStudent || t == AccountTeacher
}

// User is a persisted account record.
type User struct {
	ID           int64       `json:"id"`
	Username     string      `json:"username"`
	PasswordHash string      `json:"-"`
	AccountType  AccountType `json:"accountType"`
}

// Question models a single quiz question. An empty Options slice means the
// question takes free-text input.
type Question struct {
	Prompt  string   `json:"question"`
	Options []string `json:"options,omitempty"`
	Answer  string   `json:"answer"`
	Image   string   `json:"image,omitempty"`
}

// FreeText reports whether the question has no selectable options.
func (q Question) FreeText() bool {
	return len(q.Options) == 0
}

// Matches checks a submitted answer against the correct one using trimmed,
// case-insensitive equality. A question without an answer key is unmatchable.
func (q Question) Matches(submitted string) bool {
	answer := strings.TrimSpace(q.Answer)
	if answer == "" {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(submitted), answer)
}

// QuizDefinition is a quiz document loaded from the catalog. It is immutable
// once handed to a session.
type QuizDefinition struct {
	Name             string     `json:"name"`
	Author           string     `json:"author"`
	TimeLimitMinutes float64    `json:"time_limit,omitempty"`
	Questions        []Question `json:"questions"`

	// Path is the document's source location inside the catalog; it
	// identifies the definition and is not part of the document itself.
	Path string `json:"-"`
}

// Timed reports whether sessions for this quiz run against a countdown.
func (d QuizDefinition) Timed() bool {
	return d.TimeLimitMinutes > 0
}

// TimeLimit converts the document's minute figure into a duration.
// Zero means untimed.
func (d QuizDefinition) TimeLimit() time.Duration {
	if d.TimeLimitMinutes <= 0 {
		return 0
	}
	return time.Duration(d.TimeLimitMinutes * float64(time.Minute))
}

// Score is the immutable outcome payload of one finished attempt.
type Score struct {
	CorrectCount   int `json:"correct_count"`
	TotalQuestions int `json:"total_questions"`
}

// Percentage returns the score as 0-100, guarding the zero-question case.
func (s Score) Percentage() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return float64(s.CorrectCount) / float64(s.TotalQuestions) * 100
}

// AttemptResult is a persisted, append-only attempt outcome.
type AttemptResult struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	AttemptDate time.Time `json:"attemptDate"`
	Score       Score     `json:"score"`
}

// DashboardDay is one derived entry of the per-day report series.
type DashboardDay struct {
	Date          time.Time `json:"date"`
	Attempts      int       `json:"attempts"`
	AvgPercentage float64   `json:"avgPercentage"`
}
