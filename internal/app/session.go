package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"quizdesk/internal/domain"
)

// ResultRepository abstracts where attempt outcomes are persisted (in-memory,
// SQLite, Postgres, optionally behind a cache).
type ResultRepository interface {
	Record(ctx context.Context, userID int64, score domain.Score, when time.Time) (domain.AttemptResult, error)
	History(ctx context.Context, userID int64) ([]domain.AttemptResult, error)
	RecentWindow(ctx context.Context, userID int64, now time.Time, days int) ([]domain.AttemptResult, error)
}

// SessionState is the lifecycle phase of a quiz attempt.
type SessionState int

const (
	StateNotStarted SessionState = iota
	StateInProgress
	StateFinished
)

// QuizService drives quiz attempts: it owns session creation, the countdown
// and the finalize-then-persist step.
type QuizService struct {
	results ResultRepository
	clock   func() time.Time
}

func NewQuizService(results ResultRepository) *QuizService {
	return NewQuizServiceWithClock(results, time.Now)
}

// NewQuizServiceWithClock allows deterministic timestamps in tests.
func NewQuizServiceWithClock(results ResultRepository, now func() time.Time) *QuizService {
	return &QuizService{results: results, clock: now}
}

// Start begins an attempt at the quiz for the given user. One session is
// active at a time per station; the engine does not enforce that.
func (s *QuizService) Start(quiz domain.QuizDefinition, userID int64) *Session {
	return &Session{
		quiz:      quiz,
		userID:    userID,
		state:     StateInProgress,
		answers:   make(map[int]string),
		startedAt: s.clock(),
		totalTime: quiz.TimeLimit(),
	}
}

// Tick advances the countdown for timed sessions. When the limit is reached
// it commits the staged partial answer, finishes the attempt and records the
// outcome. A late tick on an already finished session is a no-op, not an
// error; the timer callback races the user's own Finish and must tolerate
// scheduling jitter.
func (s *QuizService) Tick(ctx context.Context, sess *Session) (remaining time.Duration, finished bool, err error) {
	sess.mu.Lock()
	switch {
	case sess.state == StateFinished:
		sess.mu.Unlock()
		return 0, true, nil
	case sess.state != StateInProgress:
		sess.mu.Unlock()
		return 0, false, domain.ErrInvalidState
	case sess.totalTime <= 0:
		sess.mu.Unlock()
		return 0, false, nil
	}
	remaining = sess.totalTime - s.clock().Sub(sess.startedAt)
	sess.mu.Unlock()

	if remaining > 0 {
		return remaining, false, nil
	}

	if _, err := s.Finish(ctx, sess); err != nil {
		if errors.Is(err, domain.ErrInvalidState) {
			// Lost the race against another finisher; the attempt is
			// already recorded.
			return 0, true, nil
		}
		return 0, true, err
	}
	return 0, true, nil
}

// Finish finalizes the attempt, scores it and persists the outcome exactly
// once. A second call fails with ErrInvalidState and records nothing.
func (s *QuizService) Finish(ctx context.Context, sess *Session) (domain.AttemptResult, error) {
	score, err := sess.finalize()
	if err != nil {
		return domain.AttemptResult{}, err
	}
	result, err := s.results.Record(ctx, sess.userID, score, s.clock())
	if err != nil {
		// No partial-write recovery: the attempt's outcome is lost and the
		// failure is user-visible.
		return domain.AttemptResult{}, err
	}
	return result, nil
}

// TimerUpdate is one emission of the countdown goroutine.
type TimerUpdate struct {
	Remaining time.Duration
	Finished  bool
	Err       error
}

// Countdown runs the session timer on a ticker, calling Tick on every fire.
// The channel closes once the session finishes or the caller cancels; the
// cancel function must be invoked to avoid leaks. Updates are dropped rather
// than letting a slow consumer block the timer.
func (s *QuizService) Countdown(ctx context.Context, sess *Session, interval time.Duration) (<-chan TimerUpdate, func()) {
	if interval <= 0 {
		interval = time.Second
	}
	ch := make(chan TimerUpdate, 8)
	done := make(chan struct{})
	var once sync.Once
	cancel := func() { once.Do(func() { close(done) }) }

	go func() {
		defer close(ch)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				remaining, finished, err := s.Tick(ctx, sess)
				update := TimerUpdate{Remaining: remaining, Finished: finished, Err: err}
				select {
				case ch <- update:
				default:
				}
				if finished || err != nil {
					return
				}
			}
		}
	}()
	return ch, cancel
}

// Session is the state machine of a single quiz attempt. It is owned by the
// engine for the attempt's lifetime and destroyed on finalize or abandonment;
// partial attempts are never persisted. The mutex exists only because the
// countdown goroutine races the caller's thread.
type Session struct {
	mu        sync.Mutex
	quiz      domain.QuizDefinition
	userID    int64
	state     SessionState
	current   int
	answers   map[int]string
	staged    *string
	startedAt time.Time
	totalTime time.Duration
	score     domain.Score
}

// State returns the current lifecycle phase.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Quiz returns the definition this attempt runs against.
func (s *Session) Quiz() domain.QuizDefinition {
	return s.quiz
}

// Progress reports the cursor position and the question count.
func (s *Session) Progress() (current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, len(s.quiz.Questions)
}

// CurrentQuestion returns the question under the cursor. ok is false once the
// cursor has moved past the last question and the session is ready to finish.
func (s *Session) CurrentQuestion() (q domain.Question, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress || s.current >= len(s.quiz.Questions) {
		return domain.Question{}, false
	}
	return s.quiz.Questions[s.current], true
}

// Stage records a partial answer for the current question without advancing.
// This is what timer expiry flushes into the answer map.
func (s *Session) Stage(answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return domain.ErrInvalidState
	}
	if s.current < len(s.quiz.Questions) {
		s.staged = &answer
	}
	return nil
}

// SubmitAndAdvance stores the answer verbatim for the current question and
// moves the cursor forward. Advancing past the last question keeps the
// session InProgress until Finish is called.
func (s *Session) SubmitAndAdvance(answer string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return domain.ErrInvalidState
	}
	if s.current >= len(s.quiz.Questions) {
		return domain.ErrInvalidState
	}
	s.answers[s.current] = answer
	s.staged = nil
	s.current++
	return nil
}

// Remaining reports the time left on a timed session as of now. timed is
// false for untimed sessions.
func (s *Session) Remaining(now time.Time) (left time.Duration, timed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.totalTime <= 0 {
		return 0, false
	}
	left = s.totalTime - now.Sub(s.startedAt)
	if left < 0 {
		left = 0
	}
	return left, true
}

// Score returns the outcome of a finished attempt.
func (s *Session) Score() (domain.Score, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateFinished {
		return domain.Score{}, false
	}
	return s.score, true
}

// finalize transitions to Finished and scores every question. Unanswered
// questions default to the empty string, so they are indistinguishable from
// wrong answers.
func (s *Session) finalize() (domain.Score, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateInProgress {
		return domain.Score{}, domain.ErrInvalidState
	}
	if s.staged != nil && s.current < len(s.quiz.Questions) {
		s.answers[s.current] = *s.staged
		s.staged = nil
	}

	correct := 0
	for i, question := range s.quiz.Questions {
		if question.Matches(s.answers[i]) {
			correct++
		}
	}
	s.score = domain.Score{CorrectCount: correct, TotalQuestions: len(s.quiz.Questions)}
	s.state = StateFinished
	return s.score, nil
}
