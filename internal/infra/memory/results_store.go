package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"quizdesk/internal/domain"
)

// ResultsStore is an in-memory implementation of app.ResultRepository.
// Rows are append-only, like their durable counterparts.
type ResultsStore struct {
	mu     sync.RWMutex
	nextID int64
	rows   []domain.AttemptResult
}

func NewResultsStore() *ResultsStore {
	return &ResultsStore{}
}

func (s *ResultsStore) Record(_ context.Context, userID int64, score domain.Score, when time.Time) (domain.AttemptResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	row := domain.AttemptResult{
		ID:          s.nextID,
		UserID:      userID,
		AttemptDate: when.Truncate(time.Second),
		Score:       score,
	}
	s.rows = append(s.rows, row)
	return row, nil
}

func (s *ResultsStore) History(_ context.Context, userID int64) ([]domain.AttemptResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []domain.AttemptResult
	for _, row := range s.rows {
		if row.UserID == userID {
			rows = append(rows, row)
		}
	}
	sortMostRecentFirst(rows)
	return rows, nil
}

func (s *ResultsStore) RecentWindow(_ context.Context, userID int64, now time.Time, days int) ([]domain.AttemptResult, error) {
	windowStart := midnight(now.AddDate(0, 0, -(days - 1)))
	windowEnd := midnight(now).AddDate(0, 0, 1)

	s.mu.RLock()
	defer s.mu.RUnlock()
	var rows []domain.AttemptResult
	for _, row := range s.rows {
		if row.UserID != userID {
			continue
		}
		if row.AttemptDate.Before(windowStart) || !row.AttemptDate.Before(windowEnd) {
			continue
		}
		rows = append(rows, row)
	}
	sortMostRecentFirst(rows)
	return rows, nil
}

func sortMostRecentFirst(rows []domain.AttemptResult) {
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].AttemptDate.Equal(rows[j].AttemptDate) {
			return rows[i].AttemptDate.After(rows[j].AttemptDate)
		}
		return rows[i].ID > rows[j].ID
	})
}

func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
