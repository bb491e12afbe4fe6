package memory

import (
	"context"
	"testing"
	"time"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

func TestResultsCacheServesRepeatedWindows(t *testing.T) {
	ctx := context.Background()
	inner := &countingRepo{ResultRepository: NewResultsStore()}
	cache := NewResultsCache(inner, time.Minute)

	now := time.Date(2025, 3, 18, 12, 0, 0, 0, time.Local)
	if _, err := cache.Record(ctx, 1, domain.Score{CorrectCount: 1, TotalQuestions: 2}, now); err != nil {
		t.Fatalf("record: %v", err)
	}

	if _, err := cache.RecentWindow(ctx, 1, now, 5); err != nil {
		t.Fatalf("recent window: %v", err)
	}
	if inner.windowCalls != 1 {
		t.Fatalf("expected one store read, got %d", inner.windowCalls)
	}

	if _, err := cache.RecentWindow(ctx, 1, now, 5); err != nil {
		t.Fatalf("recent window: %v", err)
	}
	if inner.windowCalls != 1 {
		t.Fatalf("expected cache hit, store reads=%d", inner.windowCalls)
	}
}

func TestResultsCacheInvalidatesOnRecord(t *testing.T) {
	ctx := context.Background()
	inner := &countingRepo{ResultRepository: NewResultsStore()}
	cache := NewResultsCache(inner, time.Minute)

	now := time.Date(2025, 3, 18, 12, 0, 0, 0, time.Local)
	rows, err := cache.RecentWindow(ctx, 1, now, 5)
	if err != nil {
		t.Fatalf("recent window: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected empty window, got %d rows", len(rows))
	}

	if _, err := cache.Record(ctx, 1, domain.Score{CorrectCount: 2, TotalQuestions: 3}, now); err != nil {
		t.Fatalf("record: %v", err)
	}

	rows, err = cache.RecentWindow(ctx, 1, now, 5)
	if err != nil {
		t.Fatalf("recent window: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected fresh row after record, got %d rows", len(rows))
	}
	if inner.windowCalls != 2 {
		t.Fatalf("expected cache drop to force a re-read, store reads=%d", inner.windowCalls)
	}
}

type countingRepo struct {
	app.ResultRepository
	windowCalls int
}

func (r *countingRepo) RecentWindow(ctx context.Context, userID int64, now time.Time, days int) ([]domain.AttemptResult, error) {
	r.windowCalls++
	return r.ResultRepository.RecentWindow(ctx, userID, now, days)
}
