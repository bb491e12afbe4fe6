package app_test

import (
	"context"
	"testing"
	"time"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
	"quizdesk/internal/infra/memory"
)

func TestDashboardEmptyStoreIsZeroBaseline(t *testing.T) {
	ctx := context.Background()
	reports := app.NewReportService(memory.NewResultsStore())

	now := time.Date(2025, 3, 18, 22, 31, 15, 0, time.UTC)
	series, err := reports.Dashboard(ctx, 1, now, 5)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if len(series) != 5 {
		t.Fatalf("expected exactly 5 entries, got %d", len(series))
	}
	for _, day := range series {
		if day.Attempts != 0 || day.AvgPercentage != 0 {
			t.Fatalf("expected {0, 0} baseline, got %+v", day)
		}
	}
}

func TestDashboardAggregatesPerDay(t *testing.T) {
	ctx := context.Background()
	store := memory.NewResultsStore()
	reports := app.NewReportService(store)

	now := time.Date(2025, 3, 18, 22, 31, 15, 0, time.UTC)
	// Two attempts today: 3/4 and 1/4, so 4 of 8 questions -> 50%.
	mustRecord(t, store, 1, 3, 4, now)
	mustRecord(t, store, 1, 1, 4, now.Add(-2*time.Hour))
	// One attempt two days ago: 5/5 -> 100%.
	mustRecord(t, store, 1, 5, 5, now.AddDate(0, 0, -2))
	// Outside the window: six days ago.
	mustRecord(t, store, 1, 2, 2, now.AddDate(0, 0, -6))
	// Another user's attempt today must not leak in.
	mustRecord(t, store, 2, 4, 4, now)

	series, err := reports.Dashboard(ctx, 1, now, 5)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	if len(series) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(series))
	}

	for i := 1; i < len(series); i++ {
		if !series[i-1].Date.Before(series[i].Date) {
			t.Fatalf("series not chronological: %v >= %v", series[i-1].Date, series[i].Date)
		}
	}

	today := series[4]
	if today.Attempts != 2 || today.AvgPercentage != 50 {
		t.Fatalf("expected today {2, 50%%}, got %+v", today)
	}
	twoDaysAgo := series[2]
	if twoDaysAgo.Attempts != 1 || twoDaysAgo.AvgPercentage != 100 {
		t.Fatalf("expected {1, 100%%} two days ago, got %+v", twoDaysAgo)
	}
	yesterday := series[3]
	if yesterday.Attempts != 0 || yesterday.AvgPercentage != 0 {
		t.Fatalf("expected empty day as {0, 0}, got %+v", yesterday)
	}
}

func TestDashboardGuardsZeroQuestionDays(t *testing.T) {
	ctx := context.Background()
	store := memory.NewResultsStore()
	reports := app.NewReportService(store)

	now := time.Date(2025, 3, 18, 12, 0, 0, 0, time.UTC)
	mustRecord(t, store, 1, 0, 0, now)

	series, err := reports.Dashboard(ctx, 1, now, 5)
	if err != nil {
		t.Fatalf("dashboard failed: %v", err)
	}
	today := series[len(series)-1]
	if today.Attempts != 1 || today.AvgPercentage != 0 {
		t.Fatalf("expected {1, 0%%} for a zero-question day, got %+v", today)
	}
}

func TestRecordHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.NewResultsStore()
	reports := app.NewReportService(store)

	now := time.Date(2025, 3, 18, 22, 31, 15, 500_000_000, time.UTC)
	scores := []domain.Score{
		{CorrectCount: 0, TotalQuestions: 0},
		{CorrectCount: 0, TotalQuestions: 3},
		{CorrectCount: 3, TotalQuestions: 3},
		{CorrectCount: 7, TotalQuestions: 10},
	}
	for i, score := range scores {
		if _, err := store.Record(ctx, 1, score, now.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	rows, err := reports.History(ctx, 1)
	if err != nil {
		t.Fatalf("history failed: %v", err)
	}
	if len(rows) != len(scores) {
		t.Fatalf("expected %d rows, got %d", len(scores), len(rows))
	}
	// Most-recent first: reverse of insertion order.
	for i, row := range rows {
		want := scores[len(scores)-1-i]
		if row.Score != want {
			t.Fatalf("row %d: expected %+v, got %+v", i, want, row.Score)
		}
		if row.AttemptDate.Nanosecond() != 0 {
			t.Fatalf("attempt date not truncated to seconds: %v", row.AttemptDate)
		}
	}
}

func TestRecentWindowBounds(t *testing.T) {
	ctx := context.Background()
	store := memory.NewResultsStore()
	reports := app.NewReportService(store)

	now := time.Date(2025, 3, 18, 22, 31, 15, 0, time.UTC)
	inside := now.AddDate(0, 0, -4)  // oldest day still in a 5-day window
	outside := now.AddDate(0, 0, -5) // one day too old
	mustRecord(t, store, 1, 1, 2, inside)
	mustRecord(t, store, 1, 1, 2, outside)

	rows, err := reports.RecentWindow(ctx, 1, now, 0)
	if err != nil {
		t.Fatalf("recent window failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row inside the default window, got %d", len(rows))
	}
	if !rows[0].AttemptDate.Equal(inside.Truncate(time.Second)) {
		t.Fatalf("unexpected row date %v", rows[0].AttemptDate)
	}
}

func mustRecord(t *testing.T, store *memory.ResultsStore, userID int64, correct, total int, when time.Time) {
	t.Helper()
	if _, err := store.Record(context.Background(), userID, domain.Score{CorrectCount: correct, TotalQuestions: total}, when); err != nil {
		t.Fatalf("record failed: %v", err)
	}
}
