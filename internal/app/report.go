package app

import (
	"context"
	"time"

	"quizdesk/internal/domain"
)

// DefaultWindowDays is the rolling window used for short-term reporting:
// today plus the previous four calendar days.
const DefaultWindowDays = 5

// ReportService derives the dashboard series and the past-results view from
// the results store.
type ReportService struct {
	results ResultRepository
}

func NewReportService(results ResultRepository) *ReportService {
	return &ReportService{results: results}
}

// History returns every attempt of the user, most-recent first.
func (s *ReportService) History(ctx context.Context, userID int64) ([]domain.AttemptResult, error) {
	return s.results.History(ctx, userID)
}

// RecentWindow returns the user's attempts dated within the rolling window of
// calendar days ending at date(now), most-recent first.
func (s *ReportService) RecentWindow(ctx context.Context, userID int64, now time.Time, days int) ([]domain.AttemptResult, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	return s.results.RecentWindow(ctx, userID, now, days)
}

// Dashboard produces exactly one DashboardDay per calendar day of the window,
// in chronological order. An empty window is the zero-data baseline, not an
// error: every day reports {0, 0}. Days without attempts inside a non-empty
// window also appear as {0, 0}.
func (s *ReportService) Dashboard(ctx context.Context, userID int64, now time.Time, days int) ([]domain.DashboardDay, error) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	rows, err := s.results.RecentWindow(ctx, userID, now, days)
	if err != nil {
		return nil, err
	}

	type bucket struct {
		attempts int
		correct  int
		total    int
	}
	buckets := make(map[string]*bucket, len(rows))
	for _, row := range rows {
		key := row.AttemptDate.Format("2006-01-02")
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.attempts++
		b.correct += row.Score.CorrectCount
		b.total += row.Score.TotalQuestions
	}

	series := make([]domain.DashboardDay, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		entry := domain.DashboardDay{
			Date: time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location()),
		}
		if b, ok := buckets[day.Format("2006-01-02")]; ok {
			entry.Attempts = b.attempts
			if b.total > 0 {
				entry.AvgPercentage = float64(b.correct) / float64(b.total) * 100
			}
		}
		series = append(series, entry)
	}
	return series, nil
}
