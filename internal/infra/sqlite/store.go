// Package sqlite is the default single-station backend: one embedded database
// file holding users and attempt results.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"quizdesk/internal/domain"
	"quizdesk/internal/infra/schema"
)

// Store implements app.CredentialRepository and app.ResultRepository on a
// SQLite database file.
type Store struct {
	db *bun.DB
}

// Open opens (and migrates) the database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	sqldb, err := sql.Open(sqliteshim.ShimName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// Single writer; SQLite serializes writes anyway.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if err := schema.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Create(ctx context.Context, user domain.User) (domain.User, error) {
	row := schema.UserRow{
		Username:     user.Username,
		PasswordHash: user.PasswordHash,
		AccountType:  string(user.AccountType),
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return domain.User{}, domain.ErrDuplicateUser
		}
		return domain.User{}, fmt.Errorf("%w: insert user: %v", domain.ErrPersistence, err)
	}
	user.ID = row.ID
	return user, nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	var row schema.UserRow
	err := s.db.NewSelect().Model(&row).Where("username = ?", username).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("%w: find user: %v", domain.ErrPersistence, err)
	}
	return toUser(row), nil
}

func (s *Store) UpdateUsername(ctx context.Context, id int64, username string) error {
	res, err := s.db.NewUpdate().
		Model((*schema.UserRow)(nil)).
		Set("username = ?", username).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return domain.ErrDuplicateUser
		}
		return fmt.Errorf("%w: update username: %v", domain.ErrPersistence, err)
	}
	return requireRow(res)
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	res, err := s.db.NewUpdate().
		Model((*schema.UserRow)(nil)).
		Set("password_hash = ?", passwordHash).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("%w: update password: %v", domain.ErrPersistence, err)
	}
	return requireRow(res)
}

func (s *Store) List(ctx context.Context, filter string) ([]domain.User, error) {
	var rows []schema.UserRow
	q := s.db.NewSelect().Model(&rows).Order("id ASC")
	if filter != "" {
		q = q.Where("lower(username) LIKE ?", "%"+strings.ToLower(filter)+"%")
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("%w: list users: %v", domain.ErrPersistence, err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, toUser(row))
	}
	return users, nil
}

func (s *Store) Record(ctx context.Context, userID int64, score domain.Score, when time.Time) (domain.AttemptResult, error) {
	when = when.Truncate(time.Second)
	row := schema.ResultRow{
		UserID:         userID,
		AttemptDate:    when.Format(domain.AttemptDateFormat),
		ScoreData:      score.Payload(),
		TotalQuestions: score.TotalQuestions,
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return domain.AttemptResult{}, fmt.Errorf("%w: insert result: %v", domain.ErrPersistence, err)
	}
	return domain.AttemptResult{ID: row.ID, UserID: userID, AttemptDate: when, Score: score}, nil
}

func (s *Store) History(ctx context.Context, userID int64) ([]domain.AttemptResult, error) {
	var rows []schema.ResultRow
	err := s.db.NewSelect().Model(&rows).
		Where("user_id = ?", userID).
		Order("attempt_date DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load history: %v", domain.ErrPersistence, err)
	}
	return toResults(rows), nil
}

func (s *Store) RecentWindow(ctx context.Context, userID int64, now time.Time, days int) ([]domain.AttemptResult, error) {
	start, end := windowBounds(now, days)
	var rows []schema.ResultRow
	err := s.db.NewSelect().Model(&rows).
		Where("user_id = ?", userID).
		Where("attempt_date >= ?", start).
		Where("attempt_date < ?", end).
		Order("attempt_date DESC", "id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: load recent window: %v", domain.ErrPersistence, err)
	}
	return toResults(rows), nil
}

// windowBounds returns the fixed-format date strings delimiting the window of
// calendar days ending at date(now), half-open on the right. The stored
// format sorts lexicographically, so string comparison in SQL is exact.
func windowBounds(now time.Time, days int) (string, string) {
	startDay := now.AddDate(0, 0, -(days - 1))
	start := time.Date(startDay.Year(), startDay.Month(), startDay.Day(), 0, 0, 0, 0, startDay.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return start.Format(domain.AttemptDateFormat), end.Format(domain.AttemptDateFormat)
}

func toUser(row schema.UserRow) domain.User {
	return domain.User{
		ID:           row.ID,
		Username:     row.Username,
		PasswordHash: row.PasswordHash,
		AccountType:  domain.AccountType(row.AccountType),
	}
}

// toResults converts stored rows, silently dropping ones whose date or score
// payload no longer parses. Corrupt rows are excluded, not fatal.
func toResults(rows []schema.ResultRow) []domain.AttemptResult {
	results := make([]domain.AttemptResult, 0, len(rows))
	for _, row := range rows {
		when, err := time.ParseInLocation(domain.AttemptDateFormat, row.AttemptDate, time.Local)
		if err != nil {
			continue
		}
		score, err := domain.ParseScorePayload(row.ScoreData)
		if err != nil {
			continue
		}
		results = append(results, domain.AttemptResult{
			ID:          row.ID,
			UserID:      row.UserID,
			AttemptDate: when,
			Score:       score,
		})
	}
	return results
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", domain.ErrPersistence, err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
