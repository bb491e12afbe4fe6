// Package postgres is the alternate shared-database backend. Migrations run
// through bun (see the migrate command); queries go through pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"quizdesk/internal/domain"
)

// Store implements app.CredentialRepository and app.ResultRepository on a
// Postgres pool.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Create(ctx context.Context, user domain.User) (domain.User, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, password_hash, account_type) VALUES ($1, $2, $3) RETURNING id`,
		user.Username, user.PasswordHash, string(user.AccountType),
	).Scan(&user.ID)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.User{}, domain.ErrDuplicateUser
		}
		return domain.User{}, fmt.Errorf("%w: insert user: %v", domain.ErrPersistence, err)
	}
	return user, nil
}

func (s *Store) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	var user domain.User
	var accountType string
	err := s.pool.QueryRow(ctx,
		`SELECT id, username, password_hash, account_type FROM users WHERE username=$1`,
		username,
	).Scan(&user.ID, &user.Username, &user.PasswordHash, &accountType)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("%w: find user: %v", domain.ErrPersistence, err)
	}
	user.AccountType = domain.AccountType(accountType)
	return user, nil
}

func (s *Store) UpdateUsername(ctx context.Context, id int64, username string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET username=$1 WHERE id=$2`, username, id)
	if err != nil {
		if strings.Contains(err.Error(), "duplicate key") {
			return domain.ErrDuplicateUser
		}
		return fmt.Errorf("%w: update username: %v", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	tag, err := s.pool.Exec(ctx, `UPDATE users SET password_hash=$1 WHERE id=$2`, passwordHash, id)
	if err != nil {
		return fmt.Errorf("%w: update password: %v", domain.ErrPersistence, err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *Store) List(ctx context.Context, filter string) ([]domain.User, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, username, password_hash, account_type FROM users
		 WHERE $1 = '' OR lower(username) LIKE '%' || lower($1) || '%'
		 ORDER BY id ASC`,
		filter,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: list users: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		var user domain.User
		var accountType string
		if err := rows.Scan(&user.ID, &user.Username, &user.PasswordHash, &accountType); err != nil {
			return nil, fmt.Errorf("%w: scan user: %v", domain.ErrPersistence, err)
		}
		user.AccountType = domain.AccountType(accountType)
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list users: %v", domain.ErrPersistence, err)
	}
	return users, nil
}

func (s *Store) Record(ctx context.Context, userID int64, score domain.Score, when time.Time) (domain.AttemptResult, error) {
	when = when.Truncate(time.Second)
	var id int64
	err := s.pool.QueryRow(ctx,
		`INSERT INTO results (user_id, attempt_date, score_data, total_questions)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		userID, when.Format(domain.AttemptDateFormat), score.Payload(), score.TotalQuestions,
	).Scan(&id)
	if err != nil {
		return domain.AttemptResult{}, fmt.Errorf("%w: insert result: %v", domain.ErrPersistence, err)
	}
	return domain.AttemptResult{ID: id, UserID: userID, AttemptDate: when, Score: score}, nil
}

func (s *Store) History(ctx context.Context, userID int64) ([]domain.AttemptResult, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, attempt_date, score_data FROM results
		 WHERE user_id=$1 ORDER BY attempt_date DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: load history: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()
	return scanResults(rows)
}

func (s *Store) RecentWindow(ctx context.Context, userID int64, now time.Time, days int) ([]domain.AttemptResult, error) {
	start, end := windowBounds(now, days)
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, attempt_date, score_data FROM results
		 WHERE user_id=$1 AND attempt_date >= $2 AND attempt_date < $3
		 ORDER BY attempt_date DESC, id DESC`,
		userID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: load recent window: %v", domain.ErrPersistence, err)
	}
	defer rows.Close()
	return scanResults(rows)
}

func windowBounds(now time.Time, days int) (string, string) {
	startDay := now.AddDate(0, 0, -(days - 1))
	start := time.Date(startDay.Year(), startDay.Month(), startDay.Day(), 0, 0, 0, 0, startDay.Location())
	end := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	return start.Format(domain.AttemptDateFormat), end.Format(domain.AttemptDateFormat)
}

// scanResults converts stored rows, silently dropping ones whose date or
// score payload no longer parses.
func scanResults(rows pgx.Rows) ([]domain.AttemptResult, error) {
	var results []domain.AttemptResult
	for rows.Next() {
		var (
			id, userID int64
			rawDate    string
			rawScore   string
		)
		if err := rows.Scan(&id, &userID, &rawDate, &rawScore); err != nil {
			return nil, fmt.Errorf("%w: scan result: %v", domain.ErrPersistence, err)
		}
		when, err := time.ParseInLocation(domain.AttemptDateFormat, rawDate, time.Local)
		if err != nil {
			continue
		}
		score, err := domain.ParseScorePayload(rawScore)
		if err != nil {
			continue
		}
		results = append(results, domain.AttemptResult{ID: id, UserID: userID, AttemptDate: when, Score: score})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read results: %v", domain.ErrPersistence, err)
	}
	return results, nil
}
