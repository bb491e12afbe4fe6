// Package schema holds the relational row models and migrations shared by the
// SQLite and Postgres stores.
package schema

import (
	"github.com/uptrace/bun"
)

// UserRow is the persisted user record.
type UserRow struct {
	bun.BaseModel `bun:"table:users"`

	ID           int64  `bun:"id,pk,autoincrement"`
	Username     string `bun:"username,notnull,unique"`
	PasswordHash string `bun:"password_hash,notnull"`
	AccountType  string `bun:"account_type,notnull"`
}

// ResultRow is the persisted attempt record. The attempt date is a fixed
// second-precision string and the score a serialized two-field payload, so
// both round-trip exactly.
type ResultRow struct {
	bun.BaseModel `bun:"table:results"`

	ID             int64  `bun:"id,pk,autoincrement"`
	UserID         int64  `bun:"user_id,notnull"`
	AttemptDate    string `bun:"attempt_date,notnull"`
	ScoreData      string `bun:"score_data,notnull"`
	TotalQuestions int    `bun:"total_questions,notnull"`
}
