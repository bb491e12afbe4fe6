// Package fscatalog stores the quiz catalog as a directory of self-describing
// JSON documents, one file per quiz.
package fscatalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"quizdesk/internal/domain"
)

// Catalog implements app.Catalog on top of a quiz directory.
type Catalog struct {
	dir string
	log *zap.Logger
}

// New ensures the quiz directory exists and returns a catalog over it.
func New(dir string, log *zap.Logger) (*Catalog, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create quiz dir: %w", err)
	}
	return &Catalog{dir: dir, log: log}, nil
}

// List reads every .json document in the quiz directory, in listing order.
// Malformed documents are skipped with a warning; they never abort the
// listing.
func (c *Catalog) List(ctx context.Context) ([]domain.QuizDefinition, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: read quiz dir: %v", domain.ErrPersistence, err)
	}

	var quizzes []domain.QuizDefinition
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		path := filepath.Join(c.dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			c.log.Warn("skipping unreadable quiz file", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		var quiz domain.QuizDefinition
		if err := json.Unmarshal(data, &quiz); err != nil {
			c.log.Warn("skipping malformed quiz file", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}
		quiz.Path = path
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}

// Import copies a quiz document into the catalog directory. The document is
// not structurally validated here: missing fields degrade at session launch.
func (c *Catalog) Import(ctx context.Context, sourcePath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dest := filepath.Join(c.dir, filepath.Base(sourcePath))
	if _, err := os.Stat(dest); err == nil {
		return domain.ErrDuplicateQuiz
	}
	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return fmt.Errorf("%w: read quiz source: %v", domain.ErrPersistence, err)
	}
	if err := os.WriteFile(dest, data, 0o644); err != nil {
		return fmt.Errorf("%w: write quiz document: %v", domain.ErrPersistence, err)
	}
	return nil
}
