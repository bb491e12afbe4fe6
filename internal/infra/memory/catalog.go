package memory

import (
	"context"
	"errors"

	"quizdesk/internal/domain"
)

// StaticCatalog is a fixed in-memory catalog (useful for tests/demos).
type StaticCatalog struct {
	quizzes []domain.QuizDefinition
}

func NewStaticCatalog(quizzes []domain.QuizDefinition) *StaticCatalog {
	return &StaticCatalog{quizzes: quizzes}
}

func (c *StaticCatalog) List(_ context.Context) ([]domain.QuizDefinition, error) {
	return c.quizzes, nil
}

func (c *StaticCatalog) Import(_ context.Context, _ string) error {
	return errors.New("static catalog is read-only")
}
