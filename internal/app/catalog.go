package app

import (
	"context"
	"strings"

	"quizdesk/internal/domain"
)

// Catalog abstracts where quiz documents live (filesystem directory, static
// fixtures in tests).
type Catalog interface {
	List(ctx context.Context) ([]domain.QuizDefinition, error)
	Import(ctx context.Context, sourcePath string) error
}

// CatalogService exposes the quiz browser use cases.
type CatalogService struct {
	catalog Catalog
}

func NewCatalogService(catalog Catalog) *CatalogService {
	return &CatalogService{catalog: catalog}
}

// ListQuizzes returns catalog entries in listing order, filtered
// case-insensitively against quiz name or author when filter is non-empty.
func (s *CatalogService) ListQuizzes(ctx context.Context, filter string) ([]domain.QuizDefinition, error) {
	quizzes, err := s.catalog.List(ctx)
	if err != nil {
		return nil, err
	}
	filter = strings.ToLower(strings.TrimSpace(filter))
	if filter == "" {
		return quizzes, nil
	}
	matched := make([]domain.QuizDefinition, 0, len(quizzes))
	for _, quiz := range quizzes {
		if strings.Contains(strings.ToLower(quiz.Name), filter) ||
			strings.Contains(strings.ToLower(quiz.Author), filter) {
			matched = append(matched, quiz)
		}
	}
	return matched, nil
}

// ImportQuiz copies a quiz document into the catalog. The document's internal
// structure is not validated here; missing fields degrade at session launch.
func (s *CatalogService) ImportQuiz(ctx context.Context, sourcePath string) error {
	return s.catalog.Import(ctx, sourcePath)
}

// FindQuiz locates a catalog entry by exact name.
func (s *CatalogService) FindQuiz(ctx context.Context, name string) (domain.QuizDefinition, error) {
	quizzes, err := s.catalog.List(ctx)
	if err != nil {
		return domain.QuizDefinition{}, err
	}
	for _, quiz := range quizzes {
		if quiz.Name == name {
			return quiz, nil
		}
	}
	return domain.QuizDefinition{}, domain.ErrQuizNotFound
}
