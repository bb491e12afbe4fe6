package app_test

import (
	"context"
	"errors"
	"testing"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
	"quizdesk/internal/infra/memory"
)

func TestListQuizzesFiltersByNameOrAuthor(t *testing.T) {
	ctx := context.Background()
	catalog := app.NewCatalogService(memory.NewStaticCatalog([]domain.QuizDefinition{
		{Name: "Geography Basics", Author: "Ms. Smith"},
		{Name: "Algebra", Author: "Mr. Jones"},
		{Name: "World History", Author: "smithers"},
	}))

	all, err := catalog.ListQuizzes(ctx, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 quizzes, got %d", len(all))
	}

	matched, err := catalog.ListQuizzes(ctx, "SMITH")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("expected 2 matches for author substring, got %d", len(matched))
	}

	matched, err = catalog.ListQuizzes(ctx, "algebra")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(matched) != 1 || matched[0].Name != "Algebra" {
		t.Fatalf("expected the algebra quiz, got %+v", matched)
	}
}

func TestFindQuiz(t *testing.T) {
	ctx := context.Background()
	catalog := app.NewCatalogService(memory.NewStaticCatalog([]domain.QuizDefinition{
		{Name: "Geography Basics", Author: "Ms. Smith"},
	}))

	quiz, err := catalog.FindQuiz(ctx, "Geography Basics")
	if err != nil {
		t.Fatalf("find failed: %v", err)
	}
	if quiz.Author != "Ms. Smith" {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}

	if _, err := catalog.FindQuiz(ctx, "missing"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}
