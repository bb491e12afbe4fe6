package fscatalog

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"

	"quizdesk/internal/domain"
)

func TestListSkipsMalformedDocuments(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	writeFile(t, filepath.Join(dir, "good.json"), `{"name":"Capitals","author":"Ms. Smith","questions":[{"question":"Capital of France?","answer":"Paris"}]}`)
	writeFile(t, filepath.Join(dir, "broken.json"), `{"name": "oops"`)
	writeFile(t, filepath.Join(dir, "notes.txt"), "not a quiz")

	catalog, err := New(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	quizzes, err := catalog.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("expected 1 quiz, got %d", len(quizzes))
	}
	quiz := quizzes[0]
	if quiz.Name != "Capitals" || len(quiz.Questions) != 1 {
		t.Fatalf("unexpected quiz: %+v", quiz)
	}
	if quiz.Path != filepath.Join(dir, "good.json") {
		t.Fatalf("expected source path recorded, got %q", quiz.Path)
	}
}

func TestImportRefusesDuplicates(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	src := filepath.Join(t.TempDir(), "capitals.json")
	writeFile(t, src, `{"name":"Capitals","author":"Ms. Smith","questions":[]}`)

	catalog, err := New(dir, nil)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}

	if err := catalog.Import(ctx, src); err != nil {
		t.Fatalf("import: %v", err)
	}
	quizzes, err := catalog.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(quizzes) != 1 {
		t.Fatalf("expected imported quiz to be listed, got %d", len(quizzes))
	}

	if err := catalog.Import(ctx, src); !errors.Is(err, domain.ErrDuplicateQuiz) {
		t.Fatalf("expected ErrDuplicateQuiz, got %v", err)
	}
}

func TestImportMissingSource(t *testing.T) {
	catalog, err := New(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("new catalog: %v", err)
	}
	err = catalog.Import(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, domain.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
