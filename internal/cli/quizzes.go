package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quizdesk/internal/app"
	"quizdesk/internal/config"
	"quizdesk/internal/infra/fscatalog"
	"quizdesk/internal/logger"
)

// NewListCmd prints the quiz catalog, optionally filtered by name or author.
func NewListCmd(configPath *string) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List quizzes in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := openCatalog(*configPath)
			if err != nil {
				return err
			}
			quizzes, err := catalog.ListQuizzes(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(quizzes) == 0 {
				fmt.Println("no quizzes available")
				return nil
			}
			for _, quiz := range quizzes {
				limit := "untimed"
				if quiz.Timed() {
					limit = fmt.Sprintf("%g min", quiz.TimeLimitMinutes)
				}
				fmt.Printf("%s | %s | %d questions | %s\n", quiz.Name, quiz.Author, len(quiz.Questions), limit)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "substring match against quiz name or author")
	return cmd
}

// NewImportCmd copies a quiz document into the catalog.
func NewImportCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import a quiz document into the catalog",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := openCatalog(*configPath)
			if err != nil {
				return err
			}
			if err := catalog.ImportQuiz(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Println("quiz imported")
			return nil
		},
	}
}

func openCatalog(configPath string) (*app.CatalogService, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	catalog, err := fscatalog.New(cfg.Quiz.Dir, logger.New(cfg.Log.Level, cfg.Log.File))
	if err != nil {
		return nil, err
	}
	return app.NewCatalogService(catalog), nil
}
