package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"quizdesk/internal/app"
)

// NewHistoryCmd prints every past attempt of a user, most-recent first.
func NewHistoryCmd(configPath *string) *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show a user's past results",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer env.close()

			user, err := env.creds.FindByUsername(cmd.Context(), username)
			if err != nil {
				return err
			}
			reports := app.NewReportService(env.results)
			rows, err := reports.History(cmd.Context(), user.ID)
			if err != nil {
				return err
			}
			if len(rows) == 0 {
				fmt.Println("no results yet")
				return nil
			}
			for _, row := range rows {
				fmt.Printf("Date: %s | Score: %.0f%% (%d/%d)\n",
					row.AttemptDate.Format("2006-01-02 15:04:05"),
					row.Score.Percentage(), row.Score.CorrectCount, row.Score.TotalQuestions)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account to report on")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}

// NewReportCmd prints the per-day dashboard series for the rolling window.
func NewReportCmd(configPath *string) *cobra.Command {
	var (
		username string
		days     int
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Show a user's per-day activity report",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer env.close()

			user, err := env.creds.FindByUsername(cmd.Context(), username)
			if err != nil {
				return err
			}
			if days <= 0 {
				days = env.cfg.Report.Days
			}
			reports := app.NewReportService(env.results)
			series, err := reports.Dashboard(cmd.Context(), user.ID, time.Now(), days)
			if err != nil {
				return err
			}
			for _, day := range series {
				fmt.Printf("%s | attempts: %d | avg: %.1f%%\n",
					day.Date.Format("2006-01-02"), day.Attempts, day.AvgPercentage)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "account to report on")
	cmd.Flags().IntVar(&days, "days", 0, "window length in days (default from config)")
	_ = cmd.MarkFlagRequired("username")
	return cmd
}
