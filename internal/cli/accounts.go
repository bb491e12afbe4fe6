package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"quizdesk/internal/app"
	"quizdesk/internal/domain"
)

// NewRegisterCmd creates an account from the command line.
func NewRegisterCmd(configPath *string) *cobra.Command {
	var password, accountType string
	cmd := &cobra.Command{
		Use:   "register <username>",
		Short: "Create a new account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer env.close()

			accounts := app.NewAccountService(env.creds)
			user, err := accounts.Register(cmd.Context(), args[0], password, domain.AccountType(accountType))
			if err != nil {
				return err
			}
			fmt.Printf("account created: %s (%s)\n", user.Username, user.AccountType)
			return nil
		},
	}
	cmd.Flags().StringVar(&password, "password", "", "password for the new account")
	cmd.Flags().StringVar(&accountType, "type", string(domain.AccountStudent), "account type (Student or Teacher)")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

// NewUsersCmd lists accounts, optionally filtered by username substring.
func NewUsersCmd(configPath *string) *cobra.Command {
	var filter string
	cmd := &cobra.Command{
		Use:   "users",
		Short: "List registered accounts",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := openEnv(cmd.Context(), *configPath)
			if err != nil {
				return err
			}
			defer env.close()

			accounts := app.NewAccountService(env.creds)
			users, err := accounts.ListUsers(cmd.Context(), filter)
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Println("no accounts found")
				return nil
			}
			for _, user := range users {
				fmt.Printf("%d | %s | %s\n", user.ID, user.Username, user.AccountType)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "substring match against usernames")
	return cmd
}
