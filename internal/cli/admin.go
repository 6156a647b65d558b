package cli

import (
	"context"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/mestre-da-redacao/backend/internal/domain/user"
	"github.com/mestre-da-redacao/backend/internal/repository/postgres"
	"github.com/mestre-da-redacao/backend/internal/services"
)

func newCreateAdminCmd() *cobra.Command {
	var email, name, role string

	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin or professor account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if role != user.RoleAdmin && role != user.RoleProfessor {
				return fmt.Errorf("role must be %s or %s", user.RoleAdmin, user.RoleProfessor)
			}

			fmt.Fprint(os.Stderr, "Password: ")
			password, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			fmt.Fprint(os.Stderr, "Confirm password: ")
			confirm, err := term.ReadPassword(int(syscall.Stdin))
			fmt.Fprintln(os.Stderr)
			if err != nil {
				return fmt.Errorf("failed to read password: %w", err)
			}

			if string(password) != string(confirm) {
				return fmt.Errorf("passwords do not match")
			}

			cfg, db, log, err := openEnv()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			users := services.NewUserService(
				postgres.NewUserRepository(db),
				postgres.NewSubscriptionRepository(db),
				log,
				cfg.Auth.BCryptCost,
			)

			u, err := users.CreateStaff(ctx, email, name, string(password), role)
			if err != nil {
				return err
			}

			fmt.Printf("Created %s account %s (id %d)\n", u.Role, u.Email, u.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&email, "email", "e", "", "account email")
	cmd.Flags().StringVarP(&name, "name", "n", "", "account name")
	cmd.Flags().StringVarP(&role, "role", "r", user.RoleAdmin, "account role (admin or professor)")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
