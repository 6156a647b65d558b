package cli

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mestre-da-redacao/backend/internal/domain/chat"
	"github.com/mestre-da-redacao/backend/internal/domain/essay"
	"github.com/mestre-da-redacao/backend/internal/domain/subscription"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Print a quick overview of the platform database",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, _, err := openEnv()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			users, err := countRows(ctx, db, "SELECT COUNT(*) FROM users")
			if err != nil {
				return err
			}

			fmt.Printf("Users:            %d\n", users)

			fmt.Println("Active subscriptions by plan:")
			for _, plan := range []string{
				subscription.PlanFree,
				subscription.PlanAvulsa,
				subscription.PlanMestre,
				subscription.PlanPrivate,
				subscription.PlanPartner,
			} {
				n, err := countRows(ctx, db,
					"SELECT COUNT(*) FROM subscriptions WHERE status = ? AND type = ?",
					subscription.StatusActive, plan)
				if err != nil {
					return err
				}
				fmt.Printf("  %-10s %d\n", plan, n)
			}

			pending, err := countRows(ctx, db,
				"SELECT COUNT(*) FROM essays WHERE correction_status = ?", essay.CorrectionPending)
			if err != nil {
				return err
			}
			fmt.Printf("Pending essays:   %d\n", pending)

			open, err := countRows(ctx, db,
				"SELECT COUNT(*) FROM chat_tickets WHERE status = ?", chat.StatusOpen)
			if err != nil {
				return err
			}
			fmt.Printf("Open tickets:     %d\n", open)

			return nil
		},
	}
}

func countRows(ctx context.Context, db *sql.DB, query string, args ...interface{}) (int64, error) {
	var n int64
	if err := db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	return n, nil
}
