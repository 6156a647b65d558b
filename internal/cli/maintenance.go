package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newMaintenanceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "maintenance",
		Short: "Run the token maintenance batch once",
		Long: `Applies the monthly token reset for mestre subscriptions and migrates any
remaining legacy unlimited rows. The run is idempotent; re-running within the
same month changes nothing.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, log, err := openEnv()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()

			subs := buildSubscriptionService(db, log)
			report, err := subs.RunMaintenance(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Checked:           %d\n", report.Checked)
			fmt.Printf("Monthly resets:    %d\n", report.MonthlyResets)
			fmt.Printf("Legacy migrations: %d\n", report.LegacyMigrations)
			return nil
		},
	}
}
