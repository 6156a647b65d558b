package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mestre-da-redacao/backend/internal/repository/postgres"
	"github.com/mestre-da-redacao/backend/internal/services"
)

type seedTheme struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func newSeedThemesCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed-themes",
		Short: "Bulk-load essay themes from a JSON file",
		Long: `Reads a JSON array of {"title", "description"} objects and creates one
active theme per entry. Entries whose title already exists are skipped.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(file)
			if err != nil {
				return fmt.Errorf("failed to read themes file: %w", err)
			}

			var themes []seedTheme
			if err := json.Unmarshal(data, &themes); err != nil {
				return fmt.Errorf("failed to parse themes file: %w", err)
			}
			if len(themes) == 0 {
				return fmt.Errorf("themes file is empty")
			}

			_, db, log, err := openEnv()
			if err != nil {
				return err
			}
			defer db.Close()

			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			repo := postgres.NewEssayRepository(db)
			essays := services.NewEssayService(repo, buildSubscriptionService(db, log), nil, nil, log)

			existing, err := essays.ListThemes(ctx, false)
			if err != nil {
				return err
			}
			seen := make(map[string]bool, len(existing))
			for _, t := range existing {
				seen[t.Title] = true
			}

			created, skipped := 0, 0
			for _, t := range themes {
				if t.Title == "" {
					skipped++
					continue
				}
				if seen[t.Title] {
					skipped++
					continue
				}
				if _, err := essays.CreateTheme(ctx, t.Title, t.Description); err != nil {
					return fmt.Errorf("failed to create theme %q: %w", t.Title, err)
				}
				created++
			}

			fmt.Printf("Created %d themes, skipped %d\n", created, skipped)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "themes.json", "path to the themes JSON file")
	return cmd
}
