package cli

import (
	"database/sql"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mestre-da-redacao/backend/internal/config"
	"github.com/mestre-da-redacao/backend/internal/pkg/logger"
	"github.com/mestre-da-redacao/backend/internal/repository/postgres"
	"github.com/mestre-da-redacao/backend/internal/services"
	"github.com/mestre-da-redacao/backend/migrations"
)

var (
	dbDriver string
	dbPath   string
)

var rootCmd = &cobra.Command{
	Use:   "redacao",
	Short: "Mestre da Redação operations CLI",
	Long: `Operational tooling for the Mestre da Redação backend: theme seeding,
token maintenance, admin bootstrap and a quick status overview. Commands talk
directly to the database, so run them on the host that owns it.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the CLI
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&dbDriver, "db-driver", "", "database driver (sqlite or postgres, overrides env)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "", "sqlite database path (overrides env)")

	_ = viper.BindPFlag("db_driver", rootCmd.PersistentFlags().Lookup("db-driver"))
	_ = viper.BindPFlag("db_path", rootCmd.PersistentFlags().Lookup("db-path"))

	rootCmd.AddCommand(newSeedThemesCmd())
	rootCmd.AddCommand(newMaintenanceCmd())
	rootCmd.AddCommand(newCreateAdminCmd())
	rootCmd.AddCommand(newStatusCmd())
}

func initConfig() {
	viper.SetEnvPrefix("REDACAO")
	viper.AutomaticEnv()
}

// openEnv loads config, opens the database and applies pending migrations
func openEnv() (*config.Config, *sql.DB, *logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	if v := viper.GetString("db_driver"); v != "" {
		cfg.Database.Driver = v
	}
	if v := viper.GetString("db_path"); v != "" {
		cfg.Database.Path = v
	}

	log := logger.New(logger.Config{Level: cfg.Logging.Level, Format: "console"})

	db, err := postgres.New(cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}

	if err := postgres.RunMigrations(db, migrations.GetFS()); err != nil {
		db.Close()
		return nil, nil, nil, err
	}

	return cfg, db, log, nil
}

// buildSubscriptionService wires the subscription service for CLI commands
func buildSubscriptionService(db *sql.DB, log *logger.Logger) *services.SubscriptionService {
	return services.NewSubscriptionService(postgres.NewSubscriptionRepository(db), log)
}
