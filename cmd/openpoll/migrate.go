package main

import (
	"errors"
	"os"

	"github.com/Xausdorf/openpoll/internal/config"
	"github.com/Xausdorf/openpoll/internal/logger"
	"github.com/Xausdorf/openpoll/internal/repository/sqladapter"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var driver, dsn string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQL schema migrations",
		Long: "Brings a SQLite or PostgreSQL database to the latest schema version.\n" +
			"The version is kept in the properties table. Tarantool spaces are created by deploy/tarantool/init.lua.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(); err != nil {
				return err
			}
			logger.Configure(logger.Options{Level: zerolog.InfoLevel})

			if !cmd.Flags().Changed("driver") {
				if env := os.Getenv("STORE_DRIVER"); env == sqladapter.DriverSQLite || env == sqladapter.DriverPostgres {
					driver = env
				}
			}
			if dsn == "" {
				dsn = os.Getenv("DATABASE_URL")
			}
			if dsn == "" {
				return errors.New("database url is required, use --database-url or DATABASE_URL")
			}

			db, err := sqladapter.Open(driver, dsn)
			if err != nil {
				return err
			}
			defer db.Close()

			from, err := sqladapter.Version(cmd.Context(), db)
			if err != nil {
				return err
			}
			applied, err := sqladapter.Migrate(cmd.Context(), db)
			if err != nil {
				return err
			}
			log.Info().
				Str("driver", driver).
				Int("from", from).
				Int("to", sqladapter.LatestVersion()).
				Int("applied", applied).
				Msg("Database is up to date")
			return nil
		},
	}

	cmd.Flags().StringVar(&driver, "driver", sqladapter.DriverSQLite, "sql driver: sqlite or postgres (default $STORE_DRIVER)")
	cmd.Flags().StringVar(&dsn, "database-url", "", "connection string (default $DATABASE_URL)")
	return cmd
}
