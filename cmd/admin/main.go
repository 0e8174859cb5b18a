package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"shareit/internal/api"
	"shareit/internal/config"
	"shareit/internal/database"
	"shareit/internal/logging"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "shareit-admin",
		Short:         "Maintenance commands for the ShareIt backend",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", defaultConfigPath(), "path to config.yaml")

	root.AddCommand(
		newMigrateCmd(&configPath),
		newBackupCmd(&configPath),
		newTokenCmd(&configPath),
	)
	return root
}

func defaultConfigPath() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "configs/config.yaml"
}

func loadConfig(path string) (*config.Config, *zerolog.Logger, func(), error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	logger, closer, err := logging.New(cfg.Logging, cfg.App)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}
	cleanup := func() {
		if closer != nil {
			_ = closer.Close()
		}
	}
	return cfg, logging.Component(logger, "admin"), cleanup, nil
}

// migrate creates the schema. NewDB is idempotent, so running it twice is fine.
func newMigrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, cleanup, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			db, err := database.NewDB(cfg.Database, logger)
			if err != nil {
				return err
			}
			defer db.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date (%s)\n", db.Driver())
			return nil
		},
	}
}

func newBackupCmd(configPath *string) *cobra.Command {
	var cleanupOld bool

	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Take a one-off SQLite backup",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, cleanup, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			if cfg.Database.Driver != config.DriverSQLite {
				return fmt.Errorf("backup supports sqlite3 only, configured driver is %s", cfg.Database.Driver)
			}

			// make sure the file and schema exist before copying it
			db, err := database.NewDB(cfg.Database, logger)
			if err != nil {
				return err
			}
			_ = db.Close()

			svc := database.NewBackupService(cfg.Database.Path, cfg.Backup, logger)
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
			defer cancel()

			path, err := svc.PerformBackup(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), path)

			if cleanupOld {
				removed := svc.CleanupOldBackups()
				fmt.Fprintf(cmd.OutOrStdout(), "removed %d old backups\n", removed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&cleanupOld, "cleanup", false, "also remove backups past retention_days")
	return cmd
}

func newTokenCmd(configPath *string) *cobra.Command {
	var (
		userID int64
		ttl    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for jwt auth mode",
		RunE: func(cmd *cobra.Command, args []string) error {
			if userID <= 0 {
				return fmt.Errorf("--user must be a positive user id")
			}
			cfg, _, cleanup, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			defer cleanup()

			claims := jwt.RegisteredClaims{IssuedAt: jwt.NewNumericDate(time.Now())}
			if ttl > 0 {
				claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
			}
			token, err := api.IssueToken(cfg.API.Auth.JWTSecret, userID, claims)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().Int64Var(&userID, "user", 0, "user id placed into the sub claim")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime, 0 for no expiry")
	return cmd
}
