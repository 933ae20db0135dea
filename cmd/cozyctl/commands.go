package main

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cozycup/internal/config"
	"cozycup/internal/domain"
	"cozycup/internal/infrastructure/logger"
	"cozycup/internal/infrastructure/mysql"
	menurepo "cozycup/internal/menu/repository"
	"cozycup/internal/middleware"
	"cozycup/internal/seed"
	userrepo "cozycup/internal/user/repository"
)

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	return config.Load(path)
}

func openDB(cmd *cobra.Command) (*config.Config, *sql.DB, *zap.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("loading config: %w", err)
	}
	zapLogger, err := logger.New(cfg.Log.Level, "console")
	if err != nil {
		return nil, nil, nil, fmt.Errorf("creating logger: %w", err)
	}
	db, err := mysql.NewConnection(cfg.Database)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	return cfg, db, zapLogger, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, zapLogger, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			defer zapLogger.Sync()

			if err := mysql.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			zapLogger.Info("schema applied", zap.Strings("tables", mysql.Tables))
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load users, categories and menu items",
		Long: `Load the embedded seed data. Users are matched by email,
categories and menu items by name, so seeding is repeatable.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, zapLogger, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer db.Close()
			defer zapLogger.Sync()

			data, err := seed.Default()
			if err != nil {
				return err
			}
			seeder := seed.NewSeeder(
				userrepo.NewMySQLUserRepository(db),
				menurepo.NewMySQLCategoryRepository(db),
				menurepo.NewMySQLMenuItemRepository(db),
				zapLogger,
			)
			return seeder.Apply(cmd.Context(), data)
		},
	}
}

// tokenCmd mints a bearer token for local testing; issuing tokens to real
// users is the auth service's job.
func tokenCmd() *cobra.Command {
	var (
		userID uint
		role   string
		name   string
		email  string
		ttl    time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Sign a bearer token for local testing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			if cfg.Auth.JWTSecret == "" {
				return fmt.Errorf("auth.jwt_secret is required")
			}
			if userID == 0 {
				return fmt.Errorf("--user-id is required")
			}
			token, err := middleware.SignToken(cfg.Auth.JWTSecret, cfg.Auth.Issuer, middleware.Principal{
				UserID: userID,
				Role:   domain.Role(role),
				Name:   name,
				Email:  email,
			}, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().UintVar(&userID, "user-id", 0, "subject user id")
	cmd.Flags().StringVar(&role, "role", string(domain.RoleCustomer), "admin or customer")
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), Version)
		},
	}
}
