package main

import (
	"bytes"
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"io"
	"math/big"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

func newInitCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the database, seed the catalog and create the admin account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}
			if _, err := os.Stat(cfg.DBPath); err == nil {
				return fmt.Errorf("database file %s already exists", cfg.DBPath)
			}

			database, password, err := initDatabase(cmd.Context(), cfg.DBPath, cfg.AdminIdentifier)
			if err != nil {
				return err
			}
			database.Close()

			printInitResult(cmd.OutOrStdout(), cfg.DBPath, cfg.AdminIdentifier, password)
			return nil
		},
	}
}

// initDatabase creates a new database, applies migrations, seeds the
// built-in catalog and creates the admin user. On failure the file is
// removed again.
func initDatabase(ctx context.Context, path, adminIdentifier string) (_ *sql.DB, _ string, err error) {
	database, err := db.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err != nil {
			database.Close()
			os.Remove(path)
		}
	}()

	if err := db.Migrate(ctx, database); err != nil {
		return nil, "", fmt.Errorf("running migrations: %w", err)
	}

	catalog, err := config.ParseCatalog(bytes.NewReader(defaultCatalog))
	if err != nil {
		return nil, "", err
	}
	if err := seedCatalog(ctx, database, catalog); err != nil {
		return nil, "", fmt.Errorf("seeding catalog: %w", err)
	}

	password, err := generatePassword(16)
	if err != nil {
		return nil, "", fmt.Errorf("generating password: %w", err)
	}
	if _, err := createAdmin(ctx, database, adminIdentifier, password); err != nil {
		return nil, "", err
	}

	return database, password, nil
}

// createAdmin adds an admin account with the given password.
func createAdmin(ctx context.Context, database *sql.DB, identifier, password string) (*model.User, error) {
	if err := model.ValidatePassword(password); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	user, err := store.CreateUser(ctx, database, store.NewUser{
		Identifier:   identifier,
		DisplayName:  "Administrator",
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	})
	if err != nil {
		return nil, fmt.Errorf("creating admin user: %w", err)
	}
	return user, nil
}

// printInitResult prints the database initialization result.
func printInitResult(w io.Writer, dbPath, identifier, password string) {
	fmt.Fprintf(w, "Database created: %s\n", dbPath)
	fmt.Fprintln(w, "Schema initialized.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Admin account created:")
	fmt.Fprintf(w, "  Identifier: %s\n", identifier)
	fmt.Fprintf(w, "  Password:   %s\n", password)
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Save this password, it cannot be recovered.")
	fmt.Fprintln(w, "The admin can change it after logging in.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
