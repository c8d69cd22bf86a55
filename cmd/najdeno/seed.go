package main

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/config"
	"github.com/erazemk/najdeno/internal/db"
	"github.com/erazemk/najdeno/internal/store"
)

//go:embed catalog.yaml
var defaultCatalog []byte

func newSeedCommand(opts *rootOptions) *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load categories and locations into the database",
		Long:  "Load categories and locations from a YAML file, or the built-in list if no file is given. Existing names are kept.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			var r io.Reader = bytes.NewReader(defaultCatalog)
			if file != "" {
				f, err := os.Open(file)
				if err != nil {
					return fmt.Errorf("opening catalog: %w", err)
				}
				defer f.Close()
				r = f
			}
			catalog, err := config.ParseCatalog(r)
			if err != nil {
				return err
			}

			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()
			if err := db.Migrate(cmd.Context(), database); err != nil {
				return err
			}

			if err := seedCatalog(cmd.Context(), database, catalog); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories and %d locations.\n",
				len(catalog.Categories), len(catalog.Locations))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog YAML file")
	return cmd
}

// seedCatalog inserts any catalog names not yet present, in one transaction.
func seedCatalog(ctx context.Context, database *sql.DB, catalog *config.Catalog) error {
	return db.WithTx(ctx, database, func(ctx context.Context, tx *sql.Tx) error {
		for _, name := range catalog.Categories {
			if _, err := store.EnsureCategory(ctx, tx, name); err != nil {
				return err
			}
		}
		for _, name := range catalog.Locations {
			if _, err := store.EnsureLocation(ctx, tx, name); err != nil {
				return err
			}
		}
		slog.Info("catalog seeded", "categories", len(catalog.Categories), "locations", len(catalog.Locations))
		return nil
	})
}
