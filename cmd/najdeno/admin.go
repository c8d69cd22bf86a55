package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/erazemk/najdeno/internal/db"
)

// readPassword is replaced in tests.
var readPassword = term.ReadPassword

func newAdminCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage admin accounts",
	}
	cmd.AddCommand(newAdminCreateCommand(opts))
	return cmd
}

func newAdminCreateCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "create <identifier>",
		Short: "Create an admin account, prompting for its password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig(cmd)
			if err != nil {
				return err
			}

			out := cmd.ErrOrStderr()
			fmt.Fprint(out, "Password: ")
			pw, err := readPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			fmt.Fprint(out, "Repeat password: ")
			again, err := readPassword(int(os.Stdin.Fd()))
			fmt.Fprintln(out)
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			if !bytes.Equal(pw, again) {
				return errors.New("passwords do not match")
			}

			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return err
			}
			defer database.Close()
			if err := db.Migrate(cmd.Context(), database); err != nil {
				return err
			}

			user, err := createAdmin(cmd.Context(), database, args[0], string(pw))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Admin %s created (id %d).\n", user.Identifier, user.ID)
			return nil
		},
	}
}
