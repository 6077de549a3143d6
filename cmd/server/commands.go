package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"songvote/internal/config"
	"songvote/internal/domain/admin"
	"songvote/internal/repository"
	"songvote/internal/session"
	"songvote/internal/state"
)

func newHashPasswordCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Long:  "Print a bcrypt hash for ADMIN_PASSWORD_HASH. Reads the password from stdin when no argument is given.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			password := ""
			if len(args) == 1 {
				password = args[0]
			} else {
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && !errors.Is(err, io.EOF) {
					return err
				}
				password = strings.TrimRight(line, "\r\n")
			}

			hash, err := admin.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func newStateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "state",
		Short: "Inspect the durable session state",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored session as an update snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			ctx := cmd.Context()
			opened, err := repository.Open(ctx, repository.Options{
				StateURL:           cfg.StateURL,
				GCSCredentialsFile: cfg.GCSCredentialsFile,
			})
			if err != nil {
				return fmt.Errorf("open state store: %w", err)
			}
			defer opened.Closer.Close()

			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), nil))
			store := state.NewStore(opened.Repo, logger)
			snap := session.NewCoordinator(store.LoadVotes(ctx), store.LoadStates(ctx), nil, nil, logger).Snapshot()

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		},
	})
	return cmd
}
