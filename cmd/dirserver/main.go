package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cwmc/portable-launcher/internal/dirserver"
	"github.com/cwmc/portable-launcher/internal/services/auth"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "dirserver",
		Short: "Directory server for the cwmc launcher",
		Long: `dirserver publishes teams.json, args.json and the content pack to cwmc
launchers, shows organizers the roster at /roster and accepts document uploads
at /admin/teams.json and /admin/args.json.

Settings come from the YAML file given with --config, overridden by
DIRSERVER_* environment variables.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := dirserver.LoadConfig(configPath)
			if err != nil {
				return err
			}
			level, _ := cfg.Level()

			logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
			slog.SetDefault(logger)

			logger.Info("directory server configured",
				slog.String("storage", cfg.Storage.Type),
				slog.Int("port", cfg.Server.Port),
				slog.String("content_dir", cfg.ContentDir),
			)
			return dirserver.Run(cmd.Context(), cfg, nil, logger)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", os.Getenv(dirserver.EnvPrefix+"CONFIG"), "YAML config file (env: DIRSERVER_CONFIG)")

	rootCmd.AddCommand(newHashPasswordCmd())
	return rootCmd
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for admin.password_hash",
		Long:  "Reads a password from the terminal (or one line of stdin) and prints its bcrypt hash.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			hash, err := auth.HashPassword(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// readPassword prompts without echo on a terminal and reads a line otherwise
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(prompt, "Password: ")
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(prompt)
		if err != nil {
			return "", fmt.Errorf("read password: %w", err)
		}
		return string(raw), nil
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read password: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
