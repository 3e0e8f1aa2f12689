package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cwmc/portable-launcher/internal/dependencies/clock"
	"github.com/cwmc/portable-launcher/internal/i18n"
	"github.com/cwmc/portable-launcher/internal/model"
	"github.com/cwmc/portable-launcher/internal/pipeline"
	"github.com/cwmc/portable-launcher/internal/services/directory"
	"github.com/cwmc/portable-launcher/internal/services/identity"
	"github.com/cwmc/portable-launcher/internal/services/instance"
	"github.com/cwmc/portable-launcher/internal/services/launch"
	"github.com/cwmc/portable-launcher/internal/services/modpack"
)

// Streams are the standard streams the launcher talks to
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// reportedError marks an error the operator has already been told about
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }
func (e reportedError) Unwrap() error { return e.err }

// NewRootCmd creates the root command
func NewRootCmd(streams Streams) *cobra.Command {
	cfg, envErr := LoadConfig()
	if envErr != nil {
		cfg = DefaultConfig()
	}
	var team int

	rootCmd := &cobra.Command{
		Use:   "cwmc",
		Short: "Event game client launcher",
		Long: `cwmc prepares a disposable game client installation for an event and starts it.

It reads your sign-in details, looks up your team on the event's master server,
prepares the local instance (optionally installing the event content pack) and
starts the game straight into your team's server.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			if envErr != nil {
				return envErr
			}
			if cmd.Flags().Changed("team") {
				cfg.Team = &team
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg, streams)
		},
	}

	flags := rootCmd.Flags()
	flags.IntVarP(&team, "team", "t", 0, "Team ID used when your name is not on any team (env: CWMC_TEAM)")
	flags.StringVarP(&cfg.Master, "master", "m", cfg.Master, "Master server address (env: CWMC_MASTER)")
	flags.BoolVarP(&cfg.Debug, "debug", "d", cfg.Debug, "Debug logging (env: CWMC_DEBUG)")
	flags.BoolVarP(&cfg.Delete, "delete", "D", cfg.Delete, "Delete the existing instance")
	flags.StringVar(&cfg.IDToken, "id-token", cfg.IDToken, "ID token from the sign-in flow (env: CWMC_ID_TOKEN)")
	flags.StringVar(&cfg.TokenFile, "token-file", cfg.TokenFile, "ID token file path (env: CWMC_TOKEN_FILE)")
	flags.StringVar(&cfg.Lang, "lang", cfg.Lang, "Message language: hu, en (env: CWMC_LANG)")
	flags.StringVar(&cfg.Runtime, "runtime", cfg.Runtime, "External game launcher command (env: CWMC_RUNTIME)")
	flags.StringVar(&cfg.GameVersion, "game-version", cfg.GameVersion, "Game version passed to the runtime (env: CWMC_GAME_VERSION)")
	flags.StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "App data root holding the instance (env: CWMC_DATA_DIR, APPDATA)")
	flags.StringVar(&cfg.TempDir, "temp-dir", cfg.TempDir, "Temp root holding the staging directory (env: CWMC_TEMP_DIR)")
	flags.BoolVar(&cfg.DryRun, "dry-run", cfg.DryRun, "Print the runtime command instead of starting the game")
	flags.BoolVar(&cfg.NoPause, "no-pause", cfg.NoPause, "Exit immediately on failure (env: CWMC_NO_PAUSE)")

	flags.StringVar(&cfg.Name, "name", "", "Display name claim")
	flags.StringVar(&cfg.Email, "email", "", "Email claim")
	flags.StringVar(&cfg.OID, "oid", "", "Stable id claim")
	for _, name := range []string{"name", "email", "oid"} {
		_ = flags.MarkHidden(name)
	}

	return rootCmd
}

// run builds the pipeline from cfg and executes it once
func run(ctx context.Context, cfg *Config, streams Streams) error {
	logger := NewLogger(streams.Err, cfg.Debug)

	tag, err := i18n.Match(cfg.Lang)
	if err != nil {
		logger.Warn("falling back to default language", slog.String("error", err.Error()))
	}
	out := NewOutput(streams.Out, i18n.NewPrinter(tag), clock.New(), isTerminal(streams.Out))
	out.dryRun = cfg.DryRun

	p, err := build(cfg, streams, out, logger)
	if err == nil {
		err = p.Run(ctx)
	}
	if err != nil {
		out.Fail(err, cfg.Debug)
		if !cfg.NoPause && isTerminal(streams.In) {
			out.Say(i18n.PromptPressEnter)
			_, _ = bufio.NewReader(streams.In).ReadString('\n')
		}
		return reportedError{err}
	}
	return nil
}

// build wires the pipeline components
func build(cfg *Config, streams Streams, out *Output, logger *slog.Logger) (*pipeline.Pipeline, error) {
	instancePath, err := cfg.InstancePath()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", model.ErrFilesystemOperationFailed, err)
	}

	client, err := directory.NewClient(cfg.Master, nil)
	if err != nil {
		return nil, err
	}

	var claims identity.ClaimsSource = identity.TokenSource{Token: cfg.IDToken, TokenFile: cfg.TokenFile}
	if cfg.HasDebugClaims() {
		claims = identity.StaticSource{Values: model.Claims{
			DisplayName: cfg.Name,
			Email:       cfg.Email,
			StableID:    cfg.OID,
		}}
	}

	execRuntime := launch.NewExecRuntime(cfg.Runtime, cfg.GameVersion, logger)
	var runtime launch.Runtime = execRuntime
	if cfg.DryRun {
		runtime = &launch.DryRuntime{Exec: execRuntime, Out: streams.Out}
	}

	logger.Debug("configuration",
		slog.String("master", cfg.Master),
		slog.String("instance", instancePath),
		slog.String("staging", cfg.StagingPath()),
		slog.Bool("delete", cfg.Delete),
	)

	return pipeline.New(pipeline.Config{
		TeamOverride: cfg.Team,
		ForceDelete:  cfg.Delete,
		InstancePath: instancePath,
	}, pipeline.Components{
		Claims:    claims,
		Deriver:   identity.NewDeriver(logger),
		Resolver:  directory.NewResolver(client, logger),
		Directory: client,
		Instances: instance.NewManager(logger),
		Installer: modpack.NewInstaller(cfg.StagingPath(), nil, logger),
		Runtime:   runtime,
	}, out, logger), nil
}

// Run executes the launcher with args and returns the process exit code
func Run(ctx context.Context, args []string, streams Streams) int {
	cmd := NewRootCmd(streams)
	cmd.SetArgs(args)
	cmd.SetIn(streams.In)
	cmd.SetOut(streams.Out)
	cmd.SetErr(streams.Err)

	err := cmd.ExecuteContext(ctx)
	var reported reportedError
	if err != nil && !errors.As(err, &reported) {
		fmt.Fprintf(streams.Err, "Error: %s\n", err)
	}
	return ExitCode(err)
}

// Execute runs the launcher as the main program
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := Run(ctx, os.Args[1:], Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	stop()
	os.Exit(code)
}
