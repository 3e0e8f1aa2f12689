// Package pipeline drives a single provisioning run from identity claims to a running game client
package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cwmc/portable-launcher/internal/model"
	"github.com/cwmc/portable-launcher/internal/services/directory"
	"github.com/cwmc/portable-launcher/internal/services/identity"
	"github.com/cwmc/portable-launcher/internal/services/instance"
	"github.com/cwmc/portable-launcher/internal/services/launch"
	"github.com/cwmc/portable-launcher/internal/services/modpack"
)

// Stage names a step of the run
type Stage string

const (
	StageIdentity  Stage = "identity"
	StageDirectory Stage = "directory"
	StageInstance  Stage = "instance"
	StageModpack   Stage = "modpack"
	StageLaunch    Stage = "launch"
)

// Config is the run configuration. It is built once by the CLI and never mutated.
type Config struct {
	// TeamOverride selects a team by its parenthesized id when membership lookup fails
	TeamOverride *int
	// ForceDelete wipes the instance regardless of directory settings
	ForceDelete bool
	// InstancePath is the instance directory, e.g. %APPDATA%/.cwmc
	InstancePath string
}

// Reporter receives operator-facing progress. Implementations must not block.
type Reporter interface {
	StageStarted(stage Stage)
	IdentityDerived(identity model.Identity)
	TeamResolved(resolution model.Resolution)
	InstancePrepared(decision model.LifecycleDecision)
	DownloadProgress(transferred, expected int64)
	Unpacking()
	RuntimeEvent(event launch.Event)
}

// NopReporter discards every report
type NopReporter struct{}

// StageStarted does nothing
func (NopReporter) StageStarted(Stage) {}

// IdentityDerived does nothing
func (NopReporter) IdentityDerived(model.Identity) {}

// TeamResolved does nothing
func (NopReporter) TeamResolved(model.Resolution) {}

// InstancePrepared does nothing
func (NopReporter) InstancePrepared(model.LifecycleDecision) {}

// DownloadProgress does nothing
func (NopReporter) DownloadProgress(int64, int64) {}

// Unpacking does nothing
func (NopReporter) Unpacking() {}

// RuntimeEvent does nothing
func (NopReporter) RuntimeEvent(launch.Event) {}

// Components are the stage implementations a Pipeline runs
type Components struct {
	Claims    identity.ClaimsSource
	Deriver   *identity.Deriver
	Resolver  *directory.Resolver
	Directory *directory.Client
	Instances *instance.Manager
	Installer *modpack.Installer
	Runtime   launch.Runtime
}

// Pipeline runs the stages once, in order, stopping at the first error
type Pipeline struct {
	config     Config
	components Components
	reporter   Reporter
	logger     *slog.Logger
}

// New creates a new Pipeline
func New(config Config, components Components, reporter Reporter, logger *slog.Logger) *Pipeline {
	if reporter == nil {
		reporter = NopReporter{}
	}
	return &Pipeline{
		config:     config,
		components: components,
		reporter:   reporter,
		logger:     logger.With(slog.String("component", "pipeline")),
	}
}

// Run provisions the instance and launches the game. The returned error wraps
// one of the model error kinds.
func (p *Pipeline) Run(ctx context.Context) error {
	c := p.components

	p.reporter.StageStarted(StageIdentity)
	claims, err := c.Claims.Claims(ctx)
	if err != nil {
		return p.fail(StageIdentity, err)
	}
	id, err := c.Deriver.Derive(claims)
	if err != nil {
		return p.fail(StageIdentity, err)
	}
	p.reporter.IdentityDerived(id)

	p.reporter.StageStarted(StageDirectory)
	resolution, err := c.Resolver.Resolve(ctx, id.DisplayName, p.config.TeamOverride)
	if err != nil {
		return p.fail(StageDirectory, err)
	}
	p.reporter.TeamResolved(resolution)

	p.reporter.StageStarted(StageInstance)
	decision, err := c.Instances.Prepare(p.config.InstancePath, p.config.ForceDelete, resolution.Config)
	if err != nil {
		return p.fail(StageInstance, err)
	}
	p.reporter.InstancePrepared(decision)

	if modpack.ShouldInstall(resolution.Config, decision) {
		p.reporter.StageStarted(StageModpack)
		url := c.Directory.URL(resolution.Config.ModpackURL)
		observer := reporterObserver{p.reporter}
		if err := c.Installer.Install(ctx, url, p.config.InstancePath, observer); err != nil {
			return p.fail(StageModpack, err)
		}
	} else {
		p.logger.Debug("content pack install skipped",
			slog.Bool("use_modpack", resolution.Config.UseModpack),
			slog.String("lifecycle", string(decision.Action)),
		)
	}

	p.reporter.StageStarted(StageLaunch)
	target := launch.Build(id, resolution, p.config.InstancePath)
	p.logger.Debug("launching",
		slog.String("username", target.Identity.Username),
		slog.String("uuid", target.PlayerUUID),
		slog.String("endpoint", target.Endpoint()),
	)
	watcher := launch.WatcherFunc(p.reporter.RuntimeEvent)
	if err := c.Runtime.Launch(ctx, target, watcher); err != nil {
		return p.fail(StageLaunch, err)
	}
	return nil
}

// reporterObserver forwards installer progress to the reporter
type reporterObserver struct {
	r Reporter
}

func (o reporterObserver) Progress(transferred, expected int64) {
	o.r.DownloadProgress(transferred, expected)
}

func (o reporterObserver) Unpacking() {
	o.r.Unpacking()
}

func (p *Pipeline) fail(stage Stage, err error) error {
	p.logger.Debug("stage failed",
		slog.String("stage", string(stage)),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("%s: %w", stage, err)
}
