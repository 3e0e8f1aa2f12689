package launch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/cwmc/portable-launcher/internal/model"
)

const (
	// DefaultCommand is the external launcher that installs and starts the game
	DefaultCommand = "portablemc"
	// DefaultGameVersion pins the mod loader and game version
	DefaultGameVersion = "fabric:1.21.1"
)

// EventKind identifies a coarse runtime lifecycle event
type EventKind string

const (
	EventRuntimeStarting EventKind = "starting"
	EventRuntimeReady    EventKind = "ready"
	EventRuntimeOutput   EventKind = "output"
	EventRuntimeExited   EventKind = "exited"
)

// Event is delivered to a Watcher while the runtime runs
type Event struct {
	Kind     EventKind
	Line     string
	ExitCode int
}

// Watcher observes runtime events. Handle is never called concurrently.
type Watcher interface {
	Handle(Event)
}

// WatcherFunc adapts a function to Watcher
type WatcherFunc func(Event)

// Handle calls f
func (f WatcherFunc) Handle(e Event) {
	f(e)
}

// Runtime installs (if needed) and starts the game client for a launch target,
// blocking until the client exits
type Runtime interface {
	Launch(ctx context.Context, target model.LaunchTarget, watcher Watcher) error
}

// ExecRuntime delegates to an external launcher process
type ExecRuntime struct {
	// Command is the executable to run, DefaultCommand when empty
	Command string
	// Prefix arguments are placed before the generated ones
	Prefix []string
	// GameVersion is DefaultGameVersion when empty
	GameVersion string
	// Env, if set, replaces the inherited environment
	Env []string

	logger *slog.Logger
}

// NewExecRuntime creates a new ExecRuntime
func NewExecRuntime(command, gameVersion string, logger *slog.Logger) *ExecRuntime {
	return &ExecRuntime{
		Command:     command,
		GameVersion: gameVersion,
		logger:      logger.With(slog.String("component", "runtime")),
	}
}

// Args returns the launcher arguments for target, without the command itself
func (r *ExecRuntime) Args(target model.LaunchTarget) []string {
	version := r.GameVersion
	if version == "" {
		version = DefaultGameVersion
	}
	args := append([]string{}, r.Prefix...)
	return append(args,
		"--main-dir", target.InstancePath,
		"--work-dir", target.InstancePath,
		"start",
		"-u", target.Identity.Username,
		"-i", target.PlayerUUID,
		"-s", target.Host,
		"-p", strconv.Itoa(target.Port),
		version,
	)
}

func (r *ExecRuntime) command() string {
	if r.Command == "" {
		return DefaultCommand
	}
	return r.Command
}

// Launch runs the external launcher and streams its output to watcher line by line
func (r *ExecRuntime) Launch(ctx context.Context, target model.LaunchTarget, watcher Watcher) error {
	w := &serialWatcher{w: watcher}
	cmd := exec.CommandContext(ctx, r.command(), r.Args(target)...)
	if r.Env != nil {
		cmd.Env = r.Env
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrRuntimeLaunchFailed, err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", model.ErrRuntimeLaunchFailed, err)
	}

	r.logger.Debug("starting runtime",
		slog.String("command", r.command()),
		slog.String("args", strings.Join(cmd.Args[1:], " ")),
	)
	w.Handle(Event{Kind: EventRuntimeStarting})

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: start %s: %v", model.ErrRuntimeLaunchFailed, r.command(), err)
	}
	w.Handle(Event{Kind: EventRuntimeReady})

	var wg sync.WaitGroup
	for _, pipe := range []io.Reader{stdout, stderr} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.pump(pipe, w)
		}()
	}
	wg.Wait()

	err = cmd.Wait()
	exitCode := cmd.ProcessState.ExitCode()
	w.Handle(Event{Kind: EventRuntimeExited, ExitCode: exitCode})

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s exited with code %d", model.ErrRuntimeLaunchFailed, r.command(), exitCode)
		}
		return fmt.Errorf("%w: %v", model.ErrRuntimeLaunchFailed, err)
	}
	return nil
}

func (r *ExecRuntime) pump(pipe io.Reader, w Watcher) {
	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		r.logger.Debug("runtime output", slog.String("line", line))
		w.Handle(Event{Kind: EventRuntimeOutput, Line: line})
	}
}

// serialWatcher guards a Watcher against the concurrent stdout and stderr pumps
type serialWatcher struct {
	mu sync.Mutex
	w  Watcher
}

func (s *serialWatcher) Handle(e Event) {
	if s.w == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w.Handle(e)
}

// DryRuntime prints the command line it would run instead of running it
type DryRuntime struct {
	Exec *ExecRuntime
	Out  io.Writer
}

// Launch writes the command line to Out
func (d *DryRuntime) Launch(_ context.Context, target model.LaunchTarget, watcher Watcher) error {
	args := append([]string{d.Exec.command()}, d.Exec.Args(target)...)
	if _, err := fmt.Fprintln(d.Out, strings.Join(args, " ")); err != nil {
		return fmt.Errorf("%w: %v", model.ErrRuntimeLaunchFailed, err)
	}
	if watcher != nil {
		watcher.Handle(Event{Kind: EventRuntimeExited})
	}
	return nil
}
