package instance

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"syscall"

	"github.com/cwmc/portable-launcher/internal/model"
)

// ModsDir is the instance subdirectory whose contents mark an already provisioned instance
const ModsDir = "mods"

// Decision reasons
const (
	ReasonMissing     = "instance directory does not exist"
	ReasonForced      = "force delete requested"
	ReasonNoContent   = "content pack configured and instance has no mods"
	ReasonWipeOnStart = "directory requests wipe on start"
	ReasonKeep        = "existing instance kept"
)

// Manager owns the instance directory's create/wipe decision
type Manager struct {
	logger *slog.Logger
}

// NewManager creates a new Manager
func NewManager(logger *slog.Logger) *Manager {
	return &Manager{
		logger: logger.With(slog.String("component", "instance-manager")),
	}
}

// Inspect reads the current state of the instance directory
func Inspect(path string) (model.InstanceState, error) {
	state := model.InstanceState{Path: path}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return state, nil
	}
	if err != nil {
		return state, fmt.Errorf("%w: stat instance: %v", model.ErrFilesystemOperationFailed, err)
	}
	if !info.IsDir() {
		return state, fmt.Errorf("%w: instance path %s is not a directory", model.ErrFilesystemOperationFailed, path)
	}
	state.Exists = true

	entries, err := os.ReadDir(filepath.Join(path, ModsDir))
	switch {
	case err == nil:
		state.HasPriorContent = len(entries) > 0
	case errors.Is(err, os.ErrNotExist), errors.Is(err, syscall.ENOTDIR):
	default:
		return state, fmt.Errorf("%w: read mods directory: %v", model.ErrFilesystemOperationFailed, err)
	}

	return state, nil
}

// Decide evaluates the lifecycle decision table in order
func Decide(state model.InstanceState, forceDelete bool, cfg model.DirectoryConfig) model.LifecycleDecision {
	switch {
	case !state.Exists:
		return model.LifecycleDecision{Action: model.LifecycleCreate, Reason: ReasonMissing}
	case forceDelete:
		return model.LifecycleDecision{Action: model.LifecycleWipe, Reason: ReasonForced}
	case cfg.UseModpack && !state.HasPriorContent:
		return model.LifecycleDecision{Action: model.LifecycleWipe, Reason: ReasonNoContent}
	case cfg.WipeOnStart:
		return model.LifecycleDecision{Action: model.LifecycleWipe, Reason: ReasonWipeOnStart}
	default:
		return model.LifecycleDecision{Action: model.LifecycleKeep, Reason: ReasonKeep}
	}
}

// Prepare inspects the instance directory, decides its fate and applies the decision.
// A wipe removes the whole tree before recreating it empty.
func (m *Manager) Prepare(path string, forceDelete bool, cfg model.DirectoryConfig) (model.LifecycleDecision, error) {
	state, err := Inspect(path)
	if err != nil {
		return model.LifecycleDecision{}, err
	}

	decision := Decide(state, forceDelete, cfg)

	m.logger.Debug("instance lifecycle decided",
		slog.String("path", path),
		slog.String("action", string(decision.Action)),
		slog.String("reason", decision.Reason),
	)

	switch decision.Action {
	case model.LifecycleCreate:
		if err := os.MkdirAll(path, 0o755); err != nil {
			return decision, fmt.Errorf("%w: create instance: %v", model.ErrFilesystemOperationFailed, err)
		}
	case model.LifecycleWipe:
		if err := os.RemoveAll(path); err != nil {
			return decision, fmt.Errorf("%w: wipe instance: %v", model.ErrFilesystemOperationFailed, err)
		}
		if err := os.MkdirAll(path, 0o755); err != nil {
			return decision, fmt.Errorf("%w: recreate instance: %v", model.ErrFilesystemOperationFailed, err)
		}
	}

	return decision, nil
}
