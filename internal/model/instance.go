package model

// InstanceState describes the local instance directory as found at startup
type InstanceState struct {
	Path            string
	Exists          bool
	HasPriorContent bool
}

// LifecycleAction is what the lifecycle manager does with the instance directory
type LifecycleAction string

const (
	LifecycleCreate LifecycleAction = "create"
	LifecycleWipe   LifecycleAction = "wipe"
	LifecycleKeep   LifecycleAction = "keep"
)

// LifecycleDecision records the chosen action and why
type LifecycleDecision struct {
	Action LifecycleAction
	Reason string
}

// Wiped reports whether existing instance content was destroyed
func (d LifecycleDecision) Wiped() bool {
	return d.Action == LifecycleWipe
}

// Fresh reports whether the instance directory is empty after the decision was applied,
// either because it was just created or because it was wiped. This is the flag the
// content pack installer keys on.
func (d LifecycleDecision) Fresh() bool {
	return d.Action == LifecycleCreate || d.Action == LifecycleWipe
}
