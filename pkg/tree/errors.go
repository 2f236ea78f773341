package tree

// ConfigError signals an invalid TreeConfig or CardConfig, per spec.md §7.
type ConfigError struct{ Msg string }

func (e *ConfigError) Error() string { return "config error: " + e.Msg }

// StateError signals an operation invalid for the tree's current state.
type StateError struct{ Msg string }

func (e *StateError) Error() string { return "state error: " + e.Msg }

// LockError signals a locked strategy vector of the wrong shape for its node.
type LockError struct{ Msg string }

func (e *LockError) Error() string { return "lock error: " + e.Msg }
