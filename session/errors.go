package session

import "fmt"

// ConfigError indicates a missing or malformed map/changes file. The
// driver prints it and exits with code 1.
type ConfigError struct {
	cause error
}

func NewConfigError(cause error) *ConfigError { return &ConfigError{cause: cause} }

func (e *ConfigError) Error() string { return fmt.Sprintf("config error: %v", e.cause) }
func (e *ConfigError) Unwrap() error { return e.cause }

// ModelError indicates a generative call returned a null state or a
// non-finite value. The offending simulation is dropped and the session
// continues.
type ModelError struct {
	cause error
}

func NewModelError(cause error) *ModelError { return &ModelError{cause: cause} }

func (e *ModelError) Error() string { return fmt.Sprintf("model error: %v", e.cause) }
func (e *ModelError) Unwrap() error { return e.cause }

// InvariantViolation indicates an internal inconsistency (e.g. a negative
// visit count). It is fatal to the current session.
type InvariantViolation struct {
	msg string
}

func NewInvariantViolation(msg string) *InvariantViolation { return &InvariantViolation{msg: msg} }

func (e *InvariantViolation) Error() string { return "invariant violation: " + e.msg }

// UnknownSerializationTag describes a chooser-data tag that isn't
// registered. No loader in this module returns it: persist.ReadTree reads
// no chooser-data tags, and actionmap.ChooserRegistry.Load reports an
// unknown tag with a plain error.
type UnknownSerializationTag struct {
	Tag string
}

func (e *UnknownSerializationTag) Error() string {
	return fmt.Sprintf("unknown serialization tag %q", e.Tag)
}
