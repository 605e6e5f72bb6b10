// Package errors defines the error taxonomy shared by the navigation engine,
// the operation executor and the configuration loader. Runtime errors are
// reported to the user as notices; only ConfigError is fatal, and only at startup.
package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"syscall"
)

// Re-exported from the standard errors package so callers need a single import.
var (
	Unwrap = errors.Unwrap
	Is     = errors.Is
	As     = errors.As
	New    = errors.New
)

// ErrorKind classifies an error within the taxonomy
type ErrorKind int

const (
	Unknown ErrorKind = iota
	// Input kinds
	InputAmbiguous
	NoBinding
	// Navigation and operation kinds
	NotFound
	PermissionDenied
	NotADirectory
	EmptyHistory
	AlreadyExists
	InvalidName
	Cancelled
	PartialFailure
	// Config kinds
	ConfigInvalid
)

var kindNames = map[ErrorKind]string{
	Unknown:          "unknown",
	InputAmbiguous:   "input ambiguous",
	NoBinding:        "no binding",
	NotFound:         "not found",
	PermissionDenied: "permission denied",
	NotADirectory:    "not a directory",
	EmptyHistory:     "empty history",
	AlreadyExists:    "already exists",
	InvalidName:      "invalid name",
	Cancelled:        "cancelled",
	PartialFailure:   "partial failure",
	ConfigInvalid:    "invalid configuration",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ApplicationError is the base type for every error in the taxonomy
type ApplicationError struct {
	msg  string
	err  error
	kind ErrorKind
}

// Error returns the error message
func (e *ApplicationError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

// Unwrap returns the wrapped error
func (e *ApplicationError) Unwrap() error {
	return e.err
}

// Kind returns the kind of error
func (e *ApplicationError) Kind() ErrorKind {
	return e.kind
}

// InputError is raised by key resolution
type InputError struct {
	ApplicationError
	sequence string
}

// NewInputError creates a new input error for the given key sequence
func NewInputError(kind ErrorKind, sequence string) *InputError {
	msg := "unknown key sequence"
	if kind == InputAmbiguous {
		msg = "waiting for more keys"
	}
	return &InputError{
		ApplicationError: ApplicationError{msg: msg, kind: kind},
		sequence:         sequence,
	}
}

// Error returns the input error message
func (e *InputError) Error() string {
	if e.sequence != "" {
		return fmt.Sprintf("%s: %s", e.msg, e.sequence)
	}
	return e.msg
}

// Sequence returns the offending key sequence
func (e *InputError) Sequence() string {
	return e.sequence
}

// NavigationError is reported when a navigation action cannot be applied.
// State is left unchanged whenever one is returned.
type NavigationError struct {
	ApplicationError
	path string
}

// NewNavigationError creates a new navigation error
func NewNavigationError(kind ErrorKind, path string, err error) *NavigationError {
	return &NavigationError{
		ApplicationError: ApplicationError{msg: "cannot navigate", err: err, kind: kind},
		path:             path,
	}
}

// Error returns the navigation error message
func (e *NavigationError) Error() string {
	if e.path == "" {
		return fmt.Sprintf("%s: %s", e.msg, e.kind)
	}
	return fmt.Sprintf("%s: %s: %s", e.msg, e.path, e.kind)
}

// Path returns the path that could not be navigated to
func (e *NavigationError) Path() string {
	return e.path
}

// ItemFailure records one failed item of a multi-item operation
type ItemFailure struct {
	Index int
	Path  string
	Err   error
}

// OperationError is reported per operation and never aborts the dispatch loop
type OperationError struct {
	ApplicationError
	op        string
	path      string
	succeeded []string
	failed    []ItemFailure
}

// NewOperationError creates a new operation error for a single path
func NewOperationError(op string, kind ErrorKind, path string, err error) *OperationError {
	return &OperationError{
		ApplicationError: ApplicationError{msg: op + " failed", err: err, kind: kind},
		op:               op,
		path:             path,
	}
}

// NewPartialFailure aggregates the outcome of a multi-item operation
func NewPartialFailure(op string, succeeded []string, failed []ItemFailure) *OperationError {
	return &OperationError{
		ApplicationError: ApplicationError{msg: op + " partially failed", kind: PartialFailure},
		op:               op,
		succeeded:        succeeded,
		failed:           failed,
	}
}

// Error returns the operation error message
func (e *OperationError) Error() string {
	if e.kind == PartialFailure {
		paths := make([]string, 0, len(e.failed))
		for _, f := range e.failed {
			paths = append(paths, f.Path)
		}
		return fmt.Sprintf("%s: %d succeeded, %d failed (%s)",
			e.msg, len(e.succeeded), len(e.failed), strings.Join(paths, ", "))
	}
	if e.path != "" {
		return fmt.Sprintf("%s: %s: %s", e.msg, e.path, e.kind)
	}
	return fmt.Sprintf("%s: %s", e.msg, e.kind)
}

// Op returns the operation name
func (e *OperationError) Op() string {
	return e.op
}

// Path returns the path the operation failed on
func (e *OperationError) Path() string {
	return e.path
}

// Succeeded returns the items that completed before or after a failure
func (e *OperationError) Succeeded() []string {
	return e.succeeded
}

// Failed returns the failed items of a partial failure
func (e *OperationError) Failed() []ItemFailure {
	return e.failed
}

// ConfigError represents an invalid configuration detected at startup
type ConfigError struct {
	ApplicationError
	param string
}

// NewConfigError creates a new configuration error
func NewConfigError(msg string, param string, err error) *ConfigError {
	return &ConfigError{
		ApplicationError: ApplicationError{msg: msg, err: err, kind: ConfigInvalid},
		param:            param,
	}
}

// Error returns the config error message
func (e *ConfigError) Error() string {
	if e.param != "" {
		if e.err != nil {
			return fmt.Sprintf("%s: %s: %v", e.msg, e.param, e.err)
		}
		return fmt.Sprintf("%s: %s", e.msg, e.param)
	}
	return e.ApplicationError.Error()
}

// Param returns the configuration parameter at fault
func (e *ConfigError) Param() string {
	return e.param
}

// KindOf returns the taxonomy kind of err, or Unknown
func KindOf(err error) ErrorKind {
	var k interface{ Kind() ErrorKind }
	if As(err, &k) {
		return k.Kind()
	}
	return Unknown
}

// IsNotFound reports whether err is a NotFound error
func IsNotFound(err error) bool { return KindOf(err) == NotFound }

// IsPermissionDenied reports whether err is a PermissionDenied error
func IsPermissionDenied(err error) bool { return KindOf(err) == PermissionDenied }

// IsAlreadyExists reports whether err is an AlreadyExists error
func IsAlreadyExists(err error) bool { return KindOf(err) == AlreadyExists }

// IsCancelled reports whether err is a Cancelled error
func IsCancelled(err error) bool { return KindOf(err) == Cancelled }

// IsPartialFailure reports whether err is a PartialFailure error
func IsPartialFailure(err error) bool { return KindOf(err) == PartialFailure }

// IsConfigInvalid reports whether err is a ConfigInvalid error
func IsConfigInvalid(err error) bool { return KindOf(err) == ConfigInvalid }

// Classify maps an OS level error onto the taxonomy
func Classify(err error) ErrorKind {
	switch {
	case err == nil:
		return Unknown
	case errors.Is(err, fs.ErrNotExist):
		return NotFound
	case errors.Is(err, fs.ErrPermission):
		return PermissionDenied
	case errors.Is(err, fs.ErrExist):
		return AlreadyExists
	case errors.Is(err, syscall.ENOTDIR):
		return NotADirectory
	}
	return KindOf(err)
}
