package cli

import (
	"errors"
	"fmt"

	"mercator-hq/relay/pkg/proxyproto/client"
	"mercator-hq/relay/pkg/service"
)

// Exit codes follow the BSD sysexits convention so operators scripting
// around the relay binary can tell a bad config apart from a bad upstream
// without parsing stderr.
const (
	ExitOK      = 0
	ExitFailure = 1

	// ExitUsage is returned for malformed invocations (EX_USAGE).
	ExitUsage = 64

	// ExitData is returned when a request carried unusable address data:
	// the PROXY layer could not resolve a source address or the resolved
	// endpoints mixed IP families (EX_DATAERR).
	ExitData = 65

	// ExitUnavailable is returned when a stack layer rejected the request
	// outright (EX_UNAVAILABLE).
	ExitUnavailable = 69

	// ExitInternal is returned for panics recovered inside the stack
	// (EX_SOFTWARE).
	ExitInternal = 70

	// ExitTempFail is returned when a stack layer timed out; retrying may
	// succeed (EX_TEMPFAIL).
	ExitTempFail = 75

	// ExitConfig is returned for invalid or impossible configuration,
	// including the UDP+v1 PROXY combination (EX_CONFIG).
	ExitConfig = 78
)

// ConfigError reports a problem with the relay configuration file.
type ConfigError struct {
	Path    string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("config error: %s", e.Message)
	}
	return fmt.Sprintf("config error in %s: %s", e.Path, e.Message)
}

// ExitCode implements the exitCoder convention consumed by Execute.
func (e *ConfigError) ExitCode() int { return ExitConfig }

// NewConfigError creates a ConfigError for the given config file path.
func NewConfigError(path, message string) *ConfigError {
	return &ConfigError{Path: path, Message: message}
}

// CommandError wraps a failure from one of relay's subcommands, keeping
// the causal chain intact for errors.Is/As while naming the command in
// the operator-facing message.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("relay %s: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error {
	return e.Err
}

// ExitCode classifies the wrapped error via ExitCode.
func (e *CommandError) ExitCode() int { return ExitCode(e.Err) }

// NewCommandError creates a CommandError for the named subcommand.
func NewCommandError(command string, err error) *CommandError {
	return &CommandError{Command: command, Err: err}
}

// ExitCode maps an error returned by a relay command onto a process exit
// code. The stack's failure taxonomy maps one-to-one: configuration
// problems (including an impossible PROXY transport/version pair) are
// EX_CONFIG, address-resolution failures inside the PROXY layer are
// EX_DATAERR, timeouts are EX_TEMPFAIL, recovered panics are EX_SOFTWARE,
// and filter rejections are EX_UNAVAILABLE. Anything unclassified exits 1.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	var ce *ConfigError
	switch {
	case errors.As(err, &ce):
		return ExitConfig
	case errors.Is(err, client.ErrConfiguration):
		return ExitConfig
	case errors.Is(err, client.ErrMissingSource), errors.Is(err, client.ErrFamilyMismatch):
		return ExitData
	case errors.Is(err, service.ErrTimeout):
		return ExitTempFail
	case errors.Is(err, service.ErrInternal):
		return ExitInternal
	case errors.Is(err, service.ErrRejected):
		return ExitUnavailable
	default:
		return ExitFailure
	}
}
