package codes

import (
	"errors"
	"fmt"
	"os/exec"
)

// Kind classifies a fatal provisioning failure
type Kind int

const (
	KindConfiguration Kind = iota + 1
	KindNetwork
	KindInstall
	KindBuild
)

// Exit codes used when no external command supplied one
const (
	Success = 0
	Failure = 1
)

// Descriptions maps error kinds to their descriptions
var Descriptions = map[Kind]string{
	KindConfiguration: "Configuration error",
	KindNetwork:       "Network error",
	KindInstall:       "Toolchain installation failed",
	KindBuild:         "Build failed",
}

// Error is a fatal failure carrying the exit status the process should end with
type Error struct {
	Kind Kind
	Code int
	Err  error
}

// New wraps err as a fatal failure of the given kind.
// If err came from an external command the command's exit status is kept,
// otherwise the code is Failure.
func New(kind Kind, err error) *Error {
	code := Failure

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		code = exitErr.ExitCode()
	}

	return &Error{Kind: kind, Code: code, Err: err}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", GetDescription(e.Kind), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// ExitCode returns the process exit status for err
func ExitCode(err error) int {
	if err == nil {
		return Success
	}

	var e *Error
	if errors.As(err, &e) && e.Code > 0 {
		return e.Code
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return exitErr.ExitCode()
	}

	return Failure
}

// IsKind reports whether err is a fatal failure of the given kind
func IsKind(err error, kind Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == kind
}

// GetDescription returns the description for a given kind, or a generic message if unknown
func GetDescription(kind Kind) string {
	if msg, ok := Descriptions[kind]; ok {
		return msg
	}

	return "Unknown error"
}
