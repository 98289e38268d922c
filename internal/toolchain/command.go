package toolchain

import (
	"context"
	"io"
	"os/exec"
	"strings"
)

// ShellCommand describes an external command invocation
type ShellCommand struct {
	Path string
	Args []string
	// Dir is the working directory; empty means the current one
	Dir string
	// Env is the complete environment of the command
	Env []string
	// Stdout and Stderr default to discarding output
	Stdout io.Writer
	Stderr io.Writer
}

func (c *ShellCommand) String() string {
	return strings.Join(append([]string{c.Path}, c.Args...), " ")
}

// Runner executes external commands. Failures from a command that ran keep
// its *exec.ExitError so the exit status can be propagated.
type Runner interface {
	Run(ctx context.Context, cmd *ShellCommand) error
	Output(ctx context.Context, cmd *ShellCommand) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct {
	execCommand func(ctx context.Context, name string, args ...string) *exec.Cmd
}

var _ Runner = (*ExecRunner)(nil)

// NewExecRunner creates a runner for real processes
func NewExecRunner() *ExecRunner {
	return &ExecRunner{execCommand: exec.CommandContext}
}

func (r *ExecRunner) command(ctx context.Context, sc *ShellCommand) *exec.Cmd {
	c := r.execCommand(ctx, sc.Path, sc.Args...)
	c.Dir = sc.Dir
	c.Env = sc.Env

	return c
}

// Run runs cmd to completion
func (r *ExecRunner) Run(ctx context.Context, sc *ShellCommand) error {
	c := r.command(ctx, sc)
	c.Stdout = sc.Stdout
	c.Stderr = sc.Stderr

	return c.Run()
}

// Output runs cmd and returns its standard output
func (r *ExecRunner) Output(ctx context.Context, sc *ShellCommand) ([]byte, error) {
	return r.command(ctx, sc).Output()
}
