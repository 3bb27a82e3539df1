// SPDX-License-Identifier: MPL-2.0

package pkgmgr

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

type (
	// ExecMiddleware wraps the interpreter's exec handler. Tests use it to
	// record or fake command execution without spawning processes.
	ExecMiddleware = func(next interp.ExecHandlerFunc) interp.ExecHandlerFunc

	// Runner executes package-manager command lines.
	Runner interface {
		// Run executes argv and streams output to the configured writers.
		Run(ctx context.Context, argv ...string) error
		// Output executes argv and returns its captured stdout.
		Output(ctx context.Context, argv ...string) (string, error)
		// RunScript executes a raw shell script fragment (unquoted, so
		// globs and && sequences work).
		RunScript(ctx context.Context, script string) error
	}

	// ExitStatusError reports a command that ran but exited non-zero.
	ExitStatusError struct {
		// Argv is the command line that failed.
		Argv []string
		// Code is the process exit status.
		Code int
	}

	// ShellRunner runs commands through the mvdan/sh interpreter.
	ShellRunner struct {
		stdout   io.Writer
		stderr   io.Writer
		env      []string
		handlers []ExecMiddleware
	}

	// RunnerOption configures a ShellRunner.
	RunnerOption func(*ShellRunner)
)

// Error implements the error interface.
func (e *ExitStatusError) Error() string {
	return fmt.Sprintf("%s: exit status %d", strings.Join(e.Argv, " "), e.Code)
}

// NewShellRunner creates a ShellRunner writing to stdout/stderr by default.
func NewShellRunner(opts ...RunnerOption) *ShellRunner {
	r := &ShellRunner{
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// WithStdio sets the writers command output is streamed to.
func WithStdio(stdout, stderr io.Writer) RunnerOption {
	return func(r *ShellRunner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// WithEnv replaces the inherited environment with the given KEY=VALUE pairs.
func WithEnv(env []string) RunnerOption {
	return func(r *ShellRunner) { r.env = env }
}

// WithExecMiddleware installs exec handler middleware on the interpreter.
// Primarily used by tests to intercept command execution.
func WithExecMiddleware(mw ...ExecMiddleware) RunnerOption {
	return func(r *ShellRunner) { r.handlers = append(r.handlers, mw...) }
}

// Run implements Runner.
func (r *ShellRunner) Run(ctx context.Context, argv ...string) error {
	src, err := quoteArgv(argv)
	if err != nil {
		return err
	}
	return r.runSource(ctx, src, argv, r.stdout)
}

// Output implements Runner.
func (r *ShellRunner) Output(ctx context.Context, argv ...string) (string, error) {
	src, err := quoteArgv(argv)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := r.runSource(ctx, src, argv, &buf); err != nil {
		return buf.String(), err
	}
	return buf.String(), nil
}

// RunScript implements Runner.
func (r *ShellRunner) RunScript(ctx context.Context, script string) error {
	return r.runSource(ctx, script, []string{script}, r.stdout)
}

func (r *ShellRunner) runSource(ctx context.Context, src string, argv []string, stdout io.Writer) error {
	file, err := syntax.NewParser().Parse(strings.NewReader(src), "pkgmgr")
	if err != nil {
		return fmt.Errorf("failed to parse command: %w", err)
	}

	env := r.env
	if env == nil {
		env = os.Environ()
	}

	opts := []interp.RunnerOption{
		interp.StdIO(nil, stdout, r.stderr),
		interp.Env(expand.ListEnviron(env...)),
	}
	if len(r.handlers) > 0 {
		opts = append(opts, interp.ExecHandlers(r.handlers...))
	}

	runner, err := interp.New(opts...)
	if err != nil {
		return fmt.Errorf("failed to create shell interpreter: %w", err)
	}

	if err := runner.Run(ctx, file); err != nil {
		if status, ok := interp.IsExitStatus(err); ok {
			return &ExitStatusError{Argv: argv, Code: int(status)}
		}
		return err
	}
	return nil
}

// quoteArgv joins argv into a shell source line with every word quoted, so
// arguments are passed verbatim (no globbing or word splitting).
func quoteArgv(argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("empty command")
	}
	var sb strings.Builder
	for i, arg := range argv {
		if i > 0 {
			sb.WriteByte(' ')
		}
		q, err := syntax.Quote(arg, syntax.LangBash)
		if err != nil {
			return "", fmt.Errorf("failed to quote argument %q: %w", arg, err)
		}
		sb.WriteString(q)
	}
	return sb.String(), nil
}
