// Package osutil provides the command-runner capability port used for
// operations delegated to external tools, such as cloning a repository
// during a remote skill install.
package osutil

import (
	"bytes"
	"context"
	"os/exec"

	"github.com/pkg/errors"
)

// RunSpec describes one external command invocation.
type RunSpec struct {
	Command string
	Args    []string
	Dir     string
}

// RunResult captures the outcome of an external command. A non-zero Code
// with a nil error means the command ran but failed.
type RunResult struct {
	Code   int
	Stdout string
	Stderr string
}

// Runner executes external commands. It is optional: the engine only
// requires one for remote installs.
type Runner interface {
	Run(ctx context.Context, spec RunSpec) (RunResult, error)
}

// ExecRunner runs commands through os/exec.
type ExecRunner struct{}

// Run executes the command, capturing stdout and stderr separately. The
// command runs in its own process group so context cancellation kills the
// whole tree, not just the direct child.
func (ExecRunner) Run(ctx context.Context, spec RunSpec) (RunResult, error) {
	cmd := exec.CommandContext(ctx, spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	SetProcessGroup(cmd)
	SetProcessGroupKill(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := RunResult{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.Code = exitErr.ExitCode()
			return result, nil
		}
		return result, errors.Wrapf(err, "failed to run %s", spec.Command)
	}

	return result, nil
}
