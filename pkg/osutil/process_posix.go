//go:build unix

package osutil

import (
	"os/exec"
	"syscall"
)

// SetProcessGroup runs the command in its own process group so the whole
// tree can be killed together, not just the direct child.
func SetProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// SetProcessGroupKill installs a cancel function that kills the entire
// process group. Must be called after SetProcessGroup and before Start.
func SetProcessGroupKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	}
}
