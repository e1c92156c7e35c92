//go:build windows

package osutil

import (
	"os"
	"os/exec"
)

// SetProcessGroup is a no-op on Windows, which has no Unix-style process
// groups for foreground processes.
func SetProcessGroup(_ *exec.Cmd) {
}

// SetProcessGroupKill installs a cancel function that terminates the main
// process. Children may keep running; Windows offers no group kill here.
func SetProcessGroupKill(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Kill)
	}
}
