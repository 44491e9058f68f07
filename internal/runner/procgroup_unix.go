//go:build !windows

package runner

import (
	"os/exec"
	"syscall"
)

// killProcessGroup starts the command in its own process group and makes
// context cancellation kill every process in it.
func killProcessGroup(command *exec.Cmd) {
	command.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	command.Cancel = func() error {
		if command.Process == nil {
			return nil
		}
		// A negative pid signals the group led by the child.
		if err := syscall.Kill(-command.Process.Pid, syscall.SIGKILL); err != nil {
			return command.Process.Kill()
		}
		return nil
	}
}
