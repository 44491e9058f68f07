//go:build windows

package runner

import "os/exec"

// killProcessGroup is a no-op on Windows; WaitDelay still bounds the wait.
func killProcessGroup(*exec.Cmd) {}
