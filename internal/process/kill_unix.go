//go:build !windows

// Package process stops browser processes started by the Chrome renderer.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, which
// takes down Chrome together with its renderer and GPU helpers.
// Non-positive PIDs are ignored.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// errors ignored: launcher.Kill is the fallback
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
