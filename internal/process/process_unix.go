//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// StartInGroup makes cmd the leader of a new process group, so that
// KillGroup reaches the tools it spawns (latex runs mktexpk, kpsewhich...).
func StartInGroup(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
}

// KillGroup sends SIGKILL to the process group led by pid.
func KillGroup(pid int) error {
	return syscall.Kill(-pid, syscall.SIGKILL)
}
