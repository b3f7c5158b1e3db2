// pkg/toolexec/proc_unix.go
//go:build unix

package toolexec

import (
	"os/exec"
	"syscall"
)

// setProcessGroup puts the child in its own process group so a timeout kill
// reaches the whole tree, not just the immediate child.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
