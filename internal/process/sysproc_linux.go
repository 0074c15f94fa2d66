//go:build linux

package process

import (
	"os/exec"
	"syscall"
)

// configureSysProcAttr makes the child receive SIGKILL if pgbootstrap dies,
// so a crashed entrypoint never leaves a half-initialized temporary
// postgres running inside the container.
func configureSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Pdeathsig: syscall.SIGKILL,
	}
}
