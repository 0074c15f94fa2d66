//go:build !linux

package process

import "os/exec"

// configureSysProcAttr is a no-op where the parent-death signal is not
// available.
func configureSysProcAttr(_ *exec.Cmd) {}
