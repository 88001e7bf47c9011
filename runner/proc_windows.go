//go:build windows

package runner

import (
	"os/exec"
	"syscall"
)

const createNoWindow = 0x08000000

func detach(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: createNoWindow,
	}
}

func kill(cmd *exec.Cmd) error {
	return cmd.Process.Kill()
}
