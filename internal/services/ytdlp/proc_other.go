//go:build !unix

package ytdlp

import "os/exec"

func configureProcessGroup(cmd *exec.Cmd) {}
