// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package launch

import (
	"os"
	"os/exec"
)

// execProcess runs the entrypoint as a child with passthrough stdio on
// platforms without exec support. The child's exit status becomes ours.
func execProcess(argv []string) error {
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		return &LaunchFailedError{Reason: "failed to start entrypoint", Err: err}
	}
	os.Exit(0)
	return nil
}
