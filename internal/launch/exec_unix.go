// SPDX-License-Identifier: MPL-2.0

//go:build unix

package launch

import (
	"fmt"
	"os"
	"os/exec"

	"golang.org/x/sys/unix"
)

// execProcess replaces the current process image with the entrypoint, so
// the service runs under the original PID and signal handling. Does not
// return on success.
func execProcess(argv []string) error {
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return &LaunchFailedError{
			Reason: fmt.Sprintf("entrypoint binary %q not found", argv[0]),
			Err:    err,
		}
	}
	if err := unix.Exec(path, argv, os.Environ()); err != nil {
		return &LaunchFailedError{Reason: "exec failed", Err: err}
	}
	return nil
}
