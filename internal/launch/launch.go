// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strconv"

	"varup/internal/variant"
)

// ErrLaunchFailed is the sentinel error wrapped by LaunchFailedError.
var ErrLaunchFailed = errors.New("launch failed")

// Interpreter and server binaries used to build entrypoint command lines.
const (
	pythonBin = "python3"
	asgiBin   = "uvicorn"
)

// LaunchFailedError reports that the entrypoint could not be started. The
// process exits non-zero; nothing was launched.
type LaunchFailedError struct {
	// Reason describes what prevented the launch.
	Reason string
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *LaunchFailedError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("launch failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("launch failed: %s", e.Reason)
}

// Unwrap returns the sentinel and the underlying cause.
func (e *LaunchFailedError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrLaunchFailed, e.Err}
	}
	return []error{ErrLaunchFailed}
}

// Command builds the entrypoint argv for the descriptor: a direct
// interpreter invocation for script entrypoints, or an ASGI server bound to
// the configured host and port for service entrypoints.
func Command(d *variant.Descriptor) ([]string, error) {
	ep := d.Entrypoint
	switch ep.Kind {
	case variant.EntrypointScript:
		return []string{pythonBin, ep.Script}, nil
	case variant.EntrypointASGI:
		argv := []string{
			asgiBin, ep.Target,
			"--host", ep.Host,
			"--port", strconv.Itoa(ep.Port),
		}
		if ep.Reload {
			argv = append(argv, "--reload")
		}
		return argv, nil
	default:
		return nil, &LaunchFailedError{Reason: fmt.Sprintf("unknown entrypoint kind %q", ep.Kind)}
	}
}

// Preflight verifies the entrypoint can actually start: the target binary
// must resolve on PATH and, for ASGI entrypoints, the configured port must
// be bindable. The probe listener is closed again immediately; the real
// bind belongs to the launched process.
func Preflight(d *variant.Descriptor, argv []string) error {
	if _, err := exec.LookPath(argv[0]); err != nil {
		return &LaunchFailedError{
			Reason: fmt.Sprintf("entrypoint binary %q not found", argv[0]),
			Err:    err,
		}
	}

	if d.Entrypoint.Kind == variant.EntrypointASGI {
		addr := net.JoinHostPort(d.Entrypoint.Host, strconv.Itoa(d.Entrypoint.Port))
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return &LaunchFailedError{
				Reason: fmt.Sprintf("cannot bind %s", addr),
				Err:    err,
			}
		}
		_ = ln.Close() // Probe only; the entrypoint process takes the port
	}

	return nil
}

// Run builds, preflights, and executes the descriptor's entrypoint. On
// platforms with exec support this call does not return on success; the
// entrypoint replaces the current process. Any returned error is a launch
// failure.
func Run(d *variant.Descriptor) error {
	argv, err := Command(d)
	if err != nil {
		return err
	}
	if err := Preflight(d, argv); err != nil {
		return err
	}
	return execProcess(argv)
}
