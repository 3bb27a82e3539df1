// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"

	"varup/internal/issue"
	"varup/internal/launch"
	"varup/internal/provision"
	"varup/internal/variant"
)

// ServiceError is an error that carries optional rendering information for
// the CLI layer. When the CLI layer receives a ServiceError, it renders the
// styled error message (if present) before formatting the underlying error.
// Always create via newServiceError to enforce the Err-must-be-non-nil invariant.
type ServiceError struct {
	// Err is the underlying error (must not be nil).
	Err error
	// IssueID is the optional issue catalog ID for rendering help text.
	IssueID issue.Id
	// StyledMessage is the optional pre-rendered styled error text.
	StyledMessage string
}

// newServiceError creates a ServiceError with a nil-Err panic guard.
// All construction sites must use this instead of struct literals.
func newServiceError(err error, issueID issue.Id, styledMessage string) *ServiceError {
	if err == nil {
		panic("ServiceError: Err must not be nil")
	}
	return &ServiceError{
		Err:           err,
		IssueID:       issueID,
		StyledMessage: styledMessage,
	}
}

// Error implements the error interface.
func (e *ServiceError) Error() string { return e.Err.Error() }

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *ServiceError) Unwrap() error { return e.Err }

// classifyIssue maps a provisioning or launch failure to an issue catalog
// entry, or 0 when the failure has no catalog entry.
func classifyIssue(err error) issue.Id {
	var (
		stageErr *provision.StageError
		pkgErr   *provision.PackageInstallFailedError
		reqErr   *provision.RequirementsInstallFailedError
		netErr   *net.OpError
	)

	failedStage := ""
	if errors.As(err, &stageErr) {
		failedStage = stageErr.Stage
	}

	switch {
	case errors.Is(err, variant.ErrInvalidVariant):
		return issue.UnknownVariantId
	case errors.Is(err, provision.ErrBackendMismatch):
		return issue.BackendVersionMismatchId
	case errors.As(err, &reqErr):
		return issue.RequirementsInstallFailedId
	case errors.As(err, &pkgErr):
		// Both the system and backend stages report install failures with
		// the same error type; the stage decides which help text fits.
		if failedStage == provision.StageBackend {
			return issue.BackendInstallFailedId
		}
		return issue.PackageInstallFailedId
	case errors.Is(err, launch.ErrLaunchFailed) && errors.As(err, &netErr):
		// A bind probe failure surfaces as a wrapped net.OpError.
		return issue.PortInUseId
	default:
		return 0
	}
}

// renderServiceError renders a ServiceError in the CLI layer.
// It prints any styled message first, then the optional issue help section.
func renderServiceError(stderr io.Writer, svcErr *ServiceError) {
	if svcErr == nil {
		return
	}

	if svcErr.StyledMessage != "" {
		fmt.Fprint(stderr, svcErr.StyledMessage)
	}

	if svcErr.IssueID == 0 {
		return
	}

	if catalogEntry := issue.Get(svcErr.IssueID); catalogEntry != nil {
		rendered, renderErr := catalogEntry.Render("dark")
		if renderErr != nil {
			slog.Warn("failed to render issue catalog entry", "issueID", svcErr.IssueID, "error", renderErr)
		} else {
			fmt.Fprint(stderr, rendered)
		}
	}
}
