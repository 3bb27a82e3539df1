// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"

	"varup/internal/variant"
)

// Process exit codes. Install-stage failures use the 1xx range and launch
// failures 2xx, so operators can tell from the code alone which phase of a
// build died. These values are part of the CLI contract and must not change
// between releases.
const (
	// ExitCodeOK is returned on success (for `provision`) or never observed
	// (for `up`, where the launched process owns the exit status).
	ExitCodeOK = 0
	// ExitCodeInvalidVariant covers descriptor construction and validation
	// failures; the pipeline never started.
	ExitCodeInvalidVariant = 2
	// ExitCodeSystemStage covers OS package installation failures.
	ExitCodeSystemStage = 101
	// ExitCodeBackendStage covers numeric backend install and version
	// mismatch failures.
	ExitCodeBackendStage = 102
	// ExitCodeRequirementsStage covers application requirements failures.
	ExitCodeRequirementsStage = 103
	// ExitCodeLaunch covers entrypoint resolution and port bind failures.
	ExitCodeLaunch = 201
)

// ExitCodeFor maps a pipeline error to the stage-specific exit code.
// Validation failures map to ExitCodeInvalidVariant; anything unrecognized
// falls back to 1.
func ExitCodeFor(err error) int {
	if err == nil {
		return ExitCodeOK
	}

	if errors.Is(err, variant.ErrInvalidVariant) {
		return ExitCodeInvalidVariant
	}

	var stageErr *StageError
	if errors.As(err, &stageErr) {
		switch stageErr.Stage {
		case StageSystem:
			return ExitCodeSystemStage
		case StageBackend:
			return ExitCodeBackendStage
		case StageRequirements:
			return ExitCodeRequirementsStage
		}
	}

	return 1
}
