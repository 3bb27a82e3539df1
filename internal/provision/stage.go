// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"

	"varup/internal/variant"
)

// Stage names, also used as keys in the provision state file.
const (
	StageSystem       = "system-packages"
	StageBackend      = "numeric-backend"
	StageRequirements = "requirements"
)

// Stage is one step of the provisioning pipeline. Stages run strictly in
// order; a stage is never started when an earlier one failed.
type Stage interface {
	// Name returns the stable stage name.
	Name() string
	// Run executes the stage against the descriptor.
	Run(ctx context.Context, d *variant.Descriptor) error
}

// StageError wraps a stage failure with the name of the stage that produced
// it, so callers can map the failure to a stage-specific exit code.
type StageError struct {
	// Stage is the name of the failed stage.
	Stage string
	// Err is the stage's error.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

// Unwrap returns the stage's error for errors.Is/As chains.
func (e *StageError) Unwrap() error { return e.Err }
