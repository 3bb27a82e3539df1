// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
)

// Sentinel errors wrapped by the typed stage errors, for errors.Is checks.
var (
	ErrPackageInstall      = errors.New("package install failed")
	ErrBackendMismatch     = errors.New("backend version mismatch")
	ErrRequirementsInstall = errors.New("requirements install failed")
)

type (
	// PackageInstallFailedError reports a package that failed to install
	// during the system or backend stage. Fatal; the pipeline halts.
	PackageInstallFailedError struct {
		// Package is the package (or pinned spec) that failed.
		Package string
		// ExitCode is the installer's exit status, 0 if unknown.
		ExitCode int
		// Err is the underlying installer error.
		Err error
	}

	// BackendVersionMismatchError reports a disagreement between the CUDA
	// toolkit version embedded in the base image and the build tag of the
	// pinned backend wheels. Detected before anything is installed.
	BackendVersionMismatchError struct {
		// BaseImage is the CUDA base image tag.
		BaseImage string
		// Want is the build tag derived from the base image.
		Want string
		// Got is the build tag declared by the backend package set.
		Got string
	}

	// RequirementsInstallFailedError reports a requirements file line that
	// failed to install. Fatal; the pipeline halts.
	RequirementsInstallFailedError struct {
		// File is the requirements file being installed.
		File string
		// Line is the failing requirement line.
		Line string
		// Err is the underlying installer error.
		Err error
	}
)

// Error implements the error interface.
func (e *PackageInstallFailedError) Error() string {
	if e.ExitCode != 0 {
		return fmt.Sprintf("package %q failed to install (exit status %d)", e.Package, e.ExitCode)
	}
	return fmt.Sprintf("package %q failed to install: %v", e.Package, e.Err)
}

// Unwrap returns the sentinel and the underlying cause.
func (e *PackageInstallFailedError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrPackageInstall, e.Err}
	}
	return []error{ErrPackageInstall}
}

// Error implements the error interface.
func (e *BackendVersionMismatchError) Error() string {
	return fmt.Sprintf("backend wheels tagged %q do not match base image %s (want %q)", e.Got, e.BaseImage, e.Want)
}

// Unwrap returns ErrBackendMismatch for errors.Is detection.
func (e *BackendVersionMismatchError) Unwrap() error { return ErrBackendMismatch }

// Error implements the error interface.
func (e *RequirementsInstallFailedError) Error() string {
	return fmt.Sprintf("requirement %q from %s failed to install: %v", e.Line, e.File, e.Err)
}

// Unwrap returns the sentinel and the underlying cause.
func (e *RequirementsInstallFailedError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrRequirementsInstall, e.Err}
	}
	return []error{ErrRequirementsInstall}
}
