// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"varup/internal/pkgmgr"
	"varup/internal/variant"
)

// AptClient is the subset of the apt package manager the system stage needs.
type AptClient interface {
	Update(ctx context.Context) error
	Install(ctx context.Context, pkg string) error
	IsInstalled(ctx context.Context, pkg string) bool
	CleanCache(ctx context.Context) error
}

// SystemStage installs the descriptor's OS package set: refresh the index,
// install each missing package, then drop the package cache. Packages that
// are already installed are skipped, which makes re-runs a no-op.
type SystemStage struct {
	apt AptClient
}

// NewSystemStage creates the system package stage.
func NewSystemStage(apt AptClient) *SystemStage {
	return &SystemStage{apt: apt}
}

// Name implements Stage.
func (s *SystemStage) Name() string { return StageSystem }

// Run implements Stage. Install failures are non-transient: the first
// failing package aborts the stage with a PackageInstallFailedError.
func (s *SystemStage) Run(ctx context.Context, d *variant.Descriptor) error {
	if len(d.SystemPackages) == 0 {
		slog.Debug("no system packages declared", "variant", d.Name)
		return nil
	}

	if err := s.apt.Update(ctx); err != nil {
		return fmt.Errorf("failed to refresh package index: %w", err)
	}

	for _, pkg := range d.SystemPackages {
		if s.apt.IsInstalled(ctx, pkg) {
			slog.Debug("system package already installed", "package", pkg)
			continue
		}
		if err := s.apt.Install(ctx, pkg); err != nil {
			return &PackageInstallFailedError{
				Package:  pkg,
				ExitCode: exitCodeOf(err),
				Err:      err,
			}
		}
		slog.Info("installed system package", "package", pkg)
	}

	if err := s.apt.CleanCache(ctx); err != nil {
		return fmt.Errorf("failed to clean package cache: %w", err)
	}
	return nil
}

// exitCodeOf extracts the installer exit status from a runner error, 0 when
// the failure was not a process exit.
func exitCodeOf(err error) int {
	var ese *pkgmgr.ExitStatusError
	if errors.As(err, &ese) {
		return ese.Code
	}
	return 0
}
