// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"varup/internal/pkgmgr"
	"varup/internal/variant"
)

// PipClient is the subset of the pip package manager the backend and
// requirements stages need.
type PipClient interface {
	Install(ctx context.Context, specs []string, opts ...pkgmgr.InstallOption) error
}

// BackendStage installs the pinned numeric backend wheels from the
// descriptor's dedicated wheel index. It must run before the requirements
// stage so an unpinned requirement cannot pull in a slower build of the
// same library and override the accelerated one.
type BackendStage struct {
	pip PipClient
}

// NewBackendStage creates the numeric backend stage.
func NewBackendStage(pip PipClient) *BackendStage {
	return &BackendStage{pip: pip}
}

// Name implements Stage.
func (s *BackendStage) Name() string { return StageBackend }

// Run implements Stage. For BackendNone the stage succeeds immediately.
// For GPU variants the wheel build tag is validated against the CUDA
// version embedded in the base image before anything is installed; a
// mismatch aborts the build rather than risking a silently broken runtime.
// A failed GPU install never degrades to CPU wheels.
func (s *BackendStage) Run(ctx context.Context, d *variant.Descriptor) error {
	if d.NumericBackend == variant.BackendNone {
		slog.Debug("variant has no numeric backend, skipping", "variant", d.Name)
		return nil
	}

	if d.NumericBackend == variant.BackendGPU {
		cudaVersion, err := variant.CUDAVersion(d.BaseImage)
		if err != nil {
			return fmt.Errorf("failed to read CUDA version from base image: %w", err)
		}
		want := variant.CUDABuildTag(cudaVersion)
		if d.BackendBuildTag != want {
			return &BackendVersionMismatchError{
				BaseImage: d.BaseImage,
				Want:      want,
				Got:       d.BackendBuildTag,
			}
		}
	}

	slog.Info("installing numeric backend",
		"backend", d.NumericBackend,
		"index", d.BackendPackageSource,
		"packages", strings.Join(d.BackendPackages, " "))

	if err := s.pip.Install(ctx, d.BackendPackages, pkgmgr.WithIndexURL(d.BackendPackageSource)); err != nil {
		return &PackageInstallFailedError{
			Package:  strings.Join(d.BackendPackages, " "),
			ExitCode: exitCodeOf(err),
			Err:      err,
		}
	}
	return nil
}
