// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"testing"

	"varup/internal/variant"
)

func TestBackendStageNoneIsNoop(t *testing.T) {
	t.Parallel()
	pip := &fakePip{}
	stage := NewBackendStage(pip)

	d := &variant.Descriptor{
		Name:           "minimal",
		BaseImage:      "python:3.11-slim",
		NumericBackend: variant.BackendNone,
	}
	if err := stage.Run(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pip.calls) != 0 {
		t.Fatalf("no-op backend must not install anything, got %v", pip.calls)
	}
}

func TestBackendStageCPUInstallsFromIndex(t *testing.T) {
	t.Parallel()
	pip := &fakePip{}
	stage := NewBackendStage(pip)

	d, err := variant.Get(variant.CPUML)
	if err != nil {
		t.Fatal(err)
	}
	if err := stage.Run(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pip.calls) != 1 {
		t.Fatalf("expected 1 install call, got %d", len(pip.calls))
	}
	if pip.calls[0].indexURL != d.BackendPackageSource {
		t.Fatalf("expected index %q, got %q", d.BackendPackageSource, pip.calls[0].indexURL)
	}
}

func TestBackendStageGPUVersionMatch(t *testing.T) {
	t.Parallel()
	pip := &fakePip{}
	stage := NewBackendStage(pip)

	d, err := variant.Get(variant.GPUML)
	if err != nil {
		t.Fatal(err)
	}
	if err := stage.Run(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(pip.calls) != 1 {
		t.Fatalf("expected install, got %d calls", len(pip.calls))
	}
}

func TestBackendStageGPUVersionMismatch(t *testing.T) {
	t.Parallel()
	pip := &fakePip{}
	stage := NewBackendStage(pip)

	d, err := variant.Get(variant.GPUML)
	if err != nil {
		t.Fatal(err)
	}
	// Toolkit 11.8 in the image, wheels tagged cu121.
	d.BaseImage = "nvidia/cuda:11.8.0-cudnn8-runtime-ubuntu22.04"

	runErr := stage.Run(context.Background(), d)
	if runErr == nil {
		t.Fatal("expected mismatch error")
	}

	var bvm *BackendVersionMismatchError
	if !errors.As(runErr, &bvm) {
		t.Fatalf("expected *BackendVersionMismatchError, got %T", runErr)
	}
	if bvm.Want != "cu118" || bvm.Got != "cu121" {
		t.Fatalf("unexpected mismatch detail: want=%q got=%q", bvm.Want, bvm.Got)
	}
	if !errors.Is(runErr, ErrBackendMismatch) {
		t.Fatal("sentinel not reachable via errors.Is")
	}

	// Nothing may be installed on mismatch.
	if len(pip.calls) != 0 {
		t.Fatalf("mismatch must abort before install, got %v", pip.calls)
	}
}

func TestBackendStageInstallFailureNoFallback(t *testing.T) {
	t.Parallel()
	pip := &fakePip{failSpec: "torch==2.2.1", failCode: 1}
	stage := NewBackendStage(pip)

	d, err := variant.Get(variant.GPUML)
	if err != nil {
		t.Fatal(err)
	}

	runErr := stage.Run(context.Background(), d)
	var pif *PackageInstallFailedError
	if !errors.As(runErr, &pif) {
		t.Fatalf("expected *PackageInstallFailedError, got %T", runErr)
	}

	// Exactly one attempt: a failed GPU install never retries against a
	// different index or package set.
	if len(pip.calls) != 1 {
		t.Fatalf("expected a single install attempt, got %d", len(pip.calls))
	}
}
