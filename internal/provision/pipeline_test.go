// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"varup/internal/variant"
)

func scriptDescriptor(t *testing.T) *variant.Descriptor {
	t.Helper()
	return &variant.Descriptor{
		Name:             "minimal-script",
		BaseImage:        "python:3.11-slim",
		NumericBackend:   variant.BackendNone,
		RequirementsFile: writeRequirements(t, "fastapi==0.110.0\n"),
		Entrypoint:       variant.Entrypoint{Kind: variant.EntrypointScript, Script: "app.py"},
	}
}

func cpuDescriptor(t *testing.T) *variant.Descriptor {
	t.Helper()
	d, err := variant.Get(variant.CPUML)
	if err != nil {
		t.Fatal(err)
	}
	d.RequirementsFile = writeRequirements(t, "fastapi==0.110.0\nchromadb==0.4.24\n")
	return d
}

func TestPipelineScenarioNoneBackend(t *testing.T) {
	t.Parallel()
	apt := &fakeApt{}
	pip := &fakePip{}
	p := NewPipeline(apt, pip)

	if err := p.Run(context.Background(), scriptDescriptor(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Only system packages + requirements; no backend index ever used.
	for _, call := range pip.calls {
		if call.indexURL != "" {
			t.Fatalf("none-backend pipeline used a backend index: %v", call)
		}
	}
	if len(pip.calls) != 1 {
		t.Fatalf("expected only the requirements install, got %d calls", len(pip.calls))
	}
}

func TestPipelineBackendBeforeRequirements(t *testing.T) {
	t.Parallel()
	apt := &fakeApt{}
	pip := &fakePip{}
	p := NewPipeline(apt, pip)
	d := cpuDescriptor(t)

	if err := p.Run(context.Background(), d); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(pip.calls) < 2 {
		t.Fatalf("expected backend + requirements installs, got %d", len(pip.calls))
	}
	// The first pip call is the pinned backend set from its dedicated index.
	if pip.calls[0].indexURL != d.BackendPackageSource {
		t.Fatalf("backend install must come first, first call: %+v", pip.calls[0])
	}
	for _, call := range pip.calls[1:] {
		if call.indexURL != "" {
			t.Fatalf("requirements install after backend must use default index: %+v", call)
		}
	}
}

func TestPipelineFailFast(t *testing.T) {
	t.Parallel()
	var order []string
	s1 := &recordingStage{name: "one", order: &order, err: errors.New("boom")}
	s2 := &recordingStage{name: "two", order: &order}
	s3 := &recordingStage{name: "three", order: &order}

	p := NewPipeline(nil, nil, WithStages(s1, s2, s3))
	err := p.Run(context.Background(), scriptDescriptor(t))
	if err == nil {
		t.Fatal("expected error")
	}

	if s1.runs != 1 || s2.runs != 0 || s3.runs != 0 {
		t.Fatalf("later stages ran after failure: %d/%d/%d", s1.runs, s2.runs, s3.runs)
	}
	if !slices.Equal(order, []string{"one"}) {
		t.Fatalf("unexpected invocation order: %v", order)
	}
}

func TestPipelineStageOrder(t *testing.T) {
	t.Parallel()
	var order []string
	s1 := &recordingStage{name: StageSystem, order: &order}
	s2 := &recordingStage{name: StageBackend, order: &order}
	s3 := &recordingStage{name: StageRequirements, order: &order}

	p := NewPipeline(nil, nil, WithStages(s1, s2, s3))
	if err := p.Run(context.Background(), scriptDescriptor(t)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !slices.Equal(order, []string{StageSystem, StageBackend, StageRequirements}) {
		t.Fatalf("unexpected order: %v", order)
	}
}

func TestPipelineInvalidDescriptorNeverStarts(t *testing.T) {
	t.Parallel()
	s1 := &recordingStage{name: "one"}

	// GPU backend with the toolkit packages stripped: invalid at
	// construction, so the pipeline must refuse to start.
	d, err := variant.Get(variant.GPUML)
	if err != nil {
		t.Fatal(err)
	}
	d.SystemPackages = []string{"python3"}

	p := NewPipeline(nil, nil, WithStages(s1))
	runErr := p.Run(context.Background(), d)
	if !errors.Is(runErr, variant.ErrInvalidVariant) {
		t.Fatalf("expected ErrInvalidVariant, got %v", runErr)
	}
	if s1.runs != 0 {
		t.Fatal("stage ran for an invalid descriptor")
	}
}

func TestPipelineStateSkipsCompletedStages(t *testing.T) {
	t.Parallel()
	state, err := LoadState(filepath.Join(t.TempDir(), "state.toml"))
	if err != nil {
		t.Fatal(err)
	}

	s1 := &recordingStage{name: "one"}
	s2 := &recordingStage{name: "two"}
	d := scriptDescriptor(t)

	p := NewPipeline(nil, nil, WithStages(s1, s2), WithState(state))
	if err := p.Run(context.Background(), d); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if err := p.Run(context.Background(), d); err != nil {
		t.Fatalf("second run: %v", err)
	}

	if s1.runs != 1 || s2.runs != 1 {
		t.Fatalf("completed stages re-ran: %d/%d", s1.runs, s2.runs)
	}
}

func TestPipelineForceRerunsStages(t *testing.T) {
	t.Parallel()
	state, err := LoadState(filepath.Join(t.TempDir(), "state.toml"))
	if err != nil {
		t.Fatal(err)
	}

	s1 := &recordingStage{name: "one"}
	d := scriptDescriptor(t)

	first := NewPipeline(nil, nil, WithStages(s1), WithState(state))
	if err := first.Run(context.Background(), d); err != nil {
		t.Fatal(err)
	}

	forced := NewPipeline(nil, nil, WithStages(s1), WithState(state), WithForce(true))
	if err := forced.Run(context.Background(), d); err != nil {
		t.Fatal(err)
	}

	if s1.runs != 2 {
		t.Fatalf("expected forced re-run, got %d runs", s1.runs)
	}
}

func TestPipelineFailedStageNotMarkedComplete(t *testing.T) {
	t.Parallel()
	state, err := LoadState(filepath.Join(t.TempDir(), "state.toml"))
	if err != nil {
		t.Fatal(err)
	}

	s1 := &recordingStage{name: "one", err: errors.New("boom")}
	d := scriptDescriptor(t)

	p := NewPipeline(nil, nil, WithStages(s1), WithState(state))
	if err := p.Run(context.Background(), d); err == nil {
		t.Fatal("expected error")
	}

	if state.Done(Fingerprint(d), "one") {
		t.Fatal("failed stage recorded as complete")
	}
}
