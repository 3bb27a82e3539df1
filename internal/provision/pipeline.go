// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"log/slog"
	"time"

	"varup/internal/variant"
)

type (
	// Pipeline runs provisioning stages strictly in order, short-circuiting
	// on the first failure. A nil state disables stage caching.
	Pipeline struct {
		stages []Stage
		state  *State
		force  bool
	}

	// PipelineOption configures a Pipeline.
	PipelineOption func(*Pipeline)
)

// NewPipeline creates a pipeline over the default stage order: system
// packages, numeric backend, application requirements.
func NewPipeline(apt AptClient, pip PipClient, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		stages: []Stage{
			NewSystemStage(apt),
			NewBackendStage(pip),
			NewRequirementsStage(pip),
		},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// WithState enables stage completion caching through the given state.
func WithState(state *State) PipelineOption {
	return func(p *Pipeline) { p.state = state }
}

// WithForce re-runs every stage even when the state marks it complete.
func WithForce(force bool) PipelineOption {
	return func(p *Pipeline) { p.force = force }
}

// WithStages replaces the stage list. Used by tests.
func WithStages(stages ...Stage) PipelineOption {
	return func(p *Pipeline) { p.stages = stages }
}

// Run provisions the environment described by the descriptor. The
// descriptor must already be validated; Run re-checks as a guard since an
// invalid descriptor must never start the pipeline. On failure the
// remaining stages are skipped and the stage error is returned unwrapped
// enough for errors.As inspection.
func (p *Pipeline) Run(ctx context.Context, d *variant.Descriptor) error {
	if err := d.Validate(); err != nil {
		return err
	}

	fingerprint := Fingerprint(d)
	slog.Info("provisioning environment", "variant", d.Name, "fingerprint", fingerprint)

	for _, stage := range p.stages {
		if !p.force && p.state != nil && p.state.Done(fingerprint, stage.Name()) {
			slog.Info("stage already complete, skipping", "stage", stage.Name())
			continue
		}

		start := time.Now()
		if err := stage.Run(ctx, d); err != nil {
			slog.Error("stage failed", "stage", stage.Name(), "error", err)
			return &StageError{Stage: stage.Name(), Err: err}
		}
		slog.Info("stage complete", "stage", stage.Name(), "duration", time.Since(start).Round(time.Millisecond))

		if p.state != nil {
			if err := p.state.Mark(fingerprint, stage.Name()); err != nil {
				return &StageError{Stage: stage.Name(), Err: err}
			}
		}
	}

	return nil
}
