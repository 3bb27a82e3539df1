// SPDX-License-Identifier: MPL-2.0

package pkgmgr

import (
	"context"
	"os/exec"
)

type (
	// Pip is the client for the Python package installer.
	Pip struct {
		run Runner
		bin string
	}

	// InstallOptions collects the per-invocation install settings.
	InstallOptions struct {
		// IndexURL is the alternate package index, empty for the default.
		IndexURL string
	}

	// InstallOption adjusts a single pip install invocation.
	InstallOption func(*InstallOptions)
)

// NewPip creates a Pip client using the given runner. An empty bin falls
// back to "pip3".
func NewPip(run Runner, bin string) *Pip {
	if bin == "" {
		bin = "pip3"
	}
	return &Pip{run: run, bin: bin}
}

// WithIndexURL points the install at an alternate package index, used for
// the backend wheel indexes.
func WithIndexURL(url string) InstallOption {
	return func(o *InstallOptions) { o.IndexURL = url }
}

// ApplyInstallOptions resolves a set of options into InstallOptions.
func ApplyInstallOptions(opts ...InstallOption) InstallOptions {
	var o InstallOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Available reports whether the pip binary can be found on PATH.
func (p *Pip) Available() bool {
	_, err := exec.LookPath(p.bin)
	return err == nil
}

// Install installs the given requirement specs in one invocation.
// Specs already satisfied in the environment are a pip-level no-op.
func (p *Pip) Install(ctx context.Context, specs []string, opts ...InstallOption) error {
	o := ApplyInstallOptions(opts...)

	argv := []string{p.bin, "install", "--no-cache-dir"}
	if o.IndexURL != "" {
		argv = append(argv, "--index-url", o.IndexURL)
	}
	argv = append(argv, specs...)
	return p.run.Run(ctx, argv...)
}
