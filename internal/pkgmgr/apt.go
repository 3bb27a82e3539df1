// SPDX-License-Identifier: MPL-2.0

package pkgmgr

import (
	"context"
	"os/exec"
	"strings"
)

// Apt is the client for the OS package manager.
type Apt struct {
	run Runner
	bin string
}

// NewApt creates an Apt client using the given runner. An empty bin falls
// back to "apt-get".
func NewApt(run Runner, bin string) *Apt {
	if bin == "" {
		bin = "apt-get"
	}
	return &Apt{run: run, bin: bin}
}

// Available reports whether the apt binary can be found on PATH.
func (a *Apt) Available() bool {
	_, err := exec.LookPath(a.bin)
	return err == nil
}

// Update refreshes the package index.
func (a *Apt) Update(ctx context.Context) error {
	return a.run.Run(ctx, a.bin, "update")
}

// Install installs a single OS package without recommended extras.
func (a *Apt) Install(ctx context.Context, pkg string) error {
	return a.run.Run(ctx, a.bin, "install", "-y", "--no-install-recommends", pkg)
}

// IsInstalled reports whether the package is already installed, via
// dpkg-query. Query failures are reported as "not installed" so the caller
// falls through to a regular install.
func (a *Apt) IsInstalled(ctx context.Context, pkg string) bool {
	out, err := a.run.Output(ctx, "dpkg-query", "-W", "-f", "${Status}", pkg)
	if err != nil {
		return false
	}
	return strings.Contains(out, "install ok installed")
}

// CleanCache drops the package cache and index lists to keep the
// provisioned environment minimal. Runs as a script so the glob expands.
func (a *Apt) CleanCache(ctx context.Context) error {
	return a.run.RunScript(ctx, a.bin+" clean && rm -rf /var/lib/apt/lists/*")
}
