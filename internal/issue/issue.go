// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Id identifies a catalog entry for a known failure mode.
type Id int

const (
	AptNotFoundId Id = iota + 1
	PipNotFoundId
	PackageInstallFailedId
	BackendInstallFailedId
	BackendVersionMismatchId
	RequirementsInstallFailedId
	PortInUseId
	ConfigLoadFailedId
	UnknownVariantId
)

// MarkdownMsg is the Markdown help text rendered for an issue.
type MarkdownMsg string

// Issue describes a known failure mode with remediation guidance.
type Issue struct {
	id    Id
	mdMsg MarkdownMsg
}

// GetId returns the issue's catalog ID.
func (i *Issue) GetId() Id { return i.id }

// MarkdownMsg returns the raw Markdown help text.
func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

// Render renders the issue's Markdown help text for terminal display using
// the given glamour style path (e.g. "dark").
func (i *Issue) Render(stylePath string) (string, error) {
	return render(string(i.mdMsg), stylePath)
}

// render is a variable so tests can stub out the glamour renderer.
var render = glamour.Render

var (
	aptNotFoundIssue = &Issue{
		id: AptNotFoundId,
		mdMsg: `
# apt-get not found

System package installation needs the ` + "`apt-get`" + ` tool on PATH.

## Things you can try
- Run inside a Debian/Ubuntu based image (e.g. ` + "`python:3.11-slim`" + `)
- Point ` + "`apt.bin`" + ` in the varup config at the right binary`,
	}

	pipNotFoundIssue = &Issue{
		id: PipNotFoundId,
		mdMsg: `
# pip not found

Backend and requirements installation needs ` + "`pip3`" + ` on PATH.

## Things you can try
- Install ` + "`python3-pip`" + ` via the system package stage
- Point ` + "`pip.bin`" + ` in the varup config at the right binary`,
	}

	packageInstallFailedIssue = &Issue{
		id: PackageInstallFailedId,
		mdMsg: `
# System package installation failed

A system package could not be installed. System package failures are treated
as non-transient: the build is aborted instead of retried.

## Things you can try
- Check the package name against the base image's distribution
- Run ` + "`apt-get update`" + ` manually and inspect the index output`,
	}

	backendInstallFailedIssue = &Issue{
		id: BackendInstallFailedId,
		mdMsg: `
# Numeric backend installation failed

The pinned tensor wheels could not be installed from the variant's wheel
index. The build is aborted; a GPU variant never falls back to CPU wheels.

## Things you can try
- Verify the wheel index is reachable (e.g. ` + "`https://download.pytorch.org/whl/cu121`" + `)
- Check that the pinned versions exist for the variant's build tag`,
	}

	backendVersionMismatchIssue = &Issue{
		id: BackendVersionMismatchId,
		mdMsg: `
# CUDA toolkit / wheel build tag mismatch

The CUDA version embedded in the base image tag disagrees with the build tag
of the pinned tensor wheels. Installing mismatched wheels would produce a
broken or silently CPU-only runtime, so the build is aborted.

## Things you can try
- Pick a base image whose CUDA version matches the wheel index (e.g.
  ` + "`nvidia/cuda:12.1.1-*`" + ` with ` + "`.../whl/cu121`" + `)
- Update the variant's backend pins to the matching build tag`,
	}

	requirementsInstallFailedIssue = &Issue{
		id: RequirementsInstallFailedId,
		mdMsg: `
# Requirements installation failed

A line of the application requirements file could not be installed.

## Things you can try
- Check the failing requirement spelling and version pin
- Verify the package index is reachable from this host`,
	}

	portInUseIssue = &Issue{
		id: PortInUseId,
		mdMsg: `
# Listen port unavailable

The configured port could not be bound, so the service was not launched.

## Things you can try
- Find the conflicting process: ` + "`ss -ltnp | grep <port>`" + `
- Launch on a different port with ` + "`--port`" + ``,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Configuration could not be loaded

The varup config file exists but could not be parsed or validated.

## Things you can try
- Check the file contains valid CUE syntax
- Compare the keys against ` + "`varup variants --help`" + ``,
	}

	unknownVariantIssue = &Issue{
		id: UnknownVariantId,
		mdMsg: `
# Unknown variant

The requested variant is not in the built-in catalog.

## Things you can try
- List the known variants with ` + "`varup variants`" + ``,
	}
)

var issues = map[Id]*Issue{
	AptNotFoundId:               aptNotFoundIssue,
	PipNotFoundId:               pipNotFoundIssue,
	PackageInstallFailedId:      packageInstallFailedIssue,
	BackendInstallFailedId:      backendInstallFailedIssue,
	BackendVersionMismatchId:    backendVersionMismatchIssue,
	RequirementsInstallFailedId: requirementsInstallFailedIssue,
	PortInUseId:                 portInUseIssue,
	ConfigLoadFailedId:          configLoadFailedIssue,
	UnknownVariantId:            unknownVariantIssue,
}

// Get returns the catalog entry for the given ID, or nil when unknown.
func Get(id Id) *Issue {
	return issues[id]
}

// Ids returns all catalog IDs in ascending order.
func Ids() []Id {
	ids := maps.Keys(issues)
	slices.Sort(ids)
	return ids
}
