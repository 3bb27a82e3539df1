// SPDX-License-Identifier: MPL-2.0

// Package pkgmgr wraps the external package-manager collaborators (apt for
// OS packages, pip for Python packages) behind small typed clients.
//
// Commands run through a shell interpreter (mvdan/sh) rather than raw exec,
// so installation scripts behave the same across hosts and tests can
// intercept execution with handler middleware instead of spawning processes.
package pkgmgr
