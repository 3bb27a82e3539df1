// SPDX-License-Identifier: MPL-2.0

// Package provision implements the environment provisioning pipeline.
//
// A pipeline runs three stages in a fixed order against a validated variant
// descriptor: system packages (apt), the numeric backend wheels (pip from a
// dedicated index), and the general application requirements. The ordering
// is a correctness contract, not a convention: the backend stage must finish
// before the requirements stage so an unpinned requirement cannot silently
// replace the accelerated wheels with a CPU-only build.
//
// Every stage failure is terminal for the build attempt. There is no retry,
// no GPU-to-CPU fallback, and no partial rollback; failed environments are
// discarded and rebuilt. Completed stages are recorded in a TOML state file
// keyed by a descriptor fingerprint, so re-running a pipeline on an already
// provisioned environment is a cheap no-op.
package provision
