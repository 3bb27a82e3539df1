// SPDX-License-Identifier: MPL-2.0

// Package cmd contains all CLI commands for varup.
//
// This package implements the Cobra command hierarchy for the varup CLI:
// the root command plus subcommands for provisioning an environment
// variant, launching its entrypoint, inspecting the resolved plan, and
// listing the variant catalog.
package cmd
