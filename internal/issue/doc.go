// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable error handling with user-friendly messages.
//
// This package defines error types that carry remediation steps, plus a small
// catalog of known provisioning failure modes with Markdown-formatted guidance
// rendered in the terminal.
package issue
