// SPDX-License-Identifier: MPL-2.0

// Package config loads varup configuration.
//
// Configuration is resolved from defaults, an optional CUE config file
// (validated against an embedded schema), and VARUP_* environment
// variables, in that precedence order. The config never defines variants;
// it only adjusts how the built-in catalog is provisioned and launched.
package config
