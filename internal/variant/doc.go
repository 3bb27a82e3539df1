// SPDX-License-Identifier: MPL-2.0

// Package variant defines the deployment variant descriptors that drive
// provisioning and launch.
//
// A Descriptor is an immutable value naming everything a variant needs: the
// base runtime image, the OS package set, the numeric backend choice (none,
// CPU or CUDA tensor wheels) with its wheel index, the application
// requirements file, and the launch entrypoint. The five built-in variants
// live in the Catalog; descriptors are validated once at construction and
// never mutated afterwards.
package variant
