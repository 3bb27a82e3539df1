// SPDX-License-Identifier: MPL-2.0

package variant

import (
	"errors"
	"fmt"
	"slices"
)

// Backend choices for the accelerated numeric library.
const (
	// BackendNone means the variant ships no tensor backend at all.
	BackendNone Backend = "none"
	// BackendCPU means CPU-only tensor wheels from a dedicated wheel index.
	BackendCPU Backend = "cpu"
	// BackendGPU means CUDA tensor wheels matching the base image toolkit.
	BackendGPU Backend = "gpu"
)

// Entrypoint kinds.
const (
	// EntrypointScript executes a script directly with the interpreter.
	EntrypointScript EntrypointKind = "script"
	// EntrypointASGI starts an ASGI server bound to a module:attr target.
	EntrypointASGI EntrypointKind = "asgi"
)

// ErrInvalidVariant is the sentinel error wrapped by InvalidVariantError.
var ErrInvalidVariant = errors.New("invalid variant")

type (
	// Backend identifies the numeric backend of a variant.
	Backend string

	// EntrypointKind selects between direct script execution and an ASGI
	// server invocation.
	EntrypointKind string

	// Entrypoint is the launch specification for a variant.
	Entrypoint struct {
		// Kind selects the launch mode.
		Kind EntrypointKind
		// Script is the script path to execute (EntrypointScript only).
		Script string
		// Target is the module:attr ASGI target (EntrypointASGI only).
		Target string
		// Host is the bind address for ASGI servers.
		Host string
		// Port is the listening port for ASGI servers.
		Port int
		// Reload enables live-reload on the ASGI server.
		Reload bool
	}

	// Descriptor is an immutable deployment profile. It is constructed once
	// per build, validated, and then only read by the pipeline stages.
	Descriptor struct {
		// Name is the catalog identifier of the variant.
		Name string
		// BaseImage is the semantic tag of the base OS/runtime image.
		BaseImage string
		// SystemPackages are the OS packages the variant requires.
		SystemPackages []string
		// NumericBackend is the accelerated backend choice.
		NumericBackend Backend
		// BackendPackageSource is the alternate wheel index used for the
		// numeric backend. Set iff NumericBackend != BackendNone.
		BackendPackageSource string
		// BackendPackages are the exact-version pins installed from
		// BackendPackageSource before the general requirements.
		BackendPackages []string
		// BackendBuildTag is the wheel build tag of the backend set
		// (e.g. "cpu" or "cu121"). Empty for BackendNone.
		BackendBuildTag string
		// RequirementsFile points at the application dependency list.
		RequirementsFile string
		// Entrypoint is the launch specification.
		Entrypoint Entrypoint
	}

	// InvalidVariantError reports a descriptor that violates a construction
	// invariant. The pipeline never starts for an invalid descriptor.
	InvalidVariantError struct {
		// Name is the variant name, if known.
		Name string
		// Reason describes the violated invariant.
		Reason string
	}
)

// Error implements the error interface.
func (e *InvalidVariantError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("invalid variant: %s", e.Reason)
	}
	return fmt.Sprintf("invalid variant %q: %s", e.Name, e.Reason)
}

// Unwrap returns ErrInvalidVariant so callers can use errors.Is for
// programmatic detection.
func (e *InvalidVariantError) Unwrap() error { return ErrInvalidVariant }

// IsValid returns whether the Backend is one of the known choices.
func (b Backend) IsValid() bool {
	return b == BackendNone || b == BackendCPU || b == BackendGPU
}

// Accelerated returns true when the backend installs tensor wheels.
func (b Backend) Accelerated() bool { return b == BackendCPU || b == BackendGPU }

// String returns the backend name.
func (b Backend) String() string { return string(b) }

// Validate checks the descriptor's construction invariants. It returns an
// *InvalidVariantError describing the first violation found, or nil.
func (d *Descriptor) Validate() error {
	if d.Name == "" {
		return &InvalidVariantError{Reason: "name must not be empty"}
	}
	if d.BaseImage == "" {
		return &InvalidVariantError{Name: d.Name, Reason: "base image must not be empty"}
	}
	if !d.NumericBackend.IsValid() {
		return &InvalidVariantError{Name: d.Name, Reason: fmt.Sprintf("unknown numeric backend %q", d.NumericBackend)}
	}

	if d.NumericBackend == BackendNone {
		if d.BackendPackageSource != "" {
			return &InvalidVariantError{Name: d.Name, Reason: "backend package source set but numeric backend is none"}
		}
		if len(d.BackendPackages) > 0 {
			return &InvalidVariantError{Name: d.Name, Reason: "backend packages set but numeric backend is none"}
		}
	} else {
		if d.BackendPackageSource == "" {
			return &InvalidVariantError{Name: d.Name, Reason: fmt.Sprintf("numeric backend %q requires a backend package source", d.NumericBackend)}
		}
		if len(d.BackendPackages) == 0 {
			return &InvalidVariantError{Name: d.Name, Reason: fmt.Sprintf("numeric backend %q requires pinned backend packages", d.NumericBackend)}
		}
	}

	if d.NumericBackend == BackendGPU {
		if !IsCUDABaseImage(d.BaseImage) {
			return &InvalidVariantError{Name: d.Name, Reason: fmt.Sprintf("GPU backend requires a CUDA-capable base image, got %q", d.BaseImage)}
		}
		if missing := missingGPUToolkit(d.SystemPackages); len(missing) > 0 {
			return &InvalidVariantError{Name: d.Name, Reason: fmt.Sprintf("GPU backend requires toolkit packages %v in system packages", missing)}
		}
	}

	return d.Entrypoint.validate(d.Name)
}

func (ep Entrypoint) validate(name string) error {
	switch ep.Kind {
	case EntrypointScript:
		if ep.Script == "" {
			return &InvalidVariantError{Name: name, Reason: "script entrypoint has no script path"}
		}
	case EntrypointASGI:
		if ep.Target == "" {
			return &InvalidVariantError{Name: name, Reason: "asgi entrypoint has no module:attr target"}
		}
		if ep.Port <= 0 || ep.Port > 65535 {
			return &InvalidVariantError{Name: name, Reason: fmt.Sprintf("asgi entrypoint port %d out of range", ep.Port)}
		}
	default:
		return &InvalidVariantError{Name: name, Reason: fmt.Sprintf("unknown entrypoint kind %q", ep.Kind)}
	}
	return nil
}

// gpuToolkitPackages is the OS package set every GPU variant must carry.
// The base image ships the matching driver stack; these are the userspace
// toolkit libraries the tensor wheels link against.
var gpuToolkitPackages = []string{"cuda-toolkit", "libcudnn8", "libnccl2"}

func missingGPUToolkit(systemPackages []string) []string {
	var missing []string
	for _, want := range gpuToolkitPackages {
		if !slices.Contains(systemPackages, want) {
			missing = append(missing, want)
		}
	}
	return missing
}
