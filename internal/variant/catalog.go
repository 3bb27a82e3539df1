// SPDX-License-Identifier: MPL-2.0

package variant

import (
	"fmt"
	"slices"

	"golang.org/x/exp/maps"
)

// Built-in variant names.
const (
	// Minimal is the plain CPU service without database client or tensor backend.
	Minimal = "minimal"
	// MinimalWithDBClient adds the Postgres client toolchain to Minimal.
	MinimalWithDBClient = "minimal-with-db-client"
	// CPUML carries the CPU tensor backend wheels.
	CPUML = "cpu-ml"
	// GPUML carries the CUDA tensor backend wheels on a CUDA base image.
	GPUML = "gpu-ml"
	// CPUMLAltEntrypoint is CPUML launched as a direct script instead of an
	// ASGI server (the batch embedding job).
	CPUMLAltEntrypoint = "cpu-ml-alt-entrypoint"
)

// Default launch surface for ASGI variants.
const (
	DefaultASGITarget = "backend:app"
	DefaultBindHost   = "0.0.0.0"
	DefaultBindPort   = 8000
)

// defaultRequirementsFile is the application dependency list consumed by the
// requirements stage. Opaque to this package.
const defaultRequirementsFile = "requirements.txt"

// catalog holds the five built-in deployment profiles. The descriptors are
// treated as read-only; Get returns a copy so callers can adjust entrypoint
// details (port, reload) without touching the catalog.
var catalog = map[string]Descriptor{
	Minimal: {
		Name:             Minimal,
		BaseImage:        "python:3.11-slim",
		SystemPackages:   nil,
		NumericBackend:   BackendNone,
		RequirementsFile: defaultRequirementsFile,
		Entrypoint: Entrypoint{
			Kind:   EntrypointASGI,
			Target: DefaultASGITarget,
			Host:   DefaultBindHost,
			Port:   DefaultBindPort,
		},
	},
	MinimalWithDBClient: {
		Name:             MinimalWithDBClient,
		BaseImage:        "python:3.11-slim",
		SystemPackages:   []string{"gcc", "libpq-dev"},
		NumericBackend:   BackendNone,
		RequirementsFile: defaultRequirementsFile,
		Entrypoint: Entrypoint{
			Kind:   EntrypointASGI,
			Target: DefaultASGITarget,
			Host:   DefaultBindHost,
			Port:   DefaultBindPort,
		},
	},
	CPUML: {
		Name:                 CPUML,
		BaseImage:            "python:3.11-slim",
		SystemPackages:       []string{"gcc", "g++", "libpq-dev"},
		NumericBackend:       BackendCPU,
		BackendPackageSource: "https://download.pytorch.org/whl/cpu",
		BackendPackages:      []string{"torch==2.2.1", "torchvision==0.17.1"},
		BackendBuildTag:      "cpu",
		RequirementsFile:     defaultRequirementsFile,
		Entrypoint: Entrypoint{
			Kind:   EntrypointASGI,
			Target: DefaultASGITarget,
			Host:   DefaultBindHost,
			Port:   DefaultBindPort,
		},
	},
	GPUML: {
		Name:                 GPUML,
		BaseImage:            "nvidia/cuda:12.1.1-cudnn8-runtime-ubuntu22.04",
		SystemPackages:       []string{"python3", "python3-pip", "gcc", "g++", "libpq-dev", "cuda-toolkit", "libcudnn8", "libnccl2"},
		NumericBackend:       BackendGPU,
		BackendPackageSource: "https://download.pytorch.org/whl/cu121",
		BackendPackages:      []string{"torch==2.2.1", "torchvision==0.17.1"},
		BackendBuildTag:      "cu121",
		RequirementsFile:     defaultRequirementsFile,
		Entrypoint: Entrypoint{
			Kind:   EntrypointASGI,
			Target: DefaultASGITarget,
			Host:   DefaultBindHost,
			Port:   DefaultBindPort,
		},
	},
	CPUMLAltEntrypoint: {
		Name:                 CPUMLAltEntrypoint,
		BaseImage:            "python:3.11-slim",
		SystemPackages:       []string{"gcc", "g++", "libpq-dev"},
		NumericBackend:       BackendCPU,
		BackendPackageSource: "https://download.pytorch.org/whl/cpu",
		BackendPackages:      []string{"torch==2.2.1", "torchvision==0.17.1"},
		BackendBuildTag:      "cpu",
		RequirementsFile:     defaultRequirementsFile,
		Entrypoint: Entrypoint{
			Kind:   EntrypointScript,
			Script: "embed_to_chroma.py",
		},
	},
}

// Names returns the catalog variant names in sorted order.
func Names() []string {
	names := maps.Keys(catalog)
	slices.Sort(names)
	return names
}

// Get returns a validated copy of the named catalog descriptor. Unknown
// names and descriptors that fail validation return an error; a descriptor
// obtained from Get is safe to hand to the pipeline as-is.
func Get(name string) (*Descriptor, error) {
	d, ok := catalog[name]
	if !ok {
		return nil, &InvalidVariantError{Name: name, Reason: fmt.Sprintf("unknown variant (known: %v)", Names())}
	}

	// Deep-copy the slices so callers cannot mutate the catalog entry.
	d.SystemPackages = slices.Clone(d.SystemPackages)
	d.BackendPackages = slices.Clone(d.BackendPackages)

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}
