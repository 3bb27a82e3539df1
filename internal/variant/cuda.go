// SPDX-License-Identifier: MPL-2.0

package variant

import (
	"fmt"
	"strings"
)

// cudaImagePrefix marks CUDA-enabled base images, e.g.
// "nvidia/cuda:12.1.1-cudnn8-runtime-ubuntu22.04".
const cudaImagePrefix = "nvidia/cuda:"

// IsCUDABaseImage reports whether the base image tag carries a CUDA toolkit.
func IsCUDABaseImage(baseImage string) bool {
	return strings.HasPrefix(baseImage, cudaImagePrefix)
}

// CUDAVersion extracts the CUDA major.minor version embedded in a CUDA base
// image tag. For "nvidia/cuda:12.1.1-cudnn8-runtime-ubuntu22.04" it returns
// "12.1". It fails when the image is not a CUDA image or the tag has no
// parseable version.
func CUDAVersion(baseImage string) (string, error) {
	if !IsCUDABaseImage(baseImage) {
		return "", fmt.Errorf("base image %q is not a CUDA image", baseImage)
	}

	tag := strings.TrimPrefix(baseImage, cudaImagePrefix)
	if i := strings.IndexByte(tag, '-'); i >= 0 {
		tag = tag[:i]
	}

	parts := strings.Split(tag, ".")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("base image %q has no parseable CUDA version", baseImage)
	}
	return parts[0] + "." + parts[1], nil
}

// CUDABuildTag converts a CUDA major.minor version into the wheel build tag
// convention used by backend package indexes ("12.1" -> "cu121").
func CUDABuildTag(version string) string {
	return "cu" + strings.ReplaceAll(version, ".", "")
}
