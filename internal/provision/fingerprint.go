// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"varup/internal/variant"
)

// Fingerprint derives a stable identity for a provisioned environment from
// everything that influences what gets installed: the descriptor fields and
// the content of the requirements file. Two builds with the same fingerprint
// produce the same installed package set, so completed stages can be reused.
func Fingerprint(d *variant.Descriptor) string {
	h := sha256.New()

	fmt.Fprintf(h, "variant:%s\n", d.Name)
	fmt.Fprintf(h, "image:%s\n", d.BaseImage)
	fmt.Fprintf(h, "system:%s\n", strings.Join(d.SystemPackages, ","))
	fmt.Fprintf(h, "backend:%s:%s:%s\n", d.NumericBackend, d.BackendPackageSource, d.BackendBuildTag)
	fmt.Fprintf(h, "pins:%s\n", strings.Join(d.BackendPackages, ","))
	fmt.Fprintf(h, "requirements:%s\n", d.RequirementsFile)

	// Include the requirements content when readable, so editing the file
	// invalidates the cached requirements stage.
	if reqHash, err := fileHash(d.RequirementsFile); err == nil {
		fmt.Fprintf(h, "requirements-sha:%s\n", reqHash)
	}

	return hex.EncodeToString(h.Sum(nil))[:16]
}

// fileHash calculates the SHA256 hash of a file's contents.
func fileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
