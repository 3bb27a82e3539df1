// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"strings"
	"testing"

	"varup/internal/variant"
)

func TestWritePlan_GPUVariant(t *testing.T) {
	t.Parallel()

	d, err := variant.Get(variant.GPUML)
	if err != nil {
		t.Fatalf("variant.Get() error = %v", err)
	}

	var sb strings.Builder
	if err := writePlan(&sb, d); err != nil {
		t.Fatalf("writePlan() error = %v", err)
	}
	out := sb.String()

	for _, want := range []string{
		d.BaseImage,
		"cuda-toolkit",
		"https://download.pytorch.org/whl/cu121",
		"torch==2.2.1",
		"uvicorn",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("plan output missing %q:\n%s", want, out)
		}
	}
}

func TestWritePlan_MinimalVariantHasNoBackend(t *testing.T) {
	t.Parallel()

	d, err := variant.Get(variant.Minimal)
	if err != nil {
		t.Fatalf("variant.Get() error = %v", err)
	}

	var sb strings.Builder
	if err := writePlan(&sb, d); err != nil {
		t.Fatalf("writePlan() error = %v", err)
	}
	if !strings.Contains(sb.String(), "(no numeric backend)") {
		t.Errorf("plan output should mark the backend stage as empty:\n%s", sb.String())
	}
}

func TestWriteVariants_ListsWholeCatalog(t *testing.T) {
	t.Parallel()

	var sb strings.Builder
	if err := writeVariants(&sb); err != nil {
		t.Fatalf("writeVariants() error = %v", err)
	}
	out := sb.String()

	for _, name := range variant.Names() {
		if !strings.Contains(out, name) {
			t.Errorf("variant listing missing %q:\n%s", name, out)
		}
	}
	if got := strings.Count(out, "\n"); got != len(variant.Names()) {
		t.Errorf("listing has %d lines, want %d", got, len(variant.Names()))
	}
}
