// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestStateRoundTrip(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "provision", "state.toml")

	s, err := LoadState(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Done("abc", StageSystem) {
		t.Fatal("fresh state reports a completed stage")
	}

	if err := s.Mark("abc", StageSystem); err != nil {
		t.Fatal(err)
	}
	if err := s.Mark("abc", StageBackend); err != nil {
		t.Fatal(err)
	}

	// Reload from disk and verify persistence.
	reloaded, err := LoadState(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded.Done("abc", StageSystem) || !reloaded.Done("abc", StageBackend) {
		t.Fatal("marked stages lost on reload")
	}
	if reloaded.Done("abc", StageRequirements) {
		t.Fatal("unmarked stage reported complete")
	}
	if reloaded.Done("other", StageSystem) {
		t.Fatal("stage leaked across fingerprints")
	}
}

func TestStateMarkIsIdempotent(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state.toml")
	s, err := LoadState(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Mark("abc", StageSystem); err != nil {
		t.Fatal(err)
	}
	if err := s.Mark("abc", StageSystem); err != nil {
		t.Fatal(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(string(raw), StageSystem) != 1 {
		t.Fatalf("stage recorded more than once:\n%s", raw)
	}
}

func TestStateReset(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state.toml")
	s, err := LoadState(path)
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Mark("abc", StageSystem); err != nil {
		t.Fatal(err)
	}
	if err := s.Reset("abc"); err != nil {
		t.Fatal(err)
	}
	if s.Done("abc", StageSystem) {
		t.Fatal("reset did not drop the build")
	}

	// Resetting an unknown fingerprint is a no-op.
	if err := s.Reset("nope"); err != nil {
		t.Fatal(err)
	}
}

func TestLoadStateRejectsMalformedFile(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadState(path); err == nil {
		t.Fatal("expected parse error")
	}
}
