// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/pelletier/go-toml/v2"
)

const stateFileVersion = 1

type (
	// State records which pipeline stages completed for which environment
	// fingerprint, persisted as TOML under the cache directory. It is what
	// makes re-running a pipeline on an already provisioned environment a
	// no-op.
	State struct {
		path string
		data stateFile
	}

	stateFile struct {
		Version int                   `toml:"version"`
		Builds  map[string]buildState `toml:"builds,omitempty"`
	}

	buildState struct {
		Stages    []string  `toml:"stages"`
		UpdatedAt time.Time `toml:"updated_at"`
	}
)

// LoadState reads the provision state file at path, returning an empty
// state when the file does not exist yet.
func LoadState(path string) (*State, error) {
	s := &State{
		path: path,
		data: stateFile{Version: stateFileVersion, Builds: map[string]buildState{}},
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read provision state: %w", err)
	}

	if err := toml.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("failed to parse provision state %s: %w", path, err)
	}
	if s.data.Builds == nil {
		s.data.Builds = map[string]buildState{}
	}
	return s, nil
}

// Done reports whether the named stage already completed for the given
// environment fingerprint.
func (s *State) Done(fingerprint, stage string) bool {
	b, ok := s.data.Builds[fingerprint]
	return ok && slices.Contains(b.Stages, stage)
}

// Mark records a completed stage and persists the state file.
func (s *State) Mark(fingerprint, stage string) error {
	b := s.data.Builds[fingerprint]
	if !slices.Contains(b.Stages, stage) {
		b.Stages = append(b.Stages, stage)
	}
	b.UpdatedAt = time.Now().UTC()
	s.data.Builds[fingerprint] = b
	return s.save()
}

// Reset drops all recorded stages for the given fingerprint.
func (s *State) Reset(fingerprint string) error {
	if _, ok := s.data.Builds[fingerprint]; !ok {
		return nil
	}
	delete(s.data.Builds, fingerprint)
	return s.save()
}

func (s *State) save() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	raw, err := toml.Marshal(s.data)
	if err != nil {
		return fmt.Errorf("failed to encode provision state: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		return fmt.Errorf("failed to write provision state: %w", err)
	}
	return nil
}
