// SPDX-License-Identifier: MPL-2.0

package provision

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"varup/internal/variant"
)

// RequirementsStage installs the application dependency list. It runs last:
// backend pins are protected by ordering alone, so requirements already
// satisfied by the backend stage are a pip-level no-op rather than an
// override.
type RequirementsStage struct {
	pip PipClient
}

// NewRequirementsStage creates the application requirements stage.
func NewRequirementsStage(pip PipClient) *RequirementsStage {
	return &RequirementsStage{pip: pip}
}

// Name implements Stage.
func (s *RequirementsStage) Name() string { return StageRequirements }

// Run implements Stage. Requirements are installed line by line so the
// failing line can be reported precisely.
func (s *RequirementsStage) Run(ctx context.Context, d *variant.Descriptor) error {
	lines, err := readRequirements(d.RequirementsFile)
	if err != nil {
		return fmt.Errorf("failed to read requirements file: %w", err)
	}
	if len(lines) == 0 {
		slog.Debug("requirements file declares nothing to install", "file", d.RequirementsFile)
		return nil
	}

	for _, line := range lines {
		if err := s.pip.Install(ctx, []string{line}); err != nil {
			return &RequirementsInstallFailedError{
				File: d.RequirementsFile,
				Line: line,
				Err:  err,
			}
		}
		slog.Debug("installed requirement", "requirement", line)
	}

	slog.Info("installed application requirements", "file", d.RequirementsFile, "count", len(lines))
	return nil
}

// readRequirements parses a flat requirements file into requirement lines,
// dropping blanks and comments.
func readRequirements(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, raw := range strings.Split(string(data), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}
