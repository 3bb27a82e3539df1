// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"strings"
	"testing"

	"varup/internal/config"
	"varup/internal/pkgmgr"
	"varup/internal/provision"
	"varup/internal/variant"

	"github.com/spf13/cobra"
)

// newTestCommand builds a throwaway command carrying the variant override
// flags, so tests can exercise flag-changed detection.
func newTestCommand() *cobra.Command {
	c := &cobra.Command{Use: "test"}
	addVariantFlags(c.Flags())
	return c
}

func mustSetFlag(t *testing.T, cmd *cobra.Command, name, value string) {
	t.Helper()
	if err := cmd.Flags().Set(name, value); err != nil {
		t.Fatalf("failed to set --%s: %v", name, err)
	}
}

// resetResolveState restores the config and flag globals after a test that
// mutates them. Tests touching these globals must not run in parallel.
func resetResolveState(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		cfg = config.DefaultConfig()
		flagPort = 0
		flagReload = false
		flagRequirements = ""
		flagForce = false
	})
	cfg = config.DefaultConfig()
}

func TestResolveDescriptor_ByName(t *testing.T) {
	resetResolveState(t)

	d, err := resolveDescriptor(newTestCommand(), []string{variant.GPUML})
	if err != nil {
		t.Fatalf("resolveDescriptor() error = %v", err)
	}
	if d.Name != variant.GPUML {
		t.Errorf("Name = %q, want %q", d.Name, variant.GPUML)
	}
}

func TestResolveDescriptor_DefaultFromConfig(t *testing.T) {
	resetResolveState(t)
	cfg.DefaultVariant = variant.Minimal

	d, err := resolveDescriptor(newTestCommand(), nil)
	if err != nil {
		t.Fatalf("resolveDescriptor() error = %v", err)
	}
	if d.Name != variant.Minimal {
		t.Errorf("Name = %q, want %q", d.Name, variant.Minimal)
	}
}

func TestResolveDescriptor_ArgBeatsConfigDefault(t *testing.T) {
	resetResolveState(t)
	cfg.DefaultVariant = variant.Minimal

	d, err := resolveDescriptor(newTestCommand(), []string{variant.CPUML})
	if err != nil {
		t.Fatalf("resolveDescriptor() error = %v", err)
	}
	if d.Name != variant.CPUML {
		t.Errorf("Name = %q, want %q", d.Name, variant.CPUML)
	}
}

func TestResolveDescriptor_NoVariantNoDefault(t *testing.T) {
	resetResolveState(t)

	_, err := resolveDescriptor(newTestCommand(), nil)
	if err == nil {
		t.Fatal("resolveDescriptor() should fail without a variant or default")
	}
	if !errors.Is(err, variant.ErrInvalidVariant) {
		t.Errorf("error should wrap ErrInvalidVariant, got: %v", err)
	}
}

func TestResolveDescriptor_UnknownVariant(t *testing.T) {
	resetResolveState(t)

	_, err := resolveDescriptor(newTestCommand(), []string{"no-such-variant"})
	if !errors.Is(err, variant.ErrInvalidVariant) {
		t.Errorf("error should wrap ErrInvalidVariant, got: %v", err)
	}
}

func TestResolveDescriptor_FlagOverridesBeatConfig(t *testing.T) {
	resetResolveState(t)
	cfg.Port = 9000

	cmd := newTestCommand()
	mustSetFlag(t, cmd, "port", "9100")
	mustSetFlag(t, cmd, "reload", "true")
	mustSetFlag(t, cmd, "requirements", "requirements-dev.txt")

	d, err := resolveDescriptor(cmd, []string{variant.Minimal})
	if err != nil {
		t.Fatalf("resolveDescriptor() error = %v", err)
	}
	if d.Entrypoint.Port != 9100 {
		t.Errorf("Port = %d, want flag override 9100", d.Entrypoint.Port)
	}
	if !d.Entrypoint.Reload {
		t.Error("Reload should be enabled by flag")
	}
	if d.RequirementsFile != "requirements-dev.txt" {
		t.Errorf("RequirementsFile = %q, want flag override", d.RequirementsFile)
	}
}

func TestResolveDescriptor_ConfigReloadApplies(t *testing.T) {
	resetResolveState(t)
	cfg.Reload = true

	d, err := resolveDescriptor(newTestCommand(), []string{variant.Minimal})
	if err != nil {
		t.Fatalf("resolveDescriptor() error = %v", err)
	}
	if !d.Entrypoint.Reload {
		t.Error("Reload should be enabled by config")
	}
}

func TestResolveDescriptor_ReloadFlagSwitchesOffConfigReload(t *testing.T) {
	resetResolveState(t)
	cfg.Reload = true

	cmd := newTestCommand()
	mustSetFlag(t, cmd, "reload", "false")

	d, err := resolveDescriptor(cmd, []string{variant.Minimal})
	if err != nil {
		t.Fatalf("resolveDescriptor() error = %v", err)
	}
	if d.Entrypoint.Reload {
		t.Error("an explicit --reload=false should win over a config-enabled reload")
	}
}

func TestResolveDescriptor_ConfigPortApplies(t *testing.T) {
	resetResolveState(t)
	cfg.Port = 9000

	d, err := resolveDescriptor(newTestCommand(), []string{variant.Minimal})
	if err != nil {
		t.Fatalf("resolveDescriptor() error = %v", err)
	}
	if d.Entrypoint.Port != 9000 {
		t.Errorf("Port = %d, want config override 9000", d.Entrypoint.Port)
	}
}

// preflightTestSetup builds installers with the given binary names and a
// command whose stderr is captured.
func preflightTestSetup(aptBin, pipBin string) (*cobra.Command, *strings.Builder, *pkgmgr.Apt, *pkgmgr.Pip) {
	runner := pkgmgr.NewShellRunner()
	cmd := &cobra.Command{Use: "test"}
	var stderr strings.Builder
	cmd.SetErr(&stderr)
	return cmd, &stderr, pkgmgr.NewApt(runner, aptBin), pkgmgr.NewPip(runner, pipBin)
}

func TestPreflightInstallers_AllPresent(t *testing.T) {
	resetResolveState(t)

	d, err := variant.Get(variant.MinimalWithDBClient)
	if err != nil {
		t.Fatalf("variant.Get() error = %v", err)
	}

	// "sh" stands in for both binaries; only PATH resolution matters here.
	cmd, _, apt, pip := preflightTestSetup("sh", "sh")
	if err := preflightInstallers(cmd, d, apt, pip); err != nil {
		t.Fatalf("preflight should pass with both tools on PATH, got %v", err)
	}
}

func TestPreflightInstallers_AptMissing(t *testing.T) {
	resetResolveState(t)
	cfg.Apt.Bin = "varup-test-no-such-apt"

	d, err := variant.Get(variant.MinimalWithDBClient)
	if err != nil {
		t.Fatalf("variant.Get() error = %v", err)
	}

	cmd, stderr, apt, pip := preflightTestSetup(cfg.Apt.Bin, "sh")
	preflightErr := preflightInstallers(cmd, d, apt, pip)
	if preflightErr == nil {
		t.Fatal("preflight should fail when apt is missing")
	}

	var exitErr *ExitError
	if !errors.As(preflightErr, &exitErr) {
		t.Fatalf("expected *ExitError, got %T", preflightErr)
	}
	if exitErr.Code != provision.ExitCodeSystemStage {
		t.Errorf("Code = %d, want %d", exitErr.Code, provision.ExitCodeSystemStage)
	}
	if !strings.Contains(stderr.String(), "apt-get") {
		t.Errorf("stderr should carry the apt catalog help, got: %q", stderr.String())
	}
}

func TestPreflightInstallers_AptNotNeededWithoutSystemPackages(t *testing.T) {
	resetResolveState(t)

	d, err := variant.Get(variant.Minimal)
	if err != nil {
		t.Fatalf("variant.Get() error = %v", err)
	}

	cmd, _, apt, pip := preflightTestSetup("varup-test-no-such-apt", "sh")
	if err := preflightInstallers(cmd, d, apt, pip); err != nil {
		t.Fatalf("a variant without system packages should not require apt, got %v", err)
	}
}

func TestPreflightInstallers_PipMissing(t *testing.T) {
	resetResolveState(t)
	cfg.Pip.Bin = "varup-test-no-such-pip"

	tests := []struct {
		name     string
		variant  string
		wantCode int
	}{
		{name: "backend variant fails at the backend stage", variant: variant.CPUML, wantCode: provision.ExitCodeBackendStage},
		{name: "plain variant fails at the requirements stage", variant: variant.Minimal, wantCode: provision.ExitCodeRequirementsStage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := variant.Get(tt.variant)
			if err != nil {
				t.Fatalf("variant.Get() error = %v", err)
			}

			cmd, stderr, apt, pip := preflightTestSetup("sh", cfg.Pip.Bin)
			preflightErr := preflightInstallers(cmd, d, apt, pip)
			if preflightErr == nil {
				t.Fatal("preflight should fail when pip is missing")
			}

			var exitErr *ExitError
			if !errors.As(preflightErr, &exitErr) {
				t.Fatalf("expected *ExitError, got %T", preflightErr)
			}
			if exitErr.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", exitErr.Code, tt.wantCode)
			}
			if !strings.Contains(stderr.String(), "pip") {
				t.Errorf("stderr should carry the pip catalog help, got: %q", stderr.String())
			}
		})
	}
}
