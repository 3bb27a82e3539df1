// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"varup/internal/issue"
	"varup/internal/pkgmgr"
	"varup/internal/provision"
	"varup/internal/variant"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// launchOverrides are the per-invocation flags shared by `up`, `provision`,
// and `plan`.
var (
	flagPort         int
	flagReload       bool
	flagRequirements string
	flagForce        bool
)

// addVariantFlags registers the descriptor override flags on a subcommand.
func addVariantFlags(flags *pflag.FlagSet) {
	flags.IntVar(&flagPort, "port", 0, "override the service bind port")
	flags.BoolVar(&flagReload, "reload", false, "enable live-reload on service entrypoints")
	flags.StringVar(&flagRequirements, "requirements", "", "override the variant's requirements file")
}

// resolveDescriptor resolves the variant named by args (or the configured
// default), applies flag and config overrides, and re-validates. A failure
// here always maps to the invalid-variant exit code.
func resolveDescriptor(cmd *cobra.Command, args []string) (*variant.Descriptor, error) {
	name := cfg.DefaultVariant
	if len(args) > 0 {
		name = args[0]
	}
	if name == "" {
		return nil, &variant.InvalidVariantError{
			Name:   "",
			Reason: fmt.Sprintf("no variant given and no default configured; known variants: %s", strings.Join(variant.Names(), ", ")),
		}
	}

	d, err := variant.Get(name)
	if err != nil {
		return nil, err
	}

	// Flag overrides win over config overrides; both win over the catalog.
	if cfg.Port != 0 {
		d.Entrypoint.Port = cfg.Port
	}
	if flagPort != 0 {
		d.Entrypoint.Port = flagPort
	}
	if cfg.Reload {
		d.Entrypoint.Reload = true
	}
	// An explicit --reload wins in both directions, so --reload=false can
	// switch off a config-enabled reload.
	if cmd.Flags().Changed("reload") {
		d.Entrypoint.Reload = flagReload
	}
	if cfg.RequirementsFile != "" {
		d.RequirementsFile = cfg.RequirementsFile
	}
	if flagRequirements != "" {
		d.RequirementsFile = flagRequirements
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}

// newInstallers builds the apt and pip clients over a shared shell runner,
// using the binaries named in the loaded config.
func newInstallers() (*pkgmgr.Apt, *pkgmgr.Pip) {
	runner := pkgmgr.NewShellRunner()
	return pkgmgr.NewApt(runner, cfg.Apt.Bin), pkgmgr.NewPip(runner, cfg.Pip.Bin)
}

// preflightInstallers verifies the package managers the variant's stages
// will invoke are actually on PATH, so a missing tool fails the build with
// catalog help before any stage starts. The exit code matches the first
// stage that would have needed the tool.
func preflightInstallers(cmd *cobra.Command, d *variant.Descriptor, apt *pkgmgr.Apt, pip *pkgmgr.Pip) error {
	if len(d.SystemPackages) > 0 && !apt.Available() {
		err := fmt.Errorf("system package manager %q not found on PATH", cfg.Apt.Bin)
		renderServiceError(cmd.ErrOrStderr(), newServiceError(err, issue.AptNotFoundId, ""))
		return &ExitError{Code: provision.ExitCodeSystemStage, Err: err}
	}

	if !pip.Available() {
		err := fmt.Errorf("package installer %q not found on PATH", cfg.Pip.Bin)
		code := provision.ExitCodeRequirementsStage
		if d.NumericBackend != variant.BackendNone {
			code = provision.ExitCodeBackendStage
		}
		renderServiceError(cmd.ErrOrStderr(), newServiceError(err, issue.PipNotFoundId, ""))
		return &ExitError{Code: code, Err: err}
	}

	return nil
}

// newPipeline wires the provisioning pipeline from the loaded config: the
// given installers plus the on-disk provision state when a cache directory
// is configured.
func newPipeline(apt *pkgmgr.Apt, pip *pkgmgr.Pip) *provision.Pipeline {
	opts := []provision.PipelineOption{provision.WithForce(flagForce)}
	if cfg.CacheDir != "" {
		state, err := provision.LoadState(cfg.StateFilePath())
		if err != nil {
			slog.Warn("provision state unavailable, all stages will run", "path", cfg.StateFilePath(), "error", err)
		} else {
			opts = append(opts, provision.WithState(state))
		}
	}

	return provision.NewPipeline(apt, pip, opts...)
}

// exitWithIssue wraps err in an ExitError carrying the given exit code,
// rendering catalog help for known failure modes first.
func exitWithIssue(cmd *cobra.Command, err error, code int) error {
	if id := classifyIssue(err); id != 0 {
		renderServiceError(cmd.ErrOrStderr(), newServiceError(err, id, ""))
	}
	return &ExitError{Code: code, Err: err}
}
