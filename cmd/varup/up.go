// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"varup/internal/launch"
	"varup/internal/provision"

	"github.com/spf13/cobra"
)

// upCmd provisions a variant and replaces the process with its entrypoint.
var upCmd = &cobra.Command{
	Use:   "up [variant]",
	Short: "Provision an environment variant and launch its entrypoint",
	Long: `Up runs the full pipeline: system packages, numeric backend, application
requirements, then the variant's entrypoint.

On success this command does not return; the entrypoint replaces the
varup process, so signals and the exit status belong to the service. A
launch that cannot start (missing binary, unbindable port) exits with
code 201 without leaving a half-started service behind.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runUp,
}

func init() {
	addVariantFlags(upCmd.Flags())
	upCmd.Flags().BoolVar(&flagForce, "force", false, "re-run stages recorded as complete")
}

func runUp(cmd *cobra.Command, args []string) error {
	d, err := resolveDescriptor(cmd, args)
	if err != nil {
		return exitWithIssue(cmd, err, provision.ExitCodeInvalidVariant)
	}

	apt, pip := newInstallers()
	if err := preflightInstallers(cmd, d, apt, pip); err != nil {
		return err
	}

	if err := newPipeline(apt, pip).Run(cmd.Context(), d); err != nil {
		return exitWithIssue(cmd, err, provision.ExitCodeFor(err))
	}

	// Does not return on success: the entrypoint takes over the process.
	if err := launch.Run(d); err != nil {
		return exitWithIssue(cmd, err, provision.ExitCodeLaunch)
	}
	return nil
}
