// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"

	"varup/internal/provision"

	"github.com/spf13/cobra"
)

// provisionCmd runs the three install stages without launching the entrypoint.
var provisionCmd = &cobra.Command{
	Use:   "provision [variant]",
	Short: "Provision an environment variant without launching it",
	Long: `Provision runs the install stages for a variant strictly in order:

  1. system packages    apt-get update + install, then cache cleanup
  2. numeric backend    pinned tensor wheels from the variant's wheel index
  3. requirements       the application requirements file, line by line

Stages recorded as complete in the provision state are skipped on repeat
runs; use --force to run them again. The first failing stage aborts the
build with a stage-specific exit code.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProvision,
}

func init() {
	addVariantFlags(provisionCmd.Flags())
	provisionCmd.Flags().BoolVar(&flagForce, "force", false, "re-run stages recorded as complete")
}

func runProvision(cmd *cobra.Command, args []string) error {
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

	fmt.Fprintln(cmd.OutOrStdout(), SuccessStyle.Render("✓")+" environment "+VariantStyle.Render(d.Name)+" provisioned")
	return nil
}
