// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"strings"

	"varup/internal/launch"
	"varup/internal/provision"
	"varup/internal/variant"

	"github.com/spf13/cobra"
)

// planCmd shows what provisioning and launching a variant would do,
// without executing anything.
var planCmd = &cobra.Command{
	Use:   "plan [variant]",
	Short: "Show the resolved provisioning plan for a variant",
	Long: `Plan resolves a variant the same way 'up' does - catalog entry, config
overrides, flag overrides, validation - and prints the resulting stage
inputs and entrypoint command line without executing anything.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlan,
}

func init() {
	addVariantFlags(planCmd.Flags())
}

func runPlan(cmd *cobra.Command, args []string) error {
	d, err := resolveDescriptor(cmd, args)
	if err != nil {
		return exitWithIssue(cmd, err, provision.ExitCodeInvalidVariant)
	}

	return writePlan(cmd.OutOrStdout(), d)
}

// writePlan renders the resolved plan for a validated descriptor.
func writePlan(w io.Writer, d *variant.Descriptor) error {
	argv, err := launch.Command(d)
	if err != nil {
		return err
	}

	fmt.Fprintln(w, TitleStyle.Render(d.Name))
	fmt.Fprintf(w, "  base image:   %s\n", d.BaseImage)
	fmt.Fprintf(w, "  fingerprint:  %s\n", provision.Fingerprint(d))
	fmt.Fprintln(w)

	fmt.Fprintln(w, SubtitleStyle.Render("stage 1: "+provision.StageSystem))
	if len(d.SystemPackages) == 0 {
		fmt.Fprintln(w, "  (no system packages)")
	} else {
		for _, pkg := range d.SystemPackages {
			fmt.Fprintf(w, "  %s\n", pkg)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, SubtitleStyle.Render("stage 2: "+provision.StageBackend))
	if d.NumericBackend == variant.BackendNone {
		fmt.Fprintln(w, "  (no numeric backend)")
	} else {
		fmt.Fprintf(w, "  backend:      %s\n", d.NumericBackend)
		fmt.Fprintf(w, "  wheel index:  %s\n", d.BackendPackageSource)
		fmt.Fprintf(w, "  build tag:    %s\n", d.BackendBuildTag)
		for _, pin := range d.BackendPackages {
			fmt.Fprintf(w, "  %s\n", pin)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, SubtitleStyle.Render("stage 3: "+provision.StageRequirements))
	fmt.Fprintf(w, "  %s\n", d.RequirementsFile)
	fmt.Fprintln(w)

	fmt.Fprintln(w, SubtitleStyle.Render("entrypoint"))
	fmt.Fprintf(w, "  %s\n", strings.Join(argv, " "))

	return nil
}
