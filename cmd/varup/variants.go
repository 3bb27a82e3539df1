// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"varup/internal/variant"

	"github.com/spf13/cobra"
)

// variantsCmd lists the built-in variant catalog.
var variantsCmd = &cobra.Command{
	Use:   "variants",
	Short: "List the built-in environment variant catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return writeVariants(cmd.OutOrStdout())
	},
}

// writeVariants renders one line per catalog entry.
func writeVariants(w io.Writer) error {
	for _, name := range variant.Names() {
		d, err := variant.Get(name)
		if err != nil {
			return err
		}

		backend := "no numeric backend"
		if d.NumericBackend != variant.BackendNone {
			backend = fmt.Sprintf("%s backend (%s)", d.NumericBackend, d.BackendBuildTag)
		}

		fmt.Fprintf(w, "%s  %s, %s\n", VariantStyle.Render(name), d.BaseImage, backend)
	}
	return nil
}
