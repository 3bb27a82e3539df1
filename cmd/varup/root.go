// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"varup/internal/config"
	"varup/internal/issue"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// Verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// cfg is the loaded configuration, never nil after initRootConfig.
	cfg *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "varup",
		Short: "Provision and launch service environment variants",
		Long: TitleStyle.Render("varup") + SubtitleStyle.Render(" - Provision and launch service environment variants") + `

varup turns a bare base system into a runnable service environment and
starts it. Each environment variant pairs a base image with a system
package set, a numeric backend (CPU or GPU tensor wheels from a
dedicated wheel index), an application requirements file, and an
entrypoint.

Provisioning runs three stages strictly in order: system packages via
apt, the numeric backend via pip from the variant's wheel index, then
the application requirements. Backend wheels always install before the
requirements so unpinned requirements cannot override the accelerated
build.

` + SubtitleStyle.Render("Examples:") + `
  varup variants            List the built-in variant catalog
  varup plan gpu-ml         Show the resolved plan without executing it
  varup provision cpu-ml    Provision an environment, do not launch
  varup up minimal          Provision and replace the process with the entrypoint`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/varup/config.cue)")

	// Add subcommands
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(provisionCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(variantsCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	// Use fang.Execute for enhanced Cobra styling
	// Pass version via fang.WithVersion() since fang overrides rootCmd.Version
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig installs the default logger and reads in the config file
// and ENV variables if set.
func initRootConfig() {
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Prefix: config.AppName,
	})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	slog.SetDefault(slog.New(logger))

	loaded, err := config.Load(config.LoadOptions{ConfigFilePath: cfgFile})
	if err != nil {
		// Always surface config loading errors to the user
		reportConfigLoadFailure(os.Stderr, err)
	}

	cfg = loaded
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
}

// reportConfigLoadFailure warns about a config load error without aborting,
// followed by the catalog help for fixing the file.
func reportConfigLoadFailure(w io.Writer, err error) {
	fmt.Fprintln(w, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
	renderServiceError(w, newServiceError(err, issue.ConfigLoadFailedId, ""))
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}
