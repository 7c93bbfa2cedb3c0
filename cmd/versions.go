package cmd

import (
	"fmt"

	"github.com/crytic/cairn/compilation/platforms"
	"github.com/crytic/cairn/logging/colors"
	"github.com/spf13/cobra"
)

// versionsCmd represents the versions command that displays compiler toolchain information.
var versionsCmd = &cobra.Command{
	Use:           "versions",
	Short:         "Displays the Cairo compiler toolchain versions",
	Long:          `Displays the versions of the Cairo compiler binaries found on the system path, alongside the toolchain release this binary drives`,
	RunE:          cmdRunVersions,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(versionsCmd)
}

// cmdRunVersions probes each compiler binary on the system path for its version and reports it.
// A missing binary is reported as a warning rather than an error, so the command doubles as an
// environment check ahead of a first build.
func cmdRunVersions(cmd *cobra.Command, args []string) error {
	cmdLogger.Info("Supported toolchain release: ", colors.Bold, platforms.SupportedCompilerVersion, colors.Reset)

	for _, binaryName := range []string{"starknet-compile", "starknet-sierra-compile"} {
		version, err := platforms.GetSystemCompilerVersion(binaryName)
		if err != nil {
			cmdLogger.Warn(fmt.Sprintf("Unable to obtain the version of `%s`, the binary may not be on the system path", binaryName))
			continue
		}
		cmdLogger.Info(binaryName, " version: ", colors.Bold, version.String(), colors.Reset)
	}
	return nil
}
