package cmd

import (
	"fmt"

	"github.com/crytic/cairn/compilation/platforms"
	"github.com/crytic/cairn/project"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// addBuildFlags adds the various flags for the build command
func addBuildFlags() error {
	// Get the default platform config so usage messages can surface its defaults
	defaultPlatformConfig := platforms.NewCairoCompilationConfig("contracts")

	// Prevent alphabetical sorting of usage message
	buildCmd.Flags().SortFlags = false

	// Config file
	buildCmd.Flags().String("config", "", "path to config file")

	// Target
	buildCmd.Flags().String("target", "", TargetFlagDescription)

	// Toolchain manifest
	buildCmd.Flags().String("manifest-path", "",
		"path to a Cargo manifest to run the compiler stages through, instead of binaries on $PATH")

	// Declared dependencies
	buildCmd.Flags().StringSlice("dependencies", []string{},
		"dependency declaration(s) ('name' or 'name@version') staged into the source cache before compiling")

	// Libfunc allowlist
	buildCmd.Flags().String("allowed-libfuncs-list-name", "",
		fmt.Sprintf("libfunc allowlist passed to the compiler stages (unless a config file is provided, default is %s)",
			defaultPlatformConfig.AllowedLibfuncsListName))

	// Verbosity
	buildCmd.Flags().Bool("verbose", false, "enable debug-level logging during the build")

	return nil
}

// updateProjectConfigWithBuildFlags will update the given projectConfig with any CLI arguments that were provided to
// the build command
func updateProjectConfigWithBuildFlags(cmd *cobra.Command, projectConfig *project.ProjectConfig) error {
	// Update target if necessary
	err := updateCompilationTarget(cmd, projectConfig)
	if err != nil {
		return err
	}

	// The remaining compilation flags edit the platform configuration, so fetch it once, apply every
	// changed flag, then store it back.
	platformFlagUsed := cmd.Flags().Changed("manifest-path") || cmd.Flags().Changed("dependencies") ||
		cmd.Flags().Changed("allowed-libfuncs-list-name")
	if platformFlagUsed {
		platformConfig, err := projectConfig.Compilation.GetPlatformConfig()
		if err != nil {
			return err
		}
		cairoConfig, ok := platformConfig.(*platforms.CairoCompilationConfig)
		if !ok {
			return fmt.Errorf("the '%s' platform does not support the provided build flags", projectConfig.Compilation.Platform)
		}

		// Update the toolchain manifest if necessary
		if cmd.Flags().Changed("manifest-path") {
			manifestPath, err := cmd.Flags().GetString("manifest-path")
			if err != nil {
				return err
			}
			cairoConfig.ManifestPath = manifestPath
		}

		// Update the declared dependencies if necessary
		if cmd.Flags().Changed("dependencies") {
			dependencies, err := cmd.Flags().GetStringSlice("dependencies")
			if err != nil {
				return err
			}
			cairoConfig.Dependencies = dependencies
		}

		// Update the libfunc allowlist if necessary
		if cmd.Flags().Changed("allowed-libfuncs-list-name") {
			allowedLibfuncsListName, err := cmd.Flags().GetString("allowed-libfuncs-list-name")
			if err != nil {
				return err
			}
			cairoConfig.AllowedLibfuncsListName = allowedLibfuncsListName
		}

		err = projectConfig.Compilation.SetPlatformConfig(cairoConfig)
		if err != nil {
			return err
		}
	}

	// Update logging verbosity if necessary
	if cmd.Flags().Changed("verbose") {
		verbose, err := cmd.Flags().GetBool("verbose")
		if err != nil {
			return err
		}
		if verbose {
			projectConfig.Logging.Level = zerolog.DebugLevel
		}
	}

	return nil
}
