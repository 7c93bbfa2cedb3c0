package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crytic/cairn/cmd/exitcodes"
	"github.com/crytic/cairn/compilation"
	"github.com/crytic/cairn/compilation/platforms"
	"github.com/crytic/cairn/compilation/types"
	"github.com/crytic/cairn/logging"
	"github.com/crytic/cairn/logging/colors"
	"github.com/crytic/cairn/project"
	"github.com/crytic/cairn/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// localManifestFilename describes the name of the manifest the build writes its compiled contract
// types into, within the project's cache folder.
const localManifestFilename = "__local__.json"

// buildCmd represents the command provider for building
var buildCmd = &cobra.Command{
	Use:               "build",
	Short:             "Compiles the project's contracts",
	Long:              `Compiles the project's contracts`,
	Args:              cmdValidateBuildArgs,
	ValidArgsFunction: cmdValidBuildArgs,
	RunE:              cmdRunBuild,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the build command
	err := addBuildFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the build command", err)
	}

	// Add the build command and its associated flags to the root command
	rootCmd.AddCommand(buildCmd)
}

// cmdValidBuildArgs will return which flags and sub-commands are valid for dynamic completion for the build command
func cmdValidBuildArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string

	// Examine all the flags, and add any flags that have not been set in the current command line
	// to a list of unused flags
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			// When adding a flag to a command, include the "--" prefix to indicate that it is a flag
			// and not a positional argument. Additionally, when the user presses the TAB key twice after typing
			// a flag name, the "--" prefix will appear again, indicating that more flags are available and that
			// none of the arguments are positional.
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	// Provide a list of flags that can be used in the current command (but have not been used yet)
	// for autocompletion suggestions
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateBuildArgs makes sure that there are no positional arguments provided to the build command
func cmdValidateBuildArgs(cmd *cobra.Command, args []string) error {
	// Make sure we have no positional args
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("build does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the build command", err)
		return err
	}
	return nil
}

// cmdRunBuild executes the CLI build command and navigates through the following possibilities:
// #1: We will search for either a custom config file (via --config) or the default (cairn.json).
// If we find it, read it. If we can't read it, throw an error.
// #2: If a custom file was provided (--config was used), and we can't find the file, throw an error.
// #3: If cairn.json can't be found, use the default project configuration.
func cmdRunBuild(cmd *cobra.Command, args []string) error {
	var projectConfig *project.ProjectConfig

	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}

	// If --config was not used, look for `cairn.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			cmdLogger.Error("Failed to run the build command", err)
			return err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Check to see if the file exists at configPath
	_, existenceError := os.Stat(configPath)

	// Possibility #1: File was found
	if existenceError == nil {
		// Try to read the configuration file and throw an error if something goes wrong
		cmdLogger.Info("Reading the configuration file at: ", colors.Bold, configPath, colors.Reset)
		// Use the default compilation platform if the config file doesn't specify one
		projectConfig, err = project.ReadProjectConfigFromFile(configPath, DefaultCompilationPlatform)
		if err != nil {
			cmdLogger.Error("Failed to run the build command", err)
			return err
		}
	}

	// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
	if configFlagUsed && existenceError != nil {
		cmdLogger.Error("Failed to run the build command", existenceError)
		return existenceError
	}

	// Possibility #3: --config flag was not used and cairn.json was not found, so use the default project config
	if !configFlagUsed && existenceError != nil {
		cmdLogger.Warn(fmt.Sprintf("Unable to find the config file at %v, will use the default project configuration for the "+
			"%v compilation platform instead", configPath, DefaultCompilationPlatform))

		projectConfig, err = project.GetDefaultProjectConfig(DefaultCompilationPlatform)
		if err != nil {
			cmdLogger.Error("Failed to run the build command", err)
			return err
		}
	}

	// Update the project configuration given whatever flags were set using the CLI
	err = updateProjectConfigWithBuildFlags(cmd, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}

	// Let the command's own logger honor the configured verbosity as well
	cmdLogger.SetLevel(projectConfig.Logging.Level)

	// Resolve the project around the configuration's folder, anchoring every project-relative path.
	// This happens before we change directories so a relative --config path resolves correctly.
	resolvedProject, err := project.NewProjectWithConfig(configPath, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}

	// Change our working directory to the parent directory of the project configuration file
	// This is important as when we compile for a given platform, the paths may be relative to wherever the
	// configuration is supplied from. Providing a file path explicitly is optional anyways, so we _should_
	// be in the config directory when running this.
	err = os.Chdir(filepath.Dir(configPath))
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}

	// Configure the global logger per the project's logging configuration
	err = setupGlobalLogging(projectConfig.Logging)
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}

	// Stage the manifests of locally-sourced dependencies into the packages folder, so the platform's
	// dependency resolution can find them.
	err = resolvedProject.ExtractDependencyManifests()
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}

	// Obtain the platform configuration we will compile with
	platformConfig, err := projectConfig.Compilation.GetPlatformConfig()
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}

	// Wire the project's resolved folders and our progress reporting into the cairo platform
	if cairoConfig, ok := platformConfig.(*platforms.CairoCompilationConfig); ok {
		err = prepareCairoCompilation(cairoConfig, resolvedProject)
		if err != nil {
			cmdLogger.Error("Failed to run the build command", err)
			return err
		}
	}

	// Compile the project
	artifacts, _, err := platformConfig.Compile()
	if err != nil {
		return exitcodes.NewErrorWithExitCode(err, exitcodes.ExitCodeCompilationFailed)
	}

	// Run warn-only sanity checks over the produced artifacts
	inspectArtifacts(artifacts)

	// Write the compiled contract types into the project's local manifest
	cacheFolder, err := resolvedProject.CacheFolderPath()
	if err != nil {
		cmdLogger.Error("Failed to run the build command", err)
		return err
	}
	err = writeLocalManifest(artifacts, projectConfig.Name, cacheFolder)
	if err != nil {
		cmdLogger.Error("Failed to write the build manifest", err)
		return err
	}

	// Compare this build against the previous one and record it. Build state is advisory, so
	// failures here only warn.
	database, err := compilation.OpenBuildStateDatabase(resolvedProject.BuildStateDatabasePath())
	if err != nil {
		cmdLogger.Warn("Failed to open the build state database", err)
	} else {
		compilation.NotifyBuildStatus(database, artifacts, cmdLogger)
		if err = database.Close(); err != nil {
			cmdLogger.Warn("Failed to close the build state database", err)
		}
	}

	cmdLogger.Info("Compilation complete: ", colors.Bold, fmt.Sprintf("%d contract(s)", len(artifacts)), colors.Reset,
		" written to: ", colors.Bold, cacheFolder, colors.Reset)
	return nil
}

// setupGlobalLogging configures the global logger per the project's logging configuration, attaching
// a structured file writer when a log directory is provided. Returns an error if one occurred.
func setupGlobalLogging(loggingConfig project.LoggingConfig) error {
	logging.GlobalLogger = logging.NewLogger(loggingConfig.Level, loggingConfig.EnableConsoleLogging)

	if loggingConfig.LogDirectory != "" {
		file, err := utils.CreateFile(loggingConfig.LogDirectory, "cairn.log")
		if err != nil {
			return err
		}
		logging.GlobalLogger.AddWriter(file, logging.STRUCTURED)
	}
	return nil
}

// prepareCairoCompilation anchors the cairo platform configuration to the resolved project's folders
// and subscribes the command's progress reporting to the platform's compilation events. Returns an
// error if one occurred.
func prepareCairoCompilation(cairoConfig *platforms.CairoCompilationConfig, resolvedProject *project.Project) error {
	// The platform compiles the project's contracts folder, and installs dependency packages into
	// the project's packages folder.
	cairoConfig.SetTarget(resolvedProject.Config.ContractsFolder)
	packagesFolder, err := resolvedProject.PackagesFolderPath()
	if err != nil {
		return err
	}
	cairoConfig.PackagesFolder = packagesFolder
	cairoConfig.ConfiguredDependencies = resolvedProject.DependencyNames()

	// A toolchain manifest may be home-relative
	manifestPath, err := utils.ExpandHomeFolder(cairoConfig.ManifestPath)
	if err != nil {
		return err
	}
	cairoConfig.ManifestPath = manifestPath

	// Report per-contract progress as the platform compiles
	cairoConfig.Events.CompilationStarted.Subscribe(func(event platforms.CompilationStartedEvent) error {
		cmdLogger.Info("Compiling ", colors.Bold, fmt.Sprintf("%d contract(s)", event.ContractCount), colors.Reset)
		return nil
	})
	cairoConfig.Events.ContractCompiled.Subscribe(func(event platforms.ContractCompiledEvent) error {
		cmdLogger.Info("Compiled contract ", colors.Bold, fmt.Sprintf("(%d/%d)", event.Index+1, event.Total),
			colors.Reset, ": ", colors.Bold, event.Contract.ContractName, colors.Reset)

		// Surface the computed external entry point selectors when debugging builds
		for _, entry := range event.Contract.Abi {
			if entry.Type() == "function" && entry.Name() != "" {
				cmdLogger.Debug("Entry point ", colors.Bold, event.Contract.ContractName, ".", entry.Name(),
					colors.Reset, " has selector ", types.EntryPointSelector(entry.Name()).Hex())
			}
		}
		return nil
	})
	return nil
}

// inspectArtifacts runs post-build sanity checks over the produced artifacts. Findings are surfaced
// as warnings and never fail the build.
func inspectArtifacts(artifacts []types.ContractType) {
	for _, artifact := range artifacts {
		casmText, err := artifact.DecodeRuntimeBytecode()
		if err != nil || casmText == nil {
			continue
		}
		casmClass, err := types.ParseCasmClass(casmText)
		if err != nil {
			cmdLogger.Warn("Failed to parse the assembly class of contract ", colors.Bold, artifact.ContractName, colors.Reset, err)
			continue
		}
		if err = casmClass.Validate(); err != nil {
			cmdLogger.Warn("The assembly class of contract ", colors.Bold, artifact.ContractName, colors.Reset, " failed validation", err)
		}
	}
}

// writeLocalManifest writes the compiled contract types into a package manifest within the cache
// folder, so downstream tooling can consume the build without re-reading individual artifact files.
// Returns an error if one occurred.
func writeLocalManifest(artifacts []types.ContractType, projectName string, cacheFolder string) error {
	localManifest := &types.PackageManifest{
		Manifest:      "ethpm/3",
		Name:          projectName,
		ContractTypes: make(map[string]types.ContractType, len(artifacts)),
	}
	for _, artifact := range artifacts {
		localManifest.ContractTypes[artifact.ContractName] = artifact
	}

	err := utils.MakeDirectory(cacheFolder)
	if err != nil {
		return err
	}
	return localManifest.WriteToFile(filepath.Join(cacheFolder, localManifestFilename))
}
