package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/crytic/cairn/logging/colors"
	"github.com/crytic/cairn/project"
	"github.com/crytic/cairn/utils"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// cleanCmd represents the command provider for cleaning
var cleanCmd = &cobra.Command{
	Use:               "clean",
	Short:             "Removes compiled artifacts and caches",
	Long:              `Removes compiled artifacts and caches`,
	Args:              cmdValidateCleanArgs,
	ValidArgsFunction: cmdValidCleanArgs,
	RunE:              cmdRunClean,
	SilenceUsage:      true,
	SilenceErrors:     true,
}

func init() {
	// Add all the flags allowed for the clean command
	err := addCleanFlags()
	if err != nil {
		cmdLogger.Panic("Failed to initialize the clean command", err)
	}

	// Add the clean command and its associated flags to the root command
	rootCmd.AddCommand(cleanCmd)
}

// cmdValidCleanArgs will return which flags and sub-commands are valid for dynamic completion for the clean command
func cmdValidCleanArgs(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	// Gather a list of flags that are available to be used in the current command but have not been used yet
	var unusedFlags []string

	// Examine all the flags, and add any flags that have not been set in the current command line
	// to a list of unused flags
	cmd.Flags().VisitAll(func(flag *pflag.Flag) {
		if !flag.Changed {
			unusedFlags = append(unusedFlags, "--"+flag.Name)
		}
	})
	// Provide a list of flags that can be used in the current command (but have not been used yet)
	// for autocompletion suggestions
	return unusedFlags, cobra.ShellCompDirectiveNoFileComp
}

// cmdValidateCleanArgs makes sure that there are no positional arguments provided to the clean command
func cmdValidateCleanArgs(cmd *cobra.Command, args []string) error {
	// Make sure we have no positional args
	if err := cobra.NoArgs(cmd, args); err != nil {
		err = fmt.Errorf("clean does not accept any positional arguments, only flags and their associated values")
		cmdLogger.Error("Failed to validate args to the clean command", err)
		return err
	}
	return nil
}

// cmdRunClean executes the CLI clean command. It resolves the project configuration the same way the
// build command does, then removes the project's artifact cache and dependency source cache. With
// --all, the project's recorded build state is removed as well.
func cmdRunClean(cmd *cobra.Command, args []string) error {
	var projectConfig *project.ProjectConfig

	// Check to see if --config flag was used and store the value of --config flag
	configFlagUsed := cmd.Flags().Changed("config")
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		cmdLogger.Error("Failed to run the clean command", err)
		return err
	}

	// If --config was not used, look for `cairn.json` in the current work directory
	if !configFlagUsed {
		workingDirectory, err := os.Getwd()
		if err != nil {
			cmdLogger.Error("Failed to run the clean command", err)
			return err
		}
		configPath = filepath.Join(workingDirectory, DefaultProjectConfigFilename)
	}

	// Check to see if the file exists at configPath
	_, existenceError := os.Stat(configPath)

	// Possibility #1: File was found
	if existenceError == nil {
		projectConfig, err = project.ReadProjectConfigFromFile(configPath, DefaultCompilationPlatform)
		if err != nil {
			cmdLogger.Error("Failed to run the clean command", err)
			return err
		}
	}

	// Possibility #2: If the --config flag was used, and we couldn't find the file, we'll throw an error
	if configFlagUsed && existenceError != nil {
		cmdLogger.Error("Failed to run the clean command", existenceError)
		return existenceError
	}

	// Possibility #3: --config flag was not used and cairn.json was not found, so clean the default
	// project layout rooted at the working directory
	if !configFlagUsed && existenceError != nil {
		projectConfig, err = project.GetDefaultProjectConfig(DefaultCompilationPlatform)
		if err != nil {
			cmdLogger.Error("Failed to run the clean command", err)
			return err
		}
	}

	// Resolve the project around the configuration's folder so every path to remove is absolute
	resolvedProject, err := project.NewProjectWithConfig(configPath, projectConfig)
	if err != nil {
		cmdLogger.Error("Failed to run the clean command", err)
		return err
	}

	// Collect the folders to remove: the artifact cache and the dependency source cache, plus the
	// recorded build state if --all was provided.
	cacheFolder, err := resolvedProject.CacheFolderPath()
	if err != nil {
		cmdLogger.Error("Failed to run the clean command", err)
		return err
	}
	foldersToRemove := []string{
		cacheFolder,
		filepath.Join(resolvedProject.ContractsFolderPath(), ".cache"),
	}
	if cmd.Flags().Changed("all") {
		removeAll, err := cmd.Flags().GetBool("all")
		if err != nil {
			cmdLogger.Error("Failed to run the clean command", err)
			return err
		}
		if removeAll {
			foldersToRemove = append(foldersToRemove, resolvedProject.StateFolderPath())
		}
	}

	// Remove each folder which exists
	for _, folder := range foldersToRemove {
		if !utils.DirectoryExists(folder) {
			continue
		}
		err = utils.DeleteDirectory(folder)
		if err != nil {
			cmdLogger.Error("Failed to run the clean command", err)
			return err
		}
		cmdLogger.Info("Removed: ", colors.Bold, folder, colors.Reset)
	}
	return nil
}
