package cmd

import (
	"github.com/crytic/cairn/project"
	"github.com/spf13/cobra"
)

// updateCompilationTarget will update the compilation target in the projectConfig if the --target flag is used in the
// command
func updateCompilationTarget(cmd *cobra.Command, projectConfig *project.ProjectConfig) error {
	// If --target was used
	if cmd.Flags().Changed("target") {
		// Get the new target
		newTarget, err := cmd.Flags().GetString("target")
		if err != nil {
			return err
		}

		// The project's contracts folder and the platform's compilation target mirror one another,
		// so update both.
		projectConfig.ContractsFolder = newTarget
		err = projectConfig.Compilation.SetTarget(newTarget)
		if err != nil {
			return err
		}
	}
	return nil
}
