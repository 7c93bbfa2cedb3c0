package cmd

// addCleanFlags adds the various flags for the clean command
func addCleanFlags() error {
	// Prevent alphabetical sorting of usage message
	cleanCmd.Flags().SortFlags = false

	// Config file
	cleanCmd.Flags().String("config", "", "path to config file")

	// Remove recorded build state as well
	cleanCmd.Flags().Bool("all", false, "also remove the project's recorded build state")

	return nil
}
