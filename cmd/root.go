package cmd

import (
	"github.com/crytic/cairn/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// rootCmd is the root CLI command object which all other commands stem from.
var rootCmd = &cobra.Command{
	Use:   "cairn",
	Short: "A Cairo smart contract build harness",
	Long:  "cairn is a build harness for Cairo smart contracts targeting Starknet",
}

// cmdLogger is the logger that will be used for the cmd package
var cmdLogger = logging.NewLogger(zerolog.InfoLevel, true)

// Execute provides an exportable function to invoke the CLI. Returns an error if one was encountered.
func Execute() error {
	return rootCmd.Execute()
}
