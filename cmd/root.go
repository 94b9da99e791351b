package cmd

import (
	"os"

	"github.com/crytic/abiharness/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// cmdLogger is the logger used by the cmd package. It always logs to the console.
var cmdLogger = newCmdLogger()

var rootCmd = &cobra.Command{
	Use:   "abiharness",
	Short: "A harness which generates and compiles Go bindings for contract ABIs",
	Long:  "abiharness generates a Go binding for every contract ABI description in a directory and compiles them together",
}

// newCmdLogger creates the console logger of the cmd package.
func newCmdLogger() *logging.Logger {
	logger := logging.NewLogger(zerolog.InfoLevel)
	logger.AddWriter(os.Stdout, logging.UNSTRUCTURED, true)
	return logger.NewSubLogger(logging.SERVICE_KEY, logging.CLI_SERVICE)
}

// Execute runs the root command, which dispatches to the sub-command named on the command line.
func Execute() error {
	return rootCmd.Execute()
}
