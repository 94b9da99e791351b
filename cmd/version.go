package cmd

import (
	"fmt"

	"github.com/crytic/abiharness/version"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command that displays build information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build information",
	Long:  `Print the version of abiharness along with the commit and Go toolchain it was built from`,
	Run: func(cmd *cobra.Command, args []string) {
		info := version.GetInfo()
		if short, _ := cmd.Flags().GetBool("short"); short {
			fmt.Println(info.Short())
			return
		}
		fmt.Print(info.String())
	},
}

func init() {
	versionCmd.Flags().Bool("short", false, "print the version on a single line")
	rootCmd.AddCommand(versionCmd)
}
