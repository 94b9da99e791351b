package cmd

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
)

// completionCmd represents the command provider for shell completion scripts
var completionCmd = &cobra.Command{
	Use:       "completion [bash|zsh]",
	Short:     "Generate the shell completion script for abiharness",
	ValidArgs: []string{"bash", "zsh"},
	Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
	Long: `To load completions:

Bash:

  $ source <(abiharness completion bash)

Zsh:

  $ abiharness completion zsh > "${fpath[1]}/_abiharness"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		switch args[0] {
		case "bash":
			return cmd.Root().GenBashCompletion(os.Stdout)
		case "zsh":
			return cmd.Root().GenZshCompletion(os.Stdout)
		}
		return errors.Errorf("unsupported shell '%s'", args[0])
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}
