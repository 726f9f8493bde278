package cli

import (
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// outputFormats lists the values accepted by --format, in help order.
var outputFormats = []string{"json", "dot", "svg", "png", "pdf"}

// completionCommand prints a shell completion script for modhouse.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Print a shell completion script",
		Long: `Print a shell completion script for modhouse.

Besides commands and flags, the scripts complete house-type files for the
commands that take one and the values of --format.`,
		Example: `  # current bash session
  source <(modhouse completion bash)

  # zsh, once per machine
  modhouse completion zsh > "${fpath[1]}/_modhouse"

  # fish
  modhouse completion fish > ~/.config/fish/completions/modhouse.fish`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
	return cmd
}

// completeHouseTypes offers house-type files for the first argument.
func completeHouseTypes(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return []string{"json", "toml", "yaml", "yml"}, cobra.ShellCompDirectiveFilterFileExt
}

// completeFormats completes the last entry of a comma-separated --format
// value, skipping formats already listed.
func completeFormats(_ *cobra.Command, _ []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var done []string
	prefix := ""
	if i := strings.LastIndex(toComplete, ","); i >= 0 {
		prefix = toComplete[:i+1]
		done = strings.Split(toComplete[:i], ",")
	}
	var out []string
	for _, f := range outputFormats {
		if !slices.Contains(done, f) {
			out = append(out, prefix+f)
		}
	}
	return out, cobra.ShellCompDirectiveNoFileComp | cobra.ShellCompDirectiveNoSpace
}
