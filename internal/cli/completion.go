package cli

import (
	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for nodegraph.

To load completions:

Bash:
  $ source <(nodegraph completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ nodegraph completion bash > /etc/bash_completion.d/nodegraph
  # macOS:
  $ nodegraph completion bash > $(brew --prefix)/etc/bash_completion.d/nodegraph

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ nodegraph completion zsh > "${fpath[1]}/_nodegraph"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ nodegraph completion fish | source

  # To load completions for each session, execute once:
  $ nodegraph completion fish > ~/.config/fish/completions/nodegraph.fish

PowerShell:
  PS> nodegraph completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> nodegraph completion powershell > nodegraph.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// completeGraphNames completes graph names from the configured store.
func (c *CLI) completeGraphNames(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	graphs, err := c.openGraphs(cmd.Context(), cfg)
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer closeGraphs(graphs, c.Logger)
	names, err := graphs.List(cmd.Context())
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
