package cli

import (
	"github.com/spf13/cobra"
)

// newCompletionCmd creates the completion command.
func (cli *CLI) newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for git-switch.

To load completions:

Bash:
  $ source <(git-switch completion bash)
  # To load completions for each session, execute once:
  # Linux:
  $ git-switch completion bash > /etc/bash_completion.d/git-switch
  # macOS:
  $ git-switch completion bash > $(brew --prefix)/etc/bash_completion.d/git-switch

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ git-switch completion zsh > "${fpath[1]}/_git-switch"
  # You may need to start a new shell for this to take effect.

Fish:
  $ git-switch completion fish | source
  # To load completions for each session, execute once:
  $ git-switch completion fish > ~/.config/fish/completions/git-switch.fish

PowerShell:
  PS> git-switch completion powershell | Out-String | Invoke-Expression
  # To load completions for every new session, run:
  PS> git-switch completion powershell > git-switch.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		// Completion scripts must not depend on a readable configuration.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(cli.stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(cli.stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(cli.stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(cli.stdout)
			}
			return nil
		},
	}
	return cmd
}
