package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for crystal.

To load completions:

Bash:
  $ source <(crystal completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ crystal completion bash > /etc/bash_completion.d/crystal
  # macOS:
  $ crystal completion bash > $(brew --prefix)/etc/bash_completion.d/crystal

Zsh:
  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:
  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ crystal completion zsh > "${fpath[1]}/_crystal"

  # You will need to start a new shell for this setup to take effect.

Fish:
  $ crystal completion fish | source

  # To load completions for each session, execute once:
  $ crystal completion fish > ~/.config/fish/completions/crystal.fish

PowerShell:
  PS> crystal completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> crystal completion powershell > crystal.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return genCompletion(cmd.Root(), args[0], cmd.OutOrStdout())
		},
	}

	return cmd
}

func genCompletion(root *cobra.Command, shell string, w io.Writer) error {
	switch shell {
	case "bash":
		return root.GenBashCompletionV2(w, true)
	case "zsh":
		return root.GenZshCompletion(w)
	case "fish":
		return root.GenFishCompletion(w, true)
	case "powershell":
		return root.GenPowerShellCompletionWithDesc(w)
	}
	return fmt.Errorf("unsupported shell %q", shell)
}
