package cli

import (
	"github.com/spf13/cobra"

	"github.com/trezy/git-switch/internal/version"
)

// newVersionCmd creates the version command.
func (cli *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print git-switch version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cli.output()
			if err != nil {
				return err
			}
			info := version.Get()
			return out.Write(info, func() {
				out.Println(info.String())
			})
		},
	}
}
