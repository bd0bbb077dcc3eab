package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/trezy/git-switch/internal/config"
)

// configPathOutput represents config path output for JSON.
type configPathOutput struct {
	ConfigFile   string `json:"config_file"`
	ConfigDir    string `json:"config_dir"`
	StoreDir     string `json:"store_dir"`
	SSHDir       string `json:"ssh_dir"`
	ConfigExists bool   `json:"config_exists"`
}

// newConfigCmd creates the config command group.
func (cli *CLI) newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage git-switch configuration",
		Long: `Manage git-switch configuration files and settings.

Use 'git-switch config path' to see where configuration and profiles live.
Use 'git-switch config show' to print the effective configuration.
Use 'git-switch config init' to write the defaults to the configuration file.`,
	}

	cmd.AddCommand(
		cli.newConfigPathCmd(),
		cli.newConfigShowCmd(),
		cli.newConfigInitCmd(),
	)

	return cmd
}

// newConfigPathCmd creates the config path command.
func (cli *CLI) newConfigPathCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Show configuration and store paths",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cli.output()
			if err != nil {
				return err
			}

			paths := config.GetPaths()
			configFile := cli.Config.FilePath()

			_, configErr := os.Stat(configFile)
			output := configPathOutput{
				ConfigFile:   configFile,
				ConfigDir:    paths.ConfigDir,
				StoreDir:     cli.Config.StoreDir,
				SSHDir:       cli.Config.SSHDir,
				ConfigExists: configErr == nil,
			}

			return out.Write(output, func() {
				out.Println("Configuration paths:")
				out.Printf("  Config file:  %s\n", output.ConfigFile)
				out.Printf("  Config dir:   %s\n", output.ConfigDir)
				out.Printf("  Store dir:    %s\n", output.StoreDir)
				out.Printf("  SSH dir:      %s\n", output.SSHDir)

				out.Println("\nStatus:")
				if output.ConfigExists {
					out.Printf("  Config file exists\n")
				} else {
					out.Printf("  Config file does not exist\n")
				}
			})
		},
	}
}

// newConfigShowCmd creates the config show command.
func (cli *CLI) newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Long: `Print the configuration after defaults and GIT_SWITCH_* environment
overrides have been applied.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cli.output()
			if err != nil {
				return err
			}
			if out.IsJSON() {
				return out.WriteJSON(cli.Config)
			}

			data, err := yaml.Marshal(cli.Config)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			out.Printf("# %s\n%s", cli.Config.FilePath(), data)
			return nil
		},
	}
}

// newConfigInitCmd creates the config init command.
func (cli *CLI) newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current configuration to the configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cli.Config.FilePath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("configuration already exists at %s (use --force to overwrite)", path)
			}

			if err := cli.Config.Save(); err != nil {
				return err
			}

			out, err := cli.output()
			if err != nil {
				return err
			}
			return out.Write(map[string]string{"config_file": path}, func() {
				out.Printf("Configuration saved to: %s\n", path)
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite an existing configuration file")

	return cmd
}
