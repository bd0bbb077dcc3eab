// Package cli provides the command-line interface for git-switch.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/trezy/git-switch/internal/app"
	"github.com/trezy/git-switch/internal/clipboard"
	"github.com/trezy/git-switch/internal/config"
	"github.com/trezy/git-switch/internal/gitconfig"
	"github.com/trezy/git-switch/internal/logging"
	"github.com/trezy/git-switch/internal/notify"
	"github.com/trezy/git-switch/internal/profile"
	"github.com/trezy/git-switch/internal/prompt"
	"github.com/trezy/git-switch/internal/runner"
	"github.com/trezy/git-switch/internal/sshkey"
	"github.com/trezy/git-switch/internal/types"
)

// CLI holds the application state for the CLI.
type CLI struct {
	Config *config.Config
	Logger *slog.Logger

	runner   runner.Runner
	prompter prompt.Asker
	notifier notify.Notifier
	stdout   io.Writer
	stderr   io.Writer
	git      gitconfig.Backend
	sc       *app.StoreContext
	rootCmd  *cobra.Command

	// Flags
	verboseFlag bool
	outputFlag  string
	configFlag  string
}

// Option configures a CLI.
type Option func(*CLI)

// WithRunner sets the runner used for git and clipboard commands.
func WithRunner(r runner.Runner) Option {
	return func(c *CLI) {
		c.runner = r
	}
}

// WithPrompter sets the source of interactive answers.
func WithPrompter(p prompt.Asker) Option {
	return func(c *CLI) {
		c.prompter = p
	}
}

// WithNotifier replaces the desktop notifier.
func WithNotifier(n notify.Notifier) Option {
	return func(c *CLI) {
		c.notifier = n
	}
}

// WithOutput redirects command output and log output.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(c *CLI) {
		c.stdout = stdout
		c.stderr = stderr
	}
}

// New creates a new CLI instance.
func New(opts ...Option) *CLI {
	cli := &CLI{
		runner: runner.New(),
		stdout: os.Stdout,
		stderr: os.Stderr,
	}
	for _, opt := range opts {
		opt(cli)
	}

	cli.rootCmd = &cobra.Command{
		Use:   "git-switch [name]",
		Short: "git-switch - switch between git identities",
		Long: `git-switch keeps named git identity profiles, each with a display name,
an email and its own SSH keypair, and switches the active one.

Switching rewrites the global user.name and user.email and points
~/.ssh/id_rsa and ~/.ssh/id_rsa.pub at the profile's keys.

Without a command, git-switch switches to the named profile, or starts
adding the first profile when none exist yet.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cli.verbArgs(""),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cli.initialize(); err != nil {
				return err
			}
			cmd.SetContext(logging.WithContext(cmd.Context(), cli.Logger))
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := cli.parse(args)
			if err != nil {
				return err
			}
			return cli.dispatch(cmd.Context(), inv)
		},
		ValidArgsFunction: cli.completeProfiles,
	}

	cli.rootCmd.SetOut(cli.stdout)
	cli.rootCmd.SetErr(cli.stderr)
	cli.rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return fmt.Errorf("%w: %v", types.ErrUnrecognizedArgument, err)
	})

	// Global flags
	cli.rootCmd.PersistentFlags().BoolVarP(&cli.verboseFlag, "verbose", "v", false, "Enable verbose output")
	cli.rootCmd.PersistentFlags().StringVarP(&cli.outputFlag, "output", "o", "text", "Output format (text, json)")
	cli.rootCmd.PersistentFlags().StringVar(&cli.configFlag, "config", "", "Path to the configuration file")

	cli.addCommands()

	return cli
}

// addCommands adds all subcommands to the root command.
func (cli *CLI) addCommands() {
	cli.rootCmd.AddCommand(
		cli.newAddCmd(),
		cli.newRemoveCmd(),
		cli.newSwitchCmd(),
		cli.newListCmd(),
		cli.newKeyCmd(),
		cli.newResetCmd(),
		cli.newDoctorCmd(),
		cli.newConfigCmd(),
		cli.newVersionCmd(),
		cli.newCompletionCmd(),
	)
}

// initialize loads configuration and sets up logging.
func (cli *CLI) initialize() error {
	var (
		cfg *config.Config
		err error
	)
	if cli.configFlag != "" {
		cfg, err = config.LoadFrom(cli.configFlag)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cli.Config = cfg

	cli.Logger = logging.New(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Verbose: cli.verboseFlag,
		Writer:  cli.stderr,
	})
	cli.Logger.Debug("configuration loaded", "file", cfg.FilePath(), "store", cfg.StoreDir)
	return nil
}

// storeContext wires the profile commands' collaborators from the
// configuration. It is built once per process.
func (cli *CLI) storeContext() (*app.StoreContext, error) {
	if cli.sc != nil {
		return cli.sc, nil
	}
	cfg := cli.Config

	git, err := cli.gitBackend()
	if err != nil {
		return nil, err
	}

	gen, err := sshkey.NewGenerator(cfg.Keys.Type, cfg.Keys.Bits)
	if err != nil {
		return nil, err
	}

	prompter := cli.prompter
	if prompter == nil {
		prompter = prompt.Stdio()
	}
	notifier := cli.notifier
	if notifier == nil {
		notifier = notify.New(cfg.Notifications)
	}

	cli.sc = &app.StoreContext{
		Store:     profile.NewStore(cfg.StoreDir),
		Tracker:   profile.NewTracker(cfg.StoreDir),
		Keys:      sshkey.NewKeyStore(cfg.SSHDir, gen),
		Identity:  git,
		Clipboard: clipboard.New(cli.runner, cfg.Clipboard.Command),
		Prompt:    prompter,
		Notifier:  notifier,
		Logger:    cli.Logger,
	}
	return cli.sc, nil
}

func (cli *CLI) gitBackend() (gitconfig.Backend, error) {
	if cli.git != nil {
		return cli.git, nil
	}
	git, err := gitconfig.New(cli.Config.Git, config.GetPaths().HomeDir, cli.runner)
	if err != nil {
		return nil, err
	}
	cli.Logger.Debug("git identity backend", "backend", git.Name())
	cli.git = git
	return git, nil
}

// interactive reports whether prompts can be answered.
func (cli *CLI) interactive() bool {
	type interactiver interface{ Interactive() bool }
	if p, ok := cli.prompter.(interactiver); ok {
		return p.Interactive()
	}
	if cli.prompter != nil {
		return true
	}
	return prompt.Stdio().Interactive()
}

// output returns a writer for the --output format.
func (cli *CLI) output() (*OutputWriter, error) {
	format, err := ParseOutputFormat(cli.outputFlag)
	if err != nil {
		return nil, err
	}
	return NewOutputWriter(format, cli.stdout), nil
}

// Execute runs the CLI with os.Args.
func (cli *CLI) Execute(ctx context.Context) error {
	return cli.Run(ctx, os.Args[1:])
}

// Run runs the CLI with args.
func (cli *CLI) Run(ctx context.Context, args []string) error {
	cli.rootCmd.SetArgs(args)
	return cli.rootCmd.ExecuteContext(ctx)
}
