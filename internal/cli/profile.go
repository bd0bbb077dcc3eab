package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/trezy/git-switch/internal/app"
	"github.com/trezy/git-switch/internal/types"
)

// profileListOutput is the JSON shape of list.
type profileListOutput struct {
	Current  string              `json:"current,omitempty"`
	Profiles []types.ProfileInfo `json:"profiles"`
}

// switchOutput is the JSON shape of switch and reset.
type switchOutput struct {
	Profile string `json:"profile"`
	Changed bool   `json:"changed"`
	Error   string `json:"error,omitempty"`
}

// verbArgs validates positional arguments the same way the default verb
// parser does. An empty verb validates the root command.
func (cli *CLI) verbArgs(verb app.Verb) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		tokens := args
		if verb != "" {
			tokens = append([]string{string(verb)}, args...)
		}
		_, err := app.ParseCommand(tokens, true)
		return err
	}
}

// parse resolves the root command's arguments to a verb.
func (cli *CLI) parse(args []string) (app.Invocation, error) {
	sc, err := cli.storeContext()
	if err != nil {
		return app.Invocation{}, err
	}
	names, err := sc.Store.List()
	if err != nil {
		return app.Invocation{}, err
	}
	inv, err := app.ParseCommand(args, len(names) > 0)
	if err != nil {
		return app.Invocation{}, err
	}
	cli.Logger.Debug("dispatching", "verb", inv.Verb, "arg", inv.Arg, "implicit", inv.Implicit)
	return inv, nil
}

func (cli *CLI) dispatch(ctx context.Context, inv app.Invocation) error {
	switch inv.Verb {
	case app.VerbAdd:
		return cli.runAdd(ctx, app.AddOptions{Name: inv.Arg, Interactive: cli.interactive()})
	case app.VerbRemove:
		return cli.runRemove(ctx, inv.Arg)
	case app.VerbSwitch:
		return cli.runSwitch(ctx, inv.Arg)
	case app.VerbList:
		return cli.runList(ctx)
	case app.VerbKey:
		return cli.runKey(ctx, false)
	case app.VerbReset:
		return cli.runReset(ctx)
	}
	return fmt.Errorf("%w: %s", types.ErrUnrecognizedArgument, inv.Verb)
}

// newAddCmd creates the add command.
func (cli *CLI) newAddCmd() *cobra.Command {
	var (
		opts           app.AddOptions
		nonInteractive bool
	)

	cmd := &cobra.Command{
		Use:   "add [name]",
		Short: "Add a new profile",
		Long: `Add a new profile.

Missing values are asked for interactively, with defaults taken from the
current global git identity. The new profile gets a freshly generated SSH
keypair unless --use-existing-key adopts the current ~/.ssh/id_rsa pair.

Examples:
  # Interactive setup
  git-switch add

  # Non-interactive, generating a new key
  git-switch add work --name "Jane Doe" --email jane@work.example --non-interactive

  # Adopt the key already in ~/.ssh
  git-switch add personal --use-existing-key`,
		Args: cli.verbArgs(app.VerbAdd),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.Name = args[0]
			}
			opts.UseExistingKeySet = cmd.Flags().Changed("use-existing-key")
			opts.Interactive = !nonInteractive && cli.interactive()
			return cli.runAdd(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.DisplayName, "name", "", "Display name for user.name")
	cmd.Flags().StringVar(&opts.Email, "email", "", "Email for user.email")
	cmd.Flags().BoolVar(&opts.UseExistingKey, "use-existing-key", false, "Move the current ~/.ssh/id_rsa pair into the profile")
	cmd.Flags().BoolVar(&nonInteractive, "non-interactive", false, "Never prompt; use flags and the current git identity")

	return cmd
}

func (cli *CLI) runAdd(ctx context.Context, opts app.AddOptions) error {
	sc, err := cli.storeContext()
	if err != nil {
		return err
	}

	p, err := sc.Add(ctx, opts)
	if p == nil {
		return err
	}

	out, oerr := cli.output()
	if oerr != nil {
		return errors.Join(err, oerr)
	}
	werr := out.Write(p.Info(), func() {
		out.Printf("Profile %q created.\n", p.Name)
		if id := p.Identity(); id != "" {
			out.Printf("  Identity: %s\n", id)
		}
		out.Printf("\nNext steps:\n")
		out.Printf("  1. Run 'git-switch switch %s' to use it\n", p.Name)
		out.Printf("  2. Run 'git-switch key' to copy its public key\n")
	})
	return errors.Join(err, werr)
}

// newRemoveCmd creates the remove command.
func (cli *CLI) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "remove [name]",
		Aliases:           []string{"rm", "delete"},
		Short:             "Remove a profile and its keys",
		Args:              cli.verbArgs(app.VerbRemove),
		ValidArgsFunction: cli.completeProfiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runRemove(cmd.Context(), firstArg(args))
		},
	}
}

func (cli *CLI) runRemove(ctx context.Context, name string) error {
	sc, err := cli.storeContext()
	if err != nil {
		return err
	}

	removed, err := sc.Remove(ctx, name)
	if err != nil {
		return err
	}

	out, err := cli.output()
	if err != nil {
		return err
	}
	return out.Write(map[string]string{"removed": removed}, func() {
		out.Printf("Profile %q removed.\n", removed)
	})
}

// newSwitchCmd creates the switch command.
func (cli *CLI) newSwitchCmd() *cobra.Command {
	return &cobra.Command{
		Use:               "switch [name]",
		Aliases:           []string{"use"},
		Short:             "Make a profile active",
		Args:              cli.verbArgs(app.VerbSwitch),
		ValidArgsFunction: cli.completeProfiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runSwitch(cmd.Context(), firstArg(args))
		},
	}
}

func (cli *CLI) runSwitch(ctx context.Context, name string) error {
	sc, err := cli.storeContext()
	if err != nil {
		return err
	}

	changed, err := sc.Switch(ctx, name, false)
	return cli.writeSwitch(sc, name, changed, err)
}

// newResetCmd creates the reset command.
func (cli *CLI) newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Re-apply the active profile's keys and identity",
		Args:  cli.verbArgs(app.VerbReset),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runReset(cmd.Context())
		},
	}
}

func (cli *CLI) runReset(ctx context.Context) error {
	sc, err := cli.storeContext()
	if err != nil {
		return err
	}

	name, err := sc.Reset(ctx)
	if name == "" {
		return err
	}
	return cli.writeSwitch(sc, name, true, err)
}

// writeSwitch reports a switch. A partially applied switch is printed
// before its error is returned.
func (cli *CLI) writeSwitch(sc *app.StoreContext, name string, changed bool, err error) error {
	if !changed && err != nil {
		return err
	}
	if name == "" {
		name, _ = sc.Tracker.Get()
	}

	out, oerr := cli.output()
	if oerr != nil {
		return errors.Join(err, oerr)
	}

	result := switchOutput{Profile: name, Changed: changed}
	if err != nil {
		result.Error = err.Error()
	}
	werr := out.Write(result, func() {
		switch {
		case !changed:
			out.Printf("Already using %q.\n", name)
		case err != nil:
			out.Printf("Switched to %q with errors.\n", name)
		default:
			out.Printf("Switched to %q.\n", name)
		}
	})
	return errors.Join(err, werr)
}

// newListCmd creates the list command.
func (cli *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List profiles",
		Args:    cli.verbArgs(app.VerbList),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runList(cmd.Context())
		},
	}
}

func (cli *CLI) runList(ctx context.Context) error {
	sc, err := cli.storeContext()
	if err != nil {
		return err
	}

	infos, err := sc.List(ctx)
	if err != nil {
		return err
	}

	result := profileListOutput{Profiles: infos}
	for _, info := range infos {
		if info.Current {
			result.Current = info.Name
		}
	}

	out, err := cli.output()
	if err != nil {
		return err
	}
	return out.Write(result, func() {
		if len(infos) == 0 {
			out.Println("No profiles yet. Run 'git-switch add' to create one.")
			return
		}
		for _, info := range infos {
			marker := "  "
			if info.Current {
				marker = "* "
			}
			out.Printf("%s%s", marker, info.Name)
			p := types.Profile{DisplayName: info.DisplayName, Email: info.Email}
			if id := p.Identity(); id != "" {
				out.Printf("\t%s", id)
			}
			if info.Fingerprint != "" && cli.verboseFlag {
				out.Printf("\t%s", info.Fingerprint)
			}
			out.Println()
		}
	})
}

// newKeyCmd creates the key command.
func (cli *CLI) newKeyCmd() *cobra.Command {
	var printOnly bool

	cmd := &cobra.Command{
		Use:   "key",
		Short: "Copy the active profile's public key to the clipboard",
		Args:  cli.verbArgs(app.VerbKey),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.runKey(cmd.Context(), printOnly)
		},
	}

	cmd.Flags().BoolVar(&printOnly, "print", false, "Print the key instead of copying it")

	return cmd
}

func (cli *CLI) runKey(ctx context.Context, printOnly bool) error {
	sc, err := cli.storeContext()
	if err != nil {
		return err
	}

	out, err := cli.output()
	if err != nil {
		return err
	}

	pub, err := sc.Key(ctx, !printOnly)
	if err != nil {
		return err
	}

	name, _ := sc.Tracker.Get()
	return out.Write(map[string]string{"profile": name, "public_key": pub}, func() {
		if printOnly {
			out.Println(pub)
			return
		}
		out.Printf("Public key for %q copied to the clipboard.\n", name)
	})
}

// completeProfiles completes profile names for the first argument.
func (cli *CLI) completeProfiles(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if len(args) > 0 {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	if cli.Config == nil {
		if err := cli.initialize(); err != nil {
			return nil, cobra.ShellCompDirectiveError
		}
	}
	sc, err := cli.storeContext()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names, err := sc.Store.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
