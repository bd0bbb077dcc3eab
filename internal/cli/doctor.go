package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/trezy/git-switch/internal/app"
	"github.com/trezy/git-switch/internal/clipboard"
	"github.com/trezy/git-switch/internal/gitconfig"
	"github.com/trezy/git-switch/internal/sshkey"
	"github.com/trezy/git-switch/internal/utils"
)

// CheckResult represents the result of a diagnostic check.
type CheckResult struct {
	Name    string      `json:"name"`
	Status  CheckStatus `json:"status"`
	Message string      `json:"message"`
	Fix     string      `json:"fix,omitempty"`
}

// CheckStatus represents the status of a diagnostic check.
type CheckStatus int

const (
	// CheckOK indicates the check passed.
	CheckOK CheckStatus = iota
	// CheckWarning indicates a non-critical issue.
	CheckWarning
	// CheckError indicates a critical failure.
	CheckError
	// CheckSkipped indicates the check was skipped.
	CheckSkipped
)

// String returns the status name.
func (s CheckStatus) String() string {
	switch s {
	case CheckOK:
		return "OK"
	case CheckWarning:
		return "WARN"
	case CheckError:
		return "ERROR"
	case CheckSkipped:
		return "SKIP"
	default:
		return "UNKNOWN"
	}
}

// Icon returns the status icon for display.
func (s CheckStatus) Icon() string {
	switch s {
	case CheckOK:
		return "[OK]"
	case CheckWarning:
		return "[!!]"
	case CheckError:
		return "[XX]"
	case CheckSkipped:
		return "[--]"
	default:
		return "[??]"
	}
}

// MarshalJSON implements json.Marshaler.
func (s CheckStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// DoctorOutput represents the doctor command output for JSON.
type DoctorOutput struct {
	Checks      []CheckResult `json:"checks"`
	HasErrors   bool          `json:"has_errors"`
	HasWarnings bool          `json:"has_warnings"`
}

// newDoctorCmd creates the doctor command.
func (cli *CLI) newDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose common issues",
		Long: `Run diagnostic checks to identify and troubleshoot common issues.

The doctor command checks:
  - Configuration file validity
  - Profile store and active profile
  - SSH key links
  - Global git identity
  - git and clipboard tools

Use --verbose for suggested fixes.

Examples:
  # Run diagnostics
  git-switch doctor

  # Output as JSON
  git-switch doctor -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cli.output()
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
			defer cancel()

			results := cli.runDiagnostics(ctx)

			hasErrors := false
			hasWarnings := false
			for _, r := range results {
				if r.Status == CheckError {
					hasErrors = true
				}
				if r.Status == CheckWarning {
					hasWarnings = true
				}
			}

			output := DoctorOutput{
				Checks:      results,
				HasErrors:   hasErrors,
				HasWarnings: hasWarnings,
			}

			writeErr := out.Write(output, func() {
				out.Println("git-switch Diagnostics")
				out.Println("======================")
				out.Println()

				for _, r := range results {
					out.Printf("%s %s", r.Status.Icon(), r.Name)
					if r.Message != "" {
						out.Printf(": %s", r.Message)
					}
					out.Println()

					if (r.Status == CheckError || r.Status == CheckWarning) && r.Fix != "" && cli.verboseFlag {
						out.Printf("      -> %s\n", r.Fix)
					}
				}

				out.Println()
				if hasErrors {
					out.Println("Some checks failed. Run with --verbose for suggested fixes.")
				} else if hasWarnings {
					out.Println("All critical checks passed with some warnings.")
				} else {
					out.Println("All checks passed!")
				}
			})

			if writeErr != nil {
				return writeErr
			}

			if hasErrors {
				return fmt.Errorf("diagnostics failed")
			}
			return nil
		},
	}

	return cmd
}

func (cli *CLI) runDiagnostics(ctx context.Context) []CheckResult {
	var results []CheckResult

	results = append(results, cli.checkConfigFile())

	active, storeResults := cli.checkStore()
	results = append(results, storeResults...)

	results = append(results, cli.checkSSHKeys(active))
	results = append(results, cli.checkGitIdentity(ctx, active))
	results = append(results, cli.checkGitBinary())
	results = append(results, cli.checkClipboard())

	return results
}

func (cli *CLI) checkConfigFile() CheckResult {
	path := cli.Config.FilePath()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Configuration file",
			Status:  CheckOK,
			Message: "not found, using defaults",
		}
	}

	if err := cli.Config.Validate(); err != nil {
		return CheckResult{
			Name:    "Configuration file",
			Status:  CheckError,
			Message: fmt.Sprintf("invalid: %v", err),
			Fix:     fmt.Sprintf("Edit %s", path),
		}
	}

	return CheckResult{
		Name:    "Configuration file",
		Status:  CheckOK,
		Message: path,
	}
}

// checkStore checks the profile store and returns the active profile name
// when it resolves to a stored profile.
func (cli *CLI) checkStore() (string, []CheckResult) {
	sc, err := cli.storeContext()
	if err != nil {
		return "", []CheckResult{{
			Name:    "Profile store",
			Status:  CheckError,
			Message: err.Error(),
		}}
	}

	names, err := sc.Store.List()
	if err != nil {
		return "", []CheckResult{{
			Name:    "Profile store",
			Status:  CheckError,
			Message: err.Error(),
			Fix:     fmt.Sprintf("Check the permissions of %s", sc.Store.Root()),
		}}
	}

	if len(names) == 0 {
		return "", []CheckResult{
			{
				Name:    "Profile store",
				Status:  CheckWarning,
				Message: fmt.Sprintf("no profiles in %s", sc.Store.Root()),
				Fix:     "Run 'git-switch add' to create a profile",
			},
			{Name: "Active profile", Status: CheckSkipped, Message: "no profiles"},
		}
	}

	results := []CheckResult{{
		Name:    "Profile store",
		Status:  CheckOK,
		Message: fmt.Sprintf("%d profile(s) in %s", len(names), sc.Store.Root()),
	}}

	current, err := sc.Tracker.Get()
	switch {
	case err != nil:
		results = append(results, CheckResult{Name: "Active profile", Status: CheckError, Message: err.Error()})
		return "", results
	case current == "":
		results = append(results, CheckResult{
			Name:    "Active profile",
			Status:  CheckWarning,
			Message: "none selected",
			Fix:     "Run 'git-switch switch <name>'",
		})
		return "", results
	case !sc.Store.Exists(current):
		results = append(results, CheckResult{
			Name:    "Active profile",
			Status:  CheckError,
			Message: fmt.Sprintf("%q no longer exists", current),
			Fix:     "Switch to another profile with 'git-switch switch <name>'",
		})
		return "", results
	}

	results = append(results, CheckResult{Name: "Active profile", Status: CheckOK, Message: current})
	return current, results
}

func (cli *CLI) checkSSHKeys(active string) CheckResult {
	keys := sshkey.NewKeyStore(cli.Config.SSHDir, nil)

	if active == "" {
		if keys.Unmanaged() {
			return CheckResult{
				Name:    "SSH keys",
				Status:  CheckWarning,
				Message: fmt.Sprintf("%s is not managed by any profile", keys.PrivateKeyPath()),
				Fix:     "Run 'git-switch add --use-existing-key' to adopt it",
			}
		}
		return CheckResult{Name: "SSH keys", Status: CheckSkipped, Message: "no active profile"}
	}

	sc, err := cli.storeContext()
	if err != nil {
		return CheckResult{Name: "SSH keys", Status: CheckError, Message: err.Error()}
	}

	if err := keys.Verify(sc.Store.Dir(active)); err != nil {
		return CheckResult{
			Name:    "SSH keys",
			Status:  CheckError,
			Message: utils.FirstLine(err.Error()),
			Fix:     "Run 'git-switch reset' to relink the active profile's keys",
		}
	}

	msg := fmt.Sprintf("%s linked to %q", keys.PrivateKeyPath(), active)
	if fp, err := keys.Fingerprint(sc.Store.Dir(active)); err == nil {
		msg += " (" + fp + ")"
	}
	return CheckResult{Name: "SSH keys", Status: CheckOK, Message: msg}
}

func (cli *CLI) checkGitIdentity(ctx context.Context, active string) CheckResult {
	git, err := cli.gitBackend()
	if err != nil {
		return CheckResult{Name: "Git identity", Status: CheckError, Message: err.Error()}
	}

	id, err := git.Identity(ctx)
	if err != nil {
		return CheckResult{
			Name:    "Git identity",
			Status:  CheckError,
			Message: fmt.Sprintf("cannot read via %s backend: %v", git.Name(), err),
		}
	}

	if active == "" {
		return CheckResult{Name: "Git identity", Status: CheckOK, Message: describeIdentity(id)}
	}

	sc, err := cli.storeContext()
	if err != nil {
		return CheckResult{Name: "Git identity", Status: CheckError, Message: err.Error()}
	}
	p, err := sc.Store.Read(active)
	if err != nil {
		return CheckResult{Name: "Git identity", Status: CheckError, Message: err.Error()}
	}

	if id.Name != p.DisplayName || id.Email != p.Email {
		return CheckResult{
			Name:    "Git identity",
			Status:  CheckWarning,
			Message: fmt.Sprintf("%s does not match profile %q", describeIdentity(id), active),
			Fix:     "Run 'git-switch reset' to re-apply the profile's identity",
		}
	}
	return CheckResult{Name: "Git identity", Status: CheckOK, Message: describeIdentity(id)}
}

func describeIdentity(id gitconfig.Identity) string {
	var parts []string
	if id.Name != "" {
		parts = append(parts, id.Name)
	}
	if id.Email != "" {
		parts = append(parts, "<"+id.Email+">")
	}
	if len(parts) == 0 {
		return "not set"
	}
	return strings.Join(parts, " ")
}

func (cli *CLI) checkGitBinary() CheckResult {
	binary := cli.Config.Git.Binary
	if binary == "" {
		binary = "git"
	}

	path, err := cli.runner.LookPath(binary)
	if err != nil {
		return CheckResult{
			Name:    "Git binary",
			Status:  CheckWarning,
			Message: fmt.Sprintf("%s not found, the gitconfig file is edited directly", binary),
			Fix:     "Install git or set git.binary in the configuration",
		}
	}
	return CheckResult{Name: "Git binary", Status: CheckOK, Message: path}
}

func (cli *CLI) checkClipboard() CheckResult {
	cmd, err := clipboard.New(cli.runner, cli.Config.Clipboard.Command).Command()
	if err != nil {
		return CheckResult{
			Name:    "Clipboard",
			Status:  CheckWarning,
			Message: err.Error(),
			Fix:     fmt.Sprintf("Install a clipboard tool or use 'git-switch %s --print'", app.VerbKey),
		}
	}
	return CheckResult{Name: "Clipboard", Status: CheckOK, Message: strings.Join(cmd, " ")}
}
