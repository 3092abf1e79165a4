package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/iksnae/tutor-assistant/internal"
	"github.com/spf13/cobra"
)

var resetYes bool

// resetCmd represents the reset command
var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Archive the live session and start a new one",
	Long: `Archive the live conversation and start a fresh session, exactly as the
"new chat" button does. You are asked to confirm unless --yes is given.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, kv, closeFn, err := openStorage()
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()

		out := cmd.OutOrStdout()
		a := internal.NewAssistant(internal.AssistantOptions{Config: cfg, KV: kv})
		defer a.Shutdown()

		previous := a.Start()
		confirmer := stdinConfirmer(cmd.InOrStdin(), out)
		if resetYes {
			confirmer = func(string) bool { return true }
		}

		session, err := a.NewSession(internal.ConfirmFunc(confirmer))
		if errors.Is(err, internal.ErrDeclined) {
			internal.PrintInfo(out, "Reset cancelled")
			return nil
		}
		if err != nil {
			return err
		}

		internal.PrintSuccess(out, fmt.Sprintf("Archived %s, new session %s", previous.ID, session.ID))
		return nil
	},
}

// stdinConfirmer asks the prompt on out and reads a y/N answer from in
func stdinConfirmer(in io.Reader, out io.Writer) func(string) bool {
	return func(prompt string) bool {
		_, _ = fmt.Fprintf(out, "%s [y/N] ", prompt)
		scanner := bufio.NewScanner(in)
		if !scanner.Scan() {
			return false
		}
		return isYes(scanner.Text())
	}
}

func init() {
	rootCmd.AddCommand(resetCmd)
	resetCmd.Flags().BoolVarP(&resetYes, "yes", "y", false, "Do not ask for confirmation")
}
