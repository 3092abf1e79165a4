package cmd

import (
	"fmt"

	"github.com/iksnae/tutor-assistant/internal"
	"github.com/spf13/cobra"
)

// sidebarCmd represents the sidebar command
var sidebarCmd = &cobra.Command{
	Use:       "sidebar [collapse|expand|toggle]",
	Short:     "Show or change the stored sidebar state",
	Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	ValidArgs: []string{"collapse", "expand", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		_, kv, closeFn, err := openStorage()
		if err != nil {
			return err
		}
		defer func() { _ = closeFn() }()

		prefs := internal.NewLayoutPrefs(kv)
		collapsed := prefs.SidebarCollapsed()

		if len(args) == 1 {
			switch args[0] {
			case "collapse":
				collapsed, err = true, prefs.SetSidebarCollapsed(true)
			case "expand":
				collapsed, err = false, prefs.SetSidebarCollapsed(false)
			case "toggle":
				collapsed, err = prefs.ToggleSidebar()
			}
			if err != nil {
				return fmt.Errorf("failed to save sidebar state: %w", err)
			}
		}

		state := "expanded"
		if collapsed {
			state = "collapsed"
		}
		internal.PrintInfo(cmd.OutOrStdout(), "Sidebar "+state)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sidebarCmd)
}
