// ABOUTME: Launches the interactive terminal UI
// ABOUTME: Logs go to debug.log in the config dir so the screen stays clean

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/markalston/formationsgest/internal/logger"
	"github.com/markalston/formationsgest/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive dashboard",
	Long: `Open the full-screen interface. It validates the stored session, asks
for credentials when needed and shows the dashboard and lists your role may see.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := runTUI(); err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Error: %v\n", err)
			os.Exit(exitError)
		}
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI() error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	closer, err := logger.InitFile(rt.cfg.ConfigDir, rt.cfg.LogLevel, rt.cfg.LogFormat)
	if err != nil {
		return err
	}
	defer closer.Close()

	return tui.Run(rt.session, rt.gate, rt.client)
}
