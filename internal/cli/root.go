package cli

import (
	"github.com/avery/vaops/internal/app"
	"github.com/spf13/cobra"
)

var appInstance *app.App

var rootCmd = &cobra.Command{
	Use:   "vaops",
	Short: "A CLI toolkit for virtual assistants",
	Long: `Vaops helps virtual assistants track time per client task, generate
time reports, and attach them to invoices.

By default, running vaops without arguments launches the interactive TUI.
Use subcommands for CLI operations.`,
	Run: func(cmd *cobra.Command, args []string) {
		// Default behavior: launch TUI
		launchTUI(cmd, args)
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// SetApp sets the app instance for commands to use
func SetApp(a *app.App) {
	appInstance = a
}

func init() {
	// Add all subcommands
	rootCmd.AddCommand(timerCmd)
	rootCmd.AddCommand(clientsCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(entriesCmd)
	rootCmd.AddCommand(reportsCmd)
	rootCmd.AddCommand(invoicesCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(tuiCmd)
}
