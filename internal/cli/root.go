package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "surveycast",
	Short: "Broadcast surveys to a roster of recipients",
	Long: `surveycast runs an admin-driven survey service. The admin uploads a roster,
composes a titled survey of choice and text questions, and launches it.
Every recipient then answers at their own pace, and the results are exported
as a spreadsheet once all reachable recipients are done.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}
