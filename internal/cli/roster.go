package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"surveycast/internal/roster"

	"github.com/spf13/cobra"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Work with recipient roster files",
}

var rosterInspectCmd = &cobra.Command{
	Use:   "inspect <file>",
	Short: "Parse a roster file and list its recipients",
	Long: `Parse a .csv or .xlsx roster the same way the server does on upload and
print the recipients it would load, followed by the count of skipped rows.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening roster: %w", err)
		}
		defer f.Close()

		res, err := roster.Load(filepath.Base(args[0]), f)
		if err != nil {
			return fmt.Errorf("parsing roster: %w", err)
		}
		printRoster(cmd.OutOrStdout(), res)
		return nil
	},
}

func init() {
	rosterCmd.AddCommand(rosterInspectCmd)
	rootCmd.AddCommand(rosterCmd)
}

func printRoster(out io.Writer, res *roster.Result) {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME")
	for _, r := range res.Recipients {
		fmt.Fprintf(w, "%d\t%s\n", r.ID, r.DisplayName)
	}
	w.Flush()
	fmt.Fprintf(out, "\n%d recipients, %d rows skipped\n", len(res.Recipients), res.Skipped)
}
