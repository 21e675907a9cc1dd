package cmd

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/hugo-lorenzo-mato/pomo/internal/journal"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded sessions",
	Long: `List sessions recorded in the journal, newest first.

With --export the listed sessions and their phase changes are also written
to a JSON file. With --from an exported file is listed instead of the journal.`,
	Example: `  pomo history
  pomo history --limit 5 --export week.json
  pomo history --from week.json`,
	RunE: runHistory,
}

var (
	historyLimit  int
	historyExport string
	historyFrom   string
)

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "maximum sessions to list (0 for all)")
	historyCmd.Flags().StringVar(&historyExport, "export", "", "write the listed sessions to a JSON file")
	historyCmd.Flags().StringVar(&historyFrom, "from", "", "list sessions from an exported JSON file")
	historyCmd.MarkFlagsMutuallyExclusive("export", "from")
}

func runHistory(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	if historyFrom != "" {
		exp, err := journal.ReadExport(historyFrom)
		if err != nil {
			return err
		}
		sessions := make([]journal.SessionSummary, 0, len(exp.Sessions))
		for _, s := range exp.Sessions {
			sessions = append(sessions, s.SessionSummary)
		}
		if historyLimit > 0 && len(sessions) > historyLimit {
			sessions = sessions[:historyLimit]
		}
		return printSessions(out, sessions)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := journal.Open(cfg.Journal.Path)
	if err != nil {
		return fmt.Errorf("opening journal: %w", err)
	}
	defer store.Close()

	ctx := cmd.Context()
	if historyExport != "" {
		exp, err := store.Export(ctx, historyExport, historyLimit)
		if err != nil {
			return err
		}
		sessions := make([]journal.SessionSummary, 0, len(exp.Sessions))
		for _, s := range exp.Sessions {
			sessions = append(sessions, s.SessionSummary)
		}
		if err := printSessions(out, sessions); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nExported %d sessions to %s\n", len(sessions), historyExport)
		return nil
	}

	sessions, err := store.Sessions(ctx, historyLimit)
	if err != nil {
		return err
	}
	return printSessions(out, sessions)
}

func printSessions(out io.Writer, sessions []journal.SessionSummary) error {
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tTASK\tWORK\tBREAK\tPOMODOROS\tDURATION")
	fmt.Fprintln(w, "-------\t----\t----\t-----\t---------\t--------")
	for _, s := range sessions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n",
			s.StartedAt.Local().Format("2006-01-02 15:04"),
			truncate(s.Task, 40),
			s.Work,
			s.Break,
			s.Completed,
			sessionDuration(s),
		)
	}
	return w.Flush()
}

func sessionDuration(s journal.SessionSummary) string {
	if s.EndedAt == nil {
		return "running"
	}
	return s.EndedAt.Sub(s.StartedAt).Round(time.Second).String()
}

func truncate(s string, max int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len([]rune(s)) <= max {
		return s
	}
	return string([]rune(s)[:max-3]) + "..."
}
