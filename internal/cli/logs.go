package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/pvdash/internal/joblog"
)

var (
	logsStats   bool
	logsSearch  string
	logsLevel   string
	logsSource  string
	logsSession string
	logsLimit   int
	logsWindow  int
)

var logsCmd = &cobra.Command{
	Use:   "logs <filename>",
	Short: "Show the processing logs of a job",
	Long: `Fetch and display the log payload attached to a job.

The default view is a chronological table. --stats switches to the
statistical summary: level and source histograms, model usage, rolling
completion times and recent prompts.

Examples:
  pvdash logs backend.log
  pvdash logs backend.log --level error --search timeout
  pvdash logs backend.log --stats`,
	Args: cobra.ExactArgs(1),
	RunE: runLogs,
}

func init() {
	logsCmd.Flags().BoolVar(&logsStats, "stats", false, "show the statistical summary instead of the table")
	logsCmd.Flags().StringVar(&logsSearch, "search", "", "case-insensitive text filter")
	logsCmd.Flags().StringVar(&logsLevel, "level", "", "filter by log level")
	logsCmd.Flags().StringVar(&logsSource, "source", "", "filter by event source")
	logsCmd.Flags().StringVar(&logsSession, "session", "", "filter by session id")
	logsCmd.Flags().IntVarP(&logsLimit, "limit", "n", 0, "max table rows (0 = all)")
	logsCmd.Flags().IntVar(&logsWindow, "window", joblog.DefaultStatsWindow, "rolling average window")
}

func runLogs(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	sess, err := dialSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	snap, err := sess.WaitSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("fetch job table: %w", err)
	}

	filename := args[0]
	var raw any
	found := false
	for _, job := range snap.Jobs {
		if job.Filename == filename {
			raw = job.Logs
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("job not found: %s", filename)
	}

	result := joblog.Parse(raw)
	entries := joblog.Filter(result.Entries, joblog.Query{
		Search:  logsSearch,
		Level:   logsLevel,
		Source:  logsSource,
		Session: logsSession,
	})

	if logsStats {
		printLogStats(entries)
	} else {
		printLogTable(entries, logsLimit)
	}

	if len(result.BadLines) > 0 {
		fmt.Printf("\n%d unparseable line(s):\n", len(result.BadLines))
		for _, line := range result.BadLines {
			fmt.Printf("  %s\n", joblog.Truncate(line, 100))
		}
	}
	return nil
}

func printLogTable(entries []joblog.Entry, limit int) {
	if len(entries) == 0 {
		fmt.Println("No log entries match.")
		return
	}

	fmt.Printf("%-20s %-7s %-20s %-12s %s\n", "TIME", "LEVEL", "SOURCE", "SESSION", "MESSAGE")
	fmt.Println(strings.Repeat("-", 90))

	shown := 0
	for _, e := range entries {
		if limit > 0 && shown >= limit {
			fmt.Printf("… %d more\n", len(entries)-shown)
			break
		}

		ts := ""
		if e.HasTime() {
			ts = e.Time.Format("2006-01-02 15:04:05")
		}
		message := e.Input
		if message == "" {
			message = e.Output
		}
		fmt.Printf("%-20s %-7s %-20s %-12s %s\n",
			ts, e.Level, e.EventSource, e.Session, joblog.Truncate(message, 60))
		shown++
	}
}

func printLogStats(entries []joblog.Entry) {
	fmt.Printf("Entries: %d\n", len(entries))

	if min, max, ok := joblog.TimeRange(entries); ok {
		fmt.Printf("Range:   %s — %s\n",
			min.Format("2006-01-02 15:04:05"), max.Format("2006-01-02 15:04:05"))
	}

	printHistogram("Levels", joblog.LevelHistogram(entries))
	printHistogram("Sources", joblog.SourceHistogram(entries))
	printHistogram("Models", joblog.ModelFrequency(entries))

	times := joblog.CompletionTimes(joblog.Chronological(entries))
	if len(times) > 0 {
		rolling := joblog.RollingAverage(times, logsWindow)
		fmt.Printf("\nCompletion time (rolling avg over %d):\n", logsWindow)
		fmt.Printf("  latest %.2fs over %d sample(s)\n", rolling[len(rolling)-1], len(times))
	}

	fmt.Printf("\nEdits per generated report: %.2f\n", joblog.EditsPerReport(entries))

	prompts := joblog.RecentPrompts(entries, joblog.DefaultPromptLimit)
	if len(prompts) > 0 {
		fmt.Printf("\nRecent prompts (%d):\n", len(prompts))
		for _, p := range prompts {
			fmt.Printf("  • %s\n", joblog.Truncate(p.Prompt, joblog.DefaultPromptCharLimit))
		}
	}
}

func printHistogram(title string, buckets []joblog.Bucket) {
	if len(buckets) == 0 {
		return
	}
	fmt.Printf("\n%s:\n", title)
	for _, b := range buckets {
		fmt.Printf("  %-24s %4d %s\n", b.Value, b.Count, strings.Repeat("▇", barWidth(b.Count, buckets)))
	}
}

// barWidth scales a count to at most 30 cells against the largest bucket.
func barWidth(count int, buckets []joblog.Bucket) int {
	max := 0
	for _, b := range buckets {
		if b.Count > max {
			max = b.Count
		}
	}
	if max == 0 {
		return 0
	}
	w := count * 30 / max
	if w == 0 {
		w = 1
	}
	return w
}
