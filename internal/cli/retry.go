package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/pvdash/internal/protocol"
	"github.com/raphaelgruber/pvdash/internal/reconcile"
)

var (
	retryModel    string
	retryAdvanced bool
)

var retryCmd = &cobra.Command{
	Use:   "retry <filename>",
	Short: "Retry a failed job",
	Long: `Resubmit a job that ended in an error. The job switches back to
working; a second retry for the same file is ignored until the server
reports the job as done or failed again.`,
	Args: cobra.ExactArgs(1),
	RunE: runRetry,
}

func init() {
	retryCmd.Flags().StringVarP(&retryModel, "model", "m", "", "model to reprocess with (default from config)")
	retryCmd.Flags().BoolVarP(&retryAdvanced, "advanced", "a", false, "enable advanced processing")
}

func runRetry(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	sess, err := dialSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	filename := args[0]

	snap, err := sess.WaitSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("fetch job table: %w", err)
	}

	found := false
	for _, job := range snap.Jobs {
		if job.Filename == filename {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("job not found: %s", filename)
	}

	model := retryModel
	if model == "" {
		model = cfg.DefaultModel
	}

	rec := reconcile.New(sess, logger)
	rec.ApplySnapshot(snap)
	if err := rec.RequestRetry(filename, protocol.RetryConfig{
		Advanced: retryAdvanced || cfg.Advanced,
		Model:    model,
	}); err != nil {
		return fmt.Errorf("retry %s: %w", filename, err)
	}

	fmt.Printf("Retry submitted for %s\n", filename)
	return nil
}
