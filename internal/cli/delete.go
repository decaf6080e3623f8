package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/pvdash/internal/protocol"
	"github.com/raphaelgruber/pvdash/internal/reconcile"
)

var deleteUnfinished bool

var deleteCmd = &cobra.Command{
	Use:   "delete <filename>",
	Short: "Delete a job and its report",
	Long: `Remove a job from the backend. Finished jobs and failed jobs use
different deletion paths; by default the path is chosen from the job's
current status, --unfinished forces the failed-job path.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolVarP(&deleteUnfinished, "unfinished", "u", false, "delete as an unfinished (failed) job")
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	unfinished := deleteUnfinished
	found := false
	for _, job := range snap.Jobs {
		if job.Filename == filename {
			found = true
			if !cmd.Flags().Changed("unfinished") {
				unfinished = job.Status == protocol.StatusError
			}
			break
		}
	}
	if !found {
		return fmt.Errorf("job not found: %s", filename)
	}

	rec := reconcile.New(sess, logger)
	rec.ApplySnapshot(snap)
	if err := rec.RequestDelete(filename, unfinished); err != nil {
		return fmt.Errorf("delete %s: %w", filename, err)
	}

	fmt.Printf("Deletion sent for %s\n", filename)
	return nil
}
