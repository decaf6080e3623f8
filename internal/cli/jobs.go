package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/pvdash/internal/protocol"
	"github.com/raphaelgruber/pvdash/internal/reconcile"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs [filename]",
	Short: "List processing jobs or inspect one",
	Long: `Fetch the current job table from the backend.

Examples:
  pvdash jobs                # List all jobs
  pvdash jobs verhoor.docx   # Show details for one job`,
	Args: cobra.MaximumNArgs(1),
	RunE: runJobs,
}

func runJobs(cmd *cobra.Command, args []string) error {
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

	if len(args) == 1 {
		return showJob(snap, args[0])
	}
	return listJobs(snap)
}

func listJobs(snap protocol.Snapshot) error {
	rec := reconcile.New(nil, logger)
	rows := rec.ApplySnapshot(snap)

	if snap.None || len(snap.Jobs) == 0 {
		fmt.Println("No documents uploaded yet")
		return nil
	}

	fmt.Printf("%-40s %-12s %-20s %s\n", "FILENAME", "STATUS", "CREATED", "MODEL")
	fmt.Println("--------------------------------------------------------------------------------")

	for _, row := range rows {
		fmt.Printf("%-40s %-12s %-20s %s\n",
			row.Job.Filename, statusLabel(row), row.Job.CreatedAt, row.Job.Model)
	}
	return nil
}

func showJob(snap protocol.Snapshot, filename string) error {
	for _, job := range snap.Jobs {
		if job.Filename != filename {
			continue
		}

		fmt.Printf("Job: %s\n", job.Filename)
		fmt.Printf("  Status: %s\n", job.Status)
		if job.CreatedAt != "" {
			fmt.Printf("  Created: %s\n", job.CreatedAt)
		}
		if job.Model != "" {
			fmt.Printf("  Model: %s\n", job.Model)
		}
		if job.OriginalFilename != "" {
			fmt.Printf("  Original file: %s\n", job.OriginalFilename)
		}

		fields := []struct{ label, value string }{
			{"Proces-verbaal", job.ProcesVerbaal},
			{"Datum", job.Datum},
			{"Tijd", job.Tijd},
			{"Verdachte", job.Verdachte},
			{"Geboortedag", job.Geboortedag},
			{"Geboortestad", job.Geboortestad},
			{"Woonadres", job.Woonadres},
			{"Woonstad", job.Woonstad},
			{"Locatie", job.Locatie},
			{"Verbalisanten", job.Verbalisanten},
		}

		printed := false
		for _, f := range fields {
			if f.value == "" {
				continue
			}
			if !printed {
				fmt.Println("\nExtracted metadata:")
				printed = true
			}
			fmt.Printf("  %s: %s\n", f.label, f.value)
		}
		return nil
	}

	return fmt.Errorf("job not found: %s", filename)
}

// statusLabel renders a row's logical state, including the optimistic
// overrides the dashboard shows.
func statusLabel(row reconcile.Row) string {
	switch row.Kind {
	case reconcile.RowDone:
		return "done"
	case reconcile.RowWorking:
		return "working"
	case reconcile.RowError:
		return "error"
	case reconcile.RowAnalyticsLog:
		return "logs (stats)"
	case reconcile.RowTextLog:
		return "logs (text)"
	case reconcile.RowDeleting:
		return "deleting…"
	case reconcile.RowCancelling:
		return "cancelling…"
	default:
		return string(row.Job.Status)
	}
}
