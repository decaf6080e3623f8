package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/pvdash/internal/protocol"
)

var (
	editFields      protocol.JobUpdate
	editGeneratePDF bool
)

var editCmd = &cobra.Command{
	Use:   "edit <filename>",
	Short: "Edit the extracted metadata of a report",
	Long: `Update one or more extracted metadata fields of a finished report.
With --generate-pdf the server regenerates the PDF with the new values and
the command downloads it when ready.

Examples:
  pvdash edit verhoor.docx --verdachte "J. Jansen" --datum 2026-03-01
  pvdash edit verhoor.docx --locatie Utrecht --generate-pdf`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().StringVar(&editFields.ProcesVerbaal, "proces-verbaal", "", "proces-verbaal number")
	editCmd.Flags().StringVar(&editFields.Datum, "datum", "", "interrogation date")
	editCmd.Flags().StringVar(&editFields.Tijd, "tijd", "", "interrogation time")
	editCmd.Flags().StringVar(&editFields.Verdachte, "verdachte", "", "suspect name")
	editCmd.Flags().StringVar(&editFields.Geboortedag, "geboortedag", "", "suspect date of birth")
	editCmd.Flags().StringVar(&editFields.Geboortestad, "geboortestad", "", "suspect place of birth")
	editCmd.Flags().StringVar(&editFields.Woonadres, "woonadres", "", "suspect street address")
	editCmd.Flags().StringVar(&editFields.Woonstad, "woonstad", "", "suspect city")
	editCmd.Flags().StringVar(&editFields.Locatie, "locatie", "", "interrogation location")
	editCmd.Flags().StringVar(&editFields.Verbalisanten, "verbalisanten", "", "reporting officers")
	editCmd.Flags().BoolVar(&editGeneratePDF, "generate-pdf", false, "regenerate and download the PDF")
}

func runEdit(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	sess, err := dialSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	update := editFields
	update.ID = args[0]

	if !editGeneratePDF {
		if err := sess.Send(protocol.NewUpdateInfo(update)); err != nil {
			return fmt.Errorf("update %s: %w", update.ID, err)
		}
		fmt.Printf("Metadata update sent for %s\n", update.ID)
		return nil
	}

	if err := sess.Send(protocol.NewUpdateAndGenerate(update)); err != nil {
		return fmt.Errorf("update and generate %s: %w", update.ID, err)
	}
	fmt.Println("Waiting for the regenerated PDF…")

	for {
		select {
		case msg, ok := <-sess.Events():
			if !ok {
				return fmt.Errorf("connection closed before the report arrived")
			}
			switch m := msg.(type) {
			case protocol.Report:
				path, err := httpClient().Download(ctx, m.URL, cfg.DownloadDir)
				if err != nil {
					return fmt.Errorf("download report: %w", err)
				}
				fmt.Printf("Report saved to %s\n", path)
				return nil
			case protocol.ServerError:
				return fmt.Errorf("server rejected the update: %s", m.Message)
			}
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for the report: %w", ctx.Err())
		}
	}
}
