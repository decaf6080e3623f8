package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/pvdash/internal/protocol"
)

var cancelCmd = &cobra.Command{
	Use:   "cancel <filename>",
	Short: "Cancel a working job",
	Long: `Ask the backend to stop processing a job. Cancellation is
fire-and-forget: the next table refresh confirms whether it took effect.`,
	Args: cobra.ExactArgs(1),
	RunE: runCancel,
}

func runCancel(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	sess, err := dialSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	filename := args[0]
	if err := sess.Send(protocol.NewCancel(filename)); err != nil {
		return fmt.Errorf("cancel %s: %w", filename, err)
	}

	fmt.Printf("Cancellation sent for %s\n", filename)
	return nil
}
