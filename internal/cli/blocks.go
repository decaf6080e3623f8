package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/pvdash/internal/protocol"
)

var blocksCmd = &cobra.Command{
	Use:   "blocks <filename>",
	Short: "Show the extracted information blocks of a report",
	Long: `Fetch the named text blocks the server extracted from a document,
grouped per block.`,
	Args: cobra.ExactArgs(1),
	RunE: runBlocks,
}

func runBlocks(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	sess, err := dialSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	filename := args[0]
	if err := sess.Send(protocol.NewBlocksRequest(filename)); err != nil {
		return fmt.Errorf("request blocks for %s: %w", filename, err)
	}

	for {
		select {
		case msg, ok := <-sess.Events():
			if !ok {
				return fmt.Errorf("connection closed before the blocks arrived")
			}
			switch m := msg.(type) {
			case protocol.WordInterfaceData:
				printBlocks(m.Blocks)
				return nil
			case protocol.ServerError:
				return fmt.Errorf("server error: %s", m.Message)
			}
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for blocks: %w", ctx.Err())
		}
	}
}

func printBlocks(blocks map[string][]string) {
	if len(blocks) == 0 {
		fmt.Println("No blocks extracted.")
		return
	}

	names := make([]string, 0, len(blocks))
	for name := range blocks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Printf("%s:\n", name)
		for _, line := range blocks[name] {
			fmt.Printf("  %s\n", line)
		}
		fmt.Println()
	}
}
