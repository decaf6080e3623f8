package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/pvdash/internal/protocol"
)

var suggestContext string

var suggestCmd = &cobra.Command{
	Use:   "suggest <filename>",
	Short: "Ask for text suggestions in a report context",
	Long: `Request model-generated text suggestions for a report, optionally
anchored to the passage being edited.

Examples:
  pvdash suggest verhoor.docx
  pvdash suggest verhoor.docx --context "verklaring van de verdachte"`,
	Args: cobra.ExactArgs(1),
	RunE: runSuggest,
}

func init() {
	suggestCmd.Flags().StringVarP(&suggestContext, "context", "c", "", "passage to anchor the suggestions to")
}

func runSuggest(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	sess, err := dialSession(ctx, false)
	if err != nil {
		return err
	}
	defer sess.Close()

	filename := args[0]
	if err := sess.Send(protocol.NewRequestThought(filename, suggestContext)); err != nil {
		return fmt.Errorf("request suggestions for %s: %w", filename, err)
	}

	for {
		select {
		case msg, ok := <-sess.Events():
			if !ok {
				return fmt.Errorf("connection closed before suggestions arrived")
			}
			switch m := msg.(type) {
			case protocol.ThoughtSuggestions:
				if len(m.Suggestions) == 0 {
					fmt.Println("No suggestions.")
					return nil
				}
				for i, s := range m.Suggestions {
					fmt.Printf("%d. %s\n", i+1, s)
				}
				return nil
			case protocol.ServerError:
				return fmt.Errorf("server error: %s", m.Message)
			}
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for suggestions: %w", ctx.Err())
		}
	}
}
