package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/pvdash/internal/client"
)

var (
	uploadModel    string
	uploadAdvanced bool
	uploadWatch    bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>",
	Short: "Submit a document for processing",
	Long: `Upload an interrogation document to the backend. The server extracts
the report metadata and the job appears in the table as working.

Examples:
  pvdash upload verhoor.docx
  pvdash upload verhoor.docx --model gpt-4o --advanced
  pvdash upload verhoor.docx --watch`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadModel, "model", "m", "", "model to process with (default from config)")
	uploadCmd.Flags().BoolVarP(&uploadAdvanced, "advanced", "a", false, "enable advanced processing")
	uploadCmd.Flags().BoolVarP(&uploadWatch, "watch", "w", false, "open the dashboard after uploading")
}

func runUpload(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	path := args[0]
	model := uploadModel
	if model == "" {
		model = cfg.DefaultModel
	}

	sessionID, err := client.SessionID()
	if err != nil {
		return fmt.Errorf("resolve session id: %w", err)
	}

	uploadCfg := client.UploadConfig{
		UUID:     sessionID,
		Advanced: uploadAdvanced || cfg.Advanced,
		Model:    model,
	}

	if err := httpClient().Upload(ctx, path, uploadCfg); err != nil {
		return err
	}

	logger.Info("upload accepted", "file", filepath.Base(path), "session_id", sessionID)
	fmt.Printf("Uploaded %s\n", filepath.Base(path))

	if uploadWatch {
		return runDashboard(cmd, nil)
	}

	fmt.Println("Use 'pvdash jobs' or 'pvdash dashboard' to follow processing.")
	return nil
}
