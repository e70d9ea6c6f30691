package cli

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
)

var (
	uploadRoom string
	uploadMIME string
	uploadWait bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a document into a room",
	Long: `Registers a document for ingestion. The file becomes pending and is
chunked and embedded by 'carta process' or the watch pump.`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadRoom, "room", "r", "", "room to upload into (required)")
	uploadCmd.Flags().StringVar(&uploadMIME, "mime", "", "MIME type override (default: by extension)")
	uploadCmd.Flags().BoolVar(&uploadWait, "wait", false, "process the file to completion before returning")
	_ = uploadCmd.MarkFlagRequired("room")
	rootCmd.AddCommand(uploadCmd)
}

func runUpload(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	name := filepath.Base(path)
	mimeType := uploadMIME
	if mimeType == "" {
		mimeType = detectMIMEType(name)
	}

	file, err := ingestService.Register(cmd.Context(), uploadRoom, name, mimeType, data)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	cmd.Printf("Uploaded %s (%d bytes) as %s\n", name, file.Size, file.ID)

	if !uploadWait {
		cmd.Println("Run 'carta process' to chunk and embed it.")
		return nil
	}

	progress, err := processor.Run(cmd.Context(), file.ID)
	if err != nil {
		return fmt.Errorf("process failed: %w", err)
	}
	printProgress(cmd, progress)
	return nil
}

// detectMIMEType infers a MIME type from the file name.
func detectMIMEType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return "text/markdown"
	case ".txt", ".text", ".log":
		return "text/plain"
	}
	if byExt := mime.TypeByExtension(filepath.Ext(name)); byExt != "" {
		return byExt
	}
	return "text/plain"
}
