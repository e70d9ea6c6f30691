package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cartalabs/carta/internal/core/domain"
)

var statusRoom string

var statusCmd = &cobra.Command{
	Use:   "status [file-id]",
	Short: "Show file processing status",
	Long: `Shows the pipeline position of uploaded files. With a file ID one
file is shown in detail; with --room every file in the room is listed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVarP(&statusRoom, "room", "r", "", "room to list")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	ctx := cmd.Context()

	if len(args) == 1 {
		file, err := fileStore.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("get file: %w", err)
		}
		printFileDetail(cmd, file)
		return nil
	}

	if statusRoom == "" {
		return fmt.Errorf("%w: a file ID or --room is required", domain.ErrInvalidInput)
	}

	files, err := fileStore.List(ctx, statusRoom)
	if err != nil {
		return fmt.Errorf("list files: %w", err)
	}
	if len(files) == 0 {
		cmd.Printf("No files in room %s.\n", statusRoom)
		return nil
	}

	for i := range files {
		printFileLine(cmd, &files[i])
	}
	return nil
}

func printFileLine(cmd *cobra.Command, file *domain.SourceFile) {
	state := file.State()
	switch {
	case state.Reason != "":
		cmd.Printf("  %s  %-24s %s: %s\n", file.ID, file.Name, state.Phase, state.Reason)
	case state.Total > 0:
		cmd.Printf("  %s  %-24s %s (%d/%d)\n", file.ID, file.Name, state.Phase, state.Processed, state.Total)
	default:
		cmd.Printf("  %s  %-24s %s\n", file.ID, file.Name, state.Phase)
	}
}

func printFileDetail(cmd *cobra.Command, file *domain.SourceFile) {
	state := file.State()
	cmd.Printf("File:     %s\n", file.Name)
	cmd.Printf("ID:       %s\n", file.ID)
	cmd.Printf("Room:     %s\n", file.RoomID)
	cmd.Printf("Size:     %d bytes (%s)\n", file.Size, file.MimeType)
	cmd.Printf("Phase:    %s\n", state.Phase)
	if state.Total > 0 {
		cmd.Printf("Progress: %d/%d chunks\n", state.Processed, state.Total)
	}
	if state.Reason != "" {
		cmd.Printf("Error:    %s\n", state.Reason)
	}
	cmd.Printf("Uploaded: %s\n", file.CreatedAt.Format("2006-01-02 15:04:05"))
}
