package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/cartalabs/carta/internal/core/ports/driving"
)

var processStep bool

var processCmd = &cobra.Command{
	Use:   "process [file-id]",
	Short: "Process pending files",
	Long: `Drives files through chunking and embedding. With a file ID only
that file is processed; without one every unfinished file is driven to
completion. Failures are recorded on the file, see 'carta status'.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().BoolVar(&processStep, "step", false, "perform a single bounded step instead of running to completion")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}
	ctx := cmd.Context()

	if len(args) == 1 {
		var progress *driving.Progress
		var err error
		if processStep {
			progress, err = processor.Step(ctx, args[0])
		} else {
			progress, err = processor.Run(ctx, args[0])
		}
		if err != nil {
			return fmt.Errorf("process %s: %w", args[0], err)
		}
		printProgress(cmd, progress)
		return nil
	}

	files, err := fileStore.ListUnfinished(ctx)
	if err != nil {
		return fmt.Errorf("list unfinished files: %w", err)
	}
	if len(files) == 0 {
		cmd.Println("Nothing to process.")
		return nil
	}

	for i := range files {
		progress, err := processor.Run(ctx, files[i].ID)
		if err != nil {
			return fmt.Errorf("process %s: %w", files[i].ID, err)
		}
		printProgress(cmd, progress)
	}
	return nil
}

// printProgress renders one file's pipeline position.
func printProgress(cmd *cobra.Command, progress *driving.Progress) {
	state := progress.State
	switch {
	case state.Reason != "":
		cmd.Printf("  %s: %s (%s)\n", progress.FileID, state.Phase, state.Reason)
	case state.Total > 0:
		cmd.Printf("  %s: %s (%d/%d chunks)\n", progress.FileID, state.Phase, state.Processed, state.Total)
	default:
		cmd.Printf("  %s: %s\n", progress.FileID, state.Phase)
	}
}
