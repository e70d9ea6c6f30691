package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var reprocessRun bool

var reprocessCmd = &cobra.Command{
	Use:   "reprocess [file-id]",
	Short: "Retry a failed file",
	Long: `Resets a failed file to pending and discards the chunks from the
failed attempt. Only failed files can be reprocessed.`,
	Args: cobra.ExactArgs(1),
	RunE: runReprocess,
}

func init() {
	reprocessCmd.Flags().BoolVar(&reprocessRun, "run", false, "process the file immediately after the reset")
	rootCmd.AddCommand(reprocessCmd)
}

func runReprocess(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	if err := processor.Reprocess(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("reprocess failed: %w", err)
	}
	cmd.Printf("Reset %s for reprocessing\n", args[0])

	if !reprocessRun {
		return nil
	}

	progress, err := processor.Run(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("process failed: %w", err)
	}
	printProgress(cmd, progress)
	return nil
}
