package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var purgeCmd = &cobra.Command{
	Use:   "purge [file-id]",
	Short: "Remove a file and everything derived from it",
	Long: `Deletes a file record together with its stored payload, its chunks
and its keyword index entries. This cannot be undone.`,
	Args: cobra.ExactArgs(1),
	RunE: runPurge,
}

func init() {
	rootCmd.AddCommand(purgeCmd)
}

func runPurge(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	if err := ingestService.Purge(cmd.Context(), args[0]); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	cmd.Printf("Purged %s\n", args[0])
	return nil
}
