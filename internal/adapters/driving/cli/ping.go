package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check the embedding provider",
	Long:  `Makes a lightweight request to verify the embedding provider is reachable and the credentials work.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := ensureServices(); err != nil {
			return err
		}
		if err := embedder.Ping(cmd.Context()); err != nil {
			return fmt.Errorf("embedding provider unreachable: %w", err)
		}
		cmd.Printf("%s is reachable (%d dimensions)\n", embedder.ModelName(), embedder.Dimensions())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(pingCmd)
}
