package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cartalabs/carta/internal/core/domain"
)

var (
	searchRoom      string
	searchTopK      int
	searchThreshold float64
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search a room's documents",
	Long: `Performs hybrid search over the embedded chunks of one room.
Vector similarity and keyword relevance are fused into one ranking;
quote part of the query to require an exact phrase.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchRoom, "room", "r", "", "room to search (required)")
	searchCmd.Flags().IntVarP(&searchTopK, "limit", "n", domain.DefaultTopK, "maximum number of results")
	searchCmd.Flags().Float64Var(&searchThreshold, "threshold", domain.DefaultThreshold, "minimum vector similarity (negative to disable)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	_ = searchCmd.MarkFlagRequired("room")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if err := ensureServices(); err != nil {
		return err
	}

	opts := domain.SearchOptions{
		RoomID:    searchRoom,
		TopK:      searchTopK,
		Threshold: searchThreshold,
	}
	if cfg != nil {
		opts.VectorWeight = cfg.Search.VectorWeight
		opts.KeywordWeight = cfg.Search.KeywordWeight
	}

	results, err := searchService.Search(cmd.Context(), args[0], opts)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if searchJSON {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal results: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(results) == 0 {
		cmd.Println("No results found.")
		return nil
	}

	cmd.Println("Results:")
	cmd.Println()
	for i := range results {
		r := &results[i]
		cmd.Printf("  [%d] %s (%.3f)\n", i+1, r.FileName, r.CombinedScore)
		cmd.Printf("      vector %.3f  keyword %.3f\n", r.Similarity, r.KeywordRank)
		cmd.Printf("      %s\n", snippet(r.Content, 160))
		cmd.Println()
	}
	return nil
}

// snippet truncates content to one display line.
func snippet(content string, limit int) string {
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[:i]
	}
	runes := []rune(content)
	if len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return content
}
