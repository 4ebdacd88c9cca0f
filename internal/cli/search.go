package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"ragdocs/internal/domain"
)

var (
	searchLimit int
	searchJSON  bool
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the ingested documents",
	Long: `Embeds the query and prints the most similar passages of the collection,
best first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum number of results (default retrieval.top_k)")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	retriever, err := newRetriever(cfg)
	if err != nil {
		return err
	}
	k := cfg.Retrieval.TopK
	if cmd.Flags().Changed("limit") {
		k = searchLimit
	}

	results, err := retriever.Search(cmd.Context(), args[0], k)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}
	if searchJSON {
		return outputSearchJSON(cmd, results)
	}
	outputSearchTable(cmd, results)
	return nil
}

func outputSearchJSON(cmd *cobra.Command, results []domain.SearchResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputSearchTable(cmd *cobra.Command, results []domain.SearchResult) {
	if len(results) == 0 {
		cmd.Println("No results found.")
		return
	}
	for i := range results {
		ch := results[i].Chunk
		cmd.Printf("%s %s\n", titleStyle.Render(fmt.Sprintf("[%d] %s #%d", i+1, ch.Source, ch.Position)), dimStyle.Render(fmt.Sprintf("(%.3f)", results[i].Score)))
		cmd.Printf("    %s\n\n", strings.ReplaceAll(strings.TrimSpace(ch.Text), "\n", "\n    "))
	}
}
