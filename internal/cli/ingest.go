package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"ragdocs/internal/chunker"
	"ragdocs/internal/docs"
	"ragdocs/internal/domain"
	"ragdocs/internal/logger"
	"ragdocs/internal/service"
	"ragdocs/internal/summarizer"
)

var (
	ingestDocsDir string
	ingestOut     string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the vector collection from the docs folder",
	Long: `Splits every .txt, .md and .pdf file of the docs folder into passages,
embeds them and replaces the collection file with the result.`,
	Args: cobra.NoArgs,
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDocsDir, "docs", "", "documents folder (default from config)")
	ingestCmd.Flags().StringVar(&ingestOut, "out", "", "collection file to write (default from config)")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if ingestDocsDir != "" {
		cfg.Docs.Dir = ingestDocsDir
	}
	if ingestOut != "" {
		cfg.Store.Path = ingestOut
	}

	logger.Section("Ingest")
	documents, err := docs.Load(cfg.Docs.Dir, cfg.Docs.Extensions)
	if err != nil {
		return err
	}
	splitter, err := chunker.NewBoundaryChunker(cfg.Chunker.MinSize, cfg.Chunker.MaxSize)
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}

	ingestor := service.NewIngestor(splitter, embedder, summarizer.NewFrequencySummarizer(), cfg.Embedder.Concurrency)
	report, err := ingestor.Ingest(cmd.Context(), documents, cfg.Store.Path)
	if errors.Is(err, domain.ErrNoDocuments) {
		logger.Warn("no documents found in %s", cfg.Docs.Dir)
		cmd.Printf("No documents found in %s, nothing written.\n", cfg.Docs.Dir)
		return nil
	}
	if err != nil {
		return fmt.Errorf("ingest failed: %w", err)
	}

	cmd.Printf("Ingested %d chunks from %d documents into %s\n", len(report.Chunks), report.Documents, cfg.Store.Path)
	if report.Summary != "" {
		cmd.Println()
		cmd.Println(titleStyle.Render("Summary"))
		cmd.Println(report.Summary)
	}
	return nil
}
