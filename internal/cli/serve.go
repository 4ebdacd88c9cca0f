package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"ragdocs/internal/logger"
	"ragdocs/internal/server"
	"ragdocs/internal/service"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve search and chat over HTTP",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default server.addr)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	retriever, err := newRetriever(cfg)
	if err != nil {
		return err
	}
	// Search works without a chat model, so a missing generator only
	// disables /api/v1/chat.
	var assistant server.Assistant
	if a, err := newAssistant(cfg, retriever); err != nil {
		logger.Warn("chat disabled: %v", err)
	} else {
		assistant = a
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	router := server.NewRouter(server.NewHandler(retriever, assistant, cfg.Retrieval.TopK), cfg.Server.GinMode)
	cmd.Printf("Serving %d chunks on %s\n", retriever.Len(), cfg.Server.Addr)
	return server.Serve(ctx, cfg.Server.Addr, router)
}

var _ server.Retriever = (*service.Retriever)(nil)
