package cli

import (
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"ragdocs/internal/service"
	"ragdocs/internal/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the interactive assistant",
	Args:  cobra.NoArgs,
	RunE:  runChat,
}

// stdinIsTerminal is replaced in tests.
var stdinIsTerminal = func() bool { return term.IsTerminal(int(os.Stdin.Fd())) }

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	if !stdinIsTerminal() {
		return errors.New("chat needs an interactive terminal; use `ragdocs search` or `ragdocs serve` instead")
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	embedder, err := newEmbedder(cfg)
	if err != nil {
		return err
	}
	store, err := openCollection(cfg.Store.Path, embedder)
	if err != nil {
		return err
	}
	assistant, err := newAssistant(cfg, service.NewRetriever(embedder, store))
	if err != nil {
		return err
	}

	m := tui.New(cmd.Context(), assistant, corpusSummary(store))
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run()
	return err
}
