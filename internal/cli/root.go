// Package cli implements the ragdocs command line.
package cli

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"ragdocs/internal/config"
	"ragdocs/internal/logger"
)

var (
	version = "dev"

	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "ragdocs",
	Short: "Ask questions about a folder of documents",
	Long: `ragdocs splits a folder of documents into passages, embeds them and
answers questions grounded on the most similar passages.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML or TOML); default ./config.yaml or ~/.config/ragdocs/config.yaml")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print progress and debug output")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig reads .env into the environment, then the config file.
func loadConfig() (*config.AppConfig, error) {
	if err := godotenv.Load(); err == nil {
		logger.Debug("loaded .env")
	}
	var cfg *config.AppConfig
	var err error
	path := cfgFile
	if path == "" {
		cfg, path, err = config.LoadDefault()
	} else {
		cfg, err = config.Load(path)
	}
	if err != nil {
		return nil, err
	}
	logger.Section("Configuration")
	logger.Debug("config file: %s", path)
	logger.Debug("embedder: %s (%s), generator: %s", cfg.Embedder.Type, cfg.Embedder.Model, cfg.Generator.Model)
	logger.Debug("api key: %s", logger.MaskSecret(cfg.API.APIKey))
	return cfg, nil
}
