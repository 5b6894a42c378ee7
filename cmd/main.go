// Package main provides the hiscores command: a periodic citation scraper
// with a read-only HTTP view of its latest snapshot.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/okian/hiscores/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hiscores",
	Short: "Citation and h-index hiscores scraper",
	Long: "hiscores reads per-group rosters of profile keys, scrapes each profile's citation " +
		"count and h-index, and writes the results as a JSON snapshot.",
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if configPath == "" {
			return nil
		}
		if err := os.Setenv(config.EnvConfigFile, configPath); err != nil {
			return fmt.Errorf("set %s: %w", config.EnvConfigFile, err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (overrides "+config.EnvConfigFile+")")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
