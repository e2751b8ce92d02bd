package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"companysift/internal/config"
	"companysift/internal/store"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "Discover websites for UK companies from registry data",
	Long: `sift enriches company-registry CSV rows with a discovered website URL
and a 0-100 confidence score. Runs are checkpointed in a local sqlite
database and can be resumed after interruption with --resume.`,
	SilenceUsage: true,
}

func main() {
	log.SetFlags(log.LstdFlags)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config/config.yaml",
		"path to configuration file")
}

// loadConfig loads, normalizes, and validates the config file, writing the
// defaults there first if it doesn't exist.
func loadConfig() (config.Config, error) {
	path, err := config.EnsureConfig(cfgPath)
	if err != nil {
		return config.Config{}, fmt.Errorf("config bootstrap: %w", err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, fmt.Errorf("config load (%s): %w", path, err)
	}
	cfg, res := config.NormalizeAndValidate(cfg)
	for _, w := range res.Warnings {
		log.Printf("[config] warning: %s", w)
	}
	if err := res.Err(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func openStore(cfg config.Config) (*store.Store, error) {
	if err := os.MkdirAll(cfg.Processing.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return store.Open(dbPath(cfg))
}

func dbPath(cfg config.Config) string {
	return filepath.Join(cfg.Processing.DataDir, "companysift.db")
}

func lockPath(cfg config.Config) string {
	return filepath.Join(cfg.Processing.DataDir, "companysift.lock")
}
