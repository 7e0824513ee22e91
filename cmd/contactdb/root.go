package main

import (
	"fmt"
	"os"

	"contactdb/pkg/config"

	"github.com/spf13/cobra"
)

var (
	// Global flags
	configPath string
	dataPath   string
	noNameIdx  bool
	noPhoneIdx bool
)

var rootCmd = &cobra.Command{
	Use:   "contactdb",
	Short: "In-memory contact directory with prefix search",
	Long: `contactdb keeps contacts (name, phone, remark) in memory behind hash
indexes and prefix trees, persisting them to SQLite or a JSON file.
Run it as a server, as an interactive shell, or benchmark the indexes.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to contactdb.yaml")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "Override storage.path")
	rootCmd.PersistentFlags().BoolVar(&noNameIdx, "no-name-index", false, "Disable the name prefix tree")
	rootCmd.PersistentFlags().BoolVar(&noPhoneIdx, "no-phone-index", false, "Disable the phone prefix tree")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies command-line overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if dataPath != "" {
		cfg.Storage.Path = dataPath
	}
	if noNameIdx {
		cfg.Index.NamePrefix = false
	}
	if noPhoneIdx {
		cfg.Index.PhonePrefix = false
	}
	return cfg, nil
}
