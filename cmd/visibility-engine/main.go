// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the visibility-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/visibility-engine/internal/logging"
	"github.com/pdiddy/visibility-engine/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// loadedSecrets holds API keys from .secrets/ and the environment.
	loadedSecrets map[string]string

	logger = zap.NewNop()
)

// rootCmd is the base command for the visibility-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "visibility-engine",
	Short: "Discover competitors and score their citations in LLM answers",
	Long: `visibility-engine finds the competitors of a company and measures how
often, how early, and how favourably language models cite them.

discover runs templated web searches per detection method, extracts company
names with a model, ranks them by cross-method frequency, and keeps those a
model judges relevant. cite asks every configured model a battery of
industry questions and scores each competitor's mentions. Finished runs are
stored and can be listed, shown, and exported with report.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		l, err := logging.New(debug)
		if err != nil {
			return fmt.Errorf("creating logger: %w", err)
		}
		logger = l
		zap.ReplaceGlobals(l)

		if err := secrets.LoadEnv(".env"); err != nil {
			return err
		}
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = secrets.WithEnv(s)
		if len(loadedSecrets) > 0 {
			keys := make([]string, 0, len(loadedSecrets))
			for k, v := range loadedSecrets {
				if secrets.Usable(v) {
					keys = append(keys, k)
				}
			}
			sort.Strings(keys)
			logger.Debug("loaded secrets", zap.Strings("keys", keys))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./visibility-engine.yaml or ~/.config/visibility-engine/visibility-engine.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("visibility-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "visibility-engine"))
		}
	}

	viper.SetEnvPrefix("VISIBILITY_ENGINE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
