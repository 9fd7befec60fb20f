// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the verify-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/verify-engine/internal/logging"
	"github.com/pdiddy/verify-engine/internal/secrets"
	"github.com/pdiddy/verify-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	// cfg is the resolved configuration, ready after PersistentPreRunE.
	cfg types.Config

	// logger is the process logger, ready after PersistentPreRunE.
	logger = zap.NewNop()
)

// rootCmd is the base command for the verify-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "verify-engine",
	Short: "Fact-check social media and news posts against search evidence",
	Long: `verify-engine checks a post (platform, source URL, title, text) by
synthesizing search queries from its keywords and facts, corroborating it
against news and web search providers, and blending text similarity with
domain trust into a confidence-scored verdict.

In llm mode the whole check is delegated to a chat model with a strict
JSON output contract.

Credentials are read from the config file, VERIFY_ENGINE_* environment
variables, or one file per key under the secrets directory.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		l, err := logging.New(c.Log.Level, c.Log.Development)
		if err != nil {
			return err
		}

		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir, l)
		if err != nil {
			return err
		}
		secrets.Apply(&c, s)
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			l.Debug("loaded secrets", zap.Strings("keys", keys))
		}

		cfg, logger = c, l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./verify-engine.yaml or ~/.config/verify-engine/config.yaml)")
	pf.String("secrets-dir", ".secrets/", "directory holding one credential file per key")
	pf.String("mode", "", "verification path: hybrid or llm")
	pf.String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("mode", pf.Lookup("mode"))
	_ = viper.BindPFlag("log.level", pf.Lookup("log-level"))
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("verify-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "verify-engine"))
		}
	}

	configureEnv(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
