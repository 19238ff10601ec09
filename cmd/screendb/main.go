// Package main provides the screendb command-line tool.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "screendb",
		Short:   "CRISPR screening data warehouse",
		Long:    "screendb loads flat CRISPR screening datasets into DuckDB and serves them over HTML pages and a JSON REST API.",
		Version: fmt.Sprintf("%s (%s) built %s", version, commit, date),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		SilenceUsage: true,
	}

	root.PersistentFlags().String("database", "screendb.duckdb", "path to the DuckDB database file")
	viper.BindPFlag("database", root.PersistentFlags().Lookup("database"))

	root.AddCommand(newServeCmd())
	root.AddCommand(newLoadCmd())
	root.AddCommand(newConfigCmd())

	return root
}

func initConfig() error {
	home, err := os.UserHomeDir()
	if err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetConfigName(".screendb")
	viper.SetConfigType("yaml")

	viper.SetEnvPrefix("SCREENDB")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}
