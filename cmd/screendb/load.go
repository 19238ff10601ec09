package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"screendb/internal/store"
)

func newLoadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "load <csv-file>",
		Short: "Import a screening dataset",
		Long:  "Import a flat CRISPR screening CSV (or TSV) into the database and rebuild the normalized gene and experiment tables.",
		Example: `  screendb load screens.csv
  screendb load --database /data/screens.duckdb gecko_v2.tsv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(args[0])
		},
	}
}

func runLoad(path string) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	dbPath := viper.GetString("database")
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database %s: %w", dbPath, err)
	}
	defer st.Close()
	st.SetLogger(logger)

	n, err := st.LoadCSV(path)
	if err != nil {
		return fmt.Errorf("import %s: %w", path, err)
	}

	fmt.Printf("Imported %d rows from %s into %s\n", n, path, dbPath)
	return nil
}
