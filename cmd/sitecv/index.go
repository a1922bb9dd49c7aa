package main

import (
	"github.com/spf13/cobra"

	"github.com/dtobolski/sitecv/internal/build"
	"github.com/dtobolski/sitecv/internal/config"
	"github.com/dtobolski/sitecv/internal/storage"
)

func init() {
	rootCmd.AddCommand(indexCmd)
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the publication query index",
	Long: `Rebuild the SQLite query index from data/publications.csv.

The list command refreshes the index on its own when the CSV changes; use
this if the cache under .sitecv/ becomes corrupted.`,
	Args: cobra.NoArgs,
	RunE: runIndex,
}

// IndexResult is the response for the index command.
type IndexResult struct {
	Status  string `json:"status"`
	Records int    `json:"records"`
	Path    string `json:"path"`
}

func runIndex(cmd *cobra.Command, args []string) error {
	_, paths := mustPaths()
	db := mustOpenIndex(paths, true)
	defer db.Close()

	count, err := db.Count()
	if err != nil {
		exitWithError(ExitError, "counting records: %v", err)
	}

	dbPath := config.DBPath(paths.Root)
	if humanOutput {
		outputHuman("Rebuilt query index with %d records\n", count)
	} else {
		outputJSON(IndexResult{
			Status:  "rebuilt",
			Records: count,
			Path:    paths.Rel(dbPath),
		})
	}
	return nil
}

// mustOpenIndex opens the query index, refreshing it when stale, exits on error.
func mustOpenIndex(paths config.Paths, force bool) *storage.DB {
	db, _, err := build.OpenIndex(paths, force, logger)
	if err != nil {
		exitWithError(dataExitCode(err), "opening index: %v", err)
	}
	return db
}
